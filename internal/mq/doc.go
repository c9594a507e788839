// Package mq — объявления об опубликованных манифестах через RabbitMQ.
//
// Структура:
//   - connection.go — соединение с RabbitMQ и переподключение
//   - topology.go   — exchanges, queues, bindings
//   - publisher.go  — публикация сообщений
//   - consumer.go   — потребление сообщений
//
// Типы сообщений:
//   - manifest.published — манифест DAG записан в хранилище
//
// Exchanges:
//   - concert.manifests — объявления о манифестах
//   - concert.dlq       — dead letter queue
package mq

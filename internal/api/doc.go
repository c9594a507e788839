// Package api — HTTP API сервера concert serve.
//
// Структура:
//   - handler.go          — Handler и его зависимости
//   - routes.go           — регистрация маршрутов
//   - middleware.go       — logging, recovery, счётчик запросов
//   - response.go         — JSON-ответы и отображение ошибок в статусы
//   - dto.go              — ответы API
//   - manifest_handler.go — /manifests, /announcements, /preview
//
// API только читает: манифесты публикует команда concert publish.
package api

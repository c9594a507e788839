// Package bigquery содержит конфигурации задач хранилища.
//
// Включает:
//   - reference.go — TableReference (project.dataset.table)
//   - job.go       — конфигурации query, extract и load задач
//   - table.go     — описание external таблицы и DDL из списка полей
//   - merge.go     — построение MERGE запроса raw vault → raw
//   - template.go  — рендеринг SQL шаблонов
//
// Всё в пакете — чистые функции без обращений к сети. Макросы движка
// workflow ({{ ds }}, {{ ts_nodash }}) передаются как данные и попадают
// в результат без изменений.
package bigquery

// Package motif содержит конкретные мотивы пайплайнов загрузки.
//
// Каждый мотив — неизменяемое значение. Конструктор задаёт статическую
// конфигурацию, метод Bind… возвращает копию с параметрами, известными
// только после выбора цели (URI хранилища, ссылки на таблицы).
// Build без обязательных параметров возвращает concert.ErrNotBound.
//
// Включает:
//   - base.go     — общие части: имя, описание задачи
//   - boundary.go — Start, End
//   - query.go    — QueryJob, ExportQueryToStorage, CreateOrUpdateTable
//   - merge.go    — MergeTable
//   - export.go   — ExportRdbmsTable (кластер Dataproc + JDBC)
//   - storage.go  — StorageToStorage, ExtractTable
//   - table.go    — CreateExternalTable, LoadStorageToTable
package motif

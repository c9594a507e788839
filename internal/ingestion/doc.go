// Package ingestion — загрузка таблиц источника в хранилище.
//
// Movement загрузки одной таблицы:
//
//	Start → SourceToRawVault → [CreateOrUpdateTable] → RawVaultToRaw → [RawToTrusted] → End
//
// Для source: bigquery (reverse ETL) movement короче:
//
//	Start → WarehouseToStorage → End
//
// Включает:
//   - locations.go   — адреса raw vault и таблиц для movement
//   - movement.go    — DataIngestionMovement, скелет фраз и Setup
//   - composition.go — Composition с вариантами RDBMS и storage
//   - reverse.go     — вариант reverse ETL: EXPORT DATA или extract таблицы
package ingestion

// Package phrase содержит стандартные фразы movement загрузки:
// Start → SourceToRawVault → [CreateOrUpdateTable] → RawVaultToRaw →
// [RawToTrusted] → End. Для reverse ETL — WarehouseToStorage.
//
// Фразы с параметрами цели держат скелеты мотивов и отдают готовую
// *concert.Phrase из Bind. Каждый вызов Bind возвращает новую фразу,
// поэтому один скелет можно привязать к нескольким целям.
package phrase

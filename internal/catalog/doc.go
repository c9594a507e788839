// Package catalog — источники целей композиции (таблиц для загрузки).
//
// Включает:
//   - static.go   — каталог из конфигурации композиции
//   - postgres.go — каталог из information_schema PostgreSQL (pgx)
//
// Оба типа реализуют concert.Catalog.
package catalog

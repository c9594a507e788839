// Package telemetry обеспечивает наблюдаемость сборщика.
//
// Включает:
//   - logging.go — structured logging через slog
//   - metrics.go — Prometheus метрики сборки
//
// CLI пишет логи в stderr, serve дополнительно отдаёт
// метрики на /metrics endpoint.
package telemetry

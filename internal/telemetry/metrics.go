package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics — счётчики сборки пайплайнов.
//
// Регистрируются в переданном Registerer, чтобы тесты и serve
// не делили глобальный реестр.
type Metrics struct {
	// RootsBuilt — собранные корневые контейнеры.
	RootsBuilt prometheus.Counter

	// MovementsBuilt — собранные movements по виду источника.
	MovementsBuilt *prometheus.CounterVec

	// BuildErrors — неудачные сборки по стадии (catalog, movement, build).
	BuildErrors *prometheus.CounterVec

	// ManifestsPublished — опубликованные манифесты.
	ManifestsPublished prometheus.Counter

	// BuildDuration — длительность одной сборки композиции.
	BuildDuration prometheus.Histogram
}

// NewMetrics создаёт и регистрирует метрики в reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		RootsBuilt: factory.NewCounter(prometheus.CounterOpts{
			Name: "concert_roots_built_total",
			Help: "Total root containers built",
		}),
		MovementsBuilt: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "concert_movements_built_total",
			Help: "Total movements built",
		}, []string{"source"}),
		BuildErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "concert_build_errors_total",
			Help: "Total failed composition builds",
		}, []string{"stage"}),
		ManifestsPublished: factory.NewCounter(prometheus.CounterOpts{
			Name: "concert_manifests_published_total",
			Help: "Total manifests written to object storage",
		}),
		BuildDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "concert_build_duration_seconds",
			Help:    "Composition build duration",
			Buckets: prometheus.DefBuckets,
		}),
	}
}

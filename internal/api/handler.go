package api

import (
	"context"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/shaiso/Concert/internal/deploy"
	"github.com/shaiso/Concert/internal/workflow"
)

// ManifestReader читает опубликованные манифесты. Реализуется deploy.Publisher.
type ManifestReader interface {
	DagIDs(ctx context.Context) ([]string, error)
	Manifest(ctx context.Context, dagID string) (*workflow.Manifest, error)
}

// PreviewFunc собирает манифесты текущей конфигурации без публикации.
type PreviewFunc func(ctx context.Context) ([]*workflow.Manifest, error)

// Handler — обработчик API.
type Handler struct {
	manifests ManifestReader
	index     *deploy.Index
	preview   PreviewFunc
	gatherer  prometheus.Gatherer
	requests  *prometheus.CounterVec
	logger    *slog.Logger
}

// Config — зависимости Handler. Все поля необязательны.
type Config struct {
	Manifests ManifestReader
	Index     *deploy.Index
	Preview   PreviewFunc
	Registry  *prometheus.Registry
	Logger    *slog.Logger
}

// NewHandler создаёт Handler и регистрирует счётчик запросов в cfg.Registry
// (без Registry — в собственном реестре).
func NewHandler(cfg Config) *Handler {
	if cfg.Registry == nil {
		cfg.Registry = prometheus.NewRegistry()
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Handler{
		manifests: cfg.Manifests,
		index:     cfg.Index,
		preview:   cfg.Preview,
		gatherer:  cfg.Registry,
		requests: promauto.With(cfg.Registry).NewCounterVec(prometheus.CounterOpts{
			Name: "concert_http_requests_total",
			Help: "Total HTTP requests handled by concert serve",
		}, []string{"route", "status"}),
		logger: cfg.Logger,
	}
}

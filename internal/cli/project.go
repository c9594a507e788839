package cli

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/shaiso/Concert/internal/catalog"
	"github.com/shaiso/Concert/internal/concert"
	"github.com/shaiso/Concert/internal/config"
	"github.com/shaiso/Concert/internal/domain"
	"github.com/shaiso/Concert/internal/ingestion"
	"github.com/shaiso/Concert/internal/telemetry"
	"github.com/shaiso/Concert/internal/workflow"
)

// Каталоги целей, доступные через --catalog.
const (
	CatalogStatic   = "static"
	CatalogPostgres = "postgres"
)

// Project — пути к конфигурации и общие зависимости команд.
type Project struct {
	EnvPath         string
	CompositionPath string
	Logger          *slog.Logger
	Metrics         *telemetry.Metrics
}

// Load читает и проверяет конфигурацию проекта.
func (p Project) Load() (domain.Config, error) {
	return config.Load(p.EnvPath, p.CompositionPath)
}

// CatalogOptions — выбор каталога целей.
type CatalogOptions struct {
	Kind    string
	Schema  string
	Include []string
}

// OpenCatalog открывает каталог opts.Kind. release освобождает соединения.
//
// Каталог postgres читает information_schema по DB_URL и дополняет
// колонки аннотациями таблиц из конфигурации.
func (p Project) OpenCatalog(ctx context.Context, cfg domain.Config, opts CatalogOptions) (cat concert.Catalog, release func(), err error) {
	switch opts.Kind {
	case "", CatalogStatic:
		return catalog.NewStatic(cfg.Tables), func() {}, nil
	case CatalogPostgres:
		pool, err := catalog.NewPool(ctx)
		if err != nil {
			return nil, nil, err
		}
		return catalog.NewPostgres(pool, catalog.PostgresConfig{
			Schema:      opts.Schema,
			Include:     opts.Include,
			Annotations: cfg.Tables,
			Logger:      p.logger(),
		}), pool.Close, nil
	default:
		return nil, nil, &concert.UnsupportedVariantError{
			Variant: opts.Kind,
			Known:   []string{CatalogStatic, CatalogPostgres},
		}
	}
}

// Render собирает конфигурацию в памяти и возвращает графы по одному на корень.
func (p Project) Render(ctx context.Context, cfg domain.Config, cat concert.Catalog, multi bool) ([]*workflow.Graph, error) {
	mem := workflow.NewMemory()
	comp := ingestion.NewComposition(cfg, ingestion.Options{
		Service: mem,
		Catalog: cat,
		Logger:  p.logger(),
		Metrics: p.Metrics,
	})

	roots, err := comp.AutoBuild(ctx, multi)
	if err != nil {
		return nil, err
	}

	graphs := make([]*workflow.Graph, 0, len(roots))
	for _, root := range roots {
		g, err := mem.Graph(root.ID())
		if err != nil {
			return nil, fmt.Errorf("graph %s: %w", root.ID(), err)
		}
		graphs = append(graphs, g)
	}
	return graphs, nil
}

// Manifests строит манифесты графов.
func Manifests(graphs []*workflow.Graph) ([]*workflow.Manifest, error) {
	out := make([]*workflow.Manifest, 0, len(graphs))
	for _, g := range graphs {
		m, err := g.Manifest()
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, nil
}

func (p Project) logger() *slog.Logger {
	if p.Logger == nil {
		return slog.Default()
	}
	return p.Logger
}

package concert

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/shaiso/Concert/internal/domain"
	"github.com/shaiso/Concert/internal/telemetry"
	"github.com/shaiso/Concert/internal/workflow"
)

// Catalog — источник целей композиции.
type Catalog interface {
	List(ctx context.Context) ([]domain.Table, error)
}

// MovementBuilder строит Movement для одной цели.
//
// Вызывается заново для каждой цели и должен возвращать свежие
// экземпляры фраз и мотивов.
type MovementBuilder func(target domain.Table) (*Movement, error)

// Composition — верхний уровень: каталог целей и параметры DAG.
//
// Composition сама не создаёт Movement, только вызывает MovementBuilder
// для каждой цели и собирает результат в один или несколько корней.
type Composition struct {
	name    string
	source  domain.SourceKind
	params  domain.DagParameters
	service workflow.Service
	catalog Catalog
	logger  *slog.Logger
	metrics *telemetry.Metrics
}

// CompositionConfig — конфигурация Composition.
type CompositionConfig struct {
	// Name — имя композиции (для логов).
	Name string

	// Source — вид источника (метка метрик).
	Source domain.SourceKind

	// DagParameters — параметры корневого контейнера.
	DagParameters domain.DagParameters

	// Service — движок workflow.
	Service workflow.Service

	// Catalog — каталог целей.
	Catalog Catalog

	// Logger — логгер (по умолчанию slog.Default()).
	Logger *slog.Logger

	// Metrics — метрики сборки (необязательны).
	Metrics *telemetry.Metrics
}

// NewComposition создаёт Composition.
func NewComposition(cfg CompositionConfig) *Composition {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Composition{
		name:    cfg.Name,
		source:  cfg.Source,
		params:  cfg.DagParameters,
		service: cfg.Service,
		catalog: cfg.Catalog,
		logger:  telemetry.WithComposition(logger, cfg.Name),
		metrics: cfg.Metrics,
	}
}

// Build собирает все цели в один корневой контейнер.
//
// Movements целей остаются соседями без рёбер между собой.
// При ошибке корень удаляется, если Service реализует workflow.Dropper.
func (c *Composition) Build(ctx context.Context, builder MovementBuilder) (workflow.Root, error) {
	defer c.observe(time.Now())

	targets, err := c.targets(ctx)
	if err != nil {
		return nil, err
	}

	root, err := c.service.CreateRoot(c.params)
	if err != nil {
		c.fail("build")
		return nil, fmt.Errorf("create root %s: %w", c.params.DagID, err)
	}
	scope := Scope{
		Service: c.service,
		Root:    root,
		Logger:  telemetry.WithDagID(c.logger, root.ID()),
	}

	movements := make(map[string]string, len(targets))
	for _, target := range targets {
		if err := ctx.Err(); err != nil {
			c.drop(root)
			return nil, err
		}
		if err := c.buildTarget(scope, builder, target, movements); err != nil {
			c.drop(root)
			return nil, err
		}
	}

	c.built(root, len(targets))
	return root, nil
}

// BuildMulti собирает каждую цель в отдельный корневой контейнер
// с идентификатором "{dag_id}.{имя цели}".
func (c *Composition) BuildMulti(ctx context.Context, builder MovementBuilder) ([]workflow.Root, error) {
	defer c.observe(time.Now())

	targets, err := c.targets(ctx)
	if err != nil {
		return nil, err
	}

	roots := make([]workflow.Root, 0, len(targets))
	fail := func(err error) ([]workflow.Root, error) {
		for _, root := range roots {
			c.drop(root)
		}
		return nil, err
	}

	for _, target := range targets {
		if err := ctx.Err(); err != nil {
			return fail(err)
		}

		params := c.params.WithDagID(MultiDagID(c.params.DagID, target.Name))
		root, err := c.service.CreateRoot(params)
		if err != nil {
			c.fail("build")
			return fail(fmt.Errorf("create root %s: %w", params.DagID, err))
		}
		roots = append(roots, root)
		scope := Scope{
			Service: c.service,
			Root:    root,
			Logger:  telemetry.WithDagID(c.logger, root.ID()),
		}

		if err := c.buildTarget(scope, builder, target, nil); err != nil {
			return fail(err)
		}

		c.built(root, 1)
	}

	return roots, nil
}

// MultiDagID возвращает идентификатор корня цели в режиме BuildMulti.
func MultiDagID(base, target string) string {
	return base + "." + target
}

func (c *Composition) targets(ctx context.Context) ([]domain.Table, error) {
	if c.service == nil {
		return nil, NewConfigurationError("composition", c.name, "workflow service is nil", ErrInvalidParameter)
	}
	if c.catalog == nil {
		return nil, NewConfigurationError("composition", c.name, "catalog is nil", ErrInvalidParameter)
	}

	targets, err := c.catalog.List(ctx)
	if err != nil {
		c.fail("catalog")
		return nil, fmt.Errorf("list targets: %w", err)
	}
	if len(targets) == 0 {
		c.logger.Warn("catalog is empty")
	}

	seen := make(map[string]struct{}, len(targets))
	for _, target := range targets {
		if err := checkName("target", target.Name); err != nil {
			c.fail("catalog")
			return nil, err
		}
		if _, dup := seen[target.Name]; dup {
			c.fail("catalog")
			return nil, NewConfigurationError("target", target.Name, "listed twice in catalog", ErrInvalidParameter)
		}
		seen[target.Name] = struct{}{}
	}
	return targets, nil
}

// buildTarget собирает movement цели. movements (имя movement → цель)
// отслеживает совпадение имён внутри одного корня; nil — без проверки.
func (c *Composition) buildTarget(scope Scope, builder MovementBuilder, target domain.Table, movements map[string]string) error {
	movement, err := builder(target)
	if err != nil {
		c.fail("movement")
		return fmt.Errorf("movement builder for %s: %w", target.Name, err)
	}
	if movement == nil {
		c.fail("movement")
		return NewConfigurationError("composition", c.name,
			"movement builder returned nil for "+target.Name, ErrInvalidParameter)
	}
	if movements != nil {
		if other, dup := movements[movement.Name()]; dup {
			c.fail("movement")
			return NewConfigurationError("movement", movement.Name(),
				fmt.Sprintf("built for both %s and %s", other, target.Name), ErrInvalidParameter)
		}
		movements[movement.Name()] = target.Name
	}

	if _, err := movement.Build(scope); err != nil {
		c.fail("build")
		return err
	}

	if c.metrics != nil {
		c.metrics.MovementsBuilt.WithLabelValues(c.source.String()).Inc()
	}
	return nil
}

// drop удаляет недособранный корень, если сервис это поддерживает.
func (c *Composition) drop(root workflow.Root) {
	d, ok := c.service.(workflow.Dropper)
	if !ok {
		return
	}
	if err := d.Drop(root); err != nil {
		c.logger.Warn("failed to drop root", "dag_id", root.ID(), "error", err)
	}
}

func (c *Composition) built(root workflow.Root, movements int) {
	c.logger.Info("root built", "dag_id", root.ID(), "movements", movements)
	if c.metrics != nil {
		c.metrics.RootsBuilt.Inc()
	}
}

func (c *Composition) fail(stage string) {
	if c.metrics != nil {
		c.metrics.BuildErrors.WithLabelValues(stage).Inc()
	}
}

func (c *Composition) observe(start time.Time) {
	if c.metrics != nil {
		c.metrics.BuildDuration.Observe(time.Since(start).Seconds())
	}
}

package ingestion

import (
	"context"
	"log/slog"

	"github.com/shaiso/Concert/internal/bigquery"
	"github.com/shaiso/Concert/internal/catalog"
	"github.com/shaiso/Concert/internal/concert"
	"github.com/shaiso/Concert/internal/domain"
	"github.com/shaiso/Concert/internal/motif"
	"github.com/shaiso/Concert/internal/phrase"
	"github.com/shaiso/Concert/internal/telemetry"
	"github.com/shaiso/Concert/internal/workflow"
)

// Options — зависимости Composition.
type Options struct {
	// Service — движок workflow.
	Service workflow.Service

	// Catalog — каталог целей (по умолчанию таблицы из конфигурации).
	Catalog concert.Catalog

	// Logger — логгер (по умолчанию slog.Default()).
	Logger *slog.Logger

	// Metrics — метрики сборки (необязательны).
	Metrics *telemetry.Metrics
}

// Composition — загрузка всех таблиц каталога из одного источника.
type Composition struct {
	config   domain.Config
	base     *concert.Composition
	variants concert.Variants
	logger   *slog.Logger
}

// NewComposition создаёт Composition для cfg.
func NewComposition(cfg domain.Config, opts Options) *Composition {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	cat := opts.Catalog
	if cat == nil {
		cat = catalog.NewStatic(cfg.Tables)
	}

	c := &Composition{
		config: cfg,
		base: concert.NewComposition(concert.CompositionConfig{
			Name:          cfg.Name,
			Source:        cfg.Source,
			DagParameters: cfg.DagParameters,
			Service:       opts.Service,
			Catalog:       cat,
			Logger:        logger,
			Metrics:       opts.Metrics,
		}),
		logger: telemetry.WithComposition(logger, cfg.Name),
	}
	c.variants = concert.Variants{
		domain.SourceMySQL:      c.RdbmsMovement,
		domain.SourcePostgreSQL: c.RdbmsMovement,
		domain.SourceMSSQL:      c.RdbmsMovement,
		domain.SourceGCS:        c.StorageMovement,
		domain.SourceS3:         c.StorageMovement,
		domain.SourceBigQuery:   c.ReverseEtlMovement,
	}
	return c
}

// Variants возвращает реестр movement builder по видам источника.
func (c *Composition) Variants() concert.Variants { return c.variants }

// Builder возвращает builder для Config.Source.
func (c *Composition) Builder() (concert.MovementBuilder, error) {
	return c.variants.Lookup(c.config.Source)
}

// Build собирает все таблицы в один корень.
func (c *Composition) Build(ctx context.Context, builder concert.MovementBuilder) (workflow.Root, error) {
	return c.base.Build(ctx, builder)
}

// BuildMulti собирает каждую таблицу в отдельный корень.
func (c *Composition) BuildMulti(ctx context.Context, builder concert.MovementBuilder) ([]workflow.Root, error) {
	return c.base.BuildMulti(ctx, builder)
}

// AutoBuild выбирает builder по виду источника и собирает один корень
// или, при multi, по корню на таблицу.
func (c *Composition) AutoBuild(ctx context.Context, multi bool) ([]workflow.Root, error) {
	builder, err := c.Builder()
	if err != nil {
		return nil, err
	}
	if multi {
		return c.BuildMulti(ctx, builder)
	}
	root, err := c.Build(ctx, builder)
	if err != nil {
		return nil, err
	}
	return []workflow.Root{root}, nil
}

// RdbmsMovement — builder для СУБД: выгрузка через Dataproc,
// затем external таблица и MERGE либо load задача.
func (c *Composition) RdbmsMovement(table domain.Table) (*concert.Movement, error) {
	params := domain.MergeMovementParameters(table, c.config.MovementTemplate)

	export, err := motif.NewExportRdbmsTable("", c.config, params)
	if err != nil {
		return nil, err
	}
	source := phrase.NewSourceToRawVault("", func(destination string) concert.Motif {
		return export.BindDestination(destination)
	})

	var raw phrase.RawVaultToRaw
	if params.LoadMode == domain.LoadModeLoad {
		raw = c.loadPhrase(params)
	} else {
		raw = phrase.NewRawVaultToRawMerge("",
			motif.NewCreateExternalTable("", c.connID()),
			motif.NewMergeTable("", c.connID(), table, params.MergePartition),
		)
	}

	return c.movement(table, params, source, raw)
}

// StorageMovement — builder для объектных хранилищ: копирование
// файла в raw vault и load задача.
func (c *Composition) StorageMovement(table domain.Table) (*concert.Movement, error) {
	params := domain.MergeMovementParameters(table, c.config.MovementTemplate)

	kind := domain.SourceKind(params.SourceStorageType)
	if kind == "" {
		kind = c.config.Source
	}
	copyFile, err := motif.NewStorageToStorage("", kind,
		params.ExtractConnectionID,
		c.config.Environment.DataLakeConnID,
		params.SourceFileURI,
		params.DataPartitioning.StoragePartitionSchema,
	)
	if err != nil {
		return nil, err
	}
	source := phrase.NewSourceToRawVault("", func(destination string) concert.Motif {
		return copyFile.BindDestination(destination)
	})

	return c.movement(table, params, source, c.loadPhrase(params))
}

func (c *Composition) movement(table domain.Table, params domain.MovementParameters, source phrase.SourceToRawVault, raw phrase.RawVaultToRaw) (*concert.Movement, error) {
	m := NewDataIngestionMovement(c.config, table, source, raw).
		WithTrustedQueries(c.config.TrustedQueries)
	if params.CreatesTable() {
		m = m.WithCreateTable(phrase.NewCreateOrUpdateTable("",
			motif.NewCreateOrUpdateTable("", c.connID(), table.Fields, params.DataPartitioning)))
	}

	movement, err := m.Setup(params)
	if err != nil {
		return nil, err
	}
	telemetry.WithMovement(c.logger, movement.Name()).Debug("movement ready",
		"phrases", len(movement.Phrases()),
		"load_mode", raw.Mode(),
	)
	return movement, nil
}

func (c *Composition) loadPhrase(params domain.MovementParameters) phrase.RawVaultToRaw {
	return phrase.NewRawVaultToRawLoad("",
		motif.NewLoadStorageToTable("", c.connID(), bigquery.FormatParquet, params.DataPartitioning))
}

func (c *Composition) connID() string {
	return c.config.Environment.GCPConnectionID
}

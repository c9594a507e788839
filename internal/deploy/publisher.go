package deploy

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"github.com/google/uuid"

	"github.com/shaiso/Concert/internal/mq"
	"github.com/shaiso/Concert/internal/telemetry"
	"github.com/shaiso/Concert/internal/workflow"
)

// Announcer объявляет об опубликованном манифесте. Реализуется mq.Publisher.
type Announcer interface {
	PublishManifest(ctx context.Context, payload mq.ManifestPublishedPayload) error
}

// Config — конфигурация Publisher.
type Config struct {
	// Store — хранилище манифестов.
	Store Store

	// Announcer — необязателен; без него манифест только записывается.
	Announcer Announcer

	// Metrics — необязательны.
	Metrics *telemetry.Metrics

	// Logger — по умолчанию slog.Default().
	Logger *slog.Logger
}

// Publisher записывает манифесты и объявляет о них.
type Publisher struct {
	store     Store
	announcer Announcer
	metrics   *telemetry.Metrics
	logger    *slog.Logger
}

// Result — итог публикации одного манифеста.
type Result struct {
	DagID    string    `json:"dag_id"`
	BuildID  uuid.UUID `json:"build_id"`
	Location string    `json:"location"`
	Tasks    int       `json:"tasks"`
	Size     int64     `json:"size"`
}

// New создаёт Publisher.
func New(cfg Config) *Publisher {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Publisher{
		store:     cfg.Store,
		announcer: cfg.Announcer,
		metrics:   cfg.Metrics,
		logger:    logger,
	}
}

// Publish записывает манифест и объявляет о нём.
//
// Если объявление не удалось, манифест уже записан: повторная
// публикация перезапишет его тем же ключом.
func (p *Publisher) Publish(ctx context.Context, m *workflow.Manifest) (Result, error) {
	data, err := m.Marshal()
	if err != nil {
		return Result{}, err
	}

	location, err := p.store.Put(ctx, ManifestKey(m.DagID), data)
	if err != nil {
		return Result{}, fmt.Errorf("store manifest %s: %w", m.DagID, err)
	}
	if p.metrics != nil {
		p.metrics.ManifestsPublished.Inc()
	}

	res := Result{
		DagID:    m.DagID,
		BuildID:  m.BuildID,
		Location: location,
		Tasks:    m.TaskCount(),
		Size:     int64(len(data)),
	}
	logger := telemetry.WithDagID(p.logger, m.DagID)
	logger.Info("manifest stored", "location", location, "tasks", res.Tasks)

	if p.announcer != nil {
		err := p.announcer.PublishManifest(ctx, mq.ManifestPublishedPayload{
			BuildID:  res.BuildID,
			DagID:    res.DagID,
			Location: res.Location,
			Tasks:    res.Tasks,
			Size:     res.Size,
		})
		if err != nil {
			return res, fmt.Errorf("announce manifest %s: %w", m.DagID, err)
		}
	}
	return res, nil
}

// PublishGraphs строит манифесты графов и публикует их по порядку.
// Останавливается на первой ошибке и возвращает уже опубликованные.
func (p *Publisher) PublishGraphs(ctx context.Context, graphs []*workflow.Graph) ([]Result, error) {
	results := make([]Result, 0, len(graphs))
	for _, g := range graphs {
		if err := ctx.Err(); err != nil {
			return results, err
		}
		m, err := g.Manifest()
		if err != nil {
			return results, fmt.Errorf("manifest %s: %w", g.ID(), err)
		}
		res, err := p.Publish(ctx, m)
		if err != nil {
			return results, err
		}
		results = append(results, res)
	}
	return results, nil
}

// Manifest читает опубликованный манифест DAG.
func (p *Publisher) Manifest(ctx context.Context, dagID string) (*workflow.Manifest, error) {
	data, err := p.store.Get(ctx, ManifestKey(dagID))
	if err != nil {
		return nil, err
	}
	m, err := workflow.ParseManifest(data)
	if err != nil {
		return nil, fmt.Errorf("parse manifest %s: %w", dagID, err)
	}
	return m, nil
}

// DagIDs возвращает идентификаторы опубликованных DAG по алфавиту.
func (p *Publisher) DagIDs(ctx context.Context) ([]string, error) {
	keys, err := p.store.List(ctx, ManifestPrefix)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(keys))
	for _, k := range keys {
		if id, ok := DagIDFromKey(k); ok {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids, nil
}

// IsNotFound сообщает, что манифеста нет в хранилище.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

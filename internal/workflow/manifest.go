package workflow

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Manifest — сериализованное описание DAG для внешнего движка.
type Manifest struct {
	// BuildID — уникальный идентификатор сборки.
	BuildID uuid.UUID `json:"build_id"`

	// GeneratedAt — время сборки (UTC).
	GeneratedAt time.Time `json:"generated_at"`

	DagID       string            `json:"dag_id"`
	Description string            `json:"description,omitempty"`
	Schedule    string            `json:"schedule_interval,omitempty"`
	StartDate   time.Time         `json:"start_date"`
	EndDate     *time.Time        `json:"end_date,omitempty"`
	Catchup     bool              `json:"catchup"`
	Tags        []string          `json:"tags,omitempty"`
	DefaultArgs map[string]string `json:"default_args,omitempty"`

	// Nodes — узлы в порядке создания.
	Nodes []ManifestNode `json:"nodes"`

	// Edges — рёбра зависимостей.
	Edges []Edge `json:"edges"`
}

// ManifestNode — узел манифеста.
type ManifestNode struct {
	ID       string         `json:"id"`
	Kind     string         `json:"kind"`
	Parent   string         `json:"parent,omitempty"`
	Operator string         `json:"operator,omitempty"`
	Config   map[string]any `json:"config,omitempty"`
}

// Manifest проверяет граф на циклы и строит манифест.
func (g *Graph) Manifest() (*Manifest, error) {
	if err := g.Validate(); err != nil {
		return nil, err
	}

	p := g.params
	m := &Manifest{
		BuildID:     uuid.New(),
		GeneratedAt: time.Now().UTC(),
		DagID:       p.DagID,
		Description: p.Description,
		Schedule:    p.Schedule,
		StartDate:   p.StartDate,
		EndDate:     p.EndDate,
		Catchup:     p.Catchup,
		Tags:        p.Tags,
		DefaultArgs: p.DefaultArgs,
		Nodes:       make([]ManifestNode, 0, len(g.order)),
		Edges:       g.Edges(),
	}

	for _, n := range g.order {
		mn := ManifestNode{ID: n.FullID, Kind: n.Kind}
		if n.Parent != nil {
			mn.Parent = n.Parent.FullID
		}
		if n.Task != nil {
			mn.Operator = n.Task.Operator
			mn.Config = n.Task.Config
		}
		m.Nodes = append(m.Nodes, mn)
	}

	return m, nil
}

// TaskCount возвращает количество задач в манифесте.
func (m *Manifest) TaskCount() int {
	count := 0
	for _, n := range m.Nodes {
		if n.Kind == KindTask {
			count++
		}
	}
	return count
}

// Marshal сериализует манифест в JSON с отступами.
func (m *Manifest) Marshal() ([]byte, error) {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal manifest %s: %w", m.DagID, err)
	}
	return data, nil
}

// ParseManifest разбирает манифест из JSON.
func ParseManifest(data []byte) (*Manifest, error) {
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse manifest: %w", err)
	}
	if m.DagID == "" {
		return nil, fmt.Errorf("parse manifest: %w: dag_id", ErrEmptyID)
	}
	return &m, nil
}

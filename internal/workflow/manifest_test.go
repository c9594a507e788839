package workflow

import (
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"

	"github.com/shaiso/Concert/internal/domain"
)

func TestManifest_RoundTrip(t *testing.T) {
	m := NewMemory()
	root, err := m.CreateRoot(domain.DagParameters{
		DagID:     "sakila",
		Schedule:  "@daily",
		StartDate: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		Tags:      []string{"ingestion"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	group, _ := m.CreateGroup(root, "Start", nil)
	start, _ := m.CreateTask(root, Task{ID: "start", Operator: "empty"}, group)
	job, _ := m.CreateTask(root, Task{
		ID:       "query",
		Operator: "bigquery_insert_job",
		Config:   map[string]any{"query": "SELECT 1"},
	}, group)
	if err := m.Chain(root, start, job); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	g, _ := m.Graph("sakila")
	manifest, err := g.Manifest()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if manifest.BuildID == uuid.Nil {
		t.Error("BuildID should be set")
	}
	if manifest.TaskCount() != 2 {
		t.Errorf("expected 2 tasks, got %d", manifest.TaskCount())
	}

	data, err := manifest.Marshal()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	parsed, err := ParseManifest(data)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if parsed.DagID != "sakila" || parsed.Schedule != "@daily" {
		t.Errorf("unexpected header: %s %s", parsed.DagID, parsed.Schedule)
	}
	if len(parsed.Nodes) != g.Size() {
		t.Errorf("expected %d nodes, got %d", g.Size(), len(parsed.Nodes))
	}
	if diff := cmp.Diff(g.Edges(), parsed.Edges); diff != "" {
		t.Errorf("edges mismatch (-want +got):\n%s", diff)
	}
	if parsed.Nodes[2].Parent != "Start" || parsed.Nodes[2].Config["query"] != "SELECT 1" {
		t.Errorf("unexpected node: %+v", parsed.Nodes[2])
	}
}

func TestParseManifest_Invalid(t *testing.T) {
	if _, err := ParseManifest([]byte("{")); err == nil {
		t.Error("expected error for broken JSON")
	}
	if _, err := ParseManifest([]byte(`{"nodes":[]}`)); !errors.Is(err, ErrEmptyID) {
		t.Errorf("expected ErrEmptyID, got %v", err)
	}
}

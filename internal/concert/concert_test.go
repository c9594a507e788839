package concert

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/shaiso/Concert/internal/domain"
	"github.com/shaiso/Concert/internal/telemetry"
	"github.com/shaiso/Concert/internal/workflow"
)

// taskMotif — мотив из одной задачи.
type taskMotif struct {
	name  string
	bound bool
}

func (m taskMotif) Name() string { return m.name }

func (m taskMotif) Build(scope Scope) (workflow.Node, error) {
	if !m.bound {
		return nil, NotBound("taskMotif", m.name, "query")
	}
	return scope.Task(workflow.Task{ID: m.name, Operator: "empty"})
}

func motifs(names ...string) []Motif {
	out := make([]Motif, 0, len(names))
	for _, n := range names {
		out = append(out, taskMotif{name: n, bound: true})
	}
	return out
}

type staticCatalog []domain.Table

func (c staticCatalog) List(context.Context) ([]domain.Table, error) { return c, nil }

type failingCatalog struct{}

func (failingCatalog) List(context.Context) ([]domain.Table, error) {
	return nil, errors.New("connection refused")
}

func newScope(t *testing.T) (Scope, *workflow.Memory) {
	t.Helper()
	m := workflow.NewMemory()
	root, err := m.CreateRoot(domain.DagParameters{DagID: "dag"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return Scope{Service: m, Root: root, Logger: telemetry.Discard()}, m
}

// assertChain проверяет, что дети группы связаны одной цепочкой и других рёбер между ними нет.
func assertChain(t *testing.T, g *workflow.Graph, group string, want []string) {
	t.Helper()

	var ids []string
	for _, n := range g.Children(group) {
		ids = append(ids, n.FullID)
	}
	if diff := cmp.Diff(want, ids); diff != "" {
		t.Fatalf("children of %s mismatch (-want +got):\n%s", group, diff)
	}

	for i, id := range want {
		var expected []string
		if i > 0 {
			expected = []string{want[i-1]}
		}
		if diff := cmp.Diff(expected, g.Predecessors(id), cmpopts.EquateEmpty()); diff != "" {
			t.Errorf("predecessors of %s mismatch (-want +got):\n%s", id, diff)
		}
	}
}

func TestPhrase_BuildChainsMotifs(t *testing.T) {
	tests := []struct {
		name   string
		motifs []string
	}{
		{"single", []string{"a"}},
		{"pair", []string{"a", "b"}},
		{"five", []string{"a", "b", "c", "d", "e"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			scope, m := newScope(t)

			group, err := NewPhrase("P", motifs(tt.motifs...)...).Build(scope)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if group.ID() != "P" || !group.IsGroup() {
				t.Fatalf("unexpected phrase node: %s", group.ID())
			}

			g, _ := m.Graph("dag")
			want := make([]string, 0, len(tt.motifs))
			for _, n := range tt.motifs {
				want = append(want, "P."+n)
			}
			assertChain(t, g, "P", want)

			if got := len(g.Edges()); got != len(tt.motifs)-1 {
				t.Errorf("expected %d edges, got %d", len(tt.motifs)-1, got)
			}
		})
	}
}

func TestPhrase_Errors(t *testing.T) {
	scope, _ := newScope(t)

	_, err := NewPhrase("Empty").Build(scope)
	if !errors.Is(err, ErrEmptyPhrase) {
		t.Errorf("expected ErrEmptyPhrase, got %v", err)
	}
	var cfgErr *ConfigurationError
	if !errors.As(err, &cfgErr) || cfgErr.Name != "Empty" {
		t.Errorf("expected ConfigurationError for Empty, got %v", err)
	}

	_, err = NewPhrase("Raw.Start", motifs("start")...).Build(scope)
	if !errors.Is(err, ErrInvalidParameter) {
		t.Errorf("expected ErrInvalidParameter for dotted name, got %v", err)
	}

	_, err = NewPhrase("Unbound", taskMotif{name: "merge"}).Build(scope)
	if !errors.Is(err, ErrNotBound) {
		t.Errorf("expected ErrNotBound, got %v", err)
	}
	if !errors.As(err, &cfgErr) {
		t.Errorf("expected ConfigurationError, got %T", err)
	}
}

func TestPhrase_AddMotifSealedAfterBuild(t *testing.T) {
	scope, _ := newScope(t)

	p := NewPhrase("P")
	if err := p.AddMotif(taskMotif{name: "a", bound: true}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Len() != 1 {
		t.Fatalf("expected 1 motif, got %d", p.Len())
	}
	if _, err := p.Build(scope); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	err := p.AddMotif(taskMotif{name: "b", bound: true})
	if !errors.Is(err, ErrPhraseSealed) {
		t.Errorf("expected ErrPhraseSealed, got %v", err)
	}
	if p.Len() != 1 {
		t.Errorf("sealed phrase should keep 1 motif, got %d", p.Len())
	}
}

func TestMovement_BuildChainsPhrases(t *testing.T) {
	scope, m := newScope(t)

	mv := NewMovement("Movement_actor",
		NewPhrase("Start", motifs("start")...),
		NewPhrase("SourceToRawVault", motifs("export", "check")...),
		nil,
		NewPhrase("End", motifs("end")...),
	)
	if len(mv.Phrases()) != 3 {
		t.Fatalf("nil phrase should be skipped, got %d phrases", len(mv.Phrases()))
	}

	node, err := mv.Build(scope)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if node.ID() != "Movement_actor" {
		t.Errorf("unexpected movement node: %s", node.ID())
	}

	g, _ := m.Graph("dag")
	assertChain(t, g, "Movement_actor", []string{
		"Movement_actor.Start",
		"Movement_actor.SourceToRawVault",
		"Movement_actor.End",
	})
	assertChain(t, g, "Movement_actor.SourceToRawVault", []string{
		"Movement_actor.SourceToRawVault.export",
		"Movement_actor.SourceToRawVault.check",
	})
	if err := g.Validate(); err != nil {
		t.Errorf("graph should be acyclic: %v", err)
	}
}

func TestMovement_Empty(t *testing.T) {
	scope, _ := newScope(t)

	_, err := NewMovement("Movement_x").Build(scope)
	if !errors.Is(err, ErrEmptyMovement) {
		t.Errorf("expected ErrEmptyMovement, got %v", err)
	}

	_, err = NewMovement("Movement_y", NewPhrase("Start")).Build(scope)
	if !errors.Is(err, ErrEmptyPhrase) {
		t.Errorf("expected ErrEmptyPhrase, got %v", err)
	}

	_, err = NewMovement("Movement_x.Start", NewPhrase("Start", motifs("start")...)).Build(scope)
	var cfgErr *ConfigurationError
	if !errors.As(err, &cfgErr) || cfgErr.Component != "movement" || !errors.Is(err, ErrInvalidParameter) {
		t.Errorf("expected movement ConfigurationError, got %v", err)
	}
}

func tables(names ...string) staticCatalog {
	out := make(staticCatalog, 0, len(names))
	for _, n := range names {
		out = append(out, domain.Table{Name: n})
	}
	return out
}

func simpleBuilder(target domain.Table) (*Movement, error) {
	return NewMovement("Movement_"+target.Name,
		NewPhrase("Start", motifs("start")...),
		NewPhrase("End", motifs("end")...),
	), nil
}

func TestComposition_Build(t *testing.T) {
	m := workflow.NewMemory()
	metrics := telemetry.NewMetrics(prometheus.NewRegistry())
	c := NewComposition(CompositionConfig{
		Name:          "sakila",
		Source:        domain.SourceMySQL,
		DagParameters: domain.DagParameters{DagID: "sakila"},
		Service:       m,
		Catalog:       tables("actor", "film", "payment"),
		Logger:        telemetry.Discard(),
		Metrics:       metrics,
	})

	root, err := c.Build(context.Background(), simpleBuilder)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if root.ID() != "sakila" {
		t.Errorf("unexpected root id: %s", root.ID())
	}

	g, _ := m.Graph("sakila")
	top := g.Children("")
	if len(top) != 3 {
		t.Fatalf("expected 3 movements, got %d", len(top))
	}

	// Между movements разных целей рёбер нет.
	for _, mv := range top {
		if len(mv.DependsOn) != 0 || len(mv.Dependents) != 0 {
			t.Errorf("movement %s should have no edges", mv.FullID)
		}
	}
	for _, e := range g.Edges() {
		if owner(e.From) != owner(e.To) {
			t.Errorf("edge %s → %s crosses movements", e.From, e.To)
		}
	}

	if got := testutil.ToFloat64(metrics.RootsBuilt); got != 1 {
		t.Errorf("expected 1 root metric, got %v", got)
	}
	if got := testutil.ToFloat64(metrics.MovementsBuilt.WithLabelValues("mysql")); got != 3 {
		t.Errorf("expected 3 movement metrics, got %v", got)
	}
}

func owner(id string) string {
	for i := 0; i < len(id); i++ {
		if id[i] == '.' {
			return id[:i]
		}
	}
	return id
}

func TestComposition_BuildMulti(t *testing.T) {
	m := workflow.NewMemory()
	c := NewComposition(CompositionConfig{
		Name:          "sakila",
		DagParameters: domain.DagParameters{DagID: "sakila", Tags: []string{"mysql"}},
		Service:       m,
		Catalog:       tables("actor", "film"),
		Logger:        telemetry.Discard(),
	})

	roots, err := c.BuildMulti(context.Background(), simpleBuilder)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var ids []string
	for _, r := range roots {
		ids = append(ids, r.ID())
	}
	if diff := cmp.Diff([]string{"sakila.actor", "sakila.film"}, ids); diff != "" {
		t.Errorf("root ids mismatch (-want +got):\n%s", diff)
	}

	for _, id := range ids {
		g, err := m.Graph(id)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got := len(g.Children("")); got != 1 {
			t.Errorf("%s: expected exactly 1 movement, got %d", id, got)
		}
		if diff := cmp.Diff([]string{"mysql"}, g.Params().Tags); diff != "" {
			t.Errorf("%s: tags mismatch (-want +got):\n%s", id, diff)
		}
	}
}

func TestComposition_Errors(t *testing.T) {
	tests := []struct {
		name    string
		catalog Catalog
		builder MovementBuilder
		wantErr error
	}{
		{
			name:    "builder failure",
			catalog: tables("actor"),
			builder: func(domain.Table) (*Movement, error) {
				return nil, fmt.Errorf("boom: %w", ErrInvalidParameter)
			},
			wantErr: ErrInvalidParameter,
		},
		{
			name:    "nil movement",
			catalog: tables("actor"),
			builder: func(domain.Table) (*Movement, error) { return nil, nil },
			wantErr: ErrInvalidParameter,
		},
		{
			name:    "empty movement",
			catalog: tables("actor"),
			builder: func(domain.Table) (*Movement, error) { return NewMovement("Movement_actor"), nil },
			wantErr: ErrEmptyMovement,
		},
		{
			name:    "target name with separator",
			catalog: tables("x", "x.Start"),
			builder: simpleBuilder,
			wantErr: ErrInvalidParameter,
		},
		{
			name:    "duplicate target",
			catalog: tables("actor", "actor"),
			builder: simpleBuilder,
			wantErr: ErrInvalidParameter,
		},
		{
			name:    "duplicate movement name",
			catalog: tables("actor", "film"),
			builder: func(domain.Table) (*Movement, error) {
				return NewMovement("Movement_shared", NewPhrase("Start", motifs("start")...)), nil
			},
			wantErr: ErrInvalidParameter,
		},
		{
			name:    "nil catalog",
			builder: simpleBuilder,
			wantErr: ErrInvalidParameter,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewComposition(CompositionConfig{
				DagParameters: domain.DagParameters{DagID: "dag"},
				Service:       workflow.NewMemory(),
				Catalog:       tt.catalog,
				Logger:        telemetry.Discard(),
			})

			if _, err := c.Build(context.Background(), tt.builder); !errors.Is(err, tt.wantErr) {
				t.Errorf("Build: expected %v, got %v", tt.wantErr, err)
			}
		})
	}

	c := NewComposition(CompositionConfig{
		DagParameters: domain.DagParameters{DagID: "dag"},
		Service:       workflow.NewMemory(),
		Catalog:       failingCatalog{},
		Logger:        telemetry.Discard(),
	})
	if _, err := c.BuildMulti(context.Background(), simpleBuilder); err == nil {
		t.Error("expected catalog error")
	}
}

func TestComposition_SeparatorInTargetName(t *testing.T) {
	m := workflow.NewMemory()
	c := NewComposition(CompositionConfig{
		DagParameters: domain.DagParameters{DagID: "dag"},
		Service:       m,
		Catalog:       tables("x", "x.Start"),
		Logger:        telemetry.Discard(),
	})

	_, err := c.Build(context.Background(), simpleBuilder)
	var cfgErr *ConfigurationError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("expected ConfigurationError, got %v", err)
	}
	if cfgErr.Component != "target" || cfgErr.Name != "x.Start" {
		t.Errorf("unexpected error context: %+v", cfgErr)
	}
	if _, err := m.Graph("dag"); !errors.Is(err, workflow.ErrUnknownRoot) {
		t.Errorf("rejected catalog must not leave a root, got %v", err)
	}

	if _, err := c.BuildMulti(context.Background(), simpleBuilder); !errors.As(err, &cfgErr) {
		t.Errorf("BuildMulti: expected ConfigurationError, got %v", err)
	}
	if got := len(m.Graphs()); got != 0 {
		t.Errorf("expected no roots, got %d", got)
	}
}

func TestComposition_FailedBuildCanBeRetried(t *testing.T) {
	m := workflow.NewMemory()
	failOn := "film"
	builder := func(target domain.Table) (*Movement, error) {
		if target.Name == failOn {
			return NewMovement("Movement_" + target.Name), nil
		}
		return simpleBuilder(target)
	}
	c := NewComposition(CompositionConfig{
		DagParameters: domain.DagParameters{DagID: "sakila"},
		Service:       m,
		Catalog:       tables("actor", "film"),
		Logger:        telemetry.Discard(),
	})

	if _, err := c.Build(context.Background(), builder); !errors.Is(err, ErrEmptyMovement) {
		t.Fatalf("expected ErrEmptyMovement, got %v", err)
	}
	if _, err := m.Graph("sakila"); !errors.Is(err, workflow.ErrUnknownRoot) {
		t.Errorf("failed root must be dropped, got %v", err)
	}
	if _, err := c.BuildMulti(context.Background(), builder); !errors.Is(err, ErrEmptyMovement) {
		t.Fatalf("BuildMulti: expected ErrEmptyMovement, got %v", err)
	}
	if got := len(m.Graphs()); got != 0 {
		t.Errorf("failed BuildMulti must drop every root, got %d", got)
	}

	failOn = ""
	if _, err := c.Build(context.Background(), builder); err != nil {
		t.Fatalf("retry: unexpected error: %v", err)
	}
	g, err := m.Graph("sakila")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := g.Descendants("Movement_actor"); len(got) != 4 {
		t.Errorf("expected 4 descendants of Movement_actor, got %v", got)
	}
	if _, err := c.BuildMulti(context.Background(), builder); err != nil {
		t.Fatalf("retry multi: unexpected error: %v", err)
	}
}

func TestComposition_BuildCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	c := NewComposition(CompositionConfig{
		DagParameters: domain.DagParameters{DagID: "dag"},
		Service:       workflow.NewMemory(),
		Catalog:       tables("actor"),
		Logger:        telemetry.Discard(),
	})
	if _, err := c.Build(ctx, simpleBuilder); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestVariants_Lookup(t *testing.T) {
	v := Variants{domain.SourceMySQL: simpleBuilder}

	if _, err := v.Lookup(domain.SourceMySQL); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	_, err := v.Lookup(domain.SourceKind("oracle"))
	var variantErr *UnsupportedVariantError
	if !errors.As(err, &variantErr) {
		t.Fatalf("expected UnsupportedVariantError, got %v", err)
	}
	if variantErr.Variant != "oracle" {
		t.Errorf("expected variant oracle, got %s", variantErr.Variant)
	}
	if !errors.Is(err, ErrUnsupportedVariant) {
		t.Error("error should wrap ErrUnsupportedVariant")
	}
	if diff := cmp.Diff([]string{"mysql"}, variantErr.Known); diff != "" {
		t.Errorf("known mismatch (-want +got):\n%s", diff)
	}
}

package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/shaiso/Concert/internal/concert"
	"github.com/shaiso/Concert/internal/config"
	"github.com/shaiso/Concert/internal/domain"
	"github.com/shaiso/Concert/internal/telemetry"
	"github.com/shaiso/Concert/internal/workflow"
)

func testProject(t *testing.T) Project {
	t.Helper()
	t.Setenv("CONCERT_TEST_PROJECT", "concert-dev")
	return Project{
		EnvPath:         "../config/testdata/environment.yaml",
		CompositionPath: "../config/testdata/composition.yaml",
		Logger:          telemetry.Discard(),
		Metrics:         telemetry.NewMetrics(prometheus.NewRegistry()),
	}
}

type buffers struct {
	out, err bytes.Buffer
}

func (b *buffers) outputFn(jsonMode bool) func() *Output {
	return func() *Output { return NewOutput(jsonMode, &b.out, &b.err) }
}

func TestOutput_Table(t *testing.T) {
	var buf bytes.Buffer
	NewOutput(false, &buf, &buf).Print([]string{"DAG_ID", "TASKS"}, [][]string{{"sakila.actor", "7"}}, nil)

	want := "DAG_ID        TASKS\n" +
		"------        -----\n" +
		"sakila.actor  7\n"
	if diff := cmp.Diff(want, buf.String()); diff != "" {
		t.Errorf("table mismatch (-want +got):\n%s", diff)
	}
}

func TestValidateCmd(t *testing.T) {
	project := testProject(t)
	var b buffers

	cmd := NewValidateCmd(func() Project { return project }, b.outputFn(true))
	cmd.SetArgs([]string{"--next", "2"})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var got ValidateResult
	if err := json.Unmarshal(b.out.Bytes(), &got); err != nil {
		t.Fatalf("decode output: %v", err)
	}
	if got.Name != "sakila_ingestion" || got.DagID != "sakila_ingestion" || got.Source != "mysql" {
		t.Errorf("unexpected result: %+v", got)
	}
	if len(got.NextRuns) != 2 {
		t.Errorf("expected 2 next runs, got %v", got.NextRuns)
	}

	want := []TableResult{
		{Name: "actor", PrimaryKey: "actor_id", LoadMode: "merge", Fields: 4, PII: []string{"first_name", "last_name"}},
		{Name: "film", PrimaryKey: "film_id", LoadMode: "load", Fields: 3},
	}
	if diff := cmp.Diff(want, got.Tables); diff != "" {
		t.Errorf("tables mismatch (-want +got):\n%s", diff)
	}
	if !strings.Contains(b.err.String(), "Configuration is valid") {
		t.Errorf("expected success message, got %q", b.err.String())
	}
}

func TestTableResults_Modes(t *testing.T) {
	tables := []domain.Table{
		{Name: "participant"},
		{Name: "landing_page", Overrides: &domain.MovementParameters{ExtractionQuery: "SELECT 1"}},
	}

	var modes []string
	for _, r := range tableResults(domain.Config{Source: domain.SourceBigQuery}, tables) {
		modes = append(modes, r.LoadMode)
	}
	if diff := cmp.Diff([]string{"table", "query"}, modes); diff != "" {
		t.Errorf("reverse etl modes mismatch (-want +got):\n%s", diff)
	}

	modes = nil
	for _, r := range tableResults(domain.Config{Source: domain.SourceMySQL}, tables) {
		modes = append(modes, r.LoadMode)
	}
	if diff := cmp.Diff([]string{"merge", "merge"}, modes); diff != "" {
		t.Errorf("ingestion modes mismatch (-want +got):\n%s", diff)
	}
}

func TestValidateCmd_InvalidConfig(t *testing.T) {
	dir := t.TempDir()
	env := filepath.Join(dir, "environment.yaml")
	comp := filepath.Join(dir, "composition.yaml")
	if err := os.WriteFile(env, []byte("project: p\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(comp, []byte("name: broken\nsource: mysql\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	var b buffers
	cmd := NewValidateCmd(func() Project {
		return Project{EnvPath: env, CompositionPath: comp, Logger: telemetry.Discard()}
	}, b.outputFn(false))
	cmd.SetArgs([]string{})

	err := cmd.Execute()
	if !errors.Is(err, config.ErrInvalidConfig) {
		t.Fatalf("expected ErrInvalidConfig, got %v", err)
	}
}

func TestRenderCmd_OutDir(t *testing.T) {
	project := testProject(t)
	dir := t.TempDir()
	var b buffers

	cmd := NewRenderCmd(func() Project { return project }, b.outputFn(false))
	cmd.SetArgs([]string{"--multi", "--out-dir", dir})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for _, id := range []string{"sakila_ingestion.actor", "sakila_ingestion.film"} {
		data, err := os.ReadFile(filepath.Join(dir, id+".json"))
		if err != nil {
			t.Fatalf("manifest %s not written: %v", id, err)
		}
		m, err := workflow.ParseManifest(data)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if m.DagID != id || m.TaskCount() == 0 {
			t.Errorf("unexpected manifest %s: %d tasks", m.DagID, m.TaskCount())
		}
		if !strings.Contains(b.out.String(), id) {
			t.Errorf("table should list %s", id)
		}
	}
	if got := testutil.ToFloat64(project.Metrics.RootsBuilt); got != 2 {
		t.Errorf("expected 2 roots built, got %v", got)
	}
}

func TestRenderCmd_JSON(t *testing.T) {
	project := testProject(t)
	var b buffers

	cmd := NewRenderCmd(func() Project { return project }, b.outputFn(true))
	cmd.SetArgs([]string{})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var got []workflow.Manifest
	if err := json.Unmarshal(b.out.Bytes(), &got); err != nil {
		t.Fatalf("decode output: %v", err)
	}
	if len(got) != 1 || got[0].DagID != "sakila_ingestion" {
		t.Fatalf("expected a single sakila_ingestion manifest, got %d", len(got))
	}
	if got[0].Schedule != "@daily" {
		t.Errorf("unexpected schedule: %s", got[0].Schedule)
	}
}

func TestRenderCmd_UnknownCatalog(t *testing.T) {
	project := testProject(t)
	var b buffers

	cmd := NewRenderCmd(func() Project { return project }, b.outputFn(false))
	cmd.SetArgs([]string{"--catalog", "mongo"})

	var uv *concert.UnsupportedVariantError
	if err := cmd.Execute(); !errors.As(err, &uv) || uv.Variant != "mongo" {
		t.Fatalf("expected UnsupportedVariantError for mongo, got %v", err)
	}
}

func TestCatalogCmd(t *testing.T) {
	project := testProject(t)
	var b buffers

	cmd := NewCatalogCmd(func() Project { return project }, b.outputFn(false))
	cmd.SetArgs([]string{})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	out := b.out.String()
	for _, want := range []string{"TABLE", "actor", "first_name,last_name", "film", "load"} {
		if !strings.Contains(out, want) {
			t.Errorf("output should contain %q:\n%s", want, out)
		}
	}
}

func TestClient(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v1/manifests", func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"data":[{"dag_id":"sakila.actor","announced":true,"tasks":7}],"total":1}`))
	})
	mux.HandleFunc("GET /api/v1/manifests/{dag_id}", func(w http.ResponseWriter, r *http.Request) {
		if r.PathValue("dag_id") != "sakila.actor" {
			w.WriteHeader(http.StatusNotFound)
			w.Write([]byte(`{"error":{"code":"NOT_FOUND","message":"manifest not found"}}`))
			return
		}
		w.Write([]byte(`{"data":{"dag_id":"sakila.actor","nodes":[{"id":"start","kind":"task","operator":"start"}],"edges":[]}}`))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	client := NewClient(srv.URL)

	items, err := client.ListManifests()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if diff := cmp.Diff([]ManifestSummary{{DagID: "sakila.actor", Announced: true, Tasks: 7}}, items); diff != "" {
		t.Errorf("manifests mismatch (-want +got):\n%s", diff)
	}

	m, err := client.GetManifest("sakila.actor")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if m.TaskCount() != 1 {
		t.Errorf("expected 1 task, got %d", m.TaskCount())
	}

	var apiErr *APIError
	if _, err := client.GetManifest("missing"); !errors.As(err, &apiErr) || apiErr.Status != http.StatusNotFound {
		t.Errorf("expected 404 APIError, got %v", err)
	}
}

func TestManifestsShowCmd(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"data":{"dag_id":"d","nodes":[` +
			`{"id":"Movement_actor","kind":"group"},` +
			`{"id":"Movement_actor.Start.start","kind":"task","operator":"start","parent":"Movement_actor"}` +
			`],"edges":[]}}`))
	}))
	t.Cleanup(srv.Close)

	var b buffers
	cmd := NewManifestsCmd(func() *Client { return NewClient(srv.URL) }, b.outputFn(false))
	cmd.SetArgs([]string{"show", "d"})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(b.out.String(), "Movement_actor.Start.start") {
		t.Errorf("unexpected output:\n%s", b.out.String())
	}
}

func TestOutput_EmptyTable(t *testing.T) {
	var out, errOut bytes.Buffer
	NewOutput(false, &out, &errOut).Print([]string{"DAG_ID"}, nil, nil)

	if out.Len() != 0 {
		t.Errorf("stdout should stay empty, got %q", out.String())
	}
	if errOut.String() != "No results.\n" {
		t.Errorf("unexpected notice: %q", errOut.String())
	}
}

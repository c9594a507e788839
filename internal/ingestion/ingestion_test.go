package ingestion

import (
	"context"
	"errors"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/shaiso/Concert/internal/bigquery"
	"github.com/shaiso/Concert/internal/concert"
	"github.com/shaiso/Concert/internal/domain"
	"github.com/shaiso/Concert/internal/motif"
	"github.com/shaiso/Concert/internal/phrase"
	"github.com/shaiso/Concert/internal/telemetry"
	"github.com/shaiso/Concert/internal/workflow"
)

func testEnvironment() domain.Environment {
	return domain.Environment{
		Project:         "p",
		Region:          "us-central1",
		RawVaultBucket:  "rv",
		ArtifactBucket:  "artifacts",
		RawVaultDataset: "raw_vault",
		RawDataset:      "raw",
		TrustedDataset:  "trusted",
		PIIDataset:      "pii",
		DataLakeConnID:  "lake",
	}
}

func sakilaConfig() domain.Config {
	return domain.Config{
		Name:             "sakila",
		Source:           domain.SourceMySQL,
		SourceName:       "sakila",
		TablePrefix:      "sakila",
		SecretManagerURI: "projects/p/secrets/sakila",
		DagParameters: domain.DagParameters{
			DagID:     "sakila_ingestion",
			StartDate: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		},
		Tables: []domain.Table{
			{
				Name:       "actor",
				PrimaryKey: "actor_id",
				Fields: []domain.Field{
					{Name: "actor_id", Type: "INT64"},
					{Name: "first_name", PII: true},
					{Name: "last_update", Type: "TIMESTAMP"},
				},
			},
			{
				Name:       "film",
				PrimaryKey: "film_id",
				Fields:     []domain.Field{{Name: "film_id", Type: "INT64"}, {Name: "title"}},
			},
		},
		Environment: testEnvironment(),
	}
}

func storageConfig() domain.Config {
	return domain.Config{
		Name:       "storage_example",
		Source:     domain.SourceGCS,
		SourceName: "example",
		DagParameters: domain.DagParameters{
			DagID: "storage_ingestion",
		},
		MovementTemplate: domain.MovementParameters{
			DataPartitioning: domain.DataPartitioning{
				PartitioningType:       "time",
				PartitionGranularity:   "YEAR",
				PartitionField:         "_logical_ts",
				StoragePartitionSchema: "_load_flag=full/_logical_ts=1970-01-01",
				DestinationPartition:   "1970",
			},
		},
		Tables: []domain.Table{
			{
				Name: "gcs_parquet",
				Overrides: &domain.MovementParameters{
					ExtractConnectionID: "google_cloud_example",
					SourceFileURI:       "gs://landing/example/000000000000.parquet",
				},
			},
			{
				Name: "s3_parquet",
				Overrides: &domain.MovementParameters{
					ExtractConnectionID: "aws_example",
					SourceStorageType:   "s3",
					SourceFileURI:       "s3://bucket/0.parquet",
				},
			},
		},
		Environment: testEnvironment(),
	}
}

func newComposition(t *testing.T, cfg domain.Config) (*Composition, *workflow.Memory) {
	t.Helper()
	m := workflow.NewMemory()
	return NewComposition(cfg, Options{Service: m, Logger: telemetry.Discard()}), m
}

func childIDs(g *workflow.Graph, id string) []string {
	var ids []string
	for _, n := range g.Children(id) {
		ids = append(ids, n.LocalID)
	}
	return ids
}

func TestResolve(t *testing.T) {
	cfg := sakilaConfig()

	loc, err := Resolve(cfg, cfg.Tables[0], "actor")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := Locations{
		RawVaultPrefix: "gs://rv/mysql/sakila/actor",
		RawVaultTable:  "p.raw_vault.sakila_actor",
		RawTable:       "p.raw.sakila_actor",
		PIITable:       "p.pii.sakila_actor",
		TrustedTable:   "p.trusted.sakila_actor",
	}
	if diff := cmp.Diff(want, loc); diff != "" {
		t.Errorf("locations mismatch (-want +got):\n%s", diff)
	}

	loc, err = Resolve(cfg, cfg.Tables[1], "film")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if loc.PIITable != "" {
		t.Errorf("table without pii fields should have no pii table, got %s", loc.PIITable)
	}

	storage := storageConfig()
	loc, err = Resolve(storage, storage.Tables[0], "gcs_parquet")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if loc.RawVaultPrefix != "gs://rv/storage/example/gcs_parquet" {
		t.Errorf("unexpected storage prefix: %s", loc.RawVaultPrefix)
	}
	if loc.RawTable != "p.raw.gcs_parquet" {
		t.Errorf("unexpected raw table without prefix: %s", loc.RawTable)
	}
}

func TestResolve_Errors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*domain.Config)
		table  int
	}{
		{name: "no project", mutate: func(c *domain.Config) { c.Environment.Project = "" }},
		{name: "no raw vault bucket", mutate: func(c *domain.Config) { c.Environment.RawVaultBucket = "" }},
		{name: "no raw dataset", mutate: func(c *domain.Config) { c.Environment.RawDataset = "" }},
		{name: "no source name", mutate: func(c *domain.Config) { c.SourceName = "" }},
		{name: "pii without dataset", mutate: func(c *domain.Config) { c.Environment.PIIDataset = "" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := sakilaConfig()
			tt.mutate(&cfg)

			_, err := Resolve(cfg, cfg.Tables[tt.table], "actor")
			var cfgErr *concert.ConfigurationError
			if !errors.As(err, &cfgErr) {
				t.Fatalf("expected ConfigurationError, got %v", err)
			}
			if !errors.Is(err, concert.ErrInvalidParameter) {
				t.Errorf("expected ErrInvalidParameter, got %v", err)
			}
		})
	}
}

func TestDataIngestionMovement_SetupIsRepeatable(t *testing.T) {
	cfg := sakilaConfig()
	skeleton := NewDataIngestionMovement(cfg, cfg.Tables[1],
		phrase.NewSourceToRawVault("", func(destination string) concert.Motif {
			return motif.NewExportQueryToStorage("", "", "SELECT 1", "p=1").BindDestination(destination)
		}),
		phrase.NewRawVaultToRawLoad("", motif.NewLoadStorageToTable("", "", "", domain.DataPartitioning{})),
	)

	first, err := skeleton.Setup(domain.MovementParameters{Name: "film"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := skeleton.Setup(domain.MovementParameters{Name: "film_text"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if first.Name() != "Movement_film" || second.Name() != "Movement_film_text" {
		t.Errorf("unexpected names: %s, %s", first.Name(), second.Name())
	}

	var names []string
	for _, p := range first.Phrases() {
		names = append(names, p.Name())
	}
	want := []string{phrase.NameStart, phrase.NameSourceToRawVault, phrase.NameRawVaultToRaw, phrase.NameEnd}
	if diff := cmp.Diff(want, names); diff != "" {
		t.Errorf("phrases mismatch (-want +got):\n%s", diff)
	}
}

func TestDataIngestionMovement_TrustedNeedsDataset(t *testing.T) {
	cfg := sakilaConfig()
	cfg.Environment.TrustedDataset = ""

	m := NewDataIngestionMovement(cfg, cfg.Tables[1], phrase.NewSourceToRawVault("", nil),
		phrase.NewRawVaultToRawLoad("", motif.NewLoadStorageToTable("", "", "", domain.DataPartitioning{}))).
		WithTrustedQueries([]string{"SELECT 1"})

	if _, err := m.Setup(domain.MovementParameters{Name: "film"}); !errors.Is(err, concert.ErrInvalidParameter) {
		t.Errorf("expected ErrInvalidParameter, got %v", err)
	}
}

func TestComposition_Rdbms(t *testing.T) {
	cfg := sakilaConfig()
	cfg.TrustedQueries = []string{"INSERT INTO {trusted_table} SELECT * FROM {raw_table}"}
	c, mem := newComposition(t, cfg)

	roots, err := c.AutoBuild(context.Background(), false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(roots) != 1 || roots[0].ID() != "sakila_ingestion" {
		t.Fatalf("unexpected roots: %v", roots)
	}
	g, _ := mem.Graph("sakila_ingestion")

	if diff := cmp.Diff([]string{"Movement_actor", "Movement_film"}, childIDs(g, "")); diff != "" {
		t.Errorf("movements mismatch (-want +got):\n%s", diff)
	}
	wantPhrases := []string{"Start", "SourceToRawVault", "RawVaultToRaw", "RawToTrusted", "End"}
	if diff := cmp.Diff(wantPhrases, childIDs(g, "Movement_actor")); diff != "" {
		t.Errorf("phrases mismatch (-want +got):\n%s", diff)
	}
	for i := 1; i < len(wantPhrases); i++ {
		id := "Movement_actor." + wantPhrases[i]
		want := []string{"Movement_actor." + wantPhrases[i-1]}
		if diff := cmp.Diff(want, g.Predecessors(id)); diff != "" {
			t.Errorf("%s predecessors mismatch (-want +got):\n%s", id, diff)
		}
	}

	export := g.Node("Movement_actor.SourceToRawVault.ExportRdbmsTable.jdbc_to_raw_vault")
	if export == nil {
		t.Fatalf("export task not found: %v", childIDs(g, "Movement_actor.SourceToRawVault.ExportRdbmsTable"))
	}
	args := export.Task.Config["job"].(map[string]any)["pyspark_job"].(map[string]any)["args"].([]string)
	if !strings.HasPrefix(args[len(args)-1], "gs://rv/mysql/sakila/actor/") {
		t.Errorf("unexpected export destination: %s", args[len(args)-1])
	}

	merge := g.Node("Movement_actor.RawVaultToRaw.MergeTable")
	if merge == nil {
		t.Fatalf("merge task not found: %v", childIDs(g, "Movement_actor.RawVaultToRaw"))
	}
	sql := merge.Task.Config["configuration"].(bigquery.JobConfiguration).Query.Query
	for _, want := range []string{"`p.raw.sakila_actor` AS main", "`p.raw_vault.sakila_actor`", "INNER JOIN `p.pii.sakila_actor` PII USING (actor_id)"} {
		if !strings.Contains(sql, want) {
			t.Errorf("merge query should contain %q:\n%s", want, sql)
		}
	}

	trusted := g.Node("Movement_actor.RawToTrusted.to_trusted_1")
	if q := trusted.Task.Config["configuration"].(bigquery.JobConfiguration).Query.Query; q != "INSERT INTO p.trusted.sakila_actor SELECT * FROM p.raw.sakila_actor" {
		t.Errorf("unexpected trusted query: %s", q)
	}

	for _, e := range g.Edges() {
		if strings.HasPrefix(e.From, "Movement_actor") != strings.HasPrefix(e.To, "Movement_actor") {
			t.Errorf("edge between movements: %s -> %s", e.From, e.To)
		}
	}
}

func TestComposition_LoadModeWithCreateTable(t *testing.T) {
	cfg := sakilaConfig()
	cfg.Source = domain.SourcePostgreSQL
	cfg.MovementTemplate = domain.MovementParameters{LoadMode: domain.LoadModeLoad, CreateTable: domain.Bool(true)}
	c, mem := newComposition(t, cfg)

	if _, err := c.AutoBuild(context.Background(), false); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	g, _ := mem.Graph("sakila_ingestion")

	want := []string{"Start", "SourceToRawVault", "CreateOrUpdateTable", "RawVaultToRaw", "End"}
	if diff := cmp.Diff(want, childIDs(g, "Movement_film")); diff != "" {
		t.Errorf("phrases mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"LoadStorageToTable"}, childIDs(g, "Movement_film.RawVaultToRaw")); diff != "" {
		t.Errorf("load mode motifs mismatch (-want +got):\n%s", diff)
	}
	if g.Node("Movement_film.CreateOrUpdateTable.CreateOrUpdateTable") == nil {
		t.Errorf("unexpected create table motifs: %v", childIDs(g, "Movement_film.CreateOrUpdateTable"))
	}
	if !strings.HasPrefix(g.Node("Movement_film.SourceToRawVault.ExportRdbmsTable.jdbc_to_raw_vault").
		Task.Config["job"].(map[string]any)["pyspark_job"].(map[string]any)["args"].([]string)[1], "jdbc:postgresql://") {
		t.Error("postgresql source should use the postgresql driver")
	}
}

func TestComposition_StorageMulti(t *testing.T) {
	c, mem := newComposition(t, storageConfig())

	roots, err := c.AutoBuild(context.Background(), true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var ids []string
	for _, r := range roots {
		ids = append(ids, r.ID())
	}
	if diff := cmp.Diff([]string{"storage_ingestion.gcs_parquet", "storage_ingestion.s3_parquet"}, ids); diff != "" {
		t.Errorf("root ids mismatch (-want +got):\n%s", diff)
	}

	tests := []struct {
		root, movement, origin string
	}{
		{root: "storage_ingestion.gcs_parquet", movement: "Movement_gcs_parquet", origin: "gcs"},
		{root: "storage_ingestion.s3_parquet", movement: "Movement_s3_parquet", origin: "s3"},
	}
	for _, tt := range tests {
		g, err := mem.Graph(tt.root)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if diff := cmp.Diff([]string{tt.movement}, childIDs(g, "")); diff != "" {
			t.Errorf("%s: movements mismatch (-want +got):\n%s", tt.root, diff)
		}

		copyTask := g.Node(tt.movement + ".SourceToRawVault.StorageToStorage")
		if copyTask == nil {
			t.Fatalf("%s: copy task not found", tt.root)
		}
		if got := copyTask.Task.Config["origin_storage"]; got != tt.origin {
			t.Errorf("%s: origin storage = %v, want %s", tt.root, got, tt.origin)
		}
		name := strings.TrimPrefix(tt.movement, "Movement_")
		wantFile := "gs://rv/storage/example/" + name + "/_load_flag=full/_logical_ts=1970-01-01/0.parquet"
		if got := copyTask.Task.Config["destiny_file_uri"]; got != wantFile {
			t.Errorf("%s: destiny file = %v, want %s", tt.root, got, wantFile)
		}

		load := g.Node(tt.movement + ".RawVaultToRaw.LoadStorageToTable")
		if load == nil {
			t.Fatalf("%s: load task not found", tt.root)
		}
		cfg := load.Task.Config["configuration"].(bigquery.JobConfiguration)
		if cfg.Load.DestinationTable.TableID != name+"$1970" {
			t.Errorf("%s: unexpected destination %+v", tt.root, cfg.Load.DestinationTable)
		}
	}
}

func TestComposition_Variants(t *testing.T) {
	c, _ := newComposition(t, sakilaConfig())

	for _, kind := range domain.SourceKinds() {
		if _, err := c.Variants().Lookup(kind); err != nil {
			t.Errorf("%s: unexpected error: %v", kind, err)
		}
	}

	cfg := sakilaConfig()
	cfg.Source = "oracle"
	c, _ = newComposition(t, cfg)
	_, err := c.AutoBuild(context.Background(), false)
	var variantErr *concert.UnsupportedVariantError
	if !errors.As(err, &variantErr) {
		t.Fatalf("expected UnsupportedVariantError, got %v", err)
	}
	if variantErr.Variant != "oracle" {
		t.Errorf("unexpected variant: %s", variantErr.Variant)
	}
}

func TestComposition_StorageRejectsUnknownStorage(t *testing.T) {
	cfg := storageConfig()
	cfg.Tables = cfg.Tables[:1]
	cfg.Tables[0].Overrides.SourceStorageType = "ftp"
	c, _ := newComposition(t, cfg)

	_, err := c.AutoBuild(context.Background(), false)
	if !errors.Is(err, concert.ErrUnsupportedVariant) {
		t.Errorf("expected ErrUnsupportedVariant, got %v", err)
	}
}

func reverseEtlConfig() domain.Config {
	env := testEnvironment()
	env.ReverseEtlBucket = "retl"
	return domain.Config{
		Name:        "crm_reverse_etl",
		Source:      domain.SourceBigQuery,
		SourceName:  "crm",
		TablePrefix: "crm",
		DagParameters: domain.DagParameters{
			DagID: "crm_reverse_etl",
		},
		Tables: []domain.Table{
			{Name: "participant"},
			{
				Name: "landing_page",
				Overrides: &domain.MovementParameters{
					ExtractionQuery: "SELECT * FROM `{raw_table}` WHERE name = '{table}'",
				},
			},
		},
		Environment: env,
	}
}

func TestResolveReverseEtl(t *testing.T) {
	loc, err := ResolveReverseEtl(reverseEtlConfig(), "participant")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := ReverseEtlLocations{
		Prefix:       "gs://retl/reverse_etl/crm/participant",
		SourceTable:  "p.raw.crm_participant",
		TrustedTable: "p.trusted.crm_participant",
	}
	if diff := cmp.Diff(want, loc); diff != "" {
		t.Errorf("locations mismatch (-want +got):\n%s", diff)
	}

	cfg := reverseEtlConfig()
	cfg.Environment.ReverseEtlBucket = ""
	if _, err := ResolveReverseEtl(cfg, "participant"); !errors.Is(err, concert.ErrInvalidParameter) {
		t.Errorf("expected ErrInvalidParameter, got %v", err)
	}
}

func TestComposition_ReverseEtl(t *testing.T) {
	c, mem := newComposition(t, reverseEtlConfig())

	roots, err := c.AutoBuild(context.Background(), false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	g, _ := mem.Graph(roots[0].ID())

	if diff := cmp.Diff([]string{"Movement_participant", "Movement_landing_page"}, childIDs(g, "")); diff != "" {
		t.Errorf("movements mismatch (-want +got):\n%s", diff)
	}
	wantPhrases := []string{phrase.NameStart, phrase.NameWarehouseToStorage, phrase.NameEnd}
	for _, mv := range []string{"Movement_participant", "Movement_landing_page"} {
		if diff := cmp.Diff(wantPhrases, childIDs(g, mv)); diff != "" {
			t.Errorf("%s phrases mismatch (-want +got):\n%s", mv, diff)
		}
		if diff := cmp.Diff([]string{mv + ".Start"}, g.Predecessors(mv+".WarehouseToStorage")); diff != "" {
			t.Errorf("%s predecessors mismatch (-want +got):\n%s", mv, diff)
		}
	}

	extract := g.Node("Movement_participant.WarehouseToStorage.ExtractTable")
	if extract == nil {
		t.Fatalf("extract task not found: %v", childIDs(g, "Movement_participant.WarehouseToStorage"))
	}
	job := extract.Task.Config["configuration"].(bigquery.JobConfiguration).Extract
	wantURIs := []string{"gs://retl/reverse_etl/crm/participant/" + domain.DefaultStoragePartitionSchema + "/participant-*.csv"}
	if diff := cmp.Diff(wantURIs, job.DestinationURIs); diff != "" {
		t.Errorf("destination uris mismatch (-want +got):\n%s", diff)
	}
	if job.SourceTable.TableID != "crm_participant" || job.DestinationFormat != bigquery.FormatCSV {
		t.Errorf("unexpected extract job: %+v", job)
	}

	export := g.Node("Movement_landing_page.WarehouseToStorage.ExportQueryToStorage")
	if export == nil {
		t.Fatalf("export task not found: %v", childIDs(g, "Movement_landing_page.WarehouseToStorage"))
	}
	sql := export.Task.Config["configuration"].(bigquery.JobConfiguration).Query.Query
	for _, want := range []string{
		"gs://retl/reverse_etl/crm/landing_page/" + domain.DefaultStoragePartitionSchema + "/*.parquet",
		"SELECT * FROM `p.raw.crm_landing_page` WHERE name = 'landing_page'",
	} {
		if !strings.Contains(sql, want) {
			t.Errorf("export query should contain %q:\n%s", want, sql)
		}
	}
}

func TestComposition_ReverseEtlFormats(t *testing.T) {
	tests := []struct {
		name      string
		overrides domain.MovementParameters
		wantURI   string
		wantErr   error
	}{
		{
			name:      "json",
			overrides: domain.MovementParameters{DestinationFormat: bigquery.FormatJSON},
			wantURI:   "participant-*.json",
		},
		{
			name:      "unknown format",
			overrides: domain.MovementParameters{DestinationFormat: "XML"},
			wantErr:   concert.ErrInvalidParameter,
		},
		{
			name:      "query with csv",
			overrides: domain.MovementParameters{ExtractionQuery: "SELECT 1", DestinationFormat: bigquery.FormatCSV},
			wantErr:   concert.ErrInvalidParameter,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := reverseEtlConfig()
			overrides := tt.overrides
			table := domain.Table{Name: "participant", Overrides: &overrides}

			c, _ := newComposition(t, cfg)
			movement, err := c.ReverseEtlMovement(table)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("expected %v, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			export := movement.Phrases()[1].Motifs()[0].(motif.ExtractTable)
			scope, g := newScopeFor(t)
			if _, err := export.Build(scope); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			uris := g.Tasks()[0].Task.Config["configuration"].(bigquery.JobConfiguration).Extract.DestinationURIs
			if len(uris) != 1 || !strings.HasSuffix(uris[0], tt.wantURI) {
				t.Errorf("unexpected destination: %v", uris)
			}
		})
	}
}

func newScopeFor(t *testing.T) (concert.Scope, *workflow.Graph) {
	t.Helper()
	m := workflow.NewMemory()
	root, err := m.CreateRoot(domain.DagParameters{DagID: "dag"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	g, _ := m.Graph("dag")
	return concert.Scope{Service: m, Root: root, Logger: telemetry.Discard()}, g
}

func TestComposition_OverrideDisablesCreateTable(t *testing.T) {
	cfg := sakilaConfig()
	cfg.MovementTemplate = domain.MovementParameters{LoadMode: domain.LoadModeLoad, CreateTable: domain.Bool(true)}
	cfg.Tables[1].Overrides = &domain.MovementParameters{CreateTable: domain.Bool(false)}
	c, mem := newComposition(t, cfg)

	if _, err := c.AutoBuild(context.Background(), false); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	g, _ := mem.Graph("sakila_ingestion")

	if got := childIDs(g, "Movement_actor"); !slices.Contains(got, phrase.NameCreateOrUpdateTable) {
		t.Errorf("actor should keep create table phrase: %v", got)
	}
	if got := childIDs(g, "Movement_film"); slices.Contains(got, phrase.NameCreateOrUpdateTable) {
		t.Errorf("film override should drop create table phrase: %v", got)
	}
}

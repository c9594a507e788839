package config

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/shaiso/Concert/internal/bigquery"
	"github.com/shaiso/Concert/internal/domain"
	"github.com/shaiso/Concert/internal/workflow"
)

// Ошибки конфигурации.
var (
	// ErrInvalidConfig — конфигурация не прошла проверку.
	ErrInvalidConfig = errors.New("invalid config")

	// ErrEmptyDocument — YAML файл пуст.
	ErrEmptyDocument = errors.New("empty yaml document")
)

// ValidationError — ошибка проверки одного поля конфигурации.
type ValidationError struct {
	Field   string
	Message string
}

// Error реализует интерфейс error.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Unwrap возвращает ErrInvalidConfig.
func (e *ValidationError) Unwrap() error {
	return ErrInvalidConfig
}

var granularities = []string{"DAY", "HOUR", "MONTH", "YEAR"}

// Validate проверяет конфигурацию и возвращает все найденные ошибки
// (errors.Join из *ValidationError).
func Validate(cfg domain.Config) error {
	var errs []error
	fail := func(field, format string, args ...any) {
		errs = append(errs, &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)})
	}

	if cfg.Name == "" {
		fail("name", "is required")
	}
	if !slices.Contains(domain.SourceKinds(), cfg.Source) {
		fail("source", "unknown source %q", cfg.Source)
	}
	if cfg.SourceName == "" {
		fail("source_name", "is required")
	}
	if cfg.DagParameters.DagID == "" {
		fail("dag_parameters.dag_id", "is required")
	}
	if err := ValidateSchedule(cfg.DagParameters.Schedule); err != nil {
		fail("dag_parameters.schedule_interval", "%v", err)
	}
	if end := cfg.DagParameters.EndDate; end != nil && end.Before(cfg.DagParameters.StartDate) {
		fail("dag_parameters.end_date", "is before start_date")
	}

	env := cfg.Environment
	required := []struct{ field, value string }{
		{"environment.project", env.Project},
		{"environment.raw_dataset", env.RawDataset},
	}
	if cfg.Source.IsWarehouse() {
		required = append(required, struct{ field, value string }{"environment.reverse_etl_bucket", env.ReverseEtlBucket})
	} else {
		required = append(required,
			struct{ field, value string }{"environment.raw_vault_bucket", env.RawVaultBucket},
			struct{ field, value string }{"environment.raw_vault_dataset", env.RawVaultDataset},
		)
	}
	for _, r := range required {
		if r.value == "" {
			fail(r.field, "is required")
		}
	}
	if len(cfg.TrustedQueries) > 0 && env.TrustedDataset == "" {
		fail("environment.trusted_dataset", "is required when trusted_queries are set")
	}

	seen := make(map[string]bool, len(cfg.Tables))
	movements := make(map[string]string, len(cfg.Tables))
	for i, t := range cfg.Tables {
		prefix := fmt.Sprintf("tables[%d]", i)
		if t.Name == "" {
			fail(prefix+".name", "is required")
			continue
		}
		prefix = "tables." + t.Name
		duplicate := seen[t.Name]
		if duplicate {
			fail(prefix, "duplicate table")
		}
		seen[t.Name] = true

		if strings.Contains(t.Name, workflow.PathSeparator) {
			fail(prefix+".name", "must not contain %q", workflow.PathSeparator)
		}
		if o := t.Overrides; o != nil && strings.Contains(o.Name, workflow.PathSeparator) {
			fail(prefix+".overrides.name", "must not contain %q", workflow.PathSeparator)
		}
		name := domain.MergeMovementParameters(t, cfg.MovementTemplate).Name
		if other, dup := movements[name]; dup && !duplicate {
			fail(prefix+".overrides.name", "movement name %q is already used by %s", name, other)
		} else if !dup {
			movements[name] = t.Name
		}

		validateTable(cfg, t, prefix, fail)
	}

	return errors.Join(errs...)
}

func validateTable(cfg domain.Config, t domain.Table, prefix string, fail func(field, format string, args ...any)) {
	fields := make(map[string]bool, len(t.Fields))
	for _, f := range t.Fields {
		if f.Name == "" {
			fail(prefix+".fields", "field name is required")
			continue
		}
		if fields[f.Name] {
			fail(prefix+".fields."+f.Name, "duplicate field")
		}
		fields[f.Name] = true
	}
	if len(t.PIIColumns()) > 0 && cfg.Environment.PIIDataset == "" {
		fail("environment.pii_dataset", "is required when %s has pii fields", t.Name)
	}

	params := domain.MergeMovementParameters(t, cfg.MovementTemplate)

	if cfg.Source.IsWarehouse() {
		validateReverseEtl(params, prefix, fail)
		return
	}

	switch params.LoadMode {
	case domain.LoadModeMerge:
		// Merge нужен только для СУБД: storage всегда грузится load задачей.
		if cfg.Source.IsRDBMS() {
			if t.PrimaryKey == "" {
				fail(prefix+".primary_key", "is required for merge")
			} else if len(fields) > 0 && !fields[t.PrimaryKey] {
				fail(prefix+".primary_key", "%q is not a field", t.PrimaryKey)
			}
			if len(fields) == 0 {
				fail(prefix+".fields", "are required for merge")
			}
		}
	case domain.LoadModeLoad:
	default:
		fail(prefix+".load_mode", "unknown load mode %q", params.LoadMode)
	}

	if params.CreatesTable() && len(fields) == 0 {
		fail(prefix+".fields", "are required for create_table")
	}

	dp := params.DataPartitioning
	switch dp.PartitioningType {
	case "":
	case "time":
		if !slices.Contains(granularities, dp.PartitionGranularity) {
			fail(prefix+".data_partitioning.partition_granularity", "unknown granularity %q", dp.PartitionGranularity)
		}
	default:
		fail(prefix+".data_partitioning.partitioning_type", "unknown partitioning %q", dp.PartitioningType)
	}

	if mp := params.MergePartition; mp != nil && (mp.Field == "" || mp.Min == "" || mp.Max == "") {
		fail(prefix+".merge_partition", "field, min and max are required together")
	}

	if cfg.Source.IsStorage() {
		if params.SourceFileURI == "" {
			fail(prefix+".source_file_uri", "is required for storage sources")
		}
		if st := domain.SourceKind(params.SourceStorageType); st != "" && !st.IsStorage() {
			fail(prefix+".source_storage_type", "unknown storage %q", params.SourceStorageType)
		}
	}
}

func validateReverseEtl(params domain.MovementParameters, prefix string, fail func(field, format string, args ...any)) {
	format := params.DestinationFormat
	switch {
	case format == "":
	case bigquery.FileExtension(format) == "":
		fail(prefix+".destination_format", "unknown format %q", format)
	case params.ExtractionQuery != "" && format != bigquery.FormatParquet:
		fail(prefix+".destination_format", "extraction_query exports %s only", bigquery.FormatParquet)
	}
	if params.CreatesTable() {
		fail(prefix+".create_table", "is not supported for reverse etl")
	}
}

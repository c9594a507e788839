package ingestion

import (
	"github.com/shaiso/Concert/internal/bigquery"
	"github.com/shaiso/Concert/internal/concert"
	"github.com/shaiso/Concert/internal/domain"
)

// Locations — адреса, которые movement передаёт своим фразам.
type Locations struct {
	// RawVaultPrefix — gs://{raw_vault_bucket}/{source_type}/{source_name}/{name}.
	RawVaultPrefix string

	// RawVaultTable — {project}.{raw_vault_dataset}.{table_prefix}_{name}.
	RawVaultTable string

	// RawTable — {project}.{raw_dataset}.{table_prefix}_{name}.
	RawTable string

	// PIITable — {project}.{pii_dataset}.{table_prefix}_{name}; пусто без PII полей.
	PIITable string

	// TrustedTable — {project}.{trusted_dataset}.{table_prefix}_{name}; пусто без trusted_dataset.
	TrustedTable string
}

// Resolve вычисляет адреса movement name для таблицы table.
func Resolve(cfg domain.Config, table domain.Table, name string) (Locations, error) {
	env := cfg.Environment
	required := []struct{ field, value string }{
		{"name", name},
		{"environment.project", env.Project},
		{"environment.raw_vault_bucket", env.RawVaultBucket},
		{"environment.raw_vault_dataset", env.RawVaultDataset},
		{"environment.raw_dataset", env.RawDataset},
		{"source_name", cfg.SourceName},
	}
	for _, r := range required {
		if r.value == "" {
			return Locations{}, concert.NewConfigurationError("DataIngestionMovement", name,
				r.field+" is empty", concert.ErrInvalidParameter)
		}
	}

	loc := Locations{
		RawVaultPrefix: "gs://" + env.RawVaultBucket + "/" + cfg.Source.SourceType() + "/" + cfg.SourceName + "/" + name,
		RawVaultTable:  bigquery.TableURI(env.Project, env.RawVaultDataset, cfg.TablePrefix, name),
		RawTable:       bigquery.TableURI(env.Project, env.RawDataset, cfg.TablePrefix, name),
	}

	if len(table.PIIColumns()) > 0 {
		if env.PIIDataset == "" {
			return Locations{}, concert.NewConfigurationError("DataIngestionMovement", name,
				"environment.pii_dataset is empty but table has pii fields", concert.ErrInvalidParameter)
		}
		loc.PIITable = bigquery.TableURI(env.Project, env.PIIDataset, cfg.TablePrefix, name)
	}
	if env.TrustedDataset != "" {
		loc.TrustedTable = bigquery.TableURI(env.Project, env.TrustedDataset, cfg.TablePrefix, name)
	}
	return loc, nil
}

// ReverseEtlLocations — адреса movement reverse ETL.
type ReverseEtlLocations struct {
	// Prefix — gs://{reverse_etl_bucket}/reverse_etl/{source_name}/{name}.
	Prefix string

	// SourceTable — {project}.{raw_dataset}.{table_prefix}_{name}.
	SourceTable string

	// TrustedTable — {project}.{trusted_dataset}.{table_prefix}_{name}; пусто без trusted_dataset.
	TrustedTable string
}

// ResolveReverseEtl вычисляет адреса reverse ETL movement name.
func ResolveReverseEtl(cfg domain.Config, name string) (ReverseEtlLocations, error) {
	env := cfg.Environment
	required := []struct{ field, value string }{
		{"name", name},
		{"environment.project", env.Project},
		{"environment.reverse_etl_bucket", env.ReverseEtlBucket},
		{"environment.raw_dataset", env.RawDataset},
		{"source_name", cfg.SourceName},
	}
	for _, r := range required {
		if r.value == "" {
			return ReverseEtlLocations{}, concert.NewConfigurationError("ReverseEtlMovement", name,
				r.field+" is empty", concert.ErrInvalidParameter)
		}
	}

	loc := ReverseEtlLocations{
		Prefix:      "gs://" + env.ReverseEtlBucket + "/reverse_etl/" + cfg.SourceName + "/" + name,
		SourceTable: bigquery.TableURI(env.Project, env.RawDataset, cfg.TablePrefix, name),
	}
	if env.TrustedDataset != "" {
		loc.TrustedTable = bigquery.TableURI(env.Project, env.TrustedDataset, cfg.TablePrefix, name)
	}
	return loc, nil
}

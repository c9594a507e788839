package ingestion

import (
	"strings"

	"github.com/shaiso/Concert/internal/bigquery"
	"github.com/shaiso/Concert/internal/concert"
	"github.com/shaiso/Concert/internal/domain"
	"github.com/shaiso/Concert/internal/motif"
	"github.com/shaiso/Concert/internal/phrase"
	"github.com/shaiso/Concert/internal/telemetry"
)

// ReverseEtlMovement — builder для source: bigquery. Выгружает таблицу
// хранилища в бакет reverse ETL: EXPORT DATA, если задан extraction_query,
// иначе extract задачей таблицы raw.
//
// В extraction_query подставляются {table}, {raw_table} и {trusted_table}.
func (c *Composition) ReverseEtlMovement(table domain.Table) (*concert.Movement, error) {
	params := domain.MergeMovementParameters(table, c.config.MovementTemplate)

	loc, err := ResolveReverseEtl(c.config, params.Name)
	if err != nil {
		return nil, err
	}
	partition := params.DataPartitioning.StoragePartitionSchema

	var export phrase.WarehouseToStorage
	binding := phrase.StorageBinding{Prefix: loc.Prefix, SourceTable: loc.SourceTable}
	if params.ExtractionQuery != "" {
		if f := params.DestinationFormat; f != "" && f != bigquery.FormatParquet {
			return nil, concert.NewConfigurationError("ReverseEtlMovement", params.Name,
				"extraction_query exports PARQUET only, got "+f, concert.ErrInvalidParameter)
		}
		query := strings.NewReplacer(
			"{table}", params.Name,
			"{raw_table}", loc.SourceTable,
			"{trusted_table}", loc.TrustedTable,
		).Replace(params.ExtractionQuery)
		export = phrase.NewQueryToStorage("",
			motif.NewExportQueryToStorage("", c.connID(), query, partition))
	} else {
		format := params.DestinationFormat
		if format == "" {
			format = bigquery.FormatCSV
		}
		ext := bigquery.FileExtension(format)
		if ext == "" {
			return nil, concert.NewConfigurationError("ReverseEtlMovement", params.Name,
				"unknown destination_format "+format, concert.ErrInvalidParameter)
		}
		binding.Files = loc.Prefix + "/" + partition + "/" + params.Name + "-*." + ext
		export = phrase.NewTableToStorage("",
			motif.NewExtractTable("", c.connID(), format, params.FieldDelimiter))
	}

	movement := concert.NewMovement(MovementPrefix+params.Name,
		phrase.NewStart(params.Name),
		export.Bind(binding),
		phrase.NewEnd(params.Name),
	)
	telemetry.WithMovement(c.logger, movement.Name()).Debug("movement ready",
		"phrases", len(movement.Phrases()),
		"export_mode", export.Mode(),
	)
	return movement, nil
}

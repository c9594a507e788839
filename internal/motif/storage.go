package motif

import (
	"strings"

	"github.com/shaiso/Concert/internal/bigquery"
	"github.com/shaiso/Concert/internal/concert"
	"github.com/shaiso/Concert/internal/domain"
	"github.com/shaiso/Concert/internal/workflow"
)

// StorageToStorage — копирование файла из gcs или s3 в raw vault.
type StorageToStorage struct {
	named
	source       domain.SourceKind
	sourceConnID string
	lakeConnID   string
	sourceURI    string
	partition    string

	destination string
}

// NewStorageToStorage создаёт копирование sourceURI.
// source — вид исходного хранилища (gcs или s3).
func NewStorageToStorage(name string, source domain.SourceKind, sourceConnID, lakeConnID, sourceURI, partition string) (StorageToStorage, error) {
	if !source.IsStorage() {
		return StorageToStorage{}, &concert.UnsupportedVariantError{
			Variant: source.String(),
			Known:   []string{domain.SourceGCS.String(), domain.SourceS3.String()},
		}
	}
	return StorageToStorage{
		named:        newNamed(name, "StorageToStorage"),
		source:       source,
		sourceConnID: sourceConnID,
		lakeConnID:   lakeConnID,
		sourceURI:    sourceURI,
		partition:    partition,
	}, nil
}

// BindDestination возвращает копию с префиксом raw vault.
func (m StorageToStorage) BindDestination(uri string) StorageToStorage {
	m.destination = strings.TrimSuffix(uri, "/")
	return m
}

// DestinationFile возвращает URI файла в raw vault.
func (m StorageToStorage) DestinationFile() string {
	return m.destination + "/" + m.partition + "/0.parquet"
}

// Build реализует concert.Motif.
func (m StorageToStorage) Build(scope concert.Scope) (workflow.Node, error) {
	if m.destination == "" {
		return nil, concert.NotBound("StorageToStorage", m.name, "destination")
	}
	if m.sourceURI == "" {
		return nil, concert.NewConfigurationError("StorageToStorage", m.name,
			"source file uri is empty", concert.ErrInvalidParameter)
	}

	return scope.Task(workflow.Task{
		ID:       m.name,
		Operator: OperatorStorageToStorage,
		Config: map[string]any{
			"origin_storage":   m.source.String(),
			"origin_conn_id":   m.sourceConnID,
			"origin_file_uri":  m.sourceURI,
			"destiny_storage":  domain.SourceGCS.String(),
			"destiny_conn_id":  connOrDefault(m.lakeConnID),
			"destiny_file_uri": m.DestinationFile(),
		},
	})
}

// ExtractTable — выгрузка таблицы хранилища в файлы (reverse ETL).
type ExtractTable struct {
	named
	connID    string
	format    string
	delimiter string

	source       string
	destinations []string
}

// NewExtractTable создаёт выгрузку в формате format.
func NewExtractTable(name, connID, format, delimiter string) ExtractTable {
	return ExtractTable{
		named:     newNamed(name, "ExtractTable"),
		connID:    connID,
		format:    format,
		delimiter: delimiter,
	}
}

// BindSource возвращает копию с таблицей-источником и URI назначения.
func (m ExtractTable) BindSource(table string, destinations ...string) ExtractTable {
	m.source = table
	m.destinations = append([]string(nil), destinations...)
	return m
}

// Build реализует concert.Motif.
func (m ExtractTable) Build(scope concert.Scope) (workflow.Node, error) {
	if m.source == "" {
		return nil, concert.NotBound("ExtractTable", m.name, "source table")
	}
	cfg, err := bigquery.ExtractConfiguration(m.source, m.destinations, m.delimiter, m.format)
	if err != nil {
		return nil, err
	}
	return scope.Task(jobTask(m.name, m.connID, cfg))
}

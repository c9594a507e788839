package motif

import (
	"strings"

	"github.com/shaiso/Concert/internal/bigquery"
	"github.com/shaiso/Concert/internal/concert"
	"github.com/shaiso/Concert/internal/domain"
	"github.com/shaiso/Concert/internal/workflow"
)

// CreateExternalTable — external таблица поверх PARQUET файлов raw vault.
type CreateExternalTable struct {
	named
	connID string

	prefix string
	table  string
}

// NewCreateExternalTable создаёт мотив external таблицы.
func NewCreateExternalTable(name, connID string) CreateExternalTable {
	return CreateExternalTable{named: newNamed(name, "CreateExternalTable"), connID: connID}
}

// BindTables возвращает копию с префиксом файлов и таблицей назначения.
func (m CreateExternalTable) BindTables(prefix, table string) CreateExternalTable {
	m.prefix = strings.TrimSuffix(prefix, "/")
	m.table = table
	return m
}

// Build реализует concert.Motif.
func (m CreateExternalTable) Build(scope concert.Scope) (workflow.Node, error) {
	if m.prefix == "" || m.table == "" {
		return nil, concert.NotBound("CreateExternalTable", m.name, "prefix and table")
	}
	ref, err := bigquery.ParseTableReference(m.table)
	if err != nil {
		return nil, err
	}

	return scope.Task(workflow.Task{
		ID:       m.name,
		Operator: OperatorCreateExternalTable,
		Config: map[string]any{
			"bucket":                            m.prefix,
			"destination_project_dataset_table": ref.String(),
			"table_resource":                    bigquery.ExternalTableResource(m.prefix),
			"gcp_conn_id":                       connOrDefault(m.connID),
		},
	})
}

// LoadStorageToTable — load задача из hive-партиционированных файлов в таблицу.
type LoadStorageToTable struct {
	named
	connID       string
	format       string
	partitioning domain.DataPartitioning

	prefix string
	table  string
}

// NewLoadStorageToTable создаёт load задачу с партиционированием partitioning.
func NewLoadStorageToTable(name, connID, format string, partitioning domain.DataPartitioning) LoadStorageToTable {
	if format == "" {
		format = bigquery.FormatParquet
	}
	return LoadStorageToTable{
		named:        newNamed(name, "LoadStorageToTable"),
		connID:       connID,
		format:       format,
		partitioning: partitioning,
	}
}

// BindTables возвращает копию с префиксом файлов и таблицей назначения.
func (m LoadStorageToTable) BindTables(prefix, table string) LoadStorageToTable {
	m.prefix = strings.TrimSuffix(prefix, "/")
	m.table = table
	return m
}

// Build реализует concert.Motif.
func (m LoadStorageToTable) Build(scope concert.Scope) (workflow.Node, error) {
	if m.prefix == "" || m.table == "" {
		return nil, concert.NotBound("LoadStorageToTable", m.name, "prefix and table")
	}

	dp := m.partitioning
	schema := dp.StoragePartitionSchema
	if schema == "" {
		schema = domain.DefaultStoragePartitionSchema
	}

	opts := bigquery.LoadOptions{
		WriteDisposition: bigquery.WriteTruncate,
		HivePrefix:       m.prefix,
	}
	if dp.PartitioningType == "time" {
		tp, err := bigquery.NewTimePartitioning(dp.PartitionGranularity, dp.PartitionField)
		if err != nil {
			return nil, err
		}
		opts.TimePartitioning = tp
	}

	destination := m.table
	if dp.DestinationPartition != "" {
		destination += "$" + dp.DestinationPartition
	}

	cfg, err := bigquery.LoadConfiguration(
		[]string{m.prefix + "/" + schema + "/*"},
		m.format, destination, opts)
	if err != nil {
		return nil, err
	}
	return scope.Task(jobTask(m.name, m.connID, cfg))
}

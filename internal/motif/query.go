package motif

import (
	"fmt"
	"strings"

	"github.com/shaiso/Concert/internal/bigquery"
	"github.com/shaiso/Concert/internal/concert"
	"github.com/shaiso/Concert/internal/domain"
	"github.com/shaiso/Concert/internal/workflow"
)

// QueryJob — query задача хранилища.
type QueryJob struct {
	named
	connID string
	opts   bigquery.QueryOptions

	sql         string
	destination string
}

// NewQueryJob создаёт QueryJob со статическими параметрами задачи.
func NewQueryJob(name, connID string, opts bigquery.QueryOptions) QueryJob {
	if opts.WriteDisposition == "" {
		opts.WriteDisposition = bigquery.WriteAppend
	}
	return QueryJob{named: newNamed(name, "QueryJob"), connID: connID, opts: opts}
}

// BindQuery возвращает копию с запросом и (необязательной) таблицей назначения.
func (m QueryJob) BindQuery(sql, destination string) QueryJob {
	m.sql = sql
	m.destination = destination
	return m
}

// Build реализует concert.Motif.
func (m QueryJob) Build(scope concert.Scope) (workflow.Node, error) {
	if m.sql == "" {
		return nil, concert.NotBound("QueryJob", m.name, "query")
	}
	cfg, err := bigquery.QueryConfiguration(m.sql, m.destination, m.opts)
	if err != nil {
		return nil, err
	}
	return scope.Task(jobTask(m.name, m.connID, cfg))
}

// ExportQueryToStorage — выгрузка результата запроса в PARQUET через EXPORT DATA.
type ExportQueryToStorage struct {
	named
	connID    string
	query     string
	partition string

	destination string
}

// NewExportQueryToStorage создаёт выгрузку query в каталог partition
// внутри будущего URI назначения.
func NewExportQueryToStorage(name, connID, query, partition string) ExportQueryToStorage {
	return ExportQueryToStorage{
		named:     newNamed(name, "ExportQueryToStorage"),
		connID:    connID,
		query:     query,
		partition: partition,
	}
}

// BindDestination возвращает копию с префиксом назначения.
func (m ExportQueryToStorage) BindDestination(uri string) ExportQueryToStorage {
	m.destination = strings.TrimSuffix(uri, "/")
	return m
}

// ExportURI возвращает маску файлов выгрузки.
func (m ExportQueryToStorage) ExportURI() string {
	return m.destination + "/" + m.partition + "/*.parquet"
}

// Build реализует concert.Motif.
func (m ExportQueryToStorage) Build(scope concert.Scope) (workflow.Node, error) {
	if m.destination == "" {
		return nil, concert.NotBound("ExportQueryToStorage", m.name, "destination")
	}
	sql, err := bigquery.ExportDataQuery(m.ExportURI(), m.query)
	if err != nil {
		return nil, err
	}
	cfg, err := bigquery.QueryConfiguration(sql, "", bigquery.QueryOptions{})
	if err != nil {
		return nil, err
	}
	return scope.Task(jobTask(m.name, m.connID, cfg))
}

// CreateOrUpdateTable — DDL таблицы назначения по списку полей.
type CreateOrUpdateTable struct {
	named
	connID       string
	fields       []domain.Field
	partitioning domain.DataPartitioning

	table string
}

// NewCreateOrUpdateTable создаёт мотив для полей fields.
func NewCreateOrUpdateTable(name, connID string, fields []domain.Field, partitioning domain.DataPartitioning) CreateOrUpdateTable {
	return CreateOrUpdateTable{
		named:        newNamed(name, "CreateOrUpdateTable"),
		connID:       connID,
		fields:       append([]domain.Field(nil), fields...),
		partitioning: partitioning,
	}
}

// BindTable возвращает копию с таблицей назначения.
func (m CreateOrUpdateTable) BindTable(tableURI string) CreateOrUpdateTable {
	m.table = tableURI
	return m
}

// Build реализует concert.Motif.
func (m CreateOrUpdateTable) Build(scope concert.Scope) (workflow.Node, error) {
	if m.table == "" {
		return nil, concert.NotBound("CreateOrUpdateTable", m.name, "table")
	}

	p := bigquery.DDLParams{Table: m.table, Fields: m.fields}
	if m.partitioning.PartitioningType == "time" {
		p.PartitionField = m.partitioning.PartitionField
		p.PartitionGranularity = m.partitioning.PartitionGranularity
	}
	ddl, err := bigquery.CreateOrUpdateTableDDL(p)
	if err != nil {
		return nil, fmt.Errorf("table ddl for %s: %w", m.table, err)
	}

	cfg, err := bigquery.QueryConfiguration(ddl, "", bigquery.QueryOptions{})
	if err != nil {
		return nil, err
	}
	return scope.Task(jobTask(m.name, m.connID, cfg))
}

package motif

import (
	"github.com/shaiso/Concert/internal/bigquery"
	"github.com/shaiso/Concert/internal/concert"
	"github.com/shaiso/Concert/internal/domain"
	"github.com/shaiso/Concert/internal/workflow"
)

// MergeTable — MERGE дельты из raw vault в основную таблицу.
type MergeTable struct {
	named
	connID    string
	table     domain.Table
	partition *domain.MergePartition

	main  string
	delta string
	pii   string
}

// NewMergeTable создаёт мотив для таблицы-источника table.
// partition ограничивает merge диапазоном партиции; nil — только по ключу.
func NewMergeTable(name, connID string, table domain.Table, partition *domain.MergePartition) MergeTable {
	m := MergeTable{
		named:  newNamed(name, "MergeTable"),
		connID: connID,
		table:  table,
	}
	if partition != nil {
		p := *partition
		m.partition = &p
	}
	return m
}

// BindTables возвращает копию с основной таблицей, дельтой и таблицей PII.
// pii может быть пустым, если у таблицы нет персональных полей.
func (m MergeTable) BindTables(main, delta, pii string) MergeTable {
	m.main = main
	m.delta = delta
	m.pii = pii
	return m
}

// Query рендерит MERGE запрос.
func (m MergeTable) Query() (string, error) {
	if m.main == "" || m.delta == "" {
		return "", concert.NotBound("MergeTable", m.name, "main and delta tables")
	}

	p := bigquery.MergeParams{
		MainTable:  m.main,
		DeltaTable: m.delta,
		PIITable:   m.pii,
		PrimaryKey: m.table.PrimaryKey,
		Fields:     m.table.FieldNames(),
		PIIColumns: m.table.PIIColumns(),
	}
	if m.partition != nil {
		p.PartitionField = m.partition.Field
		p.MinPartition = m.partition.Min
		p.MaxPartition = m.partition.Max
	}
	return bigquery.BuildMergeQuery(p)
}

// Build реализует concert.Motif.
func (m MergeTable) Build(scope concert.Scope) (workflow.Node, error) {
	sql, err := m.Query()
	if err != nil {
		return nil, err
	}
	cfg, err := bigquery.QueryConfiguration(sql, "", bigquery.QueryOptions{})
	if err != nil {
		return nil, err
	}
	return scope.Task(jobTask(m.name, m.connID, cfg))
}

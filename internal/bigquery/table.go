package bigquery

import (
	"strings"

	"github.com/shaiso/Concert/internal/concert"
	"github.com/shaiso/Concert/internal/domain"
)

// ExternalTable — ресурс external таблицы поверх файлов в хранилище.
type ExternalTable struct {
	Type                      string                    `json:"type"`
	ExternalDataConfiguration ExternalDataConfiguration `json:"externalDataConfiguration"`
}

// ExternalDataConfiguration — источник данных external таблицы.
type ExternalDataConfiguration struct {
	HivePartitioning HivePartitioning `json:"hivePartitioningOptions"`
	SourceFormat     string           `json:"sourceFormat"`
	SourceURIs       []string         `json:"sourceUris"`
}

// ExternalTableResource описывает hive-партиционированную PARQUET таблицу
// над всеми файлами под prefix.
func ExternalTableResource(prefix string) ExternalTable {
	prefix = strings.TrimSuffix(prefix, "/")
	return ExternalTable{
		Type: "EXTERNAL",
		ExternalDataConfiguration: ExternalDataConfiguration{
			HivePartitioning: HivePartitioning{Mode: "AUTO", SourceURIPrefix: prefix},
			SourceFormat:     FormatParquet,
			SourceURIs:       []string{prefix + "/*.parquet"},
		},
	}
}

const ddlSQL = `
CREATE TABLE IF NOT EXISTS {{ backtick .Table }} (
{{- range $i, $f := .Fields }}{{ if $i }},{{ end }}
    {{ $f.Name }} {{ $f.Type }}{{ if $f.Description }} OPTIONS(description={{ printf "%q" $f.Description }}){{ end }}
{{- end }}
){{ if .Partition }}
PARTITION BY {{ .Partition }}{{ end }};
{{ range .Fields }}
ALTER TABLE {{ backtick $.Table }} ADD COLUMN IF NOT EXISTS {{ .Name }} {{ .Type }};
{{- end }}
`

var ddlTemplate = mustParse("ddl", ddlSQL)

// DDLParams — входные данные CreateOrUpdateTableDDL.
type DDLParams struct {
	// Table — "project.dataset.table".
	Table string

	// Fields — поля таблицы; пустой тип заменяется на STRING.
	Fields []domain.Field

	// PartitionField и PartitionGranularity задают PARTITION BY.
	PartitionField       string
	PartitionGranularity string
}

// CreateOrUpdateTableDDL строит CREATE TABLE IF NOT EXISTS и
// ALTER TABLE ADD COLUMN IF NOT EXISTS для каждого поля.
func CreateOrUpdateTableDDL(p DDLParams) (string, error) {
	if _, err := ParseTableReference(p.Table); err != nil {
		return "", err
	}
	if len(p.Fields) == 0 {
		return "", concert.NewConfigurationError("table ddl", p.Table,
			"field list is empty", concert.ErrInvalidParameter)
	}

	fields := make([]domain.Field, 0, len(p.Fields))
	for _, f := range p.Fields {
		if f.Type == "" {
			f.Type = "STRING"
		}
		fields = append(fields, f)
	}

	data := struct {
		Table     string
		Fields    []domain.Field
		Partition string
	}{Table: p.Table, Fields: fields}

	if p.PartitionField != "" {
		data.Partition = partitionExpr(p.PartitionField, p.PartitionGranularity)
	}

	return render(ddlTemplate, data)
}

// partitionExpr возвращает выражение PARTITION BY для гранулярности.
func partitionExpr(field, granularity string) string {
	switch granularity {
	case "HOUR", "MONTH", "YEAR":
		return "TIMESTAMP_TRUNC(" + field + ", " + granularity + ")"
	default:
		return "DATE(" + field + ")"
	}
}

const exportSQL = `
EXPORT DATA OPTIONS(overwrite=false,format='PARQUET',uri='{{ .URI }}')
AS {{ .Query }}
`

var exportTemplate = mustParse("export", exportSQL)

// ExportDataQuery оборачивает query в EXPORT DATA с выгрузкой PARQUET в uri.
func ExportDataQuery(uri, query string) (string, error) {
	if uri == "" || query == "" {
		return "", concert.NewConfigurationError("export data", uri,
			"uri and query are required", concert.ErrNotBound)
	}
	return render(exportTemplate, struct{ URI, Query string }{uri, query})
}

package bigquery

import (
	"strings"

	"github.com/shaiso/Concert/internal/concert"
	"github.com/shaiso/Concert/internal/domain"
)

// MergeParams — входные данные MERGE запроса.
type MergeParams struct {
	// MainTable — основная таблица (raw), "project.dataset.table".
	MainTable string

	// DeltaTable — дельта (external таблица raw vault).
	DeltaTable string

	// PIITable — таблица с персональными данными; обязательна при PIIColumns.
	PIITable string

	// PrimaryKey — поле первичного ключа.
	PrimaryKey string

	// Fields — все поля таблицы в порядке источника.
	Fields []string

	// PIIColumns — поля, которые берутся из PIITable.
	PIIColumns []string

	// Партиции дельты текущей загрузки. Пустые значения заменяются
	// на loadDate = '{{ ds }}' и loadTimestamp = '{{ ts_nodash }}'.
	DeltaDatePartition string
	DeltaDateValue     string
	DeltaTimePartition string
	DeltaTimeValue     string

	// Диапазон партиции основной таблицы. Либо все три поля, либо ни одного.
	PartitionField string
	MinPartition   string
	MaxPartition   string
}

// MergeQuery — вычисленные части MERGE запроса.
//
// Поля экспортированы, чтобы их можно было проверять по отдельности.
type MergeQuery struct {
	MainTable  string
	DeltaTable string

	ExceptColumns    string // EXCEPT (c1,c2)
	ExtraColumns     string // PII.c1,PII.c2
	JoinClause       string // INNER JOIN `pii` PII USING (pk)
	WhereClause      string // loadDate = '...' AND loadTimestamp = '...'
	MergeClause      string // main.pk = delta.pk [AND main.f BETWEEN 'min' AND 'max']
	UpdateClause     string // main.f = delta.f, ...
	InsertList       string // `f`, ...
	InsertValuesList string // delta.f, ...
}

const mergeSQL = `
MERGE
    {{ backtick .MainTable }} AS main
USING
    (
    SELECT
        *{{ if .ExceptColumns }} {{ .ExceptColumns }}{{ end }}{{ if .ExtraColumns }},
        {{ .ExtraColumns }}{{ end }}
    FROM
        {{ backtick .DeltaTable }}{{ if .JoinClause }} {{ .JoinClause }}{{ end }}
    WHERE
        {{ .WhereClause }}
    ) AS delta
ON
    {{ .MergeClause }}
WHEN MATCHED THEN UPDATE SET
    {{ .UpdateClause }}
WHEN NOT MATCHED THEN INSERT(
    {{ .InsertList }}
) VALUES (
    {{ .InsertValuesList }}
)
`

var mergeTemplate = mustParse("merge", mergeSQL)

// NewMergeQuery вычисляет части MERGE запроса.
//
// Детерминирована: одинаковые параметры дают одинаковый результат.
func NewMergeQuery(p MergeParams) (MergeQuery, error) {
	if err := p.validate(); err != nil {
		return MergeQuery{}, err
	}

	q := MergeQuery{
		MainTable:  p.MainTable,
		DeltaTable: p.DeltaTable,
	}

	if len(p.PIIColumns) > 0 {
		q.ExceptColumns = "EXCEPT (" + strings.Join(p.PIIColumns, ",") + ")"
		q.ExtraColumns = prefixed("PII.", p.PIIColumns, ",")
		q.JoinClause = "INNER JOIN `" + p.PIITable + "` PII USING (" + p.PrimaryKey + ")"
	}

	q.WhereClause = orDefault(p.DeltaDatePartition, domain.DeltaDatePartition) +
		" = '" + orDefault(p.DeltaDateValue, "{{ ds }}") + "' AND " +
		orDefault(p.DeltaTimePartition, domain.DeltaTimePartition) +
		" = '" + orDefault(p.DeltaTimeValue, "{{ ts_nodash }}") + "'"

	q.MergeClause = "main." + p.PrimaryKey + " = delta." + p.PrimaryKey
	if p.PartitionField != "" {
		q.MergeClause += " AND main." + p.PartitionField +
			" BETWEEN '" + p.MinPartition + "' AND '" + p.MaxPartition + "'"
	}

	updates := make([]string, 0, len(p.Fields))
	inserts := make([]string, 0, len(p.Fields))
	for _, f := range p.Fields {
		updates = append(updates, "main."+f+" = delta."+f)
		inserts = append(inserts, "`"+f+"`")
	}
	q.UpdateClause = strings.Join(updates, ", ")
	q.InsertList = strings.Join(inserts, ", ")
	q.InsertValuesList = prefixed("delta.", p.Fields, ", ")

	return q, nil
}

// Render собирает MERGE запрос.
func (q MergeQuery) Render() (string, error) {
	return render(mergeTemplate, q)
}

// BuildMergeQuery — NewMergeQuery и Render за один вызов.
func BuildMergeQuery(p MergeParams) (string, error) {
	q, err := NewMergeQuery(p)
	if err != nil {
		return "", err
	}
	return q.Render()
}

func (p MergeParams) validate() error {
	fail := func(msg string, err error) error {
		return concert.NewConfigurationError("merge query", p.MainTable, msg, err)
	}

	if p.MainTable == "" || p.DeltaTable == "" {
		return fail("main and delta tables are required", concert.ErrNotBound)
	}
	if p.PrimaryKey == "" {
		return fail("primary key is required", concert.ErrInvalidParameter)
	}
	if len(p.Fields) == 0 {
		return fail("field list is empty", concert.ErrInvalidParameter)
	}
	if len(p.PIIColumns) > 0 && p.PIITable == "" {
		return fail("pii columns require a pii table", concert.ErrInvalidParameter)
	}

	set := 0
	for _, v := range []string{p.PartitionField, p.MinPartition, p.MaxPartition} {
		if v != "" {
			set++
		}
	}
	if set != 0 && set != 3 {
		return fail("partition range needs field, min and max", concert.ErrInvalidParameter)
	}
	return nil
}

func prefixed(prefix string, items []string, sep string) string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		out = append(out, prefix+item)
	}
	return strings.Join(out, sep)
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

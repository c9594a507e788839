package bigquery

import (
	"github.com/shaiso/Concert/internal/concert"
)

// Значения dispositions.
const (
	CreateIfNeeded = "CREATE_IF_NEEDED"
	CreateNever    = "CREATE_NEVER"

	WriteAppend   = "WRITE_APPEND"
	WriteTruncate = "WRITE_TRUNCATE"
	WriteEmpty    = "WRITE_EMPTY"
)

// Форматы файлов.
const (
	FormatCSV     = "CSV"
	FormatJSON    = "NEWLINE_DELIMITED_JSON"
	FormatParquet = "PARQUET"
	FormatAvro    = "AVRO"
)

var extensions = map[string]string{
	FormatCSV:     "csv",
	FormatJSON:    "json",
	FormatParquet: "parquet",
	FormatAvro:    "avro",
}

// FileExtension возвращает расширение файлов формата format
// или пустую строку для неизвестного формата.
func FileExtension(format string) string {
	return extensions[format]
}

// TimePartitioning — партиционирование таблицы по времени.
type TimePartitioning struct {
	Type         string `json:"type"`
	ExpirationMs string `json:"expirationMs,omitempty"`
	Field        string `json:"field,omitempty"`
}

// NewTimePartitioning проверяет гранулярность (DAY, HOUR, MONTH, YEAR).
func NewTimePartitioning(granularity, field string) (*TimePartitioning, error) {
	switch granularity {
	case "DAY", "HOUR", "MONTH", "YEAR":
		return &TimePartitioning{Type: granularity, Field: field}, nil
	default:
		return nil, concert.NewConfigurationError("time partitioning", field,
			"invalid granularity "+quote(granularity), concert.ErrInvalidParameter)
	}
}

// JobConfiguration — тело insert job. Заполнено ровно одно поле.
type JobConfiguration struct {
	Query   *QueryJob   `json:"query,omitempty"`
	Extract *ExtractJob `json:"extract,omitempty"`
	Load    *LoadJob    `json:"load,omitempty"`
}

// QueryJob — конфигурация query задачи.
type QueryJob struct {
	Query             string            `json:"query"`
	UseLegacySQL      bool              `json:"useLegacySql"`
	DestinationTable  *TableReference   `json:"destinationTable,omitempty"`
	CreateDisposition string            `json:"createDisposition,omitempty"`
	WriteDisposition  string            `json:"writeDisposition,omitempty"`
	TimePartitioning  *TimePartitioning `json:"timePartitioning,omitempty"`
}

// QueryOptions — необязательные параметры query задачи.
type QueryOptions struct {
	CreateDisposition string
	WriteDisposition  string
	TimePartitioning  *TimePartitioning
}

// QueryConfiguration строит конфигурацию query задачи.
// destination может быть пустым: результат тогда никуда не пишется.
func QueryConfiguration(sql, destination string, opts QueryOptions) (JobConfiguration, error) {
	if sql == "" {
		return JobConfiguration{}, concert.NewConfigurationError("query job", destination,
			"query is empty", concert.ErrInvalidParameter)
	}

	job := &QueryJob{
		Query:             sql,
		CreateDisposition: orDefault(opts.CreateDisposition, CreateIfNeeded),
		WriteDisposition:  opts.WriteDisposition,
		TimePartitioning:  opts.TimePartitioning,
	}
	if destination != "" {
		ref, err := ParseTableReference(destination)
		if err != nil {
			return JobConfiguration{}, err
		}
		job.DestinationTable = &ref
	}
	return JobConfiguration{Query: job}, nil
}

// ExtractJob — конфигурация выгрузки таблицы в хранилище.
type ExtractJob struct {
	SourceTable       TableReference `json:"sourceTable"`
	DestinationURIs   []string       `json:"destinationUris"`
	PrintHeader       bool           `json:"printHeader"`
	FieldDelimiter    string         `json:"fieldDelimiter,omitempty"`
	DestinationFormat string         `json:"destinationFormat"`
}

// ExtractConfiguration строит конфигурацию extract задачи.
func ExtractConfiguration(source string, destinations []string, delimiter, format string) (JobConfiguration, error) {
	if err := checkFormat(format); err != nil {
		return JobConfiguration{}, err
	}
	if len(destinations) == 0 {
		return JobConfiguration{}, concert.NewConfigurationError("extract job", source,
			"no destination uris", concert.ErrInvalidParameter)
	}
	ref, err := ParseTableReference(source)
	if err != nil {
		return JobConfiguration{}, err
	}

	return JobConfiguration{Extract: &ExtractJob{
		SourceTable:       ref,
		DestinationURIs:   append([]string(nil), destinations...),
		PrintHeader:       true,
		FieldDelimiter:    orDefault(delimiter, ","),
		DestinationFormat: format,
	}}, nil
}

// HivePartitioning — параметры hive-партиционирования источника.
type HivePartitioning struct {
	Mode            string `json:"mode"`
	SourceURIPrefix string `json:"sourceUriPrefix"`
}

// LoadJob — конфигурация загрузки файлов в таблицу.
type LoadJob struct {
	SourceURIs          []string          `json:"sourceUris"`
	SourceFormat        string            `json:"sourceFormat"`
	DestinationTable    TableReference    `json:"destinationTable"`
	CreateDisposition   string            `json:"createDisposition,omitempty"`
	WriteDisposition    string            `json:"writeDisposition,omitempty"`
	HivePartitioning    *HivePartitioning `json:"hivePartitioningOptions,omitempty"`
	TimePartitioning    *TimePartitioning `json:"timePartitioning,omitempty"`
	SchemaUpdateOptions []string          `json:"schemaUpdateOptions,omitempty"`
}

// LoadOptions — необязательные параметры load задачи.
type LoadOptions struct {
	CreateDisposition   string
	WriteDisposition    string
	HivePrefix          string // включает hive-партиционирование AUTO
	TimePartitioning    *TimePartitioning
	SchemaUpdateOptions []string
}

// LoadConfiguration строит конфигурацию load задачи.
// destination может содержать декоратор партиции ("table$2024").
func LoadConfiguration(sources []string, format, destination string, opts LoadOptions) (JobConfiguration, error) {
	if err := checkFormat(format); err != nil {
		return JobConfiguration{}, err
	}
	if len(sources) == 0 {
		return JobConfiguration{}, concert.NewConfigurationError("load job", destination,
			"no source uris", concert.ErrInvalidParameter)
	}
	ref, err := ParseTableReference(destination)
	if err != nil {
		return JobConfiguration{}, err
	}

	job := &LoadJob{
		SourceURIs:          append([]string(nil), sources...),
		SourceFormat:        format,
		DestinationTable:    ref,
		CreateDisposition:   orDefault(opts.CreateDisposition, CreateIfNeeded),
		WriteDisposition:    orDefault(opts.WriteDisposition, WriteTruncate),
		TimePartitioning:    opts.TimePartitioning,
		SchemaUpdateOptions: opts.SchemaUpdateOptions,
	}
	if opts.HivePrefix != "" {
		job.HivePartitioning = &HivePartitioning{Mode: "AUTO", SourceURIPrefix: opts.HivePrefix}
	}
	return JobConfiguration{Load: job}, nil
}

func checkFormat(format string) error {
	if _, ok := extensions[format]; !ok {
		return concert.NewConfigurationError("job", format,
			"invalid format "+quote(format), concert.ErrInvalidParameter)
	}
	return nil
}

func quote(s string) string {
	return `"` + s + `"`
}

package domain

// MovementParameters — параметры одного Movement (одной таблицы).
//
// Собираются из общего шаблона композиции и переопределений таблицы
// через MergeMovementParameters до построения Movement и больше не меняются.
type MovementParameters struct {
	// Name — имя movement; совпадает с именем таблицы, если не задано явно.
	Name string `json:"name" yaml:"name,omitempty"`

	// ExtractConnectionID — идентификатор подключения к источнику.
	ExtractConnectionID string `json:"extract_connection_id,omitempty" yaml:"extract_connection_id,omitempty"`

	// ExtractionQuery — запрос выгрузки. По умолчанию SELECT всех полей таблицы.
	ExtractionQuery string `json:"extraction_query,omitempty" yaml:"extraction_query,omitempty"`

	// OffsetField — поле инкрементальной выгрузки (например, "last_update").
	OffsetField string `json:"offset_field,omitempty" yaml:"offset_field,omitempty"`

	// DataPartitioning — схема партиционирования в хранилище и в таблице назначения.
	DataPartitioning DataPartitioning `json:"data_partitioning" yaml:"data_partitioning,omitempty"`

	// MergePartition — ограничение merge по партиции таблицы назначения.
	// Если nil — merge сопоставляет строки только по первичному ключу.
	MergePartition *MergePartition `json:"merge_partition,omitempty" yaml:"merge_partition,omitempty"`

	// LoadMode — способ переноса raw vault → raw: "merge" (по умолчанию) или "load".
	LoadMode string `json:"load_mode,omitempty" yaml:"load_mode,omitempty"`

	// CreateTable — добавлять ли фразу создания/обновления raw таблицы.
	// nil — не задано: значение берётся из шаблона, иначе false.
	CreateTable *bool `json:"create_table,omitempty" yaml:"create_table,omitempty"`

	// SourceStorageType — тип объектного хранилища источника ("gcs", "s3").
	SourceStorageType string `json:"source_storage_type,omitempty" yaml:"source_storage_type,omitempty"`

	// SourceFileURI — URI исходного файла для storage ingestion.
	SourceFileURI string `json:"source_file_uri,omitempty" yaml:"source_file_uri,omitempty"`

	// DestinationFormat — формат файлов reverse ETL (CSV по умолчанию).
	// Выгрузка запроса всегда пишет PARQUET.
	DestinationFormat string `json:"destination_format,omitempty" yaml:"destination_format,omitempty"`

	// FieldDelimiter — разделитель полей CSV для reverse ETL.
	FieldDelimiter string `json:"field_delimiter,omitempty" yaml:"field_delimiter,omitempty"`
}

// DataPartitioning — партиционирование данных.
type DataPartitioning struct {
	// PartitioningType — тип партиционирования: "time" или "" (без партиций).
	PartitioningType string `json:"partitioning_type,omitempty" yaml:"partitioning_type,omitempty"`

	// PartitionGranularity — гранулярность: DAY, HOUR, MONTH, YEAR.
	PartitionGranularity string `json:"partition_granularity,omitempty" yaml:"partition_granularity,omitempty"`

	// PartitionField — поле партиционирования таблицы назначения.
	PartitionField string `json:"partition_field,omitempty" yaml:"partition_field,omitempty"`

	// StoragePartitionSchema — hive-схема каталогов в хранилище,
	// например "loadDate={{ ds }}/loadTimestamp={{ ts_nodash }}".
	StoragePartitionSchema string `json:"storage_partition_schema,omitempty" yaml:"storage_partition_schema,omitempty"`

	// DestinationPartition — партиция назначения (декоратор таблицы "$...").
	DestinationPartition string `json:"destination_partition,omitempty" yaml:"destination_partition,omitempty"`
}

// MergePartition — диапазон партиции для merge.
type MergePartition struct {
	// Field — поле партиции в основной таблице.
	Field string `json:"field" yaml:"field"`

	// Min — нижняя граница (включительно).
	Min string `json:"min" yaml:"min"`

	// Max — верхняя граница (включительно).
	Max string `json:"max" yaml:"max"`
}

// Значения LoadMode.
const (
	LoadModeMerge = "merge"
	LoadModeLoad  = "load"
)

// Партиции дельты, которые пишет выгрузка в raw vault.
const (
	DeltaDatePartition = "loadDate"
	DeltaTimePartition = "loadTimestamp"
)

// DefaultStoragePartitionSchema — hive-схема каталогов raw vault по умолчанию.
// Значения — макросы движка workflow, подставляются во время выполнения.
const DefaultStoragePartitionSchema = DeltaDatePartition + "={{ ds }}/" + DeltaTimePartition + "={{ ts_nodash }}"

// MergeMovementParameters объединяет шаблон с переопределениями таблицы.
//
// Непустые поля override заменяют поля шаблона. Name берётся из override,
// иначе из имени таблицы. Ни шаблон, ни override не изменяются.
func MergeMovementParameters(table Table, template MovementParameters) MovementParameters {
	result := template
	if template.CreateTable != nil {
		result.CreateTable = Bool(*template.CreateTable)
	}
	if template.MergePartition != nil {
		mp := *template.MergePartition
		result.MergePartition = &mp
	}

	if o := table.Overrides; o != nil {
		result.Name = firstNonEmpty(o.Name, result.Name)
		result.ExtractConnectionID = firstNonEmpty(o.ExtractConnectionID, result.ExtractConnectionID)
		result.ExtractionQuery = firstNonEmpty(o.ExtractionQuery, result.ExtractionQuery)
		result.OffsetField = firstNonEmpty(o.OffsetField, result.OffsetField)
		result.LoadMode = firstNonEmpty(o.LoadMode, result.LoadMode)
		result.SourceStorageType = firstNonEmpty(o.SourceStorageType, result.SourceStorageType)
		result.SourceFileURI = firstNonEmpty(o.SourceFileURI, result.SourceFileURI)
		result.DestinationFormat = firstNonEmpty(o.DestinationFormat, result.DestinationFormat)
		result.FieldDelimiter = firstNonEmpty(o.FieldDelimiter, result.FieldDelimiter)
		if o.CreateTable != nil {
			result.CreateTable = Bool(*o.CreateTable)
		}

		dp := &result.DataPartitioning
		dp.PartitioningType = firstNonEmpty(o.DataPartitioning.PartitioningType, dp.PartitioningType)
		dp.PartitionGranularity = firstNonEmpty(o.DataPartitioning.PartitionGranularity, dp.PartitionGranularity)
		dp.PartitionField = firstNonEmpty(o.DataPartitioning.PartitionField, dp.PartitionField)
		dp.StoragePartitionSchema = firstNonEmpty(o.DataPartitioning.StoragePartitionSchema, dp.StoragePartitionSchema)
		dp.DestinationPartition = firstNonEmpty(o.DataPartitioning.DestinationPartition, dp.DestinationPartition)

		if o.MergePartition != nil {
			mp := *o.MergePartition
			result.MergePartition = &mp
		}
	}

	// Имя по умолчанию
	if table.Overrides == nil || table.Overrides.Name == "" {
		result.Name = table.Name
	}
	if result.LoadMode == "" {
		result.LoadMode = LoadModeMerge
	}
	if result.DataPartitioning.StoragePartitionSchema == "" {
		result.DataPartitioning.StoragePartitionSchema = DefaultStoragePartitionSchema
	}

	return result
}

// CreatesTable возвращает true, если create_table явно включён.
func (p MovementParameters) CreatesTable() bool {
	return p.CreateTable != nil && *p.CreateTable
}

// Bool возвращает указатель на копию v.
func Bool(v bool) *bool { return &v }

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

package domain

import "time"

// Config — полная конфигурация композиции.
//
// Собирается из environment.yaml (окружение) и composition.yaml (композиция).
// Передаётся в Composition явно, глобального состояния нет.
type Config struct {
	// Name — имя композиции.
	Name string `json:"name" yaml:"name"`

	// Description — описание назначения композиции.
	Description string `json:"description,omitempty" yaml:"description,omitempty"`

	// Source — вид источника; по нему выбирается movement builder.
	Source SourceKind `json:"source" yaml:"source"`

	// SourceName — имя источника (база данных, бакет), участвует в путях raw vault.
	SourceName string `json:"source_name" yaml:"source_name"`

	// TablePrefix — префикс имён таблиц в хранилище.
	TablePrefix string `json:"table_prefix,omitempty" yaml:"table_prefix,omitempty"`

	// SecretManagerURI — секрет с параметрами подключения к источнику.
	SecretManagerURI string `json:"secret_manager_uri,omitempty" yaml:"secret_manager_uri,omitempty"`

	// Dataproc — параметры кластера выгрузки (только для RDBMS).
	Dataproc DataprocConfig `json:"dataproc_config,omitempty" yaml:"dataproc_config,omitempty"`

	// DagParameters — параметры корневого контейнера.
	DagParameters DagParameters `json:"dag_parameters" yaml:"dag_parameters"`

	// MovementTemplate — общий шаблон MovementParameters для всех таблиц.
	MovementTemplate MovementParameters `json:"movement_parameters,omitempty" yaml:"movement_parameters,omitempty"`

	// TrustedQueries — SQL для фразы raw → trusted (по одной задаче на запрос).
	TrustedQueries []string `json:"trusted_queries,omitempty" yaml:"trusted_queries,omitempty"`

	// Tables — каталог таблиц.
	Tables []Table `json:"tables" yaml:"tables"`

	// Environment — параметры окружения.
	Environment Environment `json:"environment" yaml:"-"`
}

// Environment — параметры окружения (проект, датасеты, бакеты).
type Environment struct {
	Project         string `json:"project" yaml:"project"`
	Region          string `json:"region" yaml:"region"`
	Zone            string `json:"zone,omitempty" yaml:"zone,omitempty"`
	LandingBucket   string `json:"landing_bucket,omitempty" yaml:"landing_bucket,omitempty"`
	RawVaultBucket  string `json:"raw_vault_bucket" yaml:"raw_vault_bucket"`
	StagingBucket   string `json:"staging_bucket,omitempty" yaml:"staging_bucket,omitempty"`
	ArtifactBucket  string `json:"artifact_bucket,omitempty" yaml:"artifact_bucket,omitempty"`
	RawVaultDataset string `json:"raw_vault_dataset" yaml:"raw_vault_dataset"`
	RawDataset      string `json:"raw_dataset" yaml:"raw_dataset"`
	TrustedDataset  string `json:"trusted_dataset,omitempty" yaml:"trusted_dataset,omitempty"`
	PIIDataset      string `json:"pii_dataset,omitempty" yaml:"pii_dataset,omitempty"`
	DataLakeConnID  string `json:"data_lake_connection_id,omitempty" yaml:"data_lake_connection_id,omitempty"`
	GCPConnectionID string `json:"gcp_connection_id,omitempty" yaml:"gcp_connection_id,omitempty"`

	// ReverseEtlBucket — бакет файлов reverse ETL (только для source: bigquery).
	ReverseEtlBucket string `json:"reverse_etl_bucket,omitempty" yaml:"reverse_etl_bucket,omitempty"`
}

// DataprocConfig — параметры эфемерного кластера выгрузки.
type DataprocConfig struct {
	// Subnet — подсеть кластера.
	Subnet string `json:"subnet,omitempty" yaml:"subnet,omitempty"`

	// MachineType — тип машин воркеров.
	MachineType string `json:"machine_type,omitempty" yaml:"machine_type,omitempty"`

	// NumWorkers — количество вторичных воркеров.
	NumWorkers int `json:"num_workers,omitempty" yaml:"num_workers,omitempty"`

	// Parallelism — spark.default.parallelism и spark.sql.shuffle.partitions.
	Parallelism int `json:"parallelism,omitempty" yaml:"parallelism,omitempty"`
}

// DagParameters — параметры корневого контейнера (DAG).
type DagParameters struct {
	// DagID — идентификатор; в режиме multi к нему добавляется ".<таблица>".
	DagID string `json:"dag_id" yaml:"dag_id"`

	// Description — описание DAG.
	Description string `json:"description,omitempty" yaml:"description,omitempty"`

	// Schedule — cron-выражение или дескриптор (@daily). Пусто — запуск вручную.
	Schedule string `json:"schedule_interval,omitempty" yaml:"schedule_interval,omitempty"`

	// StartDate — дата начала расписания.
	StartDate time.Time `json:"start_date" yaml:"start_date"`

	// EndDate — дата окончания расписания (необязательна).
	EndDate *time.Time `json:"end_date,omitempty" yaml:"end_date,omitempty"`

	// Catchup — догонять ли пропущенные интервалы.
	Catchup bool `json:"catchup" yaml:"catchup"`

	// Tags — теги DAG.
	Tags []string `json:"tags,omitempty" yaml:"tags,omitempty"`

	// DefaultArgs — аргументы задач по умолчанию (owner и т.п.).
	DefaultArgs map[string]string `json:"default_args,omitempty" yaml:"default_args,omitempty"`
}

// WithDagID возвращает копию параметров с другим идентификатором.
func (p DagParameters) WithDagID(dagID string) DagParameters {
	p.DagID = dagID
	p.Tags = append([]string(nil), p.Tags...)
	if p.DefaultArgs != nil {
		args := make(map[string]string, len(p.DefaultArgs))
		for k, v := range p.DefaultArgs {
			args[k] = v
		}
		p.DefaultArgs = args
	}
	return p
}

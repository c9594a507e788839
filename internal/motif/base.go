package motif

import (
	"github.com/shaiso/Concert/internal/concert"
	"github.com/shaiso/Concert/internal/workflow"
)

// Операторы движка.
const (
	OperatorStart                 = "start"
	OperatorEnd                   = "end"
	OperatorInsertJob             = "bigquery_insert_job"
	OperatorCreateExternalTable   = "bigquery_create_external_table"
	OperatorCreateDataprocCluster = "dataproc_create_cluster"
	OperatorSubmitDataprocJob     = "dataproc_submit_job"
	OperatorDeleteDataprocCluster = "dataproc_delete_cluster"
	OperatorStorageToStorage      = "storage_to_storage"
)

// DefaultConnectionID — подключение к GCP по умолчанию.
const DefaultConnectionID = "google_cloud_default"

// named — имя мотива с именем типа по умолчанию.
type named struct {
	name string
}

func newNamed(name, typeName string) named {
	if name == "" {
		name = typeName
	}
	return named{name: name}
}

// Name реализует concert.Motif.
func (n named) Name() string { return n.name }

// jobTask — задача insert job с конфигурацией cfg.
func jobTask(id, connID string, cfg any) workflow.Task {
	return workflow.Task{
		ID:       id,
		Operator: OperatorInsertJob,
		Config: map[string]any{
			"configuration": cfg,
			"gcp_conn_id":   connOrDefault(connID),
		},
	}
}

func connOrDefault(connID string) string {
	if connID == "" {
		return DefaultConnectionID
	}
	return connID
}

// Проверки, что мотивы реализуют concert.Motif.
var (
	_ concert.Motif = Start{}
	_ concert.Motif = End{}
	_ concert.Motif = QueryJob{}
	_ concert.Motif = ExportQueryToStorage{}
	_ concert.Motif = CreateOrUpdateTable{}
	_ concert.Motif = MergeTable{}
	_ concert.Motif = ExportRdbmsTable{}
	_ concert.Motif = StorageToStorage{}
	_ concert.Motif = ExtractTable{}
	_ concert.Motif = CreateExternalTable{}
	_ concert.Motif = LoadStorageToTable{}
)

package motif

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/shaiso/Concert/internal/concert"
	"github.com/shaiso/Concert/internal/domain"
	"github.com/shaiso/Concert/internal/workflow"
)

// jdbcDriver — драйвер и шаблон URL для JDBC выгрузки.
type jdbcDriver struct {
	class string
	url   string // {host} и {port} подставляются скриптом из секрета
}

var jdbcDrivers = map[domain.SourceKind]jdbcDriver{
	domain.SourceMySQL:      {class: "com.mysql.cj.jdbc.Driver", url: "jdbc:mysql://{host}:{port}/%s"},
	domain.SourcePostgreSQL: {class: "org.postgresql.Driver", url: "jdbc:postgresql://{host}:{port}/%s"},
	domain.SourceMSSQL:      {class: "com.microsoft.sqlserver.jdbc.SQLServerDriver", url: "jdbc:sqlserver://{host}:{port};databaseName=%s"},
}

// ExportRdbmsTable — выгрузка таблицы СУБД в raw vault через эфемерный
// кластер Dataproc.
//
// Составной мотив: группа start → create_dataproc_cluster →
// jdbc_to_raw_vault → delete_dataproc_cluster.
type ExportRdbmsTable struct {
	named
	driver   jdbcDriver
	config   domain.Config
	params   domain.MovementParameters
	pyScript string

	destination string
}

// NewExportRdbmsTable создаёт выгрузку для СУБД cfg.Source.
func NewExportRdbmsTable(name string, cfg domain.Config, params domain.MovementParameters) (ExportRdbmsTable, error) {
	driver, ok := jdbcDrivers[cfg.Source]
	if !ok {
		known := make([]string, 0, len(jdbcDrivers))
		for _, k := range domain.SourceKinds() {
			if _, ok := jdbcDrivers[k]; ok {
				known = append(known, k.String())
			}
		}
		return ExportRdbmsTable{}, &concert.UnsupportedVariantError{Variant: cfg.Source.String(), Known: known}
	}

	return ExportRdbmsTable{
		named:  newNamed(name, "ExportRdbmsTable"),
		driver: driver,
		config: cfg,
		params: params,
		pyScript: "gs://" + cfg.Environment.ArtifactBucket +
			"/pyspark-scripts/jdbc-to-gcs/jdbc_to_gcs.py",
	}, nil
}

// WithScript возвращает копию с другим pyspark скриптом выгрузки.
func (m ExportRdbmsTable) WithScript(uri string) ExportRdbmsTable {
	m.pyScript = uri
	return m
}

// BindDestination возвращает копию с префиксом raw vault.
func (m ExportRdbmsTable) BindDestination(uri string) ExportRdbmsTable {
	m.destination = strings.TrimSuffix(uri, "/")
	return m
}

// ExtractionQuery возвращает запрос выгрузки.
//
// По умолчанию — вся таблица, либо окно по OffsetField между
// execution_date и next_execution_date движка.
func (m ExportRdbmsTable) ExtractionQuery() string {
	if m.params.ExtractionQuery != "" {
		return m.params.ExtractionQuery
	}
	q := "SELECT * FROM " + m.params.Name
	if f := m.params.OffsetField; f != "" {
		q += " WHERE " + f + " >= '{{ execution_date }}' AND " + f + " < '{{ next_execution_date }}'"
	}
	return q
}

// ClusterName возвращает имя кластера Dataproc (строчные буквы, цифры и дефисы).
func (m ExportRdbmsTable) ClusterName() string {
	raw := strings.ToLower("concert-" + m.config.SourceName + "-" + m.params.Name)
	var b strings.Builder
	for _, r := range raw {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		default:
			b.WriteRune('-')
		}
	}
	name := b.String()
	if len(name) > 51 {
		name = name[:51]
	}
	return strings.TrimRight(name, "-")
}

// Build реализует concert.Motif.
func (m ExportRdbmsTable) Build(scope concert.Scope) (workflow.Node, error) {
	if m.destination == "" {
		return nil, concert.NotBound("ExportRdbmsTable", m.name, "destination")
	}

	group, err := scope.Group(m.name)
	if err != nil {
		return nil, fmt.Errorf("create export group %s: %w", m.name, err)
	}
	inner := scope.Within(group)

	env := m.config.Environment
	tasks := []workflow.Task{
		{
			ID:       "start",
			Operator: OperatorStart,
			Config:   phaseConfig(m.params.Name),
		},
		{
			ID:       "create_dataproc_cluster",
			Operator: OperatorCreateDataprocCluster,
			Config: map[string]any{
				"project_id":     env.Project,
				"region":         env.Region,
				"cluster_name":   m.ClusterName(),
				"cluster_config": m.clusterConfig(),
			},
		},
		{
			ID:       "jdbc_to_raw_vault",
			Operator: OperatorSubmitDataprocJob,
			Config: map[string]any{
				"project_id": env.Project,
				"region":     env.Region,
				"job":        m.pysparkJob(),
			},
		},
		{
			ID:       "delete_dataproc_cluster",
			Operator: OperatorDeleteDataprocCluster,
			Config: map[string]any{
				"project_id":   env.Project,
				"region":       env.Region,
				"cluster_name": m.ClusterName(),
				"trigger_rule": "all_done",
			},
		},
	}

	nodes := make([]workflow.Node, 0, len(tasks))
	for _, t := range tasks {
		node, err := inner.Task(t)
		if err != nil {
			return nil, err
		}
		nodes = append(nodes, node)
	}
	if err := inner.Chain(nodes...); err != nil {
		return nil, err
	}

	return group, nil
}

func (m ExportRdbmsTable) pysparkJob() map[string]any {
	partition := m.params.DataPartitioning.StoragePartitionSchema
	if partition == "" {
		partition = domain.DefaultStoragePartitionSchema
	}

	return map[string]any{
		"reference": map[string]any{"project_id": m.config.Environment.Project},
		"placement": map[string]any{"cluster_name": m.ClusterName()},
		"pyspark_job": map[string]any{
			"main_python_file_uri": m.pyScript,
			"args": []string{
				m.driver.class,
				fmt.Sprintf(m.driver.url, m.config.SourceName),
				m.config.SecretManagerURI + "/versions/latest",
				m.config.SourceName,
				m.ExtractionQuery(),
				"{{ ts_nodash }}",
				m.destination + "/" + partition + "/",
			},
		},
	}
}

func (m ExportRdbmsTable) clusterConfig() map[string]any {
	env := m.config.Environment
	dp := m.config.Dataproc
	parallelism := strconv.Itoa(dp.Parallelism)

	return map[string]any{
		"temp_bucket": env.StagingBucket,
		"gce_cluster_config": map[string]any{
			"zone_uri":       env.Zone,
			"subnetwork_uri": dp.Subnet,
			"tags":           []string{"dataproc"},
		},
		"master_config": map[string]any{"machine_type_uri": "n1-standard-4"},
		"software_config": map[string]any{
			"image_version": "1.4",
			"properties": map[string]string{
				"spark:spark.default.parallelism":    parallelism,
				"spark:spark.sql.shuffle.partitions": parallelism,
			},
		},
		"worker_config": map[string]any{
			"machine_type_uri": dp.MachineType,
			"num_instances":    2,
		},
		"secondary_worker_config": map[string]any{
			"machine_type_uri": dp.MachineType,
			"num_instances":    dp.NumWorkers,
		},
		"autoscaling_config": map[string]any{
			"policy_uri": "projects/" + env.Project + "/regions/" + env.Region +
				"/autoscalingPolicies/ephemeral-clusters",
		},
	}
}

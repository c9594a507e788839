package cli

import (
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/shaiso/Concert/internal/config"
	"github.com/shaiso/Concert/internal/domain"
	"github.com/shaiso/Concert/internal/phrase"
)

// ValidateResult — итог проверки конфигурации.
type ValidateResult struct {
	Name     string        `json:"name"`
	Source   string        `json:"source"`
	DagID    string        `json:"dag_id"`
	Schedule string        `json:"schedule_interval,omitempty"`
	NextRuns []time.Time   `json:"next_runs,omitempty"`
	Tables   []TableResult `json:"tables"`
}

// TableResult — таблица каталога с итоговыми параметрами загрузки.
type TableResult struct {
	Name       string   `json:"name"`
	PrimaryKey string   `json:"primary_key,omitempty"`
	LoadMode   string   `json:"load_mode"`
	Fields     int      `json:"fields"`
	PII        []string `json:"pii,omitempty"`
}

func tableResults(cfg domain.Config, tables []domain.Table) []TableResult {
	out := make([]TableResult, len(tables))
	for i, t := range tables {
		params := domain.MergeMovementParameters(t, cfg.MovementTemplate)
		mode := params.LoadMode
		if cfg.Source.IsWarehouse() {
			mode = phrase.ExportTable
			if params.ExtractionQuery != "" {
				mode = phrase.ExportQuery
			}
		}
		out[i] = TableResult{
			Name:       t.Name,
			PrimaryKey: t.PrimaryKey,
			LoadMode:   mode,
			Fields:     len(t.Fields),
			PII:        t.PIIColumns(),
		}
	}
	return out
}

func tableRows(tables []TableResult) [][]string {
	rows := make([][]string, len(tables))
	for i, t := range tables {
		rows[i] = []string{t.Name, t.PrimaryKey, t.LoadMode, strconv.Itoa(t.Fields), strings.Join(t.PII, ",")}
	}
	return rows
}

var tableHeaders = []string{"TABLE", "PRIMARY_KEY", "LOAD_MODE", "FIELDS", "PII"}

// NewValidateCmd создаёт команду проверки конфигурации.
func NewValidateCmd(projectFn func() Project, outputFn func() *Output) *cobra.Command {
	var next int

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate the environment and composition files",
		RunE: func(cmd *cobra.Command, args []string) error {
			project := projectFn()
			out := outputFn()

			cfg, err := project.Load()
			if err != nil {
				return err
			}

			res := ValidateResult{
				Name:     cfg.Name,
				Source:   cfg.Source.String(),
				DagID:    cfg.DagParameters.DagID,
				Schedule: cfg.DagParameters.Schedule,
				Tables:   tableResults(cfg, cfg.Tables),
			}
			if next > 0 {
				from := time.Now()
				if cfg.DagParameters.StartDate.After(from) {
					from = cfg.DagParameters.StartDate
				}
				if res.NextRuns, err = config.NextRuns(res.Schedule, from, next); err != nil {
					return err
				}
			}

			out.Success("Configuration is valid: " + cfg.Name)
			if !out.JSONMode() {
				for _, t := range res.NextRuns {
					out.Success("Next run: " + t.Format(time.RFC3339))
				}
			}
			out.Print(tableHeaders, tableRows(res.Tables), res)
			return nil
		},
	}

	cmd.Flags().IntVar(&next, "next", 3, "Number of upcoming runs to show")

	return cmd
}

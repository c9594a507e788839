package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/shaiso/Concert/internal/workflow"
)

// catalogFlags добавляет флаги выбора каталога.
func catalogFlags(cmd *cobra.Command, opts *CatalogOptions) {
	cmd.Flags().StringVar(&opts.Kind, "catalog", CatalogStatic, "Target catalog: static or postgres")
	cmd.Flags().StringVar(&opts.Schema, "schema", "public", "Database schema for --catalog postgres")
	cmd.Flags().StringSliceVar(&opts.Include, "include", nil, "Tables to include from --catalog postgres")
}

// NewRenderCmd создаёт команду сборки манифестов без публикации.
func NewRenderCmd(projectFn func() Project, outputFn func() *Output) *cobra.Command {
	var multi bool
	var outDir string
	var catOpts CatalogOptions

	cmd := &cobra.Command{
		Use:   "render",
		Short: "Build the composition and print or write its manifests",
		RunE: func(cmd *cobra.Command, args []string) error {
			project := projectFn()
			out := outputFn()

			cfg, err := project.Load()
			if err != nil {
				return err
			}
			cat, release, err := project.OpenCatalog(cmd.Context(), cfg, catOpts)
			if err != nil {
				return err
			}
			defer release()

			graphs, err := project.Render(cmd.Context(), cfg, cat, multi)
			if err != nil {
				return err
			}
			manifests, err := Manifests(graphs)
			if err != nil {
				return err
			}

			files := make([]string, len(manifests))
			if outDir != "" {
				if files, err = writeManifests(outDir, manifests); err != nil {
					return err
				}
				out.Successf("Wrote %d manifest(s) to %s", len(files), outDir)
			}

			headers := []string{"DAG_ID", "NODES", "TASKS", "EDGES", "FILE"}
			rows := make([][]string, len(manifests))
			for i, m := range manifests {
				rows[i] = []string{
					m.DagID,
					strconv.Itoa(len(m.Nodes)),
					strconv.Itoa(m.TaskCount()),
					strconv.Itoa(len(m.Edges)),
					files[i],
				}
			}
			out.Print(headers, rows, manifests)
			return nil
		},
	}

	cmd.Flags().BoolVar(&multi, "multi", false, "Build one DAG per table")
	cmd.Flags().StringVar(&outDir, "out-dir", "", "Write manifests as <dag_id>.json into this directory")
	catalogFlags(cmd, &catOpts)

	return cmd
}

func writeManifests(dir string, manifests []*workflow.Manifest) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}

	files := make([]string, 0, len(manifests))
	for _, m := range manifests {
		data, err := m.Marshal()
		if err != nil {
			return nil, err
		}
		path := filepath.Join(dir, m.DagID+".json")
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return nil, fmt.Errorf("write manifest %s: %w", m.DagID, err)
		}
		files = append(files, path)
	}
	return files, nil
}

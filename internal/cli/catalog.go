package cli

import (
	"github.com/spf13/cobra"
)

// NewCatalogCmd создаёт команду просмотра каталога целей.
func NewCatalogCmd(projectFn func() Project, outputFn func() *Output) *cobra.Command {
	var catOpts CatalogOptions

	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "List the tables the composition would ingest",
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

			tables, err := cat.List(cmd.Context())
			if err != nil {
				return err
			}

			res := tableResults(cfg, tables)
			out.Print(tableHeaders, tableRows(res), res)
			return nil
		},
	}

	catalogFlags(cmd, &catOpts)

	return cmd
}

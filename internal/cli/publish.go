package cli

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/shaiso/Concert/internal/deploy"
	"github.com/shaiso/Concert/internal/mq"
)

// brokerURL возвращает адрес RabbitMQ из RABBITMQ_URL.
func brokerURL() string {
	if v := os.Getenv("RABBITMQ_URL"); v != "" {
		return v
	}
	return mq.DefaultURL()
}

// NewPublishCmd создаёт команду публикации манифестов в объектное хранилище.
//
// С --announce о каждом манифесте сообщается в очередь manifests.published.
func NewPublishCmd(projectFn func() Project, outputFn func() *Output) *cobra.Command {
	var multi, announce bool
	var catOpts CatalogOptions

	cmd := &cobra.Command{
		Use:   "publish",
		Short: "Build the composition and upload its manifests",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			project := projectFn()
			out := outputFn()

			cfg, err := project.Load()
			if err != nil {
				return err
			}
			cat, release, err := project.OpenCatalog(ctx, cfg, catOpts)
			if err != nil {
				return err
			}
			defer release()

			graphs, err := project.Render(ctx, cfg, cat, multi)
			if err != nil {
				return err
			}

			store, err := deploy.NewMinioStore(deploy.MinioConfigFromEnv())
			if err != nil {
				return err
			}
			if err := store.EnsureBucket(ctx); err != nil {
				return err
			}

			pubCfg := deploy.Config{
				Store:   store,
				Metrics: project.Metrics,
				Logger:  project.logger(),
			}
			if announce {
				conn, err := mq.NewConnection(brokerURL(), project.logger())
				if err != nil {
					return err
				}
				defer conn.Close()
				if err := mq.SetupTopology(ctx, conn); err != nil {
					return err
				}
				pubCfg.Announcer = mq.NewPublisher(conn, project.logger())
			}

			results, err := deploy.New(pubCfg).PublishGraphs(ctx, graphs)
			printResults(out, results)
			if err != nil {
				return fmt.Errorf("published %d of %d manifests: %w", len(results), len(graphs), err)
			}
			out.Successf("Published %d manifest(s)", len(results))
			return nil
		},
	}

	cmd.Flags().BoolVar(&multi, "multi", false, "Build one DAG per table")
	cmd.Flags().BoolVar(&announce, "announce", false, "Announce published manifests on RabbitMQ")
	catalogFlags(cmd, &catOpts)

	return cmd
}

func printResults(out *Output, results []deploy.Result) {
	headers := []string{"DAG_ID", "BUILD_ID", "TASKS", "SIZE", "LOCATION"}
	rows := make([][]string, len(results))
	for i, r := range results {
		rows[i] = []string{
			r.DagID,
			r.BuildID.String(),
			strconv.Itoa(r.Tasks),
			strconv.FormatInt(r.Size, 10),
			r.Location,
		}
	}
	out.Print(headers, rows, results)
}

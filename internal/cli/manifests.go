package cli

import (
	"strconv"

	"github.com/spf13/cobra"
)

// NewManifestsCmd создаёт группу команд для чтения манифестов через API.
func NewManifestsCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "manifests",
		Short: "Inspect manifests served by concert serve",
	}

	cmd.AddCommand(
		newManifestsListCmd(clientFn, outputFn),
		newManifestsShowCmd(clientFn, outputFn),
		newManifestsAnnouncementsCmd(clientFn, outputFn),
		newManifestsPreviewCmd(clientFn, outputFn),
	)

	return cmd
}

var summaryHeaders = []string{"DAG_ID", "ANNOUNCED", "BUILD_ID", "TASKS", "LOCATION"}

func summaryRows(items []ManifestSummary) [][]string {
	rows := make([][]string, len(items))
	for i, s := range items {
		rows[i] = []string{s.DagID, strconv.FormatBool(s.Announced), s.BuildID, strconv.Itoa(s.Tasks), s.Location}
	}
	return rows
}

func newManifestsListCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List published manifests",
		RunE: func(cmd *cobra.Command, args []string) error {
			items, err := clientFn().ListManifests()
			if err != nil {
				return err
			}
			outputFn().Print(summaryHeaders, summaryRows(items), items)
			return nil
		},
	}
}

func newManifestsShowCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "show DAG_ID",
		Short: "Show the nodes of a published manifest",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := clientFn().GetManifest(args[0])
			if err != nil {
				return err
			}

			rows := make([][]string, len(m.Nodes))
			for i, n := range m.Nodes {
				rows[i] = []string{n.ID, n.Kind, n.Operator, n.Parent}
			}
			outputFn().Print([]string{"NODE", "KIND", "OPERATOR", "PARENT"}, rows, m)
			return nil
		},
	}
}

func newManifestsAnnouncementsCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "announcements",
		Short: "List announcements received from the queue",
		RunE: func(cmd *cobra.Command, args []string) error {
			items, err := clientFn().ListAnnouncements()
			if err != nil {
				return err
			}
			outputFn().Print(summaryHeaders, summaryRows(items), items)
			return nil
		},
	}
}

func newManifestsPreviewCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "preview",
		Short: "Build the server's composition without publishing",
		RunE: func(cmd *cobra.Command, args []string) error {
			items, err := clientFn().Preview()
			if err != nil {
				return err
			}

			rows := make([][]string, len(items))
			for i, p := range items {
				rows[i] = []string{p.DagID, p.Schedule, strconv.Itoa(p.Nodes), strconv.Itoa(p.Tasks), strconv.Itoa(p.Edges)}
			}
			outputFn().Print([]string{"DAG_ID", "SCHEDULE", "NODES", "TASKS", "EDGES"}, rows, items)
			return nil
		},
	}
}

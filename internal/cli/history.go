package cli

import (
	"fmt"
	"sort"

	"docsynth/internal/client"
	"docsynth/internal/history"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"
)

func newHistoryCommand(opts *rootOptions) *cobra.Command {
	var server string
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show past guide generations and counts per project type",
		RunE: func(cmd *cobra.Command, args []string) error {
			clientCfg := opts.cfg.Client
			if server != "" {
				clientCfg.BaseURL = server
			}
			store := history.New()
			if err := client.New(clientCfg).LoadHistory(cmd.Context(), store); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			records := store.Records()
			if len(records) == 0 {
				fmt.Fprintln(out, "no guides generated yet")
				return nil
			}

			rows := make([][]string, 0, len(records))
			for _, r := range records {
				rows = append(rows, []string{
					r.ID.String(),
					r.ProjectType,
					string(r.Status),
					r.CreatedAt.Local().Format("2006-01-02 15:04:05"),
				})
			}
			t := table.New().
				Border(lipgloss.NormalBorder()).
				Headers("ID", "PROJECT TYPE", "STATUS", "CREATED AT").
				Rows(rows...)
			fmt.Fprintln(out, t.String())

			counts := store.CountByProjectType()
			types := make([]string, 0, len(counts))
			for k := range counts {
				types = append(types, k)
			}
			sort.Strings(types)
			fmt.Fprintln(out, "project types:")
			for _, k := range types {
				fmt.Fprintf(out, "  %-20s %d\n", k, counts[k])
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&server, "server", "", "generation service base URL (overrides client.base_url)")
	return cmd
}

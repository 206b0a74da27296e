// ABOUTME: Visualization CLI commands
// ABOUTME: Handles the terminal dashboard and cadence graph generation
package cli

import (
	"fmt"
	"os"

	"github.com/harperreed/commtrack/viz"
	"github.com/spf13/cobra"
)

func newDashboardCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "dashboard",
		Short: "Show the cadence dashboard",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			stats, err := viz.GenerateDashboardStats(a.db, a.now())
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), viz.RenderDashboard(stats))
			return nil
		},
	}
}

func newGraphCmd(a *app) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "graph",
		Short: "Generate a Graphviz graph of companies grouped by status",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			dot, err := viz.NewGraphGenerator(a.db).GenerateCadenceGraph(a.now())
			if err != nil {
				return err
			}

			if output != "" {
				if err := os.WriteFile(output, []byte(dot), 0644); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "✓ Graph written to %s\n", output)
				return nil
			}

			fmt.Fprintln(cmd.OutOrStdout(), dot)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file (default: stdout)")
	return cmd
}

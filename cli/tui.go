// ABOUTME: Interactive terminal UI subcommand
// ABOUTME: Launches the Bubble Tea interface as the logged-in user
package cli

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/harperreed/commtrack/tui"
	"github.com/spf13/cobra"
)

func newTUICmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Open the interactive terminal interface",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			user, err := a.session().Load()
			if err != nil {
				return err
			}

			p := tea.NewProgram(tui.NewModel(a.db, user, a.now), tea.WithAltScreen())
			if _, err := p.Run(); err != nil {
				return fmt.Errorf("tui failed: %w", err)
			}
			return nil
		},
	}
}

package cli

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/sadopc/timetracer/internal/tui"
)

func newBrowseCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "browse",
		Short: "Browse stored days, projects and stats in the terminal",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := e.openStore()
			if err != nil {
				return err
			}
			defer s.Close()

			p := tea.NewProgram(tui.NewApp(s), tea.WithAltScreen(), tea.WithInput(e.in), tea.WithOutput(e.out))
			_, err = p.Run()
			return err
		},
	}
}

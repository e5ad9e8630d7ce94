package cmd

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/mattsolo1/grove-nodemanager/internal/tui/browser"
	"github.com/mattsolo1/grove-nodemanager/pkg/service"
)

// NewTuiCmd creates the `nm tui` command.
func NewTuiCmd(svc **service.Service) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tui",
		Short: "Browse and edit folders, favorites and notes interactively",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !isatty.IsTerminal(os.Stdout.Fd()) && !isatty.IsCygwinTerminal(os.Stdout.Fd()) {
				return fmt.Errorf("TUI mode requires an interactive terminal")
			}

			model := browser.New(*svc)
			defer model.Close()
			p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(cmd.Context()))
			if _, err := p.Run(); err != nil {
				return fmt.Errorf("error running TUI: %w", err)
			}
			return nil
		},
	}
	return cmd
}

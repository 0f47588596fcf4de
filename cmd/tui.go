package cmd

import (
	"fmt"
	"io"

	"github.com/theirongolddev/pbudget/internal/config"
	"github.com/theirongolddev/pbudget/internal/logging"
	"github.com/theirongolddev/pbudget/internal/tui"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/spf13/cobra"
)

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Launch interactive TUI dashboard",
	Args:  cobra.NoArgs,
	RunE:  runTUI,
}

func init() {
	rootCmd.AddCommand(tuiCmd)
}

func runTUI(_ *cobra.Command, _ []string) error {
	// Log lines on stderr would tear the alternate screen.
	logging.SetOutput(io.Discard)

	return withEnv(func(env *appEnv) error {
		// Force TrueColor profile so all background styling produces ANSI codes
		// Without this, lipgloss may default to Ascii profile (no colors)
		lipgloss.SetColorProfile(termenv.TrueColor)

		app := tui.NewApp(tui.Options{
			Service:   env.svc,
			Config:    env.cfg,
			DBPath:    env.cfg.DBPath(),
			NeedSetup: !config.Exists(),
		})
		p := tea.NewProgram(app, tea.WithAltScreen(), tea.WithMouseCellMotion())

		if _, err := p.Run(); err != nil {
			return fmt.Errorf("TUI error: %w", err)
		}
		return nil
	})
}

package cmd

import (
	"fmt"

	"cloud.google.com/go/civil"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/theirongolddev/runway/internal/tui"
	"github.com/theirongolddev/runway/internal/tui/theme"
)

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Launch interactive TUI dashboard",
	RunE:  runTUI,
}

func init() {
	rootCmd.AddCommand(tuiCmd)
}

func runTUI(_ *cobra.Command, _ []string) error {
	day, err := today()
	if err != nil {
		return err
	}
	theme.SetActive(cfg.Display.Theme)

	// Force TrueColor so background styling always produces ANSI codes.
	lipgloss.SetColorProfile(termenv.TrueColor)

	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	opts := tui.Options{
		Store:     st,
		Config:    cfg,
		Owner:     ownerName(),
		Currency:  cfg.Display.Currency,
		Threshold: cfg.Alerts.Threshold,
		// The dashboard owns the screen; stderr logs would tear it.
		Log: zerolog.Nop(),
	}
	if flagVerbose {
		opts.Log = log
	}
	if flagToday != "" {
		opts.Today = func() civil.Date { return day }
	}

	p := tea.NewProgram(tui.NewApp(opts), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}
	return nil
}

package cmd

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/theirongolddev/ccmonitor/internal/config"
	"github.com/theirongolddev/ccmonitor/internal/model"
	"github.com/theirongolddev/ccmonitor/internal/pipeline"
	"github.com/theirongolddev/ccmonitor/internal/tui"
	"github.com/theirongolddev/ccmonitor/internal/tui/theme"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/spf13/cobra"
)

var dashboardCmd = &cobra.Command{
	Use:     "dashboard",
	Aliases: []string{"tui"},
	Short:   "Launch interactive TUI dashboard",
	RunE:    runDashboard,
}

func init() {
	rootCmd.AddCommand(dashboardCmd)
}

func runDashboard(_ *cobra.Command, _ []string) error {
	cfg := loadConfig()
	theme.SetActive(cfg.Appearance.Theme)

	// Force TrueColor profile so all background styling produces ANSI codes.
	// Without this, lipgloss may default to Ascii profile (no colors).
	lipgloss.SetColorProfile(termenv.TrueColor)

	// Log lines would tear the alt screen.
	if !flagDebug {
		logger = slog.New(slog.DiscardHandler)
	}

	loader := func(ctx context.Context, progress pipeline.ProgressFunc) (model.UsageStats, error) {
		// Reload the config so a setup run inside the dashboard takes effect.
		cfg := loadConfig()
		result, err := loadRecords(ctx, cfg, progress)
		if err != nil {
			return model.UsageStats{}, err
		}
		return pipeline.Compute(result.Records, cfg.PricingTable()), nil
	}

	app := tui.NewApp(tui.Options{
		Loader:    loader,
		Pricing:   cfg.PricingTable(),
		NeedSetup: !config.Exists(),
		Config:    cfg,
	})
	p := tea.NewProgram(app, tea.WithAltScreen())

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}

	return nil
}

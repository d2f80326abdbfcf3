package cmd

import (
	"errors"
	"fmt"

	"github.com/theirongolddev/ccmonitor/internal/config"
	"github.com/theirongolddev/ccmonitor/internal/source"
	"github.com/theirongolddev/ccmonitor/internal/tui"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"
)

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "First-time setup wizard",
	RunE:  runSetup,
}

func init() {
	rootCmd.AddCommand(setupCmd)
}

func runSetup(_ *cobra.Command, _ []string) error {
	cfg := loadConfig()

	// Count sessions for the welcome note; no data yet is fine here.
	sessionCount := -1
	if dirs, err := source.ResolveDirs(flagDataDirs, cfg.General.ClaudeDirs); err == nil {
		if files, err := source.ScanDirs(dirs); err == nil {
			sessionCount = len(files)
		}
	}

	vals := tui.NewSetupValues(cfg)
	if err := tui.NewSetupForm(sessionCount, vals).Run(); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			fmt.Println("\n  Setup cancelled, nothing saved.")
			return nil
		}
		return fmt.Errorf("setup form: %w", err)
	}

	cfg = vals.Apply(cfg)
	if err := config.Save(cfg); err != nil {
		return fmt.Errorf("saving config: %w", err)
	}

	fmt.Println()
	fmt.Printf("  Saved to %s\n", config.Path())
	fmt.Println("  Run `ccmonitor setup` anytime to reconfigure.")
	fmt.Println()

	return nil
}

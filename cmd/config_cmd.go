package cmd

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/theirongolddev/ccmonitor/internal/config"
	"github.com/theirongolddev/ccmonitor/internal/pipeline"
	"github.com/theirongolddev/ccmonitor/internal/source"
	"github.com/theirongolddev/ccmonitor/internal/store"

	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show current configuration",
	RunE:  runConfig,
}

func init() {
	rootCmd.AddCommand(configCmd)
}

func runConfig(_ *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	fmt.Printf("  Config file: %s\n", config.Path())
	if config.Exists() {
		fmt.Println("  Status: loaded")
	} else {
		fmt.Println("  Status: using defaults (no config file)")
	}
	fmt.Println()

	fmt.Println("  [General]")
	fmt.Printf("    Default days:   %d\n", cfg.General.DefaultDays)
	fmt.Printf("    Session limit:  %d\n", cfg.General.SessionLimit)
	if len(cfg.General.ClaudeDirs) > 0 {
		fmt.Printf("    Claude dirs:    %s\n", strings.Join(cfg.General.ClaudeDirs, ", "))
	}
	if env := os.Getenv(source.ConfigDirEnv); env != "" {
		fmt.Printf("    %s: %s\n", source.ConfigDirEnv, env)
	}
	dirs, err := source.ResolveDirs(flagDataDirs, cfg.General.ClaudeDirs)
	if err != nil {
		fmt.Printf("    Data dirs:      none (%s)\n", err)
	} else {
		fmt.Printf("    Data dirs:      %s\n", strings.Join(dirs, ", "))
	}
	fmt.Println()

	fmt.Println("  [Appearance]")
	fmt.Printf("    Theme: %s\n", cfg.Appearance.Theme)
	fmt.Println()

	fmt.Println("  [Pricing]")
	if len(cfg.Pricing.Overrides) == 0 {
		fmt.Println("    Overrides: none")
	} else {
		names := make([]string, 0, len(cfg.Pricing.Overrides))
		for name := range cfg.Pricing.Overrides {
			names = append(names, name)
		}
		sort.Strings(names)
		pricing := cfg.PricingTable()
		for _, name := range names {
			p, _ := pricing.LookupPricing(name)
			fmt.Printf("    %s: $%.2f in / $%.2f out / $%.2f cache write / $%.2f cache read per MTok\n",
				name, p.InputPerMTok, p.OutputPerMTok, p.CacheWritePerMTok, p.CacheReadPerMTok)
		}
	}
	fmt.Println()

	fmt.Println("  [Cache]")
	fmt.Printf("    Path: %s\n", pipeline.CachePath())
	if _, err := os.Stat(pipeline.CachePath()); err != nil {
		fmt.Println("    Records: not created yet")
	} else if cache, err := store.Open(pipeline.CachePath()); err != nil {
		fmt.Printf("    Records: unavailable (%s)\n", err)
	} else {
		defer func() { _ = cache.Close() }()
		if n, err := cache.RecordCount(); err == nil {
			fmt.Printf("    Records: %d\n", n)
		}
	}
	fmt.Println()

	fmt.Println("  Run `ccmonitor setup` to reconfigure.")
	return nil
}

// Package cmd implements the ccmonitor CLI commands.
package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/theirongolddev/ccmonitor/internal/cli"
	"github.com/theirongolddev/ccmonitor/internal/config"
	"github.com/theirongolddev/ccmonitor/internal/model"
	"github.com/theirongolddev/ccmonitor/internal/pipeline"
	"github.com/theirongolddev/ccmonitor/internal/store"

	"github.com/spf13/cobra"
)

// LogEnv selects the log level when --debug is not given.
const LogEnv = "CCMONITOR_LOG"

var (
	flagDataDirs []string
	flagProject  string
	flagModel    string
	flagNoCache  bool
	flagQuiet    bool
	flagDebug    bool
)

var logger = slog.New(slog.DiscardHandler)

var rootCmd = &cobra.Command{
	Use:   "ccmonitor",
	Short: "Claude Code usage monitor",
	Long:  "Read Claude Code session logs and report tokens and costs by day, session, month and model.",
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger = newLogger(flagDebug, os.Getenv(LogEnv))
	},
	RunE:          runDashboard,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute is the main entry point called from main.go.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "  Error: %s\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringSliceVar(&flagDataDirs, "data-dir", nil, "Claude data directory (repeatable, overrides CLAUDE_CONFIG_DIR)")
	rootCmd.PersistentFlags().StringVarP(&flagProject, "project", "p", "", "Filter to project (substring match)")
	rootCmd.PersistentFlags().StringVarP(&flagModel, "model", "m", "", "Filter to model (substring match)")
	rootCmd.PersistentFlags().BoolVar(&flagNoCache, "no-cache", false, "Skip the record cache, reparse everything")
	rootCmd.PersistentFlags().BoolVarP(&flagQuiet, "quiet", "q", false, "Suppress progress output")
	rootCmd.PersistentFlags().BoolVar(&flagDebug, "debug", false, "Enable debug logging on stderr")
}

// newLogger builds the stderr logger. debug wins over the env level;
// unknown or empty levels mean warn.
func newLogger(debug bool, envLevel string) *slog.Logger {
	level := slog.LevelWarn
	switch strings.ToLower(strings.TrimSpace(envLevel)) {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "error":
		level = slog.LevelError
	}
	if debug {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// loadConfig reads the config file. A broken file is reported and the
// defaults are used so that read-only commands still work.
func loadConfig() config.Config {
	cfg, err := config.Load()
	if err != nil {
		logger.Warn("using default config", "err", err)
	}
	return cfg
}

// loadRecords is the shared data loading path used by all commands.
// The record cache is used unless --no-cache; a cache that will not open
// only costs a full parse.
func loadRecords(ctx context.Context, cfg config.Config, progress pipeline.ProgressFunc) (*pipeline.LoadResult, error) {
	opts := pipeline.Options{
		DataDirs:       flagDataDirs,
		ConfiguredDirs: cfg.General.ClaudeDirs,
		Progress:       progress,
		Logger:         logger,
	}

	if !flagNoCache {
		cache, err := store.Open(pipeline.CachePath())
		if err != nil {
			logger.Warn("record cache unavailable, doing full parse", "err", err)
		} else {
			defer func() { _ = cache.Close() }()
			opts.Cache = cache
		}
	}

	result, err := pipeline.Load(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("loading usage: %w", err)
	}

	result.Records = applyFilters(result.Records)
	return result, nil
}

// loadStats loads, filters and aggregates. Progress goes to stderr unless
// quiet is set.
func loadStats(ctx context.Context, cfg config.Config, quiet bool) (model.UsageStats, error) {
	quiet = quiet || flagQuiet
	if !quiet {
		fmt.Fprintf(os.Stderr, "  Scanning sessions...\n")
	}

	progressFn := func(current, total int) {
		if quiet {
			return
		}
		if current%100 == 0 || current == total {
			fmt.Fprintf(os.Stderr, "\r  Parsing [%d/%d]", current, total)
		}
	}

	result, err := loadRecords(ctx, cfg, progressFn)
	if err != nil {
		if !quiet {
			fmt.Fprintln(os.Stderr)
		}
		return model.UsageStats{}, err
	}

	if !quiet && result.TotalFiles > 0 {
		if result.ParsedFiles == 0 {
			fmt.Fprintf(os.Stderr, "\r  Loaded %s files from cache (%d projects)    \n",
				cli.FormatNumber(int64(result.TotalFiles)), result.ProjectCount)
		} else {
			fmt.Fprintf(os.Stderr, "\r  %s cached + %s parsed (%d projects)    \n",
				cli.FormatNumber(int64(result.CacheHits)),
				cli.FormatNumber(int64(result.ParsedFiles)),
				result.ProjectCount)
		}
	}
	if result.SkippedLines > 0 {
		logger.Info("skipped malformed lines", "lines", result.SkippedLines)
	}

	return pipeline.Compute(result.Records, cfg.PricingTable()), nil
}

func applyFilters(records []model.UsageRecord) []model.UsageRecord {
	if flagProject != "" {
		records = pipeline.FilterByProject(records, flagProject)
	}
	if flagModel != "" {
		records = pipeline.FilterByModel(records, flagModel)
	}
	return records
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encoding json: %w", err)
	}
	return nil
}

func truncate(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	return string(runes[:maxLen-1]) + "…"
}

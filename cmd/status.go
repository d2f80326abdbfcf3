package cmd

import (
	"fmt"
	"time"

	"github.com/theirongolddev/ccmonitor/internal/cli"
	"github.com/theirongolddev/ccmonitor/internal/model"

	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Usage summary for today, the week, the month and all time",
	RunE:  runStatus,
}

var (
	statusDetailed bool
	statusJSON     bool
)

func init() {
	statusCmd.Flags().BoolVar(&statusDetailed, "detailed", false, "Also list recent sessions and models")
	statusCmd.Flags().BoolVar(&statusJSON, "json", false, "Print JSON instead of tables")
	rootCmd.AddCommand(statusCmd)
}

// periodUsage is one row of the status summary.
type periodUsage struct {
	Period string           `json:"period"`
	Tokens model.TokenUsage `json:"tokens"`
	Cost   float64          `json:"cost"`
}

type statusReport struct {
	Periods  []periodUsage        `json:"periods"`
	Sessions []model.SessionUsage `json:"recent_sessions,omitempty"`
	Models   []model.ModelUsage   `json:"models,omitempty"`
}

// buildStatus sums the fixed reporting periods, all in UTC days.
func buildStatus(stats model.UsageStats, now time.Time, detailed bool, sessionLimit int) statusReport {
	now = now.UTC()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	var todayRow periodUsage
	if d, ok := stats.Day(today); ok {
		todayRow = periodUsage{Tokens: d.Tokens, Cost: d.TotalCost}
	}
	todayRow.Period = "Today"

	weekTokens, weekCost := stats.DaysSince(today.AddDate(0, 0, -7))

	var monthRow periodUsage
	if m, ok := stats.Month(now.Format("2006-01")); ok {
		monthRow = periodUsage{Tokens: m.Tokens, Cost: m.TotalCost}
	}
	monthRow.Period = "This month"

	r := statusReport{
		Periods: []periodUsage{
			todayRow,
			{Period: "Last 7 days", Tokens: weekTokens, Cost: weekCost},
			monthRow,
			{Period: "All time", Tokens: stats.TotalTokens, Cost: stats.TotalCost},
		},
	}
	if detailed {
		r.Sessions = stats.Sessions
		if sessionLimit > 0 && len(r.Sessions) > sessionLimit {
			r.Sessions = r.Sessions[:sessionLimit]
		}
		r.Models = stats.Models
	}
	return r
}

func runStatus(cmd *cobra.Command, _ []string) error {
	cfg := loadConfig()
	stats, err := loadStats(cmd.Context(), cfg, statusJSON)
	if err != nil {
		return err
	}

	now := time.Now()
	report := buildStatus(stats, now, statusDetailed, cfg.General.SessionLimit)
	if statusJSON {
		return printJSON(report)
	}

	if len(stats.Sessions) == 0 {
		fmt.Println("\n  No Claude Code usage found.")
		return nil
	}

	fmt.Println()
	fmt.Println(cli.RenderTitle("CLAUDE CODE USAGE"))
	fmt.Println()

	rows := make([][]string, 0, len(report.Periods)+1)
	for i, p := range report.Periods {
		if i == len(report.Periods)-1 {
			rows = append(rows, cli.SeparatorRow)
		}
		rows = append(rows, []string{
			p.Period,
			cli.FormatTokens(p.Tokens.InputTokens),
			cli.FormatTokens(p.Tokens.OutputTokens),
			cli.FormatTokens(p.Tokens.CacheCreationInputTokens + p.Tokens.CacheReadInputTokens),
			cli.FormatTokens(p.Tokens.Total()),
			cli.FormatCost(p.Cost),
		})
	}
	fmt.Print(cli.RenderTable(cli.Table{
		Headers: []string{"Period", "Input", "Output", "Cache", "Total", "Cost"},
		Rows:    rows,
	}))

	if !statusDetailed {
		return nil
	}

	fmt.Println()
	fmt.Print(renderSessionTable("Recent Sessions", report.Sessions, now))

	fmt.Println()
	fmt.Print(renderModelTable(report.Models, stats.TotalCost))
	return nil
}

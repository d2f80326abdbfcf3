package cmd

import (
	"fmt"
	"time"

	"github.com/theirongolddev/ccmonitor/internal/cli"
	"github.com/theirongolddev/ccmonitor/internal/model"

	"github.com/spf13/cobra"
)

var dailyCmd = &cobra.Command{
	Use:   "daily",
	Short: "Daily usage table",
	RunE:  runDaily,
}

var (
	dailyDays int
	dailyJSON bool
)

func init() {
	dailyCmd.Flags().IntVarP(&dailyDays, "days", "n", 0, "Number of days to show (default from config)")
	dailyCmd.Flags().BoolVar(&dailyJSON, "json", false, "Print JSON instead of a table")
	rootCmd.AddCommand(dailyCmd)
}

type dailyRow struct {
	Date string `json:"date"`
	model.DailyUsage
}

// lastDays keeps the buckets of the most recent n UTC days, today included.
func lastDays(daily []model.DailyUsage, now time.Time, n int) []model.DailyUsage {
	now = now.UTC()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	cutoff := today.AddDate(0, 0, -(n - 1))
	for i, d := range daily {
		if !d.Date.Before(cutoff) {
			return daily[i:]
		}
	}
	return nil
}

func runDaily(cmd *cobra.Command, _ []string) error {
	cfg := loadConfig()
	stats, err := loadStats(cmd.Context(), cfg, dailyJSON)
	if err != nil {
		return err
	}

	days := dailyDays
	if days <= 0 {
		days = cfg.General.DefaultDays
	}
	daily := lastDays(stats.Daily, time.Now(), days)

	if dailyJSON {
		rows := make([]dailyRow, len(daily))
		for i, d := range daily {
			rows[i] = dailyRow{Date: d.Key(), DailyUsage: d}
		}
		return printJSON(rows)
	}

	if len(daily) == 0 {
		fmt.Println("\n  No data for the selected period.")
		return nil
	}

	fmt.Println()
	fmt.Println(cli.RenderTitle(fmt.Sprintf("DAILY USAGE  Last %dd", days)))
	fmt.Println()

	var total model.TokenUsage
	var totalCost float64
	costs := make([]float64, 0, len(daily))
	rows := make([][]string, 0, len(daily)+2)
	for _, d := range daily {
		total.Add(d.Tokens)
		totalCost += d.TotalCost
		costs = append(costs, d.TotalCost)
		rows = append(rows, []string{
			d.Key(),
			cli.FormatDayOfWeek(d.Date.Weekday()),
			cli.FormatNumber(int64(d.SessionCount)),
			cli.FormatTokens(d.Tokens.InputTokens),
			cli.FormatTokens(d.Tokens.OutputTokens),
			cli.FormatTokens(d.Tokens.Total()),
			cli.FormatCost(d.TotalCost),
		})
	}
	rows = append(rows, cli.SeparatorRow, []string{
		"Total", "", "",
		cli.FormatTokens(total.InputTokens),
		cli.FormatTokens(total.OutputTokens),
		cli.FormatTokens(total.Total()),
		cli.FormatCost(totalCost),
	})

	fmt.Print(cli.RenderTable(cli.Table{
		Headers:  []string{"Date", "Day", "Sessions", "Input", "Output", "Tokens", "Cost"},
		Rows:     rows,
		LeftCols: 2,
	}))

	if len(costs) > 1 {
		fmt.Printf("\n  %s  %s\n", cli.MutedStyle.Render("Cost trend"), cli.RenderSparkline(costs))
	}
	return nil
}

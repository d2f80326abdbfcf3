package cmd

import (
	"fmt"

	"github.com/theirongolddev/ccmonitor/internal/cli"
	"github.com/theirongolddev/ccmonitor/internal/model"

	"github.com/spf13/cobra"
)

var monthlyCmd = &cobra.Command{
	Use:   "monthly",
	Short: "Monthly usage table",
	RunE:  runMonthly,
}

var monthlyJSON bool

func init() {
	monthlyCmd.Flags().BoolVar(&monthlyJSON, "json", false, "Print JSON instead of a table")
	rootCmd.AddCommand(monthlyCmd)
}

func runMonthly(cmd *cobra.Command, _ []string) error {
	cfg := loadConfig()
	stats, err := loadStats(cmd.Context(), cfg, monthlyJSON)
	if err != nil {
		return err
	}

	if monthlyJSON {
		return printJSON(stats.Monthly)
	}

	if len(stats.Monthly) == 0 {
		fmt.Println("\n  No usage found.")
		return nil
	}

	fmt.Println()
	fmt.Println(cli.RenderTitle("MONTHLY USAGE"))
	fmt.Println()

	var total model.TokenUsage
	rows := make([][]string, 0, len(stats.Monthly)+2)
	for _, m := range stats.Monthly {
		total.Add(m.Tokens)
		avg := 0.0
		if n := len(m.DailyBreakdown); n > 0 {
			avg = m.TotalCost / float64(n)
		}
		rows = append(rows, []string{
			m.Month,
			truncate(cli.JoinModels(m.Models), 28),
			cli.FormatNumber(int64(len(m.DailyBreakdown))),
			cli.FormatTokens(m.Tokens.Total()),
			cli.FormatCost(avg),
			cli.FormatCost(m.TotalCost),
		})
	}
	rows = append(rows, cli.SeparatorRow, []string{
		"Total", "", "",
		cli.FormatTokens(total.Total()),
		"",
		cli.FormatCost(stats.TotalCost),
	})

	fmt.Print(cli.RenderTable(cli.Table{
		Headers:  []string{"Month", "Models", "Active Days", "Tokens", "Cost/Day", "Cost"},
		Rows:     rows,
		LeftCols: 2,
	}))
	return nil
}

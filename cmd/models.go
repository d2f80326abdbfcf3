package cmd

import (
	"fmt"

	"github.com/theirongolddev/ccmonitor/internal/cli"
	"github.com/theirongolddev/ccmonitor/internal/config"
	"github.com/theirongolddev/ccmonitor/internal/model"
	"github.com/theirongolddev/ccmonitor/internal/pipeline"

	"github.com/spf13/cobra"
)

var modelsCmd = &cobra.Command{
	Use:   "models",
	Short: "Model usage breakdown",
	RunE:  runModels,
}

var modelsJSON bool

func init() {
	modelsCmd.Flags().BoolVar(&modelsJSON, "json", false, "Print JSON instead of tables")
	rootCmd.AddCommand(modelsCmd)
}

// modelRow is the JSON shape of one model, rollup cost plus the
// list-price split by token type.
type modelRow struct {
	model.ModelUsage
	Priced         bool    `json:"priced"`
	InputCost      float64 `json:"input_cost"`
	OutputCost     float64 `json:"output_cost"`
	CacheWriteCost float64 `json:"cache_write_cost"`
	CacheReadCost  float64 `json:"cache_read_cost"`
	CacheSavings   float64 `json:"cache_savings"`
}

func modelRows(models []model.ModelUsage, pricing *config.PricingTable) []modelRow {
	_, breakdown := pipeline.CostBreakdown(models, pricing)
	rows := make([]modelRow, len(models))
	for i, mu := range models {
		mb := breakdown[i]
		rows[i] = modelRow{
			ModelUsage:     mu,
			Priced:         mb.Priced,
			InputCost:      mb.InputCost,
			OutputCost:     mb.OutputCost,
			CacheWriteCost: mb.CacheWriteCost,
			CacheReadCost:  mb.CacheReadCost,
			CacheSavings:   mb.CacheSavings,
		}
	}
	return rows
}

func runModels(cmd *cobra.Command, _ []string) error {
	cfg := loadConfig()
	stats, err := loadStats(cmd.Context(), cfg, modelsJSON)
	if err != nil {
		return err
	}

	pricing := cfg.PricingTable()
	if modelsJSON {
		return printJSON(modelRows(stats.Models, pricing))
	}

	if len(stats.Models) == 0 {
		fmt.Println("\n  No model data found.")
		return nil
	}

	fmt.Println()
	fmt.Println(cli.RenderTitle("MODEL USAGE"))
	fmt.Println()
	fmt.Print(renderModelTable(stats.Models, stats.TotalCost))

	totals, _ := pipeline.CostBreakdown(stats.Models, pricing)
	fmt.Println()
	fmt.Print(cli.RenderTable(cli.Table{
		Title:   "Cost by Token Type (list price)",
		Headers: []string{"Type", "Cost"},
		Rows: [][]string{
			{"Input", cli.FormatCost(totals.InputCost)},
			{"Output", cli.FormatCost(totals.OutputCost)},
			{"Cache write", cli.FormatCost(totals.CacheWriteCost)},
			{"Cache read", cli.FormatCost(totals.CacheReadCost)},
			cli.SeparatorRow,
			{"Total", cli.FormatCost(totals.TotalCost)},
			{"Saved by cache", cli.CostStyle.Render(cli.FormatCost(totals.CacheSavings))},
		},
	}))

	for _, row := range modelRows(stats.Models, pricing) {
		if !row.Priced {
			fmt.Printf("\n  %s\n", cli.WarnStyle.Render(fmt.Sprintf("No price known for %s; its tokens count as $0", row.Model)))
		}
	}
	return nil
}

func renderModelTable(models []model.ModelUsage, totalCost float64) string {
	rows := make([][]string, 0, len(models))
	for _, mu := range models {
		share := 0.0
		if totalCost > 0 {
			share = mu.TotalCost / totalCost
		}
		rows = append(rows, []string{
			cli.ShortModel(mu.Model),
			cli.FormatNumber(int64(mu.Records)),
			cli.FormatTokens(mu.Tokens.InputTokens),
			cli.FormatTokens(mu.Tokens.OutputTokens),
			cli.FormatTokens(mu.Tokens.CacheCreationInputTokens),
			cli.FormatTokens(mu.Tokens.CacheReadInputTokens),
			cli.FormatCost(mu.TotalCost),
			cli.FormatPercent(share),
		})
	}

	return cli.RenderTable(cli.Table{
		Headers: []string{"Model", "Calls", "Input", "Output", "Cache W", "Cache R", "Cost", "Share"},
		Rows:    rows,
	})
}

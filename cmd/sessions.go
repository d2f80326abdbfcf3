package cmd

import (
	"fmt"
	"time"

	"github.com/theirongolddev/ccmonitor/internal/cli"
	"github.com/theirongolddev/ccmonitor/internal/model"

	"github.com/spf13/cobra"
)

var sessionsCmd = &cobra.Command{
	Use:   "sessions",
	Short: "Session list with details",
	RunE:  runSessions,
}

var (
	sessionsLimit int
	sessionsJSON  bool
)

func init() {
	sessionsCmd.Flags().IntVarP(&sessionsLimit, "limit", "l", 0, "Number of sessions to show (default from config)")
	sessionsCmd.Flags().BoolVar(&sessionsJSON, "json", false, "Print JSON instead of a table")
	rootCmd.AddCommand(sessionsCmd)
}

func runSessions(cmd *cobra.Command, _ []string) error {
	cfg := loadConfig()
	stats, err := loadStats(cmd.Context(), cfg, sessionsJSON)
	if err != nil {
		return err
	}

	limit := sessionsLimit
	if limit <= 0 {
		limit = cfg.General.SessionLimit
	}
	// Already sorted by last activity, newest first.
	sessions := stats.Sessions
	if limit > 0 && len(sessions) > limit {
		sessions = sessions[:limit]
	}

	if sessionsJSON {
		return printJSON(sessions)
	}

	if len(sessions) == 0 {
		fmt.Println("\n  No sessions found.")
		return nil
	}

	fmt.Println()
	fmt.Println(cli.RenderTitle(fmt.Sprintf("SESSIONS  showing %d of %d", len(sessions), len(stats.Sessions))))
	fmt.Println()
	fmt.Print(renderSessionTable("", sessions, time.Now()))

	if len(stats.Chains) > 0 {
		fmt.Println()
		fmt.Printf("  %d resumed session chains detected\n", len(stats.Chains))
	}
	return nil
}

func renderSessionTable(title string, sessions []model.SessionUsage, now time.Time) string {
	rows := make([][]string, 0, len(sessions))
	for _, s := range sessions {
		id := cli.ShortID(s.SessionID)
		if s.ChainID >= 0 {
			id += " ↻"
		}
		rows = append(rows, []string{
			id,
			truncate(cli.ShortProject(s.ProjectPath), 18),
			cli.FormatAgo(s.LastActivity, now),
			cli.FormatDuration(s.LastActivity.Sub(s.FirstActivity)),
			truncate(cli.JoinModels(s.Models), 24),
			cli.FormatTokens(s.Tokens.Total()),
			cli.FormatCost(s.TotalCost),
		})
	}

	return cli.RenderTable(cli.Table{
		Title:    title,
		Headers:  []string{"Session", "Project", "Last Active", "Duration", "Models", "Tokens", "Cost"},
		Rows:     rows,
		LeftCols: 5,
	})
}

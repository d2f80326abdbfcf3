package cmd

import (
	"fmt"
	"time"

	"github.com/theirongolddev/ccmonitor/internal/cli"
	"github.com/theirongolddev/ccmonitor/internal/pipeline"

	"github.com/spf13/cobra"
)

var projectsCmd = &cobra.Command{
	Use:   "projects",
	Short: "Project usage ranking",
	RunE:  runProjects,
}

var projectsJSON bool

func init() {
	projectsCmd.Flags().BoolVar(&projectsJSON, "json", false, "Print JSON instead of a table")
	rootCmd.AddCommand(projectsCmd)
}

func runProjects(cmd *cobra.Command, _ []string) error {
	cfg := loadConfig()
	stats, err := loadStats(cmd.Context(), cfg, projectsJSON)
	if err != nil {
		return err
	}

	projects := pipeline.AggregateProjects(stats.Sessions)
	if projectsJSON {
		return printJSON(projects)
	}

	if len(projects) == 0 {
		fmt.Println("\n  No sessions found.")
		return nil
	}

	fmt.Println()
	fmt.Println(cli.RenderTitle(fmt.Sprintf("PROJECTS  %d total", len(projects))))
	fmt.Println()

	now := time.Now()
	rows := make([][]string, 0, len(projects))
	for _, ps := range projects {
		rows = append(rows, []string{
			truncate(cli.ShortProject(ps.ProjectPath), 18),
			truncate(ps.ProjectPath, 40),
			cli.FormatNumber(int64(ps.Sessions)),
			cli.FormatAgo(ps.LastActivity, now),
			cli.FormatTokens(ps.Tokens.Total()),
			cli.FormatCost(ps.TotalCost),
		})
	}

	fmt.Print(cli.RenderTable(cli.Table{
		Headers:  []string{"Project", "Path", "Sessions", "Last Active", "Tokens", "Cost"},
		Rows:     rows,
		LeftCols: 2,
	}))

	return nil
}

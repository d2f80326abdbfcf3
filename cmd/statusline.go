package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/theirongolddev/ccmonitor/internal/cli"
	"github.com/theirongolddev/ccmonitor/internal/model"
	"github.com/theirongolddev/ccmonitor/internal/pipeline"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/spf13/cobra"
)

var statuslineCmd = &cobra.Command{
	Use:   "statusline",
	Short: "One-line cost summary for the Claude Code status line hook",
	RunE:  runStatusline,
}

var (
	statuslineStdin bool
	statuslineJSON  bool
)

func init() {
	statuslineCmd.Flags().BoolVar(&statuslineStdin, "stdin", false, "Read the hook JSON from stdin")
	statuslineCmd.Flags().BoolVar(&statuslineJSON, "json", false, "Print JSON instead of a line")
	rootCmd.AddCommand(statuslineCmd)
}

// hookInput is the part of the status line hook payload we use.
type hookInput struct {
	SessionID string `json:"session_id"`
	Model     struct {
		ID          string `json:"id"`
		DisplayName string `json:"display_name"`
	} `json:"model"`
}

// readHookInput decodes the hook payload. A payload that does not decode
// yields nil; the line is still printed, just without a session.
func readHookInput(r io.Reader) (*hookInput, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading stdin: %w", err)
	}
	var h hookInput
	if err := json.Unmarshal(data, &h); err != nil {
		logger.Debug("ignoring hook input", "err", err)
		return nil, nil
	}
	return &h, nil
}

type statuslineSession struct {
	ID   string  `json:"id,omitempty"`
	Cost float64 `json:"cost"`
}

type statuslineToday struct {
	Date   string  `json:"date"`
	Cost   float64 `json:"cost"`
	Tokens int64   `json:"tokens"`
}

type statuslineBlock struct {
	Cost             float64   `json:"cost"`
	Tokens           int64     `json:"tokens"`
	Start            time.Time `json:"start"`
	End              time.Time `json:"end"`
	RemainingMinutes int       `json:"remaining_minutes"`
}

type statuslineBurn struct {
	CostPerHour float64 `json:"cost_per_hour"`
	PeriodHours int     `json:"period_hours"`
	Status      string  `json:"status"`
}

type statusline struct {
	Model    string            `json:"model,omitempty"`
	Session  statuslineSession `json:"session"`
	Today    statuslineToday   `json:"today"`
	Block    statuslineBlock   `json:"block"`
	BurnRate statuslineBurn    `json:"burn_rate"`
}

// buildStatusline computes the figures shown by the hook. An unknown
// session costs $0, which is what a brand new session looks like.
func buildStatusline(stats model.UsageStats, hook *hookInput, now time.Time) statusline {
	var sl statusline
	if hook != nil {
		sl.Model = hook.Model.DisplayName
		sl.Session.ID = hook.SessionID
		if s, ok := stats.Session(hook.SessionID); ok {
			sl.Session.Cost = s.TotalCost
		}
	}

	sl.Today.Date = now.UTC().Format("2006-01-02")
	if d, ok := stats.Day(now); ok {
		sl.Today.Cost = d.TotalCost
		sl.Today.Tokens = d.Tokens.Total()
	}

	start := pipeline.BlockStart(now)
	block := pipeline.SessionsSince(stats.Sessions, start)
	sl.Block = statuslineBlock{
		Cost:             block.Cost,
		Tokens:           block.Tokens.Total(),
		Start:            start,
		End:              start.Add(pipeline.BlockDuration),
		RemainingMinutes: int(start.Add(pipeline.BlockDuration).Sub(now).Minutes()),
	}

	rate := pipeline.BurnRate(stats.Sessions, now)
	sl.BurnRate = statuslineBurn{
		CostPerHour: rate,
		PeriodHours: int(pipeline.BurnWindow.Hours()),
		Status:      burnStatus(rate),
	}
	return sl
}

func burnStatus(perHour float64) string {
	switch {
	case perHour > 10:
		return "high"
	case perHour > 5:
		return "medium"
	case perHour > 0:
		return "low"
	default:
		return "idle"
	}
}

// ANSI bright colors, which every status line renderer understands.
var burnColors = map[string]lipgloss.Color{
	"high":   lipgloss.Color("9"),
	"medium": lipgloss.Color("11"),
	"low":    lipgloss.Color("10"),
	"idle":   lipgloss.Color("8"),
}

func (sl statusline) String() string {
	icon := "🔥"
	if sl.BurnRate.Status == "idle" {
		icon = "💤"
	}
	burn := lipgloss.NewStyle().Foreground(burnColors[sl.BurnRate.Status]).
		Render(fmt.Sprintf("%s $%.2f/hr", icon, sl.BurnRate.CostPerHour))

	left := time.Duration(max(sl.Block.RemainingMinutes, 0)) * time.Minute
	return fmt.Sprintf("💰 $%.2f session / $%.2f today / $%.2f block (%s left) | %s",
		sl.Session.Cost, sl.Today.Cost, sl.Block.Cost, cli.FormatClock(left), burn)
}

func runStatusline(cmd *cobra.Command, _ []string) error {
	var hook *hookInput
	if statuslineStdin {
		var err error
		if hook, err = readHookInput(os.Stdin); err != nil {
			return err
		}
	}

	cfg := loadConfig()
	stats, err := loadStats(cmd.Context(), cfg, true)
	if err != nil {
		return err
	}

	sl := buildStatusline(stats, hook, time.Now())
	if statuslineJSON {
		return printJSON(sl)
	}

	// stdout is a pipe under the hook; emit colors anyway.
	lipgloss.SetColorProfile(termenv.ANSI)
	fmt.Println(sl.String())
	return nil
}

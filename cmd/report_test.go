package cmd

import (
	"context"
	"log/slog"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/theirongolddev/ccmonitor/internal/config"
	"github.com/theirongolddev/ccmonitor/internal/model"
	"github.com/theirongolddev/ccmonitor/internal/pipeline"
)

// 2025-06-10 12:30 UTC sits in the block that started at 09:00.
var reportNow = time.Date(2025, 6, 10, 12, 30, 0, 0, time.UTC)

func costRecord(ts time.Time, session string, cost float64) model.UsageRecord {
	c := cost
	return model.UsageRecord{
		Timestamp:   ts,
		SessionID:   session,
		ProjectPath: "/work/" + session,
		Model:       "claude-sonnet-4-6",
		Usage:       model.TokenUsage{InputTokens: 100, OutputTokens: 10},
		CostUSD:     &c,
	}
}

func reportStats() model.UsageStats {
	return pipeline.Compute([]model.UsageRecord{
		costRecord(time.Date(2025, 5, 20, 9, 0, 0, 0, time.UTC), "old", 4),
		costRecord(time.Date(2025, 6, 5, 9, 0, 0, 0, time.UTC), "week", 2),
		costRecord(time.Date(2025, 6, 10, 8, 0, 0, 0, time.UTC), "early", 1),
		costRecord(time.Date(2025, 6, 10, 11, 0, 0, 0, time.UTC), "now", 6),
	}, config.DefaultPricingTable())
}

func near(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func TestBuildStatusPeriods(t *testing.T) {
	r := buildStatus(reportStats(), reportNow, false, 10)

	want := map[string]float64{
		"Today":       7,
		"Last 7 days": 9,
		"This month":  9,
		"All time":    13,
	}
	if len(r.Periods) != len(want) {
		t.Fatalf("got %d periods", len(r.Periods))
	}
	for _, p := range r.Periods {
		if !near(p.Cost, want[p.Period]) {
			t.Errorf("%s cost = %v, want %v", p.Period, p.Cost, want[p.Period])
		}
	}
	if r.Sessions != nil || r.Models != nil {
		t.Error("non-detailed report carries sessions or models")
	}
}

func TestBuildStatusDetailedLimitsSessions(t *testing.T) {
	r := buildStatus(reportStats(), reportNow, true, 2)
	if len(r.Sessions) != 2 {
		t.Fatalf("sessions = %d, want 2", len(r.Sessions))
	}
	if r.Sessions[0].SessionID != "now" {
		t.Errorf("first session = %q, want most recent", r.Sessions[0].SessionID)
	}
	if len(r.Models) != 1 {
		t.Errorf("models = %d", len(r.Models))
	}
}

func TestLastDays(t *testing.T) {
	daily := reportStats().Daily
	tests := []struct {
		n    int
		want int
	}{
		{1, 1},
		{6, 2},
		{30, 3},
		{365, 3},
	}
	for _, tt := range tests {
		if got := len(lastDays(daily, reportNow, tt.n)); got != tt.want {
			t.Errorf("lastDays(%d) = %d buckets, want %d", tt.n, got, tt.want)
		}
	}
	if got := lastDays(nil, reportNow, 7); len(got) != 0 {
		t.Errorf("lastDays(nil) = %v", got)
	}
}

func TestBuildStatusline(t *testing.T) {
	hook := &hookInput{SessionID: "now"}
	hook.Model.DisplayName = "Sonnet 4.6"

	sl := buildStatusline(reportStats(), hook, reportNow)

	if !near(sl.Session.Cost, 6) {
		t.Errorf("session cost = %v, want 6", sl.Session.Cost)
	}
	if !near(sl.Today.Cost, 7) || sl.Today.Date != "2025-06-10" {
		t.Errorf("today = %+v", sl.Today)
	}
	// Only "now" was active since the 09:00 block start.
	if !near(sl.Block.Cost, 6) {
		t.Errorf("block cost = %v, want 6", sl.Block.Cost)
	}
	if sl.Block.RemainingMinutes != 90 {
		t.Errorf("remaining = %d, want 90", sl.Block.RemainingMinutes)
	}
	// "early" (08:00) falls outside the 3h window that starts at 09:30.
	if !near(sl.BurnRate.CostPerHour, 2) || sl.BurnRate.Status != "low" {
		t.Errorf("burn = %+v", sl.BurnRate)
	}

	line := sl.String()
	for _, want := range []string{"$6.00 session", "$7.00 today", "$6.00 block (01:30 left)", "$2.00/hr"} {
		if !strings.Contains(line, want) {
			t.Errorf("line %q missing %q", line, want)
		}
	}
}

func TestBuildStatuslineUnknownSession(t *testing.T) {
	sl := buildStatusline(reportStats(), &hookInput{SessionID: "brand-new"}, reportNow)
	if sl.Session.Cost != 0 {
		t.Errorf("unknown session cost = %v", sl.Session.Cost)
	}

	idle := buildStatusline(model.UsageStats{}, nil, reportNow)
	if idle.BurnRate.Status != "idle" || !strings.Contains(idle.String(), "💤") {
		t.Errorf("idle statusline = %q", idle.String())
	}
}

func TestBurnStatus(t *testing.T) {
	tests := []struct {
		rate float64
		want string
	}{
		{0, "idle"},
		{0.01, "low"},
		{5, "low"},
		{5.5, "medium"},
		{10, "medium"},
		{10.1, "high"},
	}
	for _, tt := range tests {
		if got := burnStatus(tt.rate); got != tt.want {
			t.Errorf("burnStatus(%v) = %q, want %q", tt.rate, got, tt.want)
		}
	}
}

func TestReadHookInput(t *testing.T) {
	h, err := readHookInput(strings.NewReader(`{"session_id":"abc","transcript_path":"/t","model":{"id":"claude-opus-4-6","display_name":"Opus"}}`))
	if err != nil || h == nil {
		t.Fatalf("readHookInput: %v %v", h, err)
	}
	if h.SessionID != "abc" || h.Model.DisplayName != "Opus" {
		t.Errorf("hook = %+v", h)
	}

	h, err = readHookInput(strings.NewReader("not json"))
	if err != nil || h != nil {
		t.Errorf("garbage input = %v, %v; want nil, nil", h, err)
	}
}

func TestNewLoggerLevels(t *testing.T) {
	tests := []struct {
		debug bool
		env   string
		want  slog.Level
	}{
		{false, "", slog.LevelWarn},
		{false, "bogus", slog.LevelWarn},
		{false, "INFO", slog.LevelInfo},
		{false, "error", slog.LevelError},
		{true, "error", slog.LevelDebug},
	}
	for _, tt := range tests {
		l := newLogger(tt.debug, tt.env)
		if !l.Enabled(context.Background(), tt.want) {
			t.Errorf("debug=%v env=%q: level %v disabled", tt.debug, tt.env, tt.want)
		}
		if tt.want > slog.LevelDebug && l.Enabled(context.Background(), tt.want-4) {
			t.Errorf("debug=%v env=%q: level below %v enabled", tt.debug, tt.env, tt.want)
		}
	}
}

package cli

import (
	"strings"
	"testing"
	"time"
)

func TestFormatTokens(t *testing.T) {
	tests := []struct {
		in   int64
		want string
	}{
		{0, "0"},
		{999, "999"},
		{1234, "1.2K"},
		{1_234_567, "1.2M"},
		{1_234_567_890, "1.2B"},
		{-1500, "-1.5K"},
	}
	for _, tt := range tests {
		if got := FormatTokens(tt.in); got != tt.want {
			t.Errorf("FormatTokens(%d) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFormatCost(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0, "$0.00"},
		{0.0045, "$0.00"},
		{1.234, "$1.23"},
		{12.34, "$12.3"},
		{123.4, "$123"},
		{1234.6, "$1,235"},
	}
	for _, tt := range tests {
		if got := FormatCost(tt.in); got != tt.want {
			t.Errorf("FormatCost(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFormatNumber(t *testing.T) {
	tests := []struct {
		in   int64
		want string
	}{
		{0, "0"},
		{123, "123"},
		{1234, "1,234"},
		{1234567, "1,234,567"},
		{-9876543, "-9,876,543"},
	}
	for _, tt := range tests {
		if got := FormatNumber(tt.in); got != tt.want {
			t.Errorf("FormatNumber(%d) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFormatDurationAndClock(t *testing.T) {
	if got := FormatDuration(90 * time.Minute); got != "1h 30m" {
		t.Errorf("FormatDuration(90m) = %q", got)
	}
	if got := FormatDuration(45 * time.Second); got != "45s" {
		t.Errorf("FormatDuration(45s) = %q", got)
	}
	if got := FormatDuration(-time.Second); got != "0s" {
		t.Errorf("FormatDuration(-1s) = %q", got)
	}
	if got := FormatClock(2*time.Hour + 5*time.Minute + 30*time.Second); got != "02:05" {
		t.Errorf("FormatClock = %q, want 02:05", got)
	}
	if got := FormatClock(-time.Minute); got != "00:00" {
		t.Errorf("FormatClock(negative) = %q", got)
	}
}

func TestFormatAgo(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	tests := []struct {
		t    time.Time
		want string
	}{
		{time.Time{}, "-"},
		{now.Add(-10 * time.Second), "just now"},
		{now.Add(-5 * time.Minute), "5m ago"},
		{now.Add(-3 * time.Hour), "3h ago"},
		{now.Add(-72 * time.Hour), "3d ago"},
	}
	for _, tt := range tests {
		if got := FormatAgo(tt.t, now); got != tt.want {
			t.Errorf("FormatAgo(%v) = %q, want %q", tt.t, got, tt.want)
		}
	}
}

func TestShortNames(t *testing.T) {
	if got := ShortID("3f2b9c1e-aaaa-bbbb-cccc-000000000000"); got != "3f2b9c1e" {
		t.Errorf("ShortID = %q", got)
	}
	if got := ShortID("short"); got != "short" {
		t.Errorf("ShortID(short) = %q", got)
	}
	if got := ShortProject("/home/me/projects/app"); got != "app" {
		t.Errorf("ShortProject = %q", got)
	}
	if got := ShortProject(""); got != "unknown" {
		t.Errorf("ShortProject(empty) = %q", got)
	}
	if got := ShortModel("claude-sonnet-4-5-20250929"); got != "sonnet-4-5" {
		t.Errorf("ShortModel = %q", got)
	}
	if got := JoinModels([]string{"claude-opus-4-6", "claude-haiku-4-5"}); got != "opus-4-6, haiku-4-5" {
		t.Errorf("JoinModels = %q", got)
	}
}

func TestRenderTable(t *testing.T) {
	out := RenderTable(Table{
		Headers:  []string{"Session", "Project", "Cost"},
		Rows:     [][]string{{"abc", "app", "$1.00"}, SeparatorRow, {"Total", "", "$10.00"}},
		LeftCols: 2,
	})
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	// top, header, header rule, row, separator, total, bottom
	if len(lines) != 7 {
		t.Fatalf("lines = %d, want 7:\n%s", len(lines), out)
	}
	if !strings.Contains(out, "$10.00") || !strings.Contains(out, "Session") {
		t.Errorf("missing content:\n%s", out)
	}
	if RenderTable(Table{}) != "" {
		t.Error("empty table should render nothing")
	}
}

func TestPad(t *testing.T) {
	if got := pad("ab", 4, true); got != "ab  " {
		t.Errorf("left pad = %q", got)
	}
	if got := pad("ab", 4, false); got != "  ab" {
		t.Errorf("right pad = %q", got)
	}
	if got := pad("abcdef", 4, true); got != "abc…" {
		t.Errorf("truncate = %q", got)
	}
}

func TestRenderSparkline(t *testing.T) {
	if got := RenderSparkline([]float64{0, 1, 2}); got != "▁▄█" {
		t.Errorf("sparkline = %q", got)
	}
	if got := RenderSparkline([]float64{0, 0}); got != "▁▁" {
		t.Errorf("flat sparkline = %q", got)
	}
	if RenderSparkline(nil) != "" {
		t.Error("nil sparkline should be empty")
	}
}

func TestRenderHorizontalBar(t *testing.T) {
	if got := RenderHorizontalBar(5, 10, 20); got != strings.Repeat("█", 10) {
		t.Errorf("bar = %q", got)
	}
	if got := RenderHorizontalBar(0.01, 10, 20); got != "▏" {
		t.Errorf("tiny bar = %q", got)
	}
	if RenderHorizontalBar(1, 0, 20) != "" {
		t.Error("zero max should render nothing")
	}
}

package components

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/theirongolddev/ccmonitor/internal/tui/theme"
)

func TestFormatChartLabel(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0, "0"},
		{0.5, "0.50"},
		{42, "42"},
		{1500, "1.5k"},
		{2_000_000, "2M"},
		{3_300_000_000, "3.3B"},
	}
	for _, tt := range tests {
		if got := formatChartLabel(tt.in); got != tt.want {
			t.Errorf("formatChartLabel(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestBarChartShape(t *testing.T) {
	vals := []float64{1, 2, 3, 4}
	labels := []string{"Jun 1", "2", "3", "Jun 4"}
	out := BarChart(vals, labels, theme.Active.Blue, 40, 5)
	lines := strings.Split(out, "\n")

	// height rows + axis + labels
	if len(lines) != 7 {
		t.Fatalf("lines = %d, want 7:\n%s", len(lines), out)
	}
	for i := 0; i < 6; i++ {
		if w := lipgloss.Width(lines[i]); w > 40 {
			t.Errorf("line %d width %d exceeds 40", i, w)
		}
	}
	if !strings.Contains(lines[6], "Jun 1") || !strings.Contains(lines[6], "Jun 4") {
		t.Errorf("labels line = %q", lines[6])
	}
}

func TestBarChartKeepsRecentWhenNarrow(t *testing.T) {
	vals := make([]float64, 100)
	vals[99] = 10
	out := BarChart(vals, nil, theme.Active.Blue, 20, 3)
	top := strings.Split(out, "\n")[0]
	if !strings.Contains(top, "█") {
		t.Errorf("most recent peak dropped: %q", top)
	}
}

func TestBarChartFallsBackToSparkline(t *testing.T) {
	out := BarChart([]float64{1, 2}, nil, theme.Active.Blue, 10, 2)
	if strings.Contains(out, "\n") {
		t.Errorf("narrow chart should be a single-line sparkline, got %q", out)
	}
}

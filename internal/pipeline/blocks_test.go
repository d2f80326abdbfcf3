package pipeline

import (
	"math"
	"testing"
	"time"

	"github.com/theirongolddev/ccmonitor/internal/config"
	"github.com/theirongolddev/ccmonitor/internal/model"
)

func TestBlockStart(t *testing.T) {
	tests := []struct {
		now  time.Time
		want time.Time
	}{
		// 1970-01-01T05:00Z is the second block boundary.
		{time.Date(1970, 1, 1, 7, 30, 0, 0, time.UTC), time.Date(1970, 1, 1, 5, 0, 0, 0, time.UTC)},
		{time.Date(1970, 1, 1, 5, 0, 0, 0, time.UTC), time.Date(1970, 1, 1, 5, 0, 0, 0, time.UTC)},
		// 2025-06-01T00:00Z is hour 485760, a multiple of five.
		{time.Date(2025, 6, 1, 3, 30, 0, 0, time.UTC), time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)},
		{time.Date(2025, 6, 1, 5, 0, 0, 0, time.UTC), time.Date(2025, 6, 1, 5, 0, 0, 0, time.UTC)},
		{time.Date(2025, 5, 31, 23, 59, 0, 0, time.UTC), time.Date(2025, 5, 31, 19, 0, 0, 0, time.UTC)},
	}
	for _, tt := range tests {
		got := BlockStart(tt.now)
		if !got.Equal(tt.want) {
			t.Errorf("BlockStart(%v) = %v, want %v", tt.now, got, tt.want)
		}
		if tt.now.Sub(got) >= BlockDuration || tt.now.Before(got) {
			t.Errorf("BlockStart(%v) = %v does not contain now", tt.now, got)
		}
	}
}

func TestSessionsSinceAndBurnRate(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	sessions := []model.SessionUsage{
		{SessionID: "recent", TotalCost: 6, LastActivity: now.Add(-time.Hour), Tokens: model.TokenUsage{OutputTokens: 10}},
		{SessionID: "edge", TotalCost: 3, LastActivity: now.Add(-BurnWindow)},
		{SessionID: "old", TotalCost: 100, LastActivity: now.Add(-4 * time.Hour)},
	}

	w := SessionsSince(sessions, now.Add(-BurnWindow))
	if w.Sessions != 2 || w.Cost != 9 || w.Tokens.OutputTokens != 10 {
		t.Errorf("SessionsSince = %+v", w)
	}
	if got := BurnRate(sessions, now); math.Abs(got-3) > 1e-9 {
		t.Errorf("BurnRate = %f, want 3", got)
	}
	if got := BurnRate(nil, now); got != 0 {
		t.Errorf("BurnRate(nil) = %f, want 0", got)
	}
}

func TestCostBreakdown(t *testing.T) {
	models := []model.ModelUsage{
		{Model: "claude-sonnet-4-6", Tokens: model.TokenUsage{InputTokens: 1_000_000, CacheReadInputTokens: 1_000_000}},
		{Model: "claude-opus-4-6-20260101", Tokens: model.TokenUsage{OutputTokens: 1_000_000}},
		{Model: "mystery", Tokens: model.TokenUsage{InputTokens: 5}},
	}
	totals, by := CostBreakdown(models, config.DefaultPricingTable())

	if len(by) != 3 || by[0].Model != "claude-opus-4-6-20260101" || by[2].Model != "mystery" {
		t.Fatalf("order = %+v", by)
	}
	if by[2].Priced {
		t.Error("unknown model marked priced")
	}
	if math.Abs(by[0].OutputCost-25) > 1e-9 {
		t.Errorf("opus output = %f, want 25", by[0].OutputCost)
	}
	sonnet := by[1]
	if math.Abs(sonnet.InputCost-3) > 1e-9 || math.Abs(sonnet.CacheReadCost-0.30) > 1e-9 {
		t.Errorf("sonnet = %+v", sonnet)
	}
	if math.Abs(totals.TotalCost-28.30) > 1e-9 {
		t.Errorf("total = %f, want 28.30", totals.TotalCost)
	}
	if math.Abs(totals.CacheSavings-2.70) > 1e-9 {
		t.Errorf("savings = %f, want 2.70", totals.CacheSavings)
	}
}

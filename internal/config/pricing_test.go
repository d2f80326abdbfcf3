package config

import (
	"math"
	"testing"

	"github.com/theirongolddev/ccmonitor/internal/model"
)

func floatPtr(v float64) *float64 { return &v }

func TestNormalizeModelName(t *testing.T) {
	table := DefaultPricingTable()
	tests := []struct {
		raw  string
		want string
	}{
		{"claude-opus-4-5-20251101", "claude-opus-4-5"},
		{"claude-sonnet-4-6", "claude-sonnet-4-6"},
		{"claude-3-5-sonnet-20241022", "claude-3-5-sonnet"},
		{"claude-unknown-20250101", "claude-unknown-20250101"},
		{"claude-sonnet-4-v2", "claude-sonnet-4-v2"},
		{"", ""},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			if got := table.NormalizeModelName(tt.raw); got != tt.want {
				t.Errorf("NormalizeModelName(%q) = %q, want %q", tt.raw, got, tt.want)
			}
		})
	}
}

func TestPerTokenRates(t *testing.T) {
	p := ModelPricing{InputPerMTok: 3, OutputPerMTok: 15, CacheWritePerMTok: 3.75, CacheReadPerMTok: 0.30}
	r := p.PerToken()
	if math.Abs(r.CacheRead-0.30/1_000_000) > 1e-18 {
		t.Fatalf("CacheRead rate = %g, want %g", r.CacheRead, 0.30/1_000_000)
	}

	cost := r.Cost(model.TokenUsage{
		InputTokens:              1_000_000,
		OutputTokens:             1_000_000,
		CacheCreationInputTokens: 1_000_000,
		CacheReadInputTokens:     1_000_000,
	})
	if math.Abs(cost-(3+15+3.75+0.30)) > 1e-9 {
		t.Fatalf("Cost = %.6f, want %.6f", cost, 3+15+3.75+0.30)
	}
}

func TestCalculateCost_UnknownModelIsFree(t *testing.T) {
	table := DefaultPricingTable()
	cost := table.CalculateCost("gpt-4o", model.TokenUsage{InputTokens: 10_000, OutputTokens: 5_000})
	if cost != 0 {
		t.Fatalf("unknown model cost = %f, want 0", cost)
	}
}

func TestCalculateCost_DatedModelID(t *testing.T) {
	table := DefaultPricingTable()
	cost := table.CalculateCost("claude-sonnet-4-5-20250929", model.TokenUsage{OutputTokens: 1_000_000})
	if math.Abs(cost-15) > 1e-9 {
		t.Fatalf("cost = %f, want 15", cost)
	}
}

func TestWithOverrides(t *testing.T) {
	base := DefaultPricingTable()
	table := base.WithOverrides(map[string]ModelPricingOverride{
		"claude-sonnet-4-5-20250929": {OutputPerMTok: floatPtr(20)},
		"local-model":                {InputPerMTok: floatPtr(1)},
	})

	p, ok := table.LookupPricing("claude-sonnet-4-5")
	if !ok {
		t.Fatal("override lost base model")
	}
	if p.OutputPerMTok != 20 {
		t.Errorf("OutputPerMTok = %.2f, want 20", p.OutputPerMTok)
	}
	if p.InputPerMTok != 3 {
		t.Errorf("InputPerMTok = %.2f, want untouched 3", p.InputPerMTok)
	}

	if _, ok := table.LookupPricing("local-model"); !ok {
		t.Error("override did not add new model")
	}

	// The source table must not change.
	if orig, _ := base.LookupPricing("claude-sonnet-4-5"); orig.OutputPerMTok != 15 {
		t.Errorf("base table mutated: OutputPerMTok = %.2f", orig.OutputPerMTok)
	}
}

func TestCalculateCacheSavings(t *testing.T) {
	table := DefaultPricingTable()
	got := table.CalculateCacheSavings("claude-sonnet-4-6", 1_000_000)
	if math.Abs(got-2.70) > 1e-9 {
		t.Fatalf("savings = %.4f, want 2.70", got)
	}
}

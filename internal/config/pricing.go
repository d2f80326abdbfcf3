package config

import (
	"strings"

	"github.com/theirongolddev/ccmonitor/internal/model"
)

// ModelPricing holds per-million-token prices for a model.
type ModelPricing struct {
	InputPerMTok      float64
	OutputPerMTok     float64
	CacheWritePerMTok float64
	CacheReadPerMTok  float64
}

// TokenRates holds the same prices in dollars per single token.
type TokenRates struct {
	Input      float64
	Output     float64
	CacheWrite float64
	CacheRead  float64
}

// PerToken converts published per-MTok prices into per-token rates.
func (p ModelPricing) PerToken() TokenRates {
	return TokenRates{
		Input:      p.InputPerMTok / 1_000_000,
		Output:     p.OutputPerMTok / 1_000_000,
		CacheWrite: p.CacheWritePerMTok / 1_000_000,
		CacheRead:  p.CacheReadPerMTok / 1_000_000,
	}
}

// Cost prices a token usage at these rates.
func (r TokenRates) Cost(u model.TokenUsage) float64 {
	return float64(u.InputTokens)*r.Input +
		float64(u.OutputTokens)*r.Output +
		float64(u.CacheCreationInputTokens)*r.CacheWrite +
		float64(u.CacheReadInputTokens)*r.CacheRead
}

// DefaultPricing maps model base names to their pricing.
var DefaultPricing = map[string]ModelPricing{
	"claude-opus-4-6":   {InputPerMTok: 5.00, OutputPerMTok: 25.00, CacheWritePerMTok: 6.25, CacheReadPerMTok: 0.50},
	"claude-opus-4-5":   {InputPerMTok: 5.00, OutputPerMTok: 25.00, CacheWritePerMTok: 6.25, CacheReadPerMTok: 0.50},
	"claude-opus-4-1":   {InputPerMTok: 15.00, OutputPerMTok: 75.00, CacheWritePerMTok: 18.75, CacheReadPerMTok: 1.50},
	"claude-opus-4":     {InputPerMTok: 15.00, OutputPerMTok: 75.00, CacheWritePerMTok: 18.75, CacheReadPerMTok: 1.50},
	"claude-sonnet-4-6": {InputPerMTok: 3.00, OutputPerMTok: 15.00, CacheWritePerMTok: 3.75, CacheReadPerMTok: 0.30},
	"claude-sonnet-4-5": {InputPerMTok: 3.00, OutputPerMTok: 15.00, CacheWritePerMTok: 3.75, CacheReadPerMTok: 0.30},
	"claude-sonnet-4":   {InputPerMTok: 3.00, OutputPerMTok: 15.00, CacheWritePerMTok: 3.75, CacheReadPerMTok: 0.30},
	"claude-haiku-4-5":  {InputPerMTok: 1.00, OutputPerMTok: 5.00, CacheWritePerMTok: 1.25, CacheReadPerMTok: 0.10},

	// Claude 3.x family, which only ships dated ids.
	"claude-3-7-sonnet": {InputPerMTok: 3.00, OutputPerMTok: 15.00, CacheWritePerMTok: 3.75, CacheReadPerMTok: 0.30},
	"claude-3-5-sonnet": {InputPerMTok: 3.00, OutputPerMTok: 15.00, CacheWritePerMTok: 3.75, CacheReadPerMTok: 0.30},
	"claude-3-5-haiku":  {InputPerMTok: 0.80, OutputPerMTok: 4.00, CacheWritePerMTok: 1.00, CacheReadPerMTok: 0.08},
	"claude-3-opus":     {InputPerMTok: 15.00, OutputPerMTok: 75.00, CacheWritePerMTok: 18.75, CacheReadPerMTok: 1.50},
	"claude-3-haiku":    {InputPerMTok: 0.25, OutputPerMTok: 1.25, CacheWritePerMTok: 0.30, CacheReadPerMTok: 0.03},
}

// PricingTable resolves model identifiers to per-token rates.
// It is read-only after construction and safe for concurrent use.
type PricingTable struct {
	models map[string]ModelPricing
}

// NewPricingTable builds a table from base-name pricing entries.
func NewPricingTable(models map[string]ModelPricing) *PricingTable {
	cp := make(map[string]ModelPricing, len(models))
	for name, p := range models {
		cp[name] = p
	}
	return &PricingTable{models: cp}
}

// DefaultPricingTable returns a table of the built-in prices.
func DefaultPricingTable() *PricingTable {
	return NewPricingTable(DefaultPricing)
}

// WithOverrides returns a copy of the table with user overrides applied.
// Overrides for models the table does not know add new entries.
func (t *PricingTable) WithOverrides(overrides map[string]ModelPricingOverride) *PricingTable {
	out := NewPricingTable(t.models)
	for name, o := range overrides {
		p := out.models[out.NormalizeModelName(name)]
		if o.InputPerMTok != nil {
			p.InputPerMTok = *o.InputPerMTok
		}
		if o.OutputPerMTok != nil {
			p.OutputPerMTok = *o.OutputPerMTok
		}
		if o.CacheWritePerMTok != nil {
			p.CacheWritePerMTok = *o.CacheWritePerMTok
		}
		if o.CacheReadPerMTok != nil {
			p.CacheReadPerMTok = *o.CacheReadPerMTok
		}
		out.models[out.NormalizeModelName(name)] = p
	}
	return out
}

// NormalizeModelName strips date suffixes from model identifiers.
// e.g., "claude-opus-4-5-20251101" -> "claude-opus-4-5"
func (t *PricingTable) NormalizeModelName(raw string) string {
	if _, ok := t.models[raw]; ok {
		return raw
	}

	parts := strings.Split(raw, "-")
	if len(parts) >= 2 {
		last := parts[len(parts)-1]
		if isAllDigits(last) && len(last) >= 8 {
			candidate := strings.Join(parts[:len(parts)-1], "-")
			if _, ok := t.models[candidate]; ok {
				return candidate
			}
		}
	}

	return raw
}

func isAllDigits(s string) bool {
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return len(s) > 0
}

// LookupPricing returns the pricing for a model, normalizing the name first.
// Returns zero pricing and false if the model is unknown.
func (t *PricingTable) LookupPricing(modelName string) (ModelPricing, bool) {
	p, ok := t.models[t.NormalizeModelName(modelName)]
	return p, ok
}

// CalculateCost prices a usage for the given model.
// Unknown models cost nothing.
func (t *PricingTable) CalculateCost(modelName string, u model.TokenUsage) float64 {
	p, ok := t.LookupPricing(modelName)
	if !ok {
		return 0
	}
	return p.PerToken().Cost(u)
}

// CalculateCacheSavings computes how much the cache reads saved vs full input pricing.
func (t *PricingTable) CalculateCacheSavings(modelName string, cacheReadTokens int64) float64 {
	p, ok := t.LookupPricing(modelName)
	if !ok {
		return 0
	}
	rates := p.PerToken()
	return float64(cacheReadTokens) * (rates.Input - rates.CacheRead)
}

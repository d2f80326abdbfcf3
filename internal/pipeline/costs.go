package pipeline

import (
	"sort"

	"github.com/theirongolddev/ccmonitor/internal/config"
	"github.com/theirongolddev/ccmonitor/internal/model"
)

// recordCost prices one record. A cost billed upstream is used as-is;
// otherwise the adjusted usage is priced from the table.
func recordCost(r model.UsageRecord, adjusted model.TokenUsage, pricing *config.PricingTable) float64 {
	if r.CostUSD != nil {
		return *r.CostUSD
	}
	return pricing.CalculateCost(r.Model, adjusted)
}

// cacheMax is the running maximum of raw cache counters within one chain.
type cacheMax struct {
	creation int64
	read     int64
}

// adjust returns u with its cache counters reduced to the amount above
// what the chain already reported, then advances the maximum.
func (m *cacheMax) adjust(u model.TokenUsage) model.TokenUsage {
	adjusted := u
	adjusted.CacheCreationInputTokens = max(0, u.CacheCreationInputTokens-m.creation)
	adjusted.CacheReadInputTokens = max(0, u.CacheReadInputTokens-m.read)

	m.creation = max(m.creation, u.CacheCreationInputTokens)
	m.read = max(m.read, u.CacheReadInputTokens)
	return adjusted
}

// TokenTypeCosts holds aggregate costs split by token type.
type TokenTypeCosts struct {
	InputCost      float64
	OutputCost     float64
	CacheWriteCost float64
	CacheReadCost  float64
	TotalCost      float64

	// CacheSavings is what the cache reads would have cost as plain input.
	CacheSavings float64
}

// ModelCostBreakdown holds cost components for one model.
type ModelCostBreakdown struct {
	Model string
	TokenTypeCosts
	Priced bool
}

// CostBreakdown splits each model's usage into per-token-type costs from
// the pricing table. It estimates from token counts, so it can differ from
// the rollup cost when records carried an upstream cost.
func CostBreakdown(models []model.ModelUsage, pricing *config.PricingTable) (TokenTypeCosts, []ModelCostBreakdown) {
	var totals TokenTypeCosts
	breakdowns := make([]ModelCostBreakdown, 0, len(models))

	for _, mu := range models {
		mb := ModelCostBreakdown{Model: mu.Model}
		p, ok := pricing.LookupPricing(mu.Model)
		if ok {
			rates := p.PerToken()
			mb.Priced = true
			mb.InputCost = float64(mu.Tokens.InputTokens) * rates.Input
			mb.OutputCost = float64(mu.Tokens.OutputTokens) * rates.Output
			mb.CacheWriteCost = float64(mu.Tokens.CacheCreationInputTokens) * rates.CacheWrite
			mb.CacheReadCost = float64(mu.Tokens.CacheReadInputTokens) * rates.CacheRead
			mb.TotalCost = mb.InputCost + mb.OutputCost + mb.CacheWriteCost + mb.CacheReadCost
			mb.CacheSavings = pricing.CalculateCacheSavings(mu.Model, mu.Tokens.CacheReadInputTokens)
		}

		totals.InputCost += mb.InputCost
		totals.OutputCost += mb.OutputCost
		totals.CacheWriteCost += mb.CacheWriteCost
		totals.CacheReadCost += mb.CacheReadCost
		totals.TotalCost += mb.TotalCost
		totals.CacheSavings += mb.CacheSavings

		breakdowns = append(breakdowns, mb)
	}

	sort.SliceStable(breakdowns, func(i, j int) bool {
		return breakdowns[i].TotalCost > breakdowns[j].TotalCost
	})

	return totals, breakdowns
}

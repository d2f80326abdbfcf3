// Package pipeline loads usage records and folds them into rollups.
package pipeline

import (
	"sort"
	"strings"
	"time"

	"github.com/theirongolddev/ccmonitor/internal/config"
	"github.com/theirongolddev/ccmonitor/internal/model"
)

// Compute detects resumed sessions and aggregates records in one call.
func Compute(records []model.UsageRecord, pricing *config.PricingTable) model.UsageStats {
	return Aggregate(records, DetectChains(records, DefaultResumeGap), pricing)
}

// Aggregate folds records into daily, session, monthly and model rollups.
//
// Records are processed in timestamp order regardless of input order, so
// cache counters of resumed sessions are reduced against what earlier
// sessions of the same chain already reported.
func Aggregate(records []model.UsageRecord, chains Chains, pricing *config.PricingTable) model.UsageStats {
	var stats model.UsageStats

	dayMap := make(map[string]*model.DailyUsage)
	daySessions := make(map[string]map[string]struct{})
	dayModels := make(map[string]map[string]struct{})
	sessMap := make(map[string]*model.SessionUsage)
	sessModels := make(map[string]map[string]struct{})
	monthMap := make(map[string]*model.MonthlyUsage)
	monthModels := make(map[string]map[string]struct{})
	modelMap := make(map[string]*model.ModelUsage)
	chainMax := make(map[int]*cacheMax)

	for _, r := range sortedRecords(records) {
		adjusted := r.Usage
		chainID, chained := chains.Lookup(r.SessionID)
		if chained {
			m, ok := chainMax[chainID]
			if !ok {
				m = &cacheMax{}
				chainMax[chainID] = m
			}
			adjusted = m.adjust(r.Usage)
		}
		cost := recordCost(r, adjusted, pricing)

		stats.TotalTokens.Add(adjusted)
		stats.TotalCost += cost

		ts := r.Timestamp.UTC()
		dayKey := ts.Format("2006-01-02")
		d, ok := dayMap[dayKey]
		if !ok {
			d = &model.DailyUsage{Date: time.Date(ts.Year(), ts.Month(), ts.Day(), 0, 0, 0, 0, time.UTC)}
			dayMap[dayKey] = d
			daySessions[dayKey] = make(map[string]struct{})
			dayModels[dayKey] = make(map[string]struct{})
		}
		d.Tokens.Add(adjusted)
		d.TotalCost += cost
		daySessions[dayKey][r.SessionID] = struct{}{}
		dayModels[dayKey][r.Model] = struct{}{}

		s, ok := sessMap[r.SessionID]
		if !ok {
			s = &model.SessionUsage{
				SessionID:     r.SessionID,
				FirstActivity: ts,
				ChainID:       -1,
			}
			if chained {
				s.ChainID = chainID
			}
			sessMap[r.SessionID] = s
			sessModels[r.SessionID] = make(map[string]struct{})
		}
		if s.ProjectPath == "" && r.ProjectPath != "" {
			s.ProjectPath = r.ProjectPath
		}
		s.Tokens.Add(adjusted)
		s.TotalCost += cost
		s.Records++
		if ts.After(s.LastActivity) {
			s.LastActivity = ts
		}
		sessModels[r.SessionID][r.Model] = struct{}{}

		monthKey := ts.Format("2006-01")
		mo, ok := monthMap[monthKey]
		if !ok {
			mo = &model.MonthlyUsage{Month: monthKey}
			monthMap[monthKey] = mo
			monthModels[monthKey] = make(map[string]struct{})
		}
		mo.Tokens.Add(adjusted)
		mo.TotalCost += cost
		monthModels[monthKey][r.Model] = struct{}{}

		mu, ok := modelMap[r.Model]
		if !ok {
			mu = &model.ModelUsage{Model: r.Model}
			modelMap[r.Model] = mu
		}
		mu.Tokens.Add(adjusted)
		mu.TotalCost += cost
		mu.Records++
	}

	stats.Daily = make([]model.DailyUsage, 0, len(dayMap))
	for key, d := range dayMap {
		d.SessionCount = len(daySessions[key])
		d.Models = sortedKeys(dayModels[key])
		stats.Daily = append(stats.Daily, *d)
	}
	sort.Slice(stats.Daily, func(i, j int) bool {
		return stats.Daily[i].Date.Before(stats.Daily[j].Date)
	})

	stats.Sessions = make([]model.SessionUsage, 0, len(sessMap))
	for id, s := range sessMap {
		if s.ProjectPath == "" {
			s.ProjectPath = model.UnknownProject
		}
		s.Models = sortedKeys(sessModels[id])
		stats.Sessions = append(stats.Sessions, *s)
	}
	sort.Slice(stats.Sessions, func(i, j int) bool {
		a, b := stats.Sessions[i], stats.Sessions[j]
		if !a.LastActivity.Equal(b.LastActivity) {
			return a.LastActivity.After(b.LastActivity)
		}
		return a.SessionID < b.SessionID
	})

	stats.Monthly = make([]model.MonthlyUsage, 0, len(monthMap))
	for key, mo := range monthMap {
		mo.Models = sortedKeys(monthModels[key])
		stats.Monthly = append(stats.Monthly, *mo)
	}
	sort.Slice(stats.Monthly, func(i, j int) bool {
		return stats.Monthly[i].Month < stats.Monthly[j].Month
	})

	// Daily is sorted, so each month's breakdown comes out ascending.
	monthIdx := make(map[string]int, len(stats.Monthly))
	for i, mo := range stats.Monthly {
		monthIdx[mo.Month] = i
	}
	for _, d := range stats.Daily {
		i := monthIdx[d.Date.Format("2006-01")]
		stats.Monthly[i].DailyBreakdown = append(stats.Monthly[i].DailyBreakdown, d)
	}

	stats.Models = make([]model.ModelUsage, 0, len(modelMap))
	for _, mu := range modelMap {
		stats.Models = append(stats.Models, *mu)
	}
	sort.Slice(stats.Models, func(i, j int) bool {
		a, b := stats.Models[i], stats.Models[j]
		if a.TotalCost != b.TotalCost {
			return a.TotalCost > b.TotalCost
		}
		return a.Model < b.Model
	})

	stats.Chains = chains.Resumed()

	return stats
}

// AggregateProjects groups session rollups by project path, costliest first.
func AggregateProjects(sessions []model.SessionUsage) []model.ProjectUsage {
	projMap := make(map[string]*model.ProjectUsage)

	for _, s := range sessions {
		ps, ok := projMap[s.ProjectPath]
		if !ok {
			ps = &model.ProjectUsage{ProjectPath: s.ProjectPath}
			projMap[s.ProjectPath] = ps
		}
		ps.Sessions++
		ps.Tokens.Add(s.Tokens)
		ps.TotalCost += s.TotalCost
		if s.LastActivity.After(ps.LastActivity) {
			ps.LastActivity = s.LastActivity
		}
	}

	projects := make([]model.ProjectUsage, 0, len(projMap))
	for _, ps := range projMap {
		projects = append(projects, *ps)
	}
	sort.Slice(projects, func(i, j int) bool {
		if projects[i].TotalCost != projects[j].TotalCost {
			return projects[i].TotalCost > projects[j].TotalCost
		}
		return projects[i].ProjectPath < projects[j].ProjectPath
	})

	return projects
}

// sortedRecords returns a copy in recordLess order.
func sortedRecords(records []model.UsageRecord) []model.UsageRecord {
	out := make([]model.UsageRecord, len(records))
	copy(out, records)
	sortRecords(out)
	return out
}

func sortRecords(records []model.UsageRecord) {
	sort.SliceStable(records, func(i, j int) bool {
		return recordLess(records[i], records[j])
	})
}

// recordLess orders by timestamp, session id and model, then by every
// remaining field, so only fully identical records tie. Cache adjustment
// within a chain depends on this order.
func recordLess(a, b model.UsageRecord) bool {
	if !a.Timestamp.Equal(b.Timestamp) {
		return a.Timestamp.Before(b.Timestamp)
	}
	if a.SessionID != b.SessionID {
		return a.SessionID < b.SessionID
	}
	if a.Model != b.Model {
		return a.Model < b.Model
	}
	if a.ProjectPath != b.ProjectPath {
		return a.ProjectPath < b.ProjectPath
	}
	ua, ub := a.Usage, b.Usage
	if ua.CacheReadInputTokens != ub.CacheReadInputTokens {
		return ua.CacheReadInputTokens < ub.CacheReadInputTokens
	}
	if ua.CacheCreationInputTokens != ub.CacheCreationInputTokens {
		return ua.CacheCreationInputTokens < ub.CacheCreationInputTokens
	}
	if ua.InputTokens != ub.InputTokens {
		return ua.InputTokens < ub.InputTokens
	}
	if ua.OutputTokens != ub.OutputTokens {
		return ua.OutputTokens < ub.OutputTokens
	}
	// No cost sorts before a cost.
	if (a.CostUSD == nil) != (b.CostUSD == nil) {
		return a.CostUSD == nil
	}
	if a.CostUSD != nil && *a.CostUSD != *b.CostUSD {
		return *a.CostUSD < *b.CostUSD
	}
	return false
}

func sortedKeys(set map[string]struct{}) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// FilterSince returns records at or after since. A zero since keeps everything.
func FilterSince(records []model.UsageRecord, since time.Time) []model.UsageRecord {
	if since.IsZero() {
		return records
	}
	var result []model.UsageRecord
	for _, r := range records {
		if !r.Timestamp.Before(since) {
			result = append(result, r)
		}
	}
	return result
}

// FilterByProject returns records whose cwd contains the project substring.
func FilterByProject(records []model.UsageRecord, project string) []model.UsageRecord {
	if project == "" {
		return records
	}
	var result []model.UsageRecord
	for _, r := range records {
		if containsIgnoreCase(r.Project(), project) {
			result = append(result, r)
		}
	}
	return result
}

// FilterByModel returns records for models matching the given substring.
func FilterByModel(records []model.UsageRecord, modelFilter string) []model.UsageRecord {
	if modelFilter == "" {
		return records
	}
	var result []model.UsageRecord
	for _, r := range records {
		if containsIgnoreCase(r.Model, modelFilter) {
			result = append(result, r)
		}
	}
	return result
}

func containsIgnoreCase(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}

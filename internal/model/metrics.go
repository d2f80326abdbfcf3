package model

import "time"

// DailyUsage holds metrics for a single UTC calendar day.
type DailyUsage struct {
	Date         time.Time  `json:"-"`
	Tokens       TokenUsage `json:"tokens"`
	TotalCost    float64    `json:"cost"`
	Models       []string   `json:"models"`
	SessionCount int        `json:"sessions"`
}

// Key returns the day as "2006-01-02".
func (d DailyUsage) Key() string {
	return d.Date.Format("2006-01-02")
}

// MonthlyUsage holds metrics for one "YYYY-MM" month.
type MonthlyUsage struct {
	Month          string       `json:"month"`
	Tokens         TokenUsage   `json:"tokens"`
	TotalCost      float64      `json:"cost"`
	Models         []string     `json:"models"`
	DailyBreakdown []DailyUsage `json:"-"`
}

// ModelUsage holds metrics for a single model identifier.
type ModelUsage struct {
	Model     string     `json:"model"`
	Tokens    TokenUsage `json:"tokens"`
	TotalCost float64    `json:"cost"`
	Records   int        `json:"records"`
}

// UsageStats is the aggregate produced by one pass over the logs.
//
// Daily is ascending by date, Sessions descending by last activity,
// Monthly ascending by month, Models descending by cost.
type UsageStats struct {
	TotalTokens TokenUsage
	TotalCost   float64

	Daily    []DailyUsage
	Sessions []SessionUsage
	Monthly  []MonthlyUsage
	Models   []ModelUsage

	// Chains lists resumed-session groups with more than one member.
	Chains [][]string
}

// Day returns the bucket for the given date, if any.
func (s UsageStats) Day(date time.Time) (DailyUsage, bool) {
	key := date.UTC().Format("2006-01-02")
	for _, d := range s.Daily {
		if d.Key() == key {
			return d, true
		}
	}
	return DailyUsage{}, false
}

// Month returns the bucket for a "YYYY-MM" key, if any.
func (s UsageStats) Month(key string) (MonthlyUsage, bool) {
	for _, m := range s.Monthly {
		if m.Month == key {
			return m, true
		}
	}
	return MonthlyUsage{}, false
}

// Session returns the bucket for a session id, if any.
func (s UsageStats) Session(id string) (SessionUsage, bool) {
	for _, su := range s.Sessions {
		if su.SessionID == id {
			return su, true
		}
	}
	return SessionUsage{}, false
}

// DaysSince sums daily buckets strictly after the given date.
func (s UsageStats) DaysSince(after time.Time) (TokenUsage, float64) {
	var tokens TokenUsage
	var cost float64
	cutoff := after.UTC().Format("2006-01-02")
	for _, d := range s.Daily {
		if d.Key() > cutoff {
			tokens.Add(d.Tokens)
			cost += d.TotalCost
		}
	}
	return tokens, cost
}

// ProjectUsage groups sessions that share a project path.
type ProjectUsage struct {
	ProjectPath  string     `json:"project_path"`
	Sessions     int        `json:"sessions"`
	Tokens       TokenUsage `json:"tokens"`
	TotalCost    float64    `json:"cost"`
	LastActivity time.Time  `json:"last_activity"`
}

// Package model defines domain types for ccmonitor usage records and rollups.
package model

import "time"

// UnknownProject is the project key for sessions whose records never carry a cwd.
const UnknownProject = "unknown"

// TokenUsage holds the four token counters reported per API response.
// It only ever grows by component-wise addition.
type TokenUsage struct {
	InputTokens              int64 `json:"input"`
	OutputTokens             int64 `json:"output"`
	CacheCreationInputTokens int64 `json:"cache_creation"`
	CacheReadInputTokens     int64 `json:"cache_read"`
}

// TotalInput is input plus both cache counters.
func (u TokenUsage) TotalInput() int64 {
	return u.InputTokens + u.CacheCreationInputTokens + u.CacheReadInputTokens
}

// Total is every counter summed.
func (u TokenUsage) Total() int64 {
	return u.TotalInput() + u.OutputTokens
}

// Add accumulates other into u.
func (u *TokenUsage) Add(other TokenUsage) {
	u.InputTokens += other.InputTokens
	u.OutputTokens += other.OutputTokens
	u.CacheCreationInputTokens += other.CacheCreationInputTokens
	u.CacheReadInputTokens += other.CacheReadInputTokens
}

// UsageRecord is one validated assistant response parsed from a log line.
type UsageRecord struct {
	Timestamp   time.Time
	SessionID   string
	ProjectPath string // raw cwd, empty when the line had none
	Model       string
	Usage       TokenUsage

	// CostUSD is the cost already billed upstream, nil when absent.
	CostUSD *float64
}

// Project returns the record's cwd or UnknownProject.
func (r UsageRecord) Project() string {
	if r.ProjectPath == "" {
		return UnknownProject
	}
	return r.ProjectPath
}

// SessionUsage holds accumulated usage for one session id.
type SessionUsage struct {
	SessionID     string     `json:"session_id"`
	ProjectPath   string     `json:"project_path"`
	Tokens        TokenUsage `json:"tokens"`
	TotalCost     float64    `json:"cost"`
	FirstActivity time.Time  `json:"first_activity"`
	LastActivity  time.Time  `json:"last_activity"`
	Models        []string   `json:"models"`
	Records       int        `json:"records"`

	// ChainID indexes UsageStats chains; -1 when no resume was detected.
	ChainID int `json:"chain_id"`
}

package pipeline

import (
	"time"

	"github.com/theirongolddev/ccmonitor/internal/model"
)

// BlockDuration is the length of a billing block. Blocks are aligned to
// multiples of five hours since the Unix epoch.
const BlockDuration = 5 * time.Hour

// BurnWindow is the lookback used for the hourly burn rate.
const BurnWindow = 3 * time.Hour

// WindowUsage sums the sessions active in some time window.
type WindowUsage struct {
	Sessions int
	Tokens   model.TokenUsage
	Cost     float64
}

// BlockStart returns the start of the block containing now.
func BlockStart(now time.Time) time.Time {
	hours := now.Unix() / 3600
	return time.Unix((hours/5)*5*3600, 0).UTC()
}

// SessionsSince sums the sessions whose last activity is at or after since.
func SessionsSince(sessions []model.SessionUsage, since time.Time) WindowUsage {
	var w WindowUsage
	for _, s := range sessions {
		if s.LastActivity.Before(since) {
			continue
		}
		w.Sessions++
		w.Tokens.Add(s.Tokens)
		w.Cost += s.TotalCost
	}
	return w
}

// BurnRate is the dollars per hour spent by sessions active in the last BurnWindow.
func BurnRate(sessions []model.SessionUsage, now time.Time) float64 {
	w := SessionsSince(sessions, now.Add(-BurnWindow))
	if w.Sessions == 0 {
		return 0
	}
	return w.Cost / BurnWindow.Hours()
}

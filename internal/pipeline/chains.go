package pipeline

import (
	"sort"
	"time"

	"github.com/theirongolddev/ccmonitor/internal/model"
)

// DefaultResumeGap is how soon after a session ends another one in the same
// project has to start to count as a resume of it.
const DefaultResumeGap = 10 * time.Minute

// Chains partitions session ids into groups of resumed sessions.
// Every session id seen in the records is in exactly one chain.
type Chains struct {
	List  [][]string
	index map[string]int
}

// Lookup returns the chain index for a session that was part of a resume.
// Sessions alone in their chain report false.
func (c Chains) Lookup(sessionID string) (int, bool) {
	idx, ok := c.index[sessionID]
	if !ok || len(c.List[idx]) < 2 {
		return -1, false
	}
	return idx, true
}

// Resumed returns only the chains with more than one member.
func (c Chains) Resumed() [][]string {
	var out [][]string
	for _, chain := range c.List {
		if len(chain) > 1 {
			out = append(out, chain)
		}
	}
	return out
}

type sessionSpan struct {
	id      string
	project string
	first   time.Time
	last    time.Time
}

// DetectChains groups sessions of the same project where each one starts
// within gap of the chain's latest activity. Chaining is transitive.
func DetectChains(records []model.UsageRecord, gap time.Duration) Chains {
	spans := make(map[string]*sessionSpan)
	var order []string

	for _, r := range records {
		s, ok := spans[r.SessionID]
		if !ok {
			s = &sessionSpan{id: r.SessionID, first: r.Timestamp, last: r.Timestamp}
			spans[r.SessionID] = s
			order = append(order, r.SessionID)
		}
		if r.Timestamp.Before(s.first) {
			s.first = r.Timestamp
		}
		if r.Timestamp.After(s.last) {
			s.last = r.Timestamp
		}
	}

	// The project is the cwd of the earliest record that has one, so
	// resolve it from a timestamp-ordered view.
	for _, r := range sortedRecords(records) {
		if s := spans[r.SessionID]; s.project == "" && r.ProjectPath != "" {
			s.project = r.ProjectPath
		}
	}

	byProject := make(map[string][]*sessionSpan)
	var projects []string
	for _, id := range order {
		s := spans[id]
		if s.project == "" {
			s.project = model.UnknownProject
		}
		if _, ok := byProject[s.project]; !ok {
			projects = append(projects, s.project)
		}
		byProject[s.project] = append(byProject[s.project], s)
	}
	sort.Strings(projects)

	chains := Chains{index: make(map[string]int, len(spans))}
	for _, p := range projects {
		sessions := byProject[p]
		sort.Slice(sessions, func(i, j int) bool {
			if !sessions[i].first.Equal(sessions[j].first) {
				return sessions[i].first.Before(sessions[j].first)
			}
			return sessions[i].id < sessions[j].id
		})

		processed := make([]bool, len(sessions))
		for i, seed := range sessions {
			if processed[i] {
				continue
			}
			processed[i] = true
			chain := []string{seed.id}
			end := seed.last

			for j := i + 1; j < len(sessions); j++ {
				if processed[j] {
					continue
				}
				delta := sessions[j].first.Sub(end)
				if delta > gap {
					// Firsts are sorted and end only grows, so nothing later fits.
					break
				}
				if delta < 0 {
					// Overlaps the chain rather than resuming it.
					continue
				}
				processed[j] = true
				chain = append(chain, sessions[j].id)
				if sessions[j].last.After(end) {
					end = sessions[j].last
				}
			}

			idx := len(chains.List)
			chains.List = append(chains.List, chain)
			for _, id := range chain {
				chains.index[id] = idx
			}
		}
	}

	return chains
}

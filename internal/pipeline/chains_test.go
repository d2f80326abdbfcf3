package pipeline

import (
	"testing"
	"time"

	"github.com/theirongolddev/ccmonitor/internal/model"
)

var t0 = time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)

func at(d time.Duration) time.Time { return t0.Add(d) }

func rec(session, cwd string, ts time.Time) model.UsageRecord {
	return model.UsageRecord{
		Timestamp:   ts,
		SessionID:   session,
		ProjectPath: cwd,
		Model:       "claude-sonnet-4-6",
		Usage:       model.TokenUsage{InputTokens: 1, OutputTokens: 1},
	}
}

func sameChain(c Chains, a, b string) bool {
	ia, oka := c.Lookup(a)
	ib, okb := c.Lookup(b)
	return oka && okb && ia == ib
}

func TestDetectChains_GapBoundary(t *testing.T) {
	tests := []struct {
		name    string
		startB  time.Duration
		chained bool
	}{
		{"exactly ten minutes", 10 * time.Minute, true},
		{"ten minutes one second", 10*time.Minute + time.Second, false},
		{"immediately after", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			records := []model.UsageRecord{
				rec("a", "/p", at(-time.Hour)),
				rec("a", "/p", at(0)),
				rec("b", "/p", at(tt.startB)),
			}
			c := DetectChains(records, DefaultResumeGap)
			if got := sameChain(c, "a", "b"); got != tt.chained {
				t.Errorf("chained = %v, want %v (chains %v)", got, tt.chained, c.List)
			}
		})
	}
}

func TestDetectChains_CrossProjectIsolation(t *testing.T) {
	records := []model.UsageRecord{
		rec("a", "/p1", at(0)),
		rec("b", "/p2", at(time.Second)),
	}
	c := DetectChains(records, DefaultResumeGap)
	if _, ok := c.Lookup("a"); ok {
		t.Errorf("a chained across projects: %v", c.List)
	}
	if _, ok := c.Lookup("b"); ok {
		t.Errorf("b chained across projects: %v", c.List)
	}
	if len(c.List) != 2 {
		t.Errorf("chains = %d, want 2 singletons", len(c.List))
	}
}

func TestDetectChains_Transitive(t *testing.T) {
	// Each session starts 8 minutes after the previous one ends.
	records := []model.UsageRecord{
		rec("a", "/p", at(0)),
		rec("b", "/p", at(8*time.Minute)),
		rec("b", "/p", at(20*time.Minute)),
		rec("c", "/p", at(28*time.Minute)),
	}
	c := DetectChains(records, DefaultResumeGap)
	if !sameChain(c, "a", "b") || !sameChain(c, "b", "c") {
		t.Fatalf("want one chain a-b-c, got %v", c.List)
	}
	if got := c.Resumed(); len(got) != 1 || len(got[0]) != 3 {
		t.Errorf("Resumed() = %v", got)
	}
	idx, _ := c.Lookup("a")
	if want := []string{"a", "b", "c"}; !equalStrings(c.List[idx], want) {
		t.Errorf("chain order = %v, want %v", c.List[idx], want)
	}
}

func TestDetectChains_OverlapNotChained(t *testing.T) {
	records := []model.UsageRecord{
		rec("a", "/p", at(0)),
		rec("a", "/p", at(30*time.Minute)),
		rec("b", "/p", at(10*time.Minute)), // starts while a is still running
	}
	c := DetectChains(records, DefaultResumeGap)
	if sameChain(c, "a", "b") {
		t.Errorf("overlapping sessions chained: %v", c.List)
	}
}

func TestDetectChains_UnknownProjectAndPartition(t *testing.T) {
	records := []model.UsageRecord{
		rec("a", "", at(0)),
		rec("b", "", at(5*time.Minute)),
		rec("c", "/p", at(6*time.Minute)),
		rec("c", "/p", at(7*time.Minute)),
	}
	c := DetectChains(records, DefaultResumeGap)
	if !sameChain(c, "a", "b") {
		t.Errorf("sessions without cwd should share the unknown project: %v", c.List)
	}

	seen := make(map[string]int)
	for _, chain := range c.List {
		for _, id := range chain {
			seen[id]++
		}
	}
	for _, id := range []string{"a", "b", "c"} {
		if seen[id] != 1 {
			t.Errorf("%s appears in %d chains, want 1", id, seen[id])
		}
	}
}

func TestDetectChains_ProjectFromEarliestCwd(t *testing.T) {
	// b's first record has no cwd; its project comes from the next one.
	records := []model.UsageRecord{
		rec("a", "/p", at(0)),
		rec("b", "", at(2*time.Minute)),
		rec("b", "/p", at(3*time.Minute)),
	}
	c := DetectChains(records, DefaultResumeGap)
	if !sameChain(c, "a", "b") {
		t.Errorf("want a-b chained in /p, got %v", c.List)
	}
}

func TestDetectChains_InputOrderIrrelevant(t *testing.T) {
	records := []model.UsageRecord{
		rec("c", "/p", at(28*time.Minute)),
		rec("b", "/p", at(20*time.Minute)),
		rec("a", "/p", at(0)),
		rec("b", "/p", at(8*time.Minute)),
	}
	c := DetectChains(records, DefaultResumeGap)
	if !sameChain(c, "a", "c") {
		t.Errorf("shuffled input broke chaining: %v", c.List)
	}
}

func TestChains_LookupMissing(t *testing.T) {
	c := DetectChains(nil, DefaultResumeGap)
	if idx, ok := c.Lookup("nope"); ok || idx != -1 {
		t.Errorf("Lookup(nope) = %d, %v", idx, ok)
	}
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

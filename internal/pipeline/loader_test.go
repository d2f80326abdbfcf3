package pipeline

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/theirongolddev/ccmonitor/internal/config"
	"github.com/theirongolddev/ccmonitor/internal/source"
	"github.com/theirongolddev/ccmonitor/internal/store"
)

func line(ts, session, cwd string, cacheRead int) string {
	l := `{"type":"assistant","timestamp":"` + ts + `"`
	if session != "" {
		l += `,"sessionId":"` + session + `"`
	}
	if cwd != "" {
		l += `,"cwd":"` + cwd + `"`
	}
	return l + `,"message":{"model":"claude-sonnet-4-6","usage":{"input_tokens":10,"output_tokens":5,"cache_read_input_tokens":` +
		strconv.Itoa(cacheRead) + `}}}`
}

// writeDataDir lays out <root>/projects/<project>/<file> with the given lines.
func writeDataDir(t *testing.T, files map[string][]string) string {
	t.Helper()
	root := t.TempDir()
	for rel, lines := range files {
		path := filepath.Join(root, "projects", rel)
		if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0o600); err != nil {
			t.Fatal(err)
		}
	}
	return root
}

func fixtureDir(t *testing.T) string {
	return writeDataDir(t, map[string][]string{
		"-home-me-projects-app/s1.jsonl": {
			`{"type":"user","timestamp":"2025-06-01T09:00:00Z","message":{"role":"user"}}`,
			line("2025-06-01T09:05:00Z", "s1", "/app", 200),
			line("2025-06-01T09:00:00Z", "s1", "/app", 0),
			`{"broken`,
		},
		"-home-me-projects-app/s2.jsonl": {
			line("2025-06-01T09:12:00Z", "", "/app", 350),
		},
		"-home-me-projects-lib/s3.jsonl": {
			line("2025-06-02T10:00:00Z", "s3", "/lib", 0),
		},
	})
}

func TestLoad_MergesAndSorts(t *testing.T) {
	dir := fixtureDir(t)

	var calls atomic.Int64
	result, err := Load(context.Background(), Options{
		DataDirs: []string{dir},
		Progress: func(current, total int) {
			calls.Add(1)
			if total != 3 || current < 1 || current > 3 {
				t.Errorf("progress(%d, %d)", current, total)
			}
		},
	})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if result.TotalFiles != 3 || result.ParsedFiles != 3 || result.ProjectCount != 2 {
		t.Errorf("result = %+v", result)
	}
	if calls.Load() != 3 {
		t.Errorf("progress calls = %d, want 3", calls.Load())
	}
	if result.SkippedLines != 1 {
		t.Errorf("SkippedLines = %d, want 1", result.SkippedLines)
	}
	if len(result.Records) != 4 {
		t.Fatalf("Records = %d, want 4", len(result.Records))
	}
	for i := 1; i < len(result.Records); i++ {
		if result.Records[i].Timestamp.Before(result.Records[i-1].Timestamp) {
			t.Fatalf("records not sorted at %d", i)
		}
	}
	// s2.jsonl has no sessionId and falls back to its file stem.
	if result.Records[2].SessionID != "s2" {
		t.Errorf("Records[2].SessionID = %q, want s2", result.Records[2].SessionID)
	}

	stats := Compute(result.Records, config.DefaultPricingTable())
	s2, _ := stats.Session("s2")
	if s2.Tokens.CacheReadInputTokens != 150 {
		t.Errorf("s2 cache_read = %d, want 150", s2.Tokens.CacheReadInputTokens)
	}
}

func TestLoad_NoDataDir(t *testing.T) {
	_, err := Load(context.Background(), Options{DataDirs: []string{t.TempDir()}})
	if !errors.Is(err, source.ErrNoDataDirs) {
		t.Fatalf("err = %v, want ErrNoDataDirs", err)
	}
}

func TestLoad_UnreadableFileIsFatal(t *testing.T) {
	if os.Getuid() == 0 {
		t.Skip("root can read everything")
	}
	dir := fixtureDir(t)
	path := filepath.Join(dir, "projects", "-home-me-projects-lib", "s3.jsonl")
	if err := os.Chmod(path, 0); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(context.Background(), Options{DataDirs: []string{dir}}); err == nil {
		t.Fatal("expected error for unreadable file")
	}
}

func TestLoad_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := Load(ctx, Options{DataDirs: []string{fixtureDir(t)}}); !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
}

func TestLoad_WithCache(t *testing.T) {
	dir := fixtureDir(t)
	cache, err := store.Open(filepath.Join(t.TempDir(), "records.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = cache.Close() }()

	first, err := Load(context.Background(), Options{DataDirs: []string{dir}, Cache: cache})
	if err != nil {
		t.Fatalf("first load: %v", err)
	}
	if first.CacheHits != 0 || first.ParsedFiles != 3 {
		t.Errorf("first = hits %d parsed %d", first.CacheHits, first.ParsedFiles)
	}

	second, err := Load(context.Background(), Options{DataDirs: []string{dir}, Cache: cache})
	if err != nil {
		t.Fatalf("second load: %v", err)
	}
	if second.CacheHits != 3 || second.ParsedFiles != 0 {
		t.Errorf("second = hits %d parsed %d", second.CacheHits, second.ParsedFiles)
	}
	// Malformed lines of cached files are still reported.
	if first.SkippedLines != 1 || second.SkippedLines != first.SkippedLines {
		t.Errorf("SkippedLines first %d second %d, want 1 both", first.SkippedLines, second.SkippedLines)
	}
	if len(second.Records) != len(first.Records) {
		t.Fatalf("cached records = %d, want %d", len(second.Records), len(first.Records))
	}
	for i := range first.Records {
		a, b := first.Records[i], second.Records[i]
		if !a.Timestamp.Equal(b.Timestamp) || a.SessionID != b.SessionID || a.Usage != b.Usage {
			t.Errorf("record %d differs: %+v vs %+v", i, a, b)
		}
	}

	// Touch one file and delete another.
	s1 := filepath.Join(dir, "projects", "-home-me-projects-app", "s1.jsonl")
	f, err := os.OpenFile(s1, os.O_APPEND|os.O_WRONLY, 0o600)
	if err != nil {
		t.Fatal(err)
	}
	_, _ = f.WriteString(line("2025-06-01T09:06:00Z", "s1", "/app", 250) + "\n")
	_ = f.Close()
	future := time.Now().Add(time.Hour)
	_ = os.Chtimes(s1, future, future)
	if err := os.Remove(filepath.Join(dir, "projects", "-home-me-projects-lib", "s3.jsonl")); err != nil {
		t.Fatal(err)
	}

	third, err := Load(context.Background(), Options{DataDirs: []string{dir}, Cache: cache})
	if err != nil {
		t.Fatalf("third load: %v", err)
	}
	if third.CacheHits != 1 || third.ParsedFiles != 1 || len(third.Records) != 4 {
		t.Errorf("third = hits %d parsed %d records %d", third.CacheHits, third.ParsedFiles, len(third.Records))
	}
	tracked, err := cache.TrackedFiles()
	if err != nil {
		t.Fatal(err)
	}
	if len(tracked) != 2 {
		t.Errorf("tracked files = %d, want 2 after prune", len(tracked))
	}
}

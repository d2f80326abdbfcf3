package pipeline

import (
	"log/slog"
	"os"
	"path/filepath"

	"github.com/theirongolddev/ccmonitor/internal/model"
	"github.com/theirongolddev/ccmonitor/internal/source"
	"github.com/theirongolddev/ccmonitor/internal/store"
)

// cacheState tracks which files the cache could serve during one load.
type cacheState struct {
	misses []int
	stats  map[int]store.FileInfo
	// skipped sums the malformed lines recorded for the files served from cache.
	skipped int
	// broken is set once the cache fails; nothing is written back after that.
	broken bool
}

// loadCached fills perFile for every file whose mtime and size match the
// cache and returns the indices that still need parsing. Cache errors are
// logged and turn every file into a miss.
func loadCached(cache *store.Cache, files []source.DiscoveredFile, perFile [][]model.UsageRecord, logger *slog.Logger) *cacheState {
	st := &cacheState{stats: make(map[int]store.FileInfo, len(files))}

	allMisses := func() {
		st.misses = st.misses[:0]
		for i := range files {
			st.misses = append(st.misses, i)
			perFile[i] = nil
		}
	}

	tracked, err := cache.TrackedFiles()
	if err != nil {
		logger.Warn("record cache unavailable, parsing everything", "err", err)
		st.broken = true
		allMisses()
		return st
	}

	for i, f := range files {
		fi, err := store.StatFile(f.Path)
		if err != nil {
			// Let the parser surface the error.
			st.misses = append(st.misses, i)
			continue
		}
		st.stats[i] = fi

		prev, ok := tracked[f.Path]
		if !ok || prev.FileInfo != fi {
			st.misses = append(st.misses, i)
			continue
		}

		recs, err := cache.LoadFile(f.Path)
		if err != nil {
			logger.Warn("record cache read failed, parsing everything", "file", f.Path, "err", err)
			st.broken = true
			st.skipped = 0
			allMisses()
			return st
		}
		perFile[i] = recs
		st.skipped += prev.SkippedLines
	}
	return st
}

// save writes freshly parsed files back and forgets files that no longer exist.
func (st *cacheState) save(cache *store.Cache, files []source.DiscoveredFile, parsed []source.ParseResult, logger *slog.Logger) {
	if st.broken {
		return
	}
	for _, idx := range st.misses {
		fi, ok := st.stats[idx]
		if !ok {
			continue
		}
		if err := cache.SaveFile(files[idx].Path, fi, parsed[idx].Records, parsed[idx].SkippedLines()); err != nil {
			logger.Warn("record cache write failed", "file", files[idx].Path, "err", err)
			return
		}
	}

	keep := make(map[string]struct{}, len(files))
	for _, f := range files {
		keep[f.Path] = struct{}{}
	}
	if dropped, err := cache.Prune(keep); err != nil {
		logger.Warn("record cache prune failed", "err", err)
	} else if dropped > 0 {
		logger.Debug("pruned record cache", "files", dropped)
	}
}

// CacheDir returns the platform-appropriate cache directory.
func CacheDir() string {
	if xdg := os.Getenv("XDG_CACHE_HOME"); xdg != "" {
		return filepath.Join(xdg, "ccmonitor")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".cache", "ccmonitor")
}

// CachePath returns the full path to the cache database.
func CachePath() string {
	return filepath.Join(CacheDir(), "records.db")
}

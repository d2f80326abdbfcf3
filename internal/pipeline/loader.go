package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"sync"
	"sync/atomic"

	"github.com/theirongolddev/ccmonitor/internal/model"
	"github.com/theirongolddev/ccmonitor/internal/source"
	"github.com/theirongolddev/ccmonitor/internal/store"
)

// LoadResult holds the output of the full data loading pipeline.
type LoadResult struct {
	// Records is every parsed record, globally sorted by timestamp.
	Records []model.UsageRecord

	DataDirs     []string
	TotalFiles   int
	ParsedFiles  int
	CacheHits    int
	SkippedLines int
	ProjectCount int
}

// ProgressFunc is called during loading to report progress.
// current is the number of files processed so far, total is the total count.
type ProgressFunc func(current, total int)

// Options configures Load.
type Options struct {
	// DataDirs are explicit Claude data directories (flags).
	DataDirs []string
	// ConfiguredDirs come from the config file and lose to CLAUDE_CONFIG_DIR.
	ConfiguredDirs []string

	// Cache is optional. Unchanged files are served from it.
	Cache *store.Cache

	Progress ProgressFunc
	Logger   *slog.Logger
}

// Load discovers and parses all session files and returns their records
// merged into one timestamp-ordered list. Any unreadable file fails the load.
func Load(ctx context.Context, opts Options) (*LoadResult, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	dirs, err := source.ResolveDirs(opts.DataDirs, opts.ConfiguredDirs)
	if err != nil {
		return nil, err
	}
	logger.Debug("resolved data dirs", "dirs", dirs)

	files, err := source.ScanDirs(dirs)
	if err != nil {
		return nil, fmt.Errorf("scanning: %w", err)
	}

	result := &LoadResult{
		DataDirs:     dirs,
		TotalFiles:   len(files),
		ProjectCount: source.CountProjects(files),
	}
	if len(files) == 0 {
		return result, nil
	}

	perFile := make([][]model.UsageRecord, len(files))
	toParse := make([]int, 0, len(files))
	var done atomic.Int64

	var cached *cacheState
	if opts.Cache != nil {
		cached = loadCached(opts.Cache, files, perFile, logger)
		toParse = append(toParse, cached.misses...)
		result.CacheHits = len(files) - len(cached.misses)
		result.SkippedLines = cached.skipped
		done.Store(int64(result.CacheHits))
		if opts.Progress != nil && result.CacheHits > 0 {
			opts.Progress(result.CacheHits, len(files))
		}
	} else {
		for i := range files {
			toParse = append(toParse, i)
		}
	}

	parsed, err := parseFiles(ctx, files, toParse, &done, opts.Progress, logger)
	if err != nil {
		return nil, err
	}

	for _, idx := range toParse {
		pr := parsed[idx]
		perFile[idx] = pr.Records
		result.SkippedLines += pr.SkippedLines()
	}
	result.ParsedFiles = len(toParse)

	if cached != nil {
		cached.save(opts.Cache, files, parsed, logger)
	}

	// Concatenate in file order, then sort globally.
	total := 0
	for _, recs := range perFile {
		total += len(recs)
	}
	result.Records = make([]model.UsageRecord, 0, total)
	for _, recs := range perFile {
		result.Records = append(result.Records, recs...)
	}
	sortRecords(result.Records)

	logger.Debug("load complete",
		"files", result.TotalFiles,
		"parsed", result.ParsedFiles,
		"cache_hits", result.CacheHits,
		"records", len(result.Records),
		"skipped_lines", result.SkippedLines)

	return result, nil
}

// parseFiles parses files[idx] for each idx with a bounded worker pool.
// Results are indexed like files; entries not in indices stay empty.
func parseFiles(
	ctx context.Context,
	files []source.DiscoveredFile,
	indices []int,
	done *atomic.Int64,
	progressFn ProgressFunc,
	logger *slog.Logger,
) ([]source.ParseResult, error) {
	results := make([]source.ParseResult, len(files))
	if len(indices) == 0 {
		return results, nil
	}

	numWorkers := runtime.GOMAXPROCS(0)
	if numWorkers < 1 {
		numWorkers = 4
	}
	if numWorkers > len(indices) {
		numWorkers = len(indices)
	}

	work := make(chan int, len(indices))
	for _, idx := range indices {
		work <- idx
	}
	close(work)

	var wg sync.WaitGroup
	wg.Add(numWorkers)
	for w := 0; w < numWorkers; w++ {
		go func() {
			defer wg.Done()
			for idx := range work {
				if ctx.Err() != nil {
					return
				}
				results[idx] = source.ParseFile(files[idx], logger)
				n := done.Add(1)
				if progressFn != nil {
					progressFn(int(n), len(files))
				}
			}
		}()
	}
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	for _, idx := range indices {
		if err := results[idx].Err; err != nil {
			return nil, err
		}
	}
	return results, nil
}

package batch

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/gnana997/tsstruct/pkg/extractor"
	"github.com/gnana997/tsstruct/pkg/resolver"
	"github.com/gnana997/tsstruct/pkg/source"
	"github.com/gnana997/tsstruct/pkg/util"
)

// Scanner extracts files independently, one resolution session per file,
// on a Runner.
type Scanner struct {
	extractor *extractor.Extractor
	store     source.Store
	cache     *ResultCache
	workers   int
	logger    *slog.Logger
}

// NewScanner creates a scanner. cache may be nil; workers 0 selects the
// parser pool size.
func NewScanner(ex *extractor.Extractor, store source.Store, cache *ResultCache, workers int, logger *slog.Logger) *Scanner {
	return &Scanner{
		extractor: ex,
		store:     store,
		cache:     cache,
		workers:   workers,
		logger:    util.OrDefault(logger),
	}
}

// ExtractFile extracts path and the modules it imports in a fresh session.
// It is safe for concurrent use.
func (s *Scanner) ExtractFile(path string) (*Result, error) {
	content, err := s.store.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	if s.cache != nil {
		if module, ok := s.cache.Get(path, content); ok {
			return &Result{Path: path, Module: module, Cached: true}, nil
		}
	}

	session := resolver.NewSession(s.extractor, s.store, s.logger)
	module, err := session.ResolveSource(path, content)
	if err != nil {
		return nil, fmt.Errorf("extraction failed: %w", err)
	}

	if s.cache != nil {
		s.cache.Put(path, content, module)
	}
	return &Result{Path: path, Module: module}, nil
}

// Forget drops any cached result for path.
func (s *Scanner) Forget(path string) {
	if s.cache != nil {
		s.cache.Remove(path)
	}
	if inv, ok := s.store.(interface{ Invalidate(string) }); ok {
		inv.Invalidate(path)
	}
}

// Scan extracts files in parallel. Results come back in the order of
// files; failures are reported in the stats and do not stop the scan.
// Cancelling ctx stops the scan and returns what was extracted so far
// along with ctx.Err().
func (s *Scanner) Scan(ctx context.Context, files []string, progress ProgressCallback) ([]*Result, *ScanStats, error) {
	stats := &ScanStats{
		FilesDiscovered: len(files),
		StartTime:       time.Now(),
		Errors:          []FileError{},
	}
	results := make([]*Result, 0, len(files))

	runner := NewRunner(ctx, s.workers, s.ExtractFile, s.logger)
	stats.WorkerCount = runner.Stats().NumWorkers
	runner.Start()
	defer runner.Stop()

	// submit from a separate goroutine so that a full queue never blocks
	// the collector below
	go func() {
		defer runner.FinishSubmitting()
		for i, file := range files {
			if err := runner.Submit(Job{Path: file, JobID: i}); err != nil {
				return
			}
		}
	}()

	var scanErr error
collect:
	for done := 0; done < len(files); done++ {
		if ctx.Err() != nil {
			stats.Cancelled = true
			scanErr = ctx.Err()
			break
		}
		var current string
		select {
		case <-ctx.Done():
			stats.Cancelled = true
			scanErr = ctx.Err()
			break collect

		case result := <-runner.Results():
			current = result.Path
			results = append(results, result)
			stats.FilesExtracted++
			if result.Cached {
				stats.CacheHits++
			}
			stats.Classes += len(result.Module.Classes)
			stats.Functions += len(result.Module.Functions)
			stats.Enums += len(result.Module.Enums)
			stats.Aliases += len(result.Module.Aliases)

		case fileErr := <-runner.Errors():
			current = fileErr.FilePath
			stats.Errors = append(stats.Errors, fileErr)
			stats.FilesFailed++
			s.logger.Warn("file extraction failed", "path", fileErr.FilePath, "error", fileErr.Error)
		}
		if progress != nil {
			progress(done+1, len(files), current)
		}
	}

	sort.Slice(results, func(i, j int) bool { return results[i].JobID < results[j].JobID })
	sort.Slice(stats.Errors, func(i, j int) bool { return stats.Errors[i].FilePath < stats.Errors[j].FilePath })

	stats.EndTime = time.Now()
	stats.TotalTimeMs = stats.EndTime.Sub(stats.StartTime).Milliseconds()
	if secs := stats.EndTime.Sub(stats.StartTime).Seconds(); secs > 0 {
		stats.FilesPerSecond = float64(stats.FilesExtracted) / secs
	}

	s.logger.Info("scan complete",
		"files", len(files),
		"extracted", stats.FilesExtracted,
		"failed", stats.FilesFailed,
		"cache_hits", stats.CacheHits,
		"duration_ms", stats.TotalTimeMs)
	return results, stats, scanErr
}

// Package batch extracts many files at once: discovery, a parallel worker
// pool, a content-validated result cache and a debounced file watcher.
package batch

import (
	"time"

	"github.com/gnana997/tsstruct/pkg/model"
)

// ScanOptions configures file discovery.
type ScanOptions struct {
	// Include patterns (doublestar syntax, relative to the root). Empty
	// means every TypeScript source.
	Include []string

	// Exclude patterns. Matching directories are not descended into.
	Exclude []string
}

// DefaultScanOptions returns the usual TypeScript project layout.
func DefaultScanOptions() ScanOptions {
	return ScanOptions{
		Include: []string{"**/*.ts", "**/*.tsx"},
		Exclude: []string{
			"node_modules/**",
			".git/**",
			"dist/**",
			"build/**",
			"coverage/**",
			"**/*.d.ts",
		},
	}
}

// Result is the module extracted for one file.
type Result struct {
	Path   string
	Module *model.Module
	JobID  int
	// Cached is set when the module came from the result cache.
	Cached bool
}

// FileError is a per-file failure.
type FileError struct {
	FilePath string
	Error    error
}

// ProgressCallback is called after each file completes.
type ProgressCallback func(done, total int, currentFile string)

// ScanStats summarizes a scan.
type ScanStats struct {
	FilesDiscovered int
	FilesExtracted  int
	FilesFailed     int
	CacheHits       int

	Classes   int
	Functions int
	Enums     int
	Aliases   int

	WorkerCount int
	Cancelled   bool

	TotalTimeMs    int64
	FilesPerSecond float64

	Errors []FileError

	StartTime time.Time
	EndTime   time.Time
}

// WatchOptions configures the file watcher.
type WatchOptions struct {
	// Debounce groups rapid changes to one file into a single event.
	// Default: 200ms
	Debounce time.Duration

	// Include and Exclude filter watched files like ScanOptions does.
	Include []string
	Exclude []string
}

// DefaultWatchOptions returns recommended watch options.
func DefaultWatchOptions() WatchOptions {
	scan := DefaultScanOptions()
	return WatchOptions{
		Debounce: 200 * time.Millisecond,
		Include:  scan.Include,
		Exclude:  append(scan.Exclude, "**/*.swp", "**/*.tmp", "**/*~"),
	}
}

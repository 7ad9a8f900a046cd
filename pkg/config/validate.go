package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

var (
	// ErrInvalidLogLevel indicates an unknown log level.
	ErrInvalidLogLevel = errors.New("invalid log level")

	// ErrInvalidLogFormat indicates an unknown log format.
	ErrInvalidLogFormat = errors.New("invalid log format")

	// ErrInvalidExtension indicates an import extension without a leading dot.
	ErrInvalidExtension = errors.New("invalid extension")

	// ErrInvalidPattern indicates a malformed include or exclude pattern.
	ErrInvalidPattern = errors.New("invalid pattern")

	// ErrInvalidLimit indicates a negative size or count.
	ErrInvalidLimit = errors.New("invalid limit")
)

// Validate checks every section and reports all problems at once.
func Validate(cfg *Config) error {
	var errs []error

	switch strings.ToLower(cfg.Log.Level) {
	case "debug", "info", "warn", "warning", "error":
	default:
		errs = append(errs, fmt.Errorf("%w: %q", ErrInvalidLogLevel, cfg.Log.Level))
	}
	switch strings.ToLower(cfg.Log.Format) {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("%w: must be 'text' or 'json', got %q", ErrInvalidLogFormat, cfg.Log.Format))
	}

	if !strings.HasPrefix(cfg.Resolve.Extension, ".") {
		errs = append(errs, fmt.Errorf("%w: %q must start with a dot", ErrInvalidExtension, cfg.Resolve.Extension))
	}

	for _, p := range append(append([]string{}, cfg.Scan.Include...), cfg.Scan.Exclude...) {
		if !doublestar.ValidatePattern(p) {
			errs = append(errs, fmt.Errorf("%w: %q", ErrInvalidPattern, p))
		}
	}

	limits := []struct {
		key   string
		value int64
	}{
		{"scan.workers", int64(cfg.Scan.Workers)},
		{"cache.max_entries", int64(cfg.Cache.MaxEntries)},
		{"cache.max_files", int64(cfg.Cache.MaxFiles)},
		{"cache.max_memory_mb", int64(cfg.Cache.MaxMemoryMB)},
		{"watch.debounce", int64(cfg.Watch.Debounce)},
	}
	for _, l := range limits {
		if l.value < 0 {
			errs = append(errs, fmt.Errorf("%w: %s must not be negative", ErrInvalidLimit, l.key))
		}
	}

	return errors.Join(errs...)
}

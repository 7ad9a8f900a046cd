// Package config loads tsstruct settings from defaults, .tsstruct/config.yaml
// and TSSTRUCT_* environment variables.
package config

import (
	"time"

	"github.com/gnana997/tsstruct/pkg/batch"
	"github.com/gnana997/tsstruct/pkg/extractor"
	"github.com/gnana997/tsstruct/pkg/source"
)

// Dir is the per-project configuration directory.
const Dir = ".tsstruct"

// Config is the complete tsstruct configuration.
type Config struct {
	Log     LogConfig     `yaml:"log" mapstructure:"log"`
	Resolve ResolveConfig `yaml:"resolve" mapstructure:"resolve"`
	Scan    ScanConfig    `yaml:"scan" mapstructure:"scan"`
	Cache   CacheConfig   `yaml:"cache" mapstructure:"cache"`
	Watch   WatchConfig   `yaml:"watch" mapstructure:"watch"`
	MCP     MCPConfig     `yaml:"mcp" mapstructure:"mcp"`
}

// LogConfig configures the slog handler.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`   // debug, info, warn or error
	Format string `yaml:"format" mapstructure:"format"` // text or json
}

// ResolveConfig configures extraction and import resolution.
type ResolveConfig struct {
	// BaseDir anchors relative paths; empty means the working directory.
	BaseDir               string `yaml:"base_dir" mapstructure:"base_dir"`
	Extension             string `yaml:"extension" mapstructure:"extension"`
	ApplyPendingOverrides bool   `yaml:"apply_pending_overrides" mapstructure:"apply_pending_overrides"`
}

// ScanConfig selects files for scan and watch.
type ScanConfig struct {
	Include []string `yaml:"include" mapstructure:"include"`
	Exclude []string `yaml:"exclude" mapstructure:"exclude"`
	Workers int      `yaml:"workers" mapstructure:"workers"` // 0 = parser pool size
}

// CacheConfig sizes the result cache and the file store.
type CacheConfig struct {
	MaxEntries  int `yaml:"max_entries" mapstructure:"max_entries"`
	MaxFiles    int `yaml:"max_files" mapstructure:"max_files"`
	MaxMemoryMB int `yaml:"max_memory_mb" mapstructure:"max_memory_mb"`
}

// WatchConfig configures the file watcher.
type WatchConfig struct {
	Debounce time.Duration `yaml:"debounce" mapstructure:"debounce"`
}

// MCPConfig configures the MCP server.
type MCPConfig struct {
	// CallLog is a JSONL file receiving one record per tool call; empty
	// disables call logging.
	CallLog string `yaml:"call_log" mapstructure:"call_log"`
}

// Default returns the built-in configuration.
func Default() *Config {
	scan := batch.DefaultScanOptions()
	store := source.DefaultFSStoreConfig()
	return &Config{
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Resolve: ResolveConfig{
			Extension: extractor.DefaultExtension,
		},
		Scan: ScanConfig{
			Include: scan.Include,
			Exclude: scan.Exclude,
		},
		Cache: CacheConfig{
			MaxEntries:  batch.DefaultCacheEntries,
			MaxFiles:    store.MaxFiles,
			MaxMemoryMB: store.MaxMemoryMB,
		},
		Watch: WatchConfig{
			Debounce: batch.DefaultWatchOptions().Debounce,
		},
	}
}

// ExtractorOptions maps the resolve section onto extractor options.
func (c *Config) ExtractorOptions() extractor.Options {
	return extractor.Options{
		Extension:             c.Resolve.Extension,
		BaseDir:               c.Resolve.BaseDir,
		ApplyPendingOverrides: c.Resolve.ApplyPendingOverrides,
	}
}

// ScanOptions maps the scan section onto batch options.
func (c *Config) ScanOptions() batch.ScanOptions {
	return batch.ScanOptions{Include: c.Scan.Include, Exclude: c.Scan.Exclude}
}

// WatchOptions maps the scan and watch sections onto watcher options.
func (c *Config) WatchOptions() batch.WatchOptions {
	opts := batch.DefaultWatchOptions()
	opts.Debounce = c.Watch.Debounce
	opts.Include = c.Scan.Include
	opts.Exclude = append(append([]string{}, c.Scan.Exclude...), "**/*.swp", "**/*.tmp", "**/*~")
	return opts
}

// StoreConfig maps the cache section onto the file store limits.
func (c *Config) StoreConfig() source.FSStoreConfig {
	return source.FSStoreConfig{
		MaxFiles:    c.Cache.MaxFiles,
		MaxMemoryMB: c.Cache.MaxMemoryMB,
	}
}

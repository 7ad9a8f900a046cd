package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// EnvPrefix prefixes environment overrides, e.g. TSSTRUCT_LOG_LEVEL.
const EnvPrefix = "TSSTRUCT"

// Load reads the configuration for the project rooted at rootDir.
// Priority, highest first: environment variables, .tsstruct/config.yaml,
// defaults. A missing config file is not an error.
func Load(rootDir string) (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(filepath.Join(rootDir, Dir))

	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if cfg.Resolve.BaseDir == "" {
		cfg.Resolve.BaseDir = rootDir
	}

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// LoadFromWorkingDir loads the configuration of the current directory.
func LoadFromWorkingDir() (*Config, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("failed to get working directory: %w", err)
	}
	return Load(wd)
}

// setDefaults registers every key so that AutomaticEnv can override it.
func setDefaults(v *viper.Viper) {
	d := Default()

	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.format", d.Log.Format)

	v.SetDefault("resolve.base_dir", d.Resolve.BaseDir)
	v.SetDefault("resolve.extension", d.Resolve.Extension)
	v.SetDefault("resolve.apply_pending_overrides", d.Resolve.ApplyPendingOverrides)

	v.SetDefault("scan.include", d.Scan.Include)
	v.SetDefault("scan.exclude", d.Scan.Exclude)
	v.SetDefault("scan.workers", d.Scan.Workers)

	v.SetDefault("cache.max_entries", d.Cache.MaxEntries)
	v.SetDefault("cache.max_files", d.Cache.MaxFiles)
	v.SetDefault("cache.max_memory_mb", d.Cache.MaxMemoryMB)

	v.SetDefault("watch.debounce", d.Watch.Debounce)

	v.SetDefault("mcp.call_log", d.MCP.CallLog)
}

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, root, content string) {
	t.Helper()
	path := DefaultPath(root)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestLoad_Defaults(t *testing.T) {
	root := t.TempDir()

	cfg, err := Load(root)
	require.NoError(t, err)

	d := Default()
	assert.Equal(t, d.Log, cfg.Log)
	assert.Equal(t, ".ts", cfg.Resolve.Extension)
	assert.Equal(t, root, cfg.Resolve.BaseDir)
	assert.False(t, cfg.Resolve.ApplyPendingOverrides)
	assert.Equal(t, d.Scan.Include, cfg.Scan.Include)
	assert.Equal(t, d.Cache, cfg.Cache)
	assert.Equal(t, 200*time.Millisecond, cfg.Watch.Debounce)
	assert.Empty(t, cfg.MCP.CallLog)
}

func TestLoad_File(t *testing.T) {
	root := t.TempDir()
	writeConfig(t, root, `
log:
  level: debug
  format: json
resolve:
  base_dir: /work
  apply_pending_overrides: true
scan:
  include: ["src/**/*.ts"]
  workers: 3
watch:
  debounce: 1s
mcp:
  call_log: calls.jsonl
`)

	cfg, err := Load(root)
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, "/work", cfg.Resolve.BaseDir)
	assert.True(t, cfg.Resolve.ApplyPendingOverrides)
	assert.Equal(t, ".ts", cfg.Resolve.Extension, "unset keys keep their defaults")
	assert.Equal(t, []string{"src/**/*.ts"}, cfg.Scan.Include)
	assert.Equal(t, 3, cfg.Scan.Workers)
	assert.Equal(t, time.Second, cfg.Watch.Debounce)
	assert.Equal(t, "calls.jsonl", cfg.MCP.CallLog)

	opts := cfg.ExtractorOptions()
	assert.Equal(t, "/work", opts.BaseDir)
	assert.True(t, opts.ApplyPendingOverrides)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	root := t.TempDir()
	writeConfig(t, root, "log:\n  level: debug\n")
	t.Setenv("TSSTRUCT_LOG_LEVEL", "warn")
	t.Setenv("TSSTRUCT_RESOLVE_EXTENSION", ".tsx")
	t.Setenv("TSSTRUCT_CACHE_MAX_ENTRIES", "42")

	cfg, err := Load(root)
	require.NoError(t, err)
	assert.Equal(t, "warn", cfg.Log.Level)
	assert.Equal(t, ".tsx", cfg.Resolve.Extension)
	assert.Equal(t, 42, cfg.Cache.MaxEntries)
}

func TestLoad_Invalid(t *testing.T) {
	root := t.TempDir()
	writeConfig(t, root, `
log:
  level: loud
resolve:
  extension: ts
scan:
  exclude: ["[a-"]
  workers: -1
`)

	_, err := Load(root)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidLogLevel)
	assert.ErrorIs(t, err, ErrInvalidExtension)
	assert.ErrorIs(t, err, ErrInvalidPattern)
	assert.ErrorIs(t, err, ErrInvalidLimit)
	assert.NotErrorIs(t, err, ErrInvalidLogFormat)
}

func TestLoad_MalformedFile(t *testing.T) {
	root := t.TempDir()
	writeConfig(t, root, "log: [unterminated\n")

	_, err := Load(root)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read config file")
}

func TestValidate_Default(t *testing.T) {
	assert.NoError(t, Validate(Default()))
}

func TestWriteDefault(t *testing.T) {
	root := t.TempDir()
	path := DefaultPath(root)

	require.NoError(t, WriteDefault(path, false))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	text := string(data)
	assert.Contains(t, text, "# tsstruct configuration.")
	assert.Contains(t, text, "# doublestar patterns relative to the scanned directory")
	assert.Contains(t, text, "debounce: 200ms")

	// the written file loads back to the defaults
	cfg, err := Load(root)
	require.NoError(t, err)
	assert.Equal(t, Default().Scan, cfg.Scan)
	assert.Equal(t, Default().Watch, cfg.Watch)

	err = WriteDefault(path, false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")
	assert.NoError(t, WriteDefault(path, true))
}

func TestConfig_BatchOptions(t *testing.T) {
	cfg := Default()
	cfg.Scan.Exclude = []string{"vendor/**"}

	watch := cfg.WatchOptions()
	assert.Equal(t, cfg.Watch.Debounce, watch.Debounce)
	assert.Contains(t, watch.Exclude, "vendor/**")
	assert.Contains(t, watch.Exclude, "**/*.swp")
	assert.Equal(t, []string{"vendor/**"}, cfg.Scan.Exclude, "scan excludes are not modified")

	store := cfg.StoreConfig()
	assert.Equal(t, cfg.Cache.MaxFiles, store.MaxFiles)
}

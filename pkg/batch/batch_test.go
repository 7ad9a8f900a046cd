package batch

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gnana997/tsstruct/pkg/extractor"
	"github.com/gnana997/tsstruct/pkg/model"
	"github.com/gnana997/tsstruct/pkg/parser"
	"github.com/gnana997/tsstruct/pkg/parser/queries"
	"github.com/gnana997/tsstruct/pkg/source"
)

func discard() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }

func newExtractor(t *testing.T) *extractor.Extractor {
	t.Helper()
	pm := parser.NewParserManager(discard())
	qm := queries.NewQueryManager(pm, discard())
	t.Cleanup(func() {
		qm.Close()
		pm.Close()
	})
	return extractor.NewExtractor(pm, qm, extractor.Options{}, discard())
}

// writeTree creates files under a temporary root and returns the root.
func writeTree(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for rel, content := range files {
		path := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
	return root
}

func TestDiscover(t *testing.T) {
	root := writeTree(t, map[string]string{
		"a.ts":                  "",
		"src/b.ts":              "",
		"src/c.tsx":             "",
		"src/types.d.ts":        "",
		"src/readme.md":         "",
		"node_modules/lib/x.ts": "",
		"src/nested/deep/d.ts":  "",
		"dist/out.ts":           "",
		"src/script.js":         "",
	})

	files, err := Discover(root, DefaultScanOptions(), discard())
	require.NoError(t, err)

	var rel []string
	for _, f := range files {
		r, err := filepath.Rel(root, f)
		require.NoError(t, err)
		rel = append(rel, filepath.ToSlash(r))
	}
	assert.Equal(t, []string{"a.ts", "src/b.ts", "src/c.tsx", "src/nested/deep/d.ts"}, rel)
}

func TestDiscover_DefaultIncludes(t *testing.T) {
	root := writeTree(t, map[string]string{
		"a.ts":  "",
		"b.mts": "",
		"c.js":  "",
	})

	files, err := Discover(root, ScanOptions{}, discard())
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(root, "a.ts"), filepath.Join(root, "b.mts")}, files)
}

func TestDiscover_InvalidPattern(t *testing.T) {
	_, err := Discover(t.TempDir(), ScanOptions{Include: []string{"[a-"}}, discard())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid include pattern")
}

func TestDiscover_MissingRoot(t *testing.T) {
	_, err := Discover(filepath.Join(t.TempDir(), "missing"), DefaultScanOptions(), discard())
	assert.Error(t, err)
}

func TestResultCache(t *testing.T) {
	cache, err := NewResultCache(2, discard())
	require.NoError(t, err)

	m := model.NewModule("/a.ts")
	cache.Put("/a.ts", []byte("v1"), m)

	got, ok := cache.Get("/a.ts", []byte("v1"))
	require.True(t, ok)
	assert.Same(t, m, got)

	_, ok = cache.Get("/a.ts", []byte("v2"))
	assert.False(t, ok, "changed content must miss")

	cache.Put("/b.ts", []byte("b"), model.NewModule("/b.ts"))
	cache.Put("/c.ts", []byte("c"), model.NewModule("/c.ts"))
	_, ok = cache.Get("/a.ts", []byte("v1"))
	assert.False(t, ok, "least recently used entry is evicted")

	cache.Remove("/b.ts")
	_, ok = cache.Get("/b.ts", []byte("b"))
	assert.False(t, ok)

	stats := cache.Stats()
	assert.Equal(t, 1, stats.Entries)
	assert.Equal(t, int64(1), stats.Hits)
	assert.Equal(t, int64(3), stats.Misses)
	assert.Equal(t, int64(2), stats.Evictions)
}

func TestRunner(t *testing.T) {
	extract := func(path string) (*Result, error) {
		if filepath.Ext(path) != ".ts" {
			return nil, errors.New("not typescript")
		}
		return &Result{Path: path, Module: model.NewModule(path)}, nil
	}

	r := NewRunner(context.Background(), 2, extract, discard())
	r.Start()
	defer r.Stop()

	paths := []string{"a.ts", "b.js", "c.ts"}
	go func() {
		defer r.FinishSubmitting()
		for i, p := range paths {
			assert.NoError(t, r.Submit(Job{Path: p, JobID: i}))
		}
	}()

	var ok, failed []string
	for range paths {
		select {
		case res := <-r.Results():
			ok = append(ok, res.Path)
			assert.Equal(t, res.Path, paths[res.JobID])
		case fe := <-r.Errors():
			failed = append(failed, fe.FilePath)
		}
	}
	assert.ElementsMatch(t, []string{"a.ts", "c.ts"}, ok)
	assert.Equal(t, []string{"b.js"}, failed)

	stats := r.Stats()
	assert.Equal(t, 2, stats.NumWorkers)
	assert.Equal(t, int64(3), stats.JobsSubmitted)
	assert.Equal(t, int64(2), stats.JobsProcessed)
	assert.Equal(t, int64(1), stats.JobsFailed)
}

func TestRunner_SubmitAfterStop(t *testing.T) {
	r := NewRunner(context.Background(), 1, func(string) (*Result, error) { return &Result{}, nil }, discard())
	r.Start()
	r.Stop()
	r.Stop()
	assert.ErrorIs(t, r.Submit(Job{Path: "a.ts"}), ErrRunnerStopped)
}

var project = map[string]string{
	"src/base.ts": `
export class Base {
	id: string;
}
`,
	"src/main.ts": `
import Base = require('./base');
export class Main extends Base.Base {}
export function run() {}
`,
	"src/broken.ts": `
import Gone = require('./gone');
`,
	"src/enum.ts": `
enum Color { Red, Green }
type Name = string;
`,
}

func TestScanner_Scan(t *testing.T) {
	root := writeTree(t, project)
	files, err := Discover(root, DefaultScanOptions(), discard())
	require.NoError(t, err)
	require.Len(t, files, 4)

	store := source.NewFSStore(source.DefaultFSStoreConfig())
	t.Cleanup(func() { _ = store.Close() })
	cache, err := NewResultCache(10, discard())
	require.NoError(t, err)

	s := NewScanner(newExtractor(t), store, cache, 2, discard())

	var mu sync.Mutex
	var progress []int
	results, stats, err := s.Scan(context.Background(), files, func(done, total int, _ string) {
		mu.Lock()
		defer mu.Unlock()
		progress = append(progress, done)
		assert.Equal(t, 4, total)
	})
	require.NoError(t, err)

	require.Len(t, results, 3)
	for i := 1; i < len(results); i++ {
		assert.Less(t, results[i-1].JobID, results[i].JobID)
	}
	assert.Equal(t, []int{1, 2, 3, 4}, progress)

	assert.Equal(t, 4, stats.FilesDiscovered)
	assert.Equal(t, 3, stats.FilesExtracted)
	assert.Equal(t, 1, stats.FilesFailed)
	assert.Equal(t, 2, stats.Classes)
	assert.Equal(t, 1, stats.Functions)
	assert.Equal(t, 1, stats.Enums)
	assert.Equal(t, 1, stats.Aliases)
	assert.Equal(t, 2, stats.WorkerCount)
	require.Len(t, stats.Errors, 1)
	assert.Equal(t, filepath.Join(root, "src", "broken.ts"), stats.Errors[0].FilePath)
	assert.ErrorIs(t, stats.Errors[0].Error, extractor.ErrImportPathNotFound)

	for _, r := range results {
		if filepath.Base(r.Path) == "main.ts" {
			require.NotNil(t, r.Module.Import("Base"))
			assert.Equal(t, filepath.Join(root, "src", "base.ts"), r.Module.Import("Base").Name)
		}
	}

	// second scan is served from the cache
	_, stats, err = s.Scan(context.Background(), files, nil)
	require.NoError(t, err)
	assert.Equal(t, 3, stats.CacheHits)
}

func TestScanner_CacheRevalidatesContent(t *testing.T) {
	root := writeTree(t, map[string]string{"a.ts": "class A {}"})
	path := filepath.Join(root, "a.ts")

	store := source.NewFSStore(source.DefaultFSStoreConfig())
	t.Cleanup(func() { _ = store.Close() })
	cache, err := NewResultCache(10, discard())
	require.NoError(t, err)
	s := NewScanner(newExtractor(t), store, cache, 1, discard())

	first, err := s.ExtractFile(path)
	require.NoError(t, err)
	assert.False(t, first.Cached)

	again, err := s.ExtractFile(path)
	require.NoError(t, err)
	assert.True(t, again.Cached)
	assert.Same(t, first.Module, again.Module)

	require.NoError(t, os.WriteFile(path, []byte("class A {}\nclass B {}"), 0o644))
	s.Forget(path)

	changed, err := s.ExtractFile(path)
	require.NoError(t, err)
	assert.False(t, changed.Cached)
	assert.Len(t, changed.Module.Classes, 2)
}

func TestScanner_Cancelled(t *testing.T) {
	root := writeTree(t, project)
	files, err := Discover(root, DefaultScanOptions(), discard())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	s := NewScanner(newExtractor(t), source.NewMemStore(nil), nil, 1, discard())
	results, stats, err := s.Scan(ctx, files, nil)
	assert.ErrorIs(t, err, context.Canceled)
	assert.True(t, stats.Cancelled)
	assert.Empty(t, results)
}

func TestWatcher(t *testing.T) {
	root := writeTree(t, map[string]string{
		"src/a.ts":              "class A {}",
		"node_modules/lib/x.ts": "",
	})

	type event struct {
		path    string
		removed bool
	}
	events := make(chan event, 16)
	opts := DefaultWatchOptions()
	opts.Debounce = 100 * time.Millisecond

	w, err := NewWatcher(opts, func(path string, removed bool) {
		events <- event{path, removed}
	}, discard())
	require.NoError(t, err)
	require.NoError(t, w.Start(root))
	t.Cleanup(func() { _ = w.Stop() })

	path := filepath.Join(root, "src", "a.ts")
	for i := 0; i < 3; i++ {
		require.NoError(t, os.WriteFile(path, []byte("class A { x: number; }"), 0o644))
	}
	// ignored files
	require.NoError(t, os.WriteFile(filepath.Join(root, "src", "notes.md"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "node_modules", "lib", "x.ts"), []byte("x"), 0o644))

	select {
	case ev := <-events:
		assert.Equal(t, path, ev.path)
		assert.False(t, ev.removed)
	case <-time.After(5 * time.Second):
		t.Fatal("no change event")
	}

	select {
	case ev := <-events:
		t.Fatalf("writes were not debounced: %+v", ev)
	case <-time.After(200 * time.Millisecond):
	}

	require.NoError(t, os.Remove(path))
	select {
	case ev := <-events:
		assert.Equal(t, path, ev.path)
		assert.True(t, ev.removed)
	case <-time.After(5 * time.Second):
		t.Fatal("no remove event")
	}

	require.NoError(t, w.Stop())
	assert.Equal(t, 0, w.Pending())
	assert.ErrorIs(t, w.Start(root), ErrWatcherStopped)
}

func TestNewWatcher_InvalidPattern(t *testing.T) {
	_, err := NewWatcher(WatchOptions{Exclude: []string{"[a-"}}, func(string, bool) {}, discard())
	assert.Error(t, err)
}

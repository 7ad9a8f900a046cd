package batch

import (
	"crypto/sha256"
	"fmt"
	"log/slog"
	"sync/atomic"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/gnana997/tsstruct/pkg/model"
	"github.com/gnana997/tsstruct/pkg/util"
)

// DefaultCacheEntries is the result cache size used when none is configured.
const DefaultCacheEntries = 1000

type cachedResult struct {
	hash   [sha256.Size]byte
	module *model.Module
}

// ResultCache keeps extracted modules keyed by path. An entry is only
// returned while the file content still hashes to the value it was
// extracted from.
//
// Entries do not track the files a module imports; callers remove an
// entry when any file it depends on changes.
type ResultCache struct {
	cache  *lru.Cache[string, *cachedResult]
	logger *slog.Logger

	hits      atomic.Int64
	misses    atomic.Int64
	evictions atomic.Int64
}

// CacheStats reports cache effectiveness.
type CacheStats struct {
	Entries   int
	Hits      int64
	Misses    int64
	// Evictions counts entries dropped for capacity or by Remove.
	Evictions int64
}

// NewResultCache creates a cache holding at most maxEntries modules.
func NewResultCache(maxEntries int, logger *slog.Logger) (*ResultCache, error) {
	if maxEntries <= 0 {
		maxEntries = DefaultCacheEntries
	}
	rc := &ResultCache{logger: util.OrDefault(logger)}
	cache, err := lru.NewWithEvict(maxEntries, func(path string, _ *cachedResult) {
		rc.evictions.Add(1)
		rc.logger.Debug("evicting cached module", "path", path)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create result cache: %w", err)
	}
	rc.cache = cache
	return rc, nil
}

// Get returns the module cached for path if it was extracted from content.
func (rc *ResultCache) Get(path string, content []byte) (*model.Module, bool) {
	entry, ok := rc.cache.Get(path)
	if !ok || entry.hash != sha256.Sum256(content) {
		rc.misses.Add(1)
		return nil, false
	}
	rc.hits.Add(1)
	return entry.module, true
}

// Put caches module as the extraction of content at path.
func (rc *ResultCache) Put(path string, content []byte, module *model.Module) {
	rc.cache.Add(path, &cachedResult{hash: sha256.Sum256(content), module: module})
}

// Remove drops the entry for path.
func (rc *ResultCache) Remove(path string) {
	rc.cache.Remove(path)
}

// Purge drops every entry.
func (rc *ResultCache) Purge() {
	rc.cache.Purge()
}

// Stats returns a snapshot of the cache counters.
func (rc *ResultCache) Stats() CacheStats {
	return CacheStats{
		Entries:   rc.cache.Len(),
		Hits:      rc.hits.Load(),
		Misses:    rc.misses.Load(),
		Evictions: rc.evictions.Load(),
	}
}

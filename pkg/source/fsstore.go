package source

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"sync/atomic"

	"github.com/edsrzf/mmap-go"

	"github.com/gnana997/tsstruct/pkg/util"
)

// FSStoreConfig bounds the file mappings an FSStore keeps open.
type FSStoreConfig struct {
	// MaxFiles is the number of files kept mapped. 0 means unlimited.
	MaxFiles int

	// MaxMemoryMB caps the total size of mapped files. This is address
	// space, not resident memory. 0 means unlimited.
	MaxMemoryMB int

	Logger *slog.Logger
}

// DefaultFSStoreConfig returns limits suited to typical source trees.
func DefaultFSStoreConfig() FSStoreConfig {
	return FSStoreConfig{
		MaxFiles:    10000,
		MaxMemoryMB: 2048,
	}
}

// FSStoreStats reports cache behaviour.
type FSStoreStats struct {
	Hits         int64
	Misses       int64
	MmapFailures int64
	// Uncached counts reads served without caching because a limit was reached.
	Uncached    int64
	FilesMapped int
	MappedBytes int64
}

// mapping is one cached file: an mmap region, or plain bytes when mapping
// failed or the file is empty.
type mapping struct {
	data mmap.MMap
	file *os.File
	heap []byte
}

func (m *mapping) bytes() []byte {
	if m.data != nil {
		return m.data
	}
	return m.heap
}

func (m *mapping) release() error {
	var errs []error
	if m.data != nil {
		errs = append(errs, m.data.Unmap())
	}
	if m.file != nil {
		errs = append(errs, m.file.Close())
	}
	return errors.Join(errs...)
}

// FSStore reads files from disk through memory mappings that are kept until
// Invalidate or Close. ReadFile returns copies, so callers never observe a
// mapping being released.
type FSStore struct {
	config FSStoreConfig
	logger *slog.Logger

	mu       sync.RWMutex
	files    map[string]*mapping
	size     int64
	hits     atomic.Int64
	misses   atomic.Int64
	failures atomic.Int64
	uncached atomic.Int64
}

// NewFSStore creates a disk-backed store.
func NewFSStore(config FSStoreConfig) *FSStore {
	return &FSStore{
		config: config,
		logger: util.OrDefault(config.Logger),
		files:  make(map[string]*mapping),
	}
}

// Exists reports whether path is an existing regular file.
func (s *FSStore) Exists(path string) bool {
	s.mu.RLock()
	_, ok := s.files[path]
	s.mu.RUnlock()
	if ok {
		return true
	}
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

// ReadFile returns the content of path, mapping it on first access.
func (s *FSStore) ReadFile(path string) ([]byte, error) {
	// Fast path: already mapped
	s.mu.RLock()
	if m, ok := s.files[path]; ok {
		data := clone(m.bytes())
		s.mu.RUnlock()
		s.hits.Add(1)
		return data, nil
	}
	s.mu.RUnlock()

	s.mu.Lock()
	defer s.mu.Unlock()

	// Double-check: another goroutine may have mapped it meanwhile
	if m, ok := s.files[path]; ok {
		s.hits.Add(1)
		return clone(m.bytes()), nil
	}
	s.misses.Add(1)

	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat %s: %w", path, err)
	}
	if !s.fitsLocked(info.Size()) {
		s.uncached.Add(1)
		s.logger.Debug("file cache full, reading without caching", "path", path)
		return os.ReadFile(path)
	}

	m, err := s.load(path)
	if err != nil {
		return nil, err
	}
	s.files[path] = m
	s.size += int64(len(m.bytes()))
	return clone(m.bytes()), nil
}

func (s *FSStore) fitsLocked(size int64) bool {
	if s.config.MaxFiles > 0 && len(s.files) >= s.config.MaxFiles {
		return false
	}
	if s.config.MaxMemoryMB > 0 && s.size+size > int64(s.config.MaxMemoryMB)*1024*1024 {
		return false
	}
	return true
}

// load maps path read-only, falling back to reading it into memory.
func (s *FSStore) load(path string) (*mapping, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	info, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("failed to stat %s: %w", path, err)
	}

	// zero-length files cannot be mapped
	if info.Size() == 0 {
		file.Close()
		return &mapping{heap: []byte{}}, nil
	}

	data, err := mmap.Map(file, mmap.RDONLY, 0)
	if err != nil {
		s.failures.Add(1)
		s.logger.Warn("mmap failed, using fallback",
			"path", path,
			"size", info.Size(),
			"error", err)
		file.Close()

		heap, readErr := os.ReadFile(path)
		if readErr != nil {
			return nil, fmt.Errorf("mmap failed and fallback failed for %s: mmap error: %v, read error: %w",
				path, err, readErr)
		}
		return &mapping{heap: heap}, nil
	}
	return &mapping{data: data, file: file}, nil
}

// Invalidate drops the mapping of path so the next read sees the file's
// current content.
func (s *FSStore) Invalidate(path string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, ok := s.files[path]
	if !ok {
		return
	}
	delete(s.files, path)
	s.size -= int64(len(m.bytes()))
	if err := m.release(); err != nil {
		s.logger.Warn("failed to release mapping", "path", path, "error", err)
	}
}

// Stats returns a snapshot of the cache counters.
func (s *FSStore) Stats() FSStoreStats {
	s.mu.RLock()
	files, size := len(s.files), s.size
	s.mu.RUnlock()

	return FSStoreStats{
		Hits:         s.hits.Load(),
		Misses:       s.misses.Load(),
		MmapFailures: s.failures.Load(),
		Uncached:     s.uncached.Load(),
		FilesMapped:  files,
		MappedBytes:  size,
	}
}

// Close releases every mapping. The store remains usable and maps files
// again on demand.
func (s *FSStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var errs []error
	for path, m := range s.files {
		if err := m.release(); err != nil {
			errs = append(errs, fmt.Errorf("release %s: %w", path, err))
		}
	}
	s.files = make(map[string]*mapping)
	s.size = 0

	s.logger.Debug("file store closed",
		"hits", s.hits.Load(),
		"misses", s.misses.Load(),
		"mmap_failures", s.failures.Load())
	return errors.Join(errs...)
}

func clone(b []byte) []byte {
	return append([]byte{}, b...)
}

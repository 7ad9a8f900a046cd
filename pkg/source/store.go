// Package source supplies file contents to the extractor.
package source

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"sync"
)

// Store reads source files and answers existence checks.
type Store interface {
	ReadFile(path string) ([]byte, error)
	Exists(path string) bool
}

// MemStore is an in-memory Store, keyed by cleaned path.
type MemStore struct {
	mu    sync.RWMutex
	files map[string][]byte
}

// NewMemStore creates a store holding files.
func NewMemStore(files map[string]string) *MemStore {
	s := &MemStore{files: make(map[string][]byte, len(files))}
	for path, content := range files {
		s.Put(path, content)
	}
	return s
}

// Put adds or replaces a file.
func (s *MemStore) Put(path, content string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.files[filepath.Clean(path)] = []byte(content)
}

// ReadFile returns a copy of the file's content.
func (s *MemStore) ReadFile(path string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, ok := s.files[filepath.Clean(path)]
	if !ok {
		return nil, fmt.Errorf("read %s: %w", path, fs.ErrNotExist)
	}
	return append([]byte(nil), data...), nil
}

// Exists reports whether path was added.
func (s *MemStore) Exists(path string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.files[filepath.Clean(path)]
	return ok
}

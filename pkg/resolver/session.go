// Package resolver resolves a module and its old-style imports into a
// shared module graph.
package resolver

import (
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/gnana997/tsstruct/pkg/extractor"
	"github.com/gnana997/tsstruct/pkg/model"
	"github.com/gnana997/tsstruct/pkg/source"
	"github.com/gnana997/tsstruct/pkg/util"
)

// State is the resolution state of a cached module.
type State int

const (
	// InProgress modules are registered but still being populated. Import
	// cycles observe them in this state.
	InProgress State = iota
	// Complete modules are fully populated and never change again.
	Complete
)

func (s State) String() string {
	if s == Complete {
		return "complete"
	}
	return "in-progress"
}

type entry struct {
	module *model.Module
	state  State
}

// Session owns a module cache and the stack of modules being resolved. It
// is not safe for concurrent use; independent sessions are isolated from
// each other and may run in parallel.
type Session struct {
	extractor *extractor.Extractor
	store     source.Store
	logger    *slog.Logger

	cache    map[string]*entry
	inFlight []string
}

// NewSession creates a session reading sources from store.
func NewSession(ex *extractor.Extractor, store source.Store, logger *slog.Logger) *Session {
	return &Session{
		extractor: ex,
		store:     store,
		logger:    util.OrDefault(logger),
		cache:     make(map[string]*entry),
	}
}

// Resolve returns the module extracted from path, extracting it and its
// old-style imports first if needed. A relative path is taken relative to
// the extractor's base directory.
//
// A failed extraction is not cached and no partial module is returned.
func (s *Session) Resolve(path string) (*model.Module, error) {
	key := s.key(path)
	if e, ok := s.cache[key]; ok {
		if e.state == InProgress {
			s.logger.Debug("import cycle", "path", key, "stack", s.inFlight)
		}
		return e.module, nil
	}

	src, err := s.store.ReadFile(key)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", key, err)
	}
	return s.resolveSource(key, src)
}

// ResolveSource extracts src as the content of path without reading it from
// the store. Imports are still read from the store.
func (s *Session) ResolveSource(path string, src []byte) (*model.Module, error) {
	key := s.key(path)
	if e, ok := s.cache[key]; ok {
		return e.module, nil
	}
	return s.resolveSource(key, src)
}

func (s *Session) resolveSource(key string, src []byte) (*model.Module, error) {
	module := model.NewModule(key)
	e := &entry{module: module, state: InProgress}

	// registered before population so that cycles terminate
	s.cache[key] = e
	s.inFlight = append(s.inFlight, key)
	err := s.extractor.Extract(module, src, (*importResolver)(s))
	s.inFlight = s.inFlight[:len(s.inFlight)-1]

	if err != nil {
		delete(s.cache, key)
		return nil, err
	}
	e.state = Complete
	return module, nil
}

// State reports the cache state of path.
func (s *Session) State(path string) (State, bool) {
	e, ok := s.cache[s.key(path)]
	if !ok {
		return 0, false
	}
	return e.state, true
}

// Modules returns the number of cached modules.
func (s *Session) Modules() int { return len(s.cache) }

// InFlight returns the paths currently being resolved, outermost first.
func (s *Session) InFlight() []string {
	return append([]string(nil), s.inFlight...)
}

func (s *Session) key(path string) string {
	if !filepath.IsAbs(path) {
		if base := s.extractor.Options().BaseDir; base != "" {
			path = filepath.Join(base, path)
		}
	}
	return filepath.Clean(path)
}

// importResolver is the view of a Session handed to the extractor.
type importResolver Session

func (r *importResolver) Exists(path string) bool {
	s := (*Session)(r)
	if _, ok := s.cache[filepath.Clean(path)]; ok {
		return true
	}
	return s.store.Exists(path)
}

func (r *importResolver) Resolve(path string) (*model.Module, error) {
	return (*Session)(r).Resolve(path)
}

// IsNotFound reports whether err was caused by a missing import target.
func IsNotFound(err error) bool {
	return errors.Is(err, extractor.ErrImportPathNotFound)
}

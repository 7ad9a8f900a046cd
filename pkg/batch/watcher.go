package batch

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/gnana997/tsstruct/pkg/util"
)

// ErrWatcherStopped is returned by Start after Stop.
var ErrWatcherStopped = errors.New("watcher already stopped")

// WatchHandler receives debounced file changes. removed is set when the
// file was deleted or renamed away.
type WatchHandler func(path string, removed bool)

// Watcher watches a directory tree and reports changed source files.
//
// Writes and creates are debounced per path; removals are reported
// immediately and cancel a pending change for the same path.
//
//	w, err := NewWatcher(DefaultWatchOptions(), handler, logger)
//	if err != nil {
//	    return err
//	}
//	defer w.Stop()
//	err = w.Start("/path/to/project")
type Watcher struct {
	watcher *fsnotify.Watcher
	handler WatchHandler
	options WatchOptions
	logger  *slog.Logger
	root    string

	debounceTimers map[string]*time.Timer
	debounceMu     sync.Mutex

	stopChan chan struct{}
	stopped  bool
	mu       sync.Mutex
}

// NewWatcher creates a watcher delivering events to handler.
func NewWatcher(options WatchOptions, handler WatchHandler, logger *slog.Logger) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}
	if options.Debounce <= 0 {
		options.Debounce = 200 * time.Millisecond
	}
	if err := validatePatterns(options.Include, options.Exclude); err != nil {
		fsw.Close()
		return nil, err
	}
	return &Watcher{
		watcher:        fsw,
		handler:        handler,
		options:        options,
		logger:         util.OrDefault(logger),
		debounceTimers: make(map[string]*time.Timer),
		stopChan:       make(chan struct{}),
	}, nil
}

// Start watches root and every directory below it that is not excluded,
// then processes events in the background.
func (w *Watcher) Start(root string) error {
	w.mu.Lock()
	if w.stopped {
		w.mu.Unlock()
		return ErrWatcherStopped
	}
	w.root = root
	w.mu.Unlock()

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == root {
				return err
			}
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && w.excluded(path) {
			return filepath.SkipDir
		}
		if err := w.watcher.Add(path); err != nil {
			w.logger.Warn("failed to watch directory", "path", path, "error", err)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to watch %s: %w", root, err)
	}

	w.logger.Info("file watcher started", "root", root)
	go w.eventLoop()
	return nil
}

// Stop stops watching and cancels pending changes. Safe to call more
// than once.
func (w *Watcher) Stop() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.stopped {
		return nil
	}
	w.stopped = true
	close(w.stopChan)

	w.debounceMu.Lock()
	for _, timer := range w.debounceTimers {
		timer.Stop()
	}
	w.debounceTimers = make(map[string]*time.Timer)
	w.debounceMu.Unlock()

	err := w.watcher.Close()
	w.logger.Info("file watcher stopped")
	return err
}

// Pending returns the number of changes waiting out their debounce delay.
func (w *Watcher) Pending() int {
	w.debounceMu.Lock()
	defer w.debounceMu.Unlock()
	return len(w.debounceTimers)
}

func (w *Watcher) eventLoop() {
	for {
		select {
		case <-w.stopChan:
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleEvent(event)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Error("file watcher error", "error", err)
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	path := event.Name

	if event.Has(fsnotify.Create) && isDir(path) {
		if !w.excluded(path) {
			if err := w.watcher.Add(path); err != nil {
				w.logger.Warn("failed to watch directory", "path", path, "error", err)
			}
		}
		return
	}
	if !w.included(path) {
		return
	}

	w.logger.Debug("file event", "op", event.Op.String(), "path", path)
	switch {
	case event.Has(fsnotify.Write), event.Has(fsnotify.Create):
		w.debounce(path)
	case event.Has(fsnotify.Remove), event.Has(fsnotify.Rename):
		w.cancel(path)
		w.handler(path, true)
	}
}

// debounce schedules a change; a later event for the same path restarts
// the delay.
func (w *Watcher) debounce(path string) {
	w.debounceMu.Lock()
	defer w.debounceMu.Unlock()

	if timer, ok := w.debounceTimers[path]; ok {
		timer.Stop()
	}
	var timer *time.Timer
	timer = time.AfterFunc(w.options.Debounce, func() {
		w.debounceMu.Lock()
		current := w.debounceTimers[path] == timer
		if current {
			delete(w.debounceTimers, path)
		}
		w.debounceMu.Unlock()
		if current {
			w.handler(path, false)
		}
	})
	w.debounceTimers[path] = timer
}

func (w *Watcher) cancel(path string) {
	w.debounceMu.Lock()
	defer w.debounceMu.Unlock()
	if timer, ok := w.debounceTimers[path]; ok {
		timer.Stop()
		delete(w.debounceTimers, path)
	}
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

func (w *Watcher) rel(path string) string {
	rel, err := filepath.Rel(w.root, path)
	if err != nil {
		return filepath.ToSlash(path)
	}
	return filepath.ToSlash(rel)
}

func (w *Watcher) excluded(path string) bool {
	return matchAny(w.options.Exclude, w.rel(path))
}

func (w *Watcher) included(path string) bool {
	if w.excluded(path) {
		return false
	}
	include := w.options.Include
	if len(include) == 0 {
		include = DefaultScanOptions().Include
	}
	return matchAny(include, w.rel(path))
}

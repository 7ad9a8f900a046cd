// Package parser turns TypeScript and JavaScript source into tree-sitter
// syntax trees through pooled, grammar-specific parsers.
package parser

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"unsafe"

	ts "github.com/tree-sitter/go-tree-sitter"
	ts_javascript "github.com/tree-sitter/tree-sitter-javascript/bindings/go"
	ts_typescript "github.com/tree-sitter/tree-sitter-typescript/bindings/go"
)

// ErrUnsupportedLanguage is returned for paths and languages without a grammar.
var ErrUnsupportedLanguage = errors.New("unsupported language")

// poolKey identifies a grammar: TSX is a separate grammar from TypeScript.
type poolKey struct {
	lang  Language
	isTSX bool
}

func (k poolKey) String() string {
	if k.isTSX {
		return "tsx"
	}
	return k.lang.String()
}

// ParserManager owns one parser pool per grammar and is safe for concurrent use.
//
// Callers own the returned trees and must Close them. The manager itself must
// be closed once all parsing is done.
//
//	manager := parser.NewParserManager(logger)
//	defer manager.Close()
//
//	tree, err := manager.ParseFile(src, "models/hero.ts")
//	if err != nil {
//	    return err
//	}
//	defer tree.Close()
type ParserManager struct {
	pools    map[poolKey]*parserPool
	mutex    sync.RWMutex
	poolSize int
	logger   *slog.Logger

	parsesCalled atomic.Int64
	treesInError atomic.Int64
}

// NewParserManager creates a manager with CPU-sized pools.
func NewParserManager(logger *slog.Logger) *ParserManager {
	return NewParserManagerWithPoolSize(logger, 0)
}

// NewParserManagerWithPoolSize creates a manager whose pools hold at most
// poolSize parsers each. Zero selects the CPU-based default.
func NewParserManagerWithPoolSize(logger *slog.Logger, poolSize int) *ParserManager {
	if logger == nil {
		logger = slog.Default()
	}
	return &ParserManager{
		pools:    make(map[poolKey]*parserPool),
		poolSize: getPoolSize(poolSize),
		logger:   logger,
	}
}

// Parse parses source with the grammar for lang. isTSX only applies to
// TypeScript.
//
// Syntax errors do not fail the parse: tree-sitter recovers and the partial
// tree is still returned, with a warning logged.
func (pm *ParserManager) Parse(source []byte, lang Language, isTSX bool) (*ts.Tree, error) {
	if lang == LanguageUnknown {
		return nil, ErrUnsupportedLanguage
	}
	pm.parsesCalled.Add(1)

	pool, err := pm.getOrCreatePool(poolKey{lang: lang, isTSX: isTSX && lang == LanguageTypeScript})
	if err != nil {
		return nil, err
	}

	p, err := pool.acquire()
	if err != nil {
		return nil, fmt.Errorf("failed to acquire parser: %w", err)
	}
	tree := p.Parse(source, nil)
	pool.release(p)

	if tree == nil {
		return nil, fmt.Errorf("parser returned nil tree")
	}
	if tree.RootNode().HasError() {
		pm.treesInError.Add(1)
		pm.logger.Warn("parse tree contains errors", "language", lang.String())
	}
	return tree, nil
}

// ParseFile parses source with the grammar selected by filePath's extension.
func (pm *ParserManager) ParseFile(source []byte, filePath string) (*ts.Tree, error) {
	lang := DetectLanguage(filePath)
	if lang == LanguageUnknown {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedLanguage, filePath)
	}
	return pm.Parse(source, lang, IsTSXFile(filePath))
}

// Close releases every pooled parser. The manager must not be used afterwards.
func (pm *ParserManager) Close() error {
	pm.mutex.Lock()
	defer pm.mutex.Unlock()

	closed := 0
	for _, pool := range pm.pools {
		closed += pool.close()
	}
	pm.pools = make(map[poolKey]*parserPool)

	pm.logger.Debug("closed parser manager",
		"parsers_closed", closed,
		"parses_called", pm.parsesCalled.Load())
	return nil
}

func (pm *ParserManager) getOrCreatePool(key poolKey) (*parserPool, error) {
	pm.mutex.RLock()
	pool, ok := pm.pools[key]
	pm.mutex.RUnlock()
	if ok {
		return pool, nil
	}

	pm.mutex.Lock()
	defer pm.mutex.Unlock()
	if pool, ok = pm.pools[key]; ok {
		return pool, nil
	}

	language, err := pm.Language(key.lang, key.isTSX)
	if err != nil {
		return nil, err
	}
	pool = newParserPool(key, language, pm.poolSize, pm.logger)
	pm.pools[key] = pool
	return pool, nil
}

// Language returns the tree-sitter grammar for lang. Query compilation uses
// it so that compiled queries match the trees produced here.
func (pm *ParserManager) Language(lang Language, isTSX bool) (*ts.Language, error) {
	ptr, err := languagePointer(lang, isTSX)
	if err != nil {
		return nil, err
	}
	return ts.NewLanguage(ptr), nil
}

func languagePointer(lang Language, isTSX bool) (unsafe.Pointer, error) {
	switch lang {
	case LanguageTypeScript:
		if isTSX {
			return ts_typescript.LanguageTSX(), nil
		}
		return ts_typescript.LanguageTypescript(), nil
	case LanguageJavaScript:
		return ts_javascript.Language(), nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedLanguage, lang)
	}
}

// ParserStats contains parser usage statistics.
type ParserStats struct {
	ParsersCreated int
	ParsesCalled   int64
	TreesInError   int64
}

// GetStats returns parser usage statistics.
func (pm *ParserManager) GetStats() ParserStats {
	pm.mutex.RLock()
	defer pm.mutex.RUnlock()

	created := 0
	for _, pool := range pm.pools {
		created += pool.createdCount()
	}
	return ParserStats{
		ParsersCreated: created,
		ParsesCalled:   pm.parsesCalled.Load(),
		TreesInError:   pm.treesInError.Load(),
	}
}

package extractor

import (
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/gnana997/tsstruct/pkg/model"
	"github.com/gnana997/tsstruct/pkg/parser"
	"github.com/gnana997/tsstruct/pkg/parser/queries"
)

func discard() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }

// setupExtractor creates an extractor for testing
func setupExtractor(t *testing.T, opts Options) *Extractor {
	t.Helper()
	pm := parser.NewParserManager(discard())
	qm := queries.NewQueryManager(pm, discard())
	t.Cleanup(func() {
		qm.Close()
		pm.Close()
	})
	return NewExtractor(pm, qm, opts, discard())
}

// mapResolver serves modules from in-memory sources and caches them like a
// resolution session does.
type mapResolver struct {
	t       *testing.T
	e       *Extractor
	sources map[string]string
	cache   map[string]*model.Module
}

func newMapResolver(t *testing.T, e *Extractor, sources map[string]string) *mapResolver {
	return &mapResolver{t: t, e: e, sources: sources, cache: map[string]*model.Module{}}
}

func (r *mapResolver) Exists(path string) bool {
	_, ok := r.sources[path]
	return ok
}

func (r *mapResolver) Resolve(path string) (*model.Module, error) {
	if m, ok := r.cache[path]; ok {
		return m, nil
	}
	m := model.NewModule(path)
	r.cache[path] = m
	if err := r.e.Extract(m, []byte(r.sources[path]), r); err != nil {
		return nil, err
	}
	return m, nil
}

// extract runs the extractor on a single in-memory file.
func extract(t *testing.T, src string) *model.Module {
	t.Helper()
	return extractWith(t, Options{}, src)
}

func extractWith(t *testing.T, opts Options, src string) *model.Module {
	t.Helper()
	e := setupExtractor(t, opts)
	m := model.NewModule("/src/main.ts")
	require.NoError(t, e.Extract(m, []byte(src), nil))
	return m
}

func class(t *testing.T, m *model.Module, name string) *model.Class {
	t.Helper()
	for _, c := range m.Classes {
		if c.Name == name {
			return c
		}
	}
	t.Fatalf("class %s not found", name)
	return nil
}

func function(t *testing.T, m *model.Module, name string) *model.Function {
	t.Helper()
	for _, f := range m.Functions {
		if f.Name == name {
			return f
		}
	}
	t.Fatalf("function %s not found", name)
	return nil
}

func basic(t *testing.T, typ model.Type) *model.BasicType {
	t.Helper()
	b, ok := typ.(*model.BasicType)
	require.True(t, ok, "expected *model.BasicType, got %T", typ)
	return b
}

func annotationNames(anns []*model.Annotation) []string {
	names := make([]string, len(anns))
	for i, a := range anns {
		names[i] = a.Name
	}
	return names
}

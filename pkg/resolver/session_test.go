package resolver

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gnana997/tsstruct/pkg/extractor"
	"github.com/gnana997/tsstruct/pkg/parser"
	"github.com/gnana997/tsstruct/pkg/parser/queries"
	"github.com/gnana997/tsstruct/pkg/source"
)

func discard() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }

func newExtractor(t *testing.T, opts extractor.Options) *extractor.Extractor {
	t.Helper()
	pm := parser.NewParserManager(discard())
	qm := queries.NewQueryManager(pm, discard())
	t.Cleanup(func() {
		qm.Close()
		pm.Close()
	})
	return extractor.NewExtractor(pm, qm, opts, discard())
}

func newSession(t *testing.T, files map[string]string) *Session {
	t.Helper()
	return NewSession(newExtractor(t, extractor.Options{}), source.NewMemStore(files), discard())
}

var project = map[string]string{
	"/p/main.ts": `
import Base = require('./base');
import RamlWrapper = require('./wrapper');
import { helper } from './util';

export class Main extends Base.Entity {
	/** the id */
	id: string;
}
`,
	"/p/base.ts": `
import Common = require('./lib/common');

export class Entity {
	$name = [Common.Required()];
}
`,
	"/p/lib/common.ts": `
export function Required() {}
`,
}

func TestSession_Resolve(t *testing.T) {
	s := newSession(t, project)

	m, err := s.Resolve("/p/main.ts")
	require.NoError(t, err)

	assert.Equal(t, "/p/main.ts", m.Name)
	assert.Equal(t, []string{"Base"}, m.ImportNames())

	base := m.Import("Base")
	require.NotNil(t, base)
	assert.Equal(t, "/p/base.ts", base.Name)
	require.NotNil(t, base.Import("Common"))
	assert.Equal(t, "/p/lib/common.ts", base.Import("Common").Name)
	require.Len(t, base.Import("Common").Functions, 1)

	require.Len(t, m.RawImports, 1)
	assert.Equal(t, 3, s.Modules())

	for _, path := range []string{"/p/main.ts", "/p/base.ts", "/p/lib/common.ts"} {
		state, ok := s.State(path)
		require.True(t, ok, path)
		assert.Equal(t, Complete, state, path)
	}
	assert.Empty(t, s.InFlight())
}

func TestSession_ResolveIsCached(t *testing.T) {
	s := newSession(t, project)

	first, err := s.Resolve("/p/main.ts")
	require.NoError(t, err)
	second, err := s.Resolve("/p/../p/main.ts")
	require.NoError(t, err)
	assert.Same(t, first, second)

	base, err := s.Resolve("/p/base.ts")
	require.NoError(t, err)
	assert.Same(t, first.Import("Base"), base)
}

func TestSession_Idempotent(t *testing.T) {
	a, err := newSession(t, project).Resolve("/p/main.ts")
	require.NoError(t, err)
	b, err := newSession(t, project).Resolve("/p/main.ts")
	require.NoError(t, err)

	ja, err := json.Marshal(a)
	require.NoError(t, err)
	jb, err := json.Marshal(b)
	require.NoError(t, err)
	assert.JSONEq(t, string(ja), string(jb))
}

func TestSession_Cycle(t *testing.T) {
	s := newSession(t, map[string]string{
		"/c/a.ts": `
import B = require('./b');
export class A {}
`,
		"/c/b.ts": `
import A = require('./a');
export class B {}
`,
	})

	a, err := s.Resolve("/c/a.ts")
	require.NoError(t, err)

	b := a.Import("B")
	require.NotNil(t, b)
	assert.Same(t, a, b.Import("A"))

	// b saw a while a was still being populated; a finished afterwards
	require.Len(t, a.Classes, 1)
	require.Len(t, b.Classes, 1)

	state, ok := s.State("/c/a.ts")
	require.True(t, ok)
	assert.Equal(t, Complete, state)

	out, err := json.Marshal(a)
	require.NoError(t, err)
	assert.Contains(t, string(out), `"A":{"name":"/c/a.ts"}`)
}

func TestSession_MissingImport(t *testing.T) {
	s := newSession(t, map[string]string{
		"/m/main.ts": `export class X {}
import Gone = require('./gone');
`,
	})

	m, err := s.Resolve("/m/main.ts")
	require.Error(t, err)
	assert.Nil(t, m)
	assert.True(t, IsNotFound(err))

	var xerr *extractor.ExtractError
	require.ErrorAs(t, err, &xerr)
	assert.Equal(t, "/m/main.ts", xerr.Path)
	assert.Equal(t, 2, xerr.Line)

	_, cached := s.State("/m/main.ts")
	assert.False(t, cached)
	assert.Equal(t, 0, s.Modules())
	assert.Empty(t, s.InFlight())
}

func TestSession_NestedFailureDropsPartialModules(t *testing.T) {
	s := newSession(t, map[string]string{
		"/n/main.ts": `import Mid = require('./mid');`,
		"/n/mid.ts":  `import Gone = require('./gone');`,
	})

	_, err := s.Resolve("/n/main.ts")
	require.Error(t, err)
	assert.True(t, IsNotFound(err))
	assert.Contains(t, err.Error(), "failed to resolve import Mid from /n/main.ts")
	assert.Equal(t, 0, s.Modules())
}

func TestSession_MissingFile(t *testing.T) {
	s := newSession(t, nil)

	_, err := s.Resolve("/nowhere.ts")
	require.Error(t, err)
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestSession_ResolveSource(t *testing.T) {
	s := newSession(t, project)

	m, err := s.ResolveSource("/p/inline.ts", []byte(`
import Base = require('./base');
class Inline {}
`))
	require.NoError(t, err)
	require.Len(t, m.Classes, 1)
	require.NotNil(t, m.Import("Base"))
	assert.Equal(t, "/p/base.ts", m.Import("Base").Name)
}

func TestSession_RelativePathsUseBaseDir(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "src"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "src", "a.ts"), []byte(`
import B = require('./b');
export class A {}
`), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "src", "b.ts"), []byte(`export class B {}`), 0o644))

	store := source.NewFSStore(source.DefaultFSStoreConfig())
	t.Cleanup(func() { _ = store.Close() })

	s := NewSession(newExtractor(t, extractor.Options{BaseDir: dir}), store, discard())
	m, err := s.Resolve(filepath.Join("src", "a.ts"))
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dir, "src", "a.ts"), m.Name)
	require.NotNil(t, m.Import("B"))
	assert.Equal(t, filepath.Join(dir, "src", "b.ts"), m.Import("B").Name)
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "in-progress", InProgress.String())
	assert.Equal(t, "complete", Complete.String())
}

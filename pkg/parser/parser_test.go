package parser

import (
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

const sampleTS = `
@Entity('hero')
export class Hero extends Base<string> implements Named {
  name: string = 'x';
  get id(): number { return 1; }
}
`

func TestParseTypeScript(t *testing.T) {
	manager := NewParserManager(testLogger())
	defer manager.Close()

	tree, err := manager.Parse([]byte(sampleTS), LanguageTypeScript, false)
	require.NoError(t, err)
	defer tree.Close()

	root := tree.RootNode()
	assert.Equal(t, "program", root.Kind())
	assert.False(t, root.HasError())
	assert.Contains(t, root.ToSexp(), "class_heritage")
}

func TestParseTSX(t *testing.T) {
	manager := NewParserManager(testLogger())
	defer manager.Close()

	tree, err := manager.ParseFile([]byte(`const el = <div>Hello</div>;`), "view.tsx")
	require.NoError(t, err)
	defer tree.Close()

	assert.Contains(t, tree.RootNode().ToSexp(), "jsx_element")
}

func TestParseJavaScript(t *testing.T) {
	manager := NewParserManager(testLogger())
	defer manager.Close()

	tree, err := manager.ParseFile([]byte(`class A { x = 1; }`), "a.js")
	require.NoError(t, err)
	defer tree.Close()

	assert.Contains(t, tree.RootNode().ToSexp(), "field_definition")
}

func TestParseFile_Unsupported(t *testing.T) {
	manager := NewParserManager(testLogger())
	defer manager.Close()

	_, err := manager.ParseFile([]byte("x"), "notes.md")
	require.ErrorIs(t, err, ErrUnsupportedLanguage)

	_, err = manager.Parse([]byte("x"), LanguageUnknown, false)
	require.ErrorIs(t, err, ErrUnsupportedLanguage)
}

func TestParse_SyntaxErrorsStillReturnTree(t *testing.T) {
	manager := NewParserManager(testLogger())
	defer manager.Close()

	tree, err := manager.Parse([]byte(`class { ;;; `), LanguageTypeScript, false)
	require.NoError(t, err)
	defer tree.Close()

	assert.True(t, tree.RootNode().HasError())
	assert.Equal(t, int64(1), manager.GetStats().TreesInError)
}

func TestDetectLanguage(t *testing.T) {
	tests := []struct {
		path string
		want Language
		tsx  bool
	}{
		{"a.ts", LanguageTypeScript, false},
		{"a.d.ts", LanguageTypeScript, false},
		{"A.TSX", LanguageTypeScript, true},
		{"a.mts", LanguageTypeScript, false},
		{"a.js", LanguageJavaScript, false},
		{"a.cjs", LanguageJavaScript, false},
		{"a.go", LanguageUnknown, false},
		{"Makefile", LanguageUnknown, false},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, DetectLanguage(tt.path))
			assert.Equal(t, tt.tsx, IsTSXFile(tt.path))
		})
	}
}

func TestSourceGlobs(t *testing.T) {
	assert.Equal(t, []string{"**/*.ts", "**/*.mts", "**/*.cts", "**/*.tsx"}, SourceGlobs(LanguageTypeScript))
	assert.Len(t, SourceGlobs(LanguageTypeScript, LanguageJavaScript), 8)
}

func TestConcurrentParsing(t *testing.T) {
	manager := NewParserManagerWithPoolSize(testLogger(), 4)
	defer manager.Close()

	const workers = 50
	var wg sync.WaitGroup
	errs := make(chan error, workers)

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			tree, err := manager.Parse([]byte("const x: number = 1;"), LanguageTypeScript, false)
			if err != nil {
				errs <- err
				return
			}
			tree.Close()
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		require.NoError(t, err)
	}

	stats := manager.GetStats()
	assert.Equal(t, int64(workers), stats.ParsesCalled)
	assert.LessOrEqual(t, stats.ParsersCreated, 4)
}

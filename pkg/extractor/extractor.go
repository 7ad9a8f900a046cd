// Package extractor builds the structural model of one compilation unit.
//
// The extractor walks the syntax tree once in pre-order and dispatches on
// node kind: classes and interfaces, enums, type aliases, and functions
// (declared, or bound to a variable). Imports are collected first with a
// tree-sitter query so that old-style imports are resolved before any
// declaration of the importing module is built.
package extractor

import (
	"fmt"
	"log/slog"

	ts "github.com/tree-sitter/go-tree-sitter"

	"github.com/gnana997/tsstruct/pkg/ast"
	"github.com/gnana997/tsstruct/pkg/model"
	"github.com/gnana997/tsstruct/pkg/normalize"
	"github.com/gnana997/tsstruct/pkg/parser"
	"github.com/gnana997/tsstruct/pkg/parser/queries"
	"github.com/gnana997/tsstruct/pkg/util"
)

// DefaultExtension is appended to old-style import paths.
const DefaultExtension = ".ts"

// ImportResolver supplies the modules behind old-style imports.
type ImportResolver interface {
	// Exists reports whether a source file exists at path.
	Exists(path string) bool
	// Resolve returns the module extracted from path, extracting it first
	// if it is not cached yet.
	Resolve(path string) (*model.Module, error)
}

// Options tune extraction.
type Options struct {
	// Extension is appended to old-style import paths. Defaults to ".ts".
	Extension string

	// BaseDir is replaced by "." in the resolved paths of new-style imports.
	BaseDir string

	// ApplyPendingOverrides merges shadow annotations declared before their
	// target field into that field once it is declared. When false, they
	// stay in annotationOverridings.
	ApplyPendingOverrides bool
}

// Extractor turns parsed source into model.Module values. It is safe for
// concurrent use; all per-file state lives in the unit created for each
// call.
type Extractor struct {
	parserManager *parser.ParserManager
	queryManager  *queries.QueryManager
	normalizer    *normalize.Normalizer
	options       Options
	logger        *slog.Logger
}

// NewExtractor creates an extractor.
//
// The parserManager parses each file once; the queryManager runs the
// import query on the same tree.
func NewExtractor(pm *parser.ParserManager, qm *queries.QueryManager, opts Options, logger *slog.Logger) *Extractor {
	logger = util.OrDefault(logger)
	if opts.Extension == "" {
		opts.Extension = DefaultExtension
	}
	return &Extractor{
		parserManager: pm,
		queryManager:  qm,
		normalizer:    normalize.New(logger),
		options:       opts,
		logger:        logger,
	}
}

// Options returns the effective options.
func (e *Extractor) Options() Options { return e.options }

// Extract parses src and populates module, whose Name is the path src was
// read from. The caller registers module in its cache beforehand so that
// import cycles find it. A nil resolver fails every old-style import.
//
// On error the module may be partially populated and must be discarded.
func (e *Extractor) Extract(module *model.Module, src []byte, resolver ImportResolver) error {
	// 1. Pick the grammar; anything unrecognized is read as TypeScript
	lang := parser.DetectLanguage(module.Name)
	if lang == parser.LanguageUnknown {
		lang = parser.LanguageTypeScript
	}
	isTSX := parser.IsTSXFile(module.Name)

	// 2. Parse once
	tree, err := e.parserManager.Parse(src, lang, isTSX)
	if err != nil {
		return fmt.Errorf("failed to parse %s: %w", module.Name, err)
	}
	defer tree.Close()

	u := &unit{
		Extractor: e,
		module:    module,
		src:       src,
		resolver:  resolver,
	}

	// 3. Imports, recursing into old-style targets
	matches, err := e.queryManager.Execute(tree, lang, isTSX, queries.QueryTypeImports, src)
	if err != nil {
		return fmt.Errorf("failed to run import query on %s: %w", module.Name, err)
	}
	if err := u.imports(matches); err != nil {
		return err
	}

	// 4. Declarations
	if err := ast.Walk(tree.RootNode(), u.visit); err != nil {
		return err
	}

	e.logger.Debug("extracted module",
		"path", module.Name,
		"classes", len(module.Classes),
		"functions", len(module.Functions),
		"enums", len(module.Enums),
		"aliases", len(module.Aliases),
		"imports", module.Imports.Len())
	return nil
}

// unit holds the state of one Extract call.
type unit struct {
	*Extractor
	module   *model.Module
	src      []byte
	resolver ImportResolver
}

var (
	classDecl     = ast.ClassDecl()
	interfaceDecl = ast.InterfaceDecl()
	functionDecl  = ast.Kind("function_declaration", "function_signature", "generator_function_declaration")

	// const f = (a) => ..., var g = function () {}; destructuring is skipped.
	boundFunctionDecl = ast.VarDecl(
		ast.Kind("identifier"),
		ast.Kind("arrow_function", "function_expression", "function", "generator_function"),
		nil,
	)
)

func (u *unit) matches(m ast.Matcher, n *ts.Node) bool {
	_, ok := m.Match(n, u.src)
	return ok
}

func (u *unit) visit(n *ts.Node) error {
	switch kind := n.Kind(); {
	case kind == "import_statement":
		return ast.SkipChildren

	case u.matches(classDecl, n):
		if err := u.class(n, false); err != nil {
			return err
		}
		return ast.SkipChildren

	case u.matches(interfaceDecl, n):
		if err := u.class(n, true); err != nil {
			return err
		}
		return ast.SkipChildren

	case kind == "enum_declaration":
		u.enum(n)

	case kind == "type_alias_declaration":
		u.alias(n)

	case u.matches(functionDecl, n):
		u.declaredFunction(n)

	case u.matches(boundFunctionDecl, n):
		u.boundFunction(n)
	}
	return nil
}

func (u *unit) text(n *ts.Node) string { return ast.Text(n, u.src) }

func (u *unit) parseType(n *ts.Node) model.Type {
	return normalize.ParseType(n, u.src, u.module.Name)
}

func (u *unit) alias(n *ts.Node) {
	name := n.ChildByFieldName("name")
	if name == nil {
		return
	}
	u.module.Aliases = append(u.module.Aliases, &model.Alias{
		Name: u.text(name),
		Type: u.parseType(n.ChildByFieldName("value")),
	})
}

// anchor returns the outermost statement wrapping decl, climbing through
// export and declare wrappers. Doc comments and export decorators attach
// there.
func anchor(decl *ts.Node) *ts.Node {
	a := decl
	for p := a.Parent(); p != nil; p = p.Parent() {
		switch p.Kind() {
		case "export_statement", "ambient_declaration":
			a = p
			continue
		}
		break
	}
	return a
}

// namespaceOf returns the name of the namespace enclosing n, or nil.
func (u *unit) namespaceOf(n *ts.Node) *string {
	ns := ast.Ancestor(n, "internal_module", "module")
	if ns == nil {
		return nil
	}
	name := u.text(ns.ChildByFieldName("name"))
	if name == "" {
		return nil
	}
	name = ast.Unquote(name)
	return &name
}

package extractor

import (
	"fmt"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	ts "github.com/tree-sitter/go-tree-sitter"

	"github.com/gnana997/tsstruct/pkg/ast"
	"github.com/gnana997/tsstruct/pkg/model"
	"github.com/gnana997/tsstruct/pkg/parser/queries"
)

// skippedNamespace is never resolved when imported old-style.
const skippedNamespace = "RamlWrapper"

var slashRun = regexp.MustCompile(`[\\/]+`)

// imports processes import query matches in source order.
func (u *unit) imports(matches []queries.QueryMatch) error {
	sort.SliceStable(matches, func(i, j int) bool {
		return statementStart(matches[i]) < statementStart(matches[j])
	})

	for _, m := range matches {
		if ns := m.Capture("require.namespace"); ns != nil {
			if err := u.requireImport(ns.Text, captureNode(m.Capture("require.source")), captureNode(m.Capture("require.statement"))); err != nil {
				return err
			}
			continue
		}
		if ns := m.Capture("alias.namespace"); ns != nil {
			statement := captureNode(m.Capture("alias.statement"))
			if source := exportedRequireSource(m.Capture("alias.target"), statement); source != nil {
				if err := u.requireImport(ns.Text, source, statement); err != nil {
					return err
				}
			}
			continue
		}
		if source := m.Capture("import.source"); source != nil {
			u.module.RawImports = append(u.module.RawImports, u.namedImport(m.Capture("import.statement"), source))
		}
	}
	return nil
}

func statementStart(m queries.QueryMatch) uint32 {
	for _, name := range []string{"require.statement", "alias.statement", "import.statement"} {
		if c := m.Capture(name); c != nil {
			return c.Location.StartByte
		}
	}
	return 0
}

func captureNode(c *queries.QueryCapture) *ts.Node {
	if c == nil {
		return nil
	}
	return c.Node
}

// exportedRequireSource finds the path string of export import NS =
// require('./path'). The grammar ends the alias at "require" and parses
// ('./path') as the following expression statement. Plain aliases such as
// export import NS = Other.Name yield nil.
func exportedRequireSource(target *queries.QueryCapture, statement *ts.Node) *ts.Node {
	if target == nil || target.Text != "require" || statement == nil {
		return nil
	}
	next := statement.NextNamedSibling()
	if next == nil || next.Kind() != "expression_statement" {
		return nil
	}
	paren := next.NamedChild(0)
	if paren == nil || paren.Kind() != "parenthesized_expression" {
		return nil
	}
	str := paren.NamedChild(0)
	if str == nil || str.Kind() != "string" {
		return nil
	}
	return str
}

// requireImport resolves import NS = require('./path') into imports[NS].
func (u *unit) requireImport(namespace string, source, statement *ts.Node) error {
	if namespace == skippedNamespace || source == nil {
		return nil
	}
	importPath := ast.StringValue(source, u.src)
	absPath := filepath.Join(filepath.Dir(u.module.Name), importPath) + u.options.Extension

	offset := int(source.StartByte())
	if statement != nil {
		offset = int(statement.StartByte())
	}
	if u.resolver == nil || !u.resolver.Exists(absPath) {
		return u.locate(fmt.Errorf("%w: %q resolves to %s", ErrImportPathNotFound, importPath, absPath), offset)
	}

	mod, err := u.resolver.Resolve(absPath)
	if err != nil {
		return fmt.Errorf("failed to resolve import %s from %s: %w", namespace, u.module.Name, err)
	}
	u.module.Imports.Set(namespace, mod)
	return nil
}

// namedImport records an import ... from '...' statement without
// resolving it. Clauses are listed only for named imports and are cut from
// the import clause text between its first and last character.
func (u *unit) namedImport(statement, source *queries.QueryCapture) *model.Import {
	imp := &model.Import{
		Clauses:     []string{},
		AbsPathNode: []string{},
	}

	if statement != nil {
		clause := ast.ChildOfKind(statement.Node, "import_clause")
		if ast.ChildOfKind(clause, "named_imports") != nil {
			text := u.text(clause)
			for _, c := range strings.Split(text[1:len(text)-1], ",") {
				imp.Clauses = append(imp.Clauses, strings.TrimSpace(c))
			}
		}
	}

	importPath := ast.StringValue(source.Node, u.src)
	if strings.HasPrefix(importPath, ".") {
		resolved := filepath.Join(filepath.Dir(u.module.Name), importPath)
		if base := u.options.BaseDir; base != "" {
			resolved = strings.ReplaceAll(resolved, base, ".")
		}
		importPath = resolved
	} else {
		imp.IsNodeModule = true
	}
	imp.AbsPathNode = strings.Split(importPath, string(filepath.Separator))
	imp.AbsPathString = slashRun.ReplaceAllString(importPath, "/")
	return imp
}

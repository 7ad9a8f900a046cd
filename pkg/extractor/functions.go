package extractor

import (
	ts "github.com/tree-sitter/go-tree-sitter"

	"github.com/gnana997/tsstruct/pkg/ast"
	"github.com/gnana997/tsstruct/pkg/model"
)

// declaredFunction records function declarations, overload signatures and
// generators. Export and async come from the declaration itself.
func (u *unit) declaredFunction(n *ts.Node) {
	name := n.ChildByFieldName("name")
	if name == nil {
		return
	}
	u.module.Functions = append(u.module.Functions, &model.Function{
		Name:     u.text(name),
		Doc:      u.docComment(n),
		IsAsync:  ast.HasToken(n, "async"),
		IsArrow:  false,
		IsExport: isExported(n),
		Params:   u.functionParams(n),
	})
}

// boundFunction records an arrow function or function expression assigned
// to a variable, as accepted by boundFunctionDecl.
func (u *unit) boundFunction(decl *ts.Node) {
	value := decl.ChildByFieldName("value")
	name := decl.ChildByFieldName("name")

	// An arrow is not exportable itself; the variable statement is.
	statement := ast.Ancestor(decl, "lexical_declaration", "variable_declaration")
	doc := ""
	exported := false
	if statement != nil {
		doc = u.docComment(statement)
		exported = isExported(statement)
	}

	u.module.Functions = append(u.module.Functions, &model.Function{
		Name:     u.text(name),
		Doc:      doc,
		IsAsync:  ast.HasToken(value, "async"),
		IsArrow:  value.Kind() == "arrow_function",
		IsExport: exported,
		Params:   u.functionParams(value),
	})
}

// isExported reports whether n is wrapped in an export statement, possibly
// through a declare.
func isExported(n *ts.Node) bool {
	for p := n.Parent(); p != nil; p = p.Parent() {
		switch p.Kind() {
		case "export_statement":
			return true
		case "ambient_declaration":
			continue
		}
		return false
	}
	return false
}

// functionParams describes parameters by source text. The type is the
// annotation without its colon, or "any".
func (u *unit) functionParams(fn *ts.Node) []model.FunctionParam {
	params := []model.FunctionParam{}

	// x => x
	if single := fn.ChildByFieldName("parameter"); single != nil {
		return append(params, model.FunctionParam{Name: u.text(single), Type: "any", Mandatory: true})
	}

	for _, p := range ast.NamedChildren(fn.ChildByFieldName("parameters")) {
		if p.Kind() == "decorator" {
			continue
		}
		typ := "any"
		if annotation := p.ChildByFieldName("type"); annotation != nil {
			if t := firstNamed(annotation); t != nil {
				typ = u.text(t)
			}
		}
		params = append(params, model.FunctionParam{
			Name:      u.parameterName(p),
			Type:      typ,
			Mandatory: p.Kind() != "optional_parameter",
		})
	}
	return params
}

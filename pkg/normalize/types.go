// Package normalize converts type and expression syntax into the closed value
// and type representations of package model.
package normalize

import (
	"strings"

	ts "github.com/tree-sitter/go-tree-sitter"

	"github.com/gnana997/tsstruct/pkg/ast"
	"github.com/gnana997/tsstruct/pkg/model"
)

// keywordTypes are the predefined types modelled as BASIC. Other keywords
// (unknown, never, object, ...) degrade to mock.
var keywordTypes = map[string]bool{
	"string":  true,
	"number":  true,
	"boolean": true,
	"any":     true,
	"void":    true,
}

// ParseType resolves a type node. A type_annotation wrapper (": T") is
// unwrapped; a nil node resolves to nil. Named references are stamped with
// modulePath.
func ParseType(n *ts.Node, src []byte, modulePath string) model.Type {
	if n == nil {
		return nil
	}
	switch n.Kind() {
	case "type_annotation":
		return ParseType(firstNamed(n), src, modulePath)

	case "predefined_type":
		name := strings.TrimSpace(n.Utf8Text(src))
		if keywordTypes[name] {
			return model.NewBasicType(name, nil)
		}

	case "literal_type":
		if inner := firstNamed(n); inner != nil && inner.Kind() == "null" {
			return model.NewBasicType("null", nil)
		}

	case "type_identifier", "nested_type_identifier", "identifier":
		return model.NewBasicType(compact(n.Utf8Text(src)), &modulePath)

	case "generic_type":
		t := model.NewBasicType(compact(ast.Text(n.ChildByFieldName("name"), src)), &modulePath)
		t.TypeArguments = parseTypeArguments(n.ChildByFieldName("type_arguments"), src, modulePath)
		return t

	case "array_type":
		return model.NewArrayType(ParseType(firstNamed(n), src, modulePath))

	case "union_type":
		var options []model.Type
		for _, member := range flattenUnion(n) {
			options = append(options, ParseType(member, src, modulePath))
		}
		return model.NewUnionType(options)
	}
	return model.NewMockType()
}

// ParseHeritageType resolves one entry of an extends clause: an expression
// naming the base class plus optional type arguments.
func ParseHeritageType(expr, typeArgs *ts.Node, src []byte, modulePath string) model.Type {
	switch expr.Kind() {
	case "identifier", "member_expression", "type_identifier", "nested_type_identifier":
		t := model.NewBasicType(compact(expr.Utf8Text(src)), &modulePath)
		t.TypeArguments = parseTypeArguments(typeArgs, src, modulePath)
		return t
	case "generic_type":
		return ParseType(expr, src, modulePath)
	}
	return model.NewMockType()
}

func parseTypeArguments(n *ts.Node, src []byte, modulePath string) []model.Type {
	args := []model.Type{}
	for _, arg := range ast.NamedChildren(n) {
		args = append(args, ParseType(arg, src, modulePath))
	}
	return args
}

// flattenUnion lists the members of a left-recursive union_type in order.
func flattenUnion(n *ts.Node) []*ts.Node {
	var members []*ts.Node
	for _, child := range ast.NamedChildren(n) {
		if child.Kind() == "union_type" {
			members = append(members, flattenUnion(child)...)
			continue
		}
		members = append(members, child)
	}
	return members
}

func firstNamed(n *ts.Node) *ts.Node {
	children := ast.NamedChildren(n)
	if len(children) == 0 {
		return nil
	}
	return children[0]
}

// compact drops whitespace and comments-free layout from dotted names such
// as "Models . Hero".
func compact(s string) string {
	return strings.Join(strings.Fields(s), "")
}

package ast

import (
	"strings"

	ts "github.com/tree-sitter/go-tree-sitter"
)

// Matcher recognizes a node shape. On success it returns the value computed
// for the node and true; a non-match is (nil, false), never a panic.
type Matcher interface {
	Match(n *ts.Node, src []byte) (any, bool)
}

// Transformer computes the value of a successful match.
type Transformer func(n *ts.Node, src []byte) any

// MatcherFunc adapts a function to the Matcher interface.
type MatcherFunc func(n *ts.Node, src []byte) (any, bool)

// Match calls f.
func (f MatcherFunc) Match(n *ts.Node, src []byte) (any, bool) { return f(n, src) }

func apply(tr Transformer, n *ts.Node, src []byte) any {
	if tr == nil {
		return true
	}
	return tr(n, src)
}

// kindMatcher matches nodes of one of a fixed set of kinds.
func kindMatcher(tr Transformer, kinds ...string) Matcher {
	return MatcherFunc(func(n *ts.Node, src []byte) (any, bool) {
		if n == nil {
			return nil, false
		}
		for _, k := range kinds {
			if n.Kind() == k {
				return apply(tr, n, src), true
			}
		}
		return nil, false
	})
}

// Kind matches nodes of any of the given kinds, returning the node.
func Kind(kinds ...string) Matcher {
	return kindMatcher(identity, kinds...)
}

// Ident matches an identifier (or property name) spelled name.
func Ident(name string) Matcher {
	return MatcherFunc(func(n *ts.Node, src []byte) (any, bool) {
		if n == nil {
			return nil, false
		}
		switch n.Kind() {
		case "identifier", "property_identifier", "type_identifier":
			if n.Utf8Text(src) == name {
				return true, true
			}
		}
		return nil, false
	})
}

// Any matches every node, including an absent one.
func Any() Matcher {
	return MatcherFunc(func(*ts.Node, []byte) (any, bool) { return true, true })
}

// Member matches obj.prop where the object and property match the given
// matchers.
func Member(object, property Matcher, tr Transformer) Matcher {
	return MatcherFunc(func(n *ts.Node, src []byte) (any, bool) {
		if n == nil || n.Kind() != "member_expression" {
			return nil, false
		}
		if _, ok := object.Match(n.ChildByFieldName("object"), src); !ok {
			return nil, false
		}
		if _, ok := property.Match(n.ChildByFieldName("property"), src); !ok {
			return nil, false
		}
		return apply(tr, n, src), true
	})
}

// Call matches a call expression whose callee matches callee.
func Call(callee Matcher, tr Transformer) Matcher {
	return MatcherFunc(func(n *ts.Node, src []byte) (any, bool) {
		if n == nil || n.Kind() != "call_expression" {
			return nil, false
		}
		if _, ok := callee.Match(n.ChildByFieldName("function"), src); !ok {
			return nil, false
		}
		return apply(tr, n, src), true
	})
}

// VarDecl matches a variable declarator binding left to right. A declarator
// without initializer presents a nil right-hand node to right.
func VarDecl(left, right Matcher, tr Transformer) Matcher {
	return MatcherFunc(func(n *ts.Node, src []byte) (any, bool) {
		if n == nil || n.Kind() != "variable_declarator" {
			return nil, false
		}
		if _, ok := left.Match(n.ChildByFieldName("name"), src); !ok {
			return nil, false
		}
		if _, ok := right.Match(n.ChildByFieldName("value"), src); !ok {
			return nil, false
		}
		return apply(tr, n, src), true
	})
}

// Field matches property declarations of classes and property signatures of
// interfaces, returning the node itself.
func Field() Matcher {
	return kindMatcher(identity, "public_field_definition", "field_definition", "property_signature")
}

// Method matches method definitions of classes and method signatures of
// interfaces and abstract classes, returning the node.
func Method() Matcher {
	return kindMatcher(identity, "method_definition", "method_signature", "abstract_method_signature")
}

// ClassDecl matches class and abstract class declarations, returning the
// node. Class expressions are not declarations and do not match.
func ClassDecl() Matcher {
	return kindMatcher(identity, "class_declaration", "abstract_class_declaration")
}

// InterfaceDecl matches interface declarations, returning the node.
func InterfaceDecl() Matcher {
	return kindMatcher(identity, "interface_declaration")
}

func identity(n *ts.Node, _ []byte) any { return n }

// MemberFromExp builds a matcher from a dotted pattern such as "api.*.get(*)".
// A "*" segment matches any node and a "(*)" suffix requires that segment to
// be called.
func MemberFromExp(pattern string, tr Transformer) Matcher {
	var result Matcher
	for _, seg := range strings.Split(pattern, ".") {
		isCall := false
		if i := strings.Index(seg, "(*)"); i >= 0 {
			seg = seg[:i]
			isCall = true
		}
		var m Matcher
		if seg == "*" {
			m = Any()
		} else {
			m = Ident(seg)
		}
		if result == nil {
			result = m
		} else {
			result = Member(result, m, tr)
		}
		if isCall {
			result = Call(result, tr)
		}
	}
	if result == nil {
		return Any()
	}
	return result
}

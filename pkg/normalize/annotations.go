package normalize

import (
	ts "github.com/tree-sitter/go-tree-sitter"

	"github.com/gnana997/tsstruct/pkg/ast"
	"github.com/gnana997/tsstruct/pkg/model"
)

// BuildAnnotation converts a call expression such as Required() or
// Meta.describe("x") into an Annotation.
func (nz *Normalizer) BuildAnnotation(n *ts.Node, src []byte) (*model.Annotation, error) {
	if n == nil || n.Kind() != "call_expression" {
		return nil, newNodeError(ErrUnsupportedAnnotationShape, n, src)
	}
	name, args, err := nz.call(n, src)
	if err != nil {
		return nil, err
	}
	return &model.Annotation{Name: name, Arguments: args}, nil
}

// BuildDecorator converts a decorator node. @Name(args) carries its parsed
// arguments; a bare @Name has nil Arguments.
func (nz *Normalizer) BuildDecorator(n *ts.Node, src []byte) (*model.Decorator, error) {
	expr := n
	if n != nil && n.Kind() == "decorator" {
		expr = firstNamed(n)
	}
	if expr == nil {
		return nil, newNodeError(ErrUnsupportedAnnotationShape, n, src)
	}

	switch expr.Kind() {
	case "call_expression":
		name, args, err := nz.call(expr, src)
		if err != nil {
			return nil, err
		}
		return &model.Decorator{Name: name, Arguments: args}, nil
	case "identifier":
		return &model.Decorator{Name: expr.Utf8Text(src)}, nil
	}
	return nil, newNodeError(ErrUnsupportedAnnotationShape, expr, src)
}

// BuildInitializer converts the initializer of a $-prefixed field, which
// must be an array of annotation calls. A missing initializer yields no
// annotations.
func (nz *Normalizer) BuildInitializer(n *ts.Node, src []byte) ([]*model.Annotation, error) {
	annotations := []*model.Annotation{}
	if n == nil {
		return annotations, nil
	}
	if n.Kind() != "array" {
		return nil, newNodeError(ErrUnsupportedInitializerShape, n, src)
	}
	for _, el := range ast.NamedChildren(n) {
		a, err := nz.BuildAnnotation(el, src)
		if err != nil {
			return nil, err
		}
		annotations = append(annotations, a)
	}
	return annotations, nil
}

// BuildConstraint converts the initializer of a regular field. A call
// becomes a call constraint holding an Annotation; any other expression is
// evaluated with ParseArg. A missing initializer yields nil.
func (nz *Normalizer) BuildConstraint(n *ts.Node, src []byte) (*model.Constraint, error) {
	if n == nil {
		return nil, nil
	}
	if n.Kind() == "call_expression" {
		a, err := nz.BuildAnnotation(n, src)
		if err != nil {
			return nil, err
		}
		return &model.Constraint{IsCallConstraint: true, Value: a}, nil
	}
	return &model.Constraint{Value: nz.ParseArg(n, src)}, nil
}

func (nz *Normalizer) call(n *ts.Node, src []byte) (string, []any, error) {
	name, err := parseName(n.ChildByFieldName("function"), src)
	if err != nil {
		return "", nil, err
	}
	args := []any{}
	if list := n.ChildByFieldName("arguments"); list != nil && list.Kind() == "arguments" {
		for _, arg := range ast.NamedChildren(list) {
			args = append(args, nz.ParseArg(arg, src))
		}
	}
	return name, args, nil
}

// parseName renders an identifier or a property access chain such as a.b.c.
func parseName(n *ts.Node, src []byte) (string, error) {
	if n != nil {
		switch n.Kind() {
		case "identifier", "property_identifier":
			return n.Utf8Text(src), nil
		case "member_expression":
			object, err := parseName(n.ChildByFieldName("object"), src)
			if err != nil {
				return "", err
			}
			return object + "." + ast.Text(n.ChildByFieldName("property"), src), nil
		}
	}
	return "", newNodeError(ErrUnsupportedAnnotationShape, n, src)
}

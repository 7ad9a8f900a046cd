package extractor

import (
	"strings"

	ts "github.com/tree-sitter/go-tree-sitter"

	"github.com/gnana997/tsstruct/pkg/ast"
	"github.com/gnana997/tsstruct/pkg/model"
	"github.com/gnana997/tsstruct/pkg/normalize"
)

// field builds a property. Names starting with $ carry an annotation array
// as initializer; any other initializer becomes the value constraint.
func (u *unit) field(n *ts.Node) (*model.Field, error) {
	nameNode := n.ChildByFieldName("name")
	if nameNode == nil {
		nameNode = n.ChildByFieldName("property")
	}
	name := u.text(nameNode)
	value := n.ChildByFieldName("value")

	f := &model.Field{
		Name:        name,
		Doc:         u.docComment(n),
		Type:        u.parseType(n.ChildByFieldName("type")),
		Annotations: []*model.Annotation{},
		Optional:    ast.HasToken(n, "?"),
	}

	if strings.HasPrefix(name, "$") {
		annotations, err := u.normalizer.BuildInitializer(value, u.src)
		if err != nil {
			return nil, u.locate(err, int(n.StartByte()))
		}
		f.Annotations = annotations
	} else {
		constraint, err := u.normalizer.BuildConstraint(value, u.src)
		if err != nil {
			return nil, u.locate(err, int(n.StartByte()))
		}
		f.ValueConstraint = constraint
	}

	decorators, err := u.decorators(ast.ChildrenOfKind(n, "decorator"))
	if err != nil {
		return nil, err
	}
	f.Decorators = decorators
	return f, nil
}

// accessorKind reports whether a method is a get or set accessor.
func accessorKind(n *ts.Node) (model.AccessorKind, bool) {
	switch {
	case ast.HasToken(n, "get"):
		return model.AccessorGet, true
	case ast.HasToken(n, "set"):
		return model.AccessorSet, true
	}
	return "", false
}

// span returns the member's full-start offset, which lies before its
// decorators and leading comments, and its end offset.
func (u *unit) span(n *ts.Node) (int, int) {
	return ast.FullStart(n, "decorator"), int(n.EndByte())
}

func (u *unit) method(n *ts.Node) *model.Method {
	start, end := u.span(n)
	return &model.Method{
		Start:      start,
		End:        end,
		Name:       u.text(n.ChildByFieldName("name")),
		Text:       string(u.src[start:end]),
		ReturnType: u.parseType(n.ChildByFieldName("return_type")),
		Arguments:  u.parameters(n.ChildByFieldName("parameters")),
		Doc:        u.docComment(n),
	}
}

func (u *unit) accessor(n *ts.Node, kind model.AccessorKind) *model.Accessor {
	m := u.method(n)
	return &model.Accessor{
		Kind:       kind,
		Start:      m.Start,
		End:        m.End,
		Name:       m.Name,
		Text:       m.Text,
		ReturnType: m.ReturnType,
		Arguments:  m.Arguments,
		Doc:        m.Doc,
	}
}

func (u *unit) parameters(list *ts.Node) []*model.Parameter {
	params := []*model.Parameter{}
	for _, p := range ast.NamedChildren(list) {
		if p.Kind() == "decorator" {
			continue
		}
		start := ast.FullStart(p)
		end := int(p.EndByte())
		params = append(params, &model.Parameter{
			Start: start,
			End:   end,
			Name:  u.parameterName(p),
			Text:  string(u.src[start:end]),
			Type:  u.parseType(p.ChildByFieldName("type")),
		})
	}
	return params
}

// parameterName returns the bound identifier of a parameter. Rest
// parameters yield the inner name and destructuring patterns their text.
func (u *unit) parameterName(p *ts.Node) string {
	if p == nil {
		return ""
	}
	pattern := p.ChildByFieldName("pattern")
	if pattern == nil {
		// JavaScript parameters are bare patterns
		pattern = p
	}
	switch pattern.Kind() {
	case "rest_pattern":
		if inner := firstNamed(pattern); inner != nil {
			return u.text(inner)
		}
	case "assignment_pattern":
		return u.parameterName(pattern.ChildByFieldName("left"))
	}
	return u.text(pattern)
}

func (u *unit) heritageType(expr, args *ts.Node) model.Type {
	return normalize.ParseHeritageType(expr, args, u.src, u.module.Name)
}

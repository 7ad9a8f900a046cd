package extractor

import (
	"fmt"
	"strings"

	ts "github.com/tree-sitter/go-tree-sitter"

	"github.com/gnana997/tsstruct/pkg/ast"
	"github.com/gnana997/tsstruct/pkg/model"
)

var (
	fieldDecl  = ast.Field()
	methodDecl = ast.Method()
)

// class builds a class or interface and appends it to the module.
func (u *unit) class(n *ts.Node, isInterface bool) error {
	clazz := model.NewClass(u.text(n.ChildByFieldName("name")), isInterface)
	clazz.Doc = u.docComment(n)
	clazz.ModuleName = u.namespaceOf(n)

	decorators, err := u.classDecorators(n)
	if err != nil {
		return err
	}
	clazz.Decorators = decorators
	u.module.Classes = append(u.module.Classes, clazz)

	if err := u.members(clazz, n.ChildByFieldName("body")); err != nil {
		return err
	}
	u.typeParameters(clazz, n.ChildByFieldName("type_parameters"))

	if isInterface {
		for _, t := range ast.NamedChildren(ast.ChildOfKind(n, "extends_type_clause")) {
			clazz.Extends = append(clazz.Extends, u.parseType(t))
		}
		return nil
	}
	return u.heritage(clazz, ast.ChildOfKind(n, "class_heritage"))
}

// classDecorators collects decorators written before "export" and then
// those on the declaration itself.
func (u *unit) classDecorators(n *ts.Node) ([]*model.Decorator, error) {
	var nodes []*ts.Node
	for p := n.Parent(); p != nil && p.Kind() == "export_statement"; p = p.Parent() {
		nodes = append(ast.ChildrenOfKind(p, "decorator"), nodes...)
	}
	nodes = append(nodes, ast.ChildrenOfKind(n, "decorator")...)
	return u.decorators(nodes)
}

func (u *unit) decorators(nodes []*ts.Node) ([]*model.Decorator, error) {
	decorators := []*model.Decorator{}
	for _, d := range nodes {
		dec, err := u.normalizer.BuildDecorator(d, u.src)
		if err != nil {
			return nil, u.locate(err, int(d.StartByte()))
		}
		decorators = append(decorators, dec)
	}
	return decorators, nil
}

// members walks a class or interface body in declaration order.
func (u *unit) members(clazz *model.Class, body *ts.Node) error {
	registered := map[string]*model.Field{}

	for _, m := range ast.NamedChildren(body) {
		switch {
		case u.matches(fieldDecl, m):
			if clazz.IsInterface && m.Kind() != "property_signature" {
				continue
			}
			f, err := u.field(m)
			if err != nil {
				return err
			}
			u.disambiguate(clazz, registered, f)

		case u.matches(methodDecl, m):
			if clazz.IsInterface && m.Kind() != "method_signature" {
				continue
			}
			if kind, ok := accessorKind(m); ok {
				if !clazz.IsInterface {
					clazz.Accessors = append(clazz.Accessors, u.accessor(m, kind))
				}
				continue
			}
			clazz.Methods = append(clazz.Methods, u.method(m))
		}
	}
	return nil
}

// disambiguate files a field under the class according to its name:
//
//	$          class-level annotations, last one wins
//	$ref, x    a regular field
//	$x         annotations for field x
//
// A $x seen before x is kept in annotationOverridings, or merged into x when
// it is declared if ApplyPendingOverrides is set. $$ is dropped when it has
// no target.
func (u *unit) disambiguate(clazz *model.Class, registered map[string]*model.Field, f *model.Field) {
	switch {
	case f.Name == "$":
		clazz.Annotations = f.Annotations

	case !strings.HasPrefix(f.Name, "$") || f.Name == "$ref":
		if u.options.ApplyPendingOverrides {
			if pending, ok := clazz.AnnotationOverridings.Get(f.Name); ok {
				f.Annotations = append(f.Annotations, pending...)
				clazz.AnnotationOverridings.Delete(f.Name)
			}
		}
		registered[f.Name] = f
		clazz.Fields = append(clazz.Fields, f)

	default:
		target := f.Name[1:]
		if existing, ok := registered[target]; ok {
			existing.Annotations = f.Annotations
			return
		}
		if f.Name == "$$" {
			return
		}
		pending, _ := clazz.AnnotationOverridings.Get(target)
		clazz.AnnotationOverridings.Set(target, append(pending, f.Annotations...))
	}
}

// typeParameters fills the parallel name and constraint lists. A
// constraint is recorded only when it is a plain or generic type name.
func (u *unit) typeParameters(clazz *model.Class, params *ts.Node) {
	for _, p := range ast.ChildrenOfKind(params, "type_parameter") {
		clazz.TypeParameters = append(clazz.TypeParameters, u.text(p.ChildByFieldName("name")))

		var constraint *string
		if c := p.ChildByFieldName("constraint"); c != nil {
			constraint = u.constraintName(firstNamed(c))
		}
		clazz.TypeParameterConstraint = append(clazz.TypeParameterConstraint, constraint)
	}
}

func (u *unit) constraintName(t *ts.Node) *string {
	if t == nil {
		return nil
	}
	switch t.Kind() {
	case "generic_type":
		return u.constraintName(t.ChildByFieldName("name"))
	case "type_identifier":
		name := u.text(t)
		return &name
	}
	return nil
}

// heritage reads extends and implements clauses of a class.
func (u *unit) heritage(clazz *model.Class, h *ts.Node) error {
	if h == nil {
		return nil
	}
	for i := uint(0); i < h.ChildCount(); i++ {
		clause := h.Child(i)
		switch clause.Kind() {
		case "extends_clause":
			clazz.Extends = append(clazz.Extends, u.extendsClause(clause)...)

		case "implements_clause":
			for _, t := range ast.NamedChildren(clause) {
				clazz.Implements = append(clazz.Implements, u.parseType(t))
			}

		case "extends":
			// JavaScript: class_heritage is "extends" followed by the base
			if next := clause.NextNamedSibling(); next != nil {
				clazz.Extends = append(clazz.Extends, u.heritageType(next, nil))
				return nil
			}

		case "comment":

		default:
			return u.locate(fmt.Errorf("%w: %s", ErrUnknownHeritageToken, clause.Kind()), int(clause.StartByte()))
		}
	}
	return nil
}

// extendsClause returns the bases of "extends A<T>, B". Each base
// expression may be followed by its type arguments.
func (u *unit) extendsClause(clause *ts.Node) []model.Type {
	var types []model.Type
	children := ast.NamedChildren(clause)
	for i := 0; i < len(children); i++ {
		expr := children[i]
		if expr.Kind() == "type_arguments" {
			continue
		}
		var args *ts.Node
		if i+1 < len(children) && children[i+1].Kind() == "type_arguments" {
			args = children[i+1]
		}
		types = append(types, u.heritageType(expr, args))
	}
	return types
}

func firstNamed(n *ts.Node) *ts.Node {
	children := ast.NamedChildren(n)
	if len(children) == 0 {
		return nil
	}
	return children[0]
}

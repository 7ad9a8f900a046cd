// Package model defines the structural records produced by the extractor.
//
// Every record serializes with the camelCase keys downstream generators read.
// Absent, null and empty are distinct in several places:
//   - Field.ValueConstraint is null when the field has no initializer
//   - Decorator.Arguments is null for a bare @Name decorator
//   - EnumMember.Value is omitted when the initializer is not a literal
package model

import (
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Module is one compilation unit.
type Module struct {
	Classes   []*Class    `json:"classes"`
	Functions []*Function `json:"functions"`
	// Imports maps old-style import namespaces to their resolved modules,
	// in declaration order.
	Imports *orderedmap.OrderedMap[string, *Module] `json:"imports"`
	// RawImports holds new-style imports, recorded but never resolved.
	RawImports []*Import `json:"_imports"`
	Aliases    []*Alias  `json:"aliases"`
	Enums      []*Enum   `json:"enumDeclarations"`
	// Name is the resolved path the module was extracted from.
	Name string `json:"name"`
}

// NewModule returns an empty module for path.
func NewModule(path string) *Module {
	return &Module{
		Classes:    []*Class{},
		Functions:  []*Function{},
		Imports:    orderedmap.New[string, *Module](),
		RawImports: []*Import{},
		Aliases:    []*Alias{},
		Enums:      []*Enum{},
		Name:       path,
	}
}

// Class is a class or an interface.
type Class struct {
	Name        string        `json:"name"`
	Doc         string        `json:"doc"`
	Decorators  []*Decorator  `json:"decorators"`
	Annotations []*Annotation `json:"annotations"`
	// ModuleName is the enclosing namespace, if any.
	ModuleName *string `json:"moduleName"`
	Extends    []Type  `json:"extends"`
	Implements []Type  `json:"implements"`

	Fields    []*Field    `json:"fields"`
	Methods   []*Method   `json:"methods"`
	Accessors []*Accessor `json:"accessors"`

	TypeParameters []string `json:"typeParameters"`
	// TypeParameterConstraint is aligned by index with TypeParameters.
	TypeParameterConstraint []*string `json:"typeParameterConstraint"`
	IsInterface             bool      `json:"isInterface"`

	// AnnotationOverridings holds shadow ($name) annotations whose target
	// field was not registered when the shadow was seen.
	AnnotationOverridings *orderedmap.OrderedMap[string, []*Annotation] `json:"annotationOverridings"`
}

// NewClass returns an empty class or interface model.
func NewClass(name string, isInterface bool) *Class {
	return &Class{
		Name:                    name,
		Decorators:              []*Decorator{},
		Annotations:             []*Annotation{},
		Extends:                 []Type{},
		Implements:              []Type{},
		Fields:                  []*Field{},
		Methods:                 []*Method{},
		Accessors:               []*Accessor{},
		TypeParameters:          []string{},
		TypeParameterConstraint: []*string{},
		IsInterface:             isInterface,
		AnnotationOverridings:   orderedmap.New[string, []*Annotation](),
	}
}

// Field returns the declared field with the given name, or nil.
func (c *Class) Field(name string) *Field {
	for _, f := range c.Fields {
		if f.Name == name {
			return f
		}
	}
	return nil
}

// Method returns the first method with the given name, or nil.
func (c *Class) Method(name string) *Method {
	for _, m := range c.Methods {
		if m.Name == name {
			return m
		}
	}
	return nil
}

// Field is a property of a class or a property signature of an interface.
type Field struct {
	Name            string        `json:"name"`
	Doc             string        `json:"doc"`
	Type            Type          `json:"type"`
	Decorators      []*Decorator  `json:"decorators"`
	Annotations     []*Annotation `json:"annotations"`
	ValueConstraint *Constraint   `json:"valueConstraint"`
	Optional        bool          `json:"optional"`
}

// Constraint is the initializer of a non-$ field. When IsCallConstraint is
// set, Value holds an *Annotation; otherwise it holds a literal value.
type Constraint struct {
	IsCallConstraint bool `json:"isCallConstraint"`
	Value            any  `json:"value"`
}

// Annotation is a call expression inside a $-field initializer array.
type Annotation struct {
	Name      string `json:"name"`
	Arguments []any  `json:"arguments"`
}

// Decorator is an @-decorator. Arguments is nil for a decorator written
// without a call.
type Decorator struct {
	Name      string `json:"name"`
	Arguments []any  `json:"arguments"`
}

// Method is a method definition or signature.
type Method struct {
	Start      int          `json:"start"`
	End        int          `json:"end"`
	Name       string       `json:"name"`
	Text       string       `json:"text"`
	ReturnType Type         `json:"returnType"`
	Arguments  []*Parameter `json:"arguments"`
	Doc        string       `json:"doc"`
}

// AccessorKind is "get" or "set".
type AccessorKind string

const (
	AccessorGet AccessorKind = "get"
	AccessorSet AccessorKind = "set"
)

// Accessor is a get or set member of a class.
type Accessor struct {
	Kind       AccessorKind `json:"kind"`
	Start      int          `json:"start"`
	End        int          `json:"end"`
	Name       string       `json:"name"`
	Text       string       `json:"text"`
	ReturnType Type         `json:"returnType"`
	Arguments  []*Parameter `json:"arguments"`
	Doc        string       `json:"doc"`
}

// Parameter is one formal parameter of a method or accessor.
type Parameter struct {
	Start int    `json:"start"`
	End   int    `json:"end"`
	Name  string `json:"name"`
	Text  string `json:"text"`
	Type  Type   `json:"type"`
}

// Enum is an enum declaration.
type Enum struct {
	Name    string        `json:"name"`
	Doc     string        `json:"doc"`
	Members []*EnumMember `json:"members"`
}

// EnumMember holds an int or string Value when the initializer was a
// numeric or string literal, and nil otherwise.
type EnumMember struct {
	Name  string `json:"name"`
	Doc   string `json:"doc"`
	Value any    `json:"value,omitempty"`
}

// Function is a free function, declared or bound to a variable.
type Function struct {
	Name     string          `json:"name"`
	Doc      string          `json:"doc"`
	IsAsync  bool            `json:"isAsync"`
	IsArrow  bool            `json:"isArrow"`
	IsExport bool            `json:"isExport"`
	Params   []FunctionParam `json:"params"`
}

// FunctionParam describes a function parameter by its source text.
type FunctionParam struct {
	Name      string `json:"name"`
	Type      string `json:"type"`
	Mandatory bool   `json:"mandatory"`
}

// Alias is a type alias declaration.
type Alias struct {
	Name string `json:"name"`
	Type Type   `json:"type"`
}

// Import is a new-style import record.
type Import struct {
	Clauses       []string `json:"clauses"`
	AbsPathNode   []string `json:"absPathNode"`
	AbsPathString string   `json:"absPathString"`
	IsNodeModule  bool     `json:"isNodeModule"`
}

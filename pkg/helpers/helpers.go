// Package helpers extracts helper methods: free functions marked with a
// __$helperMethod__ comment that code generators expose as wrapper methods.
package helpers

import (
	"strings"

	"github.com/gnana997/tsstruct/pkg/model"
	"github.com/gnana997/tsstruct/pkg/normalize/jsonfix"
)

// WrapperNamespaces are the namespaces whose types denote wrapper targets.
var WrapperNamespaces = map[string]bool{"RamlWrapper": true}

// Method is one helper method.
type Method struct {
	OriginalName      string     `json:"originalName"`
	WrapperMethodName string     `json:"wrapperMethodName"`
	ReturnType        model.Type `json:"returnType"`
	Args              []*Arg     `json:"args"`
	Meta              *Meta      `json:"meta"`
}

// Arg is a helper method parameter. DefaultValue holds the parsed
// initializer; a parameter with an initializer is optional.
type Arg struct {
	Name         string     `json:"name"`
	Type         model.Type `json:"type"`
	DefaultValue any        `json:"defaultValue,omitempty"`
	Optional     bool       `json:"optional"`
}

// Meta is read from the JSON object following __$meta__. Keys other than
// name, override, primary and deprecated are kept in Extra in source order.
type Meta struct {
	Name       string          `json:"name,omitempty"`
	Comment    *string         `json:"comment"`
	Override   bool            `json:"override"`
	Primary    bool            `json:"primary"`
	Deprecated bool            `json:"deprecated"`
	Extra      *jsonfix.Object `json:"extra,omitempty"`
}

// TargetWrappers returns the wrapper types the method operates on. Exactly
// one argument may carry wrapper types; if several do, none are returned.
func (m *Method) TargetWrappers() []string {
	result := []string{}
	valid := true
	for _, a := range m.Args {
		names := Flatten(a.Type, WrapperNamespaces)
		if len(names) == 0 {
			continue
		}
		if !valid || len(result) != 0 {
			result = []string{}
			valid = false
			continue
		}
		result = append(result, names...)
	}
	return result
}

// CallArgs returns the arguments a wrapper passes on, with every
// wrapper-typed argument replaced by the receiver.
func (m *Method) CallArgs() []*Arg {
	args := make([]*Arg, 0, len(m.Args))
	for _, a := range m.Args {
		if len(Flatten(a.Type, WrapperNamespaces)) == 0 {
			args = append(args, a)
			continue
		}
		args = append(args, &Arg{Name: "this"})
	}
	return args
}

// Flatten renders t as type strings.
//
// With a nil namespaces set every option of t is rendered. Otherwise only
// basic types qualified by one of namespaces are kept, and arrays are
// dropped.
func Flatten(t model.Type, namespaces map[string]bool) []string {
	switch t := t.(type) {
	case *model.ArrayType:
		if namespaces != nil {
			return []string{}
		}
		base := ""
		if names := Flatten(t.Base, nil); len(names) > 0 {
			base = names[0]
		}
		return []string{base + "[]"}

	case *model.BasicType:
		str := t.BasicName
		if ns := strings.TrimSpace(t.NameSpace); ns != "" && ns != "RamlWrapper" {
			str = ns + "." + str
		}
		if len(t.TypeArguments) != 0 {
			args := make([]string, 0, len(t.TypeArguments))
			for _, arg := range t.TypeArguments {
				args = append(args, strings.Join(Flatten(arg, nil), ","))
			}
			str += "<" + strings.Join(args, ", ") + ">"
		}
		if namespaces != nil {
			if t.NameSpace != "" && namespaces[t.NameSpace] {
				return []string{str}
			}
			return []string{}
		}
		return []string{str}

	case *model.UnionType:
		result := []string{}
		for _, opt := range t.Options {
			result = append(result, Flatten(opt, namespaces)...)
		}
		return result
	}
	return []string{}
}

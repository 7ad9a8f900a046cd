package model

import (
	"bytes"
	"encoding/json"
)

// moduleRef is emitted in place of a module that is already being serialized
// further up the import chain.
type moduleRef struct {
	Name string `json:"name"`
}

type moduleJSON struct {
	Classes    []*Class        `json:"classes"`
	Functions  []*Function     `json:"functions"`
	Imports    json.RawMessage `json:"imports"`
	RawImports []*Import       `json:"_imports"`
	Aliases    []*Alias        `json:"aliases"`
	Enums      []*Enum         `json:"enumDeclarations"`
	Name       string          `json:"name"`
}

// MarshalJSON serializes the module with its resolved imports nested in
// place. Import cycles are cut with a {"name": path} reference.
func (m *Module) MarshalJSON() ([]byte, error) {
	return m.marshal(map[*Module]bool{})
}

func (m *Module) marshal(active map[*Module]bool) ([]byte, error) {
	active[m] = true
	defer delete(active, m)

	var imports bytes.Buffer
	imports.WriteByte('{')
	if m.Imports != nil {
		first := true
		for pair := m.Imports.Oldest(); pair != nil; pair = pair.Next() {
			if !first {
				imports.WriteByte(',')
			}
			first = false

			key, err := json.Marshal(pair.Key)
			if err != nil {
				return nil, err
			}
			imports.Write(key)
			imports.WriteByte(':')

			var nested []byte
			switch {
			case pair.Value == nil:
				nested = []byte("null")
			case active[pair.Value]:
				nested, err = json.Marshal(moduleRef{Name: pair.Value.Name})
			default:
				nested, err = pair.Value.marshal(active)
			}
			if err != nil {
				return nil, err
			}
			imports.Write(nested)
		}
	}
	imports.WriteByte('}')

	return json.Marshal(moduleJSON{
		Classes:    m.Classes,
		Functions:  m.Functions,
		Imports:    imports.Bytes(),
		RawImports: m.RawImports,
		Aliases:    m.Aliases,
		Enums:      m.Enums,
		Name:       m.Name,
	})
}

// ImportNames returns the resolved import namespaces in declaration order.
func (m *Module) ImportNames() []string {
	names := make([]string, 0, m.Imports.Len())
	for pair := m.Imports.Oldest(); pair != nil; pair = pair.Next() {
		names = append(names, pair.Key)
	}
	return names
}

// Import returns the module resolved for namespace, or nil.
func (m *Module) Import(namespace string) *Module {
	mod, _ := m.Imports.Get(namespace)
	return mod
}

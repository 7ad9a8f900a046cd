package model

// TypeKind discriminates the three Type variants.
type TypeKind int

const (
	// KindBasic is a named type, possibly qualified and generic.
	KindBasic TypeKind = iota
	// KindArray is T[].
	KindArray
	// KindUnion is A | B | ...
	KindUnion
)

// String returns the lowercase name of the kind.
func (k TypeKind) String() string {
	switch k {
	case KindBasic:
		return "basic"
	case KindArray:
		return "array"
	case KindUnion:
		return "union"
	default:
		return "unknown"
	}
}

// MockTypeName is the basic name given to type syntax the extractor does not model.
const MockTypeName = "mock"

// Type is the closed set of extracted type descriptors: *BasicType, *ArrayType
// and *UnionType. A nil Type means the declaration carried no type annotation.
type Type interface {
	Kind() TypeKind
	sealed()
}

// BasicType is a named type reference or a predefined keyword.
type BasicType struct {
	TypeName      string   `json:"typeName"`
	NameSpace     string   `json:"nameSpace"`
	BasicName     string   `json:"basicName"`
	TypeKind      TypeKind `json:"typeKind"`
	TypeArguments []Type   `json:"typeArguments"`
	// ModulePath is the file the reference appeared in. Nil for keywords and mocks.
	ModulePath *string `json:"modulePath"`
}

// ArrayType wraps the element type of T[].
type ArrayType struct {
	Base     Type     `json:"base"`
	TypeKind TypeKind `json:"typeKind"`
}

// UnionType lists the options of a union in source order.
type UnionType struct {
	Options  []Type   `json:"options"`
	TypeKind TypeKind `json:"typeKind"`
}

func (*BasicType) Kind() TypeKind { return KindBasic }
func (*ArrayType) Kind() TypeKind { return KindArray }
func (*UnionType) Kind() TypeKind { return KindUnion }

func (*BasicType) sealed() {}
func (*ArrayType) sealed() {}
func (*UnionType) sealed() {}

// NewBasicType builds a BasicType from a possibly dotted name. The namespace is
// everything before the last dot.
func NewBasicType(name string, modulePath *string) *BasicType {
	ns, base := "", name
	for i := len(name) - 1; i >= 0; i-- {
		if name[i] == '.' {
			ns, base = name[:i], name[i+1:]
			break
		}
	}
	return &BasicType{
		TypeName:      name,
		NameSpace:     ns,
		BasicName:     base,
		TypeKind:      KindBasic,
		TypeArguments: []Type{},
		ModulePath:    modulePath,
	}
}

// NewMockType returns the placeholder used for unsupported type syntax.
func NewMockType() *BasicType {
	return NewBasicType(MockTypeName, nil)
}

// NewArrayType wraps base in an ArrayType.
func NewArrayType(base Type) *ArrayType {
	return &ArrayType{Base: base, TypeKind: KindArray}
}

// NewUnionType builds a UnionType. A nil slice is stored as empty.
func NewUnionType(options []Type) *UnionType {
	if options == nil {
		options = []Type{}
	}
	return &UnionType{Options: options, TypeKind: KindUnion}
}

// Package types implements the type system named in spec.md §3: a small
// closed set of kinds (void, integral, double, pointer, array, struct,
// union, enum, function) with size/alignment rules and structural equality.
//
// The shape is grounded on lang/yparse/types.go's Type/TypeKind/BaseType
// triple, generalized from wut4's machine word types (uint8/int16/uint16/
// block32/64/128) to the C-subset catalog spec.md actually names.
package types

import "fmt"

// Kind distinguishes the structural shape of a Type.
type Kind int

const (
	Invalid Kind = iota
	Void
	Int
	Char
	Double // float is a REDESIGN-FLAG alias of Double; see the parser's parseDeclSpec
	Pointer
	Array
	Struct
	Union
	Enum
	Function
)

//go:generate go run golang.org/x/tools/cmd/stringer -type Kind -output kind_string.go

// Type describes one C-subset type. Composite kinds populate the field
// relevant to their Kind and leave the rest zero, mirroring the teacher's
// single-struct-many-kinds pattern in lang/yparse/types.go.
type Type struct {
	Kind Kind

	// Pointer, Array
	Elem *Type

	// Array
	Len     int // -1 when unspecified ("int a[]")
	HasLen  bool

	// Struct, Union, Enum
	Tag    string // empty for anonymous
	Fields []Field // Struct/Union members, in declaration order
	// Enum constants are installed directly in the symbol table as named
	// int constants (spec.md §3); Enum here only marks the distinct tag.

	// Function
	Params   []*Type
	Variadic bool
	Ret      *Type

	// Struct, Union: computed by SetFields.
	size  int
	align int

	// Set once a struct/union's member layout has been computed, to detect
	// use of an incomplete tag before its body closes.
	complete bool
}

// Field is one struct/union member.
type Field struct {
	Name   string
	Type   *Type
	Offset int // byte offset within the struct; 0 for all union members
}

var (
	VoidType   = &Type{Kind: Void, complete: true}
	IntType    = &Type{Kind: Int, complete: true}
	CharType   = &Type{Kind: Char, complete: true}
	DoubleType = &Type{Kind: Double, complete: true}
)

// NewPointer builds a pointer-to-elem type.
func NewPointer(elem *Type) *Type {
	return &Type{Kind: Pointer, Elem: elem, complete: true}
}

// NewArray builds a fixed-length array type. length < 0 means an
// unspecified-length array (only legal as a parameter or extern declaration,
// per spec.md §4.2's array-to-pointer decay rule).
func NewArray(elem *Type, length int) *Type {
	t := &Type{Kind: Array, Elem: elem}
	if length >= 0 {
		t.Len = length
		t.HasLen = true
		t.complete = elem.IsComplete()
	}
	return t
}

// NewStruct/NewUnion construct an incomplete tagged aggregate; call
// SetFields once the member list is known to mark it complete.
func NewStruct(tag string) *Type { return &Type{Kind: Struct, Tag: tag} }
func NewUnion(tag string) *Type  { return &Type{Kind: Union, Tag: tag} }

// SetFields installs the member list and computes offsets, completing the
// aggregate. Struct members are packed back to back with no alignment
// padding and the struct's size is the sum of its members' sizes (spec.md §3
// struct/union layout rule); union members all start at offset 0 and the
// union's size is its widest member's size.
func (t *Type) SetFields(fields []Field) {
	switch t.Kind {
	case Struct:
		// Fields are packed sequentially with no alignment padding (spec.md
		// §8: `struct S { char a; int b; }` gives b offset 1, sizeof(S)=5),
		// unlike a natural-alignment C struct layout.
		offset := 0
		maxAlign := 1
		for i := range fields {
			if a := fields[i].Type.Alignment(); a > maxAlign {
				maxAlign = a
			}
			fields[i].Offset = offset
			offset += fields[i].Type.Size()
		}
		t.Fields = fields
		t.size = offset
		t.align = maxAlign
	case Union:
		maxSize, maxAlign := 0, 1
		for i := range fields {
			fields[i].Offset = 0
			if s := fields[i].Type.Size(); s > maxSize {
				maxSize = s
			}
			if a := fields[i].Type.Alignment(); a > maxAlign {
				maxAlign = a
			}
		}
		t.Fields = fields
		t.size = maxSize
		t.align = maxAlign
	default:
		panic("SetFields on non-aggregate type")
	}
	t.complete = true
}

// NewFunction builds a function type.
func NewFunction(ret *Type, params []*Type, variadic bool) *Type {
	return &Type{Kind: Function, Ret: ret, Params: params, Variadic: variadic, complete: true}
}

func (t *Type) IsComplete() bool { return t.complete }

// Size returns the type's storage size in bytes, per spec.md §3: void 0,
// char 1, int 4, double 8, pointer 4 (32-bit target), array = elem*len,
// struct/union per SetFields, function types have no storage size.
func (t *Type) Size() int {
	switch t.Kind {
	case Void:
		return 0
	case Char:
		return 1
	case Int:
		return 4
	case Double:
		return 8
	case Pointer:
		return 4
	case Array:
		if !t.HasLen {
			return 4 // decayed-to-pointer usage; true array storage requires a length
		}
		return t.Elem.Size() * t.Len
	case Struct, Union:
		return t.size
	default:
		return 0
	}
}

// Alignment returns the type's required alignment in bytes.
func (t *Type) Alignment() int {
	switch t.Kind {
	case Char:
		return 1
	case Int, Pointer:
		return 4
	case Double:
		return 8
	case Array:
		return t.Elem.Alignment()
	case Struct, Union:
		return t.align
	default:
		return 1
	}
}

func (t *Type) String() string {
	switch t.Kind {
	case Void:
		return "void"
	case Int:
		return "int"
	case Char:
		return "char"
	case Double:
		return "double"
	case Pointer:
		return fmt.Sprintf("%s*", t.Elem)
	case Array:
		if t.HasLen {
			return fmt.Sprintf("%s[%d]", t.Elem, t.Len)
		}
		return fmt.Sprintf("%s[]", t.Elem)
	case Struct:
		return "struct " + t.Tag
	case Union:
		return "union " + t.Tag
	case Enum:
		return "enum " + t.Tag
	case Function:
		return fmt.Sprintf("%s(...)->%s", t.paramsString(), t.Ret)
	default:
		return "<invalid>"
	}
}

func (t *Type) paramsString() string {
	s := "("
	for i, p := range t.Params {
		if i > 0 {
			s += ", "
		}
		s += p.String()
	}
	if t.Variadic {
		if len(t.Params) > 0 {
			s += ", "
		}
		s += "..."
	}
	return s + ")"
}

// Equal implements the canonical structural type-equality spec.md §4.2's
// assignment/comparison rules rely on: same Kind, recursively equal
// substructure, matching tag for named aggregates.
func (t *Type) Equal(o *Type) bool {
	if t == o {
		return true
	}
	if t == nil || o == nil || t.Kind != o.Kind {
		return false
	}
	switch t.Kind {
	case Void, Int, Char, Double:
		return true
	case Pointer:
		return t.Elem.Equal(o.Elem)
	case Array:
		if t.HasLen != o.HasLen {
			return false
		}
		if t.HasLen && t.Len != o.Len {
			return false
		}
		return t.Elem.Equal(o.Elem)
	case Struct, Union, Enum:
		return t.Tag == o.Tag
	case Function:
		if !t.Ret.Equal(o.Ret) || t.Variadic != o.Variadic || len(t.Params) != len(o.Params) {
			return false
		}
		for i := range t.Params {
			if !t.Params[i].Equal(o.Params[i]) {
				return false
			}
		}
		return true
	}
	return false
}

// IsIntegral reports whether t participates in integer arithmetic/bitwise
// operators without conversion (spec.md §4.2 operand-type tables).
func (t *Type) IsIntegral() bool { return t.Kind == Int || t.Kind == Char || t.Kind == Enum }

// IsArithmetic reports whether t is usable as an operand of +,-,*,/.
func (t *Type) IsArithmetic() bool { return t.IsIntegral() || t.Kind == Double }

func (t *Type) IsPointer() bool { return t.Kind == Pointer }
func (t *Type) IsScalar() bool  { return t.IsArithmetic() || t.Kind == Pointer }

// Decay converts an array type to a pointer to its element, per spec.md
// §4.2's array-to-pointer decay rule (applied to function parameters and
// most expression contexts). Non-array types are returned unchanged.
func (t *Type) Decay() *Type {
	if t.Kind == Array {
		return NewPointer(t.Elem)
	}
	return t
}

package types

import "testing"

func TestScalarSizesAndAlignment(t *testing.T) {
	cases := []struct {
		typ        *Type
		size, align int
	}{
		{VoidType, 0, 1},
		{CharType, 1, 1},
		{IntType, 4, 4},
		{DoubleType, 8, 8},
		{NewPointer(IntType), 4, 4},
	}
	for _, c := range cases {
		if got := c.typ.Size(); got != c.size {
			t.Errorf("%s: Size() = %d, want %d", c.typ, got, c.size)
		}
		if got := c.typ.Alignment(); got != c.align {
			t.Errorf("%s: Alignment() = %d, want %d", c.typ, got, c.align)
		}
	}
}

func TestArraySize(t *testing.T) {
	arr := NewArray(IntType, 10)
	if got := arr.Size(); got != 40 {
		t.Errorf("array size = %d, want 40", got)
	}
	if !arr.IsComplete() {
		t.Errorf("fixed-length array should be complete")
	}
	unspecified := NewArray(IntType, -1)
	if unspecified.IsComplete() {
		t.Errorf("unspecified-length array should be incomplete")
	}
}

func TestArrayDecay(t *testing.T) {
	arr := NewArray(CharType, 8)
	p := arr.Decay()
	if p.Kind != Pointer || !p.Elem.Equal(CharType) {
		t.Errorf("Decay() = %s, want char*", p)
	}
	if IntType.Decay() != IntType {
		t.Errorf("Decay() on non-array should be identity")
	}
}

func TestStructLayout(t *testing.T) {
	// struct { char a; int b; } -> fields pack sequentially with no
	// alignment padding: a at offset 0, b at offset 1, sizeof == 5.
	s := NewStruct("point")
	s.SetFields([]Field{
		{Name: "a", Type: CharType},
		{Name: "b", Type: IntType},
	})
	want := []int{0, 1}
	for i, f := range s.Fields {
		if f.Offset != want[i] {
			t.Errorf("field %s offset = %d, want %d", f.Name, f.Offset, want[i])
		}
	}
	if s.Size() != 5 {
		t.Errorf("struct size = %d, want 5", s.Size())
	}
	if s.Alignment() != 4 {
		t.Errorf("struct alignment = %d, want 4", s.Alignment())
	}
}

func TestUnionLayout(t *testing.T) {
	u := NewUnion("u")
	u.SetFields([]Field{
		{Name: "c", Type: CharType},
		{Name: "d", Type: DoubleType},
	})
	for _, f := range u.Fields {
		if f.Offset != 0 {
			t.Errorf("union field %s offset = %d, want 0", f.Name, f.Offset)
		}
	}
	if u.Size() != 8 {
		t.Errorf("union size = %d, want 8", u.Size())
	}
	if u.Alignment() != 8 {
		t.Errorf("union alignment = %d, want 8", u.Alignment())
	}
}

func TestEqual(t *testing.T) {
	a := NewPointer(IntType)
	b := NewPointer(IntType)
	if !a.Equal(b) {
		t.Errorf("equal pointer types compared unequal")
	}
	c := NewPointer(CharType)
	if a.Equal(c) {
		t.Errorf("differing pointee types compared equal")
	}

	s1 := NewStruct("point")
	s2 := NewStruct("point")
	if !s1.Equal(s2) {
		t.Errorf("same-tag structs should compare equal")
	}
	s3 := NewStruct("other")
	if s1.Equal(s3) {
		t.Errorf("different-tag structs should not compare equal")
	}
}

func TestFunctionEqual(t *testing.T) {
	f1 := NewFunction(IntType, []*Type{IntType, CharType}, false)
	f2 := NewFunction(IntType, []*Type{IntType, CharType}, false)
	if !f1.Equal(f2) {
		t.Errorf("identical function signatures should be equal")
	}
	f3 := NewFunction(IntType, []*Type{IntType}, true)
	if f1.Equal(f3) {
		t.Errorf("differing arity/variadic should not be equal")
	}
}

func TestIntegralAndArithmetic(t *testing.T) {
	if !IntType.IsIntegral() || !CharType.IsIntegral() {
		t.Errorf("int/char should be integral")
	}
	if DoubleType.IsIntegral() {
		t.Errorf("double should not be integral")
	}
	if !DoubleType.IsArithmetic() {
		t.Errorf("double should be arithmetic")
	}
	if !NewPointer(IntType).IsScalar() {
		t.Errorf("pointer should be scalar")
	}
}

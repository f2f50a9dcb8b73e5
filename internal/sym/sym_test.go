package sym

import (
	"testing"

	"github.com/luchiel/smallc/internal/types"
)

func TestBuiltinPrintfInstalled(t *testing.T) {
	tbl := New()
	s, ok := tbl.LookupSymbol("printf")
	if !ok {
		t.Fatal("printf should be predeclared")
	}
	if s.Type.Kind != types.Function || !s.Type.Variadic {
		t.Errorf("printf type wrong: %s", s.Type)
	}
}

func TestScopingShadowsOuter(t *testing.T) {
	tbl := New()
	tbl.Define(NAME, "x", &Symbol{Name: "x", Type: types.IntType})
	tbl.PushScope()
	tbl.Define(NAME, "x", &Symbol{Name: "x", Type: types.CharType})

	s, ok := tbl.LookupSymbol("x")
	if !ok || s.Type.Kind != types.Char {
		t.Fatalf("inner x should shadow outer: got %+v", s)
	}

	tbl.PopScope()
	s, ok = tbl.LookupSymbol("x")
	if !ok || s.Type.Kind != types.Int {
		t.Fatalf("outer x should be visible after pop: got %+v", s)
	}
}

func TestRedeclarationInSameScopeRejected(t *testing.T) {
	tbl := New()
	if !tbl.Define(NAME, "x", &Symbol{Name: "x", Type: types.IntType}) {
		t.Fatal("first definition should succeed")
	}
	if tbl.Define(NAME, "x", &Symbol{Name: "x", Type: types.IntType}) {
		t.Fatal("redeclaration in the same scope should fail")
	}
}

func TestNamespacesAreIndependent(t *testing.T) {
	tbl := New()
	st := types.NewStruct("point")
	if !tbl.Define(TAG, "point", st) {
		t.Fatal("tag definition should succeed")
	}
	if !tbl.Define(NAME, "point", &Symbol{Name: "point", Type: types.IntType}) {
		t.Fatal("same name in NAME namespace should not collide with TAG")
	}
	if _, ok := tbl.LookupTag("point"); !ok {
		t.Fatal("tag lookup should still find the struct")
	}
}

func TestScopeDepthLimit(t *testing.T) {
	tbl := New()
	for i := 1; i < MaxDepth; i++ {
		if !tbl.PushScope() {
			t.Fatalf("PushScope failed early at depth %d", i)
		}
	}
	if tbl.PushScope() {
		t.Fatal("PushScope should fail once MaxDepth is reached")
	}
}

func TestLabelIdentityComparison(t *testing.T) {
	tbl := New()
	a := tbl.NewLabel("done")
	b := tbl.NewLabel("done")
	if a.Equal(b) {
		t.Fatal("distinct labels with the same name must compare unequal")
	}
	if !a.Equal(a) {
		t.Fatal("a label must equal itself")
	}
}

func TestFileScopeNamesOrder(t *testing.T) {
	tbl := New()
	tbl.Define(NAME, "a", &Symbol{Name: "a", Type: types.IntType})
	tbl.Define(NAME, "b", &Symbol{Name: "b", Type: types.IntType})
	names := tbl.FileScopeNames()
	if len(names) != 3 { // printf, a, b
		t.Fatalf("got %d file-scope names, want 3: %+v", len(names), names)
	}
	if names[1].Name != "a" || names[2].Name != "b" {
		t.Errorf("insertion order not preserved: %+v", names)
	}
}

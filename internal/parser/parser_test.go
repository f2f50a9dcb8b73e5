package parser

import (
	"strings"
	"testing"

	"github.com/luchiel/smallc/internal/ast"
	"github.com/luchiel/smallc/internal/diag"
	"github.com/luchiel/smallc/internal/lexer"
)

func parseSource(t *testing.T, src string) (*ast.Program, *diag.CollectingSink) {
	t.Helper()
	sink := &diag.CollectingSink{}
	lx := lexer.New(strings.NewReader(src), "test.c", sink)
	p := New(lx, "test.c", sink, ResolveNames|AddInitializers)
	prog := p.Parse()
	return prog, sink
}

func TestParseSimpleFunction(t *testing.T) {
	prog, sink := parseSource(t, `int main(void) { return 0; }`)
	if sink.HasErrors() {
		t.Fatalf("unexpected errors: %+v", sink.Messages)
	}
	if len(prog.Decls) != 1 {
		t.Fatalf("got %d decls, want 1", len(prog.Decls))
	}
	fd, ok := prog.Decls[0].(*ast.FuncDecl)
	if !ok {
		t.Fatalf("decl is %T, want *ast.FuncDecl", prog.Decls[0])
	}
	if fd.Name != "main" || fd.Body == nil {
		t.Fatalf("got FuncDecl %+v", fd)
	}
}

func TestParseNamedParameters(t *testing.T) {
	prog, sink := parseSource(t, `int add(int a, int b) { return a + b; }`)
	if sink.HasErrors() {
		t.Fatalf("unexpected errors: %+v", sink.Messages)
	}
	fd := prog.Decls[0].(*ast.FuncDecl)
	if len(fd.Params) != 2 || fd.Params[0].Name != "a" || fd.Params[1].Name != "b" {
		t.Fatalf("got params %+v, want named a, b", fd.Params)
	}
	if fd.Params[0].Type == nil || fd.Params[1].Type == nil {
		t.Fatalf("parameter types should be resolved")
	}
}

func TestParseVariadicPrototype(t *testing.T) {
	prog, sink := parseSource(t, `int printf(char *fmt, ...);`)
	if sink.HasErrors() {
		t.Fatalf("unexpected errors: %+v", sink.Messages)
	}
	fd := prog.Decls[0].(*ast.FuncDecl)
	if !fd.Variadic {
		t.Fatalf("expected variadic prototype")
	}
	if fd.Body != nil {
		t.Fatalf("expected prototype-only declaration, body should be nil")
	}
}

func TestBinaryPrecedence(t *testing.T) {
	prog, sink := parseSource(t, `int f(void) { return 1 + 2 * 3; }`)
	if sink.HasErrors() {
		t.Fatalf("unexpected errors: %+v", sink.Messages)
	}
	fd := prog.Decls[0].(*ast.FuncDecl)
	ret := fd.Body.Stmts[0].(*ast.Return)
	bin, ok := ret.X.(*ast.Binary)
	if !ok || bin.Op != ast.Add {
		t.Fatalf("top-level op = %+v, want Add", ret.X)
	}
	rhs, ok := bin.Right.(*ast.Binary)
	if !ok || rhs.Op != ast.Mul {
		t.Fatalf("rhs = %+v, want a Mul node (* binds tighter than +)", bin.Right)
	}
}

func TestAssignmentInsertsImplicitCast(t *testing.T) {
	prog, sink := parseSource(t, `int f(void) { double d; d = 1; return 0; }`)
	if sink.HasErrors() {
		t.Fatalf("unexpected errors: %+v", sink.Messages)
	}
	fd := prog.Decls[0].(*ast.FuncDecl)
	exprStmt := fd.Body.Stmts[1].(*ast.ExprStmt)
	bin := exprStmt.X.(*ast.Binary)
	if bin.Op != ast.Assign {
		t.Fatalf("op = %v, want Assign", bin.Op)
	}
	cast, ok := bin.Right.(*ast.Cast)
	if !ok || !cast.Implicit {
		t.Fatalf("rhs = %+v, want an implicit Cast to double", bin.Right)
	}
}

func TestStructDeclarationAndFieldAccess(t *testing.T) {
	src := `
struct point { int x; int y; };
int f(void) {
	struct point p;
	p.x = 1;
	return p.x;
}
`
	prog, sink := parseSource(t, src)
	if sink.HasErrors() {
		t.Fatalf("unexpected errors: %+v", sink.Messages)
	}
	var fd *ast.FuncDecl
	for _, d := range prog.Decls {
		if f, ok := d.(*ast.FuncDecl); ok {
			fd = f
		}
	}
	if fd == nil {
		t.Fatalf("function declaration not found")
	}
	assign := fd.Body.Stmts[1].(*ast.ExprStmt).X.(*ast.Binary)
	field := assign.Left.(*ast.Field)
	if field.Name != "x" || field.Offset != 0 {
		t.Fatalf("field = %+v, want x at offset 0", field)
	}
}

func TestSwitchBreakContinueValidity(t *testing.T) {
	src := `
int f(int n) {
	switch (n) {
	case 1:
		break;
	default:
		break;
	}
	while (n) {
		continue;
	}
	return 0;
}
`
	_, sink := parseSource(t, src)
	if sink.HasErrors() {
		t.Fatalf("unexpected errors: %+v", sink.Messages)
	}
}

func TestBreakOutsideLoopIsError(t *testing.T) {
	_, sink := parseSource(t, `int f(void) { break; return 0; }`)
	if !sink.HasErrors() {
		t.Fatalf("expected an error for break outside a loop/switch")
	}
}

func TestGotoResolvesForwardLabel(t *testing.T) {
	src := `
int f(void) {
	goto done;
	return 1;
done:
	return 0;
}
`
	prog, sink := parseSource(t, src)
	if sink.HasErrors() {
		t.Fatalf("unexpected errors: %+v", sink.Messages)
	}
	fd := prog.Decls[0].(*ast.FuncDecl)
	g := fd.Body.Stmts[0].(*ast.Goto)
	if g.Label == nil {
		t.Fatalf("goto target should be resolved")
	}
}

func TestUndefinedGotoLabelIsError(t *testing.T) {
	_, sink := parseSource(t, `int f(void) { goto nowhere; return 0; }`)
	if !sink.HasErrors() {
		t.Fatalf("expected an error for an undefined goto label")
	}
}

func TestSizeofConstantFolding(t *testing.T) {
	prog, sink := parseSource(t, `int f(void) { int a[sizeof(int) + 1]; return 0; }`)
	if sink.HasErrors() {
		t.Fatalf("unexpected errors: %+v", sink.Messages)
	}
	fd := prog.Decls[0].(*ast.FuncDecl)
	decl := fd.Body.Stmts[0].(*ast.DeclStmt).D.(*ast.VarDecl)
	if !decl.Type.HasLen || decl.Type.Len != 5 {
		t.Fatalf("array type = %+v, want length 5", decl.Type)
	}
}

func TestInlineAsmPassthrough(t *testing.T) {
	prog, sink := parseSource(t, `int f(void) { __asm("nop"); return 0; }`)
	if sink.HasErrors() {
		t.Fatalf("unexpected errors: %+v", sink.Messages)
	}
	fd := prog.Decls[0].(*ast.FuncDecl)
	asmStmt, ok := fd.Body.Stmts[0].(*ast.Asm)
	if !ok || asmStmt.Text != "nop" {
		t.Fatalf("stmt = %+v, want Asm{Text: \"nop\"}", fd.Body.Stmts[0])
	}
}

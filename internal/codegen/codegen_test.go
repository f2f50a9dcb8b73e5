package codegen

import (
	"strings"
	"testing"

	"github.com/luchiel/smallc/internal/diag"
	"github.com/luchiel/smallc/internal/ir"
	"github.com/luchiel/smallc/internal/lexer"
	"github.com/luchiel/smallc/internal/parser"
)

func compile(t *testing.T, src string) *Program {
	t.Helper()
	sink := diag.NewCollectingSink()
	lx := lexer.New(strings.NewReader(src), "test.c", sink)
	p := parser.New(lx, "test.c", sink, parser.ResolveNames|parser.AddInitializers)
	prog := p.Parse()
	if sink.HasErrors() {
		t.Fatalf("unexpected parse errors: %+v", sink.Messages)
	}
	return New().Generate(prog)
}

func findOp(t *testing.T, code *ir.Code, op ir.Op) bool {
	t.Helper()
	for _, in := range code.Live() {
		if in.Op == op {
			return true
		}
	}
	return false
}

func TestGenerateReturnsOneFunctionPerDefinition(t *testing.T) {
	out := compile(t, `int f(void) { return 1; } int g(void) { return 2; }`)
	if len(out.Funcs) != 2 {
		t.Fatalf("got %d functions, want 2", len(out.Funcs))
	}
}

func TestFunctionStartsWithLabelAndEndsWithRet(t *testing.T) {
	out := compile(t, `int f(int a) { return a; }`)
	code := out.Funcs[0].Code.Live()
	if code[0].Op != ir.LABELDEF {
		t.Fatalf("first instruction = %+v, want a function label", code[0])
	}
	last := code[len(code)-1]
	if last.Op != ir.RET {
		t.Fatalf("last instruction = %+v, want RET", last)
	}
}

func TestMainGetsStackCorruptionCheck(t *testing.T) {
	out := compile(t, `int main(void) { return 0; }`)
	code := out.Funcs[0].Code
	if !findOp(t, code, ir.CMP) {
		t.Fatalf("main should compare esp against the saved value on exit")
	}
}

func TestNonMainHasNoStackCorruptionCheck(t *testing.T) {
	out := compile(t, `int f(void) { return 0; }`)
	code := out.Funcs[0].Code
	if findOp(t, code, ir.CMP) {
		t.Fatalf("non-main function should not compare esp")
	}
}

func TestStringLiteralCollected(t *testing.T) {
	out := compile(t, `int main(void) { printf("hi"); return 0; }`)
	if len(out.Strings) != 1 || out.Strings[0].Value != "hi" {
		t.Fatalf("Strings = %+v, want one literal \"hi\"", out.Strings)
	}
}

func TestBinaryExpressionEmitsArithmetic(t *testing.T) {
	out := compile(t, `int f(void) { return 1 + 2; }`)
	if !findOp(t, out.Funcs[0].Code, ir.ADD) {
		t.Fatalf("expected an ADD instruction for 1 + 2")
	}
}

func TestWhileLoopEmitsBackwardJump(t *testing.T) {
	out := compile(t, `int f(int n) { while (n) { n = n - 1; } return n; }`)
	if !findOp(t, out.Funcs[0].Code, ir.JMP) {
		t.Fatalf("expected an unconditional jump closing the loop body")
	}
}

func TestCallEmitsCallInstruction(t *testing.T) {
	out := compile(t, `int add(int a, int b) { return a + b; } int f(void) { return add(1, 2); }`)
	var code *ir.Code
	for _, fn := range out.Funcs {
		if fn.Decl.Name == "f" {
			code = fn.Code
		}
	}
	if code == nil {
		t.Fatalf("function f not generated")
	}
	if !findOp(t, code, ir.CALL) {
		t.Fatalf("expected a CALL instruction")
	}
}

package emit

import (
	"bytes"
	"strings"
	"testing"

	"github.com/luchiel/smallc/internal/codegen"
	"github.com/luchiel/smallc/internal/diag"
	"github.com/luchiel/smallc/internal/lexer"
	"github.com/luchiel/smallc/internal/parser"
)

func compileAndEmit(t *testing.T, src string) string {
	t.Helper()
	sink := diag.NewCollectingSink()
	lx := lexer.New(strings.NewReader(src), "test.c", sink)
	p := parser.New(lx, "test.c", sink, parser.ResolveNames|parser.AddInitializers)
	prog := p.Parse()
	if sink.HasErrors() {
		t.Fatalf("unexpected parse errors: %+v", sink.Messages)
	}
	out := codegen.New().Generate(prog)
	var buf bytes.Buffer
	if err := New(&buf).Write(out, p.Syms); err != nil {
		t.Fatalf("Write returned %v", err)
	}
	return buf.String()
}

func TestOutputHasPEHeader(t *testing.T) {
	text := compileAndEmit(t, `int main(void) { return 0; }`)
	for _, want := range []string{
		"format PE console",
		"entry _main",
		"include '%fasm%/include/win32a.inc'",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("output missing %q:\n%s", want, text)
		}
	}
}

func TestOutputHasThreeSections(t *testing.T) {
	text := compileAndEmit(t, `int main(void) { return 0; }`)
	for _, want := range []string{
		"section '.text' code executable",
		"section '.data' data readable writable",
		"section '.idata' data readable import",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("output missing section %q", want)
		}
	}
}

func TestOutputDeclaresStackCorruptionGlobals(t *testing.T) {
	text := compileAndEmit(t, `int main(void) { return 0; }`)
	if !strings.Contains(text, "_@main_esp dd ?") {
		t.Errorf("output missing _@main_esp global")
	}
	if !strings.Contains(text, "Stack corruption") {
		t.Errorf("output missing stack-corruption message")
	}
}

func TestOutputImportsKernel32AndMsvcrt(t *testing.T) {
	text := compileAndEmit(t, `int main(void) { return 0; }`)
	if !strings.Contains(text, "library kernel32, 'kernel32.dll', msvcrt, 'msvcrt.dll'") {
		t.Errorf("output missing library directive")
	}
	if !strings.Contains(text, "import kernel32, _ExitProcess, 'ExitProcess'") {
		t.Errorf("output missing ExitProcess import")
	}
	if !strings.Contains(text, "import msvcrt, _printf, 'printf'") {
		t.Errorf("output missing printf import")
	}
}

func TestOutputEmitsFunctionLabel(t *testing.T) {
	text := compileAndEmit(t, `int main(void) { return 0; }`)
	if !strings.Contains(text, "_main:") {
		t.Errorf("output missing _main label:\n%s", text)
	}
}

package lexer

import (
	"strings"
	"testing"

	"github.com/luchiel/smallc/internal/diag"
	"github.com/luchiel/smallc/internal/token"
)

func scanAll(t *testing.T, src string) ([]token.Token, *diag.CollectingSink) {
	t.Helper()
	sink := diag.NewCollectingSink()
	lx := New(strings.NewReader(src), "test.c", sink)
	var toks []token.Token
	for {
		tok := lx.Next()
		toks = append(toks, tok)
		if tok.Kind == token.EOS || tok.Kind == token.ERROR {
			break
		}
	}
	return toks, sink
}

func TestIdentifiersAndKeywords(t *testing.T) {
	toks, sink := scanAll(t, "int x = foo_bar;")
	if sink.Count() != 0 {
		t.Fatalf("unexpected errors: %+v", sink.Messages)
	}
	want := []token.Kind{token.INT, token.IDENT, token.ASSIGN, token.IDENT, token.SEMI, token.EOS}
	if len(toks) != len(want) {
		t.Fatalf("got %d tokens, want %d: %+v", len(toks), len(want), toks)
	}
	for i, k := range want {
		if toks[i].Kind != k {
			t.Errorf("token %d: got %s, want %s", i, toks[i].Kind, k)
		}
	}
	if toks[1].Value != "x" || toks[3].Value != "foo_bar" {
		t.Errorf("identifier values wrong: %+v", toks)
	}
}

func TestIntegerLiterals(t *testing.T) {
	cases := []struct {
		src  string
		want int64
	}{
		{"0", 0},
		{"42", 42},
		{"0x1F", 31},
		{"010", 8},
		{"0X10", 16},
	}
	for _, c := range cases {
		toks, sink := scanAll(t, c.src)
		if sink.Count() != 0 {
			t.Fatalf("%q: unexpected errors: %+v", c.src, sink.Messages)
		}
		if toks[0].Kind != token.INT_LIT || toks[0].IntVal != c.want {
			t.Errorf("%q: got %+v, want int %d", c.src, toks[0], c.want)
		}
	}
}

func TestFloatLiterals(t *testing.T) {
	toks, sink := scanAll(t, "3.14 2. .5 1e10 1.5e-3")
	if sink.Count() != 0 {
		t.Fatalf("unexpected errors: %+v", sink.Messages)
	}
	want := []float64{3.14, 2.0, 0.5, 1e10, 1.5e-3}
	for i, w := range want {
		if toks[i].Kind != token.FLOAT_LIT {
			t.Fatalf("token %d: got kind %s, want FLOAT_LIT", i, toks[i].Kind)
		}
		if toks[i].FltVal != w {
			t.Errorf("token %d: got %v, want %v", i, toks[i].FltVal, w)
		}
	}
}

func TestStringLiteralConcatenation(t *testing.T) {
	toks, sink := scanAll(t, `"ab" "cd"`)
	if sink.Count() != 0 {
		t.Fatalf("unexpected errors: %+v", sink.Messages)
	}
	if toks[0].Kind != token.STRING_LIT || toks[0].Value != "abcd" {
		t.Errorf("got %+v, want concatenated \"abcd\"", toks[0])
	}
}

func TestCharEscapes(t *testing.T) {
	cases := []struct {
		src  string
		want int64
	}{
		{`'a'`, 'a'},
		{`'\n'`, '\n'},
		{`'\0'`, 0},
		{`'\x41'`, 'A'},
		{`'\101'`, 'A'},
	}
	for _, c := range cases {
		toks, sink := scanAll(t, c.src)
		if sink.Count() != 0 {
			t.Fatalf("%q: unexpected errors: %+v", c.src, sink.Messages)
		}
		if toks[0].IntVal != c.want {
			t.Errorf("%q: got %d, want %d", c.src, toks[0].IntVal, c.want)
		}
	}
}

func TestPunctuatorLongestMatch(t *testing.T) {
	toks, sink := scanAll(t, "<<= << < <= ...")
	if sink.Count() != 0 {
		t.Fatalf("unexpected errors: %+v", sink.Messages)
	}
	want := []token.Kind{token.SHL_ASSIGN, token.SHL, token.LT, token.LE, token.ELLIPSIS, token.EOS}
	for i, k := range want {
		if toks[i].Kind != k {
			t.Errorf("token %d: got %s, want %s", i, toks[i].Kind, k)
		}
	}
}

func TestCommentsSkippedButTokenized(t *testing.T) {
	toks, sink := scanAll(t, "/* block */ x // line\ny")
	if sink.Count() != 0 {
		t.Fatalf("unexpected errors: %+v", sink.Messages)
	}
	var kinds []token.Kind
	for _, tk := range toks {
		kinds = append(kinds, tk.Kind)
	}
	want := []token.Kind{token.COMMENT, token.IDENT, token.COMMENT, token.IDENT, token.EOS}
	if len(kinds) != len(want) {
		t.Fatalf("got %v, want %v", kinds, want)
	}
	for i, k := range want {
		if kinds[i] != k {
			t.Errorf("token %d: got %s, want %s", i, kinds[i], k)
		}
	}
}

func TestUnterminatedStringHalts(t *testing.T) {
	toks, sink := scanAll(t, `"abc`)
	if sink.Count() != 1 {
		t.Fatalf("expected one error, got %+v", sink.Messages)
	}
	if toks[len(toks)-1].Kind != token.ERROR {
		t.Errorf("expected terminal ERROR token, got %+v", toks)
	}
}

func TestErrorHaltsSequence(t *testing.T) {
	sink := diag.NewCollectingSink()
	lx := New(strings.NewReader(`"abc` + "\nint x;"), "test.c", sink)
	first := lx.Next()
	if first.Kind != token.ERROR {
		t.Fatalf("expected ERROR, got %+v", first)
	}
	second := lx.Next()
	if second.Kind != token.ERROR {
		t.Fatalf("lexer did not halt: got %+v", second)
	}
}

func TestUnknownSuffixOnNumber(t *testing.T) {
	_, sink := scanAll(t, "123abc")
	if sink.Count() != 1 {
		t.Fatalf("expected one error, got %+v", sink.Messages)
	}
}

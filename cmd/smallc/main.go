// smallc is the command-line driver for the compiler: a thin dispatcher
// over the four debug modes spec.md §6 names, plus a `compile` mode that
// runs the full lexer → parser → codegen → optimizer → emitter pipeline
// and writes FASM assembly.
//
// Grounded on lang/yparse/main.go's flat os.Stdin/os.Stdout driver shape,
// extended to a mode-dispatching subcommand style the way lang/ya/main.go
// and lang/yasm/main.go pick their behavior from os.Args.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/luchiel/smallc/internal/ast"
	"github.com/luchiel/smallc/internal/codegen"
	"github.com/luchiel/smallc/internal/diag"
	"github.com/luchiel/smallc/internal/emit"
	"github.com/luchiel/smallc/internal/lexer"
	"github.com/luchiel/smallc/internal/parser"
	"github.com/luchiel/smallc/internal/peephole"
	"github.com/luchiel/smallc/internal/sym"
	"github.com/luchiel/smallc/internal/token"
)

func main() {
	flag.Usage = usage
	flag.Parse()
	args := flag.Args()
	if len(args) == 0 {
		usage()
		os.Exit(2)
	}

	mode := args[0]
	var file string
	if len(args) > 1 {
		file = args[1]
	}

	r, unit, err := openInput(file)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if rc, ok := r.(io.Closer); ok {
		defer rc.Close()
	}

	var runErr error
	switch mode {
	case "lex":
		runErr = runLex(r, unit)
	case "parse_expr":
		runErr = runParseExpr(r, unit)
	case "parse_stmt":
		runErr = runParseStmt(r, unit)
	case "parse":
		runErr = runParse(r, unit)
	case "compile":
		runErr = runCompile(r, unit)
	default:
		usage()
		os.Exit(2)
	}
	if runErr != nil {
		fmt.Fprintln(os.Stderr, runErr)
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: smallc <lex|parse_expr|parse_stmt|parse|compile> [file]")
}

func openInput(file string) (io.Reader, string, error) {
	if file == "" {
		return os.Stdin, "<stdin>", nil
	}
	f, err := os.Open(file)
	if err != nil {
		return nil, "", err
	}
	return f, file, nil
}

// runLex tokenizes the whole input and prints a tab-separated dump: one
// line per token, position/text/value/kind (spec.md §6's `lex` mode).
func runLex(r io.Reader, unit string) error {
	sink := diag.NewStderrSink()
	lx := lexer.New(r, unit, sink)
	for {
		tok := lx.Next()
		fmt.Println(tok.String())
		if tok.Kind == token.EOS || tok.Kind == token.ERROR {
			break
		}
	}
	return nil
}

func runParseExpr(r io.Reader, unit string) error {
	sink := diag.NewStderrSink()
	lx := lexer.New(r, unit, sink)
	p := parser.New(lx, unit, sink, 0)
	e := p.ParseExpr()
	if e == nil || sink.Count() > 0 {
		return fmt.Errorf("%d error(s) parsing expression", sink.Count())
	}
	dumpExpr(e, 0)
	return nil
}

func runParseStmt(r io.Reader, unit string) error {
	sink := diag.NewStderrSink()
	lx := lexer.New(r, unit, sink)
	p := parser.New(lx, unit, sink, 0)
	s := p.ParseStmt()
	if s == nil || sink.Count() > 0 {
		return fmt.Errorf("%d error(s) parsing statement", sink.Count())
	}
	dumpStmt(s, 0)
	return nil
}

func runParse(r io.Reader, unit string) error {
	sink := diag.NewStderrSink()
	lx := lexer.New(r, unit, sink)
	p := parser.New(lx, unit, sink, parser.ResolveNames|parser.AddInitializers)
	prog := p.Parse()
	if prog == nil || sink.Count() > 0 {
		return fmt.Errorf("%d error(s)", sink.Count())
	}
	dumpSymbols(p.Syms)
	for _, d := range prog.Decls {
		dumpDecl(d, 0)
	}
	return nil
}

func runCompile(r io.Reader, unit string) error {
	sink := diag.NewStderrSink()
	lx := lexer.New(r, unit, sink)
	p := parser.New(lx, unit, sink, parser.ResolveNames|parser.AddInitializers)
	prog := p.Parse()
	if prog == nil || sink.Count() > 0 {
		return fmt.Errorf("%d error(s)", sink.Count())
	}

	gen := codegen.New()
	out := gen.Generate(prog)
	for _, fn := range out.Funcs {
		peephole.Optimize(fn.Code, peephole.DefaultPatterns())
	}

	w := emit.New(os.Stdout)
	return w.Write(out, p.Syms)
}

// ---------------------------------------------------------------------
// Tree dump helpers for parse_expr/parse_stmt/parse (spec.md §6: "print
// the AST" / "print the resulting symbol table and program tree").
// ---------------------------------------------------------------------

func indent(n int) string {
	s := ""
	for i := 0; i < n; i++ {
		s += "  "
	}
	return s
}

func dumpSymbols(syms *sym.Table) {
	fmt.Println("symbols:")
	for _, s := range syms.FileScopeNames() {
		fmt.Printf("  %s %s\n", s.Name, kindName(s.Kind))
	}
}

func kindName(k sym.Kind) string {
	switch k {
	case sym.KindVar:
		return "var"
	case sym.KindFunc:
		return "func"
	case sym.KindConst:
		return "const"
	case sym.KindTypedef:
		return "typedef"
	case sym.KindEnumConst:
		return "enum-const"
	default:
		return "?"
	}
}

func dumpDecl(d ast.Decl, depth int) {
	switch n := d.(type) {
	case *ast.FuncDecl:
		fmt.Printf("%sFuncDecl %s\n", indent(depth), n.Name)
		if n.Body != nil {
			dumpStmt(n.Body, depth+1)
		}
	case *ast.VarDecl:
		fmt.Printf("%sVarDecl %s\n", indent(depth), n.Name)
	case *ast.StructDecl:
		fmt.Printf("%sStructDecl %s\n", indent(depth), n.Tag)
	case *ast.EnumDecl:
		fmt.Printf("%sEnumDecl %s\n", indent(depth), n.Tag)
	case *ast.TypedefDecl:
		fmt.Printf("%sTypedefDecl %s\n", indent(depth), n.Name)
	default:
		fmt.Printf("%sDecl\n", indent(depth))
	}
}

func dumpStmt(s ast.Stmt, depth int) {
	pad := indent(depth)
	switch n := s.(type) {
	case *ast.Block:
		fmt.Printf("%sBlock\n", pad)
		for _, st := range n.Stmts {
			dumpStmt(st, depth+1)
		}
	case *ast.ExprStmt:
		fmt.Printf("%sExprStmt\n", pad)
		if n.X != nil {
			dumpExpr(n.X, depth+1)
		}
	case *ast.DeclStmt:
		fmt.Printf("%sDeclStmt\n", pad)
		dumpDecl(n.D, depth+1)
	case *ast.If:
		fmt.Printf("%sIf\n", pad)
		dumpExpr(n.Cond, depth+1)
		dumpStmt(n.Then, depth+1)
		if n.Else != nil {
			dumpStmt(n.Else, depth+1)
		}
	case *ast.While:
		fmt.Printf("%sWhile\n", pad)
		dumpExpr(n.Cond, depth+1)
		dumpStmt(n.Body, depth+1)
	case *ast.DoWhile:
		fmt.Printf("%sDoWhile\n", pad)
		dumpStmt(n.Body, depth+1)
		dumpExpr(n.Cond, depth+1)
	case *ast.For:
		fmt.Printf("%sFor\n", pad)
		dumpStmt(n.Body, depth+1)
	case *ast.Switch:
		fmt.Printf("%sSwitch\n", pad)
		dumpExpr(n.Tag, depth+1)
	case *ast.Return:
		fmt.Printf("%sReturn\n", pad)
		if n.X != nil {
			dumpExpr(n.X, depth+1)
		}
	case *ast.Break:
		fmt.Printf("%sBreak\n", pad)
	case *ast.Continue:
		fmt.Printf("%sContinue\n", pad)
	case *ast.Goto:
		fmt.Printf("%sGoto %s\n", pad, n.Name)
	case *ast.LabelStmt:
		fmt.Printf("%sLabel %s\n", pad, n.Name)
		dumpStmt(n.Stmt, depth+1)
	case *ast.Asm:
		fmt.Printf("%sAsm %q\n", pad, n.Text)
	case *ast.Empty:
		fmt.Printf("%sEmpty\n", pad)
	default:
		fmt.Printf("%sStmt\n", pad)
	}
}

func dumpExpr(e ast.Expr, depth int) {
	pad := indent(depth)
	switch n := e.(type) {
	case *ast.Literal:
		fmt.Printf("%sLiteral\n", pad)
	case *ast.Ident:
		fmt.Printf("%sIdent %s\n", pad, n.Name)
	case *ast.Binary:
		fmt.Printf("%sBinary\n", pad)
		dumpExpr(n.Left, depth+1)
		dumpExpr(n.Right, depth+1)
	case *ast.Unary:
		fmt.Printf("%sUnary\n", pad)
		dumpExpr(n.Operand, depth+1)
	case *ast.Ternary:
		fmt.Printf("%sTernary\n", pad)
		dumpExpr(n.Cond, depth+1)
		dumpExpr(n.Then, depth+1)
		dumpExpr(n.Else, depth+1)
	case *ast.Cast:
		fmt.Printf("%sCast implicit=%v\n", pad, n.Implicit)
		dumpExpr(n.Operand, depth+1)
	case *ast.Index:
		fmt.Printf("%sIndex\n", pad)
		dumpExpr(n.Base, depth+1)
		dumpExpr(n.Idx, depth+1)
	case *ast.Field:
		fmt.Printf("%sField %s\n", pad, n.Name)
		dumpExpr(n.Base, depth+1)
	case *ast.Call:
		fmt.Printf("%sCall\n", pad)
		dumpExpr(n.Fn, depth+1)
		for _, a := range n.Args {
			dumpExpr(a, depth+1)
		}
	case *ast.SizeofType:
		fmt.Printf("%sSizeofType\n", pad)
	case *ast.SizeofExpr:
		fmt.Printf("%sSizeofExpr\n", pad)
		dumpExpr(n.Operand, depth+1)
	case *ast.ArrayInit:
		fmt.Printf("%sArrayInit\n", pad)
		for _, el := range n.Elems {
			dumpExpr(el, depth+1)
		}
	default:
		fmt.Printf("%sExpr\n", pad)
	}
}

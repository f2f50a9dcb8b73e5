// Package emit writes a Generator's output as FASM assembly text, in the
// exact section layout spec.md §6 specifies: a PE console executable with
// .text/.data/.idata sections and a win32a.inc include.
//
// Grounded on lang/ygen/emit.go's Emitter (a bufio.Writer wrapped with
// named helper methods for each instruction shape), adapted from wut4's
// custom-CPU assembly dialect to FASM/Intel syntax and its three-section PE
// layout.
package emit

import (
	"bufio"
	"fmt"
	"io"
	"sort"

	"github.com/luchiel/smallc/internal/codegen"
	"github.com/luchiel/smallc/internal/ir"
	"github.com/luchiel/smallc/internal/sym"
)

// Emitter writes FASM text for one compiled program to an io.Writer.
type Emitter struct {
	w *bufio.Writer
}

func New(w io.Writer) *Emitter {
	return &Emitter{w: bufio.NewWriter(w)}
}

// Write renders prog (the code generator's output) plus the root symbol
// table's global/static data and extern declarations as a complete FASM
// source file, and flushes the underlying writer.
func (e *Emitter) Write(prog *codegen.Program, syms *sym.Table) error {
	e.header()
	e.textSection(prog)
	e.dataSection(prog, syms)
	e.idataSection(syms)
	return e.w.Flush()
}

func (e *Emitter) header() {
	fmt.Fprintln(e.w, "format PE console")
	fmt.Fprintln(e.w, "entry _main")
	e.w.WriteString("include '%fasm%/include/win32a.inc'\n")
	fmt.Fprintln(e.w)
}

func (e *Emitter) textSection(prog *codegen.Program) {
	fmt.Fprintln(e.w, "section '.text' code executable")
	for _, fn := range prog.Funcs {
		fmt.Fprintf(e.w, "  ; function %s\n", fn.Decl.Name)
		for _, in := range fn.Code.Live() {
			e.instruction(in)
		}
	}
	fmt.Fprintln(e.w)
}

func (e *Emitter) instruction(in ir.Instruction) {
	switch in.Op {
	case ir.LABELDEF:
		if len(in.Text) > 0 && in.Text[0] == '.' {
			fmt.Fprintf(e.w, "  %s:\n", in.Text)
		} else {
			fmt.Fprintf(e.w, "%s:\n", in.Text)
		}
		return
	case ir.ASMTEXT:
		fmt.Fprintf(e.w, "  %s\n", in.Text)
		return
	}
	mnemonic := fasmMnemonic(in.Op)
	switch in.NumOperands {
	case 0:
		fmt.Fprintf(e.w, "  %s\n", mnemonic)
	case 1:
		fmt.Fprintf(e.w, "  %s %s\n", mnemonic, operandText(in.Dst))
	case 2:
		fmt.Fprintf(e.w, "  %s %s, %s\n", mnemonic, operandText(in.Dst), operandText(in.Src))
	}
}

// fasmMnemonic maps the shared Op catalog to FASM's Intel-syntax spelling:
// every opcode is its Go constant name in lowercase.
func fasmMnemonic(op ir.Op) string {
	switch op {
	case ir.LABELDEF, ir.ASMTEXT:
		return ""
	default:
		s := op.String()
		return toLower(s)
	}
}

func toLower(s string) string {
	b := []byte(s)
	for i, c := range b {
		if c >= 'A' && c <= 'Z' {
			b[i] = c - 'A' + 'a'
		}
	}
	return string(b)
}

// operandText renders one operand exactly as FASM expects it: bare
// register/immediate, a bracketed memory reference with size qualifier,
// a local numeric label, or an extern reference in `[_name]` form (the
// `[` form is only used for extern calls, handled at the call site in
// codegen by choosing TextLabel vs an indirect form — here every text
// label is rendered plain, since codegen already encodes direct vs
// indirect call targets through the instruction it emits).
func operandText(o ir.Operand) string {
	switch o.Kind {
	case ir.OpReg:
		return o.Reg.String()
	case ir.OpImm:
		if o.IsFloatImm {
			return fmt.Sprintf("%g", o.Flt)
		}
		return fmt.Sprintf("%d", o.Imm)
	case ir.OpMem:
		return memText(o)
	case ir.OpNumLabel:
		return o.Label
	case ir.OpTextLabel:
		return o.Label
	default:
		return ""
	}
}

func memText(o ir.Operand) string {
	s := ""
	if o.MemSize != ir.SizeNone {
		s += o.MemSize.String() + " "
	}
	if o.Base == ir.NoReg && o.Label != "" {
		return s + "[" + o.Label + "]"
	}
	s += "["
	s += o.Base.String()
	if o.Scale != 0 && o.Index != ir.NoReg {
		s += fmt.Sprintf("+%s*%d", o.Index.String(), o.Scale)
	}
	if o.Offset > 0 {
		s += fmt.Sprintf("+%d", o.Offset)
	} else if o.Offset < 0 {
		s += fmt.Sprintf("%d", o.Offset)
	}
	return s + "]"
}

// dataSection emits the fixed stack-corruption-check globals spec.md §6
// names, plus every string literal the generator collected and every
// global/static variable the root symbol table holds.
func (e *Emitter) dataSection(prog *codegen.Program, syms *sym.Table) {
	fmt.Fprintln(e.w, "section '.data' data readable writable")
	fmt.Fprintln(e.w, "_@main_esp dd ?")
	fmt.Fprintln(e.w, `_@stack_corruption_msg db "Stack corruption",10,0`)

	for _, lbl := range literalLabels(prog) {
		fmt.Fprintf(e.w, "%s db %s,0\n", lbl.Label, byteList(lbl.Value))
	}

	for _, s := range syms.FileScopeNames() {
		if s.Kind != sym.KindVar || s.Storage == sym.StorageLocal || s.Storage == sym.StorageParam {
			continue
		}
		if !s.Defined {
			continue
		}
		size := 4
		if s.Type != nil {
			size = s.Type.Size()
		}
		fmt.Fprintf(e.w, "%s db %d dup(0)\n", s.Label, size)
	}
	fmt.Fprintln(e.w)
}

func literalLabels(prog *codegen.Program) []codegen.StringLiteral {
	return prog.Strings
}

func byteList(s string) string {
	out := ""
	for i := 0; i < len(s); i++ {
		if i > 0 {
			out += ","
		}
		out += fmt.Sprintf("%d", s[i])
	}
	if out == "" {
		return "0"
	}
	return out
}

// idataSection emits the import table: kernel32's ExitProcess (required by
// main's stack-corruption exit path) plus msvcrt's printf and every other
// extern function the program actually declared, sorted by name.
func (e *Emitter) idataSection(syms *sym.Table) {
	fmt.Fprintln(e.w, "section '.idata' data readable import")

	externs := externNames(syms)
	sort.Strings(externs)

	fmt.Fprintln(e.w, "library kernel32, 'kernel32.dll', msvcrt, 'msvcrt.dll'")
	fmt.Fprintln(e.w, "import kernel32, _ExitProcess, 'ExitProcess'")
	seen := map[string]bool{"printf": true}
	fmt.Fprintln(e.w, "import msvcrt, _printf, 'printf'")
	for _, name := range externs {
		if seen[name] {
			continue
		}
		seen[name] = true
		fmt.Fprintf(e.w, "import msvcrt, _%s, '%s'\n", name, name)
	}
}

func externNames(syms *sym.Table) []string {
	var out []string
	for _, s := range syms.FileScopeNames() {
		if s.Kind == sym.KindFunc && !s.Defined && s.Name != "printf" {
			out = append(out, s.Name)
		}
	}
	return out
}

// Package ir defines the operand and instruction model shared by the code
// generator, the peephole optimizer, and the FASM emitter (spec.md §3/§6):
// x86 instructions over a small fixed catalog of operand shapes.
//
// Grounded on lang/ygen/emit.go's instruction-helper style (Ldi/Ldw/Add/...)
// and lang/ypeep/ypeep.go's Line/LineKind representation, merged into one
// in-memory struct instead of wut4's text-line-per-pass design, since
// spec.md's peephole optimizer (§4.4) must inspect and rewrite operands
// structurally, not by re-parsing assembly text.
package ir

import "fmt"

// Reg is an x86 32-bit general-purpose register. The x87 FPU stack has no
// Reg value; FPU instructions address it implicitly or through memory.
type Reg int

const (
	NoReg Reg = iota
	EAX
	EBX
	ECX
	EDX
	ESI
	EDI
	EBP
	ESP
)

func (r Reg) String() string {
	names := [...]string{"", "eax", "ebx", "ecx", "edx", "esi", "edi", "ebp", "esp"}
	if int(r) < len(names) {
		return names[r]
	}
	return fmt.Sprintf("reg%d", int(r))
}

// Size qualifies the width of a memory access, per FASM's byte/word/dword
// size-override syntax.
type Size int

const (
	SizeNone Size = iota
	Byte
	Word
	Dword
	Qword
)

func (s Size) String() string {
	switch s {
	case Byte:
		return "byte"
	case Word:
		return "word"
	case Dword:
		return "dword"
	case Qword:
		return "qword"
	default:
		return ""
	}
}

// OperandKind distinguishes the five operand shapes spec.md §3 names.
type OperandKind int

const (
	OpNone OperandKind = iota
	OpReg
	OpImm
	OpMem
	OpNumLabel // internal jump target, e.g. ".L3"
	OpTextLabel // exported symbol reference, e.g. a global variable or function name
)

// Operand is a single instruction operand. Only the fields relevant to Kind
// are populated, mirroring the single-struct-many-shapes pattern used
// throughout the type system and AST packages in this module.
type Operand struct {
	Kind OperandKind

	Reg Reg // OpReg, and the Base/Index of OpMem

	Imm int64 // OpImm
	Flt float64
	IsFloatImm bool

	// OpMem: [Base + Index*Scale + Offset], any of Base/Index optional.
	Base   Reg
	Index  Reg
	Scale  int // 1, 2, 4, or 8; 0 means Index is unused
	Offset int32
	MemSize Size

	// OpNumLabel, OpTextLabel
	Label string
}

func Register(r Reg) Operand { return Operand{Kind: OpReg, Reg: r} }

func Imm(v int64) Operand { return Operand{Kind: OpImm, Imm: v} }

func ImmFloat(v float64) Operand { return Operand{Kind: OpImm, Flt: v, IsFloatImm: true} }

// Mem builds a memory operand [base + index*scale + offset].
func Mem(size Size, base Reg, index Reg, scale int, offset int32) Operand {
	return Operand{Kind: OpMem, MemSize: size, Base: base, Index: index, Scale: scale, Offset: offset}
}

// MemOf is the common case: [base + offset], e.g. a local variable slot.
func MemOf(size Size, base Reg, offset int32) Operand {
	return Mem(size, base, NoReg, 0, offset)
}

func NumLabel(name string) Operand { return Operand{Kind: OpNumLabel, Label: name} }

func TextLabel(name string) Operand { return Operand{Kind: OpTextLabel, Label: name} }

// Aliases reports whether two operands refer to the same storage: both must
// be memory operands with identical base, index, scale and offset. Two
// references off the same base at different offsets (e.g. [ebp-4] and
// [ebp-8]) are reported as not aliasing, and overlap between accesses of
// different widths is not detected (spec.md §9's peephole aliasing precondition
// the REDESIGN FLAG calls out, resolved in SPEC_FULL.md §4 by implementing
// this check rather than leaving it unchecked).
func (o Operand) Aliases(other Operand) bool {
	if o.Kind != OpMem || other.Kind != OpMem {
		return false
	}
	if o.Base != other.Base {
		return false
	}
	// Only an identical address counts as aliasing.
	return o.Index == other.Index && o.Scale == other.Scale && o.Offset == other.Offset
}

// ClobbersBase reports whether writing to dst would change the address that
// src depends on as a memory base/index register.
func ClobbersBase(dst Operand, src Operand) bool {
	if dst.Kind != OpReg {
		return false
	}
	if src.Kind != OpMem {
		return false
	}
	return src.Base == dst.Reg || (src.Scale != 0 && src.Index == dst.Reg)
}

func (o Operand) String() string {
	switch o.Kind {
	case OpReg:
		return o.Reg.String()
	case OpImm:
		if o.IsFloatImm {
			return fmt.Sprintf("%g", o.Flt)
		}
		return fmt.Sprintf("%d", o.Imm)
	case OpMem:
		s := ""
		if o.MemSize != SizeNone {
			s += o.MemSize.String() + " "
		}
		s += "["
		s += o.Base.String()
		if o.Scale != 0 && o.Index != NoReg {
			s += fmt.Sprintf("+%s*%d", o.Index, o.Scale)
		}
		if o.Offset != 0 {
			if o.Offset > 0 {
				s += fmt.Sprintf("+%d", o.Offset)
			} else {
				s += fmt.Sprintf("%d", o.Offset)
			}
		}
		return s + "]"
	case OpNumLabel, OpTextLabel:
		return o.Label
	default:
		return "<none>"
	}
}

// Op is the x86 mnemonic catalog the generator and emitter use. Only the
// instructions THE CORE's codegen (spec.md §4.3) and peephole (§4.4)
// actually produce are named; this is not a full x86 ISA.
type Op int

const (
	NOP Op = iota
	MOV
	LEA
	PUSH
	POP
	ADD
	SUB
	IMUL
	IDIV
	CDQ
	AND
	OR
	XOR
	NOT
	NEG
	SHL
	SHR
	SAR
	CMP
	TEST
	JMP
	JE
	JNE
	JL
	JLE
	JG
	JGE
	JB
	JBE
	JA
	JAE
	CALL
	RET
	LABELDEF // defines a numeric/text label at this position, no emitted code
	FLD
	FSTP
	FADDP
	FSUBP
	FMULP
	FDIVP
	FCOMPP
	FILD
	FISTP
	ASMTEXT // verbatim passthrough line, from __asm()
)

//go:generate go run golang.org/x/tools/cmd/stringer -type Op -output op_string.go

// Instruction is one emitted x86 instruction (or pseudo-instruction, for
// LABELDEF/ASMTEXT), with up to two operands, matching the fixed arity
// every instruction this generator produces actually needs.
type Instruction struct {
	Op       Op
	Dst, Src Operand
	NumOperands int // 0, 1, or 2 — how many of Dst/Src are meaningful
	Comment  string
	Text     string // ASMTEXT verbatim line; label name for LABELDEF
	// Deleted marks an instruction the peephole optimizer has removed in
	// place, without shifting slice indices (spec.md §4.4's in-place
	// rewrite contract).
	Deleted bool
}

func Inst0(op Op) Instruction { return Instruction{Op: op, NumOperands: 0} }

func Inst1(op Op, dst Operand) Instruction {
	return Instruction{Op: op, Dst: dst, NumOperands: 1}
}

func Inst2(op Op, dst, src Operand) Instruction {
	return Instruction{Op: op, Dst: dst, Src: src, NumOperands: 2}
}

func Label(name string) Instruction {
	return Instruction{Op: LABELDEF, Text: name, NumOperands: 0}
}

func AsmText(text string) Instruction {
	return Instruction{Op: ASMTEXT, Text: text, NumOperands: 0}
}

// Code is an in-memory instruction stream for one function or the program's
// top-level init sequence, the unit the peephole optimizer operates over
// (spec.md §4.4: "operates on Code.text in place").
type Code struct {
	Text []Instruction
}

func (c *Code) Emit(i Instruction) { c.Text = append(c.Text, i) }

// Live returns the non-Deleted instructions, in order — what the emitter
// actually writes out after peephole optimization has run.
func (c *Code) Live() []Instruction {
	out := make([]Instruction, 0, len(c.Text))
	for _, i := range c.Text {
		if !i.Deleted {
			out = append(out, i)
		}
	}
	return out
}

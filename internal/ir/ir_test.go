package ir

import "testing"

func TestOperandAliasing(t *testing.T) {
	a := MemOf(Dword, EBP, -4)
	b := MemOf(Dword, EBP, -4)
	c := MemOf(Dword, EBP, -8)
	if !a.Aliases(b) {
		t.Errorf("identical memory operands should alias")
	}
	if a.Aliases(c) {
		t.Errorf("distinct fixed offsets off the same base should not alias")
	}
	reg := Register(EAX)
	if reg.Aliases(a) {
		t.Errorf("a register operand never aliases memory")
	}
}

func TestClobbersBase(t *testing.T) {
	src := MemOf(Dword, EBX, 4)
	if !ClobbersBase(Register(EBX), src) {
		t.Errorf("writing EBX should clobber a memory operand based on EBX")
	}
	if ClobbersBase(Register(EAX), src) {
		t.Errorf("writing EAX should not clobber a memory operand based on EBX")
	}
}

func TestCodeLiveSkipsDeleted(t *testing.T) {
	c := &Code{}
	c.Emit(Inst2(MOV, Register(EAX), Imm(1)))
	c.Emit(Inst2(MOV, Register(EBX), Imm(2)))
	c.Text[0].Deleted = true
	live := c.Live()
	if len(live) != 1 || live[0].Src.Imm != 2 {
		t.Fatalf("Live() = %+v, want only the second instruction", live)
	}
}

func TestInstructionConstructorsSetArity(t *testing.T) {
	if i := Inst0(RET); i.NumOperands != 0 {
		t.Errorf("Inst0 arity = %d, want 0", i.NumOperands)
	}
	if i := Inst1(PUSH, Register(EAX)); i.NumOperands != 1 {
		t.Errorf("Inst1 arity = %d, want 1", i.NumOperands)
	}
	if i := Inst2(MOV, Register(EAX), Register(EBX)); i.NumOperands != 2 {
		t.Errorf("Inst2 arity = %d, want 2", i.NumOperands)
	}
}

func TestOperandStringForms(t *testing.T) {
	if got := Register(EAX).String(); got != "eax" {
		t.Errorf("Register(EAX).String() = %q, want eax", got)
	}
	if got := Imm(5).String(); got != "5" {
		t.Errorf("Imm(5).String() = %q, want 5", got)
	}
	if got := MemOf(Dword, EBP, -4).String(); got != "dword [ebp-4]" {
		t.Errorf("MemOf(...).String() = %q, want %q", got, "dword [ebp-4]")
	}
}

// Package codegen implements the x86 code generator of spec.md §4.3: a
// stack-oriented evaluation model where every expression value is pushed
// onto the runtime stack, with x87 FPU instructions for double operands.
//
// Grounded on lang/ysem/ir.go's IRGen walker (newTemp/emit/genExpr-style
// AST-to-instruction traversal) and lang/ygen/emit.go's named
// instruction-helper style, merged into a single pass emitting
// internal/ir.Instruction values directly instead of wut4's two-stage
// IR-then-assembly pipeline, since this target has no separate register
// allocator pass (spec.md §4.3: "stack-oriented", no register allocation).
package codegen

import (
	"fmt"

	"github.com/luchiel/smallc/internal/ast"
	"github.com/luchiel/smallc/internal/ir"
	"github.com/luchiel/smallc/internal/sym"
	"github.com/luchiel/smallc/internal/types"
)

// Generator walks a parsed, type-checked Program and produces one Code
// stream per function plus a shared stream of string/data literals.
type Generator struct {
	labelCounter int

	// breakTargets/continueTargets are stacks of numeric labels the
	// innermost enclosing loop/switch jumps to, mirroring the teacher's
	// approach of threading loop exit labels through genWhile/genFor rather
	// than unwinding an explicit scope object.
	breakTargets    []string
	continueTargets []string

	strings []StringLiteral

	inMain bool // the function being generated is main
}

// StringLiteral is one string constant the generator collected while
// lowering a function; the emitter turns these into .data directives.
type StringLiteral struct {
	Label string
	Value string
}

func New() *Generator { return &Generator{} }

func (g *Generator) newLabel(prefix string) string {
	g.labelCounter++
	return fmt.Sprintf(".L%s%d", prefix, g.labelCounter)
}

// Program is the generator's output: one Code stream per function plus the
// collected string-literal pool, ready for the peephole pass and emitter.
type Program struct {
	Funcs   []*Function
	Strings []StringLiteral
}

// Function pairs a source FuncDecl with its generated instruction stream.
type Function struct {
	Decl *ast.FuncDecl
	Code *ir.Code
}

// Generate lowers every function definition in prog to x86 instructions.
// Prototype-only declarations and non-function top-level declarations
// produce no code here — globals are emitted directly by the FASM writer
// from the symbol table, per spec.md §6's data-section layout.
func (g *Generator) Generate(prog *ast.Program) *Program {
	out := &Program{}
	for _, d := range prog.Decls {
		fd, ok := d.(*ast.FuncDecl)
		if !ok || fd.Body == nil {
			continue
		}
		out.Funcs = append(out.Funcs, g.genFunc(fd))
	}
	out.Strings = g.strings
	return out
}

// genFunc emits one function's prologue, body, and epilogue. main() gets
// the stack-corruption check spec.md §4.3 and §6 both call for: ESP is
// saved at entry and compared at exit before returning to the CRT.
func (g *Generator) genFunc(fd *ast.FuncDecl) *Function {
	c := &ir.Code{}
	label := "_" + fd.Name

	c.Emit(ir.Label(label))
	c.Emit(ir.Inst1(ir.PUSH, ir.Register(ir.EBP)))
	c.Emit(ir.Inst2(ir.MOV, ir.Register(ir.EBP), ir.Register(ir.ESP)))
	if fd.FrameSize > 0 {
		c.Emit(ir.Inst2(ir.SUB, ir.Register(ir.ESP), ir.Imm(int64(fd.FrameSize))))
	}

	isMain := fd.Name == "main"
	g.inMain = isMain
	if isMain {
		c.Emit(ir.Inst2(ir.MOV, ir.Operand{Kind: ir.OpMem, MemSize: ir.Dword, Base: ir.NoReg, Label: "_@main_esp"}, ir.Register(ir.ESP)))
	}

	for _, s := range fd.Body.Stmts {
		g.genStmt(c, s)
	}

	// Fall-through return: C permits omitting a final `return` in a
	// non-void function, with undefined result; emit a bare epilogue.
	g.emitEpilogue(c, isMain)
	return &Function{Decl: fd, Code: c}
}

// emitEpilogue writes the shared function exit sequence. main gets the
// stack-corruption assertion spec.md §4.3/§6 call for: on mismatch it
// prints the fixed message and exits the process directly rather than
// falling through to ret, since a corrupted stack can no longer be trusted
// to return correctly to the CRT startup code.
func (g *Generator) emitEpilogue(c *ir.Code, isMain bool) {
	if isMain {
		okLabel := g.newLabel("mainok")
		c.Emit(ir.Inst2(ir.CMP, ir.Register(ir.ESP), ir.Operand{Kind: ir.OpMem, MemSize: ir.Dword, Base: ir.NoReg, Label: "_@main_esp"}))
		c.Emit(ir.Inst1(ir.JE, ir.NumLabel(okLabel)))
		c.Emit(ir.Inst1(ir.PUSH, ir.TextLabel("_@stack_corruption_msg")))
		c.Emit(ir.Inst1(ir.CALL, ir.Operand{Kind: ir.OpMem, Base: ir.NoReg, Label: "_printf"}))
		c.Emit(ir.Inst2(ir.ADD, ir.Register(ir.ESP), ir.Imm(4)))
		c.Emit(ir.Inst1(ir.PUSH, ir.Imm(0)))
		c.Emit(ir.Inst1(ir.CALL, ir.Operand{Kind: ir.OpMem, Base: ir.NoReg, Label: "_ExitProcess"}))
		c.Emit(ir.Label(okLabel))
	}
	c.Emit(ir.Inst2(ir.MOV, ir.Register(ir.ESP), ir.Register(ir.EBP)))
	c.Emit(ir.Inst1(ir.POP, ir.Register(ir.EBP)))
	c.Emit(ir.Inst0(ir.RET))
}

// ---------------------------------------------------------------------
// Statements
// ---------------------------------------------------------------------

func (g *Generator) genStmt(c *ir.Code, s ast.Stmt) {
	switch n := s.(type) {
	case *ast.Block:
		for _, st := range n.Stmts {
			g.genStmt(c, st)
		}
	case *ast.DeclStmt:
		g.genDeclStmt(c, n)
	case *ast.ExprStmt:
		if n.X != nil {
			g.genExpr(c, n.X, false)
		}
	case *ast.If:
		g.genIf(c, n)
	case *ast.While:
		g.genWhile(c, n)
	case *ast.DoWhile:
		g.genDoWhile(c, n)
	case *ast.For:
		g.genFor(c, n)
	case *ast.Switch:
		g.genSwitch(c, n)
	case *ast.Return:
		g.genReturn(c, n)
	case *ast.Break:
		if len(g.breakTargets) > 0 {
			c.Emit(ir.Inst1(ir.JMP, ir.NumLabel(g.breakTargets[len(g.breakTargets)-1])))
		}
	case *ast.Continue:
		if len(g.continueTargets) > 0 {
			c.Emit(ir.Inst1(ir.JMP, ir.NumLabel(g.continueTargets[len(g.continueTargets)-1])))
		}
	case *ast.Goto:
		if lbl, ok := n.Label.(*sym.Label); ok {
			c.Emit(ir.Inst1(ir.JMP, ir.NumLabel(fmt.Sprintf(".LBL%d", lbl.Id))))
		}
	case *ast.LabelStmt:
		if lbl, ok := n.Label.(*sym.Label); ok {
			c.Emit(ir.Label(fmt.Sprintf(".LBL%d", lbl.Id)))
		}
		g.genStmt(c, n.Stmt)
	case *ast.Asm:
		c.Emit(ir.AsmText(n.Text))
	case *ast.Empty:
		// no code
	}
}

func (g *Generator) genDeclStmt(c *ir.Code, n *ast.DeclStmt) {
	vd, ok := n.D.(*ast.VarDecl)
	if !ok || vd.Init == nil {
		return
	}
	s, _ := vd.Sym.(*sym.Symbol)
	if s == nil {
		return
	}
	g.genAssignTo(c, s, vd.Init)
}

// genAssignTo stores the value of init into the local/param symbol s,
// reused by both local-declaration initializers and plain assignment.
func (g *Generator) genAssignTo(c *ir.Code, s *sym.Symbol, init ast.Expr) {
	if init, ok := init.(*ast.ArrayInit); ok {
		g.genArrayInit(c, s, init)
		return
	}
	g.genExpr(c, init, true)
	dst := localOperand(s, sizeOf(s.Type))
	if s.Type.Kind == types.Double {
		c.Emit(ir.Inst1(ir.FLD, ir.Mem(ir.Qword, ir.ESP, ir.NoReg, 0, 0)))
		c.Emit(ir.Inst1(ir.FSTP, dst))
		c.Emit(ir.Inst2(ir.ADD, ir.Register(ir.ESP), ir.Imm(8)))
		return
	}
	c.Emit(ir.Inst1(ir.POP, ir.Register(ir.EAX)))
	c.Emit(ir.Inst2(ir.MOV, dst, ir.Register(ir.EAX)))
}

func (g *Generator) genArrayInit(c *ir.Code, s *sym.Symbol, init *ast.ArrayInit) {
	elemSize := 4
	if s.Type.Kind == types.Array {
		elemSize = sizeOf(s.Type.Elem)
	}
	for i, e := range init.Elems {
		g.genExpr(c, e, true)
		c.Emit(ir.Inst1(ir.POP, ir.Register(ir.EAX)))
		dst := ir.MemOf(sizeQualifier(elemSize), ir.EBP, int32(s.FrameOffset+i*elemSize))
		c.Emit(ir.Inst2(ir.MOV, dst, ir.Register(ir.EAX)))
	}
}

func (g *Generator) genIf(c *ir.Code, n *ast.If) {
	elseLabel := g.newLabel("else")
	endLabel := elseLabel
	if n.Else != nil {
		endLabel = g.newLabel("endif")
	}
	g.genBranchIfZero(c, n.Cond, elseLabel)
	g.genStmt(c, n.Then)
	if n.Else != nil {
		c.Emit(ir.Inst1(ir.JMP, ir.NumLabel(endLabel)))
		c.Emit(ir.Label(elseLabel))
		g.genStmt(c, n.Else)
	}
	c.Emit(ir.Label(endLabel))
}

func (g *Generator) genWhile(c *ir.Code, n *ast.While) {
	top := g.newLabel("whiletop")
	end := g.newLabel("whileend")
	g.breakTargets = append(g.breakTargets, end)
	g.continueTargets = append(g.continueTargets, top)

	c.Emit(ir.Label(top))
	g.genBranchIfZero(c, n.Cond, end)
	g.genStmt(c, n.Body)
	c.Emit(ir.Inst1(ir.JMP, ir.NumLabel(top)))
	c.Emit(ir.Label(end))

	g.breakTargets = g.breakTargets[:len(g.breakTargets)-1]
	g.continueTargets = g.continueTargets[:len(g.continueTargets)-1]
}

func (g *Generator) genDoWhile(c *ir.Code, n *ast.DoWhile) {
	top := g.newLabel("dotop")
	contLabel := g.newLabel("docont")
	end := g.newLabel("doend")
	g.breakTargets = append(g.breakTargets, end)
	g.continueTargets = append(g.continueTargets, contLabel)

	c.Emit(ir.Label(top))
	g.genStmt(c, n.Body)
	c.Emit(ir.Label(contLabel))
	g.genBranchIfNonZeroGoto(c, n.Cond, top)
	c.Emit(ir.Label(end))

	g.breakTargets = g.breakTargets[:len(g.breakTargets)-1]
	g.continueTargets = g.continueTargets[:len(g.continueTargets)-1]
}

func (g *Generator) genFor(c *ir.Code, n *ast.For) {
	if n.Init != nil {
		g.genStmt(c, n.Init)
	}
	top := g.newLabel("fortop")
	contLabel := g.newLabel("forcont")
	end := g.newLabel("forend")
	g.breakTargets = append(g.breakTargets, end)
	g.continueTargets = append(g.continueTargets, contLabel)

	c.Emit(ir.Label(top))
	if n.Cond != nil {
		g.genBranchIfZero(c, n.Cond, end)
	}
	g.genStmt(c, n.Body)
	c.Emit(ir.Label(contLabel))
	if n.Post != nil {
		g.genExpr(c, n.Post, false)
	}
	c.Emit(ir.Inst1(ir.JMP, ir.NumLabel(top)))
	c.Emit(ir.Label(end))

	g.breakTargets = g.breakTargets[:len(g.breakTargets)-1]
	g.continueTargets = g.continueTargets[:len(g.continueTargets)-1]
}

func (g *Generator) genSwitch(c *ir.Code, n *ast.Switch) {
	end := g.newLabel("switchend")
	g.breakTargets = append(g.breakTargets, end)

	g.genExpr(c, n.Tag, true)
	c.Emit(ir.Inst1(ir.POP, ir.Register(ir.EAX)))

	var caseLabels []string
	defaultLabel := ""
	for _, cs := range n.Cases {
		lbl := g.newLabel("case")
		caseLabels = append(caseLabels, lbl)
		if cs.Value == nil {
			defaultLabel = lbl
			continue
		}
		val := constIntValue(cs.Value)
		c.Emit(ir.Inst2(ir.CMP, ir.Register(ir.EAX), ir.Imm(val)))
		c.Emit(ir.Inst1(ir.JE, ir.NumLabel(lbl)))
	}
	if defaultLabel != "" {
		c.Emit(ir.Inst1(ir.JMP, ir.NumLabel(defaultLabel)))
	} else {
		c.Emit(ir.Inst1(ir.JMP, ir.NumLabel(end)))
	}

	for i, cs := range n.Cases {
		c.Emit(ir.Label(caseLabels[i]))
		for _, st := range cs.Body {
			g.genStmt(c, st)
		}
	}
	c.Emit(ir.Label(end))

	g.breakTargets = g.breakTargets[:len(g.breakTargets)-1]
}

func (g *Generator) genReturn(c *ir.Code, n *ast.Return) {
	if n.X != nil {
		g.genExpr(c, n.X, true)
		if isDoubleExpr(n.X) {
			// Load the 8-byte value onto the FPU stack with FLD and drop it
			// from the runtime stack; it stays in st0 for the caller's FSTP,
			// matching the ABI convention documented in spec.md §4.3 for
			// double-returning functions.
			c.Emit(ir.Inst1(ir.FLD, ir.Mem(ir.Qword, ir.ESP, ir.NoReg, 0, 0)))
			c.Emit(ir.Inst2(ir.ADD, ir.Register(ir.ESP), ir.Imm(8)))
		} else {
			c.Emit(ir.Inst1(ir.POP, ir.Register(ir.EAX)))
		}
	}
	// Every return emits the function epilogue inline rather than jumping
	// to a single exit point; in main that epilogue includes the
	// stack-corruption check.
	g.emitEpilogue(c, g.inMain)
}

// genBranchIfZero evaluates cond and jumps to label if it is zero/false —
// used by if/while/for, avoiding a separate boolean materialization when
// the condition is a comparison (spec.md §4.3's "ret" boolean-threading
// convention: comparisons emit their own conditional jump instead of
// pushing 0/1 first).
func (g *Generator) genBranchIfZero(c *ir.Code, cond ast.Expr, label string) {
	if op, inverted, ok := comparisonOp(cond); ok {
		b := cond.(*ast.Binary)
		g.genExpr(c, b.Left, true)
		g.genExpr(c, b.Right, true)
		c.Emit(ir.Inst1(ir.POP, ir.Register(ir.EBX)))
		c.Emit(ir.Inst1(ir.POP, ir.Register(ir.EAX)))
		c.Emit(ir.Inst2(ir.CMP, ir.Register(ir.EAX), ir.Register(ir.EBX)))
		c.Emit(ir.Inst1(inverted, ir.NumLabel(label)))
		_ = op
		return
	}
	g.genExpr(c, cond, true)
	c.Emit(ir.Inst1(ir.POP, ir.Register(ir.EAX)))
	c.Emit(ir.Inst2(ir.TEST, ir.Register(ir.EAX), ir.Register(ir.EAX)))
	c.Emit(ir.Inst1(ir.JE, ir.NumLabel(label)))
}

func (g *Generator) genBranchIfNonZeroGoto(c *ir.Code, cond ast.Expr, label string) {
	g.genExpr(c, cond, true)
	c.Emit(ir.Inst1(ir.POP, ir.Register(ir.EAX)))
	c.Emit(ir.Inst2(ir.TEST, ir.Register(ir.EAX), ir.Register(ir.EAX)))
	c.Emit(ir.Inst1(ir.JNE, ir.NumLabel(label)))
}

// comparisonOp reports the direct conditional jump that tests the inverse
// of a relational binary expression, letting genBranchIfZero skip
// materializing an explicit 0/1 boolean.
func comparisonOp(e ast.Expr) (ast.BinOp, ir.Op, bool) {
	b, ok := e.(*ast.Binary)
	if !ok {
		return 0, 0, false
	}
	switch b.Op {
	case ast.Eq:
		return b.Op, ir.JNE, true
	case ast.Ne:
		return b.Op, ir.JE, true
	case ast.Lt:
		return b.Op, ir.JGE, true
	case ast.Gt:
		return b.Op, ir.JLE, true
	case ast.Le:
		return b.Op, ir.JG, true
	case ast.Ge:
		return b.Op, ir.JL, true
	}
	return 0, 0, false
}

// ---------------------------------------------------------------------
// Expressions — every value, once produced, sits on top of the runtime
// stack (spec.md §4.3's stack-oriented evaluation model). ret controls
// whether the caller actually needs the value (false lets comma/assignment
// statement-expressions skip the final push where possible).
// ---------------------------------------------------------------------

func (g *Generator) genExpr(c *ir.Code, e ast.Expr, ret bool) {
	switch n := e.(type) {
	case *ast.Literal:
		g.genLiteral(c, n)
	case *ast.Ident:
		g.genIdentLoad(c, n)
	case *ast.Binary:
		g.genBinary(c, n, ret)
		if n.Op.IsAssign() || n.Op == ast.Comma {
			return // these already honour ret themselves
		}
	case *ast.Unary:
		g.genUnary(c, n)
	case *ast.Ternary:
		g.genTernary(c, n)
	case *ast.Cast:
		g.genCast(c, n)
	case *ast.Index:
		g.genIndexLoad(c, n)
	case *ast.Field:
		g.genFieldLoad(c, n)
	case *ast.Call:
		g.genCall(c, n)
	case *ast.SizeofType:
		c.Emit(ir.Inst1(ir.PUSH, ir.Imm(int64(n.Operand.Size()))))
	case *ast.SizeofExpr:
		c.Emit(ir.Inst1(ir.PUSH, ir.Imm(int64(n.Operand.ExprType().Size()))))
	default:
		c.Emit(ir.Inst1(ir.PUSH, ir.Imm(0)))
	}
	if !ret {
		c.Emit(ir.Inst1(ir.POP, ir.Register(ir.EAX)))
	}
}

func (g *Generator) genLiteral(c *ir.Code, n *ast.Literal) {
	switch n.Kind {
	case ast.LitInt, ast.LitChar:
		c.Emit(ir.Inst1(ir.PUSH, ir.Imm(n.IntVal)))
	case ast.LitFloat:
		c.Emit(ir.Inst1(ir.PUSH, ir.ImmFloat(n.FltVal)))
	case ast.LitString:
		lbl := fmt.Sprintf(".LS%d", len(g.strings))
		g.strings = append(g.strings, StringLiteral{Label: lbl, Value: n.Str})
		c.Emit(ir.Inst1(ir.PUSH, ir.TextLabel(lbl)))
	}
}

func (g *Generator) genIdentLoad(c *ir.Code, n *ast.Ident) {
	s, ok := n.Sym.(*sym.Symbol)
	if !ok {
		c.Emit(ir.Inst1(ir.PUSH, ir.Imm(0)))
		return
	}
	switch s.Kind {
	case sym.KindConst, sym.KindEnumConst:
		c.Emit(ir.Inst1(ir.PUSH, ir.Imm(s.ConstValue)))
		return
	case sym.KindFunc:
		c.Emit(ir.Inst1(ir.PUSH, ir.TextLabel(s.Label)))
		return
	}
	if s.Type.Kind == types.Array {
		c.Emit(ir.Inst2(ir.LEA, ir.Register(ir.EAX), operandFor(s)))
		c.Emit(ir.Inst1(ir.PUSH, ir.Register(ir.EAX)))
		return
	}
	c.Emit(ir.Inst2(ir.MOV, ir.Register(ir.EAX), operandFor(s)))
	c.Emit(ir.Inst1(ir.PUSH, ir.Register(ir.EAX)))
}

// operandFor returns the addressing-mode operand for a symbol's storage:
// [ebp+off] for locals/params, a text-label memory reference for
// globals/statics — per spec.md §4.3's variable addressing rule.
func operandFor(s *sym.Symbol) ir.Operand {
	sz := sizeQualifier(sizeOf(s.Type))
	switch s.Storage {
	case sym.StorageLocal, sym.StorageParam:
		return ir.MemOf(sz, ir.EBP, int32(s.FrameOffset))
	default:
		return ir.Operand{Kind: ir.OpMem, MemSize: sz, Base: ir.NoReg, Label: s.Label}
	}
}

func localOperand(s *sym.Symbol, size int) ir.Operand {
	return operandFor(s)
}

func sizeOf(t *types.Type) int {
	if t == nil {
		return 4
	}
	return t.Size()
}

func sizeQualifier(n int) ir.Size {
	switch n {
	case 1:
		return ir.Byte
	case 2:
		return ir.Word
	case 8:
		return ir.Qword
	default:
		return ir.Dword
	}
}

func isDoubleExpr(e ast.Expr) bool {
	t := e.ExprType()
	return t != nil && t.Kind == types.Double
}

func isIntegralOperand(e ast.Expr) bool {
	if c, ok := e.(*ast.Cast); ok && c.Implicit {
		e = c.Operand
	}
	return e.ExprType() != nil && e.ExprType().IsIntegral()
}

func (g *Generator) genBinary(c *ir.Code, n *ast.Binary, ret bool) {
	if n.Op.IsAssign() {
		g.genAssignExpr(c, n, ret)
		return
	}
	if n.Op == ast.Comma {
		g.genExpr(c, n.Left, false)
		g.genExpr(c, n.Right, ret)
		return
	}
	if n.Op == ast.LogAnd || n.Op == ast.LogOr {
		g.genShortCircuit(c, n)
		return
	}

	g.genExpr(c, n.Left, true)
	g.genExpr(c, n.Right, true)
	c.Emit(ir.Inst1(ir.POP, ir.Register(ir.EBX)))
	c.Emit(ir.Inst1(ir.POP, ir.Register(ir.EAX)))

	if t := n.ExprType(); (n.Op == ast.Add || n.Op == ast.Sub) && t != nil && t.IsPointer() {
		idx, other := ir.EBX, n.Right
		if n.Op == ast.Add && !isIntegralOperand(n.Right) {
			idx, other = ir.EAX, n.Left
		}
		if isIntegralOperand(other) {
			c.Emit(ir.Inst2(ir.IMUL, ir.Register(idx), ir.Imm(int64(sizeOf(t.Elem)))))
		}
	}

	switch n.Op {
	case ast.Add:
		c.Emit(ir.Inst2(ir.ADD, ir.Register(ir.EAX), ir.Register(ir.EBX)))
	case ast.Sub:
		c.Emit(ir.Inst2(ir.SUB, ir.Register(ir.EAX), ir.Register(ir.EBX)))
	case ast.Mul:
		c.Emit(ir.Inst2(ir.IMUL, ir.Register(ir.EAX), ir.Register(ir.EBX)))
	case ast.Div:
		c.Emit(ir.Inst0(ir.CDQ))
		c.Emit(ir.Inst1(ir.IDIV, ir.Register(ir.EBX)))
	case ast.Mod:
		c.Emit(ir.Inst0(ir.CDQ))
		c.Emit(ir.Inst1(ir.IDIV, ir.Register(ir.EBX)))
		c.Emit(ir.Inst2(ir.MOV, ir.Register(ir.EAX), ir.Register(ir.EDX)))
	case ast.Shl:
		c.Emit(ir.Inst2(ir.MOV, ir.Register(ir.ECX), ir.Register(ir.EBX)))
		c.Emit(ir.Inst2(ir.SHL, ir.Register(ir.EAX), ir.Register(ir.ECX)))
	case ast.Shr:
		c.Emit(ir.Inst2(ir.MOV, ir.Register(ir.ECX), ir.Register(ir.EBX)))
		c.Emit(ir.Inst2(ir.SAR, ir.Register(ir.EAX), ir.Register(ir.ECX)))
	case ast.BitAnd:
		c.Emit(ir.Inst2(ir.AND, ir.Register(ir.EAX), ir.Register(ir.EBX)))
	case ast.BitOr:
		c.Emit(ir.Inst2(ir.OR, ir.Register(ir.EAX), ir.Register(ir.EBX)))
	case ast.BitXor:
		c.Emit(ir.Inst2(ir.XOR, ir.Register(ir.EAX), ir.Register(ir.EBX)))
	case ast.Eq, ast.Ne, ast.Lt, ast.Gt, ast.Le, ast.Ge:
		g.genCompareToBool(c, n.Op)
	}
	c.Emit(ir.Inst1(ir.PUSH, ir.Register(ir.EAX)))
}

func (g *Generator) genCompareToBool(c *ir.Code, op ast.BinOp) {
	setLabel := g.newLabel("cmptrue")
	endLabel := g.newLabel("cmpend")
	c.Emit(ir.Inst2(ir.CMP, ir.Register(ir.EAX), ir.Register(ir.EBX)))
	var jop ir.Op
	switch op {
	case ast.Eq:
		jop = ir.JE
	case ast.Ne:
		jop = ir.JNE
	case ast.Lt:
		jop = ir.JL
	case ast.Gt:
		jop = ir.JG
	case ast.Le:
		jop = ir.JLE
	case ast.Ge:
		jop = ir.JGE
	}
	c.Emit(ir.Inst1(jop, ir.NumLabel(setLabel)))
	c.Emit(ir.Inst2(ir.MOV, ir.Register(ir.EAX), ir.Imm(0)))
	c.Emit(ir.Inst1(ir.JMP, ir.NumLabel(endLabel)))
	c.Emit(ir.Label(setLabel))
	c.Emit(ir.Inst2(ir.MOV, ir.Register(ir.EAX), ir.Imm(1)))
	c.Emit(ir.Label(endLabel))
}

func (g *Generator) genShortCircuit(c *ir.Code, n *ast.Binary) {
	shortLabel := g.newLabel("short")
	endLabel := g.newLabel("shortend")

	g.genExpr(c, n.Left, true)
	c.Emit(ir.Inst1(ir.POP, ir.Register(ir.EAX)))
	c.Emit(ir.Inst2(ir.TEST, ir.Register(ir.EAX), ir.Register(ir.EAX)))
	if n.Op == ast.LogAnd {
		c.Emit(ir.Inst1(ir.JE, ir.NumLabel(shortLabel)))
	} else {
		c.Emit(ir.Inst1(ir.JNE, ir.NumLabel(shortLabel)))
	}

	g.genExpr(c, n.Right, true)
	c.Emit(ir.Inst1(ir.POP, ir.Register(ir.EAX)))
	c.Emit(ir.Inst2(ir.TEST, ir.Register(ir.EAX), ir.Register(ir.EAX)))
	c.Emit(ir.Inst2(ir.MOV, ir.Register(ir.EAX), ir.Imm(0)))
	c.Emit(ir.Inst1(ir.JE, ir.NumLabel(endLabel)))
	c.Emit(ir.Inst2(ir.MOV, ir.Register(ir.EAX), ir.Imm(1)))
	c.Emit(ir.Inst1(ir.JMP, ir.NumLabel(endLabel)))
	c.Emit(ir.Label(shortLabel))
	if n.Op == ast.LogAnd {
		c.Emit(ir.Inst2(ir.MOV, ir.Register(ir.EAX), ir.Imm(0)))
	} else {
		c.Emit(ir.Inst2(ir.MOV, ir.Register(ir.EAX), ir.Imm(1)))
	}
	c.Emit(ir.Label(endLabel))
	c.Emit(ir.Inst1(ir.PUSH, ir.Register(ir.EAX)))
}

func (g *Generator) genAssignExpr(c *ir.Code, n *ast.Binary, ret bool) {
	compoundOp, isCompound := compoundBinOp(n.Op)
	if isCompound {
		synthetic := ast.NewBinary(n.Pos(), compoundOp, n.Left, n.Right)
		ast.SetType(synthetic, n.ExprType())
		g.genExpr(c, synthetic, true)
	} else {
		g.genExpr(c, n.Right, true)
	}
	g.genStoreTo(c, n.Left, ret)
}

func compoundBinOp(op ast.BinOp) (ast.BinOp, bool) {
	switch op {
	case ast.AddAssign:
		return ast.Add, true
	case ast.SubAssign:
		return ast.Sub, true
	case ast.MulAssign:
		return ast.Mul, true
	case ast.DivAssign:
		return ast.Div, true
	case ast.ModAssign:
		return ast.Mod, true
	case ast.AndAssign:
		return ast.BitAnd, true
	case ast.OrAssign:
		return ast.BitOr, true
	case ast.XorAssign:
		return ast.BitXor, true
	case ast.ShlAssign:
		return ast.Shl, true
	case ast.ShrAssign:
		return ast.Shr, true
	}
	return 0, false
}

// genStoreTo pops the top-of-stack value into the addressable location
// named by lhs (an Ident, Index, or Field), leaving a copy pushed back if
// ret is true (so `x = y = 1;` and `f(x = 1)` both see the stored value).
func (g *Generator) genStoreTo(c *ir.Code, lhs ast.Expr, ret bool) {
	c.Emit(ir.Inst1(ir.POP, ir.Register(ir.EAX)))
	if ret {
		c.Emit(ir.Inst1(ir.PUSH, ir.Register(ir.EAX)))
	}
	dst := g.addressOf(c, lhs)
	c.Emit(ir.Inst2(ir.MOV, dst, ir.Register(ir.EAX)))
}

// addressOf computes the destination operand for an lvalue without
// clobbering EAX (the value already being stored), for the three lvalue
// shapes this subset supports: a named variable, an array/pointer
// subscript, and a struct/union field.
func (g *Generator) addressOf(c *ir.Code, lhs ast.Expr) ir.Operand {
	switch n := lhs.(type) {
	case *ast.Ident:
		if s, ok := n.Sym.(*sym.Symbol); ok {
			return operandFor(s)
		}
	case *ast.Index:
		c.Emit(ir.Inst1(ir.PUSH, ir.Register(ir.EAX)))
		g.genExpr(c, n.Base, true)
		g.genExpr(c, n.Idx, true)
		c.Emit(ir.Inst1(ir.POP, ir.Register(ir.EBX)))
		c.Emit(ir.Inst1(ir.POP, ir.Register(ir.ECX)))
		elemSize := int64(sizeOf(n.ExprType()))
		c.Emit(ir.Inst2(ir.IMUL, ir.Register(ir.EBX), ir.Imm(elemSize)))
		c.Emit(ir.Inst2(ir.ADD, ir.Register(ir.ECX), ir.Register(ir.EBX)))
		c.Emit(ir.Inst1(ir.POP, ir.Register(ir.EAX)))
		return ir.Mem(sizeQualifier(int(elemSize)), ir.ECX, ir.NoReg, 0, 0)
	case *ast.Field:
		c.Emit(ir.Inst1(ir.PUSH, ir.Register(ir.EAX)))
		g.genExpr(c, n.Base, true)
		c.Emit(ir.Inst1(ir.POP, ir.Register(ir.ECX)))
		c.Emit(ir.Inst1(ir.POP, ir.Register(ir.EAX)))
		return ir.Mem(sizeQualifier(sizeOf(n.ExprType())), ir.ECX, ir.NoReg, 0, int32(n.Offset))
	case *ast.Unary:
		if n.Op == ast.Deref {
			c.Emit(ir.Inst1(ir.PUSH, ir.Register(ir.EAX)))
			g.genExpr(c, n.Operand, true)
			c.Emit(ir.Inst1(ir.POP, ir.Register(ir.ECX)))
			c.Emit(ir.Inst1(ir.POP, ir.Register(ir.EAX)))
			return ir.Mem(sizeQualifier(sizeOf(n.ExprType())), ir.ECX, ir.NoReg, 0, 0)
		}
	}
	return ir.Register(ir.EAX) // unreachable for well-typed input
}

func (g *Generator) genUnary(c *ir.Code, n *ast.Unary) {
	switch n.Op {
	case ast.Addr:
		g.genAddrOf(c, n.Operand)
		return
	case ast.Deref:
		g.genExpr(c, n.Operand, true)
		c.Emit(ir.Inst1(ir.POP, ir.Register(ir.EAX)))
		c.Emit(ir.Inst2(ir.MOV, ir.Register(ir.EAX), ir.Mem(sizeQualifier(sizeOf(n.ExprType())), ir.EAX, ir.NoReg, 0, 0)))
		c.Emit(ir.Inst1(ir.PUSH, ir.Register(ir.EAX)))
		return
	case ast.PreInc, ast.PreDec, ast.PostInc, ast.PostDec:
		g.genIncDec(c, n)
		return
	}

	g.genExpr(c, n.Operand, true)
	c.Emit(ir.Inst1(ir.POP, ir.Register(ir.EAX)))
	switch n.Op {
	case ast.Neg:
		c.Emit(ir.Inst1(ir.NEG, ir.Register(ir.EAX)))
	case ast.Not:
		c.Emit(ir.Inst2(ir.TEST, ir.Register(ir.EAX), ir.Register(ir.EAX)))
		c.Emit(ir.Inst2(ir.MOV, ir.Register(ir.EAX), ir.Imm(0)))
		setLabel := g.newLabel("nottrue")
		c.Emit(ir.Inst1(ir.JNE, ir.NumLabel(setLabel)))
		c.Emit(ir.Inst2(ir.MOV, ir.Register(ir.EAX), ir.Imm(1)))
		c.Emit(ir.Label(setLabel))
	case ast.BitNot:
		c.Emit(ir.Inst1(ir.NOT, ir.Register(ir.EAX)))
	case ast.Plus:
		// no-op
	}
	c.Emit(ir.Inst1(ir.PUSH, ir.Register(ir.EAX)))
}

func (g *Generator) genAddrOf(c *ir.Code, operand ast.Expr) {
	switch n := operand.(type) {
	case *ast.Ident:
		if s, ok := n.Sym.(*sym.Symbol); ok {
			c.Emit(ir.Inst2(ir.LEA, ir.Register(ir.EAX), operandFor(s)))
			c.Emit(ir.Inst1(ir.PUSH, ir.Register(ir.EAX)))
			return
		}
	case *ast.Index:
		mem := g.addressOf(c, n)
		c.Emit(ir.Inst2(ir.LEA, ir.Register(ir.EAX), mem))
		c.Emit(ir.Inst1(ir.PUSH, ir.Register(ir.EAX)))
		return
	case *ast.Field:
		mem := g.addressOf(c, n)
		c.Emit(ir.Inst2(ir.LEA, ir.Register(ir.EAX), mem))
		c.Emit(ir.Inst1(ir.PUSH, ir.Register(ir.EAX)))
		return
	case *ast.Unary:
		if n.Op == ast.Deref {
			g.genExpr(c, n.Operand, true)
			return
		}
	}
	c.Emit(ir.Inst1(ir.PUSH, ir.Imm(0)))
}

func (g *Generator) genIncDec(c *ir.Code, n *ast.Unary) {
	step := int64(1)
	if t := n.Operand.ExprType(); t != nil && t.IsPointer() {
		step = int64(sizeOf(t.Elem))
	}
	dec := n.Op == ast.PreDec || n.Op == ast.PostDec
	post := n.Op == ast.PostInc || n.Op == ast.PostDec

	g.genExpr(c, n.Operand, true)
	c.Emit(ir.Inst1(ir.POP, ir.Register(ir.EAX)))
	if post {
		c.Emit(ir.Inst1(ir.PUSH, ir.Register(ir.EAX)))
	}
	if dec {
		c.Emit(ir.Inst2(ir.SUB, ir.Register(ir.EAX), ir.Imm(step)))
	} else {
		c.Emit(ir.Inst2(ir.ADD, ir.Register(ir.EAX), ir.Imm(step)))
	}
	dst := g.addressOf(c, n.Operand)
	c.Emit(ir.Inst2(ir.MOV, dst, ir.Register(ir.EAX)))
	if !post {
		c.Emit(ir.Inst1(ir.PUSH, ir.Register(ir.EAX)))
	}
}

func (g *Generator) genTernary(c *ir.Code, n *ast.Ternary) {
	elseLabel := g.newLabel("terelse")
	endLabel := g.newLabel("terend")
	g.genBranchIfZero(c, n.Cond, elseLabel)
	g.genExpr(c, n.Then, true)
	c.Emit(ir.Inst1(ir.JMP, ir.NumLabel(endLabel)))
	c.Emit(ir.Label(elseLabel))
	g.genExpr(c, n.Else, true)
	c.Emit(ir.Label(endLabel))
}

func (g *Generator) genCast(c *ir.Code, n *ast.Cast) {
	g.genExpr(c, n.Operand, true)
	srcType := n.Operand.ExprType()
	if srcType == nil || n.Target == nil || srcType.Equal(n.Target) {
		return
	}
	if n.Target.Kind == types.Double && srcType.Kind != types.Double {
		c.Emit(ir.Inst1(ir.POP, ir.Register(ir.EAX)))
		c.Emit(ir.Inst1(ir.PUSH, ir.Register(ir.EAX)))
		c.Emit(ir.Inst1(ir.FILD, ir.Mem(ir.Dword, ir.ESP, ir.NoReg, 0, 0)))
		c.Emit(ir.Inst1(ir.POP, ir.Register(ir.EAX)))
		c.Emit(ir.Inst2(ir.SUB, ir.Register(ir.ESP), ir.Imm(8)))
		c.Emit(ir.Inst0(ir.FSTP))
		return
	}
	if srcType.Kind == types.Double && n.Target.Kind != types.Double {
		c.Emit(ir.Inst0(ir.FISTP))
		c.Emit(ir.Inst2(ir.ADD, ir.Register(ir.ESP), ir.Imm(4)))
		return
	}
	if n.Target.Size() < srcType.Size() {
		c.Emit(ir.Inst1(ir.POP, ir.Register(ir.EAX)))
		mask := int64(1)<<(uint(n.Target.Size())*8) - 1
		c.Emit(ir.Inst2(ir.AND, ir.Register(ir.EAX), ir.Imm(mask)))
		c.Emit(ir.Inst1(ir.PUSH, ir.Register(ir.EAX)))
	}
}

func (g *Generator) genIndexLoad(c *ir.Code, n *ast.Index) {
	g.genExpr(c, n.Base, true)
	g.genExpr(c, n.Idx, true)
	c.Emit(ir.Inst1(ir.POP, ir.Register(ir.EBX)))
	c.Emit(ir.Inst1(ir.POP, ir.Register(ir.ECX)))
	elemSize := int64(sizeOf(n.ExprType()))
	c.Emit(ir.Inst2(ir.IMUL, ir.Register(ir.EBX), ir.Imm(elemSize)))
	c.Emit(ir.Inst2(ir.ADD, ir.Register(ir.ECX), ir.Register(ir.EBX)))
	c.Emit(ir.Inst2(ir.MOV, ir.Register(ir.EAX), ir.Mem(sizeQualifier(int(elemSize)), ir.ECX, ir.NoReg, 0, 0)))
	c.Emit(ir.Inst1(ir.PUSH, ir.Register(ir.EAX)))
}

func (g *Generator) genFieldLoad(c *ir.Code, n *ast.Field) {
	g.genExpr(c, n.Base, true)
	c.Emit(ir.Inst1(ir.POP, ir.Register(ir.ECX)))
	c.Emit(ir.Inst2(ir.MOV, ir.Register(ir.EAX), ir.Mem(sizeQualifier(sizeOf(n.ExprType())), ir.ECX, ir.NoReg, 0, int32(n.Offset))))
	c.Emit(ir.Inst1(ir.PUSH, ir.Register(ir.EAX)))
}

// genCall pushes arguments right-to-left (the cdecl convention spec.md §6
// assumes for kernel32/msvcrt interop), calls, and cleans up the argument
// area itself since this compiler never emits callee-cleanup (ret N).
func (g *Generator) genCall(c *ir.Code, n *ast.Call) {
	for i := len(n.Args) - 1; i >= 0; i-- {
		g.genExpr(c, n.Args[i], true)
	}
	if id, ok := n.Fn.(*ast.Ident); ok {
		if s, ok := id.Sym.(*sym.Symbol); ok && s.Kind == sym.KindFunc {
			if s.Defined {
				c.Emit(ir.Inst1(ir.CALL, ir.TextLabel(s.Label)))
			} else {
				// extern function: the import table's address lives at
				// _name, so the call must indirect through it (spec.md
				// §4.3: "call [_name] against the import table").
				c.Emit(ir.Inst1(ir.CALL, ir.Operand{Kind: ir.OpMem, Base: ir.NoReg, Label: s.Label}))
			}
		} else {
			g.genExpr(c, n.Fn, true)
			c.Emit(ir.Inst1(ir.POP, ir.Register(ir.EAX)))
			c.Emit(ir.Inst1(ir.CALL, ir.Register(ir.EAX)))
		}
	} else {
		g.genExpr(c, n.Fn, true)
		c.Emit(ir.Inst1(ir.POP, ir.Register(ir.EAX)))
		c.Emit(ir.Inst1(ir.CALL, ir.Register(ir.EAX)))
	}
	if len(n.Args) > 0 {
		c.Emit(ir.Inst2(ir.ADD, ir.Register(ir.ESP), ir.Imm(int64(4*len(n.Args)))))
	}
	c.Emit(ir.Inst1(ir.PUSH, ir.Register(ir.EAX)))
}

// constIntValue folds a case label's compile-time constant, reusing the
// parser's literal/enum-constant shapes it is guaranteed to be built from.
func constIntValue(e ast.Expr) int64 {
	switch n := e.(type) {
	case *ast.Literal:
		return n.IntVal
	case *ast.Ident:
		if s, ok := n.Sym.(*sym.Symbol); ok {
			return s.ConstValue
		}
	case *ast.Unary:
		if n.Op == ast.Neg {
			return -constIntValue(n.Operand)
		}
	}
	return 0
}

// Package ast defines the tagged AST node set spec.md §3 asks for: Decl,
// Stmt, and Expr interfaces over fixed-arity concrete node structs, in place
// of a C-style flexible-member union.
//
// Grounded on lang/yparse/ast.go's interface-based Decl/Stmt/Expr split,
// generalized from wut4's YAPL-specific node set to the full C-subset
// grammar spec.md names (struct/union/enum declarations, switch/do-while,
// the ?: ternary, compound assignment, comma, inline asm).
package ast

import (
	"github.com/luchiel/smallc/internal/token"
	"github.com/luchiel/smallc/internal/types"
)

// Node is the common embedding every AST node carries: its source position.
// Every concrete node embeds baseNode and so automatically implements the
// Pos() method required by Decl/Stmt/Expr.
type baseNode struct {
	pos token.Pos
}

func (n baseNode) Pos() token.Pos { return n.pos }

// Expr is any expression node. Every Expr carries a resolved Type once the
// parser's inline semantic analysis has run (spec.md §4.2).
type Expr interface {
	Pos() token.Pos
	ExprType() *types.Type
	setType(*types.Type)
}

type baseExpr struct {
	baseNode
	typ *types.Type
}

func (e *baseExpr) ExprType() *types.Type { return e.typ }
func (e *baseExpr) setType(t *types.Type) { e.typ = t }

// SetType is the parser-facing entry point for attaching a resolved type to
// any Expr, used right after each expression is built during recursive
// descent (spec.md §4.2: "type checking happens inline with parsing").
func SetType(e Expr, t *types.Type) { e.setType(t) }

// Stmt is any statement node.
type Stmt interface {
	Pos() token.Pos
	stmtNode()
}

type baseStmt struct{ baseNode }

func (baseStmt) stmtNode() {}

// Decl is any top-level or block-scope declaration.
type Decl interface {
	Pos() token.Pos
	declNode()
}

type baseDecl struct{ baseNode }

func (baseDecl) declNode() {}

// ---------------------------------------------------------------------
// Expressions
// ---------------------------------------------------------------------

// LitKind distinguishes the literal forms spec.md §3 names as atoms.
type LitKind int

const (
	LitInt LitKind = iota
	LitFloat
	LitChar
	LitString
)

// Literal is a constant atom: integer, float, char, or string.
type Literal struct {
	baseExpr
	Kind   LitKind
	IntVal int64
	FltVal float64
	Str    string
}

func NewLiteral(pos token.Pos, kind LitKind) *Literal {
	return &Literal{baseExpr: baseExpr{baseNode: baseNode{pos}}, Kind: kind}
}

// Ident is a name reference, resolved to a symbol by the parser's inline
// name-resolution pass (PF_RESOLVE_NAMES).
type Ident struct {
	baseExpr
	Name string
	// Sym is filled in by the parser once the name is resolved; left nil
	// for names that fail to resolve (an error has already been reported).
	Sym interface{}
}

func NewIdent(pos token.Pos, name string) *Ident {
	return &Ident{baseExpr: baseExpr{baseNode: baseNode{pos}}, Name: name}
}

// BinOp enumerates binary operators, including compound-assignment forms so
// a single Binary node can represent both `a + b` and `a += b` uniformly
// (spec.md §4.2 groups them as "binary arithmetic/assignment operators").
type BinOp int

const (
	Add BinOp = iota
	Sub
	Mul
	Div
	Mod
	Shl
	Shr
	BitAnd
	BitOr
	BitXor
	LogAnd
	LogOr
	Eq
	Ne
	Lt
	Gt
	Le
	Ge
	Assign
	AddAssign
	SubAssign
	MulAssign
	DivAssign
	ModAssign
	AndAssign
	OrAssign
	XorAssign
	ShlAssign
	ShrAssign
	Comma
)

// IsAssign reports whether op is `=` or a compound-assignment form.
func (op BinOp) IsAssign() bool { return op >= Assign && op <= ShrAssign }

// Binary is a two-operand expression: arithmetic, comparison, logical,
// bitwise, assignment (plain or compound), or comma.
type Binary struct {
	baseExpr
	Op          BinOp
	Left, Right Expr
}

func NewBinary(pos token.Pos, op BinOp, l, r Expr) *Binary {
	return &Binary{baseExpr: baseExpr{baseNode: baseNode{pos}}, Op: op, Left: l, Right: r}
}

// UnOp enumerates prefix/postfix unary operators.
type UnOp int

const (
	Neg UnOp = iota
	Not
	BitNot
	Addr
	Deref
	PreInc
	PreDec
	PostInc
	PostDec
	Plus
)

// Unary is a one-operand expression.
type Unary struct {
	baseExpr
	Op      UnOp
	Operand Expr
}

func NewUnary(pos token.Pos, op UnOp, operand Expr) *Unary {
	return &Unary{baseExpr: baseExpr{baseNode: baseNode{pos}}, Op: op, Operand: operand}
}

// Ternary is the `cond ? then : els` conditional expression.
type Ternary struct {
	baseExpr
	Cond, Then, Else Expr
}

func NewTernary(pos token.Pos, cond, then, els Expr) *Ternary {
	return &Ternary{baseExpr: baseExpr{baseNode: baseNode{pos}}, Cond: cond, Then: then, Else: els}
}

// Cast is an explicit `(T) expr` conversion. Implicit conversions inserted
// by the semantic analyzer (spec.md §4.2's "implicit conversions") reuse
// this same node shape, distinguished by Implicit.
type Cast struct {
	baseExpr
	Target   *types.Type
	Operand  Expr
	Implicit bool
}

func NewCast(pos token.Pos, target *types.Type, operand Expr, implicit bool) *Cast {
	c := &Cast{baseExpr: baseExpr{baseNode: baseNode{pos}}, Target: target, Operand: operand, Implicit: implicit}
	c.typ = target
	return c
}

// Index is `base[idx]`, always desugared from pointer arithmetic plus
// dereference at codegen time but kept as its own node through parsing for
// clearer diagnostics (spec.md §4.2's subscript elaboration rule).
type Index struct {
	baseExpr
	Base, Idx Expr
}

func NewIndex(pos token.Pos, base, idx Expr) *Index {
	return &Index{baseExpr: baseExpr{baseNode: baseNode{pos}}, Base: base, Idx: idx}
}

// Field is `base.name` or `base->name` (Arrow distinguishes the two; both
// resolve to the same member-offset addressing at codegen time).
type Field struct {
	baseExpr
	Base  Expr
	Name  string
	Arrow bool
	// Offset is filled in once the parser resolves Base's struct/union type.
	Offset int
}

func NewField(pos token.Pos, base Expr, name string, arrow bool) *Field {
	return &Field{baseExpr: baseExpr{baseNode: baseNode{pos}}, Base: base, Name: name, Arrow: arrow}
}

// Call is a function call, direct or through a function pointer.
type Call struct {
	baseExpr
	Fn   Expr
	Args []Expr
}

func NewCall(pos token.Pos, fn Expr, args []Expr) *Call {
	return &Call{baseExpr: baseExpr{baseNode: baseNode{pos}}, Fn: fn, Args: args}
}

// SizeofType is `sizeof(T)`, always a compile-time int constant (spec.md
// §9's sizeof resolution).
type SizeofType struct {
	baseExpr
	Operand *types.Type
}

func NewSizeofType(pos token.Pos, t *types.Type) *SizeofType {
	n := &SizeofType{baseExpr: baseExpr{baseNode: baseNode{pos}}, Operand: t}
	n.typ = types.IntType
	return n
}

// SizeofExpr is `sizeof expr`, resolved to the same constant once the
// operand's type is known.
type SizeofExpr struct {
	baseExpr
	Operand Expr
}

func NewSizeofExpr(pos token.Pos, e Expr) *SizeofExpr {
	n := &SizeofExpr{baseExpr: baseExpr{baseNode: baseNode{pos}}, Operand: e}
	n.typ = types.IntType
	return n
}

// ArrayInit is a braced initializer list, `{ e1, e2, ... }`.
type ArrayInit struct {
	baseExpr
	Elems []Expr
}

func NewArrayInit(pos token.Pos, elems []Expr) *ArrayInit {
	return &ArrayInit{baseExpr: baseExpr{baseNode: baseNode{pos}}, Elems: elems}
}

// ---------------------------------------------------------------------
// Statements
// ---------------------------------------------------------------------

// ExprStmt wraps an expression evaluated for its side effect.
type ExprStmt struct {
	baseStmt
	X Expr
}

func NewExprStmt(pos token.Pos, x Expr) *ExprStmt {
	return &ExprStmt{baseStmt: baseStmt{baseNode{pos}}, X: x}
}

// Block is a brace-delimited compound statement, itself a new lexical
// scope (spec.md §3).
type Block struct {
	baseStmt
	Stmts []Stmt
}

func NewBlock(pos token.Pos, stmts []Stmt) *Block {
	return &Block{baseStmt: baseStmt{baseNode{pos}}, Stmts: stmts}
}

// If is `if (Cond) Then [else Else]`.
type If struct {
	baseStmt
	Cond       Expr
	Then, Else Stmt
}

func NewIf(pos token.Pos, cond Expr, then, els Stmt) *If {
	return &If{baseStmt: baseStmt{baseNode{pos}}, Cond: cond, Then: then, Else: els}
}

// While is `while (Cond) Body`.
type While struct {
	baseStmt
	Cond Expr
	Body Stmt
}

func NewWhile(pos token.Pos, cond Expr, body Stmt) *While {
	return &While{baseStmt: baseStmt{baseNode{pos}}, Cond: cond, Body: body}
}

// DoWhile is `do Body while (Cond);`.
type DoWhile struct {
	baseStmt
	Body Stmt
	Cond Expr
}

func NewDoWhile(pos token.Pos, body Stmt, cond Expr) *DoWhile {
	return &DoWhile{baseStmt: baseStmt{baseNode{pos}}, Body: body, Cond: cond}
}

// For is `for (Init; Cond; Post) Body`. Any of Init/Cond/Post may be nil.
type For struct {
	baseStmt
	Init       Stmt
	Cond       Expr
	Post       Expr
	Body       Stmt
}

func NewFor(pos token.Pos, init Stmt, cond Expr, post Expr, body Stmt) *For {
	return &For{baseStmt: baseStmt{baseNode{pos}}, Init: init, Cond: cond, Post: post, Body: body}
}

// SwitchCase is one `case X:`/`default:` arm within a Switch.
type SwitchCase struct {
	// Value is nil for the default arm.
	Value Expr
	Body  []Stmt
}

// Switch is `switch (Tag) { case ...: ... default: ... }`.
type Switch struct {
	baseStmt
	Tag   Expr
	Cases []SwitchCase
}

func NewSwitch(pos token.Pos, tag Expr, cases []SwitchCase) *Switch {
	return &Switch{baseStmt: baseStmt{baseNode{pos}}, Tag: tag, Cases: cases}
}

// Return is `return [X];`.
type Return struct {
	baseStmt
	X Expr // nil for bare `return;`
}

func NewReturn(pos token.Pos, x Expr) *Return {
	return &Return{baseStmt: baseStmt{baseNode{pos}}, X: x}
}

// Break is `break;`.
type Break struct{ baseStmt }

func NewBreak(pos token.Pos) *Break { return &Break{baseStmt{baseNode{pos}}} }

// Continue is `continue;`.
type Continue struct{ baseStmt }

func NewContinue(pos token.Pos) *Continue { return &Continue{baseStmt{baseNode{pos}}} }

// Goto is `goto name;`.
type Goto struct {
	baseStmt
	Name string
	// Label is filled in once the target is resolved (may be before or
	// after the goto in source order).
	Label interface{}
}

func NewGoto(pos token.Pos, name string) *Goto {
	return &Goto{baseStmt: baseStmt{baseNode{pos}}, Name: name}
}

// LabelStmt is `name: stmt`.
type LabelStmt struct {
	baseStmt
	Name string
	Stmt Stmt
	// Label is filled in when the parser defines the label.
	Label interface{}
}

func NewLabelStmt(pos token.Pos, name string, stmt Stmt) *LabelStmt {
	return &LabelStmt{baseStmt: baseStmt{baseNode{pos}}, Name: name, Stmt: stmt}
}

// Empty is the null statement `;`.
type Empty struct{ baseStmt }

func NewEmpty(pos token.Pos) *Empty { return &Empty{baseStmt{baseNode{pos}}} }

// Asm is the `__asm("text");` inline-assembly passthrough statement
// (SPEC_FULL.md §3.1 supplemented feature).
type Asm struct {
	baseStmt
	Text string
}

func NewAsm(pos token.Pos, text string) *Asm {
	return &Asm{baseStmt: baseStmt{baseNode{pos}}, Text: text}
}

// DeclStmt wraps a block-scope variable/typedef declaration so it can
// appear in a statement list.
type DeclStmt struct {
	baseStmt
	D Decl
}

func NewDeclStmt(pos token.Pos, d Decl) *DeclStmt {
	return &DeclStmt{baseStmt: baseStmt{baseNode{pos}}, D: d}
}

// ---------------------------------------------------------------------
// Declarations
// ---------------------------------------------------------------------

// VarDecl is a variable declaration, at file or block scope.
type VarDecl struct {
	baseDecl
	Name    string
	Type    *types.Type
	Init    Expr // nil if uninitialized
	Extern  bool
	Static  bool
	// Sym is the symbol table entry this declaration installed.
	Sym interface{}
}

func NewVarDecl(pos token.Pos, name string, t *types.Type) *VarDecl {
	return &VarDecl{baseDecl: baseDecl{baseNode{pos}}, Name: name, Type: t}
}

// Param is one function parameter.
type Param struct {
	Name string
	Type *types.Type
}

// FuncDecl is a function definition or prototype (Body nil for a
// prototype-only declaration).
type FuncDecl struct {
	baseDecl
	Name    string
	Params  []Param
	Ret     *types.Type
	Variadic bool
	Body    *Block // nil for a prototype
	Extern  bool
	Static  bool
	// FrameSize is the total local-variable stack frame size, computed once
	// the body's locals have all been allocated (spec.md §4.3).
	FrameSize int
}

func NewFuncDecl(pos token.Pos, name string, ret *types.Type) *FuncDecl {
	return &FuncDecl{baseDecl: baseDecl{baseNode{pos}}, Name: name, Ret: ret}
}

// StructDecl installs a struct or union tag's member layout. IsUnion
// distinguishes the two (they share identical declaration syntax).
type StructDecl struct {
	baseDecl
	Tag     string
	IsUnion bool
	Type    *types.Type
}

func NewStructDecl(pos token.Pos, tag string, isUnion bool, t *types.Type) *StructDecl {
	return &StructDecl{baseDecl: baseDecl{baseNode{pos}}, Tag: tag, IsUnion: isUnion, Type: t}
}

// EnumDecl installs an enum tag and its named integer constants.
type EnumDecl struct {
	baseDecl
	Tag     string
	Names   []string
	Values  []int64
}

func NewEnumDecl(pos token.Pos, tag string) *EnumDecl {
	return &EnumDecl{baseDecl: baseDecl{baseNode{pos}}, Tag: tag}
}

// TypedefDecl installs a type alias name.
type TypedefDecl struct {
	baseDecl
	Name string
	Type *types.Type
}

func NewTypedefDecl(pos token.Pos, name string, t *types.Type) *TypedefDecl {
	return &TypedefDecl{baseDecl: baseDecl{baseNode{pos}}, Name: name, Type: t}
}

// Program is the root node: the full translation unit.
type Program struct {
	Decls []Decl
}

package ast

import (
	"testing"

	"github.com/luchiel/smallc/internal/token"
	"github.com/luchiel/smallc/internal/types"
)

func TestSetTypeAttachesType(t *testing.T) {
	lit := NewLiteral(token.Pos{Line: 1, Col: 1}, LitInt)
	if lit.ExprType() != nil {
		t.Fatalf("fresh literal should have no type yet")
	}
	SetType(lit, types.IntType)
	if lit.ExprType() != types.IntType {
		t.Fatalf("SetType did not attach the type")
	}
}

func TestBinOpIsAssign(t *testing.T) {
	cases := map[BinOp]bool{
		Add: false, Assign: true, AddAssign: true, ShrAssign: true, Comma: false, Eq: false,
	}
	for op, want := range cases {
		if got := op.IsAssign(); got != want {
			t.Errorf("BinOp(%d).IsAssign() = %v, want %v", op, got, want)
		}
	}
}

func TestCastCarriesImplicitTypeEagerly(t *testing.T) {
	lit := NewLiteral(token.Pos{}, LitInt)
	SetType(lit, types.IntType)
	cast := NewCast(token.Pos{}, types.DoubleType, lit, true)
	if cast.ExprType() != types.DoubleType {
		t.Fatalf("implicit cast should carry its target type immediately")
	}
	if !cast.Implicit {
		t.Fatalf("Implicit flag not set")
	}
}

func TestNodesImplementInterfaces(t *testing.T) {
	var _ Expr = NewLiteral(token.Pos{}, LitInt)
	var _ Expr = NewIdent(token.Pos{}, "x")
	var _ Expr = NewBinary(token.Pos{}, Add, nil, nil)
	var _ Expr = NewUnary(token.Pos{}, Neg, nil)
	var _ Expr = NewTernary(token.Pos{}, nil, nil, nil)
	var _ Expr = NewCast(token.Pos{}, types.IntType, nil, false)
	var _ Expr = NewIndex(token.Pos{}, nil, nil)
	var _ Expr = NewField(token.Pos{}, nil, "f", false)
	var _ Expr = NewCall(token.Pos{}, nil, nil)
	var _ Expr = NewSizeofType(token.Pos{}, types.IntType)
	var _ Expr = NewSizeofExpr(token.Pos{}, nil)
	var _ Expr = NewArrayInit(token.Pos{}, nil)

	var _ Stmt = NewExprStmt(token.Pos{}, nil)
	var _ Stmt = NewBlock(token.Pos{}, nil)
	var _ Stmt = NewIf(token.Pos{}, nil, nil, nil)
	var _ Stmt = NewWhile(token.Pos{}, nil, nil)
	var _ Stmt = NewDoWhile(token.Pos{}, nil, nil)
	var _ Stmt = NewFor(token.Pos{}, nil, nil, nil, nil)
	var _ Stmt = NewSwitch(token.Pos{}, nil, nil)
	var _ Stmt = NewReturn(token.Pos{}, nil)
	var _ Stmt = NewBreak(token.Pos{})
	var _ Stmt = NewContinue(token.Pos{})
	var _ Stmt = NewGoto(token.Pos{}, "l")
	var _ Stmt = NewLabelStmt(token.Pos{}, "l", nil)
	var _ Stmt = NewEmpty(token.Pos{})
	var _ Stmt = NewAsm(token.Pos{}, "nop")
	var _ Stmt = NewDeclStmt(token.Pos{}, nil)

	var _ Decl = NewVarDecl(token.Pos{}, "x", types.IntType)
	var _ Decl = NewFuncDecl(token.Pos{}, "f", types.VoidType)
	var _ Decl = NewStructDecl(token.Pos{}, "s", false, types.NewStruct("s"))
	var _ Decl = NewEnumDecl(token.Pos{}, "e")
	var _ Decl = NewTypedefDecl(token.Pos{}, "t", types.IntType)
}

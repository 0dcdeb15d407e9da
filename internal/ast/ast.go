// Package ast defines the abstract syntax tree for timid-lang.
//
// The node set is closed: Expr can only be implemented inside this package,
// and consumers switch over the concrete types.
package ast

import (
	"timid-lang/internal/span"
	"timid-lang/internal/token"
)

// ============================================================
// Node interfaces
// ============================================================

// Expr is the interface implemented by all expression nodes.
type Expr interface {
	exprNode()
	GetSpan() span.Span
}

// ExprBase provides the common Span field for all expression nodes.
type ExprBase struct {
	Span span.Span
}

func (ExprBase) exprNode()            {}
func (e ExprBase) GetSpan() span.Span { return e.Span }

// ============================================================
// Expressions
// ============================================================

// LiteralExpr wraps an INT, FLOAT, TRUE, FALSE or NULL token.
type LiteralExpr struct {
	ExprBase
	Token token.Token
}

// NewLiteral builds a literal node spanning tok.
func NewLiteral(tok token.Token) *LiteralExpr {
	return &LiteralExpr{ExprBase: ExprBase{Span: tok.Span}, Token: tok}
}

// Value returns the literal's runtime value: int64, float64, bool or nil.
func (l *LiteralExpr) Value() interface{} {
	switch l.Token.Kind {
	case token.TRUE:
		return true
	case token.FALSE:
		return false
	case token.NULL:
		return nil
	default:
		return l.Token.Value
	}
}

// UnaryExpr represents a prefix operation: !x, +x, -x.
type UnaryExpr struct {
	ExprBase
	Op      token.Token
	Operand Expr
}

// NewUnary builds a unary node spanning op through operand.
func NewUnary(op token.Token, operand Expr) *UnaryExpr {
	return &UnaryExpr{
		ExprBase: ExprBase{Span: op.Span.Union(operand.GetSpan())},
		Op:       op,
		Operand:  operand,
	}
}

// BinaryExpr represents a binary operation: a + b, x == y.
// The current grammar never produces one.
type BinaryExpr struct {
	ExprBase
	Left  Expr
	Op    token.Token
	Right Expr
}

// NewBinary builds a binary node spanning left through right.
func NewBinary(left Expr, op token.Token, right Expr) *BinaryExpr {
	return &BinaryExpr{
		ExprBase: ExprBase{Span: left.GetSpan().Union(right.GetSpan())},
		Left:     left,
		Op:       op,
		Right:    right,
	}
}

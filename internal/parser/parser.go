// Package parser implements the syntax analysis for timid-lang.
// It is a recursive-descent parser with one token of lookahead:
//
//	expression := unary
//	unary      := ( '!' | '+' | '-' ) unary | atom
//	atom       := INT | FLOAT | TRUE | FALSE | NULL
//	            | '(' expression ')'
//
// There are no binary precedence levels yet, so ast.BinaryExpr is never built.
package parser

import (
	"fmt"

	"timid-lang/internal/ast"
	"timid-lang/internal/diag"
	"timid-lang/internal/token"
)

// SyntaxError is returned by a grammar rule that could not match. It has
// already been reported by the time it is returned.
type SyntaxError struct {
	Diagnostic diag.Diagnostic
}

func (e *SyntaxError) Error() string {
	return e.Diagnostic.Error()
}

// ============================================================
// Parser
// ============================================================

// Parser performs syntax analysis on a slice of tokens.
type Parser struct {
	tokens []token.Token
	pos    int
	rep    *diag.Reporter
	diags  []diag.Diagnostic
}

// New creates a new parser from a token slice, which should end in EOF.
// Syntax errors go to rep; a nil rep records them without writing anywhere.
func New(tokens []token.Token, rep *diag.Reporter) *Parser {
	if rep == nil {
		rep = diag.Discard()
	}
	return &Parser{tokens: tokens, rep: rep}
}

// Parse parses one expression. On a syntax error it returns a nil Expr and
// the single diagnostic that stopped it; no partial tree is returned.
// Tokens following a complete expression are not examined.
func (p *Parser) Parse() (ast.Expr, []diag.Diagnostic) {
	expr, err := p.expression()
	if err != nil {
		return nil, p.diags
	}
	return expr, p.diags
}

// ---- navigation helpers ----

func (p *Parser) peek() token.Token {
	if p.pos >= len(p.tokens) {
		return token.Token{Kind: token.EOF, Lexeme: token.EOFLexeme}
	}
	return p.tokens[p.pos]
}

func (p *Parser) previous() token.Token {
	if p.pos == 0 {
		return p.peek()
	}
	return p.tokens[p.pos-1]
}

func (p *Parser) isAtEnd() bool {
	return p.peek().Kind == token.EOF
}

// advance consumes the current token, unless it is EOF, and returns the
// token just consumed.
func (p *Parser) advance() token.Token {
	if !p.isAtEnd() {
		p.pos++
	}
	return p.previous()
}

// check reports whether the current token has the given kind. It is always
// false at EOF.
func (p *Parser) check(kind token.Kind) bool {
	if p.isAtEnd() {
		return false
	}
	return p.peek().Kind == kind
}

// match consumes the current token if it has any of the given kinds.
func (p *Parser) match(kinds ...token.Kind) bool {
	for _, k := range kinds {
		if p.check(k) {
			p.advance()
			return true
		}
	}
	return false
}

// consume returns the current token if it has the given kind and fails
// with message otherwise.
func (p *Parser) consume(kind token.Kind, message string) (token.Token, error) {
	if p.check(kind) {
		return p.advance(), nil
	}
	return token.Token{}, p.error(p.peek(), message)
}

func (p *Parser) error(tok token.Token, message string) error {
	d := p.rep.SyntaxError(tok.Span, message)
	p.diags = append(p.diags, d)
	return &SyntaxError{Diagnostic: d}
}

// ============================================================
// Grammar rules
// ============================================================

func (p *Parser) expression() (ast.Expr, error) {
	return p.unary()
}

func (p *Parser) unary() (ast.Expr, error) {
	if p.match(token.NOT, token.PLUS, token.MINUS) {
		op := p.previous()
		right, err := p.unary()
		if err != nil {
			return nil, err
		}
		return ast.NewUnary(op, right), nil
	}
	return p.atom()
}

func (p *Parser) atom() (ast.Expr, error) {
	if p.peek().Kind.IsLiteral() {
		return ast.NewLiteral(p.advance()), nil
	}

	if p.match(token.LPAREN) {
		expr, err := p.expression()
		if err != nil {
			return nil, err
		}
		msg := fmt.Sprintf("Expected a closing ')' (after %s)", p.previous().Lexeme)
		if _, err := p.consume(token.RPAREN, msg); err != nil {
			return nil, err
		}
		return expr, nil
	}

	return nil, p.error(p.peek(), "Expected an expression")
}

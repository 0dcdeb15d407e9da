// Package token defines the token types produced by the lexer.
package token

import (
	"fmt"

	"timid-lang/internal/span"
)

// Kind represents the type of a token.
type Kind int

const (
	// Special tokens
	EOF Kind = iota

	// Literals
	IDENT // identifiers: x, foo_1
	INT   // integer literals: 123
	FLOAT // float literals: 3.14

	// Keywords
	TRUE  // tru
	FALSE // fls
	NULL  // nul

	// Arithmetic
	PLUS    // +
	MINUS   // -
	STAR    // *
	SLASH   // /
	PERCENT // %
	CARET   // ^

	// Comparison
	EQ  // =
	EE  // ==
	NOT // !
	NE  // !=
	LT  // <
	LTE // <=
	GT  // >, never produced: '>' lexes as GTE
	GTE // >=

	// Delimiters
	LPAREN    // (
	RPAREN    // )
	LBRACE    // {
	RBRACE    // }
	QMARK     // ?
	AT        // @
	DOLLAR    // $
	DOT       // .
	SEMICOLON // ;

	BWOR   // |
	ASSERT // |-
)

// EOFLexeme is the sentinel lexeme carried by the EOF token.
const EOFLexeme = "\x00"

var kindNames = map[Kind]string{
	EOF: "EOF",

	IDENT: "IDENT",
	INT:   "INT",
	FLOAT: "FLOAT",

	TRUE:  "tru",
	FALSE: "fls",
	NULL:  "nul",

	PLUS:    "+",
	MINUS:   "-",
	STAR:    "*",
	SLASH:   "/",
	PERCENT: "%",
	CARET:   "^",

	EQ:  "=",
	EE:  "==",
	NOT: "!",
	NE:  "!=",
	LT:  "<",
	LTE: "<=",
	GT:  ">",
	GTE: ">=",

	LPAREN:    "(",
	RPAREN:    ")",
	LBRACE:    "{",
	RBRACE:    "}",
	QMARK:     "?",
	AT:        "@",
	DOLLAR:    "$",
	DOT:       ".",
	SEMICOLON: ";",

	BWOR:   "|",
	ASSERT: "|-",
}

// String returns the human-readable name for a token kind.
func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// IsKeyword returns true if the kind is a keyword.
func (k Kind) IsKeyword() bool {
	return k >= TRUE && k <= NULL
}

// IsLiteral returns true if the kind can start a literal atom.
func (k Kind) IsLiteral() bool {
	return k == INT || k == FLOAT || k.IsKeyword()
}

var keywords = map[string]Kind{
	"tru": TRUE,
	"fls": FALSE,
	"nul": NULL,
}

// LookupIdent returns the keyword Kind for ident, or IDENT if it is not a keyword.
func LookupIdent(ident string) Kind {
	if kind, ok := keywords[ident]; ok {
		return kind
	}
	return IDENT
}

// Token represents a lexical token with its kind, text, and source location.
// Value is an int64 for INT, a float64 for FLOAT, and nil otherwise.
type Token struct {
	Kind   Kind        `json:"kind"`
	Lexeme string      `json:"lexeme"`
	Value  interface{} `json:"value,omitempty"`
	Span   span.Span   `json:"span"`
}

// New builds a token from start to end. A nil end means the token is one
// placeholder character wide.
func New(kind Kind, lexeme string, value interface{}, start span.Position, end *span.Position) Token {
	s := span.At(start)
	if end != nil {
		s.End = *end
	}
	return Token{Kind: kind, Lexeme: lexeme, Value: value, Span: s}
}

// String returns a human-readable representation of the token.
func (t Token) String() string {
	if t.Value != nil {
		return fmt.Sprintf("%s %q %v %s", t.Kind, t.Lexeme, t.Value, t.Span.Start)
	}
	return fmt.Sprintf("%s %q %s", t.Kind, t.Lexeme, t.Span.Start)
}

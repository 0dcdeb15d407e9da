// Package lexer implements the lexical analysis (tokenization) for timid-lang.
package lexer

import (
	"fmt"
	"strconv"
	"unicode/utf8"

	"timid-lang/internal/diag"
	"timid-lang/internal/span"
	"timid-lang/internal/token"
)

// Lexer tokenizes source code into a sequence of tokens.
type Lexer struct {
	src *span.Source
	cur *span.Cursor
	rep *diag.Reporter

	tokens []token.Token
	diags  []diag.Diagnostic
}

// New creates a Lexer over src. Diagnostics go to rep as they are found;
// a nil rep records them without writing anywhere.
func New(src *span.Source, rep *diag.Reporter) *Lexer {
	if rep == nil {
		rep = diag.Discard()
	}
	return &Lexer{
		src: src,
		cur: span.NewCursor(src),
		rep: rep,
	}
}

// Tokenize scans the entire source and returns all tokens, ending with
// exactly one EOF, and the diagnostics this lexer reported. Lexing never
// stops early: every invalid character gets its own diagnostic.
func (l *Lexer) Tokenize() ([]token.Token, []diag.Diagnostic) {
	for !l.isAtEnd() {
		l.scanToken()
	}
	l.tokens = append(l.tokens, token.New(token.EOF, token.EOFLexeme, nil, l.cur.Snapshot(), nil))
	return l.tokens, l.diags
}

// ---- internal helpers ----

func (l *Lexer) isAtEnd() bool {
	return l.cur.Offset() >= len(l.src.Text)
}

// peek returns the current byte without advancing, or 0 if at end.
func (l *Lexer) peek() byte {
	if l.isAtEnd() {
		return 0
	}
	return l.src.Text[l.cur.Offset()]
}

// peekNext returns the byte after current, or 0 if at end.
func (l *Lexer) peekNext() byte {
	if l.cur.Offset()+1 >= len(l.src.Text) {
		return 0
	}
	return l.src.Text[l.cur.Offset()+1]
}

// advance consumes the current character and returns it.
func (l *Lexer) advance() rune {
	if l.isAtEnd() {
		l.cur.Advance(0, 1)
		return 0
	}
	r, w := utf8.DecodeRuneInString(l.src.Text[l.cur.Offset():])
	l.cur.Advance(r, w)
	return r
}

func (l *Lexer) addToken(kind token.Kind, lexeme string, value interface{}, start span.Position) {
	end := l.cur.Snapshot()
	l.tokens = append(l.tokens, token.New(kind, lexeme, value, start, &end))
}

func (l *Lexer) report(kind diag.Kind, start span.Position, msg string) {
	d := l.rep.Report(kind, start, l.cur.Snapshot(), msg)
	l.diags = append(l.diags, d)
}

// ---- token reading ----

func (l *Lexer) scanToken() {
	ch := l.peek()

	switch ch {
	case ' ', '\n', '\r':
		l.advance()
	case '~':
		l.skipComment()

	case '+':
		l.singleChar(token.PLUS)
	case '-':
		l.singleChar(token.MINUS)
	case '*':
		l.singleChar(token.STAR)
	case '/':
		l.singleChar(token.SLASH)
	case '%':
		l.singleChar(token.PERCENT)
	case '^':
		l.singleChar(token.CARET)
	case '(':
		l.singleChar(token.LPAREN)
	case ')':
		l.singleChar(token.RPAREN)
	case '{':
		l.singleChar(token.LBRACE)
	case '}':
		l.singleChar(token.RBRACE)
	case '?':
		l.singleChar(token.QMARK)
	case '@':
		l.singleChar(token.AT)
	case '$':
		l.singleChar(token.DOLLAR)
	case '.':
		l.singleChar(token.DOT)
	case ';':
		l.singleChar(token.SEMICOLON)

	case '=':
		l.twoChar('=', token.EQ, token.EE)
	case '!':
		l.twoChar('=', token.NOT, token.NE)
	case '<':
		l.twoChar('=', token.LT, token.LTE)
	case '>':
		l.twoChar('=', token.GTE, token.GTE)
	case '|':
		l.twoChar('-', token.BWOR, token.ASSERT)

	default:
		switch {
		case isDigit(ch):
			l.readNumber()
		case isIdentStart(ch):
			l.readIdentifier()
		default:
			start := l.cur.Snapshot()
			r := l.advance()
			d := l.rep.InvalidChar(start, l.cur.Snapshot(), fmt.Sprintf("Invalid character '%c'", r))
			l.diags = append(l.diags, d)
		}
	}
}

// skipComment skips a "~" line comment or a "~~ ... ~~" block comment.
// An unterminated block comment runs to end of input without a diagnostic.
func (l *Lexer) skipComment() {
	l.advance() // ~
	if l.peek() != '~' {
		for !l.isAtEnd() && l.peek() != '\n' {
			l.advance()
		}
		return
	}

	l.advance() // second ~
	for !l.isAtEnd() {
		if l.peek() == '~' && l.peekNext() == '~' {
			l.advance()
			l.advance()
			return
		}
		l.advance()
	}
}

func (l *Lexer) singleChar(kind token.Kind) {
	start := l.cur.Snapshot()
	lexeme := string(l.peek())
	l.advance()
	l.addToken(kind, lexeme, nil, start)
}

// twoChar consumes the current character and, if the next one is follow,
// that one too.
func (l *Lexer) twoChar(follow byte, single, double token.Kind) {
	start := l.cur.Snapshot()
	from := l.cur.Offset()
	kind := single
	l.advance()

	if l.peek() == follow {
		kind = double
		l.advance()
	}
	l.addToken(kind, l.src.Text[from:l.cur.Offset()], nil, start)
}

// readNumber reads an integer or float literal. A '.' only continues the
// literal when a digit follows it.
func (l *Lexer) readNumber() {
	start := l.cur.Snapshot()
	from := l.cur.Offset()
	isFloat := false

	for isDigit(l.peek()) {
		l.advance()
	}

	if l.peek() == '.' && isDigit(l.peekNext()) {
		isFloat = true
		l.advance() // skip '.'
		for isDigit(l.peek()) {
			l.advance()
		}
	}

	lexeme := l.src.Text[from:l.cur.Offset()]
	if isFloat {
		value, err := strconv.ParseFloat(lexeme, 64)
		if err != nil {
			l.report(diag.InvalidNumber, start, fmt.Sprintf("Float literal '%s' is out of range", lexeme))
		}
		l.addToken(token.FLOAT, lexeme, value, start)
		return
	}

	// ParseInt clamps to the int64 bounds on overflow.
	value, err := strconv.ParseInt(lexeme, 10, 64)
	if err != nil {
		l.report(diag.InvalidNumber, start, fmt.Sprintf("Integer literal '%s' is out of range", lexeme))
	}
	l.addToken(token.INT, lexeme, value, start)
}

// readIdentifier reads an identifier or keyword.
func (l *Lexer) readIdentifier() {
	start := l.cur.Snapshot()
	from := l.cur.Offset()

	for isIdentPart(l.peek()) {
		l.advance()
	}

	lexeme := l.src.Text[from:l.cur.Offset()]
	l.addToken(token.LookupIdent(lexeme), lexeme, nil, start)
}

// ---- character classification ----

func isDigit(ch byte) bool {
	return ch >= '0' && ch <= '9'
}

func isIdentStart(ch byte) bool {
	return ch == '_' || (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z')
}

func isIdentPart(ch byte) bool {
	return isIdentStart(ch) || isDigit(ch)
}

package lexer

import (
	"bytes"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"timid-lang/internal/diag"
	"timid-lang/internal/span"
	"timid-lang/internal/token"
)

func tokenize(source string) ([]token.Token, []diag.Diagnostic) {
	return New(span.NewSource(source, "test.tm"), nil).Tokenize()
}

func kinds(tokens []token.Token) []token.Kind {
	out := make([]token.Kind, len(tokens))
	for i, tok := range tokens {
		out[i] = tok.Kind
	}
	return out
}

func TestTokenizeSimple(t *testing.T) {
	tokens, diags := tokenize(`-(1 + 2.5) * tru`)
	require.Empty(t, diags)

	expected := []token.Kind{
		token.MINUS, token.LPAREN, token.INT, token.PLUS, token.FLOAT,
		token.RPAREN, token.STAR, token.TRUE, token.EOF,
	}
	assert.Equal(t, expected, kinds(tokens))
}

func TestTokenizeNumbers(t *testing.T) {
	tests := []struct {
		name   string
		source string
		kinds  []token.Kind
		value  interface{}
	}{
		{"int", "12", []token.Kind{token.INT, token.EOF}, int64(12)},
		{"float", "12.5", []token.Kind{token.FLOAT, token.EOF}, 12.5},
		{"trailing dot", "12.", []token.Kind{token.INT, token.DOT, token.EOF}, int64(12)},
		{"zero", "0", []token.Kind{token.INT, token.EOF}, int64(0)},
		{"two dots", "1.2.3", []token.Kind{token.FLOAT, token.DOT, token.INT, token.EOF}, 1.2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tokens, diags := tokenize(tt.source)
			require.Empty(t, diags)
			assert.Equal(t, tt.kinds, kinds(tokens))
			assert.Equal(t, tt.value, tokens[0].Value)
		})
	}
}

func TestTokenizeTrailingDotLexemes(t *testing.T) {
	tokens, _ := tokenize("12.")
	require.Len(t, tokens, 3)
	assert.Equal(t, "12", tokens[0].Lexeme)
	assert.Equal(t, ".", tokens[1].Lexeme)
	assert.Nil(t, tokens[1].Value)
}

func TestTokenizeIntegerOverflow(t *testing.T) {
	tokens, diags := tokenize("99999999999999999999")
	require.Len(t, diags, 1)
	assert.Equal(t, diag.InvalidNumber, diags[0].Kind)
	assert.Equal(t, token.INT, tokens[0].Kind)
	assert.Equal(t, int64(math.MaxInt64), tokens[0].Value)
}

func TestTokenizeKeywords(t *testing.T) {
	tokens, diags := tokenize(`tru fls nul true _x1 nulx`)
	require.Empty(t, diags)

	expected := []token.Kind{
		token.TRUE, token.FALSE, token.NULL,
		token.IDENT, token.IDENT, token.IDENT, token.EOF,
	}
	assert.Equal(t, expected, kinds(tokens))
	assert.Equal(t, "_x1", tokens[4].Lexeme)
	assert.Equal(t, "nulx", tokens[5].Lexeme)
}

func TestTokenizeOperators(t *testing.T) {
	tokens, diags := tokenize(`= == ! != < <= > >= | |-`)
	require.Empty(t, diags)

	expected := []token.Kind{
		token.EQ, token.EE, token.NOT, token.NE,
		token.LT, token.LTE, token.GTE, token.GTE,
		token.BWOR, token.ASSERT, token.EOF,
	}
	assert.Equal(t, expected, kinds(tokens))
	assert.Equal(t, ">", tokens[6].Lexeme)
	assert.Equal(t, ">=", tokens[7].Lexeme)
}

func TestTokenizeTwoCharSpans(t *testing.T) {
	tokens, _ := tokenize("<= <")
	assert.Equal(t, 0, tokens[0].Span.Start.Offset)
	assert.Equal(t, 2, tokens[0].Span.End.Offset)
	assert.Equal(t, 3, tokens[1].Span.Start.Offset)
	assert.Equal(t, 4, tokens[1].Span.End.Offset)
}

func TestTokenizeDelimiters(t *testing.T) {
	tokens, diags := tokenize(`+ - * / % ^ ( ) { } ? @ $ . ;`)
	require.Empty(t, diags)

	expected := []token.Kind{
		token.PLUS, token.MINUS, token.STAR, token.SLASH, token.PERCENT, token.CARET,
		token.LPAREN, token.RPAREN, token.LBRACE, token.RBRACE,
		token.QMARK, token.AT, token.DOLLAR, token.DOT, token.SEMICOLON,
		token.EOF,
	}
	assert.Equal(t, expected, kinds(tokens))
}

func TestTokenizeComments(t *testing.T) {
	tests := []struct {
		name   string
		source string
		kinds  []token.Kind
	}{
		{"line", "1 ~ note\n2", []token.Kind{token.INT, token.INT, token.EOF}},
		{"line at end", "1 ~ note", []token.Kind{token.INT, token.EOF}},
		{"block", "1 ~~ a\nb ~~ 2", []token.Kind{token.INT, token.INT, token.EOF}},
		{"block with single tilde", "~~ a ~ b ~~ 3", []token.Kind{token.INT, token.EOF}},
		{"empty block", "~~~~4", []token.Kind{token.INT, token.EOF}},
		{"unterminated block", "~~ comment", []token.Kind{token.EOF}},
		{"unterminated swallows rest", "~~ 1 + 2 ~", []token.Kind{token.EOF}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tokens, diags := tokenize(tt.source)
			assert.Empty(t, diags)
			assert.Equal(t, tt.kinds, kinds(tokens))
		})
	}
}

func TestTokenizeInvalidCharacter(t *testing.T) {
	var buf bytes.Buffer
	rep := diag.NewReporter(&buf)
	tokens, diags := New(span.NewSource("#", "test.tm"), rep).Tokenize()

	require.Len(t, diags, 1)
	assert.Equal(t, diag.InvalidCharacter, diags[0].Kind)
	assert.Equal(t, "Invalid character '#'", diags[0].Message)
	assert.Equal(t, 0, diags[0].Span.Start.Offset)
	assert.Equal(t, 1, diags[0].Span.End.Offset)
	assert.Equal(t, []token.Kind{token.EOF}, kinds(tokens))

	assert.True(t, rep.HadError())
	assert.Equal(t, 1, rep.Len())
	assert.Equal(t, diags, rep.Diagnostics())
	assert.Equal(t, "Invalid Character Error @ (1, 1)\n        Invalid character '#'\n#\n^\n", buf.String())
}

func TestTokenizeKeepsGoingAfterInvalid(t *testing.T) {
	tokens, diags := tokenize("1 # 2 & 3\t")
	require.Len(t, diags, 3)
	assert.Equal(t, "Invalid character '#'", diags[0].Message)
	assert.Equal(t, "Invalid character '&'", diags[1].Message)
	assert.Equal(t, "Invalid character '\t'", diags[2].Message)
	assert.Equal(t, []token.Kind{token.INT, token.INT, token.INT, token.EOF}, kinds(tokens))
}

func TestTokenizeMultiByteInvalid(t *testing.T) {
	tokens, diags := tokenize("é1")
	require.Len(t, diags, 1)
	assert.Equal(t, 0, diags[0].Span.Start.Offset)
	assert.Equal(t, 2, diags[0].Span.End.Offset)
	assert.Equal(t, 1, diags[0].Span.End.Column)

	require.Len(t, tokens, 2)
	assert.Equal(t, 2, tokens[0].Span.Start.Offset)
	assert.Equal(t, 1, tokens[0].Span.Start.Column)
}

func TestTokenizePositions(t *testing.T) {
	tokens, _ := tokenize("tru\n  12")

	assert.Equal(t, 0, tokens[0].Span.Start.Line)
	assert.Equal(t, 0, tokens[0].Span.Start.Column)
	assert.Equal(t, 3, tokens[0].Span.End.Column)

	// "12" starts at line 2, col 3 (1-based)
	assert.Equal(t, "(2, 3)", tokens[1].Span.Start.String())
	assert.Equal(t, 6, tokens[1].Span.Start.Offset)
	assert.Equal(t, 8, tokens[1].Span.End.Offset)
	assert.Equal(t, 4, tokens[1].Span.End.Column)
}

func TestTokenizeEOF(t *testing.T) {
	for _, source := range []string{"", " ", "1", "#", "~~", "\n\n", "((", "tru fls"} {
		tokens, _ := tokenize(source)
		require.NotEmpty(t, tokens, source)

		eofs := 0
		for _, tok := range tokens {
			if tok.Kind == token.EOF {
				eofs++
			}
		}
		assert.Equal(t, 1, eofs, source)

		last := tokens[len(tokens)-1]
		assert.Equal(t, token.EOF, last.Kind, source)
		assert.Equal(t, token.EOFLexeme, last.Lexeme, source)
		assert.Equal(t, len(source), last.Span.Start.Offset, source)
		assert.Equal(t, len(source)+1, last.Span.End.Offset, source)
	}
}

func TestTokenizeIdempotent(t *testing.T) {
	source := "~~ x ~~ -(12.5 <= nul) |- fls\n$ @ 7"
	first, d1 := tokenize(source)
	second, d2 := tokenize(source)

	assert.Equal(t, d1, d2)
	require.Equal(t, len(first), len(second))
	for i := range first {
		assert.Equal(t, first[i].Kind, second[i].Kind)
		assert.Equal(t, first[i].Lexeme, second[i].Lexeme)
		assert.Equal(t, first[i].Value, second[i].Value)
		assert.Equal(t, first[i].Span.Start.Offset, second[i].Span.Start.Offset)
		assert.Equal(t, first[i].Span.End.Offset, second[i].Span.End.Offset)
	}
}

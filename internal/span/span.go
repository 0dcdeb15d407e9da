// Package span provides source position and span types used across the front end.
//
// A Cursor is the only mutable position type and lives inside the lexer.
// Everything else (tokens, AST nodes, diagnostics) holds Position and Span
// values, which are frozen snapshots taken from a cursor.
package span

import "fmt"

// Source is a named piece of source text.
type Source struct {
	Path string // display path or label, e.g. "<stdin>"
	Text string
}

// NewSource returns a Source for text labelled with path.
func NewSource(text, path string) *Source {
	return &Source{Path: path, Text: text}
}

// Position is an immutable point in a Source.
type Position struct {
	Offset int     `json:"offset"` // byte offset from beginning of source
	Line   int     `json:"line"`   // 0-based line number
	Column int     `json:"column"` // 0-based column, counted in characters
	Source *Source `json:"-"`
}

// String renders the position 1-based, e.g. "(3, 7)".
func (p Position) String() string {
	return fmt.Sprintf("(%d, %d)", p.Line+1, p.Column+1)
}

// Next returns p advanced by one placeholder character. It is the default
// end of a token or node whose end was not given explicitly.
func (p Position) Next() Position {
	c := Cursor{pos: p}
	return c.Advance(0, 1).Snapshot()
}

// Span represents a range in source code [Start, End).
type Span struct {
	Start Position `json:"start"`
	End   Position `json:"end"`
}

// At returns the span covering one placeholder character at p.
func At(p Position) Span {
	return Span{Start: p, End: p.Next()}
}

func (s Span) String() string {
	return fmt.Sprintf("%s..%s", s.Start, s.End)
}

// Len returns the byte length of the span.
func (s Span) Len() int {
	return s.End.Offset - s.Start.Offset
}

// Union returns the span from the start of s to the end of other.
func (s Span) Union(other Span) Span {
	return Span{Start: s.Start, End: other.End}
}

// Cursor is the mutable scanning position.
type Cursor struct {
	pos Position
}

// NewCursor returns a cursor at the beginning of src.
func NewCursor(src *Source) *Cursor {
	return &Cursor{pos: Position{Source: src}}
}

// Advance moves the cursor past ch, which occupies width bytes. A newline
// moves to column 0 of the next line. Advancing past the end of the source
// is allowed; bounds are the caller's concern.
func (c *Cursor) Advance(ch rune, width int) *Cursor {
	if width < 1 {
		width = 1
	}
	c.pos.Offset += width
	c.pos.Column++
	if ch == '\n' {
		c.pos.Line++
		c.pos.Column = 0
	}
	return c
}

// Offset returns the current byte offset.
func (c *Cursor) Offset() int { return c.pos.Offset }

// Snapshot freezes the current position.
func (c *Cursor) Snapshot() Position {
	return c.pos
}

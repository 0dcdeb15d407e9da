// Package diag provides diagnostic types and the run-local reporter that
// renders them for the front end.
package diag

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"timid-lang/internal/span"
)

// Kind classifies a diagnostic. It is rendered as the "<Kind> Error" header.
type Kind int

const (
	InvalidCharacter Kind = iota
	InvalidNumber
	Syntax
	Runtime
)

func (k Kind) String() string {
	switch k {
	case InvalidCharacter:
		return "Invalid Character"
	case InvalidNumber:
		return "Invalid Number"
	case Syntax:
		return "Syntax"
	case Runtime:
		return "Runtime"
	default:
		return "Unknown"
	}
}

// Diagnostic is a single located error message.
type Diagnostic struct {
	Kind    Kind      `json:"kind"`
	Message string    `json:"message"`
	Span    span.Span `json:"span"`
}

// Errorf creates a diagnostic of the given kind at s.
func Errorf(kind Kind, s span.Span, format string, args ...interface{}) Diagnostic {
	return Diagnostic{
		Kind:    kind,
		Message: fmt.Sprintf(format, args...),
		Span:    s,
	}
}

// Header returns the first line of the rendered diagnostic.
func (d Diagnostic) Header() string {
	return fmt.Sprintf("%s Error @ %s", d.Kind, d.Span.Start)
}

// Error implements error with a one-line summary.
func (d Diagnostic) Error() string {
	return d.Header() + ": " + d.Message
}

// String renders the full multi-line diagnostic, ending in a newline.
func (d Diagnostic) String() string {
	var b strings.Builder
	b.WriteString(d.Header())
	b.WriteByte('\n')
	b.WriteString("        ")
	b.WriteString(d.Message)
	b.WriteByte('\n')
	b.WriteString(Excerpt(d.Span.Start, d.Span.End))
	b.WriteByte('\n')
	return b.String()
}

// Excerpt returns the source lines covered by [start, end), each followed by
// a caret underline. Tabs become single spaces in the output.
func Excerpt(start, end span.Position) string {
	var text string
	if start.Source != nil {
		text = start.Source.Text
	}

	from := min(max(start.Offset, 0), len(text))
	lineStart := strings.LastIndexByte(text[:from], '\n') + 1
	lineEnd := lineEndFrom(text, lineStart)

	count := end.Line - start.Line + 1
	if count < 1 {
		count = 1
	}

	var b strings.Builder
	for i := 0; i < count; i++ {
		line := strings.TrimSuffix(text[lineStart:lineEnd], "\r")

		colStart := 0
		if i == 0 {
			colStart = start.Column
		}
		colEnd := utf8.RuneCountInString(line) - 1
		if i == count-1 {
			colEnd = end.Column
		}

		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(line)
		b.WriteByte('\n')
		b.WriteString(strings.Repeat(" ", max(colStart, 0)))
		b.WriteString(strings.Repeat("^", max(colEnd-colStart, 0)))

		if lineEnd >= len(text) {
			break
		}
		lineStart = lineEnd + 1
		lineEnd = lineEndFrom(text, lineStart)
	}
	return strings.ReplaceAll(b.String(), "\t", " ")
}

func lineEndFrom(text string, from int) int {
	if i := strings.IndexByte(text[from:], '\n'); i >= 0 {
		return from + i
	}
	return len(text)
}

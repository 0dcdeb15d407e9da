package diag

import (
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"timid-lang/internal/span"
)

var headerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)

// Reporter collects the diagnostics of one run and writes each one to its
// writer as soon as it is reported. A Reporter is not shared between runs.
type Reporter struct {
	w     io.Writer
	color bool

	diags           []Diagnostic
	hadError        bool
	hadRuntimeError bool
}

// ReporterOption configures a Reporter.
type ReporterOption func(*Reporter)

// WithColor renders diagnostic headers in color.
func WithColor(on bool) ReporterOption {
	return func(r *Reporter) { r.color = on }
}

// NewReporter returns a Reporter writing to w. A nil w records without writing.
func NewReporter(w io.Writer, opts ...ReporterOption) *Reporter {
	r := &Reporter{w: w}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Discard returns a Reporter that only records.
func Discard() *Reporter {
	return NewReporter(nil)
}

// Report renders and records a diagnostic spanning [start, end) and marks
// the run as failed.
func (r *Reporter) Report(kind Kind, start, end span.Position, message string) Diagnostic {
	d := Diagnostic{Kind: kind, Message: message, Span: span.Span{Start: start, End: end}}
	r.emit(d)
	if kind == Runtime {
		r.hadRuntimeError = true
	} else {
		r.hadError = true
	}
	return d
}

// InvalidChar reports a lexical error for an unrecognized character.
func (r *Reporter) InvalidChar(start, end span.Position, message string) Diagnostic {
	return r.Report(InvalidCharacter, start, end, message)
}

// SyntaxError reports a parse error over s, usually a token's span.
func (r *Reporter) SyntaxError(s span.Span, message string) Diagnostic {
	return r.Report(Syntax, s.Start, s.End, message)
}

func (r *Reporter) emit(d Diagnostic) {
	r.diags = append(r.diags, d)
	if r.w == nil {
		return
	}
	text := d.String()
	if r.color {
		header, rest, _ := strings.Cut(text, "\n")
		text = headerStyle.Render(header) + "\n" + rest
	}
	_, _ = io.WriteString(r.w, text)
}

// HadError reports whether a lexical or syntax diagnostic was reported.
func (r *Reporter) HadError() bool { return r.hadError }

// HadRuntimeError reports whether a runtime diagnostic was reported.
func (r *Reporter) HadRuntimeError() bool { return r.hadRuntimeError }

// Diagnostics returns everything reported since the last Reset.
func (r *Reporter) Diagnostics() []Diagnostic { return r.diags }

// Len returns the number of diagnostics reported since the last Reset.
func (r *Reporter) Len() int { return len(r.diags) }

// Reset clears both flags and the recorded diagnostics. Interactive callers
// reset before each independent input.
func (r *Reporter) Reset() {
	r.diags = nil
	r.hadError = false
	r.hadRuntimeError = false
}

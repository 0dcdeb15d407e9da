package driver

import (
	"context"

	"timid-lang/internal/diag"
	"timid-lang/internal/span"
)

// Session runs independent inputs one after another, as an interactive
// loop does. It keeps one reporter and resets it before every input so an
// error on one line does not fail the next.
type Session struct {
	d     *Driver
	label string
	rep   *diag.Reporter
	count int
}

// NewSession starts a session whose inputs are labelled label.
func (d *Driver) NewSession(label string) *Session {
	return &Session{d: d, label: label, rep: d.newReporter(d.diagOut)}
}

// Run lexes and parses one input.
func (s *Session) Run(ctx context.Context, input string) *Result {
	s.rep.Reset()
	s.count++
	return s.d.run(ctx, span.NewSource(input, s.label), s.rep)
}

// HadError reports whether the most recent input failed.
func (s *Session) HadError() bool {
	return s.rep.HadError()
}

// Count returns the number of inputs run so far.
func (s *Session) Count() int {
	return s.count
}

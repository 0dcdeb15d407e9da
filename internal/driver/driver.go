// Package driver runs the front end over a source: one lexer pass and one
// parser pass with a diagnostics reporter owned by that run.
package driver

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/google/uuid"

	"timid-lang/internal/ast"
	"timid-lang/internal/diag"
	"timid-lang/internal/lexer"
	"timid-lang/internal/parser"
	"timid-lang/internal/span"
	"timid-lang/internal/token"
)

// Process exit codes used by the command line.
const (
	ExitOK      = 0
	ExitUsage   = 64 // invalid invocation
	ExitDataErr = 65 // the run reported at least one diagnostic
)

// ExitError carries a process exit code out of a command.
// Err may be nil when everything worth saying was already printed.
type ExitError struct {
	Code int
	Err  error
}

func (e *ExitError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("exit status %d", e.Code)
	}
	return e.Err.Error()
}

func (e *ExitError) Unwrap() error { return e.Err }

// Result is the outcome of one run.
type Result struct {
	ID          string
	Source      *span.Source
	Tokens      []token.Token
	Expr        ast.Expr // nil when parsing failed
	Diagnostics []diag.Diagnostic

	hadError bool
}

// Failed reports whether the run produced any lexical or syntax diagnostic.
// A run can fail and still have an Expr when only the lexer complained.
func (r *Result) Failed() bool {
	return r.hadError
}

// Driver runs sources through the lexer and parser.
type Driver struct {
	logger  *slog.Logger
	diagOut io.Writer
	color   bool
}

// Option configures a Driver.
type Option func(*Driver)

// WithLogger sets the logger for run events.
func WithLogger(l *slog.Logger) Option {
	return func(d *Driver) { d.logger = l }
}

// WithDiagnostics sets where rendered diagnostics are written. A nil writer
// keeps them on the Result only.
func WithDiagnostics(w io.Writer) Option {
	return func(d *Driver) { d.diagOut = w }
}

// WithColor colors diagnostic headers.
func WithColor(on bool) Option {
	return func(d *Driver) { d.color = on }
}

// New creates a Driver. By default diagnostics go to stderr and logs are
// discarded.
func New(opts ...Option) *Driver {
	d := &Driver{diagOut: os.Stderr}
	for _, opt := range opts {
		opt(d)
	}
	if d.logger == nil {
		d.logger = slog.New(slog.DiscardHandler)
	}
	return d
}

func (d *Driver) newReporter(w io.Writer) *diag.Reporter {
	return diag.NewReporter(w, diag.WithColor(d.color))
}

// Run lexes and parses source, labelled path in diagnostics.
func (d *Driver) Run(ctx context.Context, source, path string) *Result {
	return d.run(ctx, span.NewSource(source, path), d.newReporter(d.diagOut))
}

// RunFile reads path and runs it.
func (d *Driver) RunFile(ctx context.Context, path string) (*Result, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read file %s: %w", path, err)
	}
	return d.Run(ctx, string(data), path), nil
}

// TokenizeFile reads path and lexes it without parsing. The Result has no
// Expr and carries lexical diagnostics only.
func (d *Driver) TokenizeFile(ctx context.Context, path string) (*Result, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read file %s: %w", path, err)
	}
	res := &Result{ID: uuid.NewString(), Source: span.NewSource(string(data), path)}
	rep := d.newReporter(d.diagOut)
	log := d.runLogger(res)
	res.Tokens = lex(ctx, log, res.Source, rep)
	finish(ctx, log, res, rep)
	return res, nil
}

// runLogger tags every record of one run with its id and path.
func (d *Driver) runLogger(res *Result) *slog.Logger {
	return d.logger.With("run_id", res.ID, "path", res.Source.Path)
}

func lex(ctx context.Context, log *slog.Logger, src *span.Source, rep *diag.Reporter) []token.Token {
	tokens, diags := lexer.New(src, rep).Tokenize()
	log.DebugContext(ctx, "lexed source", "bytes", len(src.Text), "tokens", len(tokens), "diagnostics", len(diags))
	return tokens
}

func (d *Driver) run(ctx context.Context, src *span.Source, rep *diag.Reporter) *Result {
	res := &Result{ID: uuid.NewString(), Source: src}
	log := d.runLogger(res)

	res.Tokens = lex(ctx, log, src, rep)

	expr, parseDiags := parser.New(res.Tokens, rep).Parse()
	res.Expr = expr
	log.DebugContext(ctx, "parsed tokens", "ok", expr != nil, "diagnostics", len(parseDiags))

	finish(ctx, log, res, rep)
	return res
}

// finish copies the reporter's record of this run onto res. The reporter
// is fresh or freshly reset, so it holds this run's diagnostics only.
func finish(ctx context.Context, log *slog.Logger, res *Result, rep *diag.Reporter) {
	res.Diagnostics = append([]diag.Diagnostic(nil), rep.Diagnostics()...)
	res.hadError = rep.HadError()
	if res.hadError {
		log.InfoContext(ctx, "run failed", "diagnostics", rep.Len())
	}
}

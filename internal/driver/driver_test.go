package driver

import (
	"bytes"
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"timid-lang/internal/ast"
	"timid-lang/internal/diag"
	"timid-lang/internal/testutil"
	"timid-lang/internal/token"
)

func newTestDriver(t *testing.T, out *bytes.Buffer) *Driver {
	t.Helper()
	var opts []Option
	opts = append(opts, WithLogger(testutil.NewTestLogger(t)))
	if out != nil {
		opts = append(opts, WithDiagnostics(out))
	} else {
		opts = append(opts, WithDiagnostics(nil))
	}
	return New(opts...)
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestRunOK(t *testing.T) {
	var out bytes.Buffer
	res := newTestDriver(t, &out).Run(context.Background(), "-5", "<test>")

	assert.False(t, res.Failed())
	assert.NotEmpty(t, res.ID)
	assert.Empty(t, res.Diagnostics)
	assert.Empty(t, out.String())
	assert.Equal(t, "(- 5)", ast.Sprint(res.Expr))
	assert.Equal(t, token.EOF, res.Tokens[len(res.Tokens)-1].Kind)
	assert.Equal(t, "<test>", res.Source.Path)
}

func TestRunSyntaxError(t *testing.T) {
	var out bytes.Buffer
	res := newTestDriver(t, &out).Run(context.Background(), "(1", "<test>")

	assert.True(t, res.Failed())
	assert.Nil(t, res.Expr)
	require.Len(t, res.Diagnostics, 1)
	assert.Equal(t, diag.Syntax, res.Diagnostics[0].Kind)
	assert.True(t, strings.HasPrefix(out.String(), "Syntax Error @ (1, 3)\n"))
}

func TestRunLexErrorStillParses(t *testing.T) {
	res := newTestDriver(t, nil).Run(context.Background(), "# 1", "<test>")

	assert.True(t, res.Failed())
	require.Len(t, res.Diagnostics, 1)
	assert.Equal(t, diag.InvalidCharacter, res.Diagnostics[0].Kind)
	assert.Equal(t, "1", ast.Sprint(res.Expr))
}

func TestRunsAreIndependent(t *testing.T) {
	d := newTestDriver(t, nil)
	bad := d.Run(context.Background(), "#", "<a>")
	good := d.Run(context.Background(), "tru", "<b>")

	assert.True(t, bad.Failed())
	assert.False(t, good.Failed())
	assert.NotEqual(t, bad.ID, good.ID)
}

func TestRunFileMissing(t *testing.T) {
	_, err := newTestDriver(t, nil).RunFile(context.Background(), filepath.Join(t.TempDir(), "nope.tm"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, fs.ErrNotExist))
}

func TestSessionResetsBetweenInputs(t *testing.T) {
	var out bytes.Buffer
	s := newTestDriver(t, &out).NewSession("<stdin>")

	first := s.Run(context.Background(), "(")
	assert.True(t, first.Failed())
	assert.True(t, s.HadError())

	second := s.Run(context.Background(), "nul")
	assert.False(t, second.Failed())
	assert.False(t, s.HadError())
	assert.Empty(t, second.Diagnostics)
	assert.Equal(t, 2, s.Count())

	assert.Equal(t, 1, strings.Count(out.String(), "Syntax Error"))
}

func TestCheckFiles(t *testing.T) {
	dir := t.TempDir()
	paths := []string{
		writeFile(t, dir, "a.tm", "-1"),
		writeFile(t, dir, "b.tm", "(2"),
		writeFile(t, dir, "c.tm", "#tru"),
		writeFile(t, dir, "d.tm", "!fls"),
	}

	var out bytes.Buffer
	results, err := newTestDriver(t, &out).CheckFiles(context.Background(), paths, 3)
	require.NoError(t, err)
	require.Len(t, results, 4)

	for i, res := range results {
		assert.Equal(t, paths[i], res.Source.Path)
	}
	assert.False(t, results[0].Failed())
	assert.True(t, results[1].Failed())
	assert.True(t, results[2].Failed())
	assert.False(t, results[3].Failed())

	// each run only sees its own diagnostics
	assert.Len(t, results[1].Diagnostics, 1)
	assert.Equal(t, diag.Syntax, results[1].Diagnostics[0].Kind)
	assert.Len(t, results[2].Diagnostics, 1)
	assert.Equal(t, diag.InvalidCharacter, results[2].Diagnostics[0].Kind)

	// flushed in input order
	text := out.String()
	syntaxAt := strings.Index(text, "Syntax Error")
	invalidAt := strings.Index(text, "Invalid Character Error")
	require.GreaterOrEqual(t, syntaxAt, 0)
	require.GreaterOrEqual(t, invalidAt, 0)
	assert.Less(t, syntaxAt, invalidAt)
}

func TestCheckFilesMissing(t *testing.T) {
	dir := t.TempDir()
	paths := []string{writeFile(t, dir, "a.tm", "1"), filepath.Join(dir, "missing.tm")}

	_, err := newTestDriver(t, nil).CheckFiles(context.Background(), paths, 0)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing.tm")
}

func TestCheckFilesCanceled(t *testing.T) {
	dir := t.TempDir()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newTestDriver(t, nil).CheckFiles(ctx, []string{writeFile(t, dir, "a.tm", "1")}, 1)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestExitError(t *testing.T) {
	err := &ExitError{Code: ExitDataErr}
	assert.Equal(t, "exit status 65", err.Error())

	inner := errors.New("usage")
	wrapped := &ExitError{Code: ExitUsage, Err: inner}
	assert.Equal(t, "usage", wrapped.Error())
	assert.ErrorIs(t, wrapped, inner)
}

func TestTokenizeFile(t *testing.T) {
	var out bytes.Buffer
	path := writeFile(t, t.TempDir(), "a.tm", "(1 #")

	res, err := newTestDriver(t, &out).TokenizeFile(context.Background(), path)
	require.NoError(t, err)

	assert.True(t, res.Failed())
	assert.Nil(t, res.Expr)
	require.Len(t, res.Diagnostics, 1)
	assert.Equal(t, diag.InvalidCharacter, res.Diagnostics[0].Kind)
	// the missing ')' is a parse error and never reported here
	assert.NotContains(t, out.String(), "Syntax Error")

	kinds := make([]token.Kind, len(res.Tokens))
	for i, tok := range res.Tokens {
		kinds[i] = tok.Kind
	}
	assert.Equal(t, []token.Kind{token.LPAREN, token.INT, token.EOF}, kinds)
}

func TestRunDiagnosticsMatchReporter(t *testing.T) {
	res := newTestDriver(t, nil).Run(context.Background(), "# (1", "<test>")

	require.Len(t, res.Diagnostics, 2)
	assert.Equal(t, diag.InvalidCharacter, res.Diagnostics[0].Kind)
	assert.Equal(t, diag.Syntax, res.Diagnostics[1].Kind)
}

func TestSessionRunKeepsOnlyCurrentDiagnostics(t *testing.T) {
	s := newTestDriver(t, nil).NewSession("<stdin>")

	first := s.Run(context.Background(), "# $")
	require.Len(t, first.Diagnostics, 2)

	second := s.Run(context.Background(), "(")
	require.Len(t, second.Diagnostics, 1)
	assert.Equal(t, diag.Syntax, second.Diagnostics[0].Kind)
	assert.Len(t, first.Diagnostics, 2, "earlier results are not touched by later runs")
}

func TestRunLogRecordsShareRunAttributes(t *testing.T) {
	tests := []struct {
		name string
		run  func(d *Driver, path string) (*Result, error)
		msgs []string
	}{
		{"run", func(d *Driver, path string) (*Result, error) {
			return d.RunFile(context.Background(), path)
		}, []string{"lexed source", "parsed tokens", "run failed"}},
		{"tokenize", func(d *Driver, path string) (*Result, error) {
			return d.TokenizeFile(context.Background(), path)
		}, []string{"lexed source", "run failed"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFile(t, t.TempDir(), "a.tm", "#")

			var logs bytes.Buffer
			res, err := tt.run(New(WithLogger(testutil.NewBufferLogger(&logs)), WithDiagnostics(nil)), path)
			require.NoError(t, err)

			lines := strings.Split(strings.TrimSpace(logs.String()), "\n")
			require.Len(t, lines, len(tt.msgs))
			for i, line := range lines {
				assert.Contains(t, line, `msg="`+tt.msgs[i]+`"`)
				assert.Contains(t, line, "run_id="+res.ID)
				assert.Contains(t, line, path)
			}
		})
	}
}

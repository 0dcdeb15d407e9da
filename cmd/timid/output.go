package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"golang.org/x/term"
	"gopkg.in/yaml.v3"

	"timid-lang/internal/ast"
	"timid-lang/internal/diag"
	"timid-lang/internal/driver"
	"timid-lang/internal/token"
)

// ---- format helpers ----

// encode writes v as indented JSON or YAML.
func encode(w io.Writer, format string, v interface{}) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(v); err != nil {
			return fmt.Errorf("JSON encoding failed: %w", err)
		}
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return fmt.Errorf("YAML encoding failed: %w", err)
		}
		return enc.Close()
	default:
		return fmt.Errorf("unsupported output format %q", format)
	}
	return nil
}

// useColor resolves the color setting against the writer diagnostics go to.
func useColor(mode string, w io.Writer) bool {
	switch mode {
	case "always":
		return true
	case "never":
		return false
	}
	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		return false
	}
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// ---- diagnostic helpers ----

func diagsToSlice(diags []diag.Diagnostic) []map[string]interface{} {
	result := make([]map[string]interface{}, len(diags))
	for i, d := range diags {
		result[i] = map[string]interface{}{
			"kind":    d.Kind.String(),
			"message": d.Message,
			"line":    d.Span.Start.Line + 1,
			"column":  d.Span.Start.Column + 1,
			"offset":  d.Span.Start.Offset,
		}
	}
	return result
}

// ---- token output helpers ----

// displayLexeme makes the end marker visible in text output.
func displayLexeme(tok token.Token) string {
	if tok.Kind == token.EOF {
		return `\0`
	}
	return tok.Lexeme
}

// printTokens writes tokens as a table or, for json and yaml, together with
// diags as one document.
func printTokens(w io.Writer, format string, tokens []token.Token, diags []diag.Diagnostic) error {
	if format == "text" {
		printTokensText(w, tokens)
		return nil
	}
	return encode(w, format, map[string]interface{}{
		"tokens":      tokensToSlice(tokens),
		"diagnostics": diagsToSlice(diags),
	})
}

func printTokensText(w io.Writer, tokens []token.Token) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Kind", "Lexeme", "Value", "Line", "Column"})
	for _, tok := range tokens {
		value := ""
		if tok.Value != nil {
			value = fmt.Sprint(tok.Value)
		}
		start := tok.Span.Start
		t.AppendRow(table.Row{tok.Kind, displayLexeme(tok), value, start.Line + 1, start.Column + 1})
	}
	t.Render()
}

func tokensToSlice(tokens []token.Token) []map[string]interface{} {
	toks := make([]map[string]interface{}, len(tokens))
	for i, tok := range tokens {
		toks[i] = map[string]interface{}{
			"kind":   tok.Kind.String(),
			"lexeme": tok.Lexeme,
			"line":   tok.Span.Start.Line + 1,
			"column": tok.Span.Start.Column + 1,
			"offset": tok.Span.Start.Offset,
		}
		if tok.Value != nil {
			toks[i]["value"] = tok.Value
		}
	}
	return toks
}

// ---- AST output helpers ----

// printExpr writes the parsed expression as an S-expression line or as a
// JSON/YAML document.
func printExpr(w io.Writer, format string, res *driver.Result) error {
	if format == "text" {
		_, err := fmt.Fprintln(w, ast.Sprint(res.Expr))
		return err
	}
	return encode(w, format, map[string]interface{}{
		"ast":         ast.NodeToMap(res.Expr),
		"diagnostics": diagsToSlice(res.Diagnostics),
	})
}

// ---- check output helpers ----

func printCheck(w io.Writer, format string, results []*driver.Result) error {
	if format == "text" {
		for _, res := range results {
			status := "ok"
			if res.Failed() {
				status = fmt.Sprintf("%d diagnostic(s)", len(res.Diagnostics))
			}
			if _, err := fmt.Fprintf(w, "%s: %s\n", res.Source.Path, status); err != nil {
				return err
			}
		}
		return nil
	}

	files := make([]map[string]interface{}, len(results))
	for i, res := range results {
		files[i] = map[string]interface{}{
			"path":        res.Source.Path,
			"ok":          !res.Failed(),
			"diagnostics": diagsToSlice(res.Diagnostics),
		}
	}
	return encode(w, format, map[string]interface{}{"files": files})
}

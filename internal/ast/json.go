package ast

import (
	"fmt"
	"strings"

	"timid-lang/internal/span"
)

// NodeToMap converts an AST node to a map suitable for JSON or YAML encoding.
// This produces a tagged-union structure: every node has a "kind" field.
func NodeToMap(node Expr) map[string]interface{} {
	if node == nil {
		return nil
	}

	switch n := node.(type) {
	case *LiteralExpr:
		return m("LiteralExpr", n.Span,
			"token", n.Token.Kind.String(),
			"lexeme", n.Token.Lexeme,
			"value", n.Value())
	case *UnaryExpr:
		return m("UnaryExpr", n.Span,
			"op", n.Op.Lexeme,
			"operand", NodeToMap(n.Operand))
	case *BinaryExpr:
		return m("BinaryExpr", n.Span,
			"op", n.Op.Lexeme,
			"left", NodeToMap(n.Left),
			"right", NodeToMap(n.Right))
	default:
		panic(fmt.Sprintf("ast: unexpected node %T", node))
	}
}

// m builds a node map with kind, span, and alternating key/value pairs.
func m(kind string, s span.Span, kvs ...interface{}) map[string]interface{} {
	result := map[string]interface{}{
		"kind": kind,
		"span": spanToMap(s),
	}
	for i := 0; i+1 < len(kvs); i += 2 {
		result[kvs[i].(string)] = kvs[i+1]
	}
	return result
}

func spanToMap(s span.Span) map[string]interface{} {
	return map[string]interface{}{
		"start": posToMap(s.Start),
		"end":   posToMap(s.End),
	}
}

func posToMap(p span.Position) map[string]interface{} {
	return map[string]interface{}{
		"offset": p.Offset,
		"line":   p.Line + 1,
		"column": p.Column + 1,
	}
}

// Sprint renders node as an S-expression, e.g. "(- (! tru))".
func Sprint(node Expr) string {
	var b strings.Builder
	sprint(&b, node)
	return b.String()
}

func sprint(b *strings.Builder, node Expr) {
	switch n := node.(type) {
	case nil:
		b.WriteString("<nil>")
	case *LiteralExpr:
		b.WriteString(n.Token.Lexeme)
	case *UnaryExpr:
		b.WriteString("(")
		b.WriteString(n.Op.Lexeme)
		b.WriteString(" ")
		sprint(b, n.Operand)
		b.WriteString(")")
	case *BinaryExpr:
		b.WriteString("(")
		b.WriteString(n.Op.Lexeme)
		b.WriteString(" ")
		sprint(b, n.Left)
		b.WriteString(" ")
		sprint(b, n.Right)
		b.WriteString(")")
	default:
		panic(fmt.Sprintf("ast: unexpected node %T", node))
	}
}

package template

import (
	"strconv"
	"strings"
)

// Display renders t back to template source text. Display is the
// inverse of Parse in the sense required by the parser contract:
// Parse(Display(t)) produces a Template equivalent to t, though pipe
// expressions are displayed as their desugared call form rather than
// reconstructing the original `|` syntax.
func Display(t Template) string {
	var b strings.Builder
	for _, c := range t.chunks {
		if c.IsLiteral() {
			b.WriteString(c.Literal)
			continue
		}
		b.WriteString(delimOpen)
		displayExpr(&b, *c.Expression)
		b.WriteString(delimClose)
	}
	return b.String()
}

func displayExpr(b *strings.Builder, e Expression) {
	switch e.Kind {
	case ExprLiteral:
		displayLiteral(b, e)
	case ExprFieldRef:
		b.WriteString(e.FieldName)
	case ExprCall:
		b.WriteString(e.FuncName)
		b.WriteByte('(')
		first := true
		for _, arg := range e.Positional {
			if !first {
				b.WriteString(", ")
			}
			first = false
			displayExpr(b, arg)
		}
		for _, key := range e.KeywordOrder {
			if !first {
				b.WriteString(", ")
			}
			first = false
			b.WriteString(key)
			b.WriteByte('=')
			displayExpr(b, e.Keyword[key])
		}
		b.WriteByte(')')
	}
}

func displayLiteral(b *strings.Builder, e Expression) {
	switch e.LiteralKind {
	case LiteralString:
		b.WriteByte('\'')
		b.WriteString(escapeStringLiteral(e.StringVal))
		b.WriteByte('\'')
	case LiteralInt:
		b.WriteString(strconv.FormatInt(e.IntVal, 10))
	case LiteralFloat:
		// The lexer reads no exponents and needs a '.' to lex a float.
		s := strconv.FormatFloat(e.FloatVal, 'f', -1, 64)
		if !strings.Contains(s, ".") {
			s += ".0"
		}
		b.WriteString(s)
	case LiteralBool:
		if e.BoolVal {
			b.WriteString("true")
		} else {
			b.WriteString("false")
		}
	case LiteralNull:
		b.WriteString("null")
	}
}

func escapeStringLiteral(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch r {
		case '\\':
			b.WriteString(`\\`)
		case '\'':
			b.WriteString(`\'`)
		case '\n':
			b.WriteString(`\n`)
		case '\t':
			b.WriteString(`\t`)
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

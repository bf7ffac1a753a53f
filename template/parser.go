package template

import (
	"fmt"
	"strings"
)

const (
	delimOpen  = "{{"
	delimClose = "}}"
)

// Parse parses raw template source into a Template. The grammar is: literal
// text interspersed with `{{ expr }}` interpolations, where expr is a
// literal, a field reference, or a function call with positional and
// keyword arguments, optionally chained with `.field` accessors and `|`
// pipes. Parse accepts any template produced by Display, satisfying
// parse(display(t)) = t.
func Parse(src string) (Template, error) {
	var chunks []Chunk
	rest := src
	for {
		idx := strings.Index(rest, delimOpen)
		if idx < 0 {
			if len(rest) > 0 {
				chunks = append(chunks, Chunk{Literal: rest})
			}
			break
		}
		if idx > 0 {
			chunks = append(chunks, Chunk{Literal: rest[:idx]})
		}
		rest = rest[idx+len(delimOpen):]
		end := strings.Index(rest, delimClose)
		if end < 0 {
			return Template{}, fmt.Errorf("template: unterminated %q delimiter", delimOpen)
		}
		exprSrc := rest[:end]
		rest = rest[end+len(delimClose):]

		expr, err := parseExpression(exprSrc)
		if err != nil {
			return Template{}, fmt.Errorf("template: %w", err)
		}
		chunks = append(chunks, Chunk{Expression: &expr})
	}
	return Template{raw: src, chunks: chunks}, nil
}

// MustParse is like Parse but panics on error. Intended for tests and
// statically-known templates.
func MustParse(src string) Template {
	t, err := Parse(src)
	if err != nil {
		panic(err)
	}
	return t
}

type parser struct {
	lex  *lexer
	cur  token
	curE error
	done bool
}

func parseExpression(src string) (Expression, error) {
	p := &parser{lex: newLexer(src)}
	if err := p.advance(); err != nil {
		return Expression{}, err
	}
	expr, err := p.parsePipe()
	if err != nil {
		return Expression{}, err
	}
	if p.cur.kind != tokEOF {
		return Expression{}, fmt.Errorf("unexpected trailing token in expression %q", src)
	}
	return expr, nil
}

func (p *parser) advance() error {
	tok, err := p.lex.next()
	if err != nil {
		return err
	}
	p.cur = tok
	return nil
}

func (p *parser) parsePipe() (Expression, error) {
	left, err := p.parsePostfix()
	if err != nil {
		return Expression{}, err
	}
	for p.cur.kind == tokPipe {
		if err := p.advance(); err != nil {
			return Expression{}, err
		}
		right, err := p.parsePostfix()
		if err != nil {
			return Expression{}, err
		}
		if right.Kind != ExprCall {
			return Expression{}, fmt.Errorf("right-hand side of a pipe must be a function call")
		}
		right.Positional = append(append([]Expression{}, right.Positional...), left)
		left = right
	}
	return left, nil
}

func (p *parser) parsePostfix() (Expression, error) {
	expr, err := p.parsePrimary()
	if err != nil {
		return Expression{}, err
	}
	for p.cur.kind == tokDot {
		if err := p.advance(); err != nil {
			return Expression{}, err
		}
		if p.cur.kind != tokIdent {
			return Expression{}, fmt.Errorf("expected field name after '.'")
		}
		field := p.cur.text
		if err := p.advance(); err != nil {
			return Expression{}, err
		}
		expr = Call("index", []Expression{expr, StringLiteral(field)}, nil, nil)
	}
	return expr, nil
}

func (p *parser) parsePrimary() (Expression, error) {
	switch p.cur.kind {
	case tokString:
		s := p.cur.text
		if err := p.advance(); err != nil {
			return Expression{}, err
		}
		return StringLiteral(s), nil
	case tokInt:
		i := p.cur.i
		if err := p.advance(); err != nil {
			return Expression{}, err
		}
		return IntLiteral(i), nil
	case tokFloat:
		f := p.cur.f
		if err := p.advance(); err != nil {
			return Expression{}, err
		}
		return FloatLiteral(f), nil
	case tokIdent:
		name := p.cur.text
		if err := p.advance(); err != nil {
			return Expression{}, err
		}
		switch name {
		case "true":
			return BoolLiteral(true), nil
		case "false":
			return BoolLiteral(false), nil
		case "null":
			return NullLiteral(), nil
		}
		if p.cur.kind == tokLParen {
			return p.parseCallArgs(name)
		}
		return FieldRef(name), nil
	default:
		return Expression{}, fmt.Errorf("unexpected token in expression")
	}
}

func (p *parser) parseCallArgs(name string) (Expression, error) {
	if err := p.advance(); err != nil { // consume '('
		return Expression{}, err
	}
	var positional []Expression
	keyword := map[string]Expression{}
	var keywordOrder []string

	if p.cur.kind != tokRParen {
		for {
			if p.cur.kind == tokIdent {
				key := p.cur.text
				save := p.cur
				if err := p.advance(); err != nil {
					return Expression{}, err
				}
				if p.cur.kind == tokEquals {
					if err := p.advance(); err != nil { // consume '='
						return Expression{}, err
					}
					val, err := p.parsePipe()
					if err != nil {
						return Expression{}, err
					}
					if _, exists := keyword[key]; !exists {
						keywordOrder = append(keywordOrder, key)
					}
					keyword[key] = val
					goto afterArg
				}
				// Not a keyword arg: `save` was a bare identifier that starts a
				// positional expression (a field ref, a nested call, or the
				// start of a postfix/pipe chain). Re-synthesize by parsing the
				// rest starting from that identifier.
				{
					var base Expression
					if p.cur.kind == tokLParen {
						var err error
						base, err = p.parseCallArgs(save.text)
						if err != nil {
							return Expression{}, err
						}
					} else {
						base = identToExpr(save)
					}
					expr, err := p.continuePostfixFrom(base)
					if err != nil {
						return Expression{}, err
					}
					expr, err = p.continuePipeFrom(expr)
					if err != nil {
						return Expression{}, err
					}
					positional = append(positional, expr)
					goto afterArg
				}
			}
			{
				val, err := p.parsePipe()
				if err != nil {
					return Expression{}, err
				}
				positional = append(positional, val)
			}
		afterArg:
			if p.cur.kind == tokComma {
				if err := p.advance(); err != nil {
					return Expression{}, err
				}
				continue
			}
			break
		}
	}
	if p.cur.kind != tokRParen {
		return Expression{}, fmt.Errorf("expected ')' to close call to %s", name)
	}
	if err := p.advance(); err != nil { // consume ')'
		return Expression{}, err
	}
	return Call(name, positional, keyword, keywordOrder), nil
}

func identToExpr(tok token) Expression {
	switch tok.text {
	case "true":
		return BoolLiteral(true)
	case "false":
		return BoolLiteral(false)
	case "null":
		return NullLiteral()
	default:
		return FieldRef(tok.text)
	}
}

// continuePostfixFrom applies '.' chains starting from an already-consumed
// primary expression, mirroring parsePostfix's loop. Needed because the
// keyword-arg lookahead in parseCallArgs consumes one identifier token
// before it can tell whether it names a keyword or starts a bare value.
func (p *parser) continuePostfixFrom(expr Expression) (Expression, error) {
	for p.cur.kind == tokDot {
		if err := p.advance(); err != nil {
			return Expression{}, err
		}
		if p.cur.kind != tokIdent {
			return Expression{}, fmt.Errorf("expected field name after '.'")
		}
		field := p.cur.text
		if err := p.advance(); err != nil {
			return Expression{}, err
		}
		expr = Call("index", []Expression{expr, StringLiteral(field)}, nil, nil)
	}
	return expr, nil
}

func (p *parser) continuePipeFrom(left Expression) (Expression, error) {
	for p.cur.kind == tokPipe {
		if err := p.advance(); err != nil {
			return Expression{}, err
		}
		right, err := p.parsePostfix()
		if err != nil {
			return Expression{}, err
		}
		if right.Kind != ExprCall {
			return Expression{}, fmt.Errorf("right-hand side of a pipe must be a function call")
		}
		right.Positional = append(append([]Expression{}, right.Positional...), left)
		left = right
	}
	return left, nil
}

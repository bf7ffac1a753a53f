// Package template implements the parsed representation of the string
// template language: literal text interleaved with interpolated
// expressions. Parsing is a pure, stateless concern; evaluating a Template
// against live data is the render package's job.
package template

import "strings"

// Chunk is one element of a parsed Template: either a literal run of text
// copied verbatim, or an Expression to evaluate.
type Chunk struct {
	Literal    string
	Expression *Expression
}

// IsLiteral reports whether c is a literal text chunk.
func (c Chunk) IsLiteral() bool { return c.Expression == nil }

// Template is an ordered sequence of chunks, exactly as parsed from source
// text. A Template with no expression chunks is equivalent to its
// concatenated literal text.
type Template struct {
	raw    string
	chunks []Chunk
}

// Chunks returns the template's parsed chunks in source order.
func (t Template) Chunks() []Chunk { return t.chunks }

// Raw returns the original source text the template was parsed from.
func (t Template) Raw() string { return t.raw }

// IsStatic reports whether t has no expression chunks, i.e. rendering it
// can never depend on context.
func (t Template) IsStatic() bool {
	for _, c := range t.chunks {
		if !c.IsLiteral() {
			return false
		}
	}
	return true
}

// StaticText returns the concatenated literal text and true iff t IsStatic.
func (t Template) StaticText() (string, bool) {
	if !t.IsStatic() {
		return "", false
	}
	var b strings.Builder
	for _, c := range t.chunks {
		b.WriteString(c.Literal)
	}
	return b.String(), true
}

// New constructs a Template directly from chunks, bypassing the parser,
// for callers that build templates programmatically.
func New(raw string, chunks []Chunk) Template {
	return Template{raw: raw, chunks: chunks}
}

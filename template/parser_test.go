package template

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLiteralOnly(t *testing.T) {
	tmpl, err := Parse("hello world")
	require.NoError(t, err)
	assert.True(t, tmpl.IsStatic())
	text, ok := tmpl.StaticText()
	require.True(t, ok)
	assert.Equal(t, "hello world", text)
}

func TestParseFieldRef(t *testing.T) {
	tmpl, err := Parse("Hello {{name}}")
	require.NoError(t, err)
	chunks := tmpl.Chunks()
	require.Len(t, chunks, 2)
	assert.Equal(t, "Hello ", chunks[0].Literal)
	require.False(t, chunks[1].IsLiteral())
	assert.Equal(t, ExprFieldRef, chunks[1].Expression.Kind)
	assert.Equal(t, "name", chunks[1].Expression.FieldName)
}

func TestParseCallWithPositionalAndKeyword(t *testing.T) {
	tmpl, err := Parse("{{prompt(message='user?', sensitive=true)}}")
	require.NoError(t, err)
	expr := tmpl.Chunks()[0].Expression
	require.Equal(t, ExprCall, expr.Kind)
	assert.Equal(t, "prompt", expr.FuncName)
	assert.Empty(t, expr.Positional)
	require.Contains(t, expr.Keyword, "message")
	assert.Equal(t, "user?", expr.Keyword["message"].StringVal)
	require.Contains(t, expr.Keyword, "sensitive")
	assert.True(t, expr.Keyword["sensitive"].BoolVal)
	assert.Equal(t, []string{"message", "sensitive"}, expr.KeywordOrder)
}

func TestParseDotAccessDesugarsToIndex(t *testing.T) {
	tmpl, err := Parse("{{response('login').token}}")
	require.NoError(t, err)
	expr := tmpl.Chunks()[0].Expression
	require.Equal(t, ExprCall, expr.Kind)
	assert.Equal(t, "index", expr.FuncName)
	require.Len(t, expr.Positional, 2)
	assert.Equal(t, ExprCall, expr.Positional[0].Kind)
	assert.Equal(t, "response", expr.Positional[0].FuncName)
	assert.Equal(t, "token", expr.Positional[1].StringVal)
}

func TestParsePipeAppendsTrailingPositionalArg(t *testing.T) {
	tmpl, err := Parse("{{name | upper()}}")
	require.NoError(t, err)
	expr := tmpl.Chunks()[0].Expression
	require.Equal(t, ExprCall, expr.Kind)
	assert.Equal(t, "upper", expr.FuncName)
	require.Len(t, expr.Positional, 1)
	assert.Equal(t, ExprFieldRef, expr.Positional[0].Kind)
	assert.Equal(t, "name", expr.Positional[0].FieldName)
}

func TestParseNestedCallAsPositionalArg(t *testing.T) {
	tmpl, err := Parse("{{join(split(name, ','), '-')}}")
	require.NoError(t, err)
	expr := tmpl.Chunks()[0].Expression
	assert.Equal(t, "join", expr.FuncName)
	require.Len(t, expr.Positional, 2)
	assert.Equal(t, "split", expr.Positional[0].FuncName)
	assert.Equal(t, "-", expr.Positional[1].StringVal)
}

func TestParseNumberLiterals(t *testing.T) {
	tmpl, err := Parse("{{integer(42)}}")
	require.NoError(t, err)
	expr := tmpl.Chunks()[0].Expression
	require.Len(t, expr.Positional, 1)
	assert.Equal(t, LiteralInt, expr.Positional[0].LiteralKind)
	assert.Equal(t, int64(42), expr.Positional[0].IntVal)

	tmpl2, err := Parse("{{float(1.5)}}")
	require.NoError(t, err)
	expr2 := tmpl2.Chunks()[0].Expression
	assert.Equal(t, LiteralFloat, expr2.Positional[0].LiteralKind)
	assert.Equal(t, 1.5, expr2.Positional[0].FloatVal)
}

func TestParseUnterminatedDelimiterFails(t *testing.T) {
	_, err := Parse("{{name")
	assert.Error(t, err)
}

func TestParseEmptyCallArgs(t *testing.T) {
	tmpl, err := Parse("{{debug()}}")
	require.NoError(t, err)
	expr := tmpl.Chunks()[0].Expression
	assert.Equal(t, "debug", expr.FuncName)
	assert.Empty(t, expr.Positional)
	assert.Empty(t, expr.Keyword)
}

func TestParseDisplayRoundTrip(t *testing.T) {
	sources := []string{
		"Hello world",
		"Hello {{name}}",
		"{{response('login').token}}",
		"{{prompt(message='user?', default='x')}}",
		"{{join(split(name, ','), '-')}}",
		"prefix {{a}} middle {{b}} suffix",
	}
	for _, src := range sources {
		t.Run(src, func(t *testing.T) {
			tmpl, err := Parse(src)
			require.NoError(t, err)
			displayed := Display(tmpl)
			reparsed, err := Parse(displayed)
			require.NoError(t, err)
			assert.Equal(t, Display(reparsed), displayed)
		})
	}
}

package functions

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ferro-labs/slumberlib/value"
)

func TestIntegerCoercion(t *testing.T) {
	v, err := Integer(value.String("42"))
	require.NoError(t, err)
	i, ok := v.Int64()
	require.True(t, ok)
	assert.Equal(t, int64(42), i)

	_, err = Integer(value.String("not a number"))
	assert.Error(t, err)
}

func TestConcatStrings(t *testing.T) {
	got := Concat([]value.Value{value.String("a"), value.String("b"), value.String("c")})
	s, _ := got.TryString()
	assert.Equal(t, "abc", s)
}

func TestConcatArrays(t *testing.T) {
	got := Concat([]value.Value{
		value.Array([]value.Value{value.Int(1)}),
		value.Array([]value.Value{value.Int(2), value.Int(3)}),
	})
	assert.Len(t, got.Elements(), 3)
}

func TestIndexArray(t *testing.T) {
	arr := value.Array([]value.Value{value.Int(10), value.Int(20), value.Int(30)})
	v, err := Index(arr, value.Int(-1))
	require.NoError(t, err)
	i, _ := v.Int64()
	assert.Equal(t, int64(30), i)
}

func TestIndexObject(t *testing.T) {
	obj := value.NewObject()
	obj.Set("token", value.String("abc"))
	v, err := Index(value.ObjectValue(obj), value.String("token"))
	require.NoError(t, err)
	s, _ := v.TryString()
	assert.Equal(t, "abc", s)
}

func TestSliceArray(t *testing.T) {
	arr := value.Array([]value.Value{value.Int(1), value.Int(2), value.Int(3), value.Int(4)})
	v, err := Slice(arr, 1, 3)
	require.NoError(t, err)
	assert.Len(t, v.Elements(), 2)
}

func TestJSONQuerySingleMatch(t *testing.T) {
	v, err := JSONQuery([]byte(`{"token":"abc"}`), "token", ModeSingle)
	require.NoError(t, err)
	s, _ := v.TryString()
	assert.Equal(t, "abc", s)
}

func TestJSONQueryNoResultsErrors(t *testing.T) {
	_, err := JSONQuery([]byte(`{"a":1}`), "missing", ModeAuto)
	assert.Error(t, err)
}

func TestJSONQueryFanOutTooMany(t *testing.T) {
	_, err := JSONQuery([]byte(`{"items":[{"id":1},{"id":2}]}`), "items.#.id", ModeSingle)
	assert.Error(t, err)
}

func TestTrimModes(t *testing.T) {
	mode, ok := ParseTrimMode("start")
	require.True(t, ok)
	assert.Equal(t, "x  ", Trim("  x  ", mode))
}

package value

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJSONRoundTrip(t *testing.T) {
	obj := NewObject()
	obj.Set("name", String("ferro"))
	obj.Set("count", Int(3))
	obj.Set("ratio", Float(1.5))
	obj.Set("active", Bool(true))
	obj.Set("tags", Array([]Value{String("a"), String("b")}))
	obj.Set("nothing", Null)

	original := ObjectValue(obj)

	encoded, err := original.ToJSON()
	require.NoError(t, err)

	decoded, err := FromJSON(encoded)
	require.NoError(t, err)

	assert.Equal(t, KindObject, decoded.Kind())
	gotName, ok := decoded.obj.Get("name")
	require.True(t, ok)
	assert.Equal(t, "ferro", gotName.s)

	reencoded, err := decoded.ToJSON()
	require.NoError(t, err)
	assert.JSONEq(t, string(encoded), string(reencoded))
}

func TestJSONObjectPreservesKeyOrder(t *testing.T) {
	decoded, err := FromJSON([]byte(`{"z":1,"a":2,"m":3}`))
	require.NoError(t, err)
	require.Equal(t, KindObject, decoded.Kind())
	assert.Equal(t, []string{"z", "a", "m"}, decoded.obj.Keys())
}

func TestJSONIntegerStaysInteger(t *testing.T) {
	decoded, err := FromJSON([]byte(`42`))
	require.NoError(t, err)
	assert.Equal(t, KindInt, decoded.Kind())
	assert.Equal(t, int64(42), decoded.i)
}

func TestJSONFloatStaysFloat(t *testing.T) {
	decoded, err := FromJSON([]byte(`1.5`))
	require.NoError(t, err)
	assert.Equal(t, KindFloat, decoded.Kind())
	assert.Equal(t, 1.5, decoded.f)
}

func TestJSONArrayRoundTrip(t *testing.T) {
	original := []byte(`[1,"two",3.0,true,null,[4,5]]`)
	decoded, err := FromJSON(original)
	require.NoError(t, err)
	require.Equal(t, KindArray, decoded.Kind())
	require.Len(t, decoded.arr, 6)
	assert.Equal(t, KindInt, decoded.arr[0].Kind())
	assert.Equal(t, KindString, decoded.arr[1].Kind())
	assert.Equal(t, KindFloat, decoded.arr[2].Kind())
	assert.Equal(t, KindBool, decoded.arr[3].Kind())
	assert.Equal(t, KindNull, decoded.arr[4].Kind())
	assert.Equal(t, KindArray, decoded.arr[5].Kind())
}

func TestJSONBytesEncodeAsBase64String(t *testing.T) {
	v := Bytes([]byte("hi"))
	encoded, err := v.ToJSON()
	require.NoError(t, err)
	assert.Equal(t, `"aGk="`, string(encoded))
}

func TestJSONRejectsTrailingData(t *testing.T) {
	_, err := FromJSON([]byte(`1 2`))
	assert.Error(t, err)
}

func TestJSONRejectsMalformed(t *testing.T) {
	_, err := FromJSON([]byte(`{not valid`))
	assert.Error(t, err)
}

package functions

import (
	"fmt"

	"github.com/ferro-labs/slumberlib/value"
)

// Index accesses an array by integer position or an object by string key.
// Negative array indices count from the end, mirroring common scripting
// language semantics.
func Index(v value.Value, key value.Value) (value.Value, error) {
	switch v.Kind() {
	case value.KindArray:
		elems := v.Elements()
		i, ok := key.Int64()
		if !ok {
			s, err := key.TryString()
			if err != nil {
				return value.Value{}, fmt.Errorf("index: array key must be an integer")
			}
			return value.Value{}, fmt.Errorf("index: array key must be an integer, got %q", s)
		}
		if i < 0 {
			i += int64(len(elems))
		}
		if i < 0 || i >= int64(len(elems)) {
			return value.Value{}, fmt.Errorf("index: array index %d out of range (len %d)", i, len(elems))
		}
		return elems[i], nil
	case value.KindObject:
		k, err := key.TryString()
		if err != nil {
			return value.Value{}, err
		}
		got, ok := v.Object().Get(k)
		if !ok {
			return value.Value{}, fmt.Errorf("index: object has no key %q", k)
		}
		return got, nil
	case value.KindBytes:
		// A response() body arrives as raw bytes; `.field` access (desugared
		// to index()) is only useful once it's treated as JSON, so fall back
		// to a parse-then-index instead of forcing every caller to pipe
		// through json_parse first.
		parsed, err := value.FromJSON(v.IntoBytes())
		if err != nil {
			return value.Value{}, &value.ConversionError{Value: v, Expected: "array or object"}
		}
		return Index(parsed, key)
	default:
		return value.Value{}, &value.ConversionError{Value: v, Expected: "array or object"}
	}
}

// Slice extracts a sub-range [start, end) from an array or string. Negative
// bounds count from the end; out-of-range bounds clamp rather than error,
// matching typical slice semantics.
func Slice(v value.Value, start, end int64) (value.Value, error) {
	switch v.Kind() {
	case value.KindArray:
		elems := v.Elements()
		s, e := clampRange(start, end, int64(len(elems)))
		return value.Array(append([]value.Value{}, elems[s:e]...)), nil
	case value.KindString:
		str, _ := v.TryString()
		runes := []rune(str)
		s, e := clampRange(start, end, int64(len(runes)))
		return value.String(string(runes[s:e])), nil
	default:
		return value.Value{}, &value.ConversionError{Value: v, Expected: "array or string"}
	}
}

func clampRange(start, end, length int64) (int64, int64) {
	if start < 0 {
		start += length
	}
	if end < 0 {
		end += length
	}
	if start < 0 {
		start = 0
	}
	if end > length {
		end = length
	}
	if start > length {
		start = length
	}
	if end < start {
		end = start
	}
	return start, end
}

// Package functions implements the pure, context-free half of the template
// function library: type coercion, string operations, encoding, and JSON
// querying. Functions that need render-context access (I/O, prompting,
// dependent HTTP requests) live in the render package itself.
package functions

import (
	"encoding/base64"
	"fmt"
	"strconv"
	"strings"

	"github.com/ferro-labs/slumberlib/value"
)

// Boolean coerces v using the same truthiness table as value.Value.AsBool.
func Boolean(v value.Value) value.Value {
	return value.Bool(v.AsBool())
}

// Integer coerces v to an integer. Strings are parsed as base-10; floats
// truncate toward zero; bools become 0/1.
func Integer(v value.Value) (value.Value, error) {
	switch v.Kind() {
	case value.KindInt:
		return v, nil
	case value.KindFloat:
		s, _ := v.TryString()
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return value.Value{}, &value.ConversionError{Value: v, Expected: "integer"}
		}
		return value.Int(int64(f)), nil
	case value.KindBool:
		if v.AsBool() {
			return value.Int(1), nil
		}
		return value.Int(0), nil
	case value.KindString:
		s, _ := v.TryString()
		i, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
		if err != nil {
			return value.Value{}, &value.ConversionError{Value: v, Expected: "integer"}
		}
		return value.Int(i), nil
	default:
		return value.Value{}, &value.ConversionError{Value: v, Expected: "integer"}
	}
}

// Float coerces v to a float.
func Float(v value.Value) (value.Value, error) {
	switch v.Kind() {
	case value.KindFloat:
		return v, nil
	case value.KindInt:
		s, _ := v.TryString()
		i, _ := strconv.ParseInt(s, 10, 64)
		return value.Float(float64(i)), nil
	case value.KindString:
		s, _ := v.TryString()
		f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return value.Value{}, &value.ConversionError{Value: v, Expected: "float"}
		}
		return value.Float(f), nil
	default:
		return value.Value{}, &value.ConversionError{Value: v, Expected: "float"}
	}
}

// String coerces v to its canonical string form (value.Value.TryString).
func String(v value.Value) (value.Value, error) {
	s, err := v.TryString()
	if err != nil {
		return value.Value{}, err
	}
	return value.String(s), nil
}

// Base64Encode base64-encodes v's byte representation.
func Base64Encode(v value.Value) value.Value {
	return value.String(base64.StdEncoding.EncodeToString(v.IntoBytes()))
}

// Base64Decode decodes a base64 string into a Bytes value.
func Base64Decode(s string) (value.Value, error) {
	b, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return value.Value{}, fmt.Errorf("base64 decode: %w", err)
	}
	return value.Bytes(b), nil
}

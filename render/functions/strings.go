package functions

import (
	"strings"

	"github.com/ferro-labs/slumberlib/value"
)

// TrimMode selects which end(s) Trim strips.
type TrimMode int

const (
	TrimBoth TrimMode = iota
	TrimStart
	TrimEnd
)

// ParseTrimMode maps the `mode` keyword argument to a TrimMode.
func ParseTrimMode(mode string) (TrimMode, bool) {
	switch mode {
	case "", "both":
		return TrimBoth, true
	case "start":
		return TrimStart, true
	case "end":
		return TrimEnd, true
	default:
		return 0, false
	}
}

// Trim strips whitespace per mode.
func Trim(s string, mode TrimMode) string {
	switch mode {
	case TrimStart:
		return strings.TrimLeft(s, " \t\n\r")
	case TrimEnd:
		return strings.TrimRight(s, " \t\n\r")
	default:
		return strings.TrimSpace(s)
	}
}

// Lower lowercases s.
func Lower(s string) string { return strings.ToLower(s) }

// Upper uppercases s.
func Upper(s string) string { return strings.ToUpper(s) }

// Replace replaces every occurrence of old with replacement in s.
func Replace(s, old, replacement string) string {
	return strings.ReplaceAll(s, old, replacement)
}

// Join concatenates strs with sep.
func Join(strs []string, sep string) string {
	return strings.Join(strs, sep)
}

// Split splits s on sep.
func Split(s, sep string) []string {
	return strings.Split(s, sep)
}

// Concat concatenates values. If every value is a string, the result is a
// string; if every value is bytes, the result is bytes; if every value is
// an array, the result is an array (element-wise append); any other mix
// concatenates as bytes.
func Concat(values []value.Value) value.Value {
	if len(values) == 0 {
		return value.String("")
	}
	allString := true
	allBytes := true
	allArray := true
	for _, v := range values {
		if v.Kind() != value.KindString {
			allString = false
		}
		if v.Kind() != value.KindBytes {
			allBytes = false
		}
		if v.Kind() != value.KindArray {
			allArray = false
		}
	}
	switch {
	case allString:
		var b strings.Builder
		for _, v := range values {
			s, _ := v.TryString()
			b.WriteString(s)
		}
		return value.String(b.String())
	case allArray:
		var out []value.Value
		for _, v := range values {
			out = append(out, v.Elements()...)
		}
		return value.Array(out)
	case allBytes:
		var out []byte
		for _, v := range values {
			out = append(out, v.IntoBytes()...)
		}
		return value.Bytes(out)
	default:
		var out []byte
		for _, v := range values {
			out = append(out, v.IntoBytes()...)
		}
		return value.Bytes(out)
	}
}

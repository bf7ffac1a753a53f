package functions

import (
	"fmt"

	"github.com/tidwall/gjson"

	"github.com/ferro-labs/slumberlib/value"
)

// QueryMode selects how JSONQuery reconciles a query that may match zero,
// one, or many results.
type QueryMode int

const (
	// ModeAuto collapses a single match to a scalar and returns an array
	// for two or more matches. Zero matches is an error in every mode,
	// since no render site can usefully consume "nothing".
	ModeAuto QueryMode = iota
	// ModeSingle requires exactly one match; zero or more than one is an
	// error.
	ModeSingle
	// ModeArray always returns every match as an array, even if there is
	// exactly one.
	ModeArray
)

// ParseQueryMode maps the `mode` keyword argument to a QueryMode.
func ParseQueryMode(mode string) (QueryMode, bool) {
	switch mode {
	case "", "auto":
		return ModeAuto, true
	case "single":
		return ModeSingle, true
	case "array":
		return ModeArray, true
	default:
		return 0, false
	}
}

// JSONQuery runs a gjson path query against json and reconciles the result
// per mode. jq and jsonpath share this implementation: the corpus carries
// no real jq-filter-syntax library, so both template functions are backed
// by the same gjson path engine (see DESIGN.md).
func JSONQuery(json []byte, path string, mode QueryMode) (value.Value, error) {
	result := gjson.GetBytes(json, path)
	if !result.Exists() {
		return value.Value{}, fmt.Errorf("json query %q: no results", path)
	}

	matches := result.Array()
	isMulti := result.IsArray() && gjsonPathFansOut(path)

	switch mode {
	case ModeSingle:
		if !isMulti {
			return gjsonToValue(result), nil
		}
		if len(matches) == 0 {
			return value.Value{}, fmt.Errorf("json query %q: no results", path)
		}
		if len(matches) > 1 {
			return value.Value{}, fmt.Errorf("json query %q: %d results, expected exactly one", path, len(matches))
		}
		return gjsonToValue(matches[0]), nil
	case ModeArray:
		if !isMulti {
			return value.Array([]value.Value{gjsonToValue(result)}), nil
		}
		if len(matches) == 0 {
			return value.Value{}, fmt.Errorf("json query %q: no results", path)
		}
		out := make([]value.Value, 0, len(matches))
		for _, m := range matches {
			out = append(out, gjsonToValue(m))
		}
		return value.Array(out), nil
	default: // ModeAuto
		if !isMulti {
			return gjsonToValue(result), nil
		}
		if len(matches) == 0 {
			return value.Value{}, fmt.Errorf("json query %q: no results", path)
		}
		if len(matches) == 1 {
			return gjsonToValue(matches[0]), nil
		}
		out := make([]value.Value, 0, len(matches))
		for _, m := range matches {
			out = append(out, gjsonToValue(m))
		}
		return value.Array(out), nil
	}
}

// gjsonPathFansOut reports whether path uses gjson's multi-value syntax
// (a "#" wildcard or array query), which is the only case a plain JSON
// array result should be treated as "many matches" rather than one array
// value.
func gjsonPathFansOut(path string) bool {
	for i := 0; i < len(path); i++ {
		if path[i] == '#' {
			return true
		}
	}
	return false
}

func gjsonToValue(r gjson.Result) value.Value {
	v, err := value.FromJSON([]byte(r.Raw))
	if err != nil {
		// r.Raw may be empty for synthetic results; fall back to the
		// already-decoded Go representation.
		return gjsonValueFallback(r)
	}
	return v
}

func gjsonValueFallback(r gjson.Result) value.Value {
	switch r.Type {
	case gjson.Null:
		return value.Null
	case gjson.True:
		return value.Bool(true)
	case gjson.False:
		return value.Bool(false)
	case gjson.Number:
		return value.Float(r.Num)
	case gjson.String:
		return value.String(r.Str)
	default:
		return value.String(r.String())
	}
}

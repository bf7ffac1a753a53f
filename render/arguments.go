package render

import (
	"strconv"
	"strings"

	"github.com/ferro-labs/slumberlib/template"
	"github.com/ferro-labs/slumberlib/value"
)

// Arguments exposes a function call's positional and keyword arguments for
// popping, per spec.md §4.1: positional pop (converted via a
// TryFromValue-style contract), keyword pop with default, and a
// consume-all-remaining check that fails with TooManyArguments if anything
// was left unused. Positional arguments are rendered eagerly, left to
// right, the moment Arguments is constructed; keyword arguments render
// lazily on first pop since not every call site needs every keyword.
type Arguments struct {
	funcName     string
	positional   []value.Value
	posIdx       int
	keywordExprs map[string]template.Expression
	keywordVals  map[string]value.Value
	keywordSeen  map[string]bool
	rc           *RenderContext
}

func newArguments(funcName string, rc *RenderContext, positional []value.Value, keywordExprs map[string]template.Expression) *Arguments {
	return &Arguments{
		funcName:     funcName,
		positional:   positional,
		keywordExprs: keywordExprs,
		keywordVals:  make(map[string]value.Value),
		keywordSeen:  make(map[string]bool),
		rc:           rc,
	}
}

// PopValue returns the next positional argument as-is.
func (a *Arguments) PopValue() (value.Value, error) {
	if a.posIdx >= len(a.positional) {
		return value.Value{}, TooFewArguments(a.funcName)
	}
	v := a.positional[a.posIdx]
	a.posIdx++
	return v, nil
}

// PopString pops the next positional argument and converts it to a string.
func (a *Arguments) PopString() (string, error) {
	v, err := a.PopValue()
	if err != nil {
		return "", err
	}
	s, err := v.TryString()
	if err != nil {
		return "", ArgumentConvert(strconv.Itoa(a.posIdx-1), err)
	}
	return s, nil
}

// PopInt pops the next positional argument and converts it to an int64.
func (a *Arguments) PopInt() (int64, error) {
	v, err := a.PopValue()
	if err != nil {
		return 0, err
	}
	if i, ok := v.Int64(); ok {
		return i, nil
	}
	s, serr := v.TryString()
	if serr == nil {
		if i, perr := strconv.ParseInt(strings.TrimSpace(s), 10, 64); perr == nil {
			return i, nil
		}
	}
	return 0, ArgumentConvert(strconv.Itoa(a.posIdx-1), &value.ConversionError{Value: v, Expected: "integer"})
}

// HasMorePositional reports whether any positional argument remains
// unconsumed.
func (a *Arguments) HasMorePositional() bool {
	return a.posIdx < len(a.positional)
}

// keyword lazily renders and caches keyword argument name, returning
// (value, true) if present.
func (a *Arguments) keyword(name string) (value.Value, bool, error) {
	if v, ok := a.keywordVals[name]; ok {
		a.keywordSeen[name] = true
		return v, true, nil
	}
	expr, ok := a.keywordExprs[name]
	if !ok {
		return value.Value{}, false, nil
	}
	lv, err := evalExpression(a.rc, expr)
	if err != nil {
		return value.Value{}, false, err
	}
	v, err := lv.Collect()
	if err != nil {
		return value.Value{}, false, err
	}
	a.keywordVals[name] = v
	a.keywordSeen[name] = true
	return v, true, nil
}

// KeywordString pops keyword name (rendering it if not already) or returns
// def if absent.
func (a *Arguments) KeywordString(name, def string) (string, error) {
	v, ok, err := a.keyword(name)
	if err != nil {
		return "", err
	}
	if !ok {
		return def, nil
	}
	s, err := v.TryString()
	if err != nil {
		return "", ArgumentConvert(name, err)
	}
	return s, nil
}

// KeywordValue pops keyword name (rendering it if not already present) and
// reports whether it was supplied.
func (a *Arguments) KeywordValue(name string) (value.Value, bool, error) {
	return a.keyword(name)
}

// KeywordBool pops keyword name as a boolean, defaulting to def if absent.
func (a *Arguments) KeywordBool(name string, def bool) (bool, error) {
	v, ok, err := a.keyword(name)
	if err != nil {
		return false, err
	}
	if !ok {
		return def, nil
	}
	return v.AsBool(), nil
}

// Finish fails with TooManyArguments if any positional argument or keyword
// argument was never consumed.
func (a *Arguments) Finish() error {
	if a.posIdx < len(a.positional) {
		return TooManyArguments(a.funcName)
	}
	for name := range a.keywordExprs {
		if !a.keywordSeen[name] {
			return TooManyArguments(a.funcName)
		}
	}
	return nil
}

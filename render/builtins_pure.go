package render

import (
	"log/slog"

	"github.com/ferro-labs/slumberlib/render/functions"
	"github.com/ferro-labs/slumberlib/value"
)

func fnBase64(rc *RenderContext, args *Arguments) (value.LazyValue, error) {
	v, err := args.PopValue()
	if err != nil {
		return value.LazyValue{}, err
	}
	if v.Kind() == value.KindString {
		if s, _ := v.TryString(); isLikelyBase64(s) {
			decoded, err := functions.Base64Decode(s)
			if err == nil {
				return value.LazyFromValue(decoded), nil
			}
		}
	}
	return value.LazyFromValue(functions.Base64Encode(v)), nil
}

func isLikelyBase64(s string) bool {
	// The function is bidirectional per spec.md's "encode/decode bytes"
	// summary; encoding already-decoded bytes is the common case, so only
	// treat input as base64-to-decode when it round-trips cleanly.
	_, err := functions.Base64Decode(s)
	return err == nil && s != ""
}

func fnBoolean(rc *RenderContext, args *Arguments) (value.LazyValue, error) {
	v, err := args.PopValue()
	if err != nil {
		return value.LazyValue{}, err
	}
	return value.LazyFromValue(functions.Boolean(v)), nil
}

func fnInteger(rc *RenderContext, args *Arguments) (value.LazyValue, error) {
	v, err := args.PopValue()
	if err != nil {
		return value.LazyValue{}, err
	}
	out, err := functions.Integer(v)
	if err != nil {
		return value.LazyValue{}, ArgumentConvert("0", err)
	}
	return value.LazyFromValue(out), nil
}

func fnFloat(rc *RenderContext, args *Arguments) (value.LazyValue, error) {
	v, err := args.PopValue()
	if err != nil {
		return value.LazyValue{}, err
	}
	out, err := functions.Float(v)
	if err != nil {
		return value.LazyValue{}, ArgumentConvert("0", err)
	}
	return value.LazyFromValue(out), nil
}

func fnString(rc *RenderContext, args *Arguments) (value.LazyValue, error) {
	v, err := args.PopValue()
	if err != nil {
		return value.LazyValue{}, err
	}
	out, err := functions.String(v)
	if err != nil {
		return value.LazyValue{}, ValueError(v, err)
	}
	return value.LazyFromValue(out), nil
}

func fnConcat(rc *RenderContext, args *Arguments) (value.LazyValue, error) {
	var vals []value.Value
	for args.HasMorePositional() {
		v, err := args.PopValue()
		if err != nil {
			return value.LazyValue{}, err
		}
		vals = append(vals, v)
	}
	return value.LazyFromValue(functions.Concat(vals)), nil
}

func fnIndex(rc *RenderContext, args *Arguments) (value.LazyValue, error) {
	target, err := args.PopValue()
	if err != nil {
		return value.LazyValue{}, err
	}
	key, err := args.PopValue()
	if err != nil {
		return value.LazyValue{}, err
	}
	out, err := functions.Index(target, key)
	if err != nil {
		return value.LazyValue{}, ValueError(target, err)
	}
	return value.LazyFromValue(out), nil
}

func fnSlice(rc *RenderContext, args *Arguments) (value.LazyValue, error) {
	target, err := args.PopValue()
	if err != nil {
		return value.LazyValue{}, err
	}
	start, err := args.PopInt()
	if err != nil {
		return value.LazyValue{}, err
	}
	end, err := args.PopInt()
	if err != nil {
		return value.LazyValue{}, err
	}
	out, err := functions.Slice(target, start, end)
	if err != nil {
		return value.LazyValue{}, ValueError(target, err)
	}
	return value.LazyFromValue(out), nil
}

func fnJoin(rc *RenderContext, args *Arguments) (value.LazyValue, error) {
	arr, err := args.PopValue()
	if err != nil {
		return value.LazyValue{}, err
	}
	sep, err := args.PopString()
	if err != nil {
		return value.LazyValue{}, err
	}
	strs := make([]string, 0, len(arr.Elements()))
	for _, e := range arr.Elements() {
		s, serr := e.TryString()
		if serr != nil {
			return value.LazyValue{}, ValueError(e, serr)
		}
		strs = append(strs, s)
	}
	return value.LazyFromValue(value.String(functions.Join(strs, sep))), nil
}

func fnSplit(rc *RenderContext, args *Arguments) (value.LazyValue, error) {
	s, err := args.PopString()
	if err != nil {
		return value.LazyValue{}, err
	}
	sep, err := args.PopString()
	if err != nil {
		return value.LazyValue{}, err
	}
	parts := functions.Split(s, sep)
	out := make([]value.Value, len(parts))
	for i, p := range parts {
		out[i] = value.String(p)
	}
	return value.LazyFromValue(value.Array(out)), nil
}

func fnJSONQuery(rc *RenderContext, args *Arguments) (value.LazyValue, error) {
	target, err := args.PopValue()
	if err != nil {
		return value.LazyValue{}, err
	}
	path, err := args.PopString()
	if err != nil {
		return value.LazyValue{}, err
	}
	modeStr, err := args.KeywordString("mode", "auto")
	if err != nil {
		return value.LazyValue{}, err
	}
	mode, ok := functions.ParseQueryMode(modeStr)
	if !ok {
		return value.LazyValue{}, ArgumentConvert("mode", nil)
	}

	json, err := target.ToJSON()
	if err != nil {
		return value.LazyValue{}, JSONError(err)
	}
	out, err := functions.JSONQuery(json, path, mode)
	if err != nil {
		return value.LazyValue{}, classifyJSONQueryError(path, err)
	}
	return value.LazyFromValue(out), nil
}

// classifyJSONQueryError maps functions.JSONQuery's error text onto the
// render error taxonomy's two JSONQuery variants.
func classifyJSONQueryError(path string, cause error) error {
	if containsTooMany(cause.Error()) {
		return JSONQueryTooMany(path)
	}
	return JSONQueryEmpty(path)
}

func containsTooMany(msg string) bool {
	for i := 0; i+len("expected exactly one") <= len(msg); i++ {
		if msg[i:i+len("expected exactly one")] == "expected exactly one" {
			return true
		}
	}
	return false
}

func fnJSONParse(rc *RenderContext, args *Arguments) (value.LazyValue, error) {
	v, err := args.PopValue()
	if err != nil {
		return value.LazyValue{}, err
	}
	parsed, err := value.FromJSON(v.IntoBytes())
	if err != nil {
		return value.LazyValue{}, JSONError(err)
	}
	return value.LazyFromValue(parsed), nil
}

func fnLower(rc *RenderContext, args *Arguments) (value.LazyValue, error) {
	s, err := args.PopString()
	if err != nil {
		return value.LazyValue{}, err
	}
	return value.LazyFromValue(value.String(functions.Lower(s))), nil
}

func fnUpper(rc *RenderContext, args *Arguments) (value.LazyValue, error) {
	s, err := args.PopString()
	if err != nil {
		return value.LazyValue{}, err
	}
	return value.LazyFromValue(value.String(functions.Upper(s))), nil
}

func fnTrim(rc *RenderContext, args *Arguments) (value.LazyValue, error) {
	s, err := args.PopString()
	if err != nil {
		return value.LazyValue{}, err
	}
	modeStr, err := args.KeywordString("mode", "both")
	if err != nil {
		return value.LazyValue{}, err
	}
	mode, ok := functions.ParseTrimMode(modeStr)
	if !ok {
		return value.LazyValue{}, ArgumentConvert("mode", nil)
	}
	return value.LazyFromValue(value.String(functions.Trim(s, mode))), nil
}

func fnReplace(rc *RenderContext, args *Arguments) (value.LazyValue, error) {
	s, err := args.PopString()
	if err != nil {
		return value.LazyValue{}, err
	}
	old, err := args.PopString()
	if err != nil {
		return value.LazyValue{}, err
	}
	repl, err := args.PopString()
	if err != nil {
		return value.LazyValue{}, err
	}
	return value.LazyFromValue(value.String(functions.Replace(s, old, repl))), nil
}

func fnSensitive(rc *RenderContext, args *Arguments) (value.LazyValue, error) {
	v, err := args.PopValue()
	if err != nil {
		return value.LazyValue{}, err
	}
	return value.LazyFromValue(v.WithSensitive(true)), nil
}

func fnDebug(rc *RenderContext, args *Arguments) (value.LazyValue, error) {
	v, err := args.PopValue()
	if err != nil {
		return value.LazyValue{}, err
	}
	slog.Default().Debug("template debug()", "value", v.Preview())
	return value.LazyFromValue(v), nil
}

package render

import (
	"github.com/ferro-labs/slumberlib/internal/metrics"
	"github.com/ferro-labs/slumberlib/template"
	"github.com/ferro-labs/slumberlib/value"
)

// Render evaluates every chunk of tmpl against rc, in template order, and
// returns the concatenated RenderedOutput (spec.md §4.1 contract: render(template,
// context) → RenderedOutput). If rc.CanStream is false, any streaming
// LazyValue produced along the way is materialised to bytes before Render
// returns.
func Render(rc *RenderContext, tmpl template.Template) (value.RenderedOutput, error) {
	chunks := tmpl.Chunks()
	out := make([]value.Chunk, 0, len(chunks))
	for _, c := range chunks {
		if c.IsLiteral() {
			out = append(out, value.RawChunk([]byte(c.Literal)))
			continue
		}
		lv, err := evalExpression(rc, *c.Expression)
		if err != nil {
			metrics.RendersTotal.WithLabelValues("error", "false").Inc()
			return value.RenderedOutput{}, err
		}
		if !rc.CanStream && lv.IsStream() {
			v, err := lv.Collect()
			if err != nil {
				return value.RenderedOutput{}, err
			}
			lv = value.LazyFromValue(v)
		}
		out = append(out, value.LazyChunk(lv))
	}
	streamed := "false"
	result := value.NewRenderedOutput(out)
	if s, ok := result.AsSingleStream(); ok {
		_ = s
		streamed = "true"
	}
	metrics.RendersTotal.WithLabelValues("ok", streamed).Inc()
	return result, nil
}

// RenderToValue renders tmpl and collects the result to a Value, consuming
// any stream. Every render site other than a request body uses this.
func RenderToValue(rc *RenderContext, tmpl template.Template) (value.Value, error) {
	out, err := Render(rc.WithCanStream(false), tmpl)
	if err != nil {
		return value.Value{}, err
	}
	return out.CollectValue()
}

// RenderToString renders tmpl and converts the result to a string.
func RenderToString(rc *RenderContext, tmpl template.Template) (string, error) {
	v, err := RenderToValue(rc, tmpl)
	if err != nil {
		return "", err
	}
	s, err := v.TryString()
	if err != nil {
		return "", ValueError(v, err)
	}
	return s, nil
}

func evalExpression(rc *RenderContext, expr template.Expression) (value.LazyValue, error) {
	switch expr.Kind {
	case template.ExprLiteral:
		return value.LazyFromValue(literalValue(expr)), nil
	case template.ExprFieldRef:
		v, err := resolveField(rc, expr.FieldName)
		if err != nil {
			return value.LazyValue{}, err
		}
		return value.LazyFromValue(v), nil
	case template.ExprCall:
		return evalCall(rc, expr)
	default:
		return value.LazyValue{}, UnknownField("")
	}
}

func literalValue(expr template.Expression) value.Value {
	switch expr.LiteralKind {
	case template.LiteralString:
		return value.String(expr.StringVal)
	case template.LiteralInt:
		return value.Int(expr.IntVal)
	case template.LiteralFloat:
		return value.Float(expr.FloatVal)
	case template.LiteralBool:
		return value.Bool(expr.BoolVal)
	default:
		return value.Null
	}
}

// resolveField looks up name per spec.md §4.1: (1) user override, (2)
// current profile's data; both paths go through the field cache so a field
// is computed at most once per render group.
func resolveField(rc *RenderContext, name string) (value.Value, error) {
	if v, ok, guard := rc.Cache.Lookup(name); ok {
		metrics.FieldCacheEvents.WithLabelValues("hit").Inc()
		return v, nil
	} else if guard != nil {
		metrics.FieldCacheEvents.WithLabelValues("miss").Inc()
		v, err := computeField(rc, name)
		if err != nil {
			guard.Abort()
			return value.Value{}, err
		}
		guard.Set(v)
		return v, nil
	}
	// guard == nil && ok == false: another computation failed; recompute.
	metrics.FieldCacheEvents.WithLabelValues("retry").Inc()
	return resolveField(rc, name)
}

func computeField(rc *RenderContext, name string) (value.Value, error) {
	if override, ok := rc.Overrides[name]; ok {
		return value.String(override), nil
	}
	if rc.Profile != nil {
		if tmpl, ok := rc.Profile.Data.Get(name); ok {
			v, err := RenderToValue(rc, tmpl)
			if err != nil {
				return value.Value{}, ProfileNested(name, err)
			}
			return v, nil
		}
	}
	return value.Value{}, UnknownField(name)
}

func evalCall(rc *RenderContext, expr template.Expression) (value.LazyValue, error) {
	fn, ok := registry[expr.FuncName]
	if !ok {
		return value.LazyValue{}, FunctionUnknown(expr.FuncName)
	}

	positional := make([]value.Value, 0, len(expr.Positional))
	for _, argExpr := range expr.Positional {
		lv, err := evalExpression(rc, argExpr)
		if err != nil {
			return value.LazyValue{}, err
		}
		v, err := lv.Collect()
		if err != nil {
			return value.LazyValue{}, err
		}
		positional = append(positional, v)
	}

	args := newArguments(expr.FuncName, rc, positional, expr.Keyword)
	result, err := fn(rc, args)
	if err != nil {
		metrics.FunctionCallsTotal.WithLabelValues(expr.FuncName, "error").Inc()
		return value.LazyValue{}, err
	}
	if err := args.Finish(); err != nil {
		metrics.FunctionCallsTotal.WithLabelValues(expr.FuncName, "error").Inc()
		return value.LazyValue{}, err
	}
	metrics.FunctionCallsTotal.WithLabelValues(expr.FuncName, "ok").Inc()
	return result, nil
}

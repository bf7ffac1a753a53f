package collection

import "github.com/ferro-labs/slumberlib/template"

// OrderedTemplates is an insertion-order-preserving string-keyed map of
// Templates, used for profile data and recipe headers/form fields. Go has
// no ordered map built in; this mirrors the parallel-slice approach used by
// value.Object for the same reason.
type OrderedTemplates struct {
	keys   []string
	values map[string]template.Template
}

// NewOrderedTemplates creates an empty OrderedTemplates.
func NewOrderedTemplates() *OrderedTemplates {
	return &OrderedTemplates{values: make(map[string]template.Template)}
}

// Set inserts or updates key, preserving insertion order.
func (o *OrderedTemplates) Set(key string, t template.Template) {
	if _, ok := o.values[key]; !ok {
		o.keys = append(o.keys, key)
	}
	o.values[key] = t
}

// Get looks up key.
func (o *OrderedTemplates) Get(key string) (template.Template, bool) {
	t, ok := o.values[key]
	return t, ok
}

// Keys returns keys in insertion order.
func (o *OrderedTemplates) Keys() []string {
	if o == nil {
		return nil
	}
	return o.keys
}

// Range calls fn for each entry in insertion order, stopping early if fn
// returns false.
func (o *OrderedTemplates) Range(fn func(key string, t template.Template) bool) {
	if o == nil {
		return
	}
	for _, k := range o.keys {
		if !fn(k, o.values[k]) {
			return
		}
	}
}

// Len reports the number of entries.
func (o *OrderedTemplates) Len() int {
	if o == nil {
		return 0
	}
	return len(o.keys)
}

// QueryValue is either a single Template or a list of Templates, matching
// the "value-or-list<Template>" shape recipe query parameters may take
// (spec.md §3 Recipe).
type QueryValue struct {
	Single template.Template
	List   []template.Template
	IsList bool
}

// SingleQueryValue wraps one template as a scalar query value.
func SingleQueryValue(t template.Template) QueryValue {
	return QueryValue{Single: t}
}

// ListQueryValue wraps multiple templates as a multi-value query parameter.
func ListQueryValue(ts []template.Template) QueryValue {
	return QueryValue{List: ts, IsList: true}
}

// Templates returns every template this value expands to, in order.
func (q QueryValue) Templates() []template.Template {
	if q.IsList {
		return q.List
	}
	return []template.Template{q.Single}
}

// OrderedQueryValues is an insertion-order-preserving string-keyed map of
// QueryValues.
type OrderedQueryValues struct {
	keys   []string
	values map[string]QueryValue
}

// NewOrderedQueryValues creates an empty OrderedQueryValues.
func NewOrderedQueryValues() *OrderedQueryValues {
	return &OrderedQueryValues{values: make(map[string]QueryValue)}
}

// Set inserts or updates key, preserving insertion order.
func (o *OrderedQueryValues) Set(key string, v QueryValue) {
	if _, ok := o.values[key]; !ok {
		o.keys = append(o.keys, key)
	}
	o.values[key] = v
}

// Range calls fn for each entry in insertion order, stopping early if fn
// returns false.
func (o *OrderedQueryValues) Range(fn func(key string, v QueryValue) bool) {
	if o == nil {
		return
	}
	for _, k := range o.keys {
		if !fn(k, o.values[k]) {
			return
		}
	}
}

// Len reports the number of entries.
func (o *OrderedQueryValues) Len() int {
	if o == nil {
		return 0
	}
	return len(o.keys)
}

package collection

import "github.com/ferro-labs/slumberlib/template"

// JSONTemplateKind identifies which variant a JSONTemplate node holds.
type JSONTemplateKind int

const (
	JSONNull JSONTemplateKind = iota
	JSONBool
	JSONNumber
	JSONString
	JSONArray
	JSONObject
)

// JSONTemplate is a JSON document shape whose string leaves are Templates,
// rather than static text (spec.md §3 RecipeBody.Json). Rendering walks the
// tree, renders every JSONString leaf, and serialises the result; non-string
// scalars pass through unchanged.
type JSONTemplate struct {
	Kind   JSONTemplateKind
	Bool   bool
	Number float64
	String template.Template
	Array  []JSONTemplate
	Object *OrderedJSONTemplates
}

// OrderedJSONTemplates is an insertion-order-preserving string-keyed map of
// JSONTemplate nodes, so object key order survives rendering.
type OrderedJSONTemplates struct {
	keys   []string
	values map[string]JSONTemplate
}

// NewOrderedJSONTemplates creates an empty OrderedJSONTemplates.
func NewOrderedJSONTemplates() *OrderedJSONTemplates {
	return &OrderedJSONTemplates{values: make(map[string]JSONTemplate)}
}

// Set inserts or updates key, preserving insertion order.
func (o *OrderedJSONTemplates) Set(key string, t JSONTemplate) {
	if _, ok := o.values[key]; !ok {
		o.keys = append(o.keys, key)
	}
	o.values[key] = t
}

// Range calls fn for each entry in insertion order, stopping early if fn
// returns false.
func (o *OrderedJSONTemplates) Range(fn func(key string, t JSONTemplate) bool) {
	if o == nil {
		return
	}
	for _, k := range o.keys {
		if !fn(k, o.values[k]) {
			return
		}
	}
}

// Package httpengine implements the build -> send -> persist pipeline
// described in spec.md §4.2: it consumes a Recipe, renders every field
// through the template engine, performs the HTTP call, and hands the
// result to the store for persistence. It also implements
// render.HTTPProvider so response()/response_header() can trigger
// dependent requests recursively.
package httpengine

// BuildOptions narrows what the build stage renders, per spec.md §4.2
// step 4 ("for each (name, template) not omitted by options"). The zero
// value builds every field.
type BuildOptions struct {
	// OmitHeaders names headers to skip rendering entirely (case-
	// insensitive), e.g. a UI letting the user temporarily disable one.
	OmitHeaders map[string]bool
	// OmitQuery names query parameters to skip rendering entirely.
	OmitQuery map[string]bool
}

func (o BuildOptions) omitsHeader(name string) bool {
	if o.OmitHeaders == nil {
		return false
	}
	lname := lowerASCII(name)
	for k, omit := range o.OmitHeaders {
		if omit && lowerASCII(k) == lname {
			return true
		}
	}
	return false
}

func (o BuildOptions) omitsQuery(name string) bool {
	if o.OmitQuery == nil {
		return false
	}
	return o.OmitQuery[name]
}

func lowerASCII(s string) string {
	b := []byte(s)
	for i, c := range b {
		if 'A' <= c && c <= 'Z' {
			b[i] = c + ('a' - 'A')
		}
	}
	return string(b)
}

package httpengine

import (
	"encoding/base64"
	"fmt"
	"mime"
	"mime/multipart"
	"net/url"
	"strings"

	"github.com/google/uuid"

	"github.com/ferro-labs/slumberlib/collection"
	"github.com/ferro-labs/slumberlib/exchange"
	"github.com/ferro-labs/slumberlib/render"
	"github.com/ferro-labs/slumberlib/template"
	"github.com/ferro-labs/slumberlib/value"
)

// BuildError reports a failure during the build stage (spec.md §4.2:
// "Any failure in steps 3-7 terminates as BuildError without sending").
type BuildError struct {
	Step  string
	Cause error
}

func (e *BuildError) Error() string { return fmt.Sprintf("build %s: %v", e.Step, e.Cause) }
func (e *BuildError) Unwrap() error { return e.Cause }

func wrapBuild(step string, err error) error {
	if err == nil {
		return nil
	}
	return &BuildError{Step: step, Cause: err}
}

// build performs spec.md §4.2's build stage steps 3-7 against rc (already
// carrying the selected profile, overrides, collection, provider, and
// prompter) and returns the fully-materialised RequestRecord, or a
// *BuildError.
func build(rc *render.RenderContext, recipe *collection.Recipe, id uuid.UUID, opts BuildOptions) (*exchange.RequestRecord, error) {
	urlStr, err := renderURL(rc, recipe, opts)
	if err != nil {
		return nil, wrapBuild("url", err)
	}

	headers, err := renderHeaders(rc, recipe, opts)
	if err != nil {
		return nil, wrapBuild("headers", err)
	}

	if recipe.Authentication != nil {
		authHeader, err := renderAuth(rc, recipe.Authentication)
		if err != nil {
			return nil, wrapBuild("authentication", err)
		}
		headers = append(headers, *authHeader)
	}

	body, contentType, err := renderBody(rc, recipe)
	if err != nil {
		return nil, wrapBuild("body", err)
	}
	if contentType != "" && !hasHeader(headers, "Content-Type") {
		headers = append(headers, exchange.Header{Name: "Content-Type", Value: contentType})
	}

	var profileID *collection.ProfileID
	if rc.Profile != nil {
		p := rc.Profile.ID
		profileID = &p
	}

	return &exchange.RequestRecord{
		ID:        id,
		ProfileID: profileID,
		RecipeID:  recipe.ID,
		Method:    recipe.Method,
		URL:       urlStr,
		Headers:   headers,
		Body:      body,
	}, nil
}

func hasHeader(headers exchange.Headers, name string) bool {
	_, ok := headers.Get(name)
	return ok
}

func renderURL(rc *render.RenderContext, recipe *collection.Recipe, opts BuildOptions) (string, error) {
	base, err := render.RenderToString(rc, recipe.URL)
	if err != nil {
		return "", err
	}
	if recipe.Query == nil || recipe.Query.Len() == 0 {
		return base, nil
	}

	values := url.Values{}
	var rangeErr error
	recipe.Query.Range(func(key string, qv collection.QueryValue) bool {
		if opts.omitsQuery(key) {
			return true
		}
		for _, tmpl := range qv.Templates() {
			s, err := render.RenderToString(rc, tmpl)
			if err != nil {
				rangeErr = err
				return false
			}
			values.Add(key, s)
		}
		return true
	})
	if rangeErr != nil {
		return "", rangeErr
	}
	if len(values) == 0 {
		return base, nil
	}
	sep := "?"
	if strings.Contains(base, "?") {
		sep = "&"
	}
	return base + sep + values.Encode(), nil
}

// renderHeaders renders every recipe header, lowercasing names per spec.md
// §4.2 step 4. Duplicate header names are preserved in declaration order.
func renderHeaders(rc *render.RenderContext, recipe *collection.Recipe, opts BuildOptions) (exchange.Headers, error) {
	var headers exchange.Headers
	var rangeErr error
	if recipe.Headers != nil {
		recipe.Headers.Range(func(name string, tmpl template.Template) bool {
			if opts.omitsHeader(name) {
				return true
			}
			s, err := render.RenderToString(rc, tmpl)
			if err != nil {
				rangeErr = err
				return false
			}
			headers = append(headers, exchange.Header{Name: strings.ToLower(name), Value: s})
			return true
		})
	}
	if rangeErr != nil {
		return nil, rangeErr
	}
	return headers, nil
}

func renderAuth(rc *render.RenderContext, auth *collection.Authentication) (*exchange.Header, error) {
	switch auth.Kind {
	case collection.AuthBasic:
		user, err := render.RenderToString(rc, auth.Username)
		if err != nil {
			return nil, err
		}
		pass, err := render.RenderToString(rc, auth.Password)
		if err != nil {
			return nil, err
		}
		token := base64.StdEncoding.EncodeToString([]byte(user + ":" + pass))
		return &exchange.Header{Name: "authorization", Value: "Basic " + token}, nil
	case collection.AuthBearer:
		token, err := render.RenderToString(rc, auth.Token)
		if err != nil {
			return nil, err
		}
		return &exchange.Header{Name: "authorization", Value: "Bearer " + token}, nil
	default:
		return nil, fmt.Errorf("httpengine: unknown authentication kind %d", auth.Kind)
	}
}

// renderBody renders recipe.Body per spec.md §4.2 step 7 and returns the
// serialised bytes plus the content type to inject if the headers don't
// already carry one.
func renderBody(rc *render.RenderContext, recipe *collection.Recipe) ([]byte, string, error) {
	switch recipe.Body.Kind {
	case collection.BodyNone:
		return nil, "", nil

	case collection.BodyRaw:
		out, err := render.Render(rc.WithCanStream(true), recipe.Body.Raw)
		if err != nil {
			return nil, "", err
		}
		b, err := out.CollectBytes()
		if err != nil {
			return nil, "", err
		}
		return b, "", nil

	case collection.BodyJSON:
		v, err := renderJSONTemplate(rc, recipe.Body.JSON)
		if err != nil {
			return nil, "", err
		}
		b, err := v.ToJSON()
		if err != nil {
			return nil, "", err
		}
		return b, "application/json", nil

	case collection.BodyFormURLEncoded:
		values := url.Values{}
		var rangeErr error
		recipe.Body.FormFields.Range(func(key string, tmpl template.Template) bool {
			s, err := render.RenderToString(rc, tmpl)
			if err != nil {
				rangeErr = err
				return false
			}
			values.Set(key, s)
			return true
		})
		if rangeErr != nil {
			return nil, "", rangeErr
		}
		return []byte(values.Encode()), "application/x-www-form-urlencoded", nil

	case collection.BodyFormMultipart:
		var buf strings.Builder
		w := multipart.NewWriter(&buf)
		var rangeErr error
		recipe.Body.FormFields.Range(func(key string, tmpl template.Template) bool {
			s, err := render.RenderToString(rc, tmpl)
			if err != nil {
				rangeErr = err
				return false
			}
			if err := w.WriteField(key, s); err != nil {
				rangeErr = err
				return false
			}
			return true
		})
		if rangeErr != nil {
			return nil, "", rangeErr
		}
		if err := w.Close(); err != nil {
			return nil, "", err
		}
		ct := mime.FormatMediaType("multipart/form-data", map[string]string{"boundary": w.Boundary()})
		return []byte(buf.String()), ct, nil

	default:
		return nil, "", fmt.Errorf("httpengine: unknown body kind %d", recipe.Body.Kind)
	}
}

// renderJSONTemplate walks a JSONTemplate tree, rendering every string leaf
// and passing every other scalar through unchanged (spec.md §3 RecipeBody.Json).
func renderJSONTemplate(rc *render.RenderContext, jt collection.JSONTemplate) (value.Value, error) {
	switch jt.Kind {
	case collection.JSONNull:
		return value.Null, nil
	case collection.JSONBool:
		return value.Bool(jt.Bool), nil
	case collection.JSONNumber:
		return value.Float(jt.Number), nil
	case collection.JSONString:
		s, err := render.RenderToString(rc, jt.String)
		if err != nil {
			return value.Value{}, err
		}
		return value.String(s), nil
	case collection.JSONArray:
		arr := make([]value.Value, len(jt.Array))
		for i, elem := range jt.Array {
			v, err := renderJSONTemplate(rc, elem)
			if err != nil {
				return value.Value{}, err
			}
			arr[i] = v
		}
		return value.Array(arr), nil
	case collection.JSONObject:
		obj := value.NewObject()
		var rangeErr error
		jt.Object.Range(func(key string, node collection.JSONTemplate) bool {
			v, err := renderJSONTemplate(rc, node)
			if err != nil {
				rangeErr = err
				return false
			}
			obj.Set(key, v)
			return true
		})
		if rangeErr != nil {
			return value.Value{}, rangeErr
		}
		return value.ObjectValue(obj), nil
	default:
		return value.Value{}, fmt.Errorf("httpengine: unknown JSON template kind %d", jt.Kind)
	}
}

package httpengine

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ferro-labs/slumberlib/collection"
	"github.com/ferro-labs/slumberlib/render"
	"github.com/ferro-labs/slumberlib/template"
)

func newRC(coll *collection.Collection) *render.RenderContext {
	return render.New(context.Background(), coll, nil, nil, false, nil, nil)
}

func emptyCollection(t *testing.T) *collection.Collection {
	t.Helper()
	coll, err := collection.New(map[collection.ProfileID]*collection.Profile{}, collection.NewRecipeTree(), ".")
	require.NoError(t, err)
	return coll
}

func TestBuild_SimpleGET(t *testing.T) {
	coll := emptyCollection(t)
	recipe := &collection.Recipe{ID: "r1", Method: collection.MethodGet, URL: template.MustParse("https://example.test/things")}

	req, err := build(newRC(coll), recipe, uuid.New(), BuildOptions{})
	require.NoError(t, err)
	assert.Equal(t, "https://example.test/things", req.URL)
	assert.Equal(t, collection.MethodGet, req.Method)
	assert.Empty(t, req.Body)
}

func TestBuild_QueryParametersEncoded(t *testing.T) {
	coll := emptyCollection(t)
	query := collection.NewOrderedQueryValues()
	query.Set("q", collection.SingleQueryValue(template.MustParse("hello world")))
	query.Set("tag", collection.ListQueryValue([]template.Template{template.MustParse("a"), template.MustParse("b")}))
	recipe := &collection.Recipe{ID: "r1", Method: collection.MethodGet, URL: template.MustParse("https://example.test/search"), Query: query}

	req, err := build(newRC(coll), recipe, uuid.New(), BuildOptions{})
	require.NoError(t, err)
	assert.Contains(t, req.URL, "q=hello+world")
	assert.Contains(t, req.URL, "tag=a")
	assert.Contains(t, req.URL, "tag=b")
}

func TestBuild_QueryOmittedByOptions(t *testing.T) {
	coll := emptyCollection(t)
	query := collection.NewOrderedQueryValues()
	query.Set("secret", collection.SingleQueryValue(template.MustParse("shh")))
	recipe := &collection.Recipe{ID: "r1", Method: collection.MethodGet, URL: template.MustParse("https://example.test/search"), Query: query}

	req, err := build(newRC(coll), recipe, uuid.New(), BuildOptions{OmitQuery: map[string]bool{"secret": true}})
	require.NoError(t, err)
	assert.NotContains(t, req.URL, "secret")
}

func TestBuild_HeadersLowercasedAndOrdered(t *testing.T) {
	coll := emptyCollection(t)
	headers := collection.NewOrderedTemplates()
	headers.Set("X-Trace-Id", template.MustParse("abc"))
	headers.Set("Accept", template.MustParse("application/json"))
	recipe := &collection.Recipe{ID: "r1", Method: collection.MethodGet, URL: template.MustParse("https://example.test"), Headers: headers}

	req, err := build(newRC(coll), recipe, uuid.New(), BuildOptions{})
	require.NoError(t, err)
	require.Len(t, req.Headers, 2)
	assert.Equal(t, "x-trace-id", req.Headers[0].Name)
	assert.Equal(t, "accept", req.Headers[1].Name)
}

func TestBuild_BasicAuthInjectsAuthorizationHeader(t *testing.T) {
	coll := emptyCollection(t)
	recipe := &collection.Recipe{
		ID: "r1", Method: collection.MethodGet, URL: template.MustParse("https://example.test"),
		Authentication: &collection.Authentication{
			Kind:     collection.AuthBasic,
			Username: template.MustParse("alice"),
			Password: template.MustParse("wonderland"),
		},
	}

	req, err := build(newRC(coll), recipe, uuid.New(), BuildOptions{})
	require.NoError(t, err)
	value, ok := req.Headers.Get("authorization")
	require.True(t, ok)
	assert.Equal(t, "Basic YWxpY2U6d29uZGVybGFuZA==", value)
}

func TestBuild_BearerAuth(t *testing.T) {
	coll := emptyCollection(t)
	recipe := &collection.Recipe{
		ID: "r1", Method: collection.MethodGet, URL: template.MustParse("https://example.test"),
		Authentication: &collection.Authentication{Kind: collection.AuthBearer, Token: template.MustParse("tok123")},
	}

	req, err := build(newRC(coll), recipe, uuid.New(), BuildOptions{})
	require.NoError(t, err)
	value, ok := req.Headers.Get("authorization")
	require.True(t, ok)
	assert.Equal(t, "Bearer tok123", value)
}

func TestBuild_JSONBodyInjectsContentType(t *testing.T) {
	coll := emptyCollection(t)
	obj := collection.NewOrderedJSONTemplates()
	obj.Set("name", collection.JSONTemplate{Kind: collection.JSONString, String: template.MustParse("ferro")})
	recipe := &collection.Recipe{
		ID: "r1", Method: collection.MethodPost, URL: template.MustParse("https://example.test"),
		Body: collection.RecipeBody{Kind: collection.BodyJSON, JSON: collection.JSONTemplate{Kind: collection.JSONObject, Object: obj}},
	}

	req, err := build(newRC(coll), recipe, uuid.New(), BuildOptions{})
	require.NoError(t, err)
	assert.JSONEq(t, `{"name":"ferro"}`, string(req.Body))
	ct, ok := req.Headers.Get("Content-Type")
	require.True(t, ok)
	assert.Equal(t, "application/json", ct)
}

func TestBuild_ExplicitContentTypeWins(t *testing.T) {
	coll := emptyCollection(t)
	headers := collection.NewOrderedTemplates()
	headers.Set("Content-Type", template.MustParse("application/vnd.custom+json"))
	obj := collection.NewOrderedJSONTemplates()
	recipe := &collection.Recipe{
		ID: "r1", Method: collection.MethodPost, URL: template.MustParse("https://example.test"),
		Headers: headers,
		Body:    collection.RecipeBody{Kind: collection.BodyJSON, JSON: collection.JSONTemplate{Kind: collection.JSONObject, Object: obj}},
	}

	req, err := build(newRC(coll), recipe, uuid.New(), BuildOptions{})
	require.NoError(t, err)
	ct, ok := req.Headers.Get("content-type")
	require.True(t, ok)
	assert.Equal(t, "application/vnd.custom+json", ct)
}

func TestBuild_FormURLEncodedBody(t *testing.T) {
	coll := emptyCollection(t)
	fields := collection.NewOrderedTemplates()
	fields.Set("username", template.MustParse("alice"))
	recipe := &collection.Recipe{
		ID: "r1", Method: collection.MethodPost, URL: template.MustParse("https://example.test"),
		Body: collection.RecipeBody{Kind: collection.BodyFormURLEncoded, FormFields: fields},
	}

	req, err := build(newRC(coll), recipe, uuid.New(), BuildOptions{})
	require.NoError(t, err)
	assert.Equal(t, "username=alice", string(req.Body))
	ct, _ := req.Headers.Get("Content-Type")
	assert.Equal(t, "application/x-www-form-urlencoded", ct)
}

func TestBuild_UnknownAuthKindFails(t *testing.T) {
	coll := emptyCollection(t)
	recipe := &collection.Recipe{
		ID: "r1", Method: collection.MethodGet, URL: template.MustParse("https://example.test"),
		Authentication: &collection.Authentication{Kind: collection.AuthKind(99)},
	}

	_, err := build(newRC(coll), recipe, uuid.New(), BuildOptions{})
	require.Error(t, err)
	var buildErr *BuildError
	require.ErrorAs(t, err, &buildErr)
	assert.Equal(t, "authentication", buildErr.Step)
}

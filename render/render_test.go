package render

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ferro-labs/slumberlib/collection"
	"github.com/ferro-labs/slumberlib/exchange"
	"github.com/ferro-labs/slumberlib/template"
	"github.com/ferro-labs/slumberlib/value"
)

type fakeProvider struct {
	exchanges map[collection.RecipeID]*exchange.Exchange
	sendErr   error
}

func (f *fakeProvider) GetLatestExchange(_ context.Context, _ *collection.ProfileID, recipeID collection.RecipeID) (*exchange.Exchange, bool) {
	e, ok := f.exchanges[recipeID]
	return e, ok
}

func (f *fakeProvider) SendRequest(_ context.Context, recipeID collection.RecipeID, _ *RenderContext) (*exchange.Exchange, error) {
	if f.sendErr != nil {
		return nil, f.sendErr
	}
	e, ok := f.exchanges[recipeID]
	if !ok {
		return nil, assert.AnError
	}
	return e, nil
}

type fakePrompter struct {
	reply string
	drop  bool
	calls int
}

func (f *fakePrompter) Prompt(_ context.Context, req PromptRequest) {
	f.calls++
	if f.drop {
		close(req.Reply)
		return
	}
	req.Reply <- PromptReply{Text: f.reply}
}

func profileWith(data map[string]string) *collection.Profile {
	ot := collection.NewOrderedTemplates()
	for k, v := range data {
		ot.Set(k, template.MustParse(v))
	}
	return &collection.Profile{ID: "p1", Default: true, Data: ot}
}

func TestRenderHelloName(t *testing.T) {
	profile := profileWith(map[string]string{"name": "Lee"})
	rc := New(context.Background(), nil, profile, nil, false, &fakeProvider{}, &fakePrompter{})
	tmpl := template.MustParse("Hello {{name}}")
	v, err := RenderToValue(rc, tmpl)
	require.NoError(t, err)
	s, _ := v.TryString()
	assert.Equal(t, "Hello Lee", s)
}

func TestRenderResponseToken(t *testing.T) {
	recipeID := collection.RecipeID("login")
	coll := &collection.Collection{
		Profiles: map[collection.ProfileID]*collection.Profile{},
		Recipes:  collection.NewRecipeTree(),
	}
	coll.Recipes.Insert(recipeID, collection.RecipeNode{
		Kind:   collection.NodeRecipe,
		Recipe: &collection.Recipe{ID: recipeID, Method: collection.MethodGet, URL: template.MustParse("http://x")},
	})
	exc := &exchange.Exchange{
		Response:  exchange.ResponseRecord{Body: []byte(`{"token":"abc"}`)},
		EndTime:   time.Now(),
	}
	provider := &fakeProvider{exchanges: map[collection.RecipeID]*exchange.Exchange{recipeID: exc}}
	rc := New(context.Background(), coll, nil, nil, false, provider, &fakePrompter{})

	tmpl := template.MustParse("{{response('login').token}}")
	v, err := RenderToValue(rc, tmpl)
	require.NoError(t, err)
	s, _ := v.TryString()
	assert.Equal(t, "abc", s)
}

func TestRenderResponseMissingNeverTriggers(t *testing.T) {
	recipeID := collection.RecipeID("login")
	coll := &collection.Collection{
		Profiles: map[collection.ProfileID]*collection.Profile{},
		Recipes:  collection.NewRecipeTree(),
	}
	coll.Recipes.Insert(recipeID, collection.RecipeNode{
		Kind:   collection.NodeRecipe,
		Recipe: &collection.Recipe{ID: recipeID, Method: collection.MethodGet, URL: template.MustParse("http://x")},
	})
	provider := &fakeProvider{exchanges: map[collection.RecipeID]*exchange.Exchange{}}
	rc := New(context.Background(), coll, nil, nil, false, provider, &fakePrompter{})

	tmpl := template.MustParse("{{response('login')}}")
	_, err := RenderToValue(rc, tmpl)
	require.Error(t, err)
	var rerr *Error
	require.ErrorAs(t, err, &rerr)
	assert.Equal(t, ErrResponseMissing, rerr.Kind)
}

func TestRenderPromptFlow(t *testing.T) {
	rc := New(context.Background(), nil, nil, nil, false, &fakeProvider{}, &fakePrompter{reply: "alice"})
	tmpl := template.MustParse("{{prompt(message='user?')}}")
	v, err := RenderToValue(rc, tmpl)
	require.NoError(t, err)
	s, _ := v.TryString()
	assert.Equal(t, "alice", s)
}

func TestRenderPromptDroppedChannel(t *testing.T) {
	rc := New(context.Background(), nil, nil, nil, false, &fakeProvider{}, &fakePrompter{drop: true})
	tmpl := template.MustParse("{{prompt(message='user?')}}")
	_, err := RenderToValue(rc, tmpl)
	require.Error(t, err)
	var rerr *Error
	require.ErrorAs(t, err, &rerr)
	assert.Equal(t, ErrPromptNoReply, rerr.Kind)
}

func TestRenderSelectEmptyOptions(t *testing.T) {
	rc := New(context.Background(), nil, nil, nil, false, &fakeProvider{}, &fakePrompter{})
	tmpl := template.MustParse("{{select(json_parse('[]'))}}")
	_, err := RenderToValue(rc, tmpl)
	require.Error(t, err)
	var rerr *Error
	require.ErrorAs(t, err, &rerr)
	assert.Equal(t, ErrSelectNoOptions, rerr.Kind)
}

func TestFieldComputedAtMostOnce(t *testing.T) {
	prompter := &fakePrompter{reply: "x"}
	profile := profileWith(nil)
	profile.Data.Set("counter", template.MustParse("{{prompt(message='n')}}"))
	rc := New(context.Background(), nil, profile, nil, false, &fakeProvider{}, prompter)

	tmpl := template.MustParse("{{counter}}-{{counter}}-{{counter}}")
	out, err := Render(rc, tmpl)
	require.NoError(t, err)
	b, err := out.CollectBytes()
	require.NoError(t, err)
	assert.Equal(t, "x-x-x", string(b))
	assert.Equal(t, 1, prompter.calls)
}

func TestUnknownFieldErrors(t *testing.T) {
	rc := New(context.Background(), nil, nil, nil, false, &fakeProvider{}, &fakePrompter{})
	tmpl := template.MustParse("{{missing}}")
	_, err := RenderToValue(rc, tmpl)
	require.Error(t, err)
	var rerr *Error
	require.ErrorAs(t, err, &rerr)
	assert.Equal(t, ErrUnknownField, rerr.Kind)
}

func TestOverrideTakesPrecedenceOverProfile(t *testing.T) {
	profile := profileWith(map[string]string{"name": "Lee"})
	rc := New(context.Background(), nil, profile, map[string]string{"name": "Override"}, false, &fakeProvider{}, &fakePrompter{})
	tmpl := template.MustParse("{{name}}")
	v, err := RenderToValue(rc, tmpl)
	require.NoError(t, err)
	s, _ := v.TryString()
	assert.Equal(t, "Override", s)
}

func TestValueNullConvertsToStringWithoutError(t *testing.T) {
	_, err := value.Null.TryString()
	require.NoError(t, err)
}

package httpengine

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ferro-labs/slumberlib/collection"
	"github.com/ferro-labs/slumberlib/render"
	"github.com/ferro-labs/slumberlib/store"
	"github.com/ferro-labs/slumberlib/template"
)

func newTestStore(t *testing.T) *store.Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "exchanges.db")
	s, err := store.OpenStore(path, "/tmp/demo.json")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func recipeFor(id collection.RecipeID, url string, persist bool) *collection.Recipe {
	return &collection.Recipe{ID: id, Method: collection.MethodGet, URL: template.MustParse(url), Persist: persist}
}

func treeWith(recipes ...*collection.Recipe) *collection.RecipeTree {
	tree := collection.NewRecipeTree()
	for _, r := range recipes {
		tree.Insert(r.ID, collection.RecipeNode{Kind: collection.NodeRecipe, Recipe: r})
	}
	return tree
}

func TestEngine_Execute_PersistsOnSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	}))
	defer srv.Close()

	st := newTestStore(t)
	recipe := recipeFor("get-thing", srv.URL, true)
	coll, err := collection.New(map[collection.ProfileID]*collection.Profile{}, treeWith(recipe), ".")
	require.NoError(t, err)

	engine := New(st, noopPrompter{}, nil)
	exc, err := engine.Execute(context.Background(), coll, recipe, nil, nil, BuildOptions{})
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, exc.Response.StatusCode)

	got, ok := st.LoadLatestExchange(nil, "get-thing")
	require.True(t, ok, "persist=true must write through to the store")
	assert.Equal(t, exc.ID, got.ID)
}

func TestEngine_Execute_RequestErrorNeverPersists(t *testing.T) {
	st := newTestStore(t)
	recipe := recipeFor("get-thing", "http://127.0.0.1:0/unreachable", true)
	coll, err := collection.New(map[collection.ProfileID]*collection.Profile{}, treeWith(recipe), ".")
	require.NoError(t, err)

	engine := New(st, noopPrompter{}, nil)
	_, err = engine.Execute(context.Background(), coll, recipe, nil, nil, BuildOptions{})
	require.Error(t, err)

	_, ok := st.LoadLatestExchange(nil, "get-thing")
	assert.False(t, ok)
}

func TestEngine_Execute_BuildErrorOnUnknownAuth(t *testing.T) {
	st := newTestStore(t)
	recipe := &collection.Recipe{
		ID: "get-thing", Method: collection.MethodGet, URL: template.MustParse("https://example.test"),
		Authentication: &collection.Authentication{Kind: collection.AuthKind(99)},
	}
	coll, err := collection.New(map[collection.ProfileID]*collection.Profile{}, treeWith(recipe), ".")
	require.NoError(t, err)

	engine := New(st, noopPrompter{}, nil)
	_, err = engine.Execute(context.Background(), coll, recipe, nil, nil, BuildOptions{})
	require.Error(t, err)
	var buildErr *BuildError
	assert.ErrorAs(t, err, &buildErr)
}

func TestEngine_SendRequest_DependentLookupUsesRecipeID(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	st := newTestStore(t)
	recipe := recipeFor("dependency", srv.URL, false)
	coll, err := collection.New(map[collection.ProfileID]*collection.Profile{}, treeWith(recipe), ".")
	require.NoError(t, err)

	engine := New(st, noopPrompter{}, nil)
	rc := render.New(context.Background(), coll, nil, nil, false, engine, noopPrompter{})

	exc, err := engine.SendRequest(context.Background(), "dependency", rc)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, exc.Response.StatusCode)
}

func TestEngine_SendRequest_UnknownRecipeFails(t *testing.T) {
	st := newTestStore(t)
	coll, err := collection.New(map[collection.ProfileID]*collection.Profile{}, collection.NewRecipeTree(), ".")
	require.NoError(t, err)

	engine := New(st, noopPrompter{}, nil)
	rc := render.New(context.Background(), coll, nil, nil, false, engine, noopPrompter{})
	_, err = engine.SendRequest(context.Background(), "does-not-exist", rc)
	assert.Error(t, err)
}

type noopPrompter struct{}

func (noopPrompter) Prompt(context.Context, render.PromptRequest) {}

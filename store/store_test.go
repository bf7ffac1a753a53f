package store

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ferro-labs/slumberlib/collection"
	"github.com/ferro-labs/slumberlib/exchange"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "exchanges.db")
	s, err := OpenStore(path, "/tmp/demo.json")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestStore_ResponsePersistsOnlyWhenRequested(t *testing.T) {
	s := openTestStore(t)
	exc := sampleExchange(nil, "get-thing")
	require.NoError(t, s.Response(exc, false))

	_, ok := s.db.ExchangeByID(s.collectionID, exc.ID.String())
	assert.False(t, ok, "persist=false must not write through to the database")

	exc2 := sampleExchange(nil, "get-thing")
	require.NoError(t, s.Response(exc2, true))
	_, ok = s.db.ExchangeByID(s.collectionID, exc2.ID.String())
	assert.True(t, ok)
}

func TestStore_LoadFallsThroughToDurableDB(t *testing.T) {
	s := openTestStore(t)
	exc := sampleExchange(nil, "get-thing")
	require.NoError(t, s.Response(exc, true))

	s.memory.Forget(exc.ID.String())

	state, ok := s.Load(exc.ID.String())
	require.True(t, ok)
	assert.Equal(t, exchange.StateResponse, state.Kind)
	assert.Equal(t, exc.ID, state.Exchange.ID)
}

func TestStore_LoadLatestExchange_PopulatesLRU(t *testing.T) {
	s := openTestStore(t)
	exc := sampleExchange(nil, "get-thing")
	require.NoError(t, s.Response(exc, true))

	_, ok := s.latest.Get(nil, "get-thing")
	require.True(t, ok, "Response must warm the LRU")

	s.latest.Delete(nil, "get-thing")
	got, ok := s.LoadLatestExchange(nil, "get-thing")
	require.True(t, ok, "a miss must fall through to the durable database")
	assert.Equal(t, exc.ID, got.ID)

	_, ok = s.latest.Get(nil, "get-thing")
	assert.True(t, ok, "a durable hit must repopulate the LRU")
}

func TestStore_LoadSummaries_MergesAndDedupes(t *testing.T) {
	s := openTestStore(t)
	persisted := sampleExchange(nil, "get-thing")
	require.NoError(t, s.Response(persisted, true))

	building := exchange.RequestRecord{RecipeID: "get-thing"}
	s.Start("in-flight-id", nil, "get-thing", nil)
	s.Loading("in-flight-id", &building)

	summaries, err := s.LoadSummaries(ProfileFilterNone(), "get-thing")
	require.NoError(t, err)
	assert.Len(t, summaries, 2, "the persisted exchange and the in-flight request are both present, not double-counted")
}

func TestStore_DeleteRecipeRequests_ClearsBothLayers(t *testing.T) {
	s := openTestStore(t)
	prod := collection.ProfileID("prod")
	exc := sampleExchange(&prod, "get-thing")
	s.Start(exc.ID.String(), &prod, "get-thing", nil)
	require.NoError(t, s.Response(exc, true))

	_, ok := s.Get(exc.ID.String())
	require.True(t, ok, "the in-flight request must be tracked before deletion")

	require.NoError(t, s.DeleteRecipeRequests(ProfileFilterSome(prod), "get-thing"))

	_, ok = s.Get(exc.ID.String())
	assert.False(t, ok)
	_, ok = s.db.ExchangeByID(s.collectionID, exc.ID.String())
	assert.False(t, ok)
}

func TestStore_UIStateRoundTrip(t *testing.T) {
	s := openTestStore(t)
	require.NoError(t, s.PutUIState("pane_width", "recipe-1", []byte(`{"width":300}`)))
	got, ok := s.GetUIState("pane_width", "recipe-1")
	require.True(t, ok)
	assert.JSONEq(t, `{"width":300}`, string(got))
}

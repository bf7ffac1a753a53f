package store

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ferro-labs/slumberlib/collection"
	"github.com/ferro-labs/slumberlib/exchange"
)

func TestMemory_LifecycleToResponse(t *testing.T) {
	m := NewMemory()
	profileID := collection.ProfileID("prod")
	m.Start("r1", &profileID, "get-thing", nil)

	state, ok := m.Get("r1")
	require.True(t, ok)
	assert.Equal(t, exchange.StateBuilding, state.Kind)

	req := &exchange.RequestRecord{ID: uuid.New(), RecipeID: "get-thing"}
	m.Loading("r1", req)
	state, _ = m.Get("r1")
	assert.Equal(t, exchange.StateLoading, state.Kind)

	exc := &exchange.Exchange{ID: uuid.New()}
	m.Response("r1", exc)
	state, _ = m.Get("r1")
	assert.Equal(t, exchange.StateResponse, state.Kind)
	assert.Same(t, exc, state.Exchange)
}

func TestMemory_TerminalStateIsImmutable(t *testing.T) {
	m := NewMemory()
	m.Start("r1", nil, "get-thing", nil)
	m.Cancel("r1")

	state, _ := m.Get("r1")
	require.Equal(t, exchange.StateCancelled, state.Kind)

	m.Loading("r1", &exchange.RequestRecord{})
	state, _ = m.Get("r1")
	assert.Equal(t, exchange.StateCancelled, state.Kind, "a terminal state must not be overwritten")
}

func TestMemory_CancelInvokesHookOnce(t *testing.T) {
	m := NewMemory()
	calls := 0
	m.Start("r1", nil, "get-thing", func() { calls++ })

	m.Cancel("r1")
	m.Cancel("r1")

	assert.Equal(t, 1, calls)
}

func TestMemory_SummariesFiltersByProfileAndRecipe(t *testing.T) {
	m := NewMemory()
	prod := collection.ProfileID("prod")
	staging := collection.ProfileID("staging")
	m.Start("r1", &prod, "get-thing", nil)
	m.Start("r2", &staging, "get-thing", nil)
	m.Start("r3", nil, "get-thing", nil)
	m.Start("r4", &prod, "other-thing", nil)

	prodOnly := m.Summaries(ProfileFilterSome(prod), "get-thing")
	assert.Len(t, prodOnly, 1)

	all := m.Summaries(ProfileFilterAll(), "get-thing")
	assert.Len(t, all, 3)

	none := m.Summaries(ProfileFilterNone(), "get-thing")
	assert.Len(t, none, 1)
}

func TestMemory_ForgetRemovesEntry(t *testing.T) {
	m := NewMemory()
	m.Start("r1", nil, "get-thing", nil)
	m.Forget("r1")

	_, ok := m.Get("r1")
	assert.False(t, ok)
}

package store

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ferro-labs/slumberlib/collection"
	"github.com/ferro-labs/slumberlib/exchange"
)

func TestLatestCache_GetPut(t *testing.T) {
	c := NewLatestCache(10)
	prod := collection.ProfileID("prod")
	exc := &exchange.Exchange{ID: uuid.New()}

	_, ok := c.Get(&prod, "get-thing")
	assert.False(t, ok)

	c.Put(&prod, "get-thing", exc)
	got, ok := c.Get(&prod, "get-thing")
	require.True(t, ok)
	assert.Same(t, exc, got)
}

func TestLatestCache_NoProfileDistinctFromSomeProfile(t *testing.T) {
	c := NewLatestCache(10)
	prod := collection.ProfileID("prod")
	noProfileExc := &exchange.Exchange{ID: uuid.New()}
	prodExc := &exchange.Exchange{ID: uuid.New()}

	c.Put(nil, "get-thing", noProfileExc)
	c.Put(&prod, "get-thing", prodExc)

	got, ok := c.Get(nil, "get-thing")
	require.True(t, ok)
	assert.Same(t, noProfileExc, got)

	got, ok = c.Get(&prod, "get-thing")
	require.True(t, ok)
	assert.Same(t, prodExc, got)
}

func TestLatestCache_EvictsLeastRecentlyUsed(t *testing.T) {
	c := NewLatestCache(2)
	a, b, d := &exchange.Exchange{ID: uuid.New()}, &exchange.Exchange{ID: uuid.New()}, &exchange.Exchange{ID: uuid.New()}

	c.Put(nil, "a", a)
	c.Put(nil, "b", b)
	c.Get(nil, "a") // touch a, making b the least-recently-used entry
	c.Put(nil, "d", d)

	_, ok := c.Get(nil, "b")
	assert.False(t, ok, "b should have been evicted")

	_, ok = c.Get(nil, "a")
	assert.True(t, ok)
	_, ok = c.Get(nil, "d")
	assert.True(t, ok)
}

func TestLatestCache_Delete(t *testing.T) {
	c := NewLatestCache(10)
	exc := &exchange.Exchange{ID: uuid.New()}
	c.Put(nil, "get-thing", exc)
	c.Delete(nil, "get-thing")

	_, ok := c.Get(nil, "get-thing")
	assert.False(t, ok)
}

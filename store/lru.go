package store

import (
	"container/list"
	"sync"

	"github.com/ferro-labs/slumberlib/collection"
	"github.com/ferro-labs/slumberlib/exchange"
)

// latestKey identifies the (profile, recipe) pair the latest-exchange cache
// is keyed by.
type latestKey struct {
	profileID string
	hasProfile bool
	recipeID  collection.RecipeID
}

func newLatestKey(profileID *collection.ProfileID, recipeID collection.RecipeID) latestKey {
	if profileID == nil {
		return latestKey{recipeID: recipeID}
	}
	return latestKey{profileID: string(*profileID), hasProfile: true, recipeID: recipeID}
}

type latestEntry struct {
	key      latestKey
	exchange *exchange.Exchange
}

// LatestCache is a bounded, thread-safe LRU of the most recent Exchange per
// (profile, recipe) pair, consulted before the durable exchange database so
// repeated response()/response_header() lookups within a render group don't
// round-trip to SQLite. It is adapted from the teacher's
// internal/cache.Memory LRU (container/list + map, move-to-front on hit),
// generalised from "TTL-bounded provider response" to "most-recent exchange
// per recipe", with eviction by capacity only (an exchange stays valid
// forever; it is superseded, never expired) (spec.md §9 usage/last-used
// bookkeeping supplement).
type LatestCache struct {
	mu        sync.Mutex
	capacity  int
	items     map[latestKey]*list.Element
	evictList *list.List
}

// NewLatestCache creates an LRU bounded to capacity entries. A non-positive
// capacity disables bounding (never evicts).
func NewLatestCache(capacity int) *LatestCache {
	return &LatestCache{
		capacity:  capacity,
		items:     make(map[latestKey]*list.Element),
		evictList: list.New(),
	}
}

// Get returns the cached latest exchange for (profileID, recipeID), if any.
func (c *LatestCache) Get(profileID *collection.ProfileID, recipeID collection.RecipeID) (*exchange.Exchange, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	key := newLatestKey(profileID, recipeID)
	elem, ok := c.items[key]
	if !ok {
		return nil, false
	}
	c.evictList.MoveToFront(elem)
	return elem.Value.(*latestEntry).exchange, true
}

// Put records exc as the latest exchange for its (profile, recipe) pair,
// evicting the least-recently-used entry if over capacity.
func (c *LatestCache) Put(profileID *collection.ProfileID, recipeID collection.RecipeID, exc *exchange.Exchange) {
	c.mu.Lock()
	defer c.mu.Unlock()
	key := newLatestKey(profileID, recipeID)
	if elem, ok := c.items[key]; ok {
		elem.Value.(*latestEntry).exchange = exc
		c.evictList.MoveToFront(elem)
		return
	}
	if c.capacity > 0 && c.evictList.Len() >= c.capacity {
		oldest := c.evictList.Back()
		if oldest != nil {
			c.evictList.Remove(oldest)
			delete(c.items, oldest.Value.(*latestEntry).key)
		}
	}
	elem := c.evictList.PushFront(&latestEntry{key: key, exchange: exc})
	c.items[key] = elem
}

// Delete drops the cached entry for (profileID, recipeID), if any.
func (c *LatestCache) Delete(profileID *collection.ProfileID, recipeID collection.RecipeID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	key := newLatestKey(profileID, recipeID)
	if elem, ok := c.items[key]; ok {
		c.evictList.Remove(elem)
		delete(c.items, key)
	}
}

package render

import (
	"sync"

	"github.com/ferro-labs/slumberlib/value"
)

// fieldCacheState is the state of one key's slot: either still being
// computed (with waiters parked on a channel) or holding a ready value.
type fieldCacheState struct {
	ready   bool
	value   value.Value
	failed  bool
	done    chan struct{}
}

// FieldCache is the process-safe, per-render-group cache described in
// spec.md §4.1 and §9: every identifier lookup goes through it, and a field
// is computed at most once per render group regardless of how many
// concurrent renders request it. It is grounded on the mutex-guarded map
// idiom the teacher's LRU cache (internal/cache/memory.go) uses, adapted
// from an eviction policy to a single-use compute-once guard protocol since
// a render group's field set is bounded and never evicted mid-group.
type FieldCache struct {
	mu    sync.Mutex
	slots map[string]*fieldCacheState
}

// NewFieldCache creates an empty field cache for one render group.
func NewFieldCache() *FieldCache {
	return &FieldCache{slots: make(map[string]*fieldCacheState)}
}

// Guard is returned on a cache miss. The caller holding the guard is
// responsible for computing the field's value and calling exactly one of
// Set or Abort.
type Guard struct {
	cache *FieldCache
	key   string
	slot  *fieldCacheState
}

// Lookup resolves key against the cache. If the value is already computed,
// ok is true and the Guard is zero. If another computation is in flight,
// Lookup blocks until it finishes (success or failure) and then retries. If
// this call is the first to request key, it returns a Guard the caller must
// fulfil.
func (c *FieldCache) Lookup(key string) (v value.Value, ok bool, guard *Guard) {
	for {
		c.mu.Lock()
		slot, exists := c.slots[key]
		if !exists {
			slot = &fieldCacheState{done: make(chan struct{})}
			c.slots[key] = slot
			c.mu.Unlock()
			return value.Value{}, false, &Guard{cache: c, key: key, slot: slot}
		}
		if slot.ready {
			v := slot.value
			failed := slot.failed
			c.mu.Unlock()
			if failed {
				return value.Value{}, false, nil
			}
			return v, true, nil
		}
		c.mu.Unlock()
		<-slot.done
		// Loop around: the slot is now ready (or failed); re-check.
	}
}

// Set publishes v for the guard's key and wakes every waiter. Exactly one
// of Set/Abort must be called per Guard.
func (g *Guard) Set(v value.Value) {
	g.cache.mu.Lock()
	g.slot.value = v
	g.slot.ready = true
	g.cache.mu.Unlock()
	close(g.slot.done)
}

// Abort marks the guard's key as failed to compute. Waiters are woken and
// must recompute on their own (spec.md §9: "transition to absent and wake
// waiters with a computation failed signal").
func (g *Guard) Abort() {
	g.cache.mu.Lock()
	delete(g.cache.slots, g.key)
	g.slot.failed = true
	g.slot.ready = true
	g.cache.mu.Unlock()
	close(g.slot.done)
}

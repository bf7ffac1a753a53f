// Package store implements the request/exchange persistence layer: an
// in-memory cache of in-flight and recent request states (this file), and a
// SQLite-backed durable exchange database with a versioned migration chain
// (db.go). Both are fronted by Store (store.go), the type the HTTP engine
// and the template engine's response()/response_header() functions talk to.
package store

import (
	"sync"

	"github.com/ferro-labs/slumberlib/collection"
	"github.com/ferro-labs/slumberlib/exchange"
	"github.com/ferro-labs/slumberlib/internal/metrics"
)

// ProfileFilter selects which profile scope a query or delete should match,
// per spec.md §4.3: None matches requests with no profile, Some matches an
// exact profile id, All matches every profile.
type ProfileFilter struct {
	kind      profileFilterKind
	profileID collection.ProfileID
}

type profileFilterKind int

const (
	filterNone profileFilterKind = iota
	filterSome
	filterAll
)

// ProfileFilterNone matches only requests with no profile.
func ProfileFilterNone() ProfileFilter { return ProfileFilter{kind: filterNone} }

// ProfileFilterSome matches only requests for the given profile id.
func ProfileFilterSome(id collection.ProfileID) ProfileFilter {
	return ProfileFilter{kind: filterSome, profileID: id}
}

// ProfileFilterAll matches requests for any profile.
func ProfileFilterAll() ProfileFilter { return ProfileFilter{kind: filterAll} }

func (f ProfileFilter) matches(id *collection.ProfileID) bool {
	switch f.kind {
	case filterAll:
		return true
	case filterSome:
		return id != nil && *id == f.profileID
	default: // filterNone
		return id == nil
	}
}

// Memory is the in-memory request-id -> RequestState cache described in
// spec.md §4.3. It is grounded on the mutex-guarded map idiom the teacher
// uses throughout (internal/cache.Memory, render.FieldCache) but tracks a
// state machine per key instead of a single cached value, since a request
// id's RequestState legally changes shape over its lifetime (Building ->
// Loading -> terminal).
type Memory struct {
	mu     sync.RWMutex
	states map[string]*memoryEntry
}

type memoryEntry struct {
	state  exchange.RequestState
	cancel func()
}

// NewMemory creates an empty in-memory request store.
func NewMemory() *Memory {
	return &Memory{states: make(map[string]*memoryEntry)}
}

// Start records a newly-building request (spec.md §3 RequestState lifecycle:
// entry point to Building). cancel is called by Cancel to stop the
// in-flight task; it may be nil if the caller has no cancellation hook yet.
func (m *Memory) Start(id string, profileID *collection.ProfileID, recipeID collection.RecipeID, cancel func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.states[id] = &memoryEntry{
		state: exchange.RequestState{
			Kind:      exchange.StateBuilding,
			ProfileID: profileID,
			RecipeID:  recipeID,
		},
		cancel: cancel,
	}
	metrics.StoreOperations.WithLabelValues("start", "ok").Inc()
}

// Loading transitions id from Building to Loading once the request has been
// fully built and is about to be sent.
func (m *Memory) Loading(id string, req *exchange.RequestRecord) {
	m.mu.Lock()
	defer m.mu.Unlock()
	entry, ok := m.states[id]
	if !ok || entry.state.Kind.IsTerminal() {
		metrics.StoreOperations.WithLabelValues("loading", "skipped").Inc()
		return
	}
	entry.state.Kind = exchange.StateLoading
	entry.state.Request = req
	metrics.StoreOperations.WithLabelValues("loading", "ok").Inc()
}

// Response transitions id to the terminal Response state, per spec.md §3:
// "Terminal states are immutable" — a request already terminal (e.g.
// Cancelled while the send was racing) is left untouched.
func (m *Memory) Response(id string, exc *exchange.Exchange) {
	m.mu.Lock()
	defer m.mu.Unlock()
	entry, ok := m.states[id]
	if !ok || entry.state.Kind.IsTerminal() {
		metrics.StoreOperations.WithLabelValues("response", "skipped").Inc()
		return
	}
	entry.state.Kind = exchange.StateResponse
	entry.state.Exchange = exc
	entry.cancel = nil
	metrics.StoreOperations.WithLabelValues("response", "ok").Inc()
}

// BuildError transitions id to the terminal BuildError state.
func (m *Memory) BuildError(id string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	entry, ok := m.states[id]
	if !ok || entry.state.Kind.IsTerminal() {
		metrics.StoreOperations.WithLabelValues("build_error", "skipped").Inc()
		return
	}
	entry.state.Kind = exchange.StateBuildError
	entry.state.Err = err
	entry.cancel = nil
	metrics.StoreOperations.WithLabelValues("build_error", "ok").Inc()
}

// RequestError transitions id to the terminal RequestError state, preserving
// the in-progress RequestRecord per spec.md §4.2 "Send stage".
func (m *Memory) RequestError(id string, req *exchange.RequestRecord, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	entry, ok := m.states[id]
	if !ok || entry.state.Kind.IsTerminal() {
		metrics.StoreOperations.WithLabelValues("request_error", "skipped").Inc()
		return
	}
	entry.state.Kind = exchange.StateRequestError
	entry.state.Request = req
	entry.state.Err = err
	entry.cancel = nil
	metrics.StoreOperations.WithLabelValues("request_error", "ok").Inc()
}

// Cancel transitions id to the terminal Cancelled state and invokes its
// cancellation hook, if one was registered. Per spec.md §4.2, this is only
// meaningful from Building or Loading; a request already terminal is left
// untouched and no cancellation hook fires a second time.
func (m *Memory) Cancel(id string) {
	m.mu.Lock()
	entry, ok := m.states[id]
	if !ok || entry.state.Kind.IsTerminal() {
		m.mu.Unlock()
		metrics.StoreOperations.WithLabelValues("cancel", "skipped").Inc()
		return
	}
	entry.state.Kind = exchange.StateCancelled
	cancel := entry.cancel
	entry.cancel = nil
	m.mu.Unlock()
	if cancel != nil {
		cancel()
	}
	metrics.StoreOperations.WithLabelValues("cancel", "ok").Inc()
}

// Get returns the current RequestState for id, and true if it exists.
func (m *Memory) Get(id string) (exchange.RequestState, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	entry, ok := m.states[id]
	if !ok {
		return exchange.RequestState{}, false
	}
	return entry.state, true
}

// Forget drops an id from the in-memory cache (used after eviction so a
// later Get falls through to durable storage via Store.Load).
func (m *Memory) Forget(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.states, id)
}

// Put installs a terminal RequestState directly, used by Store.Load to
// repopulate the in-memory cache from a durable row on a cache miss.
func (m *Memory) Put(id string, state exchange.RequestState) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.states[id] = &memoryEntry{state: state}
}

// Summaries returns every in-memory RequestState matching (filter, recipeID),
// regardless of terminal status, for merging with durable exchange rows in
// Store.LoadSummaries.
func (m *Memory) Summaries(filter ProfileFilter, recipeID collection.RecipeID) []exchange.RequestState {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]exchange.RequestState, 0)
	for _, entry := range m.states {
		if entry.state.RecipeID != recipeID {
			continue
		}
		if !filter.matches(entry.state.ProfileID) {
			continue
		}
		out = append(out, entry.state)
	}
	return out
}

// DeleteRecipeRequests removes every in-memory entry matching (filter,
// recipeID) and returns their ids, so the caller can also remove them from
// durable storage atomically.
func (m *Memory) DeleteRecipeRequests(filter ProfileFilter, recipeID collection.RecipeID) []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	var removed []string
	for id, entry := range m.states {
		if entry.state.RecipeID != recipeID {
			continue
		}
		if !filter.matches(entry.state.ProfileID) {
			continue
		}
		removed = append(removed, id)
		delete(m.states, id)
	}
	return removed
}

// DeleteRequest removes a single in-memory entry by id.
func (m *Memory) DeleteRequest(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.states, id)
}

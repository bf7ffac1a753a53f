package store

import (
	"github.com/ferro-labs/slumberlib/collection"
	"github.com/ferro-labs/slumberlib/exchange"
)

// Store combines the in-memory request-state cache with the durable
// exchange database, scoped to a single collection path (spec.md §4.3,
// §6 "the application must maintain collections entries eagerly on first
// use of a collection path"). It is the type the HTTP engine and the
// render package's HTTPProvider implementation both hold a handle to.
type Store struct {
	memory       *Memory
	db           *DB
	latest       *LatestCache
	collectionID string
}

// OpenStore opens (or creates) the SQLite database at dsn, eagerly
// registers collectionPath, and returns a Store scoped to it.
func OpenStore(dsn, collectionPath string) (*Store, error) {
	db, err := Open(dsn)
	if err != nil {
		return nil, err
	}
	s, err := New(db, collectionPath)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// New wraps an already-open DB for collectionPath. Use this to share one DB
// across several collections instead of opening the file repeatedly.
func New(db *DB, collectionPath string) (*Store, error) {
	collectionID, err := db.EnsureCollection(collectionPath)
	if err != nil {
		return nil, err
	}
	return &Store{
		memory:       NewMemory(),
		db:           db,
		latest:       NewLatestCache(256),
		collectionID: collectionID,
	}, nil
}

// Close releases the underlying database connection.
func (s *Store) Close() error { return s.db.Close() }

// Start records a newly-building request (spec.md §4.3 in-memory contract).
func (s *Store) Start(id string, profileID *collection.ProfileID, recipeID collection.RecipeID, cancel func()) {
	s.memory.Start(id, profileID, recipeID, cancel)
}

// Loading transitions id to Loading.
func (s *Store) Loading(id string, req *exchange.RequestRecord) {
	s.memory.Loading(id, req)
}

// Response transitions id to the terminal Response state and, if persist is
// true, writes it through to the durable database (spec.md §4.2
// "Persistence").
func (s *Store) Response(exc *exchange.Exchange, persist bool) error {
	s.memory.Response(exc.ID.String(), exc)
	s.latest.Put(exc.Request.ProfileID, exc.Request.RecipeID, exc)
	if !persist {
		return nil
	}
	return s.db.InsertExchange(s.collectionID, exc)
}

// BuildError transitions id to the terminal BuildError state. Per spec.md
// §7, build errors never persist.
func (s *Store) BuildError(id string, err error) {
	s.memory.BuildError(id, err)
}

// RequestError transitions id to the terminal RequestError state. Per
// spec.md §7, transport errors never persist.
func (s *Store) RequestError(id string, req *exchange.RequestRecord, err error) {
	s.memory.RequestError(id, req, err)
}

// Cancel transitions id to Cancelled and invokes its cancellation hook.
func (s *Store) Cancel(id string) {
	s.memory.Cancel(id)
}

// Get returns the current in-memory RequestState for id.
func (s *Store) Get(id string) (exchange.RequestState, bool) {
	return s.memory.Get(id)
}

// Load returns the RequestState for id, populating the in-memory cache from
// the durable database on a miss (spec.md §4.3 "load(id)").
func (s *Store) Load(id string) (exchange.RequestState, bool) {
	if state, ok := s.memory.Get(id); ok {
		return state, true
	}
	exc, ok := s.db.ExchangeByID(s.collectionID, id)
	if !ok {
		return exchange.RequestState{}, false
	}
	state := exchange.RequestState{
		Kind:      exchange.StateResponse,
		ProfileID: exc.Request.ProfileID,
		RecipeID:  exc.Request.RecipeID,
		Exchange:  exc,
	}
	s.memory.Put(id, state)
	return state, true
}

// LoadLatestExchange returns the most recent exchange for (profileID,
// recipeID), consulting the LRU cache and then the durable database (the
// in-memory state cache is not consulted) (spec.md §4.3 "Latest exchange
// for (profile?, recipe)").
func (s *Store) LoadLatestExchange(profileID *collection.ProfileID, recipeID collection.RecipeID) (*exchange.Exchange, bool) {
	if exc, ok := s.latest.Get(profileID, recipeID); ok {
		return exc, true
	}
	exc, ok := s.db.LatestExchange(s.collectionID, profileID, recipeID)
	if !ok {
		return nil, false
	}
	s.latest.Put(profileID, recipeID, exc)
	return exc, true
}

// LoadSummaries returns the union of in-memory RequestStates and durable
// exchanges for (filter, recipeID), de-duplicated by request id and sorted
// by start time descending (spec.md §4.3 "Summaries").
func (s *Store) LoadSummaries(filter ProfileFilter, recipeID collection.RecipeID) ([]exchange.RequestState, error) {
	inMemory := s.memory.Summaries(filter, recipeID)
	seen := make(map[string]bool, len(inMemory))
	for _, st := range inMemory {
		if st.Exchange != nil {
			seen[st.Exchange.ID.String()] = true
		}
	}

	durable, err := s.db.Summaries(s.collectionID, filter, recipeID)
	if err != nil {
		return nil, err
	}

	out := make([]exchange.RequestState, 0, len(inMemory)+len(durable))
	out = append(out, inMemory...)
	for _, exc := range durable {
		if seen[exc.ID.String()] {
			continue
		}
		out = append(out, exchange.RequestState{
			Kind:      exchange.StateResponse,
			ProfileID: exc.Request.ProfileID,
			RecipeID:  exc.Request.RecipeID,
			Exchange:  exc,
		})
	}

	startOf := func(st exchange.RequestState) (t int64) {
		if st.Exchange != nil {
			return st.Exchange.StartTime.UnixNano()
		}
		return 0
	}
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && startOf(out[j]) > startOf(out[j-1]); j-- {
			out[j], out[j-1] = out[j-1], out[j]
		}
	}
	return out, nil
}

// DeleteRequest removes a single request from both the in-memory cache and
// the durable database.
func (s *Store) DeleteRequest(id string) error {
	s.memory.DeleteRequest(id)
	return s.db.DeleteRequest(id)
}

// DeleteRecipeRequests removes every request matching (filter, recipeID)
// from both the in-memory cache and the durable database atomically
// (spec.md §4.3 "Delete recipe requests").
func (s *Store) DeleteRecipeRequests(filter ProfileFilter, recipeID collection.RecipeID) error {
	s.memory.DeleteRecipeRequests(filter, recipeID)
	return s.db.DeleteRecipeRequests(s.collectionID, filter, recipeID)
}

// PutUIState upserts UI/session state scoped to this store's collection.
func (s *Store) PutUIState(keyType, key string, value []byte) error {
	return s.db.PutUIState(s.collectionID, keyType, key, value)
}

// GetUIState fetches UI/session state scoped to this store's collection.
func (s *Store) GetUIState(keyType, key string) ([]byte, bool) {
	return s.db.GetUIState(s.collectionID, keyType, key)
}

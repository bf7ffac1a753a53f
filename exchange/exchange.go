// Package exchange defines the data shapes shared between the HTTP engine,
// the template engine's response()/response_header() functions, and the
// request store: a completed Exchange, the in-flight RequestRecord that
// preceded it, and the RequestState lifecycle tracked per request id.
package exchange

import (
	"time"

	"github.com/google/uuid"

	"github.com/ferro-labs/slumberlib/collection"
)

// Header is a single ordered header entry. Headers are kept as an ordered
// slice rather than a map because duplicate header names are allowed and
// must preserve insertion order (spec.md §4.2 build stage, step 4).
type Header struct {
	Name  string
	Value string
}

// Headers is an ordered list of Header entries with map-like lookup
// helpers.
type Headers []Header

// Get returns the first value for name (case-insensitive), and true if
// found.
func (h Headers) Get(name string) (string, bool) {
	for _, entry := range h {
		if equalFoldASCII(entry.Name, name) {
			return entry.Value, true
		}
	}
	return "", false
}

func equalFoldASCII(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := 0; i < len(a); i++ {
		ca, cb := a[i], b[i]
		if 'A' <= ca && ca <= 'Z' {
			ca += 'a' - 'A'
		}
		if 'A' <= cb && cb <= 'Z' {
			cb += 'a' - 'A'
		}
		if ca != cb {
			return false
		}
	}
	return true
}

// RequestRecord is a fully-materialised outgoing HTTP request, produced by
// the build stage of the HTTP engine (spec.md §4.2).
type RequestRecord struct {
	ID        uuid.UUID
	ProfileID *collection.ProfileID
	RecipeID  collection.RecipeID
	Method    collection.Method
	URL       string
	Headers   Headers
	Body      []byte
}

// ResponseRecord is the HTTP response received for a RequestRecord.
type ResponseRecord struct {
	StatusCode int
	Headers    Headers
	Body       []byte
}

// Exchange is an immutable completed request/response pair, persisted to
// the store on successful send (spec.md §3).
type Exchange struct {
	ID        uuid.UUID
	Request   RequestRecord
	Response  ResponseRecord
	StartTime time.Time
	EndTime   time.Time
}

// RequestStateKind identifies which point of the lifecycle a RequestState
// occupies (spec.md §3 RequestState).
type RequestStateKind int

const (
	StateBuilding RequestStateKind = iota
	StateLoading
	StateResponse
	StateBuildError
	StateRequestError
	StateCancelled
)

func (k RequestStateKind) String() string {
	switch k {
	case StateBuilding:
		return "building"
	case StateLoading:
		return "loading"
	case StateResponse:
		return "response"
	case StateBuildError:
		return "build_error"
	case StateRequestError:
		return "request_error"
	case StateCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// IsTerminal reports whether k is one no further transition is permitted
// from (spec.md §3: "Terminal states are immutable").
func (k RequestStateKind) IsTerminal() bool {
	switch k {
	case StateResponse, StateBuildError, StateRequestError, StateCancelled:
		return true
	default:
		return false
	}
}

// RequestState is the per-request-id state machine entry tracked by the
// in-memory store.
type RequestState struct {
	Kind      RequestStateKind
	ProfileID *collection.ProfileID
	RecipeID  collection.RecipeID
	Request   *RequestRecord
	Exchange  *Exchange
	Err       error
}

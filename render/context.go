package render

import (
	"context"

	"github.com/ferro-labs/slumberlib/collection"
	"github.com/ferro-labs/slumberlib/exchange"
)

// HTTPProvider is the collaborator the template engine calls to fetch the
// most recent exchange for a (profile, recipe) pair or to trigger a
// dependent request (spec.md §6).
type HTTPProvider interface {
	// GetLatestExchange returns the most recent durable-first exchange for
	// (profile, recipeID), or false if none exists.
	GetLatestExchange(ctx context.Context, profileID *collection.ProfileID, recipeID collection.RecipeID) (*exchange.Exchange, bool)

	// SendRequest builds and sends recipeID using the given render context,
	// inheriting its profile and overrides.
	SendRequest(ctx context.Context, recipeID collection.RecipeID, rc *RenderContext) (*exchange.Exchange, error)
}

// PromptKind distinguishes a text prompt from a select prompt.
type PromptKind int

const (
	PromptText PromptKind = iota
	PromptSelect
)

// PromptRequest is the value sent to the Prompter: either a text prompt
// (message, optional default, sensitive flag) or a select prompt (message,
// options), paired with a one-shot reply channel.
type PromptRequest struct {
	Kind      PromptKind
	Message   string
	Default   string
	HasDefault bool
	Sensitive bool
	Options   []string
	Reply     chan<- PromptReply
}

// PromptReply is the user's answer to a PromptRequest.
type PromptReply struct {
	Text string
}

// Prompter is the external collaborator that surfaces prompt/select
// requests to the user (spec.md §4.4, §6). The engine calls it at most once
// per prompt/select invocation and never retries.
type Prompter interface {
	Prompt(ctx context.Context, req PromptRequest)
}

// RenderContext carries all per-render-group state: the collection, the
// selected profile, user overrides, the field cache, the streaming
// capability flag, and handles to the HTTP provider and the prompter
// (spec.md §3, §4.1).
type RenderContext struct {
	Ctx        context.Context
	Collection *collection.Collection
	Profile    *collection.Profile
	Overrides  map[string]string
	Cache      *FieldCache
	CanStream  bool
	Provider   HTTPProvider
	Prompter   Prompter
}

// New creates a fresh render context for a top-level render group, with a
// brand-new field cache.
func New(ctx context.Context, coll *collection.Collection, profile *collection.Profile, overrides map[string]string, canStream bool, provider HTTPProvider, prompter Prompter) *RenderContext {
	return &RenderContext{
		Ctx:        ctx,
		Collection: coll,
		Profile:    profile,
		Overrides:  overrides,
		Cache:      NewFieldCache(),
		CanStream:  canStream,
		Provider:   provider,
		Prompter:   prompter,
	}
}

// Dependent creates a fresh render context for a dependency render
// triggered by response()/response_header(), inheriting overrides and the
// selected profile but starting with a brand-new field cache (spec.md §9:
// "prevent cache poisoning across requests").
func (rc *RenderContext) Dependent(canStream bool) *RenderContext {
	return &RenderContext{
		Ctx:        rc.Ctx,
		Collection: rc.Collection,
		Profile:    rc.Profile,
		Overrides:  rc.Overrides,
		Cache:      NewFieldCache(),
		CanStream:  canStream,
		Provider:   rc.Provider,
		Prompter:   rc.Prompter,
	}
}

// WithCanStream returns a shallow copy of rc with CanStream overridden,
// sharing the same field cache (used when rendering a sub-expression that
// cannot itself accept a stream even though the parent render group can,
// e.g. any function argument other than a top-level request body).
func (rc *RenderContext) WithCanStream(canStream bool) *RenderContext {
	cp := *rc
	cp.CanStream = canStream
	return &cp
}

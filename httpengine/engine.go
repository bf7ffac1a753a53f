package httpengine

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/ferro-labs/slumberlib/collection"
	"github.com/ferro-labs/slumberlib/exchange"
	"github.com/ferro-labs/slumberlib/internal/logging"
	"github.com/ferro-labs/slumberlib/internal/metrics"
	"github.com/ferro-labs/slumberlib/render"
	"github.com/ferro-labs/slumberlib/store"
)

// Engine consumes a rendered recipe and produces an Exchange (spec.md §2
// "HTTP engine"). It owns the http.Client used for the send stage and the
// Store used for cancellation tracking and persistence, and it implements
// render.HTTPProvider so response()/response_header() can recurse into it
// for dependent requests (spec.md §6 "HTTP provider trait").
type Engine struct {
	Store    *store.Store
	Prompter render.Prompter
	client   *http.Client
}

// New creates an Engine backed by st, surfacing prompts through prompter.
// insecureHosts names hosts whose TLS certificates are not verified
// (test-mode use, spec.md §4.2).
func New(st *store.Store, prompter render.Prompter, insecureHosts []string) *Engine {
	hosts := make(map[string]bool, len(insecureHosts))
	for _, h := range insecureHosts {
		hosts[h] = true
	}
	return &Engine{Store: st, Prompter: prompter, client: newClient(hosts)}
}

// Execute is the top-level entry point for a user-triggered request
// (spec.md §2 data flow): it builds a fresh render context for recipe and
// runs it through build -> send -> persist.
func (e *Engine) Execute(ctx context.Context, coll *collection.Collection, recipe *collection.Recipe, profile *collection.Profile, overrides map[string]string, opts BuildOptions) (*exchange.Exchange, error) {
	ctx = logging.WithGroupID(ctx, logging.NewGroupID())
	rc := render.New(ctx, coll, profile, overrides, true, e, e.Prompter)
	return e.run(ctx, recipe, rc, opts)
}

// GetLatestExchange implements render.HTTPProvider.
func (e *Engine) GetLatestExchange(ctx context.Context, profileID *collection.ProfileID, recipeID collection.RecipeID) (*exchange.Exchange, bool) {
	return e.Store.LoadLatestExchange(profileID, recipeID)
}

// SendRequest implements render.HTTPProvider: it is called by the template
// engine's response()/response_header() functions to trigger a dependent
// request (spec.md §9 "Recursive rendering across HTTP boundaries"). rc is
// already a fresh dependent render context (new field cache, inherited
// profile/overrides) constructed by the caller.
func (e *Engine) SendRequest(ctx context.Context, recipeID collection.RecipeID, rc *render.RenderContext) (*exchange.Exchange, error) {
	recipe, ok := rc.Collection.FindRecipe(recipeID)
	if !ok {
		return nil, fmt.Errorf("httpengine: recipe %q not found", recipeID)
	}
	return e.run(ctx, recipe, rc, BuildOptions{})
}

// run performs build -> send -> persist for recipe against rc, tracking its
// lifecycle in the store and honouring cooperative cancellation (spec.md
// §4.2 "Cancellation").
func (e *Engine) run(ctx context.Context, recipe *collection.Recipe, rc *render.RenderContext, opts BuildOptions) (*exchange.Exchange, error) {
	id := uuid.New()
	cancelCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	var profileID *collection.ProfileID
	if rc.Profile != nil {
		p := rc.Profile.ID
		profileID = &p
	}
	e.Store.Start(id.String(), profileID, recipe.ID, cancel)

	log := logging.FromContext(cancelCtx)
	start := time.Now()

	buildRC := *rc
	buildRC.Ctx = cancelCtx
	req, err := build(&buildRC, recipe, id, opts)
	if err != nil {
		e.Store.BuildError(id.String(), err)
		metrics.RequestsTotal.WithLabelValues(string(recipe.Method), "build_error").Inc()
		log.Error("request build failed", "recipe_id", recipe.ID, "error", err)
		return nil, err
	}
	e.Store.Loading(id.String(), req)

	resp, end, err := send(cancelCtx, e.client, req)
	if err != nil {
		if cancelCtx.Err() != nil {
			metrics.RequestsTotal.WithLabelValues(string(recipe.Method), "cancelled").Inc()
			return nil, render.Cancelled()
		}
		e.Store.RequestError(id.String(), req, err)
		metrics.RequestsTotal.WithLabelValues(string(recipe.Method), "request_error").Inc()
		metrics.RequestDuration.WithLabelValues(string(recipe.Method)).Observe(time.Since(start).Seconds())
		log.Error("request send failed", "recipe_id", recipe.ID, "error", err)
		return nil, err
	}

	exc := &exchange.Exchange{
		ID:        id,
		Request:   *req,
		Response:  *resp,
		StartTime: start,
		EndTime:   end,
	}
	if err := e.Store.Response(exc, recipe.Persist); err != nil {
		log.Error("exchange persistence failed", "recipe_id", recipe.ID, "error", err)
	}
	metrics.RequestsTotal.WithLabelValues(string(recipe.Method), "response").Inc()
	metrics.RequestDuration.WithLabelValues(string(recipe.Method)).Observe(time.Since(start).Seconds())
	return exc, nil
}

// Cancel transitions an in-flight request to Cancelled, dropping its
// underlying task (spec.md §4.2 "Cancellation").
func (e *Engine) Cancel(requestID string) {
	e.Store.Cancel(requestID)
}

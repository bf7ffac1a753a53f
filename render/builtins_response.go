package render

import (
	"time"

	"github.com/ferro-labs/slumberlib/collection"
	"github.com/ferro-labs/slumberlib/exchange"
)

// fetchExchange implements the shared dispatch logic for response() and
// response_header(): validate the recipe id, resolve the trigger keyword,
// and either reuse a cached exchange or send a dependent request (spec.md
// §4.1 "Response fetch semantics").
func fetchExchange(rc *RenderContext, args *Arguments) (*exchange.Exchange, error) {
	recipeIDStr, err := args.PopString()
	if err != nil {
		return nil, err
	}
	recipeID := collection.RecipeID(recipeIDStr)
	if rc.Collection != nil {
		if _, ok := rc.Collection.FindRecipe(recipeID); !ok {
			return nil, RecipeUnknown(recipeIDStr)
		}
	}

	triggerStr, err := args.KeywordString("trigger", "never")
	if err != nil {
		return nil, err
	}
	trigger, err := parseResponseTrigger(triggerStr)
	if err != nil {
		return nil, err
	}

	var profileID *collection.ProfileID
	if rc.Profile != nil {
		id := rc.Profile.ID
		profileID = &id
	}

	cached, hasCached := rc.Provider.GetLatestExchange(rc.Ctx, profileID, recipeID)

	send := func() (*exchange.Exchange, error) {
		dep := rc.Dependent(false)
		exc, err := rc.Provider.SendRequest(rc.Ctx, recipeID, dep)
		if err != nil {
			return nil, Trigger(recipeIDStr, err)
		}
		return exc, nil
	}

	switch {
	case trigger.Never:
		if !hasCached {
			return nil, ResponseMissing(recipeIDStr)
		}
		return cached, nil
	case trigger.NoHistory:
		if hasCached {
			return cached, nil
		}
		return send()
	case trigger.Always:
		return send()
	case trigger.HasAfter:
		if hasCached && !cached.EndTime.Add(trigger.After).Before(time.Now()) {
			return cached, nil
		}
		return send()
	default:
		return nil, ResponseMissing(recipeIDStr)
	}
}

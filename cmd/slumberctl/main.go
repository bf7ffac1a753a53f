// Command slumberctl is a minimal non-interactive driver for the library:
// it loads a process config, opens the exchange store, builds a one-recipe
// demo collection in-process, and runs it through the HTTP engine once. It
// exists to smoke-test build -> send -> persist end to end; a real
// collection file loader is an external collaborator (spec.md §6) and is
// not part of this binary.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ferro-labs/slumberlib/collection"
	"github.com/ferro-labs/slumberlib/httpengine"
	"github.com/ferro-labs/slumberlib/internal/config"
	"github.com/ferro-labs/slumberlib/internal/logging"
	"github.com/ferro-labs/slumberlib/internal/version"
	"github.com/ferro-labs/slumberlib/render"
	"github.com/ferro-labs/slumberlib/store"
	"github.com/ferro-labs/slumberlib/template"
)

func main() {
	var (
		configPath = flag.String("config", "", "path to a JSON/YAML config file (optional)")
		url        = flag.String("url", "https://httpbin.org/get", "URL the demo recipe requests")
		method     = flag.String("method", "GET", "HTTP method the demo recipe uses")
		showVer    = flag.Bool("version", false, "print version and exit")
	)
	flag.Parse()

	if *showVer {
		fmt.Println(version.String())
		return
	}

	cfg := &config.Config{}
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "slumberctl: %v\n", err)
			os.Exit(1)
		}
		cfg = loaded
	}
	logging.Setup(cfg.Logging.Level, cfg.Logging.Format)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dsn := cfg.Store.DSN
	if dsn == "" {
		dsn = "slumberlib-exchanges.db"
	}
	st, err := store.OpenStore(dsn, "slumberctl-demo")
	if err != nil {
		slog.Error("opening store", "error", err)
		os.Exit(1)
	}
	defer st.Close()

	coll, recipe, err := demoCollection(*method, *url)
	if err != nil {
		slog.Error("building demo collection", "error", err)
		os.Exit(1)
	}

	engine := httpengine.New(st, noPrompter{}, cfg.HTTP.InsecureHosts)
	exc, err := engine.Execute(ctx, coll, recipe, nil, nil, httpengine.BuildOptions{})
	if err != nil {
		slog.Error("request failed", "error", err)
		os.Exit(1)
	}

	fmt.Printf("%s %s -> %d (%s)\n", recipe.Method, exc.Request.URL, exc.Response.StatusCode, exc.EndTime.Sub(exc.StartTime).Round(time.Millisecond))
}

// demoCollection builds a single-recipe collection directly from flags,
// standing in for a loaded collection file.
func demoCollection(method, url string) (*collection.Collection, *collection.Recipe, error) {
	recipe := &collection.Recipe{
		ID:     "demo",
		Name:   "demo",
		Method: collection.Method(method),
		URL:    template.MustParse(url),
	}
	tree := collection.NewRecipeTree()
	tree.Insert(recipe.ID, collection.RecipeNode{Kind: collection.NodeRecipe, Recipe: recipe})

	coll, err := collection.New(map[collection.ProfileID]*collection.Profile{}, tree, ".")
	if err != nil {
		return nil, nil, err
	}
	return coll, recipe, nil
}

// noPrompter answers every prompt with its default, refusing to block a
// non-interactive run.
type noPrompter struct{}

func (noPrompter) Prompt(_ context.Context, req render.PromptRequest) {
	if req.Reply != nil {
		req.Reply <- render.PromptReply{Text: req.Default}
	}
}

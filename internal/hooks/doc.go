// Package hooks provides the topic registry used to assemble render contexts
// from independently registered handlers.
//
// Handlers are registered against dot-hierarchical topics such as
// "view.blogging.landing". Callers ask for one or more topic prefixes and get
// back every handler whose topic starts with any of them:
//
//	reg := hooks.NewRegistry()
//	reg.Register("view.blogging.landing", func(ctx context.Context, args ...any) (any, error) {
//		return map[string]any{"title": "Blog"}, nil
//	})
//
//	data, err := reg.InvokeAllAsMap(ctx, []string{"view.common", "view.blogging"})
//
// A handler can do its work asynchronously by returning a Deferred (or by being
// wrapped with Async). InvokeAll runs all synchronous handlers first and then
// awaits every deferred result as a single concurrent batch, so the returned
// slice lists synchronous results before deferred ones regardless of the order
// in which the handlers were registered.
//
// The first failing handler aborts the whole call; no partial results are
// returned.
package hooks

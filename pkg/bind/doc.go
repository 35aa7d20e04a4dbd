// Package bind assembles the externally visible accessor for a store:
// the store API itself plus per-subscription bindings that read a
// memoized derived value through a host rendering primitive.
//
//	type App struct {
//	    Count int
//	    Name  string
//	}
//
//	app := bind.Create(func(set func(store.Update[*App]), get func() *App, _ *store.Store[*App]) *App {
//	    return &App{Name: "demo"}
//	})
//
//	// Imperative access outside the render path.
//	app.Set(store.Merge[*App](store.Patch{"Count": 1}))
//
//	// Render path: one Binding per consumer, driven by the host.
//	b := bind.Bind(app, host, func(a *App) int { return a.Count })
//	count := b.Read()
//
// The host primitive (Driver) owns re-invocation and tearing
// avoidance; the binding hands it the memoized getter, never the raw
// store read, and commits whatever value the host returns.
package bind

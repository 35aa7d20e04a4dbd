// Package store provides a minimal observable state container.
//
// A Store owns one state value and a registry of listeners. Writes go
// through tagged Update values that make the replace-vs-merge decision
// explicit at the call site:
//
//	counter := store.NewValue(&Counter{Count: 0})
//
//	unsubscribe := counter.Subscribe(func(next, prev *Counter) {
//	    fmt.Println("count is now", next.Count)
//	})
//	defer unsubscribe()
//
//	counter.Set(store.Merge[*Counter](store.Patch{"Count": 1}))
//	counter.Set(store.ReplaceFunc(func(c *Counter) *Counter {
//	    return &Counter{Count: c.Count + 1}
//	}))
//
// Notification is synchronous: every listener registered at the moment
// of a state-changing Set is invoked before Set returns. Listeners may
// themselves call Set; nested writes run to completion before the
// outer notification pass resumes.
//
// A Store performs no locking. All access must happen on one logical
// thread of control, typically the host render loop. The re-entrant
// write contract rules out internal mutexes by construction.
package store

package demo

import (
	"github.com/vango-dev/vstate/pkg/bind"
	"github.com/vango-dev/vstate/pkg/store"
)

// State is the shared application state. It is treated as immutable:
// every write allocates a fresh value, so pointer identity tracks
// change.
type State struct {
	Count    int    `json:"count"`
	Label    string `json:"label"`
	Writes   int    `json:"writes"`
	Visitors int    `json:"visitors"`
}

// View is the slice of State broadcast to clients. Visitors is
// deliberately excluded so joins and leaves alone do not fan out a
// counter update.
type View struct {
	Count  int    `json:"count"`
	Label  string `json:"label"`
	Writes int    `json:"writes"`
}

// SelectView projects the broadcast view out of the state.
func SelectView(s *State) View {
	return View{Count: s.Count, Label: s.Label, Writes: s.Writes}
}

// ViewEqual reconciles freshly computed views: visitor-only writes
// produce a new snapshot but an equal view, and must not look like a
// change to the broadcaster.
func ViewEqual(a, b View) bool {
	return a == b
}

// NewAccessor builds the demo store.
func NewAccessor(label string) *bind.Accessor[*State] {
	return bind.Create(func(_ func(store.Update[*State]), _ func() *State, _ *store.Store[*State]) *State {
		return &State{Label: label}
	})
}

// Increment adds delta to the counter and counts the write.
func Increment(acc *bind.Accessor[*State], delta int) {
	acc.Set(store.ReplaceFunc(func(s *State) *State {
		next := *s
		next.Count += delta
		next.Writes++
		return &next
	}))
}

// SetLabel renames the counter and counts the write.
func SetLabel(acc *bind.Accessor[*State], label string) {
	acc.Set(store.MergeFunc(func(s *State) store.Patch {
		return store.Patch{"Label": label, "Writes": s.Writes + 1}
	}))
}

// AddVisitor adjusts the visitor gauge without counting a write.
func AddVisitor(acc *bind.Accessor[*State], delta int) {
	acc.Set(store.MergeFunc(func(s *State) store.Patch {
		return store.Patch{"Visitors": s.Visitors + delta}
	}))
}

package selector

import "github.com/vango-dev/vstate/internal/identity"

// Cell records the last selection committed by the surrounding render
// cycle. It is owned by whatever creates and destroys the
// subscription, and survives memoizer replacement.
type Cell[S any] struct {
	has   bool
	value S
}

// Commit records v as the committed baseline. Call this strictly after
// the host accepted the value; a selection that was computed but never
// committed must not end up here.
func (c *Cell[S]) Commit(v S) {
	c.has = true
	c.value = v
}

// Committed returns the committed baseline, if any.
func (c *Cell[S]) Committed() (S, bool) {
	return c.value, c.has
}

// Memoizer produces a referentially stable selection from a snapshot
// source. Its cached state is private and reset by constructing a new
// Memoizer; the Cell, passed in from outside, is not.
type Memoizer[T, S any] struct {
	getSnapshot func() T
	selector    func(T) S
	isEqual     func(S, S) bool
	cell        *Cell[S]

	primed        bool
	lastSnapshot  T
	lastSelection S
}

// NewMemoizer builds a memoizer over getSnapshot and sel. isEqual may
// be nil, in which case selections are never reconciled and every
// selector run on a changed snapshot yields its own result. cell may
// be nil for callers that do not participate in the commit protocol.
func NewMemoizer[T, S any](getSnapshot func() T, sel func(T) S, isEqual func(S, S) bool, cell *Cell[S]) *Memoizer[T, S] {
	return &Memoizer[T, S]{
		getSnapshot: getSnapshot,
		selector:    sel,
		isEqual:     isEqual,
		cell:        cell,
	}
}

// Selection returns the current derived value.
//
// The selector does not re-run when the snapshot is identical to the
// one seen on the previous call. When it does re-run and isEqual
// considers the result unchanged, the previous selection is returned
// so downstream identity comparisons see no change.
//
// On the first call after construction, if isEqual is supplied and the
// cell holds a committed selection, that committed value becomes the
// baseline in place of the freshly computed one.
//
// A panic from the selector or isEqual propagates to the caller and
// leaves the memoized state at its pre-call values.
func (m *Memoizer[T, S]) Selection() S {
	snap := m.getSnapshot()

	if !m.primed {
		sel := m.selector(snap)
		if m.isEqual != nil && m.cell != nil {
			if committed, ok := m.cell.Committed(); ok {
				sel = committed
			}
		}
		m.primed = true
		m.lastSnapshot = snap
		m.lastSelection = sel
		return sel
	}

	if identity.Identical(snap, m.lastSnapshot) {
		return m.lastSelection
	}

	next := m.selector(snap)
	if m.isEqual != nil && m.isEqual(m.lastSelection, next) {
		// Keep the stable selection but advance the snapshot so the
		// identity fast path applies on the next call.
		m.lastSnapshot = snap
		return m.lastSelection
	}

	m.lastSnapshot = snap
	m.lastSelection = next
	return next
}

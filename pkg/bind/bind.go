package bind

import (
	"github.com/vango-dev/vstate/pkg/selector"
	"github.com/vango-dev/vstate/pkg/store"
)

// Driver is the host rendering primitive. SubscribeAndRead registers
// for change notification via subscribe and returns the current value
// of read, arranging for the consuming code to be re-invoked when the
// subscription fires and a fresh read differs from the last committed
// value. Tearing avoidance between the read and the surrounding commit
// is the host's responsibility.
type Driver[S any] interface {
	SubscribeAndRead(subscribe func(onStoreChange func()) (unsubscribe func()), read func() S) S
}

// Accessor couples a store with binding construction. The embedded
// store makes Get, Set, and Subscribe directly callable members, for
// imperative use outside the rendering-triggered path.
type Accessor[T any] struct {
	*store.Store[T]
}

// Create builds a store from init and wraps it in an Accessor. The
// initializer runs synchronously exactly once; a panic in it
// propagates and no accessor is created.
func Create[T any](init store.Initializer[T]) *Accessor[T] {
	return &Accessor[T]{Store: store.New(init)}
}

// Option configures a Binding.
type Option[S any] func(*options[S])

type options[S any] struct {
	isEqual func(S, S) bool
}

// WithEquality sets the equality function used to reconcile freshly
// computed selections with the previous one. Without it, selections
// are compared by identity only.
func WithEquality[S any](fn func(S, S) bool) Option[S] {
	return func(o *options[S]) {
		o.isEqual = fn
	}
}

// Binding is one consumer's subscription to a derived slice of a
// store's state. It owns the commit cell for its subscription
// lifetime; the memoizer inside is replaced by Rebind, the cell is
// not.
type Binding[T, S any] struct {
	acc    *Accessor[T]
	driver Driver[S]
	cell   *selector.Cell[S]
	memo   *selector.Memoizer[T, S]
}

// Bind constructs a binding of acc's state through sel, driven by d.
// Construct one Binding per call site and reuse it across reads; the
// memoizer's referential stability lives in that reuse.
func Bind[T, S any](acc *Accessor[T], d Driver[S], sel func(T) S, opts ...Option[S]) *Binding[T, S] {
	var o options[S]
	for _, opt := range opts {
		opt(&o)
	}

	b := &Binding[T, S]{
		acc:    acc,
		driver: d,
		cell:   &selector.Cell[S]{},
	}
	b.memo = selector.NewMemoizer(acc.Get, sel, o.isEqual, b.cell)
	return b
}

// BindState binds the whole state through the identity selector. The
// read is still subject to the driver's re-invocation contract.
func BindState[T any](acc *Accessor[T], d Driver[T]) *Binding[T, T] {
	return Bind(acc, d, func(t T) T { return t })
}

// Read returns the current derived value via the driver and commits
// it. Speculative reads the driver performs internally and discards
// never reach the cell; only the value the driver actually returned
// does.
func (b *Binding[T, S]) Read() S {
	v := b.driver.SubscribeAndRead(b.subscribe, b.memo.Selection)
	b.cell.Commit(v)
	return v
}

// Rebind replaces the (selector, equality) pair with a fresh memoizer
// over the same commit cell. The next Read reuses the committed
// baseline when an equality function is in play, so swapping in an
// equivalent derivation does not present as a change downstream.
func (b *Binding[T, S]) Rebind(sel func(T) S, opts ...Option[S]) {
	var o options[S]
	for _, opt := range opts {
		opt(&o)
	}
	b.memo = selector.NewMemoizer(b.acc.Get, sel, o.isEqual, b.cell)
}

// subscribe adapts the store's (next, prev) listener signature to the
// driver's zero-argument change notification.
func (b *Binding[T, S]) subscribe(onStoreChange func()) func() {
	return b.acc.Subscribe(func(T, T) {
		onStoreChange()
	})
}

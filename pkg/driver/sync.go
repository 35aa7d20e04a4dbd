package driver

import "github.com/vango-dev/vstate/internal/identity"

// Sync is a minimal synchronous host driver. On the first
// SubscribeAndRead it registers with the store; afterwards, whenever
// the store notifies and a fresh read is not identical to the last
// value handed out, it calls the invalidate callback so the consumer
// re-reads. Reads and notifications are synchronous on the caller's
// thread, so a value returned by SubscribeAndRead is always consistent
// with the snapshot it was read from.
type Sync[S any] struct {
	invalidate  func()
	read        func() S
	unsubscribe func()

	last    S
	hasLast bool
}

// NewSync builds a driver that calls invalidate when the bound
// selection changes. invalidate may be nil for consumers that poll.
func NewSync[S any](invalidate func()) *Sync[S] {
	return &Sync[S]{invalidate: invalidate}
}

// SubscribeAndRead implements the host primitive contract. The
// subscription is established once, on the first call; later calls
// only refresh the getter and re-read.
func (d *Sync[S]) SubscribeAndRead(subscribe func(onStoreChange func()) (unsubscribe func()), read func() S) S {
	d.read = read
	if d.unsubscribe == nil {
		d.unsubscribe = subscribe(d.onStoreChange)
	}

	v := read()
	d.last = v
	d.hasLast = true
	return v
}

// Close tears down the store subscription. Safe to call more than
// once, and before any read has happened.
func (d *Sync[S]) Close() {
	if d.unsubscribe != nil {
		d.unsubscribe()
		d.unsubscribe = nil
	}
}

func (d *Sync[S]) onStoreChange() {
	if d.read == nil || d.invalidate == nil {
		return
	}
	fresh := d.read()
	if d.hasLast && identity.Identical(fresh, d.last) {
		return
	}
	d.invalidate()
}

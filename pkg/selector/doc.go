// Package selector implements selection memoization over a snapshot
// source. A Memoizer bridges a raw, possibly-changing snapshot to a
// referentially stable derived value across repeated synchronous
// reads: the selector only re-runs when the snapshot changed by
// identity, and with an equality function the previous selection is
// reused even when the selector re-ran.
//
// A Cell carries the last selection the host actually committed. It
// outlives any one Memoizer, so tearing down a subscription and
// immediately recreating it with the same derivation does not look
// like a spurious change to downstream code.
//
// Like the store, memoizers are confined to one logical thread.
package selector

// Package identity implements reference-identity comparison for
// arbitrary values. It is the Go analog of JavaScript's Object.is,
// used by the store to decide whether a write is a no-op and by the
// selector memoizer to detect snapshot reuse.
package identity

import "reflect"

// Identical reports whether a and b are the same value by identity.
//
// Reference kinds (pointers, maps, channels, functions) compare by
// address. Slices compare by backing-array pointer and length, so two
// slices are identical only when they alias the same data. Comparable
// value types compare with ==. Non-comparable values (structs or
// arrays containing slices, maps, or functions) are never identical
// to anything, including themselves.
func Identical(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}

	va := reflect.ValueOf(a)
	vb := reflect.ValueOf(b)
	if va.Type() != vb.Type() {
		return false
	}

	switch va.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Chan, reflect.Func, reflect.UnsafePointer:
		return va.Pointer() == vb.Pointer()
	case reflect.Slice:
		if va.Len() != vb.Len() {
			return false
		}
		if va.Len() == 0 {
			// Zero-length slices share no observable data; treat nil
			// and empty as distinct only when their pointers differ.
			return va.UnsafePointer() == vb.UnsafePointer()
		}
		return va.Pointer() == vb.Pointer()
	}

	if !va.Type().Comparable() {
		return false
	}
	return a == b
}

package store

import (
	"fmt"
	"reflect"

	"github.com/vango-dev/vstate/internal/identity"
)

// Patch is a one-level-deep partial state: each key overrides the
// state's field (or map key) of the same name, all other keys of the
// current state are preserved. Nested records are replaced wholesale,
// not merged recursively.
type Patch map[string]any

// Update is a tagged state transition. Callers choose Replace or Merge
// explicitly; the store never infers the mode from the value's runtime
// type.
type Update[T any] interface {
	// apply resolves the update against the current state, returning
	// the next state and whether the store should commit it.
	apply(current T) (next T, changed bool)
}

// Replace returns an update that replaces the whole state with v.
// The write is a no-op when v is identical to the current state.
func Replace[T any](v T) Update[T] {
	return replaceUpdate[T]{value: v}
}

// ReplaceFunc returns an update that replaces the whole state with
// fn(current). Resolution is single-level: the returned value is used
// as-is, not fed back through fn.
func ReplaceFunc[T any](fn func(T) T) Update[T] {
	return replaceFuncUpdate[T]{fn: fn}
}

// Merge returns an update that shallow-merges patch into the current
// state. A merged write always commits and notifies: the merged state
// is a fresh value even when every patched field keeps its old value.
//
// Merge panics if the state type is not a mergeable record (a struct,
// a pointer to struct, or a map with string keys).
func Merge[T any](patch Patch) Update[T] {
	return mergeUpdate[T]{patch: patch}
}

// MergeFunc returns an update that shallow-merges fn(current) into the
// current state.
func MergeFunc[T any](fn func(T) Patch) Update[T] {
	return mergeFuncUpdate[T]{fn: fn}
}

type replaceUpdate[T any] struct {
	value T
}

func (u replaceUpdate[T]) apply(current T) (T, bool) {
	if identity.Identical(u.value, current) {
		return current, false
	}
	return u.value, true
}

type replaceFuncUpdate[T any] struct {
	fn func(T) T
}

func (u replaceFuncUpdate[T]) apply(current T) (T, bool) {
	next := u.fn(current)
	if identity.Identical(next, current) {
		return current, false
	}
	return next, true
}

type mergeUpdate[T any] struct {
	patch Patch
}

func (u mergeUpdate[T]) apply(current T) (T, bool) {
	return shallowMerge(current, u.patch), true
}

type mergeFuncUpdate[T any] struct {
	fn func(T) Patch
}

func (u mergeFuncUpdate[T]) apply(current T) (T, bool) {
	return shallowMerge(current, u.fn(current)), true
}

// shallowMerge copies current and overrides the keys present in patch,
// one level deep. The result is always a freshly allocated value.
func shallowMerge[T any](current T, patch Patch) T {
	rv := reflect.ValueOf(&current).Elem()

	switch rv.Kind() {
	case reflect.Map:
		return mergeMap(rv, patch).Interface().(T)
	case reflect.Struct:
		merged := mergeStruct(rv, patch)
		return merged.Interface().(T)
	case reflect.Pointer:
		if rv.Type().Elem().Kind() != reflect.Struct {
			panic(fmt.Sprintf("store: cannot merge into state of type %s; use Replace", rv.Type()))
		}
		base := reflect.New(rv.Type().Elem()).Elem()
		if !rv.IsNil() {
			base.Set(rv.Elem())
		}
		merged := mergeStruct(base, patch)
		out := reflect.New(rv.Type().Elem())
		out.Elem().Set(merged)
		return out.Interface().(T)
	case reflect.Interface:
		// State declared as any: merge against the dynamic value.
		if rv.IsNil() {
			panic("store: cannot merge into nil state; use Replace")
		}
		merged := shallowMergeValue(rv.Elem(), patch)
		return merged.Interface().(T)
	default:
		panic(fmt.Sprintf("store: cannot merge into state of type %s; use Replace", rv.Type()))
	}
}

// shallowMergeValue merges against a concrete reflect.Value, used when
// the static state type is an interface.
func shallowMergeValue(rv reflect.Value, patch Patch) reflect.Value {
	switch rv.Kind() {
	case reflect.Map:
		return mergeMap(rv, patch)
	case reflect.Struct:
		return mergeStruct(rv, patch)
	case reflect.Pointer:
		if rv.Type().Elem().Kind() != reflect.Struct || rv.IsNil() {
			panic(fmt.Sprintf("store: cannot merge into state of type %s; use Replace", rv.Type()))
		}
		out := reflect.New(rv.Type().Elem())
		out.Elem().Set(mergeStruct(rv.Elem(), patch))
		return out
	default:
		panic(fmt.Sprintf("store: cannot merge into state of type %s; use Replace", rv.Type()))
	}
}

func mergeMap(rv reflect.Value, patch Patch) reflect.Value {
	mt := rv.Type()
	if mt.Key().Kind() != reflect.String {
		panic(fmt.Sprintf("store: cannot merge into map with %s keys; use Replace", mt.Key()))
	}

	out := reflect.MakeMapWithSize(mt, rv.Len()+len(patch))
	if !rv.IsNil() {
		iter := rv.MapRange()
		for iter.Next() {
			out.SetMapIndex(iter.Key(), iter.Value())
		}
	}
	for key, val := range patch {
		out.SetMapIndex(reflect.ValueOf(key).Convert(mt.Key()), coerce(val, mt.Elem(), key))
	}
	return out
}

func mergeStruct(rv reflect.Value, patch Patch) reflect.Value {
	out := reflect.New(rv.Type()).Elem()
	out.Set(rv)

	for key, val := range patch {
		field := out.FieldByName(key)
		if !field.IsValid() {
			panic(fmt.Sprintf("store: state type %s has no field %q", rv.Type(), key))
		}
		if !field.CanSet() {
			panic(fmt.Sprintf("store: field %q of %s is unexported", key, rv.Type()))
		}
		field.Set(coerce(val, field.Type(), key))
	}
	return out
}

// coerce adapts a patch value to the destination type, allowing untyped
// nils for nilable destinations.
func coerce(val any, dst reflect.Type, key string) reflect.Value {
	if val == nil {
		switch dst.Kind() {
		case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Chan, reflect.Func, reflect.Interface:
			return reflect.Zero(dst)
		}
		panic(fmt.Sprintf("store: nil patch value for non-nilable key %q (%s)", key, dst))
	}

	rv := reflect.ValueOf(val)
	if !rv.Type().AssignableTo(dst) {
		if rv.Type().ConvertibleTo(dst) && rv.Kind() == dst.Kind() {
			return rv.Convert(dst)
		}
		panic(fmt.Sprintf("store: patch value for key %q has type %s, want %s", key, rv.Type(), dst))
	}
	return rv
}

package store

import (
	"strings"
	"testing"
)

type profile struct {
	Name    string
	Age     int
	Tags    []string
	Address *address
}

type address struct {
	City string
}

func TestMergeStructValueState(t *testing.T) {
	s := NewValue(profile{Name: "ada", Age: 36})

	s.Set(Merge[profile](Patch{"Age": 37}))

	got := s.Get()
	if got.Age != 37 || got.Name != "ada" {
		t.Errorf("unexpected merged state: %+v", got)
	}
}

func TestMergePointerStructState(t *testing.T) {
	before := &profile{Name: "ada", Age: 36, Address: &address{City: "london"}}
	s := NewValue(before)

	s.Set(Merge[*profile](Patch{"Name": "lovelace"}))

	got := s.Get()
	if got == before {
		t.Error("merge should allocate a new state value")
	}
	if got.Name != "lovelace" || got.Age != 36 {
		t.Errorf("unexpected merged state: %+v", got)
	}
	if got.Address != before.Address {
		t.Error("nested records are carried over by reference, not cloned")
	}
}

func TestMergeReplacesNestedRecordWholesale(t *testing.T) {
	s := NewValue(&profile{Address: &address{City: "london"}})

	next := &address{City: "turin"}
	s.Set(Merge[*profile](Patch{"Address": next}))

	if s.Get().Address != next {
		t.Error("patched nested record should be replaced wholesale")
	}
}

func TestMergeMapState(t *testing.T) {
	before := map[string]int{"a": 1, "b": 2}
	s := NewValue(before)

	s.Set(Merge[map[string]int](Patch{"b": 20, "c": 3}))

	got := s.Get()
	if len(got) != 3 || got["a"] != 1 || got["b"] != 20 || got["c"] != 3 {
		t.Errorf("unexpected merged map: %v", got)
	}
	if before["b"] != 2 {
		t.Error("merge must not mutate the previous state in place")
	}
}

func TestMergeFuncSeesCurrentState(t *testing.T) {
	s := NewValue(&profile{Age: 1})

	s.Set(MergeFunc(func(p *profile) Patch {
		return Patch{"Age": p.Age + 1}
	}))
	s.Set(MergeFunc(func(p *profile) Patch {
		return Patch{"Age": p.Age + 1}
	}))

	if s.Get().Age != 3 {
		t.Errorf("expected age 3, got %d", s.Get().Age)
	}
}

func TestMergeNilPatchValueClearsNilableField(t *testing.T) {
	s := NewValue(&profile{Address: &address{City: "london"}, Tags: []string{"x"}})

	s.Set(Merge[*profile](Patch{"Address": nil, "Tags": nil}))

	got := s.Get()
	if got.Address != nil {
		t.Error("nil patch value should clear pointer field")
	}
	if got.Tags != nil {
		t.Error("nil patch value should clear slice field")
	}
}

func TestMergePanicsOnScalarState(t *testing.T) {
	s := NewValue(42)

	assertPanics(t, "use Replace", func() {
		s.Set(Merge[int](Patch{"Count": 1}))
	})
}

func TestMergePanicsOnUnknownField(t *testing.T) {
	s := NewValue(&profile{})

	assertPanics(t, "no field", func() {
		s.Set(Merge[*profile](Patch{"Nope": 1}))
	})
}

func TestMergePanicsOnWrongValueType(t *testing.T) {
	s := NewValue(&profile{})

	assertPanics(t, "want", func() {
		s.Set(Merge[*profile](Patch{"Age": "not an int"}))
	})
}

func TestMergeIntoInterfaceState(t *testing.T) {
	s := NewValue[any](map[string]any{"count": 0})

	s.Set(Merge[any](Patch{"count": 1}))

	got, ok := s.Get().(map[string]any)
	if !ok {
		t.Fatalf("expected map state, got %T", s.Get())
	}
	if got["count"] != 1 {
		t.Errorf("expected count 1, got %v", got["count"])
	}
}

func assertPanics(t *testing.T, fragment string, fn func()) {
	t.Helper()
	defer func() {
		r := recover()
		if r == nil {
			t.Fatal("expected panic")
		}
		msg, ok := r.(string)
		if !ok {
			t.Fatalf("expected string panic, got %T", r)
		}
		if !strings.Contains(msg, fragment) {
			t.Errorf("panic %q does not mention %q", msg, fragment)
		}
	}()
	fn()
}

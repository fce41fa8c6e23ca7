package draft

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/signadot/nbstore/kpath"
	"github.com/signadot/nbstore/patch"
	"github.com/signadot/nbstore/tree"
)

func TestNewNotDraftable(t *testing.T) {
	for _, v := range []any{nil, 1, "x", true, func() {}} {
		if _, err := New(v); !errors.Is(err, ErrNotDraftable) {
			t.Errorf("New(%T) error = %v, want ErrNotDraftable", v, err)
		}
	}
}

func TestDraft(t *testing.T) {
	base := map[string]any{"todos": []any{"a"}, "count": 1}
	d, err := New(base)
	if err != nil {
		t.Fatal(err)
	}
	if err := d.Set(kpath.Path{"count"}, 2); err != nil {
		t.Fatal(err)
	}
	if err := d.Set(kpath.Path{"missing"}, nil); err != nil {
		t.Fatal(err)
	}
	if err := d.Set(kpath.Path{"todos"}, []any{"a", "b"}); err != nil {
		t.Fatal(err)
	}
	if err := d.Remove(kpath.Path{"nope"}); err != nil {
		t.Fatal(err)
	}
	v, ok := d.Get(kpath.Path{"todos"})
	if !ok {
		t.Fatalf("todos missing")
	}
	v.([]any)[0] = "changed"

	ps, next, err := d.Finish()
	if err != nil {
		t.Fatal(err)
	}
	wantPatches := []patch.Patch{
		patch.Set(kpath.Path{"count"}, 2),
		patch.Set(kpath.Path{"missing"}, nil),
		patch.Set(kpath.Path{"todos", "1"}, "b"),
	}
	if diff := cmp.Diff(wantPatches, ps); diff != "" {
		t.Errorf("patches (-want +got):\n%s", diff)
	}
	want := map[string]any{"todos": []any{"a", "b"}, "count": 2, "missing": nil}
	if diff := tree.Diff(want, next); diff != "" {
		t.Errorf("result (-want +got):\n%s", diff)
	}
	applied, err := patch.Apply(base, ps)
	if err != nil {
		t.Fatal(err)
	}
	if !tree.Equal(applied, next) {
		t.Errorf("patches do not reproduce the draft: %v vs %v", applied, next)
	}
	if base["count"] != 1 {
		t.Errorf("base was modified")
	}
	if _, _, err := d.Finish(); !errors.Is(err, ErrFinished) {
		t.Errorf("second Finish error = %v, want ErrFinished", err)
	}
	if err := d.Set(kpath.Path{"x"}, 1); !errors.Is(err, ErrFinished) {
		t.Errorf("Set after Finish error = %v, want ErrFinished", err)
	}
}

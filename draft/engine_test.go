package draft

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/signadot/nbstore/kpath"
	"github.com/signadot/nbstore/patch"
	"github.com/signadot/nbstore/tree"
)

func TestCompute(t *testing.T) {
	incr := Func(func(cur any, _ kpath.Path) (any, error) {
		return cur.(int) + 1, nil
	})
	tests := []struct {
		name  string
		base  any
		src   Source
		path  kpath.Path
		want  Result
		check any
	}{
		{
			name: "increment",
			base: map[string]any{"count": 1, "todos": []any{}},
			src:  incr,
			path: kpath.Path{"count"},
			want: Result{Kind: KindPatch, Patches: []patch.Patch{patch.Set(kpath.Path{"count"}, 2)}},
		},
		{
			name: "auto vivify",
			base: nil,
			src:  Value(1),
			path: kpath.Path{"a", "b", "c"},
			want: Result{Kind: KindPatch, Patches: []patch.Patch{patch.Set(kpath.Path{"a", "b", "c"}, 1)}},
		},
		{
			name: "no op",
			base: map[string]any{"a": 1},
			src:  Value(1),
			path: kpath.Path{"a"},
			want: Result{Kind: KindPatch},
		},
		{
			name: "scalar root",
			base: 0,
			src:  Value(false),
			want: Result{Kind: KindReplace, Value: false},
		},
		{
			name: "nil root value",
			base: 5,
			src:  Value(nil),
			want: Result{Kind: KindReplace, Value: nil},
		},
		{
			name: "root over object",
			base: map[string]any{"a": 1},
			src:  Value(map[string]any{"a": 1, "b": 2}),
			want: Result{Kind: KindPatch, Patches: []patch.Patch{patch.Set(kpath.Path{"b"}, 2)}},
		},
	}
	var e Engine
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := e.Compute(tt.base, tt.src, tt.path)
			if err != nil {
				t.Fatal(err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Compute (-want +got):\n%s", diff)
			}
		})
	}
}

func TestComputeTodosAppend(t *testing.T) {
	base := map[string]any{"todos": []any{map[string]any{"text": "a"}}}
	add := Func(func(cur any, _ kpath.Path) (any, error) {
		l := cur.([]any)
		return append(l, map[string]any{"text": "b"}), nil
	})
	var e Engine
	res, err := e.Compute(base, add, kpath.Path{"todos"})
	if err != nil {
		t.Fatal(err)
	}
	want := []patch.Patch{patch.Set(kpath.Path{"todos", "1"}, map[string]any{"text": "b"})}
	if diff := cmp.Diff(want, res.Patches); diff != "" {
		t.Errorf("patches (-want +got):\n%s", diff)
	}
	if len(base["todos"].([]any)) != 1 {
		t.Errorf("transform modified the base")
	}
}

func TestComputeTransformGetsCopy(t *testing.T) {
	base := map[string]any{"m": map[string]any{"x": 1}}
	mut := Func(func(cur any, _ kpath.Path) (any, error) {
		cur.(map[string]any)["x"] = 2
		return cur, nil
	})
	var e Engine
	res, err := e.Compute(base, mut, kpath.Path{"m"})
	if err != nil {
		t.Fatal(err)
	}
	if base["m"].(map[string]any)["x"] != 1 {
		t.Errorf("transform argument aliases the base")
	}
	next, err := patch.Apply(base, res.Patches)
	if err != nil {
		t.Fatal(err)
	}
	if !tree.Equal(next, map[string]any{"m": map[string]any{"x": 2}}) {
		t.Errorf("unexpected result %v", next)
	}
}

func TestComputeErrors(t *testing.T) {
	boom := errors.New("boom")
	tests := []struct {
		name string
		base any
		src  Source
		path kpath.Path
		want error
	}{
		{"scalar target", 3, Value(1), kpath.Path{"a"}, ErrInvalidTarget},
		{"func target", func() {}, Value(1), kpath.Path{"a"}, ErrInvalidTarget},
		{"transform error", map[string]any{}, Func(func(any, kpath.Path) (any, error) { return nil, boom }), kpath.Path{"a"}, ErrTransform},
		{"transform error at root", 1, Func(func(any, kpath.Path) (any, error) { return nil, boom }), nil, boom},
	}
	var e Engine
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := e.Compute(tt.base, tt.src, tt.path)
			if !errors.Is(err, tt.want) {
				t.Errorf("error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestEvalNormalizes(t *testing.T) {
	src := Func(func(any, kpath.Path) (any, error) {
		return []string{"a", "b"}, nil
	})
	v, err := src.Eval(nil, kpath.Path{"tags"})
	if err != nil {
		t.Fatal(err)
	}
	if !cmp.Equal(v, []any{"a", "b"}) {
		t.Errorf("got %#v", v)
	}
	bad := Func(func(any, kpath.Path) (any, error) { return func() {}, nil })
	if _, err := bad.Eval(nil, nil); err != nil {
		t.Errorf("functions are tree leaves, got %v", err)
	}
	bad = Func(func(any, kpath.Path) (any, error) { return make(chan int), nil })
	if _, err := bad.Eval(nil, nil); !errors.Is(err, ErrTransform) {
		t.Errorf("got %v, want ErrTransform", err)
	}
}

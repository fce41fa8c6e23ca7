package nbstore

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/signadot/nbstore/action"
	"github.com/signadot/nbstore/container"
	"github.com/signadot/nbstore/draft"
	"github.com/signadot/nbstore/kpath"
	"github.com/signadot/nbstore/patch"
	"github.com/signadot/nbstore/router"
	"github.com/signadot/nbstore/tree"
)

func newStore(t *testing.T, preloaded any, reducers map[string]router.Reducer) (*Store, *container.Container, *[]*action.Action) {
	t.Helper()
	s, c := Create(container.Config{Reducers: reducers, PreloadedState: preloaded})
	var seen []*action.Action
	c.Subscribe(func(ch container.Change) { seen = append(seen, ch.Action) })
	return s, c, &seen
}

func TestTodosAppend(t *testing.T) {
	s, _, _ := newStore(t, map[string]any{
		"todos": []any{map[string]any{"id": 0, "value": "x"}},
	}, nil)
	got, err := s.Set("todos[1]", map[string]any{"id": 1, "value": "y"})
	if err != nil {
		t.Fatal(err)
	}
	if !tree.Equal(got, map[string]any{"id": 1, "value": "y"}) {
		t.Errorf("Set returned %v", got)
	}
	want := map[string]any{
		"todos": []any{
			map[string]any{"id": 0, "value": "x"},
			map[string]any{"id": 1, "value": "y"},
		},
	}
	if d := tree.Diff(want, s.host.GetState()); d != "" {
		t.Errorf("state (-want +got):\n%s", d)
	}
}

func TestCountIncrement(t *testing.T) {
	s, _, seen := newStore(t, map[string]any{"count": 1}, nil)
	got, err := s.Set("count", func(c any) any { return c.(int) + 1 })
	if err != nil {
		t.Fatal(err)
	}
	if got != 2 {
		t.Errorf("Set returned %v, want 2", got)
	}
	if len(*seen) != 1 {
		t.Fatalf("got %d dispatches, want 1", len(*seen))
	}
	a := (*seen)[0]
	if a.Type != "UPDATE_COUNT" || a.Kind != draft.KindPatch || a.RoutingKey != "count" {
		t.Errorf("unexpected action %+v", a)
	}
	want := []patch.Patch{patch.Set(kpath.Path{"count"}, 2)}
	if d := cmp.Diff(want, a.Patches); d != "" {
		t.Errorf("patches (-want +got):\n%s", d)
	}
	if a.Fn == "" {
		t.Errorf("transform token missing")
	}
}

func TestObjectMerge(t *testing.T) {
	todos := []any{"a"}
	s, _, seen := newStore(t, map[string]any{"todos": todos}, nil)
	if _, err := s.Set(map[string]any{"username": "A", "authed": true}); err != nil {
		t.Fatal(err)
	}
	if len(*seen) != 2 {
		t.Fatalf("got %d dispatches, want 2", len(*seen))
	}
	var keys []string
	for _, a := range *seen {
		keys = append(keys, a.RoutingKey)
	}
	if d := cmp.Diff([]string{"authed", "username"}, keys); d != "" {
		t.Errorf("dispatch order (-want +got):\n%s", d)
	}
	state := s.host.GetState().(map[string]any)
	if !tree.Same(state["todos"], todos) {
		t.Errorf("todos was touched")
	}
	if state["username"] != "A" || state["authed"] != true {
		t.Errorf("state %v", state)
	}
	for _, k := range []string{"username", "authed"} {
		if e, ok := s.table.Lookup(k); !ok || !e.Reducerless {
			t.Errorf("no route for %q", k)
		}
	}
}

func TestArity(t *testing.T) {
	s, _, seen := newStore(t, map[string]any{"a": 1}, nil)
	before := s.host.GetState()
	calls := map[string]func() (any, error){
		"Set()":       func() (any, error) { return s.Set() },
		"Set(4 args)": func() (any, error) { return s.Set("a", 1, "x", "y") },
		"Action(1)":   func() (any, error) { return s.Action(1) },
		"Action(4)":   func() (any, error) { return s.Action("a", 1, "x", "y") },
		"Get(2)":      func() (any, error) { return s.Get("a", "b") },
	}
	for name, call := range calls {
		_, err := call()
		if !errors.Is(err, ErrArity) {
			t.Errorf("%s: error = %v, want ErrArity", name, err)
		}
		var ae *ArityError
		if !errors.As(err, &ae) || len(ae.Accepted) == 0 {
			t.Errorf("%s: error %v carries no accepted shapes", name, err)
		}
	}
	if len(*seen) != 0 || !tree.Same(s.host.GetState(), before) {
		t.Errorf("state changed after arity errors")
	}
}

func TestFalsyReplace(t *testing.T) {
	for _, v := range []any{0, false, nil} {
		s, _, _ := newStore(t, map[string]any{"a": map[string]any{"b": 1}}, nil)
		got, err := s.Set("a", v)
		if err != nil {
			t.Fatal(err)
		}
		if got != v {
			t.Errorf("Set(a, %v) returned %v", v, got)
		}
		if val, _ := s.Get("a"); val != v {
			t.Errorf("Get(a) = %v, want %v", val, v)
		}
		state := s.host.GetState().(map[string]any)
		if _, ok := state["a"]; !ok {
			t.Errorf("key a disappeared setting %v", v)
		}

		if _, err := s.Set("", v); err != nil {
			t.Fatal(err)
		}
		if got := s.host.GetState(); got != v {
			t.Errorf("root set to %v, state is %v", v, got)
		}
	}
}

func TestAutoVivify(t *testing.T) {
	s, _, _ := newStore(t, nil, nil)
	if _, err := s.Set("a.b.c", 1); err != nil {
		t.Fatal(err)
	}
	want := map[string]any{"a": map[string]any{"b": map[string]any{"c": 1}}}
	if d := tree.Diff(want, s.host.GetState()); d != "" {
		t.Errorf("state (-want +got):\n%s", d)
	}
}

func TestUserReducerKept(t *testing.T) {
	todos := func(state any, a *action.Action) any {
		if state == nil {
			return []any{}
		}
		if a.Type == "ADD_TODO" {
			l := state.([]any)
			return append(l[:len(l):len(l)], a.Payload)
		}
		return state
	}
	s, c, _ := newStore(t, nil, map[string]router.Reducer{"todos": todos})
	if _, err := s.Set("todos[0]", "by path"); err != nil {
		t.Fatal(err)
	}
	c.Dispatch(action.New("ADD_TODO", "by action"))
	got, _ := s.Get("todos")
	if !tree.Equal(got, []any{"by path", "by action"}) {
		t.Errorf("todos = %v", got)
	}
	if e, _ := s.table.Lookup("todos"); e.User == nil {
		t.Errorf("user reducer not wrapped")
	}
}

func TestFunctionOverStore(t *testing.T) {
	s, _, seen := newStore(t, map[string]any{"a": 1, "b": 2, "c": 3}, nil)
	_, err := s.Set(func(st any) any {
		m := st.(map[string]any)
		m["a"] = 10
		delete(m, "c")
		m["d"] = 4
		return m
	})
	if err != nil {
		t.Fatal(err)
	}
	var keys []string
	for _, a := range *seen {
		keys = append(keys, a.RoutingKey)
	}
	if d := cmp.Diff([]string{"a", "c", "d"}, keys); d != "" {
		t.Errorf("dispatched keys (-want +got):\n%s", d)
	}
	want := map[string]any{"a": 10, "b": 2, "c": nil, "d": 4}
	if d := tree.Diff(want, s.host.GetState()); d != "" {
		t.Errorf("state (-want +got):\n%s", d)
	}
}

func TestFunctionOverStoreNonObject(t *testing.T) {
	s, _, seen := newStore(t, map[string]any{"a": 1}, nil)
	got, err := s.Set(func(any) any { return []any{1, 2} })
	if err != nil {
		t.Fatal(err)
	}
	if !tree.Equal(got, []any{1, 2}) {
		t.Errorf("got %v", got)
	}
	if len(*seen) != 1 || (*seen)[0].RoutingKey != kpath.WholeStore || (*seen)[0].Type != "UPDATE_STORE" {
		t.Errorf("unexpected actions %v", *seen)
	}
}

func TestActionCustomization(t *testing.T) {
	s, _, seen := newStore(t, map[string]any{}, nil)
	if _, err := s.Action("todos", []any{"a"}, "init"); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Action(map[string]any{"x": 1}, map[string]any{"type": "RESET", "meta": map[string]any{"by": "test"}, "kind": "replace"}); err != nil {
		t.Fatal(err)
	}
	if got := (*seen)[0].Type; got != "UPDATE_TODOS_INIT" {
		t.Errorf("type %q", got)
	}
	a := (*seen)[1]
	if a.Type != "RESET" || a.Kind != draft.KindPatch || a.RoutingKey != kpath.WholeStore || a.Meta["by"] != "test" {
		t.Errorf("unexpected action %+v", a)
	}
	if len(*seen) != 2 {
		t.Errorf("Action at the root should dispatch once, got %d", len(*seen))
	}
}

func TestSelect(t *testing.T) {
	s, _, _ := newStore(t, nil, nil)
	sel, err := s.Select("user", "profile.name")
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := s.table.Lookup("user"); !ok {
		t.Errorf("Select did not route user")
	}
	if got := sel.Get("anon"); got != "anon" {
		t.Errorf("default not used: %v", got)
	}
	if _, err := sel.Set("A"); err != nil {
		t.Fatal(err)
	}
	got, err := sel.Set(func(v any) any { return v.(string) + "!" }, "shout")
	if err != nil {
		t.Fatal(err)
	}
	if got != "A!" || sel.Get("anon") != "A!" {
		t.Errorf("selection value %v", got)
	}
	if _, err := sel.Set(); !errors.Is(err, ErrArity) {
		t.Errorf("got %v, want ErrArity", err)
	}
	if _, err := s.Select(""); !errors.Is(err, ErrInvalidKey) {
		t.Errorf("got %v, want ErrInvalidKey", err)
	}
}

func TestExprSource(t *testing.T) {
	s, _, seen := newStore(t, map[string]any{"count": 1}, nil)
	got, err := s.Set("count", Expr("value * 10"))
	if err != nil {
		t.Fatal(err)
	}
	if !tree.Equal(got, 10) {
		t.Errorf("got %v", got)
	}
	if (*seen)[0].Fn != "expr:value * 10" {
		t.Errorf("token %q", (*seen)[0].Fn)
	}
	if _, err := s.Set("count", Expr("value +")); !errors.Is(err, ErrInvalidSource) {
		t.Errorf("got %v, want ErrInvalidSource", err)
	}
}

func TestErrorsLeaveStateAlone(t *testing.T) {
	s, _, seen := newStore(t, map[string]any{"n": 1}, nil)
	s.Set("", 5)
	*seen = nil
	before := s.host.GetState()

	if _, err := s.Set("a.b", 1); !errors.Is(err, ErrInvalidTarget) {
		t.Errorf("got %v, want ErrInvalidTarget", err)
	}
	if _, err := s.Set(4.5, 1); !errors.Is(err, ErrInvalidPath) {
		t.Errorf("got %v, want ErrInvalidPath", err)
	}
	if _, err := s.Set("x", func(int) int { return 0 }); !errors.Is(err, ErrInvalidSource) {
		t.Errorf("got %v, want ErrInvalidSource", err)
	}
	boom := errors.New("boom")
	if _, err := s.Set("", func(any) (any, error) { return nil, boom }); !errors.Is(err, boom) {
		t.Errorf("got %v, want boom", err)
	}
	if len(*seen) != 0 || s.host.GetState() != before {
		t.Errorf("state changed after errors: %v", s.host.GetState())
	}
}

func TestDoValidatesShape(t *testing.T) {
	s, _, _ := newStore(t, nil, nil)
	_, err := s.Do(Call{Shape: Transform, Path: kpath.Path{"a"}, Source: draft.Value(1)})
	if !errors.Is(err, ErrInvalidCall) {
		t.Errorf("got %v, want ErrInvalidCall", err)
	}
	got, err := s.Do(Call{Shape: ReplaceAtPath, Path: kpath.Path{"a"}, Source: draft.Value(1)})
	if err != nil || got != 1 {
		t.Errorf("got %v, %v", got, err)
	}
}

type todo struct {
	ID    int    `json:"id"`
	Value string `json:"value"`
	Done  bool   `json:"done,omitempty"`
}

func TestTransformResultNormalized(t *testing.T) {
	s, c, seen := newStore(t, nil, nil)
	if _, err := s.Set("tags", func(any) any { return []string{"a", "b"} }); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Set("tags[2]", "c"); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Set("todo", func(any) any { return todo{ID: 1, Value: "x"} }); err != nil {
		t.Fatal(err)
	}
	v, err := s.Get("todo.value")
	if err != nil {
		t.Fatal(err)
	}
	if v != "x" {
		t.Errorf("todo.value = %v", v)
	}
	if _, err := s.Set("todo.done", true); err != nil {
		t.Fatal(err)
	}
	want := map[string]any{
		"tags": []any{"a", "b", "c"},
		"todo": map[string]any{"id": 1, "value": "x", "done": true},
	}
	if d := tree.Diff(want, c.GetState()); d != "" {
		t.Errorf("state (-want +got):\n%s", d)
	}
	ps := (*seen)[0].Patches
	if len(ps) != 1 || !cmp.Equal(ps[0].Value, []any{"a", "b"}) {
		t.Errorf("patches carry %#v", ps)
	}
}

func TestTransformResultUnsupported(t *testing.T) {
	s, c, seen := newStore(t, map[string]any{"a": 1}, nil)
	_, err := s.Set("a", func(any) any { return make(chan int) })
	if !errors.Is(err, ErrTransform) || !errors.Is(err, tree.ErrUnsupported) {
		t.Errorf("got %v, want ErrTransform wrapping ErrUnsupported", err)
	}
	if len(*seen) != 0 || !tree.Equal(c.GetState(), map[string]any{"a": 1}) {
		t.Errorf("state changed: %v", c.GetState())
	}
}

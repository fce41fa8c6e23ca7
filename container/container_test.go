package container

import (
	"testing"

	"github.com/signadot/nbstore/action"
	"github.com/signadot/nbstore/draft"
	"github.com/signadot/nbstore/kpath"
	"github.com/signadot/nbstore/patch"
	"github.com/signadot/nbstore/router"
	"github.com/signadot/nbstore/tree"
)

func counter(state any, a *action.Action) any {
	if state == nil {
		state = 0
	}
	if a.Type == "INC" {
		return state.(int) + 1
	}
	return state
}

func TestNewRunsInit(t *testing.T) {
	var seen []string
	c := New(Config{
		Reducers: map[string]router.Reducer{
			"n": func(state any, a *action.Action) any {
				seen = append(seen, a.Type)
				return counter(state, a)
			},
		},
		PreloadedState: map[string]int{"other": 3},
	})
	if len(seen) != 1 || seen[0] != InitType {
		t.Errorf("reducer saw %v, want [%s]", seen, InitType)
	}
	want := map[string]any{"n": 0, "other": int64(3)}
	if d := tree.Diff(want, c.GetState()); d != "" {
		t.Errorf("state (-want +got):\n%s", d)
	}
}

func TestDispatchNotifies(t *testing.T) {
	c := New(Config{Reducers: map[string]router.Reducer{"n": counter}})
	var changes []Change
	unsub := c.Subscribe(func(ch Change) { changes = append(changes, ch) })
	c.Dispatch(action.New("INC", nil))
	c.Dispatch(action.New("NOOP", nil))
	unsub()
	c.Dispatch(action.New("INC", nil))

	if len(changes) != 2 {
		t.Fatalf("got %d changes, want 2", len(changes))
	}
	if !tree.Equal(changes[0].Prev, map[string]any{"n": 0}) || !tree.Equal(changes[0].Next, map[string]any{"n": 1}) {
		t.Errorf("unexpected first change %+v", changes[0])
	}
	if !tree.Same(changes[1].Prev, changes[1].Next) {
		t.Errorf("unhandled action should keep the state")
	}
	if !tree.Equal(c.GetState(), map[string]any{"n": 2}) {
		t.Errorf("state %v", c.GetState())
	}
}

func TestListenerMayDispatch(t *testing.T) {
	c := New(Config{Reducers: map[string]router.Reducer{"n": counter}})
	c.Subscribe(func(ch Change) {
		if ch.Action.Type == "INC" && ch.Next.(map[string]any)["n"].(int) < 3 {
			c.Dispatch(action.New("INC", nil))
		}
	})
	c.Dispatch(action.New("INC", nil))
	if !tree.Equal(c.GetState(), map[string]any{"n": 3}) {
		t.Errorf("state %v", c.GetState())
	}
}

func TestWholeStoreActions(t *testing.T) {
	c := New(Config{Reducers: map[string]router.Reducer{"n": counter}})
	c.Dispatch(&action.Action{
		Type: "UPDATE_STORE", Kind: draft.KindPatch, RoutingKey: kpath.WholeStore,
		Patches: []patch.Patch{patch.Set(kpath.Path{"extra"}, "x")},
	})
	if !tree.Equal(c.GetState(), map[string]any{"n": 0, "extra": "x"}) {
		t.Errorf("state %v", c.GetState())
	}
	c.Dispatch(&action.Action{Type: "REPLACE_STORE", Kind: draft.KindReplace, RoutingKey: kpath.WholeStore, Value: false})
	if c.GetState() != false {
		t.Errorf("state %v, want false", c.GetState())
	}
}

func TestRoutesTakeEffect(t *testing.T) {
	c := New(Config{})
	if !router.EnsureRoute(c.Table(), "user", c) {
		t.Fatalf("route not installed")
	}
	c.Dispatch(&action.Action{
		Type: "UPDATE_USER", Kind: draft.KindPatch, RoutingKey: "user",
		Patches: []patch.Patch{patch.Set(kpath.Path{"user", "name"}, "A")},
	})
	want := map[string]any{"user": map[string]any{"name": "A"}}
	if d := tree.Diff(want, c.GetState()); d != "" {
		t.Errorf("state (-want +got):\n%s", d)
	}
}

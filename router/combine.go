package router

import (
	"maps"

	"github.com/signadot/nbstore/action"
	"github.com/signadot/nbstore/tree"
)

// Combine returns a root reducer giving each routed key's slice to its
// reducer.
//
// The table is consulted on every call, so routes added later take effect
// without rebuilding. Keys of the state without a route are kept. The root
// object is copied only if some slice changed, and a routed key absent from
// the state is only added when its reducer produced a value or the action
// is a path update for that key. A state which is not an object is
// returned as is.
func Combine(t *Table) Reducer {
	return func(state any, a *action.Action) any {
		obj, ok := state.(map[string]any)
		if state != nil && !ok {
			return state
		}
		var next map[string]any
		for _, r := range t.routes() {
			prev, had := obj[r.key]
			v := r.entry.Reducer(prev, a)
			if had && tree.Same(prev, v) {
				continue
			}
			if !had && v == nil && !a.TaggedFor(r.key) {
				continue
			}
			if next == nil {
				next = maps.Clone(obj)
				if next == nil {
					next = map[string]any{}
				}
			}
			next[r.key] = v
		}
		if next == nil {
			return state
		}
		return next
	}
}

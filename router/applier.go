package router

import (
	"log/slog"

	"github.com/signadot/nbstore/action"
	"github.com/signadot/nbstore/debug"
	"github.com/signadot/nbstore/draft"
	"github.com/signadot/nbstore/patch"
)

// Default returns the reducer applying path updates tagged for key.
//
// Actions not tagged for key leave the state as is. Patch actions are
// applied to the slice, an empty object standing in for a nil slice; their
// paths start at the state root so the key itself is dropped first.
// Replace actions yield their value, whatever it is. Patch lists which do
// not apply leave the state as is and are logged to log, if not nil.
func Default(key string, log *slog.Logger) Reducer {
	return func(state any, a *action.Action) any {
		if !a.TaggedFor(key) {
			return state
		}
		return apply(state, a, 1, log)
	}
}

// Wrap returns a reducer giving plain actions to user and path updates
// to the Default logic for key.
func Wrap(key string, user Reducer, log *slog.Logger) Reducer {
	def := Default(key, log)
	return func(state any, a *action.Action) any {
		if a.Tagged() {
			return def(state, a)
		}
		return user(state, a)
	}
}

// ApplyWhole applies an action tagged kpath.WholeStore to the whole state.
func ApplyWhole(state any, a *action.Action, log *slog.Logger) any {
	return apply(state, a, 0, log)
}

func apply(state any, a *action.Action, strip int, log *slog.Logger) any {
	if a.Kind != draft.KindPatch {
		if debug.Apply() {
			debug.Logf("%s: replace with %v\n", a.Type, a.Value)
		}
		return a.Value
	}
	if state == nil && strip != 0 {
		state = map[string]any{}
	}
	ps := a.Patches
	if strip != 0 {
		ps = patch.Strip(ps, strip)
	}
	next, err := patch.Apply(state, ps)
	if err != nil {
		if debug.Apply() {
			debug.Logf("%s: dropping invalid patches: %v\n", a.Type, err)
		}
		if log != nil {
			log.Error("dropping patches which do not apply", "type", a.Type, "routingKey", a.RoutingKey, "error", err)
		}
		return state
	}
	return next
}

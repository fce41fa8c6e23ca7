package router

import (
	"github.com/signadot/nbstore/debug"
	"github.com/signadot/nbstore/kpath"
)

// EnsureRoute makes sure the slice at key accepts path updates, returning
// true iff it changed the table.
//
// A missing key gets the Default reducer. A user reducer is wrapped so
// that it keeps handling plain actions while path updates go to the
// default logic. Keys which already accept path updates are left alone,
// as are the empty key and kpath.WholeStore. After a change h, if not nil,
// is given a new root reducer combining the table.
//
// Concurrent calls for the same key install at most one entry.
func EnsureRoute(t *Table, key string, h Host) bool {
	if key == "" || key == kpath.WholeStore {
		return false
	}
	t.mu.Lock()
	e, ok := t.entries[key]
	switch {
	case !ok:
		t.entries[key] = &Entry{Reducer: Default(key, t.Log), Reducerless: true}
	case e.Reducerless:
		t.mu.Unlock()
		return false
	default:
		t.entries[key] = &Entry{Reducer: Wrap(key, e.Reducer, t.Log), Reducerless: true, User: e.Reducer}
	}
	t.mu.Unlock()
	if debug.Route() {
		debug.Logf("installed route for %q (wrapped user reducer: %t)\n", key, ok)
	}
	if h != nil {
		h.ReplaceReducer(Combine(t))
	}
	return true
}

// Package nbstore updates the state of a host container by path, without
// reducers or action boilerplate.
//
// A Store turns calls such as
//
//	s.Set("todos[1]", map[string]any{"text": "b"})
//	s.Set("count", func(c any) any { return c.(int) + 1 })
//	s.Set(map[string]any{"username": "A", "authed": true})
//
// into actions carrying the minimal patch list (or replacement value) for
// the top-level slice they touch, and registers a reducer for that slice
// the first time it is touched. User reducers registered with the host keep
// working: plain actions still go to them while path updates are applied
// for them.
//
// Paths use dot and bracket syntax, see package kpath. The empty path
// addresses the whole state.
package nbstore

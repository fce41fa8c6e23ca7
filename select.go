package nbstore

import (
	"fmt"

	"github.com/signadot/nbstore/kpath"
	"github.com/signadot/nbstore/router"
	"github.com/signadot/nbstore/tree"
)

// Selection is a store scoped to one top-level key and an optional path
// below it.
type Selection struct {
	s    *Store
	key  string
	path kpath.Path
}

// Select scopes updates to the slice at key, optionally below a path
// inside it. The slice is routed immediately, so it accepts path updates
// even before the first Set through the selection.
func (s *Store) Select(key string, path ...any) (*Selection, error) {
	if key == "" || key == kpath.WholeStore {
		return nil, fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	var rel kpath.Path
	switch len(path) {
	case 0:
	case 1:
		res, err := kpath.Resolve(path[0])
		if err != nil {
			return nil, err
		}
		rel = res.Keys
	default:
		return nil, &ArityError{Call: "Select", Accepted: []string{"Select(key)", "Select(key, path)"}, Got: len(path) + 1}
	}
	router.EnsureRoute(s.table, key, s.host)
	return &Selection{s: s, key: key, path: kpath.Path{key}.Append(rel...)}, nil
}

// Path returns the absolute path of the selection.
func (sel *Selection) Path() kpath.Path {
	return sel.path.Append()
}

// Set updates the selected value.
//
//	Set(valueOrFn)
//	Set(valueOrFn, customization)
func (sel *Selection) Set(args ...any) (any, error) {
	var v, custom any
	switch len(args) {
	case 1:
		v = args[0]
	case 2:
		v, custom = args[0], args[1]
	default:
		return nil, &ArityError{Call: "Selection.Set", Accepted: selectSetShapes, Got: len(args)}
	}
	c, err := sel.s.NewCall(sel.path, v, custom)
	if err != nil {
		return nil, err
	}
	return sel.s.Do(c)
}

// Get returns the selected value. If it is absent, the first default is
// returned instead, or nil.
func (sel *Selection) Get(def ...any) any {
	v, ok := tree.Get(sel.s.host.GetState(), sel.path)
	if !ok && len(def) > 0 {
		return def[0]
	}
	return v
}

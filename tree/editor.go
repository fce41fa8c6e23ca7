package tree

import (
	"maps"
	"slices"
	"strconv"

	"github.com/signadot/nbstore/kpath"
)

// Editor applies edits to a tree without mutating it.
//
// The first write below a container clones that container; later writes
// below the same container reuse the clone. Every sub-tree that is not on
// the path of a write is shared between the original and the result.
//
// Ownership is tracked by location rather than by reference, so a value
// placed into the tree by Set is never modified by subsequent edits even if
// it is reachable from elsewhere.
type Editor struct {
	root any
	own  *owned
}

// owned marks the containers the editor has cloned. A nil *owned means the
// container at that location still belongs to someone else.
type owned struct {
	kids map[string]*owned
}

func (o *owned) get(k string) *owned {
	if o == nil {
		return nil
	}
	return o.kids[k]
}

func (o *owned) put(k string, c *owned) {
	if c == nil {
		delete(o.kids, k)
		return
	}
	if o.kids == nil {
		o.kids = map[string]*owned{}
	}
	o.kids[k] = c
}

func NewEditor(root any) *Editor {
	return &Editor{root: root}
}

// Root returns the edited tree.
func (e *Editor) Root() any {
	return e.root
}

// Get returns the current value at p.
func (e *Editor) Get(p kpath.Path) (any, bool) {
	return Get(e.root, p)
}

// Set places v at p.
//
// Missing intermediates are created: an array when the next key is an
// index, an object otherwise. Intermediates which are not containers are
// overwritten the same way. An array addressed by a key which is not an
// index is converted into an object keyed by the element indexes. Setting
// an index past the end of an array fills the gap with nil.
func (e *Editor) Set(p kpath.Path, v any) {
	e.root, e.own = e.set(e.root, e.own, p, v)
}

func (e *Editor) set(cur any, own *owned, p kpath.Path, v any) (any, *owned) {
	if len(p) == 0 {
		return v, nil
	}
	k := p[0]
	c, own := writable(cur, own, k)
	switch x := c.(type) {
	case map[string]any:
		child, cown := e.set(x[k], own.get(k), p[1:], v)
		x[k] = child
		own.put(k, cown)
		return x, own
	case []any:
		i, _ := kpath.IndexOf(k)
		for len(x) <= i {
			x = append(x, nil)
		}
		child, cown := e.set(x[i], own.get(k), p[1:], v)
		x[i] = child
		own.put(k, cown)
		return x, own
	}
	panic("unreachable")
}

// writable returns a container owned by the editor which can hold key k,
// cloning or creating it as needed.
func writable(cur any, own *owned, k string) (any, *owned) {
	_, isIndex := kpath.IndexOf(k)
	switch x := cur.(type) {
	case map[string]any:
		if own != nil && x != nil {
			return x, own
		}
		res := maps.Clone(x)
		if res == nil {
			res = map[string]any{}
		}
		return res, &owned{}
	case []any:
		if !isIndex {
			res := make(map[string]any, len(x)+1)
			for i, c := range x {
				res[strconv.Itoa(i)] = c
			}
			return res, &owned{}
		}
		if own != nil {
			return x, own
		}
		return slices.Clone(x), &owned{}
	}
	if isIndex {
		return []any{}, &owned{}
	}
	return map[string]any{}, &owned{}
}

// Remove deletes the value at p. Object keys are deleted, array elements
// are spliced out. Removing a path which does not exist does nothing;
// removing the root leaves a nil tree.
func (e *Editor) Remove(p kpath.Path) {
	if len(p) == 0 {
		e.root, e.own = nil, nil
		return
	}
	e.root, e.own, _ = e.remove(e.root, e.own, p)
}

func (e *Editor) remove(cur any, own *owned, p kpath.Path) (any, *owned, bool) {
	k := p[0]
	switch x := cur.(type) {
	case map[string]any:
		c, ok := x[k]
		if !ok {
			return cur, own, false
		}
		if len(p) == 1 {
			if own == nil {
				x, own = maps.Clone(x), &owned{}
			}
			delete(x, k)
			own.put(k, nil)
			return x, own, true
		}
		nc, cown, changed := e.remove(c, own.get(k), p[1:])
		if !changed {
			return cur, own, false
		}
		if own == nil {
			x, own = maps.Clone(x), &owned{}
		}
		x[k] = nc
		own.put(k, cown)
		return x, own, true
	case []any:
		i, ok := kpath.IndexOf(k)
		if !ok || i >= len(x) {
			return cur, own, false
		}
		if len(p) == 1 {
			if own == nil {
				x, own = slices.Clone(x), &owned{}
			}
			x = slices.Delete(x, i, i+1)
			// indexes after i shifted.
			own.kids = nil
			return x, own, true
		}
		nc, cown, changed := e.remove(x[i], own.get(k), p[1:])
		if !changed {
			return cur, own, false
		}
		if own == nil {
			x, own = slices.Clone(x), &owned{}
		}
		x[i] = nc
		own.put(k, cown)
		return x, own, true
	}
	return cur, own, false
}

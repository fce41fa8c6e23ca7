// Package draft computes changes to state trees.
//
// A Draft records edits against a base tree and yields both the edited
// tree and the patch list describing the edits. The Engine uses drafts to
// turn an update source (a value or a transform) aimed at a path into
// either a patch list or, for trees which cannot be drafted, a whole
// replacement value.
package draft

import (
	"errors"
	"fmt"

	"github.com/signadot/nbstore/debug"
	"github.com/signadot/nbstore/kpath"
	"github.com/signadot/nbstore/patch"
	"github.com/signadot/nbstore/tree"
)

var (
	ErrNotDraftable = errors.New("not draftable")
	ErrFinished     = errors.New("draft already finished")
)

type Draft struct {
	ed      *tree.Editor
	patches []patch.Patch
	done    bool
}

// New opens a draft over base, which must be an object or an array.
func New(base any) (*Draft, error) {
	if !tree.Draftable(base) {
		return nil, fmt.Errorf("%w: %s", ErrNotDraftable, tree.KindOf(base))
	}
	return &Draft{ed: tree.NewEditor(base)}, nil
}

// Get returns a copy of the current value at p. The copy may be modified
// freely; use Set to record changes.
func (d *Draft) Get(p kpath.Path) (any, bool) {
	v, ok := d.ed.Get(p)
	if !ok {
		return nil, false
	}
	return tree.DeepCopy(v), true
}

// Set places v at p and records the patches needed to get there. When p
// did not exist a single set is recorded, even if v is nil; otherwise only
// the differences between the old and new value are.
func (d *Draft) Set(p kpath.Path, v any) error {
	if d.done {
		return ErrFinished
	}
	old, ok := d.ed.Get(p)
	var ps []patch.Patch
	if ok {
		ps = patch.DiffAt(p, old, v)
	} else {
		ps = []patch.Patch{patch.Set(p.Append(), v)}
	}
	if len(ps) == 0 {
		return nil
	}
	d.ed.Set(p, v)
	d.patches = append(d.patches, ps...)
	if debug.Draft() {
		debug.Logf("draft set %s: %v\n", p, ps)
	}
	return nil
}

// Remove deletes the value at p. Removing a missing path records nothing.
func (d *Draft) Remove(p kpath.Path) error {
	if d.done {
		return ErrFinished
	}
	if _, ok := d.ed.Get(p); !ok {
		return nil
	}
	d.ed.Remove(p)
	d.patches = append(d.patches, patch.Remove(p.Append()))
	return nil
}

// Finish closes the draft, returning the recorded patches and the edited
// tree. The patches applied to the base yield the edited tree.
func (d *Draft) Finish() ([]patch.Patch, any, error) {
	if d.done {
		return nil, nil, ErrFinished
	}
	d.done = true
	return d.patches, d.ed.Root(), nil
}

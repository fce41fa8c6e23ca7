// Package patch represents changes to a state tree as ordered edit lists.
//
// A Patch sets or removes the value at an absolute path. Patches apply in
// list order; Diff computes a minimal list turning one tree into another
// and Apply replays a list without modifying its input.
package patch

import (
	"errors"
	"fmt"

	"github.com/signadot/nbstore/debug"
	"github.com/signadot/nbstore/kpath"
	"github.com/signadot/nbstore/tree"
)

type Op string

const (
	OpSet    Op = "set"
	OpRemove Op = "remove"
)

var ErrInvalidOp = errors.New("invalid patch op")

type Patch struct {
	Op    Op
	Path  kpath.Path
	Value any
}

func Set(p kpath.Path, v any) Patch {
	return Patch{Op: OpSet, Path: p, Value: v}
}

func Remove(p kpath.Path) Patch {
	return Patch{Op: OpRemove, Path: p}
}

func (p Patch) String() string {
	if p.Op == OpRemove {
		return fmt.Sprintf("remove %s", p.Path)
	}
	return fmt.Sprintf("set %s %v", p.Path, p.Value)
}

// Apply returns base with ps applied in order. base is never modified;
// the result shares every sub-tree the patches do not touch.
func Apply(base any, ps []Patch) (any, error) {
	if len(ps) == 0 {
		return base, nil
	}
	e := tree.NewEditor(base)
	for i := range ps {
		p := &ps[i]
		switch p.Op {
		case OpSet:
			e.Set(p.Path, p.Value)
		case OpRemove:
			e.Remove(p.Path)
		default:
			return nil, fmt.Errorf("%w %q at patch %d", ErrInvalidOp, p.Op, i)
		}
	}
	if debug.Apply() {
		debug.Logf("applied %d patches: %v\n", len(ps), ps)
	}
	return e.Root(), nil
}

// Strip returns ps with the first n keys of every path removed, for
// applying patches to a sub-tree. Patches whose path does not extend past
// the first n keys keep an empty path.
func Strip(ps []Patch, n int) []Patch {
	res := make([]Patch, len(ps))
	for i, p := range ps {
		res[i] = p
		if len(p.Path) <= n {
			res[i].Path = nil
			continue
		}
		res[i].Path = p.Path[n:]
	}
	return res
}

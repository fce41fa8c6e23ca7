package patch

import (
	"errors"
	"fmt"

	"github.com/signadot/nbstore/kpath"
)

var ErrInvalidDoc = errors.New("invalid patch document")

// ToDoc renders ps as a tree, one object per patch:
//
//	- op: set
//	  path: todos[1].done
//	  value: true
//
// so patch lists can be encoded with any tree format.
func ToDoc(ps []Patch) []any {
	res := make([]any, len(ps))
	for i, p := range ps {
		m := map[string]any{"op": string(p.Op), "path": p.Path.String()}
		if p.Op == OpSet {
			m["value"] = p.Value
		}
		res[i] = m
	}
	return res
}

// FromDoc is the inverse of ToDoc. A set without a value sets nil.
func FromDoc(doc any) ([]Patch, error) {
	if doc == nil {
		return nil, nil
	}
	items, ok := doc.([]any)
	if !ok {
		return nil, fmt.Errorf("%w: expected a list, got %T", ErrInvalidDoc, doc)
	}
	res := make([]Patch, 0, len(items))
	for i, item := range items {
		m, ok := item.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("%w: item %d: expected an object, got %T", ErrInvalidDoc, i, item)
		}
		op, _ := m["op"].(string)
		ps, _ := m["path"].(string)
		p, err := kpath.Parse(ps)
		if err != nil {
			return nil, fmt.Errorf("%w: item %d: %w", ErrInvalidDoc, i, err)
		}
		switch Op(op) {
		case OpSet:
			res = append(res, Set(p, m["value"]))
		case OpRemove:
			res = append(res, Remove(p))
		default:
			return nil, fmt.Errorf("%w: item %d: %w %q", ErrInvalidDoc, i, ErrInvalidOp, op)
		}
	}
	return res, nil
}

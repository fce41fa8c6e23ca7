package patch

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	jsonpatch "github.com/evanphx/json-patch"

	"github.com/signadot/nbstore/kpath"
	"github.com/signadot/nbstore/tree"
)

var ErrRootJSONPatch = errors.New("json patch cannot address the document root")

// ToJSONPatch expresses ps, as applied to base, in RFC 6902 form.
//
// JSON patch does not create intermediates, so the result is computed
// against the evolving document: a set becomes "add" or "replace"
// depending on whether its target exists, created intermediates are added
// whole, and array holes are filled with explicit nulls. Removals of
// missing paths are dropped. Patches which would replace the document root
// fail with ErrRootJSONPatch.
func ToJSONPatch(base any, ps []Patch) (jsonpatch.Patch, error) {
	ops, err := jsonOps(base, ps)
	if err != nil {
		return nil, err
	}
	d, err := json.Marshal(ops)
	if err != nil {
		return nil, err
	}
	return jsonpatch.DecodePatch(d)
}

func jsonOps(base any, ps []Patch) ([]map[string]any, error) {
	e := tree.NewEditor(base)
	ops := []map[string]any{}
	for i := range ps {
		p := &ps[i]
		if p.Path.IsRoot() {
			return nil, fmt.Errorf("%w: patch %d (%s)", ErrRootJSONPatch, i, p.Op)
		}
		switch p.Op {
		case OpRemove:
			if _, ok := e.Get(p.Path); !ok {
				continue
			}
			ops = append(ops, jsonOpMap("remove", p.Path, nil, false))
			e.Remove(p.Path)
		case OpSet:
			more, err := setOps(e, p.Path, p.Value)
			if err != nil {
				return nil, fmt.Errorf("patch %d: %w", i, err)
			}
			ops = append(ops, more...)
		default:
			return nil, fmt.Errorf("%w %q at patch %d", ErrInvalidOp, p.Op, i)
		}
	}
	return ops, nil
}

// setOps emits the operations for setting v at path in the document held by
// e, and applies the set to e.
func setOps(e *tree.Editor, path kpath.Path, v any) ([]map[string]any, error) {
	parent := e.Root()
	for i, k := range path {
		if !holds(parent, k) {
			if i == 0 {
				return nil, ErrRootJSONPatch
			}
			e.Set(path, v)
			at := path[:i]
			nv, _ := e.Get(at)
			return []map[string]any{jsonOpMap("replace", at, nv, true)}, nil
		}
		child, ok := childOf(parent, k)
		if !ok || i == len(path)-1 {
			e.Set(path, v)
			at := path[:i+1]
			nv, _ := e.Get(at)
			return place(parent, at, nv), nil
		}
		parent = child
	}
	return nil, nil
}

// place emits the operations putting v at p, where holder is the existing
// container for the last key of p.
func place(holder any, p kpath.Path, v any) []map[string]any {
	k := p[len(p)-1]
	switch x := holder.(type) {
	case map[string]any:
		if _, ok := x[k]; ok {
			return []map[string]any{jsonOpMap("replace", p, v, true)}
		}
	case []any:
		idx, _ := kpath.IndexOf(k)
		if idx < len(x) {
			return []map[string]any{jsonOpMap("replace", p, v, true)}
		}
		var ops []map[string]any
		dir := p[:len(p)-1]
		for j := len(x); j < idx; j++ {
			ops = append(ops, jsonOpMap("add", dir.Append(strconv.Itoa(j)), nil, true))
		}
		return append(ops, jsonOpMap("add", p, v, true))
	}
	return []map[string]any{jsonOpMap("add", p, v, true)}
}

func holds(v any, k string) bool {
	switch v.(type) {
	case map[string]any:
		return true
	case []any:
		_, ok := kpath.IndexOf(k)
		return ok
	}
	return false
}

func childOf(v any, k string) (any, bool) {
	return tree.Get(v, kpath.Path{k})
}

func jsonOpMap(op string, p kpath.Path, v any, withValue bool) map[string]any {
	m := map[string]any{"op": op, "path": p.Pointer()}
	if withValue {
		m["value"] = v
	}
	return m
}

// ApplyJSON applies ps to the JSON document doc using RFC 6902 semantics.
func ApplyJSON(doc []byte, ps []Patch) ([]byte, error) {
	if len(ps) == 0 {
		return doc, nil
	}
	dec := json.NewDecoder(bytes.NewReader(doc))
	dec.UseNumber()
	var base any
	if err := dec.Decode(&base); err != nil {
		return nil, err
	}
	jp, err := ToJSONPatch(base, ps)
	if err != nil {
		return nil, err
	}
	return jp.Apply(doc)
}

package patch

import (
	"slices"
	"strconv"

	"github.com/signadot/nbstore/kpath"
	"github.com/signadot/nbstore/tree"
)

// Diff returns the patches turning from into to.
//
// Objects are compared key by key in sorted order: keys only in from are
// removed, keys only in to are set and shared keys are compared
// recursively. Arrays are compared index by index; extra elements of to are
// set in ascending order and extra elements of from are removed in
// descending order, so indexes stay valid while applying. Any other
// difference replaces the value with a set. Sub-trees which are the same
// reference are skipped without being walked.
func Diff(from, to any) []Patch {
	return DiffAt(nil, from, to)
}

// DiffAt is Diff with every patch path prefixed by prefix.
func DiffAt(prefix kpath.Path, from, to any) []Patch {
	return diff(nil, prefix, from, to)
}

func diff(ps []Patch, at kpath.Path, from, to any) []Patch {
	if tree.Same(from, to) {
		return ps
	}
	switch a := from.(type) {
	case map[string]any:
		b, ok := to.(map[string]any)
		if !ok || b == nil || a == nil {
			break
		}
		return diffObject(ps, at, a, b)
	case []any:
		b, ok := to.([]any)
		if !ok || b == nil || a == nil {
			break
		}
		return diffArray(ps, at, a, b)
	}
	if tree.Equal(from, to) {
		return ps
	}
	return append(ps, Set(at.Append(), to))
}

func diffObject(ps []Patch, at kpath.Path, a, b map[string]any) []Patch {
	keys := make([]string, 0, len(a)+len(b))
	for k := range a {
		keys = append(keys, k)
	}
	for k := range b {
		if _, ok := a[k]; !ok {
			keys = append(keys, k)
		}
	}
	slices.Sort(keys)
	for _, k := range keys {
		av, inA := a[k]
		bv, inB := b[k]
		switch {
		case !inB:
			ps = append(ps, Remove(at.Append(k)))
		case !inA:
			ps = append(ps, Set(at.Append(k), bv))
		default:
			ps = diff(ps, at.Append(k), av, bv)
		}
	}
	return ps
}

func diffArray(ps []Patch, at kpath.Path, a, b []any) []Patch {
	n := min(len(a), len(b))
	for i := 0; i < n; i++ {
		ps = diff(ps, at.Append(index(i)), a[i], b[i])
	}
	for i := n; i < len(b); i++ {
		ps = append(ps, Set(at.Append(index(i)), b[i]))
	}
	for i := len(a) - 1; i >= len(b); i-- {
		ps = append(ps, Remove(at.Append(index(i))))
	}
	return ps
}

func index(i int) string {
	return strconv.Itoa(i)
}

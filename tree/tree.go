// Package tree provides primitives over JSON-like state trees.
//
// A tree is an any holding map[string]any (object), []any (array), string,
// bool, a number, nil, or a function. Trees handed to a container are never
// mutated in place; Editor produces new trees that share every untouched
// sub-tree with the original.
package tree

import (
	"encoding/json"
	"maps"
	"reflect"
	"slices"

	"github.com/signadot/nbstore/kpath"
)

type Kind int

const (
	Null Kind = iota
	Bool
	Number
	String
	Object
	Array
	Func
	Other
)

func (k Kind) String() string {
	switch k {
	case Null:
		return "null"
	case Bool:
		return "bool"
	case Number:
		return "number"
	case String:
		return "string"
	case Object:
		return "object"
	case Array:
		return "array"
	case Func:
		return "func"
	default:
		return "other"
	}
}

func KindOf(v any) Kind {
	switch v.(type) {
	case nil:
		return Null
	case bool:
		return Bool
	case string:
		return String
	case map[string]any:
		return Object
	case []any:
		return Array
	case int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64,
		float32, float64, json.Number:
		return Number
	}
	if reflect.TypeOf(v).Kind() == reflect.Func {
		return Func
	}
	return Other
}

// Draftable reports whether v can be edited structurally, that is whether
// it is an object or an array.
func Draftable(v any) bool {
	k := KindOf(v)
	return k == Object || k == Array
}

// Addressable reports whether a path may be applied to v.
func Addressable(v any) bool {
	k := KindOf(v)
	return k == Object || k == Array || k == Func
}

// Get returns the value at p in v.
func Get(v any, p kpath.Path) (any, bool) {
	for _, k := range p {
		next, ok := child(v, k)
		if !ok {
			return nil, false
		}
		v = next
	}
	return v, true
}

func child(v any, k string) (any, bool) {
	switch x := v.(type) {
	case map[string]any:
		c, ok := x[k]
		return c, ok
	case []any:
		i, ok := kpath.IndexOf(k)
		if !ok || i >= len(x) {
			return nil, false
		}
		return x[i], true
	}
	return nil, false
}

// DeepCopy copies every object and array in v. Leaves are shared.
func DeepCopy(v any) any {
	switch x := v.(type) {
	case map[string]any:
		if x == nil {
			return x
		}
		res := make(map[string]any, len(x))
		for k, c := range x {
			res[k] = DeepCopy(c)
		}
		return res
	case []any:
		if x == nil {
			return x
		}
		res := make([]any, len(x))
		for i, c := range x {
			res[i] = DeepCopy(c)
		}
		return res
	}
	return v
}

// Same reports whether a and b are the same value by reference: identical
// maps, slices sharing a backing array and length, identical functions, or
// equal comparable scalars.
func Same(a, b any) bool {
	switch x := a.(type) {
	case map[string]any:
		y, ok := b.(map[string]any)
		return ok && reflect.ValueOf(x).UnsafePointer() == reflect.ValueOf(y).UnsafePointer()
	case []any:
		y, ok := b.([]any)
		if !ok || len(x) != len(y) {
			return false
		}
		if len(x) == 0 {
			return (x == nil) == (y == nil)
		}
		return &x[0] == &y[0]
	}
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	ta, tb := reflect.TypeOf(a), reflect.TypeOf(b)
	if ta != tb {
		return false
	}
	if ta.Kind() == reflect.Func {
		return reflect.ValueOf(a).UnsafePointer() == reflect.ValueOf(b).UnsafePointer()
	}
	if !ta.Comparable() {
		return false
	}
	return a == b
}

// SortedKeys returns the keys of an object in ascending order.
func SortedKeys(m map[string]any) []string {
	return slices.Sorted(maps.Keys(m))
}

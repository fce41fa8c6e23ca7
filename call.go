package nbstore

import (
	"fmt"

	"github.com/signadot/nbstore/action"
	"github.com/signadot/nbstore/draft"
	"github.com/signadot/nbstore/fncache"
	"github.com/signadot/nbstore/kpath"
	"github.com/signadot/nbstore/tree"
)

// Shape is the kind of update a Call makes.
type Shape int

const (
	// Replace puts a value at the root.
	Replace Shape = iota
	// ReplaceAtPath puts a value at a path.
	ReplaceAtPath
	// Transform runs a function over the whole state.
	Transform
	// TransformAtPath runs a function over the value at a path.
	TransformAtPath
)

func (s Shape) String() string {
	switch s {
	case Replace:
		return "replace"
	case ReplaceAtPath:
		return "replace-at-path"
	case Transform:
		return "transform"
	case TransformAtPath:
		return "transform-at-path"
	}
	return fmt.Sprintf("Shape(%d)", int(s))
}

// Call is a fully resolved update.
type Call struct {
	Shape  Shape
	Path   kpath.Path
	Source draft.Source
	Custom action.Customization
	// Merge applies root updates one top-level key at a time: an object
	// value sets each of its keys, and a transform result which is an
	// object sets each key it changed.
	Merge bool
	// Fn is the cache token of the transform, if already stored.
	Fn string
}

// Expr is an update source given as an expression over the current value;
// see fncache.CompileExpr for the language.
type Expr string

var (
	setShapes = []string{
		"Set(valueOrFn)",
		"Set(path, valueOrFn)",
		"Set(path, valueOrFn, customization)",
	}
	actionShapes = []string{
		"Action(valueOrFn, customization)",
		"Action(path, valueOrFn, customization)",
	}
	getShapes = []string{
		"Get()",
		"Get(path)",
	}
	selectSetShapes = []string{
		"Set(valueOrFn)",
		"Set(valueOrFn, customization)",
	}
)

// NewCall resolves a path argument, an update source and a customization
// into a Call.
func (s *Store) NewCall(path, valueOrFn, custom any) (Call, error) {
	res, err := kpath.Resolve(path)
	if err != nil {
		return Call{}, err
	}
	src, token, err := s.source(valueOrFn)
	if err != nil {
		return Call{}, err
	}
	c, err := action.ParseCustomization(custom)
	if err != nil {
		return Call{}, err
	}
	return Call{
		Shape:  shapeOf(res.Keys, src),
		Path:   res.Keys,
		Source: src,
		Custom: c,
		Fn:     token,
	}, nil
}

func shapeOf(p kpath.Path, src draft.Source) Shape {
	switch {
	case p.IsRoot() && src.IsFunc():
		return Transform
	case p.IsRoot():
		return Replace
	case src.IsFunc():
		return TransformAtPath
	}
	return ReplaceAtPath
}

// source classifies an update argument. Go functions and expressions
// become transforms, anything else a normalized value.
func (s *Store) source(v any) (draft.Source, string, error) {
	switch x := v.(type) {
	case draft.Source:
		return x, "", nil
	case Expr:
		token, err := s.cache.StoreExpr(string(x))
		if err != nil {
			return draft.Source{}, "", fmt.Errorf("%w: expression %q: %w", ErrInvalidSource, string(x), err)
		}
		return draft.Func(s.cache.Retrieve(token)), token, nil
	}
	if fncache.IsFunc(v) {
		f, ok := fncache.Adapt(v)
		if !ok {
			return draft.Source{}, "", fmt.Errorf("%w: unsupported function type %T", ErrInvalidSource, v)
		}
		return draft.Func(f), "", nil
	}
	norm, err := tree.Normalize(v)
	if err != nil {
		return draft.Source{}, "", fmt.Errorf("%w: %w", ErrInvalidSource, err)
	}
	return draft.Value(norm), "", nil
}

func (c *Call) validate() error {
	if want := shapeOf(c.Path, c.Source); want != c.Shape {
		return fmt.Errorf("%w: shape %s does not match a %s update at %q", ErrInvalidCall, c.Shape, want, c.Path.String())
	}
	return nil
}

package draft

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/signadot/nbstore/debug"
	"github.com/signadot/nbstore/kpath"
	"github.com/signadot/nbstore/patch"
	"github.com/signadot/nbstore/tree"
)

var (
	ErrInvalidTarget = errors.New("invalid target")
	ErrDraft         = errors.New("draft engine failure")
	ErrTransform     = errors.New("transform failed")
)

type Kind string

const (
	KindPatch   Kind = "patch"
	KindReplace Kind = "replace"
)

// TransformFunc computes a new value from the current value at path. The
// current value is a private copy which the function may modify.
type TransformFunc func(current any, path kpath.Path) (any, error)

// Source is what an update puts at its path: either a plain value or a
// transform of the value already there.
type Source struct {
	value any
	fn    TransformFunc
}

func Value(v any) Source {
	return Source{value: v}
}

// Func makes a transform source. Func(nil) is the same as Value(nil).
func Func(fn TransformFunc) Source {
	return Source{fn: fn}
}

func (s Source) IsFunc() bool {
	return s.fn != nil
}

func (s Source) Val() any {
	return s.value
}

func (s Source) Fn() TransformFunc {
	return s.fn
}

// Eval returns the value s produces given the current value at p. Transform
// results are normalized into tree shapes.
func (s Source) Eval(current any, p kpath.Path) (any, error) {
	if s.fn == nil {
		return s.value, nil
	}
	v, err := s.fn(current, p)
	if err != nil {
		return nil, fmt.Errorf("%w at %q: %w", ErrTransform, p.String(), err)
	}
	norm, err := tree.Normalize(v)
	if err != nil {
		return nil, fmt.Errorf("%w at %q: %w", ErrTransform, p.String(), err)
	}
	return norm, nil
}

type Result struct {
	Kind    Kind
	Patches []patch.Patch
	Value   any
}

type Engine struct {
	Log *slog.Logger
}

func (e *Engine) log() *slog.Logger {
	if e == nil || e.Log == nil {
		return slog.New(slog.DiscardHandler)
	}
	return e.Log
}

// Compute works out the change src makes at path in base.
//
// A nil base is treated as an empty object when path is not the root.
// When path is not the root, base must be an object or an array, otherwise
// ErrInvalidTarget is returned. Drafted bases produce a patch list, which
// is empty when nothing changed; any other base is replaced wholesale by the
// value src yields.
func (e *Engine) Compute(base any, src Source, path kpath.Path) (Result, error) {
	if !path.IsRoot() {
		if base == nil {
			base = map[string]any{}
		}
		if k := tree.KindOf(base); k != tree.Object && k != tree.Array {
			e.log().Error("cannot update path in non container state", "path", path.String(), "kind", k.String())
			return Result{}, fmt.Errorf("%w: cannot address %q in %s state", ErrInvalidTarget, path.String(), k)
		}
	}
	d, err := New(base)
	if err != nil {
		if !errors.Is(err, ErrNotDraftable) {
			return Result{}, fmt.Errorf("%w: %w", ErrDraft, err)
		}
		v, err := src.Eval(base, nil)
		if err != nil {
			return Result{}, err
		}
		e.trace(path, KindReplace, v)
		return Result{Kind: KindReplace, Value: v}, nil
	}
	cur, _ := d.Get(path)
	v, err := src.Eval(cur, path)
	if err != nil {
		return Result{}, err
	}
	if err := d.Set(path, v); err != nil {
		return Result{}, fmt.Errorf("%w: %w", ErrDraft, err)
	}
	ps, _, err := d.Finish()
	if err != nil {
		return Result{}, fmt.Errorf("%w: %w", ErrDraft, err)
	}
	e.trace(path, KindPatch, ps)
	return Result{Kind: KindPatch, Patches: ps}, nil
}

func (e *Engine) trace(path kpath.Path, k Kind, v any) {
	if debug.Draft() {
		debug.Logf("compute %q: %s %v\n", path.String(), k, v)
	}
}

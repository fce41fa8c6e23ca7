// Package fncache turns transforms into string tokens and back, so that
// actions describing a transform stay plain data.
//
// Go functions are stored under random tokens ("fn:<uuid>"); expression
// transforms are stored under their source ("expr:<source>") and can be
// recompiled from the token alone.
package fncache

import (
	"log/slog"
	"reflect"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/signadot/nbstore/draft"
	"github.com/signadot/nbstore/kpath"
)

const (
	FuncPrefix = "fn:"
	ExprPrefix = "expr:"
)

type Cache struct {
	mu  sync.RWMutex
	fns map[string]draft.TransformFunc
	log *slog.Logger
}

// New makes an empty cache. Warnings go to log, or nowhere if log is nil.
func New(log *slog.Logger) *Cache {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Cache{fns: map[string]draft.TransformFunc{}, log: log}
}

// Identity is the transform returned for unknown tokens.
func Identity(v any, _ kpath.Path) (any, error) {
	return v, nil
}

// Adapt converts the supported function shapes to a draft.TransformFunc:
//
//	draft.TransformFunc
//	func(any, kpath.Path) (any, error)
//	func(any) (any, error)
//	func(any) any
func Adapt(fn any) (draft.TransformFunc, bool) {
	switch f := fn.(type) {
	case draft.TransformFunc:
		return f, f != nil
	case func(any, kpath.Path) (any, error):
		return f, f != nil
	case func(any) (any, error):
		if f == nil {
			return nil, false
		}
		return func(v any, _ kpath.Path) (any, error) { return f(v) }, true
	case func(any) any:
		if f == nil {
			return nil, false
		}
		return func(v any, _ kpath.Path) (any, error) { return f(v), nil }, true
	}
	return nil, false
}

// IsFunc reports whether v is a Go function of any signature.
func IsFunc(v any) bool {
	return v != nil && reflect.TypeOf(v).Kind() == reflect.Func
}

// Store saves fn and returns its token. Values which are not supported
// functions are logged and stored as the identity transform.
func (c *Cache) Store(fn any) string {
	f, ok := Adapt(fn)
	if !ok {
		c.log.Warn("storing identity transform in place of unsupported value", "type", reflect.TypeOf(fn))
		f = Identity
	}
	token := FuncPrefix + uuid.NewString()
	c.mu.Lock()
	c.fns[token] = f
	c.mu.Unlock()
	return token
}

// Retrieve returns the transform stored under token. Unknown tokens yield
// Identity; expression tokens not yet seen are compiled on first use.
func (c *Cache) Retrieve(token string) draft.TransformFunc {
	c.mu.RLock()
	f, ok := c.fns[token]
	c.mu.RUnlock()
	if ok {
		return f
	}
	src, isExpr := strings.CutPrefix(token, ExprPrefix)
	if !isExpr {
		return Identity
	}
	f, err := CompileExpr(src)
	if err != nil {
		c.log.Warn("cannot compile expression token", "token", token, "error", err)
		return Identity
	}
	c.mu.Lock()
	c.fns[token] = f
	c.mu.Unlock()
	return f
}

// Len returns the number of stored transforms.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.fns)
}

// Package router routes actions to the reducers of top-level state slices.
//
// A Table maps each top-level key of the state to the reducer owning it.
// Tables start with the user's reducers and grow on first touch of a key
// by a path update (see EnsureRoute); entries are never removed.
package router

import (
	"log/slog"
	"maps"
	"slices"
	"sync"

	"github.com/signadot/nbstore/action"
)

// Reducer computes the next state of a slice. Reducers must not modify
// state and must return it unchanged for actions they do not handle.
type Reducer func(state any, a *action.Action) any

// Host is a container whose root reducer can be replaced.
type Host interface {
	ReplaceReducer(Reducer)
}

type Entry struct {
	Reducer Reducer
	// Reducerless marks entries which apply path updates, either on their
	// own or in front of a user reducer.
	Reducerless bool
	// User is the wrapped user reducer, if any.
	User Reducer
}

type Table struct {
	// Log receives the errors of the reducers the table installs. Set it
	// before routes are added.
	Log *slog.Logger

	mu      sync.RWMutex
	entries map[string]*Entry
}

// NewTable makes a table holding the given user reducers. Nil reducers
// are skipped.
func NewTable(reducers map[string]Reducer) *Table {
	t := &Table{entries: make(map[string]*Entry, len(reducers))}
	for k, r := range reducers {
		if r == nil {
			continue
		}
		t.entries[k] = &Entry{Reducer: r}
	}
	return t
}

func (t *Table) Lookup(key string) (*Entry, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	e, ok := t.entries[key]
	return e, ok
}

// Keys returns the routed keys in ascending order.
func (t *Table) Keys() []string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return slices.Sorted(maps.Keys(t.entries))
}

func (t *Table) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.entries)
}

type route struct {
	key   string
	entry *Entry
}

func (t *Table) routes() []route {
	t.mu.RLock()
	defer t.mu.RUnlock()
	res := make([]route, 0, len(t.entries))
	for _, k := range slices.Sorted(maps.Keys(t.entries)) {
		res = append(res, route{key: k, entry: t.entries[k]})
	}
	return res
}

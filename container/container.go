// Package container is a minimal host for path-updated state: it holds the
// current state, runs a replaceable root reducer on dispatch and notifies
// subscribers of every change.
package container

import (
	"log/slog"
	"slices"
	"sync"

	"github.com/signadot/nbstore/action"
	"github.com/signadot/nbstore/debug"
	"github.com/signadot/nbstore/kpath"
	"github.com/signadot/nbstore/router"
	"github.com/signadot/nbstore/tree"
)

// InitType is the type of the action dispatched when a container is made,
// which lets user reducers produce their initial slices.
const InitType = "@@nbstore/INIT"

type Config struct {
	Reducers       map[string]router.Reducer
	PreloadedState any
	Log            *slog.Logger
}

// Change describes one dispatch.
type Change struct {
	Action *action.Action
	Prev   any
	Next   any
}

type Listener func(Change)

type Container struct {
	mu      sync.Mutex
	state   any
	reducer router.Reducer
	table   *router.Table

	lmu       sync.Mutex
	listeners map[int]Listener
	nextID    int

	log *slog.Logger
}

// New makes a container with the given user reducers and dispatches the
// init action.
func New(cfg Config) *Container {
	log := cfg.Log
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	preloaded, err := tree.Normalize(cfg.PreloadedState)
	if err != nil {
		log.Error("ignoring preloaded state", "error", err)
		preloaded = nil
	}
	t := router.NewTable(cfg.Reducers)
	t.Log = log
	c := &Container{
		state:     preloaded,
		table:     t,
		reducer:   router.Combine(t),
		listeners: map[int]Listener{},
		log:       log,
	}
	c.Dispatch(action.New(InitType, nil))
	return c
}

// Table returns the routing table of c.
func (c *Container) Table() *router.Table {
	return c.table
}

func (c *Container) GetState() any {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// ReplaceReducer replaces the root reducer used for actions not tagged
// kpath.WholeStore.
func (c *Container) ReplaceReducer(r router.Reducer) {
	c.mu.Lock()
	c.reducer = r
	c.mu.Unlock()
	c.log.Debug("replaced root reducer", "routes", c.table.Len())
}

// Dispatch reduces a into the state and then notifies listeners. Listeners
// run after the state is updated and may dispatch themselves.
func (c *Container) Dispatch(a *action.Action) {
	c.mu.Lock()
	prev := c.state
	var next any
	if a.TaggedFor(kpath.WholeStore) {
		next = router.ApplyWhole(prev, a, c.log)
	} else {
		next = c.reducer(prev, a)
	}
	c.state = next
	c.mu.Unlock()

	if debug.Dispatch() {
		debug.Logf("dispatched %s\n", a)
	}
	c.log.Debug("dispatched", "type", a.Type, "routingKey", a.RoutingKey)
	ch := Change{Action: a, Prev: prev, Next: next}
	for _, l := range c.snapshotListeners() {
		l(ch)
	}
}

// Subscribe registers l and returns a function removing it.
func (c *Container) Subscribe(l Listener) func() {
	c.lmu.Lock()
	defer c.lmu.Unlock()
	id := c.nextID
	c.nextID++
	c.listeners[id] = l
	return func() {
		c.lmu.Lock()
		defer c.lmu.Unlock()
		delete(c.listeners, id)
	}
}

func (c *Container) snapshotListeners() []Listener {
	c.lmu.Lock()
	defer c.lmu.Unlock()
	ids := make([]int, 0, len(c.listeners))
	for id := range c.listeners {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	res := make([]Listener, len(ids))
	for i, id := range ids {
		res[i] = c.listeners[id]
	}
	return res
}

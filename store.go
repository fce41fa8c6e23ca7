package nbstore

import (
	"fmt"
	"log/slog"

	"github.com/signadot/nbstore/action"
	"github.com/signadot/nbstore/container"
	"github.com/signadot/nbstore/debug"
	"github.com/signadot/nbstore/draft"
	"github.com/signadot/nbstore/fncache"
	"github.com/signadot/nbstore/kpath"
	"github.com/signadot/nbstore/router"
	"github.com/signadot/nbstore/tree"
)

// Host is the container a Store updates.
type Host interface {
	GetState() any
	Dispatch(*action.Action)
	router.Host
}

// Store binds a host container to its routing table and transform cache.
//
// Updates read the state, compute a change and dispatch it without holding
// a lock, so that listeners may update the store while being notified.
// Callers updating one store from several goroutines must serialize their
// updates themselves.
type Store struct {
	host   Host
	table  *router.Table
	cache  *fncache.Cache
	engine *draft.Engine
	log    *slog.Logger
}

type Option func(*Store)

func WithLogger(l *slog.Logger) Option {
	return func(s *Store) { s.log = l }
}

func WithEngine(e *draft.Engine) Option {
	return func(s *Store) { s.engine = e }
}

func WithCache(c *fncache.Cache) Option {
	return func(s *Store) { s.cache = c }
}

// New makes a store updating host, whose routing follows table.
func New(host Host, table *router.Table, opts ...Option) *Store {
	s := &Store{host: host, table: table}
	for _, o := range opts {
		o(s)
	}
	if s.log == nil {
		s.log = slog.New(slog.DiscardHandler)
	}
	if s.cache == nil {
		s.cache = fncache.New(s.log)
	}
	if s.engine == nil {
		s.engine = &draft.Engine{Log: s.log}
	}
	return s
}

// Create makes a container from cfg and a store updating it. The store
// logs to cfg.Log unless WithLogger says otherwise.
func Create(cfg container.Config, opts ...Option) (*Store, *container.Container) {
	c := container.New(cfg)
	if cfg.Log != nil {
		opts = append([]Option{WithLogger(cfg.Log)}, opts...)
	}
	return New(c, c.Table(), opts...), c
}

func (s *Store) Host() Host {
	return s.host
}

func (s *Store) Table() *router.Table {
	return s.table
}

func (s *Store) Cache() *fncache.Cache {
	return s.cache
}

// Set updates the state.
//
//	Set(valueOrFn)
//	Set(path, valueOrFn)
//	Set(path, valueOrFn, customization)
//
// At the root, an object value sets each of its top-level keys with a
// separate action and a function runs once over a copy of the state,
// setting each top-level key whose value it changed. A function result
// which is not an object replaces the whole state, as does any other root
// value.
//
// Set returns the resulting value at the path, or the whole state.
func (s *Store) Set(args ...any) (any, error) {
	var path, v, custom any
	switch len(args) {
	case 1:
		v = args[0]
	case 2:
		path, v = args[0], args[1]
	case 3:
		path, v, custom = args[0], args[1], args[2]
	default:
		return nil, &ArityError{Call: "Set", Accepted: setShapes, Got: len(args)}
	}
	c, err := s.NewCall(path, v, custom)
	if err != nil {
		return nil, err
	}
	c.Merge = true
	return s.Do(c)
}

// Action is Set with a customization of the dispatched action and without
// the per-key handling of root updates.
//
//	Action(valueOrFn, customization)
//	Action(path, valueOrFn, customization)
func (s *Store) Action(args ...any) (any, error) {
	var path, v, custom any
	switch len(args) {
	case 2:
		v, custom = args[0], args[1]
	case 3:
		path, v, custom = args[0], args[1], args[2]
	default:
		return nil, &ArityError{Call: "Action", Accepted: actionShapes, Got: len(args)}
	}
	c, err := s.NewCall(path, v, custom)
	if err != nil {
		return nil, err
	}
	return s.Do(c)
}

// Get returns the whole state, or the value at a path (nil if absent).
func (s *Store) Get(args ...any) (any, error) {
	switch len(args) {
	case 0:
		return s.host.GetState(), nil
	case 1:
		res, err := kpath.Resolve(args[0])
		if err != nil {
			return nil, err
		}
		v, _ := tree.Get(s.host.GetState(), res.Keys)
		return v, nil
	}
	return nil, &ArityError{Call: "Get", Accepted: getShapes, Got: len(args)}
}

// Do performs c.
func (s *Store) Do(c Call) (any, error) {
	if err := c.validate(); err != nil {
		return nil, err
	}
	if c.Fn == "" && c.Source.IsFunc() {
		c.Fn = s.cache.Store(c.Source.Fn())
	}
	if c.Merge && s.mergeable() {
		switch c.Shape {
		case Replace:
			if obj, ok := c.Source.Val().(map[string]any); ok {
				return s.mergeObject(obj, c)
			}
		case Transform:
			return s.mergeTransform(c)
		}
	}
	return s.dispatch(kpath.Resolved{Keys: c.Path, RoutingKey: routingKey(c.Path)}, c.Source, c.Fn, c.Custom)
}

// mergeable reports whether the state can take per-key updates.
func (s *Store) mergeable() bool {
	k := tree.KindOf(s.host.GetState())
	return k == tree.Null || k == tree.Object
}

func routingKey(p kpath.Path) string {
	if p.IsRoot() {
		return kpath.WholeStore
	}
	return p[0]
}

// dispatch runs the update pipeline for one action.
func (s *Store) dispatch(res kpath.Resolved, src draft.Source, token string, custom action.Customization) (any, error) {
	state := s.host.GetState()
	r, err := s.engine.Compute(state, src, res.Keys)
	if err != nil {
		return nil, err
	}
	a := action.Build(r, res.RoutingKey, token, custom)
	if res.RoutingKey != kpath.WholeStore {
		router.EnsureRoute(s.table, res.RoutingKey, s.host)
	}
	if debug.Dispatch() {
		debug.Logf("store dispatch %s at %q\n", a, res.Keys.String())
	}
	s.log.Debug("dispatch", "type", a.Type, "path", res.Keys.String(), "kind", string(a.Kind))
	s.host.Dispatch(a)
	v, _ := tree.Get(s.host.GetState(), res.Keys)
	return v, nil
}

func (s *Store) mergeObject(obj map[string]any, c Call) (any, error) {
	for _, k := range tree.SortedKeys(obj) {
		res := kpath.Resolved{Keys: kpath.Path{k}, RoutingKey: k}
		if _, err := s.dispatch(res, draft.Value(obj[k]), c.Fn, c.Custom); err != nil {
			return nil, err
		}
	}
	return s.host.GetState(), nil
}

// mergeTransform runs a root transform eagerly and sets the top-level keys
// it changed. Keys the transform dropped are set to nil.
func (s *Store) mergeTransform(c Call) (any, error) {
	state := s.host.GetState()
	next, err := c.Source.Eval(tree.DeepCopy(state), nil)
	if err != nil {
		return nil, err
	}
	next, err = tree.Normalize(next)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidSource, err)
	}
	nextObj, ok := next.(map[string]any)
	if !ok {
		return s.dispatch(kpath.Resolved{RoutingKey: kpath.WholeStore}, draft.Value(next), c.Fn, c.Custom)
	}
	prev, _ := state.(map[string]any)
	changed := map[string]any{}
	for k, v := range nextObj {
		if pv, had := prev[k]; !had || !tree.Equal(pv, v) {
			changed[k] = v
		}
	}
	for k := range prev {
		if _, kept := nextObj[k]; !kept {
			changed[k] = nil
		}
	}
	return s.mergeObject(changed, c)
}

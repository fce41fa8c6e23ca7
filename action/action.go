// Package action defines the change descriptors submitted to a host
// container.
//
// An action produced by a path update is tagged with the routing key of the
// state slice it changes and carries either a patch list or a replacement
// value for that slice. Actions without a routing key are plain user
// actions meant for user reducers.
package action

import (
	"fmt"
	"strings"

	"github.com/signadot/nbstore/draft"
	"github.com/signadot/nbstore/kpath"
	"github.com/signadot/nbstore/patch"
)

const (
	UpdatePrefix  = "UPDATE_"
	ReplacePrefix = "REPLACE_"
	storeTypeKey  = "STORE"
)

type Action struct {
	// Type names the action. Defaults to UPDATE_<KEY> for patch actions
	// and REPLACE_<KEY> for replacements.
	Type    string
	Payload any
	Meta    map[string]any

	Kind       draft.Kind
	RoutingKey string
	Patches    []patch.Patch
	Value      any
	// Fn is the cache token of the transform which produced the change.
	Fn string
}

// New makes a plain untagged action.
func New(typ string, payload any) *Action {
	return &Action{Type: typ, Payload: payload}
}

// Tagged reports whether a is a path update rather than a user action.
func (a *Action) Tagged() bool {
	return a != nil && a.RoutingKey != ""
}

// TaggedFor reports whether a is a path update for the slice at key.
func (a *Action) TaggedFor(key string) bool {
	return a.Tagged() && a.RoutingKey == key
}

func (a *Action) String() string {
	if !a.Tagged() {
		return a.Type
	}
	switch a.Kind {
	case draft.KindPatch:
		return fmt.Sprintf("%s (%s, %d patches)", a.Type, a.RoutingKey, len(a.Patches))
	default:
		return fmt.Sprintf("%s (%s, replace)", a.Type, a.RoutingKey)
	}
}

// DefaultType returns the conventional type of an action of kind k tagged
// with key.
func DefaultType(k draft.Kind, key string) string {
	prefix := UpdatePrefix
	if k == draft.KindReplace {
		prefix = ReplacePrefix
	}
	if key == kpath.WholeStore {
		return prefix + storeTypeKey
	}
	return prefix + strings.ToUpper(key)
}

// Build makes the action describing res for the slice at key.
//
// The customization may change the type, payload and meta of the action.
// The kind, patches, value, routing key and transform token always come
// from res, key and fnToken.
func Build(res draft.Result, key, fnToken string, c Customization) *Action {
	a := &Action{
		Type:    DefaultType(res.Kind, key),
		Payload: c.Payload,
		Meta:    c.Meta,
	}
	if c.Type != "" {
		a.Type = c.Type
	}
	if c.Suffix != "" {
		a.Type += "_" + strings.ToUpper(c.Suffix)
	}
	a.Kind = res.Kind
	a.RoutingKey = key
	a.Fn = fnToken
	switch res.Kind {
	case draft.KindPatch:
		a.Patches = res.Patches
	default:
		a.Value = res.Value
	}
	return a
}

// Doc renders a as a tree for logging and printing.
func (a *Action) Doc() map[string]any {
	m := map[string]any{"type": a.Type}
	if a.Payload != nil {
		m["payload"] = a.Payload
	}
	if len(a.Meta) != 0 {
		m["meta"] = a.Meta
	}
	if !a.Tagged() {
		return m
	}
	m["kind"] = string(a.Kind)
	m["routingKey"] = a.RoutingKey
	if a.Kind == draft.KindPatch {
		m["patches"] = patch.ToDoc(a.Patches)
	} else {
		m["value"] = a.Value
	}
	if a.Fn != "" {
		m["fn"] = a.Fn
	}
	return m
}

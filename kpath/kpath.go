// Package kpath resolves path arguments into normalized key sequences.
//
// A path addresses a location inside a state tree. Paths are written with
// dot and bracket syntax:
//
//	a.b[2].c            → ["a", "b", "2", "c"]
//	["Talking Heads"].x → ["Talking Heads", "x"]
//	['a.b'][0]          → ["a.b", "0"]
//
// Array indexes are ordinary keys whose string form is a decimal integer.
// The empty path addresses the root of the tree.
package kpath

import (
	"errors"
	"slices"
	"strconv"
	"strings"
)

// WholeStore is the routing key of changes addressed at the root of the
// state tree.
const WholeStore = "$store"

var ErrInvalidPath = errors.New("invalid path")

// Path is an ordered key sequence. A nil or empty Path is the root.
type Path []string

// IsRoot reports whether p addresses the root.
func (p Path) IsRoot() bool {
	return len(p) == 0
}

// String returns the canonical path syntax for p.
//
// Examples:
//   - Path{"a", "b"} → "a.b"
//   - Path{"todos", "1"} → "todos[1]"
//   - Path{"Talking Heads", "x"} → `["Talking Heads"].x`
func (p Path) String() string {
	var b strings.Builder
	for i, k := range p {
		switch {
		case isIndex(k):
			b.WriteByte('[')
			b.WriteString(k)
			b.WriteByte(']')
		case needsQuote(k):
			b.WriteString(`["`)
			for j := 0; j < len(k); j++ {
				if k[j] == '"' || k[j] == '\\' {
					b.WriteByte('\\')
				}
				b.WriteByte(k[j])
			}
			b.WriteString(`"]`)
		default:
			if i > 0 {
				b.WriteByte('.')
			}
			b.WriteString(k)
		}
	}
	return b.String()
}

// Pointer renders p as an RFC 6901 JSON pointer. The root renders as "".
func (p Path) Pointer() string {
	var b strings.Builder
	for _, k := range p {
		b.WriteByte('/')
		b.WriteString(pointerEscaper.Replace(k))
	}
	return b.String()
}

var pointerEscaper = strings.NewReplacer("~", "~0", "/", "~1")

// Index returns the i'th key of p interpreted as an array index.
func (p Path) Index(i int) (int, bool) {
	if i < 0 || i >= len(p) {
		return 0, false
	}
	return IndexOf(p[i])
}

// HasPrefix reports whether q is a prefix of p.
func (p Path) HasPrefix(q Path) bool {
	return len(q) <= len(p) && slices.Equal(p[:len(q)], q)
}

// Append returns a new path with keys added after p. p is never modified.
func (p Path) Append(keys ...string) Path {
	res := make(Path, 0, len(p)+len(keys))
	res = append(res, p...)
	return append(res, keys...)
}

// Split returns the first key of p and the remainder.
//
//   - Split(Path{"a", "b", "c"}) → ("a", Path{"b", "c"})
//   - Split(Path{"a"}) → ("a", nil)
//   - Split(nil) → ("", nil)
func (p Path) Split() (string, Path) {
	switch len(p) {
	case 0:
		return "", nil
	case 1:
		return p[0], nil
	}
	return p[0], p[1:]
}

// IndexOf interprets key as an array index. Only canonical non-negative
// decimal forms qualify: "0", "12", but not "01", "-1" or "+3".
func IndexOf(key string) (int, bool) {
	if !isIndex(key) {
		return 0, false
	}
	i, err := strconv.Atoi(key)
	if err != nil {
		return 0, false
	}
	return i, true
}

func isIndex(k string) bool {
	if k == "" {
		return false
	}
	if len(k) > 1 && k[0] == '0' {
		return false
	}
	for i := 0; i < len(k); i++ {
		if k[i] < '0' || k[i] > '9' {
			return false
		}
	}
	return true
}

func needsQuote(k string) bool {
	return k == "" || strings.ContainsAny(k, ".[]\"'\\ \t\n")
}

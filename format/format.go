// Package format reads and writes state trees as YAML or JSON.
package format

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

type Format int

const (
	YAMLFormat Format = iota
	JSONFormat
)

var ErrBadFormat = errors.New("bad format")

type info struct {
	name     string
	aliases  []string
	suffixes []string
}

var formats = map[Format]info{
	YAMLFormat: {name: "yaml", aliases: []string{"y"}, suffixes: []string{".yaml", ".yml"}},
	JSONFormat: {name: "json", aliases: []string{"j"}, suffixes: []string{".json"}},
}

// ParseFormat accepts a format name or its one letter alias.
func ParseFormat(v string) (Format, error) {
	for _, f := range AllFormats() {
		fi := formats[f]
		if v == fi.name {
			return f, nil
		}
		for _, a := range fi.aliases {
			if v == a {
				return f, nil
			}
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrBadFormat, v)
}

// ForFile guesses the format of a file from its extension.
func ForFile(name string) (Format, bool) {
	ext := strings.ToLower(filepath.Ext(name))
	for _, f := range AllFormats() {
		for _, s := range formats[f].suffixes {
			if ext == s {
				return f, true
			}
		}
	}
	return 0, false
}

func (f Format) String() string {
	if fi, ok := formats[f]; ok {
		return fi.name
	}
	return fmt.Sprintf("Format(%d)", int(f))
}

func (f Format) MarshalText() ([]byte, error) {
	fi, ok := formats[f]
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrBadFormat, f)
	}
	return []byte(fi.name), nil
}

func (f *Format) UnmarshalText(d []byte) error {
	pf, err := ParseFormat(string(d))
	if err != nil {
		return err
	}
	*f = pf
	return nil
}

// Suffix returns the preferred file extension of f, with the dot.
func (f Format) Suffix() string {
	if fi, ok := formats[f]; ok {
		return fi.suffixes[0]
	}
	return ""
}

// AllFormats returns all supported formats in preference order.
func AllFormats() []Format {
	return []Format{YAMLFormat, JSONFormat}
}

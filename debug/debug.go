package debug

import (
	"fmt"
	"os"

	"github.com/caarlos0/env/v11"
)

type debug struct {
	Path     bool `env:"NBSTORE_DEBUG_PATH"`
	Draft    bool `env:"NBSTORE_DEBUG_DRAFT"`
	Route    bool `env:"NBSTORE_DEBUG_ROUTE"`
	Dispatch bool `env:"NBSTORE_DEBUG_DISPATCH"`
	Apply    bool `env:"NBSTORE_DEBUG_APPLY"`
}

var d *debug

func init() {
	d = &debug{}
	if err := env.Parse(d); err != nil {
		fmt.Fprintf(os.Stderr, "debug: ignoring malformed NBSTORE_DEBUG_* settings: %v\n", err)
		d = &debug{}
	}
}

func Path() bool {
	return d.Path
}
func Draft() bool {
	return d.Draft
}
func Route() bool {
	return d.Route
}
func Dispatch() bool {
	return d.Dispatch
}
func Apply() bool {
	return d.Apply
}

// Enable turns every debug switch on or off. It is meant for tests and for
// the shell command, which toggles tracing interactively.
func Enable(v bool) {
	d = &debug{Path: v, Draft: v, Route: v, Dispatch: v, Apply: v}
}

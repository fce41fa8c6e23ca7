// Package devlog prints every change of a container as the dispatched
// action followed by a line diff of the state.
package devlog

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
	diffpatch "github.com/sergi/go-diff/diffmatchpatch"

	"github.com/signadot/nbstore/container"
	"github.com/signadot/nbstore/fncache"
	"github.com/signadot/nbstore/format"
)

type Option func(*logger)

// Colors forces coloring on or off. By default output is colored when it
// goes to a terminal.
func Colors(v bool) Option {
	return func(l *logger) {
		l.colors = v
		l.colorsSet = true
	}
}

// Format sets the format states are rendered in before diffing. The
// default is YAML.
func Format(f format.Format) Option {
	return func(l *logger) { l.format = f }
}

// Detail prints the whole action document after the action line.
func Detail(v bool) Option {
	return func(l *logger) { l.detail = v }
}

type logger struct {
	mu        sync.Mutex
	w         io.Writer
	format    format.Format
	colors    bool
	colorsSet bool
	detail    bool
	palette   *palette
}

type palette struct {
	header, del, ins, same func(a ...any) string
}

func newPalette(enabled bool) *palette {
	mk := func(attrs ...color.Attribute) func(a ...any) string {
		c := color.New(attrs...)
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
		return c.SprintFunc()
	}
	return &palette{
		header: mk(color.Bold, color.FgCyan),
		del:    mk(color.FgRed),
		ins:    mk(color.FgGreen),
		same:   mk(color.Faint),
	}
}

// New returns a listener printing changes to w.
func New(w io.Writer, opts ...Option) container.Listener {
	l := &logger{w: w, format: format.YAMLFormat}
	for _, o := range opts {
		o(l)
	}
	if !l.colorsSet {
		if f, ok := w.(*os.File); ok && isatty.IsTerminal(f.Fd()) {
			l.colors = true
		}
	}
	l.palette = newPalette(l.colors)
	return l.log
}

func (l *logger) log(ch container.Change) {
	s, err := render(ch, l.format, l.detail, l.palette)
	l.mu.Lock()
	defer l.mu.Unlock()
	if err != nil {
		fmt.Fprintf(l.w, "devlog: %v\n", err)
		return
	}
	io.WriteString(l.w, s)
}

// Render returns the text New prints for ch, without colors.
func Render(ch container.Change, f format.Format, detail bool) (string, error) {
	return render(ch, f, detail, newPalette(false))
}

func render(ch container.Change, f format.Format, detail bool, p *palette) (string, error) {
	var b strings.Builder
	a := ch.Action
	header := a.String()
	if a.Tagged() {
		header += " from " + fncache.Describe(a.Fn)
	}
	b.WriteString(p.header(header))
	b.WriteByte('\n')
	if detail {
		d, err := format.Encode(f, a.Doc())
		if err != nil {
			return "", err
		}
		writeLines(&b, string(d), "    ", p.same)
	}
	prev, err := format.Encode(f, ch.Prev)
	if err != nil {
		return "", err
	}
	next, err := format.Encode(f, ch.Next)
	if err != nil {
		return "", err
	}
	if string(prev) == string(next) {
		b.WriteString(p.same("  (no change)"))
		b.WriteByte('\n')
		return b.String(), nil
	}
	dmp := diffpatch.New()
	c1, c2, lines := dmp.DiffLinesToChars(string(prev), string(next))
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(c1, c2, false), lines)
	for _, d := range diffs {
		var prefix string
		var paint func(a ...any) string
		switch d.Type {
		case diffpatch.DiffDelete:
			prefix, paint = "- ", p.del
		case diffpatch.DiffInsert:
			prefix, paint = "+ ", p.ins
		default:
			prefix, paint = "  ", p.same
		}
		writeLines(&b, d.Text, prefix, paint)
	}
	return b.String(), nil
}

func writeLines(b *strings.Builder, text, prefix string, paint func(a ...any) string) {
	for _, line := range strings.SplitAfter(text, "\n") {
		if line == "" {
			continue
		}
		b.WriteString(paint(prefix + strings.TrimSuffix(line, "\n")))
		b.WriteByte('\n')
	}
}

package devlog

import (
	"bytes"
	"strings"
	"testing"

	"github.com/signadot/nbstore/action"
	"github.com/signadot/nbstore/container"
	"github.com/signadot/nbstore/draft"
	"github.com/signadot/nbstore/format"
	"github.com/signadot/nbstore/kpath"
	"github.com/signadot/nbstore/patch"
)

func TestRender(t *testing.T) {
	ch := container.Change{
		Action: &action.Action{
			Type:       "UPDATE_COUNT",
			Kind:       draft.KindPatch,
			RoutingKey: "count",
			Patches:    []patch.Patch{patch.Set(kpath.Path{"count"}, 2)},
		},
		Prev: map[string]any{"count": 1, "name": "x"},
		Next: map[string]any{"count": 2, "name": "x"},
	}
	got, err := Render(ch, format.YAMLFormat, false)
	if err != nil {
		t.Fatal(err)
	}
	want := "UPDATE_COUNT (count, 1 patches) from value\n- count: 1\n+ count: 2\n  name: x\n"
	if got != want {
		t.Errorf("got\n%s\nwant\n%s", got, want)
	}
}

func TestRenderNoChange(t *testing.T) {
	ch := container.Change{Action: action.New("NOOP", nil), Prev: 1, Next: 1}
	got, err := Render(ch, format.JSONFormat, false)
	if err != nil {
		t.Fatal(err)
	}
	if got != "NOOP\n  (no change)\n" {
		t.Errorf("got %q", got)
	}
}

func TestRenderDetail(t *testing.T) {
	ch := container.Change{
		Action: &action.Action{
			Type:       "REPLACE_STORE",
			Kind:       draft.KindReplace,
			RoutingKey: "$store",
			Value:      3,
		},
		Prev: 2,
		Next: 3,
	}
	got, err := Render(ch, format.YAMLFormat, true)
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{
		"REPLACE_STORE ($store, replace) from value\n",
		"    kind: replace\n",
		"    routingKey: ",
		"    value: 3\n",
		"- 2\n+ 3\n",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("output lacks %q:\n%s", want, got)
		}
	}
}

func TestListener(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, Colors(false))
	l(container.Change{Action: action.New("A", nil), Prev: nil, Next: map[string]any{"a": 1}})
	out := buf.String()
	if !strings.HasPrefix(out, "A\n") || !strings.Contains(out, "+ a: 1") {
		t.Errorf("unexpected output %q", out)
	}
	if strings.Contains(out, "\x1b[") {
		t.Errorf("colors were not disabled")
	}
}

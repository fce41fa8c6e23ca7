package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/signadot/nbstore"
	"github.com/signadot/nbstore/container"
	"github.com/signadot/nbstore/debug"
	"github.com/signadot/nbstore/devlog"
	"github.com/signadot/nbstore/format"

	"github.com/google/gops/agent"
	"github.com/mattn/go-isatty"
	"github.com/scott-cotton/cli"
)

const shellHelp = `shell runs a line oriented session against a store holding the document
in file, or an empty store.

Commands:
  set <path> <yaml>    set the value at path
  expr <path> <expr>   transform the value at path with an expression
  get [path]           print the value at path
  state                print the whole state
  routes               list the routed keys
  trace on|off         toggle debug tracing of updates
  help                 print this message
  quit                 leave the shell

The path '$' addresses the whole state. Every change is printed as the
dispatched action followed by a diff of the state.`

func shell(cfg *ShellConfig, cc *cli.Context, args []string) error {
	args, err := cfg.Shell.Parse(cc, args)
	if err != nil {
		cfg.Shell.Usage(cc, err)
		return cli.ExitCodeErr(1)
	}
	if len(args) > 1 {
		return fmt.Errorf("%w: shell takes at most one file", cli.ErrUsage)
	}
	if cfg.Gops {
		if err := agent.Listen(agent.Options{}); err != nil {
			theLog.Warn("gops agent failed", "error", err)
		}
		defer agent.Close()
	}
	var doc any
	if len(args) == 1 {
		doc, err = readDoc(cfg.MainConfig, cc, args[0])
		if err != nil {
			return err
		}
	}
	sh := newShell(doc, cc.Out, cfg.outFormat(), cfg.colors(cc.Out))
	var in io.Reader = cc.In
	prompt := false
	if f, ok := in.(*os.File); ok {
		prompt = isatty.IsTerminal(f.Fd())
	}
	return sh.run(in, prompt)
}

type nbShell struct {
	store  *nbstore.Store
	c      *container.Container
	out    io.Writer
	format format.Format
}

func newShell(doc any, out io.Writer, f format.Format, colors bool) *nbShell {
	s, c := nbstore.Create(container.Config{PreloadedState: doc, Log: theLog})
	c.Subscribe(devlog.New(out, devlog.Colors(colors), devlog.Format(f)))
	return &nbShell{store: s, c: c, out: out, format: f}
}

func (sh *nbShell) run(in io.Reader, prompt bool) error {
	scanner := bufio.NewScanner(in)
	for {
		if prompt {
			fmt.Fprint(sh.out, "nbs> ")
		}
		if !scanner.Scan() {
			return scanner.Err()
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		quit, err := sh.exec(line)
		if err != nil {
			fmt.Fprintf(sh.out, "error: %v\n", err)
		}
		if quit {
			return nil
		}
	}
}

func (sh *nbShell) exec(line string) (bool, error) {
	cmd, rest, _ := strings.Cut(line, " ")
	rest = strings.TrimSpace(rest)
	switch cmd {
	case "quit", "exit":
		return true, nil
	case "help":
		fmt.Fprintln(sh.out, shellHelp)
	case "state":
		return false, sh.print(sh.c.GetState())
	case "routes":
		for _, k := range sh.store.Table().Keys() {
			fmt.Fprintln(sh.out, k)
		}
	case "trace":
		switch rest {
		case "on", "off":
			debug.SetOutput(sh.out)
			debug.Enable(rest == "on")
		default:
			return false, fmt.Errorf("trace takes on or off")
		}
	case "get":
		v, err := sh.store.Get(shellPath(rest))
		if err != nil {
			return false, err
		}
		return false, sh.print(v)
	case "set", "expr":
		p, arg, ok := strings.Cut(rest, " ")
		if !ok {
			return false, fmt.Errorf("%s requires a path and an argument", cmd)
		}
		var v any = nbstore.Expr(strings.TrimSpace(arg))
		if cmd == "set" {
			dv, err := format.Decode(format.YAMLFormat, []byte(arg))
			if err != nil {
				return false, err
			}
			v = dv
		}
		_, err := sh.store.Set(shellPath(p), v)
		return false, err
	default:
		return false, fmt.Errorf("unknown command %q, try help", cmd)
	}
	return false, nil
}

func (sh *nbShell) print(v any) error {
	d, err := format.Encode(sh.format, v)
	if err != nil {
		return err
	}
	_, err = sh.out.Write(d)
	return err
}

func shellPath(p string) string {
	if p == "$" {
		return ""
	}
	return p
}

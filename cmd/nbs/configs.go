package main

import (
	"fmt"
	"io"
	"os"

	"github.com/signadot/nbstore/format"

	"github.com/scott-cotton/cli"

	"github.com/mattn/go-isatty"
)

type MainConfig struct {
	Color bool `cli:"name=color desc='color diffs and action logs'"`

	J bool `cli:"name=j aliases=json desc='do i/o in json'"`
	Y bool `cli:"name=y aliases=yaml desc='do i/o in yaml'"`

	InFormat, OutFormat *format.Format

	Out      string
	CloseOut func() error

	Main *cli.Command
}

func (cfg *MainConfig) fmtFunc(fps ...**format.Format) cli.FuncOpt {
	return cli.FuncOpt(func(_ *cli.Context, v string) (any, error) {
		f, err := format.ParseFormat(v)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", cli.ErrUsage, err)
		}
		for _, fp := range fps {
			*fp = &f
		}
		return f, nil
	})
}

func (cfg *MainConfig) ioFormat(override *format.Format) format.Format {
	f := format.YAMLFormat
	if cfg.J {
		f = format.JSONFormat
	}
	if override != nil {
		f = *override
	}
	return f
}

func (cfg *MainConfig) inFormat() format.Format {
	return cfg.ioFormat(cfg.InFormat)
}

// fileFormat is the input format, unless neither -I nor -j/-y was given
// and the file name says otherwise.
func (cfg *MainConfig) fileFormat(file string) format.Format {
	if cfg.InFormat != nil || cfg.J || cfg.Y {
		return cfg.inFormat()
	}
	if f, ok := format.ForFile(file); ok {
		return f
	}
	return cfg.inFormat()
}

func (cfg *MainConfig) outFormat() format.Format {
	return cfg.ioFormat(cfg.OutFormat)
}

// colors reports whether output to w is colored: -color wins when given,
// otherwise w must be a terminal.
func (cfg *MainConfig) colors(w io.Writer) bool {
	if cfg.Color {
		return true
	}
	for _, opt := range cfg.Main.Opts {
		if opt.Name != "color" {
			continue
		}
		if opt.Value != nil {
			return false
		}
		break
	}
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd())
}

type GetConfig struct {
	*MainConfig

	Get *cli.Command
}

type SetConfig struct {
	*MainConfig
	Expr    bool   `cli:"name=e desc='value is an expression over the current value'"`
	Suffix  string `cli:"name=s desc='action type suffix'"`
	Verbose bool   `cli:"name=v desc='log the dispatched actions to stderr'"`

	Set *cli.Command
}

type DiffConfig struct {
	*MainConfig
	JSONPatch bool `cli:"name=jsonpatch desc='output an RFC 6902 JSON patch'"`

	Diff *cli.Command
}

type PatchConfig struct {
	*MainConfig

	Patch *cli.Command
}

type ShellConfig struct {
	*MainConfig
	Gops bool `cli:"name=gops desc='start a gops agent'"`

	Shell *cli.Command
}

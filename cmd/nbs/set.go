package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/signadot/nbstore"
	"github.com/signadot/nbstore/container"
	"github.com/signadot/nbstore/devlog"
	"github.com/signadot/nbstore/format"

	"github.com/scott-cotton/cli"
)

func set(cfg *SetConfig, cc *cli.Context, args []string) error {
	args, err := cfg.Set.Parse(cc, args)
	if err != nil {
		cfg.Set.Usage(cc, err)
		return cli.ExitCodeErr(1)
	}
	if len(args) < 2 || len(args) > 3 {
		return fmt.Errorf("%w: set requires a path, a value and at most one file", cli.ErrUsage)
	}
	doc, err := readDoc(cfg.MainConfig, cc, optArg(args, 2))
	if err != nil {
		return err
	}
	val, err := cfg.value(args[1])
	if err != nil {
		return err
	}
	s, c := nbstore.Create(container.Config{PreloadedState: doc, Log: theLog})
	if cfg.Verbose {
		logLevel.Set(slog.LevelDebug)
		c.Subscribe(devlog.New(os.Stderr, devlog.Colors(cfg.colors(os.Stderr)), devlog.Format(cfg.outFormat()), devlog.Detail(true)))
	}
	var custom any
	if cfg.Suffix != "" {
		custom = cfg.Suffix
	}
	if _, err := s.Set(args[0], val, custom); err != nil {
		return fmt.Errorf("error setting %s: %w", args[0], err)
	}
	return writeDoc(cfg.MainConfig, cc.Out, c.GetState())
}

func (cfg *SetConfig) value(arg string) (any, error) {
	if cfg.Expr {
		return nbstore.Expr(arg), nil
	}
	v, err := format.Decode(format.YAMLFormat, []byte(arg))
	if err != nil {
		return nil, fmt.Errorf("%w: value %q: %w", cli.ErrUsage, arg, err)
	}
	return v, nil
}

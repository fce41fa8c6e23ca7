package main

import (
	"fmt"

	"github.com/signadot/nbstore/kpath"
	"github.com/signadot/nbstore/tree"

	"github.com/scott-cotton/cli"
)

func get(cfg *GetConfig, cc *cli.Context, args []string) error {
	args, err := cfg.Get.Parse(cc, args)
	if err != nil {
		cfg.Get.Usage(cc, err)
		return cli.ExitCodeErr(1)
	}
	if len(args) == 0 || len(args) > 2 {
		return fmt.Errorf("%w: get requires a path and at most one file", cli.ErrUsage)
	}
	p, err := kpath.Parse(args[0])
	if err != nil {
		return fmt.Errorf("%w: %w", cli.ErrUsage, err)
	}
	doc, err := readDoc(cfg.MainConfig, cc, optArg(args, 1))
	if err != nil {
		return err
	}
	v, ok := tree.Get(doc, p)
	if !ok {
		return fmt.Errorf("no value at %s", p)
	}
	return writeDoc(cfg.MainConfig, cc.Out, v)
}

package main

import (
	"fmt"

	"github.com/signadot/nbstore/patch"

	"github.com/scott-cotton/cli"
)

func patchCmd(cfg *PatchConfig, cc *cli.Context, args []string) error {
	args, err := cfg.Patch.Parse(cc, args)
	if err != nil {
		cfg.Patch.Usage(cc, err)
		return cli.ExitCodeErr(1)
	}
	if len(args) == 0 || len(args) > 2 {
		return fmt.Errorf("%w: patch requires a patch document and at most one file", cli.ErrUsage)
	}
	pdoc, err := readDoc(cfg.MainConfig, cc, args[0])
	if err != nil {
		return err
	}
	ps, err := patch.FromDoc(pdoc)
	if err != nil {
		return fmt.Errorf("%w: %w", cli.ErrUsage, err)
	}
	target, err := readDoc(cfg.MainConfig, cc, optArg(args, 1))
	if err != nil {
		return err
	}
	res, err := patch.Apply(target, ps)
	if err != nil {
		return fmt.Errorf("error patching: %w", err)
	}
	return writeDoc(cfg.MainConfig, cc.Out, res)
}

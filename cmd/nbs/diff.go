package main

import (
	"encoding/json"
	"fmt"

	"github.com/signadot/nbstore/patch"

	"github.com/scott-cotton/cli"
)

func diff(cfg *DiffConfig, cc *cli.Context, args []string) error {
	args, err := cfg.Diff.Parse(cc, args)
	if err != nil {
		cfg.Diff.Usage(cc, err)
		return cli.ExitCodeErr(1)
	}
	if len(args) != 2 {
		return fmt.Errorf("%w: diff requires 2 args, got %v", cli.ErrUsage, args)
	}
	a, err := readDoc(cfg.MainConfig, cc, args[0])
	if err != nil {
		return err
	}
	b, err := readDoc(cfg.MainConfig, cc, args[1])
	if err != nil {
		return err
	}
	ps := patch.Diff(a, b)
	if cfg.JSONPatch {
		jp, err := patch.ToJSONPatch(a, ps)
		if err != nil {
			return fmt.Errorf("error converting to json patch: %w", err)
		}
		d, err := json.MarshalIndent(jp, "", "  ")
		if err != nil {
			return err
		}
		if _, err := cc.Out.Write(append(d, '\n')); err != nil {
			return err
		}
	} else if err := writeDoc(cfg.MainConfig, cc.Out, patch.ToDoc(ps)); err != nil {
		return err
	}
	if len(ps) != 0 {
		return cli.ExitCodeErr(1)
	}
	return nil
}

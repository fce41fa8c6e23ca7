package fncache

import (
	"fmt"
	"strings"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/signadot/nbstore/draft"
	"github.com/signadot/nbstore/kpath"
	"github.com/signadot/nbstore/tree"
)

// CompileExpr compiles an expression into a transform.
//
// The expression sees the current value as `value` and the path as `path`
// (a list of strings), and may use
//
//	getpath(v, "a.b[0]")       the value at a path in v, or nil
//	setpath(v, "a.b", x)       a copy of v with x placed at the path
//
// in addition to the expr builtins. For example
//
//	value + 1
//	concat(value, [{"text": "b"}])
//	setpath(value, "done", true)
func CompileExpr(src string) (draft.TransformFunc, error) {
	prg, err := expr.Compile(src, exprOpts()...)
	if err != nil {
		return nil, err
	}
	return func(cur any, p kpath.Path) (any, error) {
		return runExpr(prg, cur, p)
	}, nil
}

// StoreExpr compiles src and stores it under its expression token.
func (c *Cache) StoreExpr(src string) (string, error) {
	f, err := CompileExpr(src)
	if err != nil {
		return "", err
	}
	token := ExprPrefix + src
	c.mu.Lock()
	c.fns[token] = f
	c.mu.Unlock()
	return token, nil
}

func runExpr(prg *vm.Program, cur any, p kpath.Path) (any, error) {
	env := map[string]any{
		"value": cur,
		"path":  []string(p.Append()),
	}
	res, err := expr.Run(prg, env)
	if err != nil {
		return nil, err
	}
	return tree.Normalize(res)
}

func exprOpts() []expr.Option {
	return []expr.Option{
		expr.AllowUndefinedVariables(),
		expr.Function("getpath", func(params ...any) (any, error) {
			p, err := kpath.Parse(params[1].(string))
			if err != nil {
				return nil, err
			}
			v, _ := tree.Get(params[0], p)
			return v, nil
		},
			new(func(any, string) any)),
		expr.Function("setpath", func(params ...any) (any, error) {
			p, err := kpath.Parse(params[1].(string))
			if err != nil {
				return nil, err
			}
			base, err := tree.Normalize(params[0])
			if err != nil {
				return nil, err
			}
			x, err := tree.Normalize(params[2])
			if err != nil {
				return nil, err
			}
			e := tree.NewEditor(base)
			e.Set(p, x)
			return e.Root(), nil
		},
			new(func(any, string, any) any)),
	}
}

// Describe renders a token for humans.
func Describe(token string) string {
	if token == "" {
		return "value"
	}
	if src, ok := strings.CutPrefix(token, ExprPrefix); ok {
		return fmt.Sprintf("expression %q", src)
	}
	return "function " + token
}

package kpath

import (
	"fmt"
	"strconv"

	"github.com/signadot/nbstore/debug"
)

// Resolved is a normalized path argument.
type Resolved struct {
	Keys       Path
	RoutingKey string
}

// IsRoot reports whether r addresses the whole tree.
func (r Resolved) IsRoot() bool {
	return len(r.Keys) == 0
}

// Resolve normalizes a path argument.
//
// Accepted inputs:
//   - nil → root
//   - string → Parse; an empty result is the root
//   - Path or []string → used as-is (copied); empty is the root
//   - []any whose elements are strings or integers
//   - []int → index keys
//   - an integer → a single index key
//
// Any other input fails with ErrInvalidPath.
func Resolve(p any) (Resolved, error) {
	var keys Path
	switch x := p.(type) {
	case nil:
	case string:
		parsed, err := Parse(x)
		if err != nil {
			return Resolved{}, err
		}
		keys = parsed
	case Path:
		keys = x.Append()
	case []string:
		keys = Path(x).Append()
	case []any:
		keys = make(Path, 0, len(x))
		for i, e := range x {
			k, err := keyOf(e)
			if err != nil {
				return Resolved{}, fmt.Errorf("%w: element %d: %w", ErrInvalidPath, i, err)
			}
			keys = append(keys, k)
		}
	case []int:
		keys = make(Path, len(x))
		for i, n := range x {
			keys[i] = strconv.Itoa(n)
		}
	case Resolved:
		return Resolve(x.Keys)
	case int, int64, int32, uint, uint64, uint32:
		k, _ := keyOf(x)
		keys = Path{k}
	default:
		return Resolved{}, fmt.Errorf("%w: expected string or key sequence, got %T", ErrInvalidPath, p)
	}
	res := Resolved{RoutingKey: WholeStore}
	if len(keys) != 0 {
		res.Keys = keys
		res.RoutingKey = keys[0]
	}
	if debug.Path() {
		debug.Logf("resolved %#v -> %q (routing key %q)\n", p, res.Keys.String(), res.RoutingKey)
	}
	return res, nil
}

func keyOf(e any) (string, error) {
	switch k := e.(type) {
	case string:
		return k, nil
	case int:
		return strconv.Itoa(k), nil
	case int64:
		return strconv.FormatInt(k, 10), nil
	case int32:
		return strconv.FormatInt(int64(k), 10), nil
	case uint:
		return strconv.FormatUint(uint64(k), 10), nil
	case uint64:
		return strconv.FormatUint(k, 10), nil
	case uint32:
		return strconv.FormatUint(uint64(k), 10), nil
	default:
		return "", fmt.Errorf("unsupported key type %T", e)
	}
}

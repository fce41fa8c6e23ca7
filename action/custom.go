package action

import (
	"errors"
	"fmt"
	"maps"

	"github.com/signadot/nbstore/tree"
)

var ErrInvalidCustomization = errors.New("invalid action customization")

// Customization adjusts the overridable fields of a built action.
type Customization struct {
	// Suffix is upper-cased and appended to the type with an underscore.
	Suffix  string
	Type    string
	Payload any
	Meta    map[string]any
}

// keys which are never taken from an object customization.
var fixedKeys = map[string]bool{
	"kind":       true,
	"patches":    true,
	"value":      true,
	"routingKey": true,
	"fn":         true,
}

// ParseCustomization interprets the customization argument of an update.
//
//   - nil: no customization
//   - string: a type suffix
//   - an object: "type", "payload" and "meta" override those fields;
//     an object "meta" merges into Meta, as do all other keys except the
//     fixed fields of the action, which are ignored
//   - Customization or *Customization: used as is
func ParseCustomization(c any) (Customization, error) {
	switch x := c.(type) {
	case nil:
		return Customization{}, nil
	case string:
		return Customization{Suffix: x}, nil
	case Customization:
		return x, nil
	case *Customization:
		if x == nil {
			return Customization{}, nil
		}
		return *x, nil
	}
	norm, err := tree.Normalize(c)
	if err != nil {
		return Customization{}, fmt.Errorf("%w: %w", ErrInvalidCustomization, err)
	}
	m, ok := norm.(map[string]any)
	if !ok {
		return Customization{}, fmt.Errorf("%w: expected string or object, got %T", ErrInvalidCustomization, c)
	}
	var res Customization
	for _, k := range tree.SortedKeys(m) {
		v := m[k]
		switch {
		case fixedKeys[k]:
		case k == "type":
			s, ok := v.(string)
			if !ok {
				return Customization{}, fmt.Errorf("%w: type must be a string, got %T", ErrInvalidCustomization, v)
			}
			res.Type = s
		case k == "payload":
			res.Payload = v
		case k == "meta":
			if mm, ok := v.(map[string]any); ok {
				res.Meta = merge(res.Meta, mm)
				continue
			}
			res.Meta = merge(res.Meta, map[string]any{k: v})
		default:
			res.Meta = merge(res.Meta, map[string]any{k: v})
		}
	}
	return res, nil
}

func merge(dst, src map[string]any) map[string]any {
	if dst == nil {
		dst = make(map[string]any, len(src))
	}
	maps.Copy(dst, src)
	return dst
}

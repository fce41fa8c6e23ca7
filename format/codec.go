package format

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"

	"github.com/goccy/go-yaml"
)

// Decode parses d as a single document in format f. Numbers come out as
// int64 when integral and representable, float64 otherwise. An empty
// document decodes to nil.
func Decode(f Format, d []byte) (any, error) {
	if len(bytes.TrimSpace(d)) == 0 {
		return nil, nil
	}
	var v any
	switch f {
	case YAMLFormat:
		if err := yaml.Unmarshal(d, &v); err != nil {
			return nil, err
		}
	case JSONFormat:
		dec := json.NewDecoder(bytes.NewReader(d))
		dec.UseNumber()
		if err := dec.Decode(&v); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("%w: %d", ErrBadFormat, f)
	}
	return canon(v), nil
}

// Encode renders v in format f, with a trailing newline.
func Encode(f Format, v any) ([]byte, error) {
	switch f {
	case YAMLFormat:
		return yaml.MarshalWithOptions(v, yaml.Indent(2), yaml.IndentSequence(true))
	case JSONFormat:
		d, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return nil, err
		}
		return append(d, '\n'), nil
	}
	return nil, fmt.Errorf("%w: %d", ErrBadFormat, f)
}

func canon(v any) any {
	switch x := v.(type) {
	case map[string]any:
		for k, c := range x {
			x[k] = canon(c)
		}
		return x
	case map[any]any:
		m := make(map[string]any, len(x))
		for k, c := range x {
			m[fmt.Sprint(k)] = canon(c)
		}
		return m
	case []any:
		for i, c := range x {
			x[i] = canon(c)
		}
		return x
	case uint64:
		if x <= math.MaxInt64 {
			return int64(x)
		}
		return float64(x)
	case json.Number:
		if i, err := x.Int64(); err == nil {
			return i
		}
		f, err := x.Float64()
		if err != nil {
			return x.String()
		}
		return f
	}
	return v
}

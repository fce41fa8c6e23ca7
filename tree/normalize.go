package tree

import (
	"encoding"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"
)

var ErrUnsupported = errors.New("unsupported value")

// NormalizeError reports a value that cannot be represented as a tree.
type NormalizeError struct {
	FieldPath string
	Message   string
}

func (e *NormalizeError) Error() string {
	if e.FieldPath == "" {
		return fmt.Sprintf("%s: %s", ErrUnsupported, e.Message)
	}
	return fmt.Sprintf("%s at %s: %s", ErrUnsupported, e.FieldPath, e.Message)
}

func (e *NormalizeError) Is(target error) bool {
	return target == ErrUnsupported
}

// Normalize converts typed Go values into canonical tree shapes: maps with
// string (or integer) keys become map[string]any, slices and arrays become
// []any, pointers are dereferenced, structs become objects keyed by their
// json field names, and named scalar types become their underlying type.
//
// Canonical input is returned as is: Normalize only copies containers
// which hold something that had to be converted.
func Normalize(v any) (any, error) {
	return normalize(v, "", map[uintptr]string{})
}

func normalize(v any, fieldPath string, visited map[uintptr]string) (any, error) {
	switch x := v.(type) {
	case nil, bool, string, json.Number,
		int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64,
		float32, float64:
		return v, nil
	case map[string]any:
		return normalizeObject(x, fieldPath, visited)
	case []any:
		return normalizeArray(x, fieldPath, visited)
	}
	return normalizeValue(reflect.ValueOf(v), fieldPath, visited)
}

func normalizeObject(m map[string]any, fieldPath string, visited map[uintptr]string) (any, error) {
	if m == nil {
		return m, nil
	}
	if err := enter(reflect.ValueOf(m).Pointer(), fieldPath, visited); err != nil {
		return nil, err
	}
	defer delete(visited, reflect.ValueOf(m).Pointer())
	var res map[string]any
	for k, c := range m {
		nc, err := normalize(c, joinField(fieldPath, k), visited)
		if err != nil {
			return nil, err
		}
		if res == nil && !Same(c, nc) {
			res = make(map[string]any, len(m))
			for k2, c2 := range m {
				res[k2] = c2
			}
		}
		if res != nil {
			res[k] = nc
		}
	}
	if res == nil {
		return m, nil
	}
	return res, nil
}

func normalizeArray(a []any, fieldPath string, visited map[uintptr]string) (any, error) {
	if len(a) == 0 {
		return a, nil
	}
	if err := enter(reflect.ValueOf(a).Pointer(), fieldPath, visited); err != nil {
		return nil, err
	}
	defer delete(visited, reflect.ValueOf(a).Pointer())
	var res []any
	for i, c := range a {
		nc, err := normalize(c, joinIndex(fieldPath, i), visited)
		if err != nil {
			return nil, err
		}
		if res == nil && !Same(c, nc) {
			res = make([]any, len(a))
			copy(res, a)
		}
		if res != nil {
			res[i] = nc
		}
	}
	if res == nil {
		return a, nil
	}
	return res, nil
}

func normalizeValue(val reflect.Value, fieldPath string, visited map[uintptr]string) (any, error) {
	if !val.IsValid() {
		return nil, nil
	}
	kind := val.Kind()
	switch kind {
	case reflect.Pointer, reflect.Interface:
		if val.IsNil() {
			return nil, nil
		}
	case reflect.Func:
		if val.IsNil() {
			return nil, nil
		}
		return val.Interface(), nil
	}
	if val.CanInterface() {
		if tm, ok := val.Interface().(encoding.TextMarshaler); ok {
			text, err := tm.MarshalText()
			if err != nil {
				return nil, &NormalizeError{FieldPath: fieldPath, Message: err.Error()}
			}
			return string(text), nil
		}
	}
	switch kind {
	case reflect.Pointer:
		ptr := val.Pointer()
		if err := enter(ptr, fieldPath, visited); err != nil {
			return nil, err
		}
		defer delete(visited, ptr)
		return normalizeValue(val.Elem(), fieldPath, visited)
	case reflect.Interface:
		return normalize(val.Elem().Interface(), fieldPath, visited)
	case reflect.String:
		return val.String(), nil
	case reflect.Bool:
		return val.Bool(), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return val.Int(), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return val.Uint(), nil
	case reflect.Float32, reflect.Float64:
		return val.Float(), nil
	case reflect.Slice:
		if val.IsNil() {
			return nil, nil
		}
		if val.Type().Elem().Kind() == reflect.Uint8 {
			return string(val.Bytes()), nil
		}
		ptr := val.Pointer()
		if err := enter(ptr, fieldPath, visited); err != nil {
			return nil, err
		}
		defer delete(visited, ptr)
		return normalizeSeq(val, fieldPath, visited)
	case reflect.Array:
		return normalizeSeq(val, fieldPath, visited)
	case reflect.Map:
		if val.IsNil() {
			return nil, nil
		}
		ptr := val.Pointer()
		if err := enter(ptr, fieldPath, visited); err != nil {
			return nil, err
		}
		defer delete(visited, ptr)
		return normalizeMap(val, fieldPath, visited)
	case reflect.Struct:
		return normalizeStruct(val, fieldPath, visited)
	}
	return nil, &NormalizeError{FieldPath: fieldPath, Message: fmt.Sprintf("cannot represent %s", val.Type())}
}

func normalizeSeq(val reflect.Value, fieldPath string, visited map[uintptr]string) (any, error) {
	res := make([]any, val.Len())
	for i := range res {
		c, err := normalizeValue(val.Index(i), joinIndex(fieldPath, i), visited)
		if err != nil {
			return nil, err
		}
		res[i] = c
	}
	return res, nil
}

func normalizeMap(val reflect.Value, fieldPath string, visited map[uintptr]string) (any, error) {
	res := make(map[string]any, val.Len())
	iter := val.MapRange()
	for iter.Next() {
		k, err := mapKey(iter.Key())
		if err != nil {
			return nil, &NormalizeError{FieldPath: fieldPath, Message: err.Error()}
		}
		c, err := normalizeValue(iter.Value(), joinField(fieldPath, k), visited)
		if err != nil {
			return nil, err
		}
		res[k] = c
	}
	return res, nil
}

func mapKey(k reflect.Value) (string, error) {
	if tm, ok := k.Interface().(encoding.TextMarshaler); ok {
		text, err := tm.MarshalText()
		if err != nil {
			return "", err
		}
		return string(text), nil
	}
	switch k.Kind() {
	case reflect.String:
		return k.String(), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(k.Int(), 10), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return strconv.FormatUint(k.Uint(), 10), nil
	}
	return "", fmt.Errorf("unsupported map key type %s", k.Type())
}

func normalizeStruct(val reflect.Value, fieldPath string, visited map[uintptr]string) (any, error) {
	typ := val.Type()
	res := make(map[string]any, typ.NumField())
	for i := 0; i < typ.NumField(); i++ {
		f := typ.Field(i)
		if !f.IsExported() {
			continue
		}
		name, omitEmpty, skip := fieldName(f)
		if skip {
			continue
		}
		fv := val.Field(i)
		if omitEmpty && fv.IsZero() {
			continue
		}
		c, err := normalizeValue(fv, joinField(fieldPath, name), visited)
		if err != nil {
			return nil, err
		}
		res[name] = c
	}
	return res, nil
}

// fieldName reads the json tag of f, as encoding/json would.
func fieldName(f reflect.StructField) (name string, omitEmpty, skip bool) {
	tag, ok := f.Tag.Lookup("json")
	if !ok {
		return f.Name, false, false
	}
	if tag == "-" {
		return "", false, true
	}
	name, opts, _ := strings.Cut(tag, ",")
	if name == "" {
		name = f.Name
	}
	for opts != "" {
		var opt string
		opt, opts, _ = strings.Cut(opts, ",")
		if opt == "omitempty" || opt == "omitzero" {
			omitEmpty = true
		}
	}
	return name, omitEmpty, false
}

func enter(ptr uintptr, fieldPath string, visited map[uintptr]string) error {
	if prev, seen := visited[ptr]; seen {
		return &NormalizeError{
			FieldPath: fieldPath,
			Message:   fmt.Sprintf("circular reference (previously seen at %q)", prev),
		}
	}
	visited[ptr] = fieldPath
	return nil
}

func joinField(fieldPath, k string) string {
	if fieldPath == "" {
		return k
	}
	return fieldPath + "." + k
}

func joinIndex(fieldPath string, i int) string {
	return fieldPath + "[" + strconv.Itoa(i) + "]"
}

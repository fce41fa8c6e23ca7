package tree

import (
	"encoding/json"
	"math"
	"strconv"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

var equalOpts = cmp.Options{
	cmp.FilterValues(bothNumbers, cmp.Comparer(numbersEqual)),
	cmpopts.EquateEmpty(),
}

// Equal reports whether a and b are deeply equal trees. Numbers compare by
// value regardless of their Go type, so int(1), float64(1) and
// json.Number("1") are equal. Nil and empty containers of the same kind are
// equal. Functions are equal only when both are nil.
func Equal(a, b any) bool {
	return cmp.Equal(a, b, equalOpts)
}

// Diff returns a human readable report of the differences between a and b,
// or "" when they are Equal.
func Diff(a, b any) string {
	return cmp.Diff(a, b, equalOpts)
}

func bothNumbers(x, y any) bool {
	return x != nil && y != nil && KindOf(x) == Number && KindOf(y) == Number
}

func numbersEqual(x, y any) bool {
	xi, xIsInt := asInt(x)
	yi, yIsInt := asInt(y)
	if xIsInt && yIsInt {
		return xi == yi
	}
	return AsFloat(x) == AsFloat(y)
}

func asInt(v any) (int64, bool) {
	switch n := v.(type) {
	case int:
		return int64(n), true
	case int8:
		return int64(n), true
	case int16:
		return int64(n), true
	case int32:
		return int64(n), true
	case int64:
		return n, true
	case uint:
		return uintAsInt(uint64(n))
	case uint8:
		return int64(n), true
	case uint16:
		return int64(n), true
	case uint32:
		return int64(n), true
	case uint64:
		return uintAsInt(n)
	case json.Number:
		i, err := n.Int64()
		return i, err == nil
	case float64:
		return floatAsInt(n)
	case float32:
		return floatAsInt(float64(n))
	}
	return 0, false
}

func uintAsInt(u uint64) (int64, bool) {
	if u > math.MaxInt64 {
		return 0, false
	}
	return int64(u), true
}

func floatAsInt(f float64) (int64, bool) {
	if f != math.Trunc(f) || f < math.MinInt64 || f >= math.MaxInt64 {
		return 0, false
	}
	return int64(f), true
}

// AsFloat converts a number to float64. Non numbers convert to NaN.
func AsFloat(v any) float64 {
	switch n := v.(type) {
	case int:
		return float64(n)
	case int8:
		return float64(n)
	case int16:
		return float64(n)
	case int32:
		return float64(n)
	case int64:
		return float64(n)
	case uint:
		return float64(n)
	case uint8:
		return float64(n)
	case uint16:
		return float64(n)
	case uint32:
		return float64(n)
	case uint64:
		return float64(n)
	case float32:
		return float64(n)
	case float64:
		return n
	case json.Number:
		f, err := strconv.ParseFloat(string(n), 64)
		if err != nil {
			return math.NaN()
		}
		return f
	}
	return math.NaN()
}

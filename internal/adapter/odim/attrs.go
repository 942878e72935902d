package odim

import (
	"fmt"
	"math"
	"reflect"
	"strings"
)

// node is the slice of the container API the parser needs: attribute lookup,
// child-group descent, and variable access. The production implementation
// wraps the HDF5 reader; tests substitute an in-memory tree.
type node interface {
	child(name string) (node, error)
	attr(name string) (any, bool)
	values(name string) (any, error)
}

// walk descends from root through one group per path element.
func walk(root node, parts []string) (node, error) {
	current := root
	for _, name := range parts {
		next, err := current.child(name)
		if err != nil {
			return nil, fmt.Errorf("group %q: %w", name, err)
		}
		current = next
	}
	return current, nil
}

// splitPath breaks a slash-separated container path into its elements,
// tolerating leading, trailing and doubled slashes.
func splitPath(path string) []string {
	var parts []string
	for _, p := range strings.Split(path, "/") {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return parts
}

// attrFloat widens a numeric attribute value to float64. Container writers
// store attributes with varying widths, and some wrap scalars in
// single-element arrays; both forms are accepted.
func attrFloat(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case float32:
		return float64(x), true
	case int:
		return float64(x), true
	case int8:
		return float64(x), true
	case int16:
		return float64(x), true
	case int32:
		return float64(x), true
	case int64:
		return float64(x), true
	case uint:
		return float64(x), true
	case uint8:
		return float64(x), true
	case uint16:
		return float64(x), true
	case uint32:
		return float64(x), true
	case uint64:
		return float64(x), true
	}
	return unwrapScalar(v, attrFloat)
}

// attrInt reads an integral attribute value. Float-typed values are accepted
// when they carry a whole number, since some writers store epoch seconds as
// doubles.
func attrInt(v any) (int64, bool) {
	switch x := v.(type) {
	case int:
		return int64(x), true
	case int8:
		return int64(x), true
	case int16:
		return int64(x), true
	case int32:
		return int64(x), true
	case int64:
		return x, true
	case uint:
		return int64(x), true
	case uint8:
		return int64(x), true
	case uint16:
		return int64(x), true
	case uint32:
		return int64(x), true
	case uint64:
		if x > math.MaxInt64 {
			return 0, false
		}
		return int64(x), true
	case float32:
		return attrInt(float64(x))
	case float64:
		if x != math.Trunc(x) || math.IsInf(x, 0) {
			return 0, false
		}
		return int64(x), true
	}
	return unwrapScalar(v, attrInt)
}

// attrString reads a textual attribute value, trimming the NUL padding
// fixed-length container strings carry.
func attrString(v any) (string, bool) {
	switch x := v.(type) {
	case string:
		return strings.TrimRight(x, "\x00"), true
	case []byte:
		return strings.TrimRight(string(x), "\x00"), true
	case []string:
		if len(x) == 1 {
			return strings.TrimRight(x[0], "\x00"), true
		}
	}
	return "", false
}

// unwrapScalar retries a coercion on the sole element of a single-element
// slice. Reflection keeps this from enumerating every slice type twice.
func unwrapScalar[T any](v any, coerce func(any) (T, bool)) (T, bool) {
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Slice && rv.Len() == 1 {
		return coerce(rv.Index(0).Interface())
	}
	var zero T
	return zero, false
}

// asciiOnly reports whether s contains only printable ASCII. Textual grid
// attributes are declared ASCII at this boundary; anything else is treated
// as malformed rather than guessed at.
func asciiOnly(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < 0x20 || s[i] > 0x7e {
			return false
		}
	}
	return true
}

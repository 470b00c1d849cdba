package llmjson

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Strings coerces a loosely-typed JSON value into a list of non-empty
// strings. A lone string becomes a one-element list.
func Strings(v any) []string {
	switch t := v.(type) {
	case nil:
		return nil
	case string:
		if s := strings.TrimSpace(t); s != "" {
			return []string{s}
		}
		return nil
	case []any:
		out := make([]string, 0, len(t))
		for _, item := range t {
			s := strings.TrimSpace(String(item))
			if s != "" {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}

// StringList is like Strings but only accepts real arrays.
func StringList(v any) ([]string, bool) {
	if _, ok := v.([]any); !ok {
		return nil, false
	}
	return Strings(v), true
}

// String renders a scalar as text; objects are re-encoded as JSON.
func String(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	default:
		b, err := json.Marshal(t)
		if err != nil {
			return fmt.Sprint(t)
		}
		return string(b)
	}
}

// Int reads a number given as a JSON number or a numeric string, rounding
// fractions. ok is false when v carries no usable number.
func Int(v any) (int, bool) {
	var f float64
	switch t := v.(type) {
	case float64:
		f = t
	case string:
		s := strings.TrimSpace(t)
		if i := strings.IndexByte(s, '/'); i > 0 {
			s = strings.TrimSpace(s[:i])
		}
		parsed, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, false
		}
		f = parsed
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return int(math.Round(f)), true
}

// Clamp bounds n to [lo, hi].
func Clamp(n, lo, hi int) int {
	if n < lo {
		return lo
	}
	if n > hi {
		return hi
	}
	return n
}

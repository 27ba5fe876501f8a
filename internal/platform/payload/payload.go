// Package payload reads the provider's loosely shaped JSON.
//
// The provider scatters an entity's fields across arrays of single-key
// objects, sometimes nested one level deeper, and wraps child collections
// in count-prefixed maps ({"0": {...}, "1": {...}, "count": 2}). Position is
// never stable, so every accessor here looks fields up by name. Accessors
// never fail: a missing or mistyped field reads as the zero value.
package payload

import (
	"math"
	"sort"
	"strconv"
	"strings"
)

const countKey = "count"

// Field returns the first value stored under key. Maps are looked up directly,
// arrays are scanned depth-first so that [[{"a":1}],{"b":2}] yields both a and b.
func Field(v any, key string) (any, bool) {
	switch node := v.(type) {
	case map[string]any:
		value, ok := node[key]
		return value, ok
	case []any:
		for _, elem := range node {
			if value, ok := Field(elem, key); ok {
				return value, true
			}
		}
	}
	return nil, false
}

// Has reports whether key is present anywhere Field would look.
func Has(v any, key string) bool {
	_, ok := Field(v, key)
	return ok
}

func String(v any, key string) string {
	value, _ := Field(v, key)
	return AsString(value)
}

func Float(v any, key string) float64 {
	value, _ := Field(v, key)
	return AsFloat(value)
}

func Int(v any, key string) int64 {
	value, _ := Field(v, key)
	return AsInt(value)
}

// Bool treats "1", "true" and non-zero numbers as true.
func Bool(v any, key string) bool {
	value, _ := Field(v, key)
	switch b := value.(type) {
	case bool:
		return b
	case string:
		s := strings.TrimSpace(strings.ToLower(b))
		return s == "1" || s == "true" || s == "yes"
	default:
		return AsFloat(value) != 0
	}
}

// Object returns the named field as a map, nil when absent or not an object.
func Object(v any, key string) map[string]any {
	value, _ := Field(v, key)
	m, _ := value.(map[string]any)
	return m
}

// Counted lists the members of a collection. Count-prefixed maps are read by
// index 0..count-1 and the "count" key itself is skipped; when count is
// absent the numeric keys are read in ascending order. Arrays are returned
// as-is and a lone object becomes a one-element list.
func Counted(v any) []any {
	switch node := v.(type) {
	case nil:
		return nil
	case []any:
		return node
	case map[string]any:
		if raw, ok := node[countKey]; ok {
			// The count is provider data; never index past the keys present.
			n := min(AsInt(raw), int64(len(node)))
			out := make([]any, 0, max(n, 0))
			for i := int64(0); i < n; i++ {
				if item, ok := node[strconv.FormatInt(i, 10)]; ok {
					out = append(out, item)
				}
			}
			return out
		}
		indexes := make([]int, 0, len(node))
		for key := range node {
			if i, err := strconv.Atoi(key); err == nil {
				indexes = append(indexes, i)
			}
		}
		if len(indexes) == 0 {
			return []any{node}
		}
		sort.Ints(indexes)
		out := make([]any, 0, len(indexes))
		for _, i := range indexes {
			out = append(out, node[strconv.Itoa(i)])
		}
		return out
	default:
		return nil
	}
}

// Children walks a wrapped collection such as {"teams": {"0": {"team": [...]}, "count": 1}}
// and returns every inner item value.
func Children(v any, collection, item string) []any {
	wrapped, ok := Field(v, collection)
	if !ok {
		return nil
	}
	members := Counted(wrapped)
	out := make([]any, 0, len(members))
	for _, m := range members {
		if inner, ok := Field(m, item); ok {
			out = append(out, inner)
			continue
		}
		out = append(out, m)
	}
	return out
}

// Single normalizes a child that arrives as an array, a wrapper object or a
// bare object. Arrays yield their first element, a map carrying wrapper or
// "0" is unwrapped one level, anything else is the object itself.
func Single(v any, wrapper string) map[string]any {
	switch node := v.(type) {
	case []any:
		if len(node) == 0 {
			return nil
		}
		return Single(node[0], wrapper)
	case map[string]any:
		if wrapper != "" {
			if inner, ok := node[wrapper]; ok {
				return Single(inner, "")
			}
		}
		if inner, ok := node["0"]; ok {
			return Single(inner, wrapper)
		}
		return node
	default:
		return nil
	}
}

// Fragments flattens nested arrays into the list of objects they contain, preserving order.
func Fragments(v any) []map[string]any {
	var out []map[string]any
	var walk func(any)
	walk = func(n any) {
		switch node := n.(type) {
		case map[string]any:
			out = append(out, node)
		case []any:
			for _, elem := range node {
				walk(elem)
			}
		}
	}
	walk(v)
	return out
}

// All returns every value stored under key across the fragments of v, in order.
func All(v any, key string) []any {
	var out []any
	for _, frag := range Fragments(v) {
		if value, ok := frag[key]; ok {
			out = append(out, value)
		}
	}
	return out
}

func AsString(v any) string {
	switch s := v.(type) {
	case string:
		return strings.TrimSpace(s)
	case float64:
		if s == math.Trunc(s) {
			return strconv.FormatInt(int64(s), 10)
		}
		return strconv.FormatFloat(s, 'f', -1, 64)
	case int64:
		return strconv.FormatInt(s, 10)
	case int:
		return strconv.Itoa(s)
	case bool:
		return strconv.FormatBool(s)
	default:
		return ""
	}
}

// AsFloat accepts numbers and numeric strings. Anything else, "-" included, is zero.
func AsFloat(v any) float64 {
	switch n := v.(type) {
	case float64:
		if math.IsNaN(n) || math.IsInf(n, 0) {
			return 0
		}
		return n
	case float32:
		return float64(n)
	case int:
		return float64(n)
	case int64:
		return float64(n)
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return 0
		}
		return f
	default:
		return 0
	}
}

func AsInt(v any) int64 {
	return int64(AsFloat(v))
}

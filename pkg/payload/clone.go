// Package payload provides the structural clone used before any step argument payload
// is rewritten, so converted documents never alias the caller's input.
package payload

// Clone deep-copies a JSON-shaped object. A nil map stays nil.
func Clone(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}

	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = CloneValue(v)
	}

	return out
}

// CloneValue deep-copies maps and slices; scalars are returned as is.
func CloneValue(v any) any {
	switch val := v.(type) {
	case map[string]any:
		return Clone(val)
	case []any:
		if val == nil {
			return val
		}

		out := make([]any, len(val))
		for i, item := range val {
			out[i] = CloneValue(item)
		}

		return out
	case []map[string]any:
		if val == nil {
			return val
		}

		out := make([]map[string]any, len(val))
		for i, item := range val {
			out[i] = Clone(item)
		}

		return out
	case map[string]string:
		if val == nil {
			return val
		}

		out := make(map[string]string, len(val))
		for k, s := range val {
			out[k] = s
		}

		return out
	case []string:
		if val == nil {
			return val
		}

		return append([]string(nil), val...)
	default:
		return v
	}
}

// OrEmpty returns m, or a new empty map when m is nil.
func OrEmpty(m map[string]any) map[string]any {
	if m == nil {
		return map[string]any{}
	}

	return m
}

package model

// Plain converts a computed value into plain data suitable for JSON or YAML output.
// Scalar nodes become their payload, other nodes become {"type", "id"} references,
// sets and sequences become slices.
func Plain(v any) any {
	switch t := v.(type) {
	case nil:
		return nil
	case CenteredModel:
		if t.IsZero() {
			return nil
		}
		return Plain(t.Center())
	case ObjectModel:
		if t.IsScalar() {
			return t.Val()
		}
		return map[string]any{"type": t.Type(), "id": t.ID()}
	case *Set:
		return plainSlice(t.Items())
	case []ObjectModel:
		out := make([]any, len(t))
		for i, n := range t {
			out[i] = Plain(n)
		}
		return out
	case []CenteredModel:
		out := make([]any, len(t))
		for i, n := range t {
			out[i] = Plain(n)
		}
		return out
	case []any:
		return plainSlice(t)
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, e := range t {
			out[k] = Plain(e)
		}
		return out
	default:
		return v
	}
}

func plainSlice(items []any) []any {
	out := make([]any, len(items))
	for i, e := range items {
		out[i] = Plain(e)
	}
	return out
}

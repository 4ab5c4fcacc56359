package document

// toNative converts v into plain Go values for comparisons.
func toNative(v Value) any {
	switch t := v.(type) {
	case *Mapping:
		out := make(map[string]any, len(t.keys))
		for _, key := range t.keys {
			out[key] = toNative(t.fields[key])
		}
		return out
	case *Sequence:
		out := make([]any, len(t.Items))
		for i, item := range t.Items {
			out[i] = toNative(item)
		}
		return out
	case Scalar:
		return t.v
	default:
		return nil
	}
}

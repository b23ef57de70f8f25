package graphmap

// Object is the generic in-memory form of a node that the compilers operate
// on: field name to value. Scalar fields hold driver-native values (strings,
// numbers, booleans, lists and maps thereof; richer types are converted by
// the caller before they reach this core). Relationship fields hold a nested
// Object for single cardinality or a []Object for collections; a rich-edge
// item carries the relationship properties plus the target Object under the
// edge's declared target field.
//
// The compilers never introspect Go types: the schema-extraction step that
// produces Objects from user structs is an external collaborator.
type Object map[string]any

// Items normalizes a relationship field value to a slice of objects.
// A nil value yields nil, a single Object yields a one-element slice.
// Values that are not object-shaped normalize to nil entries rather than
// being dropped, so the write path rejects them with an identity error
// instead of silently skipping an item.
func Items(v any) []Object {
	switch v := v.(type) {
	case nil:
		return nil
	case Object:
		return []Object{v}
	case map[string]any:
		return []Object{v}
	case []Object:
		return v
	case []map[string]any:
		out := make([]Object, len(v))
		for i := range v {
			out[i] = v[i]
		}
		return out
	case []any:
		out := make([]Object, len(v))
		for i, item := range v {
			switch item := item.(type) {
			case Object:
				out[i] = item
			case map[string]any:
				out[i] = item
			}
		}
		return out
	default:
		return []Object{nil}
	}
}

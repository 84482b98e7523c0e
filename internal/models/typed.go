package models

// Typed is implemented by values that carry their own type tag.
type Typed interface {
	TypeTag() string
}

// TypeKey is the map key read by TypeOf for map[string]any contexts.
const TypeKey = "type"

// TypeOf returns the type tag of ctx. It understands Typed values and maps
// with a non-empty string under TypeKey.
func TypeOf(ctx any) (string, bool) {
	switch v := ctx.(type) {
	case nil:
		return "", false
	case Typed:
		tag := v.TypeTag()
		return tag, tag != ""
	case map[string]any:
		tag, _ := v[TypeKey].(string)
		return tag, tag != ""
	}
	return "", false
}

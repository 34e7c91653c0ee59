// Package item defines the product record handled by the inventory service
// and the typed values accepted by single-field updates.
package item

// KeyAttribute is the attribute holding an item's primary key.
const KeyAttribute = "productid"

// Item is a product record. Only KeyAttribute has a fixed meaning; every
// other attribute is an arbitrary JSON-compatible value.
type Item map[string]any

// ID returns the primary key when it is present as a non-empty string.
func (it Item) ID() (string, bool) {
	id, ok := it[KeyAttribute].(string)
	if !ok || id == "" {
		return "", false
	}
	return id, true
}

// Clone returns a deep copy of the item.
func (it Item) Clone() Item {
	if it == nil {
		return nil
	}
	out := make(Item, len(it))
	for k, v := range it {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, inner := range t {
			out[k] = cloneValue(inner)
		}
		return out
	case Item:
		return t.Clone()
	case []any:
		out := make([]any, len(t))
		for i, inner := range t {
			out[i] = cloneValue(inner)
		}
		return out
	default:
		return v
	}
}

package item

import (
	"encoding/json"
	"fmt"
)

// Kind enumerates the shapes a Value can take.
type Kind int

const (
	KindNull Kind = iota
	KindString
	KindNumber
	KindBool
	KindList
	KindDocument
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindString:
		return "string"
	case KindNumber:
		return "number"
	case KindBool:
		return "bool"
	case KindList:
		return "list"
	case KindDocument:
		return "document"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Value is a JSON-compatible attribute value used for single-field updates.
// The zero Value is null.
type Value struct {
	kind Kind
	str  string
	num  float64
	b    bool
	list []Value
	doc  map[string]Value
}

// Null returns the null value.
func Null() Value { return Value{} }

// String returns a string value.
func String(s string) Value { return Value{kind: KindString, str: s} }

// Number returns a numeric value.
func Number(n float64) Value { return Value{kind: KindNumber, num: n} }

// Bool returns a boolean value.
func Bool(b bool) Value { return Value{kind: KindBool, b: b} }

// List returns a list value.
func List(vs ...Value) Value { return Value{kind: KindList, list: vs} }

// Document returns a nested document value.
func Document(m map[string]Value) Value { return Value{kind: KindDocument, doc: m} }

// Kind reports the value's shape.
func (v Value) Kind() Kind { return v.kind }

// ParseValue decodes a raw JSON value. An empty input is treated as null.
func ParseValue(raw json.RawMessage) (Value, error) {
	if len(raw) == 0 {
		return Null(), nil
	}
	var decoded any
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return Value{}, fmt.Errorf("decode value: %w", err)
	}
	return ValueOf(decoded)
}

// ValueOf converts a decoded JSON value into a Value.
func ValueOf(v any) (Value, error) {
	switch t := v.(type) {
	case nil:
		return Null(), nil
	case string:
		return String(t), nil
	case float64:
		return Number(t), nil
	case float32:
		return Number(float64(t)), nil
	case int:
		return Number(float64(t)), nil
	case int64:
		return Number(float64(t)), nil
	case json.Number:
		n, err := t.Float64()
		if err != nil {
			return Value{}, fmt.Errorf("decode number %q: %w", t.String(), err)
		}
		return Number(n), nil
	case bool:
		return Bool(t), nil
	case []any:
		out := make([]Value, len(t))
		for i, inner := range t {
			iv, err := ValueOf(inner)
			if err != nil {
				return Value{}, err
			}
			out[i] = iv
		}
		return List(out...), nil
	case map[string]any:
		return documentOf(t)
	case Item:
		return documentOf(t)
	default:
		return Value{}, fmt.Errorf("unsupported value type %T", v)
	}
}

func documentOf(m map[string]any) (Value, error) {
	out := make(map[string]Value, len(m))
	for k, inner := range m {
		iv, err := ValueOf(inner)
		if err != nil {
			return Value{}, err
		}
		out[k] = iv
	}
	return Document(out), nil
}

// Interface converts the value back into plain Go values
// (nil, string, float64, bool, []any, map[string]any).
func (v Value) Interface() any {
	switch v.kind {
	case KindString:
		return v.str
	case KindNumber:
		return v.num
	case KindBool:
		return v.b
	case KindList:
		out := make([]any, len(v.list))
		for i, inner := range v.list {
			out[i] = inner.Interface()
		}
		return out
	case KindDocument:
		out := make(map[string]any, len(v.doc))
		for k, inner := range v.doc {
			out[k] = inner.Interface()
		}
		return out
	default:
		return nil
	}
}

// MarshalJSON encodes the value as its plain JSON form.
func (v Value) MarshalJSON() ([]byte, error) {
	return json.Marshal(v.Interface())
}

// UnmarshalJSON decodes any JSON value.
func (v *Value) UnmarshalJSON(data []byte) error {
	parsed, err := ParseValue(data)
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}

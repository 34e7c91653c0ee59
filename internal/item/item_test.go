package item

import (
	"encoding/json"
	"errors"
	"reflect"
	"strings"
	"testing"
)

func TestItemID(t *testing.T) {
	if id, ok := (Item{"productid": "p1"}).ID(); !ok || id != "p1" {
		t.Fatalf("expected p1, got %q %v", id, ok)
	}
	for _, it := range []Item{nil, {}, {"productid": ""}, {"productid": 12.0}} {
		if _, ok := it.ID(); ok {
			t.Fatalf("expected no id for %v", it)
		}
	}
}

func TestCloneIsDeep(t *testing.T) {
	orig := Item{"productid": "p1", "tags": []any{"a"}, "dims": map[string]any{"w": 1.0}}
	cp := orig.Clone()
	cp["tags"].([]any)[0] = "b"
	cp["dims"].(map[string]any)["w"] = 2.0
	if orig["tags"].([]any)[0] != "a" || orig["dims"].(map[string]any)["w"] != 1.0 {
		t.Fatalf("clone shares nested state: %v", orig)
	}
	if Item(nil).Clone() != nil {
		t.Fatalf("nil clone should stay nil")
	}
}

func TestParseValueKinds(t *testing.T) {
	cases := map[string]Kind{
		``:              KindNull,
		`null`:          KindNull,
		`"x"`:           KindString,
		`9.99`:          KindNumber,
		`true`:          KindBool,
		`[1,"a"]`:       KindList,
		`{"a":{"b":1}}`: KindDocument,
	}
	for raw, want := range cases {
		v, err := ParseValue(json.RawMessage(raw))
		if err != nil {
			t.Fatalf("ParseValue(%q): %v", raw, err)
		}
		if v.Kind() != want {
			t.Fatalf("ParseValue(%q) kind %s, want %s", raw, v.Kind(), want)
		}
	}
	if _, err := ParseValue(json.RawMessage(`{`)); err == nil {
		t.Fatalf("expected decode error")
	}
}

func TestValueRoundTrip(t *testing.T) {
	v, err := ParseValue(json.RawMessage(`{"a":[1,true,null,"s"],"b":{"c":2.5}}`))
	if err != nil {
		t.Fatalf("ParseValue: %v", err)
	}
	want := map[string]any{"a": []any{1.0, true, nil, "s"}, "b": map[string]any{"c": 2.5}}
	if got := v.Interface(); !reflect.DeepEqual(got, want) {
		t.Fatalf("Interface = %#v", got)
	}
	b, err := json.Marshal(Number(9.99))
	if err != nil || string(b) != "9.99" {
		t.Fatalf("marshal number: %s %v", b, err)
	}
	var decoded Value
	if err := json.Unmarshal([]byte(`"x"`), &decoded); err != nil || decoded.Interface() != "x" {
		t.Fatalf("unmarshal: %v %v", decoded, err)
	}
}

func TestValueOfRejectsUnsupported(t *testing.T) {
	if _, err := ValueOf(struct{}{}); err == nil {
		t.Fatalf("expected error for struct")
	}
	if _, err := ValueOf([]any{make(chan int)}); err == nil {
		t.Fatalf("expected error for nested channel")
	}
	if v, err := ValueOf(json.Number("3")); err != nil || v.Interface() != 3.0 {
		t.Fatalf("json.Number: %v %v", v, err)
	}
}

func TestValidateFieldName(t *testing.T) {
	for _, ok := range []string{"price", "name", "size", "év", "a b", "#x"} {
		if err := ValidateFieldName(ok); err != nil {
			t.Fatalf("ValidateFieldName(%q): %v", ok, err)
		}
	}
	bad := []string{"", "productid", strings.Repeat("a", MaxFieldNameLength+1), "a\nb", string([]byte{0xff})}
	for _, name := range bad {
		err := ValidateFieldName(name)
		if !errors.Is(err, ErrInvalidField) {
			t.Fatalf("ValidateFieldName(%q) = %v, want ErrInvalidField", name, err)
		}
	}
}

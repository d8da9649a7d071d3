package value

import (
	"encoding/json"
	"testing"
)

func TestEqual(t *testing.T) {
	cases := []struct {
		name string
		a, b Value
		want bool
	}{
		{"int eq", Int(1), Int(1), true},
		{"int neq", Int(1), Int(2), false},
		{"string eq", Str("a"), Str("a"), true},
		{"different kinds", Int(1), Str("1"), false},
		{"null never equal", NullValue, NullValue, false},
		{"null vs int", NullValue, Int(0), false},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := Equal(c.a, c.b); got != c.want {
				t.Errorf("Equal(%v, %v) = %v, want %v", c.a, c.b, got, c.want)
			}
		})
	}
}

func TestCompare(t *testing.T) {
	cmp, err := Compare(Int(1), Int(2))
	if err != nil || cmp >= 0 {
		t.Fatalf("Compare(1,2) = %d, %v", cmp, err)
	}
	cmp, err = Compare(Str("b"), Str("a"))
	if err != nil || cmp <= 0 {
		t.Fatalf("Compare(b,a) = %d, %v", cmp, err)
	}
	if _, err := Compare(Int(1), Str("1")); err == nil {
		t.Fatal("expected type mismatch error")
	}
	if _, err := Compare(NullValue, Int(1)); err == nil {
		t.Fatal("expected type mismatch error comparing null")
	}
}

func TestJSONRoundTrip(t *testing.T) {
	cases := []Value{Int(42), Str("hello"), NullValue}
	for _, v := range cases {
		data, err := json.Marshal(v)
		if err != nil {
			t.Fatalf("Marshal(%v): %v", v, err)
		}
		var got Value
		if err := json.Unmarshal(data, &got); err != nil {
			t.Fatalf("Unmarshal(%s): %v", data, err)
		}
		if got.Kind() != v.Kind() {
			t.Fatalf("round-trip kind = %v, want %v", got.Kind(), v.Kind())
		}
		switch v.Kind() {
		case IntKind:
			if got.Int64() != v.Int64() {
				t.Fatalf("round-trip int = %d, want %d", got.Int64(), v.Int64())
			}
		case StringKind:
			if got.String() != v.String() {
				t.Fatalf("round-trip string = %q, want %q", got.String(), v.String())
			}
		}
	}
}

func TestKindString(t *testing.T) {
	if NullValue.Kind().String() != "null" {
		t.Fatal("zero Value should be null")
	}
	if Int(0).Kind() != IntKind {
		t.Fatal("Int() should carry Kind IntKind")
	}
}

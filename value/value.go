// Package value implements the engine's runtime value representation: a
// small tagged union of integer, string, and null, with the comparison
// semantics the expression and index layers rely on.
package value

import (
	"encoding/json"
	"fmt"

	"github.com/embedsql/embedsql/dberrors"
)

// Kind tags the variant held by a Value.
type Kind int

const (
	// Null is the zero Kind so a zero-value Value is null.
	Null Kind = iota
	IntKind
	StringKind
)

// ErrTypeMismatch is raised by Compare when the two Values have different
// Kinds or either of them is null. Equal never raises it.
var ErrTypeMismatch = dberrors.ErrType

// Value is an immutable tagged union of {int64, string, null}.
type Value struct {
	kind Kind
	i    int64
	s    string
}

// NullValue is the null value. Null compares unequal to everything,
// including itself.
var NullValue = Value{kind: Null}

// Int wraps a signed 64-bit integer.
func Int(i int64) Value { return Value{kind: IntKind, i: i} }

// Str wraps a UTF-8 string.
func Str(s string) Value { return Value{kind: StringKind, s: s} }

// Kind reports the variant held.
func (v Value) Kind() Kind { return v.kind }

// IsNull reports whether v is the null value.
func (v Value) IsNull() bool { return v.kind == Null }

// Int64 returns the wrapped integer. It panics if v is not an Int; callers
// must check Kind first.
func (v Value) Int64() int64 {
	if v.kind != IntKind {
		panic(fmt.Sprintf("value: Int64 called on %s", v.kind))
	}
	return v.i
}

// String returns the wrapped string, or a readable representation of
// non-string kinds (used for debugging and error messages, not equality).
func (v Value) String() string {
	switch v.kind {
	case Null:
		return "NULL"
	case IntKind:
		return fmt.Sprintf("%d", v.i)
	case StringKind:
		return v.s
	default:
		return "?"
	}
}

func (k Kind) String() string {
	switch k {
	case Null:
		return "null"
	case IntKind:
		return "int"
	case StringKind:
		return "string"
	default:
		return "unknown"
	}
}

// Equal reports whether a and b hold the same kind and value. A null value
// is never equal to anything, including another null.
func Equal(a, b Value) bool {
	if a.kind == Null || b.kind == Null {
		return false
	}
	if a.kind != b.kind {
		return false
	}
	switch a.kind {
	case IntKind:
		return a.i == b.i
	case StringKind:
		return a.s == b.s
	}
	return false
}

// wireValue is Value's exported serialization form; Value itself keeps its
// fields unexported so callers can't construct one with an inconsistent
// kind/payload pairing.
type wireValue struct {
	Kind Kind   `json:"kind"`
	I    int64  `json:"i,omitempty"`
	S    string `json:"s,omitempty"`
}

// MarshalJSON encodes v as its kind tag plus whichever payload field
// applies, so a store that persists rows as JSON round-trips Values
// exactly instead of silently dropping them to the zero Value.
func (v Value) MarshalJSON() ([]byte, error) {
	return json.Marshal(wireValue{Kind: v.kind, I: v.i, S: v.s})
}

// UnmarshalJSON is MarshalJSON's inverse.
func (v *Value) UnmarshalJSON(data []byte) error {
	var w wireValue
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	v.kind = w.Kind
	v.i = w.I
	v.s = w.S
	return nil
}

// Compare orders a against b using each kind's natural order: ascending
// numeric for Int, ascending lexicographic for String. It returns
// ErrTypeMismatch if the kinds differ, or if either side is null (null has
// no order relative to anything).
func Compare(a, b Value) (int, error) {
	if a.kind == Null || b.kind == Null || a.kind != b.kind {
		return 0, ErrTypeMismatch.New(a.kind, b.kind)
	}
	switch a.kind {
	case IntKind:
		switch {
		case a.i < b.i:
			return -1, nil
		case a.i > b.i:
			return 1, nil
		default:
			return 0, nil
		}
	case StringKind:
		switch {
		case a.s < b.s:
			return -1, nil
		case a.s > b.s:
			return 1, nil
		default:
			return 0, nil
		}
	}
	return 0, ErrTypeMismatch.New(a.kind, b.kind)
}

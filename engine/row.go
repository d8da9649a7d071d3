package engine

import "github.com/embedsql/embedsql/value"

// Row is the executor's result tuple: positional data plus a parallel
// list of display names, indexable either way.
type Row struct {
	Data  []value.Value
	Names []string
}

// At returns the value at a positional index.
func (r Row) At(i int) value.Value { return r.Data[i] }

// ByName looks up a value by its display name (table.column or alias).
func (r Row) ByName(name string) (value.Value, bool) {
	for i, n := range r.Names {
		if n == name {
			return r.Data[i], true
		}
	}
	return value.Value{}, false
}

// sameCell compares two cells structurally rather than with value.Equal's
// query semantics, where null never equals anything (including another
// null). A row-equality check needs the opposite: two result rows that
// both carry null in the same position (e.g. an unmatched LEFT JOIN side)
// must compare equal there, or no two outer-join rows would ever match.
func sameCell(a, b value.Value) bool {
	if a.IsNull() || b.IsNull() {
		return a.IsNull() && b.IsNull()
	}
	return value.Equal(a, b)
}

// Equal compares two Rows by both positional data and display names.
func (r Row) Equal(other Row) bool {
	if len(r.Data) != len(other.Data) || len(r.Names) != len(other.Names) {
		return false
	}
	for i := range r.Data {
		if !sameCell(r.Data[i], other.Data[i]) {
			return false
		}
	}
	for i := range r.Names {
		if r.Names[i] != other.Names[i] {
			return false
		}
	}
	return true
}

// EqualTuple compares r against a raw ordered tuple of Values,
// positional-only; display names are not considered.
func (r Row) EqualTuple(tuple []value.Value) bool {
	if len(r.Data) != len(tuple) {
		return false
	}
	for i := range r.Data {
		if !sameCell(r.Data[i], tuple[i]) {
			return false
		}
	}
	return true
}

// Package store implements the engine's row store: a table-scoped, dense,
// append-only vector of rows addressed by an opaque integer slot. The
// store has no knowledge of primary keys; Table owns that.
package store

import "github.com/embedsql/embedsql/value"

// Row is a stored, positional tuple of Values.
type Row []value.Value

// Store is the pluggable row-storage interface. Table and the executor
// are backing-agnostic: Memory is the default in-process implementation,
// Bolt is a page-backed alternative.
type Store interface {
	// Append stores row and returns its new slot.
	Append(row Row) (int, error)
	// Overwrite replaces the row at an existing slot.
	Overwrite(slot int, row Row) error
	// Read returns the row at slot.
	Read(slot int) (Row, error)
	// Slice returns rows for slots in [start, stop); a negative stop
	// means "to the end".
	Slice(start, stop int) ([]Row, error)
	// Len returns the number of slots ever appended.
	Len() int
}

// Package dberrors centralizes the engine's named error kinds so callers
// can test error identity (via Is) instead of matching message strings.
// The kinds themselves are conceptual, per the layering below; parser,
// table, and engine all raise through this package rather than each
// defining their own.
package dberrors

import "gopkg.in/src-d/go-errors.v1"

var (
	// ErrParse: unexpected token while parsing SQL text.
	ErrParse = errors.NewKind("parse error at index %d: expected %s, got %q")

	// ErrSchema: duplicate table, duplicate/forbidden rowid, multiple
	// primary keys, unsupported column type, primary-key-on-non-int.
	ErrSchema = errors.NewKind("schema error: %s")

	// ErrConstraint: duplicate primary key, NOT NULL violation, UNIQUE
	// violation on insert.
	ErrConstraint = errors.NewKind("constraint violation: %s")

	// ErrLookup: no such table, or a column reference unresolvable in the
	// current evaluation context.
	ErrLookup = errors.NewKind("%s")

	// ErrType: comparison between incompatible Value kinds.
	ErrType = errors.NewKind("type mismatch in comparison: %s vs %s")

	// ErrUsage: iterator step requested, insert-list length mismatch.
	ErrUsage = errors.NewKind("%s")

	// ErrUnsupported: statement type not handled by the executor.
	ErrUnsupported = errors.NewKind("unsupported: %s")
)

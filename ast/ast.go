// Package ast defines the engine's typed syntax tree: literals, column
// references, the boolean expression/predicate tree with simplification
// and evaluation, and the five statement kinds the parser produces.
package ast

import (
	"github.com/embedsql/embedsql/dberrors"
	"github.com/embedsql/embedsql/token"
	"github.com/embedsql/embedsql/value"
)

// ErrValueNotAvailable is raised when a ColumnReference cannot be resolved
// against the Context it is evaluated in.
var ErrValueNotAvailable = dberrors.ErrLookup

// ValueExpr is a node that evaluates to a value.Value in a row Context:
// literals and column references. It is the operand type for comparisons.
type ValueExpr interface {
	Pos() token.Pos
	Evaluate(ctx *Context) (value.Value, error)
	Simplify() ValueExpr
	// IsLiteral reports whether this node is a compile-time constant
	// (Integer/String literal), as opposed to a ColumnReference. Used by
	// comparison Simplify to decide which side to normalize.
	IsLiteral() bool
	String() string
}

// Predicate is a node of the boolean expression tree: logical connectives
// (And, Or, Not, TrueOp, FalseOp) and comparisons (Equals, ..., InFunc).
type Predicate interface {
	Pos() token.Pos
	Evaluate(ctx *Context) (bool, error)
	Simplify() (Predicate, error)
	// Visit performs a pre-order traversal, calling consumer once per node.
	Visit(consumer func(Predicate))
	String() string
}

// Terminal is implemented by the leaves of the predicate tree: the
// comparisons and InFunc. And/Or/Not are intentionally not Terminal.
type Terminal interface {
	Predicate
	// ColumnsUsed returns the column references appearing in this
	// comparison (literal operands are not included).
	ColumnsUsed() []ColumnReference
}

// columnKey is the map key used internally by Context: ColumnReference
// itself carries Alias and StartPos, which must NOT participate in lookup
// equality (the data model requires equality to consider only table+column).
type columnKey struct {
	table, column string
}

func keyOf(c ColumnReference) columnKey { return columnKey{c.Table, c.Column} }

// Context is a read-only binding from ColumnReference to Value over a
// single (possibly widened, post-join) row, used during evaluation.
type Context struct {
	values map[columnKey]value.Value
}

// NewContext builds a Context pairing row[i] with columns[i].
func NewContext(row []value.Value, columns []ColumnReference) *Context {
	values := make(map[columnKey]value.Value, len(columns))
	for i, c := range columns {
		if i < len(row) {
			values[keyOf(c)] = row[i]
		}
	}
	return &Context{values: values}
}

// Lookup resolves ref against the context's row bindings.
func (c *Context) Lookup(ref ColumnReference) (value.Value, bool) {
	if c == nil {
		return value.NullValue, false
	}
	v, ok := c.values[keyOf(ref)]
	return v, ok
}


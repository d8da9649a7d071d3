package ast

import (
	"fmt"

	"github.com/embedsql/embedsql/token"
	"github.com/embedsql/embedsql/value"
)

// IntegerLiteral is a signed 64-bit integer constant.
type IntegerLiteral struct {
	StartPos token.Pos
	Value    int64
}

func (l *IntegerLiteral) Pos() token.Pos { return l.StartPos }
func (l *IntegerLiteral) IsLiteral() bool { return true }
func (l *IntegerLiteral) Simplify() ValueExpr { return l }
func (l *IntegerLiteral) Evaluate(_ *Context) (value.Value, error) {
	return value.Int(l.Value), nil
}
func (l *IntegerLiteral) String() string { return fmt.Sprintf("%d", l.Value) }

// StringLiteral is a UTF-8 string constant.
type StringLiteral struct {
	StartPos token.Pos
	Value    string
}

func (l *StringLiteral) Pos() token.Pos { return l.StartPos }
func (l *StringLiteral) IsLiteral() bool { return true }
func (l *StringLiteral) Simplify() ValueExpr { return l }
func (l *StringLiteral) Evaluate(_ *Context) (value.Value, error) {
	return value.Str(l.Value), nil
}
func (l *StringLiteral) String() string { return "'" + l.Value + "'" }

// ColumnReference identifies a column by (table, column). Equality and
// hashing use only (Table, Column): Alias is a presentation attribute and
// must never participate in comparisons, since simplification (e.g. Or's
// same-column collapse into InFunc) and pushdown both rely on that.
type ColumnReference struct {
	StartPos token.Pos
	Table    string
	Column   string
	Alias    string // optional, set by "AS name"
}

func (c ColumnReference) Pos() token.Pos  { return c.StartPos }
func (c ColumnReference) IsLiteral() bool { return false }
func (c ColumnReference) Simplify() ValueExpr { return c }
func (c ColumnReference) Evaluate(ctx *Context) (value.Value, error) {
	if v, ok := ctx.Lookup(c); ok {
		return v, nil
	}
	return value.NullValue, ErrValueNotAvailable.New(c.String())
}
func (c ColumnReference) String() string { return c.Table + "." + c.Column }

// DisplayName is the name used for this column in a result row: the alias
// if set, otherwise "table.column".
func (c ColumnReference) DisplayName() string {
	if c.Alias != "" {
		return c.Alias
	}
	return c.String()
}

// Equal compares two column references ignoring Alias, matching the
// equality contract required by the data model.
func (c ColumnReference) Equal(other ColumnReference) bool {
	return c.Table == other.Table && c.Column == other.Column
}

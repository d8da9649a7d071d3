package ast

import (
	"strconv"
	"strings"

	"github.com/embedsql/embedsql/token"
)

// Statement is implemented by the five root AST types a parsed SQL text (or
// a hand-built tree) can produce: CreateTable, Insert, Select, Update, Delete.
type Statement interface {
	Pos() token.Pos
	String() string
	statementNode()
}

// ColumnConstraint is a bitset of the flags a coldef clause may carry.
type ColumnConstraint int

const (
	PrimaryKey ColumnConstraint = 1 << iota
	Unique
	NotNull
)

func (c ColumnConstraint) Has(flag ColumnConstraint) bool { return c&flag != 0 }

// ColumnType is the declared type of a column: int, double, or varchar.
type ColumnType int

const (
	IntType ColumnType = iota
	DoubleType
	VarcharType
)

func (t ColumnType) String() string {
	switch t {
	case IntType:
		return "int"
	case DoubleType:
		return "double"
	case VarcharType:
		return "varchar"
	default:
		return "unknown"
	}
}

// ColumnDefinition is one entry of a CREATE TABLE coldef list.
type ColumnDefinition struct {
	StartPos   token.Pos
	Name       string
	Type       ColumnType
	Size       int // varchar(N); zero if not declared
	Constraint ColumnConstraint
}

func (c ColumnDefinition) Pos() token.Pos { return c.StartPos }
func (c ColumnDefinition) String() string {
	var b strings.Builder
	b.WriteString(c.Name)
	b.WriteByte(' ')
	b.WriteString(c.Type.String())
	if c.Size > 0 {
		b.WriteString("(")
		b.WriteString(strconv.Itoa(c.Size))
		b.WriteString(")")
	}
	if c.Constraint.Has(PrimaryKey) {
		b.WriteString(" PRIMARY KEY")
	}
	if c.Constraint.Has(Unique) {
		b.WriteString(" UNIQUE")
	}
	if c.Constraint.Has(NotNull) {
		b.WriteString(" NOT NULL")
	}
	return b.String()
}

// TableReference names a table in a FROM/JOIN/INTO/UPDATE/DELETE clause.
type TableReference struct {
	StartPos token.Pos
	Name     string
}

func (t TableReference) Pos() token.Pos { return t.StartPos }
func (t TableReference) String() string { return t.Name }

// JoinTable is one `JOIN table [ON left = right]` or `LEFT JOIN ...` clause.
// Left/Right are nil when the ON clause is absent (cross join). The parser
// normalizes Right to always reference this JoinTable's own Table.
type JoinTable struct {
	StartPos token.Pos
	Table    TableReference
	Left     *ColumnReference
	Right    *ColumnReference
	Outer    bool // true for LEFT JOIN
}

func (j JoinTable) Pos() token.Pos { return j.StartPos }
func (j JoinTable) String() string {
	kw := "JOIN"
	if j.Outer {
		kw = "LEFT JOIN"
	}
	if j.Left == nil {
		return kw + " " + j.Table.String()
	}
	return kw + " " + j.Table.String() + " ON " + j.Left.String() + " = " + j.Right.String()
}

// From is the main table plus zero or more joins.
type From struct {
	StartPos token.Pos
	Table    TableReference
	Joins    []JoinTable
}

func (f From) Pos() token.Pos { return f.StartPos }
func (f From) String() string {
	var b strings.Builder
	b.WriteString("FROM ")
	b.WriteString(f.Table.String())
	for _, j := range f.Joins {
		b.WriteByte(' ')
		b.WriteString(j.String())
	}
	return b.String()
}

// OrderBy is an ORDER BY clause: one or more columns, all sharing the
// trailing DESC flag (the grammar puts DESC once, after the whole list).
type OrderBy struct {
	StartPos token.Pos
	Columns  []ColumnReference
	Desc     bool
}

func (o OrderBy) Pos() token.Pos { return o.StartPos }
func (o OrderBy) String() string {
	parts := make([]string, len(o.Columns))
	for i, c := range o.Columns {
		parts[i] = c.String()
	}
	s := "ORDER BY " + strings.Join(parts, ", ")
	if o.Desc {
		s += " DESC"
	}
	return s
}

// CreateTable is `CREATE TABLE name (coldef, ...)`.
type CreateTable struct {
	StartPos token.Pos
	Table    string
	Columns  []ColumnDefinition
}

func (c *CreateTable) Pos() token.Pos { return c.StartPos }
func (c *CreateTable) statementNode() {}
func (c *CreateTable) String() string {
	parts := make([]string, len(c.Columns))
	for i, cd := range c.Columns {
		parts[i] = cd.String()
	}
	return "CREATE TABLE " + c.Table + " (" + strings.Join(parts, ", ") + ")"
}

// Insert is `INSERT INTO table VALUES (literal, ...)`.
type Insert struct {
	StartPos token.Pos
	Table    string
	Values   []ValueExpr
}

func (i *Insert) Pos() token.Pos { return i.StartPos }
func (i *Insert) statementNode() {}
func (i *Insert) String() string {
	parts := make([]string, len(i.Values))
	for idx, v := range i.Values {
		parts[idx] = v.String()
	}
	return "INSERT INTO " + i.Table + " VALUES (" + strings.Join(parts, ", ") + ")"
}

// Select is `SELECT col_list FROM ... [WHERE ...] [ORDER BY ...]`.
type Select struct {
	StartPos token.Pos
	Columns  []ColumnReference
	From     From
	Where    Predicate // nil if absent
	Order    *OrderBy  // nil if absent
}

func (s *Select) Pos() token.Pos { return s.StartPos }
func (s *Select) statementNode() {}
func (s *Select) String() string {
	parts := make([]string, len(s.Columns))
	for i, c := range s.Columns {
		parts[i] = c.String()
	}
	str := "SELECT " + strings.Join(parts, ", ") + " " + s.From.String()
	if s.Where != nil {
		str += " WHERE " + s.Where.String()
	}
	if s.Order != nil {
		str += " " + s.Order.String()
	}
	return str
}

// Assignment is one `column = literal_or_column` of an UPDATE's SET list.
type Assignment struct {
	Column ColumnReference
	Value  ValueExpr
}

// Update is `UPDATE table SET assign, ... [WHERE ...]`.
type Update struct {
	StartPos    token.Pos
	Table       string
	Assignments []Assignment
	Where       Predicate // nil if absent
}

func (u *Update) Pos() token.Pos { return u.StartPos }
func (u *Update) statementNode() {}
func (u *Update) String() string {
	parts := make([]string, len(u.Assignments))
	for i, a := range u.Assignments {
		parts[i] = a.Column.String() + " = " + a.Value.String()
	}
	str := "UPDATE " + u.Table + " SET " + strings.Join(parts, ", ")
	if u.Where != nil {
		str += " WHERE " + u.Where.String()
	}
	return str
}

// Delete is `DELETE FROM table [WHERE ...]`.
type Delete struct {
	StartPos token.Pos
	Table    string
	Where    Predicate // nil if absent
}

func (d *Delete) Pos() token.Pos { return d.StartPos }
func (d *Delete) statementNode() {}
func (d *Delete) String() string {
	str := "DELETE FROM " + d.Table
	if d.Where != nil {
		str += " WHERE " + d.Where.String()
	}
	return str
}

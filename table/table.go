// Package table implements a single table: its schema, its primary-key
// B+-tree index, zero or more UNIQUE-int indices, and its row store.
// Grounded on original_source/python_sql/database.py's Table class.
package table

import (
	"strconv"

	"github.com/embedsql/embedsql/ast"
	"github.com/embedsql/embedsql/btree"
	"github.com/embedsql/embedsql/dberrors"
	"github.com/embedsql/embedsql/enginelog"
	"github.com/embedsql/embedsql/store"
	"github.com/embedsql/embedsql/value"
)

// Table holds a schema, a primary-key index, optional UNIQUE-int indices,
// and a row store. The primary-key column is always at position 0.
type Table struct {
	name       string
	columns    []ast.ColumnDefinition
	autoRowID  bool
	pk         *btree.Tree
	store      store.Store
	uniqueIdx  map[int]*btree.Tree // column index -> its UNIQUE btree
	log        enginelog.Logger
	btreeOpts  []btree.Option
}

// Option configures a Table at construction time.
type Option func(*Table)

// WithStore overrides the default in-memory row store.
func WithStore(s store.Store) Option {
	return func(t *Table) { t.store = s }
}

// WithLogger attaches a logging capability (see package enginelog).
func WithLogger(l enginelog.Logger) Option {
	return func(t *Table) { t.log = l }
}

// WithBTreeDegree sets the branching factor shared by the PK and any
// UNIQUE-int indices.
func WithBTreeDegree(degree int) Option {
	return func(t *Table) { t.btreeOpts = append(t.btreeOpts, btree.WithDegree(degree)) }
}

// New builds a Table from a CREATE TABLE column list, synthesizing a
// rowid primary key when no user column declares PRIMARY_KEY, and
// rejecting schema errors (duplicate/forbidden rowid, multiple primary
// keys, primary key on a non-int column).
func New(name string, columns []ast.ColumnDefinition, opts ...Option) (*Table, error) {
	t := &Table{name: name, log: enginelog.Discard{}}
	for _, opt := range opts {
		opt(t)
	}

	pkCount := 0
	pkIdx := -1
	for i, c := range columns {
		if c.Constraint.Has(ast.PrimaryKey) {
			pkCount++
			pkIdx = i
		}
		if c.Name == "rowid" && !c.Constraint.Has(ast.PrimaryKey) {
			return nil, dberrors.ErrSchema.New("column \"rowid\" is reserved unless it is the primary key")
		}
	}
	if pkCount > 1 {
		return nil, dberrors.ErrSchema.New("multiple primary key declarations")
	}
	if pkIdx >= 0 && columns[pkIdx].Type != ast.IntType {
		return nil, dberrors.ErrSchema.New("primary key must be an int column")
	}

	if pkIdx < 0 {
		rowid := ast.ColumnDefinition{Name: "rowid", Type: ast.IntType, Constraint: ast.PrimaryKey}
		t.columns = append([]ast.ColumnDefinition{rowid}, columns...)
		t.autoRowID = true
	} else if pkIdx == 0 {
		t.columns = columns
	} else {
		t.columns = make([]ast.ColumnDefinition, 0, len(columns))
		t.columns = append(t.columns, columns[pkIdx])
		t.columns = append(t.columns, columns[:pkIdx]...)
		t.columns = append(t.columns, columns[pkIdx+1:]...)
	}

	t.pk = btree.New(t.btreeOpts...)
	t.uniqueIdx = make(map[int]*btree.Tree)
	for i, c := range t.columns {
		if i == 0 {
			continue
		}
		if c.Constraint.Has(ast.Unique) {
			if c.Type == ast.IntType {
				t.uniqueIdx[i] = btree.New(t.btreeOpts...)
			} else {
				t.log.Debugf("table %s: UNIQUE on non-int column %s declared but not enforced", name, c.Name)
			}
		}
	}
	if t.store == nil {
		t.store = store.NewMemory()
	}
	return t, nil
}

// Name returns the table's name.
func (t *Table) Name() string { return t.name }

// Columns returns the table's schema in column order (position 0 is the
// primary key, including a synthesized rowid if AutoRowID is true).
func (t *Table) Columns() []ast.ColumnDefinition { return t.columns }

// AutoRowID reports whether this table synthesized its own rowid column.
func (t *Table) AutoRowID() bool { return t.autoRowID }

// PK returns the primary-key btree, for executor-level index pushdown.
func (t *Table) PK() *btree.Tree { return t.pk }

// ColumnReferences returns one ast.ColumnReference per column, in schema
// order, each scoped to this table's name.
func (t *Table) ColumnReferences() []ast.ColumnReference {
	out := make([]ast.ColumnReference, len(t.columns))
	for i, c := range t.columns {
		out[i] = ast.ColumnReference{Table: t.name, Column: c.Name}
	}
	return out
}

// ColumnIndex returns the position of a column by name, or -1.
func (t *Table) ColumnIndex(name string) int {
	for i, c := range t.columns {
		if c.Name == name {
			return i
		}
	}
	return -1
}

func (t *Table) checkNotNull(row []value.Value) error {
	for i, c := range t.columns {
		if c.Constraint.Has(ast.NotNull) && row[i].IsNull() {
			return dberrors.ErrConstraint.New("column " + c.Name + " must not be null")
		}
	}
	return nil
}

func (t *Table) checkUnique(row []value.Value, skipSlot int) error {
	for i, idx := range t.uniqueIdx {
		v := row[i]
		if v.IsNull() {
			continue
		}
		if slot, ok := idx.Get(v.Int64()); ok && slot != skipSlot {
			return dberrors.ErrConstraint.New("duplicate value for unique column " + t.columns[i].Name)
		}
	}
	return nil
}

func (t *Table) indexUnique(row []value.Value, slot int) {
	for i, idx := range t.uniqueIdx {
		v := row[i]
		if !v.IsNull() {
			idx.Insert(v.Int64(), slot)
		}
	}
}

// DirectInsert is the INSERT path: values must match the declared column
// count unless AutoRowID is set, in which case a synthetic rowid (the
// current PK-index size) is prepended. Rejects on PK collision, NOT NULL
// violation, or UNIQUE-int collision.
func (t *Table) DirectInsert(values []value.Value) error {
	var row []value.Value
	if t.autoRowID {
		if len(values) != len(t.columns)-1 {
			return dberrors.ErrUsage.New("expected " + strconv.Itoa(len(t.columns)-1) + " values, got " + strconv.Itoa(len(values)))
		}
		row = make([]value.Value, 0, len(t.columns))
		row = append(row, value.Int(int64(t.pk.Len())))
		row = append(row, values...)
	} else {
		if len(values) != len(t.columns) {
			return dberrors.ErrUsage.New("expected " + strconv.Itoa(len(t.columns)) + " values, got " + strconv.Itoa(len(values)))
		}
		row = values
	}

	if err := t.checkNotNull(row); err != nil {
		return err
	}
	pk := row[0]
	if pk.IsNull() {
		return dberrors.ErrConstraint.New("primary key must not be null")
	}
	if _, exists := t.pk.Get(pk.Int64()); exists {
		return dberrors.ErrConstraint.New("duplicate primary key")
	}
	if err := t.checkUnique(row, -1); err != nil {
		return err
	}

	slot, err := t.store.Append(store.Row(row))
	if err != nil {
		return err
	}
	t.pk.Insert(pk.Int64(), slot)
	t.indexUnique(row, slot)
	t.log.Debugf("table %s: inserted pk=%d at slot=%d", t.name, pk.Int64(), slot)
	return nil
}

// Insert is the UPDATE path: row is a positional tuple already addressed
// by this table's own column order (engine.update builds it from a copy
// of the existing row with the assigned columns replaced). If
// the PK already exists its slot is overwritten; otherwise a new slot is
// appended and indexed, exactly like DirectInsert.
func (t *Table) Insert(row []value.Value) error {
	if err := t.checkNotNull(row); err != nil {
		return err
	}
	pk := row[0]
	if pk.IsNull() {
		return dberrors.ErrConstraint.New("primary key must not be null")
	}
	if slot, exists := t.pk.Get(pk.Int64()); exists {
		if err := t.checkUnique(row, slot); err != nil {
			return err
		}
		if err := t.store.Overwrite(slot, store.Row(row)); err != nil {
			return err
		}
		t.indexUnique(row, slot)
		t.log.Debugf("table %s: overwrote pk=%d at slot=%d", t.name, pk.Int64(), slot)
		return nil
	}
	if err := t.checkUnique(row, -1); err != nil {
		return err
	}
	slot, err := t.store.Append(store.Row(row))
	if err != nil {
		return err
	}
	t.pk.Insert(pk.Int64(), slot)
	t.indexUnique(row, slot)
	return nil
}

// GetRowByPK performs an index lookup, returning the row and true, or
// (nil, false) if pk is not present.
func (t *Table) GetRowByPK(pk int64) ([]value.Value, bool) {
	slot, ok := t.pk.Get(pk)
	if !ok {
		return nil, false
	}
	row, err := t.store.Read(slot)
	if err != nil {
		return nil, false
	}
	return []value.Value(row), true
}

// Scan yields rows whose PK falls in [start, stop); either bound may be nil
// for open. Rows come in ascending PK order, except when only stop is set:
// then they come in descending PK order (see btree.Tree.Range).
func (t *Table) Scan(start, stop *int64) ([][]value.Value, error) {
	pairs, err := t.pk.Range(start, stop, 0)
	if err != nil {
		return nil, err
	}
	out := make([][]value.Value, 0, len(pairs))
	for _, p := range pairs {
		row, err := t.store.Read(p.Slot)
		if err != nil {
			return nil, err
		}
		out = append(out, []value.Value(row))
	}
	return out, nil
}

// ScanReverse yields the rows whose PK is below stop, in descending PK
// order; it is the same as Scan(nil, &stop).
func (t *Table) ScanReverse(stop int64) ([][]value.Value, error) {
	return t.Scan(nil, &stop)
}

// DeleteByPK removes pk's entry from the primary-key index (tombstoning:
// the row store slot is left in place, see package btree's Delete).
func (t *Table) DeleteByPK(pk int64) bool {
	return t.pk.Delete(pk)
}


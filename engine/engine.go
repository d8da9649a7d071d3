// Package engine implements the executor: statement dispatch
// (CREATE/INSERT/SELECT/UPDATE/DELETE), index pushdown, and the
// join/filter/sort/project pipeline for SELECT. Grounded on the
// Database class in the original Python implementation this module
// reimplements.
package engine

import (
	"fmt"
	"sort"

	"github.com/embedsql/embedsql/ast"
	"github.com/embedsql/embedsql/dberrors"
	"github.com/embedsql/embedsql/enginelog"
	"github.com/embedsql/embedsql/parser"
	"github.com/embedsql/embedsql/store"
	"github.com/embedsql/embedsql/table"
	"github.com/embedsql/embedsql/value"
)

// Engine owns every table created in its lifetime and executes statements
// against them. Nothing is shared across Engine instances.
type Engine struct {
	tables       map[string]*table.Table
	log          enginelog.Logger
	tableOpts    []table.Option
	storeFactory func(tableName string) (store.Store, error)
}

// Option configures an Engine at construction time.
type Option func(*Engine)

// WithLogger attaches a logging capability, passed through to every table
// the engine creates.
func WithLogger(l enginelog.Logger) Option {
	return func(e *Engine) {
		e.log = l
		e.tableOpts = append(e.tableOpts, table.WithLogger(l))
	}
}

// WithBTreeDegree sets the branching factor for every index (primary key
// and UNIQUE-int) of every table this engine creates.
func WithBTreeDegree(degree int) Option {
	return func(e *Engine) { e.tableOpts = append(e.tableOpts, table.WithBTreeDegree(degree)) }
}

// WithStoreFactory makes every CREATE TABLE open its row store through
// factory instead of the in-memory default, e.g. to back every table
// with its own Bolt bucket:
//
//	engine.WithStoreFactory(func(name string) (store.Store, error) {
//		return store.OpenBolt(db, name)
//	})
func WithStoreFactory(factory func(tableName string) (store.Store, error)) Option {
	return func(e *Engine) { e.storeFactory = factory }
}

// New creates an empty Engine.
func New(opts ...Option) *Engine {
	e := &Engine{tables: make(map[string]*table.Table), log: enginelog.Discard{}}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// workingRow is the executor's internal accumulator: a positional tuple
// plus the column references it carries, widened as joins accumulate.
type workingRow struct {
	values  []value.Value
	columns []ast.ColumnReference
}

func (w workingRow) context() *ast.Context { return ast.NewContext(w.values, w.columns) }

func (w workingRow) indexOf(ref ast.ColumnReference) (int, bool) {
	return columnIndexIn(w.columns, ref)
}

// Execute accepts either a SQL string (parsed first) or a pre-built
// ast.Statement, and dispatches it. SELECT returns []Row; INSERT and
// CREATE TABLE return nil on success; UPDATE and DELETE return an int
// count of affected rows; any other input is an unsupported-statement
// error.
func (e *Engine) Execute(cmd any) (any, error) {
	if s, ok := cmd.(string); ok {
		stmt, err := parser.Parse(s)
		if err != nil {
			return nil, err
		}
		cmd = stmt
	}
	switch stmt := cmd.(type) {
	case *ast.CreateTable:
		return nil, e.createTable(stmt)
	case *ast.Insert:
		return nil, e.insert(stmt)
	case *ast.Select:
		return e.selectStmt(stmt)
	case *ast.Update:
		return e.update(stmt)
	case *ast.Delete:
		return e.deleteStmt(stmt)
	default:
		return nil, dberrors.ErrUnsupported.New(fmt.Sprintf("%T", cmd))
	}
}

func (e *Engine) createTable(stmt *ast.CreateTable) error {
	if _, exists := e.tables[stmt.Table]; exists {
		return dberrors.ErrSchema.New("duplicate table " + stmt.Table)
	}
	opts := e.tableOpts
	if e.storeFactory != nil {
		s, err := e.storeFactory(stmt.Table)
		if err != nil {
			return err
		}
		opts = append(append([]table.Option(nil), opts...), table.WithStore(s))
	}
	t, err := table.New(stmt.Table, stmt.Columns, opts...)
	if err != nil {
		return err
	}
	e.tables[stmt.Table] = t
	return nil
}

func (e *Engine) mustTable(name string) (*table.Table, error) {
	t, ok := e.tables[name]
	if !ok {
		return nil, dberrors.ErrLookup.New("no such table " + name)
	}
	return t, nil
}

func (e *Engine) insert(stmt *ast.Insert) error {
	t, err := e.mustTable(stmt.Table)
	if err != nil {
		return err
	}
	values := make([]value.Value, len(stmt.Values))
	for i, expr := range stmt.Values {
		v, err := expr.Evaluate(nil)
		if err != nil {
			return err
		}
		values[i] = v
	}
	return t.DirectInsert(values)
}

// pushdown inspects where for the shape "<main table PK> OP literal" (or
// IN) and, if it matches, returns the matching rows directly from the
// index. matched is false when where doesn't have a pushdownable shape,
// in which case the caller must fall back to a full scan.
func pushdown(t *table.Table, mainTable string, where ast.Predicate) (rows [][]value.Value, matched bool, err error) {
	if where == nil {
		return nil, false, nil
	}
	pkCol := t.Columns()[0].Name
	isMainPK := func(ref ast.ColumnReference) bool {
		return ref.Table == mainTable && ref.Column == pkCol
	}
	litInt := func(expr ast.ValueExpr) (int64, bool) {
		if !expr.IsLiteral() {
			return 0, false
		}
		v, err := expr.Evaluate(nil)
		if err != nil || v.Kind() != value.IntKind {
			return 0, false
		}
		return v.Int64(), true
	}

	switch c := where.(type) {
	case *ast.Equals:
		ref, ok := c.Left.(ast.ColumnReference)
		if !ok || !isMainPK(ref) {
			return nil, false, nil
		}
		lit, ok := litInt(c.Right)
		if !ok {
			return nil, false, nil
		}
		if row, found := t.GetRowByPK(lit); found {
			return [][]value.Value{row}, true, nil
		}
		return nil, true, nil
	case *ast.InFunc:
		ref, ok := c.Left.(ast.ColumnReference)
		if !ok || !isMainPK(ref) {
			return nil, false, nil
		}
		var out [][]value.Value
		for _, expr := range c.Values {
			lit, ok := litInt(expr)
			if !ok {
				return nil, false, nil
			}
			if row, found := t.GetRowByPK(lit); found {
				out = append(out, row)
			}
		}
		return out, true, nil
	case *ast.Greater:
		ref, ok := c.Left.(ast.ColumnReference)
		if !ok || !isMainPK(ref) {
			return nil, false, nil
		}
		lit, ok := litInt(c.Right)
		if !ok {
			return nil, false, nil
		}
		rows, err := t.Scan(&lit, nil)
		return rows, true, err
	case *ast.GreaterEq:
		ref, ok := c.Left.(ast.ColumnReference)
		if !ok || !isMainPK(ref) {
			return nil, false, nil
		}
		lit, ok := litInt(c.Right)
		if !ok {
			return nil, false, nil
		}
		rows, err := t.Scan(&lit, nil)
		return rows, true, err
	case *ast.Less:
		ref, ok := c.Left.(ast.ColumnReference)
		if !ok || !isMainPK(ref) {
			return nil, false, nil
		}
		lit, ok := litInt(c.Right)
		if !ok {
			return nil, false, nil
		}
		rows, err := t.Scan(nil, &lit)
		return rows, true, err
	case *ast.LessEq:
		ref, ok := c.Left.(ast.ColumnReference)
		if !ok || !isMainPK(ref) {
			return nil, false, nil
		}
		lit, ok := litInt(c.Right)
		if !ok {
			return nil, false, nil
		}
		rows, err := t.Scan(nil, &lit)
		if err != nil {
			return nil, true, err
		}
		if row, found := t.GetRowByPK(lit); found {
			rows = append(rows, row)
		}
		return rows, true, nil
	default:
		return nil, false, nil
	}
}

// baseRows resolves the main table's starting row set, attempting index
// pushdown first and falling back to a full ascending scan.
func (e *Engine) baseRows(t *table.Table, mainTable string, where ast.Predicate) ([][]value.Value, error) {
	if rows, matched, err := pushdown(t, mainTable, where); err != nil {
		return nil, err
	} else if matched {
		e.log.Debugf("table %s: index pushdown satisfied WHERE clause", mainTable)
		return rows, nil
	}
	e.log.Debugf("table %s: falling back to full scan", mainTable)
	return t.Scan(nil, nil)
}

func (e *Engine) selectStmt(stmt *ast.Select) ([]Row, error) {
	mainTable, err := e.mustTable(stmt.From.Table.Name)
	if err != nil {
		return nil, err
	}

	baseRows, err := e.baseRows(mainTable, stmt.From.Table.Name, stmt.Where)
	if err != nil {
		return nil, err
	}
	mainCols := mainTable.ColumnReferences()
	working := make([]workingRow, len(baseRows))
	for i, row := range baseRows {
		working[i] = workingRow{values: row, columns: mainCols}
	}

	// schemaCols tracks the accumulated column shape independently of
	// working's row data, so ORDER BY/projection can resolve column
	// references even when no rows survived the WHERE clause or joins.
	schemaCols := append([]ast.ColumnReference(nil), mainCols...)
	for _, join := range stmt.From.Joins {
		rightTable, err := e.mustTable(join.Table.Name)
		if err != nil {
			return nil, err
		}
		schemaCols = append(schemaCols, rightTable.ColumnReferences()...)

		working, err = e.applyJoin(working, join)
		if err != nil {
			return nil, err
		}
	}

	if stmt.Where != nil {
		filtered := working[:0]
		for _, row := range working {
			ok, err := stmt.Where.Evaluate(row.context())
			if err != nil {
				return nil, err
			}
			if ok {
				filtered = append(filtered, row)
			}
		}
		working = filtered
	}

	if stmt.Order != nil {
		idxs := make([]int, len(stmt.Order.Columns))
		for i, c := range stmt.Order.Columns {
			idx, ok := columnIndexIn(schemaCols, c)
			if !ok {
				return nil, dberrors.ErrLookup.New(c.String())
			}
			idxs[i] = idx
		}
		sort.SliceStable(working, func(i, j int) bool {
			for _, idx := range idxs {
				cmp, err := value.Compare(working[i].values[idx], working[j].values[idx])
				if err != nil || cmp == 0 {
					continue
				}
				if stmt.Order.Desc {
					return cmp > 0
				}
				return cmp < 0
			}
			return false
		})
	}

	out := make([]Row, len(working))
	for i, row := range working {
		data := make([]value.Value, len(stmt.Columns))
		names := make([]string, len(stmt.Columns))
		for j, c := range stmt.Columns {
			idx, ok := row.indexOf(c)
			if !ok {
				return nil, dberrors.ErrLookup.New(c.String())
			}
			data[j] = row.values[idx]
			names[j] = c.DisplayName()
		}
		out[i] = Row{Data: data, Names: names}
	}
	return out, nil
}

// columnIndexIn resolves c against an accumulated column schema, the same
// alias-ignoring lookup workingRow.indexOf does over an actual row. It
// exists separately from workingRow so ORDER BY can resolve against the
// SELECT's column shape even when zero rows survived WHERE/joins.
func columnIndexIn(cols []ast.ColumnReference, c ast.ColumnReference) (int, bool) {
	for i, col := range cols {
		if col.Equal(c) {
			return i, true
		}
	}
	return 0, false
}

func (e *Engine) applyJoin(left []workingRow, join ast.JoinTable) ([]workingRow, error) {
	right, err := e.mustTable(join.Table.Name)
	if err != nil {
		return nil, err
	}
	rightCols := right.ColumnReferences()
	nullRightRow := func() []value.Value {
		row := make([]value.Value, len(rightCols))
		for i := range row {
			row[i] = value.NullValue
		}
		return row
	}
	widen := func(l workingRow, rightRow []value.Value) workingRow {
		values := make([]value.Value, 0, len(l.values)+len(rightRow))
		values = append(values, l.values...)
		values = append(values, rightRow...)
		columns := make([]ast.ColumnReference, 0, len(l.columns)+len(rightCols))
		columns = append(columns, l.columns...)
		columns = append(columns, rightCols...)
		return workingRow{values: values, columns: columns}
	}

	var out []workingRow
	if join.Left == nil {
		e.log.Debugf("join %s: cross join (no ON clause)", join.Table.Name)
		rightRows, err := right.Scan(nil, nil)
		if err != nil {
			return nil, err
		}
		for _, l := range left {
			for _, r := range rightRows {
				out = append(out, widen(l, r))
			}
		}
		return out, nil
	}

	rightPKCol := right.Columns()[0].Name
	viaIndex := join.Right.Column == rightPKCol
	var fullRightRows [][]value.Value
	rightColIdx := right.ColumnIndex(join.Right.Column)
	if !viaIndex {
		fullRightRows, err = right.Scan(nil, nil)
		if err != nil {
			return nil, err
		}
	} else {
		e.log.Debugf("join %s: matching via primary-key index", join.Table.Name)
	}

	for _, l := range left {
		leftIdx, ok := l.indexOf(*join.Left)
		if !ok {
			return nil, dberrors.ErrLookup.New(join.Left.String())
		}
		leftVal := l.values[leftIdx]
		matched := false
		if viaIndex {
			if leftVal.Kind() == value.IntKind {
				if row, found := right.GetRowByPK(leftVal.Int64()); found {
					out = append(out, widen(l, row))
					matched = true
				}
			}
		} else {
			for _, r := range fullRightRows {
				if value.Equal(r[rightColIdx], leftVal) {
					out = append(out, widen(l, r))
					matched = true
				}
			}
		}
		if !matched && join.Outer {
			out = append(out, widen(l, nullRightRow()))
		}
	}
	return out, nil
}

func (e *Engine) update(stmt *ast.Update) (int, error) {
	t, err := e.mustTable(stmt.Table)
	if err != nil {
		return 0, err
	}
	rows, err := e.baseRows(t, stmt.Table, stmt.Where)
	if err != nil {
		return 0, err
	}
	cols := t.ColumnReferences()
	count := 0
	for _, row := range rows {
		if stmt.Where != nil {
			ok, err := stmt.Where.Evaluate(ast.NewContext(row, cols))
			if err != nil {
				return count, err
			}
			if !ok {
				continue
			}
		}
		mapping := append([]value.Value{}, row...)
		ctx := ast.NewContext(row, cols)
		for _, a := range stmt.Assignments {
			idx := t.ColumnIndex(a.Column.Column)
			if idx < 0 {
				return count, dberrors.ErrLookup.New(a.Column.String())
			}
			v, err := a.Value.Evaluate(ctx)
			if err != nil {
				return count, err
			}
			mapping[idx] = v
		}
		if err := t.Insert(mapping); err != nil {
			return count, err
		}
		count++
	}
	return count, nil
}

func (e *Engine) deleteStmt(stmt *ast.Delete) (int, error) {
	t, err := e.mustTable(stmt.Table)
	if err != nil {
		return 0, err
	}
	rows, err := e.baseRows(t, stmt.Table, stmt.Where)
	if err != nil {
		return 0, err
	}
	cols := t.ColumnReferences()
	count := 0
	for _, row := range rows {
		if stmt.Where != nil {
			ok, err := stmt.Where.Evaluate(ast.NewContext(row, cols))
			if err != nil {
				return count, err
			}
			if !ok {
				continue
			}
		}
		if t.DeleteByPK(row[0].Int64()) {
			count++
		}
	}
	return count, nil
}

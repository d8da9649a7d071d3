package engine

import (
	"path/filepath"
	"testing"

	bolt "github.com/boltdb/bolt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/embedsql/embedsql/store"
	"github.com/embedsql/embedsql/value"
)

func mustExec(t *testing.T, e *Engine, sql string) any {
	t.Helper()
	res, err := e.Execute(sql)
	require.NoError(t, err, "Execute(%q)", sql)
	return res
}

func seedMain(t *testing.T, e *Engine) {
	t.Helper()
	mustExec(t, e, "CREATE TABLE main(id int, cola int, colb varchar(10))")
	mustExec(t, e, "INSERT INTO main VALUES(1, 10, 'a1')")
	mustExec(t, e, "INSERT INTO main VALUES(2, 9, 'a2')")
	mustExec(t, e, "INSERT INTO main VALUES(3, 8, 'a3')")
}

func seedJoinTables(t *testing.T, e *Engine) {
	t.Helper()
	seedMain(t, e)
	mustExec(t, e, "CREATE TABLE other(id int, data varchar(10))")
	mustExec(t, e, "INSERT INTO other VALUES(1, 'other1')")
	mustExec(t, e, "INSERT INTO other VALUES(2, 'other2')")
}

func TestCreateAndSelectAll(t *testing.T) {
	e := New()
	seedMain(t, e)
	rows := mustExec(t, e, "SELECT main.id, main.cola, main.colb FROM main").([]Row)
	require.Len(t, rows, 3)
	want := [][]value.Value{
		{value.Int(1), value.Int(10), value.Str("a1")},
		{value.Int(2), value.Int(9), value.Str("a2")},
		{value.Int(3), value.Int(8), value.Str("a3")},
	}
	for i, row := range rows {
		assert.True(t, row.EqualTuple(want[i]), "row %d = %+v, want %+v", i, row.Data, want[i])
	}
}

func TestOrderByDesc(t *testing.T) {
	e := New()
	seedMain(t, e)
	rows := mustExec(t, e, "SELECT main.id, main.cola, main.colb FROM main ORDER BY main.id DESC").([]Row)
	want := []int64{3, 2, 1}
	for i, row := range rows {
		assert.Equal(t, want[i], row.Data[0].Int64())
	}
}

func TestOrderByOnEmptyResultSetReturnsEmptyNotError(t *testing.T) {
	e := New()
	seedMain(t, e)
	rows := mustExec(t, e, "SELECT main.id FROM main WHERE main.id > 999 ORDER BY main.id").([]Row)
	assert.Empty(t, rows)
}

func TestOrderByAfterJoinOnEmptyResultSetReturnsEmptyNotError(t *testing.T) {
	e := New()
	seedJoinTables(t, e)
	rows := mustExec(t, e, "SELECT main.id, other.id FROM main JOIN other ON main.id=other.id WHERE main.id > 999 ORDER BY other.id").([]Row)
	assert.Empty(t, rows)
}

func TestWhereOnPKPushdown(t *testing.T) {
	e := New()
	seedMain(t, e)
	rows := mustExec(t, e, "SELECT main.id, main.cola, main.colb FROM main WHERE main.id = 1").([]Row)
	require.Len(t, rows, 1)
	assert.True(t, rows[0].EqualTuple([]value.Value{value.Int(1), value.Int(10), value.Str("a1")}))
}

func TestInnerJoinOnPK(t *testing.T) {
	e := New()
	seedJoinTables(t, e)
	rows := mustExec(t, e, "SELECT main.id, main.cola, main.colb, other.id, other.data FROM main JOIN other ON main.id=other.id").([]Row)
	require.Len(t, rows, 2)
	want := [][]value.Value{
		{value.Int(1), value.Int(10), value.Str("a1"), value.Int(1), value.Str("other1")},
		{value.Int(2), value.Int(9), value.Str("a2"), value.Int(2), value.Str("other2")},
	}
	for i, row := range rows {
		assert.True(t, row.EqualTuple(want[i]), "row %d = %+v, want %+v", i, row.Data, want[i])
	}
}

func TestInnerJoinOrientationIndependent(t *testing.T) {
	e := New()
	seedJoinTables(t, e)
	rows := mustExec(t, e, "SELECT main.id, main.cola, main.colb, other.id, other.data FROM main JOIN other ON other.id=main.id").([]Row)
	require.Len(t, rows, 2)
	assert.True(t, rows[0].EqualTuple([]value.Value{value.Int(1), value.Int(10), value.Str("a1"), value.Int(1), value.Str("other1")}))
}

func TestCrossJoin(t *testing.T) {
	e := New()
	seedJoinTables(t, e)
	rows := mustExec(t, e, "SELECT main.id, other.id FROM main JOIN other").([]Row)
	assert.Len(t, rows, 6, "3*2 cross join rows")
}

func TestUpdateByPK(t *testing.T) {
	e := New()
	seedMain(t, e)
	res := mustExec(t, e, "UPDATE main SET main.cola=1 WHERE main.rowid=0")
	count, ok := res.(int)
	require.True(t, ok)
	assert.Equal(t, 1, count)

	sel := mustExec(t, e, "SELECT main.cola FROM main").([]Row)
	want := []int64{1, 9, 8}
	for i, row := range sel {
		assert.Equal(t, want[i], row.Data[0].Int64())
	}
}

func TestDeleteRemovesRow(t *testing.T) {
	e := New()
	seedMain(t, e)
	res := mustExec(t, e, "DELETE FROM main WHERE main.id = 2")
	count, ok := res.(int)
	require.True(t, ok)
	assert.Equal(t, 1, count)

	sel := mustExec(t, e, "SELECT main.id FROM main").([]Row)
	assert.Len(t, sel, 2)
}

func TestLeftJoinEmitsNullsWhenUnmatched(t *testing.T) {
	e := New()
	seedMain(t, e)
	mustExec(t, e, "CREATE TABLE other(id int, data varchar(10))")
	mustExec(t, e, "INSERT INTO other VALUES(1, 'other1')")
	rows := mustExec(t, e, "SELECT main.id, other.data FROM main LEFT JOIN other ON main.id=other.id").([]Row)
	require.Len(t, rows, 3, "outer join keeps unmatched left rows")
	assert.True(t, rows[1].Data[1].IsNull(), "unmatched right side should be null")
}

func TestNoSuchTableError(t *testing.T) {
	e := New()
	_, err := e.Execute("SELECT t.a FROM t")
	assert.Error(t, err)
}

func TestDuplicateTableRejected(t *testing.T) {
	e := New()
	mustExec(t, e, "CREATE TABLE t(a int)")
	_, err := e.Execute("CREATE TABLE t(a int)")
	assert.Error(t, err)
}

func TestUnsupportedStatementKind(t *testing.T) {
	e := New()
	_, err := e.Execute(42)
	assert.Error(t, err)
}

func TestWithStoreFactoryBacksTableWithBolt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "engine.db")
	db, err := bolt.Open(path, 0600, nil)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	e := New(WithStoreFactory(func(name string) (store.Store, error) {
		return store.OpenBolt(db, name)
	}))
	seedMain(t, e)

	rows := mustExec(t, e, "SELECT main.id, main.cola, main.colb FROM main").([]Row)
	require.Len(t, rows, 3)
	assert.True(t, rows[0].EqualTuple([]value.Value{value.Int(1), value.Int(10), value.Str("a1")}))
}

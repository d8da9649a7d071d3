package table

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/embedsql/embedsql/ast"
	"github.com/embedsql/embedsql/value"
)

func intCol(name string, constraint ast.ColumnConstraint) ast.ColumnDefinition {
	return ast.ColumnDefinition{Name: name, Type: ast.IntType, Constraint: constraint}
}

func strCol(name string, constraint ast.ColumnConstraint) ast.ColumnDefinition {
	return ast.ColumnDefinition{Name: name, Type: ast.VarcharType, Size: 32, Constraint: constraint}
}

func TestNewSynthesizesRowID(t *testing.T) {
	tbl, err := New("main", []ast.ColumnDefinition{
		intCol("cola", 0),
		strCol("colb", 0),
	})
	require.NoError(t, err)
	assert.True(t, tbl.AutoRowID(), "AutoRowID should be true when no column declares PRIMARY KEY")
	assert.Equal(t, "rowid", tbl.Columns()[0].Name)
}

func TestNewPutsDeclaredPKFirst(t *testing.T) {
	tbl, err := New("main", []ast.ColumnDefinition{
		intCol("cola", 0),
		intCol("id", ast.PrimaryKey),
	})
	require.NoError(t, err)
	assert.False(t, tbl.AutoRowID())
	assert.Equal(t, "id", tbl.Columns()[0].Name)
}

func TestNewRejectsMultiplePrimaryKeys(t *testing.T) {
	_, err := New("t", []ast.ColumnDefinition{
		intCol("a", ast.PrimaryKey),
		intCol("b", ast.PrimaryKey),
	})
	assert.Error(t, err)
}

func TestNewRejectsForbiddenRowIDName(t *testing.T) {
	_, err := New("t", []ast.ColumnDefinition{
		intCol("rowid", 0),
	})
	assert.Error(t, err)
}

func TestDirectInsertAndGetByPK(t *testing.T) {
	tbl, err := New("main", []ast.ColumnDefinition{
		intCol("id", ast.PrimaryKey),
		intCol("cola", 0),
		strCol("colb", 0),
	})
	require.NoError(t, err)
	require.NoError(t, tbl.DirectInsert([]value.Value{value.Int(1), value.Int(10), value.Str("a1")}))
	row, ok := tbl.GetRowByPK(1)
	require.True(t, ok)
	assert.Equal(t, int64(10), row[1].Int64())
}

func TestDirectInsertRejectsDuplicatePK(t *testing.T) {
	tbl, _ := New("main", []ast.ColumnDefinition{intCol("id", ast.PrimaryKey)})
	require.NoError(t, tbl.DirectInsert([]value.Value{value.Int(1)}))
	assert.Error(t, tbl.DirectInsert([]value.Value{value.Int(1)}))
}

func TestDirectInsertAutoRowIDPrepended(t *testing.T) {
	tbl, _ := New("main", []ast.ColumnDefinition{intCol("cola", 0)})
	require.NoError(t, tbl.DirectInsert([]value.Value{value.Int(42)}))
	row, ok := tbl.GetRowByPK(0)
	require.True(t, ok, "expected synthesized rowid 0")
	assert.Equal(t, int64(42), row[1].Int64())
}

func TestDirectInsertEnforcesNotNull(t *testing.T) {
	tbl, _ := New("main", []ast.ColumnDefinition{
		intCol("id", ast.PrimaryKey),
		strCol("colb", ast.NotNull),
	})
	err := tbl.DirectInsert([]value.Value{value.Int(1), value.NullValue})
	assert.Error(t, err)
}

func TestDirectInsertEnforcesUniqueInt(t *testing.T) {
	tbl, _ := New("main", []ast.ColumnDefinition{
		intCol("id", ast.PrimaryKey),
		intCol("cola", ast.Unique),
	})
	require.NoError(t, tbl.DirectInsert([]value.Value{value.Int(1), value.Int(5)}))
	assert.Error(t, tbl.DirectInsert([]value.Value{value.Int(2), value.Int(5)}))
}

func TestInsertOverwritesByPK(t *testing.T) {
	tbl, _ := New("main", []ast.ColumnDefinition{
		intCol("id", ast.PrimaryKey),
		intCol("cola", 0),
	})
	require.NoError(t, tbl.DirectInsert([]value.Value{value.Int(1), value.Int(10)}))
	require.NoError(t, tbl.Insert([]value.Value{value.Int(1), value.Int(99)}))
	row, _ := tbl.GetRowByPK(1)
	assert.Equal(t, int64(99), row[1].Int64())
}

func TestScanAscendingInRange(t *testing.T) {
	tbl, _ := New("main", []ast.ColumnDefinition{intCol("id", ast.PrimaryKey)})
	for i := int64(0); i < 5; i++ {
		require.NoError(t, tbl.DirectInsert([]value.Value{value.Int(i)}))
	}
	start, stop := int64(1), int64(4)
	rows, err := tbl.Scan(&start, &stop)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	for i, row := range rows {
		assert.Equal(t, int64(1+i), row[0].Int64())
	}
}

func TestDeleteByPKTombstones(t *testing.T) {
	tbl, _ := New("main", []ast.ColumnDefinition{intCol("id", ast.PrimaryKey)})
	require.NoError(t, tbl.DirectInsert([]value.Value{value.Int(1)}))
	assert.True(t, tbl.DeleteByPK(1))
	_, ok := tbl.GetRowByPK(1)
	assert.False(t, ok, "pk=1 should no longer be visible after delete")
}

func TestColumnReferencesInSchemaOrder(t *testing.T) {
	tbl, _ := New("main", []ast.ColumnDefinition{
		intCol("id", ast.PrimaryKey),
		intCol("cola", 0),
	})
	refs := tbl.ColumnReferences()
	want := []ast.ColumnReference{
		{Table: "main", Column: "id"},
		{Table: "main", Column: "cola"},
	}
	if diff := cmp.Diff(want, refs, cmpopts.IgnoreFields(ast.ColumnReference{}, "StartPos", "Alias")); diff != "" {
		t.Fatalf("ColumnReferences() mismatch (-want +got):\n%s", diff)
	}
}

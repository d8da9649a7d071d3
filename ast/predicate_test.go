package ast

import (
	"testing"

	"github.com/embedsql/embedsql/value"
)

func col(table, column string) ColumnReference {
	return ColumnReference{Table: table, Column: column}
}

func TestContextLookupIgnoresAlias(t *testing.T) {
	row := []value.Value{value.Int(5)}
	ctx := NewContext(row, []ColumnReference{col("t", "id")})

	ref := ColumnReference{Table: "t", Column: "id", Alias: "whatever"}
	v, ok := ctx.Lookup(ref)
	if !ok || v.Int64() != 5 {
		t.Fatalf("Lookup with alias set should ignore alias, got %v, %v", v, ok)
	}
}

func TestAndSimplifyShortCircuit(t *testing.T) {
	and := &And{Left: &FalseOp{}, Right: &TrueOp{}}
	simplified, err := and.Simplify()
	if err != nil {
		t.Fatal(err)
	}
	if !isFalse(simplified) {
		t.Fatalf("And(False, True) should simplify to False, got %s", simplified)
	}
}

func TestOrSimplifyTrue(t *testing.T) {
	or := &Or{Left: &FalseOp{}, Right: &TrueOp{}}
	simplified, err := or.Simplify()
	if err != nil {
		t.Fatal(err)
	}
	if !isTrue(simplified) {
		t.Fatalf("Or(False, True) should simplify to True, got %s", simplified)
	}
}

func TestOrCollapsesIntoInFunc(t *testing.T) {
	c := col("main", "id")
	or := &Or{
		Left:  &Equals{Left: c, Right: &IntegerLiteral{Value: 1}},
		Right: &Equals{Left: c, Right: &IntegerLiteral{Value: 2}},
	}
	simplified, err := or.Simplify()
	if err != nil {
		t.Fatal(err)
	}
	in, ok := simplified.(*InFunc)
	if !ok {
		t.Fatalf("expected *InFunc, got %T", simplified)
	}
	if len(in.Values) != 2 {
		t.Fatalf("expected 2 values, got %d", len(in.Values))
	}
}

func TestNotFlipsEqualsToNotEquals(t *testing.T) {
	c := col("main", "id")
	n := &Not{Operand: &Equals{Left: c, Right: &IntegerLiteral{Value: 1}}}
	simplified, err := n.Simplify()
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := simplified.(*NotEquals); !ok {
		t.Fatalf("expected *NotEquals, got %T", simplified)
	}
}

func TestLiteralOnLeftFlipsOrderedOperator(t *testing.T) {
	c := col("main", "id")
	less := &Less{Left: &IntegerLiteral{Value: 5}, Right: c}
	simplified, err := less.Simplify()
	if err != nil {
		t.Fatal(err)
	}
	g, ok := simplified.(*Greater)
	if !ok {
		t.Fatalf("expected *Greater after flipping literal-on-left Less, got %T", simplified)
	}
	if _, ok := g.Left.(ColumnReference); !ok {
		t.Fatalf("expected column on the left after normalization, got %T", g.Left)
	}
}

func TestEqualsFoldsLiteralLiteral(t *testing.T) {
	eq := &Equals{Left: &IntegerLiteral{Value: 1}, Right: &IntegerLiteral{Value: 1}}
	simplified, err := eq.Simplify()
	if err != nil {
		t.Fatal(err)
	}
	if !isTrue(simplified) {
		t.Fatalf("Equals(1,1) should fold to True, got %s", simplified)
	}

	neq := &Equals{Left: &IntegerLiteral{Value: 1}, Right: &IntegerLiteral{Value: 2}}
	simplified, err = neq.Simplify()
	if err != nil {
		t.Fatal(err)
	}
	if !isFalse(simplified) {
		t.Fatalf("Equals(1,2) should fold to False, got %s", simplified)
	}
}

func TestColumnReferenceEqualIgnoresAlias(t *testing.T) {
	a := ColumnReference{Table: "t", Column: "id", Alias: "x"}
	b := ColumnReference{Table: "t", Column: "id", Alias: "y"}
	if !a.Equal(b) {
		t.Fatal("ColumnReference.Equal must ignore Alias")
	}
}

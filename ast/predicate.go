package ast

import (
	"strings"

	"github.com/embedsql/embedsql/token"
	"github.com/embedsql/embedsql/value"
)

// TrueOp and FalseOp are the boolean constants the simplifier folds to.
type TrueOp struct{ StartPos token.Pos }
type FalseOp struct{ StartPos token.Pos }

func (t *TrueOp) Pos() token.Pos                      { return t.StartPos }
func (t *TrueOp) Evaluate(_ *Context) (bool, error)    { return true, nil }
func (t *TrueOp) Simplify() (Predicate, error)         { return t, nil }
func (t *TrueOp) Visit(consumer func(Predicate))       { consumer(t) }
func (t *TrueOp) String() string                       { return "TRUE" }

func (f *FalseOp) Pos() token.Pos                   { return f.StartPos }
func (f *FalseOp) Evaluate(_ *Context) (bool, error) { return false, nil }
func (f *FalseOp) Simplify() (Predicate, error)      { return f, nil }
func (f *FalseOp) Visit(consumer func(Predicate))    { consumer(f) }
func (f *FalseOp) String() string                    { return "FALSE" }

// And is the conjunction of two predicates.
type And struct {
	StartPos    token.Pos
	Left, Right Predicate
}

func (a *And) Pos() token.Pos { return a.StartPos }
func (a *And) Evaluate(ctx *Context) (bool, error) {
	l, err := a.Left.Evaluate(ctx)
	if err != nil {
		return false, err
	}
	if !l {
		return false, nil
	}
	return a.Right.Evaluate(ctx)
}

func (a *And) Simplify() (Predicate, error) {
	left, err := a.Left.Simplify()
	if err != nil {
		return nil, err
	}
	right, err := a.Right.Simplify()
	if err != nil {
		return nil, err
	}
	if isFalse(left) || isFalse(right) {
		return &FalseOp{StartPos: a.StartPos}, nil
	}
	if isTrue(left) && isTrue(right) {
		return &TrueOp{StartPos: a.StartPos}, nil
	}
	return &And{StartPos: a.StartPos, Left: left, Right: right}, nil
}

func (a *And) Visit(consumer func(Predicate)) {
	consumer(a)
	a.Left.Visit(consumer)
	a.Right.Visit(consumer)
}

func (a *And) String() string { return "(" + a.Left.String() + " AND " + a.Right.String() + ")" }

// Or is the disjunction of two predicates.
type Or struct {
	StartPos    token.Pos
	Left, Right Predicate
}

func (o *Or) Pos() token.Pos { return o.StartPos }
func (o *Or) Evaluate(ctx *Context) (bool, error) {
	l, err := o.Left.Evaluate(ctx)
	if err != nil {
		return false, err
	}
	if l {
		return true, nil
	}
	return o.Right.Evaluate(ctx)
}

func (o *Or) Simplify() (Predicate, error) {
	left, err := o.Left.Simplify()
	if err != nil {
		return nil, err
	}
	right, err := o.Right.Simplify()
	if err != nil {
		return nil, err
	}
	if isTrue(left) || isTrue(right) {
		return &TrueOp{StartPos: o.StartPos}, nil
	}
	if isFalse(left) && isFalse(right) {
		return &FalseOp{StartPos: o.StartPos}, nil
	}
	if merged := mergeIntoInFunc(o.StartPos, left, right); merged != nil {
		return merged, nil
	}
	return &Or{StartPos: o.StartPos, Left: left, Right: right}, nil
}

func (o *Or) Visit(consumer func(Predicate)) {
	consumer(o)
	o.Left.Visit(consumer)
	o.Right.Visit(consumer)
}

func (o *Or) String() string { return "(" + o.Left.String() + " OR " + o.Right.String() + ")" }

// mergeIntoInFunc implements the Or-over-same-column collapse into InFunc:
// Or(Equals(c,a), Equals(c,b)), Or(Equals(c,a), InFunc(c,xs)), and
// Or(InFunc(c,xs), InFunc(c,ys)), in either operand order. Returns nil if
// left/right don't match one of these shapes.
func mergeIntoInFunc(pos token.Pos, left, right Predicate) Predicate {
	lc, lvals, lok := asEqualsOrIn(left)
	rc, rvals, rok := asEqualsOrIn(right)
	if !lok || !rok || !lc.Equal(rc) {
		return nil
	}
	return &InFunc{StartPos: pos, Left: lc, Values: append(append([]ValueExpr{}, lvals...), rvals...)}
}

func asEqualsOrIn(p Predicate) (ColumnReference, []ValueExpr, bool) {
	switch n := p.(type) {
	case *Equals:
		if c, ok := n.Left.(ColumnReference); ok {
			return c, []ValueExpr{n.Right}, true
		}
	case *InFunc:
		if c, ok := n.Left.(ColumnReference); ok {
			return c, n.Values, true
		}
	}
	return ColumnReference{}, nil, false
}

// Not is logical negation.
type Not struct {
	StartPos token.Pos
	Operand  Predicate
}

func (n *Not) Pos() token.Pos { return n.StartPos }
func (n *Not) Evaluate(ctx *Context) (bool, error) {
	v, err := n.Operand.Evaluate(ctx)
	if err != nil {
		return false, err
	}
	return !v, nil
}

func (n *Not) Simplify() (Predicate, error) {
	operand, err := n.Operand.Simplify()
	if err != nil {
		return nil, err
	}
	switch o := operand.(type) {
	case *TrueOp:
		return &FalseOp{StartPos: n.StartPos}, nil
	case *FalseOp:
		return &TrueOp{StartPos: n.StartPos}, nil
	case *Equals:
		return &NotEquals{StartPos: n.StartPos, Left: o.Left, Right: o.Right}, nil
	case *NotEquals:
		return &Equals{StartPos: n.StartPos, Left: o.Left, Right: o.Right}, nil
	}
	return &Not{StartPos: n.StartPos, Operand: operand}, nil
}

func (n *Not) Visit(consumer func(Predicate)) {
	consumer(n)
	n.Operand.Visit(consumer)
}

func (n *Not) String() string { return "NOT (" + n.Operand.String() + ")" }

func isTrue(p Predicate) bool  { _, ok := p.(*TrueOp); return ok }
func isFalse(p Predicate) bool { _, ok := p.(*FalseOp); return ok }

// comparison operands are evaluated without regard to null-ness beyond what
// value.Equal/value.Compare already define.

func evalOperands(ctx *Context, left, right ValueExpr) (value.Value, value.Value, error) {
	l, err := left.Evaluate(ctx)
	if err != nil {
		return value.Value{}, value.Value{}, err
	}
	r, err := right.Evaluate(ctx)
	if err != nil {
		return value.Value{}, value.Value{}, err
	}
	return l, r, nil
}

func columnsOf(exprs ...ValueExpr) []ColumnReference {
	var out []ColumnReference
	for _, e := range exprs {
		if c, ok := e.(ColumnReference); ok {
			out = append(out, c)
		}
	}
	return out
}

// Equals is the "=" comparison.
type Equals struct {
	StartPos    token.Pos
	Left, Right ValueExpr
}

func (e *Equals) Pos() token.Pos { return e.StartPos }
func (e *Equals) Evaluate(ctx *Context) (bool, error) {
	l, r, err := evalOperands(ctx, e.Left, e.Right)
	if err != nil {
		return false, err
	}
	return value.Equal(l, r), nil
}
func (e *Equals) Simplify() (Predicate, error) {
	return simplifySymmetric(e.StartPos, e.Left, e.Right,
		func(pos token.Pos, l, r ValueExpr) Predicate { return &Equals{StartPos: pos, Left: l, Right: r} },
		func(a, b value.Value) bool { return value.Equal(a, b) })
}
func (e *Equals) Visit(consumer func(Predicate))     { consumer(e) }
func (e *Equals) ColumnsUsed() []ColumnReference      { return columnsOf(e.Left, e.Right) }
func (e *Equals) String() string                      { return e.Left.String() + " = " + e.Right.String() }

// NotEquals is the "!=" comparison.
type NotEquals struct {
	StartPos    token.Pos
	Left, Right ValueExpr
}

func (e *NotEquals) Pos() token.Pos { return e.StartPos }
func (e *NotEquals) Evaluate(ctx *Context) (bool, error) {
	l, r, err := evalOperands(ctx, e.Left, e.Right)
	if err != nil {
		return false, err
	}
	return !value.Equal(l, r), nil
}
func (e *NotEquals) Simplify() (Predicate, error) {
	return simplifySymmetric(e.StartPos, e.Left, e.Right,
		func(pos token.Pos, l, r ValueExpr) Predicate { return &NotEquals{StartPos: pos, Left: l, Right: r} },
		func(a, b value.Value) bool { return !value.Equal(a, b) })
}
func (e *NotEquals) Visit(consumer func(Predicate))     { consumer(e) }
func (e *NotEquals) ColumnsUsed() []ColumnReference      { return columnsOf(e.Left, e.Right) }
func (e *NotEquals) String() string                      { return e.Left.String() + " != " + e.Right.String() }

// simplifySymmetric handles comparisons whose operator type does not change
// when operands are swapped (Equals, NotEquals): simplify both sides, fold
// to a constant if both are literal, otherwise normalize literal-on-left by
// swapping operands (the operator reads the same either way).
func simplifySymmetric(pos token.Pos, left, right ValueExpr, rebuild func(token.Pos, ValueExpr, ValueExpr) Predicate, fold func(value.Value, value.Value) bool) (Predicate, error) {
	l := left.Simplify()
	r := right.Simplify()
	if l.IsLiteral() && r.IsLiteral() {
		lv, err := l.Evaluate(nil)
		if err != nil {
			return nil, err
		}
		rv, err := r.Evaluate(nil)
		if err != nil {
			return nil, err
		}
		if fold(lv, rv) {
			return &TrueOp{StartPos: pos}, nil
		}
		return &FalseOp{StartPos: pos}, nil
	}
	if l.IsLiteral() && !r.IsLiteral() {
		return rebuild(pos, r, l), nil
	}
	return rebuild(pos, l, r), nil
}

// orderedComparison is shared by Less/LessEq/Greater/GreaterEq: simplify
// both operands, fold constant-constant via value.Compare, and otherwise
// normalize literal-on-left by swapping operands AND flipping the operator
// (Less<->Greater, LessEq<->GreaterEq) so the result stays semantically
// equivalent to the original expression.
func orderedComparison(pos token.Pos, left, right ValueExpr, fold func(int) bool, rebuildSame func(token.Pos, ValueExpr, ValueExpr) Predicate, rebuildFlipped func(token.Pos, ValueExpr, ValueExpr) Predicate) (Predicate, error) {
	l := left.Simplify()
	r := right.Simplify()
	if l.IsLiteral() && r.IsLiteral() {
		lv, err := l.Evaluate(nil)
		if err != nil {
			return nil, err
		}
		rv, err := r.Evaluate(nil)
		if err != nil {
			return nil, err
		}
		cmp, err := value.Compare(lv, rv)
		if err != nil {
			return nil, err
		}
		if fold(cmp) {
			return &TrueOp{StartPos: pos}, nil
		}
		return &FalseOp{StartPos: pos}, nil
	}
	if l.IsLiteral() && !r.IsLiteral() {
		return rebuildFlipped(pos, r, l), nil
	}
	return rebuildSame(pos, l, r), nil
}

// Less is the "<" comparison.
type Less struct {
	StartPos    token.Pos
	Left, Right ValueExpr
}

func (c *Less) Pos() token.Pos { return c.StartPos }
func (c *Less) Evaluate(ctx *Context) (bool, error) {
	l, r, err := evalOperands(ctx, c.Left, c.Right)
	if err != nil {
		return false, err
	}
	cmp, err := value.Compare(l, r)
	if err != nil {
		return false, err
	}
	return cmp < 0, nil
}
func (c *Less) Simplify() (Predicate, error) {
	return orderedComparison(c.StartPos, c.Left, c.Right,
		func(cmp int) bool { return cmp < 0 },
		func(pos token.Pos, l, r ValueExpr) Predicate { return &Less{StartPos: pos, Left: l, Right: r} },
		func(pos token.Pos, l, r ValueExpr) Predicate { return &Greater{StartPos: pos, Left: l, Right: r} })
}
func (c *Less) Visit(consumer func(Predicate))    { consumer(c) }
func (c *Less) ColumnsUsed() []ColumnReference     { return columnsOf(c.Left, c.Right) }
func (c *Less) String() string                     { return c.Left.String() + " < " + c.Right.String() }

// LessEq is the "<=" comparison.
type LessEq struct {
	StartPos    token.Pos
	Left, Right ValueExpr
}

func (c *LessEq) Pos() token.Pos { return c.StartPos }
func (c *LessEq) Evaluate(ctx *Context) (bool, error) {
	l, r, err := evalOperands(ctx, c.Left, c.Right)
	if err != nil {
		return false, err
	}
	cmp, err := value.Compare(l, r)
	if err != nil {
		return false, err
	}
	return cmp <= 0, nil
}
func (c *LessEq) Simplify() (Predicate, error) {
	return orderedComparison(c.StartPos, c.Left, c.Right,
		func(cmp int) bool { return cmp <= 0 },
		func(pos token.Pos, l, r ValueExpr) Predicate { return &LessEq{StartPos: pos, Left: l, Right: r} },
		func(pos token.Pos, l, r ValueExpr) Predicate { return &GreaterEq{StartPos: pos, Left: l, Right: r} })
}
func (c *LessEq) Visit(consumer func(Predicate))    { consumer(c) }
func (c *LessEq) ColumnsUsed() []ColumnReference     { return columnsOf(c.Left, c.Right) }
func (c *LessEq) String() string                     { return c.Left.String() + " <= " + c.Right.String() }

// Greater is the ">" comparison.
type Greater struct {
	StartPos    token.Pos
	Left, Right ValueExpr
}

func (c *Greater) Pos() token.Pos { return c.StartPos }
func (c *Greater) Evaluate(ctx *Context) (bool, error) {
	l, r, err := evalOperands(ctx, c.Left, c.Right)
	if err != nil {
		return false, err
	}
	cmp, err := value.Compare(l, r)
	if err != nil {
		return false, err
	}
	return cmp > 0, nil
}
func (c *Greater) Simplify() (Predicate, error) {
	return orderedComparison(c.StartPos, c.Left, c.Right,
		func(cmp int) bool { return cmp > 0 },
		func(pos token.Pos, l, r ValueExpr) Predicate { return &Greater{StartPos: pos, Left: l, Right: r} },
		func(pos token.Pos, l, r ValueExpr) Predicate { return &Less{StartPos: pos, Left: l, Right: r} })
}
func (c *Greater) Visit(consumer func(Predicate))    { consumer(c) }
func (c *Greater) ColumnsUsed() []ColumnReference      { return columnsOf(c.Left, c.Right) }
func (c *Greater) String() string                      { return c.Left.String() + " > " + c.Right.String() }

// GreaterEq is the ">=" comparison.
type GreaterEq struct {
	StartPos    token.Pos
	Left, Right ValueExpr
}

func (c *GreaterEq) Pos() token.Pos { return c.StartPos }
func (c *GreaterEq) Evaluate(ctx *Context) (bool, error) {
	l, r, err := evalOperands(ctx, c.Left, c.Right)
	if err != nil {
		return false, err
	}
	cmp, err := value.Compare(l, r)
	if err != nil {
		return false, err
	}
	return cmp >= 0, nil
}
func (c *GreaterEq) Simplify() (Predicate, error) {
	return orderedComparison(c.StartPos, c.Left, c.Right,
		func(cmp int) bool { return cmp >= 0 },
		func(pos token.Pos, l, r ValueExpr) Predicate { return &GreaterEq{StartPos: pos, Left: l, Right: r} },
		func(pos token.Pos, l, r ValueExpr) Predicate { return &LessEq{StartPos: pos, Left: l, Right: r} })
}
func (c *GreaterEq) Visit(consumer func(Predicate))    { consumer(c) }
func (c *GreaterEq) ColumnsUsed() []ColumnReference      { return columnsOf(c.Left, c.Right) }
func (c *GreaterEq) String() string                      { return c.Left.String() + " >= " + c.Right.String() }

// InFunc is "left IN (values...)". The parser only builds it from a list of
// literals, but Or.Simplify's same-column merge (mergeIntoInFunc) also
// carries over an Equals right-hand operand, which may be a column
// reference; Evaluate resolves every value in the row context.
type InFunc struct {
	StartPos token.Pos
	Left     ValueExpr
	Values   []ValueExpr
}

func (f *InFunc) Pos() token.Pos { return f.StartPos }
func (f *InFunc) Evaluate(ctx *Context) (bool, error) {
	l, err := f.Left.Evaluate(ctx)
	if err != nil {
		return false, err
	}
	for _, v := range f.Values {
		rv, err := v.Evaluate(ctx)
		if err != nil {
			return false, err
		}
		if value.Equal(l, rv) {
			return true, nil
		}
	}
	return false, nil
}

func (f *InFunc) Simplify() (Predicate, error) {
	left := f.Left.Simplify()
	values := make([]ValueExpr, len(f.Values))
	for i, v := range f.Values {
		values[i] = v.Simplify()
	}
	return &InFunc{StartPos: f.StartPos, Left: left, Values: values}, nil
}

func (f *InFunc) Visit(consumer func(Predicate)) { consumer(f) }
func (f *InFunc) ColumnsUsed() []ColumnReference  { return columnsOf(f.Left) }
func (f *InFunc) String() string {
	parts := make([]string, len(f.Values))
	for i, v := range f.Values {
		parts[i] = v.String()
	}
	return f.Left.String() + " IN (" + strings.Join(parts, ", ") + ")"
}

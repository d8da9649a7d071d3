// Package parser implements a hand-written recursive-descent parser that
// turns the engine's SQL dialect into ast.Statement trees. Operand
// disambiguation (integer vs string vs column) is speculative, backed by
// the lexer's single, non-stacking checkpoint.
package parser

import (
	"strconv"

	"github.com/embedsql/embedsql/ast"
	"github.com/embedsql/embedsql/dberrors"
	"github.com/embedsql/embedsql/lexer"
	"github.com/embedsql/embedsql/token"
)

// Parser consumes tokens from a lexer and builds ast nodes.
type Parser struct {
	lex *lexer.Lexer
}

// New creates a Parser over sql.
func New(sql string) *Parser {
	return &Parser{lex: lexer.New(sql)}
}

// Parse parses a single statement from sql.
func Parse(sql string) (ast.Statement, error) {
	return New(sql).Parse()
}

func (p *Parser) peek() token.Item { return p.lex.Peek() }
func (p *Parser) next() token.Item { return p.lex.Next() }

func (p *Parser) errorAt(got token.Item, expected string) error {
	actual := got.Value
	if actual == "" {
		actual = got.Type.String()
	}
	return dberrors.ErrParse.New(int(got.Pos), expected, actual)
}

func (p *Parser) expect(tt token.Token) (token.Item, error) {
	it := p.next()
	if it.Type != tt {
		return it, p.errorAt(it, tt.String())
	}
	return it, nil
}

func (p *Parser) expectIdent() (token.Item, error) {
	it := p.next()
	if it.Type != token.IDENT {
		return it, p.errorAt(it, "identifier")
	}
	return it, nil
}

// columnTypeOf reports whether word (already lowercased) names a column type,
// and which one.
func columnTypeOf(word string) (ast.ColumnType, bool) {
	switch word {
	case "int":
		return ast.IntType, true
	case "double":
		return ast.DoubleType, true
	case "varchar":
		return ast.VarcharType, true
	}
	return 0, false
}

// Parse dispatches on the leading statement keyword.
func (p *Parser) Parse() (ast.Statement, error) {
	start := p.peek()
	switch start.Type {
	case token.SELECT:
		p.next()
		return p.parseSelect(start.Pos)
	case token.INSERT:
		p.next()
		return p.parseInsert(start.Pos)
	case token.CREATE:
		p.next()
		return p.parseCreateTable(start.Pos)
	case token.UPDATE:
		p.next()
		return p.parseUpdate(start.Pos)
	case token.DELETE:
		p.next()
		return p.parseDelete(start.Pos)
	default:
		return nil, p.errorAt(start, "one of SELECT, INSERT, CREATE, UPDATE, DELETE")
	}
}

func parseList[T any](p *Parser, parseOne func(*Parser) (T, error)) ([]T, error) {
	var out []T
	first, err := parseOne(p)
	if err != nil {
		return nil, err
	}
	out = append(out, first)
	for p.peek().Type == token.COMMA {
		p.next()
		item, err := parseOne(p)
		if err != nil {
			return nil, err
		}
		out = append(out, item)
	}
	return out, nil
}

func (p *Parser) parseColumnReference() (ast.ColumnReference, error) {
	pos := p.peek().Pos
	tableTok, err := p.expectIdent()
	if err != nil {
		return ast.ColumnReference{}, err
	}
	if _, err := p.expect(token.DOT); err != nil {
		return ast.ColumnReference{}, err
	}
	colTok, err := p.expectIdent()
	if err != nil {
		return ast.ColumnReference{}, err
	}
	ref := ast.ColumnReference{StartPos: token.Pos(pos), Table: tableTok.Value, Column: colTok.Value}
	if p.peek().Type == token.AS {
		p.next()
		aliasTok, err := p.expectIdent()
		if err != nil {
			return ast.ColumnReference{}, err
		}
		ref.Alias = aliasTok.Value
	}
	return ref, nil
}

func (p *Parser) parseTableReference() (ast.TableReference, error) {
	tok, err := p.expectIdent()
	if err != nil {
		return ast.TableReference{}, err
	}
	return ast.TableReference{StartPos: token.Pos(tok.Pos), Name: tok.Value}, nil
}

// parseOperand implements the grammar's operand := integer | string |
// column production speculatively: it checkpoints the lexer once and tries
// each alternative in turn, restoring on failure. The checkpoint is never
// nested, matching the single, non-stacking checkpoint the engine requires.
func (p *Parser) parseOperand() (ast.ValueExpr, error) {
	mark := p.lex.Checkpoint()

	if it := p.peek(); it.Type == token.INT {
		p.next()
		n, err := strconv.ParseInt(it.Value, 10, 64)
		if err == nil {
			return &ast.IntegerLiteral{StartPos: token.Pos(it.Pos), Value: n}, nil
		}
	}
	p.lex.Restore(mark)

	if it := p.peek(); it.Type == token.STRING {
		p.next()
		return &ast.StringLiteral{StartPos: token.Pos(it.Pos), Value: it.Value}, nil
	}
	p.lex.Restore(mark)

	if ref, err := p.parseColumnReference(); err == nil {
		return ref, nil
	}
	p.lex.Restore(mark)

	return nil, p.errorAt(p.peek(), "integer, string literal, or table.column")
}

// parseExpr is the WHERE expression entry point: expr := or_expr.
func (p *Parser) parseExpr() (ast.Predicate, error) {
	return p.parseOrExpr()
}

// or_expr := and_expr { 'OR' and_expr }
func (p *Parser) parseOrExpr() (ast.Predicate, error) {
	left, err := p.parseAndExpr()
	if err != nil {
		return nil, err
	}
	for p.peek().Type == token.OR {
		pos := p.next().Pos
		right, err := p.parseAndExpr()
		if err != nil {
			return nil, err
		}
		left = &ast.Or{StartPos: token.Pos(pos), Left: left, Right: right}
	}
	return left, nil
}

// and_expr := cmp { 'AND' cmp }
func (p *Parser) parseAndExpr() (ast.Predicate, error) {
	left, err := p.parseCmp()
	if err != nil {
		return nil, err
	}
	for p.peek().Type == token.AND {
		pos := p.next().Pos
		right, err := p.parseCmp()
		if err != nil {
			return nil, err
		}
		left = &ast.And{StartPos: token.Pos(pos), Left: left, Right: right}
	}
	return left, nil
}

// cmp := 'NOT' '(' expr ')' | operand op operand
//      | operand 'IN' '(' literal_list ')' | '(' expr ')'
func (p *Parser) parseCmp() (ast.Predicate, error) {
	start := p.peek()
	if start.Type == token.NOT {
		p.next()
		if _, err := p.expect(token.LPAREN); err != nil {
			return nil, err
		}
		inner, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(token.RPAREN); err != nil {
			return nil, err
		}
		return &ast.Not{StartPos: token.Pos(start.Pos), Operand: inner}, nil
	}
	if start.Type == token.LPAREN {
		p.next()
		inner, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(token.RPAREN); err != nil {
			return nil, err
		}
		return inner, nil
	}

	left, err := p.parseOperand()
	if err != nil {
		return nil, err
	}

	if p.peek().Type == token.IN {
		p.next()
		if _, err := p.expect(token.LPAREN); err != nil {
			return nil, err
		}
		values, err := parseList(p, (*Parser).parseOperandMethod)
		if err != nil {
			return nil, err
		}
		for _, v := range values {
			if !v.IsLiteral() {
				return nil, dberrors.ErrParse.New(int(v.Pos()), "integer or string literal", v.String())
			}
		}
		if _, err := p.expect(token.RPAREN); err != nil {
			return nil, err
		}
		return &ast.InFunc{StartPos: token.Pos(start.Pos), Left: left, Values: values}, nil
	}

	opTok := p.next()
	right, err := p.parseOperand()
	if err != nil {
		return nil, err
	}
	pos := token.Pos(start.Pos)
	switch opTok.Type {
	case token.EQ:
		return &ast.Equals{StartPos: pos, Left: left, Right: right}, nil
	case token.NEQ:
		return &ast.NotEquals{StartPos: pos, Left: left, Right: right}, nil
	case token.LT:
		return &ast.Less{StartPos: pos, Left: left, Right: right}, nil
	case token.LTE:
		return &ast.LessEq{StartPos: pos, Left: left, Right: right}, nil
	case token.GT:
		return &ast.Greater{StartPos: pos, Left: left, Right: right}, nil
	case token.GTE:
		return &ast.GreaterEq{StartPos: pos, Left: left, Right: right}, nil
	default:
		return nil, p.errorAt(opTok, "one of = != < <= > >= IN")
	}
}

func (p *Parser) parseOperandMethod() (ast.ValueExpr, error) { return p.parseOperand() }

func (p *Parser) parseColumnDefinition() (ast.ColumnDefinition, error) {
	nameTok, err := p.expectIdent()
	if err != nil {
		return ast.ColumnDefinition{}, err
	}
	typeTok, err := p.expectIdent()
	if err != nil {
		return ast.ColumnDefinition{}, err
	}
	ct, ok := columnTypeOf(lower(typeTok.Value))
	if !ok {
		return ast.ColumnDefinition{}, dberrors.ErrSchema.New("unsupported column type " + typeTok.Value)
	}
	def := ast.ColumnDefinition{StartPos: token.Pos(nameTok.Pos), Name: nameTok.Value, Type: ct}
	if ct == ast.VarcharType {
		if _, err := p.expect(token.LPAREN); err != nil {
			return ast.ColumnDefinition{}, err
		}
		sizeTok, err := p.expect(token.INT)
		if err != nil {
			return ast.ColumnDefinition{}, err
		}
		size, _ := strconv.Atoi(sizeTok.Value)
		def.Size = size
		if _, err := p.expect(token.RPAREN); err != nil {
			return ast.ColumnDefinition{}, err
		}
	}
	for {
		switch p.peek().Type {
		case token.PRIMARY:
			p.next()
			if _, err := p.expect(token.KEY); err != nil {
				return ast.ColumnDefinition{}, err
			}
			if ct != ast.IntType {
				return ast.ColumnDefinition{}, dberrors.ErrSchema.New("primary key must be an int column")
			}
			def.Constraint |= ast.PrimaryKey
		case token.UNIQUE:
			p.next()
			def.Constraint |= ast.Unique
		case token.NOT:
			p.next()
			if _, err := p.expect(token.NULL); err != nil {
				return ast.ColumnDefinition{}, err
			}
			def.Constraint |= ast.NotNull
		default:
			return def, nil
		}
	}
}

func lower(s string) string {
	b := []byte(s)
	for i, c := range b {
		if c >= 'A' && c <= 'Z' {
			b[i] = c + ('a' - 'A')
		}
	}
	return string(b)
}

// from_clause := 'FROM' table { ('JOIN' | 'LEFT' 'JOIN') table ['ON' column '=' column] }
func (p *Parser) parseFrom() (ast.From, error) {
	start, err := p.expect(token.FROM)
	if err != nil {
		return ast.From{}, err
	}
	table, err := p.parseTableReference()
	if err != nil {
		return ast.From{}, err
	}
	from := ast.From{StartPos: token.Pos(start.Pos), Table: table}
	for p.peek().Type == token.JOIN || p.peek().Type == token.LEFT {
		joinPos := p.peek().Pos
		outer := false
		if p.peek().Type == token.LEFT {
			p.next()
			outer = true
			if _, err := p.expect(token.JOIN); err != nil {
				return ast.From{}, err
			}
		} else {
			p.next()
		}
		joinedTable, err := p.parseTableReference()
		if err != nil {
			return ast.From{}, err
		}
		jt := ast.JoinTable{StartPos: token.Pos(joinPos), Table: joinedTable, Outer: outer}
		if p.peek().Type == token.ON {
			p.next()
			left, err := p.parseColumnReference()
			if err != nil {
				return ast.From{}, err
			}
			if _, err := p.expect(token.EQ); err != nil {
				return ast.From{}, err
			}
			right, err := p.parseColumnReference()
			if err != nil {
				return ast.From{}, err
			}
			// Normalize so the joined table's column is always "right".
			if right.Table != joinedTable.Name {
				left, right = right, left
			}
			jt.Left, jt.Right = &left, &right
		}
		from.Joins = append(from.Joins, jt)
	}
	return from, nil
}

// order_by := 'ORDER' 'BY' col_list ['DESC']
func (p *Parser) parseOrderBy() (*ast.OrderBy, error) {
	start, err := p.expect(token.ORDER)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.BY); err != nil {
		return nil, err
	}
	cols, err := parseList(p, (*Parser).parseColumnReference)
	if err != nil {
		return nil, err
	}
	desc := false
	if p.peek().Type == token.DESC {
		p.next()
		desc = true
	}
	return &ast.OrderBy{StartPos: token.Pos(start.Pos), Columns: cols, Desc: desc}, nil
}

// select := 'SELECT' col_list from_clause ['WHERE' expr] ['ORDER BY' col_list ['DESC']]
func (p *Parser) parseSelect(pos token.Pos) (*ast.Select, error) {
	columns, err := parseList(p, (*Parser).parseColumnReference)
	if err != nil {
		return nil, err
	}
	from, err := p.parseFrom()
	if err != nil {
		return nil, err
	}
	sel := &ast.Select{StartPos: pos, Columns: columns, From: from}
	gotWhere := false
	if p.peek().Type == token.WHERE {
		p.next()
		where, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		simplified, err := where.Simplify()
		if err != nil {
			return nil, err
		}
		sel.Where = simplified
		gotWhere = true
	}
	switch p.peek().Type {
	case token.ORDER:
		order, err := p.parseOrderBy()
		if err != nil {
			return nil, err
		}
		sel.Order = order
	case token.EOF:
		// nothing more to parse
	default:
		expected := "WHERE or ORDER BY"
		if gotWhere {
			expected = "ORDER BY"
		}
		return nil, p.errorAt(p.peek(), expected)
	}
	if p.peek().Type != token.EOF {
		return nil, p.errorAt(p.peek(), "end of statement")
	}
	return sel, nil
}

// insert := 'INSERT' 'INTO' table 'VALUES' '(' literal_list ')'
func (p *Parser) parseInsert(pos token.Pos) (*ast.Insert, error) {
	if _, err := p.expect(token.INTO); err != nil {
		return nil, err
	}
	table, err := p.parseTableReference()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.VALUES); err != nil {
		return nil, err
	}
	if _, err := p.expect(token.LPAREN); err != nil {
		return nil, err
	}
	values, err := parseList(p, (*Parser).parseOperandMethod)
	if err != nil {
		return nil, err
	}
	for _, v := range values {
		if !v.IsLiteral() {
			return nil, dberrors.ErrParse.New(int(v.Pos()), "integer or string literal", v.String())
		}
	}
	if _, err := p.expect(token.RPAREN); err != nil {
		return nil, err
	}
	if p.peek().Type != token.EOF {
		return nil, p.errorAt(p.peek(), "end of statement")
	}
	return &ast.Insert{StartPos: pos, Table: table.Name, Values: values}, nil
}

// create := 'CREATE' 'TABLE' table '(' coldef { ',' coldef } ')'
func (p *Parser) parseCreateTable(pos token.Pos) (*ast.CreateTable, error) {
	if _, err := p.expect(token.TABLE); err != nil {
		return nil, err
	}
	table, err := p.parseTableReference()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.LPAREN); err != nil {
		return nil, err
	}
	cols, err := parseList(p, (*Parser).parseColumnDefinitionMethod)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.RPAREN); err != nil {
		return nil, err
	}
	if p.peek().Type != token.EOF {
		return nil, p.errorAt(p.peek(), "end of statement")
	}
	return &ast.CreateTable{StartPos: pos, Table: table.Name, Columns: cols}, nil
}

func (p *Parser) parseColumnDefinitionMethod() (ast.ColumnDefinition, error) {
	return p.parseColumnDefinition()
}

// update := 'UPDATE' table 'SET' assign { ',' assign } ['WHERE' expr]
// assign := column '=' literal_or_column
func (p *Parser) parseUpdate(pos token.Pos) (*ast.Update, error) {
	table, err := p.parseTableReference()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.SET); err != nil {
		return nil, err
	}
	assignments, err := parseList(p, (*Parser).parseAssignment)
	if err != nil {
		return nil, err
	}
	upd := &ast.Update{StartPos: pos, Table: table.Name, Assignments: assignments}
	if p.peek().Type == token.WHERE {
		p.next()
		where, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		simplified, err := where.Simplify()
		if err != nil {
			return nil, err
		}
		upd.Where = simplified
	}
	if p.peek().Type != token.EOF {
		return nil, p.errorAt(p.peek(), "end of statement")
	}
	return upd, nil
}

func (p *Parser) parseAssignment() (ast.Assignment, error) {
	col, err := p.parseColumnReference()
	if err != nil {
		return ast.Assignment{}, err
	}
	if _, err := p.expect(token.EQ); err != nil {
		return ast.Assignment{}, err
	}
	val, err := p.parseOperand()
	if err != nil {
		return ast.Assignment{}, err
	}
	return ast.Assignment{Column: col, Value: val}, nil
}

// delete := 'DELETE' 'FROM' table ['WHERE' expr]
func (p *Parser) parseDelete(pos token.Pos) (*ast.Delete, error) {
	if _, err := p.expect(token.FROM); err != nil {
		return nil, err
	}
	table, err := p.parseTableReference()
	if err != nil {
		return nil, err
	}
	del := &ast.Delete{StartPos: pos, Table: table.Name}
	if p.peek().Type == token.WHERE {
		p.next()
		where, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		simplified, err := where.Simplify()
		if err != nil {
			return nil, err
		}
		del.Where = simplified
	}
	if p.peek().Type != token.EOF {
		return nil, p.errorAt(p.peek(), "end of statement")
	}
	return del, nil
}

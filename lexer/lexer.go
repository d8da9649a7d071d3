// Package lexer provides a lexical scanner for the engine's SQL dialect.
package lexer

import (
	"strings"

	"github.com/embedsql/embedsql/token"
)

// Lexer tokenizes SQL input. It supports a single token of lookahead via
// Peek, and an explicit checkpoint/restore pair (Checkpoint/Restore) so the parser
// can speculatively try an alternative and back out on failure.
type Lexer struct {
	input string
	start int // start offset of the token currently being scanned
	pos   int // current scan offset

	item   token.Item
	peeked bool

	// prevLiteral is the literal text of the most recently returned token,
	// used to report a useful "actual" lexeme in errors when scanning fails
	// with nothing left to show.
	prevLiteral string
}

// New creates a Lexer over input.
func New(input string) *Lexer {
	return &Lexer{input: input}
}

// Mark is a saved cursor position, opaque to callers.
type Mark struct {
	pos         int
	item        token.Item
	peeked      bool
	prevLiteral string
}

// Checkpoint records the lexer's current position so it can be restored
// later with Restore. Only one checkpoint is active at a time: a new call
// to Checkpoint simply returns a new Mark, it does not stack.
func (l *Lexer) Checkpoint() Mark {
	return Mark{pos: l.pos, item: l.item, peeked: l.peeked, prevLiteral: l.prevLiteral}
}

// Restore rewinds the lexer to a previously captured Mark.
func (l *Lexer) Restore(m Mark) {
	l.pos = m.pos
	l.item = m.item
	l.peeked = m.peeked
	l.prevLiteral = m.prevLiteral
}

// Next consumes and returns the next token.
func (l *Lexer) Next() token.Item {
	it := l.Peek()
	l.peeked = false
	if it.Type != token.EOF {
		l.prevLiteral = it.Value
	}
	return it
}

// Peek returns the next token without consuming it.
func (l *Lexer) Peek() token.Item {
	if !l.peeked {
		l.item = l.scan()
		l.peeked = true
	}
	return l.item
}

// PrevLiteral is the literal text of the last token returned by Next, used
// for error messages when the next scan fails to produce anything.
func (l *Lexer) PrevLiteral() string {
	return l.prevLiteral
}

// Pos reports the byte offset the lexer is currently positioned at, i.e.
// the start of the next token that Peek would return.
func (l *Lexer) Pos() token.Pos {
	return token.Pos(l.Peek().Pos)
}

func (l *Lexer) scan() token.Item {
	l.skipWhitespace()
	l.start = l.pos

	if l.pos >= len(l.input) {
		return l.makeItem(token.EOF, "")
	}

	ch := l.input[l.pos]
	switch ch {
	case '(':
		l.pos++
		return l.makeItem(token.LPAREN, "(")
	case ')':
		l.pos++
		return l.makeItem(token.RPAREN, ")")
	case ',':
		l.pos++
		return l.makeItem(token.COMMA, ",")
	case '.':
		l.pos++
		return l.makeItem(token.DOT, ".")
	case '=':
		l.pos++
		return l.makeItem(token.EQ, "=")
	case '!':
		l.pos++
		if l.pos < len(l.input) && l.input[l.pos] == '=' {
			l.pos++
			return l.makeItem(token.NEQ, "!=")
		}
		return l.makeItem(token.ILLEGAL, "!")
	case '<':
		l.pos++
		if l.pos < len(l.input) && l.input[l.pos] == '=' {
			l.pos++
			return l.makeItem(token.LTE, "<=")
		}
		return l.makeItem(token.LT, "<")
	case '>':
		l.pos++
		if l.pos < len(l.input) && l.input[l.pos] == '=' {
			l.pos++
			return l.makeItem(token.GTE, ">=")
		}
		return l.makeItem(token.GT, ">")
	case '\'':
		return l.scanString()
	}

	if isIdentStart(ch) {
		return l.scanIdentifier()
	}
	if isDigit(ch) {
		return l.scanNumber()
	}

	l.pos++
	return l.makeItem(token.ILLEGAL, string(ch))
}

func (l *Lexer) makeItem(typ token.Token, val string) token.Item {
	return token.Item{Type: typ, Value: val, Pos: token.Pos(l.start)}
}

func (l *Lexer) skipWhitespace() {
	for l.pos < len(l.input) {
		switch l.input[l.pos] {
		case ' ', '\t', '\r', '\n':
			l.pos++
		default:
			return
		}
	}
}

func (l *Lexer) scanIdentifier() token.Item {
	for l.pos < len(l.input) && isIdentChar(l.input[l.pos]) {
		l.pos++
	}
	val := l.input[l.start:l.pos]
	tok := token.LookupIdent(strings.ToLower(val))
	return l.makeItem(tok, val)
}

func (l *Lexer) scanNumber() token.Item {
	for l.pos < len(l.input) && isDigit(l.input[l.pos]) {
		l.pos++
	}
	return l.makeItem(token.INT, l.input[l.start:l.pos])
}

// scanString consumes a single-quoted string literal, where a doubled
// quote ('') is an escaped literal quote inside the string.
func (l *Lexer) scanString() token.Item {
	l.pos++ // opening quote
	var buf strings.Builder
	for l.pos < len(l.input) {
		ch := l.input[l.pos]
		if ch == '\'' {
			if l.pos+1 < len(l.input) && l.input[l.pos+1] == '\'' {
				buf.WriteByte('\'')
				l.pos += 2
				continue
			}
			l.pos++
			return l.makeItem(token.STRING, buf.String())
		}
		buf.WriteByte(ch)
		l.pos++
	}
	return l.makeItem(token.ILLEGAL, l.input[l.start:l.pos])
}

func isIdentStart(ch byte) bool {
	return (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z') || ch == '_'
}

func isIdentChar(ch byte) bool {
	return isIdentStart(ch) || isDigit(ch)
}

func isDigit(ch byte) bool {
	return ch >= '0' && ch <= '9'
}

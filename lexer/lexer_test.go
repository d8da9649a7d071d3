package lexer

import (
	"testing"

	"github.com/embedsql/embedsql/token"
)

func collect(input string) []token.Item {
	l := New(input)
	var items []token.Item
	for {
		it := l.Next()
		items = append(items, it)
		if it.Type == token.EOF {
			return items
		}
	}
}

func TestScanKeywordsAndOperators(t *testing.T) {
	items := collect("SELECT a.b FROM t WHERE a.id <= 5 AND a.id != 3")
	want := []token.Token{
		token.SELECT, token.IDENT, token.DOT, token.IDENT,
		token.FROM, token.IDENT,
		token.WHERE, token.IDENT, token.DOT, token.IDENT, token.LTE, token.INT,
		token.AND, token.IDENT, token.DOT, token.IDENT, token.NEQ, token.INT,
		token.EOF,
	}
	if len(items) != len(want) {
		t.Fatalf("got %d tokens, want %d: %+v", len(items), len(want), items)
	}
	for i, it := range items {
		if it.Type != want[i] {
			t.Fatalf("token %d: got %v, want %v", i, it.Type, want[i])
		}
	}
}

func TestKeywordsAreCaseInsensitive(t *testing.T) {
	items := collect("select * from")
	if items[0].Type != token.SELECT {
		t.Fatalf("lowercase select should scan as SELECT, got %v", items[0].Type)
	}
}

func TestStringLiteralWithEscapedQuote(t *testing.T) {
	items := collect("'it''s a test'")
	if items[0].Type != token.STRING {
		t.Fatalf("expected STRING, got %v", items[0].Type)
	}
	if items[0].Value != "it's a test" {
		t.Fatalf("got %q, want %q", items[0].Value, "it's a test")
	}
}

func TestCheckpointRestore(t *testing.T) {
	l := New("a b")
	first := l.Next()
	mark := l.Checkpoint()
	second := l.Next()
	l.Restore(mark)
	again := l.Next()
	if second.Value != again.Value {
		t.Fatalf("Restore should rewind to the same token: %v vs %v", second, again)
	}
	_ = first
}

func TestIntAndColumnTypeNamesAreNotReservedKeywords(t *testing.T) {
	items := collect("int double varchar")
	// collect ends with the EOF item; only the three words are checked.
	for _, it := range items[:len(items)-1] {
		if it.Type != token.IDENT {
			t.Fatalf("type names must scan as plain identifiers, got %v", it.Type)
		}
	}
}

//go:build differential

package parser

import (
	"testing"

	vitess "github.com/blastrain/vitess-sqlparser/sqlparser"
)

// Run with: go test -tags=differential ./parser/...
//
// These compare our recursive-descent parser against vitess-sqlparser on
// statements both are expected to accept, catching cases where our grammar
// has silently drifted from standard SQL syntax.
var differentialQueries = []string{
	"SELECT users.id, users.name FROM users",
	"SELECT users.id FROM users WHERE users.age > 18",
	"SELECT users.id, orders.total FROM users JOIN orders ON users.id = orders.user_id",
	"INSERT INTO users VALUES (1, 'John')",
	"UPDATE users SET users.name = 'Jane' WHERE users.id = 1",
	"DELETE FROM users WHERE users.id = 1",
}

func TestDifferentialAgainstVitess(t *testing.T) {
	for _, q := range differentialQueries {
		q := q
		t.Run(q, func(t *testing.T) {
			if _, err := vitess.Parse(q); err != nil {
				t.Skipf("vitess-sqlparser rejected %q: %v", q, err)
			}
			if _, err := Parse(q); err != nil {
				t.Errorf("our parser rejected a statement vitess-sqlparser accepts: %q: %v", q, err)
			}
		})
	}
}

package sqlstore

import (
	"fmt"
	"strings"
)

// Dialect captures the SQL differences between supported databases
type Dialect struct {
	Name        string
	placeholder func(n int) string
}

var (
	// Postgres uses numbered $n placeholders
	Postgres = Dialect{Name: "postgres", placeholder: func(n int) string { return fmt.Sprintf("$%d", n) }}

	// SQLite uses ? placeholders
	SQLite = Dialect{Name: "sqlite", placeholder: func(int) string { return "?" }}
)

// DialectFor returns the dialect for a database/sql driver name
func DialectFor(driver string) (Dialect, error) {
	switch driver {
	case "pgx", "postgres":
		return Postgres, nil
	case "sqlite3":
		return SQLite, nil
	default:
		return Dialect{}, fmt.Errorf("unsupported database driver %q", driver)
	}
}

// Placeholder returns the bind parameter for the n-th (1-based) argument
func (d Dialect) Placeholder(n int) string {
	return d.placeholder(n)
}

// Placeholders returns count comma-separated bind parameters starting at from
func (d Dialect) Placeholders(from, count int) string {
	ps := make([]string, count)
	for i := range ps {
		ps[i] = d.placeholder(from + i)
	}
	return strings.Join(ps, ", ")
}

// QuoteIdent quotes a table or column name
func QuoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

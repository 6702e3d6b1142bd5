package database

import (
	"fmt"
	"strconv"
	"strings"
)

// Dialect captures the few differences between the supported SQL backends.
// Queries in this repository are written with '?' placeholders and passed
// through Rebind before execution.
type Dialect struct {
	Name string
}

var (
	MySQL    = Dialect{Name: "mysql"}
	Postgres = Dialect{Name: "postgres"}
	SQLite   = Dialect{Name: "sqlite"}
)

// DialectFor returns the dialect for a configured driver name.
func DialectFor(driver string) (Dialect, error) {
	switch strings.ToLower(driver) {
	case "mysql":
		return MySQL, nil
	case "postgres", "postgresql", "pgx":
		return Postgres, nil
	case "sqlite", "sqlite3":
		return SQLite, nil
	}
	return Dialect{}, fmt.Errorf("unsupported database driver %q", driver)
}

// Lower wraps a column expression in the dialect's Unicode lowercase function.
func (d Dialect) Lower(expr string) string {
	if d.Name == "sqlite" {
		return sqliteLower + "(" + expr + ")"
	}
	return "LOWER(" + expr + ")"
}

// Rebind rewrites '?' placeholders to the dialect's bind syntax. Question
// marks inside single-quoted literals are left alone.
func (d Dialect) Rebind(query string) string {
	if d.Name != "postgres" {
		return query
	}

	var b strings.Builder
	b.Grow(len(query) + 16)
	n := 0
	inQuote := false
	for i := 0; i < len(query); i++ {
		ch := query[i]
		switch {
		case ch == '\'':
			inQuote = !inQuote
			b.WriteByte(ch)
		case ch == '?' && !inQuote:
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
		default:
			b.WriteByte(ch)
		}
	}
	return b.String()
}

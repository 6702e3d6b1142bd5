package database

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"strings"
)

//go:embed schema/*.sql
var schemaFS embed.FS

// Statements returns the schema DDL for the dialect, one statement per entry.
func (d Dialect) Statements() ([]string, error) {
	raw, err := schemaFS.ReadFile("schema/" + d.Name + ".sql")
	if err != nil {
		return nil, fmt.Errorf("no schema for dialect %q: %w", d.Name, err)
	}

	var stmts []string
	for _, part := range strings.Split(string(raw), ";") {
		if stmt := strings.TrimSpace(part); stmt != "" {
			stmts = append(stmts, stmt)
		}
	}
	return stmts, nil
}

// Migrate applies the embedded schema. Every statement is idempotent
// (CREATE ... IF NOT EXISTS), so it is safe to run on each start.
func Migrate(ctx context.Context, db *sql.DB, d Dialect) error {
	stmts, err := d.Statements()
	if err != nil {
		return err
	}

	for i, stmt := range stmts {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate %s statement %d: %w", d.Name, i+1, err)
		}
	}
	return nil
}

package database

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/01moynul/vividen-storefront/internal/config"
)

func TestRebind(t *testing.T) {
	query := "SELECT id FROM products WHERE title LIKE ? ESCAPE '!' AND note = '?' AND price >= ? LIMIT ?"

	assert.Equal(t, query, MySQL.Rebind(query))
	assert.Equal(t, query, SQLite.Rebind(query))
	assert.Equal(t,
		"SELECT id FROM products WHERE title LIKE $1 ESCAPE '!' AND note = '?' AND price >= $2 LIMIT $3",
		Postgres.Rebind(query))
}

func TestDialectFor(t *testing.T) {
	for driver, want := range map[string]Dialect{
		"mysql":    MySQL,
		"Postgres": Postgres,
		"pgx":      Postgres,
		"sqlite3":  SQLite,
	} {
		got, err := DialectFor(driver)
		require.NoError(t, err, driver)
		assert.Equal(t, want, got, driver)
	}

	_, err := DialectFor("mssql")
	assert.Error(t, err)
}

func TestStatementsForEveryDialect(t *testing.T) {
	for _, d := range []Dialect{MySQL, Postgres, SQLite} {
		stmts, err := d.Statements()
		require.NoError(t, err, d.Name)
		assert.GreaterOrEqual(t, len(stmts), 7, d.Name)
		for _, s := range stmts {
			assert.NotContains(t, s, ";", d.Name)
		}
	}
}

func TestMigrateSQLiteIsIdempotent(t *testing.T) {
	ctx := context.Background()
	db, dialect, err := OpenDB(ctx, config.DatabaseConfig{
		Driver:       "sqlite",
		DSN:          filepath.Join(t.TempDir(), "store.db"),
		MaxOpenConns: 4,
		MaxIdleConns: 4,
	})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, Migrate(ctx, db, dialect))
	require.NoError(t, Migrate(ctx, db, dialect))

	var n int
	require.NoError(t, db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name IN ('users','categories','products','cart_items','orders','order_items','downloads')",
	).Scan(&n))
	assert.Equal(t, 7, n)
}

func TestIsUniqueViolation(t *testing.T) {
	ctx := context.Background()
	db, dialect, err := OpenDB(ctx, config.DatabaseConfig{
		Driver: "sqlite",
		DSN:    filepath.Join(t.TempDir(), "store.db"),
	})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, Migrate(ctx, db, dialect))

	insert := "INSERT INTO categories (id, name, slug, is_active, sort_order, created_at) VALUES (?, ?, ?, ?, ?, CURRENT_TIMESTAMP)"
	_, err = db.ExecContext(ctx, insert, "c1", "Audio", "audio", true, 1)
	require.NoError(t, err)
	_, err = db.ExecContext(ctx, insert, "c2", "Audio again", "audio", true, 2)
	require.Error(t, err)

	assert.True(t, IsUniqueViolation(fmt.Errorf("create category: %w", err)))
	assert.True(t, IsUniqueViolation(&mysql.MySQLError{Number: 1062}))
	assert.True(t, IsUniqueViolation(&pgconn.PgError{Code: "23505"}))
	assert.False(t, IsUniqueViolation(&pgconn.PgError{Code: "23503"}))
	assert.False(t, IsUniqueViolation(errors.New("boom")))
	assert.False(t, IsUniqueViolation(nil))
}

func TestSQLiteUnicodeLower(t *testing.T) {
	ctx := context.Background()
	db, dialect, err := OpenDB(ctx, config.DatabaseConfig{
		Driver: "sqlite",
		DSN:    filepath.Join(t.TempDir(), "store.db"),
	})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	var got string
	require.NoError(t, db.QueryRowContext(ctx, "SELECT "+dialect.Lower("?"), "Été ÀÖ Ambience").Scan(&got))
	assert.Equal(t, "été àö ambience", got)

	var null *string
	require.NoError(t, db.QueryRowContext(ctx, "SELECT "+dialect.Lower("NULL")).Scan(&null))
	assert.Nil(t, null)

	assert.Equal(t, "LOWER(p.title)", Postgres.Lower("p.title"))
	assert.Equal(t, "LOWER(p.title)", MySQL.Lower("p.title"))
}

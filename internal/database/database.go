package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"

	"github.com/01moynul/vividen-storefront/internal/config"
)

// driverNames maps the configured driver to the name registered with database/sql.
var driverNames = map[string]string{
	"mysql":    "mysql",
	"postgres": "pgx",
	"sqlite":   "sqlite",
}

// OpenDB creates and configures the primary connection pool from the
// database section of the config and verifies it with a ping.
func OpenDB(ctx context.Context, cfg config.DatabaseConfig) (*sql.DB, Dialect, error) {
	dialect, err := DialectFor(cfg.Driver)
	if err != nil {
		return nil, Dialect{}, err
	}

	db, err := sql.Open(driverNames[dialect.Name], cfg.DSN)
	if err != nil {
		return nil, Dialect{}, err
	}

	// Pool settings.
	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	if dialect.Name == "sqlite" {
		// SQLite allows a single writer; one connection avoids "database is locked".
		db.SetMaxOpenConns(1)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, Dialect{}, fmt.Errorf("connect to %s: %w", dialect.Name, err)
	}

	return db, dialect, nil
}

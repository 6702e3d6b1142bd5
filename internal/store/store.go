// Package store persists the storefront entities and implements the product
// query layer and the cart aggregate on top of database/sql.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/01moynul/vividen-storefront/internal/database"
)

// Store is the handle every request handler receives. It is safe for
// concurrent use; all state lives in the connection pool.
type Store struct {
	db      *sql.DB
	conn    querier // db, or tx for a store bound by InTx
	tx      *sql.Tx
	dialect database.Dialect
	now     func() time.Time
	newID   func() string
}

type Option func(*Store)

// WithClock overrides the time source used for createdAt/updatedAt columns.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

func New(db *sql.DB, dialect database.Dialect, opts ...Option) *Store {
	s := &Store{
		db:      db,
		conn:    db,
		dialect: dialect,
		now:     time.Now,
		newID:   func() string { return uuid.NewString() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Ping checks the backing database.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// querier is satisfied by *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func (s *Store) q(query string) string {
	return s.dialect.Rebind(query)
}

// timestamp is truncated to microseconds, the finest precision every backend keeps.
func (s *Store) timestamp() time.Time {
	return s.now().UTC().Truncate(time.Microsecond)
}

// InTx runs fn against a Store bound to one transaction. Everything fn
// writes is committed when it returns nil and rolled back otherwise. Calls
// on a store that is already bound join the open transaction.
func (s *Store) InTx(ctx context.Context, fn func(tx *Store) error) error {
	if s.tx != nil {
		return fn(s)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	bound := *s
	bound.conn = tx
	bound.tx = tx
	if err := fn(&bound); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *Store) withTx(ctx context.Context, fn func(tx querier) error) error {
	return s.InTx(ctx, func(bound *Store) error {
		return fn(bound.tx)
	})
}

func (s *Store) exists(ctx context.Context, db querier, query string, args ...any) (bool, error) {
	var one int
	err := db.QueryRowContext(ctx, s.q(query), args...).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

//go:build integration

package store

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/01moynul/vividen-storefront/internal/config"
	"github.com/01moynul/vividen-storefront/internal/database"
	"github.com/01moynul/vividen-storefront/internal/models"
)

func newPostgresStore(t *testing.T) *Store {
	t.Helper()
	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("storefront"),
		postgres.WithUsername("storefront"),
		postgres.WithPassword("storefront"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := pgContainer.Terminate(ctx); err != nil {
			t.Logf("terminate container: %v", err)
		}
	})

	dsn, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	db, dialect, err := database.OpenDB(ctx, config.DatabaseConfig{Driver: "postgres", DSN: dsn, MaxOpenConns: 5, MaxIdleConns: 5})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, database.Migrate(ctx, db, dialect))
	require.NoError(t, database.Migrate(ctx, db, dialect))

	clock := &steppingClock{t: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)}
	return New(db, dialect, WithClock(clock.Now))
}

func TestPostgresCatalogAndCart(t *testing.T) {
	s := newPostgresStore(t)
	ctx := context.Background()
	c := seedCatalog(t, s)
	u := mustUser(t, s, "pg")

	got, err := s.ListProducts(ctx, ProductQuery{Search: "MUSIC", Sort: SortPriceHigh})
	require.NoError(t, err)
	assert.Equal(t, []string{c.products[0].ID}, ids(got))

	page, err := s.ListProducts(ctx, ProductQuery{Limit: 2, Offset: 1})
	require.NoError(t, err)
	assert.Equal(t, []string{c.products[2].ID, c.products[1].ID}, ids(page))

	_, err = s.AddToCart(ctx, u.ID, c.products[0].ID, 1)
	require.NoError(t, err)
	item, err := s.AddToCart(ctx, u.ID, c.products[0].ID, 2)
	require.NoError(t, err)
	assert.Equal(t, 3, item.Quantity)

	txn := "txn_pg"
	order, created, err := s.CompleteOrder(ctx, u.ID, &txn, []OrderLine{{ProductID: c.products[0].ID, Quantity: 3}})
	require.NoError(t, err)
	assert.True(t, created)
	assert.True(t, order.Total.Equal(decimal.RequireFromString("89.97")))

	items, err := s.GetCartItems(ctx, u.ID)
	require.NoError(t, err)
	assert.Empty(t, items)

	err = s.CreateCategory(ctx, &models.Category{Name: "Dup", Slug: "audio-music", IsActive: true})
	assert.ErrorIs(t, err, ErrConflict)
}

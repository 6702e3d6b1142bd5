package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/01moynul/vividen-storefront/internal/database"
	"github.com/01moynul/vividen-storefront/internal/models"
)

const cartColumns = `id, user_id, product_id, quantity, created_at, updated_at`

func scanCartItem(row rowScanner) (*models.CartItem, error) {
	var item models.CartItem
	err := row.Scan(&item.ID, &item.UserID, &item.ProductID, &item.Quantity, &item.CreatedAt, &item.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// upsertCartSQL adds quantity to the (user, product) row, creating it when absent.
func (s *Store) upsertCartSQL() string {
	if s.dialect == database.MySQL {
		return `INSERT INTO cart_items (` + cartColumns + `) VALUES (?, ?, ?, ?, ?, ?)
			ON DUPLICATE KEY UPDATE quantity = quantity + VALUES(quantity), updated_at = VALUES(updated_at)`
	}
	return `INSERT INTO cart_items (` + cartColumns + `) VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (user_id, product_id)
		DO UPDATE SET quantity = cart_items.quantity + excluded.quantity, updated_at = excluded.updated_at`
}

func (s *Store) checkCartRefs(ctx context.Context, db querier, userID, productID string) error {
	ok, err := s.exists(ctx, db, `SELECT 1 FROM users WHERE id = ?`, userID)
	if err != nil {
		return fmt.Errorf("check user: %w", err)
	}
	if !ok {
		return fmt.Errorf("user %s: %w", userID, ErrNotFound)
	}

	ok, err = s.exists(ctx, db, `SELECT 1 FROM products WHERE id = ? AND is_active = ?`, productID, true)
	if err != nil {
		return fmt.Errorf("check product: %w", err)
	}
	if !ok {
		return fmt.Errorf("product %s: %w", productID, ErrNotFound)
	}
	return nil
}

// AddToCart adds quantity of a product to the user's cart. A second add of
// the same product raises the quantity of the existing row; it never creates
// a duplicate. The resulting row is returned.
func (s *Store) AddToCart(ctx context.Context, userID, productID string, quantity int) (*models.CartItem, error) {
	if quantity < 1 {
		return nil, invalid("quantity", "must be at least 1")
	}

	var item *models.CartItem
	err := s.withTx(ctx, func(tx querier) error {
		if err := s.checkCartRefs(ctx, tx, userID, productID); err != nil {
			return err
		}

		now := s.timestamp()
		if _, err := tx.ExecContext(ctx, s.q(s.upsertCartSQL()),
			s.newID(), userID, productID, quantity, now, now); err != nil {
			return fmt.Errorf("upsert cart item: %w", err)
		}

		query := `SELECT ` + cartColumns + ` FROM cart_items WHERE user_id = ? AND product_id = ?`
		row, err := scanCartItem(tx.QueryRowContext(ctx, s.q(query), userID, productID))
		if err != nil {
			return fmt.Errorf("read cart item: %w", err)
		}
		item = row
		return nil
	})
	if err != nil {
		return nil, err
	}
	return item, nil
}

// SetCartQuantity replaces the quantity of an existing cart row. Zero removes it.
func (s *Store) SetCartQuantity(ctx context.Context, userID, productID string, quantity int) (*models.CartItem, error) {
	if quantity < 0 {
		return nil, invalid("quantity", "must not be negative")
	}

	var item *models.CartItem
	err := s.withTx(ctx, func(tx querier) error {
		query := `SELECT ` + cartColumns + ` FROM cart_items WHERE user_id = ? AND product_id = ?`
		current, err := scanCartItem(tx.QueryRowContext(ctx, s.q(query), userID, productID))
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("cart item %s: %w", productID, ErrNotFound)
		}
		if err != nil {
			return fmt.Errorf("read cart item: %w", err)
		}

		if quantity == 0 {
			if _, err := tx.ExecContext(ctx, s.q(`DELETE FROM cart_items WHERE id = ?`), current.ID); err != nil {
				return fmt.Errorf("delete cart item: %w", err)
			}
			return nil
		}

		current.Quantity = quantity
		current.UpdatedAt = s.timestamp()
		if _, err := tx.ExecContext(ctx, s.q(`UPDATE cart_items SET quantity = ?, updated_at = ? WHERE id = ?`),
			current.Quantity, current.UpdatedAt, current.ID); err != nil {
			return fmt.Errorf("update cart item: %w", err)
		}
		item = current
		return nil
	})
	if err != nil {
		return nil, err
	}
	return item, nil
}

// RemoveFromCart deletes every row for (user, product) and reports how many
// went. Removing a product that is not in the cart is not an error.
func (s *Store) RemoveFromCart(ctx context.Context, userID, productID string) (int64, error) {
	res, err := s.conn.ExecContext(ctx, s.q(`DELETE FROM cart_items WHERE user_id = ? AND product_id = ?`), userID, productID)
	if err != nil {
		return 0, fmt.Errorf("remove from cart: %w", err)
	}
	return res.RowsAffected()
}

// ClearCart empties the user's cart.
func (s *Store) ClearCart(ctx context.Context, userID string) (int64, error) {
	res, err := s.conn.ExecContext(ctx, s.q(`DELETE FROM cart_items WHERE user_id = ?`), userID)
	if err != nil {
		return 0, fmt.Errorf("clear cart: %w", err)
	}
	return res.RowsAffected()
}

// GetCartItems returns the raw cart rows of a user, oldest first.
func (s *Store) GetCartItems(ctx context.Context, userID string) ([]models.CartItem, error) {
	query := `SELECT ` + cartColumns + ` FROM cart_items WHERE user_id = ? ORDER BY created_at, id`
	rows, err := s.conn.QueryContext(ctx, s.q(query), userID)
	if err != nil {
		return nil, fmt.Errorf("get cart items: %w", err)
	}
	defer rows.Close()

	items := []models.CartItem{}
	for rows.Next() {
		item, err := scanCartItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan cart item: %w", err)
		}
		items = append(items, *item)
	}
	return items, rows.Err()
}

// CartLines returns the cart resolved against current product detail.
func (s *Store) CartLines(ctx context.Context, userID string) ([]models.CartLine, error) {
	query := `SELECT c.id, c.product_id, p.title, p.price, p.thumbnail_url, c.quantity
		FROM cart_items c
		JOIN products p ON p.id = c.product_id
		WHERE c.user_id = ?
		ORDER BY c.created_at, c.id`
	rows, err := s.conn.QueryContext(ctx, s.q(query), userID)
	if err != nil {
		return nil, fmt.Errorf("get cart lines: %w", err)
	}
	defer rows.Close()

	lines := []models.CartLine{}
	for rows.Next() {
		var line models.CartLine
		if err := rows.Scan(&line.ID, &line.ProductID, &line.Title, &line.Price, &line.ThumbnailURL, &line.Quantity); err != nil {
			return nil, fmt.Errorf("scan cart line: %w", err)
		}
		line.LineTotal = line.Price.Mul(decimal.NewFromInt(int64(line.Quantity)))
		lines = append(lines, line)
	}
	return lines, rows.Err()
}

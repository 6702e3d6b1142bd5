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

// OrderLine is one purchased product as reported by checkout completion.
type OrderLine struct {
	ProductID string
	Quantity  int
}

const orderColumns = `id, user_id, status, total, external_id, created_at`

func scanOrder(row rowScanner) (*models.Order, error) {
	var o models.Order
	if err := row.Scan(&o.ID, &o.UserID, &o.Status, &o.Total, &o.ExternalID, &o.CreatedAt); err != nil {
		return nil, err
	}
	return &o, nil
}

// CompleteOrder records a completed purchase. Each item is priced at the
// product's current price and the order total is the sum of the items.
// The purchased products leave the user's cart in the same transaction.
//
// externalID makes the call idempotent: when an order with that id already
// exists it is returned with created == false and nothing is written.
func (s *Store) CompleteOrder(ctx context.Context, userID string, externalID *string, lines []OrderLine) (*models.Order, bool, error) {
	if len(lines) == 0 {
		return nil, false, invalid("items", "at least one item is required")
	}
	for _, l := range lines {
		if l.Quantity < 1 {
			return nil, false, invalid("quantity", "must be at least 1")
		}
	}

	if externalID != nil {
		existing, err := s.GetOrderByExternalID(ctx, *externalID)
		if err == nil {
			return existing, false, nil
		}
		if !errors.Is(err, ErrNotFound) {
			return nil, false, err
		}
	}

	order := &models.Order{
		ID:         s.newID(),
		UserID:     userID,
		Status:     models.OrderStatusCompleted,
		Total:      decimal.Zero,
		ExternalID: externalID,
		CreatedAt:  s.timestamp(),
	}

	err := s.withTx(ctx, func(tx querier) error {
		// 1. --- Check the buyer ---
		ok, err := s.exists(ctx, tx, `SELECT 1 FROM users WHERE id = ?`, userID)
		if err != nil {
			return fmt.Errorf("check user: %w", err)
		}
		if !ok {
			return fmt.Errorf("user %s: %w", userID, ErrNotFound)
		}

		// 2. --- Price every line ---
		order.Items = make([]models.OrderItem, 0, len(lines))
		for _, l := range lines {
			var price decimal.Decimal
			err := tx.QueryRowContext(ctx, s.q(`SELECT price FROM products WHERE id = ?`), l.ProductID).Scan(&price)
			if errors.Is(err, sql.ErrNoRows) {
				return invalid("productId", "product %s does not exist", l.ProductID)
			}
			if err != nil {
				return fmt.Errorf("price product: %w", err)
			}

			order.Items = append(order.Items, models.OrderItem{
				ID:              s.newID(),
				OrderID:         order.ID,
				ProductID:       l.ProductID,
				Quantity:        l.Quantity,
				PriceAtPurchase: price,
			})
			order.Total = order.Total.Add(price.Mul(decimal.NewFromInt(int64(l.Quantity))))
		}

		// 3. --- Persist order and items ---
		_, err = tx.ExecContext(ctx, s.q(`INSERT INTO orders (`+orderColumns+`) VALUES (?, ?, ?, ?, ?, ?)`),
			order.ID, order.UserID, order.Status, order.Total, order.ExternalID, order.CreatedAt)
		if err != nil {
			return fmt.Errorf("insert order: %w", err)
		}
		for _, item := range order.Items {
			_, err := tx.ExecContext(ctx, s.q(`INSERT INTO order_items (id, order_id, product_id, quantity, price_at_purchase) VALUES (?, ?, ?, ?, ?)`),
				item.ID, item.OrderID, item.ProductID, item.Quantity, item.PriceAtPurchase)
			if err != nil {
				return fmt.Errorf("insert order item: %w", err)
			}
		}

		// 4. --- Drop purchased products from the cart ---
		for _, item := range order.Items {
			if _, err := tx.ExecContext(ctx, s.q(`DELETE FROM cart_items WHERE user_id = ? AND product_id = ?`),
				userID, item.ProductID); err != nil {
				return fmt.Errorf("clear purchased cart item: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		// A concurrent delivery of the same transaction won the insert.
		if externalID != nil && database.IsUniqueViolation(err) {
			existing, getErr := s.GetOrderByExternalID(ctx, *externalID)
			if getErr != nil {
				return nil, false, getErr
			}
			return existing, false, nil
		}
		return nil, false, err
	}
	return order, true, nil
}

func (s *Store) orderItems(ctx context.Context, orderID string) ([]models.OrderItem, error) {
	query := `SELECT id, order_id, product_id, quantity, price_at_purchase FROM order_items WHERE order_id = ? ORDER BY id`
	rows, err := s.conn.QueryContext(ctx, s.q(query), orderID)
	if err != nil {
		return nil, fmt.Errorf("get order items: %w", err)
	}
	defer rows.Close()

	items := []models.OrderItem{}
	for rows.Next() {
		var item models.OrderItem
		if err := rows.Scan(&item.ID, &item.OrderID, &item.ProductID, &item.Quantity, &item.PriceAtPurchase); err != nil {
			return nil, fmt.Errorf("scan order item: %w", err)
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func (s *Store) getOrderBy(ctx context.Context, column, value string) (*models.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE ` + column + ` = ?`
	order, err := scanOrder(s.conn.QueryRowContext(ctx, s.q(query), value))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("order %s: %w", value, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get order: %w", err)
	}

	order.Items, err = s.orderItems(ctx, order.ID)
	if err != nil {
		return nil, err
	}
	return order, nil
}

// GetOrder returns an order with its items.
func (s *Store) GetOrder(ctx context.Context, id string) (*models.Order, error) {
	return s.getOrderBy(ctx, "id", id)
}

// GetOrderByExternalID finds the order created for a billing transaction.
func (s *Store) GetOrderByExternalID(ctx context.Context, externalID string) (*models.Order, error) {
	return s.getOrderBy(ctx, "external_id", externalID)
}

// GetUserOrders returns the user's orders with items, newest first.
func (s *Store) GetUserOrders(ctx context.Context, userID string) ([]models.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE user_id = ? ORDER BY created_at DESC, id DESC`
	rows, err := s.conn.QueryContext(ctx, s.q(query), userID)
	if err != nil {
		return nil, fmt.Errorf("get user orders: %w", err)
	}

	orders := []models.Order{}
	index := make(map[string]int)
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan order: %w", err)
		}
		o.Items = []models.OrderItem{}
		index[o.ID] = len(orders)
		orders = append(orders, *o)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(orders) == 0 {
		return orders, nil
	}

	itemQuery := `SELECT i.id, i.order_id, i.product_id, i.quantity, i.price_at_purchase
		FROM order_items i
		JOIN orders o ON o.id = i.order_id
		WHERE o.user_id = ?
		ORDER BY i.id`
	itemRows, err := s.conn.QueryContext(ctx, s.q(itemQuery), userID)
	if err != nil {
		return nil, fmt.Errorf("get user order items: %w", err)
	}
	defer itemRows.Close()

	for itemRows.Next() {
		var item models.OrderItem
		if err := itemRows.Scan(&item.ID, &item.OrderID, &item.ProductID, &item.Quantity, &item.PriceAtPurchase); err != nil {
			return nil, fmt.Errorf("scan order item: %w", err)
		}
		if i, ok := index[item.OrderID]; ok {
			orders[i].Items = append(orders[i].Items, item)
		}
	}
	return orders, itemRows.Err()
}

// HasPurchased reports whether the user has a completed order containing the product.
func (s *Store) HasPurchased(ctx context.Context, userID, productID string) (bool, error) {
	query := `SELECT 1 FROM order_items i
		JOIN orders o ON o.id = i.order_id
		WHERE o.user_id = ? AND i.product_id = ? AND o.status = ?
		LIMIT 1`
	ok, err := s.exists(ctx, s.conn, query, userID, productID, models.OrderStatusCompleted)
	if err != nil {
		return false, fmt.Errorf("check purchase: %w", err)
	}
	return ok, nil
}

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/01moynul/vividen-storefront/internal/database"
	"github.com/01moynul/vividen-storefront/internal/models"
)

const userColumns = `id, username, email, password_hash, is_admin, first_name, last_name, avatar,
	paddle_customer_id, paddle_subscription_id, created_at`

func scanUser(row rowScanner) (*models.User, error) {
	var u models.User
	err := row.Scan(
		&u.ID,
		&u.Username,
		&u.Email,
		&u.PasswordHash,
		&u.IsAdmin,
		&u.FirstName,
		&u.LastName,
		&u.Avatar,
		&u.PaddleCustomerID,
		&u.PaddleSubscriptionID,
		&u.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// CreateUser inserts u, assigning its ID and CreatedAt. The password must
// already be hashed. Duplicate username or email yields ErrConflict.
func (s *Store) CreateUser(ctx context.Context, u *models.User) error {
	if strings.TrimSpace(u.Username) == "" {
		return invalid("username", "is required")
	}
	if strings.TrimSpace(u.Email) == "" {
		return invalid("email", "is required")
	}
	if u.PasswordHash == "" {
		return invalid("password", "is required")
	}

	u.ID = s.newID()
	u.CreatedAt = s.timestamp()

	query := `INSERT INTO users (` + userColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := s.conn.ExecContext(ctx, s.q(query),
		u.ID, u.Username, u.Email, u.PasswordHash, u.IsAdmin, u.FirstName, u.LastName, u.Avatar,
		u.PaddleCustomerID, u.PaddleSubscriptionID, u.CreatedAt)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return fmt.Errorf("user %s: %w", u.Email, ErrConflict)
		}
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

func (s *Store) getUserBy(ctx context.Context, column, value string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE ` + column + ` = ?`
	u, err := scanUser(s.conn.QueryRowContext(ctx, s.q(query), value))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("user %s: %w", value, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get user by %s: %w", column, err)
	}
	return u, nil
}

func (s *Store) GetUser(ctx context.Context, id string) (*models.User, error) {
	return s.getUserBy(ctx, "id", id)
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.getUserBy(ctx, "email", email)
}

func (s *Store) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	return s.getUserBy(ctx, "username", username)
}

// UpdateUserPaddleInfo stores the billing customer and subscription ids.
func (s *Store) UpdateUserPaddleInfo(ctx context.Context, id, customerID, subscriptionID string) (*models.User, error) {
	query := `UPDATE users SET paddle_customer_id = ?, paddle_subscription_id = ? WHERE id = ?`
	if _, err := s.conn.ExecContext(ctx, s.q(query), customerID, subscriptionID, id); err != nil {
		return nil, fmt.Errorf("update paddle info: %w", err)
	}
	// MySQL reports zero affected rows when values are unchanged, so existence
	// is checked by reading the row back.
	return s.GetUser(ctx, id)
}

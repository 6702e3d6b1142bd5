package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/gosimple/slug"

	"github.com/01moynul/vividen-storefront/internal/database"
	"github.com/01moynul/vividen-storefront/internal/models"
)

const categoryColumns = `id, name, slug, description, icon, parent_id, is_active, sort_order, created_at`

func scanCategory(row rowScanner) (*models.Category, error) {
	var c models.Category
	err := row.Scan(
		&c.ID,
		&c.Name,
		&c.Slug,
		&c.Description,
		&c.Icon,
		&c.ParentID,
		&c.IsActive,
		&c.SortOrder,
		&c.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// ListCategories returns the active categories ordered by sortOrder. Name and
// id break ties so repeated calls return the same sequence.
func (s *Store) ListCategories(ctx context.Context) ([]models.Category, error) {
	query := `SELECT ` + categoryColumns + ` FROM categories
		WHERE is_active = ?
		ORDER BY sort_order ASC, name ASC, id ASC`

	rows, err := s.conn.QueryContext(ctx, s.q(query), true)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	categories := []models.Category{}
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		categories = append(categories, *c)
	}
	return categories, rows.Err()
}

func (s *Store) getCategoryBy(ctx context.Context, column, value string) (*models.Category, error) {
	query := `SELECT ` + categoryColumns + ` FROM categories WHERE ` + column + ` = ?`
	c, err := scanCategory(s.conn.QueryRowContext(ctx, s.q(query), value))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("category %s: %w", value, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get category by %s: %w", column, err)
	}
	return c, nil
}

func (s *Store) GetCategory(ctx context.Context, id string) (*models.Category, error) {
	return s.getCategoryBy(ctx, "id", id)
}

func (s *Store) GetCategoryBySlug(ctx context.Context, slugValue string) (*models.Category, error) {
	return s.getCategoryBy(ctx, "slug", slugValue)
}

// CreateCategory inserts c. An empty slug is derived from the name; a
// duplicate slug yields ErrConflict and an unknown parent a ValidationError.
func (s *Store) CreateCategory(ctx context.Context, c *models.Category) error {
	c.Name = strings.TrimSpace(c.Name)
	if c.Name == "" {
		return invalid("name", "is required")
	}
	if c.Slug == "" {
		c.Slug = slug.Make(c.Name)
	}
	if !slug.IsSlug(c.Slug) {
		return invalid("slug", "%q is not a valid slug", c.Slug)
	}

	if c.ParentID != nil {
		ok, err := s.exists(ctx, s.conn, `SELECT 1 FROM categories WHERE id = ?`, *c.ParentID)
		if err != nil {
			return fmt.Errorf("check parent category: %w", err)
		}
		if !ok {
			return invalid("parentId", "category %s does not exist", *c.ParentID)
		}
	}

	c.ID = s.newID()
	c.CreatedAt = s.timestamp()

	query := `INSERT INTO categories (` + categoryColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := s.conn.ExecContext(ctx, s.q(query),
		c.ID, c.Name, c.Slug, c.Description, c.Icon, c.ParentID, c.IsActive, c.SortOrder, c.CreatedAt)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return fmt.Errorf("category slug %s: %w", c.Slug, ErrConflict)
		}
		return fmt.Errorf("create category: %w", err)
	}
	return nil
}

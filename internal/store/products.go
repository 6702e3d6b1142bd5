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

const productColumns = `p.id, p.title, p.description, p.price, p.category_id, p.author_id,
	p.thumbnail_url, p.file_url, p.file_format, p.tags, p.paddle_price_id,
	p.is_featured, p.is_active, p.rating, p.rating_count, p.download_count, p.created_at`

func scanProduct(row rowScanner) (*models.Product, error) {
	var p models.Product
	err := row.Scan(
		&p.ID,
		&p.Title,
		&p.Description,
		&p.Price,
		&p.CategoryID,
		&p.AuthorID,
		&p.ThumbnailURL,
		&p.FileURL,
		&p.FileFormat,
		&p.Tags,
		&p.PaddlePriceID,
		&p.IsFeatured,
		&p.IsActive,
		&p.Rating,
		&p.RatingCount,
		&p.DownloadCount,
		&p.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// ListProducts runs q and returns the matching products in order. It never
// returns a nil slice.
func (s *Store) ListProducts(ctx context.Context, q ProductQuery) ([]models.Product, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}

	query, args := q.build(s.dialect)
	rows, err := s.conn.QueryContext(ctx, s.q(query), args...)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	products := []models.Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		products = append(products, *p)
	}
	return products, rows.Err()
}

// FeaturedProducts returns up to limit featured products, newest first.
func (s *Store) FeaturedProducts(ctx context.Context, limit int) ([]models.Product, error) {
	if limit == 0 {
		limit = DefaultFeaturedSize
	}
	return s.ListProducts(ctx, ProductQuery{Featured: true, Limit: limit})
}

// ProductsByCategory returns every active product of a category, newest first.
func (s *Store) ProductsByCategory(ctx context.Context, categoryID string) ([]models.Product, error) {
	return s.ListProducts(ctx, ProductQuery{CategoryID: categoryID})
}

// SearchProducts is the unpaginated text search; categoryID may be empty.
func (s *Store) SearchProducts(ctx context.Context, text, categoryID string) ([]models.Product, error) {
	if strings.TrimSpace(text) == "" {
		return nil, invalid("q", "search query required")
	}
	return s.ListProducts(ctx, ProductQuery{Search: text, CategoryID: categoryID})
}

func (s *Store) getProductBy(ctx context.Context, column, value string) (*models.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products p WHERE p.` + column + ` = ?`
	p, err := scanProduct(s.conn.QueryRowContext(ctx, s.q(query), value))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("product %s: %w", value, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get product by %s: %w", column, err)
	}
	return p, nil
}

// GetProduct returns a product by id whether or not it is active.
func (s *Store) GetProduct(ctx context.Context, id string) (*models.Product, error) {
	return s.getProductBy(ctx, "id", id)
}

// GetProductByPriceID resolves a billing price id to its product.
func (s *Store) GetProductByPriceID(ctx context.Context, priceID string) (*models.Product, error) {
	return s.getProductBy(ctx, "paddle_price_id", priceID)
}

// CreateProduct validates and inserts p, assigning ID and CreatedAt.
func (s *Store) CreateProduct(ctx context.Context, p *models.Product) error {
	p.Title = strings.TrimSpace(p.Title)
	if p.Title == "" {
		return invalid("title", "is required")
	}
	if p.Price.IsNegative() {
		return invalid("price", "must not be negative")
	}
	if p.CategoryID == "" {
		return invalid("categoryId", "is required")
	}

	ok, err := s.exists(ctx, s.conn, `SELECT 1 FROM categories WHERE id = ?`, p.CategoryID)
	if err != nil {
		return fmt.Errorf("check category: %w", err)
	}
	if !ok {
		return invalid("categoryId", "category %s does not exist", p.CategoryID)
	}
	if p.AuthorID != nil {
		ok, err := s.exists(ctx, s.conn, `SELECT 1 FROM users WHERE id = ?`, *p.AuthorID)
		if err != nil {
			return fmt.Errorf("check author: %w", err)
		}
		if !ok {
			return invalid("authorId", "user %s does not exist", *p.AuthorID)
		}
	}

	p.ID = s.newID()
	p.CreatedAt = s.timestamp()
	if p.Tags == nil {
		p.Tags = models.Tags{}
	}

	query := `INSERT INTO products (id, title, description, price, category_id, author_id,
		thumbnail_url, file_url, file_format, tags, paddle_price_id,
		is_featured, is_active, rating, rating_count, download_count, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err = s.conn.ExecContext(ctx, s.q(query),
		p.ID, p.Title, p.Description, p.Price, p.CategoryID, p.AuthorID,
		p.ThumbnailURL, p.FileURL, p.FileFormat, p.Tags, p.PaddlePriceID,
		p.IsFeatured, p.IsActive, p.Rating, p.RatingCount, p.DownloadCount, p.CreatedAt)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return fmt.Errorf("product price id: %w", ErrConflict)
		}
		return fmt.Errorf("create product: %w", err)
	}
	return nil
}

package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// CartItem defines the struct for the 'cart_items' table.
// There is at most one row per (user, product); adding again raises Quantity.
type CartItem struct {
	ID        string    `json:"id" db:"id"`
	UserID    string    `json:"userId" db:"user_id"`
	ProductID string    `json:"productId" db:"product_id"`
	Quantity  int       `json:"quantity" db:"quantity"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`
}

// CartLine is a cart row resolved against the product it references.
type CartLine struct {
	ID           string          `json:"id"`
	ProductID    string          `json:"productId"`
	Title        string          `json:"title"`
	Price        decimal.Decimal `json:"price"`
	ThumbnailURL *string         `json:"thumbnailUrl,omitempty"`
	Quantity     int             `json:"quantity"`
	LineTotal    decimal.Decimal `json:"lineTotal"`
}

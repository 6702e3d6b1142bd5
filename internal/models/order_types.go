package models

import (
	"time"

	"github.com/shopspring/decimal"
)

const OrderStatusCompleted = "completed"

// Order is the model for the 'orders' table
type Order struct {
	ID         string          `json:"id" db:"id"`
	UserID     string          `json:"userId" db:"user_id"`
	Status     string          `json:"status" db:"status"`
	Total      decimal.Decimal `json:"total" db:"total"`
	ExternalID *string         `json:"externalId,omitempty" db:"external_id"` // billing transaction id
	CreatedAt  time.Time       `json:"createdAt" db:"created_at"`

	Items []OrderItem `json:"items,omitempty" db:"-"`
}

// OrderItem is the model for the 'order_items' table
type OrderItem struct {
	ID              string          `json:"id" db:"id"`
	OrderID         string          `json:"orderId" db:"order_id"`
	ProductID       string          `json:"productId" db:"product_id"`
	Quantity        int             `json:"quantity" db:"quantity"`
	PriceAtPurchase decimal.Decimal `json:"priceAtPurchase" db:"price_at_purchase"` // Price at the time of purchase
}

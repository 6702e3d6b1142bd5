package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Product is the model for the 'products' table.
type Product struct {
	ID          string          `json:"id" db:"id"`
	Title       string          `json:"title" db:"title"`
	Description string          `json:"description" db:"description"`
	Price       decimal.Decimal `json:"price" db:"price"`
	CategoryID  string          `json:"categoryId" db:"category_id"`
	AuthorID    *string         `json:"authorId,omitempty" db:"author_id"`

	// --- Media & Delivery ---
	ThumbnailURL *string `json:"thumbnailUrl,omitempty" db:"thumbnail_url"`
	FileURL      *string `json:"-" db:"file_url"` // only handed out after purchase
	FileFormat   *string `json:"fileFormat,omitempty" db:"file_format"`
	Tags         Tags    `json:"tags" db:"tags"`

	// --- Billing ---
	PaddlePriceID *string `json:"paddlePriceId,omitempty" db:"paddle_price_id"`

	// --- Flags & Stats ---
	IsFeatured    bool            `json:"isFeatured" db:"is_featured"`
	IsActive      bool            `json:"isActive" db:"is_active"`
	Rating        decimal.Decimal `json:"rating" db:"rating"`
	RatingCount   int             `json:"ratingCount" db:"rating_count"`
	DownloadCount int             `json:"downloadCount" db:"download_count"`

	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}

// Tags is an ordered list of labels stored as a JSON array in a text column.
type Tags []string

// Value implements driver.Valuer.
func (t Tags) Value() (driver.Value, error) {
	if t == nil {
		return "[]", nil
	}
	b, err := json.Marshal([]string(t))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements sql.Scanner.
func (t *Tags) Scan(src any) error {
	var raw []byte
	switch v := src.(type) {
	case nil:
		*t = Tags{}
		return nil
	case string:
		raw = []byte(v)
	case []byte:
		raw = v
	default:
		return fmt.Errorf("tags: unsupported column type %T", src)
	}

	if len(raw) == 0 {
		*t = Tags{}
		return nil
	}
	var out []string
	if err := json.Unmarshal(raw, &out); err != nil {
		return fmt.Errorf("tags: %w", err)
	}
	if out == nil {
		out = []string{}
	}
	*t = out
	return nil
}

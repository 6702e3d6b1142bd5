package models

import "time"

// Category defines the struct for the 'categories' table
type Category struct {
	ID          string    `json:"id" db:"id"`
	Name        string    `json:"name" db:"name"`
	Slug        string    `json:"slug" db:"slug"`
	Description *string   `json:"description,omitempty" db:"description"`
	Icon        *string   `json:"icon,omitempty" db:"icon"`
	ParentID    *string   `json:"parentId,omitempty" db:"parent_id"` // Use pointer for NULL
	IsActive    bool      `json:"isActive" db:"is_active"`
	SortOrder   int       `json:"sortOrder" db:"sort_order"`
	CreatedAt   time.Time `json:"createdAt" db:"created_at"`
}

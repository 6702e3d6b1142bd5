package models

// --- API Input/Output Structs ---

// CreateCategoryInput is the body of POST /api/categories. Slug is derived
// from Name when omitted.
type CreateCategoryInput struct {
	Name        string  `json:"name" binding:"required,max=255"`
	Slug        string  `json:"slug" binding:"omitempty,max=255"`
	Description *string `json:"description"`
	Icon        *string `json:"icon" binding:"omitempty,max=100"`
	ParentID    *string `json:"parentId"` // Pointer allows sending null for root categories
	IsActive    *bool   `json:"isActive"` // defaults to true
	SortOrder   int     `json:"sortOrder" binding:"gte=0"`
}

// Category converts the input into an unsaved Category.
func (in CreateCategoryInput) Category() *Category {
	active := true
	if in.IsActive != nil {
		active = *in.IsActive
	}
	return &Category{
		Name:        in.Name,
		Slug:        in.Slug,
		Description: in.Description,
		Icon:        in.Icon,
		ParentID:    in.ParentID,
		IsActive:    active,
		SortOrder:   in.SortOrder,
	}
}

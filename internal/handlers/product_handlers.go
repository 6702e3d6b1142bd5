package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/01moynul/vividen-storefront/internal/cache"
	"github.com/01moynul/vividen-storefront/internal/models"
	"github.com/01moynul/vividen-storefront/internal/store"
)

//
// --- Product Handlers (Public catalog, Admin create) ---
//

// CreateProductInput is the body of POST /api/products.
type CreateProductInput struct {
	Title         string           `json:"title" binding:"required,max=255"`
	Description   string           `json:"description" binding:"required"`
	Price         *decimal.Decimal `json:"price" binding:"required"`
	CategoryID    string           `json:"categoryId" binding:"required"`
	AuthorID      *string          `json:"authorId"`
	ThumbnailURL  *string          `json:"thumbnailUrl" binding:"omitempty,url,max=500"`
	FileURL       *string          `json:"fileUrl" binding:"omitempty,url,max=500"`
	FileFormat    *string          `json:"fileFormat" binding:"omitempty,max=100"`
	Tags          []string         `json:"tags" binding:"omitempty,dive,required,max=50"`
	PaddlePriceID *string          `json:"paddlePriceId" binding:"omitempty,max=100"`
	IsFeatured    bool             `json:"isFeatured"`
	IsActive      *bool            `json:"isActive"` // defaults to true
}

// GetProducts handles GET /api/products.
func (h *Handlers) GetProducts(c *gin.Context) {
	q, err := parseProductQuery(c, store.DefaultPageSize)
	if err != nil {
		h.respondError(c, err)
		return
	}
	h.listProducts(c, q)
}

// GetFeaturedProducts handles GET /api/products/featured.
func (h *Handlers) GetFeaturedProducts(c *gin.Context) {
	q, err := parseProductQuery(c, store.DefaultFeaturedSize)
	if err != nil {
		h.respondError(c, err)
		return
	}
	q.Featured = true
	h.listProducts(c, q)
}

// SearchProducts handles GET /api/products/search?q=&category=. It is
// unpaginated unless a limit is given.
func (h *Handlers) SearchProducts(c *gin.Context) {
	q, err := parseProductQuery(c, 0)
	if err != nil {
		h.respondError(c, err)
		return
	}
	if strings.TrimSpace(q.Search) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Search query required"})
		return
	}
	h.listProducts(c, q)
}

func (h *Handlers) listProducts(c *gin.Context, q store.ProductQuery) {
	products, err := h.Store.ListProducts(c.Request.Context(), q)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, products)
}

// GetProduct handles GET /api/products/:id. Product detail is cached.
func (h *Handlers) GetProduct(c *gin.Context) {
	ctx := c.Request.Context()
	id := c.Param("id")
	key := cache.ProductKey(id)

	var cached models.Product
	err := h.Cache.Get(ctx, key, &cached)
	if err == nil {
		c.JSON(http.StatusOK, cached)
		return
	}
	if !errors.Is(err, cache.ErrMiss) {
		h.Log.Warn("product cache read failed", zap.String("key", key), zap.Error(err))
	}

	product, err := h.Store.GetProduct(ctx, id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	if err := h.Cache.Set(ctx, key, product); err != nil {
		h.Log.Warn("product cache write failed", zap.String("key", key), zap.Error(err))
	}
	c.JSON(http.StatusOK, product)
}

// CreateProduct handles POST /api/products (admin only).
func (h *Handlers) CreateProduct(c *gin.Context) {
	var input CreateProductInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respondBindError(c, err)
		return
	}

	active := true
	if input.IsActive != nil {
		active = *input.IsActive
	}
	product := &models.Product{
		Title:         input.Title,
		Description:   input.Description,
		Price:         *input.Price,
		CategoryID:    input.CategoryID,
		AuthorID:      input.AuthorID,
		ThumbnailURL:  input.ThumbnailURL,
		FileURL:       input.FileURL,
		FileFormat:    input.FileFormat,
		Tags:          models.Tags(input.Tags),
		PaddlePriceID: input.PaddlePriceID,
		IsFeatured:    input.IsFeatured,
		IsActive:      active,
	}

	if err := h.Store.CreateProduct(c.Request.Context(), product); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, product)
}

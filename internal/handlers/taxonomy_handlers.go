package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/01moynul/vividen-storefront/internal/cache"
	"github.com/01moynul/vividen-storefront/internal/models"
)

//
// --- Category Handlers ---
//

// GetCategories handles GET /api/categories: the active categories in
// display order, served from cache when possible.
func (h *Handlers) GetCategories(c *gin.Context) {
	ctx := c.Request.Context()

	var cached []models.Category
	err := h.Cache.Get(ctx, cache.KeyActiveCategories, &cached)
	if err == nil {
		c.JSON(http.StatusOK, cached)
		return
	}
	if !errors.Is(err, cache.ErrMiss) {
		h.Log.Warn("category cache read failed", zap.Error(err))
	}

	categories, err := h.Store.ListCategories(ctx)
	if err != nil {
		h.respondError(c, err)
		return
	}
	if err := h.Cache.Set(ctx, cache.KeyActiveCategories, categories); err != nil {
		h.Log.Warn("category cache write failed", zap.Error(err))
	}
	c.JSON(http.StatusOK, categories)
}

// GetCategory handles GET /api/categories/:slug.
func (h *Handlers) GetCategory(c *gin.Context) {
	category, err := h.Store.GetCategoryBySlug(c.Request.Context(), c.Param("slug"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, category)
}

// GetCategoryProducts handles GET /api/categories/:slug/products. Every
// listing filter applies; the result is unpaginated unless a limit is given.
func (h *Handlers) GetCategoryProducts(c *gin.Context) {
	ctx := c.Request.Context()

	category, err := h.Store.GetCategoryBySlug(ctx, c.Param("slug"))
	if err != nil {
		h.respondError(c, err)
		return
	}

	q, err := parseProductQuery(c, 0)
	if err != nil {
		h.respondError(c, err)
		return
	}
	q.CategoryID = category.ID
	h.listProducts(c, q)
}

// CreateCategory handles POST /api/categories (admin only).
func (h *Handlers) CreateCategory(c *gin.Context) {
	var input models.CreateCategoryInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respondBindError(c, err)
		return
	}

	category := input.Category()
	if err := h.Store.CreateCategory(c.Request.Context(), category); err != nil {
		h.respondError(c, err)
		return
	}

	h.dropCache(c, cache.KeyActiveCategories)
	c.JSON(http.StatusCreated, category)
}

func (h *Handlers) dropCache(c *gin.Context, keys ...string) {
	if err := h.Cache.Delete(c.Request.Context(), keys...); err != nil {
		h.Log.Warn("cache invalidation failed", zap.Strings("keys", keys), zap.Error(err))
	}
}

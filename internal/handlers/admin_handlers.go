package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/01moynul/vividen-storefront/internal/cache"
	"github.com/01moynul/vividen-storefront/internal/seed"
)

//
// --- Admin & Operations Handlers ---
//

// SeedCatalog handles POST /api/seed. It is disabled in production.
func (h *Handlers) SeedCatalog(c *gin.Context) {
	if !h.SeedEnabled {
		c.JSON(http.StatusNotFound, gin.H{"error": "Seeding is disabled"})
		return
	}

	res, err := seed.Run(c.Request.Context(), h.Store, h.Seed)
	if err != nil {
		h.respondError(c, err)
		return
	}
	h.dropCache(c, cache.KeyActiveCategories)
	h.Log.Info("catalog seeded",
		zap.Int("categories", len(res.Categories)),
		zap.Int("products", len(res.Products)),
	)

	c.JSON(http.StatusCreated, gin.H{
		"message":    "Database seeded successfully",
		"categories": len(res.Categories),
		"products":   len(res.Products),
		"admin":      res.Admin.Email,
	})
}

// Health handles GET /api/health.
func (h *Handlers) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	if err := h.Store.Ping(ctx); err != nil {
		h.Log.Warn("health check failed", zap.Error(err))
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "database": "down"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "database": "up"})
}

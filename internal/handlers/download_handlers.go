package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/01moynul/vividen-storefront/internal/cache"
	"github.com/01moynul/vividen-storefront/internal/events"
	"github.com/01moynul/vividen-storefront/internal/middleware"
	"github.com/01moynul/vividen-storefront/internal/store"
)

// DownloadProduct handles POST /api/products/:id/download. The caller must
// own a completed purchase of the product.
func (h *Handlers) DownloadProduct(c *gin.Context) {
	ctx := c.Request.Context()
	userID := middleware.UserID(c)
	productID := c.Param("id")

	// 1. --- Product & entitlement ---
	product, err := h.Store.GetProduct(ctx, productID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	purchased, err := h.Store.HasPurchased(ctx, userID, product.ID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	if !purchased {
		c.JSON(http.StatusForbidden, gin.H{"error": "Purchase required to download this product"})
		return
	}
	if product.FileURL == nil || *product.FileURL == "" {
		h.respondError(c, fmt.Errorf("file for product %s: %w", product.ID, store.ErrNotFound))
		return
	}

	// 2. --- Record ---
	download, err := h.Store.RecordDownload(ctx, userID, product.ID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	h.dropCache(c, cache.ProductKey(product.ID))
	h.Metrics.Downloads.Inc()
	h.publish(ctx, events.ProductDownloaded, userID, download)

	c.JSON(http.StatusOK, gin.H{
		"downloadUrl": *product.FileURL,
		"download":    download,
	})
}

// GetUserDownloads handles GET /api/users/:userId/downloads.
func (h *Handlers) GetUserDownloads(c *gin.Context) {
	downloads, err := h.Store.GetUserDownloads(c.Request.Context(), c.Param("userId"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, downloads)
}

package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/01moynul/vividen-storefront/internal/events"
	"github.com/01moynul/vividen-storefront/internal/middleware"
	"github.com/01moynul/vividen-storefront/internal/models"
)

//
// --- Cart Handlers (self or admin) ---
//

// AddToCartInput defines the JSON for adding an item to the cart.
// Quantity defaults to 1.
type AddToCartInput struct {
	UserID    string `json:"userId" binding:"required"`
	ProductID string `json:"productId" binding:"required"`
	Quantity  *int   `json:"quantity" binding:"omitempty,gte=1,lte=1000"`
}

// UpdateCartItemInput is the body of PUT /api/cart/:userId/:productId. Zero
// removes the row.
type UpdateCartItemInput struct {
	Quantity *int `json:"quantity" binding:"required,gte=0,lte=1000"`
}

// CartResponse is the resolved cart returned by GET /api/cart/:userId.
type CartResponse struct {
	Items      []models.CartLine `json:"items"`
	Subtotal   decimal.Decimal   `json:"subtotal"`
	TotalItems int               `json:"totalItems"`
}

func newCartResponse(lines []models.CartLine) CartResponse {
	resp := CartResponse{Items: lines, Subtotal: decimal.Zero}
	for _, l := range lines {
		resp.Subtotal = resp.Subtotal.Add(l.LineTotal)
		resp.TotalItems += l.Quantity
	}
	return resp
}

// authorizeUser checks that the caller may act on userID, which arrived in
// the request body. It writes the response and returns false when not.
func (h *Handlers) authorizeUser(c *gin.Context, userID string) bool {
	if userID == middleware.UserID(c) {
		return true
	}
	admin, ok := middleware.CallerIsAdmin(c, h.Store)
	if !ok {
		return false
	}
	if !admin {
		c.JSON(http.StatusForbidden, gin.H{"error": "Access denied: not your account"})
		return false
	}
	return true
}

// GetCart handles GET /api/cart/:userId.
func (h *Handlers) GetCart(c *gin.Context) {
	lines, err := h.Store.CartLines(c.Request.Context(), c.Param("userId"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, newCartResponse(lines))
}

// AddToCart handles POST /api/cart. Adding a product already in the cart
// raises its quantity.
func (h *Handlers) AddToCart(c *gin.Context) {
	ctx := c.Request.Context()

	// 1. --- Bind & Validate JSON ---
	var input AddToCartInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respondBindError(c, err)
		return
	}
	quantity := 1
	if input.Quantity != nil {
		quantity = *input.Quantity
	}

	// 2. --- Ownership ---
	if !h.authorizeUser(c, input.UserID) {
		return
	}

	// 3. --- Upsert ---
	item, err := h.Store.AddToCart(ctx, input.UserID, input.ProductID, quantity)
	if err != nil {
		h.respondError(c, err)
		return
	}

	h.Metrics.CartAdditions.Inc()
	h.publish(ctx, events.CartItemAdded, item.UserID, gin.H{
		"userId":    item.UserID,
		"productId": item.ProductID,
		"added":     quantity,
		"quantity":  item.Quantity,
	})

	c.JSON(http.StatusCreated, item)
}

// UpdateCartItem handles PUT /api/cart/:userId/:productId.
func (h *Handlers) UpdateCartItem(c *gin.Context) {
	ctx := c.Request.Context()
	userID, productID := c.Param("userId"), c.Param("productId")

	var input UpdateCartItemInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respondBindError(c, err)
		return
	}

	item, err := h.Store.SetCartQuantity(ctx, userID, productID, *input.Quantity)
	if err != nil {
		h.respondError(c, err)
		return
	}
	if item == nil {
		h.publish(ctx, events.CartItemRemoved, userID, gin.H{"userId": userID, "productId": productID})
		c.JSON(http.StatusOK, gin.H{"message": "Item removed from cart"})
		return
	}
	c.JSON(http.StatusOK, item)
}

// RemoveFromCart handles DELETE /api/cart/:userId/:productId. Removing a
// product that is not in the cart still succeeds.
func (h *Handlers) RemoveFromCart(c *gin.Context) {
	ctx := c.Request.Context()
	userID, productID := c.Param("userId"), c.Param("productId")

	removed, err := h.Store.RemoveFromCart(ctx, userID, productID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	if removed > 0 {
		h.publish(ctx, events.CartItemRemoved, userID, gin.H{"userId": userID, "productId": productID})
	}
	c.JSON(http.StatusOK, gin.H{"message": "Item removed from cart"})
}

// ClearCart handles DELETE /api/cart/:userId.
func (h *Handlers) ClearCart(c *gin.Context) {
	ctx := c.Request.Context()
	userID := c.Param("userId")

	removed, err := h.Store.ClearCart(ctx, userID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	if removed > 0 {
		h.publish(ctx, events.CartCleared, userID, gin.H{"userId": userID, "removed": removed})
	}
	c.JSON(http.StatusOK, gin.H{"message": "Cart cleared", "removed": removed})
}

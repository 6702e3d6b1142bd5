package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/01moynul/vividen-storefront/internal/middleware"
	"github.com/01moynul/vividen-storefront/internal/payment"
	"github.com/01moynul/vividen-storefront/internal/store"
)

//
// --- Checkout & Order Handlers ---
//

type CheckoutItemInput struct {
	ProductID string `json:"productId" binding:"required"`
	Quantity  int    `json:"quantity" binding:"required,gte=1,lte=1000"`
}

// CheckoutInput is the body of POST /api/create-paddle-checkout.
type CheckoutInput struct {
	UserID     string              `json:"userId" binding:"required"`
	Items      []CheckoutItemInput `json:"items" binding:"required,min=1,max=100,dive"`
	DiscountID string              `json:"discountId" binding:"omitempty,max=100"`
}

// CreateCheckout opens a hosted checkout for the given products and relays
// its URL.
func (h *Handlers) CreateCheckout(c *gin.Context) {
	ctx := c.Request.Context()

	// 1. --- Bind & Validate JSON ---
	var input CheckoutInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respondBindError(c, err)
		return
	}
	if !h.authorizeUser(c, input.UserID) {
		return
	}

	// 2. --- Resolve every product to its billing price ---
	req := payment.CheckoutRequest{UserID: input.UserID, DiscountID: input.DiscountID}
	for _, item := range input.Items {
		product, err := h.Store.GetProduct(ctx, item.ProductID)
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("Product %s not found", item.ProductID)})
			return
		}
		if err != nil {
			h.respondError(c, err)
			return
		}
		if !product.IsActive || product.PaddlePriceID == nil || *product.PaddlePriceID == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("Product %s is not available for purchase", item.ProductID)})
			return
		}
		req.Items = append(req.Items, payment.CheckoutItem{PriceID: *product.PaddlePriceID, Quantity: item.Quantity})
	}

	// 3. --- Call the provider ---
	checkout, err := h.Payments.CreateCheckout(ctx, req)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"checkoutUrl":   checkout.URL,
		"transactionId": checkout.TransactionID,
	})
}

// GetUserOrders handles GET /api/users/:userId/orders.
func (h *Handlers) GetUserOrders(c *gin.Context) {
	orders, err := h.Store.GetUserOrders(c.Request.Context(), c.Param("userId"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, orders)
}

// GetOrder handles GET /api/orders/:id. Only the buyer and admins may read an order.
func (h *Handlers) GetOrder(c *gin.Context) {
	order, err := h.Store.GetOrder(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}

	if order.UserID != middleware.UserID(c) {
		admin, ok := middleware.CallerIsAdmin(c, h.Store)
		if !ok {
			return
		}
		if !admin {
			h.respondError(c, fmt.Errorf("order %s: %w", order.ID, errForbidden))
			return
		}
	}
	c.JSON(http.StatusOK, order)
}

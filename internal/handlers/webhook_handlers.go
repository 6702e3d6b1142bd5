package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/01moynul/vividen-storefront/internal/events"
	"github.com/01moynul/vividen-storefront/internal/payment"
	"github.com/01moynul/vividen-storefront/internal/store"
)

// maxWebhookBody bounds what we read before the signature is checked.
const maxWebhookBody = 1 << 20

// PaddleWebhook handles POST /api/paddle/webhook. Deliveries that cannot be
// applied (unknown user or price) are logged and acknowledged so the
// provider stops retrying; only storage failures ask for a redelivery.
func (h *Handlers) PaddleWebhook(c *gin.Context) {
	// 1. --- Authenticate ---
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxWebhookBody)
	body, err := c.GetRawData()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unable to read body"})
		return
	}
	if err := h.Webhooks.Verify(c.GetHeader(payment.SignatureHeader), body); err != nil {
		h.Log.Warn("webhook rejected", zap.Error(err))
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid signature"})
		return
	}

	// 2. --- Decode ---
	ev, err := payment.ParseEvent(body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	log := h.Log.With(zap.String("eventId", ev.EventID), zap.String("eventType", ev.EventType))

	// 3. --- Dispatch ---
	switch ev.EventType {
	case payment.EventTransactionCompleted:
		err = h.applyTransaction(c, ev, log)
	case payment.EventSubscriptionCreated, payment.EventSubscriptionUpdated:
		err = h.applySubscription(c, ev, log)
	default:
		log.Info("webhook event ignored")
	}
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"received": true})
}

func (h *Handlers) applyTransaction(c *gin.Context, ev *payment.Event, log *zap.Logger) error {
	ctx := c.Request.Context()

	txn, err := ev.Transaction()
	if err != nil {
		return &store.ValidationError{Field: "data", Message: err.Error()}
	}
	if txn.CustomData == nil || txn.CustomData.UserID == "" {
		log.Warn("transaction without user", zap.String("transactionId", txn.ID))
		return nil
	}

	lines := make([]store.OrderLine, 0, len(txn.Items))
	for _, item := range txn.Items {
		product, err := h.Store.GetProductByPriceID(ctx, item.Price.ID)
		if errors.Is(err, store.ErrNotFound) {
			log.Warn("transaction references unknown price", zap.String("priceId", item.Price.ID))
			return nil
		}
		if err != nil {
			return err
		}
		quantity := item.Quantity
		if quantity < 1 {
			quantity = 1
		}
		lines = append(lines, store.OrderLine{ProductID: product.ID, Quantity: quantity})
	}
	if len(lines) == 0 {
		log.Warn("transaction without items", zap.String("transactionId", txn.ID))
		return nil
	}

	order, created, err := h.Store.CompleteOrder(ctx, txn.CustomData.UserID, &txn.ID, lines)
	if errors.Is(err, store.ErrNotFound) {
		log.Warn("transaction for unknown user", zap.String("userId", txn.CustomData.UserID))
		return nil
	}
	if err != nil {
		return err
	}
	if !created {
		log.Info("transaction already recorded", zap.String("orderId", order.ID))
		return nil
	}

	h.Metrics.OrdersCompleted.Inc()
	h.publish(ctx, events.OrderCompleted, order.UserID, order)
	log.Info("order completed", zap.String("orderId", order.ID), zap.String("total", order.Total.String()))
	return nil
}

func (h *Handlers) applySubscription(c *gin.Context, ev *payment.Event, log *zap.Logger) error {
	sub, err := ev.Subscription()
	if err != nil {
		return &store.ValidationError{Field: "data", Message: err.Error()}
	}
	if sub.CustomData == nil || sub.CustomData.UserID == "" {
		log.Warn("subscription without user", zap.String("subscriptionId", sub.ID))
		return nil
	}

	_, err = h.Store.UpdateUserPaddleInfo(c.Request.Context(), sub.CustomData.UserID, sub.CustomerID, sub.ID)
	if errors.Is(err, store.ErrNotFound) {
		log.Warn("subscription for unknown user", zap.String("userId", sub.CustomData.UserID))
		return nil
	}
	return err
}

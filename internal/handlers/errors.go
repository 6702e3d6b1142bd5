package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/01moynul/vividen-storefront/internal/payment"
	"github.com/01moynul/vividen-storefront/internal/seed"
	"github.com/01moynul/vividen-storefront/internal/store"
)

var (
	errUnauthorized = errors.New("unauthorized")
	errForbidden    = errors.New("forbidden")
)

// statusFor maps an error from the layers below onto an HTTP status.
func statusFor(err error) int {
	var verr *store.ValidationError
	var perr *payment.ProviderError
	switch {
	case errors.As(err, &verr):
		return http.StatusBadRequest
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, errUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, errForbidden):
		return http.StatusForbidden
	case errors.Is(err, store.ErrConflict), errors.Is(err, seed.ErrAlreadySeeded):
		return http.StatusConflict
	case errors.Is(err, payment.ErrUnavailable), errors.Is(err, payment.ErrNotConfigured):
		return http.StatusServiceUnavailable
	case errors.As(err, &perr):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// respondError writes {"error": msg} with the mapped status. Server-side
// failures are logged; the message is passed through to the caller.
func (h *Handlers) respondError(c *gin.Context, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		h.Log.Error("request failed",
			zap.String("route", c.FullPath()),
			zap.Int("status", status),
			zap.Error(err),
		)
	}
	_ = c.Error(err)
	c.JSON(status, gin.H{"error": err.Error()})
}

// respondBindError answers a failed ShouldBindJSON with 400.
func respondBindError(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + describeBindError(err)})
}

func describeBindError(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		switch fe.Tag() {
		case "required":
			msgs = append(msgs, fe.Field()+" is required")
		case "email":
			msgs = append(msgs, fe.Field()+" must be a valid email")
		case "min", "gte":
			msgs = append(msgs, fmt.Sprintf("%s must be at least %s", fe.Field(), fe.Param()))
		case "max", "lte":
			msgs = append(msgs, fmt.Sprintf("%s must be at most %s", fe.Field(), fe.Param()))
		default:
			msgs = append(msgs, fmt.Sprintf("%s failed on %s", fe.Field(), fe.Tag()))
		}
	}
	return strings.Join(msgs, "; ")
}

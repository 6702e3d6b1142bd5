package handlers

import (
	"context"
	"reflect"
	"strings"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/01moynul/vividen-storefront/internal/cache"
	"github.com/01moynul/vividen-storefront/internal/events"
	"github.com/01moynul/vividen-storefront/internal/metrics"
	"github.com/01moynul/vividen-storefront/internal/models"
	"github.com/01moynul/vividen-storefront/internal/payment"
	"github.com/01moynul/vividen-storefront/internal/seed"
	"github.com/01moynul/vividen-storefront/internal/store"
)

func init() {
	// Reject request bodies carrying fields the input struct does not declare.
	binding.EnableDecoderDisallowUnknownFields = true

	// Report validation failures by JSON name ("title", not "Title").
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
			if name == "-" {
				return ""
			}
			if name == "" {
				return f.Name
			}
			return name
		})
	}
}

// Store is the persistence the handlers need; *store.Store implements it.
type Store interface {
	seed.Store

	Ping(ctx context.Context) error

	GetUser(ctx context.Context, id string) (*models.User, error)
	UpdateUserPaddleInfo(ctx context.Context, id, customerID, subscriptionID string) (*models.User, error)

	ListCategories(ctx context.Context) ([]models.Category, error)

	ListProducts(ctx context.Context, q store.ProductQuery) ([]models.Product, error)
	GetProduct(ctx context.Context, id string) (*models.Product, error)
	GetProductByPriceID(ctx context.Context, priceID string) (*models.Product, error)

	AddToCart(ctx context.Context, userID, productID string, quantity int) (*models.CartItem, error)
	SetCartQuantity(ctx context.Context, userID, productID string, quantity int) (*models.CartItem, error)
	RemoveFromCart(ctx context.Context, userID, productID string) (int64, error)
	ClearCart(ctx context.Context, userID string) (int64, error)
	CartLines(ctx context.Context, userID string) ([]models.CartLine, error)

	CompleteOrder(ctx context.Context, userID string, externalID *string, lines []store.OrderLine) (*models.Order, bool, error)
	GetOrder(ctx context.Context, id string) (*models.Order, error)
	GetUserOrders(ctx context.Context, userID string) ([]models.Order, error)
	HasPurchased(ctx context.Context, userID, productID string) (bool, error)

	RecordDownload(ctx context.Context, userID, productID string) (*models.Download, error)
	GetUserDownloads(ctx context.Context, userID string) ([]models.Download, error)
}

// Checkouts opens hosted payment pages.
type Checkouts interface {
	CreateCheckout(ctx context.Context, req payment.CheckoutRequest) (*payment.Checkout, error)
}

// WebhookVerifier authenticates incoming payment webhooks.
type WebhookVerifier interface {
	Verify(header string, body []byte) error
}

// TokenIssuer mints the bearer tokens returned by register and login.
type TokenIssuer interface {
	GenerateToken(userID string) (string, error)
}

// Handlers struct holds all dependencies for our handlers.
type Handlers struct {
	Store    Store
	Cache    cache.Cache
	Events   events.Publisher // failures are logged by publish, not returned
	Payments Checkouts
	Webhooks WebhookVerifier
	Tokens   TokenIssuer
	Metrics  *metrics.Metrics
	Log      *zap.Logger

	// Seed data for POST /api/seed; SeedEnabled is false in production.
	Seed        seed.Options
	SeedEnabled bool
}

// publish sends a domain event after the request's change is committed. A
// failed publish is logged and never fails the request.
func (h *Handlers) publish(ctx context.Context, event, key string, payload any) {
	if err := h.Events.Publish(ctx, event, key, payload); err != nil {
		h.Log.Warn("event not published", zap.String("event", event), zap.String("key", key), zap.Error(err))
	}
}

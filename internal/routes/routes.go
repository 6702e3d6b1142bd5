package routes

import (
	"fmt"

	"github.com/gin-gonic/gin"

	"github.com/01moynul/vividen-storefront/internal/handlers"
	"github.com/01moynul/vividen-storefront/internal/middleware"
)

// Options carries what the router needs beyond the handlers themselves.
type Options struct {
	Tokens       middleware.TokenValidator
	CORSOrigins  []string
	LoginLimiter *middleware.IPRateLimiter // nil disables rate limiting on /api/auth
	// TrustedProxies may set the client IP through X-Forwarded-For. With none,
	// the client IP is the peer address.
	TrustedProxies []string
}

func SetupRouter(h *handlers.Handlers, opts Options) (*gin.Engine, error) {
	router := gin.New()
	if err := router.SetTrustedProxies(opts.TrustedProxies); err != nil {
		return nil, fmt.Errorf("trusted proxies: %w", err)
	}

	// --- Global middleware ---
	// CORS runs before routing so preflight requests never reach a handler.
	router.Use(
		middleware.RequestID(),
		middleware.Logger(h.Log),
		middleware.Recovery(h.Log),
		middleware.Metrics(h.Metrics),
		middleware.CORS(opts.CORSOrigins),
	)

	router.GET("/metrics", gin.WrapH(h.Metrics.Handler()))

	api := router.Group("/api")
	{
		api.GET("/health", h.Health)

		// --- Auth Routes (Public) ---
		authRoutes := api.Group("/auth")
		if opts.LoginLimiter != nil {
			authRoutes.Use(middleware.RateLimit(opts.LoginLimiter))
		}
		authRoutes.POST("/register", h.Register)
		authRoutes.POST("/login", h.Login)

		// --- Catalog (Public) ---
		api.GET("/categories", h.GetCategories)
		api.GET("/categories/:slug", h.GetCategory)
		api.GET("/categories/:slug/products", h.GetCategoryProducts)

		api.GET("/products", h.GetProducts)
		api.GET("/products/featured", h.GetFeaturedProducts)
		api.GET("/products/search", h.SearchProducts)
		api.GET("/products/:id", h.GetProduct)

		// --- Payment provider callback (signature checked in the handler) ---
		api.POST("/paddle/webhook", h.PaddleWebhook)

		// --- Protected Routes (Login Required) ---
		authed := api.Group("")
		authed.Use(middleware.AuthMiddleware(opts.Tokens))
		{
			// Body-addressed routes check ownership in the handler.
			authed.POST("/cart", h.AddToCart)
			authed.POST("/create-paddle-checkout", h.CreateCheckout)
			authed.GET("/orders/:id", h.GetOrder)
			authed.POST("/products/:id/download", h.DownloadProduct)

			// --- Self or Admin (:userId must be the caller) ---
			self := authed.Group("")
			self.Use(middleware.SelfOrAdmin(h.Store, "userId"))
			{
				self.GET("/cart/:userId", h.GetCart)
				self.PUT("/cart/:userId/:productId", h.UpdateCartItem)
				self.DELETE("/cart/:userId/:productId", h.RemoveFromCart)
				self.DELETE("/cart/:userId", h.ClearCart)

				self.GET("/users/:userId/orders", h.GetUserOrders)
				self.GET("/users/:userId/downloads", h.GetUserDownloads)
			}

			// --- Admin Only ---
			admin := authed.Group("")
			admin.Use(middleware.AdminMiddleware(h.Store))
			{
				admin.POST("/products", h.CreateProduct)
				admin.POST("/categories", h.CreateCategory)
				// Reseeding only; the first admin comes from `api seed`.
				admin.POST("/seed", h.SeedCatalog)
			}
		}
	}

	return router, nil
}

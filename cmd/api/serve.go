package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/01moynul/vividen-storefront/internal/auth"
	"github.com/01moynul/vividen-storefront/internal/cache"
	"github.com/01moynul/vividen-storefront/internal/config"
	"github.com/01moynul/vividen-storefront/internal/database"
	"github.com/01moynul/vividen-storefront/internal/events"
	"github.com/01moynul/vividen-storefront/internal/handlers"
	"github.com/01moynul/vividen-storefront/internal/metrics"
	"github.com/01moynul/vividen-storefront/internal/middleware"
	"github.com/01moynul/vividen-storefront/internal/payment"
	"github.com/01moynul/vividen-storefront/internal/routes"
	"github.com/01moynul/vividen-storefront/internal/seed"
	"github.com/01moynul/vividen-storefront/internal/store"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP server",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd.Context())
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(ctx context.Context) error {
	cfg, log, err := bootstrap()
	if err != nil {
		return err
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 1. --- Database ---
	db, dialect, err := database.OpenDB(ctx, cfg.Database)
	if err != nil {
		return err
	}
	defer db.Close()

	if cfg.Database.AutoMigrate {
		if err := database.Migrate(ctx, db, dialect); err != nil {
			return err
		}
		log.Info("schema applied", zap.String("driver", cfg.Database.Driver))
	}

	// 2. --- Cache & Events (optional) ---
	var c cache.Cache = cache.Nop{}
	if cfg.Redis.Addr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
		defer rdb.Close()
		c = cache.NewRedis(rdb, cfg.Redis.TTL)
		log.Info("redis cache enabled", zap.String("addr", cfg.Redis.Addr))
	}

	var publisher events.Publisher = events.Nop{}
	if len(cfg.Kafka.Brokers) > 0 {
		publisher = events.NewKafka(cfg.Kafka.Brokers, cfg.Kafka.TopicPrefix)
		log.Info("kafka events enabled", zap.Strings("brokers", cfg.Kafka.Brokers))
	}
	defer publisher.Close()

	// 3. --- Handlers ---
	tokens := auth.NewManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	h := &handlers.Handlers{
		Store:    store.New(db, dialect),
		Cache:    c,
		Events:   publisher,
		Payments: payment.NewClient(cfg.Paddle, paddleURL(cfg)),
		Webhooks: payment.NewVerifier(cfg.Paddle.WebhookSecret),
		Tokens:   tokens,
		Metrics:  metrics.New(),
		Log:      log,
		Seed: seed.Options{
			AdminEmail:    cfg.Seed.AdminEmail,
			AdminPassword: cfg.Seed.AdminPassword,
		},
		SeedEnabled: !cfg.App.IsProduction(),
	}

	if cfg.App.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router, err := routes.SetupRouter(h, routes.Options{
		Tokens:         tokens,
		CORSOrigins:    cfg.HTTP.CORSOrigins,
		LoginLimiter:   middleware.NewIPRateLimiter(cfg.Auth.LoginRate, cfg.Auth.LoginBurst),
		TrustedProxies: cfg.HTTP.TrustedProxies,
	})
	if err != nil {
		return err
	}

	// 4. --- Start Server ---
	srv := &http.Server{
		Addr:         cfg.HTTP.Addr,
		Handler:      router,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("starting storefront API", zap.String("addr", srv.Addr), zap.String("env", cfg.App.Env))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down", zap.Duration("timeout", cfg.HTTP.ShutdownTimeout))

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

func paddleURL(cfg *config.Config) string {
	if cfg.App.IsProduction() || cfg.Paddle.Environment == "production" {
		return payment.ProductionURL
	}
	return payment.SandboxURL
}

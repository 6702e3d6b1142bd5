package main

import (
	"context"
	"errors"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/01moynul/vividen-storefront/internal/database"
	"github.com/01moynul/vividen-storefront/internal/seed"
	"github.com/01moynul/vividen-storefront/internal/store"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load the sample catalog (categories, admin account, featured products)",
	Long: `Load the sample catalog in one transaction.

This is how a fresh store gets its first admin account: POST /api/seed
itself requires an admin token. In production seed.admin_password must be
set to a non-default value.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSeed(cmd.Context())
	},
}

func init() {
	rootCmd.AddCommand(seedCmd)
}

func runSeed(ctx context.Context) error {
	cfg, log, err := bootstrap()
	if err != nil {
		return err
	}
	defer log.Sync()

	db, dialect, err := database.OpenDB(ctx, cfg.Database)
	if err != nil {
		return err
	}
	defer db.Close()

	if cfg.Database.AutoMigrate {
		if err := database.Migrate(ctx, db, dialect); err != nil {
			return err
		}
	}

	res, err := seed.Run(ctx, store.New(db, dialect), seed.Options{
		AdminEmail:    cfg.Seed.AdminEmail,
		AdminPassword: cfg.Seed.AdminPassword,
	})
	if errors.Is(err, seed.ErrAlreadySeeded) {
		log.Info("catalog already seeded, nothing to do")
		return nil
	}
	if err != nil {
		return err
	}

	log.Info("catalog seeded",
		zap.Int("categories", len(res.Categories)),
		zap.Int("products", len(res.Products)),
		zap.String("admin", res.Admin.Email),
	)
	return nil
}

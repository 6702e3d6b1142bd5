package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/01moynul/vividen-storefront/internal/config"
	"github.com/01moynul/vividen-storefront/internal/logger"
)

var configPath string

// rootCmd runs the API server when no subcommand is given.
var rootCmd = &cobra.Command{
	Use:   "api",
	Short: "Vividen storefront API",
	Long: `Vividen storefront API: catalog, cart, checkout and downloads for digital goods.

Commands:
  serve    - Run the HTTP server (default)
  migrate  - Apply the database schema
  seed     - Load the sample catalog`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd.Context())
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Config file (yaml, toml or json); environment variables override it")
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// bootstrap loads the configuration and builds the logger every command shares.
func bootstrap() (*config.Config, *zap.Logger, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, err
	}
	log, err := logger.New(cfg.Log)
	if err != nil {
		return nil, nil, fmt.Errorf("build logger: %w", err)
	}
	return cfg, log, nil
}

package main

import (
	"context"

	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"booking-app/config"
	"booking-app/internal/logging"
)

// NewMigrateCmd creates the migrate subcommand.
func NewMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the store schema",
		Long: `Create or update the users table (postgres) or the users collection
indexes (mongo), depending on STORE_DRIVER.`,
		RunE: runMigrate,
	}
}

func runMigrate(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger := logging.Setup(serviceName, cfg.LogFormat, cmd.ErrOrStderr())

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	cmd.Println("Running migrations...")
	_, closeStore, err := openStore(ctx, cfg, logger, true)
	if err != nil {
		return oops.With("operation", "run migrations").With("driver", cfg.StoreDriver).Wrap(err)
	}
	closeStore()

	cmd.Println("Migrations completed successfully")
	return nil
}

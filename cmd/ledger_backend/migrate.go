package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"

	"github.com/SscSPs/banking_ledger/internal/platform/config"
	"github.com/SscSPs/banking_ledger/internal/platform/logging"
	"github.com/SscSPs/banking_ledger/pkg/database"
	"github.com/spf13/cobra"
)

func migrateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the ledger schema",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withMigrationDB(cmd.Context(), func(run migrationRun) error {
				return database.RunMigrations(run.db, run.logger)
			})
		},
	})

	var steps int
	down := &cobra.Command{
		Use:   "down",
		Short: "Roll back migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withMigrationDB(cmd.Context(), func(run migrationRun) error {
				return database.RollbackMigrations(run.db, steps, run.logger)
			})
		},
	}
	down.Flags().IntVar(&steps, "steps", 1, "number of migrations to roll back")
	cmd.AddCommand(down)
	return cmd
}

type migrationRun struct {
	db     *sql.DB
	logger *slog.Logger
}

func withMigrationDB(ctx context.Context, fn func(run migrationRun) error) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	logger := logging.New(os.Stdout, cfg.LogLevel)

	pool, err := database.NewPgxPool(ctx, cfg.DatabaseURL, true, logger)
	if err != nil {
		return err
	}
	defer database.ClosePgxPool(pool, logger)
	db := database.OpenDB(pool)
	defer db.Close()

	return fn(migrationRun{db: db, logger: logger})
}

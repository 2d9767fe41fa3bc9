package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"payables/internal/db"
	"payables/migrations"
)

var migrateList bool

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending SQL migrations",
	Long: `Apply the embedded SQL migrations in filename order.

Each file runs in its own transaction and is recorded in schema_migrations with its checksum.
A recorded file whose contents changed is reported as an error. Concurrent runs are
serialized by a PostgreSQL advisory lock.

Examples:
  payables migrate
  payables migrate --list`,
	RunE: runMigrate,
}

func init() {
	migrateCmd.Flags().BoolVar(&migrateList, "list", false, "list embedded migrations without connecting")
}

func runMigrate(cmd *cobra.Command, args []string) error {
	if migrateList {
		found, err := db.Discover(migrations.FS)
		if err != nil {
			return err
		}
		for _, m := range found {
			fmt.Fprintf(cmd.OutOrStdout(), "%s  %s  %s\n", m.Version, m.Checksum[:12], m.Filename)
		}
		return nil
	}

	ctx := cmd.Context()
	pool, err := db.NewPool(ctx, cfg)
	if err != nil {
		return fmt.Errorf("database: %w", err)
	}
	defer pool.Close()

	if err := db.Migrate(ctx, pool, migrations.FS, logger); err != nil {
		return err
	}
	logger.Info("database schema is up to date", zap.String("env", cfg.Environment))
	return nil
}

package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"payables/internal/app"
	"payables/internal/db"
	"payables/migrations"
)

var seedSkipDemo bool

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Create default users and demo data",
	Long: `Create the admin/admin123 and user/user123 logins and, on an empty database, one demo
vendor with an approved purchase order and a partial payment.

Re-running resets the default users' passwords and leaves existing demo data alone.
Pending migrations are applied first.`,
	RunE: runSeed,
}

func init() {
	seedCmd.Flags().BoolVar(&seedSkipDemo, "users-only", false, "create the users but no demo vendor or purchase order")
}

func runSeed(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	pool, err := db.NewPool(ctx, cfg)
	if err != nil {
		return fmt.Errorf("database: %w", err)
	}
	defer pool.Close()

	if err := db.Migrate(ctx, pool, migrations.FS, logger); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}

	svc := app.New(pool, nil, logger)
	res, err := seedWith(ctx, svc, !seedSkipDemo)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "seeded %d users\n", res.Users)
	if res.POID != 0 {
		fmt.Fprintf(cmd.OutOrStdout(), "demo purchase order %s (id %d)\n", res.PONumber, res.POID)
	}
	return nil
}

// seedWith runs the default seed through svc.
func seedWith(ctx context.Context, svc app.ApplicationService, withDemo bool) (*app.SeedResult, error) {
	res, err := svc.Seed(ctx, app.DefaultUsers, withDemo)
	if err != nil {
		return nil, fmt.Errorf("seed: %w", err)
	}
	return res, nil
}

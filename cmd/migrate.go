package cmd

import (
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/chadmayfield/wxreport/internal/config"
	"github.com/chadmayfield/wxreport/internal/store"
)

var dryRun bool

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run database migrations",
	RunE:  runMigrate,
}

func init() {
	migrateCmd.Flags().BoolVar(&dryRun, "dry-run", false, "show pending migrations without applying")
	rootCmd.AddCommand(migrateCmd)
}

func runMigrate(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	if dryRun {
		slog.Info("dry run mode, showing pending migrations")
		return showPendingMigrations(cfg)
	}

	// Opening the store runs migrations.
	s, err := store.Open(cfg.Storage.Driver, cfg.DSN())
	if err != nil {
		return err
	}
	defer s.Close() //nolint:errcheck

	slog.Info("migrations complete", "driver", cfg.Storage.Driver)
	return nil
}

func showPendingMigrations(cfg *config.Config) error {
	var driverName string
	switch cfg.Storage.Driver {
	case "sqlite":
		driverName = "sqlite"
	case "postgres":
		driverName = "pgx"
	default:
		return fmt.Errorf("unknown storage driver: %s", cfg.Storage.Driver)
	}

	db, err := sql.Open(driverName, cfg.DSN())
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer db.Close() //nolint:errcheck

	current, pending, err := store.PendingMigrations(db, cfg.Storage.Driver)
	if err != nil {
		return err
	}

	slog.Info("migration status",
		"driver", cfg.Storage.Driver,
		"current_version", current,
		"pending", len(pending),
	)
	for _, v := range pending {
		fmt.Printf("pending: %05d\n", v)
	}
	return nil
}

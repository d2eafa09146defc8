package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/chadmayfield/wxreport/internal/ingest"
	"github.com/chadmayfield/wxreport/internal/loader"
	"github.com/chadmayfield/wxreport/internal/store"
)

var importManifest string

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Import the CSV files listed in a manifest into the database",
	RunE:  runImport,
}

func init() {
	importCmd.Flags().StringVar(&importManifest, "manifest", "", "manifest path (default: source.manifest)")
	rootCmd.AddCommand(importCmd)
}

func runImport(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	manifest := cfg.Source.Manifest
	if importManifest != "" {
		manifest = importManifest
	}
	if manifest == "" {
		return fmt.Errorf("no manifest given: set --manifest or source.manifest")
	}

	s, err := store.Open(cfg.Storage.Driver, cfg.DSN())
	if err != nil {
		return err
	}
	defer s.Close() //nolint:errcheck

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	im := ingest.NewImporter(s, loader.New(cfg.Source.Columns, slog.Default()), slog.Default())
	sum, err := im.ImportManifest(ctx, manifest)
	if err != nil {
		return err
	}

	fmt.Printf("Imported %s records from %d files (%s rows skipped)\n",
		formatNumber(sum.Records), sum.Files, formatNumber(sum.Skipped))
	return nil
}

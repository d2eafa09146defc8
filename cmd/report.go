package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/chadmayfield/wxreport/internal/config"
	"github.com/chadmayfield/wxreport/internal/loader"
	"github.com/chadmayfield/wxreport/internal/prompt"
	"github.com/chadmayfield/wxreport/internal/query"
	"github.com/chadmayfield/wxreport/internal/report"
	"github.com/chadmayfield/wxreport/internal/stats"
	"github.com/chadmayfield/wxreport/internal/store"
	"github.com/chadmayfield/wxreport/internal/weather"
)

var (
	sourceKind string
	outputPath string
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Run the interactive report menu (default command)",
	RunE:  runReport,
}

func init() {
	reportCmd.Flags().StringVar(&sourceKind, "source", "", "record source: manifest, sqlite or postgres (overrides config)")
	reportCmd.Flags().StringVar(&outputPath, "output", "", "CSV export path (overrides config)")
	rootCmd.AddCommand(reportCmd)

	// Make report the default command.
	rootCmd.RunE = runReport
}

func runReport(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	// Apply flag overrides.
	if sourceKind != "" {
		cfg.Source.Kind = sourceKind
	}
	if outputPath != "" {
		cfg.Report.OutputPath = outputPath
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("validating config: %w", err)
	}

	predicate, err := query.ParsePredicate(cfg.Query.Predicate)
	if err != nil {
		return err
	}
	exportMode, err := report.ParseExportMode(cfg.Report.ExportMode)
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	records, err := loadRecords(ctx, cfg)
	if err != nil {
		return err
	}
	logger := slog.Default()
	agg := query.NewAggregator(records, predicate, logger)

	oldest, newest := records.Range()
	logger.Info("records loaded",
		"source", cfg.Source.Kind,
		"records", records.Len(),
		"oldest", oldest,
		"newest", newest,
		"predicate", agg.Predicate().String(),
	)
	renderer := report.NewRenderer(os.Stdout, os.Stderr, agg, stats.NewEngine(logger),
		report.NewExporter(cfg.Report.OutputPath, exportMode), logger)
	menu := report.NewMenu(prompt.New(os.Stdin, os.Stdout), renderer, os.Stdout, cfg.Report.ClearScreen, logger)

	return menu.Run(ctx)
}

// loadRecords reads the collection from the configured source.
func loadRecords(ctx context.Context, cfg *config.Config) (*weather.Collection, error) {
	switch cfg.Source.Kind {
	case "manifest":
		return loader.New(cfg.Source.Columns, slog.Default()).LoadManifest(ctx, cfg.Source.Manifest)
	case "sqlite", "postgres":
		s, err := store.Open(cfg.Storage.Driver, cfg.DSN())
		if err != nil {
			return nil, err
		}
		defer s.Close() //nolint:errcheck

		recs, err := s.LoadRecords(ctx)
		if err != nil {
			return nil, fmt.Errorf("loading records: %w", err)
		}
		return weather.NewCollection(recs), nil
	default:
		return nil, fmt.Errorf("unknown record source: %s", cfg.Source.Kind)
	}
}

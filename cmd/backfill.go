package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/chadmayfield/wxreport/internal/ingest"
	"github.com/chadmayfield/wxreport/internal/store"
)

var (
	bfStation int
	bfFrom    string
	bfTo      string
)

var backfillCmd = &cobra.Command{
	Use:   "backfill",
	Short: "Fetch Tempest observations from the REST API into the database",
	RunE:  runBackfill,
}

func init() {
	backfillCmd.Flags().IntVar(&bfStation, "station", 0, "station ID to backfill")
	backfillCmd.Flags().StringVar(&bfFrom, "from", "", "start date (YYYY-MM-DD)")
	backfillCmd.Flags().StringVar(&bfTo, "to", "", "end date (YYYY-MM-DD, default: now)")
	_ = backfillCmd.MarkFlagRequired("station")
	_ = backfillCmd.MarkFlagRequired("from")
	rootCmd.AddCommand(backfillCmd)
}

func runBackfill(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := cfg.ValidateStations(); err != nil {
		return fmt.Errorf("validating config: %w", err)
	}

	station, ok := cfg.Station(bfStation)
	if !ok {
		return fmt.Errorf("station %d not found in config", bfStation)
	}

	from, to, err := parseRange(bfFrom, bfTo, time.Now().UTC())
	if err != nil {
		return err
	}

	s, err := store.Open(cfg.Storage.Driver, cfg.DSN())
	if err != nil {
		return err
	}
	defer s.Close() //nolint:errcheck

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	slog.Info("backfilling station",
		"station_id", station.StationID,
		"device_id", station.DeviceID,
		"name", station.Name,
		"from", from.Format(time.DateOnly),
		"to", to.Format(time.DateOnly),
	)

	saved, err := ingest.NewBackfiller(s, slog.Default()).
		BackfillStation(ctx, station.Token, station.StationID, station.DeviceID, from, to)
	if err != nil {
		return err
	}
	fmt.Printf("Backfilled %s records for station %d\n", formatNumber(saved), station.StationID)
	return nil
}

// parseRange parses the --from and --to dates. An empty to means now.
func parseRange(fromStr, toStr string, now time.Time) (from, to time.Time, err error) {
	from, err = time.Parse(time.DateOnly, fromStr)
	if err != nil {
		return from, to, fmt.Errorf("invalid --from date: %w", err)
	}

	to = now
	if toStr != "" {
		to, err = time.Parse(time.DateOnly, toStr)
		if err != nil {
			return from, to, fmt.Errorf("invalid --to date: %w", err)
		}
	}

	if !from.Before(to) {
		return from, to, fmt.Errorf("--from date must be before --to date")
	}
	return from, to, nil
}

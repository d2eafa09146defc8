package ingest

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	tempest "github.com/chadmayfield/tempest-go"

	"github.com/chadmayfield/wxreport/internal/store"
	"github.com/chadmayfield/wxreport/internal/weather"
)

const (
	chunkDays   = 5
	requestPace = 2 * time.Second
)

// Backfiller pulls historical observations from the Tempest REST API and
// stores them as import batches.
type Backfiller struct {
	store       store.Store
	logger      *slog.Logger
	limiter     *tempest.RateLimiter
	breaker     *tempest.CircuitBreaker
	pace        time.Duration
	testBaseURL string // For testing only; empty in production.
}

// NewBackfiller creates a Backfiller with a shared rate limiter (80 req/min)
// and circuit breaker (5 failures, 60s cooldown).
func NewBackfiller(s store.Store, logger *slog.Logger) *Backfiller {
	return &Backfiller{
		store:   s,
		logger:  logger,
		limiter: tempest.NewRateLimiter(80),
		breaker: tempest.NewCircuitBreaker(5, 60*time.Second),
		pace:    requestPace,
	}
}

type window struct {
	from, to time.Time
}

// chunks splits [from, to) into windows of at most chunkDays days.
func chunks(from, to time.Time) []window {
	var out []window
	for start := from; start.Before(to); {
		end := start.AddDate(0, 0, chunkDays)
		if end.After(to) {
			end = to
		}
		out = append(out, window{start, end})
		start = end
	}
	return out
}

func (b *Backfiller) client(token string) (*tempest.Client, error) {
	if b.testBaseURL != "" {
		return tempest.NewClient(token,
			tempest.WithRateLimiter(b.limiter),
			tempest.WithCircuitBreaker(b.breaker),
			tempest.WithBaseURL(b.testBaseURL),
		)
	}
	return tempest.NewClient(token,
		tempest.WithRateLimiter(b.limiter),
		tempest.WithCircuitBreaker(b.breaker),
	)
}

// BackfillStation fetches device observations between from and to in
// five-day chunks and saves each non-empty chunk as one import. It returns
// the number of records saved.
func (b *Backfiller) BackfillStation(ctx context.Context, token string, stationID, deviceID int, from, to time.Time) (int, error) {
	client, err := b.client(token)
	if err != nil {
		return 0, fmt.Errorf("creating rest client: %w", err)
	}

	windows := chunks(from, to)
	saved := 0
	for i, w := range windows {
		if ctx.Err() != nil {
			return saved, ctx.Err()
		}

		progress := fmt.Sprintf("%d/%d", i+1, len(windows))
		b.logger.Info("backfilling station",
			"station_id", stationID,
			"from", w.from.Format(time.DateOnly),
			"to", w.to.Format(time.DateOnly),
			"chunk", progress,
		)

		obs, err := client.GetDeviceObservations(ctx, deviceID, w.from, w.to)
		if err != nil {
			return saved, fmt.Errorf("fetching observations for %s to %s: %w",
				w.from.Format(time.DateOnly), w.to.Format(time.DateOnly), err)
		}

		if len(obs) > 0 {
			records := toRecords(obs)
			imp := &store.Import{Source: fmt.Sprintf("tempest:station/%d", stationID)}
			if err := b.store.SaveImport(ctx, imp, records); err != nil {
				return saved, fmt.Errorf("saving records: %w", err)
			}
			saved += len(records)
			b.logger.Info("backfilled chunk",
				"station_id", stationID,
				"import_id", imp.ID,
				"records", len(records),
				"chunk", progress,
			)
		}

		if i < len(windows)-1 {
			if err := b.wait(ctx); err != nil {
				return saved, err
			}
		}
	}

	b.logger.Info("backfill complete", "station_id", stationID, "records", saved)
	return saved, nil
}

func (b *Backfiller) wait(ctx context.Context) error {
	if b.pace <= 0 {
		return nil
	}
	timer := time.NewTimer(b.pace)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func toRecords(obs []tempest.Observation) []weather.Record {
	records := make([]weather.Record, 0, len(obs))
	for _, o := range obs {
		records = append(records, weather.NewRecord(o.Timestamp.UTC(), o.WindAvg, o.AirTemperature, o.SolarRadiation))
	}
	return records
}

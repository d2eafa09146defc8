package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/chadmayfield/wxreport/internal/weather"
)

// sqlStore holds the queries shared by the SQLite and PostgreSQL stores.
// Queries are written with ? placeholders and rebound for postgres.
type sqlStore struct {
	db      *sql.DB
	dialect string
}

// DB returns the underlying database connection for migration commands.
func (s *sqlStore) DB() *sql.DB {
	return s.db
}

func (s *sqlStore) rebind(query string) string {
	if s.dialect == "postgres" {
		return replacePlaceholders(query)
	}
	return query
}

func (s *sqlStore) SaveImport(ctx context.Context, imp *Import, records []weather.Record) error {
	if imp.ID == "" {
		imp.ID = uuid.NewString()
	}
	if imp.CreatedAt.IsZero() {
		imp.CreatedAt = time.Now().UTC()
	}
	imp.RecordCount = len(records)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // rollback after commit is harmless

	if _, err := tx.ExecContext(ctx, s.rebind(`
		INSERT INTO imports (id, source, record_count, created_at)
		VALUES (?, ?, ?, ?)`),
		imp.ID, imp.Source, imp.RecordCount, imp.CreatedAt.UTC()); err != nil {
		return fmt.Errorf("saving import: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, s.rebind(`
		INSERT INTO records (
			import_id, timestamp,
			wind_speed, wind_speed_unit,
			air_temperature, air_temperature_unit,
			solar_radiation, solar_radiation_unit
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`))
	if err != nil {
		return fmt.Errorf("preparing statement: %w", err)
	}
	defer stmt.Close() //nolint:errcheck

	for _, r := range records {
		if _, err := stmt.ExecContext(ctx,
			imp.ID, r.Timestamp.UTC(),
			r.WindSpeed.Value, r.WindSpeed.Unit,
			r.Temperature.Value, r.Temperature.Unit,
			r.SolarRadiation.Value, r.SolarRadiation.Unit,
		); err != nil {
			return fmt.Errorf("inserting record: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

func (s *sqlStore) LoadRecords(ctx context.Context) ([]weather.Record, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT timestamp,
			wind_speed, wind_speed_unit,
			air_temperature, air_temperature_unit,
			solar_radiation, solar_radiation_unit
		FROM records
		ORDER BY seq`)
	if err != nil {
		return nil, fmt.Errorf("querying records: %w", err)
	}
	defer rows.Close() //nolint:errcheck

	return scanRecords(rows)
}

func (s *sqlStore) GetImports(ctx context.Context) ([]Import, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, source, record_count, created_at
		FROM imports ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("listing imports: %w", err)
	}
	defer rows.Close() //nolint:errcheck

	var imports []Import
	for rows.Next() {
		var imp Import
		var tsRaw any
		if err := rows.Scan(&imp.ID, &imp.Source, &imp.RecordCount, &tsRaw); err != nil {
			return nil, fmt.Errorf("scanning import: %w", err)
		}
		if imp.CreatedAt, err = parseTimestamp(tsRaw); err != nil {
			return nil, fmt.Errorf("parsing created_at: %w", err)
		}
		imports = append(imports, imp)
	}
	return imports, rows.Err()
}

func (s *sqlStore) GetDataRange(ctx context.Context) (oldest, newest time.Time, err error) {
	var oldestRaw, newestRaw any
	err = s.db.QueryRowContext(ctx, `
		SELECT MIN(timestamp), MAX(timestamp)
		FROM records`).Scan(&oldestRaw, &newestRaw)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("querying data range: %w", err)
	}
	if oldestRaw == nil || newestRaw == nil {
		return time.Time{}, time.Time{}, nil
	}

	oldest, err = parseTimestamp(oldestRaw)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("parsing oldest: %w", err)
	}
	newest, err = parseTimestamp(newestRaw)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("parsing newest: %w", err)
	}
	return oldest, newest, nil
}

func (s *sqlStore) GetRecordCount(ctx context.Context) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM records`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("counting records: %w", err)
	}
	return count, nil
}

func (s *sqlStore) Close() error {
	return s.db.Close()
}

// --- Shared helpers ---

// parseTimestamp handles both time.Time and string timestamp values. SQLite
// returns strings for aggregates and for columns it stored as text.
func parseTimestamp(v any) (time.Time, error) {
	switch t := v.(type) {
	case time.Time:
		return t.UTC(), nil
	case []byte:
		return parseTimestamp(string(t))
	case string:
		for _, layout := range []string{
			time.RFC3339Nano,
			"2006-01-02 15:04:05.999999999-07:00",
			"2006-01-02 15:04:05.999999999 -0700 MST",
			"2006-01-02 15:04:05 +0000 UTC",
			"2006-01-02 15:04:05",
			"2006-01-02",
		} {
			if ts, err := time.Parse(layout, t); err == nil {
				return ts.UTC(), nil
			}
		}
		return time.Time{}, fmt.Errorf("unable to parse timestamp: %q", t)
	default:
		return time.Time{}, fmt.Errorf("unexpected timestamp type: %T", v)
	}
}

func scanRecords(rows *sql.Rows) ([]weather.Record, error) {
	var result []weather.Record
	for rows.Next() {
		var r weather.Record
		var tsRaw any
		if err := rows.Scan(
			&tsRaw,
			&r.WindSpeed.Value, &r.WindSpeed.Unit,
			&r.Temperature.Value, &r.Temperature.Unit,
			&r.SolarRadiation.Value, &r.SolarRadiation.Unit,
		); err != nil {
			return nil, fmt.Errorf("scanning record: %w", err)
		}
		ts, err := parseTimestamp(tsRaw)
		if err != nil {
			return nil, fmt.Errorf("parsing timestamp: %w", err)
		}
		r.Timestamp = ts
		result = append(result, r)
	}
	return result, rows.Err()
}

// replacePlaceholders converts ? to $1, $2, $3 etc for postgres.
func replacePlaceholders(query string) string {
	result := make([]byte, 0, len(query))
	n := 1
	for i := 0; i < len(query); i++ {
		if query[i] == '?' {
			result = append(result, fmt.Sprintf("$%d", n)...)
			n++
		} else {
			result = append(result, query[i])
		}
	}
	return string(result)
}

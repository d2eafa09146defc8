// Package loader materializes weather records from a manifest of CSV files.
package loader

import (
	"bufio"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/chadmayfield/wxreport/internal/weather"
)

// Columns names the CSV header fields that hold each value.
type Columns struct {
	Timestamp      string `mapstructure:"timestamp"`
	WindSpeed      string `mapstructure:"wind_speed"`
	Temperature    string `mapstructure:"temperature"`
	SolarRadiation string `mapstructure:"solar_radiation"`
}

// DefaultColumns matches the logger export format.
var DefaultColumns = Columns{
	Timestamp:      "WAST",
	WindSpeed:      "S",
	Temperature:    "T",
	SolarRadiation: "SR",
}

// timestampLayouts are tried in order for the timestamp column.
var timestampLayouts = []string{
	"2/01/2006 15:04",
	"2/1/2006 15:04",
	"2/01/2006 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02 15:04:05",
	time.RFC3339,
}

// ErrMissingColumn is returned when a CSV header lacks a configured column.
var ErrMissingColumn = errors.New("missing column")

// Loader reads a manifest and the CSV files it lists.
type Loader struct {
	columns     Columns
	concurrency int
	logger      *slog.Logger
}

// New creates a loader. A zero Columns value selects DefaultColumns.
func New(columns Columns, logger *slog.Logger) *Loader {
	if columns == (Columns{}) {
		columns = DefaultColumns
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{columns: columns, concurrency: 4, logger: logger}
}

// FileResult is the outcome of parsing one CSV file.
type FileResult struct {
	Path    string
	Records []weather.Record
	Skipped int
}

// ReadManifest returns the CSV paths listed in the manifest at path. Relative
// entries resolve against the manifest's directory; blank lines and lines
// starting with # are ignored.
func ReadManifest(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening manifest: %w", err)
	}
	defer f.Close() //nolint:errcheck

	dir := filepath.Dir(path)
	var files []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if !filepath.IsAbs(line) {
			line = filepath.Join(dir, line)
		}
		files = append(files, line)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("reading manifest: %w", err)
	}
	return files, nil
}

// LoadManifest parses every file listed in the manifest and returns the records
// in manifest order.
func (l *Loader) LoadManifest(ctx context.Context, manifest string) (*weather.Collection, error) {
	results, err := l.LoadFiles(ctx, manifest)
	if err != nil {
		return nil, err
	}

	var records []weather.Record
	for _, res := range results {
		records = append(records, res.Records...)
	}
	return weather.NewCollection(records), nil
}

// LoadFiles parses every file listed in the manifest concurrently and returns
// one result per file in manifest order.
func (l *Loader) LoadFiles(ctx context.Context, manifest string) ([]FileResult, error) {
	files, err := ReadManifest(manifest)
	if err != nil {
		return nil, err
	}

	results := make([]FileResult, len(files))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(l.concurrency)
	for i, path := range files {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			res, err := l.LoadFile(path)
			if err != nil {
				return err
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	for _, res := range results {
		l.logger.Info("loaded source file",
			"path", res.Path,
			"records", len(res.Records),
			"skipped", res.Skipped,
		)
	}
	return results, nil
}

// LoadFile parses one CSV file.
func (l *Loader) LoadFile(path string) (FileResult, error) {
	f, err := os.Open(path)
	if err != nil {
		return FileResult{}, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close() //nolint:errcheck

	res, err := l.Parse(f)
	if err != nil {
		return FileResult{}, fmt.Errorf("parsing %s: %w", path, err)
	}
	res.Path = path
	return res, nil
}

// Parse reads records from CSV data with a header row. Rows whose timestamp or
// values cannot be parsed are skipped and counted.
func (l *Loader) Parse(r io.Reader) (FileResult, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return FileResult{}, fmt.Errorf("reading header: %w", err)
	}
	idx, err := l.columnIndex(header)
	if err != nil {
		return FileResult{}, err
	}

	var res FileResult
	line := 1
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			res.Skipped++
			l.logger.Debug("skipping malformed row", "line", line, "error", err)
			continue
		}
		rec, err := parseRow(row, idx)
		if err != nil {
			res.Skipped++
			l.logger.Debug("skipping row", "line", line, "error", err)
			continue
		}
		res.Records = append(res.Records, rec)
	}
	return res, nil
}

type columnIndex struct {
	ts, wind, temp, solar int
}

func (l *Loader) columnIndex(header []string) (columnIndex, error) {
	pos := make(map[string]int, len(header))
	for i, h := range header {
		pos[strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))] = i
	}
	lookup := func(name string) (int, error) {
		i, ok := pos[name]
		if !ok {
			return 0, fmt.Errorf("%w %q", ErrMissingColumn, name)
		}
		return i, nil
	}

	var idx columnIndex
	var err error
	if idx.ts, err = lookup(l.columns.Timestamp); err != nil {
		return idx, err
	}
	if idx.wind, err = lookup(l.columns.WindSpeed); err != nil {
		return idx, err
	}
	if idx.temp, err = lookup(l.columns.Temperature); err != nil {
		return idx, err
	}
	if idx.solar, err = lookup(l.columns.SolarRadiation); err != nil {
		return idx, err
	}
	return idx, nil
}

func parseRow(row []string, idx columnIndex) (weather.Record, error) {
	field := func(i int) (string, error) {
		if i >= len(row) {
			return "", fmt.Errorf("row has %d fields, want > %d", len(row), i)
		}
		return strings.TrimSpace(row[i]), nil
	}
	number := func(i int) (float64, error) {
		s, err := field(i)
		if err != nil {
			return 0, err
		}
		return strconv.ParseFloat(s, 64)
	}

	raw, err := field(idx.ts)
	if err != nil {
		return weather.Record{}, err
	}
	ts, err := parseTimestamp(raw)
	if err != nil {
		return weather.Record{}, err
	}
	wind, err := number(idx.wind)
	if err != nil {
		return weather.Record{}, fmt.Errorf("wind speed: %w", err)
	}
	temp, err := number(idx.temp)
	if err != nil {
		return weather.Record{}, fmt.Errorf("temperature: %w", err)
	}
	solar, err := number(idx.solar)
	if err != nil {
		return weather.Record{}, fmt.Errorf("solar radiation: %w", err)
	}
	return weather.NewRecord(ts, wind, temp, solar), nil
}

func parseTimestamp(s string) (time.Time, error) {
	for _, layout := range timestampLayouts {
		if ts, err := time.Parse(layout, s); err == nil {
			return ts, nil
		}
	}
	return time.Time{}, fmt.Errorf("unable to parse timestamp: %q", s)
}

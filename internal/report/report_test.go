package report

import (
	"bytes"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chadmayfield/wxreport/internal/query"
	"github.com/chadmayfield/wxreport/internal/stats"
	"github.com/chadmayfield/wxreport/internal/weather"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func rec(year, month int, speed, temp, solar float64) weather.Record {
	return weather.NewRecord(time.Date(year, time.Month(month), 2, 10, 0, 0, 0, time.UTC), speed, temp, solar)
}

type harness struct {
	renderer *Renderer
	out      *bytes.Buffer
	errOut   *bytes.Buffer
}

func newHarness(p query.Predicate, exporter *Exporter, recs ...weather.Record) *harness {
	logger := discardLogger()
	agg := query.NewAggregator(weather.NewCollection(recs), p, logger)
	h := &harness{out: &bytes.Buffer{}, errOut: &bytes.Buffer{}}
	h.renderer = NewRenderer(h.out, h.errOut, agg, stats.NewEngine(logger), exporter, logger)
	return h
}

func TestRenderer_WindSpeedForMonth(t *testing.T) {
	h := newHarness(query.CollectionPredicate, nil,
		rec(2012, 1, 5, 0, 0),
		rec(2012, 1, 7, 0, 0),
	)

	h.renderer.WindSpeedForMonth(1, 2012)
	assert.Contains(t, h.out.String(), "January 2012: mean=6, stdev=1.41")

	h.out.Reset()
	h.renderer.WindSpeedForMonth(3, 2020)
	assert.Contains(t, h.out.String(), "March 2020: NO DATA")
}

func TestRenderer_WindSpeedSingleRecord(t *testing.T) {
	h := newHarness(query.CollectionPredicate, nil, rec(2012, 1, 5, 0, 0))

	h.renderer.WindSpeedForMonth(1, 2012)
	assert.Contains(t, h.out.String(), "January 2012: mean=5, stdev=N/A")
	assert.NotContains(t, h.out.String(), "NaN")
}

func TestRenderer_TemperatureByMonth(t *testing.T) {
	h := newHarness(query.RecordPredicate, nil,
		rec(2012, 2, 0, 20, 0),
		rec(2012, 2, 0, 22, 0),
	)

	h.renderer.TemperatureByMonth(2012)
	out := h.out.String()
	assert.Contains(t, out, "February: 21 degrees C, stdev: 1.41")
	assert.Equal(t, 11, strings.Count(out, ": NO DATA"))
}

func TestRenderer_NoDataYear(t *testing.T) {
	h := newHarness(query.CollectionPredicate, nil, rec(2012, 2, 1, 20, 100))

	h.renderer.TemperatureByMonth(2015)
	assert.Equal(t, 12, strings.Count(h.out.String(), ": NO DATA"))

	h.out.Reset()
	h.renderer.SolarEnergyByMonth(2015)
	assert.Equal(t, 12, strings.Count(h.out.String(), ": No Data"))
}

func TestRenderer_SolarEnergyByMonth(t *testing.T) {
	h := newHarness(query.RecordPredicate, nil,
		rec(2013, 6, 0, 0, 60000),
		rec(2013, 6, 0, 0, 61234),
	)

	h.renderer.SolarEnergyByMonth(2013)
	assert.Contains(t, h.out.String(), "June: 2.021 kWh/m2")
	assert.Equal(t, 11, strings.Count(h.out.String(), ": No Data"))
}

func combinedRecords() []weather.Record {
	return []weather.Record{
		rec(2012, 3, 4, 20, 30000),
		rec(2012, 3, 6, 22, 30000),
		rec(2012, 7, 8, 30, 60000),
		rec(2012, 7, 10, 34, 60000),
	}
}

func TestRenderer_CombinedTruncatesPerRow(t *testing.T) {
	path := filepath.Join(t.TempDir(), "WindTempSolar.csv")
	h := newHarness(query.RecordPredicate, NewExporter(path, TruncateEach), combinedRecords()...)

	rows := h.renderer.Combined(2012)
	assert.Equal(t, 2, rows)

	out := h.out.String()
	assert.Contains(t, out, "March,5(1.41),21(1.41),1")
	assert.Contains(t, out, "July,9(1.41),32(2.83),2")
	assert.Equal(t, 10, strings.Count(out, ": No Data"))
	assert.Contains(t, out, "[ INFO ] Data has been written to "+path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t,
		"Month,Average Wind Speed(stdev),Average Ambient Temperature(stdev),Solar Radiation\n"+
			"July,9(1.41421),32(2.82843),2\n",
		string(data))
}

func TestRenderer_CombinedAppendKeepsEveryRow(t *testing.T) {
	path := filepath.Join(t.TempDir(), "WindTempSolar.csv")
	require.NoError(t, os.WriteFile(path, []byte("stale\n"), 0644))
	h := newHarness(query.RecordPredicate, NewExporter(path, AppendRows), combinedRecords()...)

	h.renderer.Combined(2012)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t,
		"Month,Average Wind Speed(stdev),Average Ambient Temperature(stdev),Solar Radiation\n"+
			"March,5(1.41421),21(1.41421),1\n"+
			"July,9(1.41421),32(2.82843),2\n",
		string(data))
}

func TestRenderer_CombinedCollectionPredicate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.csv")
	h := newHarness(query.CollectionPredicate, NewExporter(path, TruncateEach), combinedRecords()...)

	// Every record feeds the deviation pass: speeds 4,6,8,10 around mean 5
	// give 1+1+9+25 = 36 over one degree of freedom.
	h.renderer.Combined(2012)
	assert.Contains(t, h.out.String(), "March,5(6),")
}

func TestRenderer_CombinedExportFailureIsNotFatal(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing", "dir", "out.csv")
	h := newHarness(query.RecordPredicate, NewExporter(path, TruncateEach), combinedRecords()...)

	rows := h.renderer.Combined(2012)
	assert.Equal(t, 0, rows)
	assert.Equal(t, 2, strings.Count(h.errOut.String(), "[ ERROR ] Opening File: "+path))
	assert.Contains(t, h.out.String(), "July,9(1.41),32(2.83),2")
	assert.Contains(t, h.out.String(), "December: No Data")
}

func TestRenderer_CombinedExportPrecision(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.csv")
	h := newHarness(query.RecordPredicate, NewExporter(path, TruncateEach),
		rec(2013, 5, 3.25, 18.125, 12345),
		rec(2013, 5, 4.75, 19.5, 23456),
	)

	h.renderer.Combined(2013)

	// Console keeps 3 digits for statistics and 4 for energy.
	assert.Contains(t, h.out.String(), "May,4(1.06),18.8(0.972),0.5967")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "May,4(1.06066),18.8125(0.972272),0.596683\n")
}

func TestParseExportMode(t *testing.T) {
	m, err := ParseExportMode("")
	require.NoError(t, err)
	assert.Equal(t, TruncateEach, m)

	m, err = ParseExportMode("append")
	require.NoError(t, err)
	assert.Equal(t, AppendRows, m)
	assert.Equal(t, "append", m.String())

	_, err = ParseExportMode("rotate")
	assert.Error(t, err)
}

func TestSigFigs(t *testing.T) {
	tests := []struct {
		v    float64
		n    int
		want string
	}{
		{6, 3, "6"},
		{1.41421356, 3, "1.41"},
		{25.678, 3, "25.7"},
		{100, 3, "100"},
		{2.02057, 4, "2.021"},
		{1234.5, 3, "1.23e+03"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, sigFigs(tt.v, tt.n))
	}
}

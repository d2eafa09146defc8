package stats

import (
	"io"
	"log/slog"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chadmayfield/wxreport/internal/weather"
)

func newTestEngine() *Engine {
	return NewEngine(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func collection(speeds ...float64) *weather.Collection {
	recs := make([]weather.Record, 0, len(speeds))
	for _, s := range speeds {
		recs = append(recs, weather.NewRecord(time.Date(2012, 1, 1, 0, 0, 0, 0, time.UTC), s, s*2, s*100))
	}
	return weather.NewCollection(recs)
}

func TestEngine_MeanAndDeviation(t *testing.T) {
	e := newTestEngine()
	records := collection(5, 7)

	mean := e.Mean(weather.WindSpeed, 12, 2)
	assert.Equal(t, 6.0, mean)

	sd, ok := e.SampleStandardDeviation(records, nil, mean, 2, weather.WindSpeed)
	require.True(t, ok)
	assert.InDelta(t, math.Sqrt2, sd, 1e-9)
}

func TestEngine_DeviationPerDimension(t *testing.T) {
	e := newTestEngine()
	records := collection(1, 2, 3, 4)

	tests := []struct {
		dim  weather.Dimension
		mean float64
		want float64
	}{
		{weather.WindSpeed, 2.5, math.Sqrt(5.0 / 3)},
		{weather.Temperature, 5, math.Sqrt(20.0 / 3)},
		{weather.SolarRadiation, 250, math.Sqrt(50000.0 / 3)},
	}
	for _, tt := range tests {
		t.Run(tt.dim.String(), func(t *testing.T) {
			sd, ok := e.SampleStandardDeviation(records, nil, tt.mean, 4, tt.dim)
			require.True(t, ok)
			assert.InDelta(t, tt.want, sd, 1e-9)
		})
	}
}

func TestEngine_DeviationNotAvailable(t *testing.T) {
	e := newTestEngine()

	for _, count := range []int{0, 1} {
		sd, ok := e.SampleStandardDeviation(collection(5), nil, 5, count, weather.WindSpeed)
		assert.False(t, ok)
		assert.False(t, math.IsNaN(sd))
	}
}

func TestEngine_IncludeGate(t *testing.T) {
	e := newTestEngine()
	records := collection(5, 7, 100)

	onlySmall := func(r weather.Record) bool { return r.WindSpeed.Value < 50 }
	sd, ok := e.SampleStandardDeviation(records, onlySmall, 6, 2, weather.WindSpeed)
	require.True(t, ok)
	assert.InDelta(t, math.Sqrt2, sd, 1e-9)

	// Without a gate the outlier contributes to the running sum.
	sd, ok = e.SampleStandardDeviation(records, nil, 6, 2, weather.WindSpeed)
	require.True(t, ok)
	assert.InDelta(t, math.Sqrt(2+94*94), sd, 1e-9)
}

func TestEngine_UnknownDimension(t *testing.T) {
	e := newTestEngine()

	assert.Equal(t, 0.0, e.Mean(weather.Dimension(7), 10, 2))
	_, ok := e.SampleStandardDeviation(collection(1, 2), nil, 1.5, 2, weather.Dimension(7))
	assert.False(t, ok)
}

func TestFor(t *testing.T) {
	for _, d := range weather.Dimensions {
		acc, ok := For(d)
		require.True(t, ok, d.String())
		assert.Equal(t, 2.5, acc.Mean(5, 2))
	}
	_, ok := For(weather.Dimension(-1))
	assert.False(t, ok)
}

func TestFor_SharedAccumulator(t *testing.T) {
	ws, _ := For(weather.WindSpeed)
	for _, d := range weather.Dimensions {
		acc, _ := For(d)
		assert.Equal(t, ws, acc, d.String())
		sd, ok := acc.StandardDeviation(8, 3)
		assert.True(t, ok)
		assert.Equal(t, 2.0, sd)
	}
}

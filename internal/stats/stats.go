// Package stats computes means and sample standard deviations over weather
// records, one accumulator per measurement dimension.
package stats

import (
	"log/slog"
	"math"

	"github.com/chadmayfield/wxreport/internal/weather"
)

// Accumulator is the numeric contract every measurement dimension exposes.
type Accumulator interface {
	// Mean returns sum/count.
	Mean(sum float64, count int) float64

	// StandardDeviation returns sqrt(sumSq/(count-1)). ok is false when
	// count <= 1.
	StandardDeviation(sumSq float64, count int) (sd float64, ok bool)
}

// sample implements Accumulator with the sample (n-1) variance. The three
// dimensions share this one implementation.
type sample struct{}

func (sample) Mean(sum float64, count int) float64 {
	return sum / float64(count)
}

func (sample) StandardDeviation(sumSq float64, count int) (float64, bool) {
	if count <= 1 {
		return 0, false
	}
	return math.Sqrt(sumSq / float64(count-1)), true
}

var (
	windSpeed      Accumulator = sample{}
	temperature    Accumulator = sample{}
	solarRadiation Accumulator = sample{}
)

// For returns the accumulator bound to dim.
func For(dim weather.Dimension) (Accumulator, bool) {
	switch dim {
	case weather.WindSpeed:
		return windSpeed, true
	case weather.Temperature:
		return temperature, true
	case weather.SolarRadiation:
		return solarRadiation, true
	default:
		return nil, false
	}
}

// Engine dispatches statistics calls to the accumulator of a dimension.
type Engine struct {
	logger *slog.Logger
}

// NewEngine creates a statistics engine.
func NewEngine(logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{logger: logger}
}

// Mean returns sum/count for dim. Callers must not pass count == 0.
func (e *Engine) Mean(dim weather.Dimension, sum float64, count int) float64 {
	acc, ok := e.accumulator(dim)
	if !ok {
		return 0
	}
	return acc.Mean(sum, count)
}

// SampleStandardDeviation walks records a second time, summing the squared
// difference from mean of every record include admits, and returns the sample
// standard deviation over count. ok is false when count <= 1 or dim is unknown.
func (e *Engine) SampleStandardDeviation(records *weather.Collection, include func(weather.Record) bool, mean float64, count int, dim weather.Dimension) (float64, bool) {
	acc, ok := e.accumulator(dim)
	if !ok {
		return 0, false
	}

	var sumSq float64
	for r := range records.All() {
		if include != nil && !include(r) {
			continue
		}
		diff := dim.Value(r) - mean
		sumSq += diff * diff
	}
	return acc.StandardDeviation(sumSq, count)
}

func (e *Engine) accumulator(dim weather.Dimension) (Accumulator, bool) {
	acc, ok := For(dim)
	if !ok {
		e.logger.Error("invalid measurement dimension", "dimension", int(dim))
	}
	return acc, ok
}

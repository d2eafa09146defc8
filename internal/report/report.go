// Package report renders the console reports and the combined CSV export.
package report

import (
	"fmt"
	"io"
	"log/slog"
	"strconv"

	"github.com/chadmayfield/wxreport/internal/query"
	"github.com/chadmayfield/wxreport/internal/stats"
	"github.com/chadmayfield/wxreport/internal/weather"
)

// SolarDivisor converts a monthly solar radiation sum into kWh/m2.
const SolarDivisor = 60000

const (
	outputHeader = "OUTPUT:"
	noDataUpper  = "NO DATA"
	noDataTitle  = "No Data"
	notAvailable = "N/A"

	yearIndent  = "     "
	monthIndent = "       "

	// Significant digits. Exported values keep full stream precision.
	consoleDigits = 3
	solarDigits   = 4
	exportDigits  = 6
)

// Renderer writes the four report layouts.
type Renderer struct {
	out      io.Writer
	errOut   io.Writer
	agg      *query.Aggregator
	stats    *stats.Engine
	exporter *Exporter
	logger   *slog.Logger
}

// NewRenderer creates a renderer. Report text goes to out; export failures are
// also written to errOut.
func NewRenderer(out, errOut io.Writer, agg *query.Aggregator, engine *stats.Engine, exporter *Exporter, logger *slog.Logger) *Renderer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Renderer{
		out:      out,
		errOut:   errOut,
		agg:      agg,
		stats:    engine,
		exporter: exporter,
		logger:   logger,
	}
}

// summary is the mean and deviation of one group for one dimension.
type summary struct {
	mean  float64
	sd    float64
	sdOK  bool
	count int
}

func (s summary) meanString() string { return sigFigs(s.mean, consoleDigits) }

func (s summary) sdString() string { return s.sdDigits(consoleDigits) }

func (s summary) sdDigits(n int) string {
	if !s.sdOK {
		return notAvailable
	}
	return sigFigs(s.sd, n)
}

// cell formats "mean(stdev)" with n significant digits.
func (s summary) cell(n int) string {
	return sigFigs(s.mean, n) + "(" + s.sdDigits(n) + ")"
}

func (r *Renderer) summarize(c query.Criterion, dim weather.Dimension, sum float64, count int) summary {
	if count == 0 {
		return summary{}
	}
	mean := r.stats.Mean(dim, sum, count)
	sd, ok := r.stats.SampleStandardDeviation(r.agg.Records(), r.agg.DeviationGate(c), mean, count, dim)
	return summary{mean: mean, sd: sd, sdOK: ok, count: count}
}

// WindSpeedForMonth renders the mean and deviation of wind speed for one
// month of one year.
func (r *Renderer) WindSpeedForMonth(month, year int) {
	c := query.Criterion{Month: month, Year: year}
	sum := r.agg.SumForCriterion(c, weather.WindSpeed)
	count := r.agg.CountForCriterion(c)

	fmt.Fprintln(r.out, outputHeader)
	label := fmt.Sprintf("%s%s %d", yearIndent, weather.MonthName(month), year)
	if count == 0 {
		fmt.Fprintf(r.out, "%s: %s\n\n", label, noDataUpper)
		return
	}

	s := r.summarize(c, weather.WindSpeed, sum, count)
	fmt.Fprintf(r.out, "%s: mean=%s, stdev=%s\n\n", label, s.meanString(), s.sdString())
}

// TemperatureByMonth renders twelve lines of temperature mean and deviation
// for year.
func (r *Renderer) TemperatureByMonth(year int) {
	sums := r.agg.MonthlyBucket(year, weather.Temperature)
	counts := r.agg.MonthlyCount(year)

	fmt.Fprintf(r.out, "%s\n%s%d\n", outputHeader, yearIndent, year)
	for i := range weather.MonthsPerYear {
		month := i + 1
		name := weather.MonthName(month)
		if counts[i] == 0 {
			fmt.Fprintf(r.out, "%s%s: %s\n", monthIndent, name, noDataUpper)
			continue
		}
		s := r.summarize(query.Criterion{Month: month, Year: year}, weather.Temperature, sums[i], counts[i])
		fmt.Fprintf(r.out, "%s%s: %s degrees C, stdev: %s\n", monthIndent, name, s.meanString(), s.sdString())
	}
}

// SolarEnergyByMonth renders the total solar energy of every month of year.
func (r *Renderer) SolarEnergyByMonth(year int) {
	sums := r.agg.MonthlyBucket(year, weather.SolarRadiation)
	counts := r.agg.MonthlyCount(year)

	fmt.Fprintf(r.out, "%s\n%s%d\n", outputHeader, yearIndent, year)
	for i := range weather.MonthsPerYear {
		name := weather.MonthName(i + 1)
		if counts[i] == 0 {
			fmt.Fprintf(r.out, "%s%s: %s\n", monthIndent, name, noDataTitle)
			continue
		}
		fmt.Fprintf(r.out, "%s%s: %s kWh/m2\n", monthIndent, name, solarEnergy(sums[i], solarDigits))
	}
}

// Combined renders wind speed, temperature, and solar energy for every month
// of year and exports each month with data. Export failures are reported and
// do not stop the report. It returns the number of rows exported.
func (r *Renderer) Combined(year int) int {
	speed := r.agg.MonthlyBucket(year, weather.WindSpeed)
	temp := r.agg.MonthlyBucket(year, weather.Temperature)
	solar := r.agg.MonthlyBucket(year, weather.SolarRadiation)
	counts := r.agg.MonthlyCount(year)

	fmt.Fprintf(r.out, "%s\n%s%d\n", outputHeader, yearIndent, year)
	exported := 0
	for i := range weather.MonthsPerYear {
		month := i + 1
		name := weather.MonthName(month)
		if counts[i] == 0 {
			fmt.Fprintf(r.out, "%s%s: %s\n", monthIndent, name, noDataTitle)
			continue
		}

		c := query.Criterion{Month: month, Year: year}
		sp := r.summarize(c, weather.WindSpeed, speed[i], counts[i])
		tp := r.summarize(c, weather.Temperature, temp[i], counts[i])
		fmt.Fprintf(r.out, "%s%s,%s,%s,%s\n", monthIndent,
			name, sp.cell(consoleDigits), tp.cell(consoleDigits), solarEnergy(solar[i], solarDigits))

		if r.exporter == nil {
			continue
		}
		row := []string{name, sp.cell(exportDigits), tp.cell(exportDigits), solarEnergy(solar[i], exportDigits)}
		if err := r.exporter.WriteRow(row, exported == 0); err != nil {
			fmt.Fprintf(r.errOut, "[ ERROR ] Opening File: %s\n", r.exporter.Path())
			r.logger.Error("export failed", "path", r.exporter.Path(), "month", month, "error", err)
			continue
		}
		exported++
	}

	if r.exporter != nil {
		fmt.Fprintf(r.out, "\n%s[ INFO ] Data has been written to %s\n\n", yearIndent, r.exporter.Path())
	}
	return exported
}

func solarEnergy(sum float64, digits int) string {
	return sigFigs(sum/SolarDivisor, digits)
}

// sigFigs formats v with at most n significant digits.
func sigFigs(v float64, n int) string {
	return strconv.FormatFloat(v, 'g', n, 64)
}

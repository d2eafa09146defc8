package query

import (
	"fmt"
	"log/slog"

	"github.com/chadmayfield/wxreport/internal/weather"
)

// Predicate selects how a record is admitted into a group.
type Predicate int

const (
	// CollectionPredicate admits every record when the collection as a whole
	// holds some record with the requested month and some record with the
	// requested year. Monthly passes gate on the year alone and bucket each
	// record by its own month. This reproduces the historical reports.
	CollectionPredicate Predicate = iota

	// RecordPredicate admits a record only when its own month and year match.
	RecordPredicate
)

func (p Predicate) String() string {
	switch p {
	case CollectionPredicate:
		return "collection"
	case RecordPredicate:
		return "record"
	default:
		return fmt.Sprintf("predicate(%d)", int(p))
	}
}

// ParsePredicate converts a config value into a Predicate.
func ParsePredicate(s string) (Predicate, error) {
	switch s {
	case "", "collection":
		return CollectionPredicate, nil
	case "record":
		return RecordPredicate, nil
	default:
		return 0, fmt.Errorf("unknown predicate %q (want collection or record)", s)
	}
}

// Criterion is a month/year query. Month 0 matches any month.
type Criterion struct {
	Month int
	Year  int
}

// Aggregator computes sums, counts, and monthly buckets over a collection.
type Aggregator struct {
	records   *weather.Collection
	predicate Predicate
	logger    *slog.Logger
}

// NewAggregator creates an aggregator over records.
func NewAggregator(records *weather.Collection, predicate Predicate, logger *slog.Logger) *Aggregator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Aggregator{
		records:   records,
		predicate: predicate,
		logger:    logger,
	}
}

// Records returns the collection the aggregator reads from.
func (a *Aggregator) Records() *weather.Collection { return a.records }

// Predicate returns the active group predicate.
func (a *Aggregator) Predicate() Predicate { return a.predicate }

// Gate returns the membership test for c. Under CollectionPredicate the test
// ignores the candidate record and is evaluated once against the collection.
func (a *Aggregator) Gate(c Criterion) func(weather.Record) bool {
	if a.predicate == RecordPredicate {
		return func(r weather.Record) bool {
			return (c.Month == 0 || r.Month() == c.Month) && r.Year() == c.Year
		}
	}
	found := a.records.HasYear(c.Year) && (c.Month == 0 || a.records.HasMonth(c.Month))
	return func(weather.Record) bool { return found }
}

// DeviationGate returns the test deciding which records feed the squared
// difference pass for c. Under CollectionPredicate every record contributes.
func (a *Aggregator) DeviationGate(c Criterion) func(weather.Record) bool {
	if a.predicate == RecordPredicate {
		return a.Gate(c)
	}
	return func(weather.Record) bool { return true }
}

// SumForCriterion sums dim over the records admitted for c.
func (a *Aggregator) SumForCriterion(c Criterion, dim weather.Dimension) float64 {
	if !a.checkDimension(dim) {
		return 0
	}
	admit := a.Gate(c)
	var sum float64
	for r := range a.records.All() {
		if admit(r) {
			sum += dim.Value(r)
		}
	}
	return sum
}

// CountForCriterion counts the records admitted for c.
func (a *Aggregator) CountForCriterion(c Criterion) int {
	admit := a.Gate(c)
	count := 0
	for r := range a.records.All() {
		if admit(r) {
			count++
		}
	}
	return count
}

// MonthlyBucket sums dim per calendar month for year. Buckets start at zero on
// every call.
func (a *Aggregator) MonthlyBucket(year int, dim weather.Dimension) weather.MonthlyBuckets {
	var buckets weather.MonthlyBuckets
	if !a.checkDimension(dim) {
		return buckets
	}
	admit := a.Gate(Criterion{Year: year})
	for r := range a.records.All() {
		if admit(r) {
			buckets[weather.MonthIndex(r.Month())] += dim.Value(r)
		}
	}
	return buckets
}

// MonthlyCount counts records per calendar month for year using the same gate
// as MonthlyBucket.
func (a *Aggregator) MonthlyCount(year int) weather.MonthlyCounts {
	var counts weather.MonthlyCounts
	admit := a.Gate(Criterion{Year: year})
	for r := range a.records.All() {
		if admit(r) {
			counts[weather.MonthIndex(r.Month())]++
		}
	}
	return counts
}

func (a *Aggregator) checkDimension(dim weather.Dimension) bool {
	if dim.Valid() {
		return true
	}
	a.logger.Error("invalid measurement dimension", "dimension", int(dim))
	return false
}

package query

import (
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chadmayfield/wxreport/internal/weather"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func rec(year, month int, speed, temp, solar float64) weather.Record {
	return weather.NewRecord(time.Date(year, time.Month(month), 1, 9, 0, 0, 0, time.UTC), speed, temp, solar)
}

func newAgg(p Predicate, recs ...weather.Record) *Aggregator {
	return NewAggregator(weather.NewCollection(recs), p, discardLogger())
}

func TestAggregator_SumAndCount(t *testing.T) {
	a := newAgg(CollectionPredicate,
		rec(2012, 1, 5, 0, 0),
		rec(2012, 1, 7, 0, 0),
	)
	c := Criterion{Month: 1, Year: 2012}

	assert.Equal(t, 12.0, a.SumForCriterion(c, weather.WindSpeed))
	assert.Equal(t, 2, a.CountForCriterion(c))
}

func TestAggregator_CollectionPredicateIsExistenceTest(t *testing.T) {
	recs := []weather.Record{
		rec(2012, 1, 5, 0, 0),
		rec(2013, 3, 7, 0, 0),
	}
	// No single record is March 2012, but the collection holds a March record
	// and a 2012 record.
	c := Criterion{Month: 3, Year: 2012}

	literal := newAgg(CollectionPredicate, recs...)
	assert.Equal(t, 12.0, literal.SumForCriterion(c, weather.WindSpeed))
	assert.Equal(t, 2, literal.CountForCriterion(c))

	corrected := newAgg(RecordPredicate, recs...)
	assert.Equal(t, 0.0, corrected.SumForCriterion(c, weather.WindSpeed))
	assert.Equal(t, 0, corrected.CountForCriterion(c))

	missing := Criterion{Month: 3, Year: 2020}
	assert.Equal(t, 0, literal.CountForCriterion(missing))
}

func TestAggregator_MonthlyBucket(t *testing.T) {
	recs := []weather.Record{
		rec(2012, 1, 2, 10, 100),
		rec(2012, 1, 4, 20, 200),
		rec(2013, 3, 6, 30, 300),
	}

	t.Run("collection gate buckets every record", func(t *testing.T) {
		a := newAgg(CollectionPredicate, recs...)
		buckets := a.MonthlyBucket(2012, weather.Temperature)
		counts := a.MonthlyCount(2012)

		assert.Equal(t, 30.0, buckets[0])
		assert.Equal(t, 30.0, buckets[2])
		assert.Equal(t, 2, counts[0])
		assert.Equal(t, 1, counts[2])
	})

	t.Run("record gate buckets only the year", func(t *testing.T) {
		a := newAgg(RecordPredicate, recs...)
		buckets := a.MonthlyBucket(2012, weather.SolarRadiation)
		counts := a.MonthlyCount(2012)

		assert.Equal(t, 300.0, buckets[0])
		assert.Equal(t, 0.0, buckets[2])
		assert.Equal(t, 2, counts[0])
		assert.Equal(t, 0, counts[2])
	})

	t.Run("year without records", func(t *testing.T) {
		for _, p := range []Predicate{CollectionPredicate, RecordPredicate} {
			a := newAgg(p, recs...)
			assert.Equal(t, weather.MonthlyBuckets{}, a.MonthlyBucket(2020, weather.WindSpeed))
			assert.Equal(t, weather.MonthlyCounts{}, a.MonthlyCount(2020))
		}
	})

	t.Run("buckets reset between calls", func(t *testing.T) {
		a := newAgg(CollectionPredicate, recs...)
		first := a.MonthlyBucket(2012, weather.WindSpeed)
		second := a.MonthlyBucket(2012, weather.WindSpeed)
		assert.Equal(t, first, second)
	})
}

func TestAggregator_InvalidDimension(t *testing.T) {
	a := newAgg(CollectionPredicate, rec(2012, 1, 5, 0, 0))

	assert.Equal(t, 0.0, a.SumForCriterion(Criterion{Month: 1, Year: 2012}, weather.Dimension(9)))
	assert.Equal(t, weather.MonthlyBuckets{}, a.MonthlyBucket(2012, weather.Dimension(9)))
}

func TestAggregator_EmptyCollection(t *testing.T) {
	a := newAgg(CollectionPredicate)
	assert.Equal(t, 0, a.CountForCriterion(Criterion{Month: 1, Year: 2012}))
	assert.Equal(t, weather.MonthlyCounts{}, a.MonthlyCount(2012))
}

func TestAggregator_DeviationGate(t *testing.T) {
	recs := []weather.Record{
		rec(2012, 1, 5, 0, 0),
		rec(2013, 1, 7, 0, 0),
	}
	c := Criterion{Month: 1, Year: 2012}

	literal := newAgg(CollectionPredicate, recs...).DeviationGate(c)
	assert.True(t, literal(recs[0]))
	assert.True(t, literal(recs[1]))

	corrected := newAgg(RecordPredicate, recs...).DeviationGate(c)
	assert.True(t, corrected(recs[0]))
	assert.False(t, corrected(recs[1]))
}

func TestParsePredicate(t *testing.T) {
	tests := []struct {
		in      string
		want    Predicate
		wantErr bool
	}{
		{"", CollectionPredicate, false},
		{"collection", CollectionPredicate, false},
		{"record", RecordPredicate, false},
		{"per-record", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParsePredicate(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.want.String(), map[Predicate]string{CollectionPredicate: "collection", RecordPredicate: "record"}[got])
		})
	}
}

func TestAggregator_Predicate(t *testing.T) {
	for _, p := range []Predicate{CollectionPredicate, RecordPredicate} {
		assert.Equal(t, p, newAgg(p).Predicate())
	}
	assert.Equal(t, "record", newAgg(RecordPredicate).Predicate().String())
}

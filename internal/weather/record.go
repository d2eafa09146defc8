package weather

import (
	"fmt"
	"iter"
	"time"
)

// Unit labels attached to loaded measurements.
const (
	UnitMetersPerSecond = "m/s"
	UnitCelsius         = "°C"
	UnitWattsPerSquareM = "W/m2"
)

// Measurement is a magnitude with its unit label.
type Measurement struct {
	Value float64
	Unit  string
}

// Record is one dated observation. Records are never mutated after load.
type Record struct {
	Timestamp      time.Time
	WindSpeed      Measurement
	Temperature    Measurement
	SolarRadiation Measurement
}

// NewRecord builds a record using the default unit labels.
func NewRecord(ts time.Time, windSpeed, temperature, solarRadiation float64) Record {
	return Record{
		Timestamp:      ts,
		WindSpeed:      Measurement{Value: windSpeed, Unit: UnitMetersPerSecond},
		Temperature:    Measurement{Value: temperature, Unit: UnitCelsius},
		SolarRadiation: Measurement{Value: solarRadiation, Unit: UnitWattsPerSquareM},
	}
}

// Month returns the calendar month in [1,12].
func (r Record) Month() int { return int(r.Timestamp.Month()) }

// Year returns the calendar year.
func (r Record) Year() int { return r.Timestamp.Year() }

// Dimension selects which measurement of a record takes part in a calculation.
type Dimension int

const (
	WindSpeed Dimension = iota
	Temperature
	SolarRadiation
)

// Dimensions lists every valid dimension in declaration order.
var Dimensions = []Dimension{WindSpeed, Temperature, SolarRadiation}

func (d Dimension) String() string {
	switch d {
	case WindSpeed:
		return "wind_speed"
	case Temperature:
		return "temperature"
	case SolarRadiation:
		return "solar_radiation"
	default:
		return fmt.Sprintf("dimension(%d)", int(d))
	}
}

// Valid reports whether d is one of the declared dimensions.
func (d Dimension) Valid() bool {
	return d >= WindSpeed && d <= SolarRadiation
}

// Value returns the record's magnitude for d, or 0 for an unknown dimension.
func (d Dimension) Value(r Record) float64 {
	switch d {
	case WindSpeed:
		return r.WindSpeed.Value
	case Temperature:
		return r.Temperature.Value
	case SolarRadiation:
		return r.SolarRadiation.Value
	default:
		return 0
	}
}

// Collection is an ordered, read-only sequence of records. Iteration order is
// insertion order.
type Collection struct {
	records []Record
}

// NewCollection copies records into a new collection.
func NewCollection(records []Record) *Collection {
	c := &Collection{records: make([]Record, len(records))}
	copy(c.records, records)
	return c
}

// Len returns the number of records.
func (c *Collection) Len() int {
	if c == nil {
		return 0
	}
	return len(c.records)
}

// At returns the record at position i.
func (c *Collection) At(i int) Record {
	return c.records[i]
}

// All iterates the records from the first to the last.
func (c *Collection) All() iter.Seq[Record] {
	return func(yield func(Record) bool) {
		if c == nil {
			return
		}
		for _, r := range c.records {
			if !yield(r) {
				return
			}
		}
	}
}

// HasMonth reports whether any record falls in month.
func (c *Collection) HasMonth(month int) bool {
	for r := range c.All() {
		if r.Month() == month {
			return true
		}
	}
	return false
}

// HasYear reports whether any record falls in year.
func (c *Collection) HasYear(year int) bool {
	for r := range c.All() {
		if r.Year() == year {
			return true
		}
	}
	return false
}

// Range returns the oldest and newest timestamps in the collection.
func (c *Collection) Range() (oldest, newest time.Time) {
	for r := range c.All() {
		if oldest.IsZero() || r.Timestamp.Before(oldest) {
			oldest = r.Timestamp
		}
		if r.Timestamp.After(newest) {
			newest = r.Timestamp
		}
	}
	return oldest, newest
}

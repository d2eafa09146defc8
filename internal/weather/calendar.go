package weather

import "time"

// MonthsPerYear is the length of every monthly bucket array.
const MonthsPerYear = 12

// MonthlyBuckets holds one accumulator per calendar month. Index i is month i+1.
type MonthlyBuckets [MonthsPerYear]float64

// MonthlyCounts holds one record count per calendar month. Index i is month i+1.
type MonthlyCounts [MonthsPerYear]int

// MonthIndex maps a calendar month in [1,12] to its bucket index.
func MonthIndex(month int) int { return month - 1 }

// MonthName returns the English name of month, or "" when month is outside [1,12].
func MonthName(month int) string {
	if month < 1 || month > MonthsPerYear {
		return ""
	}
	return time.Month(month).String()
}

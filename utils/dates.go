package utils

import (
	"math"
	"sort"
	"time"
)

// SortDates sorts a slice of time.Time in ascending order.
func SortDates(dates []time.Time) {
	sort.Slice(dates, func(i, j int) bool {
		return dates[i].Before(dates[j])
	})
}

// Days returns the day count in calendar days between two dates.
func Days(start, end time.Time) float64 {
	return end.Sub(start).Hours() / 24
}

// YearFraction computes the ACT/365F year fraction between two dates.
// The calibration time axis uses ACT/365F throughout, matching the
// convention used for option time-to-expiry.
func YearFraction(start, end time.Time) float64 {
	return Days(start, end) / 365.0
}

// ParseDate converts YYYY-MM-DD to time.Time.
func ParseDate(strDate string) (time.Time, error) {
	const layout = "2006-01-02"
	return time.Parse(layout, strDate)
}

// IsThirdFriday reports whether a date is the third Friday of its month,
// the standard monthly listed-option expiry.
func IsThirdFriday(t time.Time) bool {
	return t.Weekday() == time.Friday && t.Day() >= 15 && t.Day() <= 21
}

// RoundTo rounds a float to the specified decimal places.
func RoundTo(val float64, decimals uint32) float64 {
	pow := math.Pow(10, float64(decimals))
	return math.Round(val*pow) / pow
}

// Clamp limits v to the closed interval [lo, hi].
func Clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

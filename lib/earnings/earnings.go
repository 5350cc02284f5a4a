// Package earnings derives today's earnings and the projected monthly total
// from the dashboard's daily earnings table.
package earnings

import (
	"fmt"
	"math"
	"math/big"
	"strings"
	"time"

	"mturk-extractor/lib/chrono"
	"mturk-extractor/lib/scrapers/mturk"
)

const (
	// ZeroDollars is used whenever there is nothing to compute from.
	ZeroDollars = "$0.00"

	// ProjectionWindow is how many of the newest rows are averaged.
	ProjectionWindow = 7
	// ProjectionDays is how many days the daily average is projected over.
	ProjectionDays = 30
)

// FormatDollars formats v as "$" followed by exactly two decimals.
//
// Ties are rounded away from zero on the exact binary value of v, so 1.125
// becomes $1.13 while 2.675 (2.67499... in binary) becomes $2.67.
func FormatDollars(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return ZeroDollars
	}

	// 128 bits hold v*100 exactly
	scaled := new(big.Float).SetPrec(128).SetFloat64(v)
	scaled.Mul(scaled, big.NewFloat(100))
	half := big.NewFloat(0.5)
	sign := ""
	if v < 0 {
		sign = "-"
		scaled.Sub(scaled, half)
	} else {
		scaled.Add(scaled, half)
	}

	cents, _ := scaled.Int(nil)
	cents.Abs(cents)
	dollars, remainder := new(big.Int).QuoRem(cents, big.NewInt(100), new(big.Int))
	return fmt.Sprintf("$%s%s.%02d", sign, dollars.String(), remainder.Int64())
}

// Today returns the earnings of the first row whose date contains today
// (YYYY-MM-DD).
func Today(entries []mturk.DailyEntry, today string) string {
	for _, entry := range entries {
		if entry.Date != "" && strings.Contains(entry.Date, today) {
			return FormatDollars(entry.Earnings)
		}
	}
	return ZeroDollars
}

// Projected averages the first ProjectionWindow rows (the table is newest
// first) and multiplies the average by ProjectionDays.
func Projected(entries []mturk.DailyEntry) string {
	if len(entries) == 0 {
		return ZeroDollars
	}

	recent := entries[:min(ProjectionWindow, len(entries))]
	var total float64
	for _, day := range recent {
		total += day.Earnings
	}
	average := total / float64(len(recent))
	return FormatDollars(average * ProjectionDays)
}

// Project computes both values for the day now falls on.
func Project(entries []mturk.DailyEntry, now time.Time) (todays string, projected string) {
	return Today(entries, chrono.DateKey(now)), Projected(entries)
}

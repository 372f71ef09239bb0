// Package calendar computes recurrence occurrences for scheduled transactions.
//
// All dates are proleptic Gregorian civil dates with no timezone. Absolute
// dates are stored as ordinals where 0001-01-01 is day 1.
package calendar

import (
	"errors"
	"fmt"
	"time"

	"cloud.google.com/go/civil"
)

// Errors returned for corrupt pattern data. None of them occur for values
// produced by Build and ParsePattern.
var (
	ErrInvalidPattern = errors.New("invalid pattern")
	ErrInvalidAnchor  = errors.New("anchor day out of range")
	ErrInvalidDate    = errors.New("invalid date")
	ErrDateOverflow   = errors.New("date out of range")
)

const (
	// MinOrdinal is the ordinal of 0001-01-01.
	MinOrdinal = 1
	// MaxOrdinal is the ordinal of 9999-12-31.
	MaxOrdinal = 3652059

	maxYear          = 9999
	unixEpochOrdinal = 719163
	secondsPerDay    = 86400
)

// IsLeapYear reports whether year has a February 29.
func IsLeapYear(year int) bool {
	if year%4 != 0 {
		return false
	}
	if year%100 == 0 {
		return year%400 == 0
	}
	return true
}

// DaysIn returns the number of days in the given month.
func DaysIn(year int, month time.Month) int {
	switch month {
	case time.February:
		if IsLeapYear(year) {
			return 29
		}
		return 28
	case time.April, time.June, time.September, time.November:
		return 30
	}
	return 31
}

// LastDayOfMonth returns the final date of the month containing d.
func LastDayOfMonth(d civil.Date) civil.Date {
	return civil.Date{Year: d.Year, Month: d.Month, Day: DaysIn(d.Year, d.Month)}
}

// DayOfYear returns d's 1-based position within its year.
func DayOfYear(d civil.Date) int {
	return d.In(time.UTC).YearDay()
}

// Ordinal returns the proleptic Gregorian ordinal of d.
func Ordinal(d civil.Date) int {
	return int(d.In(time.UTC).Unix()/secondsPerDay) + unixEpochOrdinal
}

// FromOrdinal converts a stored ordinal back into a date.
func FromOrdinal(n int) (civil.Date, error) {
	if n < MinOrdinal || n > MaxOrdinal {
		return civil.Date{}, fmt.Errorf("%w: ordinal %d", ErrInvalidDate, n)
	}
	return fromOrdinal(n), nil
}

func fromOrdinal(n int) civil.Date {
	return civil.DateOf(time.Unix(int64(n-unixEpochOrdinal)*secondsPerDay, 0).UTC())
}

// resultFromOrdinal is FromOrdinal for computed values, where leaving the
// representable range means the arithmetic overflowed.
func resultFromOrdinal(n int) (civil.Date, error) {
	if n < MinOrdinal || n > MaxOrdinal {
		return civil.Date{}, fmt.Errorf("%w: ordinal %d", ErrDateOverflow, n)
	}
	return fromOrdinal(n), nil
}

func validDate(d civil.Date) bool {
	return d.IsValid() && d.Year >= 1 && d.Year <= maxYear
}

func nextMonth(year int, month time.Month) (int, time.Month) {
	if month == time.December {
		return year + 1, time.January
	}
	return year, month + 1
}

func lastOfFebruary(year int) civil.Date {
	return civil.Date{Year: year, Month: time.February, Day: DaysIn(year, time.February)}
}

// floorDiv divides rounding toward negative infinity.
func floorDiv(a, b int) int {
	q := a / b
	if a%b != 0 && (a < 0) != (b < 0) {
		q--
	}
	return q
}

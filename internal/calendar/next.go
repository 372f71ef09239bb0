package calendar

import (
	"fmt"
	"time"

	"cloud.google.com/go/civil"
)

// Next returns the first occurrence of p after from. Single patterns are the
// exception: they always return their fixed date, which may be on or before
// from. Callers that need "on or after" pass the previous day.
func Next(from civil.Date, p Pattern, anchor int) (civil.Date, error) {
	if err := ValidateAnchor(p, anchor); err != nil {
		return civil.Date{}, err
	}
	if !validDate(from) {
		return civil.Date{}, fmt.Errorf("%w: %v", ErrInvalidDate, from)
	}

	next, err := p.next(from, anchor)
	if err != nil {
		return civil.Date{}, err
	}
	if !validDate(next) {
		return civil.Date{}, fmt.Errorf("%w: %s after %s", ErrDateOverflow, p, from)
	}
	return next, nil
}

func (Single) next(_ civil.Date, anchor int) (civil.Date, error) {
	return FromOrdinal(anchor)
}

func (Daily) next(from civil.Date, _ int) (civil.Date, error) {
	return resultFromOrdinal(Ordinal(from) + 1)
}

// The lattice anchor + k*stride is solved for the smallest k past from, so
// anchors decades away cost the same as last week's.
func (w Weekly) next(from civil.Date, anchor int) (civil.Date, error) {
	stride := 7 * w.Stride
	k := floorDiv(Ordinal(from)-anchor, stride) + 1
	return resultFromOrdinal(anchor + k*stride)
}

func (m Monthly) next(from civil.Date, anchor int) (civil.Date, error) {
	ny, nm := nextMonth(from.Year, from.Month)

	switch m.Rule {
	case MonthFirst:
		return civil.Date{Year: ny, Month: nm, Day: 1}, nil

	case MonthLast:
		last := DaysIn(from.Year, from.Month)
		if from.Day == last {
			return civil.Date{Year: ny, Month: nm, Day: DaysIn(ny, nm)}, nil
		}
		return civil.Date{Year: from.Year, Month: from.Month, Day: last}, nil

	default:
		// Anchors past the end of a short month land on its last day.
		day := min(anchor, DaysIn(from.Year, from.Month))
		if from.Day >= day {
			return civil.Date{Year: ny, Month: nm, Day: min(anchor, DaysIn(ny, nm))}, nil
		}
		return civil.Date{Year: from.Year, Month: from.Month, Day: day}, nil
	}
}

func (y Yearly) next(from civil.Date, anchor int) (civil.Date, error) {
	year := from.Year

	switch y.Rule {
	case FebruaryLast:
		feb := lastOfFebruary(year)
		if from.Before(feb) {
			return feb, nil
		}
		return lastOfFebruary(year + 1), nil

	case LeapDay:
		if IsLeapYear(year) {
			leap := civil.Date{Year: year, Month: time.February, Day: 29}
			if from.Before(leap) {
				return leap, nil
			}
			return civil.Date{Year: year + 1, Month: time.March, Day: 1}, nil
		}
		march := civil.Date{Year: year, Month: time.March, Day: 1}
		if from.Before(march) {
			return march, nil
		}
		if IsLeapYear(year + 1) {
			return civil.Date{Year: year + 1, Month: time.February, Day: 29}, nil
		}
		return civil.Date{Year: year + 1, Month: time.March, Day: 1}, nil

	default:
		// Day-of-year is counted from Jan 1 of the target year, so 366 in a
		// common year spills into Jan 1 of the following one.
		if DayOfYear(from) >= anchor {
			year++
		}
		jan1 := civil.Date{Year: year, Month: time.January, Day: 1}
		return resultFromOrdinal(Ordinal(jan1) + anchor - 1)
	}
}

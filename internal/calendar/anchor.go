package calendar

import (
	"fmt"
	"time"

	"cloud.google.com/go/civil"
)

// Choice is the user's description of a schedule before it is encoded.
type Choice struct {
	Family Family
	// MonthlyRule applies to FamilyMonthly.
	MonthlyRule MonthlyRule
	// Stride applies to FamilyWeekly: 1 = every week, 2 = every other week...
	Stride int
	// LeapFallback applies to FamilyYearly when the start date is Feb 29:
	// FebruaryLast falls back to Feb 28, LeapDay falls back to Mar 1.
	LeapFallback YearlyRule
}

// Build encodes a choice and its start date into a pattern and initial anchor.
func Build(c Choice, start civil.Date) (Pattern, int, error) {
	if !validDate(start) {
		return nil, 0, fmt.Errorf("%w: start %v", ErrInvalidDate, start)
	}

	var p Pattern
	switch c.Family {
	case FamilySingle:
		p = Single{}
	case FamilyDaily:
		p = Daily{}
	case FamilyWeekly:
		p = Weekly{Stride: c.Stride}
	case FamilyMonthly:
		p = Monthly{Rule: c.MonthlyRule}
	case FamilyYearly:
		p = Yearly{Rule: YearDay}
		if start.Month == time.February && start.Day == 29 {
			if c.LeapFallback != FebruaryLast && c.LeapFallback != LeapDay {
				return nil, 0, fmt.Errorf("%w: Feb 29 start needs a fallback for common years", ErrInvalidPattern)
			}
			p = Yearly{Rule: c.LeapFallback}
		}
	default:
		return nil, 0, fmt.Errorf("%w: family %d", ErrInvalidPattern, c.Family)
	}

	if err := p.Validate(); err != nil {
		return nil, 0, err
	}
	return p, AnchorFor(p, start), nil
}

// AnchorFor returns the anchor that makes p recur on start's cycle.
func AnchorFor(p Pattern, start civil.Date) int {
	switch v := p.(type) {
	case Yearly:
		return DayOfYear(start)
	case Monthly:
		switch v.Rule {
		case MonthFirst:
			return 1
		case MonthLast:
			return DaysIn(start.Year, start.Month)
		default:
			return start.Day
		}
	default:
		return Ordinal(start)
	}
}

// Cursor returns the anchor a transaction should store once occurrence has
// been applied. Weekly and daily anchors move to the latest occurrence;
// fixed-day anchors are their own cursor and never drift through clamping.
func Cursor(p Pattern, occurrence civil.Date, anchor int) int {
	switch p.(type) {
	case Weekly, Daily:
		return Ordinal(occurrence)
	default:
		return anchor
	}
}

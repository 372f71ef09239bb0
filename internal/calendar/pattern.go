package calendar

import (
	"fmt"
	"strings"

	"cloud.google.com/go/civil"
)

// Family groups patterns by the unit they recur on.
type Family int

const (
	FamilySingle Family = iota
	FamilyDaily
	FamilyWeekly
	FamilyMonthly
	FamilyYearly
)

func (f Family) String() string {
	switch f {
	case FamilySingle:
		return "single"
	case FamilyDaily:
		return "daily"
	case FamilyWeekly:
		return "weekly"
	case FamilyMonthly:
		return "monthly"
	case FamilyYearly:
		return "yearly"
	default:
		return "unknown"
	}
}

// ParseFamily accepts the family names used on the command line.
func ParseFamily(s string) (Family, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "single", "once", "one-time":
		return FamilySingle, nil
	case "daily":
		return FamilyDaily, nil
	case "weekly":
		return FamilyWeekly, nil
	case "monthly":
		return FamilyMonthly, nil
	case "yearly", "annually":
		return FamilyYearly, nil
	}
	return 0, fmt.Errorf("%w: unknown frequency %q", ErrInvalidPattern, s)
}

// Pattern is a recurrence rule. The set of implementations is closed:
// Single, Daily, Weekly, Monthly and Yearly.
//
// The anchor passed alongside a pattern is the transaction's stored day
// value; its meaning depends on the variant.
type Pattern interface {
	// String returns the storage tag, e.g. "monthly3".
	String() string
	Family() Family
	Validate() error

	next(from civil.Date, anchor int) (civil.Date, error)
	checkAnchor(anchor int) error
}

// Single occurs once, on the date whose ordinal is the anchor.
type Single struct{}

// Daily occurs every day. The anchor is unused.
type Daily struct{}

// Weekly occurs every Stride weeks on the lattice through the anchor ordinal.
type Weekly struct {
	Stride int
}

// MonthlyRule selects the day a Monthly pattern lands on.
type MonthlyRule int

const (
	MonthFirst MonthlyRule = iota + 1
	MonthLast
	MonthDay
)

// Monthly occurs once per month.
type Monthly struct {
	Rule MonthlyRule
}

// YearlyRule selects the day a Yearly pattern lands on.
type YearlyRule int

const (
	// YearDay lands on the anchor's day-of-year.
	YearDay YearlyRule = iota + 1
	// FebruaryLast lands on Feb 29 in leap years and Feb 28 otherwise.
	FebruaryLast
	// LeapDay lands on Feb 29 in leap years and Mar 1 otherwise.
	LeapDay
)

// Yearly occurs once per year.
type Yearly struct {
	Rule YearlyRule
}

func (Single) String() string    { return "single" }
func (Daily) String() string     { return "daily" }
func (w Weekly) String() string  { return fmt.Sprintf("weekly%d", w.Stride) }
func (m Monthly) String() string { return fmt.Sprintf("monthly%d", int(m.Rule)) }
func (y Yearly) String() string  { return fmt.Sprintf("yearly%d", int(y.Rule)) }

func (Single) Family() Family  { return FamilySingle }
func (Daily) Family() Family   { return FamilyDaily }
func (Weekly) Family() Family  { return FamilyWeekly }
func (Monthly) Family() Family { return FamilyMonthly }
func (Yearly) Family() Family  { return FamilyYearly }

func (Single) Validate() error { return nil }
func (Daily) Validate() error  { return nil }

func (w Weekly) Validate() error {
	if w.Stride < 1 || w.Stride > 4 {
		return fmt.Errorf("%w: weekly stride %d", ErrInvalidPattern, w.Stride)
	}
	return nil
}

func (m Monthly) Validate() error {
	if m.Rule < MonthFirst || m.Rule > MonthDay {
		return fmt.Errorf("%w: monthly rule %d", ErrInvalidPattern, m.Rule)
	}
	return nil
}

func (y Yearly) Validate() error {
	if y.Rule < YearDay || y.Rule > LeapDay {
		return fmt.Errorf("%w: yearly rule %d", ErrInvalidPattern, y.Rule)
	}
	return nil
}

func (Single) checkAnchor(anchor int) error { return checkOrdinal(anchor) }
func (Daily) checkAnchor(int) error         { return nil }
func (Weekly) checkAnchor(anchor int) error { return checkOrdinal(anchor) }

func (m Monthly) checkAnchor(anchor int) error {
	if m.Rule == MonthDay && (anchor < 1 || anchor > 31) {
		return fmt.Errorf("%w: day-of-month %d", ErrInvalidAnchor, anchor)
	}
	return nil
}

func (y Yearly) checkAnchor(anchor int) error {
	if y.Rule == YearDay && (anchor < 1 || anchor > 366) {
		return fmt.Errorf("%w: day-of-year %d", ErrInvalidAnchor, anchor)
	}
	return nil
}

func checkOrdinal(anchor int) error {
	if anchor < MinOrdinal || anchor > MaxOrdinal {
		return fmt.Errorf("%w: ordinal %d", ErrInvalidDate, anchor)
	}
	return nil
}

// ValidateAnchor reports whether anchor is in range for p.
func ValidateAnchor(p Pattern, anchor int) error {
	if p == nil {
		return ErrInvalidPattern
	}
	if err := p.Validate(); err != nil {
		return err
	}
	return p.checkAnchor(anchor)
}

var tags = map[string]Pattern{
	"single":   Single{},
	"daily":    Daily{},
	"weekly1":  Weekly{Stride: 1},
	"weekly2":  Weekly{Stride: 2},
	"weekly3":  Weekly{Stride: 3},
	"weekly4":  Weekly{Stride: 4},
	"monthly1": Monthly{Rule: MonthFirst},
	"monthly2": Monthly{Rule: MonthLast},
	"monthly3": Monthly{Rule: MonthDay},
	"yearly1":  Yearly{Rule: YearDay},
	"yearly2":  Yearly{Rule: FebruaryLast},
	"yearly3":  Yearly{Rule: LeapDay},
}

// ParsePattern decodes a storage tag such as "weekly2".
func ParsePattern(tag string) (Pattern, error) {
	p, ok := tags[tag]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrInvalidPattern, tag)
	}
	return p, nil
}

package source

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// RawEntry is one line of a schedule JSONL file.
//
// A line either describes a schedule in words (frequency, start and the
// rule fields) or carries the stored encoding (pattern and day) as written
// by Encode. When pattern is set the descriptive fields are ignored.
type RawEntry struct {
	ID          string          `json:"id,omitempty"`
	Value       decimal.Decimal `json:"value"`
	Kind        string          `json:"kind"`
	Destination string          `json:"destination"`

	Frequency string `json:"frequency,omitempty"`
	Start     string `json:"start,omitempty"`
	// Monthly is "first", "last" or "day".
	Monthly string `json:"monthly,omitempty"`
	// Stride is the week interval, 1 through 4.
	Stride int `json:"stride,omitempty"`
	// LeapFallback is "feb28" or "mar1", required for yearly Feb 29 starts.
	LeapFallback string `json:"leap_fallback,omitempty"`

	Pattern string `json:"pattern,omitempty"`
	Day     int    `json:"day,omitempty"`
}

// LineError is a rejected line.
type LineError struct {
	Line int
	Err  error
}

func (e LineError) Error() string {
	return fmt.Sprintf("line %d: %v", e.Line, e.Err)
}

func (e LineError) Unwrap() error { return e.Err }

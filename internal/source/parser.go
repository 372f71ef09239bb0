// Package source reads and writes schedule files in JSON Lines format.
package source

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"cloud.google.com/go/civil"

	"github.com/theirongolddev/runway/internal/calendar"
	"github.com/theirongolddev/runway/internal/model"
)

// ParseResult holds the output of parsing one schedule file.
type ParseResult struct {
	Transactions []model.Transaction
	Lines        int
	ParseErrors  int
	Errors       []LineError
	Err          error
}

// ParseFile reads a schedule file. Bad lines are counted and skipped so one
// typo does not block the rest of the import.
func ParseFile(path string) ParseResult {
	f, err := os.Open(path)
	if err != nil {
		return ParseResult{Err: err}
	}
	defer func() { _ = f.Close() }()

	return Parse(f)
}

// Parse reads schedule lines from r. Blank lines and lines starting with #
// are ignored.
func Parse(r io.Reader) ParseResult {
	var res ParseResult

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 || line[0] == '#' {
			continue
		}
		res.Lines++

		t, err := parseLine(line)
		if err != nil {
			res.ParseErrors++
			res.Errors = append(res.Errors, LineError{Line: lineNo, Err: err})
			continue
		}
		res.Transactions = append(res.Transactions, t)
	}
	if err := scanner.Err(); err != nil {
		res.Err = err
	}
	return res
}

func parseLine(line []byte) (model.Transaction, error) {
	var raw RawEntry
	dec := json.NewDecoder(bytes.NewReader(line))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&raw); err != nil {
		return model.Transaction{}, err
	}
	return raw.Transaction()
}

// Transaction converts the entry into a validated transaction.
func (raw RawEntry) Transaction() (model.Transaction, error) {
	kind, err := model.ParseKind(raw.Kind)
	if err != nil {
		return model.Transaction{}, err
	}
	dest, err := model.ParseDestination(raw.Destination)
	if err != nil {
		return model.Transaction{}, err
	}

	t := model.Transaction{
		ID:          raw.ID,
		Value:       raw.Value.Round(2),
		Kind:        kind,
		Destination: dest,
	}

	if raw.Pattern != "" {
		t.Pattern, err = calendar.ParsePattern(raw.Pattern)
		if err != nil {
			return model.Transaction{}, err
		}
		t.Day = raw.Day
	} else {
		choice, err := raw.choice()
		if err != nil {
			return model.Transaction{}, err
		}
		start, err := civil.ParseDate(raw.Start)
		if err != nil {
			return model.Transaction{}, fmt.Errorf("start %q: %w", raw.Start, calendar.ErrInvalidDate)
		}
		t.Pattern, t.Day, err = calendar.Build(choice, start)
		if err != nil {
			return model.Transaction{}, err
		}
	}

	if err := t.Validate(); err != nil {
		return model.Transaction{}, err
	}
	return t, nil
}

func (raw RawEntry) choice() (calendar.Choice, error) {
	fam, err := calendar.ParseFamily(raw.Frequency)
	if err != nil {
		return calendar.Choice{}, err
	}
	c := calendar.Choice{Family: fam, Stride: raw.Stride}
	if fam == calendar.FamilyWeekly && c.Stride == 0 {
		c.Stride = 1
	}
	if fam == calendar.FamilyMonthly {
		c.MonthlyRule, err = ParseMonthlyRule(raw.Monthly)
		if err != nil {
			return calendar.Choice{}, err
		}
	}
	if raw.LeapFallback != "" {
		c.LeapFallback, err = ParseLeapFallback(raw.LeapFallback)
		if err != nil {
			return calendar.Choice{}, err
		}
	}
	return c, nil
}

// ParseMonthlyRule accepts "first", "last" or "day". Empty means "day".
func ParseMonthlyRule(s string) (calendar.MonthlyRule, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "first":
		return calendar.MonthFirst, nil
	case "last":
		return calendar.MonthLast, nil
	case "", "day", "same":
		return calendar.MonthDay, nil
	}
	return 0, fmt.Errorf("%w: monthly rule %q", calendar.ErrInvalidPattern, s)
}

// ParseLeapFallback accepts "feb28" or "mar1".
func ParseLeapFallback(s string) (calendar.YearlyRule, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "feb28", "02-28":
		return calendar.FebruaryLast, nil
	case "mar1", "03-01":
		return calendar.LeapDay, nil
	}
	return 0, fmt.Errorf("%w: leap fallback %q", calendar.ErrInvalidPattern, s)
}

// Encode writes txns in the stored form, one per line, so the output can be
// imported back as-is.
func Encode(w io.Writer, txns []model.Transaction) error {
	enc := json.NewEncoder(w)
	for _, t := range txns {
		raw := RawEntry{
			ID:          t.ID,
			Value:       t.Value,
			Kind:        string(t.Kind),
			Destination: string(t.Destination),
			Pattern:     t.Pattern.String(),
			Day:         t.Day,
		}
		if err := enc.Encode(raw); err != nil {
			return err
		}
	}
	return nil
}

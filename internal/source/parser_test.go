package source

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"

	"github.com/theirongolddev/runway/internal/calendar"
	"github.com/theirongolddev/runway/internal/model"
)

// writeSchedule creates a temp JSONL file and returns its path.
func writeSchedule(t *testing.T, lines ...string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "schedule.jsonl")
	if err := os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func mustDecimal(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	if err != nil {
		t.Fatal(err)
	}
	return d
}

func TestParseFile_Descriptive(t *testing.T) {
	path := writeSchedule(t,
		`# paychecks and bills`,
		`{"value":"1450.5","kind":"credit","destination":"spending","frequency":"weekly","stride":2,"start":"2024-01-05"}`,
		``,
		`{"value":900,"kind":"debit","destination":"spending","frequency":"monthly","monthly":"first","start":"2024-01-01"}`,
		`{"value":"45.99","kind":"debit","destination":"spending","frequency":"monthly","start":"2024-01-31"}`,
		`{"value":"800","kind":"debit","destination":"spending","frequency":"yearly","leap_fallback":"mar1","start":"2024-02-29"}`,
		`{"value":"20","kind":"credit","destination":"savings","frequency":"once","start":"2024-03-10"}`,
	)

	res := ParseFile(path)
	if res.Err != nil {
		t.Fatalf("unexpected error: %v", res.Err)
	}
	if res.Lines != 5 || res.ParseErrors != 0 {
		t.Fatalf("Lines = %d, ParseErrors = %d (%v)", res.Lines, res.ParseErrors, res.Errors)
	}

	want := []struct {
		pattern calendar.Pattern
		day     int
		value   string
	}{
		{calendar.Weekly{Stride: 2}, calendar.Ordinal(civil.Date{Year: 2024, Month: 1, Day: 5}), "1450.50"},
		{calendar.Monthly{Rule: calendar.MonthFirst}, 1, "900.00"},
		{calendar.Monthly{Rule: calendar.MonthDay}, 31, "45.99"},
		{calendar.Yearly{Rule: calendar.LeapDay}, 60, "800.00"},
		{calendar.Single{}, calendar.Ordinal(civil.Date{Year: 2024, Month: 3, Day: 10}), "20.00"},
	}
	for i, w := range want {
		got := res.Transactions[i]
		if got.Pattern != w.pattern || got.Day != w.day || got.Value.StringFixed(2) != w.value {
			t.Errorf("transaction %d = {%s %d %s}, want {%s %d %s}", i, got.Pattern, got.Day, got.Value.StringFixed(2), w.pattern, w.day, w.value)
		}
	}
	if res.Transactions[4].Destination != model.Savings || res.Transactions[4].Kind != model.Credit {
		t.Errorf("savings transfer = %+v", res.Transactions[4])
	}
}

func TestParse_BadLinesAreCounted(t *testing.T) {
	input := strings.Join([]string{
		`{"value":"10","kind":"refund","destination":"spending","frequency":"daily","start":"2024-01-01"}`,
		`{"value":"10","kind":"debit","destination":"spending","frequency":"fortnightly","start":"2024-01-01"}`,
		`{"value":"10","kind":"debit","destination":"spending","frequency":"yearly","start":"2024-02-29"}`,
		`{"value":"10","kind":"debit","destination":"spending","pattern":"monthly3","day":45}`,
		`{"value":"10","kind":"debit","destination":"spending","frequency":"daily","start":"2024-01-01","color":"red"}`,
		`not json`,
		`{"value":"10","kind":"debit","destination":"spending","frequency":"daily","start":"2024-01-01"}`,
	}, "\n")

	res := Parse(strings.NewReader(input))
	if res.Lines != 7 || res.ParseErrors != 6 || len(res.Transactions) != 1 {
		t.Fatalf("Lines = %d, ParseErrors = %d, Transactions = %d", res.Lines, res.ParseErrors, len(res.Transactions))
	}

	checks := []error{
		model.ErrInvalidTransaction,
		calendar.ErrInvalidPattern,
		calendar.ErrInvalidPattern,
		calendar.ErrInvalidAnchor,
	}
	for i, want := range checks {
		if !errors.Is(res.Errors[i], want) {
			t.Errorf("error %d = %v, want %v", i, res.Errors[i], want)
		}
		if res.Errors[i].Line != i+1 {
			t.Errorf("error %d line = %d, want %d", i, res.Errors[i].Line, i+1)
		}
	}
}

func TestEncodeRoundTrip(t *testing.T) {
	txns := []model.Transaction{{
		ID: "abc", Value: mustDecimal(t, "12.30"), Kind: model.Debit, Destination: model.Spending,
		Pattern: calendar.Weekly{Stride: 3}, Day: 738900, Revision: 4,
	}}

	var buf bytes.Buffer
	if err := Encode(&buf, txns); err != nil {
		t.Fatalf("Encode: %v", err)
	}
	res := Parse(&buf)
	if res.ParseErrors != 0 || len(res.Transactions) != 1 {
		t.Fatalf("reparse = %+v", res)
	}
	got := res.Transactions[0]
	if got.ID != "abc" || got.Pattern != (calendar.Weekly{Stride: 3}) || got.Day != 738900 || !got.Value.Equal(txns[0].Value) {
		t.Fatalf("reparsed = %+v", got)
	}
}

func TestScanPath(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"b.jsonl", "a.jsonl", "notes.txt"} {
		if err := os.WriteFile(filepath.Join(dir, name), nil, 0o600); err != nil {
			t.Fatal(err)
		}
	}

	files, err := ScanPath(dir)
	if err != nil {
		t.Fatalf("ScanPath: %v", err)
	}
	if len(files) != 2 || filepath.Base(files[0]) != "a.jsonl" || filepath.Base(files[1]) != "b.jsonl" {
		t.Fatalf("files = %v", files)
	}

	single, err := ScanPath(files[1])
	if err != nil || len(single) != 1 {
		t.Fatalf("ScanPath(file) = %v, %v", single, err)
	}
}

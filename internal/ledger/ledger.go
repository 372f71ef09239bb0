// Package ledger replays scheduled transactions against a balance pair.
package ledger

import (
	"fmt"

	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"

	"github.com/theirongolddev/runway/internal/calendar"
	"github.com/theirongolddev/runway/internal/model"
)

// TransactionError ties an engine failure to the transaction that caused it.
type TransactionError struct {
	ID  string
	Err error
}

func (e *TransactionError) Error() string {
	return fmt.Sprintf("transaction %s: %v", e.ID, e.Err)
}

func (e *TransactionError) Unwrap() error { return e.Err }

// Apply returns the balances after one occurrence of t.
//
// Savings movements are transfers through the spending pool: a credit to
// savings leaves spending, a debit from savings returns to it.
func Apply(t model.Transaction, spending, savings decimal.Decimal) (decimal.Decimal, decimal.Decimal) {
	v := t.Value
	switch t.Destination {
	case model.Spending:
		switch t.Kind {
		case model.Credit:
			spending = spending.Add(v)
		case model.Debit:
			spending = spending.Sub(v)
		}
	case model.Savings:
		switch t.Kind {
		case model.Credit:
			spending = spending.Sub(v)
			savings = savings.Add(v)
		case model.Debit:
			spending = spending.Add(v)
			savings = savings.Sub(v)
		}
	}
	return spending.Round(2), savings.Round(2)
}

// Occurrences lists t's occurrences after `after` through `through`
// inclusive. A single transaction yields its date at most once, even when
// that date is not after `after`.
func Occurrences(t model.Transaction, after, through civil.Date) ([]civil.Date, error) {
	if err := t.Validate(); err != nil {
		return nil, &TransactionError{ID: t.ID, Err: err}
	}

	var out []civil.Date
	next, err := calendar.Next(after, t.Pattern, t.Day)
	for err == nil && !next.After(through) {
		out = append(out, next)
		if t.IsSingle() {
			break
		}
		next, err = calendar.Next(next, t.Pattern, t.Day)
	}
	if err != nil {
		return nil, &TransactionError{ID: t.ID, Err: err}
	}
	return out, nil
}

// Replay applies every occurrence after lastUpdate through target. Each
// transaction is walked independently, so their order does not matter.
func Replay(lastUpdate civil.Date, spending, savings decimal.Decimal, txns []model.Transaction, target civil.Date) (decimal.Decimal, decimal.Decimal, error) {
	for _, t := range txns {
		occ, err := Occurrences(t, lastUpdate, target)
		if err != nil {
			return spending, savings, err
		}
		for range occ {
			spending, savings = Apply(t, spending, savings)
		}
	}
	return spending.Round(2), savings.Round(2), nil
}

package pipeline

import (
	"sort"

	"cloud.google.com/go/civil"

	"github.com/theirongolddev/runway/internal/calendar"
	"github.com/theirongolddev/runway/internal/ledger"
	"github.com/theirongolddev/runway/internal/model"
)

// Entry is a scheduled transaction with its next occurrence after today.
type Entry struct {
	Transaction model.Transaction
	Next        civil.Date
}

// Upcoming pairs each transaction with its next occurrence and sorts the
// result by date, then id.
func Upcoming(txns []model.Transaction, today civil.Date) ([]Entry, error) {
	entries := make([]Entry, 0, len(txns))
	for _, t := range txns {
		next, err := calendar.Next(today, t.Pattern, t.Day)
		if err != nil {
			return nil, &ledger.TransactionError{ID: t.ID, Err: err}
		}
		entries = append(entries, Entry{Transaction: t, Next: next})
	}
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].Next != entries[j].Next {
			return entries[i].Next.Before(entries[j].Next)
		}
		return entries[i].Transaction.ID < entries[j].Transaction.ID
	})
	return entries, nil
}

// SplitIncome partitions entries into money coming into spending (income,
// savings withdrawals) and money leaving it (payments, savings deposits).
func SplitIncome(entries []Entry) (credits, debits []Entry) {
	for _, e := range entries {
		if e.Transaction.IsIncome() {
			credits = append(credits, e)
		} else {
			debits = append(debits, e)
		}
	}
	return credits, debits
}

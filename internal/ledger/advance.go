package ledger

import (
	"cloud.google.com/go/civil"

	"github.com/theirongolddev/runway/internal/calendar"
	"github.com/theirongolddev/runway/internal/model"
)

// Result is the outcome of advancing an owner's books to a new day.
type Result struct {
	Funds model.Funds
	// Transactions is the surviving schedule with rewritten anchors.
	Transactions []model.Transaction
	// Update is what the caller must persist.
	Update model.Update
	// Applied counts the occurrences replayed.
	Applied int
}

// Advance brings funds up to today. Recurring transactions that occurred get
// their anchor moved to the last occurrence's cursor, and single transactions
// that occurred are dropped. When funds are already current it returns the
// inputs unchanged with an empty update.
//
// The input slice is not modified.
func Advance(funds model.Funds, txns []model.Transaction, today civil.Date) (Result, error) {
	if !funds.LastUpdate.Before(today) {
		return Result{Funds: funds, Transactions: txns}, nil
	}

	var (
		res      Result
		spending = funds.Spending
		savings  = funds.Savings
	)
	res.Transactions = make([]model.Transaction, 0, len(txns))

	for _, t := range txns {
		occ, err := Occurrences(t, funds.LastUpdate, today)
		if err != nil {
			return Result{}, err
		}
		for range occ {
			spending, savings = Apply(t, spending, savings)
		}
		res.Applied += len(occ)

		if len(occ) == 0 {
			res.Transactions = append(res.Transactions, t)
			continue
		}
		if t.IsSingle() {
			res.Update.Deletes = append(res.Update.Deletes, t.ID)
			continue
		}

		if day := calendar.Cursor(t.Pattern, occ[len(occ)-1], t.Day); day != t.Day {
			t.Day = day
			t.Revision++
			res.Update.Anchors = append(res.Update.Anchors, model.AnchorUpdate{
				ID:       t.ID,
				Day:      t.Day,
				Revision: t.Revision,
			})
		}
		res.Transactions = append(res.Transactions, t)
	}

	funds.Spending = spending
	funds.Savings = savings
	funds.LastUpdate = today
	res.Funds = funds
	persisted := funds
	res.Update.Funds = &persisted
	return res, nil
}

// Package projection simulates the schedule forward to find the lowest point
// of the spending balance.
package projection

import (
	"sort"

	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"

	"github.com/theirongolddev/runway/internal/calendar"
	"github.com/theirongolddev/runway/internal/ledger"
	"github.com/theirongolddev/runway/internal/model"
)

// Point is the balance pair at the end of a day with activity.
type Point struct {
	Date     civil.Date
	Spending decimal.Decimal
	Savings  decimal.Decimal
}

// FarthestRelevantDate returns the latest next occurrence after today among
// transactions that lower spending. Income never extends the horizon. With
// no such transaction the horizon is today.
func FarthestRelevantDate(txns []model.Transaction, today civil.Date) (civil.Date, error) {
	farthest := today
	for _, t := range txns {
		if err := t.Validate(); err != nil {
			return civil.Date{}, &ledger.TransactionError{ID: t.ID, Err: err}
		}
		next, err := calendar.Next(today, t.Pattern, t.Day)
		if err != nil {
			return civil.Date{}, &ledger.TransactionError{ID: t.ID, Err: err}
		}
		if next.After(farthest) && t.DrainsSpending() {
			farthest = next
		}
	}
	return farthest, nil
}

// Project simulates every day from tomorrow through horizon and reports the
// lowest spending balance reached, with the savings balance on that day.
//
// The minimum starts at the current spending balance. A new low is recorded
// each day the simulated balance sits below the recorded one, and a recorded
// low below zero is stored as zero, so a balance that stays negative keeps
// moving LowDate forward. LowDate is today when nothing is recorded.
func Project(spending, savings decimal.Decimal, txns []model.Transaction, today, horizon civil.Date) (model.Projection, error) {
	p := model.Projection{
		MinSpending:  spending,
		SavingsAtMin: savings,
		LowDate:      today,
		Horizon:      horizon,
	}
	days, err := simulate(spending, savings, txns, today, horizon)
	if err != nil {
		return model.Projection{}, err
	}

	running := Point{Spending: spending, Savings: savings}
	record := func(d civil.Date) {
		p.LowDate = d
		p.SavingsAtMin = running.Savings
		p.MinSpending = running.Spending
		if !p.MinSpending.IsPositive() {
			p.MinSpending = decimal.Zero
		}
	}

	for _, day := range days {
		// Quiet days between events repeat the last balance.
		if running.Spending.LessThan(p.MinSpending) {
			record(day.Date.AddDays(-1))
		}
		running = day
		if running.Spending.LessThan(p.MinSpending) {
			record(day.Date)
		}
	}
	if running.Spending.LessThan(p.MinSpending) {
		record(horizon)
	}
	return p, nil
}

// Series returns the balances after each day that has at least one
// occurrence, from tomorrow through horizon.
func Series(spending, savings decimal.Decimal, txns []model.Transaction, today, horizon civil.Date) ([]Point, error) {
	return simulate(spending, savings, txns, today, horizon)
}

type event struct {
	date civil.Date
	txn  int
}

func simulate(spending, savings decimal.Decimal, txns []model.Transaction, today, horizon civil.Date) ([]Point, error) {
	if !today.Before(horizon) {
		return nil, nil
	}
	first := today.AddDays(1)

	var events []event
	for i, t := range txns {
		occ, err := ledger.Occurrences(t, today, horizon)
		if err != nil {
			return nil, err
		}
		for _, d := range occ {
			// A single dated on or before today is still pending and lands
			// on the first simulated day.
			if d.Before(first) {
				d = first
			}
			events = append(events, event{date: d, txn: i})
		}
	}
	sort.SliceStable(events, func(i, j int) bool {
		return events[i].date.Before(events[j].date)
	})

	var points []Point
	for i := 0; i < len(events); {
		day := events[i].date
		for ; i < len(events) && events[i].date == day; i++ {
			spending, savings = ledger.Apply(txns[events[i].txn], spending, savings)
		}
		points = append(points, Point{Date: day, Spending: spending, Savings: savings})
	}
	return points, nil
}

// Package pipeline ties the engine to storage: it advances an owner's books
// to today and projects the low point ahead.
package pipeline

import (
	"context"
	"fmt"

	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"

	"github.com/theirongolddev/runway/internal/calendar"
	"github.com/theirongolddev/runway/internal/ledger"
	"github.com/theirongolddev/runway/internal/logger"
	"github.com/theirongolddev/runway/internal/model"
	"github.com/theirongolddev/runway/internal/projection"
	"github.com/theirongolddev/runway/internal/store"
)

// Report is everything a refresh computes for one owner.
type Report struct {
	Funds        model.Funds
	Transactions []model.Transaction
	Projection   model.Projection
	// Applied counts occurrences replayed while catching up.
	Applied int
	Update  model.Update
}

// Refresh advances funds to today and projects to the horizon. It is pure;
// persisting Update is the caller's job.
func Refresh(funds model.Funds, txns []model.Transaction, today civil.Date) (*Report, error) {
	adv, err := ledger.Advance(funds, txns, today)
	if err != nil {
		return nil, fmt.Errorf("advancing to %s: %w", today, err)
	}

	horizon, err := projection.FarthestRelevantDate(adv.Transactions, today)
	if err != nil {
		return nil, fmt.Errorf("finding horizon: %w", err)
	}
	proj, err := projection.Project(adv.Funds.Spending, adv.Funds.Savings, adv.Transactions, today, horizon)
	if err != nil {
		return nil, fmt.Errorf("projecting to %s: %w", horizon, err)
	}

	return &Report{
		Funds:        adv.Funds,
		Transactions: adv.Transactions,
		Projection:   proj,
		Applied:      adv.Applied,
		Update:       adv.Update,
	}, nil
}

// RefreshOwner loads owner, refreshes it and persists the result atomically.
// Unseeded owners are refused with store.ErrNotSeeded.
func RefreshOwner(ctx context.Context, st *store.Store, owner string, today civil.Date) (*Report, error) {
	var rep *Report
	err := st.Mutate(ctx, owner, func(funds model.Funds, txns []model.Transaction) (model.Update, error) {
		if !funds.Seeded {
			return model.Update{}, fmt.Errorf("owner %q: %w", owner, store.ErrNotSeeded)
		}
		r, err := Refresh(funds, txns, today)
		if err != nil {
			return model.Update{}, err
		}
		rep = r
		return r.Update, nil
	})
	if err != nil {
		return nil, err
	}
	l := logger.FromContext(ctx)
	l.Debug().
		Str("owner", owner).
		Int("applied", rep.Applied).
		Str("low", rep.Projection.MinSpending.StringFixed(2)).
		Str("low_date", rep.Projection.LowDate.String()).
		Msg("owner refreshed")
	return rep, nil
}

// Instant records an immediate one-off movement. The books are brought up
// to today first so the movement lands on current balances.
func Instant(ctx context.Context, st *store.Store, owner string, t model.Transaction, today civil.Date) (model.Funds, error) {
	t.Value = t.Value.Round(2)
	if t.Pattern == nil {
		t.Pattern, t.Day = calendar.Single{}, calendar.Ordinal(today)
	}
	if err := t.Validate(); err != nil {
		return model.Funds{}, err
	}

	var out model.Funds
	err := st.Mutate(ctx, owner, func(funds model.Funds, txns []model.Transaction) (model.Update, error) {
		if !funds.Seeded {
			return model.Update{}, fmt.Errorf("owner %q: %w", owner, store.ErrNotSeeded)
		}
		adv, err := ledger.Advance(funds, txns, today)
		if err != nil {
			return model.Update{}, err
		}
		f := adv.Funds
		f.Spending, f.Savings = ledger.Apply(t, f.Spending, f.Savings)
		out = f

		up := adv.Update
		up.Funds = &f
		return up, nil
	})
	return out, err
}

// Forecast returns the day-by-day balances from tomorrow through `through`.
// A zero `through` means the projection horizon.
func Forecast(funds model.Funds, txns []model.Transaction, today, through civil.Date) (civil.Date, []projection.Point, error) {
	adv, err := ledger.Advance(funds, txns, today)
	if err != nil {
		return civil.Date{}, nil, err
	}
	if through == (civil.Date{}) {
		through, err = projection.FarthestRelevantDate(adv.Transactions, today)
		if err != nil {
			return civil.Date{}, nil, err
		}
	}
	points, err := projection.Series(adv.Funds.Spending, adv.Funds.Savings, adv.Transactions, today, through)
	return through, points, err
}

// Shortfall reports whether the projected low point is under threshold.
func Shortfall(p model.Projection, threshold decimal.Decimal) bool {
	return p.MinSpending.LessThan(threshold)
}

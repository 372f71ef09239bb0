package model

import (
	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"
)

// Funds holds one owner's balances as of LastUpdate.
type Funds struct {
	Owner    string
	Spending decimal.Decimal
	Savings  decimal.Decimal

	// LastUpdate is the date through which both balances reflect every
	// applicable occurrence.
	LastUpdate civil.Date

	// Seeded is set once the owner has entered a starting amount.
	Seeded bool
}

// Projection is the projected low point of the spending balance.
type Projection struct {
	MinSpending  decimal.Decimal
	SavingsAtMin decimal.Decimal
	LowDate      civil.Date
	Horizon      civil.Date
}

// AnchorUpdate rewrites one transaction's anchor. Revision is the new value;
// the stored row must still hold Revision-1.
type AnchorUpdate struct {
	ID       string
	Day      int
	Revision int
}

// Update is the set of changes a refresh produces. Callers persist it
// atomically so storage never diverges from what was computed.
type Update struct {
	Funds   *Funds
	Anchors []AnchorUpdate
	Deletes []string
}

// IsZero reports whether u changes nothing.
func (u Update) IsZero() bool {
	return u.Funds == nil && len(u.Anchors) == 0 && len(u.Deletes) == 0
}

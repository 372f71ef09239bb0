// Package model defines domain types for scheduled transactions and balances.
package model

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/theirongolddev/runway/internal/calendar"
)

// ErrInvalidTransaction marks transactions with a bad kind, destination or value.
var ErrInvalidTransaction = errors.New("invalid transaction")

// Kind is the direction of a movement relative to its destination.
type Kind string

const (
	Credit Kind = "credit"
	Debit  Kind = "debit"
)

// Destination is the balance a movement targets.
type Destination string

const (
	Spending Destination = "spending"
	Savings  Destination = "savings"
)

// ParseKind validates a stored or user-supplied kind.
func ParseKind(s string) (Kind, error) {
	switch Kind(s) {
	case Credit, Debit:
		return Kind(s), nil
	}
	return "", fmt.Errorf("%w: kind %q", ErrInvalidTransaction, s)
}

// ParseDestination validates a stored or user-supplied destination.
func ParseDestination(s string) (Destination, error) {
	switch Destination(s) {
	case Spending, Savings:
		return Destination(s), nil
	}
	return "", fmt.Errorf("%w: destination %q", ErrInvalidTransaction, s)
}

// Transaction is a recurring or one-time movement of money.
type Transaction struct {
	ID          string
	Value       decimal.Decimal
	Kind        Kind
	Destination Destination
	Pattern     calendar.Pattern

	// Day is the pattern anchor. The engine rewrites it as cycles roll
	// forward, and bumps Revision each time it does.
	Day      int
	Revision int

	CreatedAt time.Time
}

// Validate checks everything the engine relies on.
func (t Transaction) Validate() error {
	if _, err := ParseKind(string(t.Kind)); err != nil {
		return err
	}
	if _, err := ParseDestination(string(t.Destination)); err != nil {
		return err
	}
	if t.Value.IsNegative() {
		return fmt.Errorf("%w: negative value %s", ErrInvalidTransaction, t.Value)
	}
	return calendar.ValidateAnchor(t.Pattern, t.Day)
}

// IsSingle reports whether t occurs only once.
func (t Transaction) IsSingle() bool {
	_, ok := t.Pattern.(calendar.Single)
	return ok
}

// DrainsSpending reports whether t lowers the spending balance: debits
// from spending and transfers into savings.
func (t Transaction) DrainsSpending() bool {
	switch t.Destination {
	case Spending:
		return t.Kind == Debit
	case Savings:
		return t.Kind == Credit
	}
	return false
}

// IsIncome reports whether t adds to spending, for schedule listings.
func (t Transaction) IsIncome() bool {
	return !t.DrainsSpending()
}

// Package notify delivers shortfall alerts.
package notify

import (
	"context"
	"fmt"
	"strings"

	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"
)

// Alert describes a projected drop below the configured threshold.
type Alert struct {
	Owner       string
	MinSpending decimal.Decimal
	LowDate     civil.Date
	Threshold   decimal.Decimal
	Currency    string
}

// Message renders the alert as a single chat line.
func (a Alert) Message() string {
	cur := a.Currency
	if cur == "" {
		cur = "$"
	}
	return fmt.Sprintf("runway: %s projected to reach %s%s on %s (threshold %s%s)",
		a.Owner, cur, a.MinSpending.StringFixed(2), a.LowDate, cur, a.Threshold.StringFixed(2))
}

// Notifier sends alerts somewhere a person will see them.
type Notifier interface {
	Notify(ctx context.Context, a Alert) error
}

// Nop discards alerts.
type Nop struct{}

func (Nop) Notify(context.Context, Alert) error { return nil }

// Multi fans an alert out to several notifiers and joins their errors.
type Multi []Notifier

func (m Multi) Notify(ctx context.Context, a Alert) error {
	var msgs []string
	for _, n := range m {
		if err := n.Notify(ctx, a); err != nil {
			msgs = append(msgs, err.Error())
		}
	}
	if len(msgs) > 0 {
		return fmt.Errorf("notify: %s", strings.Join(msgs, "; "))
	}
	return nil
}

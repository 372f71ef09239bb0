package store

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/theirongolddev/runway/internal/calendar"
	"github.com/theirongolddev/runway/internal/model"
)

// CreateTransaction validates t and adds it to owner's schedule. An empty
// ID is replaced with a fresh UUID. The stored transaction is returned.
func (s *Store) CreateTransaction(ctx context.Context, owner string, t model.Transaction) (model.Transaction, error) {
	if err := t.Validate(); err != nil {
		return model.Transaction{}, err
	}
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	if t.CreatedAt.IsZero() {
		t.CreatedAt = time.Now().UTC()
	}
	t.Value = t.Value.Round(2)

	if _, err := s.getFunds(ctx, s.db, owner, ""); err != nil {
		return model.Transaction{}, err
	}
	_, err := s.db.ExecContext(ctx, s.rebind(`INSERT INTO schedule
		(id, owner, value, kind, destination, pattern, day, revision, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`),
		t.ID, owner, t.Value.StringFixed(2), string(t.Kind), string(t.Destination),
		t.Pattern.String(), t.Day, t.Revision, t.CreatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return model.Transaction{}, fmt.Errorf("inserting transaction: %w", err)
	}
	return t, nil
}

// DeleteTransaction removes one of owner's scheduled transactions.
func (s *Store) DeleteTransaction(ctx context.Context, owner, id string) error {
	res, err := s.db.ExecContext(ctx, s.rebind("DELETE FROM schedule WHERE id = ? AND owner = ?"), id, owner)
	if err != nil {
		return fmt.Errorf("deleting transaction: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("transaction %s: %w", id, ErrNotFound)
	}
	return nil
}

// ListTransactions returns owner's schedule in creation order.
func (s *Store) ListTransactions(ctx context.Context, owner string) ([]model.Transaction, error) {
	return s.listTransactions(ctx, s.db, owner)
}

func (s *Store) listTransactions(ctx context.Context, q querier, owner string) ([]model.Transaction, error) {
	rows, err := q.QueryContext(ctx, s.rebind(`SELECT
		id, value, kind, destination, pattern, day, revision, created_at
		FROM schedule WHERE owner = ? ORDER BY created_at, id`), owner)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var txns []model.Transaction
	for rows.Next() {
		var t model.Transaction
		var kind, dest, pattern, created string
		if err := rows.Scan(&t.ID, &t.Value, &kind, &dest, &pattern, &t.Day, &t.Revision, &created); err != nil {
			return nil, err
		}
		t.Kind = model.Kind(kind)
		t.Destination = model.Destination(dest)
		t.Pattern, err = calendar.ParsePattern(pattern)
		if err != nil {
			return nil, fmt.Errorf("transaction %s: %w", t.ID, err)
		}
		t.CreatedAt, _ = time.Parse(time.RFC3339, created)
		txns = append(txns, t)
	}
	return txns, rows.Err()
}

package store

import (
	"context"
	"fmt"

	"github.com/theirongolddev/runway/internal/model"
)

// MutateFunc computes the changes to persist from an owner's current state.
type MutateFunc func(funds model.Funds, txns []model.Transaction) (model.Update, error)

// Mutate runs fn against owner's funds and schedule and persists the update
// it returns in the same database transaction. Calls for one owner are
// serialized within the process; across processes the database lock does
// the same. If fn fails nothing is written.
//
// Anchor updates only apply to rows still at Revision-1. Any mismatch rolls
// everything back with ErrConflict.
func (s *Store) Mutate(ctx context.Context, owner string, fn MutateFunc) error {
	mu := s.ownerLock(owner)
	mu.Lock()
	defer mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning refresh: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	funds, err := s.getFunds(ctx, tx, owner, s.forUpdate())
	if err != nil {
		return err
	}
	txns, err := s.listTransactions(ctx, tx, owner)
	if err != nil {
		return fmt.Errorf("reading schedule: %w", err)
	}

	up, err := fn(funds, txns)
	if err != nil {
		return err
	}
	if up.IsZero() {
		return nil
	}

	if up.Funds != nil {
		f := *up.Funds
		f.Owner = owner
		if err := s.putFunds(ctx, tx, f); err != nil {
			return err
		}
	}
	for _, a := range up.Anchors {
		res, err := tx.ExecContext(ctx, s.rebind(`UPDATE schedule SET day = ?, revision = ?
			WHERE id = ? AND owner = ? AND revision = ?`),
			a.Day, a.Revision, a.ID, owner, a.Revision-1)
		if err != nil {
			return fmt.Errorf("updating anchor %s: %w", a.ID, err)
		}
		if n, err := res.RowsAffected(); err != nil || n != 1 {
			return fmt.Errorf("transaction %s at revision %d: %w", a.ID, a.Revision-1, ErrConflict)
		}
	}
	for _, id := range up.Deletes {
		if _, err := tx.ExecContext(ctx, s.rebind("DELETE FROM schedule WHERE id = ? AND owner = ?"), id, owner); err != nil {
			return fmt.Errorf("deleting %s: %w", id, err)
		}
	}

	return tx.Commit()
}

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"

	"github.com/theirongolddev/runway/internal/model"
)

// Owner is a named budgeting profile.
type Owner struct {
	Name      string
	CreatedAt time.Time
}

// CreateOwner registers an owner with zero balances as of today.
func (s *Store) CreateOwner(ctx context.Context, name string, today civil.Date) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	var exists int
	err = tx.QueryRowContext(ctx, s.rebind("SELECT COUNT(*) FROM owners WHERE name = ?"), name).Scan(&exists)
	if err != nil {
		return fmt.Errorf("checking owner: %w", err)
	}
	if exists > 0 {
		return fmt.Errorf("owner %q: %w", name, ErrExists)
	}

	now := time.Now().UTC().Format(time.RFC3339)
	if _, err := tx.ExecContext(ctx, s.rebind("INSERT INTO owners (name, created_at) VALUES (?, ?)"), name, now); err != nil {
		return fmt.Errorf("inserting owner: %w", err)
	}
	_, err = tx.ExecContext(ctx, s.rebind(`INSERT INTO funds (owner, spending, savings, last_update, seeded)
		VALUES (?, ?, ?, ?, 0)`), name, decimal.Zero.String(), decimal.Zero.String(), today.String())
	if err != nil {
		return fmt.Errorf("inserting funds: %w", err)
	}
	return tx.Commit()
}

// ListOwners returns all owners by name.
func (s *Store) ListOwners(ctx context.Context) ([]Owner, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT name, created_at FROM owners ORDER BY name")
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var owners []Owner
	for rows.Next() {
		var o Owner
		var created string
		if err := rows.Scan(&o.Name, &created); err != nil {
			return nil, err
		}
		o.CreatedAt, _ = time.Parse(time.RFC3339, created)
		owners = append(owners, o)
	}
	return owners, rows.Err()
}

// GetFunds reads an owner's balances without advancing them.
func (s *Store) GetFunds(ctx context.Context, owner string) (model.Funds, error) {
	return s.getFunds(ctx, s.db, owner, "")
}

// Seed adds the starting amount to spending and marks the owner seeded.
// Seeding twice adds twice.
func (s *Store) Seed(ctx context.Context, owner string, amount decimal.Decimal) (model.Funds, error) {
	var out model.Funds
	err := s.Mutate(ctx, owner, func(f model.Funds, _ []model.Transaction) (model.Update, error) {
		f.Spending = f.Spending.Add(amount).Round(2)
		f.Seeded = true
		out = f
		return model.Update{Funds: &f}, nil
	})
	return out, err
}

func (s *Store) getFunds(ctx context.Context, q querier, owner, suffix string) (model.Funds, error) {
	var (
		f          = model.Funds{Owner: owner}
		lastUpdate string
		seeded     int
	)
	err := q.QueryRowContext(ctx, s.rebind(`SELECT spending, savings, last_update, seeded
		FROM funds WHERE owner = ?`+suffix), owner).Scan(&f.Spending, &f.Savings, &lastUpdate, &seeded)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Funds{}, fmt.Errorf("owner %q: %w", owner, ErrNotFound)
	}
	if err != nil {
		return model.Funds{}, fmt.Errorf("reading funds: %w", err)
	}
	f.LastUpdate, err = civil.ParseDate(lastUpdate)
	if err != nil {
		return model.Funds{}, fmt.Errorf("funds for %q: last_update %q: %w", owner, lastUpdate, err)
	}
	f.Seeded = seeded != 0
	return f, nil
}

func (s *Store) putFunds(ctx context.Context, q querier, f model.Funds) error {
	seeded := 0
	if f.Seeded {
		seeded = 1
	}
	res, err := q.ExecContext(ctx, s.rebind(`UPDATE funds
		SET spending = ?, savings = ?, last_update = ?, seeded = ?
		WHERE owner = ?`),
		f.Spending.StringFixed(2), f.Savings.StringFixed(2), f.LastUpdate.String(), seeded, f.Owner)
	if err != nil {
		return fmt.Errorf("updating funds: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("owner %q: %w", f.Owner, ErrNotFound)
	}
	return nil
}

package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/MrJamesThe3rd/cardcycle/internal/obligation"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

type scanner interface {
	Scan(dest ...any) error
}

// Expected column order: id, description, amount, due_date, recurring,
// preferred_day, last_sent_at, active
func scanObligation(s scanner) (*obligation.Obligation, error) {
	var (
		o        obligation.Obligation
		lastSent sql.NullTime
	)

	if err := s.Scan(
		&o.ID, &o.Description, &o.Amount, &o.DueDate, &o.Recurring,
		&o.PreferredDay, &lastSent, &o.Active,
	); err != nil {
		return nil, err
	}

	if lastSent.Valid {
		o.LastSentAt = &lastSent.Time
	}

	return &o, nil
}

const selectObligationColumns = `
	id, description, amount, due_date, recurring, preferred_day, last_sent_at, active
`

func (s *Store) Create(ctx context.Context, o *obligation.Obligation) error {
	query := `
		INSERT INTO recurring_obligations (description, amount, due_date, recurring, preferred_day, active)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`

	err := s.db.QueryRowContext(ctx, query,
		o.Description,
		o.Amount,
		o.DueDate,
		o.Recurring,
		o.PreferredDay,
		o.Active,
	).Scan(&o.ID)
	if err != nil {
		return fmt.Errorf("creating obligation: %w", err)
	}

	return nil
}

func (s *Store) ListActive(ctx context.Context) ([]*obligation.Obligation, error) {
	query := `SELECT ` + selectObligationColumns + `
		FROM recurring_obligations
		WHERE active
		ORDER BY due_date ASC, id ASC`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("listing obligations: %w", err)
	}
	defer rows.Close()

	var out []*obligation.Obligation

	for rows.Next() {
		o, err := scanObligation(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning obligation: %w", err)
		}

		out = append(out, o)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating obligation rows: %w", err)
	}

	return out, nil
}

func (s *Store) Update(ctx context.Context, o *obligation.Obligation) error {
	query := `
		UPDATE recurring_obligations
		SET description = $1, amount = $2, due_date = $3, recurring = $4,
			preferred_day = $5, last_sent_at = $6, active = $7, updated_at = NOW()
		WHERE id = $8
	`

	res, err := s.db.ExecContext(ctx, query,
		o.Description,
		o.Amount,
		o.DueDate,
		o.Recurring,
		o.PreferredDay,
		o.LastSentAt,
		o.Active,
		o.ID,
	)
	if err != nil {
		return fmt.Errorf("updating obligation: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("updating obligation: %w", err)
	}

	if n == 0 {
		return obligation.ErrNotFound
	}

	return nil
}

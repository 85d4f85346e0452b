package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// Store keeps gate records in the scheduled_task_runs table.
type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// Claim upserts the run date in one statement; the conditional update makes
// concurrent claims for the same day return a row to exactly one caller.
func (s *Store) Claim(ctx context.Context, key string, date time.Time) (bool, error) {
	query := `
		INSERT INTO scheduled_task_runs (task_key, last_run, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (task_key) DO UPDATE
		SET last_run = EXCLUDED.last_run, updated_at = NOW()
		WHERE scheduled_task_runs.last_run <> EXCLUDED.last_run
		RETURNING task_key
	`

	var claimed string

	err := s.db.QueryRowContext(ctx, query, key, date).Scan(&claimed)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}

	if err != nil {
		return false, fmt.Errorf("claiming task run: %w", err)
	}

	return true, nil
}

func (s *Store) LastRun(ctx context.Context, key string) (time.Time, bool, error) {
	var last time.Time

	err := s.db.QueryRowContext(ctx,
		`SELECT last_run FROM scheduled_task_runs WHERE task_key = $1`, key,
	).Scan(&last)
	if errors.Is(err, sql.ErrNoRows) {
		return time.Time{}, false, nil
	}

	if err != nil {
		return time.Time{}, false, fmt.Errorf("getting task run: %w", err)
	}

	return time.Date(last.Year(), last.Month(), last.Day(), 0, 0, 0, 0, time.UTC), true, nil
}

func (s *Store) Delete(ctx context.Context, key string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM scheduled_task_runs WHERE task_key = $1`, key); err != nil {
		return fmt.Errorf("deleting task run: %w", err)
	}

	return nil
}

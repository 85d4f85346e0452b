// Package gate keeps a scheduled task from running twice on the same local
// calendar day. The record of the last run lives in a Store, so a restarted
// process does not repeat work already done today.
package gate

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/MrJamesThe3rd/cardcycle/internal/clock"
)

//go:generate mockgen -source=gate.go -destination=store_mock.go -package=gate
type Store interface {
	// Claim records date as the last run of key unless it already is. It
	// reports whether the record changed.
	Claim(ctx context.Context, key string, date time.Time) (bool, error)
	// LastRun returns the recorded date for key and whether one exists.
	LastRun(ctx context.Context, key string) (time.Time, bool, error)
	Delete(ctx context.Context, key string) error
}

type Gate struct {
	store Store
	clock clock.Clock
}

func New(store Store, c clock.Clock) *Gate {
	return &Gate{store: store, clock: c}
}

// ShouldRun returns true at most once per key and date. A true result has
// already recorded the run.
func (g *Gate) ShouldRun(ctx context.Context, key string, today time.Time) (bool, error) {
	ok, err := g.store.Claim(ctx, key, clock.DateOf(today))
	if err != nil {
		return false, fmt.Errorf("claiming %s: %w", key, err)
	}

	return ok, nil
}

// ShouldRunToday is ShouldRun for the gate clock's current local date.
func (g *Gate) ShouldRunToday(ctx context.Context, key string) (bool, error) {
	return g.ShouldRun(ctx, key, clock.Today(g.clock))
}

func (g *Gate) HasRunToday(ctx context.Context, key string) (bool, error) {
	last, ok, err := g.store.LastRun(ctx, key)
	if err != nil {
		return false, fmt.Errorf("reading last run of %s: %w", key, err)
	}

	return ok && last.Equal(clock.Today(g.clock)), nil
}

// MarkRan records today as the last run of key.
func (g *Gate) MarkRan(ctx context.Context, key string) error {
	if _, err := g.store.Claim(ctx, key, clock.Today(g.clock)); err != nil {
		return fmt.Errorf("marking %s: %w", key, err)
	}

	return nil
}

// Reset forgets the last run of key so the next check passes.
func (g *Gate) Reset(ctx context.Context, key string) error {
	if err := g.store.Delete(ctx, key); err != nil {
		return fmt.Errorf("resetting %s: %w", key, err)
	}

	return nil
}

// MemoryStore is a process-local Store.
type MemoryStore struct {
	mu   sync.Mutex
	runs map[string]time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{runs: make(map[string]time.Time)}
}

func (m *MemoryStore) Claim(_ context.Context, key string, date time.Time) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if last, ok := m.runs[key]; ok && last.Equal(date) {
		return false, nil
	}

	m.runs[key] = date

	return true, nil
}

func (m *MemoryStore) LastRun(_ context.Context, key string) (time.Time, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	last, ok := m.runs[key]

	return last, ok, nil
}

func (m *MemoryStore) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.runs, key)

	return nil
}

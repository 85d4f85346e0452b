// Package matching maps raw statement descriptions ("MERCADOLIVRE*LOJA123")
// to the names a user prefers ("Mercado Livre").
package matching

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"
)

var ErrInvalidMapping = errors.New("invalid mapping")

type Repository interface {
	// FindMatch returns the preferred description of the longest pattern
	// contained in rawDescription, case-insensitively, or "" when none is.
	FindMatch(ctx context.Context, rawDescription string) (string, error)
	CreateMapping(ctx context.Context, rawPattern, preferredDescription string) error
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Suggest tries to find a preferred description for the given raw description.
// Returns empty string if no match found.
func (s *Service) Suggest(ctx context.Context, rawDescription string) (string, error) {
	return s.repo.FindMatch(ctx, rawDescription)
}

// Learn remembers a new mapping between a raw pattern and a preferred description.
func (s *Service) Learn(ctx context.Context, rawPattern, preferredDescription string) error {
	rawPattern = strings.TrimSpace(rawPattern)
	preferredDescription = strings.TrimSpace(preferredDescription)

	if rawPattern == "" || preferredDescription == "" {
		return fmt.Errorf("%w: pattern and description are required", ErrInvalidMapping)
	}

	return s.repo.CreateMapping(ctx, rawPattern, preferredDescription)
}

type mapping struct {
	pattern   string
	preferred string
	seq       int
}

// MemoryStore is an in-process Repository.
type MemoryStore struct {
	mu       sync.RWMutex
	mappings []mapping
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (m *MemoryStore) FindMatch(_ context.Context, rawDescription string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	raw := strings.ToLower(rawDescription)

	var hits []mapping

	for _, mp := range m.mappings {
		if strings.Contains(raw, strings.ToLower(mp.pattern)) {
			hits = append(hits, mp)
		}
	}

	if len(hits) == 0 {
		return "", nil
	}

	best := slices.MaxFunc(hits, func(a, b mapping) int {
		return cmp.Or(cmp.Compare(len(a.pattern), len(b.pattern)), cmp.Compare(a.seq, b.seq))
	})

	return best.preferred, nil
}

func (m *MemoryStore) CreateMapping(_ context.Context, rawPattern, preferredDescription string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.mappings = append(m.mappings, mapping{
		pattern:   rawPattern,
		preferred: preferredDescription,
		seq:       len(m.mappings),
	})

	return nil
}

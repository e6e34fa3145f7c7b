// Package memory provides in-memory implementations of the storage
// ports. Used in tests and as a fallback when no data directory is
// writable; state does not survive the process.
package memory

import (
	"context"
	"sync"

	"github.com/veridian-labs/oppscan-cli/internal/core/domain"
	"github.com/veridian-labs/oppscan-cli/internal/core/ports/driven"
)

// Ensure QuotaStore implements the interface.
var _ driven.QuotaStore = (*QuotaStore)(nil)

// QuotaStore is an in-memory quota store.
type QuotaStore struct {
	mu     sync.RWMutex
	states map[string]domain.QuotaState
}

// NewQuotaStore creates an empty in-memory quota store.
func NewQuotaStore() *QuotaStore {
	return &QuotaStore{states: make(map[string]domain.QuotaState)}
}

// GetQuota returns the state for a provider.
func (s *QuotaStore) GetQuota(_ context.Context, provider string) (*domain.QuotaState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	state, ok := s.states[provider]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &state, nil
}

// PutQuota overwrites the state for a provider.
func (s *QuotaStore) PutQuota(_ context.Context, provider string, state domain.QuotaState) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.states[provider] = state
	return nil
}

// ResetQuota removes the state for a provider.
func (s *QuotaStore) ResetQuota(_ context.Context, provider string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.states, provider)
	return nil
}

// Package memory provides in-process adapters: a registry store for
// single-instance deployments and the built-in stencil catalog.
package memory

import (
	"context"
	"sync"

	"github.com/Therealkorris/MCP/pkg/domain"
)

// RegistryStore keeps session registry snapshots in a map. Snapshots are
// deep-copied on the way in and out so callers can never alias stored state.
type RegistryStore struct {
	mu    sync.RWMutex
	snaps map[string]*domain.RegistrySnapshot
}

// NewRegistryStore creates an empty in-memory registry store.
func NewRegistryStore() *RegistryStore {
	return &RegistryStore{snaps: make(map[string]*domain.RegistrySnapshot)}
}

func (s *RegistryStore) Save(_ context.Context, sessionID string, snap *domain.RegistrySnapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snaps[sessionID] = copySnapshot(snap)
	return nil
}

func (s *RegistryStore) Load(_ context.Context, sessionID string) (*domain.RegistrySnapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snap, ok := s.snaps[sessionID]
	if !ok {
		return nil, domain.ErrRegistryNotFound
	}
	return copySnapshot(snap), nil
}

func (s *RegistryStore) Delete(_ context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.snaps, sessionID)
	return nil
}

func copySnapshot(snap *domain.RegistrySnapshot) *domain.RegistrySnapshot {
	out := &domain.RegistrySnapshot{
		SessionID: snap.SessionID,
		Entries:   make([]domain.RegistryEntry, len(snap.Entries)),
		NextID:    make(map[domain.DocumentHandle]int, len(snap.NextID)),
	}
	copy(out.Entries, snap.Entries)
	for k, v := range snap.NextID {
		out.NextID[k] = v
	}
	return out
}

package ports

import (
	"context"

	"github.com/Therealkorris/MCP/pkg/domain"
)

// RegistryStore persists session shape registries. Registries are
// session-scoped; the store exists so a bridge restart (or a replica swap,
// with the Redis adapter) does not strand callers mid-session.
type RegistryStore interface {
	// Save persists the registry snapshot for a session ID.
	Save(ctx context.Context, sessionID string, snap *domain.RegistrySnapshot) error

	// Load retrieves the snapshot for a session ID.
	// Returns domain.ErrRegistryNotFound if no snapshot exists.
	Load(ctx context.Context, sessionID string) (*domain.RegistrySnapshot, error)

	// Delete removes the snapshot for a session ID.
	Delete(ctx context.Context, sessionID string) error
}

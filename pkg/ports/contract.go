package ports

import (
	"context"
	"testing"
	"time"

	"github.com/Therealkorris/MCP/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunRegistryStoreContract verifies that a RegistryStore implementation
// adheres to the interface contract. Adapter tests call this with their
// concrete store.
func RunRegistryStoreContract(t *testing.T, store RegistryStore) {
	ctx := context.Background()
	sessionID := "contract-session-" + time.Now().Format("20060102150405")

	snap := &domain.RegistrySnapshot{
		SessionID: sessionID,
		Entries: []domain.RegistryEntry{
			{CallerID: 1, ExecutorID: "7", Doc: domain.ActiveDocument, Kind: domain.EntryShape, Alive: true},
			{CallerID: 2, ExecutorID: "9", Doc: domain.ActiveDocument, Kind: domain.EntryConnector, Alive: false},
		},
		NextID: map[domain.DocumentHandle]int{domain.ActiveDocument: 3},
	}

	t.Run("Save and Load", func(t *testing.T) {
		require.NoError(t, store.Save(ctx, sessionID, snap))

		loaded, err := store.Load(ctx, sessionID)
		require.NoError(t, err)
		require.Len(t, loaded.Entries, 2)
		assert.Equal(t, "7", loaded.Entries[0].ExecutorID)
		assert.False(t, loaded.Entries[1].Alive)
		assert.Equal(t, 3, loaded.NextID[domain.ActiveDocument])
	})

	t.Run("Load Non-Existent", func(t *testing.T) {
		_, err := store.Load(ctx, "missing-"+sessionID)
		assert.ErrorIs(t, err, domain.ErrRegistryNotFound)
	})

	t.Run("Delete", func(t *testing.T) {
		require.NoError(t, store.Save(ctx, sessionID, snap))
		require.NoError(t, store.Delete(ctx, sessionID))

		_, err := store.Load(ctx, sessionID)
		assert.ErrorIs(t, err, domain.ErrRegistryNotFound, "Load after Delete should report not found")
	})

	t.Run("Isolation", func(t *testing.T) {
		require.NoError(t, store.Save(ctx, sessionID, snap))

		loaded, err := store.Load(ctx, sessionID)
		require.NoError(t, err)
		loaded.Entries[0].ExecutorID = "mutated"

		again, err := store.Load(ctx, sessionID)
		require.NoError(t, err)
		assert.Equal(t, "7", again.Entries[0].ExecutorID, "loaded snapshots must not alias store state")
	})
}

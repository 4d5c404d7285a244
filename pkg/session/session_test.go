package session

import (
	"context"
	"testing"

	"github.com/Therealkorris/MCP/pkg/adapters/memory"
	"github.com/Therealkorris/MCP/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_GeneratesID(t *testing.T) {
	a := New()
	b := New()

	assert.NotEmpty(t, a.ID())
	assert.NotEqual(t, a.ID(), b.ID())
}

func TestResolve_ClosedSession(t *testing.T) {
	s := New()
	_, err := s.Registry().Register(0, "Sheet.1", domain.ActiveDocument, domain.EntryShape)
	require.NoError(t, err)

	require.NoError(t, s.Close(context.Background()))

	_, err = s.Resolve(1)
	assert.ErrorIs(t, err, domain.ErrSessionClosed)
	assert.True(t, s.Closed())

	// Close is idempotent.
	assert.NoError(t, s.Close(context.Background()))
}

func TestCacheStencils_CopyAndClear(t *testing.T) {
	s := New()
	s.CacheStencils([]string{"Basic Shapes.vss"})

	got := s.OpenStencils()
	require.Equal(t, []string{"Basic Shapes.vss"}, got)

	// Mutating the returned slice does not touch the cache.
	got[0] = "changed"
	assert.Equal(t, []string{"Basic Shapes.vss"}, s.OpenStencils())

	require.NoError(t, s.Close(context.Background()))
	assert.Empty(t, s.OpenStencils())
}

func TestCheckpointAndResume(t *testing.T) {
	ctx := context.Background()
	store := memory.NewRegistryStore()

	s := New(WithStore(store))
	entry, err := s.Registry().Register(0, "Sheet.7", domain.ActiveDocument, domain.EntryShape)
	require.NoError(t, err)
	s.Checkpoint(ctx)

	resumed, err := Resume(ctx, s.ID(), store)
	require.NoError(t, err)

	id, err := resumed.Resolve(entry.CallerID)
	require.NoError(t, err)
	assert.Equal(t, "Sheet.7", id)

	// Numbering continues where the snapshot left off.
	next, err := resumed.Registry().Register(0, "Sheet.9", domain.ActiveDocument, domain.EntryShape)
	require.NoError(t, err)
	assert.Equal(t, entry.CallerID+1, next.CallerID)
}

func TestClose_RemovesSnapshot(t *testing.T) {
	ctx := context.Background()
	store := memory.NewRegistryStore()

	s := New(WithStore(store))
	s.Checkpoint(ctx)
	require.NoError(t, s.Close(ctx))

	_, err := Resume(ctx, s.ID(), store)
	assert.ErrorIs(t, err, domain.ErrRegistryNotFound)
}

func TestResume_UnknownSession(t *testing.T) {
	_, err := Resume(context.Background(), "nope", memory.NewRegistryStore())
	assert.ErrorIs(t, err, domain.ErrRegistryNotFound)
}

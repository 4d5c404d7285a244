package registry_test

import (
	"testing"

	"github.com/Therealkorris/MCP/pkg/domain"
	"github.com/Therealkorris/MCP/pkg/registry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegister_AssignsMonotonicIDs(t *testing.T) {
	reg := registry.New("s1")

	for i, execID := range []string{"101", "102", "103"} {
		entry, err := reg.Register(0, execID, domain.ActiveDocument, domain.EntryShape)
		require.NoError(t, err)
		assert.Equal(t, i+1, entry.CallerID)
		assert.True(t, entry.Alive)
	}
}

func TestRegister_NeverReusesRetiredIDs(t *testing.T) {
	reg := registry.New("s1")

	e1, err := reg.Register(0, "101", domain.ActiveDocument, domain.EntryShape)
	require.NoError(t, err)
	_, err = reg.Register(0, "102", domain.ActiveDocument, domain.EntryShape)
	require.NoError(t, err)

	require.NoError(t, reg.Retire(e1.CallerID))

	// The freed slot 1 must not be handed out again.
	e3, err := reg.Register(0, "103", domain.ActiveDocument, domain.EntryShape)
	require.NoError(t, err)
	assert.Equal(t, 3, e3.CallerID)
}

func TestResolve_AfterRetire(t *testing.T) {
	reg := registry.New("s1")

	entry, err := reg.Register(0, "55", domain.ActiveDocument, domain.EntryShape)
	require.NoError(t, err)

	execID, err := reg.Resolve(entry.CallerID)
	require.NoError(t, err)
	assert.Equal(t, "55", execID)

	require.NoError(t, reg.Retire(entry.CallerID))

	_, err = reg.Resolve(entry.CallerID)
	assert.ErrorIs(t, err, domain.ErrShapeNotFound)

	// Retiring twice also reports not found.
	assert.ErrorIs(t, reg.Retire(entry.CallerID), domain.ErrShapeNotFound)
}

func TestResolve_Unknown(t *testing.T) {
	reg := registry.New("s1")
	_, err := reg.Resolve(42)
	assert.ErrorIs(t, err, domain.ErrShapeNotFound)
}

func TestRegister_CallerSuppliedID(t *testing.T) {
	reg := registry.New("s1")

	entry, err := reg.Register(7, "200", domain.ActiveDocument, domain.EntryShape)
	require.NoError(t, err)
	assert.Equal(t, 7, entry.CallerID)

	// Supplied IDs are reserved; duplicates are rejected.
	_, err = reg.Register(7, "201", domain.ActiveDocument, domain.EntryShape)
	assert.True(t, domain.IsValidation(err))

	// Auto-assignment continues past the supplied ID.
	next, err := reg.Register(0, "202", domain.ActiveDocument, domain.EntryShape)
	require.NoError(t, err)
	assert.Equal(t, 8, next.CallerID)
}

func TestRegister_PerDocumentNumbering(t *testing.T) {
	reg := registry.New("s1")
	other := domain.DocumentHandle("C:/diagrams/net.vsdx")

	a, err := reg.Register(0, "1", domain.ActiveDocument, domain.EntryShape)
	require.NoError(t, err)
	b, err := reg.Register(0, "1", other, domain.EntryShape)
	require.NoError(t, err)

	assert.Equal(t, 1, a.CallerID)
	// Caller IDs stay unique across the whole session even though numbering
	// restarts per document.
	assert.NotEqual(t, a.CallerID, b.CallerID)
}

func TestReconcile_AdoptsAndMarksDead(t *testing.T) {
	reg := registry.New("s1")

	kept, err := reg.Register(0, "10", domain.ActiveDocument, domain.EntryShape)
	require.NoError(t, err)
	gone, err := reg.Register(0, "11", domain.ActiveDocument, domain.EntryShape)
	require.NoError(t, err)

	reg.Reconcile(domain.ActiveDocument, []domain.ShapeInfo{
		{ID: "10", Name: "Rectangle"},
		{ID: "99", Name: "Dynamic connector", Connector: true},
	})

	// Kept entry still resolves.
	_, err = reg.Resolve(kept.CallerID)
	assert.NoError(t, err)

	// Entry absent from the report is dead.
	_, err = reg.Resolve(gone.CallerID)
	assert.ErrorIs(t, err, domain.ErrShapeNotFound)

	// Unknown executor shape was adopted with a fresh caller ID.
	entries := reg.Entries()
	require.Len(t, entries, 3)
	adopted := entries[2]
	assert.Equal(t, "99", adopted.ExecutorID)
	assert.Equal(t, 3, adopted.CallerID)
	assert.Equal(t, domain.EntryConnector, adopted.Kind)
	assert.True(t, adopted.Alive)
}

func TestSnapshot_RoundTrip(t *testing.T) {
	reg := registry.New("s1")
	e1, err := reg.Register(0, "10", domain.ActiveDocument, domain.EntryShape)
	require.NoError(t, err)
	_, err = reg.Register(0, "11", domain.ActiveDocument, domain.EntryConnector)
	require.NoError(t, err)
	require.NoError(t, reg.Retire(e1.CallerID))

	snap := reg.Snapshot()
	restored := registry.FromSnapshot(snap)

	_, err = restored.Resolve(e1.CallerID)
	assert.ErrorIs(t, err, domain.ErrShapeNotFound, "retired state survives the round trip")

	execID, err := restored.Resolve(2)
	require.NoError(t, err)
	assert.Equal(t, "11", execID)

	// Numbering continues where it left off.
	e3, err := restored.Register(0, "12", domain.ActiveDocument, domain.EntryShape)
	require.NoError(t, err)
	assert.Equal(t, 3, e3.CallerID)
}

package memory

import (
	"context"
	"testing"

	"github.com/Therealkorris/MCP/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryStore_Contract(t *testing.T) {
	ports.RunRegistryStoreContract(t, NewRegistryStore())
}

func TestCatalog_ListAndMasters(t *testing.T) {
	c := NewCatalog()
	ctx := context.Background()

	stencils, err := c.List(ctx)
	require.NoError(t, err)
	assert.NotEmpty(t, stencils)

	names := make([]string, 0, len(stencils))
	for _, s := range stencils {
		names = append(names, s.Name)
	}
	assert.Contains(t, names, "BASIC_M.vssx")
	assert.Contains(t, names, "Basic Shapes.vss")

	masters, err := c.Masters(ctx, "Basic Shapes.vss")
	require.NoError(t, err)
	assert.NotEmpty(t, masters)

	unknown, err := c.Masters(ctx, "Unknown.vss")
	require.NoError(t, err)
	assert.Empty(t, unknown)
}

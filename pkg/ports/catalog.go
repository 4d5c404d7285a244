package ports

import (
	"context"

	"github.com/Therealkorris/MCP/pkg/domain"
)

// StencilCatalog provides metadata about stencils known ahead of time: the
// built-in suggestions plus anything a deployment documents for itself. The
// fallback resolver consults it to rank candidates; true validity of any
// stencil is still only confirmed by the executor.
type StencilCatalog interface {
	// List returns all cataloged stencils.
	List(ctx context.Context) ([]domain.StencilInfo, error)

	// Masters returns the master shapes documented for a stencil, or an empty
	// slice if the stencil is unknown.
	Masters(ctx context.Context, stencilName string) ([]domain.MasterInfo, error)
}

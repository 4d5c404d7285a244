package memory

import (
	"context"

	"github.com/Therealkorris/MCP/pkg/domain"
)

// builtinStencils mirrors the stencils a stock host installation ships with.
// The catalog is advisory: the resolver uses it to rank candidates, the
// executor has the final word.
var builtinStencils = []domain.StencilInfo{
	{Name: "BASIC_M.vssx", Kind: "basic"},
	{Name: "Basic_U.vss", Kind: "basic"},
	{Name: "Basic Shapes.vss", Kind: "basic"},
	{Name: "ARROWS_M.vssx", Kind: "arrows"},
	{Name: "Backgrounds.vssx", Kind: "backgrounds"},
	{Name: "Borders.vssx", Kind: "borders"},
	{Name: "Connectors.vssx", Kind: "connectors"},
	{Name: "CONNEC_M.vssx", Kind: "connectors"},
}

var basicMasters = []domain.MasterInfo{
	{Name: "Rectangle", Index: 0},
	{Name: "Square", Index: 1},
	{Name: "Circle", Index: 2},
	{Name: "Ellipse", Index: 3},
	{Name: "Triangle", Index: 4},
	{Name: "Diamond", Index: 5},
	{Name: "Pentagon", Index: 6},
	{Name: "Hexagon", Index: 7},
	{Name: "Rounded Rectangle", Index: 8},
	{Name: "Dynamic connector", Index: 9, Connector: true},
}

// Catalog is the static built-in stencil catalog.
type Catalog struct {
	stencils []domain.StencilInfo
	masters  map[string][]domain.MasterInfo
}

// NewCatalog returns the built-in catalog.
func NewCatalog() *Catalog {
	masters := make(map[string][]domain.MasterInfo)
	for _, s := range builtinStencils {
		if s.Kind == "basic" {
			masters[s.Name] = basicMasters
		}
	}
	return &Catalog{stencils: builtinStencils, masters: masters}
}

func (c *Catalog) List(_ context.Context) ([]domain.StencilInfo, error) {
	out := make([]domain.StencilInfo, len(c.stencils))
	copy(out, c.stencils)
	return out, nil
}

func (c *Catalog) Masters(_ context.Context, stencilName string) ([]domain.MasterInfo, error) {
	m, ok := c.masters[stencilName]
	if !ok {
		return nil, nil
	}
	out := make([]domain.MasterInfo, len(m))
	copy(out, m)
	return out, nil
}

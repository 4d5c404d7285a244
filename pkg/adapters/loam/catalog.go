// Package loam adapts a Loam document repository into a stencil catalog.
// Deployments document their stencils as markdown files with frontmatter; the
// body is free-form notes, the frontmatter is the machine-readable inventory.
package loam

import (
	"context"
	"fmt"
	"strings"

	"github.com/Therealkorris/MCP/pkg/domain"
	"github.com/aretw0/loam"
)

// StencilMetadata is the frontmatter of one stencil document.
type StencilMetadata struct {
	Name    string           `json:"name" mapstructure:"name"`
	Type    string           `json:"type" mapstructure:"type"`
	Path    string           `json:"path" mapstructure:"path"`
	Masters []MasterMetadata `json:"masters" mapstructure:"masters"`
}

// MasterMetadata is one master entry in a stencil's frontmatter.
type MasterMetadata struct {
	Name      string `json:"name" mapstructure:"name"`
	Connector bool   `json:"connector" mapstructure:"connector"`
}

// Catalog implements ports.StencilCatalog over a Loam repository.
type Catalog struct {
	Repo *loam.TypedRepository[StencilMetadata]
}

// New creates a Loam-backed catalog.
func New(repo *loam.TypedRepository[StencilMetadata]) *Catalog {
	return &Catalog{Repo: repo}
}

// List returns all documented stencils. The document ID stands in for the
// name when the frontmatter omits one.
func (c *Catalog) List(ctx context.Context) ([]domain.StencilInfo, error) {
	docs, err := c.Repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("loam list failed: %w", err)
	}

	out := make([]domain.StencilInfo, 0, len(docs))
	for _, doc := range docs {
		name := doc.Data.Name
		if name == "" {
			name = doc.ID
		}
		out = append(out, domain.StencilInfo{
			Name:         name,
			Kind:         doc.Data.Type,
			Path:         doc.Data.Path,
			MastersCount: len(doc.Data.Masters),
		})
	}
	return out, nil
}

// Masters returns the masters documented for a stencil, matching by
// frontmatter name or document ID, case-insensitively.
func (c *Catalog) Masters(ctx context.Context, stencilName string) ([]domain.MasterInfo, error) {
	docs, err := c.Repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("loam list failed: %w", err)
	}

	for _, doc := range docs {
		name := doc.Data.Name
		if name == "" {
			name = doc.ID
		}
		if !strings.EqualFold(name, stencilName) {
			continue
		}
		out := make([]domain.MasterInfo, 0, len(doc.Data.Masters))
		for i, m := range doc.Data.Masters {
			out = append(out, domain.MasterInfo{Name: m.Name, Index: i, Connector: m.Connector})
		}
		return out, nil
	}
	return nil, nil
}

package resolver

import (
	"context"
	"errors"
	"io/fs"
	"testing"

	"github.com/Therealkorris/MCP/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCatalog struct {
	stencils []domain.StencilInfo
	masters  map[string][]domain.MasterInfo
	listErr  error
}

func (f *fakeCatalog) List(_ context.Context) ([]domain.StencilInfo, error) {
	return f.stencils, f.listErr
}

func (f *fakeCatalog) Masters(_ context.Context, stencil string) ([]domain.MasterInfo, error) {
	m, ok := f.masters[stencil]
	if !ok {
		return nil, errors.New("unknown stencil")
	}
	return m, nil
}

func basicCatalog() *fakeCatalog {
	return &fakeCatalog{
		stencils: []domain.StencilInfo{
			{Name: "BASIC_M.vssx", Kind: "basic"},
			{Name: "Basic Shapes.vss", Kind: "basic"},
		},
		masters: map[string][]domain.MasterInfo{
			"Basic Shapes.vss": {
				{Name: "Rectangle", Index: 0},
				{Name: "Rounded Rectangle", Index: 1},
				{Name: "Circle", Index: 2},
				{Name: "Dynamic connector", Index: 3, Connector: true},
			},
		},
	}
}

func TestResolveTemplate_OpenDocumentWins(t *testing.T) {
	r := New(WithCatalog(basicCatalog()))

	ref := r.ResolveTemplate(context.Background(), "budget", []string{"Q3 Budget.vsdx", "Org Chart.vsdx"})

	assert.Equal(t, "Q3 Budget.vsdx", ref.Resolved)
	assert.False(t, ref.Blank)
	acc := ref.Trail.Accepted()
	require.NotNil(t, acc)
	assert.Equal(t, domain.CandidateOpen, acc.Source)
}

func TestResolveTemplate_FallsBackToBlank(t *testing.T) {
	r := New(withStatFn(func(string) (fs.FileInfo, error) {
		return nil, fs.ErrNotExist
	}))

	ref := r.ResolveTemplate(context.Background(), `C:\missing\diagram.vstx`, nil)

	assert.True(t, ref.Blank)
	assert.Empty(t, ref.Resolved)
	// Trail records the failed path probe and both ladder misses.
	require.GreaterOrEqual(t, len(ref.Trail), 3)
	assert.Equal(t, domain.CandidatePath, ref.Trail[0].Source)
	assert.False(t, ref.Trail[0].Accepted)
	acc := ref.Trail.Accepted()
	require.NotNil(t, acc)
	assert.Equal(t, domain.CandidateBlank, acc.Source)
}

func TestResolveTemplate_BuiltinLadder(t *testing.T) {
	r := New(WithCatalog(basicCatalog()), withStatFn(func(string) (fs.FileInfo, error) {
		return nil, fs.ErrNotExist
	}))

	ref := r.ResolveTemplate(context.Background(), `./nope.vstx`, nil)

	assert.Equal(t, "BASIC_M.vssx", ref.Resolved)
	assert.False(t, ref.Blank)
}

func TestResolveStencil_DefaultLadder(t *testing.T) {
	r := New(WithCatalog(basicCatalog()))

	ref := r.ResolveStencil(context.Background(), "Network Shapes.vss", nil)

	assert.Equal(t, "Basic Shapes.vss", ref.Resolved)
	// The miss on the requested name must be visible in the trail.
	assert.False(t, ref.Trail[0].Accepted)
	assert.Equal(t, "Network Shapes.vss", ref.Trail[0].Name)
}

func TestResolveStencil_LastRungAlwaysAccepted(t *testing.T) {
	r := New(WithCatalog(&fakeCatalog{})) // empty catalog, nothing matches

	ref := r.ResolveStencil(context.Background(), "anything.vss", nil)

	assert.Equal(t, "Basic_U.vss", ref.Resolved)
}

func TestResolveStencil_NoCatalogForwardsVerbatim(t *testing.T) {
	r := New()

	ref := r.ResolveStencil(context.Background(), "Custom.vssx", nil)

	assert.Equal(t, "Custom.vssx", ref.Resolved)
	acc := ref.Trail.Accepted()
	require.NotNil(t, acc)
	assert.Equal(t, domain.CandidateVerbatim, acc.Source)
}

func TestResolveMaster_Ladder(t *testing.T) {
	r := New(WithCatalog(basicCatalog()))
	stencil := domain.StencilReference{Resolved: "Basic Shapes.vss"}

	t.Run("exact match case-insensitive", func(t *testing.T) {
		ref := r.ResolveMaster(context.Background(), "rectangle", stencil)
		assert.Equal(t, "Rectangle", ref.Resolved)
		assert.Equal(t, domain.CandidateExact, ref.Trail.Accepted().Source)
	})

	t.Run("substring match", func(t *testing.T) {
		ref := r.ResolveMaster(context.Background(), "rounded", stencil)
		assert.Equal(t, "Rounded Rectangle", ref.Resolved)
		assert.Equal(t, domain.CandidateSubstring, ref.Trail.Accepted().Source)
	})

	t.Run("common shape fallback", func(t *testing.T) {
		ref := r.ResolveMaster(context.Background(), "flux capacitor", stencil)
		assert.Equal(t, "Rectangle", ref.Resolved)
		assert.Equal(t, domain.CandidateCommon, ref.Trail.Accepted().Source)
		// The exact and substring misses are recorded.
		assert.GreaterOrEqual(t, ref.Trail.Rejections(), 2)
	})

	t.Run("first available when nothing common", func(t *testing.T) {
		cat := &fakeCatalog{masters: map[string][]domain.MasterInfo{
			"Odd.vss": {{Name: "Widget"}, {Name: "Gadget"}},
		}}
		rr := New(WithCatalog(cat))
		ref := rr.ResolveMaster(context.Background(), "sprocket", domain.StencilReference{Resolved: "Odd.vss"})
		assert.Equal(t, "Widget", ref.Resolved)
		assert.Equal(t, domain.CandidateFirst, ref.Trail.Accepted().Source)
	})
}

func TestResolveMaster_NoInventoryForwardsVerbatim(t *testing.T) {
	r := New()

	ref := r.ResolveMaster(context.Background(), "Server", domain.StencilReference{Resolved: "Net.vss"})

	assert.Equal(t, "Server", ref.Resolved)
	assert.Equal(t, domain.CandidateVerbatim, ref.Trail.Accepted().Source)
}

func TestListStencils_MergesAndTolerates(t *testing.T) {
	dir := t.TempDir()

	cat := basicCatalog()
	cat.listErr = errors.New("catalog offline")
	r := New(WithCatalog(cat), WithSearchPaths([]string{dir, "/does/not/exist"}))

	scan, err := r.ListStencils(context.Background())
	require.NoError(t, err)

	// Catalog failure and empty scans are tolerated.
	assert.NotEmpty(t, scan.Skipped)
	assert.Empty(t, scan.Stencils)
}

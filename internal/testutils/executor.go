// Package testutils provides shared fakes and fixtures for tests.
package testutils

import (
	"context"
	"errors"
	"sync"

	"github.com/Therealkorris/MCP/pkg/domain"
)

// FakeExecutor is a function-backed executor double. Unset verbs fail, so a
// test only wires what it expects to be called. Calls are recorded for
// assertions on dispatch ordering.
type FakeExecutor struct {
	mu    sync.Mutex
	calls []string

	HealthFn            func(ctx context.Context) error
	ActiveDocumentFn    func(ctx context.Context) (*domain.DocumentInfo, error)
	AnalyzeDiagramFn    func(ctx context.Context, doc domain.DocumentHandle, analysis domain.AnalysisType) (*domain.DiagramAnalysis, error)
	AddShapeFn          func(ctx context.Context, doc domain.DocumentHandle, pageIndex int, shape *domain.ShapeSpec) (*domain.ShapeResult, error)
	UpdateShapeFn       func(ctx context.Context, doc domain.DocumentHandle, pageIndex int, shapeID string, shape *domain.ShapeSpec) (*domain.ShapeResult, error)
	DeleteShapeFn       func(ctx context.Context, doc domain.DocumentHandle, pageIndex int, shapeID string) (*domain.ShapeResult, error)
	AddConnectorFn      func(ctx context.Context, doc domain.DocumentHandle, pageIndex int, conn *domain.ConnectorSpec) (*domain.ConnectorResult, error)
	DeleteConnectionFn  func(ctx context.Context, doc domain.DocumentHandle, pageIndex int, connectorID string) (*domain.ConnectorResult, error)
	VerifyConnectionsFn func(ctx context.Context, doc domain.DocumentHandle, shapeIDs []string) ([]domain.ConnectionInfo, error)
	CreateDiagramFn     func(ctx context.Context, create *domain.CreateSpec) (*domain.CreateResult, error)
	SaveDiagramFn       func(ctx context.Context, doc domain.DocumentHandle, savePath string) (*domain.SaveResult, error)
	ExportDiagramFn     func(ctx context.Context, doc domain.DocumentHandle, export *domain.ExportSpec) (*domain.ExportResult, error)
	ListStencilsFn      func(ctx context.Context) ([]domain.StencilInfo, error)
	ListMastersFn       func(ctx context.Context) (map[string][]domain.MasterInfo, error)
	ShapesOnPageFn      func(ctx context.Context, doc domain.DocumentHandle, pageIndex int) (*domain.PageShapes, error)
	ImageToDiagramFn    func(ctx context.Context, image *domain.ImageSpec) (*domain.ImageResult, error)
}

var errNotWired = errors.New("testutils: executor verb not wired")

func (f *FakeExecutor) record(verb string) {
	f.mu.Lock()
	f.calls = append(f.calls, verb)
	f.mu.Unlock()
}

// Calls returns the verbs invoked so far, in order.
func (f *FakeExecutor) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.calls))
	copy(out, f.calls)
	return out
}

func (f *FakeExecutor) Health(ctx context.Context) error {
	f.record("health")
	if f.HealthFn == nil {
		return nil
	}
	return f.HealthFn(ctx)
}

func (f *FakeExecutor) ActiveDocument(ctx context.Context) (*domain.DocumentInfo, error) {
	f.record("active_document")
	if f.ActiveDocumentFn == nil {
		return nil, errNotWired
	}
	return f.ActiveDocumentFn(ctx)
}

func (f *FakeExecutor) AnalyzeDiagram(ctx context.Context, doc domain.DocumentHandle, analysis domain.AnalysisType) (*domain.DiagramAnalysis, error) {
	f.record("analyze_diagram")
	if f.AnalyzeDiagramFn == nil {
		return nil, errNotWired
	}
	return f.AnalyzeDiagramFn(ctx, doc, analysis)
}

func (f *FakeExecutor) AddShape(ctx context.Context, doc domain.DocumentHandle, pageIndex int, shape *domain.ShapeSpec) (*domain.ShapeResult, error) {
	f.record("add_shape")
	if f.AddShapeFn == nil {
		return nil, errNotWired
	}
	return f.AddShapeFn(ctx, doc, pageIndex, shape)
}

func (f *FakeExecutor) UpdateShape(ctx context.Context, doc domain.DocumentHandle, pageIndex int, shapeID string, shape *domain.ShapeSpec) (*domain.ShapeResult, error) {
	f.record("update_shape")
	if f.UpdateShapeFn == nil {
		return nil, errNotWired
	}
	return f.UpdateShapeFn(ctx, doc, pageIndex, shapeID, shape)
}

func (f *FakeExecutor) DeleteShape(ctx context.Context, doc domain.DocumentHandle, pageIndex int, shapeID string) (*domain.ShapeResult, error) {
	f.record("delete_shape")
	if f.DeleteShapeFn == nil {
		return nil, errNotWired
	}
	return f.DeleteShapeFn(ctx, doc, pageIndex, shapeID)
}

func (f *FakeExecutor) AddConnector(ctx context.Context, doc domain.DocumentHandle, pageIndex int, conn *domain.ConnectorSpec) (*domain.ConnectorResult, error) {
	f.record("add_connector")
	if f.AddConnectorFn == nil {
		return nil, errNotWired
	}
	return f.AddConnectorFn(ctx, doc, pageIndex, conn)
}

func (f *FakeExecutor) DeleteConnection(ctx context.Context, doc domain.DocumentHandle, pageIndex int, connectorID string) (*domain.ConnectorResult, error) {
	f.record("delete_connection")
	if f.DeleteConnectionFn == nil {
		return nil, errNotWired
	}
	return f.DeleteConnectionFn(ctx, doc, pageIndex, connectorID)
}

func (f *FakeExecutor) VerifyConnections(ctx context.Context, doc domain.DocumentHandle, shapeIDs []string) ([]domain.ConnectionInfo, error) {
	f.record("verify_connections")
	if f.VerifyConnectionsFn == nil {
		return nil, errNotWired
	}
	return f.VerifyConnectionsFn(ctx, doc, shapeIDs)
}

func (f *FakeExecutor) CreateDiagram(ctx context.Context, create *domain.CreateSpec) (*domain.CreateResult, error) {
	f.record("create_diagram")
	if f.CreateDiagramFn == nil {
		return nil, errNotWired
	}
	return f.CreateDiagramFn(ctx, create)
}

func (f *FakeExecutor) SaveDiagram(ctx context.Context, doc domain.DocumentHandle, savePath string) (*domain.SaveResult, error) {
	f.record("save_diagram")
	if f.SaveDiagramFn == nil {
		return nil, errNotWired
	}
	return f.SaveDiagramFn(ctx, doc, savePath)
}

func (f *FakeExecutor) ExportDiagram(ctx context.Context, doc domain.DocumentHandle, export *domain.ExportSpec) (*domain.ExportResult, error) {
	f.record("export_diagram")
	if f.ExportDiagramFn == nil {
		return nil, errNotWired
	}
	return f.ExportDiagramFn(ctx, doc, export)
}

func (f *FakeExecutor) ListStencils(ctx context.Context) ([]domain.StencilInfo, error) {
	f.record("list_stencils")
	if f.ListStencilsFn == nil {
		return nil, errNotWired
	}
	return f.ListStencilsFn(ctx)
}

func (f *FakeExecutor) ListMasters(ctx context.Context) (map[string][]domain.MasterInfo, error) {
	f.record("list_masters")
	if f.ListMastersFn == nil {
		return nil, errNotWired
	}
	return f.ListMastersFn(ctx)
}

func (f *FakeExecutor) ShapesOnPage(ctx context.Context, doc domain.DocumentHandle, pageIndex int) (*domain.PageShapes, error) {
	f.record("get_shapes_on_page")
	if f.ShapesOnPageFn == nil {
		return nil, errNotWired
	}
	return f.ShapesOnPageFn(ctx, doc, pageIndex)
}

func (f *FakeExecutor) ImageToDiagram(ctx context.Context, image *domain.ImageSpec) (*domain.ImageResult, error) {
	f.record("image_to_diagram")
	if f.ImageToDiagramFn == nil {
		return nil, errNotWired
	}
	return f.ImageToDiagramFn(ctx, image)
}

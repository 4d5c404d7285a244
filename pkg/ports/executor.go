package ports

import (
	"context"

	"github.com/Therealkorris/MCP/pkg/domain"
)

// Executor is the capability-call interface exposed by the privileged host
// process. One verb per canonical operation kind; every method takes the
// fully-resolved structure plus a document handle and returns either a typed
// payload or an error.
//
// Implementations classify transport failures as domain.ErrRelayConnectionLost
// and document-level failures as *domain.ExecutorError; they never retry.
type Executor interface {
	// Health verifies the link to the host process.
	Health(ctx context.Context) error

	ActiveDocument(ctx context.Context) (*domain.DocumentInfo, error)
	AnalyzeDiagram(ctx context.Context, doc domain.DocumentHandle, analysis domain.AnalysisType) (*domain.DiagramAnalysis, error)

	AddShape(ctx context.Context, doc domain.DocumentHandle, pageIndex int, shape *domain.ShapeSpec) (*domain.ShapeResult, error)
	UpdateShape(ctx context.Context, doc domain.DocumentHandle, pageIndex int, shapeID string, shape *domain.ShapeSpec) (*domain.ShapeResult, error)
	DeleteShape(ctx context.Context, doc domain.DocumentHandle, pageIndex int, shapeID string) (*domain.ShapeResult, error)

	AddConnector(ctx context.Context, doc domain.DocumentHandle, pageIndex int, conn *domain.ConnectorSpec) (*domain.ConnectorResult, error)
	DeleteConnection(ctx context.Context, doc domain.DocumentHandle, pageIndex int, connectorID string) (*domain.ConnectorResult, error)
	VerifyConnections(ctx context.Context, doc domain.DocumentHandle, shapeIDs []string) ([]domain.ConnectionInfo, error)

	CreateDiagram(ctx context.Context, create *domain.CreateSpec) (*domain.CreateResult, error)
	SaveDiagram(ctx context.Context, doc domain.DocumentHandle, savePath string) (*domain.SaveResult, error)
	ExportDiagram(ctx context.Context, doc domain.DocumentHandle, export *domain.ExportSpec) (*domain.ExportResult, error)

	ListStencils(ctx context.Context) ([]domain.StencilInfo, error)
	ListMasters(ctx context.Context) (map[string][]domain.MasterInfo, error)
	ShapesOnPage(ctx context.Context, doc domain.DocumentHandle, pageIndex int) (*domain.PageShapes, error)

	ImageToDiagram(ctx context.Context, image *domain.ImageSpec) (*domain.ImageResult, error)
}

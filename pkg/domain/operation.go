package domain

import (
	"fmt"
	"strings"
)

// OperationKind identifies one canonical operation. The set is closed: decode
// rejects anything else with ErrUnsupportedOperation.
type OperationKind string

const (
	OpAddShape          OperationKind = "add_shape"
	OpUpdateShape       OperationKind = "update_shape"
	OpDeleteShape       OperationKind = "delete_shape"
	OpAddConnector      OperationKind = "add_connector"
	OpDeleteConnection  OperationKind = "delete_connection"
	OpAnalyzeDiagram    OperationKind = "analyze_diagram"
	OpVerifyConnections OperationKind = "verify_connections"
	OpCreateDiagram     OperationKind = "create_diagram"
	OpSaveDiagram       OperationKind = "save_diagram"
	OpExportDiagram     OperationKind = "export_diagram"
	OpListStencils      OperationKind = "list_stencils"
	OpListMasters       OperationKind = "list_masters"
	OpGetActiveDocument OperationKind = "get_active_document"
	OpGetShapesOnPage   OperationKind = "get_shapes_on_page"
	OpImageToDiagram    OperationKind = "image_to_diagram"
)

// ReadOnly reports whether the operation cannot mutate the document. Only
// read-only operations may be retried automatically after a timeout.
func (k OperationKind) ReadOnly() bool {
	switch k {
	case OpAnalyzeDiagram, OpVerifyConnections, OpListStencils, OpListMasters,
		OpGetActiveDocument, OpGetShapesOnPage:
		return true
	}
	return false
}

// ExportFormat is the closed set of export targets.
type ExportFormat string

const (
	FormatPNG ExportFormat = "png"
	FormatJPG ExportFormat = "jpg"
	FormatPDF ExportFormat = "pdf"
	FormatSVG ExportFormat = "svg"
)

// ParseExportFormat validates a format string. "jpeg" is accepted as an alias
// of "jpg"; anything else outside the enum fails with ErrUnsupportedFormat.
func ParseExportFormat(s string) (ExportFormat, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "png":
		return FormatPNG, nil
	case "jpg", "jpeg":
		return FormatJPG, nil
	case "pdf":
		return FormatPDF, nil
	case "svg":
		return FormatSVG, nil
	}
	return "", fmt.Errorf("%q: %w", s, ErrUnsupportedFormat)
}

// AnalysisType selects which facets of a diagram to extract.
type AnalysisType string

const (
	AnalysisStructure   AnalysisType = "structure"
	AnalysisConnections AnalysisType = "connections"
	AnalysisText        AnalysisType = "text"
	AnalysisAll         AnalysisType = "all"
)

// ParseAnalysisType validates an analysis type; empty defaults to "all".
func ParseAnalysisType(s string) (AnalysisType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "":
		return AnalysisAll, nil
	case "structure":
		return AnalysisStructure, nil
	case "connections":
		return AnalysisConnections, nil
	case "text":
		return AnalysisText, nil
	case "all":
		return AnalysisAll, nil
	}
	return "", NewValidationError("analysis_type", fmt.Sprintf("unknown analysis type %q", s))
}

// DetectionLevel tunes the image-to-diagram preview. Unrecognized levels fall
// back to standard: the operation is advisory, not strict.
type DetectionLevel string

const (
	DetectionSimple   DetectionLevel = "simple"
	DetectionStandard DetectionLevel = "standard"
	DetectionDetailed DetectionLevel = "detailed"
)

// ParseDetectionLevel normalizes a detection level, falling back to standard.
func ParseDetectionLevel(s string) DetectionLevel {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "simple":
		return DetectionSimple
	case "detailed":
		return DetectionDetailed
	default:
		return DetectionStandard
	}
}

// Position in document units.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// DefaultPosition is used for add_shape when the request carries no position.
var DefaultPosition = Position{X: 4.0, Y: 4.0}

// Size in document units. Components must be positive when present.
type Size struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// ShapeSpec is the fully-resolved shape payload for add/update operations.
type ShapeSpec struct {
	Master   MasterReference `json:"master"`
	Position *Position       `json:"position,omitempty"`
	Size     *Size           `json:"size,omitempty"`
	Text     *string         `json:"text,omitempty"`
	Fill     *ColorValue     `json:"fill,omitempty"`
	Line     *LineStyle      `json:"line,omitempty"`
}

// ConnectorSpec carries resolved endpoints for add_connector. Executor IDs are
// opaque strings; caller IDs are kept for registry bookkeeping.
type ConnectorSpec struct {
	FromShapeID  string `json:"from_shape_id"`
	ToShapeID    string `json:"to_shape_id"`
	FromCallerID int    `json:"-"`
	ToCallerID   int    `json:"-"`
	Text         string `json:"text,omitempty"`
}

// CreateSpec describes a create_diagram operation.
type CreateSpec struct {
	Template TemplateReference `json:"template"`
	SavePath string            `json:"save_path,omitempty"`
}

// ExportSpec describes an export_diagram operation.
type ExportSpec struct {
	Format     ExportFormat `json:"format"`
	OutputPath string       `json:"output_path,omitempty"`
}

// ImageSpec describes an image_to_diagram operation.
type ImageSpec struct {
	ImagePath      string         `json:"image_path"`
	OutputPath     string         `json:"output_path,omitempty"`
	DetectionLevel DetectionLevel `json:"detection_level"`
}

// CanonicalOperation is a flat, fully-resolved operation descriptor with no
// remaining ambiguity, ready to cross the isolation boundary. Exactly one of
// the payload pointers relevant to Kind is set.
type CanonicalOperation struct {
	Kind      OperationKind  `json:"kind"`
	Target    DocumentHandle `json:"target"`
	PageIndex int            `json:"page_index,omitempty"`

	// Registry bookkeeping for the session that issued the operation.
	CallerID int `json:"caller_id,omitempty"`
	// Executor-visible target for update/delete operations.
	ShapeID string `json:"shape_id,omitempty"`

	Shape     *ShapeSpec     `json:"shape,omitempty"`
	Connector *ConnectorSpec `json:"connector,omitempty"`
	Analysis  AnalysisType   `json:"analysis,omitempty"`
	ShapeIDs  []string       `json:"shape_ids,omitempty"`
	Create    *CreateSpec    `json:"create,omitempty"`
	SavePath  string         `json:"save_path,omitempty"`
	Export    *ExportSpec    `json:"export,omitempty"`
	Image     *ImageSpec     `json:"image,omitempty"`
}

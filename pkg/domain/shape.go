package domain

// Result payloads returned by the executor, in the shapes the host relay
// reports them. Executor IDs stay opaque strings throughout.

// ShapeResult is returned by add/update/delete shape operations.
type ShapeResult struct {
	ShapeID   string `json:"shape_id"`
	ShapeName string `json:"shape_name"`
}

// ConnectorResult is returned by add_connector/delete_connection.
type ConnectorResult struct {
	ConnectorID   string `json:"connector_id"`
	ConnectorName string `json:"connector_name"`
	FromShapeID   string `json:"from_shape_id,omitempty"`
	ToShapeID     string `json:"to_shape_id,omitempty"`
}

// ShapeInfo describes one shape on a page.
type ShapeInfo struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Text      string    `json:"text,omitempty"`
	Master    string    `json:"master,omitempty"`
	Connector bool      `json:"is_connector"`
	Position  *Position `json:"position,omitempty"`
	Size      *Size     `json:"size,omitempty"`
}

// PageShapes is the full listing of one page, used for registry reconciliation.
type PageShapes struct {
	DocumentName string      `json:"document_name"`
	PageName     string      `json:"page_name"`
	PageIndex    int         `json:"page_index"`
	Shapes       []ShapeInfo `json:"shapes"`
}

// ConnectionInfo describes an observed connector between two shapes.
type ConnectionInfo struct {
	ConnectorID   string `json:"connector_id"`
	ConnectorName string `json:"connector_name"`
	Text          string `json:"text,omitempty"`
	FromShapeID   string `json:"from_shape_id"`
	FromShapeName string `json:"from_shape_name,omitempty"`
	ToShapeID     string `json:"to_shape_id"`
	ToShapeName   string `json:"to_shape_name,omitempty"`
	PageName      string `json:"page_name,omitempty"`
	PageIndex     int    `json:"page_index,omitempty"`
}

// TextElement is a text fragment with its owning shape.
type TextElement struct {
	ShapeID   string `json:"shape_id"`
	ShapeName string `json:"shape_name"`
	Text      string `json:"text"`
}

// PageAnalysis is one page of a diagram analysis.
type PageAnalysis struct {
	Name        string           `json:"name"`
	Index       int              `json:"index"`
	ShapesCount int              `json:"shapes_count"`
	Shapes      []ShapeInfo      `json:"shapes,omitempty"`
	Connections []ConnectionInfo `json:"connections,omitempty"`
	Text        []TextElement    `json:"text_elements,omitempty"`
}

// DiagramAnalysis is the structured result of analyze_diagram.
type DiagramAnalysis struct {
	Name  string         `json:"name"`
	Pages []PageAnalysis `json:"pages"`
}

// PageInfo summarizes one page of a document.
type PageInfo struct {
	Name        string `json:"name"`
	Index       int    `json:"index"`
	ShapesCount int    `json:"shapes_count"`
	Foreground  bool   `json:"is_foreground"`
}

// OpenDocument is one entry in the host's open-documents list.
type OpenDocument struct {
	Name     string `json:"name"`
	Path     string `json:"path,omitempty"`
	FullPath string `json:"full_path,omitempty"`
	Active   bool   `json:"is_active"`
}

// DocumentInfo describes the active document and its surroundings.
type DocumentInfo struct {
	Name          string         `json:"name"`
	Path          string         `json:"path,omitempty"`
	FullPath      string         `json:"full_path,omitempty"`
	PagesCount    int            `json:"pages_count"`
	Saved         bool           `json:"saved"`
	ReadOnly      bool           `json:"readonly"`
	Pages         []PageInfo     `json:"pages,omitempty"`
	OpenDocuments []OpenDocument `json:"open_documents,omitempty"`
}

// CreateResult is returned by create_diagram.
type CreateResult struct {
	Name       string `json:"name"`
	Path       string `json:"path,omitempty"`
	FullPath   string `json:"full_path,omitempty"`
	PagesCount int    `json:"pages_count"`
}

// SaveResult is returned by save_diagram.
type SaveResult struct {
	Name     string `json:"name"`
	Path     string `json:"path,omitempty"`
	FullPath string `json:"full_path,omitempty"`
}

// ExportResult is returned by export_diagram.
type ExportResult struct {
	DocumentName string       `json:"document_name"`
	Format       ExportFormat `json:"format"`
	OutputPath   string       `json:"output_path"`
}

// StencilInfo is one entry in a stencil listing.
type StencilInfo struct {
	Name         string `json:"name"`
	Kind         string `json:"type,omitempty"`
	Open         bool   `json:"is_open"`
	Path         string `json:"path,omitempty"`
	MastersCount int    `json:"masters_count,omitempty"`
}

// MasterInfo is one master shape within a stencil.
type MasterInfo struct {
	Name      string `json:"name"`
	Index     int    `json:"id,omitempty"`
	Connector bool   `json:"one_d"`
}

// ImageResult is returned by the best-effort image_to_diagram preview.
type ImageResult struct {
	OutputPath     string         `json:"output_path"`
	ShapesDetected int            `json:"shapes_detected"`
	DetectionLevel DetectionLevel `json:"detection_level"`
}

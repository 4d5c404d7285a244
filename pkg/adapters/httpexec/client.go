// Package httpexec implements the executor port over the privileged host
// relay's REST surface. The client is a thin wire adapter: it marshals
// canonical payloads, posts them, and classifies the outcome. No retries, no
// fallback logic; that all lives above.
package httpexec

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/Therealkorris/MCP/pkg/domain"
)

// DefaultBaseURL is where a stock host relay listens.
const DefaultBaseURL = "http://localhost:8051"

// Client implements ports.Executor against the host relay.
type Client struct {
	baseURL string
	http    *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// New creates a Client for the given base URL. An empty baseURL means
// DefaultBaseURL. Per-call deadlines come from the context; the underlying
// client carries no timeout of its own.
func New(baseURL string, opts ...Option) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// apiResponse is the host relay's uniform envelope.
type apiResponse struct {
	Status  string          `json:"status"`
	Message string          `json:"message,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
}

func (c *Client) Health(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("host relay unreachable: %w", domain.ErrRelayConnectionLost)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("host relay unhealthy (%d): %w", resp.StatusCode, domain.ErrRelayConnectionLost)
	}
	return nil
}

func (c *Client) ActiveDocument(ctx context.Context) (*domain.DocumentInfo, error) {
	var out domain.DocumentInfo
	if err := c.get(ctx, domain.OpGetActiveDocument, "/active-document", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) AnalyzeDiagram(ctx context.Context, doc domain.DocumentHandle, analysis domain.AnalysisType) (*domain.DiagramAnalysis, error) {
	body := map[string]any{
		"file_path":     doc.String(),
		"analysis_type": string(analysis),
	}
	var out domain.DiagramAnalysis
	if err := c.post(ctx, domain.OpAnalyzeDiagram, "/analyze-diagram", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) AddShape(ctx context.Context, doc domain.DocumentHandle, pageIndex int, shape *domain.ShapeSpec) (*domain.ShapeResult, error) {
	return c.modify(ctx, domain.OpAddShape, doc, "add_shape", shapePayload(shape, pageIndex, ""))
}

func (c *Client) UpdateShape(ctx context.Context, doc domain.DocumentHandle, pageIndex int, shapeID string, shape *domain.ShapeSpec) (*domain.ShapeResult, error) {
	return c.modify(ctx, domain.OpUpdateShape, doc, "update_shape", shapePayload(shape, pageIndex, shapeID))
}

func (c *Client) DeleteShape(ctx context.Context, doc domain.DocumentHandle, pageIndex int, shapeID string) (*domain.ShapeResult, error) {
	return c.modify(ctx, domain.OpDeleteShape, doc, "delete_shape", map[string]any{
		"page_index": pageIndex,
		"shape_id":   shapeID,
	})
}

func (c *Client) AddConnector(ctx context.Context, doc domain.DocumentHandle, pageIndex int, conn *domain.ConnectorSpec) (*domain.ConnectorResult, error) {
	data := map[string]any{
		"page_index":    pageIndex,
		"from_shape_id": conn.FromShapeID,
		"to_shape_id":   conn.ToShapeID,
	}
	if conn.Text != "" {
		data["text"] = conn.Text
	}
	var out domain.ConnectorResult
	if err := c.post(ctx, domain.OpAddConnector, "/modify-diagram", map[string]any{
		"file_path":  doc.String(),
		"operation":  "add_connector",
		"shape_data": data,
	}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteConnection(ctx context.Context, doc domain.DocumentHandle, pageIndex int, connectorID string) (*domain.ConnectorResult, error) {
	var out domain.ConnectorResult
	if err := c.post(ctx, domain.OpDeleteConnection, "/modify-diagram", map[string]any{
		"file_path": doc.String(),
		"operation": "delete_connection",
		"shape_data": map[string]any{
			"page_index":   pageIndex,
			"connector_id": connectorID,
		},
	}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) VerifyConnections(ctx context.Context, doc domain.DocumentHandle, shapeIDs []string) ([]domain.ConnectionInfo, error) {
	body := map[string]any{
		"file_path": doc.String(),
		"shape_ids": shapeIDs,
	}
	var out struct {
		Connections []domain.ConnectionInfo `json:"connections"`
	}
	if err := c.post(ctx, domain.OpVerifyConnections, "/verify-connections", body, &out); err != nil {
		return nil, err
	}
	return out.Connections, nil
}

func (c *Client) CreateDiagram(ctx context.Context, create *domain.CreateSpec) (*domain.CreateResult, error) {
	body := map[string]any{
		"template":  create.Template.Resolved,
		"save_path": create.SavePath,
	}
	var out domain.CreateResult
	if err := c.post(ctx, domain.OpCreateDiagram, "/create-diagram", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) SaveDiagram(ctx context.Context, doc domain.DocumentHandle, savePath string) (*domain.SaveResult, error) {
	body := map[string]any{
		"file_path": doc.String(),
		"save_path": savePath,
	}
	var out domain.SaveResult
	if err := c.post(ctx, domain.OpSaveDiagram, "/save-diagram", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) ExportDiagram(ctx context.Context, doc domain.DocumentHandle, export *domain.ExportSpec) (*domain.ExportResult, error) {
	body := map[string]any{
		"file_path":   doc.String(),
		"format":      string(export.Format),
		"output_path": export.OutputPath,
	}
	var out domain.ExportResult
	if err := c.post(ctx, domain.OpExportDiagram, "/export-diagram", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) ListStencils(ctx context.Context) ([]domain.StencilInfo, error) {
	var out struct {
		OpenStencils      []domain.StencilInfo `json:"open_stencils"`
		SuggestedStencils []domain.StencilInfo `json:"suggested_stencils"`
	}
	if err := c.get(ctx, domain.OpListStencils, "/available-stencils", &out); err != nil {
		return nil, err
	}
	for i := range out.OpenStencils {
		out.OpenStencils[i].Open = true
	}
	return append(out.OpenStencils, out.SuggestedStencils...), nil
}

func (c *Client) ListMasters(ctx context.Context) (map[string][]domain.MasterInfo, error) {
	var out struct {
		MastersByStencil map[string][]domain.MasterInfo `json:"masters_by_stencil"`
	}
	if err := c.get(ctx, domain.OpListMasters, "/available-masters", &out); err != nil {
		return nil, err
	}
	return out.MastersByStencil, nil
}

func (c *Client) ShapesOnPage(ctx context.Context, doc domain.DocumentHandle, pageIndex int) (*domain.PageShapes, error) {
	body := map[string]any{
		"file_path":  doc.String(),
		"page_index": pageIndex,
	}
	var out domain.PageShapes
	if err := c.post(ctx, domain.OpGetShapesOnPage, "/get-shapes", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) ImageToDiagram(ctx context.Context, image *domain.ImageSpec) (*domain.ImageResult, error) {
	body := map[string]any{
		"image_path":      image.ImagePath,
		"output_path":     image.OutputPath,
		"detection_level": string(image.DetectionLevel),
	}
	var out domain.ImageResult
	if err := c.post(ctx, domain.OpImageToDiagram, "/image-to-diagram", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) modify(ctx context.Context, op domain.OperationKind, doc domain.DocumentHandle, operation string, data map[string]any) (*domain.ShapeResult, error) {
	var out domain.ShapeResult
	if err := c.post(ctx, op, "/modify-diagram", map[string]any{
		"file_path":  doc.String(),
		"operation":  operation,
		"shape_data": data,
	}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// shapePayload flattens a ShapeSpec into the wire map the host expects.
// Colors travel as "#RRGGBB"; line patterns as their names.
func shapePayload(shape *domain.ShapeSpec, pageIndex int, shapeID string) map[string]any {
	data := map[string]any{"page_index": pageIndex}
	if shapeID != "" {
		data["shape_id"] = shapeID
	}
	if shape == nil {
		return data
	}
	if shape.Master.Resolved != "" {
		data["master_name"] = shape.Master.Resolved
	} else if shape.Master.Requested != "" {
		data["master_name"] = shape.Master.Requested
	}
	if s := shape.Master.Stencil; s.Resolved != "" {
		data["stencil_name"] = s.Resolved
	} else if s.Requested != "" {
		data["stencil_name"] = s.Requested
	}
	if shape.Position != nil {
		data["position"] = map[string]float64{"x": shape.Position.X, "y": shape.Position.Y}
	}
	if shape.Size != nil {
		data["size"] = map[string]float64{"width": shape.Size.Width, "height": shape.Size.Height}
	}
	if shape.Text != nil {
		data["text"] = *shape.Text
	}
	if shape.Fill != nil {
		data["fill_color"] = shape.Fill.Hex()
	}
	if shape.Line != nil {
		data["line_weight"] = shape.Line.Weight
		data["line_pattern"] = string(shape.Line.Pattern)
	}
	return data
}

func (c *Client) get(ctx context.Context, op domain.OperationKind, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}
	return c.do(op, req, out)
}

func (c *Client) post(ctx context.Context, op domain.OperationKind, path string, body any, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(op, req, out)
}

func (c *Client) do(op domain.OperationKind, req *http.Request, out any) error {
	resp, err := c.http.Do(req)
	if err != nil {
		// Deadline expiry surfaces as a url.Error wrapping the context error;
		// keep that distinct from a dead link.
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
			return fmt.Errorf("%s: %w", op, err)
		}
		var ue *url.Error
		if errors.As(err, &ue) && ue.Timeout() {
			return fmt.Errorf("%s: %w", op, context.DeadlineExceeded)
		}
		return fmt.Errorf("%s: %v: %w", op, err, domain.ErrRelayConnectionLost)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%s: reading response: %w", op, domain.ErrRelayConnectionLost)
	}

	var env apiResponse
	if err := json.Unmarshal(raw, &env); err != nil {
		return fmt.Errorf("%s: malformed response (%d): %w", op, resp.StatusCode, domain.ErrRelayConnectionLost)
	}

	if env.Status != "success" && env.Status != "healthy" {
		msg := env.Message
		if msg == "" {
			msg = fmt.Sprintf("status %q (http %d)", env.Status, resp.StatusCode)
		}
		return &domain.ExecutorError{Op: op, Message: msg}
	}

	if out != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return fmt.Errorf("%s: decoding payload: %v", op, err)
		}
	}
	return nil
}

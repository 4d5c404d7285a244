// Package translator turns loosely-typed tool requests into canonical
// operations. All request validation happens here, before anything is
// dispatched, so a malformed request never reaches the relay.
package translator

import (
	"fmt"
	"strings"

	"github.com/Therealkorris/MCP/pkg/domain"
	"github.com/mitchellh/mapstructure"
)

// ShapeResolver maps client-visible shape IDs to executor identifiers.
// Implemented by the session registry.
type ShapeResolver interface {
	Resolve(callerID int) (string, error)
}

// Request is the loose wire form of a diagram command. Unknown keys are
// ignored; scalar types are coerced where unambiguous.
type Request struct {
	Operation      string     `mapstructure:"operation"`
	FilePath       string     `mapstructure:"file_path"`
	PageIndex      *int       `mapstructure:"page_index"`
	ShapeData      *ShapeData `mapstructure:"shape_data"`
	AnalysisType   string     `mapstructure:"analysis_type"`
	Template       string     `mapstructure:"template"`
	SavePath       string     `mapstructure:"save_path"`
	Format         string     `mapstructure:"format"`
	OutputPath     string     `mapstructure:"output_path"`
	ImagePath      string     `mapstructure:"image_path"`
	DetectionLevel string     `mapstructure:"detection_level"`
	ShapeIDs       []int      `mapstructure:"shape_ids"`
}

// ShapeData carries per-shape parameters for mutating operations. FillColor
// stays untyped until parse time: clients legitimately send names, rgb()
// strings or packed integers.
type ShapeData struct {
	MasterName  string   `mapstructure:"master_name"`
	StencilName string   `mapstructure:"stencil_name"`
	Position    *Point   `mapstructure:"position"`
	Size        *Dims    `mapstructure:"size"`
	Text        *string  `mapstructure:"text"`
	FillColor   any      `mapstructure:"fill_color"`
	LineWeight  *float64 `mapstructure:"line_weight"`
	LinePattern string   `mapstructure:"line_pattern"`
	ShapeID     *int     `mapstructure:"shape_id"`
	FromShapeID *int     `mapstructure:"from_shape_id"`
	ToShapeID   *int     `mapstructure:"to_shape_id"`
	ConnectorID *int     `mapstructure:"connector_id"`
}

// Point is a loose 2D coordinate.
type Point struct {
	X float64 `mapstructure:"x"`
	Y float64 `mapstructure:"y"`
}

// Dims is a loose width/height pair.
type Dims struct {
	Width  float64 `mapstructure:"width"`
	Height float64 `mapstructure:"height"`
}

// Translator validates requests and produces canonical operations.
type Translator struct {
	resolver ShapeResolver
}

// New creates a Translator bound to a session's shape registry.
func New(resolver ShapeResolver) *Translator {
	return &Translator{resolver: resolver}
}

// Decode converts a raw argument map into a Request, coercing scalar types
// the way lenient clients send them (numbers as strings, ints as floats).
func Decode(raw map[string]any) (*Request, error) {
	var req Request
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &req,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return nil, err
	}
	if err := dec.Decode(raw); err != nil {
		return nil, &domain.ValidationError{Field: "request", Reason: err.Error()}
	}
	return &req, nil
}

// Translate validates req and produces a canonical operation for kind.
// Shape IDs are resolved through the session registry; color and line
// parameters are parsed eagerly so a bad value fails before dispatch.
// Master and stencil references come back with only Requested populated;
// fallback resolution happens at dispatch, where catalog state is known.
func (t *Translator) Translate(kind domain.OperationKind, req *Request) (*domain.CanonicalOperation, error) {
	op := &domain.CanonicalOperation{
		Kind:   kind,
		Target: domain.NewHandle(req.FilePath),
	}
	if req.PageIndex != nil {
		if *req.PageIndex < 1 {
			return nil, domain.NewValidationError("page_index", "must be 1 or greater")
		}
		op.PageIndex = *req.PageIndex
	} else {
		op.PageIndex = 1
	}

	switch kind {
	case domain.OpAddShape:
		spec, err := t.shapeSpec(req.ShapeData, true)
		if err != nil {
			return nil, err
		}
		op.Shape = spec

	case domain.OpUpdateShape:
		if req.ShapeData == nil || req.ShapeData.ShapeID == nil {
			return nil, domain.NewValidationError("shape_id", "required for update_shape")
		}
		id, err := t.resolveID(*req.ShapeData.ShapeID)
		if err != nil {
			return nil, err
		}
		op.CallerID = *req.ShapeData.ShapeID
		op.ShapeID = id
		spec, err := t.shapeSpec(req.ShapeData, false)
		if err != nil {
			return nil, err
		}
		op.Shape = spec

	case domain.OpDeleteShape:
		if req.ShapeData == nil || req.ShapeData.ShapeID == nil {
			return nil, domain.NewValidationError("shape_id", "required for delete_shape")
		}
		id, err := t.resolveID(*req.ShapeData.ShapeID)
		if err != nil {
			return nil, err
		}
		op.CallerID = *req.ShapeData.ShapeID
		op.ShapeID = id

	case domain.OpAddConnector:
		conn, err := t.connectorSpec(req.ShapeData)
		if err != nil {
			return nil, err
		}
		op.Connector = conn

	case domain.OpDeleteConnection:
		if req.ShapeData == nil || req.ShapeData.ConnectorID == nil {
			return nil, domain.NewValidationError("connector_id", "required for delete_connection")
		}
		id, err := t.resolveID(*req.ShapeData.ConnectorID)
		if err != nil {
			return nil, err
		}
		op.CallerID = *req.ShapeData.ConnectorID
		op.ShapeID = id

	case domain.OpAnalyzeDiagram:
		at, err := domain.ParseAnalysisType(req.AnalysisType)
		if err != nil {
			return nil, err
		}
		op.Analysis = at

	case domain.OpVerifyConnections:
		for _, cid := range req.ShapeIDs {
			id, err := t.resolveID(cid)
			if err != nil {
				return nil, err
			}
			op.ShapeIDs = append(op.ShapeIDs, id)
		}

	case domain.OpCreateDiagram:
		// A new diagram may stay unsaved; the path is validated only when given.
		if err := validateSavePath(req.SavePath); err != nil {
			return nil, err
		}
		op.Create = &domain.CreateSpec{
			Template: domain.TemplateReference{Requested: req.Template},
			SavePath: req.SavePath,
		}

	case domain.OpSaveDiagram:
		if err := validateSavePath(req.SavePath); err != nil {
			return nil, err
		}
		op.SavePath = req.SavePath

	case domain.OpExportDiagram:
		format, err := domain.ParseExportFormat(req.Format)
		if err != nil {
			return nil, err
		}
		if req.OutputPath == "" {
			return nil, domain.NewValidationError("output_path", "required for export")
		}
		op.Export = &domain.ExportSpec{Format: format, OutputPath: req.OutputPath}

	case domain.OpImageToDiagram:
		if req.ImagePath == "" {
			return nil, domain.NewValidationError("image_path", "required")
		}
		op.Image = &domain.ImageSpec{
			ImagePath:      req.ImagePath,
			OutputPath:     req.OutputPath,
			DetectionLevel: domain.ParseDetectionLevel(req.DetectionLevel),
		}

	case domain.OpListStencils, domain.OpListMasters, domain.OpGetActiveDocument, domain.OpGetShapesOnPage:
		// No parameters beyond the target document.

	default:
		return nil, fmt.Errorf("%q: %w", kind, domain.ErrUnsupportedOperation)
	}

	return op, nil
}

// TranslateModify maps the combined modify endpoint's operation field onto a
// concrete kind and translates it.
func (t *Translator) TranslateModify(req *Request) (*domain.CanonicalOperation, error) {
	var kind domain.OperationKind
	switch strings.ToLower(strings.TrimSpace(req.Operation)) {
	case "add_shape":
		kind = domain.OpAddShape
	case "update_shape":
		kind = domain.OpUpdateShape
	case "delete_shape":
		kind = domain.OpDeleteShape
	case "add_connector", "connect_shapes":
		kind = domain.OpAddConnector
	case "delete_connection":
		kind = domain.OpDeleteConnection
	default:
		return nil, fmt.Errorf("%q: %w", req.Operation, domain.ErrUnsupportedOperation)
	}
	return t.Translate(kind, req)
}

func (t *Translator) shapeSpec(data *ShapeData, forAdd bool) (*domain.ShapeSpec, error) {
	spec := &domain.ShapeSpec{}
	if data == nil {
		if forAdd {
			pos := domain.DefaultPosition
			spec.Position = &pos
			return spec, nil
		}
		return nil, domain.NewValidationError("shape_data", "required")
	}

	spec.Master = domain.MasterReference{
		Requested: data.MasterName,
		Stencil:   domain.StencilReference{Requested: data.StencilName},
	}
	spec.Text = data.Text

	if data.Position != nil {
		spec.Position = &domain.Position{X: data.Position.X, Y: data.Position.Y}
	} else if forAdd {
		pos := domain.DefaultPosition
		spec.Position = &pos
	}
	if data.Size != nil {
		if data.Size.Width <= 0 || data.Size.Height <= 0 {
			return nil, domain.NewValidationError("size", "width and height must be positive")
		}
		spec.Size = &domain.Size{Width: data.Size.Width, Height: data.Size.Height}
	}

	if data.FillColor != nil {
		c, err := domain.ParseColor(data.FillColor)
		if err != nil {
			return nil, err
		}
		spec.Fill = &c
	}
	if data.LineWeight != nil || data.LinePattern != "" {
		style, err := domain.ParseLineStyle(data.LineWeight, data.LinePattern)
		if err != nil {
			return nil, err
		}
		spec.Line = &style
	}
	return spec, nil
}

func (t *Translator) connectorSpec(data *ShapeData) (*domain.ConnectorSpec, error) {
	if data == nil || data.FromShapeID == nil || data.ToShapeID == nil {
		return nil, domain.NewValidationError("shape_data", "from_shape_id and to_shape_id are required")
	}
	from, to := *data.FromShapeID, *data.ToShapeID
	if from == to {
		return nil, fmt.Errorf("shape %d cannot connect to itself: %w", from, domain.ErrInvalidConnection)
	}
	fromID, err := t.resolveID(from)
	if err != nil {
		return nil, err
	}
	toID, err := t.resolveID(to)
	if err != nil {
		return nil, err
	}
	spec := &domain.ConnectorSpec{
		FromShapeID:  fromID,
		ToShapeID:    toID,
		FromCallerID: from,
		ToCallerID:   to,
	}
	if data.Text != nil {
		spec.Text = *data.Text
	}
	return spec, nil
}

func (t *Translator) resolveID(callerID int) (string, error) {
	if t.resolver == nil {
		return "", domain.NewValidationError("shape_id", "no shape registry in this session")
	}
	return t.resolver.Resolve(callerID)
}

func validateSavePath(path string) error {
	if path == "" {
		return nil
	}
	lower := strings.ToLower(path)
	if !strings.HasSuffix(lower, ".vsd") && !strings.HasSuffix(lower, ".vsdx") {
		return domain.NewValidationError("save_path", "must end in .vsd or .vsdx")
	}
	return nil
}

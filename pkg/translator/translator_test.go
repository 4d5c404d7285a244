package translator

import (
	"fmt"
	"testing"

	"github.com/Therealkorris/MCP/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mapResolver map[int]string

func (m mapResolver) Resolve(callerID int) (string, error) {
	id, ok := m[callerID]
	if !ok {
		return "", fmt.Errorf("%d: %w", callerID, domain.ErrShapeNotFound)
	}
	return id, nil
}

func decode(t *testing.T, raw map[string]any) *Request {
	t.Helper()
	req, err := Decode(raw)
	require.NoError(t, err)
	return req
}

func TestDecode_WeakTyping(t *testing.T) {
	req := decode(t, map[string]any{
		"file_path":  "active",
		"page_index": "2", // string-typed int from a lenient client
		"shape_data": map[string]any{
			"master_name": "Rectangle",
			"position":    map[string]any{"x": 1, "y": 2.5},
			"shape_id":    float64(3), // JSON numbers arrive as float64
		},
	})

	require.NotNil(t, req.PageIndex)
	assert.Equal(t, 2, *req.PageIndex)
	require.NotNil(t, req.ShapeData)
	assert.Equal(t, "Rectangle", req.ShapeData.MasterName)
	assert.Equal(t, 1.0, req.ShapeData.Position.X)
	require.NotNil(t, req.ShapeData.ShapeID)
	assert.Equal(t, 3, *req.ShapeData.ShapeID)
}

func TestTranslate_AddShapeDefaults(t *testing.T) {
	tr := New(mapResolver{})

	op, err := tr.Translate(domain.OpAddShape, decode(t, map[string]any{
		"file_path": "",
		"shape_data": map[string]any{
			"master_name": "Circle",
			"fill_color":  "red",
		},
	}))

	require.NoError(t, err)
	assert.Equal(t, domain.ActiveDocument, op.Target)
	assert.Equal(t, 1, op.PageIndex)
	require.NotNil(t, op.Shape)
	assert.Equal(t, "Circle", op.Shape.Master.Requested)
	require.NotNil(t, op.Shape.Position)
	assert.Equal(t, domain.DefaultPosition, *op.Shape.Position)
	require.NotNil(t, op.Shape.Fill)
	assert.Equal(t, domain.ColorValue{R: 255, G: 0, B: 0, Source: domain.ColorSourceNamed}, *op.Shape.Fill)
}

func TestTranslate_AddShapeBadColorFailsLocally(t *testing.T) {
	tr := New(mapResolver{})

	_, err := tr.Translate(domain.OpAddShape, decode(t, map[string]any{
		"shape_data": map[string]any{"fill_color": "chartreuse-ish"},
	}))

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidColorFormat)
}

func TestTranslate_UpdateShapeResolvesID(t *testing.T) {
	tr := New(mapResolver{1: "Sheet.4"})

	op, err := tr.Translate(domain.OpUpdateShape, decode(t, map[string]any{
		"shape_data": map[string]any{
			"shape_id": 1,
			"text":     "renamed",
		},
	}))

	require.NoError(t, err)
	assert.Equal(t, "Sheet.4", op.ShapeID)
	assert.Equal(t, 1, op.CallerID)
	require.NotNil(t, op.Shape.Text)
	assert.Equal(t, "renamed", *op.Shape.Text)
	// Update with no explicit position must not inject one.
	assert.Nil(t, op.Shape.Position)
}

func TestTranslate_UnknownShapeFailsBeforeDispatch(t *testing.T) {
	tr := New(mapResolver{})

	_, err := tr.Translate(domain.OpDeleteShape, decode(t, map[string]any{
		"shape_data": map[string]any{"shape_id": 42},
	}))

	assert.ErrorIs(t, err, domain.ErrShapeNotFound)
}

func TestTranslate_ConnectorSelfLoopRejected(t *testing.T) {
	tr := New(mapResolver{5: "Sheet.9"})

	_, err := tr.Translate(domain.OpAddConnector, decode(t, map[string]any{
		"shape_data": map[string]any{"from_shape_id": 5, "to_shape_id": 5},
	}))

	assert.ErrorIs(t, err, domain.ErrInvalidConnection)
}

func TestTranslate_ConnectorResolvesBothEndpoints(t *testing.T) {
	tr := New(mapResolver{1: "Sheet.2", 2: "Sheet.7"})

	op, err := tr.Translate(domain.OpAddConnector, decode(t, map[string]any{
		"shape_data": map[string]any{"from_shape_id": 1, "to_shape_id": 2},
	}))

	require.NoError(t, err)
	assert.Equal(t, "Sheet.2", op.Connector.FromShapeID)
	assert.Equal(t, "Sheet.7", op.Connector.ToShapeID)
	assert.Equal(t, 1, op.Connector.FromCallerID)
	assert.Equal(t, 2, op.Connector.ToCallerID)
}

func TestTranslate_PageIndexValidation(t *testing.T) {
	tr := New(mapResolver{})

	_, err := tr.Translate(domain.OpGetShapesOnPage, decode(t, map[string]any{
		"page_index": 0,
	}))

	require.Error(t, err)
	assert.True(t, domain.IsValidation(err))
}

func TestTranslate_ExportFormat(t *testing.T) {
	tr := New(mapResolver{})

	t.Run("jpeg alias", func(t *testing.T) {
		op, err := tr.Translate(domain.OpExportDiagram, decode(t, map[string]any{
			"format":      "JPEG",
			"output_path": "out.jpg",
		}))
		require.NoError(t, err)
		assert.Equal(t, domain.FormatJPG, op.Export.Format)
	})

	t.Run("bmp rejected", func(t *testing.T) {
		_, err := tr.Translate(domain.OpExportDiagram, decode(t, map[string]any{
			"format":      "bmp",
			"output_path": "out.bmp",
		}))
		assert.ErrorIs(t, err, domain.ErrUnsupportedFormat)
	})
}

func TestTranslate_SavePathExtension(t *testing.T) {
	tr := New(mapResolver{})

	_, err := tr.Translate(domain.OpCreateDiagram, decode(t, map[string]any{
		"template":  "BASIC_M.vssx",
		"save_path": "diagram.txt",
	}))
	require.Error(t, err)
	assert.True(t, domain.IsValidation(err))

	op, err := tr.Translate(domain.OpCreateDiagram, decode(t, map[string]any{
		"template":  "BASIC_M.vssx",
		"save_path": "diagram.VSDX",
	}))
	require.NoError(t, err)
	assert.Equal(t, "BASIC_M.vssx", op.Create.Template.Requested)
}

func TestTranslate_CreateWithoutSavePath(t *testing.T) {
	tr := New(mapResolver{})

	// A new diagram can be created and left unsaved.
	op, err := tr.Translate(domain.OpCreateDiagram, decode(t, map[string]any{
		"template": "BASIC_M.vssx",
	}))
	require.NoError(t, err)
	assert.Equal(t, "BASIC_M.vssx", op.Create.Template.Requested)
	assert.Empty(t, op.Create.SavePath)
}

func TestTranslateModify_OperationRouting(t *testing.T) {
	tr := New(mapResolver{3: "Sheet.1"})

	op, err := tr.TranslateModify(decode(t, map[string]any{
		"operation":  "delete_shape",
		"shape_data": map[string]any{"shape_id": 3},
	}))
	require.NoError(t, err)
	assert.Equal(t, domain.OpDeleteShape, op.Kind)

	_, err = tr.TranslateModify(decode(t, map[string]any{
		"operation": "rotate_shape",
	}))
	assert.ErrorIs(t, err, domain.ErrUnsupportedOperation)
}

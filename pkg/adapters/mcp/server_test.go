package mcp

import (
	"context"
	"encoding/json"
	"testing"

	mcplib "github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	visio "github.com/Therealkorris/MCP"
	"github.com/Therealkorris/MCP/internal/logging"
	"github.com/Therealkorris/MCP/internal/testutils"
	"github.com/Therealkorris/MCP/pkg/domain"
)

func newTestServer(t *testing.T, exec *testutils.FakeExecutor) *Server {
	t.Helper()
	bridge, err := visio.New(visio.WithExecutor(exec))
	require.NoError(t, err)
	return NewServer(bridge, logging.NewNop())
}

func callRequest(args map[string]any) mcplib.CallToolRequest {
	return mcplib.CallToolRequest{
		Params: mcplib.CallToolParams{Arguments: args},
	}
}

// resultJSON unwraps the text payload of a successful tool result.
func resultJSON(t *testing.T, result *mcplib.CallToolResult) map[string]any {
	t.Helper()
	require.False(t, result.IsError)
	require.NotEmpty(t, result.Content)
	text, ok := result.Content[0].(mcplib.TextContent)
	require.True(t, ok, "expected text content, got %T", result.Content[0])
	var out map[string]any
	require.NoError(t, json.Unmarshal([]byte(text.Text), &out))
	return out
}

func TestModifyTool_AddShapeReturnsShapeID(t *testing.T) {
	exec := &testutils.FakeExecutor{
		AddShapeFn: func(_ context.Context, _ domain.DocumentHandle, _ int, _ *domain.ShapeSpec) (*domain.ShapeResult, error) {
			return &domain.ShapeResult{ShapeID: "Sheet.4", ShapeName: "Rectangle"}, nil
		},
	}
	srv := newTestServer(t, exec)

	result, err := srv.modifyHandler()(context.Background(), callRequest(map[string]any{
		"operation":  "add_shape",
		"shape_data": map[string]any{"master_name": "Rectangle", "text": "Start"},
	}))
	require.NoError(t, err)

	out := resultJSON(t, result)
	assert.Equal(t, "success", out["status"])
	assert.Equal(t, float64(1), out["shape_id"])
}

func TestModifyTool_InvalidColorIsToolError(t *testing.T) {
	exec := &testutils.FakeExecutor{}
	srv := newTestServer(t, exec)

	result, err := srv.modifyHandler()(context.Background(), callRequest(map[string]any{
		"operation":  "add_shape",
		"shape_data": map[string]any{"master_name": "Rectangle", "fill_color": "not-a-color"},
	}))
	require.NoError(t, err)

	// Tool-level failures come back as error results, not protocol errors.
	assert.True(t, result.IsError)
	assert.Empty(t, exec.Calls())
}

func TestGetShapesTool_ListsPage(t *testing.T) {
	exec := &testutils.FakeExecutor{
		ShapesOnPageFn: func(_ context.Context, _ domain.DocumentHandle, pageIndex int) (*domain.PageShapes, error) {
			assert.Equal(t, 2, pageIndex)
			return &domain.PageShapes{
				PageIndex: 2,
				Shapes:    []domain.ShapeInfo{{ID: "Sheet.1", Name: "Rectangle"}},
			}, nil
		},
	}
	srv := newTestServer(t, exec)

	result, err := srv.handler(domain.OpGetShapesOnPage)(context.Background(), callRequest(map[string]any{
		"file_path":  "active",
		"page_index": 2,
	}))
	require.NoError(t, err)

	out := resultJSON(t, result)
	assert.Equal(t, "success", out["status"])
	assert.NotNil(t, out["data"])
}

func TestStencilsTool_DegradesWhenHostDown(t *testing.T) {
	exec := &testutils.FakeExecutor{}
	srv := newTestServer(t, exec)

	result, err := srv.stencilsHandler()(context.Background(), callRequest(nil))
	require.NoError(t, err)

	// No stencil listing wired on the fake, but the built-in catalog still
	// produces a local view.
	out := resultJSON(t, result)
	assert.NotNil(t, out["stencils"])
}

func TestServerOwnsOneSession(t *testing.T) {
	exec := &testutils.FakeExecutor{
		AddShapeFn: func(_ context.Context, _ domain.DocumentHandle, _ int, _ *domain.ShapeSpec) (*domain.ShapeResult, error) {
			return &domain.ShapeResult{ShapeID: "Sheet.1"}, nil
		},
	}
	srv := newTestServer(t, exec)

	_, err := srv.modifyHandler()(context.Background(), callRequest(map[string]any{
		"operation":  "add_shape",
		"shape_data": map[string]any{"master_name": "Rectangle"},
	}))
	require.NoError(t, err)

	execID, err := srv.Session().Resolve(1)
	require.NoError(t, err)
	assert.Equal(t, "Sheet.1", execID)
}

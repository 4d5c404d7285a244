// Package mcp exposes the bridge as a Model Context Protocol server. Tool
// names and argument shapes follow the REST surface's operation IDs, so
// agents configured for either transport see the same vocabulary.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/aretw0/lifecycle"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	visio "github.com/Therealkorris/MCP"
	"github.com/Therealkorris/MCP/pkg/domain"
	"github.com/Therealkorris/MCP/pkg/session"
)

// Server wraps a Bridge and exposes it as an MCP server. Each Server owns one
// session: an MCP conversation is one client, and shape IDs stay stable for
// its lifetime.
type Server struct {
	bridge    *visio.Bridge
	session   *session.Session
	mcpServer *server.MCPServer
	logger    *slog.Logger
}

// NewServer creates an MCP server over a bridge.
func NewServer(bridge *visio.Bridge, logger *slog.Logger) *Server {
	s := &Server{
		bridge:    bridge,
		session:   bridge.NewSession(),
		mcpServer: server.NewMCPServer("visio-mcp", strings.TrimSpace(visio.Version)),
		logger:    logger,
	}
	s.registerTools()
	return s
}

// Session exposes the server's session, mainly for tests.
func (s *Server) Session() *session.Session { return s.session }

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE starts the server on the given port using SSE.
func (s *Server) ServeSSE(ctx context.Context, port int) error {
	addr := fmt.Sprintf(":%d", port)
	baseURL := fmt.Sprintf("http://localhost:%d", port)

	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))

	mux := http.NewServeMux()
	mux.Handle("/sse", corsMiddleware(sseServer.SSEHandler()))
	mux.Handle("/message", corsMiddleware(sseServer.MessageHandler()))

	httpServer := &http.Server{
		Addr:    addr,
		Handler: mux,
	}

	serverErrors := make(chan error, 1)

	lifecycle.Go(ctx, func(ctx context.Context) error {
		s.logger.Info("MCP server listening (SSE)", "address", addr)
		serverErrors <- httpServer.ListenAndServe()
		return nil
	})

	select {
	case err := <-serverErrors:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := s.session.Close(shutdownCtx); err != nil {
			s.logger.Warn("session teardown failed", "err", err)
		}
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	}
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Requested-With")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Server) registerTools() {
	s.mcpServer.AddTool(mcp.NewTool("analyze_visio_diagram",
		mcp.WithDescription("Analyze a Visio diagram to extract structure, connections or text. Use 'active' for the currently open document."),
		mcp.WithString("file_path", mcp.Description("Path to the diagram, or 'active'")),
		mcp.WithString("analysis_type", mcp.Description("structure, connections, text or all (default all)")),
	), s.handler(domain.OpAnalyzeDiagram))

	s.mcpServer.AddTool(mcp.NewTool("modify_visio_diagram",
		mcp.WithDescription("Modify a diagram: add_shape, update_shape, delete_shape, add_connector or delete_connection. Shape IDs are the small integers returned by earlier calls in this conversation."),
		mcp.WithString("file_path", mcp.Description("Path to the diagram, or 'active'")),
		mcp.WithString("operation", mcp.Required(), mcp.Description("add_shape, update_shape, delete_shape, add_connector, delete_connection")),
		mcp.WithObject("shape_data", mcp.Description("Operation parameters: master_name, position {x,y}, size, text, fill_color, line_weight, line_pattern, shape_id, from_shape_id, to_shape_id, connector_id")),
	), s.modifyHandler())

	s.mcpServer.AddTool(mcp.NewTool("get_active_document",
		mcp.WithDescription("Get information about the currently active Visio document."),
	), s.handler(domain.OpGetActiveDocument))

	s.mcpServer.AddTool(mcp.NewTool("verify_connections",
		mcp.WithDescription("Verify connections between shapes in a diagram."),
		mcp.WithString("file_path", mcp.Description("Path to the diagram, or 'active'")),
		mcp.WithArray("shape_ids", mcp.Description("Shape IDs to check; empty checks all")),
	), s.handler(domain.OpVerifyConnections))

	s.mcpServer.AddTool(mcp.NewTool("create_new_diagram",
		mcp.WithDescription("Create a new Visio diagram from a template."),
		mcp.WithString("template", mcp.Description("Template name; falls back to a basic or blank document when unavailable")),
		mcp.WithString("save_path", mcp.Description("Optional path to save to, must end in .vsd or .vsdx")),
	), s.handler(domain.OpCreateDiagram))

	s.mcpServer.AddTool(mcp.NewTool("save_diagram",
		mcp.WithDescription("Save a diagram, optionally to a new path."),
		mcp.WithString("file_path", mcp.Description("Path to the diagram, or 'active'")),
		mcp.WithString("save_path", mcp.Description("Optional new path, must end in .vsd or .vsdx")),
	), s.handler(domain.OpSaveDiagram))

	s.mcpServer.AddTool(mcp.NewTool("get_available_stencils",
		mcp.WithDescription("List available stencils: open in the host plus locally cataloged ones."),
	), s.stencilsHandler())

	s.mcpServer.AddTool(mcp.NewTool("get_available_masters",
		mcp.WithDescription("List master shapes from all open stencils."),
	), s.handler(domain.OpListMasters))

	s.mcpServer.AddTool(mcp.NewTool("get_shapes_on_page",
		mcp.WithDescription("List all shapes on a page with their IDs."),
		mcp.WithString("file_path", mcp.Description("Path to the diagram, or 'active'")),
		mcp.WithNumber("page_index", mcp.Description("1-based page index (default 1)")),
	), s.handler(domain.OpGetShapesOnPage))

	s.mcpServer.AddTool(mcp.NewTool("export_diagram",
		mcp.WithDescription("Export a diagram to png, jpg, pdf or svg."),
		mcp.WithString("file_path", mcp.Description("Path to the diagram, or 'active'")),
		mcp.WithString("format", mcp.Required(), mcp.Description("png, jpg, pdf or svg")),
		mcp.WithString("output_path", mcp.Required(), mcp.Description("Destination file")),
	), s.handler(domain.OpExportDiagram))

	s.mcpServer.AddTool(mcp.NewTool("image_to_diagram",
		mcp.WithDescription("Best-effort conversion of an image into a starting diagram."),
		mcp.WithString("image_path", mcp.Required(), mcp.Description("Source image")),
		mcp.WithString("output_path", mcp.Description("Where to save the generated diagram")),
		mcp.WithString("detection_level", mcp.Description("simple, standard or detailed")),
	), s.handler(domain.OpImageToDiagram))
}

// handler adapts one canonical operation kind into an MCP tool handler.
func (s *Server) handler(kind domain.OperationKind) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		payload, err := s.bridge.Execute(ctx, s.session, kind, request.GetArguments())
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return s.result(kind, payload)
	}
}

func (s *Server) modifyHandler() server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		payload, err := s.bridge.ExecuteModify(ctx, s.session, request.GetArguments())
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return s.result(domain.OperationKind("modify"), payload)
	}
}

func (s *Server) stencilsHandler() server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		stencils, err := s.bridge.ListStencils(ctx, s.session)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		data, err := json.Marshal(map[string]any{"stencils": stencils})
		if err != nil {
			return nil, err
		}
		return mcp.NewToolResultText(string(data)), nil
	}
}

// result serializes a payload, attaching the fresh caller-visible shape ID
// for add operations so agents have something stable to refer back to.
func (s *Server) result(kind domain.OperationKind, payload any) (*mcp.CallToolResult, error) {
	wrapper := map[string]any{"status": "success"}
	if payload != nil {
		wrapper["data"] = payload
	}
	if id, ok := s.bridge.CallerID(s.session, payload); ok {
		wrapper["shape_id"] = id
	}
	data, err := json.Marshal(wrapper)
	if err != nil {
		return nil, fmt.Errorf("marshaling %s result: %w", kind, err)
	}
	return mcp.NewToolResultText(string(data)), nil
}

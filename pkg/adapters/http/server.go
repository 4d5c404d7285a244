// Package http exposes the bridge over REST, mirroring the privileged host
// relay's endpoint surface so existing clients can point at the bridge
// unchanged. The handler owns one long-lived session.
package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	visio "github.com/Therealkorris/MCP"
	"github.com/Therealkorris/MCP/pkg/domain"
	"github.com/Therealkorris/MCP/pkg/session"
)

// Server implements the REST surface over a bridge.
type Server struct {
	bridge  *visio.Bridge
	session *session.Session
	logger  *slog.Logger
}

// NewServer creates the REST server over a bridge.
func NewServer(bridge *visio.Bridge, logger *slog.Logger) *Server {
	return &Server{
		bridge:  bridge,
		session: bridge.NewSession(),
		logger:  logger,
	}
}

// Handler builds the routed handler. When gatherer is non-nil, /metrics is
// mounted on it.
func (s *Server) Handler(gatherer prometheus.Gatherer) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/health", s.health)
	r.Get("/healthz", s.health)
	r.Get("/active-document", s.op(domain.OpGetActiveDocument))
	r.Post("/analyze-diagram", s.op(domain.OpAnalyzeDiagram))
	r.Post("/modify-diagram", s.modify)
	r.Post("/verify-connections", s.op(domain.OpVerifyConnections))
	r.Post("/create-diagram", s.op(domain.OpCreateDiagram))
	r.Post("/save-diagram", s.op(domain.OpSaveDiagram))
	r.Get("/available-stencils", s.stencils)
	r.Get("/available-masters", s.op(domain.OpListMasters))
	r.Post("/get-shapes", s.op(domain.OpGetShapesOnPage))
	r.Post("/export-diagram", s.op(domain.OpExportDiagram))
	r.Post("/image-to-diagram", s.op(domain.OpImageToDiagram))

	if gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	}

	return enableCORS(r)
}

// NewHandler is a convenience for deployments that only need the handler.
func NewHandler(bridge *visio.Bridge, logger *slog.Logger, gatherer prometheus.Gatherer) http.Handler {
	return NewServer(bridge, logger).Handler(gatherer)
}

// Session exposes the handler's session, mainly for tests.
func (s *Server) Session() *session.Session { return s.session }

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	if err := s.bridge.Health(r.Context()); err != nil {
		s.writeError(w, domain.OpGetActiveDocument, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"status": "healthy", "service": "Visio Bridge"})
}

// op adapts one canonical operation kind into an HTTP handler.
func (s *Server) op(kind domain.OperationKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		raw, ok := s.decodeBody(w, r)
		if !ok {
			return
		}
		payload, err := s.bridge.Execute(r.Context(), s.session, kind, raw)
		if err != nil {
			s.writeError(w, kind, err)
			return
		}
		s.writeSuccess(w, payload)
	}
}

func (s *Server) modify(w http.ResponseWriter, r *http.Request) {
	raw, ok := s.decodeBody(w, r)
	if !ok {
		return
	}
	payload, err := s.bridge.ExecuteModify(r.Context(), s.session, raw)
	if err != nil {
		s.writeError(w, domain.OperationKind("modify"), err)
		return
	}
	s.writeSuccess(w, payload)
}

func (s *Server) stencils(w http.ResponseWriter, r *http.Request) {
	stencils, err := s.bridge.ListStencils(r.Context(), s.session)
	if err != nil {
		s.writeError(w, domain.OpListStencils, err)
		return
	}
	s.writeSuccess(w, map[string]any{"stencils": stencils})
}

// decodeBody reads an optional JSON object body. GET endpoints and empty
// bodies yield an empty argument map.
func (s *Server) decodeBody(w http.ResponseWriter, r *http.Request) (map[string]any, bool) {
	raw := map[string]any{}
	if r.Body == nil || r.ContentLength == 0 {
		return raw, true
	}
	if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
		s.writeJSON(w, http.StatusBadRequest, map[string]any{
			"status":  "error",
			"message": "invalid request body: " + err.Error(),
		})
		return nil, false
	}
	return raw, true
}

func (s *Server) writeSuccess(w http.ResponseWriter, payload any) {
	body := map[string]any{"status": "success"}
	if payload != nil {
		body["data"] = payload
	}
	if id, ok := s.bridge.CallerID(s.session, payload); ok {
		body["shape_id"] = id
	}
	s.writeJSON(w, http.StatusOK, body)
}

// writeError maps the error taxonomy onto HTTP statuses: validation and
// lookup failures are the client's fault, relay trouble is upstream.
func (s *Server) writeError(w http.ResponseWriter, kind domain.OperationKind, err error) {
	status := http.StatusInternalServerError
	switch {
	case domain.IsValidation(err),
		errors.Is(err, domain.ErrUnsupportedOperation),
		errors.Is(err, domain.ErrUnsupportedFormat),
		errors.Is(err, domain.ErrInvalidConnection):
		status = http.StatusBadRequest
	case errors.Is(err, domain.ErrShapeNotFound):
		status = http.StatusNotFound
	case errors.Is(err, domain.ErrRelayTimeout):
		status = http.StatusGatewayTimeout
	case errors.Is(err, domain.ErrRelayConnectionLost):
		status = http.StatusBadGateway
	case errors.Is(err, domain.ErrSessionClosed):
		status = http.StatusConflict
	}

	if status == http.StatusInternalServerError {
		s.logger.Error("operation failed", "kind", kind, "err", err)
	} else {
		s.logger.Warn("operation rejected", "kind", kind, "status", status, "err", err)
	}
	s.writeJSON(w, status, map[string]any{"status": "error", "message": err.Error()})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		s.logger.Error("failed to encode response", "err", err)
	}
}

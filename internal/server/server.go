package server

import (
	"log/slog"
	"net/http"

	"sales-dashboard/internal/handlers"
	"sales-dashboard/internal/observability"
	"sales-dashboard/internal/services"
	"sales-dashboard/internal/session"
	"sales-dashboard/internal/ui/format"
)

// Deps are the shared services the routes are built from.
type Deps struct {
	Dashboard      *services.Dashboard
	Sessions       *session.Store
	Metrics        *observability.Metrics
	Format         *format.Formatter
	Logger         *slog.Logger
	MaxUploadBytes int64
}

type Server struct {
	mux            *http.ServeMux
	sessions       *session.Store
	metrics        *observability.Metrics
	apiHandlers    *handlers.APIHandlers
	pageHandlers   *handlers.PageHandlers
	sseHandlers    *handlers.SSEHandlers
	exportHandlers *handlers.ExportHandlers
}

func NewServer(deps Deps) *Server {
	s := &Server{
		mux:            http.NewServeMux(),
		sessions:       deps.Sessions,
		metrics:        deps.Metrics,
		apiHandlers:    handlers.NewAPIHandlers(deps.Dashboard, deps.Sessions, deps.Metrics, deps.Logger, deps.MaxUploadBytes),
		pageHandlers:   handlers.NewPageHandlers(deps.Dashboard, deps.Format, deps.Metrics, deps.Logger, deps.MaxUploadBytes),
		sseHandlers:    handlers.NewSSEHandlers(deps.Dashboard, deps.Format, deps.Logger),
		exportHandlers: handlers.NewExportHandlers(deps.Dashboard, deps.Logger),
	}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	withSession := s.sessions.Handle

	// Dashboard routes
	s.mux.HandleFunc("GET /{$}", withSession(s.pageHandlers.HandleIndex))
	s.mux.HandleFunc("POST /upload", withSession(s.pageHandlers.HandleUpload))
	s.mux.HandleFunc("GET /health", s.apiHandlers.HandleHealth)
	s.mux.HandleFunc("GET /admin/stats", withSession(s.apiHandlers.HandleStats))
	s.mux.Handle("GET /metrics", s.metrics.Handler())

	// REST API endpoints
	s.mux.HandleFunc("POST /api/datasets", withSession(s.apiHandlers.HandleUpload))
	s.mux.HandleFunc("DELETE /api/datasets", withSession(s.apiHandlers.HandleClear))
	s.mux.HandleFunc("GET /api/branches", withSession(s.apiHandlers.HandleBranches))
	s.mux.HandleFunc("GET /api/dashboard", withSession(s.apiHandlers.HandleDashboard))
	s.mux.HandleFunc("GET /api/products/{product}/summary", withSession(s.apiHandlers.HandleSummary))
	s.mux.HandleFunc("GET /api/products/{product}/trend", withSession(s.apiHandlers.HandleTrend))
	s.mux.HandleFunc("GET /api/export.xlsx", withSession(s.exportHandlers.HandleWorkbook))

	// Datastar SSE endpoints
	s.mux.HandleFunc("GET /sse/dashboard", withSession(s.sseHandlers.HandleDashboard))
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

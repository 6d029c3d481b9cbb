// Package httpapi serves ranking runs and the report history over HTTP.
package httpapi

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/dshills/docrank/internal/pipeline"
	"github.com/dshills/docrank/internal/storage"
)

// DefaultMaxUploadBytes caps the combined size of uploaded documents
const DefaultMaxUploadBytes = 50 << 20

// Config holds the HTTP-specific settings
type Config struct {
	APIKey         string // empty disables bearer auth
	MaxUploadBytes int64
}

// Server is the HTTP API server for docrank.
type Server struct {
	router chi.Router
	runner *pipeline.Runner
	store  storage.Storage // nil disables the /api/reports routes
	log    *slog.Logger
	cfg    Config
}

// NewServer creates and configures the HTTP server.
func NewServer(runner *pipeline.Runner, store storage.Storage, log *slog.Logger, cfg Config) *Server {
	if log == nil {
		log = slog.Default()
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = DefaultMaxUploadBytes
	}
	s := &Server{
		runner: runner,
		store:  store,
		log:    log,
		cfg:    cfg,
	}
	s.setupRoutes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) setupRoutes() {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(RequestLogger(s.log))

	// Public endpoints.
	r.Get("/health", s.handleHealth)

	// Authenticated endpoints.
	r.Group(func(r chi.Router) {
		if s.cfg.APIKey != "" {
			r.Use(AuthMiddleware(s.cfg.APIKey, s.log))
		}

		r.Post("/api/rank", s.handleRank)
		r.Get("/api/reports", s.handleListReports)
		r.Get("/api/reports/{reportID}", s.handleGetReport)
		r.Delete("/api/reports/{reportID}", s.handleDeleteReport)
		r.Get("/api/documents/{document}/sections", s.handleDocumentSections)
	})

	s.router = r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}

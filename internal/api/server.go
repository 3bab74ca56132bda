package api

import (
	"log/slog"
	"net/http"

	"github.com/dgallion1/timegrid/internal/config"
	"github.com/dgallion1/timegrid/internal/pipeline"
	"github.com/dgallion1/timegrid/internal/render"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Server is the HTTP API server for timegrid.
type Server struct {
	router       chi.Router
	orchestrator *pipeline.Orchestrator
	theme        render.Theme
	log          *slog.Logger
	cfg          config.Config
}

// NewServer creates and configures the HTTP server.
func NewServer(orch *pipeline.Orchestrator, theme render.Theme, log *slog.Logger, cfg config.Config) *Server {
	s := &Server{
		orchestrator: orch,
		theme:        theme,
		log:          log,
		cfg:          cfg,
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
		r.Use(AuthMiddleware(s.cfg.APIKey, s.log))

		r.Post("/api/timelines", s.handleUpload)
		r.Post("/api/timelines/url", s.handleSubmitURL)
		r.Get("/api/timelines", s.handleListTimelines)
		r.Get("/api/timelines/jobs/{jobID}", s.handleJobStatus)
		r.Delete("/api/timelines/jobs/{jobID}", s.handleDeleteJob)
		r.Get("/api/timelines/{timelineID}", s.handleGetTimeline)
		r.Get("/api/stats/render", s.handleRenderStats)
	})

	s.router = r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}

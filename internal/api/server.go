package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/dgallion1/resumedoc/internal/config"
	"github.com/dgallion1/resumedoc/internal/pipeline"
	"github.com/dgallion1/resumedoc/internal/resume"
	"github.com/dgallion1/resumedoc/internal/store"
	"github.com/dgallion1/resumedoc/internal/suggest"
)

// Deps are the collaborators the server routes requests to. Generator and
// Stats may be nil when no Anthropic key is configured.
type Deps struct {
	Engine       *resume.Engine
	Store        store.Store
	Orchestrator *pipeline.Orchestrator
	Generator    *suggest.Generator
	Stats        *suggest.LLMStats
	Model        string
}

// Server is the HTTP API server for resumedoc.
type Server struct {
	router       chi.Router
	engine       *resume.Engine
	store        store.Store
	orchestrator *pipeline.Orchestrator
	generator    *suggest.Generator
	stats        *suggest.LLMStats
	model        string
	log          *slog.Logger
	cfg          config.Config
}

// NewServer creates and configures the HTTP server.
func NewServer(deps Deps, log *slog.Logger, cfg config.Config) *Server {
	if log == nil {
		log = slog.Default()
	}
	s := &Server{
		engine:       deps.Engine,
		store:        deps.Store,
		orchestrator: deps.Orchestrator,
		generator:    deps.Generator,
		stats:        deps.Stats,
		model:        deps.Model,
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
		r.Use(AuthMiddleware(s.cfg.ResumedocAPIKey, s.log))

		r.Route("/api/documents", func(r chi.Router) {
			r.Get("/", s.handleListDocuments)
			r.Post("/", s.handleCreateDocument)
			r.Post("/batch", s.handleBatchCreate)

			r.Route("/{docID}", func(r chi.Router) {
				r.Get("/", s.handleGetDocument)
				r.Delete("/", s.handleDeleteDocument)
				r.Get("/export", s.handleExport)
				r.Post("/renders", s.handleSubmitRender)

				r.Post("/sections", s.handleAddSection)
				r.Put("/sections/{sectionID}", s.handleUpdateSection)
				r.Post("/sections/{sectionID}/move", s.handleMoveSection)
				r.Delete("/sections/{sectionID}", s.handleDeleteSection)

				r.Post("/suggestions", s.handleApplySuggestion)
				r.Post("/suggestions/generate", s.handleGenerateSuggestion)
			})
		})

		r.Get("/api/renders/{jobID}/status", s.handleRenderStatus)
		r.Get("/api/renders/{jobID}/pdf", s.handleRenderPDF)
		r.Get("/api/stats/llm", s.handleLLMStats)
	})

	s.router = r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}

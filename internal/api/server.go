package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/pks0715/seggy-the-analyst-v4/internal/analysis"
	"github.com/pks0715/seggy-the-analyst-v4/internal/config"
	"github.com/pks0715/seggy-the-analyst-v4/internal/pipeline"
	"github.com/pks0715/seggy-the-analyst-v4/internal/report"
)

// Runner executes one analysis request.
type Runner interface {
	Run(ctx context.Context, docs []pipeline.Document) (*report.Report, error)
}

// Prober checks provider connectivity.
type Prober interface {
	Probe(ctx context.Context) bool
}

// Server is the HTTP API server for the analysis service.
type Server struct {
	router chi.Router
	runner Runner
	prober Prober
	stats  *analysis.CallStats
	log    *slog.Logger
	cfg    config.Config
	now    func() time.Time
}

// NewServer creates and configures the HTTP server.
func NewServer(runner Runner, prober Prober, stats *analysis.CallStats, log *slog.Logger, cfg config.Config) *Server {
	s := &Server{
		runner: runner,
		prober: prober,
		stats:  stats,
		log:    log,
		cfg:    cfg,
		now:    time.Now,
	}
	s.setupRoutes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) setupRoutes() {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(RequestLogger(s.log))
	r.Use(Recoverer(s.log))

	// Public endpoints.
	r.Get("/health", s.handleHealth)

	r.Group(func(r chi.Router) {
		if s.cfg.ServiceAPIKey != "" {
			r.Use(AuthMiddleware(s.cfg.ServiceAPIKey, s.log))
		}

		r.Post("/analyze", s.handleAnalyze)
		r.Get("/test-api", s.handleTestAPI)
		r.Get("/api/stats/llm", s.handleLLMStats)
	})

	s.router = r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":    "healthy",
		"timestamp": s.now().UTC().Format(time.RFC3339),
	})
}

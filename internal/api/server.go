// Package api implements the HTTP layer for the Overthinker service.
// Handlers are methods on *Server. Each handler file is responsible for one
// resource group and only imports the dependencies it actually uses.
package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/nyashahama/overthinker-backend/internal/intent"
	"github.com/nyashahama/overthinker-backend/internal/store"
	"github.com/nyashahama/overthinker-backend/internal/worker"
)

// Config holds values read from environment variables at startup.
type Config struct {
	// Env is "production", "staging", or "development".
	Env string

	// Version is reported by /healthz.
	Version string

	// MaxBatchSize caps the number of questions per batch request.
	MaxBatchSize int

	// RequestTimeout is the per-request deadline. Default: 30s.
	RequestTimeout time.Duration
}

// Analyzer is the read-only surface of *analysis.Analyzer the API reports on.
type Analyzer interface {
	ModelName() string
	Intents() []intent.Intent
}

// Records is the read side of *store.Store.
type Records interface {
	GetAnalysis(ctx context.Context, id uuid.UUID) (store.Record, error)
	ListRecent(ctx context.Context, limit int) ([]store.Record, error)
	IntentCounts(ctx context.Context) ([]store.IntentCount, error)
}

// Server holds all shared dependencies. Each handler file attaches methods to
// this type and uses only the fields it needs.
type Server struct {
	analyzer Analyzer

	// job runs one scenario end to end; pool fans it out for batches.
	job  *worker.Job
	pool *worker.Pool

	// records is nil when no database is configured.
	records Records

	cfg    Config
	logger *slog.Logger
}

// NewServer constructs the Server and wires the chi router. The returned
// http.Handler is ready to pass to http.ListenAndServe. records may be nil.
func NewServer(
	an Analyzer,
	job *worker.Job,
	pool *worker.Pool,
	records Records,
	cfg Config,
	logger *slog.Logger,
) http.Handler {
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 30 * time.Second
	}
	if cfg.MaxBatchSize <= 0 {
		cfg.MaxBatchSize = 50
	}
	s := &Server{
		analyzer: an,
		job:      job,
		pool:     pool,
		records:  records,
		cfg:      cfg,
		logger:   logger,
	}

	return s.routes()
}

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()

	// ── Global middleware ─────────────────────────────────────────────────────
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.loggerMiddleware)
	r.Use(middleware.Recoverer)
	r.Use(s.corsMiddleware)
	r.Use(middleware.Timeout(s.cfg.RequestTimeout))

	// ── Health ────────────────────────────────────────────────────────────────
	r.Get("/healthz", s.handleHealth)

	// ── API ───────────────────────────────────────────────────────────────────
	r.Route("/api", func(r chi.Router) {
		r.Get("/intents", s.handleListIntents)

		r.Post("/analyze", s.handleAnalyze)
		r.Post("/analyze/batch", s.handleAnalyzeBatch)

		// Stored analyses. 501 without a database.
		r.Route("/analyses", func(r chi.Router) {
			r.Use(s.requireRecords)
			r.Get("/", s.handleListAnalyses)
			r.Get("/stats", s.handleAnalysisStats)
			r.Get("/{analysisID}", s.handleGetAnalysis)
		})
	})

	return r
}

// ─── GET /healthz ─────────────────────────────────────────────────────────────

type healthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
	Model   string `json:"model"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respond(w, http.StatusOK, healthResponse{
		Status:  "ok",
		Version: s.cfg.Version,
		Model:   s.analyzer.ModelName(),
	})
}

// ─── GET /api/intents ─────────────────────────────────────────────────────────

type intentsResponse struct {
	Intents []intent.Intent `json:"intents"`
	Total   int             `json:"total"`
}

func (s *Server) handleListIntents(w http.ResponseWriter, r *http.Request) {
	intents := s.analyzer.Intents()
	respond(w, http.StatusOK, intentsResponse{Intents: intents, Total: len(intents)})
}

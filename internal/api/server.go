package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/ouslabs/docclass/internal/classify"
	"github.com/ouslabs/docclass/internal/config"
	"github.com/ouslabs/docclass/internal/oracle"
	"github.com/ouslabs/docclass/internal/pipeline"
	"github.com/ouslabs/docclass/internal/retrieval"
)

// Server is the HTTP API server for docclass.
type Server struct {
	router       chi.Router
	orchestrator *pipeline.Orchestrator
	classifier   *classify.Classifier
	index        *retrieval.Index // nil when a remote search service is used
	oracleStats  *oracle.LatencyStats
	oracleName   string
	log          *slog.Logger
	cfg          config.Config
}

// NewServer creates and configures the HTTP server.
func NewServer(orch *pipeline.Orchestrator, cls *classify.Classifier, index *retrieval.Index, stats *oracle.LatencyStats, oracleName string, log *slog.Logger, cfg config.Config) *Server {
	s := &Server{
		orchestrator: orch,
		classifier:   cls,
		index:        index,
		oracleStats:  stats,
		oracleName:   oracleName,
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

		r.Post("/api/classify", s.handleClassify)

		r.Post("/api/train", s.handleTrain)
		r.Get("/api/train/{jobID}/status", s.handleTrainStatus)
		r.Post("/api/train/batch", s.handleBatchTrain)

		r.Get("/api/stats/oracle", s.handleOracleStats)
		r.Get("/api/stats/index", s.handleIndexStats)
	})

	s.router = r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}

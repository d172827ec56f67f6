package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger/v2"

	"github.com/raysh454/georisk/internal/app"
	"github.com/raysh454/georisk/internal/logging"
	"github.com/raysh454/georisk/internal/lore"
	"github.com/raysh454/georisk/internal/registry"
	"github.com/raysh454/georisk/internal/risk"
)

// Server is the HTTP + WebSocket API surface for georisk.
type Server struct {
	cfg          Config
	app          *app.Application
	orchestrator *app.Orchestrator
	router       chi.Router
	upgrader     websocket.Upgrader
	logger       logging.Logger
}

// NewServer opens the application under cfg.AppConfig.StorageRoot and
// builds the router.
func NewServer(cfg Config) (*Server, error) {
	if cfg.AppConfig == nil {
		cfg.AppConfig = app.DefaultConfig()
	}
	if cfg.ListenAddr == "" {
		cfg.ListenAddr = cfg.AppConfig.Server.Addr
	}

	logger := cfg.Logger
	if logger == nil {
		logger = logging.NewStdoutLogger("server")
	}

	a, err := app.OpenApplication(cfg.AppConfig, logger)
	if err != nil {
		return nil, err
	}

	s := &Server{
		cfg:          cfg,
		app:          a,
		orchestrator: a.Orch,
		router:       chi.NewRouter(),
		logger:       logger,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				// TODO: restrict to configured origins once a frontend origin setting exists
				return true
			},
		},
	}

	s.routes()
	return s, nil
}

// Orchestrator returns the underlying orchestrator for advanced use (tests, etc.).
func (s *Server) Orchestrator() *app.Orchestrator {
	return s.orchestrator
}

func (s *Server) routes() {
	r := s.router

	r.Use(s.corsMiddleware)

	// CORS preflight
	r.Options("/api/calculate-risk", s.optionsHandler("POST"))
	r.Options("/api/sites", s.optionsHandler("GET, POST"))
	r.Options("/api/sites/{site}/lore", s.optionsHandler("GET, POST"))
	r.Options("/api/lore/{id}", s.optionsHandler("GET, PUT, DELETE"))
	r.Options("/api/lore/score", s.optionsHandler("POST"))
	r.Options("/api/jobs/batch", s.optionsHandler("POST"))
	r.Options("/api/jobs/{jobID}", s.optionsHandler("GET, DELETE"))

	r.Get("/api/health", s.handleHealth)
	r.Get("/api/statistics", s.handleStatistics)

	// Risk
	r.Post("/api/calculate-risk", s.handleCalculateRisk)
	r.Get("/api/risks", s.handleListRisks)
	r.Get("/api/risks/compare", s.handleCompareRisks)
	r.Get("/api/risks/{id}", s.handleGetRisk)

	// Sites
	r.Post("/api/sites", s.handleCreateSite)
	r.Get("/api/sites", s.handleListSites)
	r.Get("/api/sites/{site}", s.handleGetSite)
	r.Get("/api/sites/{site}/lore-signal", s.handleSiteLoreSignal)

	// Lore
	r.Post("/api/sites/{site}/lore", s.handleAddLore)
	r.Get("/api/sites/{site}/lore", s.handleListLore)
	r.Post("/api/lore/score", s.handleScoreLore)
	r.Get("/api/lore/{id}", s.handleGetLore)
	r.Put("/api/lore/{id}", s.handleUpdateLore)
	r.Delete("/api/lore/{id}", s.handleDeleteLore)
	r.Get("/api/lore/{id}/revisions", s.handleLoreRevisions)

	// Jobs over REST
	r.Post("/api/jobs/batch", s.handleStartBatchJob)
	r.Get("/api/jobs", s.handleListJobs)
	r.Get("/api/jobs/{jobID}", s.handleGetJob)
	r.Delete("/api/jobs/{jobID}", s.handleCancelJob)

	// WebSockets for job progress
	r.Get("/ws/jobs/{jobID}", s.handleJobWS)

	r.Handle("/metrics", promhttp.Handler())
	r.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))
}

func (s *Server) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		w.Header().Set("Access-Control-Max-Age", "86400")

		next.ServeHTTP(w, r)
	})
}

func (s *Server) optionsHandler(methods string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Methods", methods)
		w.WriteHeader(http.StatusNoContent)
	}
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	fields := []logging.Field{
		{Key: "method", Value: r.Method},
		{Key: "path", Value: r.URL.Path},
	}

	if q := r.URL.Query(); len(q) > 0 {
		fields = append(fields, logging.Field{Key: "query", Value: q})
	}

	if r.Body != nil && (r.Method == http.MethodPost || r.Method == http.MethodPut || r.Method == http.MethodPatch) {
		if bodyBytes, err := io.ReadAll(r.Body); err == nil {
			fields = append(fields, logging.Field{Key: "body", Value: string(bodyBytes)})
			r.Body = io.NopCloser(bytes.NewReader(bodyBytes))
		}
	}

	s.logger.Debug("http_request", fields...)

	s.router.ServeHTTP(w, r)
}

// Close cancels running jobs and closes the database.
func (s *Server) Close() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.app.Shutdown(ctx); err != nil {
		s.logger.Warn("shutdown", logging.Field{Key: "error", Value: err.Error()})
	}
}

// HTTPServer creates an *http.Server ready to ListenAndServe.
func (s *Server) HTTPServer() *http.Server {
	return &http.Server{
		Addr:         s.cfg.ListenAddr,
		Handler:      s,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 0, // allow streaming
	}
}

// --- JSON helpers ---

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		_ = json.NewEncoder(w).Encode(v)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, ErrorResponse{Error: msg})
}

// statusFor maps domain errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, risk.ErrInvalidInput),
		errors.Is(err, lore.ErrInvalidRecord),
		errors.Is(err, registry.ErrInvalidSite):
		return http.StatusBadRequest
	case errors.Is(err, registry.ErrSiteNotFound),
		errors.Is(err, registry.ErrLoreNotFound),
		errors.Is(err, registry.ErrAssessmentNotFound),
		errors.Is(err, app.ErrJobNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) fail(w http.ResponseWriter, op string, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		s.logger.Error(op, logging.Field{Key: "error", Value: err.Error()})
	} else {
		s.logger.Warn(op, logging.Field{Key: "error", Value: err.Error()})
	}
	writeError(w, status, err.Error())
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return false
	}
	return true
}

// --- Jobs ---

func (s *Server) handleStartBatchJob(w http.ResponseWriter, r *http.Request) {
	var body BatchJobRequest
	if !decodeBody(w, r, &body) {
		return
	}
	if len(body.Requests) == 0 {
		writeError(w, http.StatusBadRequest, "requests must not be empty")
		return
	}

	// The job outlives the request.
	job, err := s.orchestrator.StartBatchJob(context.WithoutCancel(r.Context()), body.Requests)
	if err != nil {
		s.fail(w, "starting batch job", err)
		return
	}
	s.logger.Info("started batch job", logging.Field{Key: "job_id", Value: job.ID}, logging.Field{Key: "total", Value: job.Total})
	writeJSON(w, http.StatusAccepted, job)
}

func (s *Server) handleGetJob(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "jobID")
	job, err := s.orchestrator.GetJob(jobID)
	if err != nil {
		s.fail(w, "getting job", err)
		return
	}
	writeJSON(w, http.StatusOK, job)
}

func (s *Server) handleCancelJob(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "jobID")
	if err := s.orchestrator.CancelJob(jobID); err != nil {
		s.fail(w, "canceling job", err)
		return
	}
	s.logger.Info("canceled job", logging.Field{Key: "job_id", Value: jobID})
	writeJSON(w, http.StatusNoContent, nil)
}

func (s *Server) handleListJobs(w http.ResponseWriter, r *http.Request) {
	jobs := s.orchestrator.ListJobs()
	writeJSON(w, http.StatusOK, jobs)
}

// WebSockets

func (s *Server) handleJobWS(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "jobID")
	job, err := s.orchestrator.GetJob(jobID)
	if err != nil {
		s.fail(w, "streaming job", err)
		return
	}
	events, err := s.orchestrator.JobEvents(jobID)
	if err != nil {
		s.fail(w, "streaming job", err)
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("upgrading to websocket", logging.Field{Key: "error", Value: err.Error()})
		return
	}
	defer conn.Close()

	_ = conn.WriteJSON(job)

	for ev := range events {
		if err := conn.WriteJSON(ev); err != nil {
			// Assume client disconnected; cancel job
			_ = s.orchestrator.CancelJob(jobID)
			return
		}
	}

	if final, err := s.orchestrator.GetJob(jobID); err == nil {
		_ = conn.WriteJSON(final)
	}
}

package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/steelfab-ops/fitpo/internal/config"
	"github.com/steelfab-ops/fitpo/internal/pipeline"
)

// Server exposes the run state machine over HTTP for the review UI. Runs
// are started asynchronously; state reads and HITL decisions are
// synchronous against the engine.
type Server struct {
	engine *pipeline.Engine
	cfg    config.ServerConfig
}

// New creates a control-surface server over an engine.
func New(engine *pipeline.Engine, cfg config.ServerConfig) *Server {
	return &Server{engine: engine, cfg: cfg}
}

// Router builds the chi route tree.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(requestLogger)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.cfg.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type"},
	}))

	r.Get("/health", s.handleHealth)
	r.Route("/api", func(r chi.Router) {
		r.Post("/run/start", s.handleStart)
		r.Post("/run/reset", s.handleReset)
		r.Get("/run/state", s.handleState)
		r.Post("/hitl/{materialNo}/approve", s.handleApprove)
		r.Post("/hitl/{materialNo}/reject", s.handleReject)
	})

	return r
}

// ListenAndServe runs the server until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", s.cfg.Port),
		Handler: s.Router(),
	}

	go func() {
		<-ctx.Done()
		zap.L().Info("server: shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	zap.L().Info("server: listening", zap.Int("port", s.cfg.Port))
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return eris.Wrap(err, "server: listen")
	}
	return nil
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleStart(w http.ResponseWriter, r *http.Request) {
	// The run takes minutes against the live API; report acceptance and
	// let the UI poll /api/run/state. The engine itself rejects a second
	// concurrent start, so the only race here is between the Running check
	// and the goroutine getting scheduled, which the poll loop absorbs.
	if s.engine.State().Running {
		writeError(w, pipeline.ErrAlreadyRunning)
		return
	}

	go func() {
		if err := s.engine.Run(context.Background()); err != nil {
			zap.L().Error("server: run failed", zap.Error(err))
		}
	}()

	writeJSON(w, http.StatusAccepted, s.engine.State())
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	if err := s.engine.Reset(); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "reset"})
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.engine.State())
}

func (s *Server) handleApprove(w http.ResponseWriter, r *http.Request) {
	materialNo := chi.URLParam(r, "materialNo")

	st, err := s.engine.Approve(materialNo)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

func (s *Server) handleReject(w http.ResponseWriter, r *http.Request) {
	materialNo := chi.URLParam(r, "materialNo")

	var req struct {
		Reason string `json:"reason"`
	}
	if r.Body != nil {
		// Body is optional; a missing reason gets a default downstream.
		json.NewDecoder(r.Body).Decode(&req)
	}

	st, err := s.engine.Reject(materialNo, req.Reason)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, pipeline.ErrAlreadyRunning):
		status = http.StatusConflict
	case errors.Is(err, pipeline.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, pipeline.ErrConfiguration):
		status = http.StatusUnprocessableEntity
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		zap.L().Info("server: request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Duration("duration", time.Since(start)),
		)
	})
}

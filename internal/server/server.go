// Package server is the HTTP shell around the extraction pipeline: per-session prompt state,
// uploads, run ledgers and report downloads. A gRPC health service runs beside it.
package server

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/joseph-ayodele/pdf-data-extractor/internal/common"
	"github.com/joseph-ayodele/pdf-data-extractor/internal/pipeline"
	"github.com/joseph-ayodele/pdf-data-extractor/internal/prompts"
	"github.com/joseph-ayodele/pdf-data-extractor/internal/repository"
)

// Deps are the collaborators of the HTTP shell.
type Deps struct {
	Sessions  repository.SessionRepository
	Jobs      repository.ExtractJobRepository
	Processor *pipeline.Processor
	// Seed prompts for new sessions; nil = built-in defaults.
	Seed []prompts.ExtractionPrompt
	// Ping reports store health for /healthz; nil = always healthy.
	Ping func(ctx context.Context) error
}

type Options struct {
	MaxUploadBytes int64         // default 64 MiB
	RequestTimeout time.Duration // 0 = none
}

// Server holds handler state. Prompt edits of one session are serialized.
type Server struct {
	deps   Deps
	opts   Options
	logger *slog.Logger
	locks  sync.Map // session uuid -> *sync.Mutex
}

func New(deps Deps, opts Options, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.MaxUploadBytes <= 0 {
		opts.MaxUploadBytes = 64 << 20
	}
	return &Server{deps: deps, opts: opts, logger: logger}
}

// Handler returns the chi router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(chimiddleware.Recoverer)
	if s.opts.RequestTimeout > 0 {
		r.Use(chimiddleware.Timeout(s.opts.RequestTimeout))
	}

	r.Get("/healthz", s.healthz)

	r.Route("/v1/sessions", func(r chi.Router) {
		r.Post("/", s.createSession)
		r.Route("/{sessionID}", func(r chi.Router) {
			r.Get("/prompts", s.listPrompts)
			r.Put("/prompts/{title}", s.updatePrompt)
			r.Post("/runs", s.createRun)
			r.Get("/runs/{runID}/jobs", s.listJobs)
			r.Get("/runs/{runID}/report", s.downloadReport)
		})
	})
	return r
}

func (s *Server) sessionLock(id uuid.UUID) *sync.Mutex {
	m, _ := s.locks.LoadOrStore(id, &sync.Mutex{})
	return m.(*sync.Mutex)
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
		r = r.WithContext(common.WithRequestID(r.Context(), chimiddleware.GetReqID(r.Context())))
		next.ServeHTTP(ww, r)
		s.logger.Info("http.request",
			"req_id", chimiddleware.GetReqID(r.Context()),
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
	})
}

func (s *Server) healthz(w http.ResponseWriter, r *http.Request) {
	if s.deps.Ping != nil {
		if err := s.deps.Ping(r.Context()); err != nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

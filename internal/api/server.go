// Package api serves diagnoses over HTTP.
package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/pable/go-season-diag/internal/metric"
	"github.com/pable/go-season-diag/internal/model"
	"github.com/pable/go-season-diag/internal/season"
	"github.com/pable/go-season-diag/internal/storage"
	"github.com/pable/go-season-diag/pkg/logger"
	"github.com/pable/go-season-diag/pkg/metrics"
)

// Diagnoser runs a diagnosis for a season request. *season.Service
// implements it.
type Diagnoser interface {
	Diagnose(ctx context.Context, req season.Request) (model.DiagnosticResult, error)
}

// History stores and reads back saved diagnoses. *storage.DB implements it.
type History interface {
	SaveDiagnosis(ctx context.Context, res model.DiagnosticResult) (string, error)
	ListDiagnoses(ctx context.Context, filter storage.DiagnosisFilter) ([]storage.DiagnosisRecord, error)
	GetDiagnosis(ctx context.Context, prefix string) (storage.DiagnosisRecord, error)
}

// Server holds the HTTP dependencies.
type Server struct {
	diag    Diagnoser
	history History
	catalog metric.Catalog
	metrics *metrics.Manager
	log     logger.Logger
	origins []string
	timeout time.Duration
	now     func() time.Time
}

// Option configures a Server.
type Option func(*Server)

// WithHistory enables the history routes and ?save=true.
func WithHistory(h History) Option {
	return func(s *Server) { s.history = h }
}

// WithCatalog sets the catalog used to format the quick summary. It should
// match the engine's catalog.
func WithCatalog(c metric.Catalog) Option {
	return func(s *Server) {
		if c != nil {
			s.catalog = c
		}
	}
}

// WithMetrics sets the metrics manager served on /metrics.
func WithMetrics(m *metrics.Manager) Option {
	return func(s *Server) {
		if m != nil {
			s.metrics = m
		}
	}
}

// WithLogger sets the request logger.
func WithLogger(l logger.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.log = l
		}
	}
}

// WithCORSOrigins sets the allowed CORS origins. Defaults to any origin.
func WithCORSOrigins(origins ...string) Option {
	return func(s *Server) { s.origins = origins }
}

// WithRequestTimeout bounds each request. A season fetch from Savant can take
// most of a minute.
func WithRequestTimeout(d time.Duration) Option {
	return func(s *Server) {
		if d > 0 {
			s.timeout = d
		}
	}
}

// NewServer builds a Server around a Diagnoser.
func NewServer(d Diagnoser, opts ...Option) *Server {
	s := &Server{
		diag:    d,
		catalog: metric.Default(),
		metrics: metrics.Default(),
		log:     logger.Nop(),
		origins: []string{"*"},
		timeout: 90 * time.Second,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Routes returns the router.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(chimiddleware.Recoverer)
	r.Use(s.instrument)
	r.Use(chimiddleware.Timeout(s.timeout))

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.origins,
		AllowedMethods: []string{"GET", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/healthz", s.health)
	r.Method(http.MethodGet, "/metrics", s.metrics.Handler())

	r.Route("/v1", func(r chi.Router) {
		r.Get("/players/{playerID}/seasons/{season}/diagnosis", s.getDiagnosis)
		r.Get("/diagnoses", s.listDiagnoses)
		r.Get("/diagnoses/{id}", s.getSavedDiagnosis)
	})
	return r
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Routes(),
		ReadHeaderTimeout: 15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info(ctx, "http server listening", logger.String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	s.log.Info(ctx, "http server shutting down")
	return srv.Shutdown(shutdownCtx)
}

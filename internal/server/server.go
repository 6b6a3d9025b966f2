// Package server exposes the lineage pipeline over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/lineagekit/lineagekit/pkg/integrations"
	"github.com/lineagekit/lineagekit/pkg/lineage"
	"github.com/lineagekit/lineagekit/pkg/pipeline"
)

const (
	// maxBodySize bounds POSTed graphs and payloads.
	maxBodySize = 32 << 20

	shutdownTimeout = 5 * time.Second
)

// Config holds the server dependencies. Runner is required for the
// /api/v1 routes; Mock and Metrics are optional.
type Config struct {
	Addr     string
	Runner   *pipeline.Runner
	Defaults lineage.Options

	// Mock, when set, is served as a backend at /mock/lineage/{id}.
	Mock integrations.Source

	// Metrics, when set, is mounted at /metrics.
	Metrics http.Handler

	Logger *log.Logger
}

// Server is the lineage HTTP API.
type Server struct {
	cfg    Config
	logger *log.Logger
}

// New creates a server. A nil logger falls back to log.Default().
func New(cfg Config) *Server {
	logger := cfg.Logger
	if logger == nil {
		logger = log.Default()
	}
	cfg.Defaults = cfg.Defaults.WithDefaults()
	return &Server{cfg: cfg, logger: logger}
}

// Handler returns the routed handler with middleware applied.
func (s *Server) Handler() http.Handler {
	r := chi.NewMux()
	r.Use(
		middleware.RequestID,
		middleware.RealIP,
		s.requestLogger,
		middleware.Recoverer,
	)

	r.Get("/healthz", s.handleHealth)
	if s.cfg.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.cfg.Metrics)
	}

	if s.cfg.Runner != nil {
		r.Route("/api/v1/lineage", func(r chi.Router) {
			r.Use(middleware.Compress(5))
			r.Get("/", s.handleBatch)
			r.Post("/validate", s.handleValidate)
			r.Post("/normalize", s.handleNormalize)
			r.Get("/{id}", s.handleLineage)
			r.Post("/{id}/invalidate", s.handleInvalidate)
		})
	}

	if s.cfg.Mock != nil {
		r.Get("/mock/lineage/{id}", s.handleMock)
	}
	return r
}

// Serve listens on cfg.Addr and blocks until ctx is cancelled, then shuts
// down gracefully.
func (s *Server) Serve(ctx context.Context) error {
	eg, egctx := errgroup.WithContext(ctx)

	srv := &http.Server{
		Addr:    s.cfg.Addr,
		Handler: s.Handler(),
		BaseContext: func(_ net.Listener) context.Context {
			return egctx
		},
		ReadHeaderTimeout: 10 * time.Second,
	}

	s.logger.Info("starting server", "addr", s.cfg.Addr)

	eg.Go(func() error {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	eg.Go(func() error {
		<-egctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		s.logger.Debug("shutting down server")
		return srv.Shutdown(shutdownCtx)
	})

	return eg.Wait()
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start).Round(time.Microsecond),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}

// Package api - Thin HTTP layer over the capacity estimators
// The API is ONLY responsible for: input ingestion, estimator calls, output serialization.
// The API NEVER performs capacity arithmetic.
package api

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"hotel-capacity/core/estimate"
	"hotel-capacity/core/session"
	"hotel-capacity/core/site"
	"hotel-capacity/internal/metrics"
)

// Options configures a Server
type Options struct {
	Version   string
	Estimator *estimate.Estimator

	// Dataset may be nil when loading failed; site endpoints then answer 503.
	Dataset *site.Dataset

	// Sessions defaults to an in-memory store without expiry
	Sessions session.Store

	Logger *zap.Logger
}

// Server is the API server
type Server struct {
	mux       *http.ServeMux
	version   string
	estimator *estimate.Estimator
	dataset   *site.Dataset
	sessions  session.Store
	logger    *zap.Logger
}

// NewServer creates a new API server
func NewServer(opts Options) *Server {
	s := &Server{
		mux:       http.NewServeMux(),
		version:   opts.Version,
		estimator: opts.Estimator,
		dataset:   opts.Dataset,
		sessions:  opts.Sessions,
		logger:    opts.Logger,
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}
	if s.estimator == nil {
		s.estimator = estimate.NewEstimator(0, s.logger)
	}
	if s.sessions == nil {
		s.sessions = session.NewMemoryStore(0)
	}

	s.registerRoutes()
	return s
}

// registerRoutes registers all API routes
func (s *Server) registerRoutes() {
	// Calculators
	s.handle("POST /calculate", s.handleCalculate)
	s.handle("POST /sites/{name}/estimate", s.handleSiteEstimate)
	s.handle("GET /sites/{name}/report", s.handleSiteReport)

	// Dataset
	s.handle("GET /sites", s.handleListSites)
	s.handle("GET /sites/{name}", s.handleGetSite)
	s.handle("GET /sites/{name}/preview", s.handleSitePreview)

	// Sessions
	s.handle("GET /sessions/{id}/last", s.handleLastResult)
	s.handle("DELETE /sessions/{id}", s.handleDropSession)

	// Supporting endpoints
	s.handle("GET /health", s.handleHealth)
	s.handle("GET /version", s.handleVersion)
	s.mux.Handle("GET /metrics", promhttp.Handler())
}

// handle registers h under pattern and records its duration per status
func (s *Server) handle(pattern string, h http.HandlerFunc) {
	s.mux.HandleFunc(pattern, func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		h(rec, r)

		metrics.HTTPRequestDuration.
			WithLabelValues(pattern, strconv.Itoa(rec.status)).
			Observe(time.Since(start).Seconds())
		s.logger.Debug("request served",
			zap.String("route", pattern),
			zap.String("path", r.URL.Path),
			zap.Int("status", rec.status),
			zap.Duration("duration", time.Since(start)),
		)
	})
}

// ServeHTTP implements http.Handler
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string, readTimeout time.Duration) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: readTimeout,
		ReadTimeout:       readTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

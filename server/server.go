// Package server exposes the session workflow over HTTP: extraction,
// prompt generation, downloads, and session cleanup.
package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/forgelabs/promptforge/session"
	"github.com/forgelabs/promptforge/workflow"
)

// maxRequestBodySize limits POST body sizes to prevent DoS.
const maxRequestBodySize = 1 << 20 // 1 MB

// shutdownTimeout bounds graceful drain on SIGTERM.
const shutdownTimeout = 10 * time.Second

// ServiceName and Version identify the service in health responses.
const (
	ServiceName = "promptforge"
	Version     = "1.0.0"
)

// Server wires the workflow pipeline and session store to HTTP handlers.
type Server struct {
	pipeline *workflow.Pipeline
	store    session.Store
	metrics  *Metrics
	logger   *slog.Logger
}

// New creates a Server. A nil metrics registers collectors on the default
// prometheus registry.
func New(pipeline *workflow.Pipeline, store session.Store, metrics *Metrics, logger *slog.Logger) *Server {
	if metrics == nil {
		metrics = NewMetrics(nil)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		pipeline: pipeline,
		store:    store,
		metrics:  metrics,
		logger:   logger,
	}
}

// Routes builds the service mux.
func (s *Server) Routes() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /api/step1-extract", s.handleExtract)
	mux.HandleFunc("POST /api/step2-generate-prompts", s.handleGenerate)
	mux.HandleFunc("GET /api/download/{session_id}/{format}", s.handleDownload)
	mux.HandleFunc("GET /api/download-metadata/{session_id}/{format}", s.handleDownloadMetadata)
	mux.HandleFunc("DELETE /api/cleanup/{session_id}", s.handleCleanup)

	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.Handle("GET /metrics", promhttp.Handler())

	return mux
}

// Run serves until ctx is cancelled, then drains in-flight requests.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("http server listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

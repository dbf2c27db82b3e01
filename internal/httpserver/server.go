// Package httpserver is the HTTP surface of the service: one render
// endpoint, a healthcheck, and the metrics handler.
package httpserver

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"pdfserve/internal/config"
	"pdfserve/internal/ingest"
	"pdfserve/internal/workspace"
)

// shutdownGrace bounds how long in-flight renders may finish during shutdown.
const shutdownGrace = 30 * time.Second

// Renderer turns an ingested bundle into an artifact path inside the
// workspace. *pdfserve.Service is the production implementation.
type Renderer interface {
	Render(ctx context.Context, bundle *ingest.Bundle, ws *workspace.Workspace) (string, error)
}

// Server handles the HTTP request lifecycle: workspace acquisition, multipart
// ingestion, render orchestration, and response streaming.
type Server struct {
	renderer   Renderer
	workspaces *workspace.Manager
	chunkSize  int
	log        *zap.Logger
}

// New creates a Server. chunkSize bounds response streaming reads; zero
// means config.DefaultChunkSize.
func New(renderer Renderer, workspaces *workspace.Manager, chunkSize int, log *zap.Logger) *Server {
	if chunkSize <= 0 {
		chunkSize = config.DefaultChunkSize
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Server{
		renderer:   renderer,
		workspaces: workspaces,
		chunkSize:  chunkSize,
		log:        log,
	}
}

// Handler returns the route table.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /{$}", s.handleRender)
	mux.HandleFunc("GET /healthcheck", s.handleHealthcheck)
	mux.Handle("GET /metrics", promhttp.Handler())
	return mux
}

// ListenAndServe runs the server until ctx is canceled, then drains in-flight
// requests gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string, readHeaderTimeout time.Duration) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: readHeaderTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	s.log.Info("listening", zap.String("addr", addr))

	select {
	case <-ctx.Done():
		s.log.Info("shutting down")
		shutCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
		defer cancel()
		return srv.Shutdown(shutCtx)
	case err := <-errCh:
		return err
	}
}

// handleHealthcheck reports liveness. No dependencies, no side effects.
func (s *Server) handleHealthcheck(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("OK"))
}

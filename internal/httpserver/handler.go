package httpserver

import (
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"

	"pdfserve"
	"pdfserve/internal/ingest"
	"pdfserve/internal/metrics"
)

// Compile-time interface check
var _ Renderer = (*pdfserve.Service)(nil)

// Client-visible messages. Internal causes stay in the logs.
const (
	msgMissingRoot      = "No html file provided."
	msgMalformedUpload  = "Invalid multipart request."
	msgRenderFailed     = "PDF generation failed."
	msgWorkspaceFailure = "Internal server error."
)

// handleRender runs the full request pipeline: workspace open, multipart
// ingest, render, stream, unconditional workspace teardown.
func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	metrics.ActiveRequests.Inc()
	defer metrics.ActiveRequests.Dec()
	start := time.Now()

	log := s.log.With(zap.String("remote", r.RemoteAddr))
	log.Info("received render request")

	ws, err := s.workspaces.Acquire()
	if err != nil {
		log.Error("workspace acquisition failed", zap.Error(err))
		metrics.RendersTotal.WithLabelValues(metrics.StatusRenderError).Inc()
		http.Error(w, msgWorkspaceFailure, http.StatusInternalServerError)
		return
	}
	// Teardown runs on every exit path, including mid-stream disconnects.
	defer ws.Release()

	mr, err := r.MultipartReader()
	if err != nil {
		log.Info("rejected non-multipart request", zap.Error(err))
		metrics.RendersTotal.WithLabelValues(metrics.StatusClientError).Inc()
		http.Error(w, msgMalformedUpload, http.StatusBadRequest)
		return
	}

	bundle, err := ingest.ReadForm(r.Context(), mr, ws, log)
	if err != nil {
		switch {
		case r.Context().Err() != nil:
			log.Info("client went away during upload")
			metrics.RendersTotal.WithLabelValues(metrics.StatusCanceled).Inc()
		case errors.Is(err, ingest.ErrMalformedUpload):
			log.Info("rejected malformed upload", zap.Error(err))
			metrics.RendersTotal.WithLabelValues(metrics.StatusClientError).Inc()
			http.Error(w, msgMalformedUpload, http.StatusBadRequest)
		default:
			log.Error("ingestion failed", zap.Error(err))
			metrics.RendersTotal.WithLabelValues(metrics.StatusRenderError).Inc()
			http.Error(w, msgWorkspaceFailure, http.StatusInternalServerError)
		}
		return
	}

	artifact, err := s.renderer.Render(r.Context(), bundle, ws)
	if err != nil {
		switch {
		case errors.Is(err, pdfserve.ErrMissingRootDocument):
			log.Info("bad request: no html file provided")
			metrics.RendersTotal.WithLabelValues(metrics.StatusClientError).Inc()
			http.Error(w, msgMissingRoot, http.StatusBadRequest)
		case r.Context().Err() != nil:
			log.Info("client went away during render")
			metrics.RendersTotal.WithLabelValues(metrics.StatusCanceled).Inc()
		default:
			// Full cause stays server-side; the client gets a generic message.
			log.Error("render failed", zap.Error(err))
			metrics.RendersTotal.WithLabelValues(metrics.StatusRenderError).Inc()
			http.Error(w, msgRenderFailed, http.StatusInternalServerError)
		}
		return
	}

	metrics.RendersTotal.WithLabelValues(metrics.StatusOK).Inc()
	metrics.RenderDuration.Observe(time.Since(start).Seconds())

	s.streamFile(w, log, artifact, "application/pdf")
}

// Package metrics exposes the service's Prometheus collectors.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	RendersTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pdfserve_renders_total",
			Help: "Total number of render requests by outcome",
		},
		[]string{"status"},
	)

	RenderDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name: "pdfserve_render_duration_seconds",
			Help: "Duration of successful render requests in seconds",
		},
	)

	IngestedParts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pdfserve_ingested_parts_total",
			Help: "Total number of multipart parts ingested by class",
		},
		[]string{"class"},
	)

	WorkspaceCleanupFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "pdfserve_workspace_cleanup_failures_total",
			Help: "Total number of workspace directories that could not be removed",
		},
	)

	ActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "pdfserve_active_requests",
			Help: "Number of render requests currently in flight",
		},
	)
)

// Render outcome label values.
const (
	StatusOK          = "ok"
	StatusClientError = "client_error"
	StatusRenderError = "render_error"
	StatusCanceled    = "canceled"
)

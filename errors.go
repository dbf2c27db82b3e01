package pdfserve

import "errors"

// Sentinel errors for render orchestration.
var (
	// ErrMissingRootDocument indicates the bundle has no root document part.
	// Callers should report this as a client error.
	ErrMissingRootDocument = errors.New("no html file provided")

	// ErrRenderFailure wraps any engine-side failure. The cause is logged
	// server-side; clients only ever see a generic message.
	ErrRenderFailure = errors.New("PDF generation failed")

	// Engine errors. All are surfaced to callers wrapped in ErrRenderFailure.
	ErrBrowserConnect  = errors.New("failed to connect to browser")
	ErrPageCreate      = errors.New("failed to create browser page")
	ErrPageLoad        = errors.New("failed to load page")
	ErrPDFGeneration   = errors.New("failed to print page to PDF")
	ErrAttachmentEmbed = errors.New("failed to embed attachments")

	// ErrStylesheetUnreadable indicates the uploaded stylesheet could not be
	// resolved or read back from the workspace.
	ErrStylesheetUnreadable = errors.New("stylesheet not readable")
)

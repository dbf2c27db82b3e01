package pdfserve

import "context"

// URLResolver decides whether the rendering engine may fetch a URL referenced
// from inside a document or stylesheet. A resolver carries exactly one
// request's ingested file paths and is never shared across requests.
type URLResolver interface {
	// Allow returns nil if the URL may be fetched, or an error describing
	// why the fetch is denied.
	Allow(rawURL string) error
}

// Job describes a single render: a prepared root document on disk, the CSS to
// apply, the files to embed as PDF attachments, and where to write the result.
// All paths live inside one request's workspace.
type Job struct {
	RootDocument string   // absolute path to the root HTML file
	Stylesheet   string   // CSS content applied to the page (may be empty)
	Attachments  []string // files embedded into the PDF, in upload order
	OutputPath   string   // destination for the generated PDF
	Resolver     URLResolver
}

// Engine renders a prepared job to a PDF file.
// Implementations must write the artifact to job.OutputPath without holding
// the whole document in memory, and must consult job.Resolver for every
// resource the document references.
type Engine interface {
	Render(ctx context.Context, job Job) error
	Close() error
}

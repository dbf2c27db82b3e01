package pdfserve

import (
	"context"
	"fmt"
	"os"

	"go.uber.org/zap"

	"pdfserve/internal/assets"
	"pdfserve/internal/guard"
	"pdfserve/internal/ingest"
	"pdfserve/internal/markup"
	"pdfserve/internal/workspace"
)

// Compile-time interface implementation checks.
var (
	_ Engine             = (*rodEngine)(nil)
	_ URLResolver        = (*guard.Guard)(nil)
	_ markup.Transformer = (*markup.GoldmarkConverter)(nil)
)

// Service orchestrates rendering of one ingested bundle at a time per engine.
// Create with NewService, call Render per request, and Close on shutdown.
// Render is safe for concurrent use; engines are pooled internally.
type Service struct {
	cfg        serviceConfig
	log        *zap.Logger
	engines    *enginePool
	markdown   markup.Transformer
	defaultCSS string
}

// NewService creates a Service with the built-in default stylesheet and a
// lazily-populated engine pool.
func NewService(log *zap.Logger, opts ...Option) (*Service, error) {
	if log == nil {
		log = zap.NewNop()
	}

	s := &Service{
		cfg:      serviceConfig{timeout: defaultTimeout},
		log:      log,
		markdown: markup.NewGoldmarkConverter(),
	}

	for _, opt := range opts {
		opt(s)
	}

	css, err := assets.LoadStyle(assets.DefaultStyleName)
	if err != nil {
		return nil, fmt.Errorf("loading default stylesheet: %w", err)
	}
	s.defaultCSS = css

	// Engine pool may have been injected by tests
	if s.engines == nil {
		timeout := s.cfg.timeout
		s.engines = newEnginePool(ResolvePoolSize(s.cfg.workers), func() Engine {
			return newRodEngine(timeout)
		})
	}

	return s, nil
}

// Render turns an ingested bundle into a PDF artifact inside the workspace
// and returns the artifact path. The artifact belongs to the workspace; it is
// gone once the workspace is released.
//
// Returns ErrMissingRootDocument if the bundle has no root document (client
// error). Every other failure is wrapped in ErrRenderFailure with the cause
// preserved for logging, never for the client.
func (s *Service) Render(ctx context.Context, bundle *ingest.Bundle, ws *workspace.Workspace) (string, error) {
	if bundle.RootDocument == "" {
		return "", ErrMissingRootDocument
	}

	rootPath := bundle.RootDocument
	validPaths := bundle.Paths()

	// Markdown roots are converted to a complete HTML document first. The
	// generated file joins the valid path set so the page itself resolves.
	if markup.IsMarkdown(rootPath) {
		htmlPath, err := s.convertMarkdownRoot(ctx, rootPath, ws)
		if err != nil {
			return "", fmt.Errorf("%w: %v", ErrRenderFailure, err)
		}
		rootPath = htmlPath
		validPaths = append(validPaths, htmlPath)
	}

	resolver, err := guard.New(validPaths...)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrRenderFailure, err)
	}

	css := s.defaultCSS
	if bundle.Stylesheet != "" {
		css, err = readStylesheet(bundle.Stylesheet, resolver)
		if err != nil {
			return "", fmt.Errorf("%w: %v", ErrRenderFailure, err)
		}
	}

	job := Job{
		RootDocument: rootPath,
		Stylesheet:   css,
		Attachments:  bundle.AttachmentPaths(),
		OutputPath:   ws.Join("output.pdf"),
		Resolver:     resolver,
	}

	eng := s.engines.acquire()
	defer s.engines.release(eng)

	if err := eng.Render(ctx, job); err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		return "", fmt.Errorf("%w: %v", ErrRenderFailure, err)
	}

	s.log.Info("rendered document",
		zap.String("root", rootPath),
		zap.Int("attachments", len(job.Attachments)),
		zap.String("artifact", job.OutputPath))

	return job.OutputPath, nil
}

// Close releases pooled engine resources (headless Chrome browsers).
func (s *Service) Close() error {
	return s.engines.close()
}

// convertMarkdownRoot converts a Markdown root document into an HTML file
// inside the workspace and returns its path.
func (s *Service) convertMarkdownRoot(ctx context.Context, mdPath string, ws *workspace.Workspace) (string, error) {
	content, err := os.ReadFile(mdPath) // #nosec G304 -- path is workspace-owned
	if err != nil {
		return "", fmt.Errorf("reading markdown root: %w", err)
	}

	htmlContent, err := s.markdown.ToHTML(ctx, string(content))
	if err != nil {
		return "", err
	}

	f, err := os.CreateTemp(ws.Dir(), "root-*.html")
	if err != nil {
		return "", fmt.Errorf("creating converted root: %w", err)
	}
	if _, err := f.WriteString(htmlContent); err != nil {
		_ = f.Close()
		return "", fmt.Errorf("writing converted root: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("closing converted root: %w", err)
	}
	return f.Name(), nil
}

// readStylesheet resolves the uploaded stylesheet through the request's
// resolver and returns its content.
func readStylesheet(path string, resolver URLResolver) (string, error) {
	if err := resolver.Allow(path); err != nil {
		return "", fmt.Errorf("%w: %v", ErrStylesheetUnreadable, err)
	}
	content, err := os.ReadFile(path) // #nosec G304 -- membership checked above
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrStylesheetUnreadable, err)
	}
	return string(content), nil
}

//go:build integration

package pdfserve

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"pdfserve/internal/guard"
)

const integrationTimeout = 30 * time.Second

func assertValidPDFFile(t *testing.T, path string) {
	t.Helper()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read PDF file: %v", err)
	}
	if !bytes.HasPrefix(data, []byte("%PDF-")) {
		t.Errorf("data does not have PDF magic bytes, got prefix: %q", data[:min(10, len(data))])
	}
	if len(data) < 100 {
		t.Errorf("PDF data suspiciously small: %d bytes", len(data))
	}
}

// recordingResolver wraps a resolver and records every decision, so tests can
// assert which URLs the engine actually asked about.
type recordingResolver struct {
	inner URLResolver

	mu      sync.Mutex
	allowed []string
	denied  []string
}

func (r *recordingResolver) Allow(rawURL string) error {
	err := r.inner.Allow(rawURL)
	r.mu.Lock()
	defer r.mu.Unlock()
	if err != nil {
		r.denied = append(r.denied, rawURL)
	} else {
		r.allowed = append(r.allowed, rawURL)
	}
	return err
}

func (r *recordingResolver) allowedURLs() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.allowed...)
}

func (r *recordingResolver) deniedURLs() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.denied...)
}

func writeDoc(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("writing %s: %v", name, err)
	}
	return path
}

func TestRodEngine_Render_Integration(t *testing.T) {
	t.Parallel()

	eng := newRodEngine(integrationTimeout)
	defer eng.Close()

	dir := t.TempDir()
	root := writeDoc(t, dir, "doc.html",
		`<!DOCTYPE html><html><head><title>Test</title></head><body><h1>Hello</h1></body></html>`)

	resolver, err := guard.New(root)
	if err != nil {
		t.Fatalf("guard.New: %v", err)
	}

	out := filepath.Join(dir, "output.pdf")
	job := Job{
		RootDocument: root,
		Stylesheet:   "h1 { color: blue; }",
		OutputPath:   out,
		Resolver:     resolver,
	}

	if err := eng.Render(context.Background(), job); err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	assertValidPDFFile(t, out)
}

// TestRodEngine_ResolverSeesEverySubresource_Integration asserts the engine
// consults the resolver for each resource the document references and never
// delivers a file outside the valid path set, including through a file:// URL.
func TestRodEngine_ResolverSeesEverySubresource_Integration(t *testing.T) {
	t.Parallel()

	eng := newRodEngine(integrationTimeout)
	defer eng.Close()

	dir := t.TempDir()
	asset := writeDoc(t, dir, "logo.png", "png bytes")
	secret := writeDoc(t, dir, "secret.txt", "hush")

	root := writeDoc(t, dir, "doc.html", `<!DOCTYPE html><html><body>
<img src="logo.png">
<img src="`+secret+`">
<img src="file://`+secret+`">
</body></html>`)

	inner, err := guard.New(root, asset)
	if err != nil {
		t.Fatalf("guard.New: %v", err)
	}
	resolver := &recordingResolver{inner: inner}

	out := filepath.Join(dir, "output.pdf")
	job := Job{RootDocument: root, OutputPath: out, Resolver: resolver}

	// Denied subresources fail their fetch; the page itself still renders.
	if err := eng.Render(context.Background(), job); err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	assertValidPDFFile(t, out)

	assertConsulted := func(urls []string, substr string) bool {
		for _, u := range urls {
			if strings.Contains(u, substr) {
				return true
			}
		}
		return false
	}

	if !assertConsulted(resolver.allowedURLs(), "doc.html") {
		t.Error("root document load never consulted the resolver")
	}
	if !assertConsulted(resolver.allowedURLs(), "logo.png") {
		t.Error("ingested asset load never consulted the resolver")
	}
	if !assertConsulted(resolver.deniedURLs(), "secret.txt") {
		t.Error("out-of-set file reference was never denied")
	}
	// The secret must not have been approved under any spelling.
	if assertConsulted(resolver.allowedURLs(), "secret.txt") {
		t.Errorf("out-of-set file was allowed: %v", resolver.allowedURLs())
	}
}

func TestRodEngine_RootOutsideValidSet_Integration(t *testing.T) {
	t.Parallel()

	eng := newRodEngine(integrationTimeout)
	defer eng.Close()

	dir := t.TempDir()
	root := writeDoc(t, dir, "doc.html", "<html></html>")
	other := writeDoc(t, dir, "other.html", "<html></html>")

	// The valid path set does not contain the root document.
	resolver, err := guard.New(other)
	if err != nil {
		t.Fatalf("guard.New: %v", err)
	}

	job := Job{
		RootDocument: root,
		OutputPath:   filepath.Join(dir, "output.pdf"),
		Resolver:     resolver,
	}

	if err := eng.Render(context.Background(), job); err == nil {
		t.Fatal("expected render failure when the root document is outside the valid path set")
	}
}

func TestRodEngine_CanceledContext_Integration(t *testing.T) {
	t.Parallel()

	eng := newRodEngine(integrationTimeout)
	defer eng.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := eng.Render(ctx, Job{RootDocument: "/tmp/nonexistent.html"})
	if err == nil {
		t.Fatal("expected error for canceled context, got nil")
	}
}

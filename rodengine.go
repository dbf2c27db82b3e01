package pdfserve

import (
	"context"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
)

// Compile-time interface check
var _ Engine = (*rodEngine)(nil)

// PDF page dimensions in inches (US Letter format).
const (
	paperWidthInches  = 8.5
	paperHeightInches = 11
	marginInches      = 0.5
)

// renderHost is the synthetic origin documents are served from. Chromium
// loads file: subresources through a loader that request interception does
// not cover, so navigating file:// directly would let document content reach
// disk without consulting the resolver. From an http origin every
// subresource either passes through the hijack router or is refused by the
// browser itself (file: from an http page never loads). The host is never
// resolved; the router answers before any network activity.
const renderHost = "pdfserve.invalid"

// injectStylesheetJS appends a <style> element carrying the request's CSS.
// Runs after load so the stylesheet wins the cascade against document styles.
const injectStylesheetJS = `css => {
	const style = document.createElement("style");
	style.textContent = css;
	document.head.appendChild(style);
}`

// rodEngine renders HTML files to PDF using headless Chrome via go-rod.
// Rod automatically downloads Chromium on first run if not found.
//
// The browser instance is reused across renders, but every render gets a
// fresh page with its own hijack router, so resource access decisions never
// leak between requests.
type rodEngine struct {
	browser *rod.Browser
	timeout time.Duration
}

// newRodEngine creates a rodEngine with the given per-render timeout.
func newRodEngine(timeout time.Duration) *rodEngine {
	return &rodEngine{timeout: timeout}
}

// ensureBrowser lazily connects to the browser.
func (e *rodEngine) ensureBrowser() error {
	if e.browser != nil {
		return nil
	}

	l := launcher.New()

	// Use pre-installed browser if specified (Docker/containerized environments)
	if bin := os.Getenv("ROD_BROWSER_BIN"); bin != "" {
		l = l.Bin(bin)
	}

	// NoSandbox required for CI and containerized environments
	if os.Getenv("CI") == "true" || os.Getenv("ROD_BROWSER_BIN") != "" {
		l = l.NoSandbox(true)
	}
	u, err := l.Launch()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrBrowserConnect, err)
	}

	e.browser = rod.New().ControlURL(u)
	if err := e.browser.Connect(); err != nil {
		e.browser = nil
		return fmt.Errorf("%w: %v", ErrBrowserConnect, err)
	}
	return nil
}

// Close releases browser resources.
func (e *rodEngine) Close() error {
	if e.browser != nil {
		err := e.browser.Close()
		e.browser = nil
		return err
	}
	return nil
}

// Render loads the root document in headless Chrome, applies the stylesheet,
// prints the page to PDF, and embeds the attachment files. The page is served
// from renderHost with the hijack router installed before navigation, so the
// resolver sees every fetch the page performs, including the root document
// itself.
func (e *rodEngine) Render(ctx context.Context, job Job) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if err := e.ensureBrowser(); err != nil {
		return err
	}

	// Start from a blank page so the hijack router is active before the
	// root document navigation happens.
	page, err := e.browser.Page(proto.TargetCreateTarget{})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrPageCreate, err)
	}
	defer page.Close()
	page = page.Context(ctx)

	router := page.HijackRequests()
	if err := router.Add("*", "", func(h *rod.Hijack) {
		u := h.Request.URL()
		if u.Host == renderHost {
			serveWorkspaceFile(h, job.Resolver, u.Path)
			return
		}
		if job.Resolver != nil {
			if err := job.Resolver.Allow(u.String()); err != nil {
				h.Response.Fail(proto.NetworkErrorReasonAccessDenied)
				return
			}
		}
		h.ContinueRequest(&proto.FetchContinueRequest{})
	}); err != nil {
		return fmt.Errorf("%w: installing resource filter: %v", ErrPageCreate, err)
	}
	go router.Run()
	defer func() { _ = router.Stop() }()

	if err := page.Navigate(pageURL(job.RootDocument)); err != nil {
		return fmt.Errorf("%w: %v", ErrPageLoad, err)
	}

	if err := page.Timeout(e.timeout).WaitLoad(); err != nil {
		return fmt.Errorf("%w: %v", ErrPageLoad, err)
	}

	if job.Stylesheet != "" {
		if _, err := page.Eval(injectStylesheetJS, job.Stylesheet); err != nil {
			return fmt.Errorf("%w: injecting stylesheet: %v", ErrPageLoad, err)
		}
	}

	// Check context after page load
	if err := ctx.Err(); err != nil {
		return err
	}

	reader, err := page.PDF(&proto.PagePrintToPDF{
		PaperWidth:      floatPtr(paperWidthInches),
		PaperHeight:     floatPtr(paperHeightInches),
		MarginTop:       floatPtr(marginInches),
		MarginBottom:    floatPtr(marginInches),
		MarginLeft:      floatPtr(marginInches),
		MarginRight:     floatPtr(marginInches),
		PrintBackground: true,
	})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrPDFGeneration, err)
	}

	if err := writeArtifact(job.OutputPath, reader); err != nil {
		return err
	}

	return embedAttachments(job.OutputPath, job.Attachments)
}

// writeArtifact streams the PDF from the browser to disk without buffering
// the whole document.
func writeArtifact(path string, r io.Reader) error {
	f, err := os.Create(path) // #nosec G304 -- path is workspace-owned
	if err != nil {
		return fmt.Errorf("%w: creating artifact: %v", ErrPDFGeneration, err)
	}

	if _, err := io.Copy(f, r); err != nil {
		_ = f.Close()
		return fmt.Errorf("%w: writing artifact: %v", ErrPDFGeneration, err)
	}

	if err := f.Close(); err != nil {
		return fmt.Errorf("%w: closing artifact: %v", ErrPDFGeneration, err)
	}
	return nil
}

// serveWorkspaceFile fulfills a request for a file on the render origin. The
// URL path is the absolute workspace path; the resolver is consulted before
// any bytes leave disk, and a denial fails the fetch the same way an external
// URL does.
func serveWorkspaceFile(h *rod.Hijack, resolver URLResolver, path string) {
	if resolver == nil {
		h.Response.Fail(proto.NetworkErrorReasonAccessDenied)
		return
	}
	if err := resolver.Allow(path); err != nil {
		h.Response.Fail(proto.NetworkErrorReasonAccessDenied)
		return
	}
	data, err := os.ReadFile(path) // #nosec G304 -- membership checked above
	if err != nil {
		h.Response.Fail(proto.NetworkErrorReasonAccessDenied)
		return
	}
	h.Response.Payload().ResponseCode = http.StatusOK
	h.Response.SetHeader("Content-Type", contentTypeFor(path, data))
	h.Response.SetBody(data)
}

// contentTypeFor picks a content type by extension, falling back to sniffing.
func contentTypeFor(path string, data []byte) string {
	if ct := mime.TypeByExtension(filepath.Ext(path)); ct != "" {
		return ct
	}
	return http.DetectContentType(data)
}

// pageURL maps an absolute workspace path onto the render origin.
func pageURL(absPath string) string {
	u := url.URL{Scheme: "http", Host: renderHost, Path: absPath}
	return u.String()
}

// floatPtr returns a pointer to a float64 value.
func floatPtr(v float64) *float64 {
	return &v
}

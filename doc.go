// Package pdfserve renders uploaded document bundles to PDF using headless
// Chrome.
//
// A bundle consists of a root document (HTML or Markdown), an optional
// stylesheet, and any number of attachment and asset files. This package is
// the render orchestration core: it validates the bundle, selects or
// synthesizes a stylesheet, drives the rendering engine, and embeds
// attachments into the generated PDF in upload order. The HTTP surface lives
// in internal/httpserver.
//
//	svc, err := pdfserve.NewService(logger)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer svc.Close()
//
//	artifact, err := svc.Render(ctx, bundle, ws)
//
// Every render receives a fresh URLResolver carrying the request's ingested
// file paths. The engine consults it for each resource the document
// references, so a rendered page can reach data: URLs and its own uploaded
// files, and nothing else.
//
// # Browser Requirements
//
// PDF generation requires Chrome/Chromium. The go-rod library automatically
// downloads a managed Chromium instance on first run (~/.cache/rod/browser/).
//
// For containers and CI environments, set ROD_NO_SANDBOX=1 to disable the
// Chrome sandbox. Use ROD_BROWSER_BIN to specify a custom Chrome binary.
package pdfserve

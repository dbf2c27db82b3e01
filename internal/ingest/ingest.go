// Package ingest materializes a streamed multipart upload into a request
// workspace, one file per recognized part.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"os"

	"go.uber.org/zap"

	"pdfserve/internal/metrics"
	"pdfserve/internal/workspace"
)

// copyBufferSize bounds per-part memory while streaming payloads to disk.
// Attachments and assets may be large; they are never buffered whole.
const copyBufferSize = 64 * 1024

// ErrMalformedUpload indicates the multipart body could not be parsed.
// Callers should report this as a client error.
var ErrMalformedUpload = errors.New("malformed multipart upload")

// NamedFile is one ingested multi-valued part: the field name that carried it
// and the absolute path it was written to.
type NamedFile struct {
	Field string
	Path  string
}

// Bundle is the classified result of draining one request body.
// Attachments and Assets preserve the order parts arrived in.
type Bundle struct {
	RootDocument string // empty if no "html" part was uploaded
	Stylesheet   string // empty if no "css" part was uploaded
	Attachments  []NamedFile
	Assets       []NamedFile
}

// AttachmentPaths returns the attachment file paths in upload order.
func (b *Bundle) AttachmentPaths() []string {
	paths := make([]string, len(b.Attachments))
	for i, f := range b.Attachments {
		paths[i] = f.Path
	}
	return paths
}

// Paths returns every file path the bundle currently references: the valid
// path set for this request. Files that were overwritten by a repeated field
// name are not included, matching the slot semantics of classification.
func (b *Bundle) Paths() []string {
	paths := make([]string, 0, 2+len(b.Attachments)+len(b.Assets))
	if b.RootDocument != "" {
		paths = append(paths, b.RootDocument)
	}
	if b.Stylesheet != "" {
		paths = append(paths, b.Stylesheet)
	}
	for _, f := range b.Attachments {
		paths = append(paths, f.Path)
	}
	for _, f := range b.Assets {
		paths = append(paths, f.Path)
	}
	return paths
}

// ReadForm drains the multipart reader part by part, writing recognized parts
// into the workspace and discarding the rest. Parts are processed strictly in
// arrival order; ingestion completes before any rendering begins.
//
// Repeated "html" or "css" fields follow last-write-wins, logged as a
// warning. Repeated attachment/asset field names replace the earlier file in
// place, keeping the original position.
func ReadForm(ctx context.Context, mr *multipart.Reader, ws *workspace.Workspace, log *zap.Logger) (*Bundle, error) {
	if log == nil {
		log = zap.NewNop()
	}

	b := &Bundle{}
	attIdx := make(map[string]int)
	assetIdx := make(map[string]int)
	buf := make([]byte, copyBufferSize)

	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		part, err := mr.NextPart()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedUpload, err)
		}

		field := part.FormName()
		class := Classify(field)
		metrics.IngestedParts.WithLabelValues(class.String()).Inc()

		if class == ClassIgnored {
			if _, err := io.Copy(io.Discard, part); err != nil {
				return nil, fmt.Errorf("%w: draining part %q: %v", ErrMalformedUpload, field, err)
			}
			log.Debug("ignored unrecognized part", zap.String("field", field))
			continue
		}

		path, err := savePart(part, ws, buf, log)
		if err != nil {
			return nil, err
		}

		switch class {
		case ClassRootDocument:
			if b.RootDocument != "" {
				log.Warn("duplicate html part, keeping the last one", zap.String("path", path))
			}
			b.RootDocument = path

		case ClassStylesheet:
			if b.Stylesheet != "" {
				log.Warn("duplicate css part, keeping the last one", zap.String("path", path))
			}
			b.Stylesheet = path

		case ClassAttachment:
			if i, ok := attIdx[field]; ok {
				log.Warn("duplicate attachment field, keeping the last one", zap.String("field", field))
				b.Attachments[i].Path = path
			} else {
				attIdx[field] = len(b.Attachments)
				b.Attachments = append(b.Attachments, NamedFile{Field: field, Path: path})
			}

		case ClassAsset:
			if i, ok := assetIdx[field]; ok {
				log.Warn("duplicate asset field, keeping the last one", zap.String("field", field))
				b.Assets[i].Path = path
			} else {
				assetIdx[field] = len(b.Assets)
				b.Assets = append(b.Assets, NamedFile{Field: field, Path: path})
			}
		}
	}

	return b, nil
}

// savePart streams one part's payload into the workspace and returns the
// destination path. Each part lands in a subdirectory named after its field,
// so two fields declaring the same filename still get distinct paths and no
// part can occupy the workspace root where the artifact is written. The
// filename comes from the part's declared filename so extension-driven
// behavior downstream is preserved; the field name is the fallback when no
// filename was declared.
func savePart(part *multipart.Part, ws *workspace.Workspace, buf []byte, log *zap.Logger) (string, error) {
	name := part.FileName()
	if name == "" {
		name = part.FormName()
	}
	dst, err := ws.JoinIn(part.FormName(), name)
	if err != nil {
		return "", err
	}

	f, err := os.Create(dst) // #nosec G304 -- dst is workspace-owned
	if err != nil {
		return "", fmt.Errorf("creating %q: %w", dst, err)
	}

	written, err := io.CopyBuffer(f, part, buf)
	if err != nil {
		_ = f.Close()
		return "", fmt.Errorf("%w: reading part %q: %v", ErrMalformedUpload, part.FormName(), err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("closing %q: %w", dst, err)
	}

	if written == 0 {
		log.Warn("part wrote a zero-byte file", zap.String("field", part.FormName()), zap.String("path", dst))
	}
	log.Debug("saved part",
		zap.String("field", part.FormName()),
		zap.String("path", dst),
		zap.Int64("bytes", written))

	return dst, nil
}

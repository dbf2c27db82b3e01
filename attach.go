package pdfserve

import (
	"fmt"

	"github.com/pdfcpu/pdfcpu/pkg/api"
)

// embedAttachments adds the given files to the PDF at path as embedded
// attachments, in slice order. Chrome's print pipeline has no notion of PDF
// attachments, so this runs as a post-processing step on the artifact.
func embedAttachments(path string, files []string) error {
	if len(files) == 0 {
		return nil
	}

	if err := api.AddAttachmentsFile(path, "", files, false, nil); err != nil {
		return fmt.Errorf("%w: %v", ErrAttachmentEmbed, err)
	}
	return nil
}

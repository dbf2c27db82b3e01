package ingest

import "strings"

// Recognized multipart field names.
const (
	fieldRootDocument     = "html"
	fieldStylesheet       = "css"
	attachmentFieldPrefix = "attachment."
	assetFieldPrefix      = "asset."
)

// Class tags a multipart part by the role its field name declares.
// Classification happens exactly once per part.
type Class int

const (
	// ClassIgnored marks unrecognized field names; their bytes are drained
	// and never written to disk or forwarded to the engine.
	ClassIgnored Class = iota

	// ClassRootDocument is the single primary markup file ("html").
	ClassRootDocument

	// ClassStylesheet is the single optional stylesheet ("css").
	ClassStylesheet

	// ClassAttachment ("attachment.<name>") files are embedded into the
	// output document as discrete attachment objects.
	ClassAttachment

	// ClassAsset ("asset.<name>") files are resolvable by reference from
	// markup and CSS but are not embedded as attachments.
	ClassAsset
)

// String returns the class name for logging and metrics labels.
func (c Class) String() string {
	switch c {
	case ClassRootDocument:
		return "root_document"
	case ClassStylesheet:
		return "stylesheet"
	case ClassAttachment:
		return "attachment"
	case ClassAsset:
		return "asset"
	default:
		return "ignored"
	}
}

// Classify maps a multipart field name to its Class.
func Classify(field string) Class {
	switch {
	case field == fieldRootDocument:
		return ClassRootDocument
	case field == fieldStylesheet:
		return ClassStylesheet
	case strings.HasPrefix(field, attachmentFieldPrefix):
		return ClassAttachment
	case strings.HasPrefix(field, assetFieldPrefix):
		return ClassAsset
	default:
		return ClassIgnored
	}
}

package models

import "errors"

// ErrRouterFailure is returned when the model-based router itself fails
// (network or model error), as opposed to explicitly answering Unsupported.
var ErrRouterFailure = errors.New("router call failed")

// Summary is the structured output of a summarization call.
type Summary struct {
	Title          string   `json:"title"`
	KeyPoints      []string `json:"key_points"`
	ConciseSummary string   `json:"concise_summary"`
}

// ContentType selects the summarization prompt variant. Social and video
// content is normalized to Webpage for summarization purposes.
type ContentType string

const (
	ContentTypeWebpage ContentType = "webpage"
	ContentTypePDF     ContentType = "pdf"
)

// Extractor labels the model-based router may answer with.
const (
	LabelWebpage     = "WebpageExtractor"
	LabelPDF         = "PDFExtractor"
	LabelTwitter     = "TwitterExtractor"
	LabelLinkedIn    = "LinkedInExtractor"
	LabelYoutube     = "YoutubeExtractor"
	LabelUnsupported = "Unsupported"
)

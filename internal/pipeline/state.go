package pipeline

import (
	"github.com/bhardwajRahul/telegram-link-summarizer-agent/internal/classify"
	"github.com/bhardwajRahul/telegram-link-summarizer-agent/models"
)

// Step labels a node of the run graph.
type Step string

const (
	StepInit            Step = "init"
	StepRoute           Step = "route"
	StepWebExtract      Step = "web_extract"
	StepPDFExtract      Step = "pdf_extract"
	StepTwitterExtract  Step = "twitter_extract"
	StepLinkedInExtract Step = "linkedin_extract"
	StepYoutubeExtract  Step = "youtube_extract"
	StepFallbackScrape  Step = "fallback_scrape"
	StepSummarize       Step = "summarize"
	StepDone            Step = "done"
	StepError           Step = "error"
)

// State is the single record threaded through one run. It is created fresh
// per incoming message, mutated only inside node functions, and discarded
// after the final response is rendered.
type State struct {
	RunID           string
	OriginalMessage string // immutable once set

	URL         string
	Route       classify.Route
	ContentType models.ContentType

	Content         string // primary extracted text
	FallbackContent string // secondary text kept apart so later failures don't discard it
	Screenshot      []byte

	Summary string // rendered markdown, empty until summarization succeeds

	// Err holds the last notable problem; a later step that fully
	// supersedes it with success clears it.
	Err string

	// NeedsFallback is set by an extractor to force the generic web retry.
	NeedsFallback bool

	fromCache bool
}

// Response is the terminal payload handed to the transport. Either field
// may be empty; the orchestrator populates whichever of summary,
// screenshot-plus-text, or screenshot-only the run produced.
type Response struct {
	Text       string
	Screenshot []byte
	CacheHit   bool
}

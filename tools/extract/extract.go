// Package extract holds the extractor adapters, one per content class.
// Every adapter turns a URL into plain text through a different external
// capability and reports failures through its error return; auxiliary
// artifacts (screenshot, fallback request) travel in the Result.
package extract

import (
	"context"
	"errors"
)

// Result is the uniform output of every extractor adapter.
type Result struct {
	Text string
	// Screenshot carries raw image bytes from the browser fallback,
	// independent of whether text extraction succeeded.
	Screenshot []byte
	// NeedsFallback asks the orchestrator to retry the URL through the
	// generic webpage path (set by the video extractor on aggregate failure).
	NeedsFallback bool
}

// Extractor is the uniform adapter contract.
type Extractor interface {
	Extract(ctx context.Context, url string) (Result, error)
}

// ErrEmptyExtraction marks a run where the backing service neither failed
// nor returned content; it is an error in its own right, not a success.
var ErrEmptyExtraction = errors.New("extraction produced no content")

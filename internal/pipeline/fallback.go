package pipeline

import (
	"strings"

	"github.com/bhardwajRahul/telegram-link-summarizer-agent/internal/classify"
)

// Edge-selection functions. Each is a pure function of the current state:
// it returns the next step and never mutates the record; state changes
// belong to the nodes themselves.

// extractStepFor maps a route decision to its extraction node.
func extractStepFor(route classify.Route) Step {
	switch route {
	case classify.RoutePDF:
		return StepPDFExtract
	case classify.RouteTwitter:
		return StepTwitterExtract
	case classify.RouteLinkedIn:
		return StepLinkedInExtract
	case classify.RouteYouTube:
		return StepYoutubeExtract
	default:
		return StepWebExtract
	}
}

// browserEligible reports whether a failed extraction step may retry
// through the browser scrape. Document downloads and API-backed thread
// fetches gain nothing from rendering the page, so their failures are
// terminal.
func browserEligible(prev Step) bool {
	return prev == StepWebExtract || prev == StepLinkedInExtract
}

// nextAfterExtract decides the edge out of an extraction node, in priority
// order: explicit fallback request, error recovery, under-length text,
// summarization, and finally the no-text-no-error extractor bug class.
func nextAfterExtract(prev Step, s *State, minContent int) Step {
	// The generic web retry is honored once; the web node cannot request
	// itself again.
	if s.NeedsFallback && prev != StepWebExtract {
		return StepWebExtract
	}
	if s.Err != "" {
		if browserEligible(prev) {
			return StepFallbackScrape
		}
		return StepError
	}
	text := strings.TrimSpace(s.Content)
	if text == "" {
		return StepError
	}
	if len(text) < minContent && browserEligible(prev) {
		return StepFallbackScrape
	}
	return StepSummarize
}

func nextAfterFallbackScrape(s *State) Step {
	if s.Err != "" {
		return StepError
	}
	if strings.TrimSpace(s.Content) != "" {
		return StepSummarize
	}
	if len(s.Screenshot) > 0 {
		return StepDone
	}
	return StepError
}

func nextAfterSummarize(s *State) Step {
	if s.Err != "" {
		return StepError
	}
	return StepDone
}

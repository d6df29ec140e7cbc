// Package summarize wraps the LLM summarization call and renders the
// structured result as chat-ready markdown.
package summarize

import (
	"context"
	"errors"
	"fmt"
	"log"
	"regexp"
	"strings"

	"github.com/bhardwajRahul/telegram-link-summarizer-agent/models"
	"github.com/bhardwajRahul/telegram-link-summarizer-agent/provider"
)

// ErrNothingToSummarize signals blank input; the model is never invoked.
var ErrNothingToSummarize = errors.New("nothing to summarize")

var blankRunPattern = regexp.MustCompile(`\n{3,}`)

type Summarizer struct {
	provider provider.Provider
	logger   *log.Logger
}

func New(p provider.Provider, logger *log.Logger) *Summarizer {
	if logger == nil {
		logger = log.New(log.Writer(), "[SUMMARIZE] ", log.LstdFlags)
	}
	return &Summarizer{provider: p, logger: logger}
}

// Summarize produces a structured summary of text. Empty or whitespace-only
// input is refused before any model call.
func (s *Summarizer) Summarize(ctx context.Context, text string, contentType models.ContentType, originalMessage string) (models.Summary, error) {
	if strings.TrimSpace(text) == "" {
		return models.Summary{}, ErrNothingToSummarize
	}

	summary, err := s.provider.Summarize(ctx, text, contentType, originalMessage)
	if err != nil {
		return models.Summary{}, fmt.Errorf("summarization failed: %w", err)
	}
	s.logger.Printf("summarized %d chars into %d key points", len(text), len(summary.KeyPoints))
	return summary, nil
}

// Render lays the summary out as markdown: a title heading, a trimmed
// bulleted key-point list, and the prose summary with trailing whitespace
// removed. Runs of blank lines collapse to a single blank line.
func Render(s models.Summary) string {
	var sections []string

	if title := strings.TrimSpace(s.Title); title != "" {
		sections = append(sections, "# "+title)
	}

	points := make([]string, 0, len(s.KeyPoints))
	for _, point := range s.KeyPoints {
		if point = strings.TrimSpace(point); point != "" {
			points = append(points, "- "+point)
		}
	}
	if len(points) > 0 {
		sections = append(sections, "## Key Points:\n"+strings.Join(points, "\n"))
	}

	if summary := strings.TrimRight(s.ConciseSummary, " \t\r\n"); strings.TrimSpace(summary) != "" {
		sections = append(sections, "## Summary:\n"+summary)
	}

	out := strings.Join(sections, "\n\n")
	return blankRunPattern.ReplaceAllString(out, "\n\n")
}

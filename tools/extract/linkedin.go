package extract

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/bhardwajRahul/telegram-link-summarizer-agent/tools/extract/tavily"
)

// LinkedIn extracts post text by querying the search-and-extract service
// with the post URL itself. This is a weaker signal path than direct
// scraping: whichever non-empty field the best hit carries is accepted,
// preferring the extracted content over the raw page.
type LinkedIn struct {
	client *tavily.Client
	logger *log.Logger
}

func NewLinkedIn(client *tavily.Client, logger *log.Logger) *LinkedIn {
	if logger == nil {
		logger = log.New(log.Writer(), "[LINKEDIN] ", log.LstdFlags)
	}
	return &LinkedIn{client: client, logger: logger}
}

func (l *LinkedIn) Extract(ctx context.Context, url string) (Result, error) {
	results, err := l.client.Search(ctx, url, "advanced", 1, true)
	if err != nil {
		return Result{}, fmt.Errorf("linkedin extract %s: %w", url, err)
	}
	if len(results) == 0 {
		return Result{}, fmt.Errorf("linkedin extract %s: no results for post", url)
	}

	best := results[0]
	text := strings.TrimSpace(best.Content)
	if raw := strings.TrimSpace(best.RawContent); len(raw) > len(text) {
		text = raw
	}
	if text == "" {
		return Result{}, fmt.Errorf("linkedin extract %s: %w", url, ErrEmptyExtraction)
	}

	l.logger.Printf("extracted %d chars for post %s (source %s)", len(text), url, best.URL)
	return Result{Text: text}, nil
}

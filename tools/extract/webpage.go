package extract

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/bhardwajRahul/telegram-link-summarizer-agent/tools/extract/tavily"
)

// Webpage extracts article text through the search-and-extract service.
type Webpage struct {
	client *tavily.Client
	logger *log.Logger
}

func NewWebpage(client *tavily.Client, logger *log.Logger) *Webpage {
	if logger == nil {
		logger = log.New(log.Writer(), "[WEB] ", log.LstdFlags)
	}
	return &Webpage{client: client, logger: logger}
}

func (w *Webpage) Extract(ctx context.Context, url string) (Result, error) {
	resp, err := w.client.Extract(ctx, []string{url})
	if err != nil {
		return Result{}, fmt.Errorf("webpage extract %s: %w", url, err)
	}

	for _, failed := range resp.FailedResults {
		if failed.URL == url {
			reason := failed.Error
			if reason == "" {
				reason = "service reported failure"
			}
			return Result{}, fmt.Errorf("webpage extract %s: %s", url, reason)
		}
	}

	for _, result := range resp.Results {
		text := strings.TrimSpace(result.RawContent)
		if text == "" {
			text = strings.TrimSpace(result.Content)
		}
		if text != "" {
			w.logger.Printf("extracted %d chars from %s", len(text), url)
			return Result{Text: text}, nil
		}
	}

	// No content and no explicit failure is its own error class.
	return Result{}, fmt.Errorf("webpage extract %s: %w", url, ErrEmptyExtraction)
}

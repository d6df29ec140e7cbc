package provider

import (
	"context"
	"errors"

	"github.com/bhardwajRahul/telegram-link-summarizer-agent/config"
	"github.com/bhardwajRahul/telegram-link-summarizer-agent/models"
	openai_provider "github.com/bhardwajRahul/telegram-link-summarizer-agent/provider/openai"
)

// Client represents different LLM providers
type Client string

const (
	OpenAI    Client = "openai"
	Anthropic Client = "anthropic"
)

// Provider is the interface that all LLM implementations must satisfy.
// RouteURL returns one of the extractor labels in models (WebpageExtractor,
// PDFExtractor, TwitterExtractor, LinkedInExtractor, YoutubeExtractor,
// Unsupported); a transport or model failure is returned as an error so the
// caller can distinguish it from an explicit Unsupported verdict.
type Provider interface {
	RouteURL(ctx context.Context, message, url string) (string, error)
	Summarize(ctx context.Context, text string, contentType models.ContentType, originalMessage string) (models.Summary, error)
}

// NewProvider creates a new LLM client based on the provided configuration
func NewProvider(client Client, cfg config.LLMConfig) (Provider, error) {
	switch client {
	case OpenAI:
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
		return openai_provider.NewClient(cfg), nil
	case Anthropic:
		return nil, errors.New("anthropic client not implemented yet")
	default:
		return nil, errors.New("unsupported LLM provider")
	}
}

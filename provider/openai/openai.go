package openai_provider

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"github.com/bhardwajRahul/telegram-link-summarizer-agent/config"
	"github.com/bhardwajRahul/telegram-link-summarizer-agent/models"
)

const routerSystemPrompt = `You are a URL router for a link summarizer bot.
Given a chat message containing a URL, answer with exactly one of these labels
and nothing else:
WebpageExtractor - generic articles, blogs, documentation, news
PDFExtractor - links to PDF documents
TwitterExtractor - twitter.com or x.com posts and threads
LinkedInExtractor - linkedin.com posts
YoutubeExtractor - youtube.com or youtu.be videos
Unsupported - content that cannot be summarized (audio streams, paywalled apps, binary downloads)`

const summarySystemPrompt = `You are a precise summarization assistant.
Respond with a JSON object only, no prose and no code fences, with exactly
these keys:
  "title": a short descriptive title for the content
  "key_points": an array of 3-7 short bullet strings
  "concise_summary": one or two paragraphs of prose
Base the summary strictly on the provided content.`

// client implements provider.Provider on top of the OpenAI chat API.
type client struct {
	api          *openai.Client
	routerModel  string
	summaryModel string
	temperature  float32
	maxTokens    int
}

// NewClient creates a provider backed by an OpenAI-compatible endpoint.
func NewClient(cfg config.LLMConfig) *client {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	if cfg.Timeout > 0 {
		clientCfg.HTTPClient = &http.Client{Timeout: cfg.Timeout}
	}
	return &client{
		api:          openai.NewClientWithConfig(clientCfg),
		routerModel:  cfg.RouterModel,
		summaryModel: cfg.SummaryModel,
		temperature:  cfg.Temperature,
		maxTokens:    cfg.MaxTokens,
	}
}

// RouteURL asks the router model to classify the URL's content class.
func (c *client) RouteURL(ctx context.Context, message, url string) (string, error) {
	resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       c.routerModel,
		Temperature: 0,
		MaxTokens:   16,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: routerSystemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: fmt.Sprintf("Message: %s\nURL: %s", message, url)},
		},
	})
	if err != nil {
		return "", fmt.Errorf("%w: %v", models.ErrRouterFailure, err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%w: empty response", models.ErrRouterFailure)
	}

	label := strings.TrimSpace(resp.Choices[0].Message.Content)
	switch label {
	case models.LabelWebpage, models.LabelPDF, models.LabelTwitter,
		models.LabelLinkedIn, models.LabelYoutube, models.LabelUnsupported:
		return label, nil
	}
	return "", fmt.Errorf("%w: unrecognized label %q", models.ErrRouterFailure, label)
}

// Summarize produces a structured summary of extracted text. The content type
// selects the prompt variant; the original chat message is passed as context
// since it may contain a question or focus hint from the user.
func (c *client) Summarize(ctx context.Context, text string, contentType models.ContentType, originalMessage string) (models.Summary, error) {
	kind := "web page"
	if contentType == models.ContentTypePDF {
		kind = "PDF document"
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Summarize the following %s content.\n", kind)
	if strings.TrimSpace(originalMessage) != "" {
		fmt.Fprintf(&sb, "The user shared it with this message: %q\n", originalMessage)
	}
	sb.WriteString("\nContent:\n")
	sb.WriteString(text)

	resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       c.summaryModel,
		Temperature: c.temperature,
		MaxTokens:   c.maxTokens,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: summarySystemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: sb.String()},
		},
	})
	if err != nil {
		return models.Summary{}, fmt.Errorf("summarization call: %w", err)
	}
	if len(resp.Choices) == 0 {
		return models.Summary{}, fmt.Errorf("summarization call: empty response")
	}

	summary, err := parseSummaryJSON(resp.Choices[0].Message.Content)
	if err != nil {
		return models.Summary{}, fmt.Errorf("summarization response: %w", err)
	}
	return summary, nil
}

// parseSummaryJSON decodes the model's JSON answer, tolerating code fences
// and surrounding prose.
func parseSummaryJSON(raw string) (models.Summary, error) {
	raw = strings.TrimSpace(raw)
	if start := strings.Index(raw, "{"); start >= 0 {
		if end := strings.LastIndex(raw, "}"); end > start {
			raw = raw[start : end+1]
		}
	}

	var summary models.Summary
	if err := json.Unmarshal([]byte(raw), &summary); err != nil {
		return models.Summary{}, err
	}
	if strings.TrimSpace(summary.Title) == "" && strings.TrimSpace(summary.ConciseSummary) == "" {
		return models.Summary{}, fmt.Errorf("response carries no title or summary")
	}
	return summary, nil
}

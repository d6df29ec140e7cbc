package tavily

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/bhardwajRahul/telegram-link-summarizer-agent/config"
)

// Client calls the Tavily search-and-extract API.
// https://docs.tavily.com/ for endpoint docs.
type Client struct {
	APIKey     string
	BaseURL    string
	HTTPClient *http.Client
}

func NewClient(cfg config.TavilyConfig) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		APIKey:     cfg.APIKey,
		BaseURL:    cfg.BaseURL,
		HTTPClient: &http.Client{Timeout: timeout},
	}
}

// ExtractResult is one successfully extracted URL.
type ExtractResult struct {
	URL        string `json:"url"`
	Content    string `json:"content"`
	RawContent string `json:"raw_content"`
}

// FailedResult is a URL the service explicitly reported as failed.
type FailedResult struct {
	URL   string `json:"url"`
	Error string `json:"error"`
}

// ExtractResponse is the /extract endpoint payload.
type ExtractResponse struct {
	Results       []ExtractResult `json:"results"`
	FailedResults []FailedResult  `json:"failed_results"`
}

// SearchResult is one hit from the /search endpoint.
type SearchResult struct {
	Title      string  `json:"title"`
	URL        string  `json:"url"`
	Content    string  `json:"content"`
	RawContent string  `json:"raw_content"`
	Score      float64 `json:"score"`
}

type searchResponse struct {
	Results []SearchResult `json:"results"`
}

// Extract requests raw content for the given URLs.
func (c *Client) Extract(ctx context.Context, urls []string) (ExtractResponse, error) {
	payload := map[string]any{"urls": urls}
	var resp ExtractResponse
	if err := c.post(ctx, "/extract", payload, &resp); err != nil {
		return ExtractResponse{}, err
	}
	return resp, nil
}

// Search runs a query; includeRaw asks the service to return the page's raw
// content alongside its extracted snippet.
func (c *Client) Search(ctx context.Context, query, depth string, maxResults int, includeRaw bool) ([]SearchResult, error) {
	payload := map[string]any{
		"query":               query,
		"search_depth":        depth,
		"max_results":         maxResults,
		"include_raw_content": includeRaw,
	}
	var resp searchResponse
	if err := c.post(ctx, "/search", payload, &resp); err != nil {
		return nil, err
	}
	return resp.Results, nil
}

func (c *Client) post(ctx context.Context, path string, payload, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+path, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.APIKey)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("tavily %s returned status %d", path, resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

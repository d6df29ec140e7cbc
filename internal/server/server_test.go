package server

import (
	"context"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/bhardwajRahul/telegram-link-summarizer-agent/internal/classify"
	"github.com/bhardwajRahul/telegram-link-summarizer-agent/internal/pipeline"
	"github.com/bhardwajRahul/telegram-link-summarizer-agent/internal/summarize"
	"github.com/bhardwajRahul/telegram-link-summarizer-agent/internal/telemetry"
	"github.com/bhardwajRahul/telegram-link-summarizer-agent/models"
	"github.com/bhardwajRahul/telegram-link-summarizer-agent/tools/extract"
)

type stubExtractor struct {
	res extract.Result
	err error
}

func (s stubExtractor) Extract(ctx context.Context, url string) (extract.Result, error) {
	return s.res, s.err
}

type stubLLM struct {
	summary models.Summary
}

func (s stubLLM) RouteURL(ctx context.Context, message, url string) (string, error) {
	return models.LabelWebpage, nil
}

func (s stubLLM) Summarize(ctx context.Context, text string, contentType models.ContentType, originalMessage string) (models.Summary, error) {
	return s.summary, nil
}

func newTestServer(t *testing.T, web extract.Extractor) *Server {
	t.Helper()
	logger := log.New(io.Discard, "", 0)
	orch, err := pipeline.New(pipeline.Deps{
		Classifier: classify.New(nil, logger),
		Summarizer: summarize.New(stubLLM{summary: models.Summary{Title: "T", ConciseSummary: "s"}}, logger),
		Web:        web,
		Logger:     logger,
	})
	if err != nil {
		t.Fatalf("pipeline.New: %v", err)
	}
	return New(orch, telemetry.New(), logger)
}

func TestHealthz(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t, stubExtractor{})
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	srv.echo.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d", rec.Code)
	}
}

func TestSummarizeEndpoint(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t, stubExtractor{res: extract.Result{Text: strings.Repeat("article ", 50)}})
	body := strings.NewReader(`{"message": "look at https://example.com/post"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/summarize", body)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	srv.echo.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	var resp summarizeResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !strings.Contains(resp.Summary, "# T") {
		t.Errorf("summary = %q", resp.Summary)
	}
	if resp.Error != "" {
		t.Errorf("unexpected error %q", resp.Error)
	}
}

func TestSummarizeEndpointNoURL(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t, stubExtractor{})
	body := strings.NewReader(`{"message": "no link in here"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/summarize", body)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	srv.echo.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("status = %d, want 422", rec.Code)
	}
}

func TestSummarizeEndpointEmptyMessage(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t, stubExtractor{})
	body := strings.NewReader(`{"message": "  "}`)
	req := httptest.NewRequest(http.MethodPost, "/api/summarize", body)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	srv.echo.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

package extract

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/ledongthuc/pdf"

	"github.com/bhardwajRahul/telegram-link-summarizer-agent/internal/helpers"
)

// maxPDFBytes caps the download size; anything larger is not a document
// worth summarizing over chat.
const maxPDFBytes = 50 << 20

// PDF downloads a document and extracts its text page by page.
type PDF struct {
	httpClient *http.Client
	logger     *log.Logger
}

func NewPDF(timeout time.Duration, logger *log.Logger) *PDF {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	if logger == nil {
		logger = log.New(log.Writer(), "[PDF] ", log.LstdFlags)
	}
	return &PDF{
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

func (p *PDF) Extract(ctx context.Context, url string) (Result, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return Result{}, fmt.Errorf("pdf download %s: %w", url, err)
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return Result{}, fmt.Errorf("pdf download %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Result{}, fmt.Errorf("pdf download %s: status %d", url, resp.StatusCode)
	}

	// The content-type header is advisory only: many hosts serve PDFs as
	// octet-stream. Refuse only when both the header and the path disagree.
	contentType := strings.ToLower(resp.Header.Get("Content-Type"))
	if !strings.Contains(contentType, "application/pdf") {
		if !helpers.HasPDFPath(url) {
			return Result{}, fmt.Errorf("pdf download %s: not a pdf (content-type %q)", url, contentType)
		}
		p.logger.Printf("content-type %q for %s, attempting pdf parse anyway", contentType, url)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxPDFBytes))
	if err != nil {
		return Result{}, fmt.Errorf("pdf download %s: %w", url, err)
	}

	text, err := extractPDFText(data)
	if err != nil {
		return Result{}, fmt.Errorf("pdf parse %s: %w", url, err)
	}
	if strings.TrimSpace(text) == "" {
		return Result{}, fmt.Errorf("pdf parse %s: no extractable text (scanned document?)", url)
	}

	p.logger.Printf("extracted %d chars from %s", len(text), url)
	return Result{Text: strings.TrimSpace(text)}, nil
}

// extractPDFText concatenates the plain text of every page, newline separated.
func extractPDFText(data []byte) (string, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		pageText, err := page.GetPlainText(nil)
		if err != nil {
			// Pages fail individually on odd encodings; skip rather than
			// abort the whole document.
			continue
		}
		if pageText != "" {
			sb.WriteString(pageText)
			sb.WriteString("\n")
		}
	}
	return sb.String(), nil
}

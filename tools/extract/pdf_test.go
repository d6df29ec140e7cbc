package extract

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestPDFExtractRejectsNonPDF(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte("<html>not a document</html>"))
	}))
	defer srv.Close()

	p := NewPDF(5*time.Second, testLogger())
	_, err := p.Extract(context.Background(), srv.URL+"/page.html")
	if err == nil {
		t.Fatal("expected error for html content at a non-pdf path")
	}
	if !strings.Contains(err.Error(), "not a pdf") {
		t.Errorf("error = %v", err)
	}
}

func TestPDFExtractTrustsPathOverContentType(t *testing.T) {
	t.Parallel()

	// octet-stream with a .pdf path gets parsed; the garbage body then
	// fails at the parser, not at the content-type gate.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/octet-stream")
		w.Write([]byte("garbage bytes"))
	}))
	defer srv.Close()

	p := NewPDF(5*time.Second, testLogger())
	_, err := p.Extract(context.Background(), srv.URL+"/paper.pdf")
	if err == nil {
		t.Fatal("expected parse error for garbage bytes")
	}
	if !strings.Contains(err.Error(), "pdf parse") {
		t.Errorf("error should come from the parser, got %v", err)
	}
}

func TestPDFExtractHTTPError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	p := NewPDF(5*time.Second, testLogger())
	_, err := p.Extract(context.Background(), srv.URL+"/missing.pdf")
	if err == nil {
		t.Fatal("expected error on 404")
	}
	if !strings.Contains(err.Error(), "status 404") {
		t.Errorf("error = %v", err)
	}
}

func TestPDFExtractInvalidDocument(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/pdf")
		w.Write([]byte("%PDF-1.4 truncated"))
	}))
	defer srv.Close()

	p := NewPDF(5*time.Second, testLogger())
	if _, err := p.Extract(context.Background(), srv.URL+"/doc.pdf"); err == nil {
		t.Fatal("expected error for a truncated document")
	}
}

package extract

import (
	"context"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/bhardwajRahul/telegram-link-summarizer-agent/config"
)

func testLogger() *log.Logger {
	return log.New(io.Discard, "", 0)
}

func newTweet(id, text, createdAt, conversationID, author string) map[string]any {
	return map[string]any{
		"id":             id,
		"text":           text,
		"createdAt":      createdAt,
		"conversationId": conversationID,
		"author":         map[string]any{"userName": author},
	}
}

func TestTwitterExtractThread(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("X-API-Key") != "test-key" {
			t.Errorf("missing api key header")
		}
		switch r.URL.Path {
		case "/twitter/tweets":
			json.NewEncoder(w).Encode(map[string]any{
				"status": "success",
				"tweets": []any{
					newTweet("30", "third tweet in the thread", "Thu May 01 12:05:00 +0000 2025", "10", "alice"),
				},
			})
		case "/twitter/tweet/advanced_search":
			if got := r.URL.Query().Get("query"); got != "conversation_id:10" {
				t.Errorf("conversation query = %q", got)
			}
			json.NewEncoder(w).Encode(map[string]any{
				"status": "success",
				"tweets": []any{
					newTweet("30", "third tweet in the thread", "Thu May 01 12:05:00 +0000 2025", "10", "alice"),
					newTweet("10", "first tweet", "Thu May 01 12:03:30 +0000 2025", "10", "alice"),
					newTweet("20", "second tweet", "Thu May 01 12:04:10 +0000 2025", "10", "alice"),
				},
			})
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	tw := NewTwitter(config.TwitterConfig{APIKey: "test-key", BaseURL: srv.URL}, testLogger())
	res, err := tw.Extract(context.Background(), "https://x.com/alice/status/30")
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}

	// Chronological order, requested tweet deduplicated.
	wantOrder := []string{"first tweet", "second tweet", "third tweet in the thread"}
	lastIdx := -1
	for _, want := range wantOrder {
		idx := strings.Index(res.Text, want)
		if idx < 0 {
			t.Fatalf("thread text missing %q:\n%s", want, res.Text)
		}
		if idx < lastIdx {
			t.Fatalf("thread out of order, %q appears before earlier tweets:\n%s", want, res.Text)
		}
		lastIdx = idx
	}
	if got := strings.Count(res.Text, "third tweet in the thread"); got != 1 {
		t.Errorf("requested tweet appears %d times, want 1", got)
	}
	if !strings.Contains(res.Text, "Tweet 1/3 by @alice (Thu May 01 12:03:30 +0000 2025):") {
		t.Errorf("thread header not rendered:\n%s", res.Text)
	}
}

func TestTwitterExtractConversationFailureDegrades(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/twitter/tweets":
			json.NewEncoder(w).Encode(map[string]any{
				"status": "success",
				"tweets": []any{
					newTweet("30", "the root tweet", "Thu May 01 12:05:00 +0000 2025", "10", "bob"),
				},
			})
		case "/twitter/tweet/advanced_search":
			http.Error(w, "rate limited", http.StatusTooManyRequests)
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	tw := NewTwitter(config.TwitterConfig{APIKey: "k", BaseURL: srv.URL}, testLogger())
	res, err := tw.Extract(context.Background(), "https://twitter.com/bob/status/30")
	if err != nil {
		t.Fatalf("conversation failure should not be fatal: %v", err)
	}
	if !strings.Contains(res.Text, "the root tweet") {
		t.Errorf("root tweet missing from degraded result:\n%s", res.Text)
	}
	if !strings.Contains(res.Text, "Tweet 1/1") {
		t.Errorf("degraded result should be a single-tweet thread:\n%s", res.Text)
	}
}

func TestTwitterExtractSingleTweetSkipsConversation(t *testing.T) {
	t.Parallel()

	searchCalls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/twitter/tweets":
			json.NewEncoder(w).Encode(map[string]any{
				"status": "success",
				"tweets": []any{
					newTweet("42", "a lone tweet", "Thu May 01 12:00:00 +0000 2025", "42", "carol"),
				},
			})
		case "/twitter/tweet/advanced_search":
			searchCalls++
			json.NewEncoder(w).Encode(map[string]any{"status": "success"})
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	tw := NewTwitter(config.TwitterConfig{APIKey: "k", BaseURL: srv.URL}, testLogger())
	if _, err := tw.Extract(context.Background(), "https://x.com/carol/status/42"); err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if searchCalls != 0 {
		t.Errorf("conversation search called %d times for a self-rooted tweet", searchCalls)
	}
}

func TestTwitterExtractRootFailureIsFatal(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"status": "error", "msg": "tweet not found"})
	}))
	defer srv.Close()

	tw := NewTwitter(config.TwitterConfig{APIKey: "k", BaseURL: srv.URL}, testLogger())
	_, err := tw.Extract(context.Background(), "https://x.com/dave/status/999")
	if err == nil {
		t.Fatal("expected error for missing root tweet")
	}
	if !strings.Contains(err.Error(), "tweet not found") {
		t.Errorf("error should carry the api message, got %v", err)
	}
}

func TestTwitterExtractRequiresAPIKey(t *testing.T) {
	t.Parallel()

	tw := NewTwitter(config.TwitterConfig{}, testLogger())
	if _, err := tw.Extract(context.Background(), "https://x.com/a/status/1"); err == nil {
		t.Fatal("expected error without api key")
	}
}

func TestTwitterExtractBadURL(t *testing.T) {
	t.Parallel()

	tw := NewTwitter(config.TwitterConfig{APIKey: "k", BaseURL: "http://unused"}, testLogger())
	_, err := tw.Extract(context.Background(), "https://x.com/alice/followers")
	if err == nil {
		t.Fatal("expected error for url without a tweet id")
	}
}

func TestParseTwitterTimeFallback(t *testing.T) {
	t.Parallel()

	good := parseTwitterTime("Thu May 01 12:03:30 +0000 2025")
	if good.Year() != 2025 {
		t.Errorf("parsed year = %d", good.Year())
	}
	bad := parseTwitterTime("not a timestamp")
	if !bad.Equal(parseTwitterTime("also bad")) {
		t.Error("unparseable times should collapse to the same instant")
	}
	if !bad.Before(good) {
		t.Error("unparseable times should sort before real ones")
	}
}

package extract

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/bhardwajRahul/telegram-link-summarizer-agent/config"
	"github.com/bhardwajRahul/telegram-link-summarizer-agent/internal/helpers"
)

// twitterTimeLayout matches createdAt strings like
// "Thu May 01 12:03:30 +0000 2025".
const twitterTimeLayout = "Mon Jan 02 15:04:05 -0700 2006"

// Twitter fetches a tweet and, when it opens a longer conversation, the
// surrounding same-conversation tweets. The root tweet is mandatory; the
// conversation is best effort.
type Twitter struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	logger     *log.Logger
}

func NewTwitter(cfg config.TwitterConfig, logger *log.Logger) *Twitter {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	if logger == nil {
		logger = log.New(log.Writer(), "[TWITTER] ", log.LstdFlags)
	}
	return &Twitter{
		apiKey:     cfg.APIKey,
		baseURL:    cfg.BaseURL,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

type tweet struct {
	ID             string `json:"id"`
	Text           string `json:"text"`
	CreatedAt      string `json:"createdAt"`
	ConversationID string `json:"conversationId"`
	Author         struct {
		UserName string `json:"userName"`
	} `json:"author"`
}

type tweetResponse struct {
	Status string  `json:"status"`
	Msg    string  `json:"msg"`
	Tweets []tweet `json:"tweets"`
}

func (t *Twitter) Extract(ctx context.Context, rawURL string) (Result, error) {
	if t.apiKey == "" {
		return Result{}, fmt.Errorf("twitter extract: api key not configured")
	}

	tweetID, err := helpers.TweetID(rawURL)
	if err != nil {
		return Result{}, fmt.Errorf("twitter extract %s: %w", rawURL, err)
	}

	root, err := t.fetchTweet(ctx, tweetID)
	if err != nil {
		// The root tweet is the content; without it there is nothing
		// to summarize.
		return Result{}, fmt.Errorf("twitter extract %s: %w", rawURL, err)
	}

	all := []tweet{root}

	// A single tweet's conversation ID is usually its own ID; only a
	// differing ID signals a thread worth fetching. Conversation failures
	// degrade to the root tweet alone.
	if root.ConversationID != "" && root.ConversationID != tweetID {
		replies, convErr := t.fetchConversation(ctx, root.ConversationID)
		if convErr != nil {
			t.logger.Printf("conversation %s fetch failed, using root tweet only: %v", root.ConversationID, convErr)
		} else {
			for _, reply := range replies {
				if reply.ID != tweetID {
					all = append(all, reply)
				}
			}
		}
	}

	sort.SliceStable(all, func(i, j int) bool {
		return parseTwitterTime(all[i].CreatedAt).Before(parseTwitterTime(all[j].CreatedAt))
	})

	return Result{Text: formatThread(all)}, nil
}

func (t *Twitter) fetchTweet(ctx context.Context, tweetID string) (tweet, error) {
	resp, err := t.get(ctx, "/twitter/tweets", url.Values{"tweet_ids": {tweetID}})
	if err != nil {
		return tweet{}, err
	}
	if resp.Status != "success" || len(resp.Tweets) == 0 {
		msg := resp.Msg
		if msg == "" {
			msg = "unknown error"
		}
		return tweet{}, fmt.Errorf("fetch tweet %s: %s", tweetID, msg)
	}
	return resp.Tweets[0], nil
}

func (t *Twitter) fetchConversation(ctx context.Context, conversationID string) ([]tweet, error) {
	query := url.Values{"query": {"conversation_id:" + conversationID}}
	resp, err := t.get(ctx, "/twitter/tweet/advanced_search", query)
	if err != nil {
		return nil, err
	}
	if resp.Status != "success" {
		msg := resp.Msg
		if msg == "" {
			msg = "unknown error"
		}
		return nil, fmt.Errorf("conversation search: %s", msg)
	}
	return resp.Tweets, nil
}

func (t *Twitter) get(ctx context.Context, path string, query url.Values) (tweetResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, t.baseURL+path+"?"+query.Encode(), nil)
	if err != nil {
		return tweetResponse{}, err
	}
	req.Header.Set("X-API-Key", t.apiKey)

	httpResp, err := t.httpClient.Do(req)
	if err != nil {
		return tweetResponse{}, err
	}
	defer httpResp.Body.Close()

	if httpResp.StatusCode != http.StatusOK {
		return tweetResponse{}, fmt.Errorf("twitter api status %d", httpResp.StatusCode)
	}

	var resp tweetResponse
	if err := json.NewDecoder(httpResp.Body).Decode(&resp); err != nil {
		return tweetResponse{}, err
	}
	return resp, nil
}

func parseTwitterTime(s string) time.Time {
	parsed, err := time.Parse(twitterTimeLayout, s)
	if err != nil {
		// Epoch fallback keeps unparseable tweets sortable at the front.
		return time.Unix(0, 0).UTC()
	}
	return parsed
}

// formatThread renders tweets as an ordered list of
// "Tweet i/N by @author (timestamp):" entries.
func formatThread(tweets []tweet) string {
	lines := make([]string, 0, len(tweets))
	for i, tw := range tweets {
		author := tw.Author.UserName
		if author == "" {
			author = "unknown_user"
		}
		createdAt := tw.CreatedAt
		if createdAt == "" {
			createdAt = "unknown time"
		}
		lines = append(lines, fmt.Sprintf("Tweet %d/%d by @%s (%s):\n%s\n---",
			i+1, len(tweets), author, createdAt, strings.TrimSpace(tw.Text)))
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}

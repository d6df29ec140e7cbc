package extract

import (
	"context"
	"encoding/json"
	"encoding/xml"
	"fmt"
	"html"
	"log"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	youtubedl "github.com/kkdai/youtube/v2"

	"github.com/bhardwajRahul/telegram-link-summarizer-agent/config"
	"github.com/bhardwajRahul/telegram-link-summarizer-agent/internal/helpers"
)

var shortDescriptionPattern = regexp.MustCompile(`"shortDescription":"((?:[^"\\]|\\.)*)"`)

// YouTube gathers a video's title, description and transcript through four
// independently failable attempts: a watch-page scrape, the metadata
// library, a caption-track transcript fetch, and the Data API. Among all
// successfully returned descriptions the longest wins, ties broken by
// earliest attempt. Only the aggregate absence of title, description and
// transcript is a failure, and then the generic webpage path is requested
// as a last resort.
type YouTube struct {
	httpClient *http.Client
	ytClient   *youtubedl.Client
	dataAPIKey string
	logger     *log.Logger
}

func NewYouTube(cfg config.YouTubeConfig, logger *log.Logger) *YouTube {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	if logger == nil {
		logger = log.New(log.Writer(), "[YOUTUBE] ", log.LstdFlags)
	}
	httpClient := &http.Client{Timeout: timeout}
	return &YouTube{
		httpClient: httpClient,
		ytClient:   &youtubedl.Client{HTTPClient: httpClient},
		dataAPIKey: cfg.DataAPIKey,
		logger:     logger,
	}
}

func (y *YouTube) Extract(ctx context.Context, rawURL string) (Result, error) {
	videoID, err := helpers.YouTubeVideoID(rawURL)
	if err != nil {
		return Result{NeedsFallback: true}, fmt.Errorf("youtube extract %s: %w", rawURL, err)
	}

	var (
		title        string
		descriptions []string
		transcript   string
	)

	// Attempt 1: watch-page scrape.
	if pageTitle, pageDesc, scrapeErr := y.scrapeWatchPage(ctx, rawURL); scrapeErr != nil {
		y.logger.Printf("watch page scrape failed for %s: %v", videoID, scrapeErr)
		descriptions = append(descriptions, "")
	} else {
		if title == "" {
			title = pageTitle
		}
		descriptions = append(descriptions, pageDesc)
	}

	// Attempt 2: metadata library; also discovers caption tracks.
	var captionTracks []youtubedl.CaptionTrack
	if video, metaErr := y.ytClient.GetVideoContext(ctx, videoID); metaErr != nil {
		y.logger.Printf("metadata lookup failed for %s: %v", videoID, metaErr)
		descriptions = append(descriptions, "")
	} else {
		if title == "" {
			title = video.Title
		}
		descriptions = append(descriptions, video.Description)
		captionTracks = video.CaptionTracks
	}

	// Attempt 3: English transcript from the discovered caption tracks.
	if trackURL := englishCaptionTrack(captionTracks); trackURL != "" {
		if fetched, trErr := y.fetchTranscript(ctx, trackURL); trErr != nil {
			y.logger.Printf("transcript fetch failed for %s: %v", videoID, trErr)
		} else {
			transcript = fetched
		}
	}

	// Attempt 4: authenticated Data API, when a key is configured.
	if y.dataAPIKey != "" {
		if apiTitle, apiDesc, apiErr := y.fetchSnippet(ctx, videoID); apiErr != nil {
			y.logger.Printf("data api lookup failed for %s: %v", videoID, apiErr)
			descriptions = append(descriptions, "")
		} else {
			if title == "" {
				title = apiTitle
			}
			descriptions = append(descriptions, apiDesc)
		}
	}

	description := longestDescription(descriptions)
	if title == "" && description == "" && transcript == "" {
		return Result{NeedsFallback: true},
			fmt.Errorf("youtube extract %s: all metadata attempts failed", rawURL)
	}

	return Result{Text: renderVideoText(title, description, transcript)}, nil
}

// longestDescription picks the candidate with the greatest character
// length; ties go to the earliest-attempted source.
func longestDescription(candidates []string) string {
	best := ""
	for _, candidate := range candidates {
		candidate = strings.TrimSpace(candidate)
		if len(candidate) > len(best) {
			best = candidate
		}
	}
	return best
}

func renderVideoText(title, description, transcript string) string {
	var sections []string
	if title != "" {
		sections = append(sections, "Title: "+title)
	}
	if description != "" {
		sections = append(sections, "Description:\n"+description)
	}
	if transcript != "" {
		sections = append(sections, "Transcript:\n"+transcript)
	}
	return strings.Join(sections, "\n\n")
}

// scrapeWatchPage pulls the title from meta tags and the description from
// the player response embedded in the page scripts.
func (y *YouTube) scrapeWatchPage(ctx context.Context, rawURL string) (string, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", "", err
	}
	resp, err := y.httpClient.Do(req)
	if err != nil {
		return "", "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", "", fmt.Errorf("watch page status %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return "", "", err
	}

	title, _ := doc.Find(`meta[property="og:title"]`).Attr("content")
	if title == "" {
		title, _ = doc.Find(`meta[name="title"]`).Attr("content")
	}

	description, _ := doc.Find(`meta[property="og:description"]`).Attr("content")
	doc.Find("script").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		m := shortDescriptionPattern.FindStringSubmatch(s.Text())
		if m == nil {
			return true
		}
		if decoded := decodeJSONString(m[1]); len(decoded) > len(description) {
			description = decoded
		}
		return false
	})

	return strings.TrimSpace(title), strings.TrimSpace(description), nil
}

// decodeJSONString unescapes a JSON string literal body captured by regex.
func decodeJSONString(escaped string) string {
	var decoded string
	if err := json.Unmarshal([]byte(`"`+escaped+`"`), &decoded); err != nil {
		return ""
	}
	return decoded
}

func englishCaptionTrack(tracks []youtubedl.CaptionTrack) string {
	for _, track := range tracks {
		if strings.HasPrefix(strings.ToLower(track.LanguageCode), "en") {
			return track.BaseURL
		}
	}
	return ""
}

type timedTextBody struct {
	Texts []struct {
		Value string `xml:",chardata"`
	} `xml:"text"`
}

// fetchTranscript downloads a caption track in timedtext XML and joins the
// cue texts into one transcript string.
func (y *YouTube) fetchTranscript(ctx context.Context, trackURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, trackURL, nil)
	if err != nil {
		return "", err
	}
	resp, err := y.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("caption track status %d", resp.StatusCode)
	}

	var body timedTextBody
	if err := xml.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", err
	}

	parts := make([]string, 0, len(body.Texts))
	for _, cue := range body.Texts {
		text := strings.TrimSpace(html.UnescapeString(cue.Value))
		if text != "" {
			parts = append(parts, text)
		}
	}
	if len(parts) == 0 {
		return "", fmt.Errorf("caption track carried no text")
	}
	return strings.Join(parts, " "), nil
}

type snippetResponse struct {
	Items []struct {
		Snippet struct {
			Title       string `json:"title"`
			Description string `json:"description"`
		} `json:"snippet"`
	} `json:"items"`
}

// fetchSnippet queries the authenticated Data API for the video snippet.
func (y *YouTube) fetchSnippet(ctx context.Context, videoID string) (string, string, error) {
	query := url.Values{
		"part": {"snippet"},
		"id":   {videoID},
		"key":  {y.dataAPIKey},
	}
	endpoint := "https://www.googleapis.com/youtube/v3/videos?" + query.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", "", err
	}
	resp, err := y.httpClient.Do(req)
	if err != nil {
		return "", "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", "", fmt.Errorf("data api status %d", resp.StatusCode)
	}

	var parsed snippetResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", "", err
	}
	if len(parsed.Items) == 0 {
		return "", "", fmt.Errorf("data api returned no items")
	}
	return parsed.Items[0].Snippet.Title, parsed.Items[0].Snippet.Description, nil
}

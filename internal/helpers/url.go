package helpers

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"net/url"
	"path"
	"regexp"
	"sort"
	"strings"
)

var (
	urlPattern     = regexp.MustCompile(`https?://\S+`)
	tweetIDPattern = regexp.MustCompile(`/status(?:es)?/(\d+)`)
)

var trackingQueryParams = map[string]struct{}{
	"utm_source":   {},
	"utm_medium":   {},
	"utm_campaign": {},
	"utm_term":     {},
	"utm_content":  {},
	"utm_id":       {},
	"gclid":        {},
	"dclid":        {},
	"fbclid":       {},
	"msclkid":      {},
	"igshid":       {},
	"rcm":          {},
}

// FirstURL returns the first URL substring in a free-text message,
// stripped of trailing punctuation. The second return is false when the
// message contains no URL.
func FirstURL(text string) (string, bool) {
	match := urlPattern.FindString(text)
	if match == "" {
		return "", false
	}
	return strings.TrimRight(match, ".,;:!?)\"'"), true
}

// TweetID extracts the numeric status ID from a twitter.com / x.com URL path.
func TweetID(raw string) (string, error) {
	m := tweetIDPattern.FindStringSubmatch(raw)
	if m == nil {
		return "", errors.New("no tweet id in url")
	}
	return m[1], nil
}

// YouTubeVideoID extracts the video ID from watch, shorts, embed and youtu.be URLs.
func YouTubeVideoID(raw string) (string, error) {
	parsed, err := url.Parse(raw)
	if err != nil {
		return "", err
	}
	host := strings.ToLower(strings.TrimPrefix(parsed.Hostname(), "www."))
	switch {
	case host == "youtu.be":
		id := strings.Trim(parsed.Path, "/")
		if id == "" {
			return "", errors.New("no video id in url")
		}
		return id, nil
	case strings.HasSuffix(host, "youtube.com"):
		if id := parsed.Query().Get("v"); id != "" {
			return id, nil
		}
		for _, prefix := range []string{"/shorts/", "/embed/", "/live/"} {
			if strings.HasPrefix(parsed.Path, prefix) {
				if id := strings.Trim(strings.TrimPrefix(parsed.Path, prefix), "/"); id != "" {
					return id, nil
				}
			}
		}
	}
	return "", errors.New("no video id in url")
}

// HasPDFPath reports whether the URL path ends in .pdf.
func HasPDFPath(raw string) bool {
	parsed, err := url.Parse(raw)
	if err != nil {
		return strings.HasSuffix(strings.ToLower(raw), ".pdf")
	}
	return strings.HasSuffix(strings.ToLower(parsed.Path), ".pdf")
}

// CanonicalURL normalises a URL for fingerprinting: lowercases scheme and
// host, removes default ports, strips fragments and tracking query
// parameters, cleans the path and sorts remaining query parameters.
func CanonicalURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", errors.New("empty url")
	}
	parsed, err := url.Parse(raw)
	if err != nil {
		return "", err
	}
	if parsed.Scheme == "" {
		parsed, err = url.Parse("https://" + strings.TrimPrefix(raw, "//"))
		if err != nil {
			return "", err
		}
	}
	parsed.Scheme = strings.ToLower(parsed.Scheme)

	host := strings.ToLower(parsed.Host)
	if host == "" {
		return "", errors.New("url missing host")
	}
	// A port is default only for its own scheme; https://host:80 is a real
	// non-default port and must survive canonicalisation.
	switch parsed.Scheme {
	case "http":
		host = strings.TrimSuffix(host, ":80")
	case "https":
		host = strings.TrimSuffix(host, ":443")
	}
	parsed.Host = host

	cleaned := path.Clean(parsed.Path)
	if cleaned == "." || cleaned == "" {
		cleaned = "/"
	}
	parsed.Path = cleaned
	parsed.Fragment = ""

	query := parsed.Query()
	for key := range query {
		if _, drop := trackingQueryParams[strings.ToLower(key)]; drop {
			query.Del(key)
		}
	}
	if len(query) == 0 {
		parsed.RawQuery = ""
	} else {
		keys := make([]string, 0, len(query))
		for key := range query {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		var b strings.Builder
		for _, key := range keys {
			values := append([]string(nil), query[key]...)
			sort.Strings(values)
			for _, value := range values {
				if b.Len() > 0 {
					b.WriteByte('&')
				}
				b.WriteString(url.QueryEscape(key))
				b.WriteByte('=')
				b.WriteString(url.QueryEscape(value))
			}
		}
		parsed.RawQuery = b.String()
	}

	return parsed.String(), nil
}

// URLFingerprint returns a SHA-256 hex digest of the canonical URL,
// used as the summary cache key.
func URLFingerprint(raw string) (string, error) {
	canonical, err := CanonicalURL(raw)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256([]byte(canonical))
	return hex.EncodeToString(sum[:]), nil
}

package classify

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/url"
	"strings"

	"github.com/bhardwajRahul/telegram-link-summarizer-agent/internal/helpers"
	"github.com/bhardwajRahul/telegram-link-summarizer-agent/models"
)

// Route is the classifier's verdict, consumed by the orchestrator.
type Route string

const (
	RouteWebpage     Route = "webpage"
	RoutePDF         Route = "pdf"
	RouteTwitter     Route = "twitter"
	RouteLinkedIn    Route = "linkedin"
	RouteYouTube     Route = "youtube"
	RouteUnsupported Route = "unsupported"
)

// ErrNoURLFound is returned when the message contains no URL substring.
var ErrNoURLFound = errors.New("no url found in message")

// ErrUnsupported marks a URL whose content class cannot be summarized.
var ErrUnsupported = errors.New("unsupported url type")

// Router is the model-based disambiguation call, satisfied by
// provider.Provider. It is consulted only for URLs whose shape does not
// signal a content class (link shorteners and share redirects).
type Router interface {
	RouteURL(ctx context.Context, message, url string) (string, error)
}

// Link shorteners and share redirectors whose final content class cannot be
// read off the URL itself.
var ambiguousHosts = map[string]struct{}{
	"t.co":        {},
	"lnkd.in":     {},
	"bit.ly":      {},
	"buff.ly":     {},
	"tinyurl.com": {},
	"goo.gl":      {},
	"ow.ly":       {},
	"rebrand.ly":  {},
}

// Classifier extracts the first URL from a message and decides which
// extractor should handle it.
type Classifier struct {
	router Router // nil disables model-based disambiguation
	logger *log.Logger
}

func New(router Router, logger *log.Logger) *Classifier {
	if logger == nil {
		logger = log.New(log.Writer(), "[ROUTER] ", log.LstdFlags)
	}
	return &Classifier{router: router, logger: logger}
}

// Classify returns the first URL in the message and its route decision.
// The rule-based path is a pure function of the URL string; the model is
// consulted only for shortened links, and only when a router is configured.
func (c *Classifier) Classify(ctx context.Context, message string) (string, Route, error) {
	link, found := helpers.FirstURL(message)
	if !found {
		return "", RouteUnsupported, ErrNoURLFound
	}

	route, decided := ClassifyByRules(link)
	if decided {
		return link, route, nil
	}

	if c.router == nil {
		return link, RouteWebpage, nil
	}

	label, err := c.router.RouteURL(ctx, message, link)
	if err != nil {
		return link, RouteUnsupported, fmt.Errorf("classify %s: %w", link, err)
	}
	c.logger.Printf("model router resolved %s -> %s", link, label)
	return link, routeFromLabel(label), nil
}

// ClassifyByRules maps a URL to a route by suffix and host alone. The second
// return is false when the URL's shape carries no signal (a shortener) and
// model-based disambiguation should be attempted.
func ClassifyByRules(raw string) (Route, bool) {
	if helpers.HasPDFPath(raw) {
		return RoutePDF, true
	}

	parsed, err := url.Parse(raw)
	if err != nil {
		return RouteWebpage, true
	}
	host := strings.ToLower(strings.TrimPrefix(parsed.Hostname(), "www."))

	if _, ambiguous := ambiguousHosts[host]; ambiguous {
		return RouteWebpage, false
	}

	switch {
	case host == "twitter.com" || host == "x.com" || host == "mobile.twitter.com":
		return RouteTwitter, true
	case host == "linkedin.com" || strings.HasSuffix(host, ".linkedin.com"):
		return RouteLinkedIn, true
	case host == "youtu.be" || host == "youtube.com" || strings.HasSuffix(host, ".youtube.com"):
		return RouteYouTube, true
	}
	return RouteWebpage, true
}

func routeFromLabel(label string) Route {
	switch label {
	case models.LabelPDF:
		return RoutePDF
	case models.LabelTwitter:
		return RouteTwitter
	case models.LabelLinkedIn:
		return RouteLinkedIn
	case models.LabelYoutube:
		return RouteYouTube
	case models.LabelUnsupported:
		return RouteUnsupported
	default:
		return RouteWebpage
	}
}

package extract

import (
	"context"
	"fmt"
	"log"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/chromedp/chromedp"
	readability "github.com/go-shiori/go-readability"

	"github.com/bhardwajRahul/telegram-link-summarizer-agent/config"
)

// articleLocator prefers the tweet article on social pages, then any
// article element, then the main element.
const articleLocator = `(() => {
	const el = document.querySelector('article[data-testid="tweet"]')
		|| document.querySelector('article')
		|| document.querySelector('main');
	return el ? el.innerText : '';
})()`

const bodyLocator = `document.body ? document.body.innerText : ''`

// Browser renders a page in headless Chrome and pulls both readable text
// and a full-page screenshot. The two halves fail independently: a page
// whose text cannot be located still yields a usable screenshot.
type Browser struct {
	remoteURL string
	timeout   time.Duration
	maxChars  int
	logger    *log.Logger
}

func NewBrowser(cfg config.BrowserConfig, logger *log.Logger) *Browser {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	maxChars := cfg.MaxChars
	if maxChars <= 0 {
		maxChars = 40_000
	}
	if logger == nil {
		logger = log.New(log.Writer(), "[BROWSER] ", log.LstdFlags)
	}
	return &Browser{
		remoteURL: cfg.RemoteURL,
		timeout:   timeout,
		maxChars:  maxChars,
		logger:    logger,
	}
}

func (b *Browser) Extract(ctx context.Context, rawURL string) (Result, error) {
	if strings.TrimSpace(rawURL) == "" {
		return Result{}, fmt.Errorf("browser extract: empty url")
	}

	ctx, cancel := context.WithTimeout(ctx, b.timeout)
	defer cancel()

	bctx, cancelBrowser := b.newBrowserContext(ctx)
	defer cancelBrowser()

	var pageHTML, articleText string
	var screenshot []byte
	err := chromedp.Run(bctx,
		chromedp.Navigate(rawURL),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.OuterHTML("html", &pageHTML, chromedp.ByQuery),
		chromedp.Evaluate(articleLocator, &articleText),
	)
	if err != nil {
		return Result{}, fmt.Errorf("browser extract %s: %w", rawURL, err)
	}

	// Screenshot is best effort; a text-only result is still a result.
	if shotErr := chromedp.Run(bctx, chromedp.FullScreenshot(&screenshot, 80)); shotErr != nil {
		b.logger.Printf("screenshot failed for %s: %v", rawURL, shotErr)
		screenshot = nil
	}

	text := strings.TrimSpace(articleText)
	if text == "" {
		text = b.readableText(pageHTML, rawURL)
	}
	if text == "" {
		var bodyText string
		if evalErr := chromedp.Run(bctx, chromedp.Evaluate(bodyLocator, &bodyText)); evalErr == nil {
			text = strings.TrimSpace(bodyText)
		}
	}
	text = truncateToRuneBoundary(text, b.maxChars)

	if text == "" && screenshot == nil {
		return Result{}, fmt.Errorf("browser extract %s: page yielded neither text nor screenshot", rawURL)
	}
	return Result{Text: text, Screenshot: screenshot}, nil
}

func (b *Browser) newBrowserContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if b.remoteURL != "" {
		actx, cancelAlloc := chromedp.NewRemoteAllocator(ctx, b.remoteURL)
		bctx, cancelBrowser := chromedp.NewContext(actx)
		return bctx, func() {
			cancelBrowser()
			cancelAlloc()
		}
	}

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.UserAgent("Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0 Safari/537.36"),
	)
	actx, cancelAlloc := chromedp.NewExecAllocator(ctx, opts...)
	bctx, cancelBrowser := chromedp.NewContext(actx)
	return bctx, func() {
		cancelBrowser()
		cancelAlloc()
	}
}

// truncateToRuneBoundary caps s at max bytes without splitting a
// multi-byte rune at the cut.
func truncateToRuneBoundary(s string, max int) string {
	if max <= 0 || len(s) <= max {
		return s
	}
	cut := max
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}

func (b *Browser) readableText(pageHTML, rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		parsed = &url.URL{}
	}
	article, err := readability.FromReader(strings.NewReader(pageHTML), parsed)
	if err != nil {
		b.logger.Printf("readability parse failed for %s: %v", rawURL, err)
		return ""
	}
	return strings.TrimSpace(article.TextContent)
}

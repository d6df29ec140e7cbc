// Package pipeline runs one message through classification, extraction,
// fallback and summarization as a small state machine. Each node performs
// at most one blocking remote call; edges are pure decisions over the
// accumulated state.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/bhardwajRahul/telegram-link-summarizer-agent/internal/cache"
	"github.com/bhardwajRahul/telegram-link-summarizer-agent/internal/classify"
	"github.com/bhardwajRahul/telegram-link-summarizer-agent/internal/helpers"
	"github.com/bhardwajRahul/telegram-link-summarizer-agent/internal/summarize"
	"github.com/bhardwajRahul/telegram-link-summarizer-agent/internal/telemetry"
	"github.com/bhardwajRahul/telegram-link-summarizer-agent/models"
	"github.com/bhardwajRahul/telegram-link-summarizer-agent/tools/extract"
)

// ErrNoURLFound terminates a run before any extractor is invoked.
var ErrNoURLFound = classify.ErrNoURLFound

// Deps carries the orchestrator's collaborators, constructed once at
// process start and injected explicitly.
type Deps struct {
	Classifier *classify.Classifier
	Summarizer *summarize.Summarizer

	Web      extract.Extractor
	PDF      extract.Extractor
	Twitter  extract.Extractor
	LinkedIn extract.Extractor
	YouTube  extract.Extractor
	Browser  extract.Extractor

	Cache   cache.SummaryCache
	Metrics *telemetry.Metrics

	// MinContentLength is the text length below which a webpage or
	// LinkedIn extraction is retried through the browser scrape.
	MinContentLength int

	Logger *log.Logger
}

type Orchestrator struct {
	deps Deps
}

func New(deps Deps) (*Orchestrator, error) {
	if deps.Classifier == nil {
		return nil, errors.New("pipeline: classifier is required")
	}
	if deps.Summarizer == nil {
		return nil, errors.New("pipeline: summarizer is required")
	}
	if deps.Web == nil {
		return nil, errors.New("pipeline: web extractor is required")
	}
	if deps.Cache == nil {
		deps.Cache = cache.Noop{}
	}
	if deps.MinContentLength <= 0 {
		deps.MinContentLength = 200
	}
	if deps.Logger == nil {
		deps.Logger = log.New(log.Writer(), "[PIPELINE] ", log.LstdFlags)
	}
	return &Orchestrator{deps: deps}, nil
}

// Run processes one message end to end. The response carries whichever of
// summary, screenshot-plus-text, or screenshot-only the run produced; a
// non-nil error may accompany a partial response so the caller can still
// deliver something.
func (o *Orchestrator) Run(ctx context.Context, message string) (Response, error) {
	start := time.Now()
	s := &State{
		RunID:           uuid.NewString(),
		OriginalMessage: message,
		ContentType:     models.ContentTypeWebpage,
	}

	step := StepInit
	for step != StepDone && step != StepError {
		step = o.runStep(ctx, step, s)
	}

	resp, err := renderTerminal(step, s)
	if resp.CacheHit {
		o.deps.Metrics.CacheHit()
	}
	o.deps.Metrics.ObserveRun(string(s.Route), string(step), time.Since(start))
	o.deps.Logger.Printf("run %s finished in %s: route=%s step=%s err=%q",
		s.RunID, time.Since(start).Round(time.Millisecond), s.Route, step, s.Err)
	return resp, err
}

func (o *Orchestrator) runStep(ctx context.Context, step Step, s *State) Step {
	switch step {
	case StepInit:
		return o.initNode(ctx, s)
	case StepRoute:
		return o.routeNode(ctx, s)
	case StepWebExtract:
		return o.extractNode(ctx, StepWebExtract, o.deps.Web, s)
	case StepPDFExtract:
		return o.extractNode(ctx, StepPDFExtract, o.deps.PDF, s)
	case StepTwitterExtract:
		return o.extractNode(ctx, StepTwitterExtract, o.deps.Twitter, s)
	case StepLinkedInExtract:
		return o.extractNode(ctx, StepLinkedInExtract, o.deps.LinkedIn, s)
	case StepYoutubeExtract:
		return o.extractNode(ctx, StepYoutubeExtract, o.deps.YouTube, s)
	case StepFallbackScrape:
		return o.fallbackScrapeNode(ctx, s)
	case StepSummarize:
		return o.summarizeNode(ctx, s)
	default:
		s.Err = fmt.Sprintf("unknown step %q", step)
		return StepError
	}
}

func (o *Orchestrator) initNode(ctx context.Context, s *State) Step {
	url, ok := helpers.FirstURL(s.OriginalMessage)
	if !ok {
		s.Err = ErrNoURLFound.Error()
		return StepError
	}
	s.URL = url

	if cached, hit := o.cacheGet(ctx, s.URL); hit {
		o.deps.Logger.Printf("run %s: cache hit for %s", s.RunID, s.URL)
		s.Summary = cached
		s.fromCache = true
		return StepDone
	}
	return StepRoute
}

func (o *Orchestrator) routeNode(ctx context.Context, s *State) Step {
	_, route, err := o.deps.Classifier.Classify(ctx, s.OriginalMessage)
	if err != nil {
		s.Err = fmt.Sprintf("routing failed: %v", err)
		return StepError
	}
	if route == classify.RouteUnsupported {
		s.Err = fmt.Sprintf("%v: %s", classify.ErrUnsupported, s.URL)
		return StepError
	}
	s.Route = route
	if route == classify.RoutePDF {
		s.ContentType = models.ContentTypePDF
	}
	return extractStepFor(route)
}

func (o *Orchestrator) extractNode(ctx context.Context, step Step, ex extract.Extractor, s *State) Step {
	if ex == nil {
		s.Err = fmt.Sprintf("no extractor configured for %s", step)
		return StepError
	}

	// A fallback re-entry starts clean so the new attempt is judged on
	// its own merits.
	s.NeedsFallback = false
	s.Err = ""

	res, err := ex.Extract(ctx, s.URL)
	s.Content = res.Text
	if len(res.Screenshot) > 0 {
		s.Screenshot = res.Screenshot
	}
	s.NeedsFallback = res.NeedsFallback
	if err != nil {
		o.deps.Logger.Printf("run %s: %s failed: %v", s.RunID, step, err)
		o.deps.Metrics.ExtractionFailure(string(s.Route))
		s.Err = err.Error()
	}

	next := nextAfterExtract(step, s, o.deps.MinContentLength)
	if next == StepError && s.Err == "" {
		s.Err = fmt.Sprintf("extraction produced nothing for %s", s.URL)
	}
	if next == StepWebExtract {
		o.deps.Logger.Printf("run %s: %s requested generic web retry", s.RunID, step)
	}
	return next
}

func (o *Orchestrator) fallbackScrapeNode(ctx context.Context, s *State) Step {
	if o.deps.Browser == nil {
		if s.Err == "" {
			s.Err = fmt.Sprintf("content too short for %s and no browser fallback configured", s.URL)
		}
		return StepError
	}

	// Under-length primary text moves aside so a later failure can still
	// deliver it.
	if text := strings.TrimSpace(s.Content); text != "" {
		s.FallbackContent = text
	}
	s.Content = ""

	res, err := o.deps.Browser.Extract(ctx, s.URL)
	if err != nil {
		o.deps.Logger.Printf("run %s: browser scrape failed: %v", s.RunID, err)
		o.deps.Metrics.ExtractionFailure(string(s.Route))
		if s.Err == "" {
			s.Err = err.Error()
		}
		return nextAfterFallbackScrape(s)
	}

	s.Err = ""
	s.Content = res.Text
	if len(res.Screenshot) > 0 {
		s.Screenshot = res.Screenshot
	}
	return nextAfterFallbackScrape(s)
}

func (o *Orchestrator) summarizeNode(ctx context.Context, s *State) Step {
	summary, err := o.deps.Summarizer.Summarize(ctx, s.Content, s.ContentType, s.OriginalMessage)
	if err != nil {
		// Screenshot and fallback text survive this failure.
		s.Err = err.Error()
		return nextAfterSummarize(s)
	}

	s.Summary = summarize.Render(summary)
	s.Err = ""
	o.cacheSet(ctx, s.URL, s.Summary)
	return nextAfterSummarize(s)
}

// renderTerminal picks the payload by priority: summary, then
// screenshot-plus-text, then screenshot-only, then the error alone.
func renderTerminal(step Step, s *State) (Response, error) {
	if s.Summary != "" {
		return Response{Text: s.Summary, CacheHit: s.fromCache}, nil
	}
	if len(s.Screenshot) > 0 {
		var err error
		if step == StepError && s.Err != "" {
			err = errors.New(s.Err)
		}
		return Response{Text: s.FallbackContent, Screenshot: s.Screenshot}, err
	}
	if s.Err == "" {
		s.Err = "pipeline finished with no output"
	}
	return Response{Text: s.FallbackContent}, errors.New(s.Err)
}

func (o *Orchestrator) cacheGet(ctx context.Context, url string) (string, bool) {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return o.deps.Cache.Get(ctx, url)
}

func (o *Orchestrator) cacheSet(ctx context.Context, url, summary string) {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	o.deps.Cache.Set(ctx, url, summary)
}

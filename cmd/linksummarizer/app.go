package main

import (
	"context"
	"log"

	"github.com/bhardwajRahul/telegram-link-summarizer-agent/config"
	"github.com/bhardwajRahul/telegram-link-summarizer-agent/internal/cache"
	"github.com/bhardwajRahul/telegram-link-summarizer-agent/internal/classify"
	"github.com/bhardwajRahul/telegram-link-summarizer-agent/internal/pipeline"
	"github.com/bhardwajRahul/telegram-link-summarizer-agent/internal/summarize"
	"github.com/bhardwajRahul/telegram-link-summarizer-agent/internal/telemetry"
	"github.com/bhardwajRahul/telegram-link-summarizer-agent/provider"
	"github.com/bhardwajRahul/telegram-link-summarizer-agent/tools/extract"
	"github.com/bhardwajRahul/telegram-link-summarizer-agent/tools/extract/tavily"
)

// buildOrchestrator wires every collaborator once at process start and
// injects them explicitly.
func buildOrchestrator(ctx context.Context, cfg *config.Config, metrics *telemetry.Metrics) (*pipeline.Orchestrator, error) {
	llm, err := provider.NewProvider(provider.OpenAI, cfg.LLM)
	if err != nil {
		return nil, err
	}

	summaryCache, err := cache.New(ctx, cfg.Cache, nil)
	if err != nil {
		return nil, err
	}

	tavilyClient := tavily.NewClient(cfg.Tavily)

	return pipeline.New(pipeline.Deps{
		Classifier:       classify.New(llm, nil),
		Summarizer:       summarize.New(llm, nil),
		Web:              extract.NewWebpage(tavilyClient, nil),
		PDF:              extract.NewPDF(cfg.Pipeline.DownloadTimeout, nil),
		Twitter:          extract.NewTwitter(cfg.Twitter, nil),
		LinkedIn:         extract.NewLinkedIn(tavilyClient, nil),
		YouTube:          extract.NewYouTube(cfg.YouTube, nil),
		Browser:          extract.NewBrowser(cfg.Browser, nil),
		Cache:            summaryCache,
		Metrics:          metrics,
		MinContentLength: cfg.Pipeline.MinContentLength,
		Logger:           log.New(log.Writer(), "[PIPELINE] ", log.LstdFlags),
	})
}

// Package cache stores rendered summaries keyed by canonical URL
// fingerprint, so repeated links skip the extraction and model calls.
package cache

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/bhardwajRahul/telegram-link-summarizer-agent/config"
	"github.com/bhardwajRahul/telegram-link-summarizer-agent/internal/helpers"
)

const summaryKeyPrefix = "summary:"

// SummaryCache is the read-through cache consulted by the pipeline. A nil
// implementation is replaced by the no-op cache at construction sites.
type SummaryCache interface {
	Get(ctx context.Context, url string) (string, bool)
	Set(ctx context.Context, url, summary string)
}

// Noop never hits and never stores.
type Noop struct{}

func (Noop) Get(ctx context.Context, url string) (string, bool) { return "", false }
func (Noop) Set(ctx context.Context, url, summary string)       {}

type redisCache struct {
	client *redis.Client
	ttl    time.Duration
	logger *log.Logger
}

// New connects to Redis when an address is configured; an empty address
// yields the no-op cache. Cache failures are logged and treated as misses,
// never surfaced to the run.
func New(ctx context.Context, cfg config.CacheConfig, logger *log.Logger) (SummaryCache, error) {
	if cfg.Addr == "" {
		return Noop{}, nil
	}
	if logger == nil {
		logger = log.New(log.Writer(), "[CACHE] ", log.LstdFlags)
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &redisCache{client: client, ttl: ttl, logger: logger}, nil
}

// cacheKey fingerprints the canonical URL; a URL that cannot be
// canonicalised falls back to its raw form, still prefixed.
func cacheKey(url string) string {
	fp, err := helpers.URLFingerprint(url)
	if err != nil {
		return summaryKeyPrefix + url
	}
	return summaryKeyPrefix + fp
}

func (c *redisCache) Get(ctx context.Context, url string) (string, bool) {
	key := cacheKey(url)
	val, err := c.client.Get(ctx, key).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.Printf("cache get failed for %s: %v", url, err)
		}
		return "", false
	}
	return val, true
}

func (c *redisCache) Set(ctx context.Context, url, summary string) {
	if err := c.client.Set(ctx, cacheKey(url), summary, c.ttl).Err(); err != nil {
		c.logger.Printf("cache set failed for %s: %v", url, err)
	}
}

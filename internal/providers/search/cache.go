package search

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/dgraph-io/ristretto"
	"github.com/sandevgo/recallbot/internal/core"
	"github.com/sandevgo/recallbot/pkg/log"
)

// Cached wraps a SearchClient with a short-lived result cache. Search
// results go stale quickly, so entries expire after ttl rather than
// being kept until evicted.
type Cached struct {
	inner core.SearchClient
	cache *ristretto.Cache
	ttl   time.Duration
}

func NewCached(inner core.SearchClient, ttl time.Duration) (*Cached, error) {
	cache, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: 10_000,
		MaxCost:     1 << 24, // 16 MiB of cached snippets
		BufferItems: 64,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create search cache: %w", err)
	}

	return &Cached{
		inner: inner,
		cache: cache,
		ttl:   ttl,
	}, nil
}

func (c *Cached) Search(ctx context.Context, query string, n int) (core.SearchResult, error) {
	key := cacheKey(query, n)

	if v, ok := c.cache.Get(key); ok {
		if result, ok := v.(core.SearchResult); ok {
			log.FromCtx(ctx).Debug().Str("query", query).Msg("search cache hit")
			return result, nil
		}
	}

	result, err := c.inner.Search(ctx, query, n)
	if err != nil {
		return result, err
	}

	c.cache.SetWithTTL(key, result, cost(result), c.ttl)
	return result, nil
}

// Wait flushes pending cache writes. Intended for tests.
func (c *Cached) Wait() {
	c.cache.Wait()
}

func cacheKey(query string, n int) string {
	return fmt.Sprintf("%s|%d", strings.ToLower(strings.TrimSpace(query)), n)
}

func cost(r core.SearchResult) int64 {
	total := int64(len(r.AnswerBox))
	for _, h := range r.Hits {
		total += int64(len(h.Title) + len(h.Snippet) + len(h.URL))
	}
	if total == 0 {
		total = 1
	}
	return total
}

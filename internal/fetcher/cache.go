package fetcher

import (
	"context"
	"sync"
	"time"

	"github.com/thebitsamuraii23/MusicJacker-bot-sub000/internal/domain"
)

// CachedFetcher decorates a Fetcher with a short-TTL cache on the search
// side, keyed by query text. Downloads always pass through: artifacts are
// tied to a task's working directory and cannot be reused. The cache has
// its own lock and is safe for concurrent use from many tasks.
type CachedFetcher struct {
	inner Fetcher
	ttl   time.Duration

	mu      sync.Mutex
	entries map[string]cacheEntry

	// now is swappable for tests
	now func() time.Time
}

type cacheEntry struct {
	results []domain.SearchEntry
	expires time.Time
}

func NewCachedFetcher(inner Fetcher, ttl time.Duration) *CachedFetcher {
	return &CachedFetcher{
		inner:   inner,
		ttl:     ttl,
		entries: make(map[string]cacheEntry),
		now:     time.Now,
	}
}

func (c *CachedFetcher) Download(ctx context.Context, url, outDir string, onProgress func(Progress)) (*domain.DownloadResult, error) {
	return c.inner.Download(ctx, url, outDir, onProgress)
}

func (c *CachedFetcher) Search(ctx context.Context, query string, limit int) ([]domain.SearchEntry, error) {
	c.mu.Lock()
	if entry, ok := c.entries[query]; ok && c.now().Before(entry.expires) {
		results := entry.results
		c.mu.Unlock()
		return results, nil
	}
	c.mu.Unlock()

	results, err := c.inner.Search(ctx, query, limit)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.entries[query] = cacheEntry{results: results, expires: c.now().Add(c.ttl)}
	// Opportunistic sweep keeps the map from growing unbounded
	for q, e := range c.entries {
		if c.now().After(e.expires) {
			delete(c.entries, q)
		}
	}
	c.mu.Unlock()

	return results, nil
}

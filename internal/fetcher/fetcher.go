package fetcher

import (
	"context"
	"time"

	"github.com/thebitsamuraii23/MusicJacker-bot-sub000/internal/domain"
)

// Progress is one extractor progress snapshot. Callbacks may fire from a
// different goroutine than the one driving the task; callers are expected
// to marshal updates through a channel before touching shared state.
type Progress struct {
	Percent float64
	Rate    float64 // bytes per second
	ETA     time.Duration
}

// Fetcher is the fetch-transcode adapter boundary: fetch a media URL,
// transcode it to audio inside outDir, and report what was produced.
// Stateless per invocation; errors are classifiable by the caller with
// errors.Is against domain.ErrUnsupportedLink.
type Fetcher interface {
	Download(ctx context.Context, url, outDir string, onProgress func(Progress)) (*domain.DownloadResult, error)
	Search(ctx context.Context, query string, limit int) ([]domain.SearchEntry, error)
}

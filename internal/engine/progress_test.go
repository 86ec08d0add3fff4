package engine

import (
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/thebitsamuraii23/MusicJacker-bot-sub000/internal/domain"
	"github.com/thebitsamuraii23/MusicJacker-bot-sub000/internal/fetcher"
	"github.com/thebitsamuraii23/MusicJacker-bot-sub000/internal/texts"
	"github.com/thebitsamuraii23/MusicJacker-bot-sub000/internal/transport"
)

func TestFormatETA(t *testing.T) {
	tests := []struct {
		eta      time.Duration
		expected string
	}{
		{0, "--:--"},
		{-time.Second, "--:--"},
		{30 * time.Second, "00:30"},
		{90 * time.Second, "01:30"},
		{time.Hour, "01:00:00"},
		{time.Hour + 61*time.Second, "01:01:01"},
	}

	for _, test := range tests {
		if got := formatETA(test.eta); got != test.expected {
			t.Errorf("formatETA(%v) = %q, want %q", test.eta, got, test.expected)
		}
	}
}

func TestFormatProgress_NoPercentFallsBack(t *testing.T) {
	cat := texts.Get("en")

	got := formatProgress(cat, fetcher.Progress{})
	if got != cat.Downloading {
		t.Errorf("formatProgress with no data = %q, want plain downloading text", got)
	}

	got = formatProgress(cat, fetcher.Progress{Percent: 42.5, Rate: 1 << 20, ETA: 30 * time.Second})
	if !strings.Contains(got, "42.5") || !strings.Contains(got, "00:30") {
		t.Errorf("formatProgress = %q, want percent and ETA in it", got)
	}
}

// countingTransport counts status edits.
type countingTransport struct {
	mu    sync.Mutex
	edits int
}

func (c *countingTransport) SendStatus(chatID int64, text, cancelLabel, cancelData string) (domain.StatusRef, error) {
	return domain.StatusRef{ChatID: chatID, MessageID: 1}, nil
}

func (c *countingTransport) EditStatus(ref domain.StatusRef, text, cancelLabel, cancelData string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.edits++
	return nil
}

func (c *countingTransport) SendAudio(chatID int64, a transport.Audio) error { return nil }
func (c *countingTransport) SendNotice(chatID int64, text string) error      { return nil }

func (c *countingTransport) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.edits
}

func TestRelayCoalescesBursts(t *testing.T) {
	cfg := testConfig()
	cfg.ProgressInterval = 20 * time.Millisecond

	tr := &countingTransport{}
	orch, _ := newTestOrchestrator(t, cfg, newFakeFetcher(), tr)

	task := domain.NewTask(1, 1, "https://example.com/x", "en")
	task.SetStatusRef(domain.StatusRef{ChatID: 1, MessageID: 1})

	relay := orch.startRelay(task)

	// A burst far denser than the edit interval
	for i := 0; i < 500; i++ {
		relay.Post(fetcher.Progress{Percent: float64(i) / 5})
		time.Sleep(200 * time.Microsecond)
	}
	relay.Stop()

	// 500 posts at one edit per 20ms: a handful of edits at most, never
	// anywhere near one per post.
	if got := tr.count(); got == 0 || got > 50 {
		t.Errorf("relay applied %d edits for 500 posts, want coalesced into a few", got)
	}
}

func TestRelayStopIsSynchronous(t *testing.T) {
	tr := &countingTransport{}
	orch, _ := newTestOrchestrator(t, testConfig(), newFakeFetcher(), tr)

	task := domain.NewTask(1, 1, "https://example.com/x", "en")
	task.SetStatusRef(domain.StatusRef{ChatID: 1, MessageID: 1})

	relay := orch.startRelay(task)
	relay.Post(fetcher.Progress{Percent: 10})
	relay.Stop()

	before := tr.count()
	relay.Post(fetcher.Progress{Percent: 99}) // must be ignored
	time.Sleep(30 * time.Millisecond)

	if got := tr.count(); got != before {
		t.Errorf("edits after Stop: %d -> %d, want no change", before, got)
	}
}

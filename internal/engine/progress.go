package engine

import (
	"fmt"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/thebitsamuraii23/MusicJacker-bot-sub000/internal/domain"
	"github.com/thebitsamuraii23/MusicJacker-bot-sub000/internal/fetcher"
	"github.com/thebitsamuraii23/MusicJacker-bot-sub000/internal/texts"
)

// progressRelay bridges extractor progress callbacks, which fire on the
// extractor's goroutine, into status-message edits owned by the task.
// Updates land in a one-slot mailbox where newer snapshots displace older
// ones, and a drain loop applies at most one edit per interval. Stopping
// the relay is synchronous: once Stop returns, no further edits happen, so
// delivery notices can never interleave with progress edits.
type progressRelay struct {
	updates chan fetcher.Progress
	stop    chan struct{}
	done    chan struct{}
}

func (o *Orchestrator) startRelay(task *domain.Task) *progressRelay {
	r := &progressRelay{
		updates: make(chan fetcher.Progress, 1),
		stop:    make(chan struct{}),
		done:    make(chan struct{}),
	}

	go r.loop(o, task)
	return r
}

// Post hands a snapshot to the relay without ever blocking the extractor.
// Under a burst, older snapshots are dropped in favor of the newest.
func (r *progressRelay) Post(p fetcher.Progress) {
	for {
		select {
		case <-r.stop:
			return
		case r.updates <- p:
			return
		default:
			select {
			case <-r.updates:
			default:
			}
		}
	}
}

// Stop shuts the relay down and waits for the drain loop to exit.
func (r *progressRelay) Stop() {
	select {
	case <-r.stop:
		// already stopped
	default:
		close(r.stop)
	}
	<-r.done
}

func (r *progressRelay) loop(o *Orchestrator, task *domain.Task) {
	defer close(r.done)

	ticker := time.NewTicker(o.cfg.ProgressInterval)
	defer ticker.Stop()

	for {
		select {
		case <-r.stop:
			return
		case <-ticker.C:
			select {
			case p := <-r.updates:
				o.editStatus(task, formatProgress(texts.Get(task.Lang), p), true)
			default:
				// nothing new since last tick
			}
		}
	}
}

func formatProgress(t texts.Catalog, p fetcher.Progress) string {
	if p.Percent <= 0 {
		return t.Downloading
	}

	rate := humanize.IBytes(uint64(p.Rate))
	return fmt.Sprintf(t.Progress, p.Percent, rate, formatETA(p.ETA))
}

func formatETA(eta time.Duration) string {
	if eta <= 0 {
		return "--:--"
	}

	total := int(eta.Seconds())
	if h := total / 3600; h > 0 {
		return fmt.Sprintf("%02d:%02d:%02d", h, (total%3600)/60, total%60)
	}
	return fmt.Sprintf("%02d:%02d", total/60, total%60)
}

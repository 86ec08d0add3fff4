package engine

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/dustin/go-humanize"
	"golang.org/x/sync/semaphore"

	"github.com/thebitsamuraii23/MusicJacker-bot-sub000/internal/domain"
	"github.com/thebitsamuraii23/MusicJacker-bot-sub000/internal/fetcher"
	"github.com/thebitsamuraii23/MusicJacker-bot-sub000/internal/infra/config"
	"github.com/thebitsamuraii23/MusicJacker-bot-sub000/internal/infra/logger"
	"github.com/thebitsamuraii23/MusicJacker-bot-sub000/internal/registry"
	"github.com/thebitsamuraii23/MusicJacker-bot-sub000/internal/texts"
	"github.com/thebitsamuraii23/MusicJacker-bot-sub000/internal/transport"
	"github.com/thebitsamuraii23/MusicJacker-bot-sub000/internal/workdir"
)

// History receives terminal outcomes for persistence. Recording is
// best-effort: a failed write is logged and never affects the task.
type History interface {
	RecordOutcome(task *domain.Task, state domain.TaskState, detail string) error
}

// Orchestrator drives each download task from submission to terminal state:
// admit, allocate, fetch, relay progress, deliver, and release everything
// exactly once whichever way the task ends.
type Orchestrator struct {
	cfg   config.DownloadConfig
	log   *logger.Logger
	reg   *registry.Registry
	dirs  *workdir.Allocator
	fetch fetcher.Fetcher
	tr    transport.Transport
	hist  History

	// slots caps simultaneous fetch+transcode runs across all owners, on
	// top of the per-owner registry gate.
	slots *semaphore.Weighted

	wg sync.WaitGroup
}

func New(cfg config.DownloadConfig, log *logger.Logger, reg *registry.Registry, dirs *workdir.Allocator, fetch fetcher.Fetcher, tr transport.Transport, hist History) *Orchestrator {
	return &Orchestrator{
		cfg:   cfg,
		log:   log,
		reg:   reg,
		dirs:  dirs,
		fetch: fetch,
		tr:    tr,
		hist:  hist,
		slots: semaphore.NewWeighted(cfg.WorkerSlots),
	}
}

// Submit admits a new download for an owner and starts it. Admission and
// registration are one atomic step against the per-owner limit; a rejected
// submission creates no task and allocates nothing.
func (o *Orchestrator) Submit(ctx context.Context, owner domain.OwnerID, chatID int64, url, lang string) (*domain.Task, error) {
	task := domain.NewTask(owner, chatID, url, lang)

	// The cancel handle must be in place before the task is visible in the
	// registry, or a cancel arriving through the admin API could find it nil.
	taskCtx, cancel := context.WithCancel(ctx)
	task.SetCancelFunc(cancel)

	if err := o.reg.AdmitAndRegister(task, o.cfg.TasksPerUser); err != nil {
		cancel()
		return nil, err
	}

	o.wg.Add(1)
	go func() {
		defer o.wg.Done()
		var outcome domain.Outcome
		defer func() {
			if r := recover(); r != nil {
				o.log.Error("task %s: panic: %v", task.ID, r)
				outcome = domain.Failed(fmt.Errorf("internal error: %v", r))
			}
			o.finalize(task, outcome)
		}()
		outcome = o.execute(taskCtx, task)
	}()

	o.log.Info("task %s: submitted by %d (%s)", task.ID, owner, url)
	return task, nil
}

// CancelResult reports what a cancellation request found.
type CancelResult int

const (
	// Cancelling means the task was found running and the signal was sent;
	// the state flips at the task's next suspension point.
	Cancelling CancelResult = iota

	// AlreadyTerminal means the task is gone or already finished. Safe to
	// hit any number of times.
	AlreadyTerminal
)

// Cancel requests cooperative cancellation of a task by id.
func (o *Orchestrator) Cancel(owner domain.OwnerID, id domain.TaskID) CancelResult {
	task, ok := o.reg.Lookup(owner, id)
	if !ok || task.State().IsTerminal() {
		return AlreadyTerminal
	}

	// Acknowledge before the signal lands so the user sees the request
	// was taken even while the extractor is still winding down.
	o.editStatus(task, texts.Get(task.Lang).Cancelling, false)
	task.RequestCancel()

	o.log.Info("task %s: cancellation requested", task.ID)
	return Cancelling
}

// Wait blocks until every in-flight task has finalized. Used on shutdown
// after the parent context is cancelled.
func (o *Orchestrator) Wait() {
	o.wg.Wait()
}

// ActiveTasks exposes the registry snapshot for the admin API.
func (o *Orchestrator) ActiveTasks() []*domain.Task {
	return o.reg.ActiveTasks()
}

// execute runs the task body and reports the tagged outcome. All resource
// release is deferred to finalize; execute itself owns nothing.
func (o *Orchestrator) execute(ctx context.Context, task *domain.Task) domain.Outcome {
	t := texts.Get(task.Lang)

	ref, err := o.tr.SendStatus(task.ChatID, t.Queued, t.CancelButton, cancelData(task))
	if err != nil {
		o.log.Warn("task %s: could not publish status message: %v", task.ID, err)
	} else {
		task.SetStatusRef(ref)
	}

	// Short grace delay so the cancel button renders before heavy work.
	select {
	case <-time.After(o.cfg.StartDelay):
	case <-ctx.Done():
		return domain.Cancelled()
	}

	if err := o.slots.Acquire(ctx, 1); err != nil {
		return domain.Cancelled()
	}
	defer o.slots.Release(1)

	task.SetState(domain.StateRunning)

	dir, err := o.dirs.Create()
	if err != nil {
		return domain.Failed(fmt.Errorf("could not allocate working directory: %w", err))
	}
	task.SetWorkDir(dir)

	o.editStatus(task, t.Downloading, true)

	relay := o.startRelay(task)
	res, err := o.fetch.Download(ctx, task.URL, dir, relay.Post)
	relay.Stop()

	if err != nil {
		if ctx.Err() != nil || errors.Is(err, context.Canceled) {
			return domain.Cancelled()
		}
		return domain.Failed(err)
	}

	if len(res.Tracks) == 0 {
		return domain.Failed(domain.ErrNoArtifacts)
	}

	return o.deliver(ctx, task, res)
}

// deliver sends each produced artifact in stable order. One bad artifact
// never aborts the batch: too-large and failed sends get their own notice
// and the loop moves on. Cancellation is honored between artifacts.
func (o *Orchestrator) deliver(ctx context.Context, task *domain.Task, res *domain.DownloadResult) domain.Outcome {
	t := texts.Get(task.Lang)
	total := len(res.Tracks)
	delivered, skipped := 0, 0

	for i, track := range res.Tracks {
		if ctx.Err() != nil {
			return domain.Cancelled()
		}

		o.editStatus(task, fmt.Sprintf(t.Sending, i+1, total), true)

		info, err := os.Stat(track.Path)
		if err != nil {
			o.log.Error("task %s: artifact vanished before delivery: %v", task.ID, err)
			o.notice(task, fmt.Sprintf(t.DeliveryFailed, track.Title))
			continue
		}

		// Strictly greater than the ceiling triggers the skip; an artifact
		// exactly at the limit still goes out.
		if info.Size() > o.cfg.MaxArtifactBytes {
			o.log.Warn("task %s: %s is %d bytes, over the %d ceiling", task.ID, track.Title, info.Size(), o.cfg.MaxArtifactBytes)
			o.notice(task, fmt.Sprintf(t.TooLarge, track.Title, humanize.IBytes(uint64(o.cfg.MaxArtifactBytes))))
			skipped++
			continue
		}

		err = o.tr.SendAudio(task.ChatID, transport.Audio{
			Path:      track.Path,
			Caption:   track.Title,
			Title:     track.Title,
			Performer: res.Artist,
			Duration:  track.Duration,
		})
		if err != nil {
			if ctx.Err() != nil {
				return domain.Cancelled()
			}
			o.log.Error("task %s: delivery of %s failed: %v", task.ID, track.Title, err)
			o.notice(task, fmt.Sprintf(t.DeliveryFailed, track.Title))
			continue
		}

		o.notice(task, fmt.Sprintf(t.Delivered, track.Title))
		delivered++
	}

	if delivered == 0 && skipped == 0 {
		return domain.Failed(fmt.Errorf("delivery failed for every artifact"))
	}
	return domain.Completed()
}

// finalize is the single exit path for every task: exactly one final
// user-visible notice, then unconditional release of the working directory
// and the registry slot.
func (o *Orchestrator) finalize(task *domain.Task, outcome domain.Outcome) {
	task.SetState(outcome.State)
	t := texts.Get(task.Lang)

	var final, detail string
	switch outcome.State {
	case domain.StateCompleted:
		final = t.Done
	case domain.StateCancelled:
		final = t.Cancelled
	case domain.StateFailed:
		detail = outcome.Err.Error()
		if errors.Is(outcome.Err, domain.ErrUnsupportedLink) {
			final = t.Unsupported
		} else {
			final = fmt.Sprintf(t.Failed, detail)
		}
	}

	o.finalStatus(task, final)

	if dir := task.WorkDir(); dir != "" {
		if err := o.dirs.Remove(dir); err != nil {
			o.log.Error("task %s: failed to remove %s: %v", task.ID, dir, err)
		}
	}

	o.reg.Remove(task.Owner, task.ID)

	if o.hist != nil {
		if err := o.hist.RecordOutcome(task, outcome.State, detail); err != nil {
			o.log.Warn("task %s: history write failed: %v", task.ID, err)
		}
	}

	// Release the context now that nothing is listening on it.
	task.RequestCancel()

	o.log.Info("task %s: %s after %s", task.ID, outcome.State, time.Since(task.Started).Round(time.Millisecond))
}

// finalStatus edits the status message to the terminal text, dropping the
// cancel button. If there is no status message or the edit fails, the text
// goes out as a plain notice so the terminal state is always visible.
func (o *Orchestrator) finalStatus(task *domain.Task, text string) {
	ref := task.StatusRef()
	if !ref.IsZero() {
		if err := o.tr.EditStatus(ref, text, "", ""); err == nil {
			return
		} else {
			o.log.Debug("task %s: final status edit failed: %v", task.ID, err)
		}
	}
	o.notice(task, text)
}

// editStatus rewrites the status message in place. Best-effort: a stale or
// deleted message is logged at debug and ignored.
func (o *Orchestrator) editStatus(task *domain.Task, text string, keepCancel bool) {
	ref := task.StatusRef()
	if ref.IsZero() {
		return
	}

	label, data := "", ""
	if keepCancel {
		label = texts.Get(task.Lang).CancelButton
		data = cancelData(task)
	}

	if err := o.tr.EditStatus(ref, text, label, data); err != nil {
		o.log.Debug("task %s: status edit failed: %v", task.ID, err)
	}
}

func (o *Orchestrator) notice(task *domain.Task, text string) {
	if err := o.tr.SendNotice(task.ChatID, text); err != nil {
		o.log.Error("task %s: notice failed: %v", task.ID, err)
	}
}

// cancelData is the opaque correlation value carried by the inline cancel
// button; the bot layer parses it back into (owner, task id).
func cancelData(task *domain.Task) string {
	return fmt.Sprintf("cancel:%d:%s", task.Owner, task.ID)
}

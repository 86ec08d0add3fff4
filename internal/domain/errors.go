package domain

import "errors"

// ErrLimitExceeded indicates the owner is already at the per-owner
// concurrency limit; no task was created.
var ErrLimitExceeded = errors.New("too many active downloads")

// ErrUnsupportedLink indicates the extractor cannot handle the given URL.
var ErrUnsupportedLink = errors.New("unsupported link")

// ErrNoArtifacts indicates the extractor finished without error but
// produced no audio files.
var ErrNoArtifacts = errors.New("no audio produced")

// ErrTaskNotFound indicates a registry lookup miss.
var ErrTaskNotFound = errors.New("task not found")

// Outcome is the tagged terminal result of one task. Cancellation is a
// normal variant here, not an error dressed up as one.
type Outcome struct {
	State TaskState // StateCompleted, StateCancelled or StateFailed
	Err   error     // set only for StateFailed
}

func Completed() Outcome       { return Outcome{State: StateCompleted} }
func Cancelled() Outcome       { return Outcome{State: StateCancelled} }
func Failed(err error) Outcome { return Outcome{State: StateFailed, Err: err} }

package domain

import (
	"context"
	"sync"
	"time"

	"github.com/segmentio/ksuid"
)

type TaskState string

const (
	StatePending   TaskState = "pending"
	StateRunning   TaskState = "running"
	StateCompleted TaskState = "completed"
	StateCancelled TaskState = "cancelled"
	StateFailed    TaskState = "failed"
)

func (s TaskState) String() string { return string(s) }

// IsTerminal reports whether no further transitions can occur.
func (s TaskState) IsTerminal() bool {
	return s == StateCompleted || s == StateCancelled || s == StateFailed
}

// OwnerID identifies the requesting user. Tasks are partitioned and
// concurrency-limited per owner.
type OwnerID int64

type TaskID string

func NewTaskID() TaskID {
	return TaskID(ksuid.New().String())
}

// StatusRef points at the single user-visible status message for a task,
// used for in-place progress edits.
type StatusRef struct {
	ChatID    int64
	MessageID int
}

func (r StatusRef) IsZero() bool { return r.MessageID == 0 }

// Task represents one user-initiated download attempt. The task exclusively
// owns its working directory and cancel handle; the registry holds a
// non-owning reference keyed by (owner, id) while the task is non-terminal.
type Task struct {
	ID      TaskID
	Owner   OwnerID
	ChatID  int64
	URL     string
	Lang    string
	Started time.Time

	mu        sync.Mutex
	state     TaskState
	workDir   string
	statusRef StatusRef
	cancel    context.CancelFunc
}

func NewTask(owner OwnerID, chatID int64, url, lang string) *Task {
	return &Task{
		ID:      NewTaskID(),
		Owner:   owner,
		ChatID:  chatID,
		URL:     url,
		Lang:    lang,
		Started: time.Now(),
		state:   StatePending,
	}
}

func (t *Task) State() TaskState {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}

// SetState moves the task to a new state. Terminal states are final: once
// reached, further transitions are ignored.
func (t *Task) SetState(s TaskState) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.state.IsTerminal() {
		return
	}
	t.state = s
}

func (t *Task) WorkDir() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.workDir
}

func (t *Task) SetWorkDir(dir string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.workDir = dir
}

func (t *Task) StatusRef() StatusRef {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.statusRef
}

func (t *Task) SetStatusRef(ref StatusRef) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.statusRef = ref
}

// SetCancelFunc installs the task's cancel handle. Must happen before the
// task becomes reachable by other goroutines.
func (t *Task) SetCancelFunc(fn context.CancelFunc) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.cancel = fn
}

// RequestCancel signals cooperative cancellation on the task's handle.
// The actual transition to StateCancelled happens later, at the
// orchestrator's next suspension point. Safe to call any number of times.
func (t *Task) RequestCancel() {
	t.mu.Lock()
	fn := t.cancel
	t.mu.Unlock()
	if fn != nil {
		fn()
	}
}

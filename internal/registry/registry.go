package registry

import (
	"sync"

	"github.com/thebitsamuraii23/MusicJacker-bot-sub000/internal/domain"
)

// Registry is the authoritative record of what is running: a per-owner map
// of non-terminal tasks. It is the only structure mutated from multiple
// concurrent tasks, so every operation takes the registry lock. Admission
// and registration happen under the same lock acquisition, which is what
// keeps two near-simultaneous submissions from both squeezing past the
// per-owner limit.
type Registry struct {
	mu    sync.RWMutex
	tasks map[domain.OwnerID]map[domain.TaskID]*domain.Task
}

func New() *Registry {
	return &Registry{
		tasks: make(map[domain.OwnerID]map[domain.TaskID]*domain.Task),
	}
}

// AdmitAndRegister checks the per-owner concurrency gate and, if the owner
// has a free slot, inserts the task in one atomic step. Returns
// domain.ErrLimitExceeded when the owner is already at the limit.
func (r *Registry) AdmitAndRegister(task *domain.Task, limit int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	owned := r.tasks[task.Owner]
	if len(owned) >= limit {
		return domain.ErrLimitExceeded
	}

	if owned == nil {
		owned = make(map[domain.TaskID]*domain.Task)
		r.tasks[task.Owner] = owned
	}

	// Task ids are ksuids; a collision here should not happen. Keep the
	// first registration if it somehow does.
	if _, exists := owned[task.ID]; exists {
		return nil
	}

	owned[task.ID] = task
	return nil
}

// Lookup returns the task and true when (owner, id) names an active task.
func (r *Registry) Lookup(owner domain.OwnerID, id domain.TaskID) (*domain.Task, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	task, ok := r.tasks[owner][id]
	return task, ok
}

// CountActive returns the number of non-terminal tasks for an owner.
func (r *Registry) CountActive(owner domain.OwnerID) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.tasks[owner])
}

// Remove deregisters a task. Idempotent: removing an absent task is a
// no-op, never an error.
func (r *Registry) Remove(owner domain.OwnerID, id domain.TaskID) {
	r.mu.Lock()
	defer r.mu.Unlock()

	owned, ok := r.tasks[owner]
	if !ok {
		return
	}

	delete(owned, id)
	if len(owned) == 0 {
		delete(r.tasks, owner)
	}
}

// ActiveTasks returns a snapshot of every active task across all owners,
// for the admin API.
func (r *Registry) ActiveTasks() []*domain.Task {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*domain.Task
	for _, owned := range r.tasks {
		for _, task := range owned {
			out = append(out, task)
		}
	}
	return out
}

package registry

import (
	"sync"
	"testing"

	"github.com/thebitsamuraii23/MusicJacker-bot-sub000/internal/domain"
)

func newTask(owner domain.OwnerID) *domain.Task {
	return domain.NewTask(owner, int64(owner), "https://example.com/track", "en")
}

func TestAdmitAndRegister_Limit(t *testing.T) {
	r := New()
	owner := domain.OwnerID(42)

	for i := 0; i < 3; i++ {
		if err := r.AdmitAndRegister(newTask(owner), 3); err != nil {
			t.Fatalf("submission %d rejected unexpectedly: %v", i+1, err)
		}
	}

	if err := r.AdmitAndRegister(newTask(owner), 3); err != domain.ErrLimitExceeded {
		t.Errorf("4th submission: got %v, want ErrLimitExceeded", err)
	}

	if got := r.CountActive(owner); got != 3 {
		t.Errorf("CountActive = %d, want 3", got)
	}

	// Another owner is unaffected
	if err := r.AdmitAndRegister(newTask(7), 3); err != nil {
		t.Errorf("other owner rejected: %v", err)
	}
}

func TestAdmitAndRegister_ConcurrentBurst(t *testing.T) {
	r := New()
	owner := domain.OwnerID(1)
	const limit = 3
	const attempts = 50

	var wg sync.WaitGroup
	var mu sync.Mutex
	admitted := 0

	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := r.AdmitAndRegister(newTask(owner), limit); err == nil {
				mu.Lock()
				admitted++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if admitted != limit {
		t.Errorf("admitted %d tasks concurrently, want exactly %d", admitted, limit)
	}
	if got := r.CountActive(owner); got != limit {
		t.Errorf("CountActive = %d, want %d", got, limit)
	}
}

func TestAdmitAndRegister_OneSlotRace(t *testing.T) {
	// Two submissions when only one slot remains: exactly one wins.
	for i := 0; i < 100; i++ {
		r := New()
		owner := domain.OwnerID(5)
		if err := r.AdmitAndRegister(newTask(owner), 2); err != nil {
			t.Fatal(err)
		}

		errs := make(chan error, 2)
		for j := 0; j < 2; j++ {
			go func() {
				errs <- r.AdmitAndRegister(newTask(owner), 2)
			}()
		}

		rejected := 0
		for j := 0; j < 2; j++ {
			if <-errs != nil {
				rejected++
			}
		}
		if rejected != 1 {
			t.Fatalf("iteration %d: %d rejections, want exactly 1", i, rejected)
		}
	}
}

func TestLookupAndRemove(t *testing.T) {
	r := New()
	task := newTask(9)

	if err := r.AdmitAndRegister(task, 3); err != nil {
		t.Fatal(err)
	}

	got, ok := r.Lookup(task.Owner, task.ID)
	if !ok || got.ID != task.ID {
		t.Fatalf("Lookup failed for registered task")
	}

	r.Remove(task.Owner, task.ID)
	if _, ok := r.Lookup(task.Owner, task.ID); ok {
		t.Error("task still present after Remove")
	}
	if got := r.CountActive(task.Owner); got != 0 {
		t.Errorf("CountActive = %d after remove, want 0", got)
	}

	// Removing again (or removing the unknown) must be a no-op
	r.Remove(task.Owner, task.ID)
	r.Remove(1234, "nope")
}

func TestRegister_DuplicateID(t *testing.T) {
	r := New()
	task := newTask(3)

	if err := r.AdmitAndRegister(task, 5); err != nil {
		t.Fatal(err)
	}
	if err := r.AdmitAndRegister(task, 5); err != nil {
		t.Fatalf("duplicate registration should be silent, got %v", err)
	}
	if got := r.CountActive(task.Owner); got != 1 {
		t.Errorf("CountActive = %d after duplicate register, want 1", got)
	}
}

func TestActiveTasks_Snapshot(t *testing.T) {
	r := New()
	for i := 0; i < 3; i++ {
		if err := r.AdmitAndRegister(newTask(domain.OwnerID(i+1)), 3); err != nil {
			t.Fatal(err)
		}
	}

	if got := len(r.ActiveTasks()); got != 3 {
		t.Errorf("ActiveTasks returned %d tasks, want 3", got)
	}
}

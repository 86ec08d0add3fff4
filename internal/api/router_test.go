package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/labstack/echo/v5"

	"github.com/thebitsamuraii23/MusicJacker-bot-sub000/internal/app"
	"github.com/thebitsamuraii23/MusicJacker-bot-sub000/internal/domain"
	"github.com/thebitsamuraii23/MusicJacker-bot-sub000/internal/engine"
	"github.com/thebitsamuraii23/MusicJacker-bot-sub000/internal/infra/config"
	"github.com/thebitsamuraii23/MusicJacker-bot-sub000/internal/infra/logger"
	"github.com/thebitsamuraii23/MusicJacker-bot-sub000/internal/store"
)

type fakeTasks struct {
	active    []*domain.Task
	cancelled []domain.TaskID
}

func (f *fakeTasks) ActiveTasks() []*domain.Task { return f.active }

func (f *fakeTasks) Cancel(owner domain.OwnerID, id domain.TaskID) engine.CancelResult {
	for _, t := range f.active {
		if t.Owner == owner && t.ID == id {
			f.cancelled = append(f.cancelled, id)
			return engine.Cancelling
		}
	}
	return engine.AlreadyTerminal
}

func newTestServer(t *testing.T, tasks *fakeTasks) *echo.Echo {
	t.Helper()

	log, err := logger.New(filepath.Join(t.TempDir(), "test.log"), logger.LevelError, false)
	if err != nil {
		t.Fatal(err)
	}

	db, err := store.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })

	appCtx := app.NewContext(&config.Config{}, log)
	appCtx.Store = db
	appCtx.Tasks = tasks

	e := echo.New()
	RegisterRoutes(e, appCtx)
	return e
}

func TestHealth(t *testing.T) {
	e := newTestServer(t, &fakeTasks{})

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
}

func TestListTasks(t *testing.T) {
	task := domain.NewTask(7, 7, "https://example.com/x", "en")
	e := newTestServer(t, &fakeTasks{active: []*domain.Task{task}})

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/tasks", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var views []map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &views); err != nil {
		t.Fatal(err)
	}
	if len(views) != 1 {
		t.Fatalf("got %d tasks, want 1", len(views))
	}
	if views[0]["id"] != string(task.ID) || views[0]["owner_id"] != float64(7) {
		t.Errorf("unexpected view: %+v", views[0])
	}
}

func TestCancelTask(t *testing.T) {
	task := domain.NewTask(7, 7, "https://example.com/x", "en")
	tasks := &fakeTasks{active: []*domain.Task{task}}
	e := newTestServer(t, tasks)

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/tasks/7/"+string(task.ID)+"/cancel", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if len(tasks.cancelled) != 1 {
		t.Errorf("cancel did not reach the task manager")
	}

	// Unknown task is still a 200, reported as already terminal
	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/tasks/7/unknown/cancel", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("status for late cancel = %d, want 200", rec.Code)
	}

	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if body["result"] != "already_terminal" {
		t.Errorf("result = %q, want already_terminal", body["result"])
	}
}

func TestCancelBadOwner(t *testing.T) {
	e := newTestServer(t, &fakeTasks{})

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/tasks/not-a-number/x/cancel", nil))

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

package controllers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v5"

	"github.com/thebitsamuraii23/MusicJacker-bot-sub000/internal/app"
	"github.com/thebitsamuraii23/MusicJacker-bot-sub000/internal/domain"
	"github.com/thebitsamuraii23/MusicJacker-bot-sub000/internal/engine"
)

type TaskController struct {
	App *app.Context
}

type taskView struct {
	ID      string `json:"id"`
	OwnerID int64  `json:"owner_id"`
	URL     string `json:"url"`
	State   string `json:"state"`
	Started string `json:"started"`
}

func (ctrl *TaskController) Health(c *echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

// List returns every active (non-terminal) task across all owners.
func (ctrl *TaskController) List(c *echo.Context) error {
	tasks := ctrl.App.Tasks.ActiveTasks()

	views := make([]taskView, 0, len(tasks))
	for _, t := range tasks {
		views = append(views, taskView{
			ID:      string(t.ID),
			OwnerID: int64(t.Owner),
			URL:     t.URL,
			State:   t.State().String(),
			Started: t.Started.Format(time.RFC3339),
		})
	}

	return c.JSON(http.StatusOK, views)
}

// Cancel requests cooperative cancellation of one task. Cancelling a task
// that already finished (or never existed) is reported, not an error.
func (ctrl *TaskController) Cancel(c *echo.Context) error {
	owner, err := strconv.ParseInt(c.Param("owner"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid owner id"})
	}

	id := c.Param("id")
	result := ctrl.App.Tasks.Cancel(domain.OwnerID(owner), domain.TaskID(id))

	if result == engine.AlreadyTerminal {
		return c.JSON(http.StatusOK, map[string]string{"result": "already_terminal"})
	}
	return c.JSON(http.StatusOK, map[string]string{"result": "cancelling"})
}

// History returns the newest finished downloads.
func (ctrl *TaskController) History(c *echo.Context) error {
	limit := 50
	if raw := c.QueryParam("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 && n <= 500 {
			limit = n
		}
	}

	entries, err := ctrl.App.Store.RecentHistory(limit)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, entries)
}

package app

import (
	"github.com/thebitsamuraii23/MusicJacker-bot-sub000/internal/domain"
	"github.com/thebitsamuraii23/MusicJacker-bot-sub000/internal/engine"
	"github.com/thebitsamuraii23/MusicJacker-bot-sub000/internal/infra/config"
	"github.com/thebitsamuraii23/MusicJacker-bot-sub000/internal/infra/logger"
	"github.com/thebitsamuraii23/MusicJacker-bot-sub000/internal/store"
)

// TaskManager is the engine surface the API and bot layers call. It keeps
// those layers off the orchestrator's internals.
type TaskManager interface {
	ActiveTasks() []*domain.Task
	Cancel(owner domain.OwnerID, id domain.TaskID) engine.CancelResult
}

// Context holds the core environment and shared resources, injected into
// every component that needs them. There are no module-level singletons;
// this struct is the single source of truth for wiring.
type Context struct {
	Config *config.Config
	Logger *logger.Logger
	Store  *store.PersistentStore
	Tasks  TaskManager
}

func NewContext(cfg *config.Config, log *logger.Logger) *Context {
	return &Context{
		Config: cfg,
		Logger: log,
	}
}

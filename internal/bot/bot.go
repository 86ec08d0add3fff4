package bot

import (
	"context"
	"strings"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/thebitsamuraii23/MusicJacker-bot-sub000/internal/app"
	"github.com/thebitsamuraii23/MusicJacker-bot-sub000/internal/domain"
	"github.com/thebitsamuraii23/MusicJacker-bot-sub000/internal/engine"
	"github.com/thebitsamuraii23/MusicJacker-bot-sub000/internal/fetcher"
)

// Bot owns the Telegram update loop and routes messages into the download
// engine: links become tasks immediately, anything else becomes a search.
type Bot struct {
	api   *tgbotapi.BotAPI
	app   *app.Context
	orch  *engine.Orchestrator
	fetch fetcher.Fetcher

	// picks remembers recent search results so a 64-byte callback payload
	// can reference a full media URL.
	mu    sync.Mutex
	picks map[string]domain.SearchEntry
}

func New(api *tgbotapi.BotAPI, appCtx *app.Context, orch *engine.Orchestrator, fetch fetcher.Fetcher) *Bot {
	return &Bot{
		api:   api,
		app:   appCtx,
		orch:  orch,
		fetch: fetch,
		picks: make(map[string]domain.SearchEntry),
	}
}

// Run drains Telegram updates until the context is cancelled. Each update
// is handled on its own goroutine so one slow search never blocks the
// cancel button of another user.
func (b *Bot) Run(ctx context.Context) {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 30

	updates := b.api.GetUpdatesChan(u)
	b.app.Logger.Info("bot: listening as @%s", b.api.Self.UserName)

	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			go b.handleUpdate(ctx, update)
		}
	}
}

func (b *Bot) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	defer func() {
		if r := recover(); r != nil {
			b.app.Logger.Error("bot: panic while handling update: %v", r)
		}
	}()

	switch {
	case update.CallbackQuery != nil:
		b.handleCallback(ctx, update.CallbackQuery)
	case update.Message != nil && update.Message.IsCommand():
		b.handleCommand(update.Message)
	case update.Message != nil && update.Message.Text != "":
		b.handleText(ctx, update.Message)
	}
}

func isMediaLink(text string) bool {
	return strings.HasPrefix(text, "http://") || strings.HasPrefix(text, "https://")
}

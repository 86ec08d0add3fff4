package bot

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/thebitsamuraii23/MusicJacker-bot-sub000/internal/domain"
	"github.com/thebitsamuraii23/MusicJacker-bot-sub000/internal/engine"
	"github.com/thebitsamuraii23/MusicJacker-bot-sub000/internal/texts"
)

// pickLimit bounds the remembered search results; oldest entries are
// evicted wholesale once the map grows past it.
const pickLimit = 500

func (b *Bot) handleCommand(msg *tgbotapi.Message) {
	t := texts.Get(b.app.Store.Lang(msg.From.ID))

	switch msg.Command() {
	case "start", "help":
		b.reply(msg.Chat.ID, t.Welcome)
	case "lang":
		b.sendLangKeyboard(msg.Chat.ID)
	default:
		b.reply(msg.Chat.ID, t.Welcome)
	}
}

func (b *Bot) handleText(ctx context.Context, msg *tgbotapi.Message) {
	owner := domain.OwnerID(msg.From.ID)
	lang := b.app.Store.Lang(msg.From.ID)
	text := strings.TrimSpace(msg.Text)

	if isMediaLink(text) {
		b.submit(ctx, owner, msg.Chat.ID, text, lang)
		return
	}

	b.search(ctx, msg.Chat.ID, lang, text)
}

func (b *Bot) submit(ctx context.Context, owner domain.OwnerID, chatID int64, url, lang string) {
	_, err := b.orch.Submit(ctx, owner, chatID, url, lang)
	if err != nil {
		t := texts.Get(lang)
		if errors.Is(err, domain.ErrLimitExceeded) {
			b.reply(chatID, t.LimitExceeded)
			return
		}
		b.app.Logger.Error("bot: submission for %d failed: %v", owner, err)
		b.reply(chatID, fmt.Sprintf(t.Failed, err))
	}
}

func (b *Bot) search(ctx context.Context, chatID int64, lang, query string) {
	t := texts.Get(lang)

	entries, err := b.fetch.Search(ctx, query, b.app.Config.Search.ResultLimit)
	if err != nil {
		b.app.Logger.Error("bot: search %q failed: %v", query, err)
		b.reply(chatID, fmt.Sprintf(t.Failed, err))
		return
	}
	if len(entries) == 0 {
		b.reply(chatID, t.NoResults)
		return
	}

	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(entries))
	for _, e := range entries {
		b.rememberPick(e)

		label := e.Title
		if e.Artist != "" {
			label = e.Artist + " — " + e.Title
		}
		if e.Duration > 0 {
			label = fmt.Sprintf("%s (%d:%02d)", label, int(e.Duration.Minutes()), int(e.Duration.Seconds())%60)
		}

		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(label, "dl:"+e.ID),
		))
	}

	msg := tgbotapi.NewMessage(chatID, t.SearchPick)
	msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(rows...)
	if _, err := b.api.Send(msg); err != nil {
		b.app.Logger.Error("bot: could not send search keyboard: %v", err)
	}
}

func (b *Bot) handleCallback(ctx context.Context, cb *tgbotapi.CallbackQuery) {
	// Acknowledge immediately so the client stops its spinner
	if _, err := b.api.Request(tgbotapi.NewCallback(cb.ID, "")); err != nil {
		b.app.Logger.Debug("bot: callback ack failed: %v", err)
	}

	data := cb.Data
	lang := b.app.Store.Lang(cb.From.ID)

	switch {
	case strings.HasPrefix(data, "cancel:"):
		b.handleCancel(cb, data)

	case strings.HasPrefix(data, "dl:"):
		entry, ok := b.lookupPick(strings.TrimPrefix(data, "dl:"))
		if !ok || cb.Message == nil {
			return
		}
		b.submit(ctx, domain.OwnerID(cb.From.ID), cb.Message.Chat.ID, entry.URL, lang)

	case strings.HasPrefix(data, "lang:"):
		chosen := strings.TrimPrefix(data, "lang:")
		if err := b.app.Store.SetLang(cb.From.ID, chosen); err != nil {
			b.app.Logger.Error("bot: could not store lang for %d: %v", cb.From.ID, err)
		}
		if cb.Message != nil {
			b.reply(cb.Message.Chat.ID, texts.Get(chosen).Welcome)
		}
	}
}

// handleCancel parses the opaque "cancel:<owner>:<task>" payload the
// engine put on the button. Only the task's owner may cancel it.
func (b *Bot) handleCancel(cb *tgbotapi.CallbackQuery, data string) {
	parts := strings.SplitN(data, ":", 3)
	if len(parts) != 3 {
		return
	}

	owner, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil || owner != cb.From.ID {
		return
	}

	result := b.orch.Cancel(domain.OwnerID(owner), domain.TaskID(parts[2]))
	if result == engine.AlreadyTerminal {
		b.app.Logger.Debug("bot: late cancel for task %s", parts[2])
	}
}

func (b *Bot) sendLangKeyboard(chatID int64) {
	var row []tgbotapi.InlineKeyboardButton
	for _, code := range texts.Languages() {
		row = append(row, tgbotapi.NewInlineKeyboardButtonData(strings.ToUpper(code), "lang:"+code))
	}

	msg := tgbotapi.NewMessage(chatID, "🌐")
	msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(tgbotapi.NewInlineKeyboardRow(row...))
	if _, err := b.api.Send(msg); err != nil {
		b.app.Logger.Error("bot: could not send lang keyboard: %v", err)
	}
}

func (b *Bot) reply(chatID int64, text string) {
	if _, err := b.api.Send(tgbotapi.NewMessage(chatID, text)); err != nil {
		b.app.Logger.Error("bot: reply failed: %v", err)
	}
}

func (b *Bot) rememberPick(e domain.SearchEntry) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if len(b.picks) >= pickLimit {
		b.picks = make(map[string]domain.SearchEntry)
	}
	b.picks[e.ID] = e
}

func (b *Bot) lookupPick(id string) (domain.SearchEntry, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	e, ok := b.picks[id]
	return e, ok
}

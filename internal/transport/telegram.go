package transport

import (
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/thebitsamuraii23/MusicJacker-bot-sub000/internal/domain"
)

// Telegram implements Transport on the Bot API.
type Telegram struct {
	api *tgbotapi.BotAPI
}

func NewTelegram(api *tgbotapi.BotAPI) *Telegram {
	return &Telegram{api: api}
}

func cancelMarkup(label, data string) tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(label, data),
		),
	)
}

func (t *Telegram) SendStatus(chatID int64, text, cancelLabel, cancelData string) (domain.StatusRef, error) {
	msg := tgbotapi.NewMessage(chatID, text)
	if cancelLabel != "" {
		msg.ReplyMarkup = cancelMarkup(cancelLabel, cancelData)
	}

	sent, err := t.api.Send(msg)
	if err != nil {
		return domain.StatusRef{}, fmt.Errorf("failed to send status message: %w", err)
	}
	return domain.StatusRef{ChatID: chatID, MessageID: sent.MessageID}, nil
}

func (t *Telegram) EditStatus(ref domain.StatusRef, text, cancelLabel, cancelData string) error {
	edit := tgbotapi.NewEditMessageText(ref.ChatID, ref.MessageID, text)
	if cancelLabel != "" {
		markup := cancelMarkup(cancelLabel, cancelData)
		edit.ReplyMarkup = &markup
	}

	_, err := t.api.Send(edit)
	return err
}

func (t *Telegram) SendAudio(chatID int64, a Audio) error {
	audio := tgbotapi.NewAudio(chatID, tgbotapi.FilePath(a.Path))
	audio.Caption = a.Caption
	audio.Title = a.Title
	audio.Performer = a.Performer
	if a.Duration > 0 {
		audio.Duration = int(a.Duration.Seconds())
	}

	if _, err := t.api.Send(audio); err != nil {
		return fmt.Errorf("failed to send audio %s: %w", a.Path, err)
	}
	return nil
}

func (t *Telegram) SendNotice(chatID int64, text string) error {
	msg := tgbotapi.NewMessage(chatID, text)
	_, err := t.api.Send(msg)
	return err
}

package transport

import (
	"time"

	"github.com/thebitsamuraii23/MusicJacker-bot-sub000/internal/domain"
)

// Audio is one deliverable artifact plus its display metadata.
type Audio struct {
	Path      string
	Caption   string
	Title     string
	Performer string
	Duration  time.Duration
}

// Transport is everything the download engine needs from the chat side:
// send a message, edit it in place, send a file with a caption, and attach
// an inline cancel affordance carrying an opaque correlation value. The
// engine depends on nothing richer than this.
type Transport interface {
	// SendStatus publishes the task's status message with a cancel button
	// wired to cancelData.
	SendStatus(chatID int64, text, cancelLabel, cancelData string) (domain.StatusRef, error)

	// EditStatus rewrites the status message in place, keeping the cancel
	// button when cancelLabel is non-empty.
	EditStatus(ref domain.StatusRef, text, cancelLabel, cancelData string) error

	SendAudio(chatID int64, a Audio) error

	SendNotice(chatID int64, text string) error
}

// Package texts holds the minimal localized message table. Content here is
// glue, not mechanism; the orchestrator only ever formats these strings.
package texts

type Catalog struct {
	Queued         string
	Downloading    string
	Progress       string // percent, rate, eta
	Cancelling     string
	Cancelled      string
	Done           string
	Unsupported    string
	Failed         string // error detail
	Sending        string // n, total
	Delivered      string // title
	TooLarge       string // title, limit
	DeliveryFailed string // title
	NoResults      string
	LimitExceeded  string
	CancelButton   string
	SearchPick     string
	Welcome        string
}

var catalogs = map[string]Catalog{
	"en": {
		Queued:         "⏳ Queued...",
		Downloading:    "⬇️ Downloading...",
		Progress:       "⬇️ %.1f%% | %s/s | ETA %s",
		Cancelling:     "🛑 Cancelling...",
		Cancelled:      "🛑 Cancelled",
		Done:           "✅ Done",
		Unsupported:    "❌ This link is not supported",
		Failed:         "❌ Download failed: %s",
		Sending:        "📤 Sending %d of %d...",
		Delivered:      "🎵 %s",
		TooLarge:       "⚠️ %s is over %s and was skipped",
		DeliveryFailed: "⚠️ Could not send %s",
		NoResults:      "🔍 Nothing found",
		LimitExceeded:  "⚠️ Too many active downloads, wait for one to finish",
		CancelButton:   "Cancel",
		SearchPick:     "🔍 Pick a track:",
		Welcome:        "Send me a link or the name of a song.",
	},
	"ru": {
		Queued:         "⏳ В очереди...",
		Downloading:    "⬇️ Скачиваю...",
		Progress:       "⬇️ %.1f%% | %s/s | ETA %s",
		Cancelling:     "🛑 Отменяю...",
		Cancelled:      "🛑 Отменено",
		Done:           "✅ Готово",
		Unsupported:    "❌ Эта ссылка не поддерживается",
		Failed:         "❌ Ошибка загрузки: %s",
		Sending:        "📤 Отправляю %d из %d...",
		Delivered:      "🎵 %s",
		TooLarge:       "⚠️ %s больше %s, пропускаю",
		DeliveryFailed: "⚠️ Не удалось отправить %s",
		NoResults:      "🔍 Ничего не найдено",
		LimitExceeded:  "⚠️ Слишком много активных загрузок, дождитесь окончания",
		CancelButton:   "Отмена",
		SearchPick:     "🔍 Выберите трек:",
		Welcome:        "Пришлите ссылку или название песни.",
	},
}

// Get returns the catalog for a language code, falling back to English.
func Get(lang string) Catalog {
	if c, ok := catalogs[lang]; ok {
		return c
	}
	return catalogs["en"]
}

// Languages lists the codes the bot can switch between.
func Languages() []string {
	return []string{"en", "ru"}
}

package bot

import (
	"fmt"
	"log/slog"

	tgbotapi "github.com/PaulSonOfLars/gotgbot/v2"

	"HomeDesk/internal/lib/sl"
)

// TgBot is the out-of-band admin notification channel: emergency
// maintenance escalations and error-level logs land in the building
// manager's Telegram chat.
type TgBot struct {
	log     *slog.Logger
	api     *tgbotapi.Bot
	adminId int64
}

func NewTgBot(apiKey string, adminId int64, log *slog.Logger) (*TgBot, error) {
	api, err := tgbotapi.NewBot(apiKey, nil)
	if err != nil {
		return nil, fmt.Errorf("creating api instance: %w", err)
	}

	return &TgBot{
		log:     log.With(sl.Module("tgbot")),
		api:     api,
		adminId: adminId,
	}, nil
}

// SendMessage pushes a plain-text message to the admin chat.
func (t *TgBot) SendMessage(msg string) {
	if msg == "" {
		return
	}
	_, err := t.api.SendMessage(t.adminId, msg, nil)
	if err != nil {
		t.log.With(
			slog.Int64("id", t.adminId),
		).Debug("telegram send failed")
	}
}

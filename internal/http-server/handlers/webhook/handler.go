package webhook

import (
	"log/slog"
	"net/http"

	"HomeDesk/bot/messenger"
	"HomeDesk/internal/lib/sl"
)

// Verify handles GET requests for webhook verification
func Verify(log *slog.Logger, bot *messenger.Bot) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log.With(sl.Module("messenger.webhook")).Debug("webhook verification request")
		bot.HandleWebhookVerification(w, r)
	}
}

// Handler handles POST requests for incoming messages
func Handler(log *slog.Logger, bot *messenger.Bot) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log.With(sl.Module("messenger.webhook")).Debug("webhook message received")
		bot.HandleWebhook(w, r)
	}
}

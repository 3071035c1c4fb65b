package logger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
)

const (
	envLocal = "local"
	envDev   = "dev"
	envProd  = "prod"
)

// SetupLogger builds the root slog logger for the given environment.
// Local runs log human-readable text to stdout, everything else logs
// JSON to a file under logDir (falling back to stdout when the file
// cannot be opened).
func SetupLogger(env, logDir string) *slog.Logger {
	var out io.Writer = os.Stdout

	if env != envLocal {
		path := filepath.Join(logDir, "homedesk.log")
		file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err == nil {
			out = file
		}
	}

	switch env {
	case envLocal:
		return slog.New(slog.NewTextHandler(out, &slog.HandlerOptions{Level: slog.LevelDebug}))
	case envDev:
		return slog.New(slog.NewJSONHandler(out, &slog.HandlerOptions{Level: slog.LevelDebug}))
	case envProd:
		return slog.New(slog.NewJSONHandler(out, &slog.HandlerOptions{Level: slog.LevelInfo}))
	default:
		return slog.New(slog.NewJSONHandler(out, &slog.HandlerOptions{Level: slog.LevelInfo}))
	}
}

// Notifier pushes a plain-text message to an out-of-band channel.
type Notifier interface {
	SendMessage(msg string)
}

// SetupTelegramHandler wraps the logger so records at or above minLevel
// are also forwarded to the notifier (the admin Telegram chat).
func SetupTelegramHandler(log *slog.Logger, n Notifier, minLevel slog.Level) *slog.Logger {
	return slog.New(&notifyHandler{next: log.Handler(), notifier: n, minLevel: minLevel})
}

type notifyHandler struct {
	next     slog.Handler
	notifier Notifier
	minLevel slog.Level
}

func (h *notifyHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.next.Enabled(ctx, level)
}

func (h *notifyHandler) Handle(ctx context.Context, r slog.Record) error {
	if r.Level >= h.minLevel && h.notifier != nil {
		msg := fmt.Sprintf("[%s] %s", r.Level.String(), r.Message)
		r.Attrs(func(a slog.Attr) bool {
			msg += fmt.Sprintf("\n%s: %s", a.Key, a.Value.String())
			return true
		})
		h.notifier.SendMessage(msg)
	}
	return h.next.Handle(ctx, r)
}

func (h *notifyHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &notifyHandler{next: h.next.WithAttrs(attrs), notifier: h.notifier, minLevel: h.minLevel}
}

func (h *notifyHandler) WithGroup(name string) slog.Handler {
	return &notifyHandler{next: h.next.WithGroup(name), notifier: h.notifier, minLevel: h.minLevel}
}

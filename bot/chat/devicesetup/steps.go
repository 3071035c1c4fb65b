package devicesetup

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"HomeDesk/bot/chat"
	"HomeDesk/entity"
	"HomeDesk/internal/lib/sl"
)

// URLStep collects the bridge address, checked against the allow-list of
// local/cloud address shapes.
type URLStep struct {
	validURL URLChecker
}

func (s *URLStep) ID() chat.StepID         { return StepURL }
func (s *URLStep) Expects() chat.InputKind { return chat.KindText }

func (s *URLStep) Enter(ctx context.Context, m chat.Messenger, state *chat.Session) chat.StepResult {
	_ = m.SendText(state.SenderID, "Let's connect your home bridge. 🏠\nSend its address, e.g. http://homeassistant.local:8123 or http://192.168.1.10:8123")
	return chat.StepResult{}
}

func (s *URLStep) HandleInput(ctx context.Context, m chat.Messenger, state *chat.Session, input chat.UserInput) chat.StepResult {
	raw := strings.TrimSpace(input.Text)
	if !s.validURL(raw) {
		_ = m.SendText(state.SenderID, "That address isn't supported. Use a local address (192.168.x.x, homeassistant.local) or your cloud URL.")
		return chat.StepResult{Reject: "url not allowed"}
	}

	return chat.StepResult{
		NextStep:    StepToken,
		UpdateState: map[string]any{KeyURL: strings.TrimRight(raw, "/")},
	}
}

// TokenStep collects the long-lived access token; a live connectivity check runs
// before moving on. Failures go back to the URL step with the session
// intact.
type TokenStep struct {
	client       BridgeClient
	sanitize     TokenSanitizer
	checkTimeout time.Duration
	log          *slog.Logger
}

func (s *TokenStep) ID() chat.StepID         { return StepToken }
func (s *TokenStep) Expects() chat.InputKind { return chat.KindText }

func (s *TokenStep) Enter(ctx context.Context, m chat.Messenger, state *chat.Session) chat.StepResult {
	_ = m.SendText(state.SenderID, "Now paste a long-lived access token for the bridge:")
	return chat.StepResult{}
}

func (s *TokenStep) HandleInput(ctx context.Context, m chat.Messenger, state *chat.Session, input chat.UserInput) chat.StepResult {
	token := s.sanitize(input.Text)
	if token == "" {
		_ = m.SendText(state.SenderID, "The token came through empty. Paste it again:")
		return chat.StepResult{Reject: "empty token"}
	}

	checkCtx, cancel := context.WithTimeout(ctx, s.checkTimeout)
	defer cancel()

	inventory, err := s.client.Connect(checkCtx, state.GetString(KeyURL), token)
	if err != nil {
		s.log.Warn("bridge connectivity check failed", sl.Err(err))
		_ = m.SendText(state.SenderID, "Couldn't reach the bridge with that address and token. 😕\nLet's try again from the address:")
		return chat.StepResult{NextStep: StepURL}
	}

	return chat.StepResult{
		NextStep: StepConfirm,
		UpdateState: map[string]any{
			KeyToken:     token,
			KeyInventory: inventory.Summary(),
		},
	}
}

// ConfirmStep shows the discovered inventory; yes saves the bridge.
type ConfirmStep struct {
	gateway       BridgeGateway
	commitTimeout time.Duration
	log           *slog.Logger
}

func (s *ConfirmStep) ID() chat.StepID         { return StepConfirm }
func (s *ConfirmStep) Expects() chat.InputKind { return chat.KindPayload }

func (s *ConfirmStep) Options(state *chat.Session) []chat.Option {
	return []chat.Option{
		{Text: "✅ Save", Payload: chat.PayloadConfirmYes},
		{Text: "❌ Cancel", Payload: chat.PayloadConfirmNo},
	}
}

func (s *ConfirmStep) Enter(ctx context.Context, m chat.Messenger, state *chat.Session) chat.StepResult {
	msg := fmt.Sprintf("🔌 Connected!\n\n%s\nSave this bridge to your unit?", state.GetString(KeyInventory))
	if err := m.SendOptions(state.SenderID, msg, s.Options(state)); err != nil {
		return chat.StepResult{Error: err}
	}
	return chat.StepResult{}
}

func (s *ConfirmStep) HandleInput(ctx context.Context, m chat.Messenger, state *chat.Session, input chat.UserInput) chat.StepResult {
	switch input.Payload {
	case chat.PayloadConfirmNo:
		_ = m.SendText(state.SenderID, "Setup discarded. The bridge was not saved.")
		return chat.StepResult{Cancelled: true}

	case chat.PayloadConfirmYes:
		bridge := entity.NewDeviceBridge(state.SenderID, state.GetString(KeyURL), state.GetString(KeyToken))

		commitCtx, cancel := context.WithTimeout(ctx, s.commitTimeout)
		defer cancel()

		if err := s.gateway.UpsertBridge(commitCtx, bridge); err != nil {
			s.log.Error("bridge commit failed", sl.Err(err))
			_ = m.SendText(state.SenderID, "Could not save the bridge right now. Tap Save again in a moment.")
			return chat.StepResult{Reject: "commit failed, retry"}
		}

		_ = m.SendText(state.SenderID, "✅ Bridge saved. You can now control your devices from this chat.")
		return chat.StepResult{Complete: true, Entity: bridge}
	}

	return chat.StepResult{}
}

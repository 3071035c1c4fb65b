package messenger

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"HomeDesk/bot/chat"
)

func newTestBot(t *testing.T) *Bot {
	t.Helper()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewBot("access-token", "verify-token", "app-secret", log)
}

func sign(secret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return "sha256=" + hex.EncodeToString(mac.Sum(nil))
}

func TestWebhookVerification(t *testing.T) {
	bot := newTestBot(t)

	req := httptest.NewRequest(http.MethodGet,
		"/webhook?hub.mode=subscribe&hub.verify_token=verify-token&hub.challenge=12345", nil)
	w := httptest.NewRecorder()
	bot.HandleWebhookVerification(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if got := w.Body.String(); got != "12345" {
		t.Errorf("challenge echo = %q, want %q", got, "12345")
	}
}

func TestWebhookVerificationWrongToken(t *testing.T) {
	bot := newTestBot(t)

	req := httptest.NewRequest(http.MethodGet,
		"/webhook?hub.mode=subscribe&hub.verify_token=wrong&hub.challenge=12345", nil)
	w := httptest.NewRecorder()
	bot.HandleWebhookVerification(w, req)

	if w.Code != http.StatusForbidden {
		t.Errorf("status = %d, want 403", w.Code)
	}
}

func TestVerifySignature(t *testing.T) {
	bot := newTestBot(t)
	body := []byte(`{"object":"page","entry":[]}`)

	if !bot.verifySignature(body, sign("app-secret", body)) {
		t.Error("valid signature rejected")
	}
	if bot.verifySignature(body, sign("wrong-secret", body)) {
		t.Error("signature with wrong secret accepted")
	}
	if bot.verifySignature(body, "") {
		t.Error("empty signature accepted")
	}
	if bot.verifySignature(body, "md5=abcdef") {
		t.Error("wrong scheme accepted")
	}
	if bot.verifySignature([]byte(`tampered`), sign("app-secret", body)) {
		t.Error("signature over different body accepted")
	}
}

func TestHandleWebhookRejectsBadSignature(t *testing.T) {
	bot := newTestBot(t)
	body := []byte(`{"object":"page","entry":[]}`)

	req := httptest.NewRequest(http.MethodPost, "/webhook", bytes.NewReader(body))
	req.Header.Set("X-Hub-Signature-256", sign("wrong-secret", body))
	w := httptest.NewRecorder()
	bot.HandleWebhook(w, req)

	if w.Code != http.StatusForbidden {
		t.Errorf("status = %d, want 403", w.Code)
	}
}

func TestHandleWebhookAcksValidSignature(t *testing.T) {
	bot := newTestBot(t)
	body := []byte(`{"object":"page","entry":[]}`)

	req := httptest.NewRequest(http.MethodPost, "/webhook", bytes.NewReader(body))
	req.Header.Set("X-Hub-Signature-256", sign("app-secret", body))
	w := httptest.NewRecorder()
	bot.HandleWebhook(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", w.Code)
	}
}

type recordedEvent struct {
	senderID string
	input    chat.UserInput
}

type recordingHandler struct {
	events []recordedEvent
}

func (h *recordingHandler) HandleEvent(ctx context.Context, m chat.Messenger, senderID string, input chat.UserInput) chat.EngineResult {
	h.events = append(h.events, recordedEvent{senderID, input})
	return chat.EngineResult{Kind: chat.ResultPrompt}
}

func TestProcessPayloadNormalization(t *testing.T) {
	bot := newTestBot(t)
	handler := &recordingHandler{}
	bot.SetHandler(handler)

	raw := `{
		"object": "page",
		"entry": [{
			"id": "page-1",
			"messaging": [
				{"sender": {"id": "u1"}, "message": {"mid": "m1", "text": "hello"}},
				{"sender": {"id": "u2"}, "message": {"mid": "m2", "text": "pick", "quick_reply": {"payload": "MAINT_START"}}},
				{"sender": {"id": "u3"}, "postback": {"payload": "BOOK_START"}},
				{"sender": {"id": "u4"}, "message": {"mid": "m4", "text": "echoed", "is_echo": true}},
				{"sender": {"id": "u5"}, "message": {"mid": "m5"}}
			]
		}]
	}`
	var payload WebhookPayload
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		t.Fatalf("unmarshal fixture: %v", err)
	}

	bot.ProcessPayload(context.Background(), payload)

	if len(handler.events) != 3 {
		t.Fatalf("events = %d, want 3 (echo and empty skipped)", len(handler.events))
	}
	if handler.events[0].senderID != "u1" || handler.events[0].input.Text != "hello" {
		t.Errorf("text event = %+v", handler.events[0])
	}
	if handler.events[1].input.Payload != "MAINT_START" {
		t.Errorf("quick-reply event = %+v", handler.events[1])
	}
	if handler.events[2].input.Payload != "BOOK_START" {
		t.Errorf("postback event = %+v", handler.events[2])
	}
}

func TestProcessPayloadIgnoresOtherObjects(t *testing.T) {
	bot := newTestBot(t)
	handler := &recordingHandler{}
	bot.SetHandler(handler)

	payload := WebhookPayload{Object: "whatsapp_business_account"}
	bot.ProcessPayload(context.Background(), payload)

	if len(handler.events) != 0 {
		t.Errorf("events = %d, want 0", len(handler.events))
	}
}

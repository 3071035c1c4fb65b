package messenger

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"HomeDesk/bot/chat"
	"HomeDesk/internal/lib/sl"
)

const graphAPIURL = "https://graph.facebook.com/v19.0/me/messages"

// EventHandler receives each normalized inbound event. Implemented by
// the dialogue engine.
type EventHandler interface {
	HandleEvent(ctx context.Context, m chat.Messenger, senderID string, input chat.UserInput) chat.EngineResult
}

// Bot handles the messaging-platform webhook and outbound sends via
// the Graph API. It implements chat.Messenger.
type Bot struct {
	log         *slog.Logger
	accessToken string
	verifyToken string
	appSecret   string
	handler     EventHandler
	http        *http.Client
}

// WebhookPayload represents the incoming webhook payload.
type WebhookPayload struct {
	Object string `json:"object"`
	Entry  []struct {
		ID        string `json:"id"`
		Time      int64  `json:"time"`
		Messaging []struct {
			Sender struct {
				ID string `json:"id"`
			} `json:"sender"`
			Recipient struct {
				ID string `json:"id"`
			} `json:"recipient"`
			Timestamp int64 `json:"timestamp"`
			Message   *struct {
				Mid        string `json:"mid"`
				Text       string `json:"text"`
				IsEcho     bool   `json:"is_echo,omitempty"`
				QuickReply *struct {
					Payload string `json:"payload"`
				} `json:"quick_reply,omitempty"`
			} `json:"message,omitempty"`
			Postback *struct {
				Payload string `json:"payload"`
			} `json:"postback,omitempty"`
		} `json:"messaging"`
	} `json:"entry"`
}

type quickReply struct {
	ContentType string `json:"content_type"`
	Title       string `json:"title"`
	Payload     string `json:"payload"`
}

type sendMessageRequest struct {
	Recipient struct {
		ID string `json:"id"`
	} `json:"recipient"`
	Message struct {
		Text         string       `json:"text"`
		QuickReplies []quickReply `json:"quick_replies,omitempty"`
	} `json:"message"`
}

// NewBot creates a new messaging-platform bot instance.
func NewBot(accessToken, verifyToken, appSecret string, log *slog.Logger) *Bot {
	return &Bot{
		log:         log.With(sl.Module("messenger")),
		accessToken: accessToken,
		verifyToken: verifyToken,
		appSecret:   appSecret,
		http:        http.DefaultClient,
	}
}

// SetHandler sets the engine that receives inbound events.
func (b *Bot) SetHandler(h EventHandler) {
	b.handler = h
}

// HandleWebhookVerification handles the GET request for webhook verification.
func (b *Bot) HandleWebhookVerification(w http.ResponseWriter, r *http.Request) {
	mode := r.URL.Query().Get("hub.mode")
	token := r.URL.Query().Get("hub.verify_token")
	challenge := r.URL.Query().Get("hub.challenge")

	if mode == "subscribe" && token == b.verifyToken {
		b.log.Info("webhook verified")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(challenge))
		return
	}

	b.log.Warn("webhook verification failed",
		slog.String("mode", mode),
		slog.Bool("token_match", token == b.verifyToken),
	)
	http.Error(w, "Forbidden", http.StatusForbidden)
}

// HandleWebhook handles incoming webhook POST requests. The signature
// is verified before anything is parsed; processing happens after the
// 200 acknowledgement.
func (b *Bot) HandleWebhook(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		b.log.Error("failed to read request body", sl.Err(err))
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	signature := r.Header.Get("X-Hub-Signature-256")
	if !b.verifySignature(body, signature) {
		b.log.Warn("invalid webhook signature")
		http.Error(w, "Forbidden", http.StatusForbidden)
		return
	}

	var payload WebhookPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		b.log.Error("failed to parse webhook payload", sl.Err(err))
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	// Acknowledge receipt before processing; the platform retries
	// anything that doesn't get a timely 200.
	w.WriteHeader(http.StatusOK)

	go b.ProcessPayload(context.Background(), payload)
}

// ProcessPayload normalizes every messaging event in the payload and
// hands it to the engine. Events for different senders run
// concurrently inside the engine; same-sender events are serialized
// there.
func (b *Bot) ProcessPayload(ctx context.Context, payload WebhookPayload) {
	if payload.Object != "page" && payload.Object != "instagram" {
		return
	}

	for _, entry := range payload.Entry {
		for _, messaging := range entry.Messaging {
			senderID := messaging.Sender.ID

			var input chat.UserInput
			switch {
			case messaging.Postback != nil && messaging.Postback.Payload != "":
				input.Payload = messaging.Postback.Payload
			case messaging.Message != nil && !messaging.Message.IsEcho:
				if messaging.Message.QuickReply != nil && messaging.Message.QuickReply.Payload != "" {
					input.Payload = messaging.Message.QuickReply.Payload
				} else if messaging.Message.Text != "" {
					input.Text = messaging.Message.Text
				} else {
					continue
				}
			default:
				continue
			}

			b.log.Info("received event",
				slog.String("sender_id", senderID),
				slog.Bool("is_payload", input.IsPayload()),
			)

			if b.handler == nil {
				continue
			}
			result := b.handler.HandleEvent(ctx, b, senderID, input)
			if result.Kind == chat.ResultRejected {
				b.log.Debug("event rejected",
					slog.String("sender_id", senderID),
					slog.String("reason", result.Reason),
				)
			}
		}
	}
}

// SendText sends a plain text message.
func (b *Bot) SendText(senderID, text string) error {
	req := sendMessageRequest{}
	req.Recipient.ID = senderID
	req.Message.Text = text
	return b.send(req)
}

// SendOptions sends a text message with quick-reply buttons.
func (b *Bot) SendOptions(senderID, text string, options []chat.Option) error {
	req := sendMessageRequest{}
	req.Recipient.ID = senderID
	req.Message.Text = text
	for _, opt := range options {
		req.Message.QuickReplies = append(req.Message.QuickReplies, quickReply{
			ContentType: "text",
			Title:       opt.Text,
			Payload:     opt.Payload,
		})
	}
	return b.send(req)
}

func (b *Bot) send(reqBody sendMessageRequest) error {
	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	url := fmt.Sprintf("%s?access_token=%s", graphAPIURL, b.accessToken)
	resp, err := b.http.Post(url, "application/json", bytes.NewBuffer(jsonBody))
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("API error (status %d): %s", resp.StatusCode, string(body))
	}
	return nil
}

// verifySignature verifies the X-Hub-Signature-256 header with a
// constant-time comparison.
func (b *Bot) verifySignature(body []byte, signature string) bool {
	if signature == "" {
		return false
	}

	// Signature format: "sha256=<hex_signature>"
	if len(signature) < 8 || signature[:7] != "sha256=" {
		return false
	}

	expectedSig := signature[7:]
	mac := hmac.New(sha256.New, []byte(b.appSecret))
	mac.Write(body)
	actualSig := hex.EncodeToString(mac.Sum(nil))

	return hmac.Equal([]byte(expectedSig), []byte(actualSig))
}

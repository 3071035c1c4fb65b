package devicesetup

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"HomeDesk/bot/chat"
	"HomeDesk/entity"
	"HomeDesk/internal/service/devices"
)

type fakeMessenger struct {
	texts   []string
	prompts []string
}

func (m *fakeMessenger) SendText(senderID, text string) error {
	m.texts = append(m.texts, text)
	return nil
}

func (m *fakeMessenger) SendOptions(senderID, text string, options []chat.Option) error {
	m.prompts = append(m.prompts, text)
	return nil
}

type fakeBridgeClient struct {
	inventory *entity.DeviceInventory
	err       error
	calls     int
}

func (c *fakeBridgeClient) Connect(ctx context.Context, bridgeURL, token string) (*entity.DeviceInventory, error) {
	c.calls++
	if c.err != nil {
		return nil, c.err
	}
	return c.inventory, nil
}

type fakeBridgeGateway struct {
	bridges []*entity.DeviceBridge
}

func (g *fakeBridgeGateway) UpsertBridge(ctx context.Context, bridge *entity.DeviceBridge) error {
	g.bridges = append(g.bridges, bridge)
	return nil
}

func newTestSetup(t *testing.T, client *fakeBridgeClient, gw *fakeBridgeGateway) (*chat.Engine, *chat.MemorySessionStore) {
	t.Helper()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	store := chat.NewMemorySessionStore(time.Hour, log)
	engine := chat.NewEngine(store, log)
	engine.RegisterWorkflow(New(client, gw, devices.ValidURL, devices.SanitizeToken, time.Second, time.Second, log))
	return engine, store
}

func TestDeviceSetupEndToEnd(t *testing.T) {
	client := &fakeBridgeClient{inventory: &entity.DeviceInventory{
		Total:    3,
		ByDomain: map[string]int{"light": 2, "switch": 1},
	}}
	gw := &fakeBridgeGateway{}
	engine, _ := newTestSetup(t, client, gw)
	m := &fakeMessenger{}
	ctx := context.Background()

	if res := engine.HandleEvent(ctx, m, "resident-1", chat.UserInput{Payload: EntryPayload}); res.Kind != chat.ResultPrompt {
		t.Fatalf("entry: got %+v", res)
	}
	if res := engine.HandleEvent(ctx, m, "resident-1", chat.UserInput{Text: "http://homeassistant.local:8123/"}); res.Kind != chat.ResultPrompt {
		t.Fatalf("url: got %+v", res)
	}
	if res := engine.HandleEvent(ctx, m, "resident-1", chat.UserInput{Text: `"Bearer my-long-token"`}); res.Kind != chat.ResultPrompt {
		t.Fatalf("token: got %+v", res)
	}

	res := engine.HandleEvent(ctx, m, "resident-1", chat.UserInput{Payload: chat.PayloadConfirmYes})
	if res.Kind != chat.ResultCommitted {
		t.Fatalf("confirm: got %+v", res)
	}

	if len(gw.bridges) != 1 {
		t.Fatalf("bridges saved = %d, want 1", len(gw.bridges))
	}
	bridge := gw.bridges[0]
	if bridge.URL != "http://homeassistant.local:8123" {
		t.Errorf("URL = %q, want trailing slash stripped", bridge.URL)
	}
	if bridge.Token != "my-long-token" {
		t.Errorf("Token = %q, want sanitized", bridge.Token)
	}
	if bridge.ResidentId != "resident-1" {
		t.Errorf("ResidentId = %q", bridge.ResidentId)
	}
}

func TestDeviceSetupRejectsDisallowedURL(t *testing.T) {
	engine, store := newTestSetup(t, &fakeBridgeClient{}, &fakeBridgeGateway{})
	m := &fakeMessenger{}
	ctx := context.Background()

	engine.HandleEvent(ctx, m, "resident-1", chat.UserInput{Payload: EntryPayload})

	res := engine.HandleEvent(ctx, m, "resident-1", chat.UserInput{Text: "https://evil.example.com"})
	if res.Kind != chat.ResultRejected {
		t.Fatalf("got %+v", res)
	}
	s := store.Get("resident-1", WorkflowID)
	if s == nil || s.CurrentStep != StepURL {
		t.Errorf("session should stay at the URL step, got %+v", s)
	}
}

func TestDeviceSetupConnectFailureReturnsToURL(t *testing.T) {
	client := &fakeBridgeClient{err: errors.New("connection refused")}
	engine, store := newTestSetup(t, client, &fakeBridgeGateway{})
	m := &fakeMessenger{}
	ctx := context.Background()

	engine.HandleEvent(ctx, m, "resident-1", chat.UserInput{Payload: EntryPayload})
	engine.HandleEvent(ctx, m, "resident-1", chat.UserInput{Text: "http://192.168.1.10:8123"})

	res := engine.HandleEvent(ctx, m, "resident-1", chat.UserInput{Text: "some-token"})
	if res.Kind != chat.ResultPrompt {
		t.Fatalf("got %+v", res)
	}
	if client.calls != 1 {
		t.Errorf("connect calls = %d, want 1", client.calls)
	}

	// Back at the address prompt, session alive.
	s := store.Get("resident-1", WorkflowID)
	if s == nil || s.CurrentStep != StepURL {
		t.Errorf("session = %+v, want back at URL step", s)
	}
}

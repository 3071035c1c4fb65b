package maintenance

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"HomeDesk/bot/chat"
	"HomeDesk/entity"
	"HomeDesk/internal/service/catalog"
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

type fakeGateway struct {
	tickets []*entity.MaintenanceTicket
	err     error
}

func (g *fakeGateway) InsertTicket(ctx context.Context, ticket *entity.MaintenanceTicket) error {
	if g.err != nil {
		return g.err
	}
	g.tickets = append(g.tickets, ticket)
	return nil
}

type fakeNotifier struct {
	messages []string
}

func (n *fakeNotifier) SendMessage(msg string) {
	n.messages = append(n.messages, msg)
}

func newTestEngine(t *testing.T, gw *fakeGateway, n *fakeNotifier) *chat.Engine {
	t.Helper()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	store := chat.NewMemorySessionStore(time.Hour, log)
	engine := chat.NewEngine(store, log)
	engine.RegisterWorkflow(New(catalog.NewService(), gw, n, time.Second, log))
	return engine
}

func TestMaintenanceEndToEnd(t *testing.T) {
	gw := &fakeGateway{}
	n := &fakeNotifier{}
	engine := newTestEngine(t, gw, n)
	m := &fakeMessenger{}
	ctx := context.Background()

	// Parameterized entry: the category rides in on the token.
	if res := engine.HandleEvent(ctx, m, "resident-1", chat.UserInput{Payload: "MAINT_CAT_plumbing"}); res.Kind != chat.ResultPrompt {
		t.Fatalf("entry: got %+v", res)
	}
	if res := engine.HandleEvent(ctx, m, "resident-1", chat.UserInput{Text: "Kitchen tap leaking since Monday"}); res.Kind != chat.ResultPrompt {
		t.Fatalf("description: got %+v", res)
	}
	if res := engine.HandleEvent(ctx, m, "resident-1", chat.UserInput{Payload: UrgencyPrefix + entity.UrgencyHigh}); res.Kind != chat.ResultPrompt {
		t.Fatalf("urgency: got %+v", res)
	}

	res := engine.HandleEvent(ctx, m, "resident-1", chat.UserInput{Payload: chat.PayloadConfirmYes})
	if res.Kind != chat.ResultCommitted {
		t.Fatalf("confirm: got %+v", res)
	}

	if len(gw.tickets) != 1 {
		t.Fatalf("tickets committed = %d, want 1", len(gw.tickets))
	}
	ticket := gw.tickets[0]
	if ticket.Category != "plumbing" {
		t.Errorf("Category = %q, want plumbing", ticket.Category)
	}
	if ticket.Urgency != entity.UrgencyHigh {
		t.Errorf("Urgency = %q, want high", ticket.Urgency)
	}
	if ticket.ResidentId != "resident-1" {
		t.Errorf("ResidentId = %q", ticket.ResidentId)
	}
	if ticket.Status != entity.TicketOpen {
		t.Errorf("Status = %q, want open", ticket.Status)
	}
	if len(n.messages) != 0 {
		t.Errorf("high urgency should not escalate, got %v", n.messages)
	}
}

func TestMaintenanceEmergencyEscalates(t *testing.T) {
	gw := &fakeGateway{}
	n := &fakeNotifier{}
	engine := newTestEngine(t, gw, n)
	m := &fakeMessenger{}
	ctx := context.Background()

	engine.HandleEvent(ctx, m, "resident-1", chat.UserInput{Payload: "MAINT_CAT_heating"})
	engine.HandleEvent(ctx, m, "resident-1", chat.UserInput{Text: "No heating in the whole flat"})
	engine.HandleEvent(ctx, m, "resident-1", chat.UserInput{Payload: UrgencyPrefix + entity.UrgencyEmergency})

	res := engine.HandleEvent(ctx, m, "resident-1", chat.UserInput{Payload: chat.PayloadConfirmYes})
	if res.Kind != chat.ResultCommitted {
		t.Fatalf("confirm: got %+v", res)
	}
	if len(n.messages) != 1 {
		t.Fatalf("escalations = %d, want 1", len(n.messages))
	}
}

func TestMaintenanceShortDescriptionRejected(t *testing.T) {
	gw := &fakeGateway{}
	engine := newTestEngine(t, gw, &fakeNotifier{})
	m := &fakeMessenger{}
	ctx := context.Background()

	engine.HandleEvent(ctx, m, "resident-1", chat.UserInput{Payload: "MAINT_CAT_other"})

	res := engine.HandleEvent(ctx, m, "resident-1", chat.UserInput{Text: "bad"})
	if res.Kind != chat.ResultRejected {
		t.Fatalf("got %+v", res)
	}

	// The wizard is still waiting at the description step.
	res = engine.HandleEvent(ctx, m, "resident-1", chat.UserInput{Text: "Hallway light flickering"})
	if res.Kind != chat.ResultPrompt {
		t.Fatalf("got %+v", res)
	}
}

func TestMaintenanceConfirmNoDiscards(t *testing.T) {
	gw := &fakeGateway{}
	engine := newTestEngine(t, gw, &fakeNotifier{})
	m := &fakeMessenger{}
	ctx := context.Background()

	engine.HandleEvent(ctx, m, "resident-1", chat.UserInput{Payload: "MAINT_CAT_plumbing"})
	engine.HandleEvent(ctx, m, "resident-1", chat.UserInput{Text: "Bathroom drain clogged"})
	engine.HandleEvent(ctx, m, "resident-1", chat.UserInput{Payload: UrgencyPrefix + entity.UrgencyLow})

	res := engine.HandleEvent(ctx, m, "resident-1", chat.UserInput{Payload: chat.PayloadConfirmNo})
	if res.Kind != chat.ResultCancelled {
		t.Fatalf("got %+v", res)
	}
	if len(gw.tickets) != 0 {
		t.Errorf("nothing should be committed, got %d tickets", len(gw.tickets))
	}
}

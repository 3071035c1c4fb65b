package maintenance

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

// CategoryStep picks what needs fixing from the building's category list.
type CategoryStep struct {
	catalog Catalog
}

func (s *CategoryStep) ID() chat.StepID         { return StepCategory }
func (s *CategoryStep) Expects() chat.InputKind { return chat.KindPayload }

func (s *CategoryStep) Options(state *chat.Session) []chat.Option {
	cats := s.catalog.Categories()
	options := make([]chat.Option, 0, len(cats))
	for _, c := range cats {
		options = append(options, chat.Option{Text: c.Label, Payload: CategoryPrefix + c.Id})
	}
	return options
}

func (s *CategoryStep) Enter(ctx context.Context, m chat.Messenger, state *chat.Session) chat.StepResult {
	if err := m.SendOptions(state.SenderID, "What needs fixing?", s.Options(state)); err != nil {
		return chat.StepResult{Error: err}
	}
	return chat.StepResult{}
}

func (s *CategoryStep) HandleInput(ctx context.Context, m chat.Messenger, state *chat.Session, input chat.UserInput) chat.StepResult {
	if input.Payload == EntryPayload {
		// Bare entry token; the prompt already went out on Enter.
		return chat.StepResult{}
	}

	id, ok := chat.PayloadArg(input.Payload, CategoryPrefix)
	if !ok {
		return chat.StepResult{Reject: "unknown category"}
	}
	cat, ok := s.catalog.CategoryById(id)
	if !ok {
		_ = m.SendText(state.SenderID, "Please pick a category from the list.")
		return chat.StepResult{Reject: "unknown category"}
	}

	return chat.StepResult{
		NextStep: StepDescription,
		UpdateState: map[string]any{
			KeyCategoryId:    cat.Id,
			KeyCategoryLabel: cat.Label,
		},
	}
}

// DescriptionStep collects a free-text description of the problem.
type DescriptionStep struct{}

func (s *DescriptionStep) ID() chat.StepID         { return StepDescription }
func (s *DescriptionStep) Expects() chat.InputKind { return chat.KindText }

func (s *DescriptionStep) Enter(ctx context.Context, m chat.Messenger, state *chat.Session) chat.StepResult {
	_ = m.SendText(state.SenderID, "Describe the issue in a few words (where, what, since when):")
	return chat.StepResult{}
}

func (s *DescriptionStep) HandleInput(ctx context.Context, m chat.Messenger, state *chat.Session, input chat.UserInput) chat.StepResult {
	text := strings.TrimSpace(input.Text)
	if len(text) < 5 {
		_ = m.SendText(state.SenderID, "That's a bit short — please describe the issue in at least a few words.")
		return chat.StepResult{Reject: "description too short"}
	}

	return chat.StepResult{
		NextStep:    StepUrgency,
		UpdateState: map[string]any{KeyDescription: text},
	}
}

// UrgencyStep picks an urgency level.
type UrgencyStep struct{}

func (s *UrgencyStep) ID() chat.StepID         { return StepUrgency }
func (s *UrgencyStep) Expects() chat.InputKind { return chat.KindPayload }

func (s *UrgencyStep) Options(state *chat.Session) []chat.Option {
	return []chat.Option{
		{Text: "🟢 Low", Payload: UrgencyPrefix + entity.UrgencyLow},
		{Text: "🟡 Medium", Payload: UrgencyPrefix + entity.UrgencyMedium},
		{Text: "🟠 High", Payload: UrgencyPrefix + entity.UrgencyHigh},
		{Text: "🔴 Emergency", Payload: UrgencyPrefix + entity.UrgencyEmergency},
	}
}

func (s *UrgencyStep) Enter(ctx context.Context, m chat.Messenger, state *chat.Session) chat.StepResult {
	if err := m.SendOptions(state.SenderID, "How urgent is it?", s.Options(state)); err != nil {
		return chat.StepResult{Error: err}
	}
	return chat.StepResult{}
}

func (s *UrgencyStep) HandleInput(ctx context.Context, m chat.Messenger, state *chat.Session, input chat.UserInput) chat.StepResult {
	urgency, ok := chat.PayloadArg(input.Payload, UrgencyPrefix)
	if !ok {
		return chat.StepResult{Reject: "unknown urgency"}
	}
	switch urgency {
	case entity.UrgencyLow, entity.UrgencyMedium, entity.UrgencyHigh, entity.UrgencyEmergency:
	default:
		_ = m.SendText(state.SenderID, "Please pick an urgency from the list.")
		return chat.StepResult{Reject: "unknown urgency"}
	}

	return chat.StepResult{
		NextStep:    StepConfirm,
		UpdateState: map[string]any{KeyUrgency: urgency},
	}
}

// ConfirmStep shows the summary, then commits on an explicit yes.
type ConfirmStep struct {
	gateway       TicketGateway
	notifier      Notifier
	commitTimeout time.Duration
	log           *slog.Logger
}

func (s *ConfirmStep) ID() chat.StepID         { return StepConfirm }
func (s *ConfirmStep) Expects() chat.InputKind { return chat.KindPayload }

func (s *ConfirmStep) Options(state *chat.Session) []chat.Option {
	return []chat.Option{
		{Text: "✅ Submit", Payload: chat.PayloadConfirmYes},
		{Text: "❌ Cancel", Payload: chat.PayloadConfirmNo},
	}
}

func (s *ConfirmStep) Enter(ctx context.Context, m chat.Messenger, state *chat.Session) chat.StepResult {
	msg := fmt.Sprintf("📋 Maintenance request:\n\nCategory: %s\nIssue: %s\nUrgency: %s\n\nSubmit it?",
		state.GetString(KeyCategoryLabel),
		state.GetString(KeyDescription),
		state.GetString(KeyUrgency),
	)
	if err := m.SendOptions(state.SenderID, msg, s.Options(state)); err != nil {
		return chat.StepResult{Error: err}
	}
	return chat.StepResult{}
}

func (s *ConfirmStep) HandleInput(ctx context.Context, m chat.Messenger, state *chat.Session, input chat.UserInput) chat.StepResult {
	switch input.Payload {
	case chat.PayloadConfirmNo:
		_ = m.SendText(state.SenderID, "Request discarded. Nothing was submitted.")
		return chat.StepResult{Cancelled: true}

	case chat.PayloadConfirmYes:
		ticket := entity.NewMaintenanceTicket(state.SenderID)
		ticket.Category = state.GetString(KeyCategoryId)
		ticket.Description = state.GetString(KeyDescription)
		ticket.Urgency = state.GetString(KeyUrgency)

		commitCtx, cancel := context.WithTimeout(ctx, s.commitTimeout)
		defer cancel()

		if err := s.gateway.InsertTicket(commitCtx, ticket); err != nil {
			s.log.Error("ticket commit failed", sl.Err(err))
			_ = m.SendText(state.SenderID, "Could not save your request right now. Tap Submit again in a moment — your answers are kept.")
			return chat.StepResult{Reject: "commit failed, retry"}
		}

		if ticket.IsEmergency() && s.notifier != nil {
			s.notifier.SendMessage(fmt.Sprintf("🚨 EMERGENCY maintenance request %s\nCategory: %s\n%s",
				ticket.UUID, ticket.Category, ticket.Description))
		}

		_ = m.SendText(state.SenderID, fmt.Sprintf("✅ Request submitted. Ticket %s — we'll keep you posted.", ticket.UUID))
		return chat.StepResult{Complete: true, Entity: ticket}
	}

	return chat.StepResult{}
}

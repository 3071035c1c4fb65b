package visitorpass

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"HomeDesk/bot/chat"
	"HomeDesk/internal/lib/sl"
	"HomeDesk/internal/service/passes"
)

// NameStep collects the visitor's name as free text.
type NameStep struct{}

func (s *NameStep) ID() chat.StepID         { return StepName }
func (s *NameStep) Expects() chat.InputKind { return chat.KindText }

func (s *NameStep) Enter(ctx context.Context, m chat.Messenger, state *chat.Session) chat.StepResult {
	_ = m.SendText(state.SenderID, "Let's issue a visitor pass. 🎫\nWho is coming? (visitor's name)")
	return chat.StepResult{}
}

func (s *NameStep) HandleInput(ctx context.Context, m chat.Messenger, state *chat.Session, input chat.UserInput) chat.StepResult {
	name := strings.TrimSpace(input.Text)
	if len(name) < 2 {
		_ = m.SendText(state.SenderID, "Please enter the visitor's name (at least 2 characters).")
		return chat.StepResult{Reject: "invalid name"}
	}

	return chat.StepResult{
		NextStep:    StepPhone,
		UpdateState: map[string]any{KeyName: name},
	}
}

// PhoneStep collects the visitor's phone, optional and skippable.
type PhoneStep struct{}

func (s *PhoneStep) ID() chat.StepID         { return StepPhone }
func (s *PhoneStep) Expects() chat.InputKind { return chat.KindAny }

func (s *PhoneStep) Options(state *chat.Session) []chat.Option {
	return []chat.Option{{Text: "Skip", Payload: chat.PayloadSkip}}
}

func (s *PhoneStep) Enter(ctx context.Context, m chat.Messenger, state *chat.Session) chat.StepResult {
	_ = m.SendOptions(state.SenderID, "Visitor's phone number? (optional)", s.Options(state))
	return chat.StepResult{}
}

func (s *PhoneStep) HandleInput(ctx context.Context, m chat.Messenger, state *chat.Session, input chat.UserInput) chat.StepResult {
	if input.Payload == chat.PayloadSkip {
		return chat.StepResult{NextStep: StepType}
	}
	if input.IsPayload() {
		return chat.StepResult{Reject: "unexpected payload"}
	}

	if !chat.ValidPhone(input.Text) {
		_ = m.SendText(state.SenderID, "That doesn't look like a phone number. Try again or tap Skip.")
		return chat.StepResult{Reject: "invalid phone"}
	}

	return chat.StepResult{
		NextStep:    StepType,
		UpdateState: map[string]any{KeyPhone: chat.NormalizePhone(input.Text)},
	}
}

// TypeStep picks the visitor type, which drives the single-use policy and
// the duration options later on.
type TypeStep struct{}

func (s *TypeStep) ID() chat.StepID         { return StepType }
func (s *TypeStep) Expects() chat.InputKind { return chat.KindPayload }

func (s *TypeStep) Options(state *chat.Session) []chat.Option {
	return []chat.Option{
		{Text: "👋 Guest", Payload: TypePrefix + "guest"},
		{Text: "📦 Delivery", Payload: TypePrefix + "delivery"},
		{Text: "🔨 Contractor", Payload: TypePrefix + "contractor"},
		{Text: "🧹 Service", Payload: TypePrefix + "service"},
		{Text: "❓ Other", Payload: TypePrefix + "other"},
	}
}

func (s *TypeStep) Enter(ctx context.Context, m chat.Messenger, state *chat.Session) chat.StepResult {
	if err := m.SendOptions(state.SenderID, "What kind of visit is it?", s.Options(state)); err != nil {
		return chat.StepResult{Error: err}
	}
	return chat.StepResult{}
}

func (s *TypeStep) HandleInput(ctx context.Context, m chat.Messenger, state *chat.Session, input chat.UserInput) chat.StepResult {
	visitorType, ok := chat.PayloadArg(input.Payload, TypePrefix)
	if !ok {
		return chat.StepResult{Reject: "unknown visitor type"}
	}
	switch visitorType {
	case "guest", "delivery", "contractor", "service", "other":
	default:
		_ = m.SendText(state.SenderID, "Please pick a visit type from the list.")
		return chat.StepResult{Reject: "unknown visitor type"}
	}

	return chat.StepResult{
		NextStep:    StepPurpose,
		UpdateState: map[string]any{KeyType: visitorType},
	}
}

// PurposeStep collects the free-text purpose of the visit.
type PurposeStep struct{}

func (s *PurposeStep) ID() chat.StepID         { return StepPurpose }
func (s *PurposeStep) Expects() chat.InputKind { return chat.KindText }

func (s *PurposeStep) Enter(ctx context.Context, m chat.Messenger, state *chat.Session) chat.StepResult {
	_ = m.SendText(state.SenderID, "What's the purpose of the visit? (e.g. furniture delivery, plumbing work)")
	return chat.StepResult{}
}

func (s *PurposeStep) HandleInput(ctx context.Context, m chat.Messenger, state *chat.Session, input chat.UserInput) chat.StepResult {
	purpose := strings.TrimSpace(input.Text)
	if purpose == "" {
		_ = m.SendText(state.SenderID, "Please describe the purpose in a few words.")
		return chat.StepResult{Reject: "empty purpose"}
	}

	return chat.StepResult{
		NextStep:    StepDate,
		UpdateState: map[string]any{KeyPurpose: purpose},
	}
}

// DateStep picks today, tomorrow or the day after.
type DateStep struct{}

func (s *DateStep) ID() chat.StepID         { return StepDate }
func (s *DateStep) Expects() chat.InputKind { return chat.KindPayload }

func (s *DateStep) Options(state *chat.Session) []chat.Option {
	return []chat.Option{
		{Text: "Today", Payload: DatePrefix + passes.DateToday},
		{Text: "Tomorrow", Payload: DatePrefix + passes.DateTomorrow},
		{Text: "Day after tomorrow", Payload: DatePrefix + passes.DateDayAfter},
	}
}

func (s *DateStep) Enter(ctx context.Context, m chat.Messenger, state *chat.Session) chat.StepResult {
	if err := m.SendOptions(state.SenderID, "When is the visit?", s.Options(state)); err != nil {
		return chat.StepResult{Error: err}
	}
	return chat.StepResult{}
}

func (s *DateStep) HandleInput(ctx context.Context, m chat.Messenger, state *chat.Session, input chat.UserInput) chat.StepResult {
	date, ok := chat.PayloadArg(input.Payload, DatePrefix)
	if !ok {
		return chat.StepResult{Reject: "unknown date"}
	}
	switch date {
	case passes.DateToday, passes.DateTomorrow, passes.DateDayAfter:
	default:
		_ = m.SendText(state.SenderID, "Please pick a day from the list.")
		return chat.StepResult{Reject: "unknown date"}
	}

	return chat.StepResult{
		NextStep:    StepStart,
		UpdateState: map[string]any{KeyDate: date},
	}
}

// StartStep picks a symbolic start time. "Now" is only offered for today.
type StartStep struct{}

func (s *StartStep) ID() chat.StepID         { return StepStart }
func (s *StartStep) Expects() chat.InputKind { return chat.KindPayload }

func (s *StartStep) Options(state *chat.Session) []chat.Option {
	options := make([]chat.Option, 0, 4)
	if state.GetString(KeyDate) == passes.DateToday {
		options = append(options, chat.Option{Text: "⏱ Now", Payload: StartPrefix + passes.StartNow})
	}
	options = append(options,
		chat.Option{Text: "Morning (08:00)", Payload: StartPrefix + passes.StartMorning},
		chat.Option{Text: "Afternoon (12:00)", Payload: StartPrefix + passes.StartAfternoon},
		chat.Option{Text: "Evening (17:00)", Payload: StartPrefix + passes.StartEvening},
	)
	return options
}

func (s *StartStep) Enter(ctx context.Context, m chat.Messenger, state *chat.Session) chat.StepResult {
	if err := m.SendOptions(state.SenderID, "From what time?", s.Options(state)); err != nil {
		return chat.StepResult{Error: err}
	}
	return chat.StepResult{}
}

func (s *StartStep) HandleInput(ctx context.Context, m chat.Messenger, state *chat.Session, input chat.UserInput) chat.StepResult {
	start, ok := chat.PayloadArg(input.Payload, StartPrefix)
	if !ok {
		return chat.StepResult{Reject: "unknown start time"}
	}
	switch start {
	case passes.StartNow:
		if state.GetString(KeyDate) != passes.DateToday {
			_ = m.SendText(state.SenderID, "\"Now\" only works for a visit today. Pick a start time:")
			return chat.StepResult{Reject: "start now requires today"}
		}
	case passes.StartMorning, passes.StartAfternoon, passes.StartEvening:
	default:
		_ = m.SendText(state.SenderID, "Please pick a start time from the list.")
		return chat.StepResult{Reject: "unknown start time"}
	}

	return chat.StepResult{
		NextStep:    StepDuration,
		UpdateState: map[string]any{KeyStart: start},
	}
}

// DurationStep picks a duration; the offered set depends on the
// visitor type.
type DurationStep struct{}

func (s *DurationStep) ID() chat.StepID         { return StepDuration }
func (s *DurationStep) Expects() chat.InputKind { return chat.KindPayload }

var durationLabels = map[string]string{
	passes.Duration1h:     "1 hour",
	passes.Duration2h:     "2 hours",
	passes.Duration4h:     "4 hours",
	passes.Duration8h:     "8 hours",
	passes.DurationAllDay: "All day (07:00–23:00)",
}

func (s *DurationStep) Options(state *chat.Session) []chat.Option {
	durations := passes.DurationsForType(state.GetString(KeyType))
	options := make([]chat.Option, 0, len(durations))
	for _, d := range durations {
		options = append(options, chat.Option{Text: durationLabels[d], Payload: DurationPrefix + d})
	}
	return options
}

func (s *DurationStep) Enter(ctx context.Context, m chat.Messenger, state *chat.Session) chat.StepResult {
	if err := m.SendOptions(state.SenderID, "How long should the pass be valid?", s.Options(state)); err != nil {
		return chat.StepResult{Error: err}
	}
	return chat.StepResult{}
}

func (s *DurationStep) HandleInput(ctx context.Context, m chat.Messenger, state *chat.Session, input chat.UserInput) chat.StepResult {
	duration, ok := chat.PayloadArg(input.Payload, DurationPrefix)
	if !ok {
		return chat.StepResult{Reject: "unknown duration"}
	}

	allowed := false
	for _, d := range passes.DurationsForType(state.GetString(KeyType)) {
		if d == duration {
			allowed = true
			break
		}
	}
	if !allowed {
		_ = m.SendText(state.SenderID, "Please pick a duration from the list.")
		return chat.StepResult{Reject: "unknown duration"}
	}

	return chat.StepResult{
		NextStep:    StepConfirm,
		UpdateState: map[string]any{KeyDuration: duration},
	}
}

// ConfirmStep shows the summary; an explicit yes issues the pass.
type ConfirmStep struct {
	issuer        Issuer
	loc           *time.Location
	commitTimeout time.Duration
	log           *slog.Logger
}

func (s *ConfirmStep) ID() chat.StepID         { return StepConfirm }
func (s *ConfirmStep) Expects() chat.InputKind { return chat.KindPayload }

func (s *ConfirmStep) Options(state *chat.Session) []chat.Option {
	return []chat.Option{
		{Text: "✅ Issue pass", Payload: chat.PayloadConfirmYes},
		{Text: "❌ Cancel", Payload: chat.PayloadConfirmNo},
	}
}

func (s *ConfirmStep) Enter(ctx context.Context, m chat.Messenger, state *chat.Session) chat.StepResult {
	phone := state.GetString(KeyPhone)
	if phone == "" {
		phone = "—"
	}
	msg := fmt.Sprintf("📋 Visitor pass:\n\nVisitor: %s\nPhone: %s\nType: %s\nPurpose: %s\nDay: %s\nFrom: %s\nDuration: %s\n\nIssue it?",
		state.GetString(KeyName),
		phone,
		state.GetString(KeyType),
		state.GetString(KeyPurpose),
		state.GetString(KeyDate),
		state.GetString(KeyStart),
		durationLabels[state.GetString(KeyDuration)],
	)
	if err := m.SendOptions(state.SenderID, msg, s.Options(state)); err != nil {
		return chat.StepResult{Error: err}
	}
	return chat.StepResult{}
}

func (s *ConfirmStep) HandleInput(ctx context.Context, m chat.Messenger, state *chat.Session, input chat.UserInput) chat.StepResult {
	switch input.Payload {
	case chat.PayloadConfirmNo:
		_ = m.SendText(state.SenderID, "Pass discarded.")
		return chat.StepResult{Cancelled: true}

	case chat.PayloadConfirmYes:
		req := passes.IssueRequest{
			ResidentId:  state.SenderID,
			VisitorName: state.GetString(KeyName),
			Phone:       state.GetString(KeyPhone),
			VisitorType: state.GetString(KeyType),
			Purpose:     state.GetString(KeyPurpose),
			DateSel:     state.GetString(KeyDate),
			StartSel:    state.GetString(KeyStart),
			DurationSel: state.GetString(KeyDuration),
		}

		commitCtx, cancel := context.WithTimeout(ctx, s.commitTimeout)
		defer cancel()

		pass, err := s.issuer.Issue(commitCtx, req)
		if err != nil {
			s.log.Error("pass issue failed", sl.Err(err))
			_ = m.SendText(state.SenderID, "Could not issue the pass right now. Tap Issue pass again in a moment.")
			return chat.StepResult{Reject: "commit failed, retry"}
		}

		uses := "multiple entries"
		if pass.SingleUse {
			uses = "single entry"
		}
		_ = m.SendText(state.SenderID, fmt.Sprintf(
			"✅ Pass issued!\n\nCode: %s\nValid: %s — %s\nAccess: %s\n\nShare the code with your visitor; the front desk checks it at arrival.",
			pass.PassCode,
			pass.ValidFrom.In(s.loc).Format("Mon 15:04"),
			pass.ValidUntil.In(s.loc).Format("Mon 15:04"),
			uses,
		))
		return chat.StepResult{Complete: true, Entity: pass}
	}

	return chat.StepResult{}
}

package booking

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"HomeDesk/bot/chat"
	"HomeDesk/entity"
	repository "HomeDesk/internal/database"
	"HomeDesk/internal/lib/sl"
)

// AmenityStep picks a bookable facility.
type AmenityStep struct {
	catalog Catalog
}

func (s *AmenityStep) ID() chat.StepID         { return StepAmenity }
func (s *AmenityStep) Expects() chat.InputKind { return chat.KindPayload }

func (s *AmenityStep) Options(state *chat.Session) []chat.Option {
	amenities := s.catalog.Amenities()
	options := make([]chat.Option, 0, len(amenities))
	for _, a := range amenities {
		options = append(options, chat.Option{Text: a.Label, Payload: AmenityPrefix + a.Id})
	}
	return options
}

func (s *AmenityStep) Enter(ctx context.Context, m chat.Messenger, state *chat.Session) chat.StepResult {
	if err := m.SendOptions(state.SenderID, "Which amenity would you like to book?", s.Options(state)); err != nil {
		return chat.StepResult{Error: err}
	}
	return chat.StepResult{}
}

func (s *AmenityStep) HandleInput(ctx context.Context, m chat.Messenger, state *chat.Session, input chat.UserInput) chat.StepResult {
	if input.Payload == EntryPayload {
		return chat.StepResult{}
	}

	id, ok := chat.PayloadArg(input.Payload, AmenityPrefix)
	if !ok {
		return chat.StepResult{Reject: "unknown amenity"}
	}
	amenity, ok := s.catalog.AmenityById(id)
	if !ok {
		_ = m.SendText(state.SenderID, "Please pick an amenity from the list.")
		return chat.StepResult{Reject: "unknown amenity"}
	}

	return chat.StepResult{
		NextStep: StepDate,
		UpdateState: map[string]any{
			KeyAmenityId:    amenity.Id,
			KeyAmenityLabel: amenity.Label,
		},
	}
}

// DateStep picks one of the next seven calendar days.
type DateStep struct {
	catalog Catalog
	loc     *time.Location
}

func (s *DateStep) ID() chat.StepID         { return StepDate }
func (s *DateStep) Expects() chat.InputKind { return chat.KindPayload }

func (s *DateStep) Options(state *chat.Session) []chat.Option {
	dates := s.catalog.BookingDates(time.Now(), s.loc)
	options := make([]chat.Option, 0, len(dates))
	for i, d := range dates {
		label := d
		if t, err := time.ParseInLocation("2006-01-02", d, s.loc); err == nil {
			label = t.Format("Mon, Jan 2")
		}
		switch i {
		case 0:
			label = "Today, " + label
		case 1:
			label = "Tomorrow, " + label
		}
		options = append(options, chat.Option{Text: label, Payload: DatePrefix + d})
	}
	return options
}

func (s *DateStep) Enter(ctx context.Context, m chat.Messenger, state *chat.Session) chat.StepResult {
	if err := m.SendOptions(state.SenderID, "Which day?", s.Options(state)); err != nil {
		return chat.StepResult{Error: err}
	}
	return chat.StepResult{}
}

func (s *DateStep) HandleInput(ctx context.Context, m chat.Messenger, state *chat.Session, input chat.UserInput) chat.StepResult {
	date, ok := chat.PayloadArg(input.Payload, DatePrefix)
	if !ok || !s.catalog.ValidBookingDate(date, time.Now(), s.loc) {
		_ = m.SendText(state.SenderID, "Please pick one of the offered days.")
		return chat.StepResult{Reject: "invalid date"}
	}

	return chat.StepResult{
		NextStep:    StepSlot,
		UpdateState: map[string]any{KeyDate: date},
	}
}

// SlotStep picks a time slot within the chosen day.
type SlotStep struct {
	catalog Catalog
}

func (s *SlotStep) ID() chat.StepID         { return StepSlot }
func (s *SlotStep) Expects() chat.InputKind { return chat.KindPayload }

func (s *SlotStep) Options(state *chat.Session) []chat.Option {
	slots := s.catalog.Slots()
	options := make([]chat.Option, 0, len(slots))
	for _, sl := range slots {
		options = append(options, chat.Option{Text: sl.Label, Payload: SlotPrefix + sl.Id})
	}
	return options
}

func (s *SlotStep) Enter(ctx context.Context, m chat.Messenger, state *chat.Session) chat.StepResult {
	if err := m.SendOptions(state.SenderID, "Which time slot?", s.Options(state)); err != nil {
		return chat.StepResult{Error: err}
	}
	return chat.StepResult{}
}

func (s *SlotStep) HandleInput(ctx context.Context, m chat.Messenger, state *chat.Session, input chat.UserInput) chat.StepResult {
	id, ok := chat.PayloadArg(input.Payload, SlotPrefix)
	if !ok {
		return chat.StepResult{Reject: "unknown slot"}
	}
	slot, ok := s.catalog.SlotById(id)
	if !ok {
		_ = m.SendText(state.SenderID, "Please pick a time slot from the list.")
		return chat.StepResult{Reject: "unknown slot"}
	}

	return chat.StepResult{
		NextStep: StepConfirm,
		UpdateState: map[string]any{
			KeySlotId:    slot.Id,
			KeySlotLabel: slot.Label,
		},
	}
}

// ConfirmStep commits on an explicit yes; a slot conflict sends the user
// back to the slot step with everything else kept.
type ConfirmStep struct {
	gateway       BookingGateway
	commitTimeout time.Duration
	log           *slog.Logger
}

func (s *ConfirmStep) ID() chat.StepID         { return StepConfirm }
func (s *ConfirmStep) Expects() chat.InputKind { return chat.KindPayload }

func (s *ConfirmStep) Options(state *chat.Session) []chat.Option {
	return []chat.Option{
		{Text: "✅ Book it", Payload: chat.PayloadConfirmYes},
		{Text: "❌ Cancel", Payload: chat.PayloadConfirmNo},
	}
}

func (s *ConfirmStep) Enter(ctx context.Context, m chat.Messenger, state *chat.Session) chat.StepResult {
	msg := fmt.Sprintf("📋 Booking:\n\nAmenity: %s\nDate: %s\nTime: %s\n\nConfirm?",
		state.GetString(KeyAmenityLabel),
		state.GetString(KeyDate),
		state.GetString(KeySlotLabel),
	)
	if err := m.SendOptions(state.SenderID, msg, s.Options(state)); err != nil {
		return chat.StepResult{Error: err}
	}
	return chat.StepResult{}
}

func (s *ConfirmStep) HandleInput(ctx context.Context, m chat.Messenger, state *chat.Session, input chat.UserInput) chat.StepResult {
	switch input.Payload {
	case chat.PayloadConfirmNo:
		_ = m.SendText(state.SenderID, "Booking discarded.")
		return chat.StepResult{Cancelled: true}

	case chat.PayloadConfirmYes:
		booking := entity.NewAmenityBooking(state.SenderID)
		booking.AmenityId = state.GetString(KeyAmenityId)
		booking.Amenity = state.GetString(KeyAmenityLabel)
		booking.Date = state.GetString(KeyDate)
		booking.SlotId = state.GetString(KeySlotId)
		booking.SlotLabel = state.GetString(KeySlotLabel)

		commitCtx, cancel := context.WithTimeout(ctx, s.commitTimeout)
		defer cancel()

		err := s.gateway.InsertBooking(commitCtx, booking)
		if errors.Is(err, repository.ErrSlotTaken) {
			_ = m.SendText(state.SenderID, "😔 That slot was just taken. Pick a different time:")
			return chat.StepResult{Reject: "slot unavailable", NextStep: StepSlot}
		}
		if err != nil {
			s.log.Error("booking commit failed", sl.Err(err))
			_ = m.SendText(state.SenderID, "Could not save the booking right now. Tap Book it again in a moment.")
			return chat.StepResult{Reject: "commit failed, retry"}
		}

		_ = m.SendText(state.SenderID, fmt.Sprintf("✅ Booked! %s on %s, %s.",
			booking.Amenity, booking.Date, booking.SlotLabel))
		return chat.StepResult{Complete: true, Entity: booking}
	}

	return chat.StepResult{}
}

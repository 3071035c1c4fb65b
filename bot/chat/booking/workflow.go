package booking

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"HomeDesk/bot/chat"
	"HomeDesk/entity"
	"HomeDesk/internal/service/catalog"
)

const (
	WorkflowID chat.WorkflowID = "booking"
)

// Step IDs
const (
	StepAmenity chat.StepID = "amenity"
	StepDate    chat.StepID = "date"
	StepSlot    chat.StepID = "slot"
	StepConfirm chat.StepID = "confirm"
)

// Collected field keys
const (
	KeyAmenityId    = "amenity_id"
	KeyAmenityLabel = "amenity_label"
	KeyDate         = "date"
	KeySlotId       = "slot_id"
	KeySlotLabel    = "slot_label"
)

// Payload tokens
const (
	EntryPayload  = "BOOK_START"
	AmenityPrefix = "BOOK_AMEN_"
	DatePrefix    = "BOOK_DATE_"
	SlotPrefix    = "BOOK_SLOT_"
)

// Catalog provides amenity, date and slot lookups.
type Catalog interface {
	Amenities() []catalog.Amenity
	AmenityById(id string) (catalog.Amenity, bool)
	Slots() []catalog.TimeSlot
	SlotById(id string) (catalog.TimeSlot, bool)
	BookingDates(now time.Time, loc *time.Location) []string
	ValidBookingDate(date string, now time.Time, loc *time.Location) bool
}

// BookingGateway commits completed bookings and reports slot conflicts
// as repository.ErrSlotTaken.
type BookingGateway interface {
	InsertBooking(ctx context.Context, booking *entity.AmenityBooking) error
}

// Workflow is the amenity-booking wizard:
// amenity → date → slot → confirm.
type Workflow struct {
	steps map[chat.StepID]chat.Step
}

func New(cat Catalog, gateway BookingGateway, loc *time.Location, commitTimeout time.Duration, log *slog.Logger) *Workflow {
	w := &Workflow{steps: make(map[chat.StepID]chat.Step)}

	w.steps[StepAmenity] = &AmenityStep{catalog: cat}
	w.steps[StepDate] = &DateStep{catalog: cat, loc: loc}
	w.steps[StepSlot] = &SlotStep{catalog: cat}
	w.steps[StepConfirm] = &ConfirmStep{
		gateway:       gateway,
		commitTimeout: commitTimeout,
		log:           log,
	}

	return w
}

func (w *Workflow) ID() chat.WorkflowID      { return WorkflowID }
func (w *Workflow) InitialStep() chat.StepID { return StepAmenity }

func (w *Workflow) GetStep(id chat.StepID) (chat.Step, bool) {
	step, ok := w.steps[id]
	return step, ok
}

func (w *Workflow) Entry(payload string) bool {
	return payload == EntryPayload || strings.HasPrefix(payload, AmenityPrefix)
}

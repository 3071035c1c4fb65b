package maintenance

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
	WorkflowID chat.WorkflowID = "maintenance"
)

// Step IDs
const (
	StepCategory    chat.StepID = "category"
	StepDescription chat.StepID = "description"
	StepUrgency     chat.StepID = "urgency"
	StepConfirm     chat.StepID = "confirm"
)

// Collected field keys
const (
	KeyCategoryId    = "category_id"
	KeyCategoryLabel = "category_label"
	KeyDescription   = "description"
	KeyUrgency       = "urgency"
)

// Payload tokens
const (
	EntryPayload   = "MAINT_START"
	CategoryPrefix = "MAINT_CAT_"
	UrgencyPrefix  = "URGENCY_"
)

// Catalog provides the building-scoped category lookup.
type Catalog interface {
	Categories() []catalog.Category
	CategoryById(id string) (catalog.Category, bool)
}

// TicketGateway commits completed tickets.
type TicketGateway interface {
	InsertTicket(ctx context.Context, ticket *entity.MaintenanceTicket) error
}

// Notifier delivers the out-of-band emergency escalation.
type Notifier interface {
	SendMessage(msg string)
}

// Workflow is the maintenance-request wizard:
// category → description → urgency → confirm.
type Workflow struct {
	steps map[chat.StepID]chat.Step
}

func New(cat Catalog, gateway TicketGateway, notifier Notifier, commitTimeout time.Duration, log *slog.Logger) *Workflow {
	w := &Workflow{steps: make(map[chat.StepID]chat.Step)}

	w.steps[StepCategory] = &CategoryStep{catalog: cat}
	w.steps[StepDescription] = &DescriptionStep{}
	w.steps[StepUrgency] = &UrgencyStep{}
	w.steps[StepConfirm] = &ConfirmStep{
		gateway:       gateway,
		notifier:      notifier,
		commitTimeout: commitTimeout,
		log:           log,
	}

	return w
}

func (w *Workflow) ID() chat.WorkflowID      { return WorkflowID }
func (w *Workflow) InitialStep() chat.StepID { return StepCategory }

func (w *Workflow) GetStep(id chat.StepID) (chat.Step, bool) {
	step, ok := w.steps[id]
	return step, ok
}

func (w *Workflow) Entry(payload string) bool {
	return payload == EntryPayload || strings.HasPrefix(payload, CategoryPrefix)
}

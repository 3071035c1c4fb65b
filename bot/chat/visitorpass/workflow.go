package visitorpass

import (
	"context"
	"log/slog"
	"time"

	"HomeDesk/bot/chat"
	"HomeDesk/entity"
	"HomeDesk/internal/service/passes"
)

const (
	WorkflowID chat.WorkflowID = "visitor_pass"
)

// Step IDs
const (
	StepName     chat.StepID = "name"
	StepPhone    chat.StepID = "phone"
	StepType     chat.StepID = "type"
	StepPurpose  chat.StepID = "purpose"
	StepDate     chat.StepID = "date"
	StepStart    chat.StepID = "start"
	StepDuration chat.StepID = "duration"
	StepConfirm  chat.StepID = "confirm"
)

// Collected field keys
const (
	KeyName     = "visitor_name"
	KeyPhone    = "visitor_phone"
	KeyType     = "visitor_type"
	KeyPurpose  = "purpose"
	KeyDate     = "visit_date"
	KeyStart    = "start_time"
	KeyDuration = "duration"
)

// Payload tokens
const (
	EntryPayload   = "PASS_START"
	TypePrefix     = "PASS_TYPE_"
	DatePrefix     = "PASS_DATE_"
	StartPrefix    = "PASS_TIME_"
	DurationPrefix = "PASS_DUR_"
)

// Issuer computes the validity window and persists the pass.
type Issuer interface {
	Issue(ctx context.Context, req passes.IssueRequest) (*entity.VisitorPass, error)
}

// Workflow is the visitor-pass wizard:
// name → phone → type → purpose → date → start → duration → confirm.
type Workflow struct {
	steps map[chat.StepID]chat.Step
}

func New(issuer Issuer, loc *time.Location, commitTimeout time.Duration, log *slog.Logger) *Workflow {
	w := &Workflow{steps: make(map[chat.StepID]chat.Step)}

	w.steps[StepName] = &NameStep{}
	w.steps[StepPhone] = &PhoneStep{}
	w.steps[StepType] = &TypeStep{}
	w.steps[StepPurpose] = &PurposeStep{}
	w.steps[StepDate] = &DateStep{}
	w.steps[StepStart] = &StartStep{}
	w.steps[StepDuration] = &DurationStep{}
	w.steps[StepConfirm] = &ConfirmStep{
		issuer:        issuer,
		loc:           loc,
		commitTimeout: commitTimeout,
		log:           log,
	}

	return w
}

func (w *Workflow) ID() chat.WorkflowID      { return WorkflowID }
func (w *Workflow) InitialStep() chat.StepID { return StepName }

func (w *Workflow) GetStep(id chat.StepID) (chat.Step, bool) {
	step, ok := w.steps[id]
	return step, ok
}

func (w *Workflow) Entry(payload string) bool {
	return payload == EntryPayload
}

package devicesetup

import (
	"context"
	"log/slog"
	"time"

	"HomeDesk/bot/chat"
	"HomeDesk/entity"
)

const (
	WorkflowID chat.WorkflowID = "device_setup"
)

// Step IDs
const (
	StepURL     chat.StepID = "bridge_url"
	StepToken   chat.StepID = "access_token"
	StepConfirm chat.StepID = "confirm"
)

// Collected field keys
const (
	KeyURL       = "bridge_url"
	KeyToken     = "access_token"
	KeyInventory = "inventory_summary"
)

// Payload tokens
const (
	EntryPayload = "DEVICE_START"
)

// BridgeClient performs the connectivity check against a resident's
// home-automation bridge and fetches the device inventory.
type BridgeClient interface {
	Connect(ctx context.Context, bridgeURL, token string) (*entity.DeviceInventory, error)
}

// BridgeGateway persists a verified bridge configuration.
type BridgeGateway interface {
	UpsertBridge(ctx context.Context, bridge *entity.DeviceBridge) error
}

// URLChecker validates a bridge URL against the allow-list.
type URLChecker func(raw string) bool

// TokenSanitizer strips decoration from a pasted access token.
type TokenSanitizer func(token string) string

// Workflow is the home-automation bridge setup wizard:
// URL → access token (with connectivity check) → inventory confirm.
// Connectivity failures re-prompt at the URL step instead of
// terminating, since the usual cause is a mistyped address.
type Workflow struct {
	steps map[chat.StepID]chat.Step
}

func New(client BridgeClient, gateway BridgeGateway, validURL URLChecker, sanitize TokenSanitizer, checkTimeout, commitTimeout time.Duration, log *slog.Logger) *Workflow {
	w := &Workflow{steps: make(map[chat.StepID]chat.Step)}

	w.steps[StepURL] = &URLStep{validURL: validURL}
	w.steps[StepToken] = &TokenStep{
		client:       client,
		sanitize:     sanitize,
		checkTimeout: checkTimeout,
		log:          log,
	}
	w.steps[StepConfirm] = &ConfirmStep{
		gateway:       gateway,
		commitTimeout: commitTimeout,
		log:           log,
	}

	return w
}

func (w *Workflow) ID() chat.WorkflowID      { return WorkflowID }
func (w *Workflow) InitialStep() chat.StepID { return StepURL }

func (w *Workflow) GetStep(id chat.StepID) (chat.Step, bool) {
	step, ok := w.steps[id]
	return step, ok
}

func (w *Workflow) Entry(payload string) bool {
	return payload == EntryPayload
}

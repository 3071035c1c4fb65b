package chat

import (
	"context"
)

// StepID is a unique identifier for a step within a workflow.
type StepID string

// WorkflowID is a unique identifier for a workflow.
type WorkflowID string

// InputKind declares what kind of event a step is able to consume.
type InputKind int

const (
	// KindAny accepts both free text and button payloads.
	KindAny InputKind = iota
	// KindText accepts only free text bound to the step's field.
	KindText
	// KindPayload accepts only enumerated button payloads.
	KindPayload
)

// UserInput represents a normalized inbound event from the messaging
// platform: either free text or an opaque button payload.
type UserInput struct {
	Text    string
	Payload string
}

// IsPayload reports whether the event carries a button payload.
func (in UserInput) IsPayload() bool { return in.Payload != "" }

// StepResult represents the outcome of handling an event in a step.
//
// Reject carries the reason an input was refused. A rejection with no
// NextStep leaves the session completely untouched, so a retried input
// is always safe. A rejection combined with a NextStep is a commit
// conflict: collected fields are kept and the session is moved back to
// the step that produced the conflicting value.
type StepResult struct {
	NextStep    StepID
	UpdateState map[string]any
	Reject      string
	Complete    bool
	Cancelled   bool
	Entity      any
	Error       error
}

// Step defines the interface for a single workflow step.
type Step interface {
	// ID returns the unique identifier for this step.
	ID() StepID

	// Expects declares the input kind this step consumes. Events of
	// the wrong kind are rejected by the engine before the step runs.
	Expects() InputKind

	// Enter is called when the user enters this step. It sends the
	// step's prompt. Return a StepResult with NextStep set to
	// auto-transition without waiting for user input.
	Enter(ctx context.Context, m Messenger, s *Session) StepResult

	// HandleInput processes a user event for this step.
	HandleInput(ctx context.Context, m Messenger, s *Session, input UserInput) StepResult
}

// Workflow defines the interface for a complete workflow.
type Workflow interface {
	// ID returns the unique identifier for this workflow.
	ID() WorkflowID

	// InitialStep returns the first step of the workflow.
	InitialStep() StepID

	// GetStep returns a step by its ID.
	GetStep(id StepID) (Step, bool)

	// Entry reports whether the payload starts this workflow. Entry
	// payloads may be parameterized (e.g. a category baked into the
	// token), in which case the initial step consumes them.
	Entry(payload string) bool
}

// Messenger is the platform UI adapter interface. All sends are
// fire-and-forget from the engine's perspective.
type Messenger interface {
	SendText(senderID, text string) error
	SendOptions(senderID, text string, options []Option) error
}

// Option is a quick-reply button with an opaque payload token.
type Option struct {
	Text    string
	Payload string
}

// CommitListener is notified when a workflow commits an entity, so
// committed intakes can be fanned out (dashboard broadcast) without
// coupling the engine to transport packages.
type CommitListener interface {
	WorkflowCommitted(workflowID WorkflowID, senderID string, entity any)
}

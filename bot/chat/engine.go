package chat

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// ResultKind classifies the outcome of handling one inbound event.
type ResultKind int

const (
	// ResultPrompt means the workflow advanced (or stayed put) and the
	// next prompt has been sent.
	ResultPrompt ResultKind = iota
	// ResultCommitted means a terminal confirm step committed an entity.
	ResultCommitted
	// ResultCancelled means the session was cancelled and deleted.
	ResultCancelled
	// ResultRejected means the input was refused; collected fields are
	// preserved and the event is safe to retry.
	ResultRejected
)

// EngineResult is the outcome the ingress layer sees for each event.
type EngineResult struct {
	Kind   ResultKind
	Reason string
	Entity any
}

// OptionProvider is implemented by payload steps that want bare-number
// text replies ("2") matched against their current options.
type OptionProvider interface {
	Options(s *Session) []Option
}

// Engine is the generic dialogue driver. Events for different senders
// are handled in parallel; events for one sender are serialized by a
// per-sender lock so two quick messages can never race the same
// pre-transition session.
type Engine struct {
	workflows map[WorkflowID]Workflow
	order     []WorkflowID
	store     SessionStore
	log       *slog.Logger
	listener  CommitListener

	menuText    string
	menuOptions []Option

	mu    sync.Mutex
	locks map[string]*senderLock
}

// senderLock serializes one sender's events. The reference count lets
// the engine drop the map entry once no event is using it, so the lock
// table does not grow with every sender ever seen.
type senderLock struct {
	sync.Mutex
	refs int
}

// NewEngine creates a dialogue engine over the given session store.
func NewEngine(store SessionStore, log *slog.Logger) *Engine {
	return &Engine{
		workflows: make(map[WorkflowID]Workflow),
		store:     store,
		log:       log,
		locks:     make(map[string]*senderLock),
	}
}

// RegisterWorkflow adds a workflow to the engine. Registration order
// decides entry-payload matching order.
func (e *Engine) RegisterWorkflow(w Workflow) {
	e.workflows[w.ID()] = w
	e.order = append(e.order, w.ID())
	e.log.Info("registered workflow", slog.String("workflow_id", string(w.ID())))
}

// SetCommitListener sets the listener notified on every commit.
func (e *Engine) SetCommitListener(l CommitListener) {
	e.listener = l
}

// SetMenu configures the fallback menu sent when an event arrives with
// no active workflow and no entry payload.
func (e *Engine) SetMenu(text string, options []Option) {
	e.menuText = text
	e.menuOptions = options
}

func (e *Engine) lockFor(senderID string) *senderLock {
	e.mu.Lock()
	defer e.mu.Unlock()
	l, ok := e.locks[senderID]
	if !ok {
		l = &senderLock{}
		e.locks[senderID] = l
	}
	l.refs++
	return l
}

func (e *Engine) releaseLock(senderID string, l *senderLock) {
	e.mu.Lock()
	defer e.mu.Unlock()
	l.refs--
	if l.refs == 0 {
		delete(e.locks, senderID)
	}
}

// HandleEvent routes one inbound event for a sender.
func (e *Engine) HandleEvent(ctx context.Context, m Messenger, senderID string, input UserInput) EngineResult {
	lock := e.lockFor(senderID)
	lock.Lock()
	defer e.releaseLock(senderID, lock)
	defer lock.Unlock()

	// Explicit cancel wins over everything.
	if input.Payload == PayloadCancel {
		return e.cancelActive(m, senderID)
	}

	// An entry payload always starts that workflow fresh, overwriting
	// any in-flight session of the same type (last write wins).
	if input.IsPayload() {
		for _, id := range e.order {
			w := e.workflows[id]
			if w.Entry(input.Payload) {
				return e.startWorkflow(ctx, m, senderID, w, input)
			}
		}
	}

	session := e.store.ActiveForSender(senderID)
	if session == nil {
		if e.menuText != "" {
			_ = m.SendOptions(senderID, e.menuText, e.menuOptions)
		}
		return EngineResult{Kind: ResultRejected, Reason: "no active workflow"}
	}

	w, ok := e.workflows[session.Workflow]
	if !ok {
		e.store.Delete(session.SenderID, session.Workflow)
		return EngineResult{Kind: ResultRejected, Reason: "unknown workflow"}
	}

	step, ok := w.GetStep(session.CurrentStep)
	if !ok {
		e.store.Delete(session.SenderID, session.Workflow)
		return EngineResult{Kind: ResultRejected, Reason: "unknown step"}
	}

	// Input-kind gate: a mismatched event never reaches the step and
	// never advances state. Bare numbers are matched against the
	// step's options first, so numbered-list surfaces keep working.
	if gated, rewritten := e.gateInput(step, session, input); gated {
		input = rewritten
	} else {
		e.reprompt(ctx, m, step, session)
		return EngineResult{Kind: ResultRejected, Reason: "wrong input kind"}
	}

	result := step.HandleInput(ctx, m, session, input)
	return e.processResult(ctx, m, session, w, result)
}

// gateInput checks the event kind against the step's expectation and
// returns the (possibly rewritten) input.
func (e *Engine) gateInput(step Step, session *Session, input UserInput) (bool, UserInput) {
	switch step.Expects() {
	case KindText:
		if input.IsPayload() {
			return false, input
		}
	case KindPayload:
		if !input.IsPayload() {
			if p, ok := step.(OptionProvider); ok {
				if payload := MatchNumberToOption(input.Text, p.Options(session)); payload != "" {
					return true, UserInput{Payload: payload}
				}
			}
			return false, input
		}
	}
	return true, input
}

// reprompt re-sends the current step's prompt without touching state.
func (e *Engine) reprompt(ctx context.Context, m Messenger, step Step, session *Session) {
	// Enter on a data-collection step only sends the prompt again.
	_ = step.Enter(ctx, m, session)
}

func (e *Engine) cancelActive(m Messenger, senderID string) EngineResult {
	session := e.store.ActiveForSender(senderID)
	if session == nil {
		return EngineResult{Kind: ResultRejected, Reason: "no active workflow"}
	}
	e.store.Delete(session.SenderID, session.Workflow)
	e.log.Info("workflow cancelled",
		slog.String("sender_id", senderID),
		slog.String("workflow_id", string(session.Workflow)),
	)
	_ = m.SendText(senderID, "Okay, cancelled. Nothing was saved.")
	return EngineResult{Kind: ResultCancelled}
}

func (e *Engine) startWorkflow(ctx context.Context, m Messenger, senderID string, w Workflow, input UserInput) EngineResult {
	session := NewSession(senderID, w.ID(), w.InitialStep())
	e.store.Upsert(session)

	step, ok := w.GetStep(w.InitialStep())
	if !ok {
		e.store.Delete(senderID, w.ID())
		return EngineResult{Kind: ResultRejected, Reason: "unknown step"}
	}

	e.log.Info("starting workflow",
		slog.String("sender_id", senderID),
		slog.String("workflow_id", string(w.ID())),
	)

	result := step.Enter(ctx, m, session)
	res := e.processResult(ctx, m, session, w, result)
	if res.Kind != ResultPrompt {
		return res
	}

	// A parameterized entry (e.g. a category baked into the token) is
	// consumed by the step the workflow landed on.
	if input.IsPayload() {
		if step, ok = w.GetStep(session.CurrentStep); ok && step.Expects() != KindText {
			result = step.HandleInput(ctx, m, session, input)
			return e.processResult(ctx, m, session, w, result)
		}
	}
	return res
}

// processResult applies a step outcome to the session: merges collected
// fields, walks auto-transitions, and maps the outcome to an
// EngineResult. Rejections without a transition leave the session
// byte-for-byte unchanged.
func (e *Engine) processResult(ctx context.Context, m Messenger, session *Session, w Workflow, result StepResult) EngineResult {
	const maxTransitions = 20

	for i := 0; ; i++ {
		if result.Error != nil {
			e.log.Error("step error",
				slog.String("sender_id", session.SenderID),
				slog.String("step_id", string(session.CurrentStep)),
				slog.String("error", result.Error.Error()),
			)
			return EngineResult{Kind: ResultRejected, Reason: "internal error"}
		}

		if result.Reject != "" && result.NextStep == "" {
			// Idempotent rejection: nothing saved, nothing advanced.
			return EngineResult{Kind: ResultRejected, Reason: result.Reject}
		}

		if result.UpdateState != nil {
			session.MergeFields(result.UpdateState)
		}
		session.LastActivityAt = time.Now()

		if result.Cancelled {
			e.store.Delete(session.SenderID, session.Workflow)
			e.log.Info("workflow cancelled",
				slog.String("sender_id", session.SenderID),
				slog.String("workflow_id", string(session.Workflow)),
			)
			return EngineResult{Kind: ResultCancelled}
		}

		if result.Complete {
			e.store.Delete(session.SenderID, session.Workflow)
			e.log.Info("workflow committed",
				slog.String("sender_id", session.SenderID),
				slog.String("workflow_id", string(session.Workflow)),
			)
			if e.listener != nil {
				e.listener.WorkflowCommitted(session.Workflow, session.SenderID, result.Entity)
			}
			return EngineResult{Kind: ResultCommitted, Entity: result.Entity}
		}

		if result.NextStep == "" || result.NextStep == session.CurrentStep || i >= maxTransitions {
			e.store.Upsert(session)
			if result.Reject != "" {
				return EngineResult{Kind: ResultRejected, Reason: result.Reject}
			}
			return EngineResult{Kind: ResultPrompt}
		}

		// Commit conflicts transition backwards but still surface as a
		// rejection to the caller.
		reject := result.Reject

		session.CurrentStep = result.NextStep
		e.store.Upsert(session)

		step, ok := w.GetStep(result.NextStep)
		if !ok {
			e.store.Delete(session.SenderID, session.Workflow)
			return EngineResult{Kind: ResultRejected, Reason: "unknown step"}
		}

		e.log.Debug("transitioning",
			slog.String("sender_id", session.SenderID),
			slog.String("step_id", string(result.NextStep)),
		)

		result = step.Enter(ctx, m, session)
		if reject != "" && result.Error == nil && result.NextStep == "" && !result.Complete && !result.Cancelled {
			if result.UpdateState != nil {
				session.MergeFields(result.UpdateState)
			}
			e.store.Upsert(session)
			return EngineResult{Kind: ResultRejected, Reason: reject}
		}
	}
}

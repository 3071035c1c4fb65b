package chat

import "time"

// Session tracks one sender's progress through a single workflow.
// Fields accumulate monotonically as steps advance and are never reset
// mid-workflow.
type Session struct {
	SenderID       string         `json:"sender_id"`
	Workflow       WorkflowID     `json:"workflow"`
	CurrentStep    StepID         `json:"current_step"`
	Fields         map[string]any `json:"fields"`
	CreatedAt      time.Time      `json:"created_at"`
	LastActivityAt time.Time      `json:"last_activity_at"`
}

// NewSession creates a session positioned at the workflow's initial step.
func NewSession(senderID string, workflow WorkflowID, initialStep StepID) *Session {
	now := time.Now()
	return &Session{
		SenderID:       senderID,
		Workflow:       workflow,
		CurrentStep:    initialStep,
		Fields:         make(map[string]any),
		CreatedAt:      now,
		LastActivityAt: now,
	}
}

// clone returns an independent copy, including the fields map, so a
// caller can mutate its session without sharing memory with the store.
func (s *Session) clone() *Session {
	c := *s
	c.Fields = make(map[string]any, len(s.Fields))
	for k, v := range s.Fields {
		c.Fields[k] = v
	}
	return &c
}

// IsIdle reports whether the session has been inactive longer than the
// idle timeout.
func (s *Session) IsIdle(now time.Time, idleTimeout time.Duration) bool {
	return now.Sub(s.LastActivityAt) > idleTimeout
}

// GetString retrieves a string value from the collected fields.
func (s *Session) GetString(key string) string {
	if v, ok := s.Fields[key]; ok {
		if str, ok := v.(string); ok {
			return str
		}
	}
	return ""
}

// GetBool retrieves a boolean value from the collected fields.
func (s *Session) GetBool(key string) bool {
	if v, ok := s.Fields[key]; ok {
		if b, ok := v.(bool); ok {
			return b
		}
	}
	return false
}

// Set stores a value in the collected fields.
func (s *Session) Set(key string, value any) {
	if s.Fields == nil {
		s.Fields = make(map[string]any)
	}
	s.Fields[key] = value
}

// MergeFields merges additional collected values into the session.
func (s *Session) MergeFields(fields map[string]any) {
	if s.Fields == nil {
		s.Fields = make(map[string]any)
	}
	for k, v := range fields {
		s.Fields[k] = v
	}
}

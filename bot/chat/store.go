package chat

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// SessionStore holds in-flight sessions keyed by (sender, workflow).
// A sender runs at most one active instance of each workflow type;
// re-entering a workflow overwrites the previous session.
type SessionStore interface {
	Get(senderID string, workflow WorkflowID) *Session
	Upsert(s *Session)
	Delete(senderID string, workflow WorkflowID)

	// ActiveForSender returns the sender's session with the most
	// recent activity, or nil when none is in flight.
	ActiveForSender(senderID string) *Session

	// SweepExpired removes idle sessions and returns how many were
	// dropped. This is the only garbage collection for session memory.
	SweepExpired() int
}

type storeKey struct {
	senderID string
	workflow WorkflowID
}

// MemorySessionStore is the single-process in-memory store. Sessions
// are copied on the way in and out, so the sweeper never shares memory
// with a handler mutating its session.
type MemorySessionStore struct {
	mu          sync.RWMutex
	sessions    map[storeKey]*Session
	idleTimeout time.Duration
	log         *slog.Logger
}

// NewMemorySessionStore creates a store with the given idle timeout.
func NewMemorySessionStore(idleTimeout time.Duration, log *slog.Logger) *MemorySessionStore {
	return &MemorySessionStore{
		sessions:    make(map[storeKey]*Session),
		idleTimeout: idleTimeout,
		log:         log,
	}
}

// Get returns the stored session, or nil when absent or already idle
// past the timeout (an expired session is as good as gone even before
// the sweeper runs).
func (st *MemorySessionStore) Get(senderID string, workflow WorkflowID) *Session {
	st.mu.RLock()
	defer st.mu.RUnlock()

	s, ok := st.sessions[storeKey{senderID, workflow}]
	if !ok || s.IsIdle(time.Now(), st.idleTimeout) {
		return nil
	}
	return s.clone()
}

func (st *MemorySessionStore) Upsert(s *Session) {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.sessions[storeKey{s.SenderID, s.Workflow}] = s.clone()
}

func (st *MemorySessionStore) Delete(senderID string, workflow WorkflowID) {
	st.mu.Lock()
	defer st.mu.Unlock()
	delete(st.sessions, storeKey{senderID, workflow})
}

func (st *MemorySessionStore) ActiveForSender(senderID string) *Session {
	st.mu.RLock()
	defer st.mu.RUnlock()

	now := time.Now()
	var latest *Session
	for key, s := range st.sessions {
		if key.senderID != senderID || s.IsIdle(now, st.idleTimeout) {
			continue
		}
		if latest == nil || s.LastActivityAt.After(latest.LastActivityAt) {
			latest = s
		}
	}
	if latest == nil {
		return nil
	}
	return latest.clone()
}

func (st *MemorySessionStore) SweepExpired() int {
	st.mu.Lock()
	defer st.mu.Unlock()

	now := time.Now()
	count := 0
	for key, s := range st.sessions {
		if s.IsIdle(now, st.idleTimeout) {
			delete(st.sessions, key)
			count++
		}
	}
	return count
}

// RunSweeper sweeps on a fixed cadence until the context is cancelled.
// Should be called in a goroutine.
func (st *MemorySessionStore) RunSweeper(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := st.SweepExpired(); n > 0 && st.log != nil {
				st.log.Info("swept expired sessions", slog.Int("count", n))
			}
		}
	}
}

package chat

import (
	"io"
	"log/slog"
	"testing"
	"time"
)

func newTestStore(t *testing.T, idle time.Duration) *MemorySessionStore {
	t.Helper()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewMemorySessionStore(idle, log)
}

func TestStoreGetUpsertDelete(t *testing.T) {
	st := newTestStore(t, time.Hour)

	if got := st.Get("u1", "maintenance"); got != nil {
		t.Fatalf("expected nil for absent session, got %+v", got)
	}

	s := NewSession("u1", "maintenance", "category")
	st.Upsert(s)

	got := st.Get("u1", "maintenance")
	if got == nil {
		t.Fatal("expected session after upsert")
	}
	if got.CurrentStep != "category" {
		t.Errorf("CurrentStep = %q, want %q", got.CurrentStep, "category")
	}

	st.Delete("u1", "maintenance")
	if got := st.Get("u1", "maintenance"); got != nil {
		t.Errorf("expected nil after delete, got %+v", got)
	}
}

func TestStoreIdleSessionIsGone(t *testing.T) {
	st := newTestStore(t, 10*time.Minute)

	s := NewSession("u1", "booking", "amenity")
	s.LastActivityAt = time.Now().Add(-time.Hour)
	st.Upsert(s)

	if got := st.Get("u1", "booking"); got != nil {
		t.Errorf("idle session should read as absent, got %+v", got)
	}
	if got := st.ActiveForSender("u1"); got != nil {
		t.Errorf("idle session should not be active, got %+v", got)
	}
}

func TestStoreCopiesSessions(t *testing.T) {
	st := newTestStore(t, time.Hour)

	s := NewSession("u1", "maintenance", "category")
	s.Set("pick", "plumbing")
	st.Upsert(s)

	// Mutating the caller's session after Upsert must not leak into
	// the store.
	s.CurrentStep = "confirm"
	s.Set("pick", "electrical")
	s.LastActivityAt = time.Now().Add(-2 * time.Hour)

	got := st.Get("u1", "maintenance")
	if got == nil {
		t.Fatal("expected stored session")
	}
	if got.CurrentStep != "category" || got.GetString("pick") != "plumbing" {
		t.Errorf("stored session shares memory with caller: %+v", got)
	}

	// And mutating a returned session must not write through either.
	got.Set("pick", "hvac")
	again := st.Get("u1", "maintenance")
	if again.GetString("pick") != "plumbing" {
		t.Errorf("Get returned a shared session: pick = %q", again.GetString("pick"))
	}

	if fromActive := st.ActiveForSender("u1"); fromActive == nil || fromActive == got {
		t.Error("ActiveForSender must return its own copy")
	}
}

func TestStoreActiveForSenderPicksLatest(t *testing.T) {
	st := newTestStore(t, time.Hour)

	older := NewSession("u1", "maintenance", "category")
	older.LastActivityAt = time.Now().Add(-10 * time.Minute)
	st.Upsert(older)

	newer := NewSession("u1", "booking", "amenity")
	st.Upsert(newer)

	other := NewSession("u2", "maintenance", "category")
	st.Upsert(other)

	got := st.ActiveForSender("u1")
	if got == nil {
		t.Fatal("expected an active session")
	}
	if got.Workflow != "booking" {
		t.Errorf("ActiveForSender picked %q, want most recent %q", got.Workflow, "booking")
	}
}

func TestStoreSweepExpired(t *testing.T) {
	st := newTestStore(t, 10*time.Minute)

	stale := NewSession("u1", "maintenance", "category")
	stale.LastActivityAt = time.Now().Add(-time.Hour)
	st.Upsert(stale)

	fresh := NewSession("u2", "booking", "amenity")
	st.Upsert(fresh)

	if n := st.SweepExpired(); n != 1 {
		t.Errorf("SweepExpired = %d, want 1", n)
	}
	if got := st.Get("u2", "booking"); got == nil {
		t.Error("fresh session swept unexpectedly")
	}
}

package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ebarrios-ai/trivium/pkg/domain"
	"github.com/ebarrios-ai/trivium/pkg/ports"
)

func TestCacheRoundTrip(t *testing.T) {
	c := NewCache()
	ctx := context.Background()

	stored := domain.StepResult{
		Kind:     domain.StepKindInformationLookup,
		Response: "cached response",
		Model:    "m",
	}
	if err := c.Set(ctx, "info:query", &stored, time.Minute); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	var loaded domain.StepResult
	hit, err := c.Get(ctx, "info:query", &loaded)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if !hit {
		t.Fatal("Get reported miss for stored key")
	}
	if loaded.Response != stored.Response || loaded.Kind != stored.Kind {
		t.Errorf("loaded = %+v, want %+v", loaded, stored)
	}
}

func TestCacheMiss(t *testing.T) {
	c := NewCache()

	var out domain.StepResult
	hit, err := c.Get(context.Background(), "absent", &out)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if hit {
		t.Error("Get reported hit for absent key")
	}
}

func TestCacheExpiry(t *testing.T) {
	c := NewCache()
	ctx := context.Background()

	if err := c.Set(ctx, "short", "value", time.Millisecond); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	time.Sleep(10 * time.Millisecond)

	var out string
	hit, err := c.Get(ctx, "short", &out)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if hit {
		t.Error("Get reported hit for expired key")
	}
}

func TestHistoryStoreLifecycle(t *testing.T) {
	s := NewHistoryStore()
	ctx := context.Background()

	older := &domain.Session{ID: "a", Query: "first", Timestamp: time.Now().Add(-time.Hour)}
	newer := &domain.Session{ID: "b", Query: "second", Timestamp: time.Now()}

	for _, session := range []*domain.Session{older, newer} {
		if err := s.SaveSession(ctx, session); err != nil {
			t.Fatalf("SaveSession failed: %v", err)
		}
	}

	got, err := s.GetSession(ctx, "a")
	if err != nil {
		t.Fatalf("GetSession failed: %v", err)
	}
	if got.Query != "first" {
		t.Errorf("session query = %q, want first", got.Query)
	}

	sessions, err := s.ListSessions(ctx)
	if err != nil {
		t.Fatalf("ListSessions failed: %v", err)
	}
	if len(sessions) != 2 {
		t.Fatalf("got %d sessions, want 2", len(sessions))
	}
	if sessions[0].ID != "b" || sessions[1].ID != "a" {
		t.Errorf("sessions not newest-first: %s, %s", sessions[0].ID, sessions[1].ID)
	}

	if err := s.DeleteSession(ctx, "a"); err != nil {
		t.Fatalf("DeleteSession failed: %v", err)
	}
	if _, err := s.GetSession(ctx, "a"); !errors.Is(err, ports.ErrNotFound) {
		t.Errorf("GetSession after delete = %v, want ErrNotFound", err)
	}
	if err := s.DeleteSession(ctx, "a"); !errors.Is(err, ports.ErrNotFound) {
		t.Errorf("second DeleteSession = %v, want ErrNotFound", err)
	}
}

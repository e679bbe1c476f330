package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/clinicdesk/booking-system/internal/core/domain"
	"github.com/clinicdesk/booking-system/internal/core/ports"
)

func TestMemoryStore_PutGetDelete(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	if err := store.Put(ctx, "sid-1", ports.Session{UserID: "u1", Role: "patient"}, time.Hour); err != nil {
		t.Fatalf("put: %v", err)
	}

	got, err := store.Get(ctx, "sid-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.UserID != "u1" || got.Role != "patient" {
		t.Fatalf("unexpected session: %+v", got)
	}

	if err := store.Delete(ctx, "sid-1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := store.Get(ctx, "sid-1"); !errors.Is(err, domain.ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound after delete, got %v", err)
	}
}

func TestMemoryStore_Get_Missing(t *testing.T) {
	store := NewMemoryStore()
	if _, err := store.Get(context.Background(), "nope"); !errors.Is(err, domain.ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}
}

func TestMemoryStore_Get_Expired(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	base := time.Date(2024, 6, 5, 12, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return base }

	if err := store.Put(ctx, "sid-1", ports.Session{UserID: "u1", Role: "patient"}, time.Minute); err != nil {
		t.Fatalf("put: %v", err)
	}

	store.now = func() time.Time { return base.Add(30 * time.Second) }
	if _, err := store.Get(ctx, "sid-1"); err != nil {
		t.Fatalf("session expired too early: %v", err)
	}

	store.now = func() time.Time { return base.Add(2 * time.Minute) }
	if _, err := store.Get(ctx, "sid-1"); !errors.Is(err, domain.ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound after ttl, got %v", err)
	}
}

func TestMemoryStore_Delete_Idempotent(t *testing.T) {
	store := NewMemoryStore()
	if err := store.Delete(context.Background(), "nope"); err != nil {
		t.Fatalf("delete of missing session must be a no-op, got %v", err)
	}
}

package ports

import (
	"context"
	"time"

	"github.com/clinicdesk/booking-system/internal/core/domain"
)

// UserRepository defines persistence operations for users.
type UserRepository interface {
	// Get retrieves a user by id, returning domain.ErrUserNotFound when absent.
	Get(ctx context.Context, id string) (*domain.User, error)
	// Upsert inserts the user or, when a user with the same email already
	// exists, updates its names and role in place. The stored user is
	// returned; on update the existing id and created_at are preserved.
	Upsert(ctx context.Context, user *domain.User) (*domain.User, error)
}

// SlotRepository defines persistence operations for appointment slots.
// Slots are written at seed time only and never mutated.
type SlotRepository interface {
	Create(ctx context.Context, slot *domain.Slot) error
	// Get retrieves a slot by id, returning domain.ErrSlotNotFound when absent.
	Get(ctx context.Context, id string) (*domain.Slot, error)
	// ListWindow returns every slot with start_at in [from, to], ascending by
	// start_at.
	ListWindow(ctx context.Context, from, to time.Time) ([]domain.Slot, error)
}

// BookingRepository defines persistence operations for bookings.
//
// Create is the load-bearing operation for the no-double-booking invariant:
// implementations must make the existence check and the insert a single
// atomic unit (unique index, unique constraint, or an in-process lock) and
// return domain.ErrSlotAlreadyBooked when the slot is already taken. The
// service layer performs no read-before-write of its own.
type BookingRepository interface {
	Create(ctx context.Context, booking *domain.Booking) error
	// FindBySlotIDs returns the bookings referencing any of the given slots,
	// keyed by slot id. Slots with no booking are absent from the map.
	FindBySlotIDs(ctx context.Context, slotIDs []string) (map[string]domain.Booking, error)
	// ListByUser returns the user's bookings with joined details, newest first.
	ListByUser(ctx context.Context, userID string) ([]domain.BookingDetail, error)
	// ListAll returns every booking with joined details, newest first.
	ListAll(ctx context.Context) ([]domain.BookingDetail, error)
}

// Store bundles the three repositories an entity store implementation
// provides, plus a connectivity probe for the readiness endpoint.
type Store interface {
	Users() UserRepository
	Slots() SlotRepository
	Bookings() BookingRepository
	Ping(ctx context.Context) error
}

// Package memory provides an in-process implementation of ports.Store. It
// backs tests and local development; the mutex makes the booking
// check-and-insert atomic, satisfying the same uniqueness contract the
// durable stores enforce with an index or constraint.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/clinicdesk/booking-system/internal/core/domain"
	"github.com/clinicdesk/booking-system/internal/core/ports"
)

type Store struct {
	mu           sync.RWMutex
	users        map[string]domain.User
	userIDByMail map[string]string
	slots        map[string]domain.Slot
	bookings     map[string]domain.Booking
	bySlot       map[string]string // slot id -> booking id
	seq          map[string]int    // booking id -> insertion order, for stable newest-first ties
	nextSeq      int
}

func New() *Store {
	return &Store{
		users:        make(map[string]domain.User),
		userIDByMail: make(map[string]string),
		slots:        make(map[string]domain.Slot),
		bookings:     make(map[string]domain.Booking),
		bySlot:       make(map[string]string),
		seq:          make(map[string]int),
	}
}

func (s *Store) Users() ports.UserRepository       { return (*userRepo)(s) }
func (s *Store) Slots() ports.SlotRepository       { return (*slotRepo)(s) }
func (s *Store) Bookings() ports.BookingRepository { return (*bookingRepo)(s) }

func (s *Store) Ping(context.Context) error { return nil }

// --- users ---

type userRepo Store

func (r *userRepo) Get(_ context.Context, id string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return &u, nil
}

func (r *userRepo) Upsert(_ context.Context, user *domain.User) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if id, ok := r.userIDByMail[user.Email]; ok {
		existing := r.users[id]
		existing.FirstName = user.FirstName
		existing.LastName = user.LastName
		existing.Role = user.Role
		existing.UpdatedAt = user.UpdatedAt
		r.users[id] = existing
		return &existing, nil
	}

	r.users[user.ID] = *user
	r.userIDByMail[user.Email] = user.ID
	stored := *user
	return &stored, nil
}

// --- slots ---

type slotRepo Store

func (r *slotRepo) Create(_ context.Context, slot *domain.Slot) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.slots[slot.ID] = *slot
	return nil
}

func (r *slotRepo) Get(_ context.Context, id string) (*domain.Slot, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	slot, ok := r.slots[id]
	if !ok {
		return nil, domain.ErrSlotNotFound
	}
	return &slot, nil
}

func (r *slotRepo) ListWindow(_ context.Context, from, to time.Time) ([]domain.Slot, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []domain.Slot
	for _, slot := range r.slots {
		if slot.StartAt.Before(from) || slot.StartAt.After(to) {
			continue
		}
		out = append(out, slot)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartAt.Before(out[j].StartAt) })
	return out, nil
}

// --- bookings ---

type bookingRepo Store

func (r *bookingRepo) Create(_ context.Context, booking *domain.Booking) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, taken := r.bySlot[booking.SlotID]; taken {
		return domain.ErrSlotAlreadyBooked
	}
	r.bookings[booking.ID] = *booking
	r.bySlot[booking.SlotID] = booking.ID
	r.seq[booking.ID] = r.nextSeq
	r.nextSeq++
	return nil
}

func (r *bookingRepo) FindBySlotIDs(_ context.Context, slotIDs []string) (map[string]domain.Booking, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make(map[string]domain.Booking)
	for _, slotID := range slotIDs {
		if bookingID, ok := r.bySlot[slotID]; ok {
			out[slotID] = r.bookings[bookingID]
		}
	}
	return out, nil
}

func (r *bookingRepo) ListByUser(_ context.Context, userID string) ([]domain.BookingDetail, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.collect(func(b domain.Booking) bool { return b.UserID == userID }), nil
}

func (r *bookingRepo) ListAll(_ context.Context) ([]domain.BookingDetail, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.collect(func(domain.Booking) bool { return true }), nil
}

// collect joins bookings with their user and slot, newest first. Bookings
// whose user or slot is missing are skipped. Callers hold the read lock.
func (r *bookingRepo) collect(match func(domain.Booking) bool) []domain.BookingDetail {
	var out []domain.BookingDetail
	for _, b := range r.bookings {
		if !match(b) {
			continue
		}
		user, userOK := r.users[b.UserID]
		slot, slotOK := r.slots[b.SlotID]
		if !userOK || !slotOK {
			continue
		}
		out = append(out, domain.BookingDetail{Booking: b, User: user, Slot: slot})
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return r.seq[out[i].ID] > r.seq[out[j].ID]
	})
	return out
}

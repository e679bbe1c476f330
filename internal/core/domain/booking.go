package domain

import (
	"errors"
	"time"
)

const (
	RolePatient = "patient"
	RoleAdmin   = "admin"
)

// SlotDuration is the fixed length of every bookable slot.
const SlotDuration = 30 * time.Minute

var ErrSlotNotFound = errors.New("slot not found")
var ErrSlotAlreadyBooked = errors.New("slot already booked")
var ErrUserNotFound = errors.New("user not found")
var ErrSessionNotFound = errors.New("session not found")
var ErrInvalidLogin = errors.New("invalid login payload")
var ErrForbidden = errors.New("access forbidden")

// ValidRole reports whether role is one of the roles the system knows about.
func ValidRole(role string) bool {
	return role == RolePatient || role == RoleAdmin
}

// User models an authenticated actor. Users are upserted by email on login and
// never deleted.
type User struct {
	ID        string    `json:"id" bson:"_id"`
	Email     string    `json:"email" bson:"email"`
	FirstName string    `json:"first_name" bson:"first_name"`
	LastName  string    `json:"last_name" bson:"last_name"`
	Role      string    `json:"role" bson:"role"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time `json:"updated_at" bson:"updated_at"`
}

// Slot is an immutable 30-minute time range [StartAt, EndAt) eligible for
// booking. Slots are created at seed time only.
type Slot struct {
	ID        string    `json:"id" bson:"_id"`
	StartAt   time.Time `json:"start_at" bson:"start_at"`
	EndAt     time.Time `json:"end_at" bson:"end_at"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
}

// Booking is a claim by one user on exactly one slot. At most one booking may
// reference a slot; the entity store enforces this with a uniqueness
// constraint on SlotID.
type Booking struct {
	ID        string    `json:"id" bson:"_id"`
	UserID    string    `json:"user_id" bson:"user_id"`
	SlotID    string    `json:"slot_id" bson:"slot_id"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
}

// SlotWithBooking pairs a slot with its booking, if any. Availability is
// derived: the slot is free iff Booking is nil. Booked slots are still
// returned so callers can render them as taken rather than absent.
type SlotWithBooking struct {
	Slot
	Booking *Booking `json:"booking,omitempty"`
}

// BookingDetail is the read model for booking listings: the booking joined
// with its user and slot.
type BookingDetail struct {
	Booking
	User User `json:"user"`
	Slot Slot `json:"slot"`
}

package ports

import (
	"context"
	"time"

	"github.com/clinicdesk/booking-system/internal/core/domain"
)

// BookingStats is the aggregate view served to the admin dashboard.
type BookingStats struct {
	TotalBookings  int `json:"total_bookings"`
	TodayBookings  int `json:"today_bookings"`
	WeekBookings   int `json:"week_bookings"`
	UniquePatients int `json:"unique_patients"`
}

// BookingService defines the booking ledger use-cases.
type BookingService interface {
	// AttemptBooking claims slotID for userID. It fails with
	// domain.ErrSlotNotFound when the slot does not exist and with
	// domain.ErrSlotAlreadyBooked when another booking already references the
	// slot. A conflict is terminal for the request; there are no retries.
	AttemptBooking(ctx context.Context, userID, slotID string) (*domain.Booking, error)

	// ListAvailability returns every slot with start_at in [from, to], each
	// paired with its booking when one exists, ascending by start_at.
	ListAvailability(ctx context.Context, from, to time.Time) ([]domain.SlotWithBooking, error)

	// ListUserBookings returns the user's bookings with details, newest first.
	ListUserBookings(ctx context.Context, userID string) ([]domain.BookingDetail, error)

	// ListAllBookings returns every booking with details, newest first. The
	// caller must already be authorized as admin; role enforcement lives at
	// the HTTP boundary.
	ListAllBookings(ctx context.Context) ([]domain.BookingDetail, error)

	// Stats aggregates booking counts for the admin dashboard.
	Stats(ctx context.Context) (*BookingStats, error)
}

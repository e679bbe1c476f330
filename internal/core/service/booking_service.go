package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/clinicdesk/booking-system/internal/api/metrics"
	"github.com/clinicdesk/booking-system/internal/core/domain"
	"github.com/clinicdesk/booking-system/internal/core/ports"
)

// BookingService is the booking ledger: it arbitrates booking conflicts and
// serves the availability and listing read models.
type BookingService struct {
	store  ports.Store
	logger zerolog.Logger
	now    func() time.Time
}

func NewBookingService(store ports.Store, logger zerolog.Logger) *BookingService {
	return &BookingService{
		store:  store,
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// AttemptBooking claims slotID for userID. The existence check and the insert
// are not a transaction here: the store's uniqueness guarantee on slot_id is
// what makes concurrent attempts safe, so two racing callers both reach
// Create and exactly one wins. A conflict is terminal for the request.
func (s *BookingService) AttemptBooking(ctx context.Context, userID, slotID string) (*domain.Booking, error) {
	if _, err := s.store.Slots().Get(ctx, slotID); err != nil {
		if errors.Is(err, domain.ErrSlotNotFound) {
			metrics.BookingAttemptsFailedTotal.WithLabelValues("slot_not_found").Inc()
		}
		return nil, err
	}

	booking := &domain.Booking{
		ID:        uuid.NewString(),
		UserID:    userID,
		SlotID:    slotID,
		CreatedAt: s.now(),
	}

	if err := s.store.Bookings().Create(ctx, booking); err != nil {
		if errors.Is(err, domain.ErrSlotAlreadyBooked) {
			metrics.BookingAttemptsFailedTotal.WithLabelValues("already_booked").Inc()
			s.logger.Info().Str("slot_id", slotID).Str("user_id", userID).Msg("booking conflict")
			return nil, err
		}
		s.logger.Error().Err(err).Str("slot_id", slotID).Msg("failed to create booking")
		return nil, err
	}

	metrics.BookingsCreatedTotal.Inc()
	s.logger.Info().
		Str("booking_id", booking.ID).
		Str("slot_id", slotID).
		Str("user_id", userID).
		Msg("booking created")

	return booking, nil
}

// ListAvailability returns every slot with start_at in [from, to] paired with
// its booking when one exists, ascending by start_at. Booked slots are not
// filtered out; the caller renders them as taken.
func (s *BookingService) ListAvailability(ctx context.Context, from, to time.Time) ([]domain.SlotWithBooking, error) {
	timer := prometheus.NewTimer(metrics.AvailabilityQueryDuration)
	defer timer.ObserveDuration()

	slots, err := s.store.Slots().ListWindow(ctx, from, to)
	if err != nil {
		return nil, err
	}

	slotIDs := make([]string, len(slots))
	for i, slot := range slots {
		slotIDs[i] = slot.ID
	}

	bookings, err := s.store.Bookings().FindBySlotIDs(ctx, slotIDs)
	if err != nil {
		return nil, err
	}

	out := make([]domain.SlotWithBooking, len(slots))
	for i, slot := range slots {
		out[i] = domain.SlotWithBooking{Slot: slot}
		if b, ok := bookings[slot.ID]; ok {
			booked := b
			out[i].Booking = &booked
		}
	}
	return out, nil
}

func (s *BookingService) ListUserBookings(ctx context.Context, userID string) ([]domain.BookingDetail, error) {
	return s.store.Bookings().ListByUser(ctx, userID)
}

func (s *BookingService) ListAllBookings(ctx context.Context) ([]domain.BookingDetail, error) {
	return s.store.Bookings().ListAll(ctx)
}

// Stats aggregates booking counts for the admin dashboard. "Today" and "this
// week" bucket bookings by their slot's start time; the week starts Monday
// 00:00 UTC.
func (s *BookingService) Stats(ctx context.Context) (*ports.BookingStats, error) {
	all, err := s.store.Bookings().ListAll(ctx)
	if err != nil {
		return nil, err
	}

	now := s.now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	tomorrow := today.AddDate(0, 0, 1)

	offset := int(today.Weekday()) - 1
	if offset < 0 {
		offset = 6 // Sunday
	}
	weekStart := today.AddDate(0, 0, -offset)
	weekEnd := weekStart.AddDate(0, 0, 7)

	stats := &ports.BookingStats{TotalBookings: len(all)}
	patients := make(map[string]struct{})
	for _, detail := range all {
		start := detail.Slot.StartAt
		if !start.Before(today) && start.Before(tomorrow) {
			stats.TodayBookings++
		}
		if !start.Before(weekStart) && start.Before(weekEnd) {
			stats.WeekBookings++
		}
		patients[detail.UserID] = struct{}{}
	}
	stats.UniquePatients = len(patients)

	return stats, nil
}

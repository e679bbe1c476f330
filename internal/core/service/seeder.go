package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/clinicdesk/booking-system/internal/api/metrics"
	"github.com/clinicdesk/booking-system/internal/core/domain"
	"github.com/clinicdesk/booking-system/internal/core/ports"
)

// Clinic hours: slots run 09:00–17:00 UTC, weekdays only.
const (
	seedHorizonDays = 7
	openingHour     = 9
	closingHour     = 17
)

const adminEmail = "admin@clinic.com"

// Seeder performs the one-shot startup seed: the bootstrap admin user and the
// rolling 7-day slot horizon. Not part of the request hot path.
type Seeder struct {
	store  ports.Store
	logger zerolog.Logger
	now    func() time.Time
}

func NewSeeder(store ports.Store, logger zerolog.Logger) *Seeder {
	return &Seeder{
		store:  store,
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// Run seeds the admin user and, when the window holds no slots yet, generates
// one slot per 30-minute boundary between opening and closing for each weekday
// in the next 7 days. Re-running over an already seeded window is a no-op, so
// restarts never create duplicates.
func (s *Seeder) Run(ctx context.Context) error {
	now := s.now()
	if _, err := s.store.Users().Upsert(ctx, &domain.User{
		ID:        uuid.NewString(),
		Email:     adminEmail,
		FirstName: "Admin",
		LastName:  "User",
		Role:      domain.RoleAdmin,
		CreatedAt: now,
		UpdatedAt: now,
	}); err != nil {
		return fmt.Errorf("seed admin user: %w", err)
	}

	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	windowEnd := today.AddDate(0, 0, seedHorizonDays)

	existing, err := s.store.Slots().ListWindow(ctx, today, windowEnd)
	if err != nil {
		return fmt.Errorf("seed: query existing slots: %w", err)
	}
	if len(existing) > 0 {
		s.logger.Info().Int("slots", len(existing)).Msg("slot window already seeded")
		return nil
	}

	created := 0
	for day := 0; day < seedHorizonDays; day++ {
		date := today.AddDate(0, 0, day)
		if wd := date.Weekday(); wd == time.Saturday || wd == time.Sunday {
			continue
		}
		for hour := openingHour; hour < closingHour; hour++ {
			for _, minute := range []int{0, 30} {
				startAt := time.Date(date.Year(), date.Month(), date.Day(), hour, minute, 0, 0, time.UTC)
				slot := &domain.Slot{
					ID:        uuid.NewString(),
					StartAt:   startAt,
					EndAt:     startAt.Add(domain.SlotDuration),
					CreatedAt: now,
				}
				if err := s.store.Slots().Create(ctx, slot); err != nil {
					return fmt.Errorf("seed: create slot at %s: %w", startAt, err)
				}
				created++
			}
		}
	}

	metrics.SlotsSeededTotal.Add(float64(created))
	s.logger.Info().Int("slots", created).Time("window_start", today).Msg("appointment slots generated")
	return nil
}

// Package postgres implements ports.Store on PostgreSQL via pgx. The UNIQUE
// constraint on bookings.slot_id makes the booking insert atomic across
// processes; a violation surfaces as the domain conflict error.
package postgres

import (
	"context"
	_ "embed"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/clinicdesk/booking-system/internal/core/ports"
)

//go:embed schema.sql
var schema string

// Store implements ports.Store on a pgx connection pool.
type Store struct {
	pool *pgxpool.Pool
}

// Connect opens a pool, verifies connectivity, and applies the embedded
// schema (idempotent: IF NOT EXISTS throughout).
func Connect(ctx context.Context, url string) (*Store, error) {
	pool, err := pgxpool.New(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("postgres connect: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres ping: %w", err)
	}
	if _, err := pool.Exec(ctx, schema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return &Store{pool: pool}, nil
}

func (s *Store) Users() ports.UserRepository       { return &userRepo{pool: s.pool} }
func (s *Store) Slots() ports.SlotRepository       { return &slotRepo{pool: s.pool} }
func (s *Store) Bookings() ports.BookingRepository { return &bookingRepo{pool: s.pool} }

func (s *Store) Ping(ctx context.Context) error { return s.pool.Ping(ctx) }

func (s *Store) Close() { s.pool.Close() }

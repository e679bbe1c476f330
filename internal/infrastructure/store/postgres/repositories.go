package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/clinicdesk/booking-system/internal/core/domain"
)

const uniqueViolation = "23505"

// --- users ---

type userRepo struct {
	pool *pgxpool.Pool
}

func (r *userRepo) Get(ctx context.Context, id string) (*domain.User, error) {
	u := &domain.User{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, email, first_name, last_name, role, created_at, updated_at
		 FROM users WHERE id = $1`, id,
	).Scan(&u.ID, &u.Email, &u.FirstName, &u.LastName, &u.Role, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	return u, nil
}

func (r *userRepo) Upsert(ctx context.Context, user *domain.User) (*domain.User, error) {
	stored := &domain.User{}
	err := r.pool.QueryRow(ctx,
		`INSERT INTO users (id, email, first_name, last_name, role, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 ON CONFLICT (email) DO UPDATE
		 SET first_name = EXCLUDED.first_name,
		     last_name  = EXCLUDED.last_name,
		     role       = EXCLUDED.role,
		     updated_at = EXCLUDED.updated_at
		 RETURNING id, email, first_name, last_name, role, created_at, updated_at`,
		user.ID, user.Email, user.FirstName, user.LastName, user.Role, user.CreatedAt, user.UpdatedAt,
	).Scan(&stored.ID, &stored.Email, &stored.FirstName, &stored.LastName, &stored.Role, &stored.CreatedAt, &stored.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("upsert user: %w", err)
	}
	return stored, nil
}

// --- slots ---

type slotRepo struct {
	pool *pgxpool.Pool
}

func (r *slotRepo) Create(ctx context.Context, slot *domain.Slot) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO slots (id, start_at, end_at, created_at) VALUES ($1, $2, $3, $4)`,
		slot.ID, slot.StartAt, slot.EndAt, slot.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert slot: %w", err)
	}
	return nil
}

func (r *slotRepo) Get(ctx context.Context, id string) (*domain.Slot, error) {
	s := &domain.Slot{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, start_at, end_at, created_at FROM slots WHERE id = $1`, id,
	).Scan(&s.ID, &s.StartAt, &s.EndAt, &s.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrSlotNotFound
		}
		return nil, fmt.Errorf("find slot: %w", err)
	}
	return s, nil
}

func (r *slotRepo) ListWindow(ctx context.Context, from, to time.Time) ([]domain.Slot, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, start_at, end_at, created_at
		 FROM slots
		 WHERE start_at >= $1 AND start_at <= $2
		 ORDER BY start_at`, from, to,
	)
	if err != nil {
		return nil, fmt.Errorf("list slots: %w", err)
	}
	defer rows.Close()

	var out []domain.Slot
	for rows.Next() {
		var s domain.Slot
		if err := rows.Scan(&s.ID, &s.StartAt, &s.EndAt, &s.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan slot: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// --- bookings ---

type bookingRepo struct {
	pool *pgxpool.Pool
}

// Create inserts the booking; the UNIQUE constraint on slot_id turns a racing
// second insert into a 23505, mapped to the domain conflict.
func (r *bookingRepo) Create(ctx context.Context, booking *domain.Booking) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO bookings (id, user_id, slot_id, created_at) VALUES ($1, $2, $3, $4)`,
		booking.ID, booking.UserID, booking.SlotID, booking.CreatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return domain.ErrSlotAlreadyBooked
		}
		return fmt.Errorf("insert booking: %w", err)
	}
	return nil
}

func (r *bookingRepo) FindBySlotIDs(ctx context.Context, slotIDs []string) (map[string]domain.Booking, error) {
	out := make(map[string]domain.Booking)
	if len(slotIDs) == 0 {
		return out, nil
	}

	rows, err := r.pool.Query(ctx,
		`SELECT id, user_id, slot_id, created_at FROM bookings WHERE slot_id = ANY($1)`,
		slotIDs,
	)
	if err != nil {
		return nil, fmt.Errorf("find bookings by slot: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var b domain.Booking
		if err := rows.Scan(&b.ID, &b.UserID, &b.SlotID, &b.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan booking: %w", err)
		}
		out[b.SlotID] = b
	}
	return out, rows.Err()
}

func (r *bookingRepo) ListByUser(ctx context.Context, userID string) ([]domain.BookingDetail, error) {
	return r.listDetails(ctx, `WHERE b.user_id = $1`, userID)
}

func (r *bookingRepo) ListAll(ctx context.Context) ([]domain.BookingDetail, error) {
	return r.listDetails(ctx, ``)
}

func (r *bookingRepo) listDetails(ctx context.Context, where string, args ...any) ([]domain.BookingDetail, error) {
	q := `SELECT b.id, b.user_id, b.slot_id, b.created_at,
	             u.id, u.email, u.first_name, u.last_name, u.role, u.created_at, u.updated_at,
	             s.id, s.start_at, s.end_at, s.created_at
	      FROM bookings b
	      JOIN users u ON u.id = b.user_id
	      JOIN slots s ON s.id = b.slot_id `
	q += where + ` ORDER BY b.created_at DESC`

	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("list bookings: %w", err)
	}
	defer rows.Close()

	out := []domain.BookingDetail{}
	for rows.Next() {
		var d domain.BookingDetail
		err := rows.Scan(
			&d.ID, &d.UserID, &d.SlotID, &d.CreatedAt,
			&d.User.ID, &d.User.Email, &d.User.FirstName, &d.User.LastName,
			&d.User.Role, &d.User.CreatedAt, &d.User.UpdatedAt,
			&d.Slot.ID, &d.Slot.StartAt, &d.Slot.EndAt, &d.Slot.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan booking detail: %w", err)
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

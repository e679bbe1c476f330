package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/clinicdesk/booking-system/internal/core/domain"
	"github.com/clinicdesk/booking-system/internal/core/ports"
)

type stubBookingService struct {
	attemptFn      func(ctx context.Context, userID, slotID string) (*domain.Booking, error)
	availabilityFn func(ctx context.Context, from, to time.Time) ([]domain.SlotWithBooking, error)
	userBookingsFn func(ctx context.Context, userID string) ([]domain.BookingDetail, error)
	allBookingsFn  func(ctx context.Context) ([]domain.BookingDetail, error)
	statsFn        func(ctx context.Context) (*ports.BookingStats, error)
}

func (s *stubBookingService) AttemptBooking(ctx context.Context, userID, slotID string) (*domain.Booking, error) {
	return s.attemptFn(ctx, userID, slotID)
}

func (s *stubBookingService) ListAvailability(ctx context.Context, from, to time.Time) ([]domain.SlotWithBooking, error) {
	return s.availabilityFn(ctx, from, to)
}

func (s *stubBookingService) ListUserBookings(ctx context.Context, userID string) ([]domain.BookingDetail, error) {
	return s.userBookingsFn(ctx, userID)
}

func (s *stubBookingService) ListAllBookings(ctx context.Context) ([]domain.BookingDetail, error) {
	return s.allBookingsFn(ctx)
}

func (s *stubBookingService) Stats(ctx context.Context) (*ports.BookingStats, error) {
	return s.statsFn(ctx)
}

func TestBookingHandler_Slots_WindowIsSevenDaysFromMidnight(t *testing.T) {
	e := newTestEcho()

	var gotFrom, gotTo time.Time
	stub := &stubBookingService{
		availabilityFn: func(ctx context.Context, from, to time.Time) ([]domain.SlotWithBooking, error) {
			gotFrom, gotTo = from, to
			return []domain.SlotWithBooking{}, nil
		},
	}
	handler := NewBookingHandler(stub)
	handler.now = func() time.Time {
		return time.Date(2024, 6, 5, 14, 23, 0, 0, time.UTC)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/slots", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := handler.Slots(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	wantFrom := time.Date(2024, 6, 5, 0, 0, 0, 0, time.UTC)
	if !gotFrom.Equal(wantFrom) {
		t.Fatalf("expected window start %v, got %v", wantFrom, gotFrom)
	}
	if !gotTo.Equal(wantFrom.Add(7 * 24 * time.Hour)) {
		t.Fatalf("expected seven-day window, got end %v", gotTo)
	}
}

func TestBookingHandler_Book_Success(t *testing.T) {
	e := newTestEcho()
	stub := &stubBookingService{
		attemptFn: func(ctx context.Context, userID, slotID string) (*domain.Booking, error) {
			if userID != "u1" || slotID != "s1" {
				t.Fatalf("unexpected args: %s %s", userID, slotID)
			}
			return &domain.Booking{ID: "b1", UserID: userID, SlotID: slotID}, nil
		},
	}
	handler := NewBookingHandler(stub)

	req := httptest.NewRequest(http.MethodPost, "/api/book", strings.NewReader(`{"slot_id":"s1"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set("user_id", "u1")
	c.Set("role", "patient")

	if err := handler.Book(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}

	var booking domain.Booking
	if err := json.Unmarshal(rec.Body.Bytes(), &booking); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if booking.ID != "b1" || booking.SlotID != "s1" {
		t.Fatalf("unexpected booking payload: %+v", booking)
	}
}

func TestBookingHandler_Book_MissingSlotID(t *testing.T) {
	e := newTestEcho()
	stub := &stubBookingService{
		attemptFn: func(ctx context.Context, userID, slotID string) (*domain.Booking, error) {
			t.Fatalf("should not be called")
			return nil, nil
		},
	}
	handler := NewBookingHandler(stub)

	req := httptest.NewRequest(http.MethodPost, "/api/book", strings.NewReader(`{}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set("user_id", "u1")
	c.Set("role", "patient")

	if err := handler.Book(c); err != nil {
		e.HTTPErrorHandler(err, c)
	}
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestBookingHandler_Book_Unauthenticated(t *testing.T) {
	e := newTestEcho()
	stub := &stubBookingService{
		attemptFn: func(ctx context.Context, userID, slotID string) (*domain.Booking, error) {
			t.Fatalf("should not be called")
			return nil, nil
		},
	}
	handler := NewBookingHandler(stub)

	req := httptest.NewRequest(http.MethodPost, "/api/book", strings.NewReader(`{"slot_id":"s1"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := handler.Book(c); err != nil {
		e.HTTPErrorHandler(err, c)
	}
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestBookingHandler_MyBookings(t *testing.T) {
	e := newTestEcho()
	stub := &stubBookingService{
		userBookingsFn: func(ctx context.Context, userID string) ([]domain.BookingDetail, error) {
			if userID != "u1" {
				t.Fatalf("unexpected user id: %s", userID)
			}
			return []domain.BookingDetail{
				{Booking: domain.Booking{ID: "b2"}},
				{Booking: domain.Booking{ID: "b1"}},
			}, nil
		},
	}
	handler := NewBookingHandler(stub)

	req := httptest.NewRequest(http.MethodGet, "/api/my-bookings", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set("user_id", "u1")
	c.Set("role", "patient")

	if err := handler.MyBookings(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp map[string][]domain.BookingDetail
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if len(resp["bookings"]) != 2 || resp["bookings"][0].ID != "b2" {
		t.Fatalf("unexpected bookings payload: %+v", resp)
	}
}

func TestBookingHandler_Stats(t *testing.T) {
	e := newTestEcho()
	stub := &stubBookingService{
		statsFn: func(ctx context.Context) (*ports.BookingStats, error) {
			return &ports.BookingStats{TotalBookings: 4, TodayBookings: 2, WeekBookings: 3, UniquePatients: 2}, nil
		},
	}
	handler := NewBookingHandler(stub)

	req := httptest.NewRequest(http.MethodGet, "/api/stats", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := handler.Stats(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var stats ports.BookingStats
	if err := json.Unmarshal(rec.Body.Bytes(), &stats); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if stats.TotalBookings != 4 || stats.UniquePatients != 2 {
		t.Fatalf("unexpected stats payload: %+v", stats)
	}
}

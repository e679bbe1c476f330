package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/clinicdesk/booking-system/internal/core/ports"
)

// availabilityHorizon is how far ahead the public calendar reaches.
const availabilityHorizon = 7 * 24 * time.Hour

// BookingHandler handles the calendar, booking attempts and the admin views.
type BookingHandler struct {
	service ports.BookingService
	now     func() time.Time
}

func NewBookingHandler(service ports.BookingService) *BookingHandler {
	return &BookingHandler{
		service: service,
		now:     time.Now,
	}
}

// window returns the rolling availability window, anchored at midnight UTC of
// the current day so the whole of today stays visible.
func (h *BookingHandler) window() (time.Time, time.Time) {
	now := h.now().UTC()
	from := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	return from, from.Add(availabilityHorizon)
}

// Slots returns every slot in the upcoming window with its booking state.
//
// @Summary      Slot availability for the next seven days
// @Tags         bookings
// @Produce      json
// @Success      200  {object}  slotsResponse
// @Failure      500  {object}  map[string]string
// @Router       /api/slots [get]
func (h *BookingHandler) Slots(c echo.Context) error {
	from, to := h.window()
	slots, err := h.service.ListAvailability(c.Request().Context(), from, to)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, slotsResponse{Slots: slots})
}

// Book attempts to claim a slot for the authenticated user.
//
// @Summary      Book a slot
// @Tags         bookings
// @Accept       json
// @Produce      json
// @Param        body  body      bookRequest  true  "Slot to book"
// @Success      201   {object}  domain.Booking
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Failure      404   {object}  map[string]string
// @Failure      409   {object}  map[string]string
// @Failure      429   {object}  map[string]string
// @Router       /api/book [post]
func (h *BookingHandler) Book(c echo.Context) error {
	userID, _, err := ctxIdentity(c)
	if err != nil {
		return err
	}

	var req bookRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	booking, err := h.service.AttemptBooking(c.Request().Context(), userID, req.SlotID)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, booking)
}

// MyBookings lists the authenticated user's bookings, newest first.
//
// @Summary      My bookings
// @Tags         bookings
// @Produce      json
// @Success      200  {object}  bookingsResponse
// @Failure      401  {object}  map[string]string
// @Router       /api/my-bookings [get]
func (h *BookingHandler) MyBookings(c echo.Context) error {
	userID, _, err := ctxIdentity(c)
	if err != nil {
		return err
	}

	bookings, err := h.service.ListUserBookings(c.Request().Context(), userID)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, bookingsResponse{Bookings: bookings})
}

// AllBookings lists every booking in the system, newest first. Admin only.
//
// @Summary      All bookings (admin)
// @Tags         admin
// @Produce      json
// @Success      200  {object}  bookingsResponse
// @Failure      401  {object}  map[string]string
// @Failure      403  {object}  map[string]string
// @Router       /api/all-bookings [get]
func (h *BookingHandler) AllBookings(c echo.Context) error {
	bookings, err := h.service.ListAllBookings(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, bookingsResponse{Bookings: bookings})
}

// Stats returns booking aggregates for the admin dashboard.
//
// @Summary      Booking statistics (admin)
// @Tags         admin
// @Produce      json
// @Success      200  {object}  ports.BookingStats
// @Failure      401  {object}  map[string]string
// @Failure      403  {object}  map[string]string
// @Router       /api/stats [get]
func (h *BookingHandler) Stats(c echo.Context) error {
	stats, err := h.service.Stats(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, stats)
}

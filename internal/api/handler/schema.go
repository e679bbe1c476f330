package handler

import "github.com/clinicdesk/booking-system/internal/core/domain"

// --- Request types ---

type loginRequest struct {
	Email     string `json:"email" validate:"required,email"`
	FirstName string `json:"first_name" validate:"omitempty,max=100"`
	LastName  string `json:"last_name" validate:"omitempty,max=100"`
	Role      string `json:"role" validate:"omitempty,oneof=patient admin"`
}

type bookRequest struct {
	SlotID string `json:"slot_id" validate:"required"`
}

// --- Response types ---

type messageResponse struct {
	Message string `json:"message"`
}

type loginResponse struct {
	User *domain.User `json:"user"`
}

type slotsResponse struct {
	Slots []domain.SlotWithBooking `json:"slots"`
}

type bookingsResponse struct {
	Bookings []domain.BookingDetail `json:"bookings"`
}

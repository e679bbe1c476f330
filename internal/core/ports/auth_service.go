package ports

import (
	"context"

	"github.com/clinicdesk/booking-system/internal/core/domain"
)

// LoginInput carries the mock-identity login payload. Email is the upsert key;
// Role defaults to patient when empty.
type LoginInput struct {
	Email     string
	FirstName string
	LastName  string
	Role      string
}

// AuthService implements the mocked identity flow: login upserts the user and
// establishes a server-side session, returned to the transport layer as a
// signed token for the session cookie.
type AuthService interface {
	Login(ctx context.Context, input LoginInput) (*domain.User, string, error)
	Logout(ctx context.Context, sessionID string) error
	CurrentUser(ctx context.Context, userID string) (*domain.User, error)
}

package service

import (
	"context"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/clinicdesk/booking-system/internal/api/metrics"
	"github.com/clinicdesk/booking-system/internal/core/domain"
	"github.com/clinicdesk/booking-system/internal/core/ports"
)

const defaultSessionTTL = 7 * 24 * time.Hour

// AuthService implements the mocked identity flow: login upserts a user by
// email and issues a server-side session. The session id travels in an HS256
// token so the cookie is tamper-proof while the session stays revocable.
type AuthService struct {
	users      ports.UserRepository
	sessions   ports.SessionStore
	secret     string
	sessionTTL time.Duration
	logger     zerolog.Logger
}

func NewAuthService(users ports.UserRepository, sessions ports.SessionStore, secret string, sessionTTL time.Duration, logger zerolog.Logger) *AuthService {
	if sessionTTL <= 0 {
		sessionTTL = defaultSessionTTL
	}
	return &AuthService{
		users:      users,
		sessions:   sessions,
		secret:     secret,
		sessionTTL: sessionTTL,
		logger:     logger,
	}
}

// Login upserts the user identified by email and establishes a session.
// Returns the stored user and the signed session token for the cookie.
func (s *AuthService) Login(ctx context.Context, input ports.LoginInput) (*domain.User, string, error) {
	if input.Email == "" {
		return nil, "", domain.ErrInvalidLogin
	}
	role := input.Role
	if role == "" {
		role = domain.RolePatient
	}
	if !domain.ValidRole(role) {
		return nil, "", domain.ErrInvalidLogin
	}

	firstName := input.FirstName
	if firstName == "" {
		firstName, _, _ = strings.Cut(input.Email, "@")
	}
	lastName := input.LastName
	if lastName == "" {
		lastName = "User"
	}

	now := time.Now().UTC()
	user, err := s.users.Upsert(ctx, &domain.User{
		ID:        uuid.NewString(),
		Email:     input.Email,
		FirstName: firstName,
		LastName:  lastName,
		Role:      role,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		s.logger.Error().Err(err).Str("email", input.Email).Msg("user upsert failed")
		return nil, "", err
	}

	sessionID := uuid.NewString()
	session := ports.Session{UserID: user.ID, Role: user.Role}
	if err := s.sessions.Put(ctx, sessionID, session, s.sessionTTL); err != nil {
		s.logger.Error().Err(err).Msg("failed to store session")
		return nil, "", err
	}

	token, err := s.signSessionToken(sessionID)
	if err != nil {
		return nil, "", err
	}

	metrics.LoginsTotal.WithLabelValues(user.Role).Inc()
	s.logger.Info().Str("user_id", user.ID).Str("role", user.Role).Msg("user logged in")

	return user, token, nil
}

// Logout revokes the session. Unknown session ids are not an error.
func (s *AuthService) Logout(ctx context.Context, sessionID string) error {
	return s.sessions.Delete(ctx, sessionID)
}

func (s *AuthService) CurrentUser(ctx context.Context, userID string) (*domain.User, error) {
	return s.users.Get(ctx, userID)
}

func (s *AuthService) signSessionToken(sessionID string) (string, error) {
	claims := jwt.MapClaims{
		"sid": sessionID,
		"exp": time.Now().Add(s.sessionTTL).Unix(),
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString([]byte(s.secret))
}

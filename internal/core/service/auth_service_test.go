package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/clinicdesk/booking-system/internal/core/domain"
	"github.com/clinicdesk/booking-system/internal/core/ports"
	"github.com/clinicdesk/booking-system/internal/infrastructure/session"
	"github.com/clinicdesk/booking-system/internal/infrastructure/store/memory"
)

const testSecret = "test-secret"

func newAuthFixture(t *testing.T) (*AuthService, *memory.Store, *session.MemoryStore) {
	t.Helper()
	store := memory.New()
	sessions := session.NewMemoryStore()
	svc := NewAuthService(store.Users(), sessions, testSecret, time.Hour, discardLogger)
	return svc, store, sessions
}

// sessionIDFromToken extracts the sid claim the way the auth middleware does.
func sessionIDFromToken(t *testing.T, token string) string {
	t.Helper()
	claims := jwt.MapClaims{}
	tkn, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (interface{}, error) {
		return []byte(testSecret), nil
	})
	if err != nil || !tkn.Valid {
		t.Fatalf("invalid session token: %v", err)
	}
	sid, _ := claims["sid"].(string)
	if sid == "" {
		t.Fatal("token missing sid claim")
	}
	return sid
}

func TestAuthService_Login_CreatesUserAndSession(t *testing.T) {
	svc, _, sessions := newAuthFixture(t)

	user, token, err := svc.Login(context.Background(), ports.LoginInput{Email: "jane@example.com"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if user.Role != domain.RolePatient {
		t.Errorf("role should default to patient, got %q", user.Role)
	}
	if user.FirstName != "jane" {
		t.Errorf("first name should default to email local part, got %q", user.FirstName)
	}
	if user.LastName != "User" {
		t.Errorf("last name default wrong: %q", user.LastName)
	}

	sid := sessionIDFromToken(t, token)
	sess, err := sessions.Get(context.Background(), sid)
	if err != nil {
		t.Fatalf("session not stored: %v", err)
	}
	if sess.UserID != user.ID || sess.Role != user.Role {
		t.Errorf("session payload wrong: %+v", sess)
	}
}

func TestAuthService_Login_UpsertsByEmail(t *testing.T) {
	svc, _, _ := newAuthFixture(t)

	first, _, err := svc.Login(context.Background(), ports.LoginInput{Email: "jane@example.com"})
	if err != nil {
		t.Fatalf("first login: %v", err)
	}

	second, _, err := svc.Login(context.Background(), ports.LoginInput{
		Email:     "jane@example.com",
		FirstName: "Jane",
		LastName:  "Doe",
		Role:      domain.RoleAdmin,
	})
	if err != nil {
		t.Fatalf("second login: %v", err)
	}

	if second.ID != first.ID {
		t.Errorf("re-login must keep the user id: %s vs %s", second.ID, first.ID)
	}
	if second.FirstName != "Jane" || second.LastName != "Doe" {
		t.Errorf("names not updated: %s %s", second.FirstName, second.LastName)
	}
	if second.Role != domain.RoleAdmin {
		t.Errorf("role not updated: %s", second.Role)
	}
}

func TestAuthService_Login_MissingEmail(t *testing.T) {
	svc, _, _ := newAuthFixture(t)
	if _, _, err := svc.Login(context.Background(), ports.LoginInput{}); !errors.Is(err, domain.ErrInvalidLogin) {
		t.Fatalf("expected ErrInvalidLogin, got %v", err)
	}
}

func TestAuthService_Login_UnknownRole(t *testing.T) {
	svc, _, _ := newAuthFixture(t)
	input := ports.LoginInput{Email: "jane@example.com", Role: "superuser"}
	if _, _, err := svc.Login(context.Background(), input); !errors.Is(err, domain.ErrInvalidLogin) {
		t.Fatalf("expected ErrInvalidLogin, got %v", err)
	}
}

func TestAuthService_Logout_RevokesSession(t *testing.T) {
	svc, _, sessions := newAuthFixture(t)

	_, token, err := svc.Login(context.Background(), ports.LoginInput{Email: "jane@example.com"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	sid := sessionIDFromToken(t, token)

	if err := svc.Logout(context.Background(), sid); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if _, err := sessions.Get(context.Background(), sid); !errors.Is(err, domain.ErrSessionNotFound) {
		t.Fatalf("session should be gone, got %v", err)
	}
}

func TestAuthService_CurrentUser(t *testing.T) {
	svc, _, _ := newAuthFixture(t)

	user, _, err := svc.Login(context.Background(), ports.LoginInput{Email: "jane@example.com"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	got, err := svc.CurrentUser(context.Background(), user.ID)
	if err != nil {
		t.Fatalf("current user: %v", err)
	}
	if got.Email != "jane@example.com" {
		t.Errorf("unexpected user: %+v", got)
	}

	if _, err := svc.CurrentUser(context.Background(), "missing"); !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

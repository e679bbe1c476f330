package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"

	"github.com/clinicdesk/booking-system/internal/core/ports"
	"github.com/clinicdesk/booking-system/internal/infrastructure/session"
)

const testSecret = "secret"

func signedToken(t *testing.T, sessionID string) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sid": sessionID,
		"exp": time.Now().Add(time.Hour).Unix(),
	})
	signed, err := token.SignedString([]byte(testSecret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return signed
}

func requestWithCookie(token string) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if token != "" {
		req.AddCookie(&http.Cookie{Name: SessionCookie, Value: token})
	}
	return req
}

func TestSessionMiddleware_ValidCookie(t *testing.T) {
	e := echo.New()
	sessions := session.NewMemoryStore()
	if err := sessions.Put(context.Background(), "sid-1", ports.Session{UserID: "u1", Role: "patient"}, time.Hour); err != nil {
		t.Fatalf("put session: %v", err)
	}

	rec := httptest.NewRecorder()
	c := e.NewContext(requestWithCookie(signedToken(t, "sid-1")), rec)

	called := false
	mw := Session(testSecret, sessions)
	handler := mw(func(c echo.Context) error {
		called = true
		if c.Get("user_id") != "u1" {
			t.Fatalf("user_id not set")
		}
		if c.Get("role") != "patient" {
			t.Fatalf("role not set")
		}
		if c.Get("session_id") != "sid-1" {
			t.Fatalf("session_id not set")
		}
		return c.NoContent(http.StatusOK)
	})

	if err := handler(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if !called {
		t.Fatalf("next not called")
	}
}

func TestSessionMiddleware_MissingCookie(t *testing.T) {
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(requestWithCookie(""), rec)

	mw := Session(testSecret, session.NewMemoryStore())
	handler := mw(func(c echo.Context) error {
		t.Fatalf("should not reach next")
		return nil
	})

	if err := handler(c); err != nil {
		e.HTTPErrorHandler(err, c)
	}
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestSessionMiddleware_TamperedToken(t *testing.T) {
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(requestWithCookie("not-a-token"), rec)

	mw := Session(testSecret, session.NewMemoryStore())
	handler := mw(func(c echo.Context) error {
		t.Fatalf("should not reach next")
		return nil
	})

	if err := handler(c); err != nil {
		e.HTTPErrorHandler(err, c)
	}
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestSessionMiddleware_RevokedSession(t *testing.T) {
	e := echo.New()
	sessions := session.NewMemoryStore()

	// Token is validly signed but the session behind it is gone.
	rec := httptest.NewRecorder()
	c := e.NewContext(requestWithCookie(signedToken(t, "revoked")), rec)

	mw := Session(testSecret, sessions)
	handler := mw(func(c echo.Context) error {
		t.Fatalf("should not reach next")
		return nil
	})

	if err := handler(c); err != nil {
		e.HTTPErrorHandler(err, c)
	}
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestSessionMiddleware_WrongSigningKey(t *testing.T) {
	e := echo.New()
	sessions := session.NewMemoryStore()
	if err := sessions.Put(context.Background(), "sid-1", ports.Session{UserID: "u1", Role: "patient"}, time.Hour); err != nil {
		t.Fatalf("put session: %v", err)
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sid": "sid-1"})
	signed, err := token.SignedString([]byte("other-secret"))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}

	rec := httptest.NewRecorder()
	c := e.NewContext(requestWithCookie(signed), rec)

	mw := Session(testSecret, sessions)
	handler := mw(func(c echo.Context) error {
		t.Fatalf("should not reach next")
		return nil
	})

	if err := handler(c); err != nil {
		e.HTTPErrorHandler(err, c)
	}
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

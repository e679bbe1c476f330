package ports

import (
	"context"
	"time"
)

// Session is the server-side state an opaque session id resolves to.
type Session struct {
	UserID string `json:"user_id"`
	Role   string `json:"role"`
}

// SessionStore maps opaque session ids to sessions. Entries expire after the
// TTL given at Put time; Get returns domain.ErrSessionNotFound for unknown or
// expired ids.
type SessionStore interface {
	Put(ctx context.Context, id string, session Session, ttl time.Duration) error
	Get(ctx context.Context, id string) (*Session, error)
	Delete(ctx context.Context, id string) error
	Ping(ctx context.Context) error
}

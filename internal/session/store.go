package session

import (
	"context"
	"errors"
	"time"
)

// Well-known value keys.
const (
	IntendedKey  = "url.intended"
	FlashError   = "flash.error"
	FlashSuccess = "flash.success"
)

var ErrNotFound = errors.New("session: not found")

// Session is a browser session. Guests have an empty UserID.
// Per-session values (login state, flashes) live beside it in the store.
type Session struct {
	SessionID string    `json:"session_id"`
	UserID    string    `json:"user_id,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Authenticated reports whether a user is logged in on this session.
func (s *Session) Authenticated() bool {
	return s != nil && s.UserID != ""
}

// Store defines how sessions and their values are stored.
// Implementations (e.g., Redis) must remain stateless and opaque.
type Store interface {
	Create(ctx context.Context, s Session) error
	// Get returns nil without an error when the session does not exist.
	Get(ctx context.Context, sessionID string) (*Session, error)
	Update(ctx context.Context, s Session) error
	// Delete removes the session and all its values.
	Delete(ctx context.Context, sessionID string) error

	// Put sets a value for the lifetime of the session. It returns
	// ErrNotFound when the session does not exist.
	Put(ctx context.Context, sessionID, key, value string) error
	// Pull reads and clears a value atomically, so a value is returned
	// at most once. Missing values come back as "".
	Pull(ctx context.Context, sessionID, key string) (string, error)
}

// Package session keeps server-side administrator sessions keyed by the
// hash of an opaque client token.
package session

import (
	"context"
	"errors"
	"time"
)

var ErrSessionNotFound = errors.New("session not found")

// Session is the server-side record of an administrator login.
type Session struct {
	AdminID   int64     `json:"admin_id"`
	LoggedIn  bool      `json:"logged_in"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Active reports whether the session is logged in and not expired at now.
func (s Session) Active(now time.Time) bool {
	return s.LoggedIn && now.Before(s.ExpiresAt)
}

// Store persists sessions under the hashed token.
type Store interface {
	Save(ctx context.Context, key string, s Session) error
	// Get returns ErrSessionNotFound for unknown keys.
	Get(ctx context.Context, key string) (Session, error)
	Delete(ctx context.Context, key string) error
	// DeleteExpired removes records that expired before now.
	DeleteExpired(ctx context.Context, now time.Time) (int, error)
}

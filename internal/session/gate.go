package session

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// DefaultTTL is the lifetime of a session created by Login.
const DefaultTTL = 24 * time.Hour

// Gate creates, checks and destroys administrator sessions. It is the only
// component that touches session state.
type Gate struct {
	store  Store
	ttl    time.Duration
	logger *zap.Logger
	now    func() time.Time
}

// NewGate creates a gate over store. A non-positive ttl selects DefaultTTL.
func NewGate(store Store, ttl time.Duration, logger *zap.Logger) *Gate {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Gate{
		store:  store,
		ttl:    ttl,
		logger: logger.Named("session"),
		now:    time.Now,
	}
}

// TTL returns the session lifetime.
func (g *Gate) TTL() time.Duration {
	return g.ttl
}

// Login starts a session for adminID and returns the plain token the client
// must present.
func (g *Gate) Login(ctx context.Context, adminID int64) (string, Session, error) {
	// Generate random token
	tokenBytes := make([]byte, 32)
	if _, err := rand.Read(tokenBytes); err != nil {
		return "", Session{}, fmt.Errorf("failed to generate session token: %w", err)
	}
	token := hex.EncodeToString(tokenBytes)

	now := g.now()
	s := Session{
		AdminID:   adminID,
		LoggedIn:  true,
		CreatedAt: now,
		ExpiresAt: now.Add(g.ttl),
	}

	if err := g.store.Save(ctx, hashToken(token), s); err != nil {
		return "", Session{}, fmt.Errorf("failed to save session: %w", err)
	}

	return token, s, nil
}

// Check returns the session for token. Unknown, expired and unreadable
// sessions all report false; expired records are removed.
func (g *Gate) Check(ctx context.Context, token string) (Session, bool) {
	if token == "" {
		return Session{}, false
	}

	key := hashToken(token)
	s, err := g.store.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, ErrSessionNotFound) {
			g.logger.Error("session lookup failed", zap.Error(err))
		}
		return Session{}, false
	}

	if !s.Active(g.now()) {
		// Clean up expired session
		if err := g.store.Delete(ctx, key); err != nil {
			g.logger.Warn("failed to delete expired session", zap.Error(err))
		}
		return Session{}, false
	}

	return s, true
}

// Logout destroys the session for token. Unknown tokens are not an error.
func (g *Gate) Logout(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	if err := g.store.Delete(ctx, hashToken(token)); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

// Sweep removes all expired sessions and returns how many were dropped.
func (g *Gate) Sweep(ctx context.Context) (int, error) {
	n, err := g.store.DeleteExpired(ctx, g.now())
	if err != nil {
		return 0, fmt.Errorf("failed to sweep sessions: %w", err)
	}
	if n > 0 {
		g.logger.Debug("expired sessions removed", zap.Int("count", n))
	}
	return n, nil
}

// hashToken creates a SHA-256 hash of the token
func hashToken(token string) string {
	hash := sha256.Sum256([]byte(token))
	return hex.EncodeToString(hash[:])
}

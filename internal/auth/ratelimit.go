package auth

import (
	"strconv"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
)

// RateLimiter throttles login attempts per client address.
type RateLimiter struct {
	mu       sync.Mutex
	attempts map[string]*attemptInfo
	// Configuration
	maxAttempts int
	window      time.Duration
	blockTime   time.Duration
	now         func() time.Time
}

type attemptInfo struct {
	count     int
	firstTry  time.Time
	blockedAt time.Time
}

// NewRateLimiter creates a new rate limiter
// maxAttempts: max login attempts within the window
// window: time window for counting attempts
// blockTime: how long to block after exceeding max attempts
func NewRateLimiter(maxAttempts int, window, blockTime time.Duration) *RateLimiter {
	return &RateLimiter{
		attempts:    make(map[string]*attemptInfo),
		maxAttempts: maxAttempts,
		window:      window,
		blockTime:   blockTime,
		now:         time.Now,
	}
}

// Allow counts an attempt for key and reports whether it may proceed.
// The zero duration is returned when allowed, otherwise the time left
// until the block lifts.
func (rl *RateLimiter) Allow(key string) (bool, time.Duration) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	info, exists := rl.attempts[key]

	if !exists {
		rl.attempts[key] = &attemptInfo{count: 1, firstTry: now}
		return true, 0
	}

	if !info.blockedAt.IsZero() {
		if left := info.blockedAt.Add(rl.blockTime).Sub(now); left > 0 {
			return false, left
		}
		// Block expired, reset
		*info = attemptInfo{count: 1, firstTry: now}
		return true, 0
	}

	if now.Sub(info.firstTry) > rl.window {
		*info = attemptInfo{count: 1, firstTry: now}
		return true, 0
	}

	info.count++
	if info.count > rl.maxAttempts {
		info.blockedAt = now
		return false, rl.blockTime
	}
	return true, 0
}

// RecordSuccess resets the attempt count for successful login
func (rl *RateLimiter) RecordSuccess(key string) {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	delete(rl.attempts, key)
}

// Sweep removes entries whose window and block have both expired and
// returns how many were dropped.
func (rl *RateLimiter) Sweep() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	n := 0
	for key, info := range rl.attempts {
		windowExpired := now.Sub(info.firstTry) > rl.window
		blockExpired := info.blockedAt.IsZero() || now.Sub(info.blockedAt) > rl.blockTime
		if windowExpired && blockExpired {
			delete(rl.attempts, key)
			n++
		}
	}
	return n
}

// Middleware rejects requests from blocked addresses through onBlocked,
// after setting the Retry-After header.
func (rl *RateLimiter) Middleware(onBlocked func(c echo.Context, retryAfter time.Duration) error) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ok, retryAfter := rl.Allow(c.RealIP())
			if ok {
				return next(c)
			}

			secs := int(retryAfter.Seconds())
			if secs < 1 {
				secs = 1
			}
			c.Response().Header().Set(echo.HeaderRetryAfter, strconv.Itoa(secs))
			return onBlocked(c, retryAfter)
		}
	}
}

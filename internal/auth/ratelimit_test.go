package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLimiter(maxAttempts int) (*RateLimiter, *time.Time) {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	rl := NewRateLimiter(maxAttempts, 15*time.Minute, 10*time.Minute)
	rl.now = func() time.Time { return now }
	return rl, &now
}

func TestRateLimiterBlocksAfterMaxAttempts(t *testing.T) {
	rl, now := newTestLimiter(3)

	for i := 0; i < 3; i++ {
		ok, _ := rl.Allow("10.0.0.1")
		require.True(t, ok, "attempt %d", i+1)
	}

	ok, left := rl.Allow("10.0.0.1")
	assert.False(t, ok)
	assert.Equal(t, 10*time.Minute, left)

	ok, _ = rl.Allow("10.0.0.2")
	assert.True(t, ok, "other addresses are unaffected")

	*now = now.Add(4 * time.Minute)
	ok, left = rl.Allow("10.0.0.1")
	assert.False(t, ok)
	assert.Equal(t, 6*time.Minute, left)

	*now = now.Add(7 * time.Minute)
	ok, _ = rl.Allow("10.0.0.1")
	assert.True(t, ok, "block lifts")
}

func TestRateLimiterWindowResets(t *testing.T) {
	rl, now := newTestLimiter(2)

	rl.Allow("k")
	rl.Allow("k")
	*now = now.Add(16 * time.Minute)

	ok, _ := rl.Allow("k")
	assert.True(t, ok)
}

func TestRateLimiterRecordSuccess(t *testing.T) {
	rl, _ := newTestLimiter(2)

	rl.Allow("k")
	rl.Allow("k")
	rl.RecordSuccess("k")

	ok, _ := rl.Allow("k")
	assert.True(t, ok)
}

func TestRateLimiterSweep(t *testing.T) {
	rl, now := newTestLimiter(1)

	rl.Allow("a")
	rl.Allow("b")
	rl.Allow("b") // blocked
	assert.Equal(t, 0, rl.Sweep())

	*now = now.Add(16 * time.Minute)
	assert.Equal(t, 2, rl.Sweep())
}

func TestRateLimiterMiddleware(t *testing.T) {
	rl, _ := newTestLimiter(1)
	e := echo.New()
	e.POST("/admin", func(c echo.Context) error {
		return c.NoContent(http.StatusNoContent)
	}, rl.Middleware(func(c echo.Context, _ time.Duration) error {
		return c.String(http.StatusTooManyRequests, "slow down")
	}))

	send := func() *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/admin", nil)
		req.RemoteAddr = "192.0.2.7:5555"
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
		return rec
	}

	assert.Equal(t, http.StatusNoContent, send().Code)

	rec := send()
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "600", rec.Header().Get(echo.HeaderRetryAfter))
}

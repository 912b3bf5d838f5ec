package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"laludev-backend/internal/session"
)

func newProtectedEcho(gate *session.Gate, cookies *CookieCodec) *echo.Echo {
	e := echo.New()
	e.GET("/admin-form.html", func(c echo.Context) error {
		s, ok := GetSessionFromContext(c)
		if !ok {
			return c.String(http.StatusInternalServerError, "no session")
		}
		return c.JSON(http.StatusOK, map[string]int64{"admin_id": s.AdminID})
	}, RequireSession(gate, cookies))
	return e
}

func TestCookieCodecRoundTrip(t *testing.T) {
	cc := NewCookieCodec("secret", false, time.Hour)

	rec := httptest.NewRecorder()
	require.NoError(t, cc.Write(rec, "tok-123", time.Now().Add(time.Hour)))

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, CookieName, cookies[0].Name)
	assert.NotContains(t, cookies[0].Value, "tok-123", "token is encrypted")
	assert.True(t, cookies[0].HttpOnly)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(cookies[0])
	assert.Equal(t, "tok-123", cc.Read(req))

	other := NewCookieCodec("another-secret", false, time.Hour)
	assert.Equal(t, "", other.Read(req), "cookie from a different secret is rejected")
}

func TestCookieCodecClear(t *testing.T) {
	cc := NewCookieCodec("secret", true, time.Hour)
	rec := httptest.NewRecorder()
	cc.Clear(rec)

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, -1, cookies[0].MaxAge)
	assert.True(t, cookies[0].Secure)
}

func TestRequireSession(t *testing.T) {
	gate := session.NewGate(session.NewMemoryStore(), time.Hour, nil)
	cc := NewCookieCodec("secret", false, time.Hour)
	e := newProtectedEcho(gate, cc)

	t.Run("no cookie redirects", func(t *testing.T) {
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/admin-form.html", nil))
		assert.Equal(t, http.StatusFound, rec.Code)
		assert.Equal(t, LoginPage, rec.Header().Get(echo.HeaderLocation))
	})

	t.Run("forged cookie redirects", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/admin-form.html", nil)
		req.AddCookie(&http.Cookie{Name: CookieName, Value: "forged"})
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusFound, rec.Code)
	})

	t.Run("valid session passes", func(t *testing.T) {
		token, s, err := gate.Login(context.Background(), 5)
		require.NoError(t, err)

		w := httptest.NewRecorder()
		require.NoError(t, cc.Write(w, token, s.ExpiresAt))

		req := httptest.NewRequest(http.MethodGet, "/admin-form.html", nil)
		req.AddCookie(w.Result().Cookies()[0])
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"admin_id":5}`, rec.Body.String())
	})

	t.Run("logged out session redirects", func(t *testing.T) {
		token, s, err := gate.Login(context.Background(), 5)
		require.NoError(t, err)
		require.NoError(t, gate.Logout(context.Background(), token))

		w := httptest.NewRecorder()
		require.NoError(t, cc.Write(w, token, s.ExpiresAt))

		req := httptest.NewRequest(http.MethodGet, "/admin-form.html", nil)
		req.AddCookie(w.Result().Cookies()[0])
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusFound, rec.Code)
	})
}

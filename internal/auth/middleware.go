package auth

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"laludev-backend/internal/session"
)

// LoginPage is where unauthenticated visitors of protected routes are sent
const LoginPage = "/admin.html"

// ContextKeySession stores the validated session for handlers
const ContextKeySession = "session"

// RequireSession middleware lets the request through only with a live
// administrator session; otherwise it redirects to the login page.
func RequireSession(gate *session.Gate, cookies *CookieCodec) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token := cookies.Read(c.Request())
			if token == "" {
				return c.Redirect(http.StatusFound, LoginPage)
			}

			s, ok := gate.Check(c.Request().Context(), token)
			if !ok {
				cookies.Clear(c.Response())
				return c.Redirect(http.StatusFound, LoginPage)
			}

			// Store session in context for handlers
			c.Set(ContextKeySession, s)
			return next(c)
		}
	}
}

// GetSessionFromContext retrieves the current session from the context
func GetSessionFromContext(c echo.Context) (session.Session, bool) {
	s, ok := c.Get(ContextKeySession).(session.Session)
	return s, ok
}

package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"laludev-backend/internal/auth"
	"laludev-backend/internal/models"
	"laludev-backend/internal/portfolio"
)

// login handles POST /admin
func (s *Server) login(c echo.Context) error {
	var req models.LoginRequest
	if err := c.Bind(&req); err != nil {
		return c.Render(http.StatusBadRequest, alertTemplate, portfolio.LoginFailed())
	}

	token, sess, err := s.svc.Login(c.Request().Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			s.logger.Info("login rejected", zap.String("usuario", req.Username), zap.String("remote_ip", c.RealIP()))
			return c.Render(http.StatusUnauthorized, alertTemplate, portfolio.LoginFailed())
		}
		s.logger.Error("login error", zap.Error(err))
		return internalError(c)
	}

	if s.opts.Limiter != nil {
		s.opts.Limiter.RecordSuccess(c.RealIP())
	}

	// Set token in cookie (HttpOnly, signed and encrypted)
	if err := s.cookies.Write(c.Response(), token, sess.ExpiresAt); err != nil {
		s.logger.Error("failed to encode session cookie", zap.Error(err))
		return internalError(c)
	}

	return c.Redirect(http.StatusFound, portfolio.AdminFormPage)
}

func (s *Server) loginThrottled(c echo.Context, retryAfter time.Duration) error {
	s.logger.Warn("login throttled",
		zap.String("remote_ip", c.RealIP()),
		zap.Duration("retry_after", retryAfter),
	)
	return c.Render(http.StatusTooManyRequests, alertTemplate, portfolio.Result{
		Message:  "Muitas tentativas de login. Tente novamente mais tarde.",
		Redirect: portfolio.AdminPage,
	})
}

// logout handles GET /logout
func (s *Server) logout(c echo.Context) error {
	token := s.cookies.Read(c.Request())
	if err := s.svc.Logout(c.Request().Context(), token); err != nil {
		s.logger.Warn("logout failed", zap.Error(err))
	}
	s.cookies.Clear(c.Response())
	return c.Redirect(http.StatusFound, "/")
}

// adminFormPage handles GET /admin-form.html
func (s *Server) adminFormPage(c echo.Context) error {
	return c.File(s.publicFile(adminFormFile))
}

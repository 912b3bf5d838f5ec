// Package api exposes the portfolio over HTTP with echo.
package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"laludev-backend/internal/auth"
	"laludev-backend/internal/metrics"
	"laludev-backend/internal/portfolio"
	"laludev-backend/internal/session"
)

// bodyLimit is above the image limit so oversized images reach the upload
// handler and get its specific error.
const bodyLimit = "10M"

// Pinger reports backend availability for the health check.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Options configures static file locations and login throttling.
// A nil Limiter disables throttling.
type Options struct {
	PublicDir string
	UploadDir string
	Limiter   *auth.RateLimiter
}

// Server is the HTTP front of the portfolio.
type Server struct {
	echo    *echo.Echo
	svc     *portfolio.Service
	gate    *session.Gate
	cookies *auth.CookieCodec
	metrics *metrics.Metrics
	db      Pinger
	logger  *zap.Logger
	opts    Options
}

// NewServer wires middleware and routes.
func NewServer(opts Options, svc *portfolio.Service, gate *session.Gate, cookies *auth.CookieCodec, m *metrics.Metrics, db Pinger, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Renderer = newAlertRenderer()

	s := &Server{
		echo:    e,
		svc:     svc,
		gate:    gate,
		cookies: cookies,
		metrics: m,
		db:      db,
		logger:  logger.Named("http"),
		opts:    opts,
	}
	e.HTTPErrorHandler = s.httpErrorHandler
	// client address is the TCP peer; forwarding headers are not trusted
	e.IPExtractor = echo.ExtractIPDirect()

	// Middleware
	e.Use(middleware.RequestID())
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogRemoteIP:  true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			fields := []zap.Field{
				zap.String("method", v.Method),
				zap.String("uri", v.URI),
				zap.Int("status", v.Status),
				zap.Duration("duration", v.Latency),
				zap.String("request_id", v.RequestID),
				zap.String("remote_ip", v.RemoteIP),
			}
			if v.Error != nil {
				fields = append(fields, zap.Error(v.Error))
			}
			s.logger.Info("http request", fields...)
			return nil
		},
	}))
	e.Use(middleware.Recover())
	e.Use(m.Middleware())
	e.Use(middleware.Secure())
	e.Use(middleware.BodyLimit(bodyLimit))

	s.registerRoutes()
	return s
}

// Echo returns the underlying echo instance.
func (s *Server) Echo() *echo.Echo {
	return s.echo
}

// ServeHTTP lets the server be used as an http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.echo.ServeHTTP(w, r)
}

// Start listens on addr until Shutdown is called.
func (s *Server) Start(addr string) error {
	s.logger.Info("starting http server", zap.String("addr", addr))
	if err := s.echo.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// StartTLS is Start over HTTPS.
func (s *Server) StartTLS(addr, certFile, keyFile string) error {
	s.logger.Info("starting https server", zap.String("addr", addr))
	if err := s.echo.StartTLS(addr, certFile, keyFile); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

// httpErrorHandler answers 5xx with a generic body and logs the cause;
// other errors keep echo's default handling.
func (s *Server) httpErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	var he *echo.HTTPError
	if errors.As(err, &he) && he.Code < http.StatusInternalServerError {
		s.echo.DefaultHTTPErrorHandler(err, c)
		return
	}

	s.logger.Error("internal error",
		zap.String("method", c.Request().Method),
		zap.String("uri", c.Request().RequestURI),
		zap.Error(err),
	)
	if werr := internalError(c); werr != nil {
		s.logger.Warn("failed to write error response", zap.Error(werr))
	}
}

func internalError(c echo.Context) error {
	if c.Request().Method == http.MethodHead {
		return c.NoContent(http.StatusInternalServerError)
	}
	return c.JSON(http.StatusInternalServerError, map[string]string{
		"erro": "Erro interno do servidor",
	})
}

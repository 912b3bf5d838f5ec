package api

import (
	"net/url"
	"path"
	"path/filepath"
	"strings"

	"github.com/labstack/echo/v4"

	"laludev-backend/internal/auth"
)

// adminFormFile is the authoring page inside the public directory.
const adminFormFile = "admin-form.html"

// registerRoutes sets up all routes
func (s *Server) registerRoutes() {
	e := s.echo
	requireSession := auth.RequireSession(s.gate, s.cookies)

	// Public API
	api := e.Group("/api")
	api.GET("/health", s.healthCheck)
	api.GET("/projetos", s.listProjects)
	api.GET("/tecnologias", s.listTechnologies)

	if s.metrics != nil {
		e.GET("/metrics", echo.WrapHandler(s.metrics.Handler()))
	}

	// Administrator flows
	if s.opts.Limiter != nil {
		e.POST("/admin", s.login, s.opts.Limiter.Middleware(s.loginThrottled))
	} else {
		e.POST("/admin", s.login)
	}
	e.GET("/logout", s.logout)
	e.POST("/admin-form", s.submitProject, requireSession)
	e.GET("/"+adminFormFile, s.adminFormPage, requireSession)

	// Static files: uploaded images and public pages. Any path the static
	// handler would resolve to a protected page goes through the session gate.
	e.Static("/uploads", s.opts.UploadDir)
	e.GET("/*",
		echo.StaticDirectoryHandler(echo.MustSubFS(e.Filesystem, s.opts.PublicDir), false),
		gateFiles(requireSession, adminFormFile),
	)
}

// gateFiles applies gate to static requests whose cleaned, unescaped path
// names one of the protected files.
func gateFiles(gate echo.MiddlewareFunc, protected ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		gated := gate(next)
		return func(c echo.Context) error {
			p, err := url.PathUnescape(c.Param("*"))
			if err != nil {
				// the static handler rejects it as well
				return next(c)
			}
			name := path.Clean("/" + p)
			for _, f := range protected {
				if strings.EqualFold(name, "/"+f) {
					return gated(c)
				}
			}
			return next(c)
		}
	}
}

func (s *Server) publicFile(name string) string {
	return filepath.Join(s.opts.PublicDir, name)
}

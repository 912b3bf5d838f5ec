package api

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"laludev-backend/internal/models"
)

// healthCheck handles GET /api/health
func (s *Server) healthCheck(c echo.Context) error {
	if s.db != nil {
		if err := s.db.Ping(c.Request().Context()); err != nil {
			s.logger.Warn("health check failed", zap.Error(err))
			return c.JSON(http.StatusServiceUnavailable, map[string]string{
				"status": "unavailable",
			})
		}
	}
	return c.JSON(http.StatusOK, map[string]string{
		"status": "ok",
	})
}

// listProjects handles GET /api/projetos
func (s *Server) listProjects(c echo.Context) error {
	projects, err := s.svc.ActiveProjects(c.Request().Context())
	if err != nil {
		s.logger.Error("failed to list projects", zap.Error(err))
		return internalError(c)
	}

	resp := make([]models.ProjectResponse, 0, len(projects))
	for i := range projects {
		resp = append(resp, projects[i].ToResponse())
	}
	return c.JSON(http.StatusOK, resp)
}

// listTechnologies handles GET /api/tecnologias
func (s *Server) listTechnologies(c echo.Context) error {
	techs := s.svc.Technologies()
	return c.JSON(http.StatusOK, models.TechnologiesResponse{
		Technologies: techs,
		Total:        len(techs),
	})
}

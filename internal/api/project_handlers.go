package api

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"laludev-backend/internal/auth"
	"laludev-backend/internal/models"
	"laludev-backend/internal/portfolio"
	"laludev-backend/internal/upload"
)

// imageField is the multipart field carrying the project image
const imageField = "imagens"

// submitProject handles POST /admin-form
func (s *Server) submitProject(c echo.Context) error {
	sess, ok := auth.GetSessionFromContext(c)
	if !ok {
		return c.Redirect(http.StatusFound, auth.LoginPage)
	}

	var form models.ProjectForm
	if err := c.Bind(&form); err != nil {
		return c.Render(http.StatusBadRequest, alertTemplate, portfolio.Result{
			Message:  "Dados do projeto inválidos!",
			Redirect: portfolio.AdminFormPage,
		})
	}

	sub := portfolio.Submission{
		Title:        form.Title,
		Description:  form.Description,
		Technologies: form.Technologies,
		ProjectLink:  form.ProjectLink,
		GithubLink:   form.GithubLink,
	}

	// Get the uploaded file, if any
	file, err := c.FormFile(imageField)
	switch {
	case err == nil:
		src, err := file.Open()
		if err != nil {
			s.logger.Error("failed to read uploaded file", zap.Error(err))
			return c.Render(http.StatusInternalServerError, alertTemplate, portfolio.SubmitFailed(err))
		}
		defer src.Close()

		sub.Image = &upload.File{
			Reader:   src,
			Filename: file.Filename,
			MIMEType: file.Header.Get(echo.HeaderContentType),
			Size:     file.Size,
		}
	case errors.Is(err, http.ErrMissingFile), errors.Is(err, http.ErrNotMultipart):
	default:
		s.logger.Warn("malformed multipart body", zap.Error(err))
		return c.Render(http.StatusBadRequest, alertTemplate, portfolio.Result{
			Message:  "Dados do projeto inválidos!",
			Redirect: portfolio.AdminFormPage,
		})
	}

	if _, err := s.svc.SubmitProject(c.Request().Context(), sess, sub); err != nil {
		status := submitStatus(err)
		if status >= http.StatusInternalServerError {
			s.logger.Error("failed to create project", zap.Error(err))
		}
		return c.Render(status, alertTemplate, portfolio.SubmitFailed(err))
	}

	return c.Render(http.StatusOK, alertTemplate, portfolio.ProjectCreated())
}

func submitStatus(err error) int {
	var verr *portfolio.ValidationError
	switch {
	case errors.As(err, &verr), errors.Is(err, upload.ErrUnsupportedFileType):
		return http.StatusBadRequest
	case errors.Is(err, upload.ErrFileTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, portfolio.ErrNotAuthenticated):
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

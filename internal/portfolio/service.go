// Package portfolio orchestrates the administrator flows and public project
// listing on top of the credential, session, upload and project stores.
package portfolio

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"laludev-backend/internal/catalog"
	"laludev-backend/internal/metrics"
	"laludev-backend/internal/models"
	"laludev-backend/internal/session"
	"laludev-backend/internal/upload"
)

var ErrNotAuthenticated = errors.New("not authenticated")

// ValidationError reports a rejected form field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

// Verifier checks administrator credentials.
type Verifier interface {
	Verify(ctx context.Context, username, password string) (int64, error)
}

// ProjectStore persists projects.
type ProjectStore interface {
	Insert(ctx context.Context, p *models.Project) (int64, error)
	ListActive(ctx context.Context) ([]models.Project, error)
}

// Uploader turns an uploaded file into a hosted URL.
type Uploader interface {
	Accept(ctx context.Context, f upload.File) (string, error)
}

// Submission is a project as entered on the authoring form.
type Submission struct {
	Title        string
	Description  string
	Technologies string // comma separated
	ProjectLink  string
	GithubLink   string
	Image        *upload.File
}

// Service implements the portfolio operations.
type Service struct {
	credentials Verifier
	gate        *session.Gate
	projects    ProjectStore
	uploads     Uploader
	catalog     *catalog.Catalog
	metrics     *metrics.Metrics
	logger      *zap.Logger
}

// Deps groups the collaborators of Service.
type Deps struct {
	Credentials Verifier
	Gate        *session.Gate
	Projects    ProjectStore
	Uploads     Uploader
	Catalog     *catalog.Catalog
	Metrics     *metrics.Metrics
	Logger      *zap.Logger
}

// NewService creates the service. Catalog defaults to the built-in list.
func NewService(d Deps) *Service {
	if d.Catalog == nil {
		d.Catalog = catalog.Default()
	}
	if d.Logger == nil {
		d.Logger = zap.NewNop()
	}
	return &Service{
		credentials: d.Credentials,
		gate:        d.Gate,
		projects:    d.Projects,
		uploads:     d.Uploads,
		catalog:     d.Catalog,
		metrics:     d.Metrics,
		logger:      d.Logger.Named("portfolio"),
	}
}

// Login verifies the administrator and opens a session.
func (s *Service) Login(ctx context.Context, username, password string) (string, session.Session, error) {
	adminID, err := s.credentials.Verify(ctx, username, password)
	if err != nil {
		s.metrics.LoginAttempt(false)
		return "", session.Session{}, err
	}

	token, sess, err := s.gate.Login(ctx, adminID)
	if err != nil {
		return "", session.Session{}, err
	}

	s.metrics.LoginAttempt(true)
	s.logger.Info("administrator logged in", zap.Int64("admin_id", adminID))
	return token, sess, nil
}

// Logout closes the session for token; unknown tokens are ignored.
func (s *Service) Logout(ctx context.Context, token string) error {
	return s.gate.Logout(ctx, token)
}

// SubmitProject validates and stores a new project on behalf of the
// administrator holding sess.
func (s *Service) SubmitProject(ctx context.Context, sess session.Session, sub Submission) (*models.Project, error) {
	if !sess.LoggedIn {
		return nil, ErrNotAuthenticated
	}

	title := strings.TrimSpace(sub.Title)
	if title == "" {
		return nil, &ValidationError{Field: "titulo", Message: "is required"}
	}
	description := strings.TrimSpace(sub.Description)
	if description == "" {
		return nil, &ValidationError{Field: "descricao", Message: "is required"}
	}

	var imageURL *string
	if sub.Image != nil {
		url, err := s.uploads.Accept(ctx, *sub.Image)
		if err != nil {
			s.metrics.Upload(uploadResult(err))
			return nil, err
		}
		s.metrics.Upload(metrics.UploadAccepted)
		imageURL = &url
	}

	techs, unrecognized := s.catalog.Classify(sub.Technologies)
	if len(unrecognized) > 0 {
		s.logger.Warn("unrecognized technologies", zap.Strings("technologies", unrecognized))
		s.metrics.UnrecognizedTechnologies(len(unrecognized))
	}

	p := &models.Project{
		Title:        title,
		Description:  description,
		Technologies: techs,
		ProjectLink:  optional(sub.ProjectLink),
		GithubLink:   optional(sub.GithubLink),
		ImageURL:     imageURL,
	}
	if _, err := s.projects.Insert(ctx, p); err != nil {
		return nil, err
	}

	s.metrics.ProjectCreated()
	s.logger.Info("project created",
		zap.Int64("project_id", p.ID),
		zap.String("title", p.Title),
		zap.Strings("technologies", p.Technologies),
		zap.Int64("admin_id", sess.AdminID),
	)
	return p, nil
}

// ActiveProjects lists the public projects, newest first.
func (s *Service) ActiveProjects(ctx context.Context) ([]models.Project, error) {
	return s.projects.ListActive(ctx)
}

// Technologies returns the sorted catalog of recognized tags.
func (s *Service) Technologies() []string {
	return s.catalog.List()
}

func uploadResult(err error) string {
	if errors.Is(err, upload.ErrUnsupportedFileType) || errors.Is(err, upload.ErrFileTooLarge) {
		return metrics.UploadRejected
	}
	return metrics.UploadFailed
}

func optional(v string) *string {
	v = strings.TrimSpace(v)
	if v == "" {
		return nil
	}
	return &v
}

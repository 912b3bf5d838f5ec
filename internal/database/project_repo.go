package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"laludev-backend/internal/models"
)

var ErrProjectNotFound = errors.New("project not found")

// ProjectRepo handles project database operations
type ProjectRepo struct {
	store *Store
}

// NewProjectRepo creates a new project repository
func NewProjectRepo(store *Store) *ProjectRepo {
	return &ProjectRepo{store: store}
}

// Insert stores a new active project and sets its ID and timestamps
func (r *ProjectRepo) Insert(ctx context.Context, p *models.Project) (int64, error) {
	techs := p.Technologies
	if techs == nil {
		techs = []string{}
	}
	encoded, err := json.Marshal(techs)
	if err != nil {
		return 0, fmt.Errorf("failed to encode technologies: %w", err)
	}

	now := r.store.now()
	d := r.store.dialect
	query := `
		INSERT INTO projetos (titulo, descricao, tecnologias, link_projeto, link_github, imagem, ativo, criado_em, atualizado_em)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`
	args := []any{p.Title, p.Description, string(encoded), p.ProjectLink, p.GithubLink, p.ImageURL, true, now, now}

	var id int64
	err = r.store.withConn(ctx, func(conn *sql.Conn) error {
		if d.returningID {
			return conn.QueryRowContext(ctx, d.rebind(query+" RETURNING id"), args...).Scan(&id)
		}
		result, err := conn.ExecContext(ctx, d.rebind(query), args...)
		if err != nil {
			return err
		}
		id, err = result.LastInsertId()
		return err
	})
	if err != nil {
		return 0, fmt.Errorf("failed to insert project: %w", err)
	}

	p.ID = id
	p.Technologies = techs
	p.Active = true
	p.CreatedAt = now
	p.UpdatedAt = now
	return id, nil
}

// ListActive returns active projects, newest first
func (r *ProjectRepo) ListActive(ctx context.Context) ([]models.Project, error) {
	projects := []models.Project{}

	err := r.store.withConn(ctx, func(conn *sql.Conn) error {
		rows, err := conn.QueryContext(ctx, r.store.dialect.rebind(`
			SELECT id, titulo, descricao, tecnologias, link_projeto, link_github, imagem, ativo, criado_em, atualizado_em
			FROM projetos WHERE ativo = ?
			ORDER BY criado_em DESC, id DESC
		`), true)
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			var (
				p                   models.Project
				techs               sql.NullString
				link, github, image sql.NullString
			)
			if err := rows.Scan(
				&p.ID, &p.Title, &p.Description, &techs, &link, &github, &image,
				&p.Active, &p.CreatedAt, &p.UpdatedAt,
			); err != nil {
				return err
			}

			p.Technologies = r.decodeTechnologies(p.ID, techs)
			p.ProjectLink = nullableString(link)
			p.GithubLink = nullableString(github)
			p.ImageURL = nullableString(image)
			projects = append(projects, p)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}

	return projects, nil
}

// SetActive flips the soft-delete flag of a project
func (r *ProjectRepo) SetActive(ctx context.Context, id int64, active bool) error {
	var rows int64

	err := r.store.withConn(ctx, func(conn *sql.Conn) error {
		result, err := conn.ExecContext(ctx, r.store.dialect.rebind(
			"UPDATE projetos SET ativo = ?, atualizado_em = ? WHERE id = ?",
		), active, r.store.now(), id)
		if err != nil {
			return err
		}
		rows, err = result.RowsAffected()
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to update project %d: %w", id, err)
	}
	if rows == 0 {
		return ErrProjectNotFound
	}

	return nil
}

// decodeTechnologies never fails: stored values that are not a JSON array
// of strings are logged and read back as empty.
func (r *ProjectRepo) decodeTechnologies(id int64, raw sql.NullString) []string {
	if !raw.Valid || raw.String == "" {
		return []string{}
	}

	var techs []string
	if err := json.Unmarshal([]byte(raw.String), &techs); err != nil {
		r.store.logger.Warn("malformed stored technologies",
			zap.Int64("project_id", id),
			zap.String("value", raw.String),
			zap.Error(err),
		)
		return []string{}
	}
	if techs == nil {
		return []string{}
	}
	return techs
}

func nullableString(ns sql.NullString) *string {
	if !ns.Valid || ns.String == "" {
		return nil
	}
	s := ns.String
	return &s
}

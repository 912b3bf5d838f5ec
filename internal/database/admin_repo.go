package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"laludev-backend/internal/models"
)

var ErrAdminNotFound = errors.New("administrator not found")

// AdminRepo handles administrator database operations
type AdminRepo struct {
	store *Store
}

// NewAdminRepo creates a new administrator repository
func NewAdminRepo(store *Store) *AdminRepo {
	return &AdminRepo{store: store}
}

// GetByUsername retrieves an administrator by exact username
func (r *AdminRepo) GetByUsername(ctx context.Context, username string) (*models.Administrator, error) {
	admin := &models.Administrator{}

	err := r.store.withConn(ctx, func(conn *sql.Conn) error {
		return conn.QueryRowContext(ctx, r.store.dialect.rebind(`
			SELECT id, usuario, senha_hash, criado_em
			FROM administradores WHERE usuario = ?
		`), username).Scan(&admin.ID, &admin.Username, &admin.PasswordHash, &admin.CreatedAt)
	})
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrAdminNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query administrator: %w", err)
	}

	return admin, nil
}

// Upsert creates the administrator or replaces its password hash, returning its ID
func (r *AdminRepo) Upsert(ctx context.Context, username, passwordHash string) (int64, error) {
	var id int64

	err := r.store.withConn(ctx, func(conn *sql.Conn) error {
		d := r.store.dialect
		if _, err := conn.ExecContext(ctx, d.rebind(d.upsertAdmin), username, passwordHash, r.store.now()); err != nil {
			return err
		}
		return conn.QueryRowContext(ctx, d.rebind("SELECT id FROM administradores WHERE usuario = ?"), username).Scan(&id)
	})
	if err != nil {
		return 0, fmt.Errorf("failed to upsert administrator: %w", err)
	}

	return id, nil
}

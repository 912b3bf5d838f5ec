// Package database persists administrators and portfolio projects in
// SQLite, MySQL or PostgreSQL.
package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"go.uber.org/zap"

	"laludev-backend/internal/config"
)

// Store owns the connection pool. Every repository operation checks out a
// dedicated connection and returns it before the call completes.
type Store struct {
	db      *sql.DB
	dialect dialect
	logger  *zap.Logger
	now     func() time.Time
}

// Open initializes the database connection and runs migrations
func Open(ctx context.Context, cfg config.DatabaseConfig, logger *zap.Logger) (*Store, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	d, dsn, err := dialectFor(cfg)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open(d.driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if d.name == config.DriverSQLite {
		// single writer; avoids SQLITE_BUSY under concurrent requests
		db.SetMaxOpenConns(1)
	} else {
		db.SetMaxOpenConns(10)
		db.SetConnMaxLifetime(30 * time.Minute)
	}

	s := &Store{
		db:      db,
		dialect: d,
		logger:  logger.Named("database"),
		now:     func() time.Time { return time.Now().UTC() },
	}

	// Test connection
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if err := s.migrate(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	s.logger.Info("database ready", zap.String("driver", d.name))
	return s, nil
}

// Close closes the database connection
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Ping reports whether the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.withConn(ctx, func(conn *sql.Conn) error {
		return conn.PingContext(ctx)
	})
}

// Driver returns the configured engine name.
func (s *Store) Driver() string {
	return s.dialect.name
}

// withConn runs fn on a connection checked out for this call only.
func (s *Store) withConn(ctx context.Context, fn func(conn *sql.Conn) error) error {
	conn, err := s.db.Conn(ctx)
	if err != nil {
		return fmt.Errorf("failed to acquire connection: %w", err)
	}
	defer conn.Close()
	return fn(conn)
}

// migrate runs all database migrations
func (s *Store) migrate(ctx context.Context) error {
	return s.withConn(ctx, func(conn *sql.Conn) error {
		// Create migrations table
		if _, err := conn.ExecContext(ctx, s.dialect.migrationsTable); err != nil {
			return err
		}

		// Run each migration
		for _, m := range s.dialect.migrations {
			if err := s.runMigration(ctx, conn, m); err != nil {
				return fmt.Errorf("migration %s failed: %w", m.name, err)
			}
		}
		return nil
	})
}

type migration struct {
	name string
	up   []string
}

func (s *Store) runMigration(ctx context.Context, conn *sql.Conn, m migration) error {
	// Check if already applied
	var count int
	err := conn.QueryRowContext(ctx, s.dialect.rebind("SELECT COUNT(*) FROM migrations WHERE name = ?"), m.name).Scan(&count)
	if err != nil {
		return err
	}
	if count > 0 {
		return nil // Already applied
	}

	tx, err := conn.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, stmt := range m.up {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}

	// Record migration
	if _, err := tx.ExecContext(ctx, s.dialect.rebind("INSERT INTO migrations (name) VALUES (?)"), m.name); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}

	s.logger.Info("migration applied", zap.String("name", m.name))
	return nil
}

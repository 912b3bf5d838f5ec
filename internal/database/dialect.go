package database

import (
	"fmt"
	"net"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"laludev-backend/internal/config"
)

// dialect captures the differences between the supported SQL engines.
// Queries are written with ? placeholders and rebound when needed.
type dialect struct {
	name            string
	driver          string
	migrationsTable string
	migrations      []migration

	// upsertAdmin inserts an administrator or replaces its password hash.
	upsertAdmin string

	// returningID is true when inserts must use RETURNING instead of LastInsertId.
	returningID bool
	numbered    bool
}

func (d dialect) rebind(query string) string {
	if !d.numbered {
		return query
	}
	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

var sqliteDialect = dialect{
	name:            config.DriverSQLite,
	driver:          "sqlite",
	migrationsTable: `
		CREATE TABLE IF NOT EXISTS migrations (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT NOT NULL UNIQUE,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,
	migrations: []migration{
		{
			name: "001_create_administradores",
			up: []string{`
				CREATE TABLE IF NOT EXISTS administradores (
					id INTEGER PRIMARY KEY AUTOINCREMENT,
					usuario TEXT NOT NULL UNIQUE,
					senha_hash TEXT NOT NULL,
					criado_em DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
				)`,
			},
		},
		{
			name: "002_create_projetos",
			up: []string{`
				CREATE TABLE IF NOT EXISTS projetos (
					id INTEGER PRIMARY KEY AUTOINCREMENT,
					titulo TEXT NOT NULL,
					descricao TEXT NOT NULL,
					tecnologias TEXT NOT NULL DEFAULT '[]',
					link_projeto TEXT,
					link_github TEXT,
					imagem TEXT,
					ativo INTEGER NOT NULL DEFAULT 1,
					criado_em DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
					atualizado_em DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
				)`,
				`CREATE INDEX IF NOT EXISTS idx_projetos_ativo_criado_em ON projetos(ativo, criado_em)`,
			},
		},
	},
	upsertAdmin: `
		INSERT INTO administradores (usuario, senha_hash, criado_em) VALUES (?, ?, ?)
		ON CONFLICT(usuario) DO UPDATE SET senha_hash = excluded.senha_hash`,
}

var mysqlDialect = dialect{
	name:            config.DriverMySQL,
	driver:          "mysql",
	migrationsTable: `
		CREATE TABLE IF NOT EXISTS migrations (
			id INT AUTO_INCREMENT PRIMARY KEY,
			name VARCHAR(255) NOT NULL UNIQUE,
			applied_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`,
	migrations: []migration{
		{
			name: "001_create_administradores",
			up: []string{`
				CREATE TABLE IF NOT EXISTS administradores (
					id INT AUTO_INCREMENT PRIMARY KEY,
					usuario VARCHAR(50) UNIQUE NOT NULL,
					senha_hash VARCHAR(255) NOT NULL,
					criado_em TIMESTAMP DEFAULT CURRENT_TIMESTAMP
				)`,
			},
		},
		{
			name: "002_create_projetos",
			up: []string{`
				CREATE TABLE IF NOT EXISTS projetos (
					id INT AUTO_INCREMENT PRIMARY KEY,
					titulo VARCHAR(255) NOT NULL,
					descricao TEXT NOT NULL,
					tecnologias JSON NOT NULL,
					link_projeto VARCHAR(500),
					link_github VARCHAR(500),
					imagem VARCHAR(255),
					ativo BOOLEAN DEFAULT true,
					criado_em TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
					atualizado_em TIMESTAMP DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP
				)`,
			},
		},
	},
	upsertAdmin: `
		INSERT INTO administradores (usuario, senha_hash, criado_em) VALUES (?, ?, ?)
		ON DUPLICATE KEY UPDATE senha_hash = VALUES(senha_hash)`,
}

var postgresDialect = dialect{
	name:            config.DriverPostgres,
	driver:          "postgres",
	migrationsTable: `
		CREATE TABLE IF NOT EXISTS migrations (
			id SERIAL PRIMARY KEY,
			name TEXT NOT NULL UNIQUE,
			applied_at TIMESTAMPTZ DEFAULT now()
		)`,
	migrations: []migration{
		{
			name: "001_create_administradores",
			up: []string{`
				CREATE TABLE IF NOT EXISTS administradores (
					id BIGSERIAL PRIMARY KEY,
					usuario VARCHAR(50) UNIQUE NOT NULL,
					senha_hash VARCHAR(255) NOT NULL,
					criado_em TIMESTAMPTZ NOT NULL DEFAULT now()
				)`,
			},
		},
		{
			name: "002_create_projetos",
			up: []string{`
				CREATE TABLE IF NOT EXISTS projetos (
					id BIGSERIAL PRIMARY KEY,
					titulo VARCHAR(255) NOT NULL,
					descricao TEXT NOT NULL,
					tecnologias TEXT NOT NULL DEFAULT '[]',
					link_projeto VARCHAR(500),
					link_github VARCHAR(500),
					imagem VARCHAR(500),
					ativo BOOLEAN NOT NULL DEFAULT true,
					criado_em TIMESTAMPTZ NOT NULL DEFAULT now(),
					atualizado_em TIMESTAMPTZ NOT NULL DEFAULT now()
				)`,
				`CREATE INDEX IF NOT EXISTS idx_projetos_ativo_criado_em ON projetos(ativo, criado_em)`,
			},
		},
	},
	upsertAdmin: `
		INSERT INTO administradores (usuario, senha_hash, criado_em) VALUES (?, ?, ?)
		ON CONFLICT (usuario) DO UPDATE SET senha_hash = EXCLUDED.senha_hash`,
	returningID: true,
	numbered:    true,
}

// dialectFor returns the dialect and data source name for cfg.
func dialectFor(cfg config.DatabaseConfig) (dialect, string, error) {
	switch cfg.Driver {
	case config.DriverSQLite, "":
		// Ensure directory exists
		dir := filepath.Dir(cfg.Path)
		if err := os.MkdirAll(dir, 0750); err != nil {
			return dialect{}, "", fmt.Errorf("failed to create database directory: %w", err)
		}
		return sqliteDialect, cfg.Path + "?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)", nil

	case config.DriverMySQL:
		mc := mysql.NewConfig()
		mc.User = cfg.User
		mc.Passwd = cfg.Password.Value()
		mc.Net = "tcp"
		mc.Addr = net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port))
		mc.DBName = cfg.Name
		mc.ParseTime = true
		mc.Loc = time.UTC
		return mysqlDialect, mc.FormatDSN(), nil

	case config.DriverPostgres:
		u := url.URL{
			Scheme:   "postgres",
			User:     url.UserPassword(cfg.User, cfg.Password.Value()),
			Host:     net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port)),
			Path:     "/" + cfg.Name,
			RawQuery: url.Values{"sslmode": []string{cfg.SSLMode}}.Encode(),
		}
		return postgresDialect, u.String(), nil

	default:
		return dialect{}, "", fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
}

package database

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"laludev-backend/internal/config"
	"laludev-backend/internal/models"
)

func newTestStore(t *testing.T) (*Store, *observer.ObservedLogs) {
	t.Helper()

	core, logs := observer.New(zapcore.DebugLevel)
	cfg := config.DatabaseConfig{
		Driver: config.DriverSQLite,
		Path:   filepath.Join(t.TempDir(), "data", "test.db"),
	}

	store, err := Open(context.Background(), cfg, zap.New(core))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	return store, logs
}

func strPtr(s string) *string { return &s }

func TestOpenIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")
	cfg := config.DatabaseConfig{Driver: config.DriverSQLite, Path: path}

	first, err := Open(context.Background(), cfg, nil)
	require.NoError(t, err)
	require.NoError(t, first.Close())

	second, err := Open(context.Background(), cfg, nil)
	require.NoError(t, err)
	defer second.Close()

	var count int
	err = second.withConn(context.Background(), func(conn *sql.Conn) error {
		return conn.QueryRowContext(context.Background(), "SELECT COUNT(*) FROM migrations").Scan(&count)
	})
	require.NoError(t, err)
	assert.Equal(t, len(sqliteDialect.migrations), count)
	assert.NoError(t, second.Ping(context.Background()))
	assert.Equal(t, config.DriverSQLite, second.Driver())
}

func TestAdminRepoUpsert(t *testing.T) {
	store, _ := newTestStore(t)
	repo := NewAdminRepo(store)
	ctx := context.Background()

	_, err := repo.GetByUsername(ctx, "admin")
	assert.ErrorIs(t, err, ErrAdminNotFound)

	id, err := repo.Upsert(ctx, "admin", "hash-1")
	require.NoError(t, err)
	assert.NotZero(t, id)

	again, err := repo.Upsert(ctx, "admin", "hash-2")
	require.NoError(t, err)
	assert.Equal(t, id, again, "upsert keeps the same row")

	admin, err := repo.GetByUsername(ctx, "admin")
	require.NoError(t, err)
	assert.Equal(t, "hash-2", admin.PasswordHash)
	assert.Equal(t, "admin", admin.Username)

	_, err = repo.GetByUsername(ctx, "Admin")
	assert.ErrorIs(t, err, ErrAdminNotFound, "username match is exact")
}

func TestProjectRepoInsertAndList(t *testing.T) {
	store, _ := newTestStore(t)
	repo := NewProjectRepo(store)
	ctx := context.Background()

	p := &models.Project{
		Title:        "Loja",
		Description:  "E-commerce",
		Technologies: []string{"react", "node.js"},
		ProjectLink:  strPtr("https://loja.example"),
		ImageURL:     strPtr("https://cdn.example/loja.png"),
	}
	id, err := repo.Insert(ctx, p)
	require.NoError(t, err)
	assert.Equal(t, id, p.ID)
	assert.True(t, p.Active)
	assert.False(t, p.CreatedAt.IsZero())

	projects, err := repo.ListActive(ctx)
	require.NoError(t, err)
	require.Len(t, projects, 1)

	got := projects[0]
	assert.Equal(t, "Loja", got.Title)
	assert.Equal(t, []string{"react", "node.js"}, got.Technologies)
	require.NotNil(t, got.ProjectLink)
	assert.Equal(t, "https://loja.example", *got.ProjectLink)
	assert.Nil(t, got.GithubLink)
	require.NotNil(t, got.ImageURL)
	assert.True(t, got.Active)
}

func TestProjectRepoListOrdering(t *testing.T) {
	store, _ := newTestStore(t)
	repo := NewProjectRepo(store)
	ctx := context.Background()

	base := time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC)
	clock := base
	store.now = func() time.Time { return clock }

	_, err := repo.Insert(ctx, &models.Project{Title: "old", Description: "d"})
	require.NoError(t, err)

	clock = base.Add(time.Hour)
	_, err = repo.Insert(ctx, &models.Project{Title: "new", Description: "d"})
	require.NoError(t, err)

	// same timestamp as "new": ties resolve by id
	_, err = repo.Insert(ctx, &models.Project{Title: "newest-id", Description: "d"})
	require.NoError(t, err)

	projects, err := repo.ListActive(ctx)
	require.NoError(t, err)

	titles := make([]string, 0, len(projects))
	for _, p := range projects {
		titles = append(titles, p.Title)
	}
	assert.Equal(t, []string{"newest-id", "new", "old"}, titles)
}

func TestProjectRepoSetActive(t *testing.T) {
	store, _ := newTestStore(t)
	repo := NewProjectRepo(store)
	ctx := context.Background()

	id, err := repo.Insert(ctx, &models.Project{Title: "hidden", Description: "d"})
	require.NoError(t, err)
	_, err = repo.Insert(ctx, &models.Project{Title: "visible", Description: "d"})
	require.NoError(t, err)

	require.NoError(t, repo.SetActive(ctx, id, false))

	projects, err := repo.ListActive(ctx)
	require.NoError(t, err)
	require.Len(t, projects, 1)
	assert.Equal(t, "visible", projects[0].Title)

	require.NoError(t, repo.SetActive(ctx, id, true))
	projects, err = repo.ListActive(ctx)
	require.NoError(t, err)
	assert.Len(t, projects, 2)

	assert.ErrorIs(t, repo.SetActive(ctx, 9999, false), ErrProjectNotFound)
}

func TestProjectRepoMalformedTechnologies(t *testing.T) {
	store, logs := newTestStore(t)
	repo := NewProjectRepo(store)
	ctx := context.Background()

	id, err := repo.Insert(ctx, &models.Project{Title: "broken", Description: "d"})
	require.NoError(t, err)

	err = store.withConn(ctx, func(conn *sql.Conn) error {
		_, err := conn.ExecContext(ctx, "UPDATE projetos SET tecnologias = ? WHERE id = ?", "not-json", id)
		return err
	})
	require.NoError(t, err)

	projects, err := repo.ListActive(ctx)
	require.NoError(t, err)
	require.Len(t, projects, 1)
	assert.NotNil(t, projects[0].Technologies)
	assert.Empty(t, projects[0].Technologies)

	entries := logs.FilterMessage("malformed stored technologies").All()
	require.Len(t, entries, 1)
	assert.Equal(t, zapcore.WarnLevel, entries[0].Level)
}

func TestRebind(t *testing.T) {
	assert.Equal(t, "SELECT ? FROM t WHERE a = ?", sqliteDialect.rebind("SELECT ? FROM t WHERE a = ?"))
	assert.Equal(t, "SELECT $1 FROM t WHERE a = $2", postgresDialect.rebind("SELECT ? FROM t WHERE a = ?"))
}

func TestDialectForNetworkDrivers(t *testing.T) {
	d, dsn, err := dialectFor(config.DatabaseConfig{
		Driver:   config.DriverMySQL,
		Host:     "db",
		Port:     3306,
		User:     "lalu",
		Password: "pw",
		Name:     "portfolio",
	})
	require.NoError(t, err)
	assert.Equal(t, "mysql", d.driver)
	assert.Contains(t, dsn, "lalu:pw@tcp(db:3306)/portfolio")
	assert.Contains(t, dsn, "parseTime=true")

	d, dsn, err = dialectFor(config.DatabaseConfig{
		Driver:   config.DriverPostgres,
		Host:     "db",
		Port:     5432,
		User:     "lalu",
		Password: "p@ss",
		Name:     "portfolio",
		SSLMode:  "disable",
	})
	require.NoError(t, err)
	assert.True(t, d.returningID)
	assert.Equal(t, "postgres://lalu:p%40ss@db:5432/portfolio?sslmode=disable", dsn)

	_, _, err = dialectFor(config.DatabaseConfig{Driver: "oracle"})
	assert.Error(t, err)
}

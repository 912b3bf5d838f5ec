package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"laludev-backend/internal/auth"
	"laludev-backend/internal/database"
	"laludev-backend/internal/logging"
)

// publicPages are the static pages the server expects to find.
var publicPages = []string{"index.html", "admin.html", "admin-form.html", "projetos.html"}

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Prepare directories, schema and the administrator account",
	Long: `Create the upload and public directories, migrate the database schema,
provision the administrator account and report any missing public pages.

Running setup more than once is safe.`,
	Args: cobra.NoArgs,
	RunE: runSetup,
}

func runSetup(cmd *cobra.Command, _ []string) error {
	cfg, logger, err := bootstrap()
	if err != nil {
		return err
	}
	defer func() { _ = logging.Sync(logger) }()

	dirs := []string{
		filepath.Join(cfg.Upload.Dir, cfg.Upload.Folder),
		cfg.Upload.StagingDir,
		cfg.Server.PublicDir,
	}
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return fmt.Errorf("failed to create %s: %w", dir, err)
		}
	}

	store, err := openStore(cmd, cfg, logger)
	if err != nil {
		return err
	}
	defer store.Close()

	id, err := auth.NewCredentials(database.NewAdminRepo(store)).
		Upsert(cmd.Context(), cfg.Admin.Username, cfg.Admin.Password.Value())
	if err != nil {
		return fmt.Errorf("failed to provision administrator: %w", err)
	}
	logger.Info("administrator ready", zap.String("usuario", cfg.Admin.Username), zap.Int64("id", id))

	missing := missingPages(cfg.Server.PublicDir)
	for _, page := range missing {
		logger.Warn("public page not found", zap.String("file", filepath.Join(cfg.Server.PublicDir, page)))
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Setup complete (%s database, %d public pages missing)\n",
		store.Driver(), len(missing))
	return nil
}

func missingPages(dir string) []string {
	var missing []string
	for _, page := range publicPages {
		if _, err := os.Stat(filepath.Join(dir, page)); errors.Is(err, os.ErrNotExist) {
			missing = append(missing, page)
		}
	}
	return missing
}

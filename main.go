// Package main implements the laludev portfolio server and its
// maintenance commands.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"laludev-backend/internal/config"
	"laludev-backend/internal/database"
	"laludev-backend/internal/logging"
)

var (
	// configPath is an optional YAML file layered under the environment
	configPath string
	version    = "dev"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "laludev",
	Short: "Portfolio site with an administrator authoring flow",
	Long: `laludev serves the public portfolio pages, the project listing API and
the password protected form used to publish new projects.

Configuration comes from the environment (PORT, DB_DRIVER, SESSION_SECRET,
ADMIN_PASSWORD, CLOUDINARY_*, ...) optionally layered over a YAML file.`,
	Version:      version,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "optional YAML config file")
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(setupCmd)
	rootCmd.AddCommand(projectCmd)
}

// bootstrap loads configuration and builds the logger every command shares.
func bootstrap() (*config.Config, *zap.Logger, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, err
	}
	logger, err := logging.New(cfg.Log)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return cfg, logger, nil
}

// openStore opens the configured database, running migrations.
func openStore(cmd *cobra.Command, cfg *config.Config, logger *zap.Logger) (*database.Store, error) {
	logger.Info("opening database", zap.String("driver", cfg.Database.Driver))
	store, err := database.Open(cmd.Context(), cfg.Database, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	return store, nil
}

package main

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"laludev-backend/internal/database"
	"laludev-backend/internal/logging"
)

var projectCmd = &cobra.Command{
	Use:   "project",
	Short: "Manage stored projects",
}

var activateCmd = &cobra.Command{
	Use:   "activate <id>",
	Short: "Show a project in the public listing again",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return setProjectActive(cmd, args[0], true)
	},
}

var deactivateCmd = &cobra.Command{
	Use:   "deactivate <id>",
	Short: "Hide a project from the public listing",
	Long: `Hide a project from the public listing without deleting it.

Examples:
  laludev project deactivate 12`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return setProjectActive(cmd, args[0], false)
	},
}

func init() {
	projectCmd.AddCommand(activateCmd)
	projectCmd.AddCommand(deactivateCmd)
}

func setProjectActive(cmd *cobra.Command, rawID string, active bool) error {
	id, err := strconv.ParseInt(rawID, 10, 64)
	if err != nil || id <= 0 {
		return fmt.Errorf("invalid project id %q", rawID)
	}

	cfg, logger, err := bootstrap()
	if err != nil {
		return err
	}
	defer func() { _ = logging.Sync(logger) }()

	store, err := openStore(cmd, cfg, logger)
	if err != nil {
		return err
	}
	defer store.Close()

	if err := database.NewProjectRepo(store).SetActive(cmd.Context(), id, active); err != nil {
		if errors.Is(err, database.ErrProjectNotFound) {
			return fmt.Errorf("project %d not found", id)
		}
		return err
	}

	state := "hidden"
	if active {
		state = "visible"
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Project %d is now %s\n", id, state)
	return nil
}

package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/sagarc03/swiftgate/config"
	"github.com/sagarc03/swiftgate/database"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or check the upload registry schema",
	Long: `Create the upload registry tables and indexes when missing, then
validate the schema. With --check nothing is created.`,
	Args: cobra.NoArgs,
	RunE: runMigrate,
}

func init() {
	migrateCmd.Flags().Bool("check", false, "only validate the existing schema")
	rootCmd.AddCommand(migrateCmd)
}

func runMigrate(cmd *cobra.Command, args []string) error {
	cfg, err := config.FromContext(cmd.Context())
	if err != nil {
		return err
	}
	checkOnly, _ := cmd.Flags().GetBool("check")

	_, closeDB, err := database.Open(cmd.Context(), cfg.Database, !checkOnly)
	if err != nil {
		return fmt.Errorf("migrate registry: %w", err)
	}
	defer closeDB()

	slog.Info("registry schema ready", "type", cfg.Database.Type, "table", cfg.Database.Tables.Objects)
	return nil
}

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/MrJamesThe3rd/pennywise/internal/config"
	"github.com/MrJamesThe3rd/pennywise/internal/database"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending database migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		if cfg.Storage.Driver != config.DriverPostgres {
			return fmt.Errorf("migrate needs the %s driver, got %s", config.DriverPostgres, cfg.Storage.Driver)
		}

		db, err := database.New(cmd.Context(), cfg.ConnectionString())
		if err != nil {
			return err
		}
		defer db.Close()

		if err := database.Migrate(cmd.Context(), db); err != nil {
			return err
		}

		fmt.Fprintln(cmd.OutOrStdout(), "Database is up to date.")

		return nil
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}

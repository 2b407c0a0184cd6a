package main

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/MrJamesThe3rd/pennywise/internal/app"
	"github.com/MrJamesThe3rd/pennywise/internal/config"
)

var (
	flagOwner  string
	flagDriver string
)

var rootCmd = &cobra.Command{
	Use:           "pennywise",
	Short:         "Personal finance ledger",
	Long:          "Manage accounts, transactions and statement imports directly against the configured storage.",
	SilenceUsage:  true,
	SilenceErrors: false,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagOwner, "owner", "", "Owner id (defaults to OWNER_ID)")
	rootCmd.PersistentFlags().StringVar(&flagDriver, "storage", "", "Storage driver override: postgres or memory")
}

func loadConfig() (*config.Config, error) {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	if flagDriver != "" {
		cfg.Storage.Driver = flagDriver
	}

	return cfg, nil
}

func ownerID(cfg *config.Config) (uuid.UUID, error) {
	raw := flagOwner
	if raw == "" {
		raw = cfg.Owner.ID
	}

	owner, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, fmt.Errorf("owner must be a uuid (set --owner or OWNER_ID): %w", err)
	}

	return owner, nil
}

// session opens the services for a command. Callers must call the returned func when done.
func session(cmd *cobra.Command) (*app.Services, uuid.UUID, func(), error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, uuid.Nil, nil, err
	}

	owner, err := ownerID(cfg)
	if err != nil {
		return nil, uuid.Nil, nil, err
	}

	svc, closeFn, err := app.Open(cmd.Context(), cfg)
	if err != nil {
		return nil, uuid.Nil, nil, err
	}

	return svc, owner, closeFn, nil
}

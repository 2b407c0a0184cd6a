package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/MrJamesThe3rd/pennywise/internal/http/auth"
)

var (
	tokenTTL      time.Duration
	tokenNewOwner bool
)

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Issue an API token for the owner",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		if cfg.Auth.Secret == "" {
			return errors.New("AUTH_SECRET is required")
		}

		owner := uuid.New()
		if !tokenNewOwner {
			if owner, err = ownerID(cfg); err != nil {
				return err
			}
		}

		ttl := tokenTTL
		if ttl == 0 {
			ttl = cfg.Auth.TokenTTL
		}

		token, err := auth.IssueToken([]byte(cfg.Auth.Secret), owner, ttl)
		if err != nil {
			return err
		}

		if tokenNewOwner {
			fmt.Fprintf(cmd.ErrOrStderr(), "owner: %s\n", owner)
		}

		fmt.Fprintln(cmd.OutOrStdout(), token)

		return nil
	},
}

func init() {
	tokenCmd.Flags().DurationVar(&tokenTTL, "ttl", 0, "Token lifetime (defaults to AUTH_TOKEN_TTL)")
	tokenCmd.Flags().BoolVar(&tokenNewOwner, "new-owner", false, "Mint a token for a freshly generated owner id")
	rootCmd.AddCommand(tokenCmd)
}

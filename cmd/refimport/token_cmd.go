package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"skyline/opsboard/internal/auth"
	"skyline/opsboard/internal/config"
)

// newTokenCmd issues a bearer token for calling the HTTP API.
func newTokenCmd() *cobra.Command {
	var (
		user string
		ttl  time.Duration
	)
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue an API bearer token signed with JWT_SECRET",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if err := cfg.Require("JWT_SECRET", cfg.JWTSecret); err != nil {
				return err
			}
			token, err := auth.IssueToken([]byte(cfg.JWTSecret), user, ttl)
			if err != nil {
				return err
			}
			fmt.Println(token)
			return nil
		},
	}
	cmd.Flags().StringVar(&user, "user", "", "User id carried in the token (required)")
	cmd.Flags().DurationVar(&ttl, "ttl", 24*time.Hour, "Token lifetime")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}

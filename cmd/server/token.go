package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/livix/roommates/internal/auth"
	"github.com/livix/roommates/internal/config"
)

var tokenTTL time.Duration

var tokenCmd = &cobra.Command{
	Use:   "token <profile-id>",
	Short: "Issue a JWT for a profile id",
	Args:  cobra.ExactArgs(1),
	RunE:  runToken,
}

func init() {
	tokenCmd.Flags().DurationVar(&tokenTTL, "ttl", auth.DefaultTTL, "token lifetime")
}

func runToken(cmd *cobra.Command, args []string) error {
	if err := config.LoadConfig(); err != nil {
		return err
	}
	token, err := auth.GenerateJWT(args[0], config.AppConfig.JWTSecret, tokenTTL)
	if err != nil {
		return fmt.Errorf("failed to generate token: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), token)
	return nil
}

package main

import (
	"fmt"
	"time"

	"github.com/SscSPs/banking_ledger/internal/middleware"
	"github.com/SscSPs/banking_ledger/internal/platform/config"
	"github.com/spf13/cobra"
)

func tokenCommand() *cobra.Command {
	var (
		subject string
		tenant  string
		ttl     time.Duration
	)
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue a bearer token for a calling service",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			signed, err := middleware.IssueServiceToken(cfg.JWTSecret, cfg.JWTIssuer, subject, tenant, ttl)
			if err != nil {
				return fmt.Errorf("failed to issue token: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), signed)
			return nil
		},
	}
	cmd.Flags().StringVar(&subject, "subject", "", "calling service name")
	cmd.Flags().StringVar(&tenant, "tenant", "", "tenant bound to the token")
	cmd.Flags().DurationVar(&ttl, "ttl", 24*time.Hour, "token lifetime")
	_ = cmd.MarkFlagRequired("subject")
	return cmd
}

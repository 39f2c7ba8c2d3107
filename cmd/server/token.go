package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/kiwari-pos/register/internal/auth"
	"github.com/kiwari-pos/register/internal/config"
	"github.com/kiwari-pos/register/internal/enum"
	"github.com/spf13/cobra"
)

// tokenCmd mints an access token for a register screen. Users live in the
// back office; this is for kiosks and local testing.
func tokenCmd(envFile *string) *cobra.Command {
	var (
		outlet string
		user   string
		role   string
		ttl    time.Duration
	)

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue an access token for an outlet",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*envFile)
			if err != nil {
				return err
			}

			outletID, err := uuid.Parse(outlet)
			if err != nil {
				return fmt.Errorf("invalid --outlet: %w", err)
			}
			userID := uuid.New()
			if user != "" {
				if userID, err = uuid.Parse(user); err != nil {
					return fmt.Errorf("invalid --user: %w", err)
				}
			}
			role = strings.ToUpper(role)
			switch role {
			case enum.UserRoleOwner, enum.UserRoleManager, enum.UserRoleCashier:
			default:
				return fmt.Errorf("invalid --role %q", role)
			}

			token, err := auth.GenerateTokenTTL(cfg.JWTSecret, userID, outletID, role, ttl)
			if err != nil {
				return fmt.Errorf("generate token: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}

	cmd.Flags().StringVar(&outlet, "outlet", "", "Outlet ID the token is scoped to")
	cmd.Flags().StringVar(&user, "user", "", "User ID (random when empty)")
	cmd.Flags().StringVar(&role, "role", enum.UserRoleCashier, "OWNER, MANAGER or CASHIER")
	cmd.Flags().DurationVar(&ttl, "ttl", 12*time.Hour, "Token lifetime")
	_ = cmd.MarkFlagRequired("outlet")
	return cmd
}

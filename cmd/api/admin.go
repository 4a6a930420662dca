package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/MessyScribbles/Non-Complex-Ticket-Handling-webapp-w-integrated-AI/internal/persistence"
	"github.com/MessyScribbles/Non-Complex-Ticket-Handling-webapp-w-integrated-AI/internal/service"
)

// Admin accounts are never self-registered; operators provision them here.
func newCreateAdminCommand() *cobra.Command {
	var input service.RegisterInput

	cmd := &cobra.Command{
		Use:   "create-admin",
		Short: "Provision a consultant account for the admin portal",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, logger, err := bootstrap()
			if err != nil {
				return err
			}
			defer logger.Sync() //nolint:errcheck
			if cfg.Postgres.DSN == "" {
				return errors.New("POSTGRES_DSN is required; the in-memory store does not outlive this command")
			}

			pg, err := persistence.NewPostgres(cmd.Context(), cfg.Postgres, logger)
			if err != nil {
				return fmt.Errorf("connect postgres: %w", err)
			}
			defer pg.Close()

			repos := persistence.NewRepositories(pg.PoolHandle())
			user, err := service.NewAuthService(cfg.Auth, repos.Users).CreateAdmin(cmd.Context(), input)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "created admin %s <%s>\n", user.ID, user.Email)
			return nil
		},
	}

	cmd.Flags().StringVar(&input.Name, "name", "", "display name")
	cmd.Flags().StringVar(&input.Email, "email", "", "login email")
	cmd.Flags().StringVar(&input.Password, "password", "", "initial password")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")
	_ = cmd.MarkFlagRequired("name")
	return cmd
}

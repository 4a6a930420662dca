package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/MessyScribbles/Non-Complex-Ticket-Handling-webapp-w-integrated-AI/internal/persistence"
)

func newMigrateCommand() *cobra.Command {
	var (
		dir     string
		timeout time.Duration
	)

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending SQL migrations",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, logger, err := bootstrap()
			if err != nil {
				return err
			}
			defer logger.Sync() //nolint:errcheck
			if cfg.Postgres.DSN == "" {
				return errors.New("POSTGRES_DSN is required to run migrations")
			}
			if dir == "" {
				dir = cfg.Postgres.MigrationsDir
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()

			pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
			if err != nil {
				return fmt.Errorf("connect postgres: %w", err)
			}
			defer pg.Close()

			applied, err := persistence.RunMigrations(ctx, pg.PoolHandle(), dir, logger)
			if err != nil {
				return err
			}
			logger.Info("migrate finished", zap.Int("applied", applied), zap.String("dir", dir))
			return nil
		},
	}

	cmd.Flags().StringVar(&dir, "dir", "", "migrations directory (defaults to POSTGRES_MIGRATIONS_DIR)")
	cmd.Flags().DurationVar(&timeout, "timeout", 2*time.Minute, "overall deadline")
	return cmd
}

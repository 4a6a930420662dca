package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/MessyScribbles/Non-Complex-Ticket-Handling-webapp-w-integrated-AI/internal/config"
	"github.com/MessyScribbles/Non-Complex-Ticket-Handling-webapp-w-integrated-AI/internal/observability"
)

var envFile string

var rootCmd = &cobra.Command{
	Use:   "support-desk",
	Short: "Support desk API with ticket to live-chat hand-off.",
	Long: `support-desk serves the customer and admin portals: tickets, the AI assistant,
and live chats that consultants open by accepting a ticket.`,
	SilenceUsage: true,
}

// Execute runs the CLI.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", "", "dotenv file loaded before the environment defaults")

	rootCmd.AddCommand(newServeCommand())
	rootCmd.AddCommand(newMigrateCommand())
	rootCmd.AddCommand(newCreateAdminCommand())
}

// bootstrap loads configuration and builds the logger shared by every command.
func bootstrap() (*config.Config, *zap.Logger, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			return nil, nil, fmt.Errorf("load %s: %w", envFile, err)
		}
	}
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}
	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		return nil, nil, fmt.Errorf("init logger: %w", err)
	}
	logger = logger.With(
		zap.String("service", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("version", cfg.App.Version),
	)
	return cfg, logger, nil
}

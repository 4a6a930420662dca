package main

import (
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	httptransport "github.com/MessyScribbles/Non-Complex-Ticket-Handling-webapp-w-integrated-AI/internal/api/http"
	"github.com/MessyScribbles/Non-Complex-Ticket-Handling-webapp-w-integrated-AI/internal/assistant"
	"github.com/MessyScribbles/Non-Complex-Ticket-Handling-webapp-w-integrated-AI/internal/events"
	"github.com/MessyScribbles/Non-Complex-Ticket-Handling-webapp-w-integrated-AI/internal/observability"
	"github.com/MessyScribbles/Non-Complex-Ticket-Handling-webapp-w-integrated-AI/internal/persistence"
	"github.com/MessyScribbles/Non-Complex-Ticket-Handling-webapp-w-integrated-AI/internal/worker"
)

func newServeCommand() *cobra.Command {
	var shutdownTimeout time.Duration

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API server",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, logger, err := bootstrap()
			if err != nil {
				return err
			}
			defer logger.Sync() //nolint:errcheck

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
			if err != nil {
				return fmt.Errorf("connect postgres: %w", err)
			}
			defer pg.Close()

			if cfg.Postgres.RunMigrations {
				if _, err := persistence.RunMigrations(ctx, pg.PoolHandle(), cfg.Postgres.MigrationsDir, logger); err != nil {
					return fmt.Errorf("run migrations: %w", err)
				}
			}
			repos := persistence.NewRepositories(pg.PoolHandle())
			logger.Info("repositories ready", zap.String("backend", repos.Backend))

			redis := persistence.NewRedis(ctx, cfg.Redis, logger)
			defer redis.Close()

			var (
				dispatcher = events.NewInMemoryDispatcher()
				relay      worker.Relay
			)
			if redis != nil {
				redisDispatcher := events.NewRedisDispatcher(redis.Client, cfg.Channel(), logger.Named("events"))
				dispatcher, relay = redisDispatcher, redisDispatcher
			}

			var assistantClient assistant.Client
			if cfg.Assistant.Enabled() {
				assistantClient = assistant.NewOpenAIClient(cfg.Assistant, &http.Client{Timeout: cfg.Assistant.Timeout()})
			} else {
				logger.Warn("ASSISTANT_API_KEY not provided; the assistant is disabled")
			}

			group, groupCtx := errgroup.WithContext(ctx)
			srv := httptransport.NewServer(httptransport.ServerDependencies{
				Base:       groupCtx,
				Config:     cfg,
				Logger:     logger,
				Metrics:    observability.NewMetrics(metricsNamespace(cfg.App.Name)),
				Repos:      repos,
				Dispatcher: dispatcher,
				Postgres:   pg,
				Redis:      redis,
				Assistant:  assistantClient,
			})
			worker.StartNotificationWorker(dispatcher, srv.Notifier)

			group.Go(func() error {
				logger.Info("listening", zap.String("addr", cfg.App.Addr()))
				return srv.App.Listen(cfg.App.Addr())
			})
			group.Go(func() error {
				<-groupCtx.Done()
				logger.Info("shutting down")
				return srv.App.ShutdownWithTimeout(shutdownTimeout)
			})
			group.Go(func() error {
				return worker.RunEventRelay(groupCtx, relay, logger.Named("relay"))
			})

			if err := group.Wait(); err != nil && ctx.Err() == nil {
				return err
			}
			return nil
		},
	}

	cmd.Flags().DurationVar(&shutdownTimeout, "shutdown-timeout", 30*time.Second, "Maximum time to wait for graceful shutdown")
	return cmd
}

func metricsNamespace(appName string) string {
	return strings.NewReplacer("-", "_", " ", "_", ".", "_").Replace(strings.ToLower(appName))
}


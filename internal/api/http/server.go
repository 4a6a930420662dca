package http

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/MessyScribbles/Non-Complex-Ticket-Handling-webapp-w-integrated-AI/internal/api/http/handlers"
	"github.com/MessyScribbles/Non-Complex-Ticket-Handling-webapp-w-integrated-AI/internal/assistant"
	"github.com/MessyScribbles/Non-Complex-Ticket-Handling-webapp-w-integrated-AI/internal/auth"
	"github.com/MessyScribbles/Non-Complex-Ticket-Handling-webapp-w-integrated-AI/internal/config"
	"github.com/MessyScribbles/Non-Complex-Ticket-Handling-webapp-w-integrated-AI/internal/events"
	"github.com/MessyScribbles/Non-Complex-Ticket-Handling-webapp-w-integrated-AI/internal/live"
	"github.com/MessyScribbles/Non-Complex-Ticket-Handling-webapp-w-integrated-AI/internal/observability"
	"github.com/MessyScribbles/Non-Complex-Ticket-Handling-webapp-w-integrated-AI/internal/persistence"
	"github.com/MessyScribbles/Non-Complex-Ticket-Handling-webapp-w-integrated-AI/internal/service"
)

// ServerDependencies is everything the HTTP server is assembled from.
type ServerDependencies struct {
	// Base bounds the lifetime of live streams.
	Base       context.Context
	Config     *config.Config
	Logger     *zap.Logger
	Metrics    *observability.Metrics
	Repos      persistence.Repositories
	Dispatcher events.Dispatcher
	Postgres   *persistence.Postgres
	Redis      *persistence.Redis
	Assistant  assistant.Client
}

// Server is the assembled fiber app with the services behind it.
type Server struct {
	App      *fiber.App
	Auth     *service.AuthService
	Tickets  *service.TicketService
	Handoff  *service.HandoffService
	Hub      *live.Hub
	Notifier *service.NotificationService
}

// NewServer wires services, live hub and handlers into a fiber app.
func NewServer(deps ServerDependencies) *Server {
	cfg := deps.Config
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	base := deps.Base
	if base == nil {
		base = context.Background()
	}
	repos := deps.Repos

	navigations := live.NewNavigations()
	hub := live.NewHub(live.HubDependencies{
		Dispatcher: deps.Dispatcher,
		Tickets:    repos.Tickets,
		Sessions:   repos.Sessions,
		Messages:   repos.Messages,
		Logger:     logger.Named("live"),
	})

	authService := service.NewAuthService(cfg.Auth, repos.Users)
	ticketService := service.NewTicketService(service.TicketDependencies{
		TicketRepo: repos.Tickets,
		Dispatcher: deps.Dispatcher,
		Logger:     logger,
	})
	handoffService := service.NewHandoffService(service.HandoffDependencies{
		TicketRepo:  repos.Tickets,
		SessionRepo: repos.Sessions,
		MessageRepo: repos.Messages,
		Dispatcher:  deps.Dispatcher,
		Navigator:   navigations,
		Metrics:     deps.Metrics,
		Logger:      logger.Named("handoff"),
	})
	assistantService := service.NewAssistantService(deps.Assistant, logger.Named("assistant"))
	announcementService := service.NewAnnouncementService(repos.Announcements)
	notifier := service.NewNotificationService(logger.Named("notify"), cfg.Notification)

	app := fiber.New(fiber.Config{
		AppName:               cfg.App.Name,
		DisableStartupMessage: true,
		ReadTimeout:           cfg.App.RequestTimeout(),
		// SSE responses are written long after the handler returns.
		WriteTimeout: 0,
		IdleTimeout:  2 * time.Minute,
	})
	RegisterMiddlewares(app, logger, deps.Metrics, cfg.App.RequestTimeout())

	RegisterRoutes(app, RouteConfig{
		Health:       handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, deps.Postgres, deps.Redis),
		Users:        handlers.NewUsersHandler(authService),
		Tickets:      handlers.NewTicketsHandler(ticketService),
		AdminTickets: handlers.NewAdminTicketsHandler(ticketService, handoffService),
		Sessions:     handlers.NewSessionsHandler(handoffService),
		Live: handlers.NewLiveHandler(handlers.LiveDependencies{
			Base:        base,
			Hub:         hub,
			Navigations: navigations,
			Handoff:     handoffService,
			Metrics:     deps.Metrics,
			Heartbeat:   cfg.Live.Heartbeat(),
			Logger:      logger.Named("sse"),
		}),
		Assistant:      handlers.NewAssistantHandler(assistantService, ticketService),
		Announcements:  handlers.NewAnnouncementsHandler(announcementService),
		Metrics:        deps.Metrics,
		AuthMiddleware: auth.NewAuthMiddleware(authService.TokenManager(), repos.Users),
	})

	return &Server{
		App:      app,
		Auth:     authService,
		Tickets:  ticketService,
		Handoff:  handoffService,
		Hub:      hub,
		Notifier: notifier,
	}
}

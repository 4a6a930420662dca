package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"

	"github.com/MessyScribbles/Non-Complex-Ticket-Handling-webapp-w-integrated-AI/internal/api/http/handlers"
	"github.com/MessyScribbles/Non-Complex-Ticket-Handling-webapp-w-integrated-AI/internal/auth"
	"github.com/MessyScribbles/Non-Complex-Ticket-Handling-webapp-w-integrated-AI/internal/observability"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Users          *handlers.UsersHandler
	Tickets        *handlers.TicketsHandler
	AdminTickets   *handlers.AdminTicketsHandler
	Sessions       *handlers.SessionsHandler
	Live           *handlers.LiveHandler
	Assistant      *handlers.AssistantHandler
	Announcements  *handlers.AnnouncementsHandler
	Metrics        *observability.Metrics
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	if cfg.Metrics != nil {
		app.Get("/metrics", adaptor.HTTPHandler(cfg.Metrics.Handler()))
	}

	authGroup := app.Group("/auth")
	authGroup.Post("/register", cfg.Users.Register)
	authGroup.Post("/login", cfg.Users.Login)

	requireAuth := cfg.AuthMiddleware.Handle
	app.Get("/me", requireAuth, auth.RequireAnyRole(), cfg.Users.Me)
	app.Patch("/me", requireAuth, auth.RequireAnyRole(), cfg.Users.UpdateProfile)

	announcements := app.Group("/announcements", requireAuth, auth.RequireAnyRole())
	announcements.Get("", cfg.Announcements.List)
	announcements.Post("", auth.RequireAdmin(), cfg.Announcements.Create)
	announcements.Delete("/:id", auth.RequireAdmin(), cfg.Announcements.Delete)

	tickets := app.Group("/tickets", requireAuth, auth.RequireCustomer())
	tickets.Post("", cfg.Tickets.CreateTicket)
	tickets.Get("", cfg.Tickets.ListTickets)
	tickets.Get("/:id", cfg.Tickets.GetTicket)

	assistantGroup := app.Group("/assistant", requireAuth, auth.RequireCustomer())
	assistantGroup.Post("/chat", cfg.Assistant.Chat)
	assistantGroup.Post("/tickets", cfg.Assistant.ConfirmSuggestion)

	admin := app.Group("/admin", requireAuth, auth.RequireAdmin())
	admin.Get("/tickets", cfg.AdminTickets.ListTickets)
	admin.Get("/tickets/:id", cfg.AdminTickets.GetTicket)
	admin.Post("/tickets/:id/accept", cfg.AdminTickets.Accept)

	sessions := app.Group("/sessions", requireAuth, auth.RequireAnyRole())
	sessions.Get("/:id", cfg.Sessions.Open)
	sessions.Get("/:id/messages", cfg.Sessions.Messages)
	sessions.Post("/:id/messages", cfg.Sessions.SendMessage)
	sessions.Post("/:id/end", cfg.Sessions.EndChat)

	liveGroup := app.Group("/live", requireAuth, auth.RequireAnyRole())
	liveGroup.Get("/tickets", cfg.Live.Tickets)
	liveGroup.Get("/sessions/:id", cfg.Live.Session)
}

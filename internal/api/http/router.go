package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/hubly/helpdesk/internal/api/http/handlers"
	"github.com/hubly/helpdesk/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Users          *handlers.UsersHandler
	Tickets        *handlers.TicketsHandler
	Messages       *handlers.MessagesHandler
	Settings       *handlers.SettingsHandler
	Analytics      *handlers.AnalyticsHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes. The widget endpoints (ticket
// intake and settings read) are public; everything else requires a
// console token.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	app.Get("/health/metrics", cfg.Health.Metrics)

	api := app.Group("/api")

	authGroup := api.Group("/auth")
	authGroup.Post("/signup", cfg.Auth.Signup)
	authGroup.Post("/login", cfg.Auth.Login)
	authGroup.Get("/me", cfg.AuthMiddleware.Handle, cfg.Auth.Me)

	tickets := api.Group("/tickets")
	tickets.Post("/", cfg.Tickets.Create)

	ticketsAuth := tickets.Group("", cfg.AuthMiddleware.Handle, auth.RequireAuthenticated())
	ticketsAuth.Get("/", cfg.Tickets.List)
	// stats must be registered before the :id wildcard.
	ticketsAuth.Get("/stats", cfg.Tickets.Stats)
	ticketsAuth.Get("/:id", cfg.Tickets.Get)
	ticketsAuth.Put("/:id", cfg.Tickets.Update)
	ticketsAuth.Patch("/:id/assign", auth.RequireAdmin(), cfg.Tickets.Assign)
	ticketsAuth.Delete("/:id", auth.RequireAdmin(), cfg.Tickets.Delete)

	messages := api.Group("/messages", cfg.AuthMiddleware.Handle, auth.RequireAuthenticated())
	messages.Get("/:ticketId", cfg.Messages.List)
	messages.Post("/", cfg.Messages.Send)

	users := api.Group("/users", cfg.AuthMiddleware.Handle, auth.RequireAuthenticated())
	users.Get("/", cfg.Users.List)
	users.Get("/:id", cfg.Users.Get)
	users.Post("/", auth.RequireAdmin(), cfg.Users.Create)
	users.Put("/:id", cfg.Users.Update)
	users.Delete("/:id", auth.RequireAdmin(), cfg.Users.Delete)

	settings := api.Group("/settings")
	settings.Get("/chatbot", cfg.Settings.Get)
	settings.Put("/chatbot", cfg.AuthMiddleware.Handle, auth.RequireAdmin(), cfg.Settings.Update)
	settings.Post("/chatbot/reset", cfg.AuthMiddleware.Handle, auth.RequireAdmin(), cfg.Settings.Reset)

	analytics := api.Group("/analytics", cfg.AuthMiddleware.Handle, auth.RequireAuthenticated())
	analytics.Get("/", cfg.Analytics.Overview)
	analytics.Get("/missed-chats", cfg.Analytics.MissedChats)
	analytics.Get("/reply-time", cfg.Analytics.ReplyTime)
	analytics.Get("/resolved-tickets", cfg.Analytics.ResolvedTickets)
	analytics.Get("/total-chats", cfg.Analytics.TotalChats)
}

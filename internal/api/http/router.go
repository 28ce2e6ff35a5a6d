package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/support-router/internal/api/http/handlers"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health   *handlers.HealthHandler
	Messages *handlers.MessagesHandler
	Tickets  *handlers.TicketsHandler
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	v1 := app.Group("/v1")
	v1.Post("/messages", cfg.Messages.Route)
	v1.Get("/tickets", cfg.Tickets.ListTickets)
	v1.Get("/tickets/:id", cfg.Tickets.GetTicket)
	v1.Get("/logs", cfg.Tickets.ListLogs)
}

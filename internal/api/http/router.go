package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/field-report-service/internal/api/http/handlers"
	"github.com/spec-kit/field-report-service/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health    *handlers.HealthHandler
	Auth      *handlers.AuthHandler
	Reports   *handlers.ReportsHandler
	Stream    *handlers.StreamHandler
	Messaging *handlers.MessagingHandler
	Guard     *auth.SessionGuard
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	api := app.Group("/api")

	authGroup := api.Group("/auth")
	authGroup.Post("/login", cfg.Auth.Login)
	authGroup.Post("/logout", cfg.Auth.Logout)
	authGroup.Get("/me", cfg.Guard.Authenticate, cfg.Auth.Me)

	api.Post("/reports", cfg.Guard.Authenticate, cfg.Reports.Submit)

	actions := api.Group("/actions", cfg.Guard.Authenticate)
	actions.Post("/sendMessage", cfg.Messaging.SendMessage)
	actions.Post("/sendMedia", cfg.Messaging.SendMedia)

	admin := api.Group("/admin", cfg.Guard.Authenticate, cfg.Guard.RequireAdmin)
	admin.Get("/reports", cfg.Reports.List)
	admin.Post("/reports/status", cfg.Reports.UpdateStatus)
	admin.Get("/reports/stream", cfg.Stream.Stream)
}

package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/helpdesk-portal/internal/api/http/handlers"
	"github.com/spec-kit/helpdesk-portal/internal/auth"
	"github.com/spec-kit/helpdesk-portal/internal/domain"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Tickets        *handlers.TicketsHandler
	Directory      *handlers.DirectoryHandler
	Dashboard      *handlers.DashboardHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	app.Get("/", cfg.Auth.Index)
	app.Get("/login", cfg.Auth.LoginPage)
	app.Post("/login", cfg.Auth.Login)
	app.Post("/signup", cfg.Auth.Signup)
	app.Post("/forgot-password", cfg.Auth.ForgotPassword)
	app.Post("/logout", cfg.Auth.Logout)

	dashboard := app.Group("/dashboard", cfg.AuthMiddleware.Handle, auth.RequireRoute())
	dashboard.Get("", cfg.Dashboard.Dashboard)
	dashboard.Get("/notifications", cfg.Dashboard.Notifications)
	dashboard.Get("/export", cfg.Dashboard.Export)
	dashboard.Get("/analytics", cfg.Tickets.Analytics)

	tickets := dashboard.Group("/tickets")
	tickets.Get("", cfg.Tickets.List)
	tickets.Post("", auth.RequireRole(domain.RoleClient), cfg.Tickets.Create)
	tickets.Delete("/draft", auth.RequireRole(domain.RoleClient), cfg.Tickets.DiscardDraft)
	tickets.Patch("/:id/status", cfg.Tickets.ChangeStatus)
	tickets.Get("/:id/assign", auth.RequireRole(domain.RoleAdmin), cfg.Tickets.OpenAssign)
	tickets.Post("/:id/assign", auth.RequireRole(domain.RoleAdmin), cfg.Tickets.ConfirmAssign)
	tickets.Delete("/:id/assign", auth.RequireRole(domain.RoleAdmin), cfg.Tickets.CloseAssign)

	dashboard.Get("/profile", cfg.Directory.Profile)
	dashboard.Put("/profile", cfg.Directory.UpdateProfile)

	clients := dashboard.Group("/clients")
	clients.Get("", cfg.Directory.ListClients)
	clients.Post("", cfg.Directory.CreateClient)
	clients.Put("/:id", cfg.Directory.UpdateClient)
	clients.Delete("/:id", cfg.Directory.DeleteClient)

	admin := app.Group("/admin", cfg.AuthMiddleware.Handle, auth.RequireRoute())
	admin.Get("", cfg.Directory.Admin)
	admin.Patch("/users/:id/role", cfg.Directory.ChangeRole)
	admin.Put("/users/:id", cfg.Directory.UpdateUser)
	admin.Delete("/users/:id", cfg.Directory.DeleteUser)
}

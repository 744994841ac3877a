package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/support-room-service/internal/api/http/handlers"
	"github.com/spec-kit/support-room-service/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Users          *handlers.UsersHandler
	Groups         *handlers.GroupsHandler
	Rooms          *handlers.RoomsHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	app.Get("/metrics", cfg.Health.Metrics)

	authGroup := app.Group("/auth")
	authGroup.Post("/users/register", cfg.Users.Register)
	authGroup.Post("/users/login", cfg.Users.Login)

	protected := app.Group("", cfg.AuthMiddleware.Handle)

	groups := protected.Group("/groups")
	groups.Post("", cfg.Groups.Create)
	groups.Get("", cfg.Groups.List)
	groups.Get("/:id", cfg.Groups.Get)
	groups.Post("/:id/archive", cfg.Groups.Archive)
	groups.Get("/:id/stats", cfg.Groups.Stats)
	groups.Post("/:id/stages/:stage/join", cfg.Rooms.Join)

	rooms := protected.Group("/rooms")
	rooms.Post("/:id/leave", cfg.Rooms.Leave)
	rooms.Get("/:id/members", cfg.Rooms.Members)

	protected.Get("/me/rooms", cfg.Rooms.MyRooms)
}

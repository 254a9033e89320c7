package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/blog-service/internal/api/http/handlers"
	"github.com/spec-kit/blog-service/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Users          *handlers.UsersHandler
	Posts          *handlers.PostsHandler
	AuthMiddleware *auth.Middleware
}

// RegisterRoutes wires HTTP routes. Each post operation passes through
// exactly one identity gate: strict for mutations and the profile, optional
// for single-post reads, none for registration, login and the public list.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	api := app.Group("/api")
	api.Post("/register", cfg.Users.Register)
	api.Post("/login", cfg.Users.Login)

	api.Get("/posts", cfg.Posts.ListPosts)
	api.Post("/posts", cfg.AuthMiddleware.RequireAuth, cfg.Posts.CreatePost)
	api.Get("/posts/:id", cfg.AuthMiddleware.OptionalAuth, cfg.Posts.GetPost)
	api.Put("/posts/:id", cfg.AuthMiddleware.RequireAuth, cfg.Posts.UpdatePost)
	api.Delete("/posts/:id", cfg.AuthMiddleware.RequireAuth, cfg.Posts.DeletePost)

	api.Get("/users/:id/profile", cfg.AuthMiddleware.RequireAuth, cfg.Users.Profile)
}

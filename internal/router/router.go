package router

import (
	"github.com/gofiber/fiber/v2"

	"github.com/noah-isme/mentora-api/internal/config"
	"github.com/noah-isme/mentora-api/internal/handler"
	"github.com/noah-isme/mentora-api/internal/middleware"
	"github.com/noah-isme/mentora-api/internal/observability"
)

// Dependencies groups router dependencies for registration.
type Dependencies struct {
	ReviewHandler       *handler.ReviewHandler
	IntakeHandler       *handler.IntakeHandler
	ActivityHandler     *handler.ActivityHandler
	NotificationHandler *handler.NotificationHandler
	SeedHandler         *handler.SeedHandler
	HealthProbes        map[string]handler.HealthProbe
	JWTMiddleware       fiber.Handler
	OptionalJWT         fiber.Handler
	IntakeRateLimit     fiber.Handler
}

func passthrough(c *fiber.Ctx) error { return c.Next() }

// Register wires the HTTP routes into the fiber application.
func Register(app *fiber.App, cfg config.Config, deps Dependencies) {
	app.Get("/metrics", observability.MetricsHandler())

	api := app.Group("/api/v1", func(c *fiber.Ctx) error {
		c.Set("X-Application", cfg.AppName)
		return c.Next()
	})
	api.Get("/health", handler.HealthCheck(cfg, deps.HealthProbes))

	jwtMiddleware := deps.JWTMiddleware
	if jwtMiddleware == nil {
		jwtMiddleware = passthrough
	}
	optionalJWT := deps.OptionalJWT
	if optionalJWT == nil {
		optionalJWT = passthrough
	}
	intakeLimit := deps.IntakeRateLimit
	if intakeLimit == nil {
		intakeLimit = passthrough
	}

	// Public intake; a token, when present, links the submission to its author.
	if deps.IntakeHandler != nil {
		deps.IntakeHandler.Register(api, optionalJWT, intakeLimit)
	}

	if deps.NotificationHandler != nil {
		notifications := api.Group("/notifications", jwtMiddleware)
		deps.NotificationHandler.Register(notifications)
	}

	admin := app.Group("/api/admin", jwtMiddleware, middleware.RequireReviewer())
	if deps.ReviewHandler != nil {
		deps.ReviewHandler.Register(admin.Group("/reviews"))
	}
	if deps.ActivityHandler != nil {
		deps.ActivityHandler.Register(admin.Group("/activities", middleware.RequireRole(middleware.RoleAdmin)))
	}

	if deps.SeedHandler != nil {
		deps.SeedHandler.Register(app.Group("/api/seed"))
	}
}

package router

import (
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/edustack/edustack-api/internal/config"
	"github.com/edustack/edustack-api/internal/handler"
	"github.com/edustack/edustack-api/internal/middleware"
	"github.com/edustack/edustack-api/internal/observability"
)

// Dependencies groups router dependencies for registration.
type Dependencies struct {
	AuthHandler         *handler.AuthHandler
	StudentHandler      *handler.StudentHandler
	AnnouncementHandler *handler.AnnouncementHandler
	LeaveHandler        *handler.LeaveHandler
	AuditHandler        *handler.AuditHandler
	JWTMiddleware       fiber.Handler

	// Optional store handles probed by the health endpoint.
	DB    *gorm.DB
	Redis *redis.Client
}

// Register wires the HTTP routes into the fiber application.
func Register(app *fiber.App, cfg config.Config, deps Dependencies) {
	app.Get("/health", handler.HealthCheck(cfg, deps.DB, deps.Redis))
	app.Get("/metrics", observability.MetricsHandler())

	api := app.Group("/api/v1", func(c *fiber.Ctx) error {
		c.Set("X-Application", cfg.AppName)
		return c.Next()
	})

	jwtMiddleware := deps.JWTMiddleware
	if jwtMiddleware == nil {
		jwtMiddleware = func(c *fiber.Ctx) error { return c.Next() }
	}

	if deps.AuthHandler != nil {
		auth := api.Group("/auth")
		deps.AuthHandler.Register(auth)

		authProtected := api.Group("/auth", middleware.RequireTenant(), jwtMiddleware)
		deps.AuthHandler.RegisterProtected(authProtected)
	}

	// Everything below requires a resolved tenant and a valid access token.
	protected := api.Group("", middleware.RequireTenant(), jwtMiddleware)

	if deps.StudentHandler != nil {
		deps.StudentHandler.Register(protected.Group("/students"))
	}
	if deps.AnnouncementHandler != nil {
		deps.AnnouncementHandler.Register(protected.Group("/announcements"))
	}
	if deps.LeaveHandler != nil {
		deps.LeaveHandler.Register(protected.Group("/leave-requests"))
	}
	if deps.AuditHandler != nil {
		deps.AuditHandler.Register(protected.Group("/audit-logs"))
	}
}

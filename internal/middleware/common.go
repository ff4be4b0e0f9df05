package middleware

import (
	"io"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/rs/zerolog"
)

// Pipeline groups the request-security stages composed into the global
// middleware chain. The ordering is fixed and explicit: recover →
// correlation → observability → request log → CORS → tenant resolution →
// rate limiting → CSRF → sanitization. JWT and RBAC attach per route group.
type Pipeline struct {
	Logger    *zerolog.Logger
	Tenant    fiber.Handler
	RateLimit fiber.Handler
	CSRF      fiber.Handler
	Sanitize  fiber.Handler
}

// Register attaches the common middleware pipeline to the application.
func Register(app *fiber.App, p Pipeline) {
	requestLogger := zerolog.New(io.Discard)
	if p.Logger != nil {
		requestLogger = *p.Logger
	}

	app.Use(recover.New())
	app.Use(CorrelationID())
	app.Use(Observability(requestLogger))
	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization, X-Tenant-ID, X-CSRF-Token",
		AllowMethods: "GET,POST,PUT,PATCH,DELETE,OPTIONS",
	}))

	for _, stage := range []fiber.Handler{p.Tenant, p.RateLimit, p.CSRF, p.Sanitize} {
		if stage != nil {
			app.Use(stage)
		}
	}
}

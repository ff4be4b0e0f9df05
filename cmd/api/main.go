package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/edustack/edustack-api/internal/auth"
	"github.com/edustack/edustack-api/internal/cache"
	"github.com/edustack/edustack-api/internal/config"
	"github.com/edustack/edustack-api/internal/database"
	"github.com/edustack/edustack-api/internal/handler"
	"github.com/edustack/edustack-api/internal/middleware"
	"github.com/edustack/edustack-api/internal/models"
	"github.com/edustack/edustack-api/internal/observability"
	"github.com/edustack/edustack-api/internal/repository"
	"github.com/edustack/edustack-api/internal/router"
	"github.com/edustack/edustack-api/internal/service"
	"github.com/edustack/edustack-api/internal/tenant"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	db, err := database.ConnectPostgres(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	if err := db.AutoMigrate(
		&models.Tenant{},
		&models.User{},
		&models.Student{},
		&models.Announcement{},
		&models.LeaveRequest{},
		&models.AuditLog{},
	); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	redisClient, err := database.ConnectRedis(cfg.RedisURL)
	if err != nil {
		log.Fatalf("failed to connect to redis: %v", err)
	}
	defer redisClient.Close()

	natsConn, err := database.ConnectNATS(cfg.NATSURL, cfg.AppName)
	if err != nil {
		log.Fatalf("failed to connect to nats: %v", err)
	}
	if natsConn != nil {
		defer natsConn.Close()
	}

	observability.RegisterMetrics()

	tokens := auth.NewTokenService(cfg.JWTSecret, cfg.JWTRefreshSecret, cfg.AccessTokenTTL, cfg.RefreshTokenTTL)
	tenantCache := cache.New(redisClient, cfg.CacheTTL, logger)
	tenantRepo := repository.NewTenantRepository(db)
	resolver := tenant.NewResolver(tenantRepo, cfg.BaseDomain)

	auditService := service.NewAuditService(db, logger)
	authService := service.NewAuthService(db, tenantRepo, tokens, auditService, logger)
	studentService := service.NewStudentService(db, tenantCache, auditService, logger)
	announcementService := service.NewAnnouncementService(db, tenantCache, natsConn, cfg.NATSSubject, auditService, logger)
	leaveService := service.NewLeaveRequestService(db, auditService, logger)

	authHandler := handler.NewAuthHandler(authService, logger)
	studentHandler := handler.NewStudentHandler(studentService, logger)
	announcementHandler := handler.NewAnnouncementHandler(announcementService, logger)
	leaveHandler := handler.NewLeaveHandler(leaveService, logger)
	auditHandler := handler.NewAuditHandler(auditService, logger)

	rateLimiter := middleware.NewRateLimiter(redisClient, tokens, cfg.RateLimitDefault, cfg.RateLimitRules, logger)
	sanitizer := middleware.NewSanitizer(nil, logger)

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ServerHeader: cfg.AppName,
	})

	middleware.Register(app, middleware.Pipeline{
		Logger:    &logger,
		Tenant:    middleware.TenantContext(resolver, cfg.TenantHeader),
		RateLimit: rateLimiter.Handler(),
		CSRF:      middleware.CSRF(middleware.CSRFConfig{Secret: cfg.CSRFSecret, TokenTTL: cfg.CSRFTokenTTL}),
		Sanitize:  sanitizer.Handler(),
	})

	router.Register(app, cfg, router.Dependencies{
		AuthHandler:         authHandler,
		StudentHandler:      studentHandler,
		AnnouncementHandler: announcementHandler,
		LeaveHandler:        leaveHandler,
		AuditHandler:        auditHandler,
		JWTMiddleware:       middleware.JWTProtected(tokens),
		DB:                  db,
		Redis:               redisClient,
	})

	go func() {
		if err := app.Listen(cfg.HTTPAddress()); err != nil {
			log.Fatalf("failed to start server: %v", err)
		}
	}()

	waitForShutdown(app)
}

func waitForShutdown(app *fiber.App) {
	shutdownCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-shutdownCtx.Done()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(ctx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
	}

	log.Println("server stopped")
}

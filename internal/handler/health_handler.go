package handler

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/edustack/edustack-api/internal/config"
	"github.com/edustack/edustack-api/internal/utils"
)

// HealthResponse represents the payload returned by the health endpoint.
type HealthResponse struct {
	Status      string            `json:"status"`
	Timestamp   time.Time         `json:"timestamp"`
	Service     string            `json:"service"`
	Environment string            `json:"environment"`
	Checks      map[string]string `json:"checks,omitempty"`
}

// HealthCheck returns a handler that reports application health, including
// reachability of the backing stores when they are wired.
func HealthCheck(cfg config.Config, db *gorm.DB, rdb *redis.Client) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.Context(), 2*time.Second)
		defer cancel()

		payload := HealthResponse{
			Status:      "ok",
			Timestamp:   time.Now().UTC(),
			Service:     cfg.AppName,
			Environment: cfg.AppEnv,
			Checks:      map[string]string{},
		}

		if db != nil {
			payload.Checks["database"] = "up"
			if sqlDB, err := db.DB(); err != nil || sqlDB.PingContext(ctx) != nil {
				payload.Checks["database"] = "down"
				payload.Status = "degraded"
			}
		}
		if rdb != nil {
			payload.Checks["cache"] = "up"
			if err := rdb.Ping(ctx).Err(); err != nil {
				payload.Checks["cache"] = "down"
				payload.Status = "degraded"
			}
		}

		return utils.SendSuccess(c, "service healthy", payload)
	}
}

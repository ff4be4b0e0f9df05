package middleware

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/edustack/edustack-api/internal/apperr"
	"github.com/edustack/edustack-api/internal/auth"
	"github.com/edustack/edustack-api/internal/config"
	"github.com/edustack/edustack-api/internal/observability"
	"github.com/edustack/edustack-api/internal/utils"
)

// RateLimiter enforces a sliding-window limit per (client identity, endpoint
// class) using Redis sorted sets. When Redis is unreachable the request is
// admitted: availability wins over strict enforcement.
type RateLimiter struct {
	client   *redis.Client
	tokens   *auth.TokenService
	rules    map[string]config.RateLimitRule
	fallback config.RateLimitRule
	logger   zerolog.Logger
	now      func() time.Time
}

// NewRateLimiter constructs the limiter with per-prefix rules and a default.
// The limiter runs before bearer authentication, so it verifies the access
// token itself (when tokens is non-nil) to key authenticated callers by
// tenant and user instead of by IP.
func NewRateLimiter(client *redis.Client, tokens *auth.TokenService, fallback config.RateLimitRule, rules map[string]config.RateLimitRule, logger zerolog.Logger) *RateLimiter {
	if fallback.Limit <= 0 {
		fallback.Limit = 100
	}
	if fallback.Window <= 0 {
		fallback.Window = time.Minute
	}

	return &RateLimiter{
		client:   client,
		tokens:   tokens,
		rules:    rules,
		fallback: fallback,
		logger:   logger.With().Str("component", "rate_limiter").Logger(),
		now:      time.Now,
	}
}

// Handler returns the fiber middleware.
func (l *RateLimiter) Handler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		pathClass, rule := l.classify(c.Path())
		key := fmt.Sprintf("ratelimit:%s:%s", l.clientIdentity(c), pathClass)

		count, err := l.record(c, key, rule.Window)
		if err != nil {
			l.logger.Warn().Err(err).Str("key", key).Msg("rate limit store unreachable, failing open")
			return c.Next()
		}

		now := l.now()
		remaining := rule.Limit - int(count)
		if remaining < 0 {
			remaining = 0
		}

		c.Set("X-RateLimit-Limit", strconv.Itoa(rule.Limit))
		c.Set("X-RateLimit-Remaining", strconv.Itoa(remaining))
		c.Set("X-RateLimit-Reset", strconv.FormatInt(now.Add(rule.Window).Unix(), 10))

		if int(count) > rule.Limit {
			observability.RateLimitRejections().WithLabelValues(pathClass).Inc()
			c.Set("Retry-After", strconv.Itoa(int(rule.Window.Seconds())))
			return utils.SendError(c, apperr.ErrRateLimited)
		}

		return c.Next()
	}
}

// record trims expired entries, appends this request, and returns how many
// requests fall inside the current window. The trim, add, count, and expiry
// run in one transactional pipeline so concurrent requests from the same
// client cannot both observe the last free slot.
func (l *RateLimiter) record(c *fiber.Ctx, key string, window time.Duration) (int64, error) {
	now := l.now()
	cutoff := now.Add(-window)

	pipe := l.client.TxPipeline()
	pipe.ZRemRangeByScore(c.Context(), key, "0", strconv.FormatInt(cutoff.UnixNano(), 10))
	pipe.ZAdd(c.Context(), key, redis.Z{
		Score:  float64(now.UnixNano()),
		Member: fmt.Sprintf("%d-%s", now.UnixNano(), uuid.NewString()),
	})
	card := pipe.ZCard(c.Context(), key)
	pipe.Expire(c.Context(), key, window)

	if _, err := pipe.Exec(c.Context()); err != nil {
		return 0, err
	}

	return card.Val(), nil
}

// classify picks the longest configured prefix matching the path, falling
// back to the default rule.
func (l *RateLimiter) classify(path string) (string, config.RateLimitRule) {
	bestPrefix := ""
	for prefix := range l.rules {
		if strings.HasPrefix(path, prefix) && len(prefix) > len(bestPrefix) {
			bestPrefix = prefix
		}
	}

	if bestPrefix == "" {
		return "default", l.fallback
	}

	return bestPrefix, l.rules[bestPrefix]
}

// clientIdentity keys authenticated callers by tenant and user, everyone
// else by client IP.
func (l *RateLimiter) clientIdentity(c *fiber.Ctx) string {
	if userID := UserIDFromContext(c); userID != 0 {
		return fmt.Sprintf("user:%d:%d", TenantIDFromContext(c), userID)
	}
	if payload, ok := l.bearerPayload(c); ok {
		return fmt.Sprintf("user:%d:%d", payload.TenantID, payload.UserID)
	}

	return "ip:" + clientIP(c)
}

// bearerPayload verifies the Authorization header ahead of the JWT
// middleware. An invalid or absent token just means the caller is anonymous
// for rate-limiting purposes.
func (l *RateLimiter) bearerPayload(c *fiber.Ctx) (auth.Payload, bool) {
	if l.tokens == nil {
		return auth.Payload{}, false
	}

	const bearer = "Bearer "
	authorization := c.Get("Authorization")
	if len(authorization) <= len(bearer) || !strings.EqualFold(authorization[:len(bearer)], bearer) {
		return auth.Payload{}, false
	}

	payload, err := l.tokens.VerifyAccessToken(strings.TrimSpace(authorization[len(bearer):]))
	if err != nil {
		return auth.Payload{}, false
	}

	return payload, true
}

func clientIP(c *fiber.Ctx) string {
	if forwarded := c.Get("X-Forwarded-For"); forwarded != "" {
		parts := strings.Split(forwarded, ",")
		return strings.TrimSpace(parts[0])
	}
	if real := c.Get("X-Real-IP"); real != "" {
		return strings.TrimSpace(real)
	}
	return c.IP()
}

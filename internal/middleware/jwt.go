package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/edustack/edustack-api/internal/apperr"
	"github.com/edustack/edustack-api/internal/auth"
	"github.com/edustack/edustack-api/internal/observability"
	"github.com/edustack/edustack-api/internal/utils"
)

// JWTProtected validates bearer access tokens and binds the caller identity
// to the request. Any failure yields the same 401 so nothing about the
// specific check leaks.
func JWTProtected(tokens *auth.TokenService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authorization := c.Get("Authorization")
		if authorization == "" {
			observability.AuthFailures().WithLabelValues("missing_header").Inc()
			return utils.SendError(c, apperr.ErrUnauthorized)
		}

		const bearer = "Bearer "
		if !strings.HasPrefix(strings.ToLower(authorization), strings.ToLower(bearer)) {
			observability.AuthFailures().WithLabelValues("malformed_header").Inc()
			return utils.SendError(c, apperr.ErrUnauthorized)
		}

		tokenString := strings.TrimSpace(authorization[len(bearer):])
		if tokenString == "" {
			observability.AuthFailures().WithLabelValues("malformed_header").Inc()
			return utils.SendError(c, apperr.ErrUnauthorized)
		}

		payload, err := tokens.VerifyAccessToken(tokenString)
		if err != nil {
			observability.AuthFailures().WithLabelValues("invalid_token").Inc()
			return utils.SendError(c, apperr.ErrUnauthorized)
		}

		// A token minted for one school must not authenticate against
		// another school's resolved context.
		if resolved := TenantIDFromContext(c); resolved != 0 && resolved != payload.TenantID {
			observability.AuthFailures().WithLabelValues("tenant_mismatch").Inc()
			return utils.SendError(c, apperr.ErrUnauthorized)
		}

		c.Locals("user_id", payload.UserID)
		c.Locals("user_role", strings.ToLower(strings.TrimSpace(payload.Role)))
		if TenantIDFromContext(c) == 0 && payload.TenantID != 0 {
			c.Locals("tenant_id", payload.TenantID)
		}

		return c.Next()
	}
}

// UserIDFromContext returns the authenticated user id, or 0 when anonymous.
func UserIDFromContext(c *fiber.Ctx) uint {
	if v := c.Locals("user_id"); v != nil {
		if id, ok := v.(uint); ok {
			return id
		}
	}
	return 0
}

// UserRoleFromContext returns the authenticated role, or "".
func UserRoleFromContext(c *fiber.Ctx) string {
	if v := c.Locals("user_role"); v != nil {
		if role, ok := v.(string); ok {
			return role
		}
	}
	return ""
}

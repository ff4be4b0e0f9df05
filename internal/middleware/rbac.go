package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/edustack/edustack-api/internal/apperr"
	"github.com/edustack/edustack-api/internal/utils"
)

// RequireRole ensures that the authenticated user possesses one of the allowed roles.
func RequireRole(roles ...string) fiber.Handler {
	allowed := make(map[string]struct{}, len(roles))
	for _, role := range roles {
		normalized := strings.ToLower(strings.TrimSpace(role))
		if normalized != "" {
			allowed[normalized] = struct{}{}
		}
	}

	return func(c *fiber.Ctx) error {
		if UserIDFromContext(c) == 0 {
			return utils.SendError(c, apperr.ErrUnauthorized)
		}
		if _, ok := allowed[UserRoleFromContext(c)]; !ok {
			return utils.SendError(c, apperr.ErrPermissionDenied)
		}
		return c.Next()
	}
}

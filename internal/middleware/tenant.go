package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/edustack/edustack-api/internal/apperr"
	"github.com/edustack/edustack-api/internal/models"
	"github.com/edustack/edustack-api/internal/tenant"
	"github.com/edustack/edustack-api/internal/utils"
)

// Paths that never resolve a tenant, regardless of header or host: platform
// entry points that must work before any tenant context exists. Login is
// deliberately absent: accounts live inside a tenant, so login cannot look
// up a user until the tenant is resolved.
var tenantExemptPrefixes = []string{
	"/health",
	"/metrics",
	"/docs",
	"/api/v1/auth/register",
	"/api/v1/auth/refresh",
}

// TenantContext resolves the tenant for the request and stores it in the
// request locals. Exempt paths always proceed with a null tenant context.
func TenantContext(resolver *tenant.Resolver, headerName string) fiber.Handler {
	if headerName == "" {
		headerName = "X-Tenant-ID"
	}

	return func(c *fiber.Ctx) error {
		for _, prefix := range tenantExemptPrefixes {
			if strings.HasPrefix(c.Path(), prefix) {
				return c.Next()
			}
		}

		resolved, err := resolver.Resolve(c.Context(), c.Get(headerName), c.Hostname())
		if err != nil {
			return utils.SendError(c, apperr.ErrInternal)
		}

		if resolved != nil {
			c.Locals("tenant", resolved)
			c.Locals("tenant_id", resolved.ID)
		}

		return c.Next()
	}
}

// RequireTenant rejects requests that reached a tenant-required route
// without a resolved tenant.
func RequireTenant() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if TenantIDFromContext(c) == 0 {
			return utils.SendError(c, apperr.ErrTenantRequired)
		}
		return c.Next()
	}
}

// TenantIDFromContext returns the resolved tenant id, or 0 when the request
// carries no tenant context.
func TenantIDFromContext(c *fiber.Ctx) uint {
	if v := c.Locals("tenant_id"); v != nil {
		if id, ok := v.(uint); ok {
			return id
		}
	}
	return 0
}

// TenantFromContext returns the resolved tenant, or nil.
func TenantFromContext(c *fiber.Ctx) *models.Tenant {
	if v := c.Locals("tenant"); v != nil {
		if t, ok := v.(*models.Tenant); ok {
			return t
		}
	}
	return nil
}

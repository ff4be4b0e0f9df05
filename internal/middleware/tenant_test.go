package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/edustack/edustack-api/internal/models"
	"github.com/edustack/edustack-api/internal/tenant"
)

type tenantLookupStub struct {
	tenants map[string]models.Tenant
}

func (s *tenantLookupStub) FindResolvableByID(_ context.Context, id uint) (models.Tenant, error) {
	for _, t := range s.tenants {
		if t.ID == id && t.Resolvable() {
			return t, nil
		}
	}
	return models.Tenant{}, gorm.ErrRecordNotFound
}

func (s *tenantLookupStub) FindResolvableBySlug(_ context.Context, slug string) (models.Tenant, error) {
	if t, ok := s.tenants[slug]; ok && t.Resolvable() {
		return t, nil
	}
	return models.Tenant{}, gorm.ErrRecordNotFound
}

func tenantApp() *fiber.App {
	lookup := &tenantLookupStub{tenants: map[string]models.Tenant{
		"acme": {ID: 42, Slug: "acme", Status: models.TenantStatusActive},
	}}
	resolver := tenant.NewResolver(lookup, "example.com")

	app := fiber.New()
	app.Use(TenantContext(resolver, "X-Tenant-ID"))
	app.Get("/api/v1/students", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"tenant_id": TenantIDFromContext(c)})
	})
	app.Get("/api/v1/students/guarded", RequireTenant(), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})
	app.Post("/api/v1/auth/register", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"tenant_id": TenantIDFromContext(c)})
	})
	app.Post("/api/v1/auth/login", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"tenant_id": TenantIDFromContext(c)})
	})
	return app
}

func TestTenantContextFromHeader(t *testing.T) {
	app := tenantApp()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/students", nil)
	req.Header.Set("X-Tenant-ID", "42")
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var body struct {
		TenantID uint `json:"tenant_id"`
	}
	decodeJSONBody(t, resp, &body)
	require.Equal(t, uint(42), body.TenantID)
}

func TestTenantContextFromSubdomain(t *testing.T) {
	app := tenantApp()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/students", nil)
	req.Host = "acme.example.com"
	resp, err := app.Test(req)
	require.NoError(t, err)

	var body struct {
		TenantID uint `json:"tenant_id"`
	}
	decodeJSONBody(t, resp, &body)
	require.Equal(t, uint(42), body.TenantID)
}

func TestTenantContextExemptPathIgnoresHeader(t *testing.T) {
	app := tenantApp()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/register", nil)
	req.Header.Set("X-Tenant-ID", "42")
	resp, err := app.Test(req)
	require.NoError(t, err)

	var body struct {
		TenantID uint `json:"tenant_id"`
	}
	decodeJSONBody(t, resp, &body)
	require.Zero(t, body.TenantID, "exempt routes proceed with null tenant context")
}

func TestTenantContextLoginIsNotExempt(t *testing.T) {
	app := tenantApp()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", nil)
	req.Header.Set("X-Tenant-ID", "acme")
	resp, err := app.Test(req)
	require.NoError(t, err)

	var body struct {
		TenantID uint `json:"tenant_id"`
	}
	decodeJSONBody(t, resp, &body)
	require.Equal(t, uint(42), body.TenantID, "login resolves the tenant it authenticates against")
}

func TestRequireTenantRejectsMissingContext(t *testing.T) {
	app := tenantApp()

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/students/guarded", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/students/guarded", nil)
	req.Header.Set("X-Tenant-ID", "acme")
	resp, err = app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
}

package handler_test

import (
	"net/http"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"

	"github.com/edustack/edustack-api/internal/dto"
	"github.com/edustack/edustack-api/internal/models"
)

func TestAnnouncementPublishAndList(t *testing.T) {
	env := newTestEnv(t)

	resp := env.do(t, testRequest{
		method: http.MethodPost,
		path:   "/api/v1/announcements",
		body: map[string]interface{}{
			"title": "Sports Day",
			"body":  `<p>Friday</p><script>alert(1)</script>`,
		},
		tenant: 1,
		user:   1,
		role:   models.RoleTeacher,
	})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	var created struct {
		Data dto.AnnouncementResponse `json:"data"`
	}
	decodeResponse(t, resp, &created)
	require.NotContains(t, created.Data.Body, "<script")

	resp = env.do(t, testRequest{
		method: http.MethodGet,
		path:   "/api/v1/announcements",
		tenant: 1,
		user:   2,
		role:   models.RoleStudent,
	})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	require.Equal(t, "false", resp.Header.Get("X-Cache-Hit"))

	var listed struct {
		Data dto.AnnouncementListResponse `json:"data"`
	}
	decodeResponse(t, resp, &listed)
	require.Len(t, listed.Data.Items, 1)

	// Second read is served from the tenant cache.
	resp = env.do(t, testRequest{
		method: http.MethodGet,
		path:   "/api/v1/announcements",
		tenant: 1,
		user:   2,
		role:   models.RoleStudent,
	})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	require.Equal(t, "true", resp.Header.Get("X-Cache-Hit"))
}

func TestAnnouncementPublishRequiresStaff(t *testing.T) {
	env := newTestEnv(t)

	resp := env.do(t, testRequest{
		method: http.MethodPost,
		path:   "/api/v1/announcements",
		body:   map[string]interface{}{"title": "Nope", "body": "no"},
		tenant: 1,
		user:   2,
		role:   models.RoleParent,
	})
	require.Equal(t, fiber.StatusForbidden, resp.StatusCode)
}

func TestAnnouncementDeleteRequiresAdmin(t *testing.T) {
	env := newTestEnv(t)

	resp := env.do(t, testRequest{
		method: http.MethodPost,
		path:   "/api/v1/announcements",
		body:   map[string]interface{}{"title": "Old", "body": "old"},
		tenant: 1,
		user:   1,
		role:   models.RoleAdmin,
	})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	resp = env.do(t, testRequest{
		method: http.MethodDelete,
		path:   "/api/v1/announcements/1",
		tenant: 1,
		user:   3,
		role:   models.RoleTeacher,
	})
	require.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	resp = env.do(t, testRequest{
		method: http.MethodDelete,
		path:   "/api/v1/announcements/1",
		tenant: 1,
		user:   1,
		role:   models.RoleAdmin,
	})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
}

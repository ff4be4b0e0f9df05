package handler_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/edustack/edustack-api/internal/auth"
	"github.com/edustack/edustack-api/internal/cache"
	"github.com/edustack/edustack-api/internal/config"
	"github.com/edustack/edustack-api/internal/handler"
	"github.com/edustack/edustack-api/internal/models"
	"github.com/edustack/edustack-api/internal/repository"
	"github.com/edustack/edustack-api/internal/router"
	"github.com/edustack/edustack-api/internal/service"
)

// testEnv wires the real router over sqlite and miniredis. Authentication is
// stubbed: X-Test-Tenant, X-Test-User, and X-Test-Role headers populate the
// locals the JWT middleware would set.
type testEnv struct {
	app    *fiber.App
	db     *gorm.DB
	tokens *auth.TokenService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:h_%s?mode=memory&cache=shared", t.Name())), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Tenant{}, &models.User{}, &models.Student{}, &models.Announcement{}, &models.LeaveRequest{}, &models.AuditLog{}))

	server := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: server.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	logger := zerolog.Nop()
	tokens := auth.NewTokenService("access-secret", "refresh-secret", 15*time.Minute, 24*time.Hour)
	tenantCache := cache.New(client, time.Minute, logger)
	tenantRepo := repository.NewTenantRepository(db)

	auditService := service.NewAuditService(db, logger)
	authService := service.NewAuthService(db, tenantRepo, tokens, auditService, logger)
	studentService := service.NewStudentService(db, tenantCache, auditService, logger)
	announcementService := service.NewAnnouncementService(db, tenantCache, nil, "", auditService, logger)
	leaveService := service.NewLeaveRequestService(db, auditService, logger)

	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		if v := c.Get("X-Test-Tenant"); v != "" {
			if id, err := strconv.Atoi(v); err == nil {
				c.Locals("tenant_id", uint(id))
			}
		}
		if v := c.Get("X-Test-User"); v != "" {
			if id, err := strconv.Atoi(v); err == nil {
				c.Locals("user_id", uint(id))
			}
		}
		if v := c.Get("X-Test-Role"); v != "" {
			c.Locals("user_role", v)
		}
		return c.Next()
	})

	cfg := config.Config{AppName: "edustack-test", AppEnv: "test"}
	router.Register(app, cfg, router.Dependencies{
		AuthHandler:         handler.NewAuthHandler(authService, logger),
		StudentHandler:      handler.NewStudentHandler(studentService, logger),
		AnnouncementHandler: handler.NewAnnouncementHandler(announcementService, logger),
		LeaveHandler:        handler.NewLeaveHandler(leaveService, logger),
		AuditHandler:        handler.NewAuditHandler(auditService, logger),
		DB:                  db,
		Redis:               client,
	})

	return &testEnv{app: app, db: db, tokens: tokens}
}

type testRequest struct {
	method string
	path   string
	body   interface{}
	tenant uint
	user   uint
	role   string
}

func (e *testEnv) do(t *testing.T, r testRequest) *http.Response {
	t.Helper()

	var reader io.Reader
	if r.body != nil {
		payload, err := json.Marshal(r.body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	}

	req := httptest.NewRequest(r.method, r.path, reader)
	if r.body != nil {
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	}
	if r.tenant != 0 {
		req.Header.Set("X-Test-Tenant", strconv.FormatUint(uint64(r.tenant), 10))
	}
	if r.user != 0 {
		req.Header.Set("X-Test-User", strconv.FormatUint(uint64(r.user), 10))
	}
	if r.role != "" {
		req.Header.Set("X-Test-Role", r.role)
	}

	resp, err := e.app.Test(req)
	require.NoError(t, err)
	return resp
}

func decodeResponse(t *testing.T, resp *http.Response, target interface{}) {
	t.Helper()
	defer resp.Body.Close()
	payload, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(payload, target), "body: %s", payload)
}

// errorBody decodes the uniform error envelope.
func errorBody(t *testing.T, resp *http.Response) (string, string) {
	t.Helper()
	var body struct {
		Error struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	decodeResponse(t, resp, &body)
	return body.Error.Code, body.Error.Message
}

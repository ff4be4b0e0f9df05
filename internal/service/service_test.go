package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/edustack/edustack-api/internal/cache"
	"github.com/edustack/edustack-api/internal/dto"
	"github.com/edustack/edustack-api/internal/models"
	"github.com/edustack/edustack-api/internal/repository"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:svc_%s?mode=memory&cache=shared", t.Name())), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Tenant{}, &models.User{}, &models.Student{}, &models.Announcement{}, &models.LeaveRequest{}, &models.AuditLog{}))
	return db
}

func setupTestCache(t *testing.T) *cache.TenantCache {
	t.Helper()
	server := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: server.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return cache.New(client, time.Minute, zerolog.Nop())
}

// auditRecorder captures entries in memory so tests can assert on the trail
// without a second database round trip.
type auditRecorder struct {
	entries []AuditEntry
}

func (a *auditRecorder) Record(_ context.Context, entry AuditEntry) {
	a.entries = append(a.entries, entry)
}

func (a *auditRecorder) List(context.Context, uint, repository.AuditLogFilter, int, int) (dto.AuditLogListResponse, error) {
	return dto.AuditLogListResponse{}, nil
}

func (a *auditRecorder) actions() []string {
	out := make([]string, 0, len(a.entries))
	for _, e := range a.entries {
		out = append(out, e.Action)
	}
	return out
}

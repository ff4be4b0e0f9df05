package service

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/edustack/edustack-api/internal/apperr"
	"github.com/edustack/edustack-api/internal/dto"
	"github.com/edustack/edustack-api/internal/repository"
)

func newAnnouncementFixture(t *testing.T, events *nats.Conn) (AnnouncementService, *auditRecorder) {
	t.Helper()
	recorder := &auditRecorder{}
	svc := NewAnnouncementService(setupTestDB(t), setupTestCache(t), events, "edustack.announcements", recorder, zerolog.Nop())
	return svc, recorder
}

func TestPublishSanitizesBody(t *testing.T) {
	svc, _ := newAnnouncementFixture(t, nil)

	created, err := svc.Publish(context.Background(), 1, 10, dto.AnnouncementCreateRequest{
		Title: "Sports Day",
		Body:  `<p>Friday <b>9am</b></p><script>alert(1)</script><img src=x onerror="steal()">`,
	}, RequestMeta{})
	require.NoError(t, err)

	require.Contains(t, created.Body, "<p>Friday <b>9am</b></p>")
	require.NotContains(t, created.Body, "<script")
	require.NotContains(t, created.Body, "onerror")
	require.Equal(t, "all", created.Audience)
}

func TestAnnouncementListCachesUnfilteredPage(t *testing.T) {
	svc, _ := newAnnouncementFixture(t, nil)

	_, err := svc.Publish(context.Background(), 1, 10, dto.AnnouncementCreateRequest{
		Title: "Welcome",
		Body:  "Term starts Monday.",
	}, RequestMeta{})
	require.NoError(t, err)

	first, err := svc.List(context.Background(), 1, repository.AnnouncementFilter{}, 1, 20)
	require.NoError(t, err)
	require.False(t, first.CacheHit)
	require.Len(t, first.Items, 1)

	second, err := svc.List(context.Background(), 1, repository.AnnouncementFilter{}, 1, 20)
	require.NoError(t, err)
	require.True(t, second.CacheHit)
	require.Len(t, second.Items, 1)

	// A new publish drops the cached page.
	_, err = svc.Publish(context.Background(), 1, 10, dto.AnnouncementCreateRequest{
		Title: "Second",
		Body:  "More news.",
	}, RequestMeta{})
	require.NoError(t, err)

	third, err := svc.List(context.Background(), 1, repository.AnnouncementFilter{}, 1, 20)
	require.NoError(t, err)
	require.False(t, third.CacheHit)
	require.Len(t, third.Items, 2)
}

func TestAnnouncementListCacheIsTenantScoped(t *testing.T) {
	svc, _ := newAnnouncementFixture(t, nil)

	_, err := svc.Publish(context.Background(), 1, 10, dto.AnnouncementCreateRequest{
		Title: "Tenant one only",
		Body:  "Hello.",
	}, RequestMeta{})
	require.NoError(t, err)

	// Warm tenant 1's cache, then read as tenant 2 at the same page.
	_, err = svc.List(context.Background(), 1, repository.AnnouncementFilter{}, 1, 20)
	require.NoError(t, err)

	other, err := svc.List(context.Background(), 2, repository.AnnouncementFilter{}, 1, 20)
	require.NoError(t, err)
	require.False(t, other.CacheHit)
	require.Empty(t, other.Items)
}

func TestAnnouncementFilteredListBypassesCache(t *testing.T) {
	svc, _ := newAnnouncementFixture(t, nil)

	_, err := svc.Publish(context.Background(), 1, 10, dto.AnnouncementCreateRequest{
		Title:    "Teachers only",
		Body:     "Staff meeting.",
		Audience: "teachers",
	}, RequestMeta{})
	require.NoError(t, err)

	page, err := svc.List(context.Background(), 1, repository.AnnouncementFilter{Audience: "teachers"}, 1, 20)
	require.NoError(t, err)
	require.False(t, page.CacheHit)
	require.Len(t, page.Items, 1)

	again, err := svc.List(context.Background(), 1, repository.AnnouncementFilter{Audience: "teachers"}, 1, 20)
	require.NoError(t, err)
	require.False(t, again.CacheHit)
}

func TestAnnouncementDelete(t *testing.T) {
	svc, recorder := newAnnouncementFixture(t, nil)

	created, err := svc.Publish(context.Background(), 1, 10, dto.AnnouncementCreateRequest{
		Title: "Outdated",
		Body:  "Old news.",
	}, RequestMeta{})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(context.Background(), 1, 10, created.ID, RequestMeta{}))

	_, err = svc.Get(context.Background(), 1, created.ID)
	require.Equal(t, "ANNOUNCEMENT_NOT_FOUND", apperr.From(err).Code)

	err = svc.Delete(context.Background(), 1, 10, created.ID, RequestMeta{})
	require.Equal(t, "ANNOUNCEMENT_NOT_FOUND", apperr.From(err).Code)

	require.Len(t, recorder.entries, 2)
}

func TestAnnouncementEventShape(t *testing.T) {
	event := dto.AnnouncementEvent{
		TenantID:    1,
		ID:          7,
		Title:       "Sports Day",
		Audience:    "all",
		PublishedAt: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC),
	}

	payload, err := json.Marshal(event)
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(payload, &decoded))
	require.EqualValues(t, 1, decoded["tenant_id"])
	require.EqualValues(t, 7, decoded["id"])
	require.Equal(t, "Sports Day", decoded["title"])
}

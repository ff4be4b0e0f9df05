package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/microcosm-cc/bluemonday"
	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/edustack/edustack-api/internal/apperr"
	"github.com/edustack/edustack-api/internal/cache"
	"github.com/edustack/edustack-api/internal/dto"
	"github.com/edustack/edustack-api/internal/models"
	"github.com/edustack/edustack-api/internal/repository"
)

const announcementCacheEntity = "announcement"

// AnnouncementService publishes and lists tenant-wide notices.
type AnnouncementService interface {
	Publish(ctx context.Context, tenantID, authorID uint, req dto.AnnouncementCreateRequest, meta RequestMeta) (dto.AnnouncementResponse, error)
	Get(ctx context.Context, tenantID, id uint) (dto.AnnouncementResponse, error)
	List(ctx context.Context, tenantID uint, filter repository.AnnouncementFilter, page, pageSize int) (dto.AnnouncementListResponse, error)
	Delete(ctx context.Context, tenantID, actorID, id uint, meta RequestMeta) error
}

type announcementService struct {
	db      *gorm.DB
	cache   *cache.TenantCache
	events  *nats.Conn
	subject string
	audit   AuditService
	policy  *bluemonday.Policy
	logger  zerolog.Logger
	now     func() time.Time
}

// NewAnnouncementService constructs the announcement service. A nil NATS
// connection disables event fanout without affecting persistence.
func NewAnnouncementService(db *gorm.DB, tenantCache *cache.TenantCache, events *nats.Conn, subject string, audit AuditService, logger zerolog.Logger) AnnouncementService {
	return &announcementService{
		db:      db,
		cache:   tenantCache,
		events:  events,
		subject: subject,
		audit:   audit,
		policy:  bluemonday.UGCPolicy(),
		logger:  logger.With().Str("component", "announcement_service").Logger(),
		now:     time.Now,
	}
}

// Publish persists the announcement and fans it out on the event bus. The
// body keeps safe formatting tags only; everything executable is stripped.
func (s *announcementService) Publish(ctx context.Context, tenantID, authorID uint, req dto.AnnouncementCreateRequest, meta RequestMeta) (dto.AnnouncementResponse, error) {
	audience := req.Audience
	if audience == "" {
		audience = "all"
	}

	announcement := models.Announcement{
		Title:       req.Title,
		Body:        s.policy.Sanitize(req.Body),
		AuthorID:    authorID,
		Audience:    audience,
		IsPinned:    req.IsPinned,
		PublishedAt: s.now(),
		ExpiresAt:   req.ExpiresAt,
	}

	repo := repository.NewAnnouncementRepository(s.db, tenantID)
	if err := repo.Create(ctx, &announcement); err != nil {
		return dto.AnnouncementResponse{}, fmt.Errorf("failed to create announcement: %w", err)
	}

	s.cache.InvalidateEntity(ctx, tenantID, announcementCacheEntity)
	s.publishEvent(announcement)

	s.audit.Record(ctx, AuditEntry{
		TenantID:   tenantID,
		UserID:     &authorID,
		Action:     models.AuditActionCreate,
		EntityType: announcementCacheEntity,
		EntityID:   &announcement.ID,
		After: map[string]interface{}{
			"title":    announcement.Title,
			"audience": announcement.Audience,
			"pinned":   announcement.IsPinned,
		},
		Meta: meta,
	})

	return announcementResponse(announcement), nil
}

func (s *announcementService) Get(ctx context.Context, tenantID, id uint) (dto.AnnouncementResponse, error) {
	key := cache.EntityKey(tenantID, announcementCacheEntity, strconv.FormatUint(uint64(id), 10))

	var cached dto.AnnouncementResponse
	if s.cache.Get(ctx, key, &cached) {
		return cached, nil
	}

	repo := repository.NewAnnouncementRepository(s.db, tenantID)
	announcement, err := repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.AnnouncementResponse{}, apperr.NotFound("ANNOUNCEMENT")
		}
		return dto.AnnouncementResponse{}, fmt.Errorf("failed to load announcement: %w", err)
	}

	resp := announcementResponse(announcement)
	s.cache.Set(ctx, key, resp)

	return resp, nil
}

// List serves from the tenant cache when the unfiltered page is cached;
// filtered queries always hit the database.
func (s *announcementService) List(ctx context.Context, tenantID uint, filter repository.AnnouncementFilter, page, pageSize int) (dto.AnnouncementListResponse, error) {
	cacheable := filter.Audience == "" && !filter.PinnedOnly && filter.ActiveAt == nil
	key := cache.ListKey(tenantID, announcementCacheEntity, page, pageSize)

	if cacheable {
		var cached dto.AnnouncementListResponse
		if s.cache.Get(ctx, key, &cached) {
			cached.CacheHit = true
			return cached, nil
		}
	}

	repo := repository.NewAnnouncementRepository(s.db, tenantID)
	result, err := repo.List(ctx, filter, page, pageSize)
	if err != nil {
		return dto.AnnouncementListResponse{}, fmt.Errorf("failed to list announcements: %w", err)
	}

	items := make([]dto.AnnouncementResponse, 0, len(result.Items))
	for _, announcement := range result.Items {
		items = append(items, announcementResponse(announcement))
	}

	resp := dto.AnnouncementListResponse{Items: items, Pagination: pageMeta(result)}
	if cacheable {
		s.cache.Set(ctx, key, resp)
	}

	return resp, nil
}

func (s *announcementService) Delete(ctx context.Context, tenantID, actorID, id uint, meta RequestMeta) error {
	repo := repository.NewAnnouncementRepository(s.db, tenantID)

	before, err := repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.NotFound("ANNOUNCEMENT")
		}
		return fmt.Errorf("failed to load announcement: %w", err)
	}

	deleted, err := repo.HardDelete(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to delete announcement: %w", err)
	}
	if !deleted {
		return apperr.NotFound("ANNOUNCEMENT")
	}

	s.cache.InvalidateEntity(ctx, tenantID, announcementCacheEntity)

	s.audit.Record(ctx, AuditEntry{
		TenantID:   tenantID,
		UserID:     &actorID,
		Action:     models.AuditActionDelete,
		EntityType: announcementCacheEntity,
		EntityID:   &id,
		Before: map[string]interface{}{
			"title":    before.Title,
			"audience": before.Audience,
		},
		Meta: meta,
	})

	return nil
}

// publishEvent emits the fanout event. Event delivery is best effort; a down
// bus never fails the publish.
func (s *announcementService) publishEvent(announcement models.Announcement) {
	if s.events == nil || s.subject == "" {
		return
	}

	payload, err := json.Marshal(dto.AnnouncementEvent{
		TenantID:    announcement.TenantID,
		ID:          announcement.ID,
		Title:       announcement.Title,
		Audience:    announcement.Audience,
		PublishedAt: announcement.PublishedAt,
	})
	if err != nil {
		s.logger.Warn().Err(err).Msg("failed to encode announcement event")
		return
	}

	if err := s.events.Publish(s.subject, payload); err != nil {
		s.logger.Warn().Err(err).Uint("announcement_id", announcement.ID).Msg("failed to publish announcement event")
	}
}

func announcementResponse(announcement models.Announcement) dto.AnnouncementResponse {
	return dto.AnnouncementResponse{
		ID:          announcement.ID,
		Title:       announcement.Title,
		Body:        announcement.Body,
		Audience:    announcement.Audience,
		IsPinned:    announcement.IsPinned,
		AuthorID:    announcement.AuthorID,
		PublishedAt: announcement.PublishedAt,
		ExpiresAt:   announcement.ExpiresAt,
		CreatedAt:   announcement.CreatedAt,
	}
}

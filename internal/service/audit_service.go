package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/edustack/edustack-api/internal/dto"
	"github.com/edustack/edustack-api/internal/models"
	"github.com/edustack/edustack-api/internal/observability"
	"github.com/edustack/edustack-api/internal/repository"
)

// RequestMeta carries requester identification captured at the boundary.
type RequestMeta struct {
	IP        string
	UserAgent string
}

// AuditEntry describes one mutation to record.
type AuditEntry struct {
	TenantID   uint
	UserID     *uint
	Action     string
	EntityType string
	EntityID   *uint
	Before     map[string]interface{}
	After      map[string]interface{}
	Context    map[string]interface{}
	Meta       RequestMeta
}

// AuditService is the append-only who-did-what-when recorder. The
// application never updates or deletes rows it wrote.
type AuditService interface {
	Record(ctx context.Context, entry AuditEntry)
	List(ctx context.Context, tenantID uint, filter repository.AuditLogFilter, page, pageSize int) (dto.AuditLogListResponse, error)
}

type auditService struct {
	db     *gorm.DB
	logger zerolog.Logger
	tracer trace.Tracer
}

// NewAuditService constructs the audit recorder.
func NewAuditService(db *gorm.DB, logger zerolog.Logger) AuditService {
	return &auditService{
		db:     db,
		logger: logger.With().Str("component", "audit_service").Logger(),
		tracer: otel.Tracer("github.com/edustack/edustack-api/internal/service/audit"),
	}
}

// Record appends one audit row. A failed write is logged but never fails the
// business mutation it describes.
func (s *auditService) Record(ctx context.Context, entry AuditEntry) {
	ctx, span := s.tracer.Start(ctx, "audit.record", trace.WithAttributes(
		attribute.String("audit.action", entry.Action),
		attribute.String("audit.entity_type", entry.EntityType),
		attribute.Int64("audit.tenant_id", int64(entry.TenantID)),
	))
	defer span.End()

	if entry.TenantID == 0 {
		s.logger.Warn().Str("action", entry.Action).Msg("audit entry without tenant skipped")
		return
	}

	row := models.AuditLog{
		UserID:     entry.UserID,
		Action:     entry.Action,
		EntityType: entry.EntityType,
		EntityID:   entry.EntityID,
		Before:     datatypes.JSONMap(entry.Before),
		After:      datatypes.JSONMap(entry.After),
		IPAddress:  entry.Meta.IP,
		UserAgent:  entry.Meta.UserAgent,
		Context:    datatypes.JSONMap(entry.Context),
	}

	repo := repository.NewAuditLogRepository(s.db, entry.TenantID)
	if err := repo.Create(ctx, &row); err != nil {
		span.RecordError(err)
		s.logger.Error().Err(err).
			Str("action", entry.Action).
			Str("entity_type", entry.EntityType).
			Uint("tenant_id", entry.TenantID).
			Msg("failed to write audit row")
		return
	}

	observability.AuditRecords().WithLabelValues(entry.Action).Inc()
}

func (s *auditService) List(ctx context.Context, tenantID uint, filter repository.AuditLogFilter, page, pageSize int) (dto.AuditLogListResponse, error) {
	repo := repository.NewAuditLogRepository(s.db, tenantID)
	result, err := repo.List(ctx, filter, page, pageSize)
	if err != nil {
		return dto.AuditLogListResponse{}, fmt.Errorf("failed to list audit logs: %w", err)
	}

	items := make([]dto.AuditLogResponse, 0, len(result.Items))
	for _, row := range result.Items {
		items = append(items, dto.AuditLogResponse{
			ID:         row.ID,
			UserID:     row.UserID,
			Action:     row.Action,
			EntityType: row.EntityType,
			EntityID:   row.EntityID,
			Before:     row.Before,
			After:      row.After,
			IPAddress:  row.IPAddress,
			UserAgent:  row.UserAgent,
			CreatedAt:  row.CreatedAt,
		})
	}

	return dto.AuditLogListResponse{Items: items, Pagination: pageMeta(result)}, nil
}

package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/edustack/edustack-api/internal/apperr"
	"github.com/edustack/edustack-api/internal/dto"
	"github.com/edustack/edustack-api/internal/models"
	"github.com/edustack/edustack-api/internal/repository"
)

// errLeaveAlreadyReviewed rejects a second review of the same request.
var errLeaveAlreadyReviewed = apperr.Conflict("LEAVE_ALREADY_REVIEWED", "leave request has already been reviewed")

// LeaveRequestService runs the absence request state machine. A request is
// born pending and may move to approved or rejected exactly once.
type LeaveRequestService interface {
	Submit(ctx context.Context, tenantID, requesterID uint, req dto.LeaveRequestCreateRequest, meta RequestMeta) (dto.LeaveRequestResponse, error)
	Get(ctx context.Context, tenantID, id uint) (dto.LeaveRequestResponse, error)
	List(ctx context.Context, tenantID uint, filter repository.LeaveRequestFilter, page, pageSize int) (dto.LeaveRequestListResponse, error)
	Review(ctx context.Context, tenantID, reviewerID, id uint, req dto.LeaveReviewRequest, meta RequestMeta) (dto.LeaveRequestResponse, error)
}

type leaveRequestService struct {
	db     *gorm.DB
	audit  AuditService
	logger zerolog.Logger
	now    func() time.Time
}

// NewLeaveRequestService constructs the leave request service.
func NewLeaveRequestService(db *gorm.DB, audit AuditService, logger zerolog.Logger) LeaveRequestService {
	return &leaveRequestService{
		db:     db,
		audit:  audit,
		logger: logger.With().Str("component", "leave_request_service").Logger(),
		now:    time.Now,
	}
}

func (s *leaveRequestService) Submit(ctx context.Context, tenantID, requesterID uint, req dto.LeaveRequestCreateRequest, meta RequestMeta) (dto.LeaveRequestResponse, error) {
	if req.ToDate.Before(req.FromDate) {
		return dto.LeaveRequestResponse{}, apperr.Validation([]apperr.FieldError{
			{Field: "to_date", Message: "must not be before from_date"},
		})
	}

	request := models.LeaveRequest{
		RequesterID: requesterID,
		FromDate:    req.FromDate,
		ToDate:      req.ToDate,
		Reason:      req.Reason,
		Status:      models.LeaveStatusPending,
	}

	repo := repository.NewLeaveRequestRepository(s.db, tenantID)
	if err := repo.Create(ctx, &request); err != nil {
		return dto.LeaveRequestResponse{}, fmt.Errorf("failed to create leave request: %w", err)
	}

	s.audit.Record(ctx, AuditEntry{
		TenantID:   tenantID,
		UserID:     &requesterID,
		Action:     models.AuditActionCreate,
		EntityType: "leave_request",
		EntityID:   &request.ID,
		After: map[string]interface{}{
			"from_date": request.FromDate,
			"to_date":   request.ToDate,
			"status":    request.Status,
		},
		Meta: meta,
	})

	return leaveRequestResponse(request), nil
}

func (s *leaveRequestService) Get(ctx context.Context, tenantID, id uint) (dto.LeaveRequestResponse, error) {
	repo := repository.NewLeaveRequestRepository(s.db, tenantID)
	request, err := repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.LeaveRequestResponse{}, apperr.NotFound("LEAVE_REQUEST")
		}
		return dto.LeaveRequestResponse{}, fmt.Errorf("failed to load leave request: %w", err)
	}

	return leaveRequestResponse(request), nil
}

func (s *leaveRequestService) List(ctx context.Context, tenantID uint, filter repository.LeaveRequestFilter, page, pageSize int) (dto.LeaveRequestListResponse, error) {
	repo := repository.NewLeaveRequestRepository(s.db, tenantID)
	result, err := repo.List(ctx, filter, page, pageSize)
	if err != nil {
		return dto.LeaveRequestListResponse{}, fmt.Errorf("failed to list leave requests: %w", err)
	}

	items := make([]dto.LeaveRequestResponse, 0, len(result.Items))
	for _, request := range result.Items {
		items = append(items, leaveRequestResponse(request))
	}

	return dto.LeaveRequestListResponse{Items: items, Pagination: pageMeta(result)}, nil
}

// Review moves a pending request to approved or rejected. Reviewing an
// already reviewed request conflicts rather than silently rewriting history.
func (s *leaveRequestService) Review(ctx context.Context, tenantID, reviewerID, id uint, req dto.LeaveReviewRequest, meta RequestMeta) (dto.LeaveRequestResponse, error) {
	repo := repository.NewLeaveRequestRepository(s.db, tenantID)

	before, err := repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.LeaveRequestResponse{}, apperr.NotFound("LEAVE_REQUEST")
		}
		return dto.LeaveRequestResponse{}, fmt.Errorf("failed to load leave request: %w", err)
	}

	if before.Status != models.LeaveStatusPending {
		return dto.LeaveRequestResponse{}, errLeaveAlreadyReviewed
	}

	reviewedAt := s.now()
	request, err := repo.Update(ctx, id, map[string]interface{}{
		"status":      req.Decision,
		"reviewer_id": reviewerID,
		"reviewed_at": reviewedAt,
		"review_note": req.Note,
	})
	if err != nil {
		return dto.LeaveRequestResponse{}, fmt.Errorf("failed to review leave request: %w", err)
	}

	s.audit.Record(ctx, AuditEntry{
		TenantID:   tenantID,
		UserID:     &reviewerID,
		Action:     models.AuditActionUpdate,
		EntityType: "leave_request",
		EntityID:   &id,
		Before:     map[string]interface{}{"status": before.Status},
		After:      map[string]interface{}{"status": request.Status, "review_note": request.ReviewNote},
		Meta:       meta,
	})

	return leaveRequestResponse(request), nil
}

func leaveRequestResponse(request models.LeaveRequest) dto.LeaveRequestResponse {
	return dto.LeaveRequestResponse{
		ID:          request.ID,
		RequesterID: request.RequesterID,
		FromDate:    request.FromDate,
		ToDate:      request.ToDate,
		Reason:      request.Reason,
		Status:      request.Status,
		ReviewerID:  request.ReviewerID,
		ReviewedAt:  request.ReviewedAt,
		ReviewNote:  request.ReviewNote,
		CreatedAt:   request.CreatedAt,
	}
}

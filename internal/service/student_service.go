package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/edustack/edustack-api/internal/apperr"
	"github.com/edustack/edustack-api/internal/cache"
	"github.com/edustack/edustack-api/internal/dto"
	"github.com/edustack/edustack-api/internal/models"
	"github.com/edustack/edustack-api/internal/repository"
)

const studentCacheEntity = "student"

// StudentService manages enrolment records within one tenant per call.
type StudentService interface {
	Create(ctx context.Context, tenantID, actorID uint, req dto.StudentCreateRequest, meta RequestMeta) (dto.StudentResponse, error)
	Get(ctx context.Context, tenantID, id uint) (dto.StudentResponse, error)
	List(ctx context.Context, tenantID uint, filter repository.StudentFilter, page, pageSize int) (dto.StudentListResponse, error)
	Update(ctx context.Context, tenantID, actorID, id uint, req dto.StudentUpdateRequest, meta RequestMeta) (dto.StudentResponse, error)
	Delete(ctx context.Context, tenantID, actorID, id uint, meta RequestMeta) error
}

type studentService struct {
	db     *gorm.DB
	cache  *cache.TenantCache
	audit  AuditService
	logger zerolog.Logger
}

// NewStudentService constructs the student service.
func NewStudentService(db *gorm.DB, tenantCache *cache.TenantCache, audit AuditService, logger zerolog.Logger) StudentService {
	return &studentService{
		db:     db,
		cache:  tenantCache,
		audit:  audit,
		logger: logger.With().Str("component", "student_service").Logger(),
	}
}

func (s *studentService) Create(ctx context.Context, tenantID, actorID uint, req dto.StudentCreateRequest, meta RequestMeta) (dto.StudentResponse, error) {
	repo := repository.NewStudentRepository(s.db, tenantID)

	student := models.Student{
		FirstName:     req.FirstName,
		LastName:      req.LastName,
		AdmissionNo:   req.AdmissionNo,
		Grade:         req.Grade,
		Section:       req.Section,
		GuardianEmail: req.GuardianEmail,
		DateOfBirth:   req.DateOfBirth,
		Status:        models.StudentStatusEnrolled,
		EnrolledAt:    time.Now(),
	}
	if err := repo.Create(ctx, &student); err != nil {
		return dto.StudentResponse{}, fmt.Errorf("failed to create student: %w", err)
	}

	s.cache.InvalidateEntity(ctx, tenantID, studentCacheEntity)

	s.audit.Record(ctx, AuditEntry{
		TenantID:   tenantID,
		UserID:     &actorID,
		Action:     models.AuditActionCreate,
		EntityType: studentCacheEntity,
		EntityID:   &student.ID,
		After:      studentSnapshot(student),
		Meta:       meta,
	})

	return studentResponse(student), nil
}

func (s *studentService) Get(ctx context.Context, tenantID, id uint) (dto.StudentResponse, error) {
	key := cache.EntityKey(tenantID, studentCacheEntity, strconv.FormatUint(uint64(id), 10))

	var cached dto.StudentResponse
	if s.cache.Get(ctx, key, &cached) {
		return cached, nil
	}

	repo := repository.NewStudentRepository(s.db, tenantID)
	student, err := repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.StudentResponse{}, apperr.NotFound("STUDENT")
		}
		return dto.StudentResponse{}, fmt.Errorf("failed to load student: %w", err)
	}

	resp := studentResponse(student)
	s.cache.Set(ctx, key, resp)

	return resp, nil
}

func (s *studentService) List(ctx context.Context, tenantID uint, filter repository.StudentFilter, page, pageSize int) (dto.StudentListResponse, error) {
	repo := repository.NewStudentRepository(s.db, tenantID)
	result, err := repo.List(ctx, filter, page, pageSize)
	if err != nil {
		return dto.StudentListResponse{}, fmt.Errorf("failed to list students: %w", err)
	}

	items := make([]dto.StudentResponse, 0, len(result.Items))
	for _, student := range result.Items {
		items = append(items, studentResponse(student))
	}

	return dto.StudentListResponse{Items: items, Pagination: pageMeta(result)}, nil
}

func (s *studentService) Update(ctx context.Context, tenantID, actorID, id uint, req dto.StudentUpdateRequest, meta RequestMeta) (dto.StudentResponse, error) {
	repo := repository.NewStudentRepository(s.db, tenantID)

	before, err := repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.StudentResponse{}, apperr.NotFound("STUDENT")
		}
		return dto.StudentResponse{}, fmt.Errorf("failed to load student: %w", err)
	}

	updates := map[string]interface{}{}
	if req.FirstName != nil {
		updates["first_name"] = *req.FirstName
	}
	if req.LastName != nil {
		updates["last_name"] = *req.LastName
	}
	if req.Grade != nil {
		updates["grade"] = *req.Grade
	}
	if req.Section != nil {
		updates["section"] = *req.Section
	}
	if req.GuardianEmail != nil {
		updates["guardian_email"] = *req.GuardianEmail
	}
	if req.Status != nil {
		updates["status"] = *req.Status
	}

	student, err := repo.Update(ctx, id, updates)
	if err != nil {
		return dto.StudentResponse{}, fmt.Errorf("failed to update student: %w", err)
	}

	s.cache.InvalidateEntity(ctx, tenantID, studentCacheEntity)

	s.audit.Record(ctx, AuditEntry{
		TenantID:   tenantID,
		UserID:     &actorID,
		Action:     models.AuditActionUpdate,
		EntityType: studentCacheEntity,
		EntityID:   &id,
		Before:     studentSnapshot(before),
		After:      studentSnapshot(student),
		Meta:       meta,
	})

	return studentResponse(student), nil
}

func (s *studentService) Delete(ctx context.Context, tenantID, actorID, id uint, meta RequestMeta) error {
	repo := repository.NewStudentRepository(s.db, tenantID)

	before, err := repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.NotFound("STUDENT")
		}
		return fmt.Errorf("failed to load student: %w", err)
	}

	deleted, err := repo.SoftDelete(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to delete student: %w", err)
	}
	if !deleted {
		return apperr.NotFound("STUDENT")
	}

	s.cache.InvalidateEntity(ctx, tenantID, studentCacheEntity)

	s.audit.Record(ctx, AuditEntry{
		TenantID:   tenantID,
		UserID:     &actorID,
		Action:     models.AuditActionSoftDelete,
		EntityType: studentCacheEntity,
		EntityID:   &id,
		Before:     studentSnapshot(before),
		Meta:       meta,
	})

	return nil
}

func studentResponse(student models.Student) dto.StudentResponse {
	return dto.StudentResponse{
		ID:            student.ID,
		FirstName:     student.FirstName,
		LastName:      student.LastName,
		AdmissionNo:   student.AdmissionNo,
		Grade:         student.Grade,
		Section:       student.Section,
		GuardianEmail: student.GuardianEmail,
		DateOfBirth:   student.DateOfBirth,
		Status:        student.Status,
		CreatedAt:     student.CreatedAt,
		UpdatedAt:     student.UpdatedAt,
	}
}

func studentSnapshot(student models.Student) map[string]interface{} {
	return map[string]interface{}{
		"first_name":   student.FirstName,
		"last_name":    student.LastName,
		"admission_no": student.AdmissionNo,
		"grade":        student.Grade,
		"section":      student.Section,
		"status":       student.Status,
	}
}

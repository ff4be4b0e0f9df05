package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/edustack/edustack-api/internal/apperr"
	"github.com/edustack/edustack-api/internal/auth"
	"github.com/edustack/edustack-api/internal/dto"
	"github.com/edustack/edustack-api/internal/models"
	"github.com/edustack/edustack-api/internal/observability"
	"github.com/edustack/edustack-api/internal/repository"
	"github.com/edustack/edustack-api/internal/tenant"
)

// AuthService handles tenant registration and the credential lifecycle.
type AuthService interface {
	Register(ctx context.Context, req dto.RegisterRequest, meta RequestMeta) (dto.RegisterResponse, error)
	Login(ctx context.Context, tenantID uint, req dto.LoginRequest, meta RequestMeta) (dto.TokenPairResponse, error)
	Refresh(ctx context.Context, req dto.RefreshRequest) (dto.TokenPairResponse, error)
	Logout(ctx context.Context, tenantID, userID uint, meta RequestMeta)
	ChangePassword(ctx context.Context, tenantID, userID uint, req dto.ChangePasswordRequest, meta RequestMeta) error
}

type authService struct {
	db      *gorm.DB
	tenants repository.TenantRepository
	tokens  *auth.TokenService
	audit   AuditService
	logger  zerolog.Logger
}

// NewAuthService constructs the credential service.
func NewAuthService(db *gorm.DB, tenants repository.TenantRepository, tokens *auth.TokenService, audit AuditService, logger zerolog.Logger) AuthService {
	return &authService{
		db:      db,
		tenants: tenants,
		tokens:  tokens,
		audit:   audit,
		logger:  logger.With().Str("component", "auth_service").Logger(),
	}
}

// Register provisions a new school in trial status together with its first
// admin account, inside one transaction.
func (s *authService) Register(ctx context.Context, req dto.RegisterRequest, meta RequestMeta) (dto.RegisterResponse, error) {
	if !tenant.ValidSlug(req.Slug) {
		return dto.RegisterResponse{}, apperr.Validation([]apperr.FieldError{
			{Field: "slug", Message: "must be lowercase alphanumeric, optionally hyphen-separated"},
		})
	}

	taken, err := s.tenants.SlugTaken(ctx, req.Slug)
	if err != nil {
		return dto.RegisterResponse{}, fmt.Errorf("failed to check slug availability: %w", err)
	}
	if taken {
		return dto.RegisterResponse{}, apperr.Conflict("SLUG_TAKEN", "school slug is already in use")
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return dto.RegisterResponse{}, fmt.Errorf("failed to hash password: %w", err)
	}

	newTenant := models.Tenant{
		Name:   req.SchoolName,
		Slug:   req.Slug,
		Status: models.TenantStatusTrial,
	}
	admin := models.User{
		Email:        req.Email,
		PasswordHash: hash,
		FullName:     req.AdminFullName,
		Role:         models.RoleAdmin,
		Status:       models.UserStatusActive,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&newTenant).Error; err != nil {
			return fmt.Errorf("failed to create tenant: %w", err)
		}
		users := repository.NewUserRepository(tx, newTenant.ID)
		if err := users.Create(ctx, &admin); err != nil {
			return fmt.Errorf("failed to create admin account: %w", err)
		}
		return nil
	})
	if err != nil {
		return dto.RegisterResponse{}, err
	}

	tokens, err := s.issueTokenPair(admin.ID, newTenant.ID, admin.Role)
	if err != nil {
		return dto.RegisterResponse{}, err
	}

	s.audit.Record(ctx, AuditEntry{
		TenantID:   newTenant.ID,
		UserID:     &admin.ID,
		Action:     models.AuditActionRegister,
		EntityType: "tenant",
		EntityID:   &newTenant.ID,
		After:      map[string]interface{}{"slug": newTenant.Slug, "status": newTenant.Status},
		Meta:       meta,
	})

	s.logger.Info().Uint("tenant_id", newTenant.ID).Str("slug", newTenant.Slug).Msg("tenant registered")

	return dto.RegisterResponse{
		TenantID:   newTenant.ID,
		Slug:       newTenant.Slug,
		Status:     newTenant.Status,
		AdminID:    admin.ID,
		AdminEmail: admin.Email,
		Tokens:     tokens,
	}, nil
}

// Login authenticates an account within the resolved tenant. Unknown email,
// deleted account, and wrong password all share one response so credentials
// cannot be enumerated.
func (s *authService) Login(ctx context.Context, tenantID uint, req dto.LoginRequest, meta RequestMeta) (dto.TokenPairResponse, error) {
	users := repository.NewUserRepository(s.db, tenantID)

	user, err := users.FindByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			observability.AuthFailures().WithLabelValues("unknown_account").Inc()
			return dto.TokenPairResponse{}, apperr.ErrInvalidCredential
		}
		return dto.TokenPairResponse{}, fmt.Errorf("failed to look up account: %w", err)
	}

	if !auth.VerifyPassword(req.Password, user.PasswordHash) {
		observability.AuthFailures().WithLabelValues("bad_password").Inc()
		return dto.TokenPairResponse{}, apperr.ErrInvalidCredential
	}

	tokens, err := s.issueTokenPair(user.ID, tenantID, user.Role)
	if err != nil {
		return dto.TokenPairResponse{}, err
	}

	s.audit.Record(ctx, AuditEntry{
		TenantID:   tenantID,
		UserID:     &user.ID,
		Action:     models.AuditActionLogin,
		EntityType: "user",
		EntityID:   &user.ID,
		Meta:       meta,
	})

	return tokens, nil
}

// Refresh exchanges a valid refresh token for a fresh pair. The account is
// re-checked so a deleted user cannot keep minting tokens.
func (s *authService) Refresh(ctx context.Context, req dto.RefreshRequest) (dto.TokenPairResponse, error) {
	payload, err := s.tokens.VerifyRefreshToken(req.RefreshToken)
	if err != nil {
		observability.AuthFailures().WithLabelValues("bad_refresh_token").Inc()
		return dto.TokenPairResponse{}, apperr.ErrUnauthorized
	}

	users := repository.NewUserRepository(s.db, payload.TenantID)
	user, err := users.GetByID(ctx, payload.UserID)
	if err != nil || user.Status != models.UserStatusActive {
		observability.AuthFailures().WithLabelValues("refresh_account_gone").Inc()
		return dto.TokenPairResponse{}, apperr.ErrUnauthorized
	}

	return s.issueTokenPair(user.ID, payload.TenantID, user.Role)
}

// Logout records the event. Tokens are stateless, so invalidation happens by
// the client dropping them; the audit trail still captures the action.
func (s *authService) Logout(ctx context.Context, tenantID, userID uint, meta RequestMeta) {
	s.audit.Record(ctx, AuditEntry{
		TenantID:   tenantID,
		UserID:     &userID,
		Action:     models.AuditActionLogout,
		EntityType: "user",
		EntityID:   &userID,
		Meta:       meta,
	})
}

// ChangePassword rotates the caller's password after re-verifying the
// current one.
func (s *authService) ChangePassword(ctx context.Context, tenantID, userID uint, req dto.ChangePasswordRequest, meta RequestMeta) error {
	users := repository.NewUserRepository(s.db, tenantID)

	user, err := users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.ErrUnauthorized
		}
		return fmt.Errorf("failed to look up account: %w", err)
	}

	if !auth.VerifyPassword(req.CurrentPassword, user.PasswordHash) {
		observability.AuthFailures().WithLabelValues("bad_password").Inc()
		return apperr.ErrInvalidCredential
	}

	hash, err := auth.HashPassword(req.NewPassword)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	if _, err := users.Update(ctx, userID, map[string]interface{}{"password_hash": hash}); err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}

	s.audit.Record(ctx, AuditEntry{
		TenantID:   tenantID,
		UserID:     &userID,
		Action:     models.AuditActionPasswordChange,
		EntityType: "user",
		EntityID:   &userID,
		Meta:       meta,
	})

	return nil
}

func (s *authService) issueTokenPair(userID, tenantID uint, role string) (dto.TokenPairResponse, error) {
	access, err := s.tokens.CreateAccessToken(userID, tenantID, role)
	if err != nil {
		return dto.TokenPairResponse{}, fmt.Errorf("failed to issue access token: %w", err)
	}
	refresh, err := s.tokens.CreateRefreshToken(userID, tenantID, role)
	if err != nil {
		return dto.TokenPairResponse{}, fmt.Errorf("failed to issue refresh token: %w", err)
	}

	return dto.TokenPairResponse{
		AccessToken:  access,
		RefreshToken: refresh,
		TokenType:    "Bearer",
		ExpiresIn:    int64(s.tokens.AccessTTL().Seconds()),
	}, nil
}

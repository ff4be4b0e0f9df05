package service

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/edustack/edustack-api/internal/apperr"
	"github.com/edustack/edustack-api/internal/auth"
	"github.com/edustack/edustack-api/internal/dto"
	"github.com/edustack/edustack-api/internal/models"
	"github.com/edustack/edustack-api/internal/repository"
)

func newAuthFixture(t *testing.T) (AuthService, *auditRecorder, *auth.TokenService) {
	t.Helper()
	db := setupTestDB(t)
	recorder := &auditRecorder{}
	tokens := auth.NewTokenService("access-secret", "refresh-secret", 15*time.Minute, 24*time.Hour)
	svc := NewAuthService(db, repository.NewTenantRepository(db), tokens, recorder, zerolog.Nop())
	return svc, recorder, tokens
}

func registerSchool(t *testing.T, svc AuthService, slug string) dto.RegisterResponse {
	t.Helper()
	resp, err := svc.Register(context.Background(), dto.RegisterRequest{
		SchoolName:    "Acme School",
		Slug:          slug,
		AdminFullName: "Ada Lovelace",
		Email:         "admin@acme.test",
		Password:      "correct-horse",
	}, RequestMeta{IP: "10.0.0.1"})
	require.NoError(t, err)
	return resp
}

func TestRegisterCreatesTrialTenantWithAdmin(t *testing.T) {
	svc, recorder, _ := newAuthFixture(t)

	resp := registerSchool(t, svc, "acme")
	require.Equal(t, models.TenantStatusTrial, resp.Status)
	require.Equal(t, "acme", resp.Slug)
	require.NotZero(t, resp.TenantID)
	require.NotZero(t, resp.AdminID)
	require.NotEmpty(t, resp.Tokens.AccessToken)
	require.NotEmpty(t, resp.Tokens.RefreshToken)
	require.Equal(t, "Bearer", resp.Tokens.TokenType)

	require.Equal(t, []string{models.AuditActionRegister}, recorder.actions())
}

func TestRegisterRejectsDuplicateSlug(t *testing.T) {
	svc, _, _ := newAuthFixture(t)
	registerSchool(t, svc, "acme")

	_, err := svc.Register(context.Background(), dto.RegisterRequest{
		SchoolName:    "Copycat School",
		Slug:          "acme",
		AdminFullName: "Eve",
		Email:         "eve@copycat.test",
		Password:      "another-pass",
	}, RequestMeta{})
	appErr := apperr.From(err)
	require.Equal(t, "SLUG_TAKEN", appErr.Code)
	require.Equal(t, 409, appErr.Status)
}

func TestRegisterRejectsMalformedSlug(t *testing.T) {
	svc, _, _ := newAuthFixture(t)

	for _, slug := range []string{"Acme", "-acme", "acme-", "ac_me", ""} {
		_, err := svc.Register(context.Background(), dto.RegisterRequest{
			SchoolName:    "Acme School",
			Slug:          slug,
			AdminFullName: "Ada",
			Email:         "admin@acme.test",
			Password:      "correct-horse",
		}, RequestMeta{})
		appErr := apperr.From(err)
		require.Equal(t, "VALIDATION_ERROR", appErr.Code, "slug %q", slug)
	}
}

func TestLoginIssuesTokenPair(t *testing.T) {
	svc, recorder, tokens := newAuthFixture(t)
	reg := registerSchool(t, svc, "acme")

	pair, err := svc.Login(context.Background(), reg.TenantID, dto.LoginRequest{
		Email:    "admin@acme.test",
		Password: "correct-horse",
	}, RequestMeta{IP: "10.0.0.2"})
	require.NoError(t, err)

	payload, err := tokens.VerifyAccessToken(pair.AccessToken)
	require.NoError(t, err)
	require.Equal(t, reg.AdminID, payload.UserID)
	require.Equal(t, reg.TenantID, payload.TenantID)
	require.Equal(t, models.RoleAdmin, payload.Role)

	require.Contains(t, recorder.actions(), models.AuditActionLogin)
}

func TestLoginFailuresAreIndistinguishable(t *testing.T) {
	svc, _, _ := newAuthFixture(t)
	reg := registerSchool(t, svc, "acme")

	cases := map[string]dto.LoginRequest{
		"wrong password": {Email: "admin@acme.test", Password: "wrong"},
		"unknown email":  {Email: "ghost@acme.test", Password: "correct-horse"},
	}
	for name, req := range cases {
		_, err := svc.Login(context.Background(), reg.TenantID, req, RequestMeta{})
		appErr := apperr.From(err)
		require.Equal(t, "INVALID_CREDENTIALS", appErr.Code, name)
		require.Equal(t, 401, appErr.Status, name)
	}
}

func TestLoginScopedToTenant(t *testing.T) {
	svc, _, _ := newAuthFixture(t)
	registerSchool(t, svc, "acme")

	// Valid credentials under tenant 1 do not authenticate under tenant 999.
	_, err := svc.Login(context.Background(), 999, dto.LoginRequest{
		Email:    "admin@acme.test",
		Password: "correct-horse",
	}, RequestMeta{})
	require.Equal(t, "INVALID_CREDENTIALS", apperr.From(err).Code)
}

func TestRefreshRotatesPair(t *testing.T) {
	svc, _, tokens := newAuthFixture(t)
	reg := registerSchool(t, svc, "acme")

	pair, err := svc.Refresh(context.Background(), dto.RefreshRequest{RefreshToken: reg.Tokens.RefreshToken})
	require.NoError(t, err)

	payload, err := tokens.VerifyAccessToken(pair.AccessToken)
	require.NoError(t, err)
	require.Equal(t, reg.AdminID, payload.UserID)
}

func TestRefreshRejectsAccessToken(t *testing.T) {
	svc, _, _ := newAuthFixture(t)
	reg := registerSchool(t, svc, "acme")

	_, err := svc.Refresh(context.Background(), dto.RefreshRequest{RefreshToken: reg.Tokens.AccessToken})
	require.Equal(t, "UNAUTHORIZED", apperr.From(err).Code)
}

func TestChangePasswordRequiresCurrent(t *testing.T) {
	svc, recorder, _ := newAuthFixture(t)
	reg := registerSchool(t, svc, "acme")

	err := svc.ChangePassword(context.Background(), reg.TenantID, reg.AdminID, dto.ChangePasswordRequest{
		CurrentPassword: "wrong",
		NewPassword:     "brand-new-pass",
	}, RequestMeta{})
	require.Equal(t, "INVALID_CREDENTIALS", apperr.From(err).Code)

	err = svc.ChangePassword(context.Background(), reg.TenantID, reg.AdminID, dto.ChangePasswordRequest{
		CurrentPassword: "correct-horse",
		NewPassword:     "brand-new-pass",
	}, RequestMeta{})
	require.NoError(t, err)
	require.Contains(t, recorder.actions(), models.AuditActionPasswordChange)

	// Old password no longer works, new one does.
	_, err = svc.Login(context.Background(), reg.TenantID, dto.LoginRequest{Email: "admin@acme.test", Password: "correct-horse"}, RequestMeta{})
	require.Equal(t, "INVALID_CREDENTIALS", apperr.From(err).Code)

	_, err = svc.Login(context.Background(), reg.TenantID, dto.LoginRequest{Email: "admin@acme.test", Password: "brand-new-pass"}, RequestMeta{})
	require.NoError(t, err)
}

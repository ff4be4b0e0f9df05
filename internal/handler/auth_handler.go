package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/edustack/edustack-api/internal/apperr"
	"github.com/edustack/edustack-api/internal/dto"
	"github.com/edustack/edustack-api/internal/middleware"
	"github.com/edustack/edustack-api/internal/service"
	"github.com/edustack/edustack-api/internal/utils"
)

// AuthHandler handles registration and the credential lifecycle.
type AuthHandler struct {
	service service.AuthService
	logger  zerolog.Logger
}

// NewAuthHandler constructs the handler.
func NewAuthHandler(service service.AuthService, logger zerolog.Logger) *AuthHandler {
	return &AuthHandler{
		service: service,
		logger:  logger.With().Str("component", "auth_handler").Logger(),
	}
}

// Register wires the unauthenticated auth routes.
func (h *AuthHandler) Register(router fiber.Router) {
	router.Post("/register", h.register)
	router.Post("/login", h.login)
	router.Post("/refresh", h.refresh)
}

// RegisterProtected wires the auth routes that need a valid access token.
func (h *AuthHandler) RegisterProtected(router fiber.Router) {
	router.Post("/logout", h.logout)
	router.Post("/change-password", h.changePassword)
}

func (h *AuthHandler) register(c *fiber.Ctx) error {
	var req dto.RegisterRequest
	if err := parseBody(c, &req); err != nil {
		return utils.SendErrorFrom(c, err)
	}

	resp, err := h.service.Register(c.Context(), req, requestMeta(c))
	if err != nil {
		requestLogger(h.logger, c).Warn().Err(err).Str("slug", req.Slug).Msg("registration failed")
		return utils.SendErrorFrom(c, err)
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "school registered", resp)
}

func (h *AuthHandler) login(c *fiber.Ctx) error {
	tenantID := middleware.TenantIDFromContext(c)
	if tenantID == 0 {
		return utils.SendError(c, apperr.ErrTenantRequired)
	}

	var req dto.LoginRequest
	if err := parseBody(c, &req); err != nil {
		return utils.SendErrorFrom(c, err)
	}

	resp, err := h.service.Login(c.Context(), tenantID, req, requestMeta(c))
	if err != nil {
		requestLogger(h.logger, c).Warn().Err(err).Uint("tenant_id", tenantID).Msg("login rejected")
		return utils.SendErrorFrom(c, err)
	}

	return utils.SendSuccess(c, "login successful", resp)
}

func (h *AuthHandler) refresh(c *fiber.Ctx) error {
	var req dto.RefreshRequest
	if err := parseBody(c, &req); err != nil {
		return utils.SendErrorFrom(c, err)
	}

	resp, err := h.service.Refresh(c.Context(), req)
	if err != nil {
		return utils.SendErrorFrom(c, err)
	}

	return utils.SendSuccess(c, "token refreshed", resp)
}

func (h *AuthHandler) logout(c *fiber.Ctx) error {
	h.service.Logout(c.Context(), middleware.TenantIDFromContext(c), middleware.UserIDFromContext(c), requestMeta(c))
	return utils.SendSuccess(c, "logged out", nil)
}

func (h *AuthHandler) changePassword(c *fiber.Ctx) error {
	var req dto.ChangePasswordRequest
	if err := parseBody(c, &req); err != nil {
		return utils.SendErrorFrom(c, err)
	}

	err := h.service.ChangePassword(c.Context(), middleware.TenantIDFromContext(c), middleware.UserIDFromContext(c), req, requestMeta(c))
	if err != nil {
		return utils.SendErrorFrom(c, err)
	}

	return utils.SendSuccess(c, "password changed", nil)
}

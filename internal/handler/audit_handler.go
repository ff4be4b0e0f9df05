package handler

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/edustack/edustack-api/internal/apperr"
	"github.com/edustack/edustack-api/internal/middleware"
	"github.com/edustack/edustack-api/internal/models"
	"github.com/edustack/edustack-api/internal/repository"
	"github.com/edustack/edustack-api/internal/service"
	"github.com/edustack/edustack-api/internal/utils"
)

// AuditHandler exposes the read side of the audit trail to admins.
type AuditHandler struct {
	service service.AuditService
	logger  zerolog.Logger
}

// NewAuditHandler constructs the handler.
func NewAuditHandler(service service.AuditService, logger zerolog.Logger) *AuditHandler {
	return &AuditHandler{
		service: service,
		logger:  logger.With().Str("component", "audit_handler").Logger(),
	}
}

// Register wires the audit log routes.
func (h *AuditHandler) Register(router fiber.Router) {
	router.Get("", middleware.RequireRole(models.RoleAdmin), h.list)
}

func (h *AuditHandler) list(c *fiber.Ctx) error {
	page, pageSize, err := parsePagination(c)
	if err != nil {
		return utils.SendErrorFrom(c, err)
	}

	userID, err := parseQueryInt(c, "userId")
	if err != nil || userID < 0 {
		return utils.SendError(c, apperr.New(fiber.StatusBadRequest, "INVALID_QUERY", "invalid userId"))
	}
	entityID, err := parseQueryInt(c, "entityId")
	if err != nil || entityID < 0 {
		return utils.SendError(c, apperr.New(fiber.StatusBadRequest, "INVALID_QUERY", "invalid entityId"))
	}

	filter := repository.AuditLogFilter{
		UserID:     uint(userID),
		Action:     c.Query("action"),
		EntityType: c.Query("entityType"),
		EntityID:   uint(entityID),
	}

	if from := c.Query("from"); from != "" {
		parsed, err := time.Parse(time.RFC3339, from)
		if err != nil {
			return utils.SendError(c, apperr.New(fiber.StatusBadRequest, "INVALID_QUERY", "from must be RFC3339"))
		}
		filter.From = &parsed
	}
	if to := c.Query("to"); to != "" {
		parsed, err := time.Parse(time.RFC3339, to)
		if err != nil {
			return utils.SendError(c, apperr.New(fiber.StatusBadRequest, "INVALID_QUERY", "to must be RFC3339"))
		}
		filter.To = &parsed
	}

	resp, err := h.service.List(c.Context(), middleware.TenantIDFromContext(c), filter, page, pageSize)
	if err != nil {
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to list audit logs")
		return utils.SendErrorFrom(c, err)
	}

	return utils.SendSuccess(c, "audit logs retrieved", resp)
}

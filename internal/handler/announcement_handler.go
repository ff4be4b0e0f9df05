package handler

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/edustack/edustack-api/internal/dto"
	"github.com/edustack/edustack-api/internal/middleware"
	"github.com/edustack/edustack-api/internal/models"
	"github.com/edustack/edustack-api/internal/repository"
	"github.com/edustack/edustack-api/internal/service"
	"github.com/edustack/edustack-api/internal/utils"
)

// AnnouncementHandler handles tenant-wide notice endpoints.
type AnnouncementHandler struct {
	service service.AnnouncementService
	logger  zerolog.Logger
}

// NewAnnouncementHandler constructs the handler.
func NewAnnouncementHandler(service service.AnnouncementService, logger zerolog.Logger) *AnnouncementHandler {
	return &AnnouncementHandler{
		service: service,
		logger:  logger.With().Str("component", "announcement_handler").Logger(),
	}
}

// Register wires announcement routes.
func (h *AnnouncementHandler) Register(router fiber.Router) {
	router.Get("", h.list)
	router.Get("/:id", h.get)
	router.Post("", middleware.RequireRole(models.RoleAdmin, models.RoleTeacher), h.publish)
	router.Delete("/:id", middleware.RequireRole(models.RoleAdmin), h.remove)
}

func (h *AnnouncementHandler) list(c *fiber.Ctx) error {
	page, pageSize, err := parsePagination(c)
	if err != nil {
		return utils.SendErrorFrom(c, err)
	}

	filter := repository.AnnouncementFilter{
		Audience:   c.Query("audience"),
		PinnedOnly: c.QueryBool("pinned"),
	}
	if c.QueryBool("active") {
		now := time.Now()
		filter.ActiveAt = &now
	}

	resp, err := h.service.List(c.Context(), middleware.TenantIDFromContext(c), filter, page, pageSize)
	if err != nil {
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to list announcements")
		return utils.SendErrorFrom(c, err)
	}

	if resp.CacheHit {
		c.Set("X-Cache-Hit", "true")
	} else {
		c.Set("X-Cache-Hit", "false")
	}

	return utils.SendSuccess(c, "announcements retrieved", resp)
}

func (h *AnnouncementHandler) get(c *fiber.Ctx) error {
	id, err := parseIDParam(c)
	if err != nil {
		return utils.SendErrorFrom(c, err)
	}

	resp, err := h.service.Get(c.Context(), middleware.TenantIDFromContext(c), id)
	if err != nil {
		return utils.SendErrorFrom(c, err)
	}

	return utils.SendSuccess(c, "announcement retrieved", resp)
}

func (h *AnnouncementHandler) publish(c *fiber.Ctx) error {
	var req dto.AnnouncementCreateRequest
	if err := parseBody(c, &req); err != nil {
		return utils.SendErrorFrom(c, err)
	}

	resp, err := h.service.Publish(c.Context(), middleware.TenantIDFromContext(c), middleware.UserIDFromContext(c), req, requestMeta(c))
	if err != nil {
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to publish announcement")
		return utils.SendErrorFrom(c, err)
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "announcement published", resp)
}

func (h *AnnouncementHandler) remove(c *fiber.Ctx) error {
	id, err := parseIDParam(c)
	if err != nil {
		return utils.SendErrorFrom(c, err)
	}

	if err := h.service.Delete(c.Context(), middleware.TenantIDFromContext(c), middleware.UserIDFromContext(c), id, requestMeta(c)); err != nil {
		return utils.SendErrorFrom(c, err)
	}

	return utils.SendSuccess(c, "announcement deleted", nil)
}

package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/edustack/edustack-api/internal/apperr"
	"github.com/edustack/edustack-api/internal/dto"
	"github.com/edustack/edustack-api/internal/middleware"
	"github.com/edustack/edustack-api/internal/models"
	"github.com/edustack/edustack-api/internal/repository"
	"github.com/edustack/edustack-api/internal/service"
	"github.com/edustack/edustack-api/internal/utils"
)

// LeaveHandler handles absence request endpoints.
type LeaveHandler struct {
	service service.LeaveRequestService
	logger  zerolog.Logger
}

// NewLeaveHandler constructs the handler.
func NewLeaveHandler(service service.LeaveRequestService, logger zerolog.Logger) *LeaveHandler {
	return &LeaveHandler{
		service: service,
		logger:  logger.With().Str("component", "leave_handler").Logger(),
	}
}

// Register wires leave request routes. Reviewing is a staff action.
func (h *LeaveHandler) Register(router fiber.Router) {
	router.Get("", h.list)
	router.Get("/:id", h.get)
	router.Post("", h.submit)
	router.Post("/:id/review", middleware.RequireRole(models.RoleAdmin, models.RoleTeacher), h.review)
}

// list shows everything to staff and only the caller's own requests to
// everyone else.
func (h *LeaveHandler) list(c *fiber.Ctx) error {
	page, pageSize, err := parsePagination(c)
	if err != nil {
		return utils.SendErrorFrom(c, err)
	}

	filter := repository.LeaveRequestFilter{Status: c.Query("status")}
	role := middleware.UserRoleFromContext(c)
	if role != models.RoleAdmin && role != models.RoleTeacher {
		filter.RequesterID = middleware.UserIDFromContext(c)
	}

	resp, err := h.service.List(c.Context(), middleware.TenantIDFromContext(c), filter, page, pageSize)
	if err != nil {
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to list leave requests")
		return utils.SendErrorFrom(c, err)
	}

	return utils.SendSuccess(c, "leave requests retrieved", resp)
}

func (h *LeaveHandler) get(c *fiber.Ctx) error {
	id, err := parseIDParam(c)
	if err != nil {
		return utils.SendErrorFrom(c, err)
	}

	resp, err := h.service.Get(c.Context(), middleware.TenantIDFromContext(c), id)
	if err != nil {
		return utils.SendErrorFrom(c, err)
	}

	// Non-staff callers only see their own requests.
	role := middleware.UserRoleFromContext(c)
	if role != models.RoleAdmin && role != models.RoleTeacher && resp.RequesterID != middleware.UserIDFromContext(c) {
		return utils.SendError(c, apperr.NotFound("LEAVE_REQUEST"))
	}

	return utils.SendSuccess(c, "leave request retrieved", resp)
}

func (h *LeaveHandler) submit(c *fiber.Ctx) error {
	var req dto.LeaveRequestCreateRequest
	if err := parseBody(c, &req); err != nil {
		return utils.SendErrorFrom(c, err)
	}

	resp, err := h.service.Submit(c.Context(), middleware.TenantIDFromContext(c), middleware.UserIDFromContext(c), req, requestMeta(c))
	if err != nil {
		return utils.SendErrorFrom(c, err)
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "leave request submitted", resp)
}

func (h *LeaveHandler) review(c *fiber.Ctx) error {
	id, err := parseIDParam(c)
	if err != nil {
		return utils.SendErrorFrom(c, err)
	}

	var req dto.LeaveReviewRequest
	if err := parseBody(c, &req); err != nil {
		return utils.SendErrorFrom(c, err)
	}

	resp, err := h.service.Review(c.Context(), middleware.TenantIDFromContext(c), middleware.UserIDFromContext(c), id, req, requestMeta(c))
	if err != nil {
		return utils.SendErrorFrom(c, err)
	}

	return utils.SendSuccess(c, "leave request reviewed", resp)
}

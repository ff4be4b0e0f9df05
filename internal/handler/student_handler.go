package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/edustack/edustack-api/internal/dto"
	"github.com/edustack/edustack-api/internal/middleware"
	"github.com/edustack/edustack-api/internal/models"
	"github.com/edustack/edustack-api/internal/repository"
	"github.com/edustack/edustack-api/internal/service"
	"github.com/edustack/edustack-api/internal/utils"
)

// StudentHandler handles enrolment record endpoints.
type StudentHandler struct {
	service service.StudentService
	logger  zerolog.Logger
}

// NewStudentHandler constructs the handler.
func NewStudentHandler(service service.StudentService, logger zerolog.Logger) *StudentHandler {
	return &StudentHandler{
		service: service,
		logger:  logger.With().Str("component", "student_handler").Logger(),
	}
}

// Register wires student routes. Reads are open to any authenticated member;
// writes need staff roles.
func (h *StudentHandler) Register(router fiber.Router) {
	router.Get("", h.list)
	router.Get("/:id", h.get)

	staff := middleware.RequireRole(models.RoleAdmin, models.RoleTeacher)
	router.Post("", staff, h.create)
	router.Patch("/:id", staff, h.update)
	router.Delete("/:id", middleware.RequireRole(models.RoleAdmin), h.remove)
}

func (h *StudentHandler) list(c *fiber.Ctx) error {
	page, pageSize, err := parsePagination(c)
	if err != nil {
		return utils.SendErrorFrom(c, err)
	}

	filter := repository.StudentFilter{
		Search:  c.Query("search"),
		Grade:   c.Query("grade"),
		Section: c.Query("section"),
		Status:  c.Query("status"),
	}

	resp, err := h.service.List(c.Context(), middleware.TenantIDFromContext(c), filter, page, pageSize)
	if err != nil {
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to list students")
		return utils.SendErrorFrom(c, err)
	}

	return utils.SendSuccess(c, "students retrieved", resp)
}

func (h *StudentHandler) get(c *fiber.Ctx) error {
	id, err := parseIDParam(c)
	if err != nil {
		return utils.SendErrorFrom(c, err)
	}

	resp, err := h.service.Get(c.Context(), middleware.TenantIDFromContext(c), id)
	if err != nil {
		return utils.SendErrorFrom(c, err)
	}

	return utils.SendSuccess(c, "student retrieved", resp)
}

func (h *StudentHandler) create(c *fiber.Ctx) error {
	var req dto.StudentCreateRequest
	if err := parseBody(c, &req); err != nil {
		return utils.SendErrorFrom(c, err)
	}

	resp, err := h.service.Create(c.Context(), middleware.TenantIDFromContext(c), middleware.UserIDFromContext(c), req, requestMeta(c))
	if err != nil {
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to create student")
		return utils.SendErrorFrom(c, err)
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "student created", resp)
}

func (h *StudentHandler) update(c *fiber.Ctx) error {
	id, err := parseIDParam(c)
	if err != nil {
		return utils.SendErrorFrom(c, err)
	}

	var req dto.StudentUpdateRequest
	if err := parseBody(c, &req); err != nil {
		return utils.SendErrorFrom(c, err)
	}

	resp, err := h.service.Update(c.Context(), middleware.TenantIDFromContext(c), middleware.UserIDFromContext(c), id, req, requestMeta(c))
	if err != nil {
		return utils.SendErrorFrom(c, err)
	}

	return utils.SendSuccess(c, "student updated", resp)
}

func (h *StudentHandler) remove(c *fiber.Ctx) error {
	id, err := parseIDParam(c)
	if err != nil {
		return utils.SendErrorFrom(c, err)
	}

	if err := h.service.Delete(c.Context(), middleware.TenantIDFromContext(c), middleware.UserIDFromContext(c), id, requestMeta(c)); err != nil {
		return utils.SendErrorFrom(c, err)
	}

	return utils.SendSuccess(c, "student deleted", nil)
}

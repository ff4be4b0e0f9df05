package handler

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/edustack/edustack-api/internal/apperr"
	"github.com/edustack/edustack-api/internal/middleware"
	"github.com/edustack/edustack-api/internal/service"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// parseBody decodes and validates the request body into dest. Validation
// failures come back as a typed 422 with per-field details.
func parseBody(c *fiber.Ctx, dest interface{}) error {
	if err := c.BodyParser(dest); err != nil {
		return apperr.New(fiber.StatusBadRequest, "INVALID_BODY", "request body could not be parsed").WithCause(err)
	}

	if err := validate.Struct(dest); err != nil {
		var validationErrors validator.ValidationErrors
		if errors.As(err, &validationErrors) {
			details := make([]apperr.FieldError, 0, len(validationErrors))
			for _, fieldErr := range validationErrors {
				details = append(details, apperr.FieldError{
					Field:   strings.ToLower(fieldErr.Field()),
					Message: validationMessage(fieldErr),
				})
			}
			return apperr.Validation(details)
		}
		return err
	}

	return nil
}

func validationMessage(err validator.FieldError) string {
	switch err.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "min":
		return fmt.Sprintf("must be at least %s characters", err.Param())
	case "max":
		return fmt.Sprintf("must be at most %s characters", err.Param())
	case "oneof":
		return fmt.Sprintf("must be one of: %s", err.Param())
	default:
		return fmt.Sprintf("failed %s validation", err.Tag())
	}
}

func parseQueryInt(c *fiber.Ctx, key string) (int, error) {
	value := strings.TrimSpace(c.Query(key))
	if value == "" {
		return 0, nil
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return 0, err
	}
	return parsed, nil
}

// parsePagination reads page/pageSize with defaults; the repository layer
// clamps the upper bound.
func parsePagination(c *fiber.Ctx) (int, int, error) {
	page, err := parseQueryInt(c, "page")
	if err != nil {
		return 0, 0, apperr.New(fiber.StatusBadRequest, "INVALID_QUERY", "invalid page")
	}
	if page <= 0 {
		page = 1
	}

	pageSize, err := parseQueryInt(c, "pageSize")
	if err != nil {
		return 0, 0, apperr.New(fiber.StatusBadRequest, "INVALID_QUERY", "invalid page size")
	}
	if pageSize <= 0 {
		pageSize = 20
	}

	return page, pageSize, nil
}

func parseIDParam(c *fiber.Ctx) (uint, error) {
	raw := c.Params("id")
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		return 0, apperr.New(fiber.StatusBadRequest, "INVALID_ID", "invalid id parameter")
	}
	return uint(id), nil
}

// requestMeta captures the caller's address and agent for the audit trail.
func requestMeta(c *fiber.Ctx) service.RequestMeta {
	return service.RequestMeta{
		IP:        c.IP(),
		UserAgent: c.Get(fiber.HeaderUserAgent),
	}
}

func requestLogger(base zerolog.Logger, c *fiber.Ctx) *zerolog.Logger {
	logger := base
	if c != nil {
		if correlation := middleware.GetCorrelationID(c); correlation != "" {
			logger = base.With().Str("correlation_id", correlation).Logger()
		}
	}
	return &logger
}

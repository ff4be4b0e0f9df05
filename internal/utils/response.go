package utils

import (
	"github.com/gofiber/fiber/v2"

	"github.com/edustack/edustack-api/internal/apperr"
)

// APIResponse describes the common structure for successful API responses.
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Message string      `json:"message"`
}

// ErrorBody is the uniform error envelope returned for every failure.
type ErrorBody struct {
	Code    string             `json:"code"`
	Message string             `json:"message"`
	Details []apperr.FieldError `json:"details,omitempty"`
}

// ErrorEnvelope wraps ErrorBody under the "error" key.
type ErrorEnvelope struct {
	Error ErrorBody `json:"error"`
}

// SendSuccess sends a successful JSON response with a message.
func SendSuccess(c *fiber.Ctx, message string, data interface{}) error {
	if message == "" {
		message = "success"
	}

	return SendSuccessWithStatus(c, fiber.StatusOK, message, data)
}

// SendSuccessWithStatus sends a success payload using the provided HTTP status code.
func SendSuccessWithStatus(c *fiber.Ctx, status int, message string, data interface{}) error {
	if message == "" {
		message = "success"
	}
	if status == 0 {
		status = fiber.StatusOK
	}

	return c.Status(status).JSON(APIResponse{
		Success: true,
		Data:    data,
		Message: message,
	})
}

// SendError sends the uniform error envelope for the given application error.
func SendError(c *fiber.Ctx, err *apperr.Error) error {
	if err == nil {
		err = apperr.ErrInternal
	}

	return c.Status(err.Status).JSON(ErrorEnvelope{
		Error: ErrorBody{
			Code:    err.Code,
			Message: err.Message,
			Details: err.Details,
		},
	})
}

// SendErrorFrom maps any error to the envelope, hiding internals behind
// INTERNAL_ERROR unless the error is a typed application error.
func SendErrorFrom(c *fiber.Ctx, err error) error {
	return SendError(c, apperr.From(err))
}

package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"dmsreport/internal/export"
	"dmsreport/internal/http/middleware"
	"dmsreport/internal/loader"
	"dmsreport/internal/service"
)

// errorPayload defines the standardized error response body.
type errorPayload struct {
	RequestID string        `json:"request_id"`
	Error     errorEnvelope `json:"error"`
}

type errorEnvelope struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// writeError writes a standardized JSON error response without leaking internal errors.
//
// Parameters:
// - status: HTTP status code to return
// - code: machine-readable short error code (e.g., "INVALID_DATE", "DATA_UNAVAILABLE")
// - message: human-readable safe message (no internal details)
func writeError(c *fiber.Ctx, status int, code, message string) error {
	res := errorPayload{
		RequestID: middleware.RequestIDFrom(c),
		Error: errorEnvelope{
			Code:    code,
			Message: message,
		},
	}
	return c.Status(status).JSON(res)
}

// writeServiceError translates service and loader errors. what names the exported data
// ("document", "user") in the empty-export message.
func writeServiceError(c *fiber.Ctx, err error, what string) error {
	switch {
	case errors.Is(err, loader.ErrUnavailable):
		return writeError(c, fiber.StatusServiceUnavailable, "DATA_UNAVAILABLE", "could not load data")
	case errors.Is(err, service.ErrReportFailed):
		return writeError(c, fiber.StatusInternalServerError, "REPORT_FAILED", "report generation failed, please try again")
	case errors.Is(err, export.ErrEmpty):
		return writeError(c, fiber.StatusNotFound, "NO_DATA", "No "+what+" data to export")
	case errors.Is(err, service.ErrInvalidFormat):
		return writeError(c, fiber.StatusBadRequest, "INVALID_FORMAT", "format must be csv or xlsx")
	default:
		return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
	}
}

// ErrorHandler returns a Fiber global error handler that standardizes error responses.
func ErrorHandler() fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		status := fiber.StatusInternalServerError
		if e, ok := err.(*fiber.Error); ok {
			status = e.Code
		}

		switch status {
		case fiber.StatusBadRequest:
			return writeError(c, status, "BAD_REQUEST", "bad request")
		case fiber.StatusNotFound:
			return writeError(c, status, "NOT_FOUND", "resource not found")
		case fiber.StatusMethodNotAllowed:
			return writeError(c, status, "METHOD_NOT_ALLOWED", "method not allowed")
		case fiber.StatusServiceUnavailable:
			return writeError(c, status, "SERVICE_UNAVAILABLE", "service unavailable")
		default:
			return writeError(c, status, "INTERNAL_ERROR", "internal server error")
		}
	}
}

package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"filedrive/internal/http/middleware"
	"filedrive/internal/service"
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

// requestIDFromCtx extracts request_id previously stored by middleware.RequestID.
func requestIDFromCtx(c *fiber.Ctx) string {
	if v := c.Locals(middleware.RequestIDLocalKey); v != nil {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// writeError writes a standardized JSON error response without leaking internal errors.
//
// Parameters:
// - status: HTTP status code to return
// - code: machine-readable short error code (e.g., "INVALID_ID", "NOT_FOUND", "auth/wrong-password")
// - message: human-readable safe message (no internal details)
func writeError(c *fiber.Ctx, status int, code, message string) error {
	res := errorPayload{
		RequestID: requestIDFromCtx(c),
		Error: errorEnvelope{
			Code:    code,
			Message: message,
		},
	}
	return c.Status(status).JSON(res)
}

// writeServiceError maps service sentinels to status codes.
// Unknown errors become a generic 500.
func writeServiceError(c *fiber.Ctx, err error) error {
	var authErr *service.AuthError
	if errors.As(err, &authErr) {
		return writeError(c, authStatus(authErr.Code), authErr.Code, service.PublicMessage(authErr))
	}

	switch {
	case errors.Is(err, service.ErrIDRequired):
		return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "id is required")
	case errors.Is(err, service.ErrNotFound):
		return writeError(c, fiber.StatusNotFound, "NOT_FOUND", "file not found")
	case errors.Is(err, service.ErrUploadNotFound):
		return writeError(c, fiber.StatusNotFound, "NOT_FOUND", "upload not found")
	case errors.Is(err, service.ErrUploadActive):
		return writeError(c, fiber.StatusConflict, "UPLOAD_ACTIVE", "upload is still running")
	case errors.Is(err, service.ErrInvalidFileName):
		return writeError(c, fiber.StatusBadRequest, "INVALID_FILE_NAME", "File names cannot contain "+service.DisallowedNameChars)
	case errors.Is(err, service.ErrFileNameRequired):
		return writeError(c, fiber.StatusBadRequest, "FILE_NAME_REQUIRED", "file name is required")
	case errors.Is(err, service.ErrReaderNil):
		return writeError(c, fiber.StatusBadRequest, "FILE_REQUIRED", "file is required")
	case errors.Is(err, service.ErrInvalidFolder):
		return writeError(c, fiber.StatusBadRequest, "INVALID_FOLDER", "invalid folder path")
	case errors.Is(err, service.ErrFileTooLarge):
		return writeError(c, fiber.StatusRequestEntityTooLarge, "FILE_TOO_LARGE", "file exceeds the maximum upload size")
	case errors.Is(err, service.ErrUploadInProgress):
		return writeError(c, fiber.StatusConflict, "UPLOAD_IN_PROGRESS", "another upload is still in progress")
	default:
		return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
	}
}

func authStatus(code string) int {
	switch code {
	case service.ErrAuthInvalidEmail.Code, service.ErrAuthWeakPassword.Code:
		return fiber.StatusBadRequest
	case service.ErrAuthUserNotFound.Code, service.ErrAuthWrongPassword.Code, service.ErrAuthInvalidToken.Code:
		return fiber.StatusUnauthorized
	case service.ErrAuthOperationNotAllowed.Code:
		return fiber.StatusForbidden
	case service.ErrAuthEmailInUse.Code:
		return fiber.StatusConflict
	case service.ErrAuthTooManyRequests.Code:
		return fiber.StatusTooManyRequests
	default:
		return fiber.StatusInternalServerError
	}
}

// ErrorHandler returns a Fiber global error handler that standardizes error responses.
func ErrorHandler() fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		status := fiber.StatusInternalServerError
		message := ""
		if e, ok := err.(*fiber.Error); ok {
			status = e.Code
			message = e.Message
		}

		switch status {
		case fiber.StatusBadRequest:
			return writeError(c, status, "BAD_REQUEST", "bad request")
		case fiber.StatusUnauthorized:
			if message == "" || message == "Unauthorized" {
				message = "unauthorized"
			}
			return writeError(c, status, "UNAUTHORIZED", message)
		case fiber.StatusNotFound:
			return writeError(c, status, "NOT_FOUND", "resource not found")
		case fiber.StatusMethodNotAllowed:
			return writeError(c, status, "METHOD_NOT_ALLOWED", "method not allowed")
		case fiber.StatusRequestEntityTooLarge:
			return writeError(c, status, "FILE_TOO_LARGE", "file exceeds the maximum upload size")
		default:
			return writeError(c, status, "INTERNAL_ERROR", "internal server error")
		}
	}
}

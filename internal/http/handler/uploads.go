package handler

import (
	"github.com/gofiber/fiber/v2"

	"filedrive/internal/http/middleware"
	"filedrive/internal/model"
	"filedrive/internal/service"
)

// ListUploads godoc
// @Summary The caller's in-flight and failed uploads
// @Tags uploads
// @Produce json
// @Security BearerAuth
// @Success 200 {array} model.UploadProgress
// @Router /uploads [get]
func ListUploads(uploadSvc service.UploadService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		entries, err := uploadSvc.Progress(c.UserContext(), middleware.UserID(c))
		if err != nil {
			return writeServiceError(c, err)
		}
		if entries == nil {
			entries = []model.UploadProgress{}
		}
		return c.JSON(fiber.Map{"data": entries})
	}
}

// DismissUpload godoc
// @Summary Remove a failed upload
// @Tags uploads
// @Security BearerAuth
// @Param id path string true "Upload ID"
// @Success 204
// @Failure 400,404,409 {object} errorPayload
// @Router /uploads/{id} [delete]
func DismissUpload(uploadSvc service.UploadService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := parseID(c)
		if !ok {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		if err := uploadSvc.Dismiss(c.UserContext(), middleware.UserID(c), id); err != nil {
			return writeServiceError(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

package handler

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/xid"

	"filedrive/internal/http/middleware"
	"filedrive/internal/service"
)

// UploadFile godoc
// @Summary Upload a file into a folder
// @Description multipart/form-data with field "file", optional "folder" and "name".
// @Tags files
// @Accept mpfd
// @Produce json
// @Security BearerAuth
// @Success 201 {object} model.File
// @Failure 400,409,413 {object} errorPayload
// @Router /files [post]
func UploadFile(uploadSvc service.UploadService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		fh, err := c.FormFile("file")
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "FILE_REQUIRED", "file is required")
		}

		f, err := fh.Open()
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "FILE_OPEN_ERROR", "cannot open uploaded file")
		}
		defer f.Close()

		ct := fh.Header.Get("Content-Type")
		if ct == "" {
			ct = "application/octet-stream"
		}
		name := c.FormValue("name", fh.Filename)

		file, err := uploadSvc.Upload(c.UserContext(), middleware.UserID(c), service.UploadInput{
			Folder:      c.FormValue("folder"),
			Name:        name,
			ContentType: ct,
			Size:        fh.Size,
			Reader:      f,
		})
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(file)
	}
}

// ListFiles godoc
// @Summary List the files of one folder
// @Tags files
// @Produce json
// @Security BearerAuth
// @Param folder query string false "Folder path, empty for root"
// @Param limit query int false "Page size" default(10)
// @Param offset query int false "Offset" default(0)
// @Success 200 {object} service.FileListResult
// @Failure 400 {object} errorPayload
// @Router /files [get]
func ListFiles(fileSvc service.FileService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		limit, err := strconv.Atoi(c.Query("limit", "10"))
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_LIMIT", "invalid limit")
		}
		offset, err := strconv.Atoi(c.Query("offset", "0"))
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_OFFSET", "invalid offset")
		}

		res, err := fileSvc.List(c.UserContext(), c.Query("folder"), limit, offset)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(res)
	}
}

// GetFile godoc
// @Summary File metadata
// @Tags files
// @Produce json
// @Security BearerAuth
// @Param id path string true "File ID"
// @Success 200 {object} model.File
// @Failure 400,404 {object} errorPayload
// @Router /files/{id} [get]
func GetFile(fileSvc service.FileService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := parseID(c)
		if !ok {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		f, err := fileSvc.Get(c.UserContext(), id)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(f)
	}
}

// DownloadFile godoc
// @Summary Redirect to a fresh download URL
// @Tags files
// @Security BearerAuth
// @Param id path string true "File ID"
// @Success 302
// @Failure 400,404 {object} errorPayload
// @Router /files/{id}/download [get]
func DownloadFile(fileSvc service.FileService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := parseID(c)
		if !ok {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		u, err := fileSvc.DownloadURL(c.UserContext(), id)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.Redirect(u, fiber.StatusFound)
	}
}

// StreamFile godoc
// @Summary Download the file's bytes through the API
// @Tags files
// @Produce octet-stream
// @Security BearerAuth
// @Param id path string true "File ID"
// @Success 200
// @Failure 400,404 {object} errorPayload
// @Router /files/{id}/content [get]
func StreamFile(fileSvc service.FileService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := parseID(c)
		if !ok {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		rc, f, err := fileSvc.Open(c.UserContext(), id)
		if err != nil {
			return writeServiceError(c, err)
		}

		c.Attachment(f.Name)
		if f.ContentType != "" {
			c.Set(fiber.HeaderContentType, f.ContentType)
		}
		// fasthttp closes rc once the body is written.
		return c.SendStream(rc, int(f.Size))
	}
}

// DeleteFile godoc
// @Summary Delete a file
// @Tags files
// @Security BearerAuth
// @Param id path string true "File ID"
// @Success 204
// @Failure 400,404 {object} errorPayload
// @Router /files/{id} [delete]
func DeleteFile(fileSvc service.FileService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := parseID(c)
		if !ok {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		if err := fileSvc.Delete(c.UserContext(), id); err != nil {
			return writeServiceError(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

func parseID(c *fiber.Ctx) (string, bool) {
	id := c.Params("id")
	if _, err := xid.FromString(id); err != nil {
		return "", false
	}
	return id, true
}

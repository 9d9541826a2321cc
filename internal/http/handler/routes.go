package handler

import (
	"context"
	"database/sql"
	"time"

	"github.com/gofiber/fiber/v2"

	"filedrive/internal/http/middleware"
	"filedrive/internal/service"
)

// RegisterRoutes attaches HTTP routes to the provided Fiber app.
// Everything under /files, /uploads and /auth/me requires a bearer token.
func RegisterRoutes(
	app *fiber.App,
	db *sql.DB,
	uploadSvc service.UploadService,
	fileSvc service.FileService,
	authSvc service.AuthService,
) {
	app.Get("/health", HealthCheck(db))
	app.Get("/healthz", Liveness())

	app.Post("/auth/login", Login(authSvc))
	app.Post("/auth/register", Register(authSvc))

	requireAuth := middleware.Auth(authSvc, service.PublicMessage(service.ErrAuthInvalidToken))

	app.Get("/auth/me", requireAuth, Me(authSvc))

	files := app.Group("/files", requireAuth)
	files.Post("/", UploadFile(uploadSvc))
	files.Get("/", ListFiles(fileSvc))
	files.Get("/:id", GetFile(fileSvc))
	files.Get("/:id/download", DownloadFile(fileSvc))
	files.Get("/:id/content", StreamFile(fileSvc))
	files.Delete("/:id", DeleteFile(fileSvc))

	uploads := app.Group("/uploads", requireAuth)
	uploads.Get("/", ListUploads(uploadSvc))
	uploads.Delete("/:id", DismissUpload(uploadSvc))
}

// HealthCheck godoc
// @Summary Readiness check
// @Tags health
// @Produce json
// @Success 200 {object} map[string]string
// @Failure 503 {object} errorPayload
// @Router /health [get]
func HealthCheck(db *sql.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
		defer cancel()
		if err := db.PingContext(ctx); err != nil {
			return writeError(c, fiber.StatusServiceUnavailable, "SERVICE_UNAVAILABLE", "dependency unavailable")
		}
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"status": "healthy"})
	}
}

// Liveness answers 200 while the process is up.
func Liveness() fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	}
}

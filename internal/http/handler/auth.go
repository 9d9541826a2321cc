package handler

import (
	"github.com/gofiber/fiber/v2"

	"filedrive/internal/http/middleware"
	"filedrive/internal/service"
)

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login godoc
// @Summary Sign in with email and password
// @Tags auth
// @Accept json
// @Produce json
// @Param body body credentials true "Credentials"
// @Success 200 {object} service.Session
// @Failure 400,401,429 {object} errorPayload
// @Router /auth/login [post]
func Login(authSvc service.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var in credentials
		if err := c.BodyParser(&in); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "invalid request body")
		}
		sess, err := authSvc.Login(c.UserContext(), in.Email, in.Password, c.IP())
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(sess)
	}
}

// Register godoc
// @Summary Create an account
// @Tags auth
// @Accept json
// @Produce json
// @Param body body credentials true "Credentials"
// @Success 201 {object} service.Session
// @Failure 400,403,409,429 {object} errorPayload
// @Router /auth/register [post]
func Register(authSvc service.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var in credentials
		if err := c.BodyParser(&in); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "invalid request body")
		}
		sess, err := authSvc.Register(c.UserContext(), in.Email, in.Password, c.IP())
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(sess)
	}
}

// Me godoc
// @Summary Current account
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} model.User
// @Failure 401 {object} errorPayload
// @Router /auth/me [get]
func Me(authSvc service.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		u, err := authSvc.CurrentUser(c.UserContext(), middleware.UserID(c))
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(u)
	}
}

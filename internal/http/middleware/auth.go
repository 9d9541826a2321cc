package middleware

import (
	"context"
	"strings"

	"github.com/gofiber/fiber/v2"

	"filedrive/internal/auth"
)

// UserIDLocalKey holds the authenticated user's id.
const UserIDLocalKey = "user_id"

// TokenVerifier validates bearer tokens.
type TokenVerifier interface {
	Verify(ctx context.Context, token string) (auth.Claims, error)
}

// Auth rejects requests without a valid "Authorization: Bearer <token>" header
// with 401 and stores the token's subject in locals.
// message is the body text used for rejected requests.
func Auth(v TokenVerifier, message string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		header := strings.TrimSpace(c.Get(fiber.HeaderAuthorization))
		token, ok := strings.CutPrefix(header, "Bearer ")
		token = strings.TrimSpace(token)
		if !ok || token == "" {
			return fiber.NewError(fiber.StatusUnauthorized, message)
		}

		claims, err := v.Verify(c.UserContext(), token)
		if err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, message)
		}

		c.Locals(UserIDLocalKey, claims.Subject)
		return c.Next()
	}
}

// UserID returns the id stored by Auth, or "".
func UserID(c *fiber.Ctx) string {
	id, _ := c.Locals(UserIDLocalKey).(string)
	return id
}
